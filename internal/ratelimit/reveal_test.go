package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tournament-scout/internal/errors"
)

func newTestLimiter(store CounterStore, userLimit, ipLimit int64) *RevealLimiter {
	return NewRevealLimiter(&RevealLimiterConfig{
		Store:     store,
		UserLimit: userLimit,
		IPLimit:   ipLimit,
		Window:    time.Second,
		IPSalt:    "test-salt",
	})
}

func TestCheckAndConsume_WithinThenExceeded(t *testing.T) {
	limiter := newTestLimiter(NewMemoryCounterStore(), 2, 10)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))

	err := limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1)
	require.Error(t, err)
	assert.Equal(t, 429, apperrors.GetHTTPStatusCode(err))
}

func TestCheckAndConsume_WindowResets(t *testing.T) {
	store := NewMemoryCounterStore()
	now := time.Now()
	store.SetClock(func() time.Time { return now })

	limiter := newTestLimiter(store, 1, 10)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
	require.Error(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))

	// Step past the window: budget is fresh again.
	now = now.Add(1100 * time.Millisecond)
	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
}

func TestCheckAndConsume_IPLimitSharedAcrossUsers(t *testing.T) {
	limiter := newTestLimiter(NewMemoryCounterStore(), 10, 2)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
	require.NoError(t, limiter.CheckAndConsume(ctx, "u2", "10.0.0.1", 1))

	// Third user on the same address is denied by the IP counter.
	require.Error(t, limiter.CheckAndConsume(ctx, "u3", "10.0.0.1", 1))

	// A different address is unaffected.
	require.NoError(t, limiter.CheckAndConsume(ctx, "u3", "10.0.0.2", 1))
}

func TestCheckAndConsume_DenialLeavesNoPartialConsumption(t *testing.T) {
	limiter := newTestLimiter(NewMemoryCounterStore(), 2, 1)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))

	// Denied by the IP counter; the user counter must be rolled back.
	require.Error(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))

	// The same user still has budget on a fresh address, proving the denied
	// attempt did not consume from the user counter.
	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.2", 1))
	require.Error(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.3", 1))
}

// failingStore simulates a counter backend outage.
type failingStore struct{}

func (failingStore) Incr(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func (failingStore) Decr(context.Context, string, int64) error {
	return errors.New("store down")
}

func TestCheckAndConsume_FailsClosedOnStoreError(t *testing.T) {
	limiter := newTestLimiter(failingStore{}, 100, 100)

	err := limiter.CheckAndConsume(context.Background(), "u1", "10.0.0.1", 1)
	require.Error(t, err)
	assert.Equal(t, 429, apperrors.GetHTTPStatusCode(err))
}

func TestRedisCounterStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisCounterStore(client)
	ctx := context.Background()

	total, err := store.Incr(ctx, "user:u1", 1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	total, err = store.Incr(ctx, "user:u1", 2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, store.Decr(ctx, "user:u1", 1))

	total, err = store.Incr(ctx, "user:u1", 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Expiry resets the window.
	mr.FastForward(1100 * time.Millisecond)

	total, err = store.Incr(ctx, "user:u1", 1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRevealLimiter_OnRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := newTestLimiter(NewRedisCounterStore(client), 2, 10)
	ctx := context.Background()

	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
	require.Error(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))

	mr.FastForward(1100 * time.Millisecond)
	require.NoError(t, limiter.CheckAndConsume(ctx, "u1", "10.0.0.1", 1))
}
