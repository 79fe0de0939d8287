// Package ratelimit provides fixed-window budgeting for contact reveals.
// Counters live behind an injectable store so production can share state
// through Redis while tests and single-process deployments use memory.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore records consumption against a subject key within a fixed window.
type CounterStore interface {
	// Incr adds cost to the counter for key, creating it with the window as
	// TTL when absent, and returns the new total for the current window.
	Incr(ctx context.Context, key string, cost int64, window time.Duration) (int64, error)

	// Decr backs out a previous increment. Used to avoid partial consumption
	// when one of a request's counters denies after another already consumed.
	Decr(ctx context.Context, key string, cost int64) error
}

// RedisCounterStore implements CounterStore on a shared Redis instance so
// limits hold across service replicas.
type RedisCounterStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCounterStore creates a Redis-backed counter store.
func NewRedisCounterStore(client redis.Cmdable) *RedisCounterStore {
	return &RedisCounterStore{client: client, prefix: "reveal:"}
}

// Incr increments the window counter, setting the expiry only on first touch
// so the window is anchored at the first consumption.
func (s *RedisCounterStore) Incr(ctx context.Context, key string, cost int64, window time.Duration) (int64, error) {
	fullKey := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.IncrBy(ctx, fullKey, cost)
	pipe.ExpireNX(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}

	return incr.Val(), nil
}

// Decr backs out cost from the window counter.
func (s *RedisCounterStore) Decr(ctx context.Context, key string, cost int64) error {
	if err := s.client.DecrBy(ctx, s.prefix+key, cost).Err(); err != nil {
		return fmt.Errorf("failed to decrement counter %s: %w", key, err)
	}
	return nil
}

// windowCounter is one in-memory fixed window.
type windowCounter struct {
	total   int64
	expires time.Time
}

// MemoryCounterStore implements CounterStore in process memory. Limits are
// advisory under multi-instance deployment; that is an accepted limitation.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

// NewMemoryCounterStore creates an in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests use this to step the window.
func (s *MemoryCounterStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Incr increments the window counter, resetting it when the stored expiry
// has passed.
func (s *MemoryCounterStore) Incr(_ context.Context, key string, cost int64, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || now.After(c.expires) {
		c = &windowCounter{expires: now.Add(window)}
		s.counters[key] = c
	}

	c.total += cost
	return c.total, nil
}

// Decr backs out cost from the current window, if it still exists.
func (s *MemoryCounterStore) Decr(_ context.Context, key string, cost int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.counters[key]; ok {
		c.total -= cost
		if c.total < 0 {
			c.total = 0
		}
	}
	return nil
}
