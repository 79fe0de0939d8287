package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	apperrors "github.com/tournament-scout/internal/errors"
	"github.com/tournament-scout/internal/logging"
)

// RevealLimiter enforces the contact-reveal budget with two fixed-window
// counters per request: one keyed by the authenticated user, one by a salted
// hash of the client IP. A request is permitted only when both counters have
// remaining budget, so neither a single abusive account nor a single abusive
// network address can drain the directory, while shared-IP users who stay
// within per-account limits are unaffected.
type RevealLimiter struct {
	store     CounterStore
	userLimit int64
	ipLimit   int64
	window    time.Duration
	ipSalt    string
}

// RevealLimiterConfig holds limiter configuration.
type RevealLimiterConfig struct {
	// Store is the counter backend. Required.
	Store CounterStore

	// UserLimit is the reveal budget per user per window.
	UserLimit int64

	// IPLimit is the reveal budget per client address per window.
	IPLimit int64

	// Window is the fixed window duration.
	Window time.Duration

	// IPSalt is mixed into the IP hash so raw addresses are never stored.
	IPSalt string
}

// NewRevealLimiter creates a reveal limiter from the given configuration.
func NewRevealLimiter(cfg *RevealLimiterConfig) *RevealLimiter {
	return &RevealLimiter{
		store:     cfg.Store,
		userLimit: cfg.UserLimit,
		ipLimit:   cfg.IPLimit,
		window:    cfg.Window,
		ipSalt:    cfg.IPSalt,
	}
}

// CheckAndConsume permits or denies a reveal of the given cost (number of
// contacts requested). On permit, consumption is recorded against both
// counters; on deny, neither counter retains the attempt. Store failures
// deny: revealing unmetered during a backend outage is worse than refusing,
// and callers must preserve this fail-closed behavior.
func (l *RevealLimiter) CheckAndConsume(ctx context.Context, userID, clientIP string, cost int64) error {
	logger := logging.FromContext(ctx)

	userKey := "user:" + userID
	ipKey := "ip:" + l.hashIP(clientIP)

	userTotal, err := l.store.Incr(ctx, userKey, cost, l.window)
	if err != nil {
		logger.WithError(err).Warn("Reveal counter store unavailable, denying")
		return apperrors.NewRateLimitedError(userID, err)
	}
	if userTotal > l.userLimit {
		l.rollback(ctx, userKey, cost)
		return apperrors.NewRateLimitedError(userID, nil)
	}

	ipTotal, err := l.store.Incr(ctx, ipKey, cost, l.window)
	if err != nil {
		logger.WithError(err).Warn("Reveal counter store unavailable, denying")
		l.rollback(ctx, userKey, cost)
		return apperrors.NewRateLimitedError(userID, err)
	}
	if ipTotal > l.ipLimit {
		l.rollback(ctx, userKey, cost)
		l.rollback(ctx, ipKey, cost)
		return apperrors.NewRateLimitedError(userID, nil)
	}

	return nil
}

// rollback backs out a consumed increment; failures only widen the window's
// effective limit by one denied attempt, so they are logged and dropped.
func (l *RevealLimiter) rollback(ctx context.Context, key string, cost int64) {
	if err := l.store.Decr(ctx, key, cost); err != nil {
		logging.FromContext(ctx).WithError(err).WithField("key", key).Warn("Failed to roll back reveal counter")
	}
}

// hashIP returns the salted digest used as the per-address counter key.
func (l *RevealLimiter) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(l.ipSalt + ":" + ip))
	return hex.EncodeToString(sum[:])
}
