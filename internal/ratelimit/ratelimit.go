// Package ratelimit implements the fixed-window login limiter backed by
// Redis. The window and attempt budget come from config; when Redis is
// unreachable the limiter fails open so authentication keeps working.
package ratelimit

import (
	"context"
	"time"

	"taskman/internal/cache"
	"taskman/internal/config"
	"taskman/pkg/logger"
)

// Limiter decides whether a caller identified by key may proceed.
type Limiter interface {
	// Allow returns false with the time left in the current window when
	// the caller has exhausted its attempts.
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration)
}

// FixedWindow counts attempts per key in a fixed Redis-backed window. Name
// namespaces the Redis counters so limiters with different budgets do not
// share a window for the same caller.
type FixedWindow struct {
	Name   string
	Window time.Duration
	Max    int
}

// NewLoginLimiter builds the limiter for the auth endpoints from config.
func NewLoginLimiter() *FixedWindow {
	cfg := config.Get()
	return &FixedWindow{Name: "login", Window: cfg.LoginWindow, Max: cfg.LoginMaxTries}
}

// NewAPILimiter builds the general limiter for the task endpoints from
// config. A much larger budget than the login limiter; it caps abusive
// clients rather than brute force.
func NewAPILimiter() *FixedWindow {
	cfg := config.Get()
	return &FixedWindow{Name: "api", Window: cfg.APIWindow, Max: cfg.APIMaxTries}
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, time.Duration) {
	c := cache.Client(ctx)
	if c == nil {
		return true, 0
	}
	rkey := "ratelimit:" + l.Name + ":" + key
	n, err := c.Incr(ctx, rkey).Result()
	if err != nil {
		logger.Debug(ctx, "Rate limit incr failed", "error", err)
		return true, 0
	}
	if n == 1 {
		if err := c.Expire(ctx, rkey, l.Window).Err(); err != nil {
			logger.Debug(ctx, "Rate limit expire failed", "error", err)
		}
	}
	if int(n) <= l.Max {
		return true, 0
	}
	ttl, err := c.TTL(ctx, rkey).Result()
	if err != nil || ttl <= 0 {
		ttl = l.Window
	}
	return false, ttl
}

// RetryAfterMinutes converts the remaining window to the whole-minute
// retry hint carried in 429 responses (rounded up, at least 1).
func RetryAfterMinutes(retryAfter time.Duration) int {
	m := int((retryAfter + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}
