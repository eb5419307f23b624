// Package geocode resolves free-text place names to coordinates.
package geocode

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between calls by tracking the
// timestamp of the last permitted call. Callers invoking concurrently are
// serialized behind the delay.
type RateLimiter struct {
	mu   sync.Mutex
	min  time.Duration
	last time.Time
}

// NewRateLimiter creates a limiter with the given minimum inter-call interval.
func NewRateLimiter(min time.Duration) *RateLimiter {
	return &RateLimiter{min: min}
}

// Wait blocks until at least the minimum interval has passed since the
// previous permitted call, or until ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	next := r.last.Add(r.min)
	if next.Before(now) {
		next = now
	}
	r.last = next
	r.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
