package perplexity

import (
	"context"
	"sort"
	"sync"
	"time"
)

// rateLimitWindow is the length of the sliding admission window.
const rateLimitWindow = time.Minute

// RateLimiter bounds admitted requests to at most capacity per sliding
// window. It keeps one timestamp per admitted request and prunes entries
// that have aged out before every decision.
//
// Acquire releases the lock while sleeping, so a waiter never serializes
// other callers behind it: each sleeper re-evaluates admission state on
// wake, since capacity may have been freed or reconfigured in the meantime.
type RateLimiter struct {
	mu       sync.Mutex
	requests []time.Time
	capacity int
	enabled  bool

	// window and now are fixed in production; tests shrink the window and
	// pin the clock.
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter returns a limiter admitting at most maxRequestsPerMinute
// requests per rolling minute. A non-positive capacity is a configuration
// error.
func NewRateLimiter(maxRequestsPerMinute int, enabled bool) (*RateLimiter, error) {
	if maxRequestsPerMinute <= 0 {
		return nil, configError("max requests per minute must be positive, got %d", maxRequestsPerMinute)
	}
	return &RateLimiter{
		capacity: maxRequestsPerMinute,
		enabled:  enabled,
		window:   rateLimitWindow,
		now:      time.Now,
	}, nil
}

// prune drops every entry whose window has fully elapsed. The caller must
// hold mu. An entry is stale when entry+window <= now, which guarantees a
// computed waitUntil <= now is removable on the next pass.
func (r *RateLimiter) prune(now time.Time) {
	idx := 0
	for idx < len(r.requests) && !r.requests[idx].Add(r.window).After(now) {
		idx++
	}
	if idx > 0 {
		r.requests = append(r.requests[:0], r.requests[idx:]...)
	}
}

// Acquire blocks until a request may be admitted, then records it. When the
// limiter is disabled it returns immediately and records nothing. On
// cancellation mid-wait it returns ctx.Err() without recording.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	if !r.enabled {
		r.mu.Unlock()
		return nil
	}

	for {
		now := r.now()
		r.prune(now)
		if len(r.requests) < r.capacity {
			break
		}

		waitUntil := r.requests[0].Add(r.window)
		if !waitUntil.After(now) {
			// Already removable; loop to prune it without sleeping.
			continue
		}

		wait := waitUntil.Sub(now)
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		r.mu.Lock()
		if !r.enabled {
			r.mu.Unlock()
			return nil
		}
	}

	r.requests = append(r.requests, r.now())
	r.mu.Unlock()
	return nil
}

// CanAdmitNow reports whether a request could be admitted without waiting.
// It records nothing, and a true answer is no guarantee for a subsequent
// Acquire under concurrent callers.
func (r *RateLimiter) CanAdmitNow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return true
	}
	r.prune(r.now())
	return len(r.requests) < r.capacity
}

// CurrentCount returns the number of requests admitted within the current
// window. For observability only.
func (r *RateLimiter) CurrentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prune(r.now())
	return len(r.requests)
}

// Capacity returns the configured per-window limit.
func (r *RateLimiter) Capacity() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.capacity
}

// Enabled reports whether admission control is active.
func (r *RateLimiter) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// SetEnabled toggles admission control. Takes effect immediately, including
// for callers currently sleeping in Acquire.
func (r *RateLimiter) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// SetCapacity changes the per-window limit, effective immediately even
// mid-window. A non-positive capacity is rejected and prior state is kept.
func (r *RateLimiter) SetCapacity(maxRequestsPerMinute int) error {
	if maxRequestsPerMinute <= 0 {
		return configError("max requests per minute must be positive, got %d", maxRequestsPerMinute)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacity = maxRequestsPerMinute
	return nil
}

// Reset clears the window unconditionally. Enabled state and capacity are
// untouched.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = r.requests[:0]
}

// Prime seeds the window with externally recorded admission timestamps,
// e.g. a journal of requests made by earlier CLI invocations. Entries
// outside the window are discarded.
func (r *RateLimiter) Prime(timestamps ...time.Time) {
	if len(timestamps) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, timestamps...)
	sort.Slice(r.requests, func(i, j int) bool {
		return r.requests[i].Before(r.requests[j])
	})
	r.prune(r.now())
}
