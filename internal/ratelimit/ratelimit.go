// Package ratelimit implements a fixed-window request counter keyed by an
// arbitrary string (typically "action:clientIP"). Counters live in process
// memory and reset when the process restarts; a multi-instance deployment
// under-enforces limits. Expired windows are discarded lazily on the next
// access to the same key — there is no background sweep.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// window is the counter state for a single key.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter tracks fixed-window counters per key. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// New creates a limiter using the real clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock creates a limiter with an injected time source so tests can
// advance the window deterministically.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     now,
	}
}

// Allow atomically checks and consumes one request slot for key. The limit
// policy (max requests, window length) is supplied per call; the handler
// layer owns the per-endpoint configuration.
func (l *Limiter) Allow(key string, maxRequests int, windowDur time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if ok && now.After(w.resetAt) {
		delete(l.windows, key)
		ok = false
	}

	if !ok {
		l.windows[key] = &window{count: 1, resetAt: now.Add(windowDur)}
		return Result{Allowed: true, Remaining: maxRequests - 1, ResetIn: windowDur}
	}

	if w.count >= maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetIn: w.resetAt.Sub(now)}
	}

	w.count++
	return Result{Allowed: true, Remaining: maxRequests - w.count, ResetIn: w.resetAt.Sub(now)}
}

// Len reports the number of tracked keys. Used by tests to observe eviction.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
