// Package ratelimit provides a fixed-window in-memory rate limiter for the
// admin-facing endpoints. State lives on the Limiter value and is injected
// where needed; nothing here is package-global.
package ratelimit

import (
	"sync"
	"time"
)

// cleanupThreshold bounds how large the entry map can grow before expired
// entries are swept.
const cleanupThreshold = 1000

type entry struct {
	count     int
	resetTime time.Time
}

// Result reports the outcome of one Allow call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

// Limiter limits each identifier to maxRequests per window.
type Limiter struct {
	mu          sync.Mutex
	entries     map[string]entry
	window      time.Duration
	maxRequests int
	now         func() time.Time
}

// NewLimiter creates a limiter allowing maxRequests per window per identifier.
func NewLimiter(window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		entries:     make(map[string]entry),
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

// Allow records a request for the identifier and reports whether it is
// within the limit.
func (l *Limiter) Allow(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[identifier]

	if !ok || now.After(e.resetTime) {
		reset := now.Add(l.window)
		l.entries[identifier] = entry{count: 1, resetTime: reset}
		if len(l.entries) > cleanupThreshold {
			l.sweep(now)
		}
		return Result{Allowed: true, Remaining: l.maxRequests - 1, ResetTime: reset}
	}

	if e.count >= l.maxRequests {
		return Result{Allowed: false, Remaining: 0, ResetTime: e.resetTime}
	}

	e.count++
	l.entries[identifier] = e
	return Result{Allowed: true, Remaining: l.maxRequests - e.count, ResetTime: e.resetTime}
}

func (l *Limiter) sweep(now time.Time) {
	for key, e := range l.entries {
		if now.After(e.resetTime) {
			delete(l.entries, key)
		}
	}
}
