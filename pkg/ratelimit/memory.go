package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps fixed-window counters in process memory
type MemoryLimiter struct {
	rule Rule
	now  func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

// NewMemoryLimiter creates an in-memory limiter enforcing rule
func NewMemoryLimiter(rule Rule) *MemoryLimiter {
	return &MemoryLimiter{
		rule:    rule,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow counts a hit for key
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.rule.Window)}
		l.windows[key] = w
	}
	w.count++

	return newResult(l.rule, w.count, w.resetAt), nil
}

// SetRule replaces the enforced rule
func (l *MemoryLimiter) SetRule(rule Rule) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rule = rule
}

// sweep drops expired windows at most once per window length
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.rule.Window)
}
