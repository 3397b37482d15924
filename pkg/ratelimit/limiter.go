// Package ratelimit implements fixed-window request limiting keyed by
// client address, with in-memory and Redis counters.
package ratelimit

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Rule is the number of requests allowed per window
type Rule struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

// Validate reports whether the rule can be enforced
func (r Rule) Validate() error {
	if r.Max <= 0 {
		return errors.Errorf("rate limit max must be positive, got %d", r.Max)
	}
	if r.Window <= 0 {
		return errors.Errorf("rate limit window must be positive, got %s", r.Window)
	}
	return nil
}

// Result describes the state of a key's window after a hit
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts a hit for key and reports whether it is within the rule
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Adjustable is a Limiter whose rule can be swapped while serving. Windows
// already open keep their reset time; the new max applies to the next hit.
type Adjustable interface {
	Limiter
	SetRule(rule Rule)
}

func newResult(rule Rule, count int, resetAt time.Time) Result {
	remaining := rule.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= rule.Max,
		Limit:     rule.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}
