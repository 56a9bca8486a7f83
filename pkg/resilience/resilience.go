// Package resilience implements the notification fabric's retry policy
// (spec §4.9): a suspendable unit is executed, and on a transient transport
// error it is retried exactly once after a configurable delay. Non-transient
// errors propagate immediately without retry.
package resilience

import (
	"context"
	"time"
)

// Executor represents a unit of work with no return value besides error.
type Executor func(ctx context.Context) error

// Config configures the retry policy.
type Config struct {
	// Delay is how long to wait before the single retry attempt.
	Delay time.Duration
}

// DefaultConfig returns the spec-documented default (2s retry delay).
func DefaultConfig() Config {
	return Config{Delay: 2 * time.Second}
}
