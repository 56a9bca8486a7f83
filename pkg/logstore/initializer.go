package logstore

import (
	"context"
	"time"

	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
)

// InitializerConfig configures the Stream Initializer (spec §4.10).
type InitializerConfig struct {
	// Timeout bounds the total time spent retrying group creation.
	Timeout time.Duration
	// RetryDelay is how long to wait between bounded retry attempts.
	RetryDelay time.Duration
}

// DefaultInitializerConfig returns the spec-documented defaults.
func DefaultInitializerConfig() InitializerConfig {
	return InitializerConfig{Timeout: 30 * time.Second, RetryDelay: 500 * time.Millisecond}
}

// EnsureConsumerGroup idempotently ensures group exists on stream,
// retrying Client.EnsureGroup until it succeeds or cfg.Timeout elapses.
// Client.EnsureGroup implementations are expected to treat "group already
// exists" as success rather than an error, so every retry here is for
// transient connectivity failures, not for the idempotency itself.
//
// Failure after the bounded retry window is fatal to the caller: it returns
// a CodeTransient AppError and does not leave the caller able to proceed.
func EnsureConsumerGroup(ctx context.Context, client Client, stream, group string, cfg InitializerConfig) error {
	deadline := time.Now().Add(cfg.Timeout)
	var lastErr error

	for attempt := 1; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := client.EnsureGroup(attemptCtx, stream, group)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		logger.L().WarnContext(ctx, "logstore: ensure-group attempt failed",
			"stream", stream, "group", group, "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			return apperrors.New(apperrors.CodeTransient, "ensure-group canceled", ctx.Err())
		}
		if time.Now().Add(cfg.RetryDelay).After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
			return apperrors.New(apperrors.CodeTransient, "ensure-group canceled", ctx.Err())
		case <-time.After(cfg.RetryDelay):
		}
	}

	return apperrors.New(apperrors.CodeTransient, "ensure-group failed within init timeout", lastErr)
}
