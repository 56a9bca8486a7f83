package resilience

import (
	"context"
	"time"

	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
)

// Run executes fn. If fn is nil, an invalid-argument error is returned
// synchronously without ever calling fn. If fn fails with a transient error
// (apperrors.IsTransient), Run waits cfg.Delay — honoring ctx cancellation —
// and retries exactly once. Any other failure, or a second failure, is
// returned as-is.
func Run(ctx context.Context, cfg Config, fn Executor) error {
	if fn == nil {
		return apperrors.New(apperrors.CodeInvalidArgument, "resilience.Run: nil executor", nil)
	}

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if !apperrors.IsTransient(err) {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.Delay):
	}

	return fn(ctx)
}

// ValueExecutor represents a unit of work that also produces a value.
type ValueExecutor[T any] func(ctx context.Context) (T, error)

// RunValue is Run's value-returning counterpart, with identical retry
// semantics.
func RunValue[T any](ctx context.Context, cfg Config, fn ValueExecutor[T]) (T, error) {
	var zero T
	if fn == nil {
		return zero, apperrors.New(apperrors.CodeInvalidArgument, "resilience.RunValue: nil executor", nil)
	}

	val, err := fn(ctx)
	if err == nil {
		return val, nil
	}
	if !apperrors.IsTransient(err) {
		return zero, err
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-time.After(cfg.Delay):
	}

	return fn(ctx)
}
