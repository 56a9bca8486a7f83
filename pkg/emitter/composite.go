package emitter

import (
	"context"
	"sync"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Composite dispatches one Emit call to every registered child emitter
// concurrently (spec §4.1). Identity (ID, Timestamp) is frozen once, before
// any child observes the payload, so every transport carries the same
// deduplication key downstream.
type Composite struct {
	children []Emitter
	tracer   trace.Tracer

	mu       sync.RWMutex
	disposed bool
}

// NewComposite builds a composite over children, in the order they will be
// invoked. The order has no semantic effect since children run in parallel.
func NewComposite(children ...Emitter) *Composite {
	return &Composite{
		children: children,
		tracer:   otel.Tracer("pkg/emitter"),
	}
}

// Start starts every child emitter. If any child fails to start, the already
// started children are disposed and the error is returned — a composite
// cannot run in a half-started state.
func (c *Composite) Start(ctx context.Context) error {
	for i, child := range c.children {
		if err := child.Start(ctx); err != nil {
			for _, started := range c.children[:i] {
				_ = started.Dispose(ctx)
			}
			return apperrors.Wrap(err, "composite emitter: child start failed")
		}
	}
	return nil
}

// Emit freezes payload's identity if unset, then invokes every child emitter
// in parallel. A single child failure is logged and does not abort siblings
// or propagate; if every child fails, Emit returns an aggregated transient
// error to the caller (see DESIGN.md for the rationale — the source left
// this open).
func (c *Composite) Emit(ctx context.Context, payload envelope.Envelope) error {
	c.mu.RLock()
	disposed := c.disposed
	c.mu.RUnlock()
	if disposed {
		return apperrors.New(apperrors.CodeDisposed, "composite emitter: emit after dispose", nil)
	}

	if payload.ID() == "" {
		payload.SetID(uuid.NewString())
	}
	if payload.Timestamp().IsZero() {
		payload.SetTimestamp(time.Now().UTC())
	}

	ctx, span := c.tracer.Start(ctx, "emitter.Composite.Emit", trace.WithAttributes(
		attribute.String("notification.id", payload.ID()),
		attribute.String("notification.type", payload.Type()),
		attribute.Int("emitter.child_count", len(c.children)),
	))
	defer span.End()

	if len(c.children) == 0 {
		span.SetStatus(codes.Ok, "no children registered")
		return nil
	}

	var wg sync.WaitGroup
	failures := make([]error, len(c.children))
	wg.Add(len(c.children))
	for i, child := range c.children {
		go func(i int, child Emitter) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				failures[i] = err
				return
			}
			if err := child.Emit(ctx, payload); err != nil {
				failures[i] = err
				logger.L().ErrorContext(ctx, "composite emitter: child emit failed",
					"notification_id", payload.ID(), "error", err)
			}
		}(i, child)
	}
	wg.Wait()

	if ctx.Err() != nil {
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "canceled")
		return apperrors.New(apperrors.CodeCanceled, "composite emitter: emit canceled", ctx.Err())
	}

	allFailed := true
	for _, err := range failures {
		if err == nil {
			allFailed = false
			break
		}
	}
	if allFailed {
		span.SetStatus(codes.Error, "all children failed")
		return apperrors.New(apperrors.CodeTransient, "composite emitter: every child emit failed", failures[0])
	}

	span.SetStatus(codes.Ok, "dispatched")
	return nil
}

// Dispose disposes every child, swallowing and logging per-child disposal
// errors. It is idempotent.
func (c *Composite) Dispose(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	c.mu.Unlock()

	var g errgroup.Group
	for _, child := range c.children {
		child := child
		g.Go(func() error {
			if err := child.Dispose(ctx); err != nil {
				logger.L().WarnContext(ctx, "composite emitter: child dispose failed", "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
