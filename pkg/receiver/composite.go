package receiver

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/concurrency"
	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Composite merges every registered child receiver's sequence into one,
// suppressing duplicates by notification ID (spec §4.2). Tag filtering is
// delegated to children; type filtering is layered on top via Receive[T].
type Composite struct {
	children []Receiver
	dedup    DedupConfig
	tracer   trace.Tracer
}

// NewComposite builds a composite over children with the given dedup
// cache configuration.
func NewComposite(dedup DedupConfig, children ...Receiver) *Composite {
	return &Composite{children: children, dedup: dedup, tracer: otel.Tracer("pkg/receiver")}
}

// Receive subscribes to every child and merges their sequences, dropping any
// entry whose ID has already been observed. A child whose Receive call fails
// synchronously is logged and skipped; the composite still serves the
// remaining children (spec §4.2 "merge robustness").
func (c *Composite) Receive(ctx context.Context, tags ...string) (<-chan envelope.Envelope, error) {
	channels := make([]<-chan envelope.Envelope, 0, len(c.children))
	for _, child := range c.children {
		ch, err := child.Receive(ctx, tags...)
		if err != nil {
			logger.L().ErrorContext(ctx, "composite receiver: child subscribe failed", "error", err)
			continue
		}
		channels = append(channels, ch)
	}

	merged := concurrency.FanIn(ctx, channels...)

	cache := newDedupCache(c.dedup)
	cache.start(ctx)

	out := make(chan envelope.Envelope)
	go func() {
		defer close(out)
		defer cache.stop()
		for env := range merged {
			_, span := c.tracer.Start(ctx, "receiver.Composite.Receive.forward", trace.WithAttributes(
				attribute.String("notification.id", env.ID()),
				attribute.String("notification.type", env.Type()),
			))
			if cache.seen(env.ID()) {
				span.SetAttributes(attribute.Bool("notification.duplicate", true))
				span.End()
				continue
			}
			span.End()
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
