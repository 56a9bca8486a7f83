package logpipeline

import (
	"context"
	"sync"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/emitter"
	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logstore"
	"github.com/chris-alexander-pop/notifyfabric/pkg/wire"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ emitter.Emitter = (*Pipeline)(nil)

type workItem struct {
	payload  envelope.Envelope
	enqueued time.Time
}

// Pipeline is the log-store emitter (spec §4.4): Emit hands the payload to a
// bounded queue and returns once it is queued (or, when the queue is full,
// as the overflow policy decides); a single long-lived worker drains
// the queue, serializes, picks a write strategy, and writes to the log
// store.
type Pipeline struct {
	client logstore.Client
	cfg    Config
	tracer trace.Tracer

	queue    chan workItem
	workerWG sync.WaitGroup
	cancel   context.CancelFunc

	mu       sync.Mutex
	started  bool
	disposed bool
}

// New constructs a pipeline against client. Items emitted before Start stay
// queued until Start spawns the worker.
func New(client logstore.Client, cfg Config) *Pipeline {
	return &Pipeline{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("pkg/emitter/logpipeline"),
		queue:  make(chan workItem, cfg.QueueCapacity),
	}
}

// Start spawns the worker. Calling Start twice is a no-op.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	workerCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.started = true

	p.workerWG.Add(1)
	go p.run(workerCtx)
	return nil
}

// Emit encodes nothing synchronously beyond enqueueing the payload and
// returns as soon as the queue accepts it, so callers see low, store-
// independent latency (spec §4.4).
func (p *Pipeline) Emit(ctx context.Context, payload envelope.Envelope) error {
	p.mu.Lock()
	disposed := p.disposed
	p.mu.Unlock()
	if disposed {
		return apperrors.New(apperrors.CodeDisposed, "logpipeline: emit after dispose", nil)
	}

	item := workItem{payload: payload, enqueued: time.Now()}

	switch p.cfg.OverflowPolicy {
	case OverflowDropNewest:
		select {
		case p.queue <- item:
			return nil
		default:
			logger.L().WarnContext(ctx, "logpipeline: queue full, dropping newest item", "notification_id", payload.ID())
			return nil
		}
	case OverflowDropOldest:
		select {
		case p.queue <- item:
			return nil
		default:
		}
		select {
		case <-p.queue:
			logger.L().WarnContext(ctx, "logpipeline: queue full, dropped oldest item")
		default:
		}
		select {
		case p.queue <- item:
		default:
		}
		return nil
	default: // OverflowWait
		select {
		case p.queue <- item:
			return nil
		case <-ctx.Done():
			return apperrors.New(apperrors.CodeCanceled, "logpipeline: emit canceled while waiting for queue space", ctx.Err())
		}
	}
}

func (p *Pipeline) run(ctx context.Context) {
	defer p.workerWG.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, item)
		}
	}
}

func (p *Pipeline) process(ctx context.Context, item workItem) {
	typeName := item.payload.Type()
	if typeName == "" {
		typeName = "Unknown"
	}
	id := item.payload.ID()

	ctx, span := p.tracer.Start(ctx, "logpipeline.Pipeline.process", trace.WithAttributes(
		attribute.String("notification.id", id),
		attribute.String("notification.type", typeName),
	))
	defer span.End()

	body, err := wire.Encode(item.payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		logger.L().ErrorContext(ctx, "logpipeline: encode failed", "error", err, "age", time.Since(item.enqueued))
		return
	}

	timestamp := item.payload.Timestamp().UTC().Format(time.RFC3339Nano)

	if err := selectAndWrite(ctx, p.client, p.cfg, typeName, id, timestamp, body, item.payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		logger.L().ErrorContext(ctx, "logpipeline: write failed, item dropped",
			"notification_id", id, "type", typeName, "age", time.Since(item.enqueued), "error", err)
		return
	}
	span.SetStatus(codes.Ok, "written")
}

// Dispose stops accepting new items, cancels the worker, and waits for it
// to finish its current item. Idempotent.
func (p *Pipeline) Dispose(ctx context.Context) error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	started := p.started
	cancel := p.cancel
	p.mu.Unlock()

	if !started {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	p.workerWG.Wait()
	logger.L().InfoContext(ctx, "logpipeline: worker stopped")
	return nil
}
