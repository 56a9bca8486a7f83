package logconsumer

import (
	"context"
	"os"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	apperrors "github.com/chris-alexander-pop/notifyfabric/pkg/errors"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logger"
	"github.com/chris-alexander-pop/notifyfabric/pkg/logstore"
	"github.com/chris-alexander-pop/notifyfabric/pkg/receiver"
	"github.com/chris-alexander-pop/notifyfabric/pkg/wire"
	"github.com/google/uuid"
)

var _ receiver.Receiver = (*Consumer)(nil)

// Consumer implements receiver.Receiver over one stream. A single Consumer
// is expected to be subscribed to exactly once. notify.Registry does not
// create Consumers: the caller builds one per stream and passes them to
// RegisterLogStoreTransport, which wires each into the composite receiver.
//
// Entries that were read but not acknowledged stay in the group's pending
// list; this package has no reclaim logic for them.
type Consumer struct {
	client       logstore.Client
	resolver     *envelope.Resolver
	cfg          Config
	consumerName string
}

// New builds a log consumer for cfg.Stream against client, resolving
// payload types with resolver.
func New(client logstore.Client, resolver *envelope.Resolver, cfg Config) *Consumer {
	return &Consumer{
		client:       client,
		resolver:     resolver,
		cfg:          cfg,
		consumerName: newConsumerName(),
	}
}

func newConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return "consumer-" + host + "-" + uuid.NewString()[:8]
}

// Receive ensures the consumer group exists, then starts the blocking
// group-read loop in a goroutine, emitting decoded envelopes onto the
// returned channel until ctx is canceled.
func (c *Consumer) Receive(ctx context.Context, tags ...string) (<-chan envelope.Envelope, error) {
	if err := logstore.EnsureConsumerGroup(ctx, c.client, c.cfg.Stream, c.cfg.Group, c.cfg.Initializer); err != nil {
		return nil, err
	}

	out := make(chan envelope.Envelope)
	go c.loop(ctx, out, tags)
	return out, nil
}

func (c *Consumer) loop(ctx context.Context, out chan<- envelope.Envelope, tags []string) {
	defer close(out)
	for {
		if ctx.Err() != nil {
			return
		}

		reply, err := c.client.ReadGroupBlock(ctx, c.cfg.Group, c.consumerName, c.cfg.Stream, c.cfg.BlockDuration, c.cfg.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.L().WarnContext(ctx, "logconsumer: group-read failed, backing off",
				"stream", c.cfg.Stream, "group", c.cfg.Group, "error", err)
			if !sleepOrDone(ctx, c.cfg.ErrorRecoveryDelay) {
				return
			}
			continue
		}
		if reply == nil {
			continue
		}

		batches, err := wire.Parse(reply)
		if err != nil {
			logger.L().WarnContext(ctx, "logconsumer: malformed group-read reply", "error", err)
			continue
		}

		for _, batch := range batches {
			for _, entry := range batch.Entries {
				if !c.processEntry(ctx, out, batch.Stream, entry, tags) {
					return
				}
			}
		}
	}
}

// processEntry returns false only when ctx was canceled mid-send, signaling
// the loop to exit.
func (c *Consumer) processEntry(ctx context.Context, out chan<- envelope.Envelope, stream string, entry wire.Entry, tags []string) bool {
	body, ok := c.fetchBody(ctx, entry)
	if !ok {
		logger.L().WarnContext(ctx, "logconsumer: entry skipped, not acknowledged", "entry_id", entry.ID)
		return true
	}

	typeName, _ := entry.Lookup("type")
	idField, _ := entry.Lookup("id")
	var timestamp time.Time
	if tsField, ok := entry.Lookup("timestamp"); ok {
		timestamp, _ = time.Parse(time.RFC3339Nano, tsField)
	}

	env := c.resolver.DeserializeOrFallback(ctx, body, typeName, idField, timestamp)

	if envelope.HasAnyTag(env, tags) {
		select {
		case out <- env:
		case <-ctx.Done():
			return false
		}
	}

	if err := c.client.Ack(ctx, stream, c.cfg.Group, entry.ID); err != nil {
		logger.L().WarnContext(ctx, "logconsumer: ack failed", "entry_id", entry.ID, "error", err)
	}
	return true
}

// fetchBody resolves the entry's encoded body per its storage mode
// (spec §4.6 step 2).
func (c *Consumer) fetchBody(ctx context.Context, entry wire.Entry) ([]byte, bool) {
	storage, _ := entry.Lookup("storage")
	if storage == "stream-only" {
		payload, ok := entry.Lookup("payload")
		if !ok {
			return nil, false
		}
		return []byte(payload), true
	}

	key, ok := entry.Lookup("key")
	if !ok {
		return nil, false
	}
	value, found, err := c.client.GetKey(ctx, key)
	if err != nil {
		logger.L().WarnContext(ctx, "logconsumer: key-store lookup failed", "key", key, "error", apperrors.Wrap(err, "logconsumer"))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return value, true
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
