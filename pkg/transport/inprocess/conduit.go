// Package inprocess implements the in-process transport (spec §4.3): a
// single shared, synchronized broadcast conduit with a matching emitter and
// receiver. Neither side deduplicates — that is the composite receiver's
// job. Cancellation on a receiver detaches only that subscriber.
package inprocess

import (
	"context"
	"sync"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

type subscription struct {
	ch   chan envelope.Envelope
	tags []string
}

// Conduit is the shared broadcast point. Create one per logical bus and hand
// it to a paired NewEmitter/NewReceiver.
type Conduit struct {
	mu   sync.RWMutex
	subs map[uint64]*subscription
	next uint64

	// publishMu serializes publish calls end-to-end (snapshot + send loop)
	// so concurrent Emit calls on the same conduit cannot interleave
	// dispatch order to a given subscriber.
	publishMu sync.Mutex
}

// NewConduit creates an empty conduit.
func NewConduit() *Conduit {
	return &Conduit{subs: make(map[uint64]*subscription)}
}

func (c *Conduit) subscribe(tags []string) (uint64, chan envelope.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	ch := make(chan envelope.Envelope, 64)
	c.subs[id] = &subscription{ch: ch, tags: tags}
	return id, ch
}

func (c *Conduit) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sub, ok := c.subs[id]; ok {
		delete(c.subs, id)
		close(sub.ch)
	}
}

// publish delivers payload to every subscriber whose tag filter matches.
// publishMu is held across both the subscriber snapshot and the send loop,
// so two concurrent Emit calls on the same conduit are fully serialized and
// cannot interleave dispatch order to a given subscriber.
func (c *Conduit) publish(ctx context.Context, payload envelope.Envelope) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.RLock()
	snapshot := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		snapshot = append(snapshot, sub)
	}
	c.mu.RUnlock()

	for _, sub := range snapshot {
		if !envelope.HasAnyTag(payload, sub.tags) {
			continue
		}
		select {
		case sub.ch <- payload:
		case <-ctx.Done():
			return
		}
	}
}
