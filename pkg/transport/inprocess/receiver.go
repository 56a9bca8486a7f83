package inprocess

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

// Receiver exposes a shared Conduit as a lazy sequence, optionally filtered
// by tags. Canceling ctx detaches this subscriber without affecting others.
type Receiver struct {
	conduit *Conduit
}

// NewReceiver returns a receiver reading from conduit.
func NewReceiver(conduit *Conduit) *Receiver {
	return &Receiver{conduit: conduit}
}

func (r *Receiver) Receive(ctx context.Context, tags ...string) (<-chan envelope.Envelope, error) {
	id, ch := r.conduit.subscribe(tags)
	go func() {
		<-ctx.Done()
		r.conduit.unsubscribe(id)
	}()
	return ch, nil
}
