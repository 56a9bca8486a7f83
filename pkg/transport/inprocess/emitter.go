package inprocess

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

// Emitter writes directly to a shared Conduit. It holds no state of its own
// and Start/Dispose are no-ops.
type Emitter struct {
	conduit *Conduit
}

// NewEmitter returns an emitter writing to conduit.
func NewEmitter(conduit *Conduit) *Emitter {
	return &Emitter{conduit: conduit}
}

func (e *Emitter) Start(ctx context.Context) error { return nil }

func (e *Emitter) Emit(ctx context.Context, payload envelope.Envelope) error {
	e.conduit.publish(ctx, payload)
	return nil
}

func (e *Emitter) Dispose(ctx context.Context) error { return nil }
