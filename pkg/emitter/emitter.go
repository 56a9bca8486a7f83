// Package emitter defines the emitter capability every transport implements
// (spec §4.1) and the composite emitter that fans an emit call out to every
// registered transport in parallel.
package emitter

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

// Emitter is the capability a single transport exposes for sending
// notifications. Start/Dispose bracket the emitter's lifetime; Emit may be
// called many times between them.
type Emitter interface {
	// Start prepares the emitter to accept Emit calls (e.g. spins up a
	// worker). It is a no-op for emitters with no background state.
	Start(ctx context.Context) error

	// Emit sends payload through this transport. Implementations must not
	// mutate payload's identity fields; the composite emitter has already
	// frozen them.
	Emit(ctx context.Context, payload envelope.Envelope) error

	// Dispose releases resources. It must be idempotent and safe to call
	// more than once.
	Dispose(ctx context.Context) error
}
