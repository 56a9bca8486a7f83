// Package receiver defines the receiver capability every transport
// implements (spec §4.2) and the composite receiver that merges every
// registered transport's sequence into one deduplicated stream.
package receiver

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

// Receiver is the capability a single transport exposes for observing
// notifications. Receive returns a channel of envelopes; the channel closes
// when ctx is canceled or the underlying sequence completes. A Receiver must
// never send on a closed channel and must close it exactly once.
type Receiver interface {
	// Receive starts a subscription filtered by tags (no filter when tags is
	// empty). A synchronous error here means the subscription could not be
	// established at all; once subscribed, per-entry failures are logged
	// internally and do not surface as Go errors on this channel.
	Receive(ctx context.Context, tags ...string) (<-chan envelope.Envelope, error)
}
