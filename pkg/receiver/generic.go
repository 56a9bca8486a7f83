package receiver

import (
	"context"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
)

// Receive subscribes to r and filters the (already-deduplicated) sequence to
// envelopes whose concrete type is T, applied after deduplication on the
// merged sequence (spec §4.2). An envelope delivered as the generic fallback
// type never satisfies a concrete T and is silently excluded.
func Receive[T envelope.Envelope](ctx context.Context, r Receiver, tags ...string) (<-chan T, error) {
	in, err := r.Receive(ctx, tags...)
	if err != nil {
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		for env := range in {
			typed, ok := env.(T)
			if !ok {
				continue
			}
			select {
			case out <- typed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
