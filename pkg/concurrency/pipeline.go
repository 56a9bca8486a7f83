package concurrency

import (
	"context"
	"sync"
)

// OrDone wraps a channel so that ranging over it also respects ctx
// cancellation, instead of blocking forever on a producer that never
// closes its channel.
func OrDone[T any](ctx context.Context, input <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case val, ok := <-input:
				if !ok {
					return
				}
				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// FanIn merges multiple channels into one. The merged channel closes once
// every input channel has closed (or ctx is canceled). A slow or stuck
// producer on one channel never blocks delivery from the others.
func FanIn[T any](ctx context.Context, channels ...<-chan T) <-chan T {
	out := make(chan T)
	var wg sync.WaitGroup

	drain := func(ch <-chan T) {
		defer wg.Done()
		for val := range OrDone(ctx, ch) {
			select {
			case out <- val:
			case <-ctx.Done():
				return
			}
		}
	}

	wg.Add(len(channels))
	for _, ch := range channels {
		go drain(ch)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
