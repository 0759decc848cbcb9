// Package poll runs a callback on a fixed interval until its context is
// cancelled. It backs every periodic task in the engine so cancellation
// semantics live in one place.
package poll

import (
	"context"
	"time"
)

// Run invokes fn immediately and then once per interval. It returns when ctx
// is cancelled. fn errors are delivered to onErr (when non-nil) and never stop
// the loop.
func Run(ctx context.Context, interval time.Duration, fn func(context.Context) error, onErr func(error)) {
	tick := func() {
		if err := fn(ctx); err != nil && onErr != nil && ctx.Err() == nil {
			onErr(err)
		}
	}
	tick()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}
