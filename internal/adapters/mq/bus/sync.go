package bus

import (
	"context"
	"sync/atomic"

	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Sync delivers each event to every subscriber before Publish returns.
type Sync struct {
	reg    *registry
	closed atomic.Bool
}

// NewSync creates a synchronous bus.
func NewSync(opts ...Option) *Sync {
	return &Sync{reg: newRegistry(buildConfig("bus-sync", opts))}
}

// Publish dispatches e on the caller's goroutine, in subscription order.
// Subscriber failures are not returned.
func (b *Sync) Publish(ctx context.Context, e events.Event) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := check(e); err != nil {
		return err
	}
	b.reg.published.Add(1)
	metrics.RecordBusPublished(e.Kind().String())
	b.reg.dispatch(ctx, e)
	return nil
}

// Subscribe registers h.
func (b *Sync) Subscribe(name string, h Handler) func() {
	return b.reg.subscribe(name, h)
}

// Close rejects further publishes.
func (b *Sync) Close(context.Context) error {
	b.closed.Store(true)
	return nil
}

// Stats reports bus counters.
func (b *Sync) Stats() Stats { return b.reg.stats("sync") }
