package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/profilebridge/internal/adapters/mq/queue"
	"github.com/okian/profilebridge/internal/adapters/mq/worker"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

const (
	defaultQueueSize   = 1024
	defaultWorkerCount = 4
)

// Async queues events and dispatches them from a worker pool. Events are
// dequeued in FIFO order but may be handled concurrently.
type Async struct {
	reg   *registry
	queue *queue.InMemoryQueue
	pool  *worker.Pool

	closeOnce sync.Once
	closeErr  error
}

// NewAsync creates an asynchronous bus. Call Start before publishing.
func NewAsync(opts ...Option) *Async {
	c := buildConfig("bus-async", opts)
	if c.queueSize == 0 {
		c.queueSize = defaultQueueSize
	}
	if c.workerCount == 0 {
		c.workerCount = defaultWorkerCount
	}

	b := &Async{reg: newRegistry(c)}
	b.queue = queue.NewInMemoryQueue(queue.WithCapacity(c.queueSize))
	b.pool = worker.NewPool(c.workerCount, b.queue, worker.DispatchFunc(b.dispatch),
		worker.WithLogger(c.logger.Named("worker")),
	)
	return b
}

// Start launches the dispatch workers; they stop when ctx is cancelled or
// the bus is closed.
func (b *Async) Start(ctx context.Context) {
	b.pool.Start(ctx)
}

// Publish enqueues e without blocking. A full queue yields ErrBackpressure.
func (b *Async) Publish(ctx context.Context, e events.Event) error {
	if err := check(e); err != nil {
		return err
	}

	err := b.queue.Enqueue(ctx, queue.Item{ID: uuid.NewString(), Event: e})
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrFull):
		return fmt.Errorf("%w: %v", ErrBackpressure, err)
	case errors.Is(err, queue.ErrClosed):
		return ErrClosed
	default:
		return err
	}

	b.reg.published.Add(1)
	metrics.RecordBusPublished(e.Kind().String())
	return nil
}

// Subscribe registers h.
func (b *Async) Subscribe(name string, h Handler) func() {
	return b.reg.subscribe(name, h)
}

// Close stops accepting events and waits for the queued ones to be handled.
func (b *Async) Close(ctx context.Context) error {
	b.closeOnce.Do(func() {
		b.closeErr = b.pool.Shutdown(ctx)
		if b.closeErr != nil {
			b.reg.logger.Warn(ctx, "bus closed with pending events",
				logger.Int("pending", b.queue.Len()),
				logger.Error(b.closeErr),
			)
		}
	})
	return b.closeErr
}

// Stats reports bus counters and the current backlog.
func (b *Async) Stats() Stats {
	s := b.reg.stats("async")
	s.Pending = b.queue.Len()
	return s
}

func (b *Async) dispatch(ctx context.Context, it queue.Item) error {
	if failed := b.reg.dispatch(ctx, it.Event); failed > 0 {
		return fmt.Errorf("%d subscribers failed for %s", failed, it.Event.Kind())
	}
	return nil
}
