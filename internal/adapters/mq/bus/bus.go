// Package bus is the in-process publish/subscribe channel for domain events.
//
// Two implementations share one subscriber registry: Sync dispatches on the
// publishing goroutine, Async hands events to a bounded queue drained by a
// worker pool.
package bus

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/pkg/logger"
	"github.com/okian/profilebridge/pkg/metrics"
)

// Handler consumes one event. Returned errors are logged and counted; they
// never stop delivery to other subscribers.
type Handler func(ctx context.Context, e events.Event) error

// Bus is the contract the bridge publishes to and subscribes on.
type Bus interface {
	Publish(ctx context.Context, e events.Event) error
	// Subscribe registers h for every event and returns a function that
	// removes the subscription. The returned function is idempotent.
	Subscribe(name string, h Handler) (unsubscribe func())
}

// Managed is a Bus with a lifecycle and counters.
type Managed interface {
	Bus
	Close(ctx context.Context) error
	Stats() Stats
}

var (
	_ Managed = (*Sync)(nil)
	_ Managed = (*Async)(nil)
)

// Subscription identifies a registered handler.
type Subscription struct {
	ID   string
	Name string
}

// Stats is a point-in-time view of bus activity.
type Stats struct {
	Mode          string `json:"mode"`
	Subscribers   int    `json:"subscribers"`
	Published     uint64 `json:"published"`
	HandlerErrors uint64 `json:"handlerErrors"`
	Pending       int    `json:"pending"`
}

type subscriber struct {
	Subscription
	handle Handler
}

// registry holds subscribers in a copy-on-write slice so dispatch never
// holds the lock while user code runs.
type registry struct {
	mu   sync.Mutex
	subs atomic.Pointer[[]subscriber]

	published atomic.Uint64
	failures  atomic.Uint64

	logger  logger.Logger
	onError ErrorHook
}

func newRegistry(c config) *registry {
	r := &registry{logger: c.logger, onError: c.onError}
	empty := []subscriber{}
	r.subs.Store(&empty)
	return r
}

func (r *registry) subscribe(name string, h Handler) func() {
	s := subscriber{
		Subscription: Subscription{ID: uuid.NewString(), Name: name},
		handle:       h,
	}

	r.mu.Lock()
	cur := *r.subs.Load()
	next := make([]subscriber, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, s)
	r.subs.Store(&next)
	r.mu.Unlock()
	metrics.UpdateBusSubscribers(len(next))

	r.logger.Debug(context.Background(), "subscribed",
		logger.String("subscription", s.ID),
		logger.String("name", name),
	)

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(s.ID) })
	}
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.subs.Load()
	next := make([]subscriber, 0, len(cur))
	for _, s := range cur {
		if s.ID != id {
			next = append(next, s)
		}
	}
	r.subs.Store(&next)
	metrics.UpdateBusSubscribers(len(next))
}

func (r *registry) count() int { return len(*r.subs.Load()) }

// dispatch delivers e to every subscriber in subscription order.
func (r *registry) dispatch(ctx context.Context, e events.Event) int {
	start := time.Now()
	defer func() {
		metrics.RecordBusDispatchLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	failed := 0
	for _, s := range *r.subs.Load() {
		if err := r.invoke(ctx, s, e); err != nil {
			failed++
			r.failures.Add(1)
			kind := e.Kind().String()
			metrics.RecordBusHandlerError(kind)
			r.logger.Error(ctx, "subscriber failed",
				logger.String("subscription", s.Name),
				logger.String("kind", kind),
				logger.Error(err),
			)
			if r.onError != nil {
				r.onError(s.Subscription, kind, err)
			}
		}
	}
	return failed
}

func (r *registry) invoke(ctx context.Context, s subscriber, e events.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrHandlerPanic, rec, debug.Stack())
		}
	}()
	return s.handle(ctx, e)
}

func (r *registry) stats(mode string) Stats {
	return Stats{
		Mode:          mode,
		Subscribers:   r.count(),
		Published:     r.published.Load(),
		HandlerErrors: r.failures.Load(),
	}
}

func check(e events.Event) error {
	if e == nil {
		return ErrNilEvent
	}
	if !e.Kind().Valid() {
		return fmt.Errorf("unknown event kind %s", e.Kind())
	}
	return nil
}

func buildConfig(component string, opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named(component)
	}
	return c
}
