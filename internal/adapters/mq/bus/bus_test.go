package bus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/profilebridge/internal/adapters/mq/bus"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/internal/domain/model"
	logging "github.com/okian/profilebridge/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type collector struct {
	mu   sync.Mutex
	seen []events.Event
}

func (c *collector) handle(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, e)
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func TestSyncBus(t *testing.T) {
	Convey("Given a synchronous bus", t, func() {
		_ = logging.Init()

		var hooked []string
		b := bus.NewSync(bus.WithErrorHook(func(sub bus.Subscription, kind string, err error) {
			hooked = append(hooked, sub.Name+":"+kind)
		}))
		ctx := context.Background()

		var order []string
		b.Subscribe("first", func(context.Context, events.Event) error {
			order = append(order, "first")
			return nil
		})
		b.Subscribe("failing", func(context.Context, events.Event) error {
			order = append(order, "failing")
			return errors.New("host gone")
		})
		b.Subscribe("panicking", func(context.Context, events.Event) error {
			order = append(order, "panicking")
			panic("boom")
		})
		c := &collector{}
		unsubscribe := b.Subscribe("last", c.handle)

		Convey("When an event is published", func() {
			err := b.Publish(ctx, events.LogoutStarted{Provider: model.Twitter})

			Convey("Then every subscriber runs in order despite failures", func() {
				So(err, ShouldBeNil)
				So(order, ShouldResemble, []string{"first", "failing", "panicking"})
				So(c.len(), ShouldEqual, 1)
				So(hooked, ShouldResemble, []string{"failing:onLogoutStarted", "panicking:onLogoutStarted"})
				So(b.Stats().HandlerErrors, ShouldEqual, 2)
				So(b.Stats().Published, ShouldEqual, 1)
			})
		})

		Convey("When a subscriber is removed", func() {
			unsubscribe()
			unsubscribe()
			_ = b.Publish(ctx, events.UserRating{})

			Convey("Then it no longer receives events", func() {
				So(c.len(), ShouldEqual, 0)
				So(b.Stats().Subscribers, ShouldEqual, 3)
			})
		})

		Convey("When a nil event is published", func() {
			So(b.Publish(ctx, nil), ShouldEqual, bus.ErrNilEvent)
		})

		Convey("When the bus is closed", func() {
			So(b.Close(ctx), ShouldBeNil)
			So(b.Publish(ctx, events.UserRating{}), ShouldEqual, bus.ErrClosed)
		})
	})
}

func TestPanicIsReportedAsError(t *testing.T) {
	Convey("Given a panicking subscriber", t, func() {
		_ = logging.Init()

		var got error
		b := bus.NewSync(bus.WithErrorHook(func(_ bus.Subscription, _ string, err error) { got = err }))
		b.Subscribe("panicking", func(context.Context, events.Event) error { panic("boom") })

		So(b.Publish(context.Background(), events.ProfileInitialized{}), ShouldBeNil)
		So(errors.Is(got, bus.ErrHandlerPanic), ShouldBeTrue)
	})
}

func TestAsyncBus(t *testing.T) {
	Convey("Given an asynchronous bus", t, func() {
		_ = logging.Init()

		b := bus.NewAsync(bus.WithQueueSize(8), bus.WithWorkerCount(2))
		c := &collector{}
		b.Subscribe("collector", c.handle)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		b.Start(ctx)

		Convey("When events are published and the bus is closed", func() {
			for i := 0; i < 5; i++ {
				So(b.Publish(ctx, events.LoginStarted{Provider: model.Google}), ShouldBeNil)
			}
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer closeCancel()

			So(b.Close(closeCtx), ShouldBeNil)

			Convey("Then every queued event reached the subscriber", func() {
				So(c.len(), ShouldEqual, 5)
				So(b.Stats().Mode, ShouldEqual, "async")
				So(b.Stats().Pending, ShouldEqual, 0)
			})

			Convey("Then later publishes are rejected", func() {
				So(b.Publish(ctx, events.UserRating{}), ShouldEqual, bus.ErrClosed)
			})
		})
	})

	Convey("Given an async bus whose workers are not running", t, func() {
		_ = logging.Init()

		b := bus.NewAsync(bus.WithQueueSize(2), bus.WithWorkerCount(1))
		ctx := context.Background()

		Convey("When the queue fills up", func() {
			So(b.Publish(ctx, events.UserRating{}), ShouldBeNil)
			So(b.Publish(ctx, events.UserRating{}), ShouldBeNil)
			err := b.Publish(ctx, events.UserRating{})

			Convey("Then the publisher sees backpressure", func() {
				So(errors.Is(err, bus.ErrBackpressure), ShouldBeTrue)
				So(b.Stats().Pending, ShouldEqual, 2)
			})
		})
	})
}
