package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/profilebridge/internal/adapters/mq/queue"
	"github.com/okian/profilebridge/internal/adapters/mq/worker"
	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/internal/domain/model"
	logging "github.com/okian/profilebridge/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan queue.Item
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Item, 16)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Item { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

func (mq *mockQueue) add(id string) {
	mq.ch <- queue.Item{ID: id, Event: events.LogoutFinished{Provider: model.Google}}
}

type recordingDispatcher struct {
	mu   sync.Mutex
	seen []string
	fail map[string]error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, it queue.Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail[it.ID]; err != nil {
		return err
	}
	d.seen = append(d.seen, it.ID)
	return nil
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

func (d *recordingDispatcher) has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.seen {
		if s == id {
			return true
		}
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a queue", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		d := &recordingDispatcher{fail: map[string]error{"bad": errors.New("boom")}}
		w := worker.NewInMemoryWorker(q, d, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When items arrive", func() {
			q.add("a")
			q.add("bad")
			q.add("b")

			convey.So(waitFor(func() bool { return d.count() == 2 }), convey.ShouldBeTrue)

			convey.Convey("Then dispatch failures do not stop the loop", func() {
				convey.So(d.has("a"), convey.ShouldBeTrue)
				convey.So(d.has("b"), convey.ShouldBeTrue)
				convey.So(d.has("bad"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})

		convey.Convey("When the context is cancelled", func() {
			cancel()

			convey.Convey("Then Run returns", func() {
				select {
				case <-w.Done():
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		d := &recordingDispatcher{}
		pool := worker.NewPool(4, q, d)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When items are queued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, queue.Item{ID: fmt.Sprint(i), Event: events.UserRating{}}), convey.ShouldBeNil)
			}

			sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer scancel()
			err := pool.Shutdown(sctx)

			convey.Convey("Then every queued item is dispatched before shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(d.count(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with a default size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, newMockQueue(), worker.DispatchFunc(func(context.Context, queue.Item) error { return nil }))

		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)

		convey.Convey("Then shutting down before start only closes the queue", func() {
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
