package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/profilebridge/internal/domain/events"
	"github.com/okian/profilebridge/internal/domain/model"
)

func item(id string) Item {
	return Item{ID: id, Event: events.LogoutStarted{Provider: model.Twitter}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, item("a")); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "a" {
		t.Errorf("expected a, got %v", got.ID)
	}
	if got.EnqueuedAt.IsZero() {
		t.Error("expected enqueue time to be stamped")
	}
	if got.Event.Kind() != events.KindLogoutStarted {
		t.Errorf("unexpected kind %v", got.Event.Kind())
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, item(id)); err != nil {
			t.Fatalf("expected enqueue to succeed: %v", err)
		}
	}

	err := q.Enqueue(ctx, item("c"))
	if !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Len() != 2 || q.Cap() != 2 {
		t.Errorf("expected len 2 cap 2, got %d %d", q.Len(), q.Cap())
	}
}

func TestInMemoryQueue_FIFO(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(ctx, item(fmt.Sprint(i))); err != nil {
			t.Fatal(err)
		}
	}
	_ = q.Close()

	var order []string
	for it := range q.Dequeue(ctx) {
		order = append(order, it.ID)
	}
	if fmt.Sprint(order) != "[0 1 2 3 4]" {
		t.Errorf("unexpected order %v", order)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	if err := q.Enqueue(ctx, item("kept")); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if err := q.Enqueue(ctx, item("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	ch := q.Dequeue(ctx)
	if it, ok := <-ch; !ok || it.ID != "kept" {
		t.Errorf("expected queued item to drain after close, got %v %v", it.ID, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to close after drain")
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, item("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const producers, perProducer = 10, 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, item(fmt.Sprintf("%d-%d", p, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(p)
	}

	received := 0
	ch := q.Dequeue(ctx)
	go func() {
		wg.Wait()
		_ = q.Close()
	}()
	for range ch {
		received++
	}
	if received != producers*perProducer {
		t.Errorf("expected %d items, got %d", producers*perProducer, received)
	}
}
