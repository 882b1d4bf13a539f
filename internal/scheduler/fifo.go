package scheduler

import (
	"context"
	"sync"
)

// fifo is an unbounded queue. push never blocks; pop blocks until an item
// arrives, the queue is closed and drained, or ctx ends.
type fifo[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
}

func newFIFO[T any]() *fifo[T] {
	return &fifo[T]{signal: make(chan struct{}, 1)}
}

func (q *fifo[T]) push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	q.notifyLocked()
	return true
}

func (q *fifo[T]) pop(ctx context.Context) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			if len(q.items) > 0 {
				q.notifyLocked()
			}
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.mu.Unlock()
			return zero, false
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return zero, false
		case <-q.signal:
		}
	}
}

// drain removes and returns everything still queued.
func (q *fifo[T]) drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *fifo[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// notifyLocked wakes one waiter; mu must be held.
func (q *fifo[T]) notifyLocked() {
	if q.closed {
		return
	}
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
