package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
)

// Filter selects which values a subscriber receives. A nil filter accepts everything.
type Filter[T any] func(T) bool

// Subscriber receives values from a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive() <-chan T

	// Dropped returns how many values were skipped because the buffer was full.
	Dropped() uint64

	// Close ends the subscription. It is idempotent.
	Close() error
}

// Broadcaster sends values to every matching subscriber.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context, filters ...Filter[T]) Subscriber[T]
	Publish(ctx context.Context, v T) error
	Close() error
}

type subscriber[T any] struct {
	ch      chan T
	done    chan struct{}
	filters []Filter[T]
	dropped atomic.Uint64
	closed  bool
	mu      sync.RWMutex
}

func newSubscriber[T any](bufferSize int, filters []Filter[T]) *subscriber[T] {
	clean := make([]Filter[T], 0, len(filters))
	for _, f := range filters {
		if f != nil {
			clean = append(clean, f)
		}
	}
	return &subscriber[T]{
		ch:      make(chan T, bufferSize),
		done:    make(chan struct{}),
		filters: clean,
	}
}

func (s *subscriber[T]) Receive() <-chan T {
	return s.ch
}

func (s *subscriber[T]) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *subscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
	return nil
}

func (s *subscriber[T]) accepts(v T) bool {
	for _, f := range s.filters {
		if !f(v) {
			return false
		}
	}
	return true
}

// send delivers v without blocking. It returns false only when the
// subscriber is closed.
func (s *subscriber[T]) send(v T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	if !s.accepts(v) {
		return true
	}

	select {
	case s.ch <- v:
	default:
		s.dropped.Add(1)
	}
	return true
}
