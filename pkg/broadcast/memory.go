package broadcast

import (
	"context"
	"sync"
)

// Memory is an in-process Broadcaster. All methods are safe for concurrent use.
type Memory[T any] struct {
	subscribers map[*subscriber[T]]struct{}
	bufferSize  int
	closed      bool
	mu          sync.RWMutex
}

// NewMemory creates a broadcaster whose subscribers buffer up to bufferSize values.
// A minimum buffer of 1 is enforced.
func NewMemory[T any](bufferSize int) *Memory[T] {
	return &Memory[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

// Subscribe registers a subscriber that receives every published value
// accepted by all filters. The subscription ends when ctx is cancelled.
// Subscribing to a closed broadcaster returns an already-closed subscriber.
func (b *Memory[T]) Subscribe(ctx context.Context, filters ...Filter[T]) Subscriber[T] {
	sub := newSubscriber(b.bufferSize, filters)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Publish delivers v to all subscribers without blocking.
// Closed subscribers are pruned; publishing after Close is a no-op.
func (b *Memory[T]) Publish(_ context.Context, v T) error {
	b.mu.RLock()
	var stale []*subscriber[T]
	if !b.closed {
		for sub := range b.subscribers {
			if !sub.send(v) {
				stale = append(stale, sub)
			}
		}
	}
	b.mu.RUnlock()

	for _, sub := range stale {
		b.unsubscribe(sub)
	}
	return nil
}

// Len returns the number of active subscribers.
func (b *Memory[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber. Safe to call more than once.
func (b *Memory[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()
	return nil
}

func (b *Memory[T]) unsubscribe(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
	_ = sub.Close()
}
