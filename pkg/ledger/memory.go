package ledger

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps ledger state in process memory. It is safe for concurrent
// use and returns copies so callers cannot mutate stored values.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	events  []Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *MemoryStore) Apply(ctx context.Context, cs ChangeSet) error {
	for _, w := range cs.Writes {
		if w.Key == "" {
			return ErrEmptyKey
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range cs.Writes {
		m.entries[w.Key] = bytes.Clone(w.Value)
	}
	for _, ev := range cs.Events {
		ev.Payload = bytes.Clone(ev.Payload)
		m.events = append(m.events, ev)
	}
	return nil
}

func (m *MemoryStore) Events(ctx context.Context, offset, limit int) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lo, hi := window(len(m.events), offset, limit)
	out := make([]Event, 0, hi-lo)
	for _, ev := range m.events[lo:hi] {
		ev.Payload = bytes.Clone(ev.Payload)
		out = append(out, ev)
	}
	return out, nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// window clamps offset and limit to a slice of length n.
func window(n, offset, limit int) (int, int) {
	lo := min(max(offset, 0), n)
	hi := n
	if limit > 0 {
		hi = min(lo+limit, n)
	}
	return lo, hi
}
