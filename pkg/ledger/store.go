package ledger

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Key space prefixes.
const (
	instancePrefix   = "instance:"
	persistentPrefix = "session:"
)

// InstanceKey addresses a singleton slot scoped to the deployed instance.
func InstanceKey(name string) string {
	return instancePrefix + name
}

// PersistentKey addresses a record in the persistent key space.
func PersistentKey(name string) string {
	return persistentPrefix + name
}

// IsPersistentKey reports whether key belongs to the persistent key space.
func IsPersistentKey(key string) bool {
	return strings.HasPrefix(key, persistentPrefix)
}

// Event is a notification produced by an invocation.
type Event struct {
	ID         string          `json:"id"`
	Topic      string          `json:"topic"`
	Invocation string          `json:"invocation"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Diagnostic bool            `json:"diagnostic,omitempty"`
	EmittedAt  time.Time       `json:"emitted_at"`
}

// Write is a single buffered key-value assignment.
type Write struct {
	Key   string
	Value []byte
}

// ChangeSet is everything a successful invocation commits.
type ChangeSet struct {
	Writes []Write
	Events []Event
}

// Empty reports whether there is nothing to commit.
func (cs ChangeSet) Empty() bool {
	return len(cs.Writes) == 0 && len(cs.Events) == 0
}

// Store persists ledger state. Implementations must apply a ChangeSet
// atomically: either every write and event becomes visible or none does.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Apply commits writes and appends events in one atomic step.
	Apply(ctx context.Context, cs ChangeSet) error

	// Events returns up to limit persisted events in append order,
	// skipping the first offset entries. A limit <= 0 means no limit.
	Events(ctx context.Context, offset, limit int) ([]Event, error)
}
