package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chainpe/payvalidator/pkg/broadcast"
	"github.com/chainpe/payvalidator/pkg/logger"
)

// Host runs contract invocations one at a time against a Store.
//
// Each invocation sees a consistent snapshot plus its own buffered writes.
// When the callback returns nil the writes and events are applied to the
// store in one step and the events are published to subscribers. When it
// returns an error nothing is applied; only diagnostic events are published.
type Host struct {
	store       Store
	clock       Clock
	authorizer  Authorizer
	logger      *slog.Logger
	broadcaster broadcast.Broadcaster[Event]
	ownsBus     bool

	mu     sync.Mutex
	closed bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithClock sets the source of ledger timestamps. Defaults to SystemClock.
func WithClock(c Clock) HostOption {
	return func(h *Host) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithAuthorizer sets the authorization check used by Tx.RequireAuth.
// Without one, every authorization request is rejected.
func WithAuthorizer(a Authorizer) HostOption {
	return func(h *Host) {
		if a != nil {
			h.authorizer = a
		}
	}
}

// WithLogger sets the logger for commit failures and invocation traces.
func WithLogger(l *slog.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithBroadcaster publishes events through b instead of a private in-memory
// broadcaster. The caller keeps ownership of b.
func WithBroadcaster(b broadcast.Broadcaster[Event]) HostOption {
	return func(h *Host) {
		if b != nil {
			h.broadcaster = b
			h.ownsBus = false
		}
	}
}

// NewHost creates a Host over store.
func NewHost(store Store, opts ...HostOption) *Host {
	h := &Host{
		store:      store,
		clock:      SystemClock{},
		authorizer: denyAll,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.broadcaster == nil {
		h.broadcaster = broadcast.NewMemory[Event](64)
		h.ownsBus = true
	}
	return h
}

// Invoke runs fn as a single atomic invocation named name.
func (h *Host) Invoke(ctx context.Context, name string, fn func(ctx context.Context, tx *Tx) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	start := time.Now()
	tx := newTx(name, h.store, h.authorizer, h.clock.Now())
	err := fn(ctx, tx)

	h.publish(ctx, tx.diagnostics)

	if err != nil {
		h.logger.DebugContext(ctx, "invocation aborted",
			logger.Invocation(name),
			logger.Error(err),
			logger.Duration(time.Since(start)),
		)
		return err
	}

	cs := tx.changeSet()
	if !cs.Empty() {
		if err := h.store.Apply(ctx, cs); err != nil {
			h.logger.ErrorContext(ctx, "commit failed",
				logger.Invocation(name),
				logger.Error(err),
			)
			return errors.Join(ErrCommitFailed, err)
		}
	}

	h.publish(ctx, cs.Events)

	h.logger.DebugContext(ctx, "invocation committed",
		logger.Invocation(name),
		slog.Int("writes", len(cs.Writes)),
		slog.Int("events", len(cs.Events)),
		logger.Duration(time.Since(start)),
	)
	return nil
}

// View runs fn against the committed state. Writes and events buffered by fn
// are discarded.
func (h *Host) View(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}
	return fn(ctx, newTx("view", h.store, h.authorizer, h.clock.Now()))
}

func (h *Host) publish(ctx context.Context, events []Event) {
	for _, ev := range events {
		if err := h.broadcaster.Publish(ctx, ev); err != nil {
			h.logger.WarnContext(ctx, "event publish failed",
				logger.Topic(ev.Topic),
				logger.Error(err),
			)
		}
	}
}

// Subscribe returns a live feed of events published after the call.
// The subscription ends when ctx is cancelled.
func (h *Host) Subscribe(ctx context.Context, filters ...broadcast.Filter[Event]) broadcast.Subscriber[Event] {
	return h.broadcaster.Subscribe(ctx, filters...)
}

// Events returns persisted events from the store.
func (h *Host) Events(ctx context.Context, offset, limit int) ([]Event, error) {
	return h.store.Events(ctx, offset, limit)
}

// Now returns the current ledger time.
func (h *Host) Now() time.Time {
	return h.clock.Now()
}

// Close stops accepting invocations and closes the broadcaster when the
// host created it.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if h.ownsBus {
		return h.broadcaster.Close()
	}
	return nil
}
