package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chainpe/payvalidator/pkg/auth"
)

// Tx is the view of the ledger given to one invocation.
// It is not safe for use outside the Invoke callback that received it.
type Tx struct {
	invocation  string
	store       Store
	authorizer  Authorizer
	now         time.Time
	writes      map[string][]byte
	order       []string
	events      []Event
	diagnostics []Event
}

func newTx(invocation string, store Store, authorizer Authorizer, now time.Time) *Tx {
	return &Tx{
		invocation: invocation,
		store:      store,
		authorizer: authorizer,
		now:        now,
		writes:     make(map[string][]byte),
	}
}

// Invocation returns the name the invocation was started with.
func (tx *Tx) Invocation() string {
	return tx.invocation
}

// Now returns the ledger timestamp, fixed for the whole invocation.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// RequireAuth asks the host authorizer whether p authorized this invocation.
func (tx *Tx) RequireAuth(ctx context.Context, p auth.Principal) error {
	return tx.authorizer.RequireAuth(ctx, p)
}

// Get returns the value for key, seeing this invocation's own writes first.
func (tx *Tx) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := tx.writes[key]; ok {
		return v, nil
	}
	return tx.store.Get(ctx, key)
}

// Has reports whether key holds a value.
func (tx *Tx) Has(ctx context.Context, key string) (bool, error) {
	_, err := tx.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GetJSON decodes the value for key into v. It returns false when the key is empty.
func (tx *Tx) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, err := tx.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.Join(ErrEncoding, err)
	}
	return true, nil
}

// Set buffers a write. It becomes visible to other invocations only on commit.
func (tx *Tx) Set(key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, seen := tx.writes[key]; !seen {
		tx.order = append(tx.order, key)
	}
	tx.writes[key] = append([]byte(nil), value...)
	return nil
}

// SetJSON encodes v and buffers it under key.
func (tx *Tx) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncoding, err)
	}
	return tx.Set(key, raw)
}

// Emit buffers a contract event. It is persisted and published only if the
// invocation commits.
func (tx *Tx) Emit(topic string, payload any) error {
	ev, err := tx.newEvent(topic, payload, false)
	if err != nil {
		return err
	}
	tx.events = append(tx.events, ev)
	return nil
}

// EmitDiagnostic records an event that is published whatever the outcome of
// the invocation and is never persisted.
func (tx *Tx) EmitDiagnostic(topic string, payload any) error {
	ev, err := tx.newEvent(topic, payload, true)
	if err != nil {
		return err
	}
	tx.diagnostics = append(tx.diagnostics, ev)
	return nil
}

func (tx *Tx) newEvent(topic string, payload any, diagnostic bool) (Event, error) {
	ev := Event{
		ID:         uuid.NewString(),
		Topic:      topic,
		Invocation: tx.invocation,
		Diagnostic: diagnostic,
		EmittedAt:  tx.now,
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errors.Join(ErrEncoding, err)
		}
		ev.Payload = raw
	}
	return ev, nil
}

func (tx *Tx) changeSet() ChangeSet {
	cs := ChangeSet{Events: tx.events}
	for _, key := range tx.order {
		cs.Writes = append(cs.Writes, Write{Key: key, Value: tx.writes[key]})
	}
	return cs
}
