package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/chainpe/payvalidator/pkg/ledger"
)

// LedgerStore implements ledger.Store on Redis. Entries are plain string keys
// under the prefix; the event log is a list at <prefix>events. Apply runs in
// a MULTI/EXEC block so writes and events land together.
type LedgerStore struct {
	client redis.UniversalClient
	prefix string
}

// NewLedgerStore creates a store using keys under prefix.
func NewLedgerStore(client redis.UniversalClient, prefix string) *LedgerStore {
	return &LedgerStore{client: client, prefix: prefix}
}

func (s *LedgerStore) key(k string) string {
	return s.prefix + "entry:" + k
}

func (s *LedgerStore) eventsKey() string {
	return s.prefix + "events"
}

func (s *LedgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ledger.ErrEmptyKey
	}
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *LedgerStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	events := make([]any, 0, len(cs.Events))
	for _, ev := range cs.Events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return errors.Join(ledger.ErrEncoding, err)
		}
		events = append(events, raw)
	}
	for _, w := range cs.Writes {
		if w.Key == "" {
			return ledger.ErrEmptyKey
		}
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, w := range cs.Writes {
			pipe.Set(ctx, s.key(w.Key), w.Value, 0)
		}
		if len(events) > 0 {
			pipe.RPush(ctx, s.eventsKey(), events...)
		}
		return nil
	})
	return err
}

func (s *LedgerStore) Events(ctx context.Context, offset, limit int) ([]ledger.Event, error) {
	start := int64(max(offset, 0))
	stop := int64(-1)
	if limit > 0 {
		stop = start + int64(limit) - 1
	}

	items, err := s.client.LRange(ctx, s.eventsKey(), start, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Event, 0, len(items))
	for _, item := range items {
		var ev ledger.Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, errors.Join(ErrCorruptEvent, err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// Healthcheck pings the server.
func (s *LedgerStore) Healthcheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}
