package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainpe/payvalidator/pkg/ledger"
)

const (
	selectEntry = `SELECT value FROM ledger_entries WHERE key = $1`
	upsertEntry = `INSERT INTO ledger_entries (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	insertEvent = `INSERT INTO ledger_events (id, topic, invocation, payload, emitted_at) VALUES ($1, $2, $3, $4, $5)`
	selectEvents = `SELECT id, topic, invocation, payload, emitted_at FROM ledger_events
		ORDER BY seq OFFSET $1 LIMIT $2`
	selectSchema = `SELECT to_regclass('ledger_entries') IS NOT NULL AND to_regclass('ledger_events') IS NOT NULL`
)

// LedgerStore implements ledger.Store on the ledger_entries and ledger_events
// tables created by Migrate. Each Apply runs in one database transaction.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

func (s *LedgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ledger.ErrEmptyKey
	}
	var value []byte
	err := s.pool.QueryRow(ctx, selectEntry, key).Scan(&value)
	if IsNotFoundError(err) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *LedgerStore) Apply(ctx context.Context, cs ledger.ChangeSet) error {
	batch := &pgx.Batch{}
	for _, w := range cs.Writes {
		if w.Key == "" {
			return ledger.ErrEmptyKey
		}
		batch.Queue(upsertEntry, w.Key, w.Value)
	}
	for _, ev := range cs.Events {
		var payload any
		if len(ev.Payload) > 0 {
			payload = string(ev.Payload)
		}
		batch.Queue(insertEvent, ev.ID, ev.Topic, ev.Invocation, payload, ev.EmittedAt)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (s *LedgerStore) Events(ctx context.Context, offset, limit int) ([]ledger.Event, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx, selectEvents, max(offset, 0), lim)
	if err != nil {
		return nil, err
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ledger.Event, error) {
		var ev ledger.Event
		err := row.Scan(&ev.ID, &ev.Topic, &ev.Invocation, &ev.Payload, &ev.EmittedAt)
		ev.EmittedAt = ev.EmittedAt.UTC()
		return ev, err
	})
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return events, nil
}

// Healthcheck pings the pool and confirms the ledger tables exist.
func (s *LedgerStore) Healthcheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	var migrated bool
	if err := s.pool.QueryRow(ctx, selectSchema).Scan(&migrated); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	if !migrated {
		return errors.Join(ErrHealthcheckFailed, ErrSchemaMissing)
	}
	return nil
}
