// Package pg connects to PostgreSQL with pgx/v5 and provides a ledger.Store
// backed by it.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//	store := pg.NewLedgerStore(pool)
//
// Migrate applies the schema embedded under migrations/ with goose. The
// ledger_entries table holds one row per key; ledger_events is ordered by a
// serial column so Events returns the log in commit order. Apply sends every
// upsert and insert of a change set as one batch inside a single transaction.
//
// LedgerStore.Healthcheck pings the pool and fails until the schema exists.
package pg
