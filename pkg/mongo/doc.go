// Package mongo connects to MongoDB with the official v2 driver and provides
// a ledger.Store backed by it.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := mongo.NewLedgerStore(db)
//
// Entries live in the ledger_entries collection keyed by their ledger key.
// Events are appended to ledger_events under a sequence number reserved from
// ledger_counters in the same transaction. Multi-document transactions
// require a replica set or sharded cluster; a standalone server rejects Apply.
//
// LedgerStore.Healthcheck pings the primary for the readiness endpoint.
package mongo
