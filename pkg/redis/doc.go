// Package redis connects to Redis and provides a ledger.Store backed by it.
//
// Connect parses REDIS_URL, pings the server and retries per Config. The
// returned client feeds NewLedgerStore, whose Healthcheck method serves
// the readiness endpoint:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := redis.NewLedgerStore(client, cfg.KeyPrefix)
//	host := ledger.NewHost(store, ...)
//
// The store writes each change set inside MULTI/EXEC, keeps entries as plain
// string keys and appends events to a single list, so the event log is read
// back with LRANGE in commit order.
//
// NonceStore backs auth.NonceStore with SET NX and a TTL, so replicas sharing
// a Redis reject a signed request that any of them already accepted.
package redis
