// Package ledger is the host runtime the payment-session contract executes on.
//
// It supplies the primitives the contract treats as external collaborators:
//
//   - Store – a replicated key-value space plus an append-only event log.
//     MemoryStore ships here; Redis, PostgreSQL and MongoDB implementations live
//     in their respective pkg/ packages.
//   - Clock – the monotonic ledger clock.
//   - Authorizer – the signature-verification capability ("require auth").
//   - Host – serializes invocations and gives each one a Tx.
//
// # Transactions
//
// Host.Invoke runs a function against a Tx. Reads go through the Tx (seeing the
// invocation's own writes first), writes and events are buffered, and the whole
// change set is applied with a single Store.Apply call only when the function
// returns nil. Any error discards every buffered write and contract event.
//
// Diagnostic events are the exception: they are published to live subscribers
// whatever the outcome and are never persisted. They let observers see why an
// invocation was rejected.
//
//	host := ledger.NewHost(ledger.NewMemoryStore(), ledger.WithAuthorizer(auth.ContextAuthorizer{}))
//	err := host.Invoke(ctx, "register", func(ctx context.Context, tx *ledger.Tx) error {
//	    if err := tx.SetJSON(ledger.PersistentKey("pay_1"), session); err != nil {
//	        return err
//	    }
//	    return tx.Emit("registered", payload)
//	})
//
// Invocations are serialized by the Host, so code running inside a Tx needs no
// locking of its own.
package ledger
