// Package broadcast fans out values to live, in-process subscribers.
//
// The ledger host uses it to deliver committed and diagnostic events to
// observers such as the SSE endpoint or the OpenSearch indexer. Delivery is
// fire-and-forget: a subscriber whose buffer is full misses the value (and the
// miss is counted) rather than blocking the publisher, so a slow observer can
// never stall an invocation.
//
// Basic usage:
//
//	b := broadcast.NewMemory[ledger.Event](64)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx, func(ev ledger.Event) bool { return ev.Topic == "validated" })
//	defer sub.Close()
//
//	for ev := range sub.Receive() {
//	    fmt.Println(ev.Topic)
//	}
//
// Subscriptions are removed automatically when their context is cancelled or
// when the broadcaster is closed.
package broadcast
