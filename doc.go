// Package payvalidator adjudicates payment sessions on a ledger host.
//
// A single backend principal is bootstrapped once. The backend then registers
// payment sessions, each keyed by a memo and naming a merchant and a minimum
// amount, and later reports observed payments. A session is satisfied at most
// once: the first report that meets the amount consumes it, and every later
// report fails with ErrSessionExpired.
//
// Every operation runs as one ledger.Host invocation, so it either commits all
// of its writes and events or none of them.
//
//	host := ledger.NewHost(ledger.NewMemoryStore(),
//	    ledger.WithAuthorizer(auth.ContextAuthorizer{}),
//	)
//	c := payvalidator.New(host, payvalidator.WithLogger(log))
//
//	_ = c.Bootstrap(ctx, backend)
//	ctx = auth.WithSigner(ctx, backend)
//	_ = c.Register(ctx, "pay_test123", merchant, big.NewInt(100))
//	ok, err := c.Validate(ctx, "pay_test123", big.NewInt(100))
//
// # Errors
//
// Contract failures are Error values with a stable numeric Code. Compare them
// with errors.Is; CodeOf extracts the code from any wrapped error. Storage
// failures are not Error values and carry ledger.ErrCommitFailed instead.
//
// # Events
//
// Successful operations emit registered, validated and deactivated events that
// are persisted with the commit. Rejected validations emit expired and
// insufficient as diagnostic events: live subscribers see them but they are
// never written to the event log.
package payvalidator
