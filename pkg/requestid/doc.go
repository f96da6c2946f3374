// Package requestid correlates an HTTP request with the logs and ledger events
// it produces.
//
// Middleware accepts a client supplied X-Request-ID when it is 1-128
// characters of letters, digits, '_' or '-', and otherwise generates a UUIDv7.
// The id is stored in the request context, echoed in the response header and
// picked up by LoggerExtractor and by the contract when it stamps events.
//
//	r.Use(requestid.Middleware)
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
