// Package handler exposes the payment-session contract as a JSON HTTP API.
//
// Handlers are typed: Wrap binds the request into a struct with the
// configured binders (JSON body, chi path parameters, query string), calls
// the HandlerFunc and renders its Response. Failures go to an ErrorHandler
// that writes the {"error": {...}} envelope and maps contract error codes to
// HTTP statuses.
//
// NewAPI wires the routes:
//
//	GET  /v1/backend
//	POST /v1/bootstrap
//	POST /v1/sessions
//	GET  /v1/sessions/{memo}
//	POST /v1/sessions/{memo}/validate
//	POST /v1/sessions/{memo}/deactivate
//	GET  /v1/sessions/{memo}/qr.png
//	GET  /v1/events         (text/event-stream)
//	GET  /v1/events/log
//	GET  /health/live, /health/ready
//
// Routes under /v1 may be rate limited per signer or client address.
//
// Mutating routes require the X-Principal, X-Timestamp, X-Nonce and X-Signature
// headers produced by auth.SignRequest for the backend keypair. Each signed
// request is accepted once.
package handler
