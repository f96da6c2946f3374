// Package auth provides the principal model and the signature-based
// authorization capability used by the payment-session contract.
//
// A Principal is the textual form of an ed25519 public key encoded as a
// Stellar-style strkey ("G..." account address). Keypairs can be generated,
// serialized as a secret seed ("S...") and used to sign arbitrary messages or
// outgoing HTTP requests.
//
// # Architecture
//
// The package is split into three layers:
//
//   - principal.go / strkey.go – parsing, encoding and checksum validation.
//   - keypair.go / signature.go – key generation, signing and verification.
//   - request.go / middleware.go / context.go – signed HTTP requests. The
//     middleware verifies the X-Principal, X-Timestamp, X-Nonce and
//     X-Signature headers and records the authenticated principal in the
//     request context.
//
// The signed payload is METHOD, PATH, unix timestamp, nonce and the hex
// SHA-256 of the body, joined by newlines. A nonce is claimed in a NonceStore
// only after the signature checks out, so a captured request cannot be
// replayed while its timestamp is still inside the skew window. Bodies are
// read through a size cap before hashing.
//
// ContextAuthorizer closes the loop: it satisfies ledger.Authorizer by checking
// that the principal required by the contract is among the signers recorded in
// the context.
//
// # Usage
//
//	kp, _ := auth.GenerateKeypair()
//	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
//	if err := auth.SignRequest(req, kp, time.Now()); err != nil {
//	    return err
//	}
//
// Server side:
//
//	r.Use(auth.Middleware(
//	    auth.WithMaxSkew(5*time.Minute),
//	    auth.WithMaxBodySize(1<<20),
//	    auth.WithNonceStore(redis.NewNonceStore(client, "payvalidator:nonce:")),
//	))
//
// # Error Handling
//
// All failures are reported with package sentinels (ErrInvalidPrincipal,
// ErrSignatureInvalid, ErrTimestampSkew, ErrReplayedRequest, ErrBodyTooLarge,
// ErrNotSigned, ...) that can be matched with errors.Is.
package auth
