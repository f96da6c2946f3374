package auth

import "errors"

// Principal and key errors
var (
	ErrInvalidPrincipal = errors.New("invalid principal")
	ErrInvalidSeed      = errors.New("invalid secret seed")
	ErrInvalidChecksum  = errors.New("strkey checksum mismatch")
)

// Signature errors
var (
	ErrSignatureInvalid  = errors.New("signature mismatch")
	ErrMissingHeaders    = errors.New("missing signature headers")
	ErrIncompleteHeaders = errors.New("incomplete signature headers")
	ErrInvalidTimestamp  = errors.New("invalid request timestamp")
	ErrTimestampSkew     = errors.New("request timestamp outside allowed window")
	ErrInvalidNonce      = errors.New("request nonce must be 16-128 characters of letters, digits, '_' or '-'")
	ErrReplayedRequest   = errors.New("request nonce already used")
	ErrBodyTooLarge      = errors.New("signed request body exceeds the size limit")
	ErrNotSigned         = errors.New("invocation is not signed by required principal")
)
