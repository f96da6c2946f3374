package auth

import (
	"context"
	"slices"
)

type signersKey struct{}

// WithSigner records p as a signer of the current invocation.
// Existing signers are preserved.
func WithSigner(ctx context.Context, p Principal) context.Context {
	existing := SignersFromContext(ctx)
	if slices.Contains(existing, p) {
		return ctx
	}
	signers := make([]Principal, 0, len(existing)+1)
	signers = append(signers, existing...)
	signers = append(signers, p)
	return context.WithValue(ctx, signersKey{}, signers)
}

// SignersFromContext returns every principal that signed the current invocation.
func SignersFromContext(ctx context.Context) []Principal {
	if ctx == nil {
		return nil
	}
	signers, _ := ctx.Value(signersKey{}).([]Principal)
	return signers
}

// IsSignedBy reports whether p signed the current invocation.
func IsSignedBy(ctx context.Context, p Principal) bool {
	return slices.Contains(SignersFromContext(ctx), p)
}

// ContextAuthorizer authorizes a principal when it is among the signers
// recorded in the context by Middleware or WithSigner.
type ContextAuthorizer struct{}

// RequireAuth returns ErrNotSigned unless p signed the invocation.
func (ContextAuthorizer) RequireAuth(ctx context.Context, p Principal) error {
	if p == "" || !IsSignedBy(ctx, p) {
		return ErrNotSigned
	}
	return nil
}
