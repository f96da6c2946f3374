package ledger

import (
	"context"
	"errors"

	"github.com/chainpe/payvalidator/pkg/auth"
)

// Authorizer verifies that the current invocation is authorized by a principal.
type Authorizer interface {
	RequireAuth(ctx context.Context, p auth.Principal) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, p auth.Principal) error

func (f AuthorizerFunc) RequireAuth(ctx context.Context, p auth.Principal) error {
	return f(ctx, p)
}

// errNoAuthorizer is what the default authorizer reports.
var errNoAuthorizer = errors.New("ledger: no authorizer configured")

// denyAll rejects every authorization request. It is the default so that a
// misconfigured host fails closed.
var denyAll = AuthorizerFunc(func(context.Context, auth.Principal) error {
	return errNoAuthorizer
})
