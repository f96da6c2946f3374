package payvalidator

import (
	"context"
	"errors"

	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
)

var backendKey = ledger.InstanceKey("BACKEND")

// Bootstrap stores the backend principal. It succeeds once; every later call
// fails with ErrAlreadyInitialized and changes nothing. The first call needs
// no authorization.
func (c *Contract) Bootstrap(ctx context.Context, backend auth.Principal) error {
	if !backend.Valid() {
		return auth.ErrInvalidPrincipal
	}

	err := c.host.Invoke(ctx, "bootstrap", func(ctx context.Context, tx *ledger.Tx) error {
		exists, err := tx.Has(ctx, backendKey)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInitialized
		}
		return tx.SetJSON(backendKey, backend)
	})

	c.logOutcome(ctx, "bootstrap", err, logger.Principal(backend.String()))
	return err
}

// Backend returns the bootstrapped principal, or ErrUnauthorized before
// bootstrap.
func (c *Contract) Backend(ctx context.Context) (auth.Principal, error) {
	var backend auth.Principal
	err := c.host.View(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		var err error
		backend, err = loadBackend(ctx, tx)
		return err
	})
	return backend, err
}

// Initialized reports whether a backend principal has been stored.
func (c *Contract) Initialized(ctx context.Context) (bool, error) {
	_, err := c.Backend(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnauthorized):
		return false, nil
	default:
		return false, err
	}
}

func loadBackend(ctx context.Context, tx *ledger.Tx) (auth.Principal, error) {
	var backend auth.Principal
	found, err := tx.GetJSON(ctx, backendKey, &backend)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrUnauthorized
	}
	return backend, nil
}

// requireBackend fails with ErrUnauthorized unless the invocation was
// authorized by the stored backend principal.
func requireBackend(ctx context.Context, tx *ledger.Tx) error {
	backend, err := loadBackend(ctx, tx)
	if err != nil {
		return err
	}
	if err := tx.RequireAuth(ctx, backend); err != nil {
		return errors.Join(ErrUnauthorized, err)
	}
	return nil
}
