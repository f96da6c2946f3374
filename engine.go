package payvalidator

import (
	"context"
	"math/big"

	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/statemachine"
)

// Validate checks an observed payment against the session for memo and
// consumes the session when the amount is sufficient.
//
// It fails with ErrSessionNotFound for unknown memos, ErrSessionExpired for
// consumed sessions and ErrInsufficientAmount when observed is below the
// registered minimum; in the last case the session stays active. A session
// is consumed by at most one successful call.
func (c *Contract) Validate(ctx context.Context, memo string, observed *big.Int) (bool, error) {
	err := c.host.Invoke(ctx, "validate", func(ctx context.Context, tx *ledger.Tx) error {
		if err := requireBackend(ctx, tx); err != nil {
			return err
		}
		if err := checkMemo(memo); err != nil {
			return err
		}
		if err := checkAmount("amount", observed, false); err != nil {
			return err
		}

		session, found, err := loadSession(ctx, tx, memo)
		if err != nil {
			return err
		}
		if !found {
			return ErrSessionNotFound
		}

		next, err := lifecycle.Fire(ctx, stateOf(session, true), eventValidate, transitionInput{
			session:  session,
			observed: observed,
		})
		switch {
		case statemachine.IsNoTransitionAvailableError(err):
			if err := emitDiagnostic(ctx, tx, Notification{Topic: TopicExpired, Memo: memo}); err != nil {
				return err
			}
			return ErrSessionExpired
		case statemachine.IsTransitionRejectedError(err):
			if err := emitDiagnostic(ctx, tx, Notification{
				Topic:    TopicInsufficient,
				Memo:     memo,
				Amount:   observed,
				Expected: session.Amount,
			}); err != nil {
				return err
			}
			return ErrInsufficientAmount
		case err != nil:
			return err
		}

		session.IsActive = next == StateActive
		if err := saveSession(tx, session); err != nil {
			return err
		}
		return emit(ctx, tx, Notification{
			Topic:    TopicValidated,
			Memo:     memo,
			Merchant: session.Merchant,
			Amount:   observed,
		})
	})

	c.logOutcome(ctx, "validate", err, logger.Memo(memo), logger.Amount(observed))
	if err != nil {
		return false, err
	}
	return true, nil
}

// Deactivate ends the session for memo without a payment. Deactivating an
// already consumed session succeeds and emits the event again.
func (c *Contract) Deactivate(ctx context.Context, memo string) error {
	err := c.host.Invoke(ctx, "deactivate", func(ctx context.Context, tx *ledger.Tx) error {
		if err := requireBackend(ctx, tx); err != nil {
			return err
		}
		if err := checkMemo(memo); err != nil {
			return err
		}

		session, found, err := loadSession(ctx, tx, memo)
		if err != nil {
			return err
		}
		if !found {
			return ErrSessionNotFound
		}

		next, err := lifecycle.Fire(ctx, stateOf(session, true), eventDeactivate, transitionInput{session: session})
		if err != nil {
			return err
		}

		session.IsActive = next == StateActive
		if err := saveSession(tx, session); err != nil {
			return err
		}
		return emit(ctx, tx, Notification{Topic: TopicDeactivated, Memo: memo})
	})

	c.logOutcome(ctx, "deactivate", err, logger.Memo(memo))
	return err
}
