package payvalidator

import (
	"context"
	"errors"
	"math/big"

	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/statemachine"
	"github.com/chainpe/payvalidator/pkg/validator"
)

// Register creates an active session for memo. The caller must be authorized
// by the backend principal.
//
// Registering over a consumed session replaces it. Registering over an active
// one fails with ErrSessionActive unless the contract was built with
// WithReplaceActive.
func (c *Contract) Register(ctx context.Context, memo string, merchant auth.Principal, amount *big.Int) error {
	err := c.host.Invoke(ctx, "register", func(ctx context.Context, tx *ledger.Tx) error {
		if err := requireBackend(ctx, tx); err != nil {
			return err
		}
		if err := checkMemo(memo); err != nil {
			return err
		}
		if err := validator.Apply(validator.ValidPrincipal("merchant", merchant.String())); err != nil {
			return errors.Join(ErrInvalidMerchant, err)
		}
		if err := checkAmount("amount", amount, true); err != nil {
			return err
		}

		current, found, err := loadSession(ctx, tx, memo)
		if err != nil {
			return err
		}
		_, err = lifecycle.Fire(ctx, stateOf(current, found), eventRegister, transitionInput{
			session:       current,
			replaceActive: c.replaceActive,
		})
		if statemachine.IsTransitionRejectedError(err) {
			return ErrSessionActive
		}
		if err != nil {
			return err
		}

		session := PaymentSession{
			Memo:      memo,
			Merchant:  merchant,
			Amount:    new(big.Int).Set(amount),
			IsActive:  true,
			CreatedAt: tx.Now(),
		}
		if err := saveSession(tx, session); err != nil {
			return err
		}
		return emit(ctx, tx, Notification{
			Topic:    TopicRegistered,
			Memo:     memo,
			Merchant: merchant,
			Amount:   session.Amount,
		})
	})

	c.logOutcome(ctx, "register", err,
		logger.Memo(memo),
		logger.Merchant(merchant.String()),
		logger.Amount(amount),
	)
	return err
}

// Fetch returns the session stored for memo. The boolean is false when no
// session exists. Memos outside the memo policy (1 to 28 bytes of ASCII
// letters, digits, '_' or '-') can never be registered, so Fetch reports
// them as not found without reading the ledger.
func (c *Contract) Fetch(ctx context.Context, memo string) (PaymentSession, bool, error) {
	var (
		session PaymentSession
		found   bool
	)
	if checkMemo(memo) != nil {
		return session, false, nil
	}
	err := c.host.View(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		var err error
		session, found, err = loadSession(ctx, tx, memo)
		return err
	})
	return session, found, err
}

func loadSession(ctx context.Context, tx *ledger.Tx, memo string) (PaymentSession, bool, error) {
	var s PaymentSession
	found, err := tx.GetJSON(ctx, ledger.PersistentKey(memo), &s)
	return s, found, err
}

func saveSession(tx *ledger.Tx, s PaymentSession) error {
	return tx.SetJSON(ledger.PersistentKey(s.Memo), s)
}

func checkMemo(memo string) error {
	if err := validator.Apply(validator.ValidMemo("memo", memo)); err != nil {
		return errors.Join(ErrInvalidMemo, err)
	}
	return nil
}

// checkAmount validates a 128-bit amount. Registered minimums must also be
// non-negative; observed amounts are compared as reported.
func checkAmount(field string, v *big.Int, nonNegative bool) error {
	rules := []validator.Rule{
		validator.RequiredBigInt(field, v),
		validator.Int128(field, v),
	}
	if nonNegative {
		rules = append(rules, validator.NonNegativeBigInt(field, v))
	}
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidAmount, err)
	}
	return nil
}
