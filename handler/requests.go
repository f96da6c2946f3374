package handler

import (
	"errors"
	"math/big"
	"time"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/amount"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/validator"
)

type BootstrapRequest struct {
	Backend string `json:"backend"`
}

type RegisterRequest struct {
	Memo          string `json:"memo"`
	Merchant      string `json:"merchant"`
	Amount        string `json:"amount,omitempty"`         // base units
	AmountDecimal string `json:"amount_decimal,omitempty"` // whole tokens, up to 7 decimals
}

type MemoRequest struct {
	Memo string `path:"memo" json:"-"`
}

type ValidateRequest struct {
	Memo          string `path:"memo" json:"-"`
	Amount        string `json:"amount,omitempty"`
	AmountDecimal string `json:"amount_decimal,omitempty"`
}

type QRRequest struct {
	Memo string `path:"memo"`
	Size int    `query:"size"`
}

type EventsRequest struct {
	Topics []string `query:"topics"`
	Replay bool     `query:"replay"`
	Since  int      `query:"since"`
}

type EventLogRequest struct {
	Offset int `query:"offset"`
	Limit  int `query:"limit"`
}

// SessionView is the JSON form of a payment session.
type SessionView struct {
	Memo          string         `json:"memo"`
	Merchant      auth.Principal `json:"merchant"`
	Amount        string         `json:"amount"`
	AmountDecimal string         `json:"amount_decimal"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
}

func newSessionView(s payvalidator.PaymentSession) SessionView {
	return SessionView{
		Memo:          s.Memo,
		Merchant:      s.Merchant,
		Amount:        s.Amount.String(),
		AmountDecimal: amount.Format(s.Amount),
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
	}
}

type ValidationView struct {
	Memo  string `json:"memo"`
	Valid bool   `json:"valid"`
}

type BackendView struct {
	Initialized bool           `json:"initialized"`
	Backend     auth.Principal `json:"backend,omitempty"`
}

// parseAmount reads exactly one of a base-unit or decimal amount. Failures are
// reported as ErrInvalidAmount with field details.
func parseAmount(units, decimal string) (*big.Int, error) {
	invalid := func(field, msg, key string) error {
		return errors.Join(payvalidator.ErrInvalidAmount, validator.ValidationErrors{{
			Field:          field,
			Message:        msg,
			TranslationKey: key,
		}})
	}

	switch {
	case units != "" && decimal != "":
		return nil, invalid("amount", "provide either amount or amount_decimal, not both", "validation.amount_ambiguous")
	case units != "":
		v, err := amount.ParseUnits(units)
		switch {
		case errors.Is(err, amount.ErrOutOfRange):
			return nil, invalid("amount", "must fit in a signed 128-bit integer", "validation.amount_range")
		case err != nil:
			return nil, invalid("amount", "must be an integer number of base units", "validation.amount_units")
		}
		return v, nil
	case decimal != "":
		v, err := amount.Parse(decimal)
		switch {
		case errors.Is(err, amount.ErrNegative):
			return nil, invalid("amount_decimal", "must not be negative", "validation.amount_negative")
		case errors.Is(err, amount.ErrPrecision):
			return nil, invalid("amount_decimal", "must have at most 7 decimal places", "validation.amount_precision")
		case errors.Is(err, amount.ErrOutOfRange):
			return nil, invalid("amount_decimal", "must have at most 32 whole-token digits", "validation.amount_range")
		case err != nil:
			return nil, invalid("amount_decimal", "must be a decimal number", "validation.amount_decimal")
		}
		return v, nil
	default:
		return nil, invalid("amount", "amount or amount_decimal is required", "validation.amount_required")
	}
}
