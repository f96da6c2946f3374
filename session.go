package payvalidator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainpe/payvalidator/pkg/auth"
)

// PaymentSession is the record kept for one memo.
type PaymentSession struct {
	Memo      string
	Merchant  auth.Principal
	Amount    *big.Int // minimum accepted amount in base units
	IsActive  bool
	CreatedAt time.Time
}

type sessionJSON struct {
	Memo      string         `json:"memo"`
	Merchant  auth.Principal `json:"merchant"`
	Amount    string         `json:"amount"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarshalJSON encodes Amount as a decimal string; 128-bit values do not fit a
// JSON number safely.
func (s PaymentSession) MarshalJSON() ([]byte, error) {
	amount := "0"
	if s.Amount != nil {
		amount = s.Amount.String()
	}
	return json.Marshal(sessionJSON{
		Memo:      s.Memo,
		Merchant:  s.Merchant,
		Amount:    amount,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	})
}

func (s *PaymentSession) UnmarshalJSON(data []byte) error {
	var raw sessionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(raw.Amount, 10)
	if !ok {
		return fmt.Errorf("payment session %q: %w", raw.Memo, errors.New("malformed amount"))
	}
	*s = PaymentSession{
		Memo:      raw.Memo,
		Merchant:  raw.Merchant,
		Amount:    amount,
		IsActive:  raw.IsActive,
		CreatedAt: raw.CreatedAt,
	}
	return nil
}

// Satisfies reports whether observed meets the session minimum.
func (s PaymentSession) Satisfies(observed *big.Int) bool {
	return observed != nil && s.Amount != nil && observed.Cmp(s.Amount) >= 0
}
