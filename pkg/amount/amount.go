package amount

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits in one whole token.
const Decimals int32 = 7

const (
	// MaxIntegerDigits bounds the whole-token part of an amount. A signed
	// 128-bit count of base units never exceeds 32 whole-token digits.
	MaxIntegerDigits = 32

	// maxTextLen bounds the inputs of Parse and ParseUnits.
	maxTextLen = 80
)

var (
	ErrInvalid    = errors.New("amount.invalid")
	ErrNegative   = errors.New("amount.negative")
	ErrPrecision  = errors.New("amount.too_precise")
	ErrOutOfRange = errors.New("amount.out_of_range")
)

// Parse reads a decimal string such as "1.25" and returns base units.
// Exponent notation is accepted as long as the value stays in range.
func Parse(s string) (*big.Int, error) {
	if len(s) > maxTextLen {
		return nil, ErrOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	return FromDecimal(d)
}

// FromDecimal converts a whole-token amount to base units. It rejects
// negative values, values with more than Decimals fractional digits and
// values with more than MaxIntegerDigits whole-token digits. The checks look
// at the coefficient and exponent only, so huge exponents cost nothing.
func FromDecimal(d decimal.Decimal) (*big.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegative
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	digits := int64(d.NumDigits())
	exp := int64(d.Exponent())
	if digits > maxTextLen || digits+exp > MaxIntegerDigits {
		return nil, ErrOutOfRange
	}
	if -exp-int64(Decimals) >= digits {
		// Every significant digit sits below the smallest unit.
		return nil, ErrPrecision
	}
	if !d.Equal(d.Truncate(Decimals)) {
		return nil, ErrPrecision
	}
	return d.Shift(Decimals).BigInt(), nil
}

// ToDecimal converts base units to a whole-token amount.
func ToDecimal(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -Decimals)
}

// Format renders base units as a whole-token string without trailing zeros.
func Format(units *big.Int) string {
	return ToDecimal(units).String()
}

// ParseUnits reads a base-unit integer string.
func ParseUnits(s string) (*big.Int, error) {
	if len(s) > maxTextLen {
		return nil, ErrOutOfRange
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, ErrInvalid
	}
	return v, nil
}
