package validator

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/chainpe/payvalidator/pkg/auth"
)

// MemoMaxLen is the longest text memo a payment can carry.
const MemoMaxLen = 28

var memoPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// int128 bounds.
var (
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// ValidMemo checks that a memo is 1..28 bytes of letters, digits, '_' or '-'.
func ValidMemo(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return len(value) > 0 && len(value) <= MemoMaxLen && memoPattern.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be 1-%d characters of letters, digits, '_' or '-'", MemoMaxLen),
			TranslationKey: "validation.memo",
			TranslationValues: map[string]any{
				"field": field,
				"max":   MemoMaxLen,
			},
		},
	}
}

// ValidPrincipal checks that value is a well-formed account address.
func ValidPrincipal(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return auth.Principal(value).Valid()
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid account address",
			TranslationKey:    "validation.principal",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// RequiredBigInt fails on a nil value.
func RequiredBigInt(field string, value *big.Int) Rule {
	return Rule{
		Check: func() bool {
			return value != nil
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// NonNegativeBigInt passes for nil so it can be combined with RequiredBigInt.
func NonNegativeBigInt(field string, value *big.Int) Rule {
	return Rule{
		Check: func() bool {
			return value == nil || value.Sign() >= 0
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must not be negative",
			TranslationKey:    "validation.non_negative",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// Int128 checks that value fits a signed 128-bit integer. Nil passes.
func Int128(field string, value *big.Int) Rule {
	return Rule{
		Check: func() bool {
			return value == nil || (value.Cmp(maxInt128) <= 0 && value.Cmp(minInt128) >= 0)
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must fit in a signed 128-bit integer",
			TranslationKey:    "validation.int128",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
