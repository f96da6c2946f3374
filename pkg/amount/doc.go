// Package amount converts between token base units and decimal display
// amounts.
//
// Session amounts are stored as integers in the token's smallest unit. Stellar
// assets use seven decimal places, so 1 USDC is 10_000_000 base units.
//
//	units, err := amount.Parse("12.5")   // 125000000
//	s := amount.Format(units)            // "12.5"
//
// Parse rejects amounts with more than MaxIntegerDigits whole-token digits by
// inspecting the exponent, so inputs such as "1e3000000" fail fast with
// ErrOutOfRange instead of being expanded.
package amount
