// Package validator builds declarative validation rules.
//
// Every helper returns a Rule: a Check closure paired with a ValidationError
// describing the failure (field, message and a translation key). Apply runs a
// set of rules and returns ValidationErrors listing every failure; First stops
// at the first one.
//
//	err := validator.Apply(
//	    validator.ValidMemo("memo", memo),
//	    validator.ValidPrincipal("merchant", merchant),
//	    validator.RequiredBigInt("amount", amount),
//	    validator.NonNegativeBigInt("amount", amount),
//	    validator.Int128("amount", amount),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    // verrs.Map() is the per-field shape returned to API clients
//	}
//
// ledger_rules.go holds the rules specific to payment sessions: memo format,
// account addresses and 128-bit amounts. Decimal amounts are bounded in
// package amount.
package validator
