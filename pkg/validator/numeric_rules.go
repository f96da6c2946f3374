package validator

import "fmt"

// MinNum fails when value is below min.
func MinNum[T Numeric](field string, value, min T) Rule {
	return boundRule(field, value >= min, "validation.min", "min", min,
		fmt.Sprintf("must not be less than %v", min))
}

// MaxNum fails when value is above max.
func MaxNum[T Numeric](field string, value, max T) Rule {
	return boundRule(field, value <= max, "validation.max", "max", max,
		fmt.Sprintf("must not be greater than %v", max))
}

func boundRule[T Numeric](field string, ok bool, key, bound string, limit T, msg string) Rule {
	return Rule{
		Check: func() bool { return ok },
		Error: ValidationError{
			Field:             field,
			Message:           msg,
			TranslationKey:    key,
			TranslationValues: map[string]any{"field": field, bound: limit},
		},
	}
}
