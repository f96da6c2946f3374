package validator

import (
	"fmt"
	"regexp"
)

// MatchesRegex fails unless value is non-empty and matches re. description
// names the expected shape in the message, e.g. "asset code".
func MatchesRegex(field, value string, re *regexp.Regexp, description string) Rule {
	return Rule{
		Check: func() bool {
			return value != "" && re.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be a valid %s", description),
			TranslationKey: "validation.pattern",
			TranslationValues: map[string]any{
				"field":       field,
				"description": description,
			},
		},
	}
}
