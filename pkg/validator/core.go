package validator

import (
	"errors"
	"slices"
	"strings"
)

// Numeric is any built-in integer or float type.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ValidationError is one failed rule for one field. TranslationKey and
// TranslationValues let a client render its own message.
type ValidationError struct {
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"key"`
	TranslationValues map[string]any `json:"params,omitempty"`
}

// ValidationErrors is the error returned by Apply and First.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, e := range ve {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Field + ": " + e.Message)
	}
	return b.String()
}

func (ve *ValidationErrors) Add(err ValidationError) {
	*ve = append(*ve, err)
}

func (ve ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(ve, func(e ValidationError) bool { return e.Field == field })
}

// Get returns the messages for field in the order they were added.
func (ve ValidationErrors) Get(field string) []string {
	return ve.Map()[field]
}

// Fields lists failing fields in first-seen order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	for _, e := range ve {
		if !slices.Contains(fields, e.Field) {
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Map groups messages by field, the shape returned in API error details.
func (ve ValidationErrors) Map() map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, e := range ve {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// Rule pairs a check with the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and returns the failures as ValidationErrors, or nil.
func Apply(rules ...Rule) error {
	var failed ValidationErrors
	for _, r := range rules {
		if !r.Check() {
			failed.Add(r.Error)
		}
	}
	if failed.IsEmpty() {
		return nil
	}
	return failed
}

// First runs rules in order and returns only the first failure. Later rules
// do not run.
func First(rules ...Rule) error {
	for _, r := range rules {
		if !r.Check() {
			return ValidationErrors{r.Error}
		}
	}
	return nil
}

// ExtractValidationErrors finds ValidationErrors anywhere in err's chain.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// IsValidationError reports whether err carries ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
