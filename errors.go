package payvalidator

import "errors"

// Error is a contract failure with a stable numeric code.
type Error struct {
	Code int    // Numeric contract code
	Key  string // Stable machine-readable key (e.g. "session_not_found")
}

func (e Error) Error() string {
	return e.Key
}

var (
	ErrInvalidMemo        = Error{Code: 1, Key: "invalid_memo"}
	ErrSessionNotFound    = Error{Code: 2, Key: "session_not_found"}
	ErrInsufficientAmount = Error{Code: 3, Key: "insufficient_amount"}
	ErrSessionExpired     = Error{Code: 4, Key: "session_expired"}
	ErrUnauthorized       = Error{Code: 5, Key: "unauthorized"}
	ErrAlreadyInitialized = Error{Code: 6, Key: "already_initialized"}
	ErrSessionActive      = Error{Code: 7, Key: "session_active"}
	ErrInvalidAmount      = Error{Code: 8, Key: "invalid_amount"}
	ErrInvalidMerchant    = Error{Code: 9, Key: "invalid_merchant"}
)

// AsError returns the contract Error wrapped in err, if any.
func AsError(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return Error{}, false
}

// CodeOf returns the contract code carried by err, or 0 when err is nil or
// not a contract failure.
func CodeOf(err error) int {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return 0
}

// IsRetryable reports whether the same session may still succeed later.
// Only an insufficient amount leaves the session open.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrInsufficientAmount)
}
