package handler

import (
	"errors"
	"net/http"
)

// HTTPError is a transport error with a status code and a stable key.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // Machine-readable key, e.g. "not_found"
}

func (e HTTPError) Error() string {
	return e.Key
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest           = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrInvalidSignature     = HTTPError{Code: http.StatusUnauthorized, Key: "invalid_signature"}
	ErrNotFound             = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrMethodNotAllowed     = HTTPError{Code: http.StatusMethodNotAllowed, Key: "method_not_allowed"}
	ErrUnsupportedMediaType = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "unsupported_media_type"}
	ErrRequestTooLarge      = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "request_entity_too_large"}
	ErrTooManyRequests      = HTTPError{Code: http.StatusTooManyRequests, Key: "rate_limited"}
	ErrUnprocessable        = HTTPError{Code: http.StatusUnprocessableEntity, Key: "unprocessable_entity"}
	ErrInternal             = HTTPError{Code: http.StatusInternalServerError, Key: "internal_error"}
	ErrServiceUnavailable   = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrStreamingUnsupported is returned when the writer cannot flush.
	ErrStreamingUnsupported = errors.New("response writer does not support streaming")
	// ErrBinderNotApplicable lets a binder opt out for a request.
	ErrBinderNotApplicable = errors.New("binder not applicable")
)

// Binding errors.
var (
	ErrInvalidJSON        = errors.New("invalid JSON")
	ErrMissingContentType = errors.New("missing content type")
	ErrWrongContentType   = errors.New("unsupported content type")
	ErrInvalidParam       = errors.New("invalid request parameter")
)
