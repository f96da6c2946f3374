package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/environment"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/validator"
)

// ErrorInfo is the classified form of an error.
type ErrorInfo struct {
	Status   int
	Detail   ErrorDetail
	LogLevel slog.Level
	Internal bool
}

// contractStatus maps contract codes to HTTP statuses.
var contractStatus = map[int]int{
	payvalidator.ErrInvalidMemo.Code:        http.StatusUnprocessableEntity,
	payvalidator.ErrSessionNotFound.Code:    http.StatusNotFound,
	payvalidator.ErrInsufficientAmount.Code: http.StatusPaymentRequired,
	payvalidator.ErrSessionExpired.Code:     http.StatusGone,
	payvalidator.ErrUnauthorized.Code:       http.StatusUnauthorized,
	payvalidator.ErrAlreadyInitialized.Code: http.StatusConflict,
	payvalidator.ErrSessionActive.Code:      http.StatusConflict,
	payvalidator.ErrInvalidAmount.Code:      http.StatusUnprocessableEntity,
	payvalidator.ErrInvalidMerchant.Code:    http.StatusUnprocessableEntity,
}

var contractMessage = map[int]string{
	payvalidator.ErrInvalidMemo.Code:        "memo must be 1-28 characters of letters, digits, '_' or '-'",
	payvalidator.ErrSessionNotFound.Code:    "no session registered for this memo",
	payvalidator.ErrInsufficientAmount.Code: "observed amount is below the session minimum",
	payvalidator.ErrSessionExpired.Code:     "session is no longer active",
	payvalidator.ErrUnauthorized.Code:       "request is not signed by the backend principal",
	payvalidator.ErrAlreadyInitialized.Code: "backend principal is already configured",
	payvalidator.ErrSessionActive.Code:      "an active session already uses this memo",
	payvalidator.ErrInvalidAmount.Code:      "amount must be a non-negative 128-bit integer",
	payvalidator.ErrInvalidMerchant.Code:    "merchant is not a valid principal",
}

// ClassifyError maps err to a status and error body.
func ClassifyError(err error) ErrorInfo {
	info := ErrorInfo{
		Status:   http.StatusInternalServerError,
		Detail:   ErrorDetail{Code: ErrInternal.Key, Message: flatten(err)},
		Internal: true,
	}

	var httpErr HTTPError
	switch ce, isContract := payvalidator.AsError(err); {
	case isContract:
		info = ErrorInfo{
			Status: contractStatus[ce.Code],
			Detail: ErrorDetail{Code: ce.Key, ContractCode: ce.Code, Message: contractMessage[ce.Code]},
		}
		if info.Status == 0 {
			info.Status = http.StatusBadRequest
		}
	case errors.Is(err, ErrInvalidSignature):
		info = ErrorInfo{
			Status: http.StatusUnauthorized,
			Detail: ErrorDetail{Code: ErrInvalidSignature.Key, Message: flatten(err)},
		}
	case errors.Is(err, auth.ErrInvalidPrincipal):
		info = ErrorInfo{
			Status: http.StatusUnprocessableEntity,
			Detail: ErrorDetail{Code: "invalid_principal", Message: flatten(err)},
		}
	case errors.Is(err, ErrInvalidJSON), errors.Is(err, ErrInvalidParam), errors.Is(err, ErrMissingContentType):
		info = ErrorInfo{
			Status: http.StatusBadRequest,
			Detail: ErrorDetail{Code: ErrBadRequest.Key, Message: flatten(err)},
		}
	case errors.Is(err, ErrWrongContentType):
		info = ErrorInfo{
			Status: http.StatusUnsupportedMediaType,
			Detail: ErrorDetail{Code: ErrUnsupportedMediaType.Key, Message: flatten(err)},
		}
	case errors.Is(err, ledger.ErrHostClosed), errors.Is(err, context.Canceled):
		info = ErrorInfo{
			Status: http.StatusServiceUnavailable,
			Detail: ErrorDetail{Code: ErrServiceUnavailable.Key, Message: flatten(err)},
		}
	case errors.As(err, &httpErr):
		info = ErrorInfo{
			Status:   httpErr.Code,
			Detail:   ErrorDetail{Code: httpErr.Key, Message: http.StatusText(httpErr.Code)},
			Internal: httpErr.Code >= http.StatusInternalServerError,
		}
	}

	if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
		info.Detail.Details = verrs.Map()
	}

	info.LogLevel = slog.LevelWarn
	if info.Status >= http.StatusInternalServerError {
		info.LogLevel = slog.LevelError
	}
	return info
}

// NewErrorHandler returns an ErrorHandler that writes the JSON error envelope.
// In production, messages of internal errors are replaced by a generic text.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(logger.Component("error_handler"))

	return func(ctx Context, err error) {
		writeError(log, ctx.ResponseWriter(), ctx.Request(), err)
	}
}

func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	reqCtx := r.Context()
	info := ClassifyError(err)

	log.LogAttrs(reqCtx, info.LogLevel, "request error",
		logger.Error(err),
		slog.Int("status_code", info.Status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if info.Internal && environment.IsProduction(reqCtx) {
		info.Detail.Message = http.StatusText(info.Status)
	}
	if renderErr := JSONError(info.Status, info.Detail).Render(w, r); renderErr != nil {
		log.ErrorContext(reqCtx, "failed to render error response", logger.Error(renderErr))
	}
}

// SignatureErrorHandler adapts writeError for auth.WithErrorHandler.
// Oversized signed bodies answer 413; every other rejection is invalid_signature.
func SignatureErrorHandler(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With(logger.Component("auth"))
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, auth.ErrBodyTooLarge) {
			writeError(log, w, r, errors.Join(ErrRequestTooLarge, err))
			return
		}
		writeError(log, w, r, errors.Join(ErrInvalidSignature, err))
	}
}

// flatten renders joined errors on one line.
func flatten(err error) string {
	return strings.ReplaceAll(err.Error(), "\n", ": ")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
