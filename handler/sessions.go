package handler

import (
	"errors"
	"net/http"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/qrcode"
	"github.com/chainpe/payvalidator/pkg/validator"
)

const (
	minQRSize = 128
	maxQRSize = 1024
)

func (a *API) backend(ctx Context, _ struct{}) Response {
	initialized, err := a.contract.Initialized(ctx)
	if err != nil {
		return Fail(err)
	}
	view := BackendView{Initialized: initialized}
	if initialized {
		if view.Backend, err = a.contract.Backend(ctx); err != nil {
			return Fail(err)
		}
	}
	return JSON(view)
}

func (a *API) bootstrap(ctx Context, req BootstrapRequest) Response {
	if err := validator.Apply(validator.Required("backend", req.Backend)); err != nil {
		return Fail(errors.Join(ErrBadRequest, err))
	}
	backend, err := auth.ParsePrincipal(req.Backend)
	if err != nil {
		return Fail(err)
	}
	if err := a.contract.Bootstrap(ctx, backend); err != nil {
		return Fail(err)
	}
	return JSON(BackendView{Initialized: true, Backend: backend}, WithStatus(http.StatusCreated))
}

func (a *API) register(ctx Context, req RegisterRequest) Response {
	amt, err := parseAmount(req.Amount, req.AmountDecimal)
	if err != nil {
		return Fail(err)
	}
	if err := a.contract.Register(ctx, req.Memo, auth.Principal(req.Merchant), amt); err != nil {
		return Fail(err)
	}
	return a.sessionResponse(ctx, req.Memo, http.StatusCreated)
}

func (a *API) fetch(ctx Context, req MemoRequest) Response {
	return a.sessionResponse(ctx, req.Memo, http.StatusOK)
}

func (a *API) validate(ctx Context, req ValidateRequest) Response {
	observed, err := parseAmount(req.Amount, req.AmountDecimal)
	if err != nil {
		return Fail(err)
	}
	ok, err := a.contract.Validate(ctx, req.Memo, observed)
	if err != nil {
		return Fail(err)
	}
	return JSON(ValidationView{Memo: req.Memo, Valid: ok})
}

func (a *API) deactivate(ctx Context, req MemoRequest) Response {
	if err := a.contract.Deactivate(ctx, req.Memo); err != nil {
		return Fail(err)
	}
	return a.sessionResponse(ctx, req.Memo, http.StatusOK)
}

func (a *API) qr(ctx Context, req QRRequest) Response {
	session, found, err := a.contract.Fetch(ctx, req.Memo)
	switch {
	case err != nil:
		return Fail(err)
	case !found:
		return Fail(payvalidator.ErrSessionNotFound)
	case !session.IsActive:
		return Fail(payvalidator.ErrSessionExpired)
	}

	png, err := qrcode.PaymentPNG(qrcode.PaymentRequest{
		Destination: session.Merchant,
		Amount:      session.Amount,
		Memo:        session.Memo,
		AssetCode:   a.assetCode,
		AssetIssuer: a.assetIssuer,
	}, clampQRSize(req.Size))
	if err != nil {
		return Fail(err)
	}
	return PNG(png, 0)
}

func clampQRSize(size int) int {
	switch {
	case size == 0:
		return qrcode.DefaultSize
	case size < minQRSize:
		return minQRSize
	case size > maxQRSize:
		return maxQRSize
	}
	return size
}

func (a *API) sessionResponse(ctx Context, memo string, status int) Response {
	session, found, err := a.contract.Fetch(ctx, memo)
	if err != nil {
		return Fail(err)
	}
	if !found {
		return Fail(payvalidator.ErrSessionNotFound)
	}
	return JSON(newSessionView(session), WithStatus(status))
}
