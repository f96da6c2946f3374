package qrcode

import (
	"errors"
	"math/big"
	"net/url"
	"regexp"

	"github.com/chainpe/payvalidator/pkg/amount"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/validator"
)

const (
	paymentScheme  = "web+stellar:pay"
	nativeAsset    = "XLM"
	maxAssetLength = 12
)

var assetCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

var (
	ErrInvalidDestination = errors.New("payment destination is not a valid principal")
	ErrInvalidAmount      = errors.New("payment amount must not be negative")
	ErrMissingMemo        = errors.New("payment memo is required")
	ErrMissingIssuer      = errors.New("asset issuer is required for a non-native asset")
	ErrInvalidAsset       = errors.New("asset code is invalid")
)

// ValidateAsset checks an asset code and issuer pair. An empty code or XLM
// means the native asset and needs no issuer.
func ValidateAsset(code string, issuer auth.Principal) error {
	if code == "" || code == nativeAsset {
		return nil
	}
	if err := validator.Apply(
		validator.MaxLenString("asset_code", code, maxAssetLength),
		validator.MatchesRegex("asset_code", code, assetCodePattern, "alphanumeric asset code"),
	); err != nil {
		return errors.Join(ErrInvalidAsset, err)
	}
	if !issuer.Valid() {
		return ErrMissingIssuer
	}
	return nil
}

// PaymentRequest describes a SEP-7 pay operation. The memo is sent as
// MEMO_TEXT so the payer's wallet attaches it verbatim.
type PaymentRequest struct {
	Destination auth.Principal
	Amount      *big.Int // base units; nil or zero lets the payer choose
	Memo        string
	AssetCode   string // empty for the native asset
	AssetIssuer auth.Principal
	Message     string
}

// URI renders the request as a web+stellar:pay URI.
func (r PaymentRequest) URI() (string, error) {
	if !r.Destination.Valid() {
		return "", ErrInvalidDestination
	}
	if r.Amount != nil && r.Amount.Sign() < 0 {
		return "", ErrInvalidAmount
	}
	if r.Memo == "" {
		return "", ErrMissingMemo
	}

	q := url.Values{}
	q.Set("destination", r.Destination.String())
	if r.Amount != nil && r.Amount.Sign() > 0 {
		q.Set("amount", amount.Format(r.Amount))
	}
	q.Set("memo", r.Memo)
	q.Set("memo_type", "MEMO_TEXT")
	if err := ValidateAsset(r.AssetCode, r.AssetIssuer); err != nil {
		return "", err
	}
	if r.AssetCode != "" && r.AssetCode != nativeAsset {
		q.Set("asset_code", r.AssetCode)
		q.Set("asset_issuer", r.AssetIssuer.String())
	}
	if r.Message != "" {
		q.Set("msg", r.Message)
	}
	return paymentScheme + "?" + q.Encode(), nil
}

// PaymentPNG renders the request URI as a QR code PNG.
func PaymentPNG(r PaymentRequest, size int) ([]byte, error) {
	uri, err := r.URI()
	if err != nil {
		return nil, err
	}
	return Generate(uri, size)
}
