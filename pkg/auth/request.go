package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Signature headers.
const (
	HeaderPrincipal = "X-Principal"
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
	HeaderSignature = "X-Signature"
)

var nonceFormat = regexp.MustCompile(`^[A-Za-z0-9_-]{16,128}$`)

// SignedRequest is what a verified request proves about its sender.
type SignedRequest struct {
	Principal Principal
	Timestamp time.Time
	Nonce     string
}

// VerifyOptions bounds what VerifyRequest accepts.
type VerifyOptions struct {
	MaxSkew time.Duration
	MaxBody int64 // bytes; <= 0 means unbounded
}

// SigningPayload returns the canonical message signed for an HTTP request:
// METHOD \n PATH \n UNIX_TIMESTAMP \n NONCE \n hex(sha256(body)).
func SigningPayload(method, path string, timestamp int64, nonce string, body []byte) []byte {
	sum := sha256.Sum256(body)

	var b bytes.Buffer
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(path)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(timestamp, 10))
	b.WriteByte('\n')
	b.WriteString(nonce)
	b.WriteByte('\n')
	b.WriteString(hex.EncodeToString(sum[:]))
	return b.Bytes()
}

// SignRequest attaches signature headers for kp to r with a fresh nonce.
// The request body is read and restored so r can still be sent.
func SignRequest(r *http.Request, kp Keypair, now time.Time) error {
	body, err := readAndRestoreBody(r, 0)
	if err != nil {
		return err
	}

	ts := now.Unix()
	nonce := uuid.NewString()
	sig := kp.Sign(SigningPayload(r.Method, r.URL.Path, ts, nonce, body))

	r.Header.Set(HeaderPrincipal, kp.Principal().String())
	r.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	r.Header.Set(HeaderNonce, nonce)
	r.Header.Set(HeaderSignature, base64.StdEncoding.EncodeToString(sig))
	return nil
}

// VerifyRequest validates the signature headers of r.
//
// It returns ErrMissingHeaders when none of them is present and
// ErrIncompleteHeaders when only some are. Timestamps further than
// opts.MaxSkew from now are rejected, and bodies over opts.MaxBody fail with
// ErrBodyTooLarge before they are buffered. VerifyRequest does not track
// nonces; Middleware claims them in a NonceStore.
func VerifyRequest(r *http.Request, now time.Time, opts VerifyOptions) (SignedRequest, error) {
	headers := []string{
		r.Header.Get(HeaderPrincipal),
		r.Header.Get(HeaderTimestamp),
		r.Header.Get(HeaderNonce),
		r.Header.Get(HeaderSignature),
	}
	present := 0
	for _, h := range headers {
		if h != "" {
			present++
		}
	}
	switch present {
	case 0:
		return SignedRequest{}, ErrMissingHeaders
	case len(headers):
	default:
		return SignedRequest{}, ErrIncompleteHeaders
	}
	rawPrincipal, rawTimestamp, nonce, rawSignature := headers[0], headers[1], headers[2], headers[3]

	p, err := ParsePrincipal(rawPrincipal)
	if err != nil {
		return SignedRequest{}, err
	}

	ts, err := strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil {
		return SignedRequest{}, ErrInvalidTimestamp
	}
	if skew := now.Sub(time.Unix(ts, 0)); skew > opts.MaxSkew || skew < -opts.MaxSkew {
		return SignedRequest{}, ErrTimestampSkew
	}
	if !nonceFormat.MatchString(nonce) {
		return SignedRequest{}, ErrInvalidNonce
	}

	sig, err := base64.StdEncoding.DecodeString(rawSignature)
	if err != nil {
		return SignedRequest{}, ErrSignatureInvalid
	}

	body, err := readAndRestoreBody(r, opts.MaxBody)
	if err != nil {
		return SignedRequest{}, err
	}

	if err := Verify(p, SigningPayload(r.Method, r.URL.Path, ts, nonce, body), sig); err != nil {
		return SignedRequest{}, err
	}
	return SignedRequest{Principal: p, Timestamp: time.Unix(ts, 0), Nonce: nonce}, nil
}

// readAndRestoreBody buffers at most limit bytes of the body (any size when
// limit <= 0) and puts a replayable copy back on r.
func readAndRestoreBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	if limit > 0 && r.ContentLength > limit {
		return nil, ErrBodyTooLarge
	}

	src := r.Body
	if limit > 0 {
		src = http.MaxBytesReader(nil, r.Body, limit)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ErrBodyTooLarge
		}
		return nil, err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
