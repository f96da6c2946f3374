package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/handler"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/ratelimiter"
)

type apiFixture struct {
	routes   http.Handler
	contract *payvalidator.Contract
	backend  auth.Keypair
	merchant auth.Keypair
}

func newAPIFixture(t *testing.T, opts ...handler.APIOption) *apiFixture {
	t.Helper()

	host := ledger.NewHost(ledger.NewMemoryStore(), ledger.WithAuthorizer(auth.ContextAuthorizer{}))
	t.Cleanup(func() { _ = host.Close() })

	backend, err := auth.GenerateKeypair()
	require.NoError(t, err)
	merchant, err := auth.GenerateKeypair()
	require.NoError(t, err)

	contract := payvalidator.New(host)
	api := handler.NewAPI(contract, append([]handler.APIOption{handler.WithHeartbeat(50 * time.Millisecond)}, opts...)...)

	return &apiFixture{
		routes:   api.Routes(),
		contract: contract,
		backend:  backend,
		merchant: merchant,
	}
}

// do sends a request, signed by signer when it is not nil.
func (f *apiFixture) do(t *testing.T, method, target string, body any, signer *auth.Keypair) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if signer != nil {
		require.NoError(t, auth.SignRequest(req, *signer, time.Now()))
	}

	rec := httptest.NewRecorder()
	f.routes.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) bootstrap(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/v1/bootstrap", map[string]string{"backend": f.backend.Principal().String()}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (f *apiFixture) register(t *testing.T, memo, amount string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
		"memo":     memo,
		"merchant": f.merchant.Principal().String(),
		"amount":   amount,
	}, &f.backend)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var env struct {
		Error *handler.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NotNil(t, env.Error, rec.Body.String())
	return *env.Error
}

func TestAPI_SessionLifecycle(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/backend", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeData[handler.BackendView](t, rec).Initialized)

	f.bootstrap(t)

	rec = f.do(t, http.MethodGet, "/v1/backend", nil, nil)
	assert.Equal(t, f.backend.Principal(), decodeData[handler.BackendView](t, rec).Backend)

	rec = f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
		"memo":           "order-42",
		"merchant":       f.merchant.Principal().String(),
		"amount_decimal": "0.00001",
	}, &f.backend)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[handler.SessionView](t, rec)
	assert.Equal(t, "100", created.Amount)
	assert.Equal(t, "0.00001", created.AmountDecimal)
	assert.True(t, created.IsActive)

	rec = f.do(t, http.MethodGet, "/v1/sessions/order-42", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, f.merchant.Principal(), decodeData[handler.SessionView](t, rec).Merchant)

	rec = f.do(t, http.MethodPost, "/v1/sessions/order-42/validate", map[string]string{"amount": "50"}, &f.backend)
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())
	detail := decodeError(t, rec)
	assert.Equal(t, "insufficient_amount", detail.Code)
	assert.Equal(t, 3, detail.ContractCode)

	rec = f.do(t, http.MethodPost, "/v1/sessions/order-42/validate", map[string]string{"amount": "100"}, &f.backend)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, handler.ValidationView{Memo: "order-42", Valid: true}, decodeData[handler.ValidationView](t, rec))

	rec = f.do(t, http.MethodPost, "/v1/sessions/order-42/validate", map[string]string{"amount": "100"}, &f.backend)
	require.Equal(t, http.StatusGone, rec.Code, rec.Body.String())
	assert.Equal(t, 4, decodeError(t, rec).ContractCode)

	rec = f.do(t, http.MethodGet, "/v1/sessions/order-42", nil, nil)
	assert.False(t, decodeData[handler.SessionView](t, rec).IsActive)

	rec = f.do(t, http.MethodGet, "/v1/events/log", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeData[[]handler.EventView](t, rec)
	require.Len(t, events, 2, "diagnostic events are not persisted")
	assert.Equal(t, "registered", events[0].Topic)
	assert.Equal(t, "validated", events[1].Topic)
	assert.Equal(t, "order-42", events[1].Memo)
	assert.Equal(t, "100", events[1].Amount)

	rec = f.do(t, http.MethodGet, "/v1/events/log?offset=1&limit=10", nil, nil)
	assert.Len(t, decodeData[[]handler.EventView](t, rec), 1)
}

func TestAPI_Deactivate(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.bootstrap(t)
	f.register(t, "pay_1", "10")

	rec := f.do(t, http.MethodPost, "/v1/sessions/pay_1/deactivate", nil, &f.backend)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeData[handler.SessionView](t, rec).IsActive)

	rec = f.do(t, http.MethodPost, "/v1/sessions/pay_1/validate", map[string]string{"amount": "10"}, &f.backend)
	assert.Equal(t, http.StatusGone, rec.Code)

	rec = f.do(t, http.MethodPost, "/v1/sessions/missing/deactivate", nil, &f.backend)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Errors(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.bootstrap(t)
	f.register(t, "pay_1", "10")

	stranger, err := auth.GenerateKeypair()
	require.NoError(t, err)

	t.Run("second bootstrap conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/bootstrap", map[string]string{"backend": stranger.Principal().String()}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 6, decodeError(t, rec).ContractCode)
	})

	t.Run("bootstrap with malformed principal", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/bootstrap", map[string]string{"backend": "nope"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "invalid_principal", decodeError(t, rec).Code)
	})

	t.Run("bootstrap without backend", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/bootstrap", map[string]string{"backend": " "}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"is required"}, decodeError(t, rec).Details["backend"])
	})

	t.Run("event log paging out of range", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/events/log?offset=-1&limit=501", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, []string{"must not be less than 0"}, detail.Details["offset"])
		assert.Equal(t, []string{"must not be greater than 500"}, detail.Details["limit"])
	})

	t.Run("unsigned register", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
			"memo": "pay_2", "merchant": f.merchant.Principal().String(), "amount": "1",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 5, decodeError(t, rec).ContractCode)
	})

	t.Run("register signed by stranger", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
			"memo": "pay_2", "merchant": f.merchant.Principal().String(), "amount": "1",
		}, &stranger)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
	})

	t.Run("tampered signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/pay_1/validate", strings.NewReader(`{"amount":"10"}`))
		req.Header.Set("Content-Type", "application/json")
		require.NoError(t, auth.SignRequest(req, f.backend, time.Now()))
		req.Body = io.NopCloser(strings.NewReader(`{"amount":"99"}`))

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_signature", decodeError(t, rec).Code)
	})

	t.Run("invalid memo", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
			"memo": "this memo has spaces", "merchant": f.merchant.Principal().String(), "amount": "1",
		}, &f.backend)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, 1, decodeError(t, rec).ContractCode)
	})

	t.Run("active memo reuse", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
			"memo": "pay_1", "merchant": f.merchant.Principal().String(), "amount": "1",
		}, &f.backend)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, 7, decodeError(t, rec).ContractCode)
	})

	t.Run("ambiguous amount", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions/pay_1/validate", map[string]string{
			"amount": "10", "amount_decimal": "1",
		}, &f.backend)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, 8, detail.ContractCode)
		assert.Contains(t, detail.Details, "amount")
	})

	t.Run("amount exponent out of range", func(t *testing.T) {
		tests := []struct {
			name   string
			value  string
			signer *auth.Keypair
		}{
			{"signed exponent", "1e3000000", &f.backend},
			{"unsigned exponent", "1e30000000", nil},
			{"signed digits", "1" + strings.Repeat("0", 40), &f.backend},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				start := time.Now()
				rec := f.do(t, http.MethodPost, "/v1/sessions", map[string]string{
					"memo": "pay_big", "merchant": f.merchant.Principal().String(), "amount_decimal": tt.value,
				}, tt.signer)
				assert.Less(t, time.Since(start), time.Second)

				assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
				detail := decodeError(t, rec)
				assert.Equal(t, 8, detail.ContractCode)
				assert.Equal(t, []string{"must have at most 32 whole-token digits"}, detail.Details["amount_decimal"])
			})
		}
	})

	t.Run("amount exponent below precision", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions/pay_1/validate", map[string]string{"amount_decimal": "1e-3000000"}, &f.backend)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{"must have at most 7 decimal places"}, decodeError(t, rec).Details["amount_decimal"])
	})

	t.Run("amount units too long", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/v1/sessions/pay_1/validate", map[string]string{"amount": strings.Repeat("9", 100)}, &f.backend)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{"must fit in a signed 128-bit integer"}, decodeError(t, rec).Details["amount"])
	})

	t.Run("unknown session", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/sessions/unknown", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "session_not_found", decodeError(t, rec).Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v2/anything", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not_found", decodeError(t, rec).Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/v1/sessions", nil, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("unknown topic", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/v1/events?topics=bogus", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Details, "topics")
	})
}

// capture signs a request once and returns a function that rebuilds it with
// the same headers and body, as an eavesdropper could.
func capture(t *testing.T, method, target, body string, signer auth.Keypair) func() *http.Request {
	t.Helper()
	signed := httptest.NewRequest(method, target, strings.NewReader(body))
	signed.Header.Set("Content-Type", "application/json")
	require.NoError(t, auth.SignRequest(signed, signer, time.Now()))

	return func() *http.Request {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header = signed.Header.Clone()
		return req
	}
}

func TestAPI_SignedRequestReplay(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.bootstrap(t)
	f.register(t, "pay_1", "10")

	validate := capture(t, http.MethodPost, "/v1/sessions/pay_1/validate", `{"amount":"10"}`, f.backend)

	rec := httptest.NewRecorder()
	f.routes.ServeHTTP(rec, validate())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The merchant pays again under the same memo.
	f.register(t, "pay_1", "10")

	rec = httptest.NewRecorder()
	f.routes.ServeHTTP(rec, validate())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "invalid_signature", detail.Code)
	assert.Contains(t, detail.Message, auth.ErrReplayedRequest.Error())

	rec = f.do(t, http.MethodGet, "/v1/sessions/pay_1", nil, nil)
	assert.True(t, decodeData[handler.SessionView](t, rec).IsActive, "replayed validation must not consume the new session")

	t.Run("deactivate replay", func(t *testing.T) {
		deactivate := capture(t, http.MethodPost, "/v1/sessions/pay_1/deactivate", ``, f.backend)

		rec := httptest.NewRecorder()
		f.routes.ServeHTTP(rec, deactivate())
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		f.register(t, "pay_1", "10")

		rec = httptest.NewRecorder()
		f.routes.ServeHTTP(rec, deactivate())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAPI_SignedBodyLimit(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, handler.WithMaxBodySize(256))
	f.bootstrap(t)

	oversized := `{"amount":"10","pad":"` + strings.Repeat("x", 4096) + `"}`
	forged := func(contentLength int64) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions/pay_1/validate", strings.NewReader(oversized))
		req.ContentLength = contentLength
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.HeaderPrincipal, f.backend.Principal().String())
		req.Header.Set(auth.HeaderTimestamp, strconv.FormatInt(time.Now().Unix(), 10))
		req.Header.Set(auth.HeaderNonce, "0123456789abcdef")
		req.Header.Set(auth.HeaderSignature, "AAAA")
		return req
	}

	tests := []struct {
		name          string
		contentLength int64
	}{
		{"declared length", int64(len(oversized))},
		{"unknown length", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.routes.ServeHTTP(rec, forged(tt.contentLength))
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Equal(t, "request_entity_too_large", decodeError(t, rec).Code)
		})
	}

	t.Run("signed body within limit", func(t *testing.T) {
		f.register(t, "pay_1", "10")
		rec := f.do(t, http.MethodPost, "/v1/sessions/pay_1/validate", map[string]string{"amount": "10"}, &f.backend)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func TestAPI_QRCode(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.bootstrap(t)
	f.register(t, "pay_qr", "2500000")

	rec := f.do(t, http.MethodGet, "/v1/sessions/pay_qr/qr.png?size=64", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.do(t, http.MethodGet, "/v1/sessions/nope/qr.png", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/v1/sessions/pay_qr/deactivate", nil, &f.backend).Code)
	rec = f.do(t, http.MethodGet, "/v1/sessions/pay_qr/qr.png", nil, nil)
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestAPI_Health(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/health/ready", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAPI_EventStream(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)
	f.bootstrap(t)
	f.register(t, "pay_old", "1")

	srv := httptest.NewServer(f.routes)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?topics=registered,validated&replay=true", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	next := func(prefix string) string {
		t.Helper()
		for lines.Scan() {
			if line := lines.Text(); strings.HasPrefix(line, prefix) {
				return line
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	assert.Equal(t, ": connected", next(": connected"))
	assert.Equal(t, "event: registered", next("event: "))

	f.register(t, "pay_new", "5")
	assert.Equal(t, "event: registered", next("event: "))

	var view handler.EventView
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(next("data: "), "data: ")), &view))
	assert.Equal(t, "pay_new", view.Memo)
	assert.Equal(t, "5", view.Amount)

	assert.Equal(t, ": ping", next(": ping"))
}

func TestAPI_EventStreamPagedReplay(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t, handler.WithEventPageSize(2))
	f.bootstrap(t)

	memos := []string{"pay_1", "pay_2", "pay_3", "pay_4", "pay_5"}
	for _, memo := range memos {
		f.register(t, memo, "1")
	}

	srv := httptest.NewServer(f.routes)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events?topics=registered&replay=true", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	nextMemo := func() string {
		t.Helper()
		for lines.Scan() {
			data, ok := strings.CutPrefix(lines.Text(), "data: ")
			if !ok {
				continue
			}
			var view handler.EventView
			require.NoError(t, json.Unmarshal([]byte(data), &view))
			return view.Memo
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	for _, memo := range memos {
		assert.Equal(t, memo, nextMemo())
	}

	f.register(t, "pay_6", "1")
	assert.Equal(t, "pay_6", nextMemo(), "the live event follows the replayed log without duplicates")
}

func TestAPI_RateLimit(t *testing.T) {
	t.Parallel()

	host := ledger.NewHost(ledger.NewMemoryStore(), ledger.WithAuthorizer(auth.ContextAuthorizer{}))
	t.Cleanup(func() { _ = host.Close() })

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)
	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
	require.NoError(t, err)

	routes := handler.NewAPI(payvalidator.New(host),
		handler.WithRateLimiter(bucket),
		handler.WithTrustedProxyHeaders("X-Forwarded-For"),
	).Routes()

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/backend", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, get("198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, get("198.51.100.1").Code)

	rec := get("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", decodeError(t, rec).Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("198.51.100.2").Code, "other clients keep their own bucket")

	health := httptest.NewRecorder()
	routes.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, health.Code, "health endpoints are not limited")
}
