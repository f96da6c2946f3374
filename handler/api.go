package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/clientip"
	"github.com/chainpe/payvalidator/pkg/environment"
	"github.com/chainpe/payvalidator/pkg/httpserver"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/ratelimiter"
	"github.com/chainpe/payvalidator/pkg/requestid"
)

// API exposes a Contract over HTTP.
type API struct {
	contract    *payvalidator.Contract
	logger      *slog.Logger
	env         environment.Environment
	authOpts    []auth.MiddlewareOption
	checks      []httpserver.Check
	assetCode   string
	assetIssuer auth.Principal
	heartbeat   time.Duration
	eventPage   int
	maxBody     int64
	proxies     []string
	limiter     *ratelimiter.Bucket
	errors      ErrorHandler
}

// APIOption configures an API.
type APIOption func(*API)

// WithLogger sets the logger for access logs and request errors.
func WithLogger(l *slog.Logger) APIOption {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithEnvironment sets the environment attached to request contexts.
// Production hides internal error messages.
func WithEnvironment(env environment.Environment) APIOption {
	return func(a *API) {
		a.env = env
	}
}

// WithAuthOptions passes options to the request signature middleware.
func WithAuthOptions(opts ...auth.MiddlewareOption) APIOption {
	return func(a *API) {
		a.authOpts = append(a.authOpts, opts...)
	}
}

// WithHealthChecks adds readiness checks to /health/ready.
func WithHealthChecks(checks ...httpserver.Check) APIOption {
	return func(a *API) {
		a.checks = append(a.checks, checks...)
	}
}

// WithPaymentAsset sets the asset requested by payment QR codes. An empty
// code means the native asset.
func WithPaymentAsset(code string, issuer auth.Principal) APIOption {
	return func(a *API) {
		a.assetCode = code
		a.assetIssuer = issuer
	}
}

// WithHeartbeat sets the keep-alive interval of event streams.
func WithHeartbeat(d time.Duration) APIOption {
	return func(a *API) {
		if d > 0 {
			a.heartbeat = d
		}
	}
}

// WithEventPageSize sets how many events a stream replay reads from the log
// at a time.
func WithEventPageSize(n int) APIOption {
	return func(a *API) {
		if n > 0 {
			a.eventPage = n
		}
	}
}

// WithMaxBodySize bounds JSON request bodies, including the bodies buffered
// to check request signatures.
func WithMaxBodySize(n int64) APIOption {
	return func(a *API) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

// WithTrustedProxyHeaders names the headers carrying the client address, in
// priority order. Without them the TCP peer address is used.
func WithTrustedProxyHeaders(headers ...string) APIOption {
	return func(a *API) {
		a.proxies = append(a.proxies, headers...)
	}
}

// WithRateLimiter limits /v1 requests per signer, or per client address for
// unsigned requests.
func WithRateLimiter(b *ratelimiter.Bucket) APIOption {
	return func(a *API) {
		a.limiter = b
	}
}

// NewAPI creates the HTTP API for contract.
func NewAPI(contract *payvalidator.Contract, opts ...APIOption) *API {
	a := &API{
		contract:  contract,
		logger:    slog.New(slog.DiscardHandler),
		env:       environment.Development,
		heartbeat: 15 * time.Second,
		eventPage: maxEventPage,
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(logger.Component("api"))
	a.errors = NewErrorHandler(a.logger)
	return a
}

// Routes returns the router serving every endpoint.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware(a.proxies...),
		environment.Middleware(a.env),
		auth.Middleware(append([]auth.MiddlewareOption{
			auth.WithErrorHandler(SignatureErrorHandler(a.logger)),
			auth.WithMaxBodySize(a.maxBody),
		}, a.authOpts...)...),
		a.accessLog,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(a.logger, w, r, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(a.logger, w, r, ErrMethodNotAllowed)
	})

	ready := append([]httpserver.Check{{Name: "ledger", Fn: a.ledgerCheck}}, a.checks...)
	r.Get("/health/live", httpserver.HealthCheckHandler(a.logger, 0))
	r.Get("/health/ready", httpserver.HealthCheckHandler(a.logger, 5*time.Second, ready...))

	path := BindPath(chi.URLParam)
	body := BindJSON(a.maxBody)
	query := BindQuery()

	r.Route("/v1", func(r chi.Router) {
		if a.limiter != nil {
			r.Use(ratelimiter.Middleware(a.limiter, rateLimitKey,
				ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
					writeError(a.logger, w, r, ErrTooManyRequests)
				}),
				ratelimiter.WithStoreErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
					writeError(a.logger, w, r, errors.Join(ErrServiceUnavailable, err))
				}),
			))
		}

		r.Get("/backend", Wrap(a.backend, WithErrorHandler[struct{}](a.errors)))
		r.Post("/bootstrap", Wrap(a.bootstrap, WithBinders[BootstrapRequest](body), WithErrorHandler[BootstrapRequest](a.errors)))

		r.Post("/sessions", Wrap(a.register, WithBinders[RegisterRequest](body), WithErrorHandler[RegisterRequest](a.errors)))
		r.Route("/sessions/{memo}", func(r chi.Router) {
			r.Get("/", Wrap(a.fetch, WithBinders[MemoRequest](path), WithErrorHandler[MemoRequest](a.errors)))
			r.Post("/validate", Wrap(a.validate, WithBinders[ValidateRequest](body, path), WithErrorHandler[ValidateRequest](a.errors)))
			r.Post("/deactivate", Wrap(a.deactivate, WithBinders[MemoRequest](path), WithErrorHandler[MemoRequest](a.errors)))
			r.Get("/qr.png", Wrap(a.qr, WithBinders[QRRequest](path, query), WithErrorHandler[QRRequest](a.errors)))
		})

		r.Get("/events", Wrap(a.events, WithBinders[EventsRequest](query), WithErrorHandler[EventsRequest](a.errors)))
		r.Get("/events/log", Wrap(a.eventLog, WithBinders[EventLogRequest](query), WithErrorHandler[EventLogRequest](a.errors)))
	})

	return r
}

func (a *API) ledgerCheck(ctx context.Context) error {
	_, err := a.contract.Initialized(ctx)
	return err
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		level := slog.LevelInfo
		if r.URL.Path == "/health/live" || r.URL.Path == "/health/ready" {
			level = slog.LevelDebug
		}
		a.logger.LogAttrs(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Principal(signerOf(r).String()),
			logger.Duration(time.Since(start)),
		)
	})
}

// rateLimitKey buckets signed requests by signer and the rest by client address.
func rateLimitKey(r *http.Request) string {
	if p := signerOf(r); p != "" {
		return "principal:" + p.String()
	}
	if ip := clientip.GetIPFromContext(r.Context()); ip != "" {
		return "ip:" + ip
	}
	return ""
}

// signerOf returns the verified signer of r, if any.
func signerOf(r *http.Request) auth.Principal {
	if signers := auth.SignersFromContext(r.Context()); len(signers) > 0 {
		return signers[0]
	}
	return ""
}

type failResponse struct {
	err error
}

func (f failResponse) Render(http.ResponseWriter, *http.Request) error {
	return f.err
}

// Fail hands err to the route's error handler.
func Fail(err error) Response {
	return failResponse{err: err}
}
