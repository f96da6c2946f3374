package auth

import (
	"errors"
	"net/http"
	"time"
)

type middlewareConfig struct {
	maxSkew      time.Duration
	maxBody      int64
	now          func() time.Time
	nonces       NonceStore
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

// WithMaxSkew sets the allowed difference between the request timestamp and server time.
func WithMaxSkew(d time.Duration) MiddlewareOption {
	return func(c *middlewareConfig) {
		if d > 0 {
			c.maxSkew = d
		}
	}
}

// WithMaxBodySize caps how many body bytes are buffered to check a signature.
// Larger signed bodies fail with ErrBodyTooLarge.
func WithMaxBodySize(n int64) MiddlewareOption {
	return func(c *middlewareConfig) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithNonceStore sets where request nonces are claimed. Share one store
// across replicas (see redis.NonceStore) or each replica accepts a request once.
func WithNonceStore(s NonceStore) MiddlewareOption {
	return func(c *middlewareConfig) {
		if s != nil {
			c.nonces = s
		}
	}
}

// WithNow overrides the time source, mostly for tests.
func WithNow(now func() time.Time) MiddlewareOption {
	return func(c *middlewareConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithErrorHandler overrides the response written for a rejected signature.
func WithErrorHandler(h func(w http.ResponseWriter, r *http.Request, err error)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// Middleware verifies signed requests and records the signer in the request context.
// Unsigned requests pass through untouched so that public reads keep working;
// the contract rejects them later if authorization is required.
// Requests carrying invalid or replayed signature headers are rejected with 401,
// and oversized signed bodies with 413.
func Middleware(opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		maxSkew: 5 * time.Minute,
		maxBody: 1 << 20,
		now:     time.Now,
		errorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			if errors.Is(err, ErrBodyTooLarge) {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.nonces == nil {
		cfg.nonces = NewMemoryNonceStore(cfg.now)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := cfg.now()
			signed, err := VerifyRequest(r, now, VerifyOptions{MaxSkew: cfg.maxSkew, MaxBody: cfg.maxBody})
			if errors.Is(err, ErrMissingHeaders) {
				next.ServeHTTP(w, r)
				return
			}
			if err == nil {
				// A nonce must outlive the window in which its timestamp is accepted.
				ttl := signed.Timestamp.Add(cfg.maxSkew).Sub(now) + time.Second
				err = cfg.nonces.Claim(r.Context(), signed.Principal, signed.Nonce, ttl)
			}
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSigner(r.Context(), signed.Principal)))
		})
	}
}
