package httpserver

import (
	"fmt"
	"log/slog"
	"time"
)

// Option configures the HTTP server. Options panic on values that could only
// come from a programming error.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty listen address")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return timeout("read header", d, func(c *config) *time.Duration { return &c.readHeaderTimeout })
}

func WithReadTimeout(d time.Duration) Option {
	return timeout("read", d, func(c *config) *time.Duration { return &c.readTimeout })
}

// WithWriteTimeout caps the time to write a response. It also cuts event
// streams, so leave it unset when serving /v1/events.
func WithWriteTimeout(d time.Duration) Option {
	return timeout("write", d, func(c *config) *time.Duration { return &c.writeTimeout })
}

func WithIdleTimeout(d time.Duration) Option {
	return timeout("idle", d, func(c *config) *time.Duration { return &c.idleTimeout })
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return timeout("shutdown", d, func(c *config) *time.Duration { return &c.shutdownTimeout })
}

func timeout(name string, d time.Duration, field func(*config) *time.Duration) Option {
	if d <= 0 {
		panic(fmt.Sprintf("httpserver: %s timeout must be positive, got %s", name, d))
	}
	return func(c *config) { *field(c) = d }
}

// WithLogger sets the server logger. Records carry component=httpserver.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook runs h once the listener is bound.
func WithStartHook(h func(*slog.Logger)) Option {
	return hook("start", h, func(c *config) *[]func(*slog.Logger) { return &c.startHooks })
}

// WithStopHook runs h after shutdown completes.
func WithStopHook(h func(*slog.Logger)) Option {
	return hook("stop", h, func(c *config) *[]func(*slog.Logger) { return &c.stopHooks })
}

func hook(name string, h func(*slog.Logger), list func(*config) *[]func(*slog.Logger)) Option {
	if h == nil {
		panic("httpserver: nil " + name + " hook")
	}
	return func(c *config) {
		hooks := list(c)
		*hooks = append(*hooks, h)
	}
}
