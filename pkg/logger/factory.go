package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chainpe/payvalidator/pkg/environment"
)

// Format selects the slog handler New builds.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

// Option configures New.
type Option func(*config)

// WithFormat sets the output format. It panics on anything other than
// FormatJSON or FormatText.
func WithFormat(f Format) Option {
	if f != FormatJSON && f != FormatText {
		panic(fmt.Errorf("logger: unknown format %q", f))
	}
	return func(c *config) { c.format = f }
}

func WithTextFormatter() Option { return WithFormat(FormatText) }

func WithJSONFormatter() Option { return WithFormat(FormatJSON) }

// WithOutput redirects records to w. A nil w keeps stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithContextExtractors adds attributes taken from the record's context.
// Nil entries are skipped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, extract := range extractors {
			if extract != nil {
				c.extractors = append(c.extractors, extract)
			}
		}
	}
}

// WithContextValue logs ctx.Value(key) under name whenever it is set.
func WithContextValue(name string, key any) Option {
	if name == "" || key == nil {
		return func(*config) {}
	}
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(key)
		return slog.Any(name, v), v != nil
	})
}

// WithDevelopment logs text at debug level.
func WithDevelopment(service string) Option {
	return withProfile(environment.Development, service, slog.LevelDebug, FormatText)
}

// WithStaging logs JSON at debug level.
func WithStaging(service string) Option {
	return withProfile(environment.Staging, service, slog.LevelDebug, FormatJSON)
}

// WithProduction logs JSON at info level.
func WithProduction(service string) Option {
	return withProfile(environment.Production, service, slog.LevelInfo, FormatJSON)
}

// WithEnvironment picks the profile for an APP_ENV value. Unknown values get
// the development profile.
func WithEnvironment(env, service string) Option {
	switch environment.Parse(env) {
	case environment.Production:
		return WithProduction(service)
	case environment.Staging:
		return WithStaging(service)
	}
	return WithDevelopment(service)
}

// WithLevelName applies a LOG_LEVEL value such as "debug" or "WARN".
// Empty and unparseable values leave the level alone.
func WithLevelName(name string) Option {
	return func(c *config) {
		var l slog.Level
		if name != "" && l.UnmarshalText([]byte(name)) == nil {
			c.level = l
		}
	}
}

// withProfile is a no-op without a service name, so a bare New keeps the
// JSON/info defaults.
func withProfile(env environment.Environment, service string, level slog.Level, format Format) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = level
		c.format = format
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", env.String()))
	}
}

// SetAsDefault installs l as the slog default logger.
func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New builds a logger. Without options it writes JSON at info level to stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, format: FormatJSON, output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{Level: c.level}
	var h slog.Handler = slog.NewJSONHandler(c.output, handlerOpts)
	if c.format == FormatText {
		h = slog.NewTextHandler(c.output, handlerOpts)
	}
	if len(c.attrs) > 0 {
		h = h.WithAttrs(c.attrs)
	}
	return slog.New(newContextHandler(h, c.extractors))
}
