package payvalidator

import (
	"context"
	"log/slog"
	"slices"

	"github.com/chainpe/payvalidator/pkg/broadcast"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
)

// Contract is the payment-session validator bound to a ledger host.
// It is safe for concurrent use; the host serializes invocations.
type Contract struct {
	host          *ledger.Host
	logger        *slog.Logger
	replaceActive bool
}

// Option configures a Contract.
type Option func(*Contract)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Contract) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReplaceActive lets Register overwrite a session that is still active
// instead of failing with ErrSessionActive.
func WithReplaceActive() Option {
	return func(c *Contract) {
		c.replaceActive = true
	}
}

// New binds a contract to host.
func New(host *ledger.Host, opts ...Option) *Contract {
	c := &Contract{
		host:   host,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("contract"))
	return c
}

// Subscribe streams events emitted after the call. With topics given, only
// those topics are delivered. The subscription ends when ctx is done.
func (c *Contract) Subscribe(ctx context.Context, topics ...Topic) broadcast.Subscriber[ledger.Event] {
	if len(topics) == 0 {
		return c.host.Subscribe(ctx)
	}
	return c.host.Subscribe(ctx, func(ev ledger.Event) bool {
		return slices.Contains(topics, Topic(ev.Topic))
	})
}

// Events returns the persisted event log.
func (c *Contract) Events(ctx context.Context, offset, limit int) ([]ledger.Event, error) {
	return c.host.Events(ctx, offset, limit)
}

// logOutcome logs a finished operation: Info on success, Warn for contract
// failures and Error for anything else.
func (c *Contract) logOutcome(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, logger.Invocation(op))
	switch {
	case err == nil:
		c.logger.LogAttrs(ctx, slog.LevelInfo, op+" succeeded", attrs...)
	case CodeOf(err) != 0:
		attrs = append(attrs, logger.Code(CodeOf(err)), logger.Error(err))
		c.logger.LogAttrs(ctx, slog.LevelWarn, op+" rejected", attrs...)
	default:
		attrs = append(attrs, logger.Error(err))
		c.logger.LogAttrs(ctx, slog.LevelError, op+" failed", attrs...)
	}
}
