// Package logger builds slog loggers for the validator service.
//
// New takes functional options: WithEnvironment selects the format and level
// for an APP_ENV value, WithLevelName applies LOG_LEVEL, WithAttr adds static
// attributes and WithContextExtractors injects request-scoped values such as
// the request id on every record.
//
// attr.go holds constructors for the attribute keys used across the codebase
// (memo, principal, amount, topic, code) so the same fact is always logged
// under the same name.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.AppEnv, "payvalidator"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session registered", logger.Memo(memo), logger.Amount(amount))
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
