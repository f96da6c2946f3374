package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chainpe/payvalidator"
	"github.com/chainpe/payvalidator/handler"
	"github.com/chainpe/payvalidator/pkg/auth"
	"github.com/chainpe/payvalidator/pkg/clientip"
	"github.com/chainpe/payvalidator/pkg/config"
	"github.com/chainpe/payvalidator/pkg/environment"
	"github.com/chainpe/payvalidator/pkg/httpserver"
	"github.com/chainpe/payvalidator/pkg/ledger"
	"github.com/chainpe/payvalidator/pkg/logger"
	"github.com/chainpe/payvalidator/pkg/mongo"
	"github.com/chainpe/payvalidator/pkg/opensearch"
	"github.com/chainpe/payvalidator/pkg/pg"
	"github.com/chainpe/payvalidator/pkg/qrcode"
	"github.com/chainpe/payvalidator/pkg/ratelimiter"
	"github.com/chainpe/payvalidator/pkg/redis"
	"github.com/chainpe/payvalidator/pkg/requestid"
)

const serviceName = "payvalidator"

type appConfig struct {
	AppEnv           string        `env:"APP_ENV" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL"`
	StorageDriver    string        `env:"STORAGE_DRIVER" envDefault:"memory"` // memory, redis, postgres or mongo
	BackendPrincipal string        `env:"BACKEND_PRINCIPAL"`                  // bootstrapped on start when set
	AuthMaxSkew      time.Duration `env:"AUTH_MAX_SKEW" envDefault:"5m"`
	AssetCode        string        `env:"ASSET_CODE"`
	AssetIssuer      string        `env:"ASSET_ISSUER"`
	ReplaceActive    bool          `env:"SESSION_REPLACE_ACTIVE" envDefault:"false"`
	EventsHeartbeat  time.Duration `env:"EVENTS_HEARTBEAT" envDefault:"15s"`
	MaxBodySize      int64         `env:"HTTP_MAX_BODY_SIZE" envDefault:"1048576"`
	TrustedProxies   []string      `env:"TRUSTED_PROXY_HEADERS" envSeparator:","` // e.g. X-Forwarded-For
}

// backend is an opened ledger store with what the service needs around it.
type backend struct {
	store   ledger.Store
	checks  []httpserver.Check
	limits  ratelimiter.Store // shared limiter state, nil for per-process
	nonces  auth.NonceStore   // shared request nonces, nil for per-process
	release func()
}

func main() {
	if _, err := os.Stat(".env"); err == nil {
		config.MustLoadEnv()
	}

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("service stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	be, err := openStore(ctx, cfg.StorageDriver, log)
	if err != nil {
		return err
	}
	defer be.release()
	checks := be.checks

	host := ledger.NewHost(be.store,
		ledger.WithAuthorizer(auth.ContextAuthorizer{}),
		ledger.WithLogger(log.With(logger.Component("ledger"))),
	)
	defer func() {
		if err := host.Close(); err != nil {
			log.Error("failed to close ledger host", logger.Error(err))
		}
	}()

	var contractOpts []payvalidator.Option
	contractOpts = append(contractOpts, payvalidator.WithLogger(log))
	if cfg.ReplaceActive {
		contractOpts = append(contractOpts, payvalidator.WithReplaceActive())
	}
	contract := payvalidator.New(host, contractOpts...)

	if err := bootstrapBackend(ctx, contract, cfg.BackendPrincipal, log); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	indexCheck, err := startIndexer(ctx, host, log)
	if err != nil {
		return err
	}
	if indexCheck != nil {
		checks = append(checks, *indexCheck)
	}

	var issuer auth.Principal
	if cfg.AssetIssuer != "" {
		if issuer, err = auth.ParsePrincipal(cfg.AssetIssuer); err != nil {
			return fmt.Errorf("ASSET_ISSUER: %w", err)
		}
	}
	if err := qrcode.ValidateAsset(cfg.AssetCode, issuer); err != nil {
		return fmt.Errorf("ASSET_CODE: %w", err)
	}

	limiter, closeLimiter, err := newRateLimiter(be.limits)
	if err != nil {
		return err
	}
	defer closeLimiter()

	authOpts := []auth.MiddlewareOption{auth.WithMaxSkew(cfg.AuthMaxSkew)}
	if be.nonces != nil {
		authOpts = append(authOpts, auth.WithNonceStore(be.nonces))
	}

	apiOpts := []handler.APIOption{
		handler.WithLogger(log),
		handler.WithEnvironment(environment.Parse(cfg.AppEnv)),
		handler.WithAuthOptions(authOpts...),
		handler.WithHealthChecks(checks...),
		handler.WithPaymentAsset(cfg.AssetCode, issuer),
		handler.WithHeartbeat(cfg.EventsHeartbeat),
		handler.WithMaxBodySize(cfg.MaxBodySize),
		handler.WithTrustedProxyHeaders(cfg.TrustedProxies...),
	}
	if limiter != nil {
		apiOpts = append(apiOpts, handler.WithRateLimiter(limiter))
	}
	api := handler.NewAPI(contract, apiOpts...)

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("storage ready", slog.String("driver", cfg.StorageDriver))
		}),
	)
	return srv.Run(ctx, api.Routes())
}

// openStore connects the configured ledger backend.
func openStore(ctx context.Context, driver string, log *slog.Logger) (*backend, error) {
	switch driver {
	case "", "memory":
		log.Warn("using in-memory ledger store, state is lost on restart")
		return &backend{store: ledger.NewMemoryStore(), release: func() {}}, nil

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := redis.NewLedgerStore(client, cfg.KeyPrefix)
		return &backend{
			store:  store,
			checks: []httpserver.Check{{Name: "redis", Fn: store.Healthcheck}},
			limits: ratelimiter.NewRedisStore(client, cfg.KeyPrefix+"ratelimit:"),
			nonces: redis.NewNonceStore(client, cfg.KeyPrefix+"nonce:"),
			release: func() {
				if err := client.Close(); err != nil {
					log.Error("failed to close redis client", logger.Error(err))
				}
			},
		}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		store := pg.NewLedgerStore(pool)
		return &backend{
			store:   store,
			checks:  []httpserver.Check{{Name: "postgres", Fn: store.Healthcheck}},
			release: pool.Close,
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := db.Client()
		store := mongo.NewLedgerStore(db)
		return &backend{
			store:  store,
			checks: []httpserver.Check{{Name: "mongo", Fn: store.Healthcheck}},
			release: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Disconnect(ctx); err != nil {
					log.Error("failed to disconnect mongo client", logger.Error(err))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
}

// newRateLimiter builds the API limiter from RATE_LIMIT_*. It returns nil when
// limiting is disabled. shared is used when the storage backend offers one.
func newRateLimiter(shared ratelimiter.Store) (*ratelimiter.Bucket, func(), error) {
	var cfg ratelimiter.Config
	if err := config.Load(&cfg); err != nil {
		return nil, nil, err
	}
	if !cfg.Enabled() {
		return nil, func() {}, nil
	}

	store, release := shared, func() {}
	if store == nil {
		mem := ratelimiter.NewMemoryStore()
		store, release = mem, mem.Close
	}
	bucket, err := ratelimiter.NewBucket(store, cfg)
	if err != nil {
		release()
		return nil, nil, err
	}
	return bucket, release, nil
}

// bootstrapBackend records the configured backend principal. A restart with
// the same principal is a no-op; a different one is reported and kept out.
func bootstrapBackend(ctx context.Context, contract *payvalidator.Contract, raw string, log *slog.Logger) error {
	if raw == "" {
		return nil
	}
	backend, err := auth.ParsePrincipal(raw)
	if err != nil {
		return fmt.Errorf("BACKEND_PRINCIPAL: %w", err)
	}

	err = contract.Bootstrap(ctx, backend)
	switch {
	case err == nil:
		log.Info("backend principal bootstrapped", logger.Principal(backend.Short()))
		return nil
	case errors.Is(err, payvalidator.ErrAlreadyInitialized):
		current, err := contract.Backend(ctx)
		if err != nil {
			return err
		}
		if current != backend {
			log.Warn("BACKEND_PRINCIPAL differs from the stored backend and was ignored",
				logger.Principal(current.Short()),
			)
		}
		return nil
	default:
		return err
	}
}

// startIndexer mirrors events into OpenSearch when addresses are configured.
func startIndexer(ctx context.Context, host *ledger.Host, log *slog.Logger) (*httpserver.Check, error) {
	var cfg opensearch.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, nil
	}

	client, err := opensearch.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	indexer := opensearch.NewIndexer(client,
		opensearch.WithIndex(cfg.Index),
		opensearch.WithIndexerLogger(log),
	)
	go func() {
		if err := indexer.Run(ctx, host); err != nil {
			log.Error("event indexer stopped", logger.Error(err))
		}
	}()
	return &httpserver.Check{Name: "opensearch", Fn: opensearch.Healthcheck(client)}, nil
}
