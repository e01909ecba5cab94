package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/goticket/internal/adapter/http"
	"github.com/iho/goticket/internal/adapter/http/handler"
	"github.com/iho/goticket/internal/adapter/http/middleware"
	"github.com/iho/goticket/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/goticket/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goticket/internal/adapter/repository/redis"
	"github.com/iho/goticket/internal/infrastructure/auth"
	"github.com/iho/goticket/internal/infrastructure/cardcrypto"
	"github.com/iho/goticket/internal/infrastructure/clock"
	"github.com/iho/goticket/internal/infrastructure/config"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/infrastructure/postgres"
	"github.com/iho/goticket/internal/infrastructure/redis"
	"github.com/iho/goticket/internal/usecase"
)

// app owns the long-lived resources behind the router.
type app struct {
	router  http.Handler
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, logg zerolog.Logger, reg *prometheus.Registry) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	cardKey, err := cfg.CardKey()
	if err != nil {
		return nil, err
	}
	cipher, err := cardcrypto.NewCipher(cardKey)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logg).Up(); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	logg.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{ReadTimeout: cfg.StoreTimeout, WriteTimeout: cfg.StoreTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { redisClient.Close() })
	logg.Info().Msg("connected to redis")

	m := metrics.New(reg)
	clk := clock.NewSystem()
	locker := newLocker(cfg, pool)

	tokenStore, err := newTokenStore(cfg, cardKey, redisClient, m)
	if err != nil {
		return nil, err
	}

	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		AccountRepo:  postgresRepo.NewAccountRepository(pool, m),
		Cipher:       cipher,
		Locker:       locker,
		Clock:        clk,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      m,
	})
	inventory := usecase.NewInventoryUseCase(usecase.InventoryConfig{
		TxManager:    postgresRepo.NewTxManager(pool),
		CatalogRepo:  postgresRepo.NewCatalogRepository(pool, m),
		HoldingRepo:  postgresRepo.NewHoldingRepository(pool, m),
		Clock:        clk,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      m,
	})
	tokenizer := usecase.NewTokenizerUseCase(usecase.TokenizerConfig{
		Cipher:       cipher,
		Store:        tokenStore,
		Settler:      ledger,
		Tokens:       cardcrypto.NewTokenGenerator(),
		Clock:        clk,
		TTL:          cfg.TokenTTL,
		StoreTimeout: cfg.StoreTimeout,
		Metrics:      m,
	})
	exchange := usecase.NewExchangeUseCase(usecase.ExchangeConfig{
		Ledger:       ledger,
		Inventory:    inventory,
		Tokenizer:    tokenizer,
		Locker:       locker,
		Retrier:      postgresRepo.NewRetrier(logg),
		IDGen:        postgresRepo.NewULIDGenerator(),
		Clock:        clk,
		Policy:       cfg.Policy(),
		Logger:       logg,
		Metrics:      m,
		StoreTimeout: cfg.StoreTimeout,
	})

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	limiter := newRateLimiter(ctx, cfg, redisClient)

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(ledger),
		CatalogHandler:  handler.NewCatalogHandler(inventory),
		ExchangeHandler: handler.NewExchangeHandler(exchange),
		HealthHandler: handler.NewHealthHandler().
			WithCheck("postgres", pool.Ping).
			WithCheck("redis", redis.Pinger(redisClient)),
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient, m),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		JWTManager:       jwtManager,
		RateLimiter:      limiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           logg,
	})

	logg.Info().
		Str("token_backend", cfg.TokenBackend).
		Str("lock_backend", cfg.LockBackend).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Str("sale_price_policy", string(cfg.Policy())).
		Bool("auth_enabled", cfg.AuthEnabled).
		Msg("application wired")

	return a, nil
}

func newTokenStore(cfg *config.Config, cardKey []byte, client *goredis.Client, m *metrics.Metrics) (usecase.TokenStore, error) {
	if cfg.TokenBackend == config.BackendMemory {
		return memory.NewTokenStore(), nil
	}

	refKey, err := cardcrypto.TokenReferenceKey(cardKey)
	if err != nil {
		return nil, err
	}
	return redisRepo.NewTokenStore(client, refKey, m)
}

// newLocker returns the locker shared by the ledger and the exchange so both
// serialize on the same keys.
func newLocker(cfg *config.Config, pool *pgxpool.Pool) usecase.Locker {
	if cfg.LockBackend == config.BackendPostgres {
		return postgresRepo.NewAdvisoryLocker(pool)
	}
	return memory.NewKeyedLocker()
}

func newRateLimiter(ctx context.Context, cfg *config.Config, client *goredis.Client) middleware.Limiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}

	if cfg.RateLimitBackend == config.BackendRedis {
		return redisRepo.NewRateCounter(client, cfg.RateLimitPerMinute, time.Minute)
	}

	perSecond := float64(cfg.RateLimitPerMinute) / 60
	rl := middleware.NewRateLimiter(perSecond, cfg.RateLimitPerMinute)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.CleanupLimiters(time.Hour)
			}
		}
	}()

	return rl
}
