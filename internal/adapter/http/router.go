package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goticket/internal/adapter/http/handler"
	"github.com/iho/goticket/internal/adapter/http/middleware"
	"github.com/iho/goticket/internal/infrastructure/auth"
	"github.com/iho/goticket/internal/infrastructure/metrics"
	"github.com/iho/goticket/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	CatalogHandler  *handler.CatalogHandler
	ExchangeHandler *handler.ExchangeHandler
	HealthHandler   *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	JWTManager       *auth.JWTManager
	RateLimiter      middleware.Limiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Metrics, cfg.Logger))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWTManager, cfg.Metrics))

		// Runs after identity so keys are scoped per user.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Post("/accounts", cfg.AccountHandler.Open)
		r.Get("/account", cfg.AccountHandler.Get)
		r.Post("/account/deposits", cfg.AccountHandler.Deposit)

		r.Get("/catalog", cfg.CatalogHandler.List)
		r.Get("/catalog/{event}", cfg.CatalogHandler.Get)
		r.Get("/holdings", cfg.CatalogHandler.Holdings)

		r.Post("/purchases", cfg.ExchangeHandler.Purchase)
		r.Post("/sales", cfg.ExchangeHandler.Sell)
	})

	return r
}
