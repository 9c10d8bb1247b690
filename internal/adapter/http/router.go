package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/gobalance/internal/adapter/http/handler"
	"github.com/iho/gobalance/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler *handler.BalanceHandler
	EntryHandler   *handler.EntryHandler
	HealthHandler  *handler.HealthHandler
	Logging        *middleware.LoggingMiddleware
	Metrics        *middleware.MetricsMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)

	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}

	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/balances", func(r chi.Router) {
			r.Post("/", cfg.BalanceHandler.Create)
			r.Get("/{id}", cfg.BalanceHandler.Get)
			r.Post("/{id}/apply", cfg.BalanceHandler.Apply)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/{token}", cfg.EntryHandler.GetByToken)
		})
	})

	return r
}
