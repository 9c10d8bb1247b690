package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/gobalance/internal/adapter/http"
	"github.com/iho/gobalance/internal/adapter/http/handler"
	"github.com/iho/gobalance/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gobalance/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobalance/internal/adapter/repository/redis"
	"github.com/iho/gobalance/internal/infrastructure/config"
	"github.com/iho/gobalance/internal/infrastructure/logger"
	"github.com/iho/gobalance/internal/infrastructure/metrics"
	"github.com/iho/gobalance/internal/infrastructure/postgres"
	"github.com/iho/gobalance/internal/infrastructure/redis"
	"github.com/iho/gobalance/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Run migrations before accepting traffic
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
		PingTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool, cfg.LockTimeout)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	tokenCache := redisRepo.NewTokenCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize metrics
	appMetrics := metrics.New()

	defaultStrategy, err := usecase.ParseStrategy(cfg.DefaultStrategy)
	if err != nil {
		log.Fatal().Str("strategy", cfg.DefaultStrategy).Msg("invalid default strategy")
	}

	defaultGuard, err := usecase.ParseGuardMode(cfg.DefaultGuard)
	if err != nil {
		log.Fatal().Str("guard", cfg.DefaultGuard).Msg("invalid default guard")
	}

	// Initialize use cases
	balanceUC := usecase.NewBalanceUseCase(
		txManager,
		balanceRepo,
		entryRepo,
		tokenCache,
		idGen,
		appMetrics,
		usecase.RetryConfig{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		},
		log,
	).WithDefaults(defaultStrategy, defaultGuard).WithCacheTTL(cfg.TokenCacheTTL)
	entryUC := usecase.NewEntryUseCase(entryRepo)

	// Initialize handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	entryHandler := handler.NewEntryHandler(entryUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler: balanceHandler,
		EntryHandler:   entryHandler,
		HealthHandler:  healthHandler,
		Logging:        middleware.NewLoggingMiddleware(log),
		Metrics:        middleware.NewMetricsMiddleware(appMetrics),
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
