package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/keepbooks/bankrec/internal/adapter/http"
	"github.com/keepbooks/bankrec/internal/adapter/http/handler"
	postgresRepo "github.com/keepbooks/bankrec/internal/adapter/repository/postgres"
	redisRepo "github.com/keepbooks/bankrec/internal/adapter/repository/redis"
	"github.com/keepbooks/bankrec/internal/domain"
	"github.com/keepbooks/bankrec/internal/infrastructure/auth"
	"github.com/keepbooks/bankrec/internal/infrastructure/config"
	"github.com/keepbooks/bankrec/internal/infrastructure/logging"
	"github.com/keepbooks/bankrec/internal/infrastructure/metrics"
	"github.com/keepbooks/bankrec/internal/infrastructure/postgres"
	"github.com/keepbooks/bankrec/internal/infrastructure/redis"
	"github.com/keepbooks/bankrec/internal/parser"
	"github.com/keepbooks/bankrec/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	batchRepo := postgresRepo.NewBatchRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	customerRepo := postgresRepo.NewCustomerRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	matcherUC := usecase.NewMatcherUseCase(txManager, invoiceRepo, customerRepo, paymentRepo, idGen)
	importUC := usecase.NewImportUseCase(
		batchRepo,
		expenseRepo,
		paymentRepo,
		auditRepo,
		parser.NewCSVParser(),
		matcherUC,
		idGen,
		domain.DefaultRuleSet(),
		usecase.ImportOptions{
			AutoCreateInvoices: cfg.AutoCreateInvoices,
			StoreTimeout:       cfg.StoreTimeout,
		},
	)

	m := metrics.New()

	// Handlers
	importHandler := handler.NewImportHandler(importUC, cache, m, cfg.ImportMaxFileBytes)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ImportHandler:    importHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		JWTManager:       jwtManager,
		Logger:           logger,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
