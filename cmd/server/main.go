package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/sgcerp/tajbilling/internal/adapter/http"
	"github.com/sgcerp/tajbilling/internal/adapter/http/handler"
	postgresRepo "github.com/sgcerp/tajbilling/internal/adapter/repository/postgres"
	redisRepo "github.com/sgcerp/tajbilling/internal/adapter/repository/redis"
	"github.com/sgcerp/tajbilling/internal/infrastructure/config"
	"github.com/sgcerp/tajbilling/internal/infrastructure/eventpublisher"
	"github.com/sgcerp/tajbilling/internal/infrastructure/logger"
	"github.com/sgcerp/tajbilling/internal/infrastructure/postgres"
	"github.com/sgcerp/tajbilling/internal/infrastructure/redis"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "tajbilling"})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	propertyRepo := postgresRepo.NewPropertyRepository(pool)
	residentRepo := postgresRepo.NewResidentRepository(pool)
	txnRepo := postgresRepo.NewTransactionRepository(pool)
	camRepo := postgresRepo.NewCAMChargeRepository(pool)
	billRepo := postgresRepo.NewElectricityBillRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	receiptRepo := postgresRepo.NewReceiptRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	seqGen := postgresRepo.NewSequenceRepository(pool, appLogger)
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	tariffRepo := redisRepo.NewCachedTariffRepository(
		postgresRepo.NewTariffRepository(pool), cache, cfg.TariffCacheTTL)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	retrier := postgresRepo.NewRetrier(appLogger)

	// Initialize use cases
	tariffUC := usecase.NewTariffUseCase(tariffRepo, auditRepo, idGen)
	invoiceUC := usecase.NewInvoiceUseCase(txManager, invoiceRepo, propertyRepo, seqGen, outboxRepo,
		auditRepo, idGen, cfg.GracePeriodDays, cfg.DueDateOffsetDays).WithRetrier(retrier)
	arrears := usecase.NewArrearsResolver(invoiceRepo)
	camUC := usecase.NewCAMChargeUseCase(camRepo, propertyRepo, tariffUC, arrears,
		invoiceUC, seqGen, auditRepo, idGen, cfg.BulkChunkSize, cfg.BulkWorkers, appLogger)
	electricityUC := usecase.NewElectricityUseCase(billRepo, propertyRepo, tariffUC, arrears,
		invoiceUC, seqGen, auditRepo, idGen, cfg.BulkChunkSize, cfg.BulkWorkers, appLogger)
	receiptUC := usecase.NewReceiptUseCase(txManager, receiptRepo, invoiceRepo, seqGen,
		outboxRepo, auditRepo, idGen, cfg.GracePeriodDays).WithRetrier(retrier)
	ledgerUC := usecase.NewLedgerUseCase(txManager, residentRepo, txnRepo, invoiceRepo,
		outboxRepo, auditRepo, idGen, cfg.GracePeriodDays).WithRetrier(retrier)
	propertyUC := usecase.NewPropertyUseCase(propertyRepo, seqGen, auditRepo, idGen)
	residentUC := usecase.NewResidentUseCase(txManager, residentRepo, propertyRepo, seqGen, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(residentRepo, txnRepo, invoiceRepo,
		propertyRepo, cfg.GracePeriodDays)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PropertyHandler:       handler.NewPropertyHandler(propertyUC),
		ResidentHandler:       handler.NewResidentHandler(residentUC),
		TariffHandler:         handler.NewTariffHandler(tariffUC),
		CAMChargeHandler:      handler.NewCAMChargeHandler(camUC),
		ElectricityHandler:    handler.NewElectricityHandler(electricityUC),
		InvoiceHandler:        handler.NewInvoiceHandler(invoiceUC),
		ReceiptHandler:        handler.NewReceiptHandler(receiptUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		Logger:                appLogger,
		RateLimit:             cfg.RateLimitRPS,
		RateBurst:             cfg.RateLimitBurst,
	})

	// Start outbox event publisher
	publisherCtx, publisherCancel := context.WithCancel(ctx)
	defer publisherCancel()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(appLogger),
		Logger:     appLogger,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

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
	publisherCancel()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
