package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/portfolio-profit-engine/internal/accrual"
	"github.com/portfolio-profit-engine/internal/adminapi"
	"github.com/portfolio-profit-engine/internal/adminapi/service"
	"github.com/portfolio-profit-engine/internal/config"
	"github.com/portfolio-profit-engine/internal/data/mongo"
	"github.com/portfolio-profit-engine/internal/data/postgres"
	"github.com/portfolio-profit-engine/internal/logger"
	"github.com/portfolio-profit-engine/internal/outbox_poller"
	"github.com/portfolio-profit-engine/internal/platform/messaging/producers"
	"github.com/portfolio-profit-engine/internal/platform/persistence"
	"github.com/portfolio-profit-engine/internal/sysconfig"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("profit_engine")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Profit Engine",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	portfolioRepo := postgres.NewPortfolioRepository(log, postgresDB)
	historyRepo := postgres.NewProfitHistoryRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	configRepo := postgres.NewConfigRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	auditRepo := mongo.NewAuditRepository(log, mongoDB.Database())

	// Initialize the configuration store and seed missing defaults
	configStore := sysconfig.NewStore(log, configRepo)
	if err := configStore.SeedDefaults(appCtx); err != nil {
		log.Error("Failed to seed configuration defaults", "error", err)
		os.Exit(1)
	}

	// Initialize the accrual engine and batch coordinator
	engine := accrual.NewEngine(postgresDB, portfolioRepo, historyRepo, transactionRepo, outboxRepo, log)
	coordinator, err := accrual.NewCoordinator(engine, portfolioRepo, configStore, cfg.WorkerPool.Size, log)
	if err != nil {
		log.Error("Failed to initialize batch coordinator", "error", err)
		os.Exit(1)
	}

	// Initialize the scheduler
	scheduler := accrual.NewScheduler(coordinator, configStore, cfg.Scheduler.PollInterval, log)

	// Initialize the Kafka producer for accrual events
	eventProducer, err := producers.NewAccrualEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the outbox poller feeding the audit trail and event topic
	auditPublisher := outbox_poller.NewAuditPublisher(auditRepo, eventProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, auditPublisher, log)

	// Initialize the admin HTTP server
	profitService := service.NewProfitService(coordinator, historyRepo, portfolioRepo, auditRepo)
	configService := service.NewConfigService(configStore)
	server := adminapi.NewServer(log, cfg, profitService, configService)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start the scheduler in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(appCtx)
	}()

	// Start the outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Start the HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context to stop the scheduler and poller
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping HTTP server", "error", err)
	}

	// Wait for the scheduler and poller goroutines to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Release the batch coordinator's worker pool
	coordinator.Close()

	// Close Kafka producer
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Profit Engine shutdown completed with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Profit Engine shutdown completed successfully")
}
