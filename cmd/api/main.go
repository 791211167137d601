package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pos-cash-recon/internal/api"
	"github.com/pos-cash-recon/internal/api/service"
	"github.com/pos-cash-recon/internal/config"
	"github.com/pos-cash-recon/internal/data/postgres"
	"github.com/pos-cash-recon/internal/logger"
	"github.com/pos-cash-recon/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	storeRepo := postgres.NewStoreRepository(log, postgresDB)
	categoryRepo := postgres.NewCategoryRepository(log, postgresDB)

	dashboard := service.NewDashboardService(log, transactionRepo, storeRepo, categoryRepo, cfg.Crawl.AnchorDay)

	server := api.NewServer(log, cfg, dashboard)
	log.Info("REST server initialized")

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	postgresDB.Close()

	if serverErr != nil {
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}
