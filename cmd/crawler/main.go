package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pos-cash-recon/internal/config"
	"github.com/pos-cash-recon/internal/data/mongo"
	"github.com/pos-cash-recon/internal/data/postgres"
	"github.com/pos-cash-recon/internal/logger"
	"github.com/pos-cash-recon/internal/platform/messaging/producers"
	"github.com/pos-cash-recon/internal/platform/persistence"
	"github.com/pos-cash-recon/internal/platform/pos"
	"github.com/pos-cash-recon/internal/reconciler"
	"github.com/pos-cash-recon/internal/scheduler"
)

func main() {
	runOnce := flag.String("run", "", "run one crawl and exit: orders or transactions")
	flag.Parse()

	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("crawler")
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
	defer postgresDB.Close()

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	flagProducer, err := producers.NewFlagEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize flag event producer", "error", err)
		os.Exit(1)
	}

	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	orderRepo := postgres.NewOrderRepository(log, postgresDB)
	storeRepo := postgres.NewStoreRepository(log, postgresDB)
	categoryRepo := postgres.NewCategoryRepository(log, postgresDB)
	archiveRepo := mongo.NewCrawlArchiveRepository(log, mongoDB.Database())

	posClient := pos.NewClient(&cfg.POS, log)

	crawler := reconciler.NewCrawler(
		posClient,
		storeRepo,
		orderRepo,
		transactionRepo,
		categoryRepo,
		archiveRepo,
		flagProducer,
		cfg.Crawl.AnchorDay,
		log,
	)

	// One-shot mode for manual backfills and cron-less deployments.
	if *runOnce != "" {
		err := runSingle(appCtx, crawler, *runOnce)
		shutdown(log, flagProducer, mongoDB)
		if err != nil {
			log.Error("Crawl failed", "run", *runOnce, "error", err)
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.NewScheduler(log, &cfg.Crawl, crawler)
	if err != nil {
		log.Error("Failed to initialize scheduler", "error", err)
		os.Exit(1)
	}
	sched.Start()
	log.Info("Crawler running",
		"order_schedule", cfg.Crawl.OrderSchedule,
		"transaction_schedule", cfg.Crawl.TransactionSchedule,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelStop()
	if err := sched.Stop(stopCtx); err != nil {
		log.Error("Error stopping scheduler", "error", err)
	}

	shutdown(log, flagProducer, mongoDB)
	log.Info("Shutdown complete")
}

func runSingle(ctx context.Context, crawler *reconciler.Crawler, kind string) error {
	switch kind {
	case "orders":
		return crawler.RunOrders(ctx)
	case "transactions":
		return crawler.RunTransactions(ctx)
	default:
		return fmt.Errorf("unknown crawl kind %q (want orders or transactions)", kind)
	}
}

func shutdown(log *slog.Logger, producer *producers.FlagEventProducer, mongoDB *persistence.MongoDB) {
	if err := producer.Close(); err != nil {
		log.Error("Error closing flag event producer", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoDB.Close(closeCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}
}
