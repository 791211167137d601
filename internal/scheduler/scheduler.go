package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pos-cash-recon/internal/config"
)

// CrawlRunner is the subset of the crawler the scheduler drives.
type CrawlRunner interface {
	RunOrders(ctx context.Context) error
	RunTransactions(ctx context.Context) error
}

// Scheduler triggers the order and transaction crawls on their cron
// schedules. Each job runs with the scheduler's base context so an
// in-flight crawl is cancelled on shutdown.
type Scheduler struct {
	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewScheduler registers both crawl jobs. Returns an error when either cron
// spec does not parse.
func NewScheduler(logger *slog.Logger, cfg *config.CrawlConfig, runner CrawlRunner) (*Scheduler, error) {
	baseCtx, cancel := context.WithCancel(context.Background())
	c := cron.New()

	s := &Scheduler{
		cron:    c,
		baseCtx: baseCtx,
		cancel:  cancel,
		logger:  logger,
	}

	// Orders first in registration order only; cron offers no ordering
	// guarantee, the crawls tolerate either sequence.
	if _, err := c.AddFunc(cfg.OrderSchedule, s.job("orders", runner.RunOrders)); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid order crawl schedule %q: %w", cfg.OrderSchedule, err)
	}
	if _, err := c.AddFunc(cfg.TransactionSchedule, s.job("transactions", runner.RunTransactions)); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid transaction crawl schedule %q: %w", cfg.TransactionSchedule, err)
	}

	return s, nil
}

func (s *Scheduler) job(name string, run func(ctx context.Context) error) func() {
	return func() {
		start := time.Now()
		s.logger.Info("Crawl job starting", "job", name)

		if err := run(s.baseCtx); err != nil {
			s.logger.Error("Crawl job failed", "job", name, "duration", time.Since(start), "error", err)
			return
		}
		s.logger.Info("Crawl job finished", "job", name, "duration", time.Since(start))
	}
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	s.cron.Start()
}

// Stop cancels any in-flight crawl and waits for running jobs to return, or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Scheduler stopping")
	s.cancel()

	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
