package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/pos-cash-recon/internal/reconciler"
)

// DashboardServiceImpl implements the DashboardService interface
type DashboardServiceImpl struct {
	transactions transaction.Repository
	stores       store.Repository
	categories   category.Repository
	anchorDay    int
	now          func() time.Time
	logger       *slog.Logger
}

// NewDashboardService creates a new dashboard service. anchorDay is the
// day-of-month the billing cycle rolls over on.
func NewDashboardService(
	logger *slog.Logger,
	transactions transaction.Repository,
	stores store.Repository,
	categories category.Repository,
	anchorDay int,
) DashboardService {
	return &DashboardServiceImpl{
		transactions: transactions,
		stores:       stores,
		categories:   categories,
		anchorDay:    anchorDay,
		now:          time.Now,
		logger:       logger,
	}
}

// defaultWindow fills a zero start/end with the current billing cycle.
func (s *DashboardServiceImpl) defaultWindow(startMs, endMs int64) (int64, int64) {
	if startMs != 0 || endMs != 0 {
		return startMs, endMs
	}
	return reconciler.BillingCycle(s.now(), s.anchorDay)
}

// ListTransactions returns a page of transactions matching the filter.
func (s *DashboardServiceImpl) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	filter.StartMs, filter.EndMs = s.defaultWindow(filter.StartMs, filter.EndMs)

	txs, total, err := s.transactions.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list transactions",
			"store_uid", filter.StoreID,
			"start_ms", filter.StartMs,
			"end_ms", filter.EndMs,
			"error", err,
		)
		return nil, 0, err
	}
	return txs, total, nil
}

// ReviewTransaction resolves a transaction held for review.
func (s *DashboardServiceImpl) ReviewTransaction(ctx context.Context, id uuid.UUID, flag transaction.Flag, categoryID *uuid.UUID) (*transaction.Transaction, error) {
	if !transaction.IsValidFlag(flag) {
		return nil, ErrInvalidFlag
	}

	if err := s.transactions.UpdateReview(ctx, id, flag, categoryID); err != nil {
		s.logger.Error("Failed to review transaction",
			"transaction_id", id,
			"flag", string(flag),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Transaction reviewed",
		"transaction_id", id,
		"flag", string(flag),
	)
	return s.transactions.GetByID(ctx, id)
}

// BulkFlag applies one flag to a batch of transactions.
func (s *DashboardServiceImpl) BulkFlag(ctx context.Context, ids []uuid.UUID, flag transaction.Flag) (int64, error) {
	if !transaction.IsValidFlag(flag) {
		return 0, ErrInvalidFlag
	}

	updated, err := s.transactions.BulkUpdateFlag(ctx, ids, flag)
	if err != nil {
		s.logger.Error("Failed to bulk-flag transactions",
			"count", len(ids),
			"flag", string(flag),
			"error", err,
		)
		return 0, err
	}

	s.logger.Info("Transactions bulk-flagged",
		"requested", len(ids),
		"updated", updated,
		"flag", string(flag),
	)
	return updated, nil
}

// ListStores returns every active store.
func (s *DashboardServiceImpl) ListStores(ctx context.Context) ([]*store.Store, error) {
	stores, err := s.stores.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list stores", "error", err)
		return nil, err
	}
	return stores, nil
}

// ListCategories returns every known spending category.
func (s *DashboardServiceImpl) ListCategories(ctx context.Context) ([]*category.Category, error) {
	cats, err := s.categories.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", "error", err)
		return nil, err
	}
	return cats, nil
}

// CategoryStats returns the per-category spend breakdown inside the window.
func (s *DashboardServiceImpl) CategoryStats(ctx context.Context, storeID string, startMs, endMs int64) ([]*transaction.CategoryStat, error) {
	startMs, endMs = s.defaultWindow(startMs, endMs)

	stats, err := s.transactions.CategoryStats(ctx, storeID, startMs, endMs)
	if err != nil {
		s.logger.Error("Failed to compute category stats",
			"store_uid", storeID,
			"start_ms", startMs,
			"end_ms", endMs,
			"error", err,
		)
		return nil, err
	}
	return stats, nil
}
