package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// ErrInvalidFlag is returned when a review request carries a flag the
// classifier does not recognize.
var ErrInvalidFlag = errors.New("flag must be one of: valid, invalid, review")

// DashboardService defines the read and review operations backing the
// reconciliation dashboard.
type DashboardService interface {
	// ListTransactions returns a page of transactions matching the filter,
	// plus the total count. A zero window defaults to the current billing
	// cycle.
	ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error)

	// ReviewTransaction resolves a transaction held for review and returns
	// the updated record.
	// Returns ErrTransactionNotFound if the transaction doesn't exist.
	ReviewTransaction(ctx context.Context, id uuid.UUID, flag transaction.Flag, categoryID *uuid.UUID) (*transaction.Transaction, error)

	// BulkFlag applies one flag to a batch of transactions and returns how
	// many rows changed.
	BulkFlag(ctx context.Context, ids []uuid.UUID, flag transaction.Flag) (int64, error)

	// ListStores returns every active store.
	ListStores(ctx context.Context) ([]*store.Store, error)

	// ListCategories returns every known spending category.
	ListCategories(ctx context.Context) ([]*category.Category, error)

	// CategoryStats returns the per-category spend breakdown inside the
	// window. A zero window defaults to the current billing cycle.
	CategoryStats(ctx context.Context, storeID string, startMs, endMs int64) ([]*transaction.CategoryStat, error)
}
