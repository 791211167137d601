package transaction

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows dashboard queries. Zero values mean "no filter" except
// the window bounds, which are always applied.
type ListFilter struct {
	StartMs    int64
	EndMs      int64
	StoreID    string
	CategoryID *uuid.UUID
	NoteSearch string // Substring match against the free-text note
	Page       int
	PerPage    int
}

// CategoryStat is the per-category rollup shown in the dashboard dropdown.
type CategoryStat struct {
	CategoryID uuid.UUID `json:"category_id"`
	Total      int64     `json:"total"`
	ValidCount int64     `json:"valid_count"`
}

// Repository defines transaction persistence operations.
// Upsert and lookup by cash ID include soft-deleted rows: the upstream
// business key must stay resolvable after logical deletion.
type Repository interface {
	// Upsert creates or updates by cash ID, reviving soft-deleted rows.
	// The stored deleted_at always takes the incoming value, so a revived
	// record has its marker cleared and an IN-type record keeps it set.
	Upsert(ctx context.Context, t *Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByCashID returns the row for the upstream key, including
	// soft-deleted rows, or nil when absent.
	GetByCashID(ctx context.Context, cashID string) (*Transaction, error)

	// DeleteStaleInWindow hard-deletes rows for a store in the window whose
	// cash ID is absent from keepCashIDs (they were removed upstream).
	DeleteStaleInWindow(ctx context.Context, storeID string, startMs, endMs int64, keepCashIDs []string) (int64, error)

	// List returns non-deleted rows matching the filter, newest first,
	// along with the total row count for pagination.
	List(ctx context.Context, filter ListFilter) ([]*Transaction, int64, error)

	// UpdateReview applies a manual dashboard override of flag and category.
	UpdateReview(ctx context.Context, id uuid.UUID, flag Flag, categoryID *uuid.UUID) error

	// BulkUpdateFlag sets the flag on every listed row, returning the number updated.
	BulkUpdateFlag(ctx context.Context, ids []uuid.UUID, flag Flag) (int64, error)

	// CategoryStats returns per-category totals and valid counts in the window.
	CategoryStats(ctx context.Context, storeID string, startMs, endMs int64) ([]*CategoryStat, error)
}
