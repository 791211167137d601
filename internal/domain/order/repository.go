package order

import "context"

// Repository defines order persistence operations
type Repository interface {
	// Upsert creates or refreshes an order by its upstream transaction ID
	Upsert(ctx context.Context, o *Order) error

	// ListInWindow returns all orders whose start date falls within [startMs, endMs],
	// across every store. Used to build the per-run snapshot.
	ListInWindow(ctx context.Context, startMs, endMs int64) ([]*Order, error)

	// DeleteStaleInWindow removes orders for a store in the given window whose
	// transaction ID is absent from keepTranIDs. The fetched window is authoritative.
	DeleteStaleInWindow(ctx context.Context, storeID string, startMs, endMs int64, keepTranIDs []string) (int64, error)
}
