package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pos-cash-recon/internal/domain/order"
	"github.com/pos-cash-recon/internal/platform/persistence"
)

// OrderRepository implements the order.Repository interface for PostgreSQL
type OrderRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(logger *slog.Logger, db *persistence.PostgresDB) order.Repository {
	return &OrderRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Upsert creates or refreshes an order by its upstream transaction ID.
func (r *OrderRepository) Upsert(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			tran_id, source_fb_id, tran_no, store_uid, tran_date, start_date,
			amount_origin, payment_method_id, payment_method_name, payment_amount,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		ON CONFLICT (tran_id) DO UPDATE SET
			source_fb_id = EXCLUDED.source_fb_id,
			tran_no = EXCLUDED.tran_no,
			store_uid = EXCLUDED.store_uid,
			tran_date = EXCLUDED.tran_date,
			start_date = EXCLUDED.start_date,
			amount_origin = EXCLUDED.amount_origin,
			payment_method_id = EXCLUDED.payment_method_id,
			payment_method_name = EXCLUDED.payment_method_name,
			payment_amount = EXCLUDED.payment_amount,
			updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query,
		o.TranID, o.SourceID, o.TranNo, o.StoreID, o.TranDate, o.StartDate,
		o.AmountOrigin, o.PaymentMethodID, o.PaymentMethodName, o.PaymentAmount,
	)
	if err != nil {
		r.logger.Error("Failed to upsert order", "tran_id", o.TranID, "error", err)
		return fmt.Errorf("failed to upsert order: %w", err)
	}

	return nil
}

// ListInWindow returns all orders whose start date falls within [startMs, endMs],
// across every store.
func (r *OrderRepository) ListInWindow(ctx context.Context, startMs, endMs int64) ([]*order.Order, error) {
	query := `
		SELECT tran_id, source_fb_id, tran_no, store_uid, tran_date, start_date,
		       amount_origin, payment_method_id, payment_method_name, payment_amount,
		       created_at, updated_at
		FROM orders
		WHERE start_date BETWEEN $1 AND $2
		ORDER BY start_date
	`

	rows, err := r.querier.Query(ctx, query, startMs, endMs)
	if err != nil {
		r.logger.Error("Failed to list orders in window", "error", err)
		return nil, fmt.Errorf("failed to list orders in window: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var o order.Order
		err := rows.Scan(
			&o.TranID, &o.SourceID, &o.TranNo, &o.StoreID, &o.TranDate, &o.StartDate,
			&o.AmountOrigin, &o.PaymentMethodID, &o.PaymentMethodName, &o.PaymentAmount,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// DeleteStaleInWindow removes orders for a store in the window whose
// transaction ID no longer appears in the upstream report.
func (r *OrderRepository) DeleteStaleInWindow(ctx context.Context, storeID string, startMs, endMs int64, keepTranIDs []string) (int64, error) {
	query := `
		DELETE FROM orders
		WHERE store_uid = $1
		  AND start_date BETWEEN $2 AND $3
		  AND NOT (tran_id = ANY($4))
	`

	result, err := r.querier.Exec(ctx, query, storeID, startMs, endMs, keepTranIDs)
	if err != nil {
		r.logger.Error("Failed to delete stale orders", "store_uid", storeID, "error", err)
		return 0, fmt.Errorf("failed to delete stale orders: %w", err)
	}

	return result.RowsAffected(), nil
}
