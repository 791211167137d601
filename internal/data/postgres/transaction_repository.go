// Package postgres provides PostgreSQL implementations of the domain
// repositories. All writes are keyed on the upstream business keys so repeated
// crawls stay idempotent.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/pos-cash-recon/internal/platform/persistence"
)

const transactionColumns = `
	id, cash_id, amount, store_uid, brand_uid, company_uid, time, type, note,
	payment_method_id, payment_method_name, employee_email, employee_name,
	shift_id, shift_name, category_id, flag, system_note,
	matched_order_payment_method_id, matched_order_payment_method_name,
	matched_order_payment_amount, extracted_distance_km,
	deleted_at, created_at, updated_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Upsert creates or updates a transaction by its upstream cash ID. The row ID
// is only set on first insert; conflicts keep the existing ID. deleted_at
// always takes the incoming value, which both revives records the upstream
// resurrected and keeps IN-type records hidden.
func (r *TransactionRepository) Upsert(ctx context.Context, t *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, cash_id, amount, store_uid, brand_uid, company_uid, time, type, note,
			payment_method_id, payment_method_name, employee_email, employee_name,
			shift_id, shift_name, category_id, flag, system_note,
			matched_order_payment_method_id, matched_order_payment_method_name,
			matched_order_payment_amount, extracted_distance_km,
			deleted_at, created_at, updated_at
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, NOW(), NOW()
		)
		ON CONFLICT (cash_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			store_uid = EXCLUDED.store_uid,
			brand_uid = EXCLUDED.brand_uid,
			company_uid = EXCLUDED.company_uid,
			time = EXCLUDED.time,
			type = EXCLUDED.type,
			note = EXCLUDED.note,
			payment_method_id = EXCLUDED.payment_method_id,
			payment_method_name = EXCLUDED.payment_method_name,
			employee_email = EXCLUDED.employee_email,
			employee_name = EXCLUDED.employee_name,
			shift_id = EXCLUDED.shift_id,
			shift_name = EXCLUDED.shift_name,
			category_id = EXCLUDED.category_id,
			flag = EXCLUDED.flag,
			system_note = EXCLUDED.system_note,
			matched_order_payment_method_id = EXCLUDED.matched_order_payment_method_id,
			matched_order_payment_method_name = EXCLUDED.matched_order_payment_method_name,
			matched_order_payment_amount = EXCLUDED.matched_order_payment_amount,
			extracted_distance_km = EXCLUDED.extracted_distance_km,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query,
		t.ID, t.CashID, t.Amount, t.StoreID, t.BrandID, t.CompanyID, t.Time, t.Type, t.Note,
		t.PaymentMethodID, t.PaymentMethodName, t.EmployeeEmail, t.EmployeeName,
		t.ShiftID, t.ShiftName, t.CategoryID, t.Flag, t.SystemNote,
		t.MatchedOrderPaymentMethodID, t.MatchedOrderPaymentMethodName,
		t.MatchedOrderPaymentAmount, t.ExtractedDistanceKm,
		t.DeletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert transaction", "cash_id", t.CashID, "error", err)
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted transaction by its row ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1 AND deleted_at IS NULL
	`

	t, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// GetByCashID retrieves a transaction by its upstream business key, including
// soft-deleted rows. Returns nil, nil when no row exists.
func (r *TransactionRepository) GetByCashID(ctx context.Context, cashID string) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE cash_id = $1
	`

	t, err := r.scanOne(r.querier.QueryRow(ctx, query, cashID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction by cash ID", "cash_id", cashID, "error", err)
		return nil, fmt.Errorf("failed to get transaction by cash ID: %w", err)
	}

	return t, nil
}

// DeleteStaleInWindow hard-deletes rows for a store in the window whose cash
// ID no longer appears in the upstream feed.
func (r *TransactionRepository) DeleteStaleInWindow(ctx context.Context, storeID string, startMs, endMs int64, keepCashIDs []string) (int64, error) {
	query := `
		DELETE FROM transactions
		WHERE store_uid = $1
		  AND time BETWEEN $2 AND $3
		  AND NOT (cash_id = ANY($4))
	`

	result, err := r.querier.Exec(ctx, query, storeID, startMs, endMs, keepCashIDs)
	if err != nil {
		r.logger.Error("Failed to delete stale transactions", "store_uid", storeID, "error", err)
		return 0, fmt.Errorf("failed to delete stale transactions: %w", err)
	}

	return result.RowsAffected(), nil
}

// List returns non-deleted transactions matching the filter, newest first,
// along with the total matching count for pagination.
func (r *TransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	where := []string{"deleted_at IS NULL", "time BETWEEN $1 AND $2"}
	args := []interface{}{filter.StartMs, filter.EndMs}

	if filter.StoreID != "" {
		args = append(args, filter.StoreID)
		where = append(where, fmt.Sprintf("store_uid = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.NoteSearch != "" {
		args = append(args, "%"+filter.NoteSearch+"%")
		where = append(where, fmt.Sprintf("note ILIKE $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM transactions WHERE " + whereClause
	if err := r.querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 50
	}
	args = append(args, perPage, (page-1)*perPage)

	query := fmt.Sprintf(`SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY time DESC
		LIMIT $%d OFFSET $%d
	`, transactionColumns, whereClause, len(args)-1, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, total, nil
}

// UpdateReview applies a manual dashboard override of flag and category.
func (r *TransactionRepository) UpdateReview(ctx context.Context, id uuid.UUID, flag transaction.Flag, categoryID *uuid.UUID) error {
	query := `
		UPDATE transactions
		SET flag = $1, category_id = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, flag, categoryID, id)
	if err != nil {
		r.logger.Error("Failed to update transaction review", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update transaction review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{ID: id}
	}

	return nil
}

// BulkUpdateFlag sets the flag on every listed row, returning the number updated.
func (r *TransactionRepository) BulkUpdateFlag(ctx context.Context, ids []uuid.UUID, flag transaction.Flag) (int64, error) {
	query := `
		UPDATE transactions
		SET flag = $1, updated_at = NOW()
		WHERE id = ANY($2) AND deleted_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, flag, ids)
	if err != nil {
		r.logger.Error("Failed to bulk update flags", "error", err)
		return 0, fmt.Errorf("failed to bulk update flags: %w", err)
	}

	return result.RowsAffected(), nil
}

// CategoryStats returns per-category totals and valid counts for non-deleted
// rows in the window.
func (r *TransactionRepository) CategoryStats(ctx context.Context, storeID string, startMs, endMs int64) ([]*transaction.CategoryStat, error) {
	where := []string{"deleted_at IS NULL", "category_id IS NOT NULL", "time BETWEEN $1 AND $2"}
	args := []interface{}{startMs, endMs}

	if storeID != "" {
		args = append(args, storeID)
		where = append(where, fmt.Sprintf("store_uid = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT category_id, COUNT(*), COUNT(*) FILTER (WHERE flag = 'valid')
		FROM transactions
		WHERE %s
		GROUP BY category_id
		ORDER BY COUNT(*) DESC
	`, strings.Join(where, " AND "))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query category stats", "error", err)
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	defer rows.Close()

	var stats []*transaction.CategoryStat
	for rows.Next() {
		var s transaction.CategoryStat
		if err := rows.Scan(&s.CategoryID, &s.Total, &s.ValidCount); err != nil {
			return nil, fmt.Errorf("failed to scan category stat: %w", err)
		}
		stats = append(stats, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category stats: %w", err)
	}

	return stats, nil
}

func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(
		&t.ID, &t.CashID, &t.Amount, &t.StoreID, &t.BrandID, &t.CompanyID, &t.Time, &t.Type, &t.Note,
		&t.PaymentMethodID, &t.PaymentMethodName, &t.EmployeeEmail, &t.EmployeeName,
		&t.ShiftID, &t.ShiftName, &t.CategoryID, &t.Flag, &t.SystemNote,
		&t.MatchedOrderPaymentMethodID, &t.MatchedOrderPaymentMethodName,
		&t.MatchedOrderPaymentAmount, &t.ExtractedDistanceKm,
		&t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
