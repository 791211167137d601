package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/platform/persistence"
)

// StoreRepository implements the store.Repository interface for PostgreSQL
type StoreRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewStoreRepository creates a new PostgreSQL store repository.
func NewStoreRepository(logger *slog.Logger, db *persistence.PostgresDB) store.Repository {
	return &StoreRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Upsert creates or refreshes a store by its upstream UID.
func (r *StoreRepository) Upsert(ctx context.Context, s *store.Store) error {
	query := `
		INSERT INTO stores (pos_id, name, short_name, brand_uid, company_uid, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (pos_id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name,
			brand_uid = EXCLUDED.brand_uid,
			company_uid = EXCLUDED.company_uid,
			active = EXCLUDED.active,
			updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query, s.POSID, s.Name, s.ShortName, s.BrandID, s.CompanyID, s.Active)
	if err != nil {
		r.logger.Error("Failed to upsert store", "pos_id", s.POSID, "error", err)
		return fmt.Errorf("failed to upsert store: %w", err)
	}

	return nil
}

// ListActive returns all stores currently flagged active, ordered by name.
func (r *StoreRepository) ListActive(ctx context.Context) ([]*store.Store, error) {
	query := `
		SELECT pos_id, name, short_name, brand_uid, company_uid, active, created_at, updated_at
		FROM stores
		WHERE active
		ORDER BY name
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list active stores", "error", err)
		return nil, fmt.Errorf("failed to list active stores: %w", err)
	}
	defer rows.Close()

	var stores []*store.Store
	for rows.Next() {
		var s store.Store
		err := rows.Scan(&s.POSID, &s.Name, &s.ShortName, &s.BrandID, &s.CompanyID, &s.Active, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stores: %w", err)
	}

	return stores, nil
}
