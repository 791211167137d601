package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/platform/persistence"
)

// CategoryRepository implements the category.Repository interface for PostgreSQL
type CategoryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewCategoryRepository creates a new PostgreSQL category repository.
func NewCategoryRepository(logger *slog.Logger, db *persistence.PostgresDB) category.Repository {
	return &CategoryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new category. Duplicate names hit the unique constraint
// and return a database error; the in-memory index prevents this in the
// crawl path.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (id, name, upstream_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.querier.Exec(ctx, query, c.ID, c.Name, c.UpstreamID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create category", "name", c.Name, "error", err)
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// ListAll returns every category.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]*category.Category, error) {
	query := `
		SELECT id, name, upstream_id, created_at, updated_at
		FROM categories
		ORDER BY name
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.UpstreamID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// SetUpstreamID backfills the upstream profession UID on a category first
// seen without one. The guard keeps a populated ID from being overwritten.
func (r *CategoryRepository) SetUpstreamID(ctx context.Context, id uuid.UUID, upstreamID string) error {
	query := `
		UPDATE categories
		SET upstream_id = $1, updated_at = NOW()
		WHERE id = $2 AND upstream_id = ''
	`

	_, err := r.querier.Exec(ctx, query, upstreamID, id)
	if err != nil {
		r.logger.Error("Failed to set category upstream ID", "id", id.String(), "error", err)
		return fmt.Errorf("failed to set category upstream ID: %w", err)
	}

	return nil
}
