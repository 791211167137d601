package category

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines category persistence operations
type Repository interface {
	Create(ctx context.Context, c *Category) error
	ListAll(ctx context.Context) ([]*Category, error)

	// SetUpstreamID backfills the upstream profession UID on a category that
	// was first seen without one. Callers must not overwrite a populated ID.
	SetUpstreamID(ctx context.Context, id uuid.UUID, upstreamID string) error
}
