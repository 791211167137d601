package store

import "context"

// Repository defines store persistence operations
type Repository interface {
	// Upsert creates or refreshes a store by its upstream UID
	Upsert(ctx context.Context, s *Store) error
	ListActive(ctx context.Context) ([]*Store, error)
}
