// Package category manages the classification buckets ("professions") that cash
// transactions are resolved into. Categories mirror upstream professions when
// the upstream provides one, and are invented locally for note-derived concepts
// such as warehouse shipping reimbursements.
package category

import (
	"time"

	"github.com/google/uuid"
)

// Category is a local classification bucket for a cash transaction.
// UpstreamID is empty for locally invented categories.
type Category struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	UpstreamID string    `json:"upstream_id"` // Upstream profession UID, empty when local
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCategory creates a category with a fresh ID.
func NewCategory(name, upstreamID string) *Category {
	now := time.Now()
	return &Category{
		ID:         uuid.New(),
		Name:       name,
		UpstreamID: upstreamID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
