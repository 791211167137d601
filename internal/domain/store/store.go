// Package store holds the per-location metadata synced from the upstream
// store list on every crawl.
package store

import (
	"strings"
	"time"
)

// Store is one physical location of the chain, keyed by the upstream store UID.
type Store struct {
	POSID     string    `json:"pos_id"` // Upstream business key
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"` // First two words of the name, for compact dashboard labels
	BrandID   string    `json:"brand_id"`
	CompanyID string    `json:"company_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ShortNameOf derives the compact label from a full store name.
func ShortNameOf(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}
