package category

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Index is the single-owner, append-only category set used across one
// reconciliation run. It is loaded once from the repository and mutated in
// place, so categories created while processing one store are visible to every
// later store in the same run without re-querying.
//
// Lookup precedence is upstream ID first, then name. A category found by name
// with an empty upstream ID gets the observed upstream ID backfilled, one-way:
// a populated ID is never overwritten.
//
// The run loop is single-threaded; the mutex only exists so a future
// parallel driver does not create duplicate rows for the same name.
type Index struct {
	mu         sync.Mutex
	repo       Repository
	byName     map[string]*Category
	byUpstream map[string]*Category
}

// LoadIndex builds an index from the full category table.
func LoadIndex(ctx context.Context, repo Repository) (*Index, error) {
	categories, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	ix := &Index{
		repo:       repo,
		byName:     make(map[string]*Category, len(categories)),
		byUpstream: make(map[string]*Category, len(categories)),
	}
	for _, c := range categories {
		ix.byName[nameKey(c.Name)] = c
		if c.UpstreamID != "" {
			ix.byUpstream[c.UpstreamID] = c
		}
	}
	return ix, nil
}

// FindOrCreate resolves a (name, upstreamID) pair to exactly one category,
// creating it on first sight. upstreamID may be empty for local categories.
func (ix *Index) FindOrCreate(ctx context.Context, name, upstreamID string) (*Category, error) {
	if name == "" && upstreamID == "" {
		return nil, fmt.Errorf("category name and upstream ID are both empty")
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	var found *Category
	if upstreamID != "" {
		found = ix.byUpstream[upstreamID]
	}
	if found == nil && name != "" {
		found = ix.byName[nameKey(name)]
	}

	if found == nil {
		created := NewCategory(name, upstreamID)
		if err := ix.repo.Create(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		ix.byName[nameKey(created.Name)] = created
		if created.UpstreamID != "" {
			ix.byUpstream[created.UpstreamID] = created
		}
		return created, nil
	}

	// One-way backfill: a previously local category observed with an upstream
	// ID adopts it; a populated ID is never replaced.
	if upstreamID != "" && found.UpstreamID == "" {
		if err := ix.repo.SetUpstreamID(ctx, found.ID, upstreamID); err != nil {
			return nil, fmt.Errorf("failed to backfill upstream ID on category %q: %w", found.Name, err)
		}
		found.UpstreamID = upstreamID
		ix.byUpstream[upstreamID] = found
	}

	return found, nil
}

// Len returns the number of distinct categories known to the index.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.byName)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
