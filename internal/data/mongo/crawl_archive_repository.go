// Package mongo stores raw upstream crawl pages. Postgres keeps the
// normalized entities; the archive keeps the payloads exactly as the
// upstream sent them so classification changes can be replayed offline.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pos-cash-recon/internal/reconciler"
)

const (
	// CrawlPagesCollectionName is the name of the raw page collection in MongoDB
	CrawlPagesCollectionName = "crawl_pages"
)

// crawlPageDocument is the stored shape of a raw page. The payload is kept as
// a raw JSON string rather than BSON so it round-trips byte for byte.
type crawlPageDocument struct {
	RunID       string    `bson:"run_id"`
	Kind        string    `bson:"kind"`
	StoreID     string    `bson:"store_uid"`
	Page        int       `bson:"page"`
	RecordCount int       `bson:"record_count"`
	Payload     string    `bson:"payload"`
	FetchedAt   time.Time `bson:"fetched_at"`
}

// CrawlArchiveRepository implements the reconciler.RawArchiver interface for MongoDB
type CrawlArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewCrawlArchiveRepository creates a new MongoDB crawl archive repository
func NewCrawlArchiveRepository(logger *slog.Logger, db *mongo.Database) *CrawlArchiveRepository {
	return &CrawlArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// SavePage stores one raw upstream page.
func (r *CrawlArchiveRepository) SavePage(ctx context.Context, page *reconciler.RawPage) error {
	collection := r.db.Collection(CrawlPagesCollectionName)

	doc := crawlPageDocument{
		RunID:       page.RunID,
		Kind:        page.Kind,
		StoreID:     page.StoreID,
		Page:        page.Page,
		RecordCount: page.RecordCount,
		Payload:     string(page.Payload),
		FetchedAt:   page.FetchedAt,
	}

	_, err := collection.InsertOne(ctx, doc)
	if err != nil {
		r.logger.Error("Failed to archive crawl page",
			"run_id", page.RunID,
			"kind", page.Kind,
			"store_uid", page.StoreID,
			"page", page.Page,
			"error", err)
		return fmt.Errorf("failed to archive crawl page: %w", err)
	}

	return nil
}

// ListRunPages retrieves all archived pages of one run, in fetch order.
func (r *CrawlArchiveRepository) ListRunPages(ctx context.Context, runID string) ([]*reconciler.RawPage, error) {
	collection := r.db.Collection(CrawlPagesCollectionName)

	filter := bson.M{"run_id": runID}
	opts := options.Find().SetSort(bson.D{{Key: "fetched_at", Value: 1}, {Key: "page", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list archived crawl pages", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to list archived crawl pages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []crawlPageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode archived crawl pages", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to decode archived crawl pages: %w", err)
	}

	pages := make([]*reconciler.RawPage, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, &reconciler.RawPage{
			RunID:       doc.RunID,
			Kind:        doc.Kind,
			StoreID:     doc.StoreID,
			Page:        doc.Page,
			RecordCount: doc.RecordCount,
			Payload:     []byte(doc.Payload),
			FetchedAt:   doc.FetchedAt,
		})
	}

	return pages, nil
}
