package reconciler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/pos-cash-recon/internal/platform/pos"
)

// POSGateway is the slice of the upstream client the crawler needs.
type POSGateway interface {
	Login(ctx context.Context) (*pos.Session, error)
	ListCashInOut(ctx context.Context, q pos.Query, page int) ([]pos.CashRecord, json.RawMessage, error)
	ListSaleByDate(ctx context.Context, q pos.Query, page int) ([]pos.SaleRecord, json.RawMessage, error)
}

// RawPage is one raw upstream response page kept for audit and replay.
type RawPage struct {
	RunID       string
	Kind        string // "transactions" or "orders"
	StoreID     string
	Page        int
	RecordCount int
	Payload     json.RawMessage
	FetchedAt   time.Time
}

// RawArchiver persists raw upstream pages. Archiving is best effort: a
// failed save is logged but never fails the crawl.
type RawArchiver interface {
	SavePage(ctx context.Context, page *RawPage) error
}

// FlagEventPublisher emits an event for each transaction the engine flags
// invalid. Implementations may be disabled and silently drop events.
type FlagEventPublisher interface {
	PublishFlagEvent(ctx context.Context, tx *transaction.Transaction) error
}
