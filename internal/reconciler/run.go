package reconciler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/order"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/pos-cash-recon/internal/platform/pos"
)

const (
	pageKindTransactions = "transactions"
	pageKindOrders       = "orders"
)

// Crawler drives one crawl cycle: authenticate, then walk every store the
// account can see and synchronize its window. Store failures are logged and
// skipped; only authentication and snapshot loading abort a run. Stores are
// processed sequentially so the category index and the per-store deletion
// sets stay simple.
type Crawler struct {
	gateway      POSGateway
	stores       store.Repository
	orders       order.Repository
	transactions transaction.Repository
	categories   category.Repository
	archive      RawArchiver
	events       FlagEventPublisher
	anchorDay    int
	now          func() time.Time
	logger       *slog.Logger
}

// NewCrawler assembles a crawler. archive and events may be nil, which
// disables raw-page archival and flag-event publishing respectively.
func NewCrawler(
	gateway POSGateway,
	stores store.Repository,
	orders order.Repository,
	transactions transaction.Repository,
	categories category.Repository,
	archive RawArchiver,
	events FlagEventPublisher,
	anchorDay int,
	logger *slog.Logger,
) *Crawler {
	return &Crawler{
		gateway:      gateway,
		stores:       stores,
		orders:       orders,
		transactions: transactions,
		categories:   categories,
		archive:      archive,
		events:       events,
		anchorDay:    anchorDay,
		now:          time.Now,
		logger:       logger,
	}
}

// RunTransactions synchronizes and classifies cash transactions for the
// current billing cycle across all stores.
func (c *Crawler) RunTransactions(ctx context.Context) error {
	session, err := c.gateway.Login(ctx)
	if err != nil {
		return fmt.Errorf("transaction crawl aborted: %w", err)
	}

	runID := uuid.NewString()
	now := c.now()
	startMs, endMs := BillingCycle(now, c.anchorDay)
	snapStartMs, snapEndMs := SnapshotWindow(startMs, endMs)

	candidates, err := c.orders.ListInWindow(ctx, snapStartMs, snapEndMs)
	if err != nil {
		return fmt.Errorf("failed to load order snapshot: %w", err)
	}

	index, err := category.LoadIndex(ctx, c.categories)
	if err != nil {
		return fmt.Errorf("failed to load category index: %w", err)
	}

	engine := NewEngine(order.NewSnapshot(candidates), index, startMs, endMs, c.logger)

	c.logger.Info("starting transaction crawl",
		"run_id", runID,
		"window_start_ms", startMs,
		"window_end_ms", endMs,
		"snapshot_orders", len(candidates),
		"stores", len(session.Stores),
	)

	for _, info := range session.Stores {
		if err := c.crawlStoreTransactions(ctx, session, info, engine, runID, startMs, endMs, now); err != nil {
			c.logger.Error("failed to crawl store transactions",
				"run_id", runID,
				"store_uid", info.ID,
				"store_name", info.Name,
				"error", err,
			)
		}
	}

	c.logger.Info("transaction crawl finished", "run_id", runID)
	return nil
}

func (c *Crawler) crawlStoreTransactions(
	ctx context.Context,
	session *pos.Session,
	info pos.StoreInfo,
	engine *Engine,
	runID string,
	startMs, endMs int64,
	now time.Time,
) error {
	if err := c.stores.Upsert(ctx, pos.ToStore(info, session.CompanyUID)); err != nil {
		return fmt.Errorf("failed to upsert store: %w", err)
	}

	q := pos.Query{
		CompanyUID: session.CompanyUID,
		BrandUID:   info.BrandUID,
		StoreUID:   info.ID,
		StartMs:    startMs,
		EndMs:      endMs,
	}

	var records []pos.CashRecord
	for page := 1; ; page++ {
		pageRecords, raw, err := c.gateway.ListCashInOut(ctx, q, page)
		if err != nil {
			return fmt.Errorf("failed to fetch cash in/out page %d: %w", page, err)
		}
		if len(pageRecords) == 0 {
			break
		}
		c.archivePage(ctx, runID, pageKindTransactions, info.ID, page, len(pageRecords), raw)
		records = append(records, pageRecords...)
	}

	// An empty feed is ambiguous: the store may genuinely have no cash
	// movements, or the upstream may have answered with a hole. Leave
	// existing rows alone rather than wiping the window.
	if len(records) == 0 {
		return nil
	}

	keep := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.CashID != "" {
			keep = append(keep, rec.CashID)
		}
	}

	deleted, err := c.transactions.DeleteStaleInWindow(ctx, info.ID, startMs, endMs, keep)
	if err != nil {
		return fmt.Errorf("failed to delete stale transactions: %w", err)
	}

	var upserted, skipped int
	for i := range records {
		rec := &records[i]

		tx, err := pos.ToTransaction(rec)
		if err != nil {
			var keyErr *pos.ErrMissingBusinessKey
			if errors.As(err, &keyErr) {
				skipped++
				continue
			}
			return err
		}

		if err := engine.Classify(ctx, tx, rec.ProfessionUID, rec.ProfessionName); err != nil {
			c.logger.Error("failed to classify transaction",
				"run_id", runID,
				"cash_id", tx.CashID,
				"error", err,
			)
			continue
		}

		// Cash-in entries are bookkeeping noise for reconciliation and are
		// hidden on arrival unless the upstream already deleted them.
		if tx.Type == transaction.TypeIn && tx.DeletedAt == nil {
			tx.SoftDelete(now)
		}

		if err := c.transactions.Upsert(ctx, tx); err != nil {
			c.logger.Error("failed to upsert transaction",
				"run_id", runID,
				"cash_id", tx.CashID,
				"error", err,
			)
			continue
		}
		upserted++

		if c.events != nil && tx.Flag == transaction.FlagInvalid && tx.DeletedAt == nil {
			if err := c.events.PublishFlagEvent(ctx, tx); err != nil {
				c.logger.Warn("failed to publish flag event",
					"run_id", runID,
					"cash_id", tx.CashID,
					"error", err,
				)
			}
		}
	}

	c.logger.Info("synchronized store transactions",
		"run_id", runID,
		"store_uid", info.ID,
		"store_name", info.Name,
		"fetched", len(records),
		"upserted", upserted,
		"skipped", skipped,
		"deleted_stale", deleted,
	)
	return nil
}

// RunOrders synchronizes the current day's finished orders across all
// stores. Orders feed the snapshot the transaction crawl matches against.
func (c *Crawler) RunOrders(ctx context.Context) error {
	session, err := c.gateway.Login(ctx)
	if err != nil {
		return fmt.Errorf("order crawl aborted: %w", err)
	}

	runID := uuid.NewString()
	startMs, endMs := DayBounds(c.now())

	c.logger.Info("starting order crawl",
		"run_id", runID,
		"window_start_ms", startMs,
		"window_end_ms", endMs,
		"stores", len(session.Stores),
	)

	for _, info := range session.Stores {
		if err := c.crawlStoreOrders(ctx, session, info, runID, startMs, endMs); err != nil {
			c.logger.Error("failed to crawl store orders",
				"run_id", runID,
				"store_uid", info.ID,
				"store_name", info.Name,
				"error", err,
			)
		}
	}

	c.logger.Info("order crawl finished", "run_id", runID)
	return nil
}

func (c *Crawler) crawlStoreOrders(
	ctx context.Context,
	session *pos.Session,
	info pos.StoreInfo,
	runID string,
	startMs, endMs int64,
) error {
	q := pos.Query{
		CompanyUID: session.CompanyUID,
		BrandUID:   info.BrandUID,
		StoreUID:   info.ID,
		StartMs:    startMs,
		EndMs:      endMs,
	}

	var records []pos.SaleRecord
	for page := 1; ; page++ {
		pageRecords, raw, err := c.gateway.ListSaleByDate(ctx, q, page)
		if err != nil {
			return fmt.Errorf("failed to fetch sale-by-date page %d: %w", page, err)
		}
		if len(pageRecords) == 0 {
			break
		}
		c.archivePage(ctx, runID, pageKindOrders, info.ID, page, len(pageRecords), raw)
		records = append(records, pageRecords...)
	}

	if len(records) == 0 {
		return nil
	}

	keep := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.TranID != "" {
			keep = append(keep, rec.TranID)
		}
	}

	deleted, err := c.orders.DeleteStaleInWindow(ctx, info.ID, startMs, endMs, keep)
	if err != nil {
		return fmt.Errorf("failed to delete stale orders: %w", err)
	}

	var upserted, skipped int
	for i := range records {
		o, err := pos.ToOrder(&records[i], info.ID)
		if err != nil {
			var keyErr *pos.ErrMissingBusinessKey
			if errors.As(err, &keyErr) {
				skipped++
				continue
			}
			return err
		}

		if err := c.orders.Upsert(ctx, o); err != nil {
			c.logger.Error("failed to upsert order",
				"run_id", runID,
				"tran_id", o.TranID,
				"error", err,
			)
			continue
		}
		upserted++
	}

	c.logger.Info("synchronized store orders",
		"run_id", runID,
		"store_uid", info.ID,
		"store_name", info.Name,
		"fetched", len(records),
		"upserted", upserted,
		"skipped", skipped,
		"deleted_stale", deleted,
	)
	return nil
}

func (c *Crawler) archivePage(ctx context.Context, runID, kind, storeUID string, page, count int, payload json.RawMessage) {
	if c.archive == nil {
		return
	}
	err := c.archive.SavePage(ctx, &RawPage{
		RunID:       runID,
		Kind:        kind,
		StoreID:     storeUID,
		Page:        page,
		RecordCount: count,
		Payload:     payload,
		FetchedAt:   c.now(),
	})
	if err != nil {
		c.logger.Warn("failed to archive raw page",
			"run_id", runID,
			"kind", kind,
			"store_uid", storeUID,
			"page", page,
			"error", err,
		)
	}
}
