// Package reconciler implements the transaction reconciliation engine: note
// parsing, category resolution, order matching and per-category validation,
// plus the batch driver that runs one crawl cycle across all stores.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/order"
	"github.com/pos-cash-recon/internal/domain/transaction"
	"github.com/pos-cash-recon/internal/reconciler/noteparse"
	"github.com/pos-cash-recon/internal/reconciler/rules"
)

// Engine classifies cash transactions against a per-run order snapshot and
// category index. Both are loaded once per run; the snapshot is read-only,
// the index is append-only and shared across the store loop.
type Engine struct {
	snapshot   *order.Snapshot
	categories *category.Index
	startMs    int64 // Run window lower bound, ms epoch
	endMs      int64 // Run window upper bound, ms epoch
	logger     *slog.Logger
}

// NewEngine creates an engine bound to one run's window and snapshot.
func NewEngine(snapshot *order.Snapshot, categories *category.Index, startMs, endMs int64, logger *slog.Logger) *Engine {
	return &Engine{
		snapshot:   snapshot,
		categories: categories,
		startMs:    startMs,
		endMs:      endMs,
		logger:     logger,
	}
}

// Classify resolves the transaction's category and applies the matching
// validation rule, mutating CategoryID, Flag, SystemNote and the
// matched-order fields in place. upstreamCategoryID and upstreamCategoryName
// are the raw profession identifiers from the upstream payload.
func (e *Engine) Classify(ctx context.Context, tx *transaction.Transaction, upstreamCategoryID, upstreamCategoryName string) error {
	name, overridden := rules.ResolveCategoryName(tx.Note, upstreamCategoryName)
	if overridden {
		// Overridden categories are local concepts with no upstream equivalent.
		upstreamCategoryID = ""
	}

	tx.Flag = transaction.FlagReview
	tx.SystemNote = ""

	var cat *category.Category
	if name != "" || upstreamCategoryID != "" {
		var err error
		cat, err = e.categories.FindOrCreate(ctx, name, upstreamCategoryID)
		if err != nil {
			return fmt.Errorf("failed to resolve category for cash %s: %w", tx.CashID, err)
		}
		id := cat.ID
		tx.CategoryID = &id
	}

	switch {
	case cat != nil && rules.IsShippingCategory(cat.Name):
		e.classifyShipping(tx)
	case cat != nil && rules.IsIceCategory(cat.Name):
		count := noteparse.ExtractFirstInteger(tx.Note)
		tx.Flag, tx.SystemNote = rules.EvaluateIce(tx.Amount, count)
	default:
		if err := e.classifyFallback(ctx, tx); err != nil {
			return err
		}
	}

	return nil
}

// classifyShipping applies the shipping-family rule: extract the order code,
// match it against the snapshot within the run window, then validate
// distance/amount/payment method.
func (e *Engine) classifyShipping(tx *transaction.Transaction) {
	code := noteparse.ExtractOrderCode(tx.Note)
	matched := e.snapshot.Match(code, e.startMs, e.endMs)
	distanceKm, hasDistance := noteparse.ExtractDistanceKm(tx.Note)

	if matched != nil {
		tx.MatchedOrderPaymentMethodID = matched.PaymentMethodID
		tx.MatchedOrderPaymentMethodName = matched.PaymentMethodName
		tx.MatchedOrderPaymentAmount = matched.PaymentAmount
	}
	if hasDistance {
		tx.ExtractedDistanceKm = distanceKm
	}

	tx.Flag, tx.SystemNote = rules.EvaluateShipping(code, matched, distanceKm, hasDistance)
}

// classifyFallback scans same-store orders around the transaction time for a
// tran-ID suffix appearing in the note. A hit reclassifies the transaction
// into the shipping category and marks it valid; otherwise the default
// review flag stands.
func (e *Engine) classifyFallback(ctx context.Context, tx *transaction.Transaction) error {
	from := tx.Time - OrderLookback.Milliseconds()
	to := tx.Time + OrderLookahead.Milliseconds()

	suffix, matched := e.snapshot.FindSuffixInNote(tx.Note, tx.StoreID, from, to)
	if matched == nil {
		return nil
	}

	cat, err := e.categories.FindOrCreate(ctx, rules.CategoryShipping, "")
	if err != nil {
		return fmt.Errorf("failed to resolve shipping category for cash %s: %w", tx.CashID, err)
	}

	id := cat.ID
	tx.CategoryID = &id
	tx.MatchedOrderPaymentMethodID = matched.PaymentMethodID
	tx.MatchedOrderPaymentMethodName = matched.PaymentMethodName
	tx.MatchedOrderPaymentAmount = matched.PaymentAmount
	tx.Flag = transaction.FlagValid
	tx.SystemNote = rules.FallbackExplanation(suffix)

	e.logger.Debug("reclassified transaction via order suffix",
		"cash_id", tx.CashID,
		"suffix", suffix,
		"order_tran_id", matched.TranID,
	)
	return nil
}
