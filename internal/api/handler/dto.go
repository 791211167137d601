package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// ListTransactionsParams captures the query string of the transaction listing.
// start_ms/end_ms are epoch milliseconds; when both are zero the server falls
// back to the current billing cycle.
type ListTransactionsParams struct {
	StartMs    int64  `form:"start_ms"`
	EndMs      int64  `form:"end_ms"`
	StoreID    string `form:"store_uid"`
	CategoryID string `form:"category_id"`
	NoteSearch string `form:"note"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// ReviewRequest resolves a single transaction held for review.
type ReviewRequest struct {
	Flag       string `json:"flag" binding:"required"`
	CategoryID string `json:"category_id"`
}

// BulkFlagRequest applies one flag to a batch of transactions.
type BulkFlagRequest struct {
	IDs  []string `json:"ids" binding:"required,min=1"`
	Flag string   `json:"flag" binding:"required"`
}

// TransactionResponse is the wire shape of a cash transaction.
type TransactionResponse struct {
	ID                 string     `json:"id"`
	CashID             string     `json:"cash_id"`
	Amount             int64      `json:"amount"`
	StoreID            string     `json:"store_uid"`
	Time               int64      `json:"time"`
	Type               string     `json:"type"`
	Note               string     `json:"note"`
	PaymentMethodID    string     `json:"payment_method_id,omitempty"`
	PaymentMethodName  string     `json:"payment_method_name,omitempty"`
	EmployeeName       string     `json:"employee_name,omitempty"`
	ShiftName          string     `json:"shift_name,omitempty"`
	CategoryID         *uuid.UUID `json:"category_id,omitempty"`
	Flag               string     `json:"flag"`
	SystemNote         string     `json:"system_note,omitempty"`
	MatchedOrderMethod string     `json:"matched_order_payment_method,omitempty"`
	MatchedOrderAmount int64      `json:"matched_order_payment_amount,omitempty"`
	DistanceKm         float64    `json:"distance_km,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewTransactionResponse converts a domain transaction to its wire shape.
func NewTransactionResponse(tx *transaction.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                 tx.ID.String(),
		CashID:             tx.CashID,
		Amount:             tx.Amount,
		StoreID:            tx.StoreID,
		Time:               tx.Time,
		Type:               string(tx.Type),
		Note:               tx.Note,
		PaymentMethodID:    tx.PaymentMethodID,
		PaymentMethodName:  tx.PaymentMethodName,
		EmployeeName:       tx.EmployeeName,
		ShiftName:          tx.ShiftName,
		CategoryID:         tx.CategoryID,
		Flag:               string(tx.Flag),
		SystemNote:         tx.SystemNote,
		MatchedOrderMethod: tx.MatchedOrderPaymentMethodName,
		MatchedOrderAmount: tx.MatchedOrderPaymentAmount,
		DistanceKm:         tx.ExtractedDistanceKm,
		CreatedAt:          tx.CreatedAt,
		UpdatedAt:          tx.UpdatedAt,
	}
}

// NewTransactionListResponse converts a page of domain transactions.
func NewTransactionListResponse(txs []*transaction.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionResponse(tx))
	}
	return out
}

// CategoryResponse is the wire shape of a spending category.
type CategoryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UpstreamID string `json:"upstream_id,omitempty"`
}

// NewCategoryListResponse converts domain categories to their wire shape.
func NewCategoryListResponse(cats []*category.Category) []*CategoryResponse {
	out := make([]*CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, &CategoryResponse{
			ID:         c.ID.String(),
			Name:       c.Name,
			UpstreamID: c.UpstreamID,
		})
	}
	return out
}

// CategoryStatsParams captures the query string of the category breakdown.
type CategoryStatsParams struct {
	StartMs int64  `form:"start_ms"`
	EndMs   int64  `form:"end_ms"`
	StoreID string `form:"store_uid"`
}

// StoreResponse is the wire shape of a store.
type StoreResponse struct {
	POSID     string `json:"pos_id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	BrandID   string `json:"brand_uid"`
	Active    bool   `json:"active"`
}

// NewStoreListResponse converts domain stores to their wire shape.
func NewStoreListResponse(stores []*store.Store) []*StoreResponse {
	out := make([]*StoreResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, &StoreResponse{
			POSID:     s.POSID,
			Name:      s.Name,
			ShortName: s.ShortName,
			BrandID:   s.BrandID,
			Active:    s.Active,
		})
	}
	return out
}
