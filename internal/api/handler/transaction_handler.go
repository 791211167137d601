package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pos-cash-recon/internal/api/service"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	dashboard service.DashboardService
	logger    *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, dashboard service.DashboardService) *TransactionHandler {
	return &TransactionHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// List returns a page of transactions. Without an explicit window the
// current billing cycle is used.
func (h *TransactionHandler) List(c *gin.Context) {
	var params ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := transaction.ListFilter{
		StartMs:    params.StartMs,
		EndMs:      params.EndMs,
		StoreID:    params.StoreID,
		NoteSearch: params.NoteSearch,
		Page:       params.Page,
		PerPage:    params.PerPage,
	}
	if params.CategoryID != "" {
		catID, err := uuid.Parse(params.CategoryID)
		if err != nil {
			RespondBadRequest(c, "Invalid category ID")
			return
		}
		filter.CategoryID = &catID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 50
	}

	txs, total, err := h.dashboard.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondPaginated(c, NewTransactionListResponse(txs), filter.Page, filter.PerPage, int(total))
}

// Review resolves a single transaction held for review.
func (h *TransactionHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		catID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			RespondBadRequest(c, "Invalid category ID")
			return
		}
		categoryID = &catID
	}

	tx, err := h.dashboard.ReviewTransaction(c.Request.Context(), id, transaction.Flag(req.Flag), categoryID)
	if err != nil {
		var notFound transaction.ErrTransactionNotFound
		switch {
		case errors.Is(err, service.ErrInvalidFlag):
			RespondBadRequest(c, err.Error())
		case errors.As(err, &notFound):
			RespondNotFound(c, "Transaction not found")
		default:
			h.logger.Error("Failed to review transaction", "transaction_id", id, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, NewTransactionResponse(tx))
}

// BulkFlag applies one flag to a batch of transactions.
func (h *TransactionHandler) BulkFlag(c *gin.Context) {
	var req BulkFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid transaction ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.dashboard.BulkFlag(c.Request.Context(), ids, transaction.Flag(req.Flag))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFlag) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to bulk-flag transactions", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, gin.H{"updated": updated})
}
