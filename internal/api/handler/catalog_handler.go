package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pos-cash-recon/internal/api/service"
)

// CatalogHandler serves the store and category lookups the dashboard filters on.
type CatalogHandler struct {
	dashboard service.DashboardService
	logger    *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(logger *slog.Logger, dashboard service.DashboardService) *CatalogHandler {
	return &CatalogHandler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// ListStores returns every active store.
func (h *CatalogHandler) ListStores(c *gin.Context) {
	stores, err := h.dashboard.ListStores(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list stores", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, NewStoreListResponse(stores))
}

// ListCategories returns every known spending category.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.dashboard.ListCategories(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, NewCategoryListResponse(cats))
}

// CategoryStats returns the per-category spend breakdown inside a window.
func (h *CatalogHandler) CategoryStats(c *gin.Context) {
	var params CategoryStatsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	stats, err := h.dashboard.CategoryStats(c.Request.Context(), params.StoreID, params.StartMs, params.EndMs)
	if err != nil {
		h.logger.Error("Failed to compute category stats", "error", err)
		RespondInternalError(c)
		return
	}
	RespondOK(c, stats)
}
