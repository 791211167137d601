package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pos-cash-recon/internal/api/service"
	"github.com/pos-cash-recon/internal/domain/category"
	"github.com/pos-cash-recon/internal/domain/store"
	"github.com/pos-cash-recon/internal/domain/transaction"
)

// PaginatedResponse is a generic version of Response for decoding list bodies
type PaginatedResponse[T any] struct {
	Data          []T        `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*transaction.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockDashboardService) ReviewTransaction(ctx context.Context, id uuid.UUID, flag transaction.Flag, categoryID *uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, flag, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockDashboardService) BulkFlag(ctx context.Context, ids []uuid.UUID, flag transaction.Flag) (int64, error) {
	args := m.Called(ctx, ids, flag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDashboardService) ListStores(ctx context.Context) ([]*store.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Store), args.Error(1)
}

func (m *MockDashboardService) ListCategories(ctx context.Context) ([]*category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

func (m *MockDashboardService) CategoryStats(ctx context.Context, storeID string, startMs, endMs int64) ([]*transaction.CategoryStat, error) {
	args := m.Called(ctx, storeID, startMs, endMs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.CategoryStat), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransactionHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success with filters", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		tx := &transaction.Transaction{
			ID:     uuid.New(),
			CashID: "c-1",
			Amount: 45000,
			Type:   transaction.TypeOut,
			Note:   "ship ABC12 2km",
			Flag:   transaction.FlagValid,
		}
		mockService.On("ListTransactions", mock.Anything, mock.MatchedBy(func(f transaction.ListFilter) bool {
			return f.StartMs == 100 && f.EndMs == 200 && f.StoreID == "s-1" &&
				f.NoteSearch == "ship" && f.Page == 2 && f.PerPage == 25
		})).Return([]*transaction.Transaction{tx}, int64(51), nil)

		router := gin.New()
		router.GET("/transactions", h.List)

		req := httptest.NewRequest(http.MethodGet, "/transactions?start_ms=100&end_ms=200&store_uid=s-1&note=ship&page=2&per_page=25", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp PaginatedResponse[TransactionResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "c-1", resp.Data[0].CashID)
		assert.Equal(t, "valid", resp.Data[0].Flag)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 51, resp.Meta.TotalItems)
		assert.Equal(t, 3, resp.Meta.TotalPages)
		mockService.AssertExpectations(t)
	})

	t.Run("Pagination defaults applied", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		mockService.On("ListTransactions", mock.Anything, mock.MatchedBy(func(f transaction.ListFilter) bool {
			return f.Page == 1 && f.PerPage == 50
		})).Return([]*transaction.Transaction{}, int64(0), nil)

		router := gin.New()
		router.GET("/transactions", h.List)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid category ID", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		router := gin.New()
		router.GET("/transactions", h.List)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/transactions?category_id=not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_Review(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		id := uuid.New()
		catID := uuid.New()
		updated := &transaction.Transaction{ID: id, Flag: transaction.FlagValid, CategoryID: &catID}
		mockService.On("ReviewTransaction", mock.Anything, id, transaction.FlagValid, &catID).Return(updated, nil)

		router := gin.New()
		router.PATCH("/transactions/:id", h.Review)

		body, _ := json.Marshal(ReviewRequest{Flag: "valid", CategoryID: catID.String()})
		req := httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), id.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Unknown flag", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		id := uuid.New()
		mockService.On("ReviewTransaction", mock.Anything, id, transaction.Flag("bogus"), (*uuid.UUID)(nil)).
			Return(nil, service.ErrInvalidFlag)

		router := gin.New()
		router.PATCH("/transactions/:id", h.Review)

		body, _ := json.Marshal(ReviewRequest{Flag: "bogus"})
		req := httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		id := uuid.New()
		mockService.On("ReviewTransaction", mock.Anything, id, transaction.FlagInvalid, (*uuid.UUID)(nil)).
			Return(nil, transaction.ErrTransactionNotFound{ID: id})

		router := gin.New()
		router.PATCH("/transactions/:id", h.Review)

		body, _ := json.Marshal(ReviewRequest{Flag: "invalid"})
		req := httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String(), bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("Malformed transaction ID", func(t *testing.T) {
		h := NewTransactionHandler(testLogger(), new(MockDashboardService))

		router := gin.New()
		router.PATCH("/transactions/:id", h.Review)

		body, _ := json.Marshal(ReviewRequest{Flag: "valid"})
		req := httptest.NewRequest(http.MethodPatch, "/transactions/abc", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransactionHandler_BulkFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		ids := []uuid.UUID{uuid.New(), uuid.New()}
		mockService.On("BulkFlag", mock.Anything, ids, transaction.FlagInvalid).Return(int64(2), nil)

		router := gin.New()
		router.POST("/transactions/bulk-flag", h.BulkFlag)

		body, _ := json.Marshal(BulkFlagRequest{
			IDs:  []string{ids[0].String(), ids[1].String()},
			Flag: "invalid",
		})
		req := httptest.NewRequest(http.MethodPost, "/transactions/bulk-flag", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"updated":2`)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty ID list rejected by binding", func(t *testing.T) {
		mockService := new(MockDashboardService)
		h := NewTransactionHandler(testLogger(), mockService)

		router := gin.New()
		router.POST("/transactions/bulk-flag", h.BulkFlag)

		body, _ := json.Marshal(BulkFlagRequest{IDs: []string{}, Flag: "valid"})
		req := httptest.NewRequest(http.MethodPost, "/transactions/bulk-flag", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "BulkFlag", mock.Anything, mock.Anything, mock.Anything)
	})
}
