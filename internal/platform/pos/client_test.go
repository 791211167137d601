package pos

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/pos-cash-recon/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.POSConfig{
		BaseURL:     baseURL,
		Email:       "crawler@example.com",
		Password:    "secret",
		AccessToken: "static-token",
		TimezoneMs:  "25200000",
		Timeout:     5 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewClient(cfg, logger)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accounts/v1/user/login", r.URL.Path)
		assert.Equal(t, "static-token", r.Header.Get("access_token"))
		assert.Equal(t, "pos-cms", r.Header.Get("fabi_type"))
		assert.Equal(t, "25200000", r.Header.Get("x-client-timezone"))
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"token": "bearer-abc",
				"company": {"id": "company-1"},
				"stores": [
					{"id": "store-1", "brand_uid": "brand-1", "store_name": "ZangTee - 111 Láng Hạ", "active": 1},
					{"id": "store-2", "brand_uid": "brand-1", "store_name": "CƠ SỞ TEST", "active": 0}
				]
			}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session, err := client.Login(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bearer-abc", session.Token)
	assert.Equal(t, "company-1", session.CompanyUID)
	require.Len(t, session.Stores, 2)
	assert.True(t, session.Stores[0].IsActive())
	assert.False(t, session.Stores[1].IsActive())
}

func TestClient_Login_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestClient_Login_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Login(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClient_ListCashInOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/pos-cms/cash-in-out", r.URL.Path)
		assert.Equal(t, "bearer-abc", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "company-1", q.Get("company_uid"))
		assert.Equal(t, "brand-1", q.Get("brand_uid"))
		assert.Equal(t, "store-1", q.Get("store_uid"))
		assert.Equal(t, "1000", q.Get("start_date"))
		assert.Equal(t, "2000", q.Get("end_date"))
		assert.Equal(t, "1", q.Get("page"))

		w.Write([]byte(`{
			"data": [
				{"cash_id": "c-1", "amount": 20000, "type": "OUT", "note": "ship ABC12", "time": 1500, "store_uid": "store-1"},
				{"cash_id": "c-2", "amount": 50000, "type": "IN", "time": 1600, "store_uid": "store-1", "deleted_at": 1700}
			]
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	client.authToken = "bearer-abc"

	q := Query{CompanyUID: "company-1", BrandUID: "brand-1", StoreUID: "store-1", StartMs: 1000, EndMs: 2000}
	records, raw, err := client.ListCashInOut(context.Background(), q, 1)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "c-1", records[0].CashID)
	assert.Equal(t, int64(20000), records[0].Amount)
	assert.Nil(t, records[0].DeletedAt)
	require.NotNil(t, records[1].DeletedAt)
	assert.Equal(t, int64(1700), *records[1].DeletedAt)
	assert.NotEmpty(t, raw)
}

func TestClient_ListSaleByDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/reports_v1/v3/pos-cms/report/sale-by-date", r.URL.Path)
		assert.Equal(t, "dsc", r.URL.Query().Get("sort"))

		w.Write([]byte(`{
			"data": [
				{
					"tran_id": "ABC12-0301-77",
					"tran_no": "77",
					"source_fb_id": "FB-99",
					"start_date": 1500,
					"amount_origin": 250000,
					"payment_method": [{"payment_method_id": "CASH", "payment_method_name": "Tiền mặt", "amount": 250000}]
				}
			]
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	client.authToken = "bearer-abc"

	q := Query{CompanyUID: "company-1", BrandUID: "brand-1", StoreUID: "store-1", StartMs: 1000, EndMs: 2000}
	records, _, err := client.ListSaleByDate(context.Background(), q, 1)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "ABC12-0301-77", records[0].TranID)
	require.Len(t, records[0].PaymentMethods, 1)
	assert.Equal(t, "CASH", records[0].PaymentMethods[0].PaymentMethodID)
}

func TestClient_EmptyPageMeansExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	client.authToken = "bearer-abc"

	records, _, err := client.ListCashInOut(context.Background(), Query{}, 3)
	require.NoError(t, err)
	assert.Empty(t, records)
}
