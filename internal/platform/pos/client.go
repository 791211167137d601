// Package pos implements the HTTP client for the upstream iPOS/Fabi API:
// login, the cash in/out feed and the sale-by-date report, plus the mapping
// from upstream payloads into domain entities.
package pos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pos-cash-recon/internal/config"
)

const (
	loginPath      = "/accounts/v1/user/login"
	cashInOutPath  = "/v3/pos-cms/cash-in-out"
	saleByDatePath = "/reports_v1/v3/pos-cms/report/sale-by-date"

	fabiType = "pos-cms"
	origin   = "https://fabi.ipos.vn"
)

// APIError is returned when the upstream answers with a non-2xx status.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d: %s", e.Endpoint, e.Status, e.Body)
}

// Query identifies one store's slice of a crawl: which store to fetch and
// the millisecond window to fetch it for.
type Query struct {
	CompanyUID string
	BrandUID   string
	StoreUID   string
	StartMs    int64
	EndMs      int64
}

// Client talks to the upstream POS API. It is not safe for concurrent use:
// Login stores the bearer token on the client, matching the batch driver
// which authenticates once and then walks stores sequentially.
type Client struct {
	baseURL     string
	email       string
	password    string
	accessToken string
	timezoneMs  string
	httpClient  *http.Client
	logger      *slog.Logger

	authToken string
}

// NewClient creates a POS API client from configuration.
func NewClient(cfg *config.POSConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		email:       cfg.Email,
		password:    cfg.Password,
		accessToken: cfg.AccessToken,
		timezoneMs:  cfg.TimezoneMs,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

func (c *Client) setHeaders(req *http.Request, includeAuth bool) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "vi")
	req.Header.Set("Origin", origin)
	req.Header.Set("Referer", origin+"/")
	req.Header.Set("access_token", c.accessToken)
	req.Header.Set("fabi_type", fabiType)
	req.Header.Set("x-client-timezone", c.timezoneMs)
	if includeAuth && c.authToken != "" {
		req.Header.Set("Authorization", c.authToken)
	}
}

// Login authenticates the crawl account and returns the session: bearer
// token, company UID and the stores the account can see. The token is kept
// on the client and sent on every subsequent request.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	body, err := json.Marshal(loginRequest{Email: c.email, Password: c.password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req, false)

	raw, err := c.do(req, loginPath)
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if data.Token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}

	c.authToken = data.Token
	c.logger.Info("authenticated with upstream POS API",
		"company_uid", data.Company.ID,
		"stores", len(data.Stores),
	)

	return &Session{
		Token:      data.Token,
		CompanyUID: data.Company.ID,
		Stores:     data.Stores,
	}, nil
}

// ListCashInOut fetches one page of the cash in/out feed for a store window.
// It returns the decoded records along with the raw page payload for
// archival. An empty slice means the feed is exhausted.
func (c *Client) ListCashInOut(ctx context.Context, q Query, page int) ([]CashRecord, json.RawMessage, error) {
	raw, err := c.getData(ctx, cashInOutPath, q, page, nil)
	if err != nil {
		return nil, nil, err
	}

	var records []CashRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode cash in/out page %d: %w", page, err)
	}
	return records, raw, nil
}

// ListSaleByDate fetches one page of the sale-by-date report for a store
// window, newest first. It returns the decoded records along with the raw
// page payload for archival. An empty slice means the report is exhausted.
func (c *Client) ListSaleByDate(ctx context.Context, q Query, page int) ([]SaleRecord, json.RawMessage, error) {
	extra := url.Values{"sort": {"dsc"}}
	raw, err := c.getData(ctx, saleByDatePath, q, page, extra)
	if err != nil {
		return nil, nil, err
	}

	var records []SaleRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode sale-by-date page %d: %w", page, err)
	}
	return records, raw, nil
}

func (c *Client) getData(ctx context.Context, path string, q Query, page int, extra url.Values) (json.RawMessage, error) {
	values := url.Values{
		"company_uid":   {q.CompanyUID},
		"brand_uid":     {q.BrandUID},
		"store_uid":     {q.StoreUID},
		"start_date":    {strconv.FormatInt(q.StartMs, 10)},
		"end_date":      {strconv.FormatInt(q.EndMs, 10)},
		"page":          {strconv.Itoa(page)},
		"store_open_at": {"0"},
	}
	for k, vs := range extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	c.setHeaders(req, true)

	return c.do(req, path)
}

// do executes the request and unwraps the response envelope, returning the
// raw "data" payload.
func (c *Client) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope from %s: %w", endpoint, err)
	}
	return env.Data, nil
}
