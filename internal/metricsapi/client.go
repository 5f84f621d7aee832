// Package metricsapi is the HTTP client for the remote trading-metrics API.
// It fetches raw JSON; shape interpretation lives in the normalize package.
package metricsapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTradesLimit is sent when the caller does not specify one.
const DefaultTradesLimit = 500

// Client talks to one metrics API base URL.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIKey attaches an x-api-key header to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout overrides the default 10s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a client for the given base URL. A trailing slash on
// the base is tolerated.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// KPI fetches the raw KPI payload.
func (c *Client) KPI(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/kpi")
}

// Equity fetches the raw equity-curve payload.
func (c *Client) Equity(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/equity")
}

// Trades fetches the raw trades payload, at most limit rows. A non-positive
// limit falls back to DefaultTradesLimit.
func (c *Client) Trades(ctx context.Context, limit int) ([]byte, error) {
	return c.TradesPage(ctx, limit, 0, "")
}

// TradesPage fetches a page of the trades payload. Offset and status are
// omitted from the query when zero-valued.
func (c *Client) TradesPage(ctx context.Context, limit, offset int, status string) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultTradesLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if status != "" {
		q.Set("status", status)
	}
	return c.get(ctx, "/trades?"+q.Encode())
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("metricsapi: build request: %w", err)
	}
	// Intermediaries must not serve stale metrics.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metricsapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("metricsapi: %s: %d %s", path, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("metricsapi: read %s: %w", path, err)
	}
	return body, nil
}
