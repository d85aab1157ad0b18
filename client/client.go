// Package client provides a typed Go SDK for the speedrun HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/models"
)

var _ domain.PathFinder = (*Client)(nil)

// Client is the speedrun API client. It implements domain.PathFinder, so the
// CLI can search through a remote server exactly as it does against a database.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the given base URL (e.g. "http://localhost:3040").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", nil, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Ready returns the readiness check response. A server that is up but not
// ready answers 503 with the same body, which is returned alongside the error.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	var resp ReadyResponse

	err := c.get(ctx, "/api/v1/ready", nil, &resp)
	if err == nil {
		return &resp, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable &&
		json.Unmarshal(apiErr.body, &resp) == nil && resp.Status != "" {
		return &resp, err
	}

	return nil, err
}

// FindPath implements domain.PathFinder. API errors unwrap to the matching
// models sentinel; transport failures wrap models.ErrStoreConnection.
func (c *Client) FindPath(ctx context.Context, from, to string) (*models.SearchResult, error) {
	var resp models.SearchResult
	if err := c.get(ctx, "/api/v1/path", url.Values{"from": {from}, "to": {to}}, &resp); err != nil {
		return nil, err
	}

	resp.Elapsed = time.Duration(resp.ElapsedSeconds * float64(time.Second))

	return &resp, nil
}

// get performs a GET with query parameters and decodes a successful JSON
// response into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}

		return fmt.Errorf("request failed: %w: %w", models.ErrStoreConnection, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w: %w", models.ErrStoreConnection, err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
