// Package statsapi is a read-only client for the backend stats API. It has
// no retries and no timeout of its own; failures surface to the caller as
// ordinary errors and the transport's defaults are the only deadline.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out anonymous; the backend decides whether
// to reject it.
type TokenSource interface {
	Token(ctx context.Context) string
}

type Client struct {
	base   string
	httpc  *http.Client
	tokens TokenSource
}

// NewClient creates a stats API client. tokens may be nil, in which case
// every request is anonymous.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		httpc:  &http.Client{},
		tokens: tokens,
	}
}

// Stats fetches the dashboard counters. Unknown fields and negative counts
// are rejected as *ValidationError.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.get(ctx, "/dashboard/stats", true, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecentOrders fetches the recent-orders list.
func (c *Client) RecentOrders(ctx context.Context) ([]RecentItem, error) {
	return c.getItems(ctx, "/orders/recent")
}

// LowStock fetches the low-stock list.
func (c *Client) LowStock(ctx context.Context) ([]RecentItem, error) {
	return c.getItems(ctx, "/inventory/low-stock")
}

func (c *Client) getItems(ctx context.Context, path string) ([]RecentItem, error) {
	var items []RecentItem
	// List items are a superset union across two backends, so unknown
	// fields pass; a record without an id is still malformed.
	if err := c.get(ctx, path, false, &items); err != nil {
		return nil, err
	}
	for i, it := range items {
		if it.ID == "" {
			return nil, &ValidationError{Path: path, Reason: fmt.Sprintf("item %d has no id", i)}
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, path string, strict bool, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.Token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return &ValidationError{Path: path, Reason: err.Error()}
	}
	return nil
}
