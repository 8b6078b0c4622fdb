// Package client fetches resource collections from the remote REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// DefaultTimeout bounds a single fetch, including connect and body read.
const DefaultTimeout = 5 * time.Second

// Request describes one fetch. At most one of ID/UserID is meaningful:
// a positive ID selects a single record and wins over UserID; a positive
// UserID restricts the collection to one owner, and only Posts honors it.
type Request struct {
	Resource catalog.Resource
	ID       int
	UserID   int
}

// Result is a successful fetch outcome.
type Result struct {
	Resource   catalog.Resource
	Payload    tabular.Payload
	Raw        json.RawMessage
	StatusCode int
}

// NoData reports whether the remote answered 2xx with an empty payload.
// Callers surface this as a warning, not an error.
func (r *Result) NoData() bool {
	return r.Payload.IsEmpty()
}

// Client issues blocking GETs against a fixed base URL. No retries and no
// response caching; every fetch hits the network.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client. A zero timeout falls back to DefaultTimeout and a
// nil logger discards.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the configured remote base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BuildURL constructs the request URL. Priority: record id, then owner
// filter (Posts only), then the full collection.
func (c *Client) BuildURL(req Request) string {
	base := c.baseURL + "/" + req.Resource.Path
	switch {
	case req.ID > 0:
		return base + "/" + strconv.Itoa(req.ID)
	case req.UserID > 0 && req.Resource.SupportsOwnerFilter():
		return base + "?userId=" + strconv.Itoa(req.UserID)
	default:
		return base
	}
}

// Fetch performs one GET and decodes the body. Transport failures, timeouts
// and non-2xx statuses all come back as a single wrapped error; the caller
// makes no distinction between them.
func (c *Client) Fetch(ctx context.Context, req Request) (*Result, error) {
	url := c.BuildURL(req)
	c.logger.Debug("fetching", "resource", req.Resource.Name, "url", url)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", req.Resource.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Resource.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d %s", req.Resource.Name, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	payload, err := tabular.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Resource.Name, err)
	}

	c.logger.Debug("fetched",
		"resource", req.Resource.Name,
		"status", resp.StatusCode,
		"records", payload.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Result{
		Resource:   req.Resource,
		Payload:    payload,
		Raw:        json.RawMessage(body),
		StatusCode: resp.StatusCode,
	}, nil
}
