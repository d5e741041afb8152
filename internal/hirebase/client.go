// Package hirebase talks to the upstream job-listing API and maps its raw
// payloads into canonical job records.
package hirebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aplika/jobboard/internal/logger"
)

// ErrNotConfigured means the endpoint or API key is missing. This is fatal
// for a run and is never retried.
var ErrNotConfigured = errors.New("hirebase endpoint or API key not configured")

// Config holds the upstream connection settings and the retry budget.
type Config struct {
	Endpoint   string
	APIKey     string
	PageLimit  int
	SortBy     string
	SortOrder  string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// RawJob is one job payload as delivered by upstream. The shape drifts
// between schema generations, so it stays a map until normalization.
type RawJob map[string]interface{}

// PageResponse is the decoded body of one page fetch.
type PageResponse struct {
	Jobs       []RawJob `json:"jobs"`
	TotalPages int      `json:"total_pages"`
}

// Client fetches pages from the upstream API with bounded retry.
type Client struct {
	http *resty.Client
	cfg  Config
}

// NewClient creates a Client. The timeout is long on purpose: upstream can
// take minutes to assemble a page.
func NewClient(cfg Config) *Client {
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 100
	}
	if cfg.SortBy == "" {
		cfg.SortBy = "date_posted"
	}
	if cfg.SortOrder == "" {
		cfg.SortOrder = "desc"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("x-api-key", cfg.APIKey)
	client.SetTimeout(cfg.Timeout)

	return &Client{http: client, cfg: cfg}
}

// PageLimit returns the page size every fetch requests.
func (c *Client) PageLimit() int {
	return c.cfg.PageLimit
}

type pageRequest struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// FetchPage retrieves one page of job postings. Non-2xx responses, timeouts
// and transport errors consume one attempt each; the budget is Retries+1
// attempts with a fixed delay in between. After exhausting the budget the
// last error is returned and the caller decides whether the run stops.
func (c *Client) FetchPage(ctx context.Context, page int) (*PageResponse, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		logger.CtxError(ctx, "Missing hirebase endpoint or API key, skipping fetch")
		return nil, ErrNotConfigured
	}

	attempts := c.cfg.Retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out := &PageResponse{}
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(pageRequest{
				Page:      page,
				Limit:     c.cfg.PageLimit,
				SortBy:    c.cfg.SortBy,
				SortOrder: c.cfg.SortOrder,
			}).
			SetResult(out).
			Post(c.cfg.Endpoint)

		switch {
		case err != nil:
			lastErr = fmt.Errorf("fetch page %d: %w", page, err)
		case resp.StatusCode() != http.StatusOK:
			lastErr = fmt.Errorf("fetch page %d: upstream returned %d: %s", page, resp.StatusCode(), resp.String())
		default:
			return out, nil
		}

		if attempt < attempts {
			logger.CtxWarn(ctx, "Fetch attempt %d/%d failed, retrying in %s: %v",
				attempt, attempts, c.cfg.RetryDelay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	logger.CtxError(ctx, "Fetch exhausted %d attempts: %v", attempts, lastErr)
	return nil, lastErr
}
