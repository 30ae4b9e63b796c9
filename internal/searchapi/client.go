// Package searchapi is the HTTP client for the search endpoint.
package searchapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"searchdeck/internal/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error
const maxErrorBody = 512

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("search endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("search endpoint returned %d: %s", e.Code, e.Body)
}

// Client calls GET {endpoint}/api/search
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient returns a client for endpoint. Every request is bounded by timeout.
func NewClient(endpoint string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log.With().Str("component", "searchapi").Logger(),
	}
}

// Endpoint returns the base URL the client talks to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Search fetches results for key
func (c *Client) Search(ctx context.Context, key domain.RequestKey) (*domain.SearchResponse, error) {
	if key.IsZero() {
		return nil, fmt.Errorf("search called without a query")
	}

	url := c.endpoint + key.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out domain.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	if out.Results == nil {
		out.Results = []domain.SearchResult{}
	}

	c.log.Debug().
		Str("query", key.Query).
		Str("mode", string(key.Mode)).
		Int("results", len(out.Results)).
		Dur("elapsed", time.Since(start)).
		Msg("search completed")
	return &out, nil
}

// Health checks GET {endpoint}/api/health
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("building health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}
