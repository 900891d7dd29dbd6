// Package marvelcdb is the HTTP client for the MarvelCDB public API.
//
// The API is unauthenticated and unpaginated: /cards/ returns the whole
// catalog and /decklists/by_date/{day} every public deck for one day.
// Rate limiting is handled via a token bucket limiter.
package marvelcdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client is the rate-limited MarvelCDB client.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	limiter      *rate.Limiter
	retryBackoff time.Duration
	logger       *slog.Logger
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL           string
	UserAgent         string
	RequestsPerMinute int
	Timeout           time.Duration
	RetryBackoff      time.Duration
}

// NewClient creates a MarvelCDB HTTP client with rate limiting.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		userAgent:    opts.UserAgent,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		retryBackoff: opts.RetryBackoff,
		logger:       logger,
	}
}

// GetCards fetches the full card catalog, one raw record per card.
func (c *Client) GetCards(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.getWithRetry(ctx, "/cards/")
	if err != nil {
		return nil, err
	}
	var cards []json.RawMessage
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

// GetDecklistsByDate fetches every public decklist published on day. A
// response that is not a JSON array counts as an empty day.
func (c *Client) GetDecklistsByDate(ctx context.Context, day time.Time) ([]json.RawMessage, error) {
	path := "/decklists/by_date/" + day.Format(time.DateOnly)
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var decks []json.RawMessage
	if err := json.Unmarshal(body, &decks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return decks, nil
}

// StatusError is returned for any non-200 response.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("MarvelCDB %s returned %d: %s", e.Path, e.Code, e.Body)
}

// retryable reports whether a failed request is worth one more attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}

// getWithRetry makes up to two attempts, sleeping retryBackoff between them.
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	body, err := c.get(ctx, path)
	if err == nil || !retryable(err) || ctx.Err() != nil {
		return body, err
	}

	c.logger.Warn("Retrying MarvelCDB request", "path", path, "error", err, "backoff", c.retryBackoff)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryBackoff):
	}
	return c.get(ctx, path)
}

// get performs a rate-limited GET request to a MarvelCDB endpoint.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Path: path, Code: resp.StatusCode, Body: truncate(body, 200)}
	}
	return body, nil
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
