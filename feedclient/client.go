// Package feedclient is the HTTP side of a notification-driven client: it
// fetches activity pages and keeps a cached first page that is refreshed
// whenever the notification channel marks it stale.
package feedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/photosunthesis/rate-stuff.online-sub001/models"
	"github.com/photosunthesis/rate-stuff.online-sub001/pkg"
)

// ErrMalformedResponse is returned when a 200 response is not a successful
// envelope carrying a page.
var ErrMalformedResponse = errors.New("malformed response")

// Client calls the activity feed endpoint with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for baseURL (e.g. http://localhost:9090). A nil
// httpClient uses one with a 30 second timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Activities fetches one page of the caller's activity feed. Errors carry
// the server's sentinel: pkg.ErrNotFound, pkg.ErrRateLimited,
// pkg.ErrUnavailable or pkg.ErrUnauthorized.
func (c *Client) Activities(ctx context.Context, limit int, cursor string) (*models.Page[models.Activity], error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	target := c.baseURL + "/api/activities"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode != http.StatusOK {
		// error bodies are best effort: proxies answer with HTML
		return nil, statusError(resp, env.Error)
	}

	switch {
	case decodeErr != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	case !env.Success:
		return nil, fmt.Errorf("%w: success=false: %s", ErrMalformedResponse, env.Error)
	case len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")):
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	var page models.Page[models.Activity]
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("%w: activity page: %v", ErrMalformedResponse, err)
	}
	if page.Items == nil {
		page.Items = []models.Activity{}
	}
	return &page, nil
}

func statusError(resp *http.Response, message string) error {
	if message == "" {
		message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, message)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", pkg.ErrUnauthorized, message)
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RetryError{Err: pkg.ErrRateLimited, RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return &RetryError{Err: pkg.ErrUnavailable, RetryAfter: retryAfter(resp)}
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, message)
	}
}

// RetryError is a retryable failure with the server's Retry-After hint.
type RetryError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v (retry after %s)", e.Err, e.RetryAfter)
	}
	return e.Err.Error()
}

func (e *RetryError) Unwrap() error { return e.Err }

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
