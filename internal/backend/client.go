// Package backend is the HTTP client for the remote dashboard
// persistence service. The service is the sole durable source of
// truth; this package only moves JSON snapshots across the wire and
// leaves all shape validation to the normalizer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/querydeck/querydeck/internal/dashboard"
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// DashboardPayload is the raw read response. Detail, when non-empty,
// signals that an empty result means absence rather than truth and
// that legacy demo seeds may be present.
type DashboardPayload struct {
	Queries []dashboard.RawRecord
	Folders []dashboard.RawRecord
	Detail  string
}

// Client is the remote contract the sync coordinator consumes.
type Client interface {
	// FetchDashboard reads the authoritative snapshot for a user.
	FetchDashboard(ctx context.Context, user string) (*DashboardPayload, error)
	// SaveDashboard writes a full snapshot. It is used for both
	// debounced edit persists and immediate repair/delete writes.
	SaveDashboard(ctx context.Context, user string, snap *dashboard.Snapshot) error
	// FetchBundles reads the heavy per-item payloads for the given ids
	// in one batched call.
	FetchBundles(ctx context.Context, user string, ids []string) (map[string]dashboard.RawRecord, error)
}

// HTTPClient implements Client against the service's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewHTTPClient builds a client for the given base URL. A nil
// httpClient gets a sensible default timeout.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		maxRetries: 3,
		baseDelay:  100 * time.Millisecond,
		maxDelay:   2 * time.Second,
	}
}

// FetchDashboard implements Client. Reads are retried with backoff;
// they are idempotent and the UI is blocked on the first one.
func (c *HTTPClient) FetchDashboard(ctx context.Context, user string) (*DashboardPayload, error) {
	q := url.Values{}
	q.Set("user", user)
	var body struct {
		Queries []any  `json:"queries"`
		Folders []any  `json:"folders"`
		Detail  string `json:"detail"`
	}
	err := c.withRetry(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/dashboard/queries?"+q.Encode(), nil, &body)
	})
	if err != nil {
		return nil, err
	}
	return &DashboardPayload{
		Queries: dashboard.ToRawRecords(body.Queries),
		Folders: dashboard.ToRawRecords(body.Folders),
		Detail:  body.Detail,
	}, nil
}

// SaveDashboard implements Client. Writes are never retried: a timed
// out write may still have landed, and the debounce loop will carry
// newer state soon anyway.
func (c *HTTPClient) SaveDashboard(ctx context.Context, user string, snap *dashboard.Snapshot) error {
	payload := map[string]any{
		"user":    user,
		"queries": snap.Items,
		"folders": snap.Folders,
	}
	return c.do(ctx, http.MethodPost, "/dashboard/queries", payload, nil)
}

// FetchBundles implements Client.
func (c *HTTPClient) FetchBundles(ctx context.Context, user string, ids []string) (map[string]dashboard.RawRecord, error) {
	payload := map[string]any{
		"user":     user,
		"queryIds": ids,
	}
	var body struct {
		Bundles map[string]map[string]any `json:"bundles"`
	}
	if err := c.do(ctx, http.MethodPost, "/dashboard/queryBundles", payload, &body); err != nil {
		return nil, err
	}
	out := make(map[string]dashboard.RawRecord, len(body.Bundles))
	for id, raw := range body.Bundles {
		out[id] = dashboard.RawRecord(raw)
	}
	return out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// withRetry retries transient failures (network errors and 5xx) with
// exponential backoff.
func (c *HTTPClient) withRetry(ctx context.Context, fn func() error) error {
	delay := c.baseDelay
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	// Network-level failures are worth retrying.
	return true
}
