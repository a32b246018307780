package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"platemap/config"
)

// Client is the HTTP helper shared by connector adapters. It enforces a
// minimum inter-request interval and retries transient failures with
// exponential backoff in an explicit bounded loop.
type Client struct {
	httpClient  *http.Client
	minInterval time.Duration
	maxAttempts int
	backoffBase time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient returns a Client with the configured rate limit and retry policy.
func NewClient() *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		minInterval: config.MinRequestInterval,
		maxAttempts: config.MaxRequestAttempts,
		backoffBase: config.RequestBackoffBase,
	}
}

// Get fetches a URL, returning the response body. Transient failures
// (network errors, 5xx, 429) are retried up to the attempt budget; 4xx
// responses other than 429 fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase * time.Duration(1<<(attempt-2))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doGet(ctx, url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", c.maxAttempts, lastErr)
}

// throttle waits out the remainder of the minimum inter-request interval.
// Serialized so concurrent calls through one connector still respect the
// source's rate limit.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) doGet(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return b, false, nil
}

// Ping issues a lightweight GET and reports whether the endpoint answered
// with any non-5xx status. Used by connector health checks.
func (c *Client) Ping(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
