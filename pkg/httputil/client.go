package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request, including connection setup and
// body read.
const DefaultTimeout = 10 * time.Second

// Sentinel errors for HTTP operations.
var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for transport failures and non-404 HTTP
	// error statuses.
	ErrNetwork = errors.New("network error")
)

// Client is an HTTP client with default headers, a bounded timeout, and
// retry on transient failures.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client that sends headers with every request. A
// timeout of zero means [DefaultTimeout]. The underlying transport caches
// DNS lookups and pools connections per host.
func NewClient(headers map[string]string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: NewTransport(),
		},
		headers: headers,
	}
}

// Get fetches url and returns the response body. Transport errors, 429s,
// and 5xx statuses are retried with backoff; 404 maps to [ErrNotFound] and
// other 4xx statuses to [ErrNetwork], both without retrying.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.doRequest(ctx, url)
		return err
	})
	return body, err
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Cancellation is a caller decision, not a flaky network.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return body, nil
}

// checkStatus maps an HTTP status to a sentinel error. A 404 is a
// definitive answer and never retried; 429 and 5xx are transient.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RetryableError{fmt.Errorf("%w: rate limited (429)", ErrNetwork)}
	case resp.StatusCode >= 500:
		return &RetryableError{fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)}
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}
	return nil
}
