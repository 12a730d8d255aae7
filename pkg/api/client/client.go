package client

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

var DefaultTimeout = 30 * time.Second
var DefaultConcurrencyLimit = 5

// Client wraps http.Client with concurrency control and optional retries.
type Client struct {
	client     *http.Client
	semChan    chan struct{}
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRetries enables up to n retries on transport errors, 5xx and 429 responses.
func WithRetries(n int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.retryDelay = delay
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// New creates a new API client with the given concurrency limit. Requests are not retried
// unless WithRetries is passed.
func New(maxConcurrent int, opts ...Option) *Client {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultConcurrencyLimit
	}
	c := &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		semChan: make(chan struct{}, maxConcurrent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes the request under the concurrency limit and returns the fully read body.
// Non-2xx responses are returned as a *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, []byte, error) {
	var lastErr error
	waited := false
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// после Retry-After повторная пауза не нужна
			if !waited {
				if err := c.wait(req, c.retryDelay*time.Duration(attempt)); err != nil {
					return nil, nil, err
				}
			}
			waited = false
			newReq := req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, nil, err
				}
				newReq.Body = body
			}
			req = newReq
		}

		select {
		case c.semChan <- struct{}{}:
		case <-req.Context().Done():
			return nil, nil, req.Context().Err()
		}
		resp, body, err := c.doRequest(req)
		<-c.semChan

		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &StatusError{Code: resp.StatusCode, Body: body}
			if delay := retryAfter(resp); delay > 0 && attempt < c.maxRetries {
				if err := c.wait(req, delay); err != nil {
					return nil, nil, err
				}
				waited = true
			}
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return resp, body, &StatusError{Code: resp.StatusCode, Body: body}
		}
		return resp, body, nil
	}
	if c.maxRetries == 0 {
		return nil, nil, lastErr
	}
	return nil, nil, fmt.Errorf("all retries failed: %w", lastErr)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	const limit = 200
	body := e.Body
	if len(body) > limit {
		body = body[:limit]
	}
	return fmt.Sprintf("http status %d: %s", e.Code, body)
}

func (c *Client) doRequest(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}

	return resp, body, nil
}

func (c *Client) wait(req *http.Request, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
