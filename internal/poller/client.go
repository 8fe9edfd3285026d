package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// ErrBodyTooLarge is reported by [Client.Fetch] when the document is larger
// than 1MB. The body is discarded rather than handed on half-read.
var ErrBodyTooLarge = errors.New("response body exceeds 1MB")

// One upstream document, so a handful of idle connections is plenty.
const (
	idlePoolSize    = 4
	idlePoolTimeout = 60 * time.Second
)

// Response is the outcome of one [Client.Fetch].
type Response struct {
	Body       []byte // at most 1MB; nil when larger
	StatusCode int    // 0 when no response arrived
	Latency    time.Duration
	Error      error // transport, request, read or size failure; status codes are not errors
}

// OK reports whether the request completed with a 2xx status.
func (r Response) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Client polls a single statistics document.
//
// The target, headers and timeout are fixed at construction. Each request
// asks caches to revalidate with the origin, so every refresh cycle observes
// the document as currently published.
type Client struct {
	target  string
	header  http.Header
	timeout time.Duration
	http    *http.Client
}

// NewClient returns a [Client] for target. Extra headers are layered over the
// cache-bypass defaults and may replace them.
func NewClient(target string, timeout time.Duration, extra map[string]string) *Client {
	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Cache-Control", "no-cache, no-store, max-age=0")
	header.Set("Pragma", "no-cache")
	for k, v := range extra {
		header.Set(k, v)
	}

	return &Client{
		target:  target,
		header:  header,
		timeout: timeout,
		http: &http.Client{
			// the deadline comes from the request context
			Transport: &http.Transport{
				MaxIdleConns:        idlePoolSize,
				MaxIdleConnsPerHost: idlePoolSize,
				MaxConnsPerHost:     idlePoolSize,
				IdleConnTimeout:     idlePoolTimeout,
			},
		},
	}
}

// Target returns the URL the client polls.
func (c *Client) Target() string {
	return c.target
}

// Fetch issues one GET against the target. It never returns an error
// directly: failures are reported through [Response.Error].
func (c *Client) Fetch(ctx context.Context) Response {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	result := func(status int, body []byte, err error) Response {
		return Response{Body: body, StatusCode: status, Latency: time.Since(started), Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.target, nil)
	if err != nil {
		return result(0, nil, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header = c.header.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return result(0, nil, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	// one byte past the cap tells an oversized body apart from one that fits
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return result(resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(body) > maxResponseBodySize {
		return result(resp.StatusCode, nil, ErrBodyTooLarge)
	}
	return result(resp.StatusCode, body, nil)
}

// Close drops idle pooled connections. It is safe on a nil client and may be
// called more than once; the client stays usable afterwards.
func (c *Client) Close() {
	if c == nil || c.http == nil {
		return
	}
	c.http.CloseIdleConnections()
}
