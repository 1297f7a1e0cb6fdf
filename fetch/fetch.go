// Package fetch retrieves multipart responses for streaming.
//
// Responses are returned with their bodies open; the caller closes them.
// There are no retries: a partially consumed stream cannot be replayed.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pithecene-io/mimestream/iox"
)

// DefaultTimeout bounds connection setup and response headers.
const DefaultTimeout = 30 * time.Second

// DefaultAccept is sent when no Accept header is configured.
const DefaultAccept = "multipart/related, multipart/*;q=0.9, */*;q=0.1"

// Config configures a Client.
type Config struct {
	// Headers are custom HTTP headers added to each request.
	Headers map[string]string
	// Accept overrides DefaultAccept.
	Accept string
	// Timeout bounds the wait for response headers (default 30s).
	// Body streaming is bounded only by the caller's context.
	Timeout time.Duration
}

// Client issues GET requests for multipart bodies.
type Client struct {
	config Config
	client *http.Client
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0, got %s", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Accept == "" {
		cfg.Accept = DefaultAccept
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout
	return &Client{
		config: cfg,
		client: &http.Client{Transport: transport},
	}, nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code   int
	Status string
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// Get requests url and returns the response with an open body.
// Non-2xx responses are drained, closed, and reported as *StatusError.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", c.config.Accept)
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = iox.DrainClose(resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status, URL: url}
	}
	return resp, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// ErrNoContentType is returned by FromFile when no content type is given.
var ErrNoContentType = errors.New("file input requires a content type")

// FromFile wraps a captured body in a synthetic response carrying
// contentType, so offline captures run through the same adapters.
func FromFile(path, contentType string) (*http.Response, error) {
	if contentType == "" {
		return nil, ErrNoContentType
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return FromReader(f, contentType), nil
}

// FromReader wraps body in a synthetic 200 response.
func FromReader(body io.ReadCloser, contentType string) *http.Response {
	h := http.Header{}
	h.Set("Content-Type", contentType)
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          body,
		ContentLength: -1,
	}
}
