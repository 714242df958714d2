// Package client talks to the content backend's REST API. Every call is
// single-shot: there is no retry, backoff or circuit breaking. Calls that
// need authorization take the caller's auth.Session explicitly.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const maxResponseSize = 8 << 20 // 8MB

// Client is a thin JSON client bound to the backend base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New returns a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base URL %q must be http or https", baseURL)
	}
	c := &Client{
		base:      u,
		http:      &http.Client{},
		userAgent: "pubadmin",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves p against the base URL.
func (c *Client) URL(p string) string {
	return c.base.JoinPath(p).String()
}

func (c *Client) do(ctx context.Context, method, p, token string, in, out any, keys []string) error {
	target := c.URL(p)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, p, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, p, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Method: method, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newServerError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := decodeEnvelope(data, out, keys); err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	return nil
}

// decodeEnvelope unwraps {"data": ...} or a resource-named key before
// decoding into out. Bodies without a known key are decoded as-is.
func decodeEnvelope(data []byte, out any, keys []string) error {
	return decodeLevel(data, out, keys, 0)
}

func decodeLevel(data []byte, out any, keys []string, depth int) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' && depth < 2 {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(data, &env); err == nil {
			for _, k := range append([]string{"data"}, keys...) {
				raw, ok := env[k]
				if !ok || isNull(raw) {
					continue
				}
				if err := decodeLevel(raw, out, keys, depth+1); err == nil {
					return nil
				}
			}
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
