// Package transport is the HTTP layer shared by the Rentman and Harvest clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/harvestsync/pkg/constants"
	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client performs authenticated JSON requests against one API.
type Client struct {
	system     string
	baseURL    string
	apiKey     string
	auth       Authenticator
	headers    http.Header
	http       *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithRetries sets how often a rate limited request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// New creates a transport client for system ("rentman", "harvest").
func New(system, baseURL string, auth Authenticator, apiKey string, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		system:     system,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		auth:       auth,
		headers:    make(http.Header),
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// System returns the name of the remote system.
func (c *Client) System() string { return c.system }

// URL joins path and query onto the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get fetches path and decodes the JSON response into target.
func (c *Client) Get(ctx context.Context, path string, query url.Values, target any) error {
	return c.Send(ctx, http.MethodGet, c.URL(path, query), nil, target)
}

// Send performs a request with an optional JSON body and decodes the JSON
// response into target. target may be nil.
func (c *Client) Send(ctx context.Context, method, endpoint string, body, target any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.WrapParse("json", "request", err)
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
		if err != nil {
			return errors.NewValidationError("endpoint", endpoint, err.Error())
		}
		resp, err := c.Do(req)
		if err != nil {
			return &errors.APIError{System: c.system, Endpoint: endpoint, Message: "request failed", Err: err}
		}

		err = DecodeResponse(resp, c.system, target)
		if !errors.IsRateLimited(err) || attempt >= c.maxRetries {
			return err
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		logging.FromContext(ctx).Warn().
			Str("system", c.system).
			Str("endpoint", endpoint).
			Dur("retry_after", wait).
			Int("attempt", attempt+1).
			Msg("Rate limited, waiting")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	// Set common headers
	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.FromContext(req.Context()).Trace().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("HTTP request")
	return c.http.Do(req)
}

// retryAfter reads a Retry-After header in seconds.
func retryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Second
}
