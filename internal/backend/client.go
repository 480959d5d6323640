// Package backend is the HTTP client for the propvest REST API. The API owns
// every balance and every resource; this package only moves requests and
// envelopes back and forth.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Brownie44l1/propvest/internal/metrics"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx. Requests made with
// the returned context are sent on behalf of that user.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the backend API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *zap.Logger
	serviceToken string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithServiceToken sets the token used when the context carries none,
// e.g. for background reconciliation.
func WithServiceToken(token string) Option {
	return func(c *Client) { c.serviceToken = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a JSON request and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	token := tokenFrom(ctx)
	if token == "" {
		token = c.serviceToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackend(req.Method, 0, started)
		c.logger.Error("backend request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return fmt.Errorf("backend %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(req.Method, resp.StatusCode, started)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, raw)
		c.logger.Warn("backend returned error status",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
