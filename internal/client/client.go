package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/betterank/internal/errors"
	"github.com/vytor/betterank/internal/logger"
)

// Client talks to the BetterAnk REST backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithPrefix("client")
	return c
}

// BaseURL returns the backend root this client was built for.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// doJSON sends body (if non-nil) as JSON and decodes a 2xx response into out
// (if non-nil). Any other status yields a *errors.FetchError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, reader, contentType, out)
}

// doForm posts url-encoded values, as the backend's OAuth2 login expects.
func (c *Client) doForm(ctx context.Context, path string, values url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	requestID := uuid.NewString()
	log := logger.FromContext(ctx).WithPrefix("client").WithFields(map[string]any{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return errors.NewTransportError(method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log.Debug("sending request")
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("request failed: %v", err)
		return errors.NewTransportError(method, path, err)
	}
	defer resp.Body.Close()

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := detailMessage(raw)
		log.Warn("request rejected: status=%d, detail=%s", resp.StatusCode, msg)
		return errors.NewFetchError(method, path, resp.StatusCode, msg)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response: %v", err)
		return &errors.FetchError{Method: method, Path: path, Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

// detailMessage extracts FastAPI's {"detail": ...} or falls back to the raw
// body text.
func detailMessage(raw []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			return strings.Join(msgs, "; ")
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(raw))
}
