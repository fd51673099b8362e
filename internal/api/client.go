// Package api is a typed client for the Swycle HTTP+JSON API. Requests
// carry the session cookie from the configured jar; responses are decoded
// into internal/model records and validated before they are returned.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Jar is a cookie jar that can forget its session. store.Jar satisfies it.
type Jar interface {
	http.CookieJar
	Clear() error
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string
	// Jar holds the session cookie. A fresh in-memory jar is used when nil.
	Jar Jar
	// Timeout bounds each request.
	Timeout time.Duration
	// ClientID is sent as X-Client-ID when set.
	ClientID string
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// Client talks to the Swycle API.
type Client struct {
	baseURL  string
	http     *http.Client
	jar      Jar
	clientID string
}

// New creates a client for the API rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", cfg.BaseURL)
	}

	jar := cfg.Jar
	if jar == nil {
		jar = NewMemoryJar()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Jar:       jar,
			Timeout:   timeout,
			Transport: cfg.Transport,
		},
		jar:      jar,
		clientID: cfg.ClientID,
	}, nil
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends a request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	slog.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).Round(time.Millisecond),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

// getJSON issues a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// sendJSON issues a request with an optional JSON body.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	if in == nil {
		return c.do(ctx, method, path, nil, "", out)
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", out)
}

// getList decodes a JSON array and validates every element.
func getList[T any, PT interface {
	*T
	validator
}](ctx context.Context, c *Client, path string) ([]T, error) {
	var items []T
	if err := c.getJSON(ctx, path, &items); err != nil {
		return nil, err
	}
	if err := validateEach[T, PT](items); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// memoryJar is the default Jar: a cookiejar.Jar that can be reset.
type memoryJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

// NewMemoryJar returns an in-memory Jar.
func NewMemoryJar() Jar {
	j, _ := cookiejar.New(nil)
	return &memoryJar{jar: j}
}

func (m *memoryJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.jar.SetCookies(u, cookies)
}

func (m *memoryJar) Cookies(u *url.URL) []*http.Cookie {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jar.Cookies(u)
}

func (m *memoryJar) Clear() error {
	j, _ := cookiejar.New(nil)
	m.mu.Lock()
	m.jar = j
	m.mu.Unlock()
	return nil
}
