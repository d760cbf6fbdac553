// Package render is an HTTP client for Kroki-compatible diagram renderers.
//
// Sources are POSTed as plain text to <baseURL>/<diagramType>/<format>. Successful
// renders are kept in a small keyed LRU cache so identical successive requests do not
// reach the network; the cache can be cleared explicitly. Retries are left to callers.
package render

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize keeps only the most recent render.
const DefaultCacheSize = 1

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Error is returned when the renderer answers with a non-2xx status.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("renderer returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client renders diagram source through a remote service.
type Client struct {
	baseURL     string
	diagramType string
	format      string
	httpClient  *http.Client
	cacheSize   int
	cache       *lru.Cache[string, string]
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithDiagramType sets the diagram language path segment (default "mermaid").
func WithDiagramType(t string) Option {
	return func(cl *Client) {
		cl.diagramType = t
	}
}

// WithFormat sets the output format path segment (default "svg").
func WithFormat(f string) Option {
	return func(cl *Client) {
		cl.format = f
	}
}

// WithCacheSize sets the number of cached renders. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(cl *Client) {
		cl.cacheSize = n
	}
}

// WithMetrics records cache lookups and request durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

// WithLogger configures a logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

// New creates a renderer client for baseURL (e.g. "https://kroki.io").
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		diagramType: "mermaid",
		format:      "svg",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		cacheSize:   DefaultCacheSize,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("renderer base URL is required")
	}
	if c.cacheSize > 0 {
		cache, err := lru.New[string, string](c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create render cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.diagramType, c.format)
}

// Render returns the rendered markup for source, from cache when possible.
func (c *Client) Render(ctx context.Context, source string) (string, error) {
	if c.cache != nil {
		if out, ok := c.cache.Get(source); ok {
			c.metrics.RenderCache(metrics.CacheHit)
			return out, nil
		}
		c.metrics.RenderCache(metrics.CacheMiss)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), strings.NewReader(source))
	if err != nil {
		return "", fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRender("error", time.Since(start))
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.metrics.ObserveRender(strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return "", fmt.Errorf("read render response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Renderer rejected request", "status", resp.StatusCode, "endpoint", c.endpoint())
		return "", &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}

	out := string(body)
	if c.cache != nil {
		c.cache.Add(source, out)
	}
	return out, nil
}

// ClearCache drops every cached render.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
