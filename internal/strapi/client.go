// Package strapi is a client for the Strapi v4 content API.
package strapi

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

	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/metrics"
)

// CacheKeyPrefix prefixes every cached response key.
const CacheKeyPrefix = "blockpress:strapi:"

// Cache stores raw GET response bodies. pkg/redis.Client satisfies it; Get returns ""
// on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient uses a copy of hc. Its transport is wrapped with the token transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			cp := *hc
			c.httpClient = &cp
		}
	}
}

// WithCache enables response caching for content reads. A nil cache or a non-positive
// ttl leaves caching off.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		if cache != nil && ttl > 0 {
			c.cache = cache
			c.cacheTTL = ttl
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a client for the Strapi instance at baseURL, e.g. http://localhost:1337.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("strapi: base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("strapi: invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Transport = NewTransport(c.httpClient.Transport, c.token)
	return c, nil
}

// BaseURL returns the instance url without the /api prefix.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + "/api" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveStrapi(0)
		return nil, fmt.Errorf("strapi %s %s: %w", method, path, err)
	}
	defer res.Body.Close()
	metrics.ObserveStrapi(res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, parseError(res)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return data, nil
}

func decode(path string, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Get performs an uncached GET against /api{path} and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, q url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	return decode(path, data, out)
}

// Put sends body as JSON to /api{path} and decodes the response into out when out is non-nil.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	data, err := c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	return decode(path, data, out)
}

// Ping asks for a single article id, bypassing the cache.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("pagination[pageSize]", "1")
	q.Set("fields[0]", "id")
	return c.Get(ctx, "/articles", q, nil)
}

// fetch is Get with the response cache in front of it.
func (c *Client) fetch(ctx context.Context, path string, q url.Values, out any) error {
	if c.cache == nil {
		return c.Get(ctx, path, q, out)
	}

	key := CacheKeyPrefix + c.endpoint(path, q)
	cached, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("strapi cache read failed", zap.String("key", key), zap.Error(err))
	} else if cached != "" {
		if err := json.Unmarshal([]byte(cached), out); err == nil {
			return nil
		}
		c.logger.Debug("strapi cache entry unreadable", zap.String("key", key))
	}

	data, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	if err := decode(path, data, out); err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, string(data), c.cacheTTL); err != nil {
		c.logger.Warn("strapi cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}
