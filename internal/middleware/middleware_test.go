package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttl[key] = ttl
	return nil
}

func (m *memoryStore) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.data[key]) + 1
	m.data[key] += "x"
	return int64(n), nil
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestHTTPCache(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	r := gin.New()
	r.Use(HTTPCache(store, HTTPCacheOptions{TTL: time.Minute, SkipPaths: []string{"/metrics"}}))
	r.GET("/articles", func(c *gin.Context) {
		calls++
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>list</p>"))
	})
	r.GET("/missing", func(c *gin.Context) {
		calls++
		c.String(http.StatusNotFound, "nope")
	})
	r.GET("/metrics", func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "m")
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/articles?page=1")
	assert.Equal(t, "miss", first.Header().Get(CacheHeader))
	second := get("/articles?page=1")
	assert.Equal(t, "hit", second.Header().Get(CacheHeader))
	assert.Equal(t, "<p>list</p>", second.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Contains(t, second.Header().Get("Cache-Control"), "max-age=60")
	assert.Equal(t, 1, calls)
	assert.Equal(t, time.Minute, store.ttl[PageCachePrefix+"/articles?page=1"])

	get("/articles?page=1&_t=1")
	assert.Equal(t, 2, calls)

	get("/missing")
	get("/missing")
	assert.Equal(t, 4, calls)

	get("/metrics")
	get("/metrics")
	assert.Equal(t, 6, calls)
}

func TestHTTPCacheDisabledWithoutStore(t *testing.T) {
	r := gin.New()
	r.Use(HTTPCache(nil, HTTPCacheOptions{}))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get(CacheHeader))
}

func TestRateLimit(t *testing.T) {
	store := newMemoryStore()
	r := gin.New()
	r.POST("/api/render", RateLimit(store, 2, time.Hour), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/render", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			require.Equal(t, "3600", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
