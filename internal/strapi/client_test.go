package strapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyList = `{"data":[],"meta":{"pagination":{"page":1,"pageSize":10,"pageCount":0,"total":0}}}`

const oneArticle = `{"data":[{"id":7,"attributes":{"title":"Hello","slug":"hello","blocks":[
	{"__component":"shared.quote","id":1,"body":"hi"}]}}],"meta":{}}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("localhost:1337/path")
	assert.Error(t, err)

	c, err := New("http://localhost:1337/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1337", c.BaseURL())
}

func TestGetArticlesDefaults(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = io.WriteString(w, emptyList)
	})

	resp, err := c.GetArticles(context.Background(), ArticleQuery{})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)

	require.NotNil(t, got)
	assert.Equal(t, "/api/articles", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "1", q.Get("pagination[page]"))
	assert.Equal(t, "10", q.Get("pagination[pageSize]"))
	assert.Equal(t, "publishedAt:desc", q.Get("sort"))
	assert.Equal(t, "cover,author,category,tags,blocks", q.Get("populate"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestGetArticlesRejectsInvalidSort(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := c.GetArticles(context.Background(), ArticleQuery{Sort: "title:sideways"})
	assert.True(t, errors.Is(err, ErrInvalidSort))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestValidateSort(t *testing.T) {
	for _, ok := range []string{"", "title", "title:asc", "publishedAt:desc", "title:asc,createdAt:desc", "author.name:asc"} {
		assert.NoError(t, ValidateSort(ok), ok)
	}
	for _, bad := range []string{"title:up", ":asc", "title;drop", "title:asc,"} {
		assert.True(t, errors.Is(ValidateSort(bad), ErrInvalidSort), bad)
	}
}

func TestTokenTransport(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, emptyList)
	}, WithToken("secret"))

	_, err := c.GetTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
}

func TestGetArticleBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "cover,author,category,tags,blocks,seo", q.Get("populate"))
		if q.Get("filters[slug][$eq]") == "hello" {
			_, _ = io.WriteString(w, oneArticle)
			return
		}
		_, _ = io.WriteString(w, emptyList)
	})

	a, err := c.GetArticleBySlug(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 7, a.ID)
	assert.Len(t, a.Attributes.Blocks, 1)

	_, err = c.GetArticleBySlug(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"data":null,"error":{"status":404,"name":"NotFoundError","message":"Not Found","details":{}}}`)
	})

	_, err := c.GetArticleByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "NotFoundError", apiErr.Name)
	assert.Equal(t, "strapi: 404 NotFoundError: Not Found", apiErr.Error())
}

func TestErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.GetGlobal(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSearchAndRelatedFilters(t *testing.T) {
	var queries []map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query())
		_, _ = io.WriteString(w, emptyList)
	})
	ctx := context.Background()

	_, err := c.SearchArticles(ctx, "go", Page{Page: 2})
	require.NoError(t, err)
	_, err = c.GetRelatedArticles(ctx, 7, 3, 0)
	require.NoError(t, err)
	_, err = c.GetFeaturedArticles(ctx, 0)
	require.NoError(t, err)
	_, err = c.GetArticlesByTags(ctx, []string{"go", "web"}, Page{})
	require.NoError(t, err)

	require.Len(t, queries, 4)
	search := queries[0]
	assert.Equal(t, []string{"go"}, search["filters[$or][0][title][$containsi]"])
	assert.Equal(t, []string{"go"}, search["filters[$or][1][description][$containsi]"])
	assert.Equal(t, []string{"2"}, search["pagination[page]"])

	related := queries[1]
	assert.Equal(t, []string{"7"}, related["filters[id][$ne]"])
	assert.Equal(t, []string{"3"}, related["filters[category][id][$eq]"])
	assert.Equal(t, []string{"3"}, related["pagination[pageSize]"])
	assert.Equal(t, []string{"cover,author,category"}, related["populate"])

	featured := queries[2]
	assert.Equal(t, []string{"true"}, featured["filters[featured][$eq]"])
	assert.Equal(t, []string{"3"}, featured["pagination[pageSize]"])
	assert.Empty(t, featured["pagination[page]"])

	byTags := queries[3]
	assert.Equal(t, []string{"go"}, byTags["filters[tags][slug][$in][0]"])
	assert.Equal(t, []string{"web"}, byTags["filters[tags][slug][$in][1]"])
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  time.Duration
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttl = ttl
	return nil
}

func TestResponseCache(t *testing.T) {
	var calls int32
	cache := &memoryCache{data: map[string]string{}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = io.WriteString(w, oneArticle)
	}, WithCache(cache, time.Minute))

	for i := 0; i < 3; i++ {
		resp, err := c.GetArticles(context.Background(), ArticleQuery{})
		require.NoError(t, err)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "hello", resp.Data[0].Attributes.Slug)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, time.Minute, cache.ttl)
	assert.Len(t, cache.data, 1)
}

func TestGetBypassesCacheAndPutSendsJSON(t *testing.T) {
	var calls int32
	var body map[string]any
	cache := &memoryCache{data: map[string]string{}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method == http.MethodPut {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		_, _ = io.WriteString(w, `{"ok":true}`)
	}, WithCache(cache, time.Minute))

	var out struct{ OK bool }
	require.NoError(t, c.Get(context.Background(), "/users-permissions/roles", nil, &out))
	require.NoError(t, c.Get(context.Background(), "/users-permissions/roles", nil, &out))
	assert.True(t, out.OK)
	assert.Empty(t, cache.data)

	require.NoError(t, c.Put(context.Background(), "/users-permissions/roles/2", map[string]string{"name": "Public"}, nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "Public", body["name"])
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/articles", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("pagination[pageSize]"))
		w.Write([]byte(`{"data":[],"meta":{}}`))
	})
	require.NoError(t, c.Ping(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.Error(t, down.Ping(context.Background()))
}
