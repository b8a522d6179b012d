package article

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/seo"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/view"
)

type fakeSource struct {
	mu       sync.Mutex
	articles []models.Article
	tags     []models.Tag
	err      error
	calls    []string
	tagSlugs []string
	related  [3]int
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeSource) page() (*models.ArticlesResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ArticlesResponse{
		Data: f.articles,
		Meta: models.Meta{Pagination: &models.Pagination{Page: 1, PageSize: 10, PageCount: 2, Total: 11}},
	}, nil
}

func (f *fakeSource) GetArticles(_ context.Context, q strapi.ArticleQuery) (*models.ArticlesResponse, error) {
	f.record("GetArticles")
	if err := strapi.ValidateSort(q.Sort); err != nil {
		return nil, err
	}
	return f.page()
}

func (f *fakeSource) GetArticleBySlug(_ context.Context, slug string) (*models.Article, error) {
	f.record("GetArticleBySlug")
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.articles {
		if a.Attributes.Slug == slug {
			return &a, nil
		}
	}
	return nil, strapi.ErrNotFound
}

func (f *fakeSource) GetArticlesByTag(context.Context, string, strapi.Page) (*models.ArticlesResponse, error) {
	f.record("GetArticlesByTag")
	return f.page()
}

func (f *fakeSource) GetArticlesByTags(_ context.Context, slugs []string, _ strapi.Page) (*models.ArticlesResponse, error) {
	f.record("GetArticlesByTags")
	f.mu.Lock()
	f.tagSlugs = slugs
	f.mu.Unlock()
	return f.page()
}

func (f *fakeSource) GetArticlesByCategory(context.Context, string, strapi.Page) (*models.ArticlesResponse, error) {
	f.record("GetArticlesByCategory")
	return f.page()
}

func (f *fakeSource) GetArticlesByAuthor(context.Context, int, strapi.Page) (*models.ArticlesResponse, error) {
	f.record("GetArticlesByAuthor")
	return f.page()
}

func (f *fakeSource) GetFeaturedArticles(context.Context, int) (*models.ArticlesResponse, error) {
	f.record("GetFeaturedArticles")
	return &models.ArticlesResponse{}, nil
}

func (f *fakeSource) GetRelatedArticles(_ context.Context, articleID, categoryID, limit int) (*models.ArticlesResponse, error) {
	f.record("GetRelatedArticles")
	f.mu.Lock()
	f.related = [3]int{articleID, categoryID, limit}
	f.mu.Unlock()
	return &models.ArticlesResponse{Data: []models.Article{newArticle(99, "Neighbour", "neighbour")}}, nil
}

func (f *fakeSource) SearchArticles(context.Context, string, strapi.Page) (*models.ArticlesResponse, error) {
	f.record("SearchArticles")
	return f.page()
}

func (f *fakeSource) GetTags(context.Context) (*models.TagsResponse, error) {
	f.record("GetTags")
	return &models.TagsResponse{Data: f.tags}, nil
}

func (f *fakeSource) GetTag(_ context.Context, slug string) (*models.Tag, error) {
	f.record("GetTag")
	for _, t := range f.tags {
		if t.Attributes.Slug == slug {
			return &t, nil
		}
	}
	return nil, strapi.ErrNotFound
}

func (f *fakeSource) GetCategory(_ context.Context, slug string) (*models.Category, error) {
	f.record("GetCategory")
	return &models.Category{ID: 4, Attributes: models.CategoryAttributes{Name: "Engineering", Slug: slug}}, nil
}

func (f *fakeSource) GetAuthor(_ context.Context, id int) (*models.Author, error) {
	f.record("GetAuthor")
	return &models.Author{ID: id, Attributes: models.AuthorAttributes{Name: "Ada"}}, nil
}

func (f *fakeSource) GetGlobal(context.Context) (*models.Global, error) {
	return nil, strapi.ErrNotFound
}

func newArticle(id int, title, slug string) models.Article {
	return models.Article{ID: id, Attributes: models.ArticleAttributes{
		Title:       title,
		Slug:        slug,
		Description: title + " description",
		CreatedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func fixture() *fakeSource {
	a := newArticle(12, "Hello Blocks", "hello-blocks")
	a.Attributes.Author.Data = &models.Author{ID: 1, Attributes: models.AuthorAttributes{Name: "Ada"}}
	a.Attributes.Category.Data = &models.Category{ID: 4, Attributes: models.CategoryAttributes{Name: "Engineering", Slug: "engineering"}}
	a.Attributes.Tags.Data = []models.Tag{{ID: 5, Attributes: models.TagAttributes{Name: "Go", Slug: "go"}}}
	a.Attributes.SEO = &models.SEO{MetaTitle: "Hello SEO"}
	a.Attributes.Blocks = blocks.List{
		blocks.RichText{ID: 1, Body: "<p>First <strong>paragraph</strong></p>"},
		blocks.Unknown{ID: 2, Component: "shared.poll"},
		blocks.Quote{ID: 3, Title: "Ada", Body: "Quoted"},
	}
	return &fakeSource{
		articles: []models.Article{a},
		tags: []models.Tag{
			{ID: 5, Attributes: models.TagAttributes{Name: "Go", Slug: "go"}},
			{ID: 6, Attributes: models.TagAttributes{Name: "Web", Slug: "web"}},
		},
	}
}

func newRouter(src Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(src, view.NewLayout("Test Blog"), view.NewContent(nil, false, nil), seo.Site{Name: "Test Blog", URL: "https://blog.test"}, nil)
	h.RegisterRoutes(r.Group(""), r.Group("/api"))
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDetailPage(t *testing.T) {
	src := fixture()
	w := get(newRouter(src), "/articles/hello-blocks")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "<title>Hello SEO</title>")
	assert.Contains(t, body, `<link rel="canonical" href="https://blog.test/articles/hello-blocks" />`)
	assert.Contains(t, body, "Hello Blocks</h1>")
	assert.Contains(t, body, "<p>First <strong>paragraph</strong></p>")
	assert.Contains(t, body, "Unknown block type: shared.poll")
	assert.Contains(t, body, "Quoted")
	assert.Contains(t, body, `href="/tags/go"`)
	assert.Contains(t, body, `href="/categories/engineering"`)
	assert.Contains(t, body, `href="/authors/1"`)
	assert.Contains(t, body, "Related Articles")
	assert.Contains(t, body, `href="/articles/neighbour"`)
	assert.Less(t, strings.Index(body, "First"), strings.Index(body, "Quoted"))
	assert.Equal(t, [3]int{12, 4, relatedLimit}, src.related)
}

func TestDetailUpstreamErrors(t *testing.T) {
	w := get(newRouter(fixture()), "/articles/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)

	src := fixture()
	src.err = &strapi.Error{StatusCode: http.StatusInternalServerError, Message: "boom"}
	w = get(newRouter(src), "/articles/hello-blocks")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	src.err = errors.New("dial tcp: connection refused")
	w = get(newRouter(src), "/articles")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListFiltersByTags(t *testing.T) {
	src := fixture()
	w := get(newRouter(src), "/articles?tags=go,web")
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, src.called("GetArticlesByTags"))
	assert.False(t, src.called("GetArticles"))
	assert.Equal(t, []string{"go", "web"}, src.tagSlugs)

	body := w.Body.String()
	assert.Contains(t, body, "Filter by Tags")
	assert.Contains(t, body, `href="/articles/hello-blocks"`)
	assert.Contains(t, body, `rel="next"`)
	assert.Contains(t, body, "page=2")
	assert.Contains(t, body, "tags=go%2Cweb")
}

func TestHomeShowsFeatured(t *testing.T) {
	src := fixture()
	w := get(newRouter(src), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, src.called("GetFeaturedArticles"))
	assert.True(t, src.called("GetArticles"))
	assert.Contains(t, w.Body.String(), "<title>Test Blog</title>")
}

func TestListRejectsInvalidSort(t *testing.T) {
	w := get(newRouter(fixture()), "/articles?sort=title:sideways")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkdownExport(t *testing.T) {
	w := get(newRouter(fixture()), "/articles/hello-blocks/markdown")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "# Hello Blocks\n\n"))
	assert.Contains(t, body, "First **paragraph**")
	assert.NotContains(t, body, "Unknown block type")
}

func TestTaxonomyPages(t *testing.T) {
	src := fixture()
	r := newRouter(src)

	w := get(r, "/tags")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/tags/web"`)

	w = get(r, "/tags/go")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "#Go")
	assert.True(t, src.called("GetArticlesByTag"))

	assert.Equal(t, http.StatusNotFound, get(r, "/tags/rust").Code)

	w = get(r, "/categories/engineering")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Engineering")

	assert.Equal(t, http.StatusOK, get(r, "/authors/1").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/authors/abc").Code)
}

func TestSearchPage(t *testing.T) {
	src := fixture()
	r := newRouter(src)

	w := get(r, "/search")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, src.called("SearchArticles"))

	w = get(r, "/search?q=blocks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, src.called("SearchArticles"))
	assert.Contains(t, w.Body.String(), `href="/articles/hello-blocks"`)
}

func TestAPI(t *testing.T) {
	r := newRouter(fixture())

	w := get(r, "/api/articles")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data       []articleSummary `json:"data"`
		Pagination struct {
			Total       int  `json:"total"`
			HasNextPage bool `json:"has_next_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "hello-blocks", list.Data[0].Slug)
	assert.Equal(t, []string{"go"}, list.Data[0].Tags)
	assert.Equal(t, 11, list.Pagination.Total)
	assert.True(t, list.Pagination.HasNextPage)

	w = get(r, "/api/articles/hello-blocks")
	require.Equal(t, http.StatusOK, w.Code)
	var detail map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Hello Blocks", detail["title"])
	assert.Contains(t, detail["html"], "content-renderer")

	w = get(r, "/api/articles/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"ok":0,"code":404,"message":"Not Found"}`, w.Body.String())
}
