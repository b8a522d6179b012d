// Package article serves the article pages, taxonomy listings and the JSON article API.
package article

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/export"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/seo"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/view"
)

const (
	relatedLimit  = 3
	featuredLimit = 3
)

// Source is the content API the pages read from. *strapi.Client implements it.
type Source interface {
	GetArticles(ctx context.Context, q strapi.ArticleQuery) (*models.ArticlesResponse, error)
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetArticlesByTag(ctx context.Context, slug string, page strapi.Page) (*models.ArticlesResponse, error)
	GetArticlesByTags(ctx context.Context, slugs []string, page strapi.Page) (*models.ArticlesResponse, error)
	GetArticlesByCategory(ctx context.Context, slug string, page strapi.Page) (*models.ArticlesResponse, error)
	GetArticlesByAuthor(ctx context.Context, authorID int, page strapi.Page) (*models.ArticlesResponse, error)
	GetFeaturedArticles(ctx context.Context, limit int) (*models.ArticlesResponse, error)
	GetRelatedArticles(ctx context.Context, articleID, categoryID, limit int) (*models.ArticlesResponse, error)
	SearchArticles(ctx context.Context, query string, page strapi.Page) (*models.ArticlesResponse, error)
	GetTags(ctx context.Context) (*models.TagsResponse, error)
	GetTag(ctx context.Context, slug string) (*models.Tag, error)
	GetCategory(ctx context.Context, slug string) (*models.Category, error)
	GetAuthor(ctx context.Context, id int) (*models.Author, error)
	GetGlobal(ctx context.Context) (*models.Global, error)
}

type Handler struct {
	src       Source
	layout    *view.Layout
	content   *view.Content
	converter *export.Converter
	site      seo.Site
	logger    *zap.Logger
}

func NewHandler(src Source, layout *view.Layout, content *view.Content, site seo.Site, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		src:       src,
		layout:    layout,
		content:   content,
		converter: export.NewConverter(),
		site:      site,
		logger:    logger,
	}
}

// RegisterRoutes mounts the HTML pages on root and the JSON endpoints on api.
func (h *Handler) RegisterRoutes(root, api *gin.RouterGroup) {
	root.GET("/", h.home)
	root.GET("/articles", h.list)
	root.GET("/articles/:slug", h.detail)
	root.GET("/articles/:slug/markdown", h.markdown)
	root.GET("/tags", h.tagIndex)
	root.GET("/tags/:slug", h.tag)
	root.GET("/categories/:slug", h.category)
	root.GET("/authors/:id", h.author)
	root.GET("/search", h.search)

	api.GET("/articles", h.apiList)
	api.GET("/articles/:slug", h.apiDetail)
}

// siteFor merges the Strapi global single type over the configured site values.
func (h *Handler) siteFor(ctx context.Context) seo.Site {
	site := h.site
	global, err := h.src.GetGlobal(ctx)
	if err != nil {
		if !errors.Is(err, strapi.ErrNotFound) {
			h.logger.Debug("global settings unavailable", zap.Error(err))
		}
		return site
	}
	if global.Attributes.SiteName != "" {
		site.Name = global.Attributes.SiteName
	}
	if global.Attributes.DefaultSeo != nil {
		site.Default = global.Attributes.DefaultSeo
	}
	return site
}

// fail renders the error page for an upstream failure.
func (h *Handler) fail(c *gin.Context, err error) {
	status := response.UpstreamStatus(err)
	switch status {
	case http.StatusNotFound:
		h.layout.Error(c, status, "The page you are looking for does not exist.")
	case http.StatusBadRequest:
		h.layout.Error(c, status, err.Error())
	default:
		h.logger.Error("content request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		h.layout.Error(c, status, "The content service is unavailable. Please try again later.")
	}
}

func (h *Handler) page(c *gin.Context, head seo.Head, name string, data any) {
	body, err := execute(name, data)
	if err != nil {
		_ = c.Error(err)
		h.layout.Error(c, http.StatusInternalServerError, "render error")
		return
	}
	h.layout.HTML(c, http.StatusOK, view.Page{Head: head, Body: body})
}
