package sitemap

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/tags"
)

const (
	pageSize = 100
	maxPages = 50
)

// Source is the subset of the Strapi client the sitemap reads.
type Source interface {
	GetArticles(ctx context.Context, q strapi.ArticleQuery) (*models.ArticlesResponse, error)
	GetTags(ctx context.Context) (*models.TagsResponse, error)
	GetCategories(ctx context.Context) (*models.CategoriesResponse, error)
}

type Handler struct {
	src  Source
	base string
	now  func() time.Time
}

func NewHandler(src Source, siteURL string) *Handler {
	return &Handler{src: src, base: strings.TrimRight(siteURL, "/"), now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sitemap.xml", h.render)
	rg.GET("/sitemap", h.render)
}

type urlSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func (h *Handler) render(c *gin.Context) {
	set, err := h.build(c.Request.Context())
	if err != nil {
		c.String(response.UpstreamStatus(err), "error generating sitemap")
		return
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		c.String(http.StatusInternalServerError, "error generating sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func (h *Handler) build(ctx context.Context) (urlSet, error) {
	set := urlSet{URLs: []sitemapURL{{
		Loc:        h.base + "/",
		LastMod:    h.now().Format("2006-01-02"),
		ChangeFreq: "daily",
		Priority:   "1.0",
	}}}

	for page := 1; page <= maxPages; page++ {
		res, err := h.src.GetArticles(ctx, strapi.ArticleQuery{Page: page, PageSize: pageSize, Populate: "tags"})
		if err != nil {
			return urlSet{}, err
		}
		for _, a := range res.Data {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.base + a.Path(),
				LastMod:    lastMod(a).Format("2006-01-02"),
				ChangeFreq: "weekly",
				Priority:   "0.8",
			})
		}
		if res.Meta.Pagination == nil || page >= res.Meta.Pagination.PageCount {
			break
		}
	}

	categories, err := h.src.GetCategories(ctx)
	if err != nil {
		return urlSet{}, err
	}
	for _, cat := range categories.Data {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.base + "/categories/" + cat.Attributes.Slug,
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	all, err := h.src.GetTags(ctx)
	if err != nil {
		return urlSet{}, err
	}
	for _, t := range all.Data {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.base + tags.Path(t.Attributes.Slug),
			ChangeFreq: "weekly",
			Priority:   "0.5",
		})
	}
	return set, nil
}

func lastMod(a models.Article) time.Time {
	if !a.Attributes.UpdatedAt.IsZero() {
		return a.Attributes.UpdatedAt
	}
	return a.Published()
}
