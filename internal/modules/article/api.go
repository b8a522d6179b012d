package article

import (
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/pagination"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/tags"
)

type articleSummary struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Path        string    `json:"path"`
	Author      string    `json:"author,omitempty"`
	Tags        []string  `json:"tags"`
	Cover       string    `json:"cover,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type articleDetail struct {
	articleSummary
	HTML template.HTML `json:"html"`
}

func (h *Handler) summary(a models.Article) articleSummary {
	slugs := make([]string, 0, len(a.TagList()))
	for _, t := range a.TagList() {
		slugs = append(slugs, t.Attributes.Slug)
	}
	return articleSummary{
		ID:          a.ID,
		Title:       a.Attributes.Title,
		Slug:        a.Attributes.Slug,
		Description: a.Attributes.Description,
		Path:        a.Path(),
		Author:      a.AuthorName(),
		Tags:        slugs,
		Cover:       h.coverURL(a.CoverImage(), blocks.FormatMedium),
		PublishedAt: a.Published(),
	}
}

func (h *Handler) apiList(c *gin.Context) {
	ctx := c.Request.Context()
	page := pagination.FromContext(c)
	selected := tags.ParseSelection(c.Query("tags"))

	var (
		res *models.ArticlesResponse
		err error
	)
	switch q := strings.TrimSpace(c.Query("q")); {
	case q != "":
		res, err = h.src.SearchArticles(ctx, q, page)
	case selected.Len() > 0:
		res, err = h.src.GetArticlesByTags(ctx, selected.Slugs(), page)
	default:
		res, err = h.src.GetArticles(ctx, strapi.ArticleQuery{
			Page:     page.Page,
			PageSize: page.PageSize,
			Sort:     strings.TrimSpace(c.Query("sort")),
		})
	}
	if err != nil {
		response.Upstream(c, err)
		return
	}

	items := make([]articleSummary, 0, len(res.Data))
	for _, a := range res.Data {
		items = append(items, h.summary(a))
	}
	response.Paged(c, items, pagination.FromMeta(res.Meta, len(items)))
}

func (h *Handler) apiDetail(c *gin.Context) {
	a, err := h.src.GetArticleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.OK(c, articleDetail{
		articleSummary: h.summary(*a),
		HTML:           h.content.HTML(a.Path(), a.Attributes.Blocks),
	})
}
