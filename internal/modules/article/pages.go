package article

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/pagination"
	"github.com/mx-space/blockpress/internal/seo"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/tags"
)

func (h *Handler) home(c *gin.Context) {
	h.renderList(c, true)
}

func (h *Handler) list(c *gin.Context) {
	h.renderList(c, false)
}

// renderList serves the article index. ?tags=a,b narrows it to articles carrying any of the tags.
func (h *Handler) renderList(c *gin.Context, withFeatured bool) {
	ctx := c.Request.Context()
	page := pagination.FromContext(c)
	selected := tags.ParseSelection(c.Query("tags"))

	var (
		res *models.ArticlesResponse
		err error
	)
	if selected.Len() > 0 {
		res, err = h.src.GetArticlesByTags(ctx, selected.Slugs(), page)
	} else {
		res, err = h.src.GetArticles(ctx, strapi.ArticleQuery{
			Page:     page.Page,
			PageSize: page.PageSize,
			Sort:     strings.TrimSpace(c.Query("sort")),
		})
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	site := h.siteFor(ctx)
	v := listView{
		Heading: "Articles",
		Cards:   h.cards(res.Data),
		Empty:   "No articles found.",
		Pager:   pager(c.Request.URL, res.Meta),
	}
	if all, err := h.src.GetTags(ctx); err == nil {
		v.Filter = tags.Filter(all.Data, selected, c.Request.URL.Path)
	} else {
		h.logger.Warn("tag filter unavailable", zap.Error(err))
	}
	if withFeatured && page.Page == 1 && selected.Len() == 0 {
		if featured, err := h.src.GetFeaturedArticles(ctx, featuredLimit); err == nil {
			v.Featured = h.cards(featured.Data)
		} else {
			h.logger.Warn("featured articles unavailable", zap.Error(err))
		}
	}

	title := "Articles"
	if withFeatured {
		title = site.Name
		v.Heading = site.Name
	}
	head := seo.Build(nil, seo.Page{Title: title, Path: c.Request.URL.Path}, site)
	h.page(c, head, "list", v)
}

func (h *Handler) detail(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.src.GetArticleBySlug(ctx, c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}

	site := h.siteFor(ctx)
	head := seo.Build(a.Attributes.SEO, seo.Page{
		Title:       a.Attributes.Title,
		Description: a.Attributes.Description,
		Path:        a.Path(),
		Cover:       a.CoverImage(),
	}, site)

	published := a.Published()
	v := detailView{
		H1:           head.H1,
		Date:         published.Format(dateLayout),
		ISODate:      published.Format("2006-01-02"),
		Author:       a.AuthorName(),
		Cover:        h.coverURL(a.CoverImage(), blocks.FormatLarge),
		Tags:         tags.Badges(a.TagList()),
		Body:         h.content.HTML(a.Path(), a.Attributes.Blocks),
		Links:        seo.Links(a.Attributes.SEO),
		MarkdownHref: a.Path() + "/markdown",
	}
	if author := a.Attributes.Author.Data; author != nil {
		v.AuthorHref = "/authors/" + strconv.Itoa(author.ID)
	}
	if cat := a.CategoryRef(); cat != nil {
		v.Category = &linkView{Href: "/categories/" + cat.Attributes.Slug, Name: cat.Attributes.Name}
		related, err := h.src.GetRelatedArticles(ctx, a.ID, cat.ID, relatedLimit)
		if err == nil {
			v.Related = h.cards(related.Data)
		} else {
			h.logger.Warn("related articles unavailable", zap.String("slug", a.Attributes.Slug), zap.Error(err))
		}
	}
	h.page(c, head, "detail", v)
}

// markdown exports the rendered article body as GitHub-flavoured Markdown.
func (h *Handler) markdown(c *gin.Context) {
	a, err := h.src.GetArticleBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	body := blocks.Join(h.content.Outputs(a.Path(), a.Attributes.Blocks), false)
	doc, err := h.converter.Document(a.Attributes.Title, string(body))
	if err != nil {
		_ = c.Error(err)
		h.layout.Error(c, http.StatusInternalServerError, "markdown export failed")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.md"`, a.Attributes.Slug))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

func (h *Handler) tagIndex(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := h.src.GetTags(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	head := seo.Build(nil, seo.Page{Title: "Tags", Path: "/tags"}, h.siteFor(ctx))
	h.page(c, head, "tag-index", tagIndexView{Tags: tags.List(res.Data)})
}

func (h *Handler) tag(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	tag, err := h.src.GetTag(ctx, slug)
	if err != nil {
		h.fail(c, err)
		return
	}
	page := pagination.FromContext(c)
	res, err := h.src.GetArticlesByTag(ctx, slug, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	heading := "#" + tag.Attributes.Name
	h.taxonomyPage(c, heading, tag.Attributes.Description, tags.Path(slug), res)
}

func (h *Handler) category(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")
	cat, err := h.src.GetCategory(ctx, slug)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.src.GetArticlesByCategory(ctx, slug, pagination.FromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.taxonomyPage(c, cat.Attributes.Name, "", "/categories/"+slug, res)
}

func (h *Handler) author(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.fail(c, strapi.ErrNotFound)
		return
	}
	author, err := h.src.GetAuthor(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.src.GetArticlesByAuthor(ctx, id, pagination.FromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.taxonomyPage(c, author.Attributes.Name, "", "/authors/"+strconv.Itoa(id), res)
}

func (h *Handler) taxonomyPage(c *gin.Context, heading, intro, path string, res *models.ArticlesResponse) {
	head := seo.Build(nil, seo.Page{Title: heading, Description: intro, Path: path}, h.siteFor(c.Request.Context()))
	h.page(c, head, "list", listView{
		Heading: heading,
		Intro:   intro,
		Cards:   h.cards(res.Data),
		Empty:   "No articles found.",
		Pager:   pager(c.Request.URL, res.Meta),
	})
}

func (h *Handler) search(c *gin.Context) {
	ctx := c.Request.Context()
	q := strings.TrimSpace(c.Query("q"))
	v := searchView{Query: q}
	if q != "" {
		res, err := h.src.SearchArticles(ctx, q, pagination.FromContext(c))
		if err != nil {
			h.fail(c, err)
			return
		}
		v.List = listView{
			Heading: fmt.Sprintf("Results for %q", q),
			Cards:   h.cards(res.Data),
			Empty:   "No articles match your search.",
			Pager:   pager(c.Request.URL, res.Meta),
		}
	}
	head := seo.Build(nil, seo.Page{Title: "Search"}, h.siteFor(ctx))
	head.Robots = "noindex, follow"
	h.page(c, head, "search", v)
}
