package strapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mx-space/blockpress/internal/models"
)

const (
	listPopulate    = "cover,author,category,tags"
	summaryPopulate = "cover,author,category"
	articlePopulate = DefaultPopulate + ",seo"
	byName          = "name:asc"
	defaultLimit    = 3
)

// GetArticles lists articles. Zero query fields take the package defaults.
func (c *Client) GetArticles(ctx context.Context, q ArticleQuery) (*models.ArticlesResponse, error) {
	p := listParams{
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     q.Sort,
		Populate: q.Populate,
	}
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if p.Populate == "" {
		p.Populate = DefaultPopulate
	}
	return c.listArticles(ctx, p, q.Filters)
}

func (c *Client) listArticles(ctx context.Context, p listParams, filters Filters) (*models.ArticlesResponse, error) {
	v, err := p.values(filters)
	if err != nil {
		return nil, err
	}
	var resp models.ArticlesResponse
	if err := c.fetch(ctx, "/articles", v, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) pagedArticles(ctx context.Context, page Page, populate string, filters Filters) (*models.ArticlesResponse, error) {
	page = page.withDefaults()
	return c.listArticles(ctx, listParams{
		Page:     page.Page,
		PageSize: page.PageSize,
		Sort:     DefaultSort,
		Populate: populate,
	}, filters)
}

// GetArticleBySlug returns the single article with slug, with its SEO component populated.
func (c *Client) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	resp, err := c.listArticles(ctx, listParams{Populate: articlePopulate}, Filters{}.Where(slug, "slug", "$eq"))
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("article %q: %w", slug, ErrNotFound)
	}
	return &resp.Data[0], nil
}

func (c *Client) GetArticleByID(ctx context.Context, id int) (*models.Article, error) {
	var resp models.ArticleResponse
	path := "/articles/" + strconv.Itoa(id)
	if err := c.fetch(ctx, path, url.Values{"populate": {articlePopulate}}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) GetCategories(ctx context.Context) (*models.CategoriesResponse, error) {
	var resp models.CategoriesResponse
	if err := c.fetch(ctx, "/categories", url.Values{"sort": {byName}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	q := url.Values(Filters{}.Where(slug, "slug", "$eq"))
	var resp models.CategoriesResponse
	if err := c.fetch(ctx, "/categories", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return &resp.Data[0], nil
}

func (c *Client) GetTags(ctx context.Context) (*models.TagsResponse, error) {
	var resp models.TagsResponse
	if err := c.fetch(ctx, "/tags", url.Values{"sort": {byName}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetTag(ctx context.Context, slug string) (*models.Tag, error) {
	q := url.Values(Filters{}.Where(slug, "slug", "$eq"))
	var resp models.TagsResponse
	if err := c.fetch(ctx, "/tags", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("tag %q: %w", slug, ErrNotFound)
	}
	return &resp.Data[0], nil
}

func (c *Client) GetArticlesByTag(ctx context.Context, slug string, page Page) (*models.ArticlesResponse, error) {
	return c.pagedArticles(ctx, page, listPopulate, Filters{}.Where(slug, "tags", "slug", "$eq"))
}

// GetArticlesByTags lists articles carrying any of the given tag slugs.
func (c *Client) GetArticlesByTags(ctx context.Context, slugs []string, page Page) (*models.ArticlesResponse, error) {
	return c.pagedArticles(ctx, page, listPopulate, Filters{}.In(slugs, "tags", "slug"))
}

func (c *Client) GetArticlesByCategory(ctx context.Context, slug string, page Page) (*models.ArticlesResponse, error) {
	return c.pagedArticles(ctx, page, DefaultPopulate, Filters{}.Where(slug, "category", "slug", "$eq"))
}

func (c *Client) GetAuthors(ctx context.Context) (*models.AuthorsResponse, error) {
	var resp models.AuthorsResponse
	if err := c.fetch(ctx, "/authors", url.Values{"populate": {"avatar"}, "sort": {byName}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetAuthor(ctx context.Context, id int) (*models.Author, error) {
	var resp models.Response[models.Author]
	if err := c.fetch(ctx, "/authors/"+strconv.Itoa(id), url.Values{"populate": {"avatar"}}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) GetArticlesByAuthor(ctx context.Context, authorID int, page Page) (*models.ArticlesResponse, error) {
	return c.pagedArticles(ctx, page, DefaultPopulate, Filters{}.Where(strconv.Itoa(authorID), "author", "id", "$eq"))
}

func (c *Client) GetGlobal(ctx context.Context) (*models.Global, error) {
	var resp models.GlobalResponse
	if err := c.fetch(ctx, "/global", url.Values{"populate": {"defaultSeo,favicon"}}, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// SearchArticles matches query against title or description, case-insensitively.
func (c *Client) SearchArticles(ctx context.Context, query string, page Page) (*models.ArticlesResponse, error) {
	filters := Filters{}.
		Where(query, "$or", "0", "title", "$containsi").
		Where(query, "$or", "1", "description", "$containsi")
	return c.pagedArticles(ctx, page, DefaultPopulate, filters)
}

func (c *Client) GetFeaturedArticles(ctx context.Context, limit int) (*models.ArticlesResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return c.listArticles(ctx, listParams{
		PageSize: limit,
		Sort:     DefaultSort,
		Populate: summaryPopulate,
	}, Filters{}.Where("true", "featured", "$eq"))
}

// GetRelatedArticles lists other articles in the same category.
func (c *Client) GetRelatedArticles(ctx context.Context, articleID, categoryID, limit int) (*models.ArticlesResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	filters := Filters{}.
		Where(strconv.Itoa(articleID), "id", "$ne").
		Where(strconv.Itoa(categoryID), "category", "id", "$eq")
	return c.listArticles(ctx, listParams{
		PageSize: limit,
		Sort:     DefaultSort,
		Populate: summaryPopulate,
	}, filters)
}
