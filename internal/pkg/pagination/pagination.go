package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/strapi"
)

const MaxSize = 100

// FromContext reads ?page= and ?size= (or Strapi's ?pageSize=) into a Strapi page.
func FromContext(c *gin.Context) strapi.Page {
	page := parseIntOr(c.Query("page"), strapi.DefaultPage)
	sizeRaw := c.Query("size")
	if sizeRaw == "" {
		sizeRaw = c.Query("pageSize")
	}
	size := parseIntOr(sizeRaw, strapi.DefaultPageSize)

	if page < 1 {
		page = strapi.DefaultPage
	}
	if size < 1 {
		size = strapi.DefaultPageSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return strapi.Page{Page: page, PageSize: size}
}

// FromMeta converts Strapi's meta.pagination. A missing block yields a single page of total items.
func FromMeta(meta models.Meta, total int) response.Pagination {
	p := meta.Pagination
	if p == nil {
		p = &models.Pagination{Page: 1, PageSize: total, PageCount: 1, Total: total}
		if total == 0 {
			p.PageCount = 0
		}
	}
	return response.Pagination{
		Total:       p.Total,
		CurrentPage: p.Page,
		TotalPage:   p.PageCount,
		Size:        p.PageSize,
		HasNextPage: p.Page < p.PageCount,
	}
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
