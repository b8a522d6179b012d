package strapi

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSort     = "publishedAt:desc"
	DefaultPopulate = "cover,author,category,tags,blocks"
)

// Page selects one page of a collection.
type Page struct {
	Page     int
	PageSize int
}

func (p Page) withDefaults() Page {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// ArticleQuery is the parameter set of GetArticles. Zero fields take the defaults.
type ArticleQuery struct {
	Page     int
	PageSize int
	Sort     string
	Populate string
	Filters  Filters
}

// listParams is encoded with go-querystring into Strapi's bracketed parameters.
type listParams struct {
	Page     int    `url:"pagination[page],omitempty"`
	PageSize int    `url:"pagination[pageSize],omitempty"`
	Sort     string `url:"sort,omitempty"`
	Populate string `url:"populate,omitempty"`
}

func (p listParams) values(filters Filters) (url.Values, error) {
	if err := ValidateSort(p.Sort); err != nil {
		return nil, err
	}
	v, err := query.Values(p)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	for key, vals := range filters {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	return v, nil
}

// Filters holds filters[...] parameters keyed by their full bracketed name.
type Filters url.Values

// Where adds filters[path0][path1]...=value. The last path element is usually an operator
// such as $eq or $containsi. A nil receiver allocates, so always use the result.
func (f Filters) Where(value string, path ...string) Filters {
	if f == nil {
		f = Filters{}
	}
	var b strings.Builder
	b.WriteString("filters")
	for _, p := range path {
		b.WriteString("[" + p + "]")
	}
	url.Values(f).Add(b.String(), value)
	return f
}

// In adds an $in filter with one indexed parameter per value.
func (f Filters) In(values []string, path ...string) Filters {
	for i, v := range values {
		f = f.Where(v, append(append(append([]string(nil), path...), "$in"), strconv.Itoa(i))...)
	}
	return f
}

var sortPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*(:(asc|desc))?$`)

// ValidateSort accepts a comma-separated list of field or field:asc|desc terms.
// The empty string is valid and leaves Strapi's default order.
func ValidateSort(sort string) error {
	if sort == "" {
		return nil
	}
	for _, term := range strings.Split(sort, ",") {
		if !sortPattern.MatchString(strings.TrimSpace(term)) {
			return fmt.Errorf("%w: %q", ErrInvalidSort, sort)
		}
	}
	return nil
}
