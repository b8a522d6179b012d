package article

import (
	"bytes"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/tags"
)

const dateLayout = "January 2, 2006"

var pageTemplates = template.Must(template.New("article").Parse(`
{{- define "card"}}<article class="article-card border-b border-gray-200 py-6">
{{- with .Cover}}<a href="{{$.Href}}"><img src="{{.}}" alt="{{$.Title}}" class="w-full h-48 object-cover rounded-lg mb-4" loading="lazy"></a>{{end}}
<h2 class="text-2xl font-semibold mb-2"><a href="{{.Href}}" class="hover:text-blue-600">{{.Title}}</a></h2>
{{- if .Description}}<p class="text-gray-600 mb-3">{{.Description}}</p>{{end}}
<p class="text-sm text-gray-500 mb-3"><time datetime="{{.ISODate}}">{{.Date}}</time>{{if .Author}} · {{.Author}}{{end}}</p>
{{- .Tags}}</article>{{end}}

{{- define "list"}}<section class="article-list">
<h1 class="text-3xl font-bold mb-2">{{.Heading}}</h1>
{{- if .Intro}}<p class="text-gray-600 mb-6">{{.Intro}}</p>{{end}}
{{- .Filter}}
{{- if .Featured}}<section class="featured mb-8"><h2 class="text-xl font-semibold mb-4">Featured</h2>{{range .Featured}}{{template "card" .}}{{end}}</section>{{end}}
{{- range .Cards}}{{template "card" .}}{{else}}<p class="text-gray-500 py-8">{{.Empty}}</p>{{end}}
{{- template "pager" .Pager}}</section>{{end}}

{{- define "pager"}}{{if or .Prev .Next}}<nav class="pager flex justify-between mt-8">
{{- if .Prev}}<a href="{{.Prev}}" rel="prev" class="text-blue-600 hover:underline">← Newer</a>{{else}}<span></span>{{end}}
<span class="text-sm text-gray-500">Page {{.Page}} of {{.PageCount}}</span>
{{- if .Next}}<a href="{{.Next}}" rel="next" class="text-blue-600 hover:underline">Older →</a>{{else}}<span></span>{{end}}
</nav>{{end}}{{end}}

{{- define "detail"}}<article class="article">
<header class="mb-8">
<h1 class="text-4xl font-bold mb-4">{{.H1}}</h1>
<p class="text-sm text-gray-500 mb-4"><time datetime="{{.ISODate}}">{{.Date}}</time>
{{- if .Author}} · {{if .AuthorHref}}<a href="{{.AuthorHref}}" class="hover:underline">{{.Author}}</a>{{else}}{{.Author}}{{end}}{{end}}
{{- with .Category}} · <a href="{{.Href}}" class="hover:underline">{{.Name}}</a>{{end}}
 · <a href="{{.MarkdownHref}}" class="hover:underline">Markdown</a></p>
{{- with .Cover}}<img src="{{.}}" alt="{{$.H1}}" class="w-full rounded-lg mb-4">{{end}}
{{- .Tags}}
</header>
{{.Body}}
{{- .Links}}
{{- if .Related}}<section class="related-articles mt-12"><h2 class="text-2xl font-semibold mb-4">Related Articles</h2>{{range .Related}}{{template "card" .}}{{end}}</section>{{end}}
</article>{{end}}

{{- define "tag-index"}}<section class="tag-index">
<h1 class="text-3xl font-bold mb-6">Tags</h1>
{{- if .Tags}}{{.Tags}}{{else}}<p class="text-gray-500">No tags yet.</p>{{end}}
</section>{{end}}

{{- define "search"}}<section class="search">
<h1 class="text-3xl font-bold mb-6">Search</h1>
<form action="/search" method="get" class="mb-8"><input type="search" name="q" value="{{.Query}}" class="border border-gray-300 rounded px-3 py-2 w-full"></form>
{{- if .Query}}{{template "list" .List}}{{end}}
</section>{{end}}
`))

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type cardView struct {
	Title       string
	Description string
	Href        string
	Date        string
	ISODate     string
	Author      string
	Cover       string
	Tags        template.HTML
}

type listView struct {
	Heading  string
	Intro    string
	Filter   template.HTML
	Featured []cardView
	Cards    []cardView
	Empty    string
	Pager    pagerView
}

type pagerView struct {
	Prev      string
	Next      string
	Page      int
	PageCount int
}

type linkView struct {
	Href string
	Name string
}

type detailView struct {
	H1           string
	Date         string
	ISODate      string
	Author       string
	AuthorHref   string
	Category     *linkView
	Cover        string
	Tags         template.HTML
	Body         template.HTML
	Links        template.HTML
	Related      []cardView
	MarkdownHref string
}

type tagIndexView struct {
	Tags template.HTML
}

type searchView struct {
	Query string
	List  listView
}

func (h *Handler) card(a models.Article) cardView {
	published := a.Published()
	return cardView{
		Title:       a.Attributes.Title,
		Description: a.Attributes.Description,
		Href:        a.Path(),
		Date:        published.Format(dateLayout),
		ISODate:     published.Format("2006-01-02"),
		Author:      a.AuthorName(),
		Cover:       h.coverURL(a.CoverImage(), blocks.FormatSmall),
		Tags:        tags.Badges(a.TagList()),
	}
}

func (h *Handler) cards(list []models.Article) []cardView {
	out := make([]cardView, 0, len(list))
	for _, a := range list {
		out = append(out, h.card(a))
	}
	return out
}

// coverURL resolves img at format against the media base. Unusable images yield "".
func (h *Handler) coverURL(img *blocks.Image, format blocks.Format) string {
	if img == nil {
		return ""
	}
	src, err := blocks.ResolveImageURL(*img, format)
	if err != nil {
		return ""
	}
	if h.site.MediaURL != "" && strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//") {
		return strings.TrimRight(h.site.MediaURL, "/") + src
	}
	return src
}

// pager links the neighbouring pages of base, keeping its other query parameters.
func pager(base *url.URL, meta models.Meta) pagerView {
	p := meta.Pagination
	if p == nil || p.PageCount <= 1 {
		return pagerView{}
	}
	link := func(page int) string {
		q := base.Query()
		q.Set("page", strconv.Itoa(page))
		return base.Path + "?" + q.Encode()
	}
	v := pagerView{Page: p.Page, PageCount: p.PageCount}
	if p.Page > 1 {
		v.Prev = link(p.Page - 1)
	}
	if p.Page < p.PageCount {
		v.Next = link(p.Page + 1)
	}
	return v
}
