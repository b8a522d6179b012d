// Package seo resolves page head metadata from the Strapi SEO component.
package seo

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/mx-space/blockpress/internal/blocks"
	"github.com/mx-space/blockpress/internal/models"
)

const (
	fallbackTitle    = "Blog Post"
	fallbackRobots   = "index, follow"
	fallbackViewport = "width=device-width, initial-scale=1"
)

// Site carries the site-wide values used when an article leaves a field blank.
type Site struct {
	Name     string
	URL      string
	MediaURL string
	Default  *models.SEO
}

// Page is the content the head is built for.
type Page struct {
	Title       string
	Description string
	Path        string
	Cover       *blocks.Image
}

type Image struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

type Head struct {
	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	H1            string
	Keywords      string
	Canonical     string
	Robots        string
	Viewport      string
	Image         *Image
}

// Build resolves every head field. Each field takes the first non-blank value of its chain.
func Build(s *models.SEO, page Page, site Site) Head {
	if s == nil {
		s = &models.SEO{}
	}
	def := site.Default
	if def == nil {
		def = &models.SEO{}
	}

	h := Head{
		Title:       first(s.MetaTitle, page.Title, def.MetaTitle, site.Name, fallbackTitle),
		Description: first(s.MetaDescription, page.Description, def.MetaDescription),
		Keywords:    strings.TrimSpace(s.PrimaryKeywords),
		Robots:      first(def.MetaRobots, fallbackRobots),
		Viewport:    first(def.MetaViewport, fallbackViewport),
	}
	h.OGTitle = first(s.OpenGraphTitle, h.Title)
	h.OGDescription = first(s.OpenGraphDescription, h.Description)
	h.H1 = first(s.H1Title, page.Title)

	h.Canonical = strings.TrimSpace(s.CanonicalURL)
	if h.Canonical == "" && site.URL != "" && page.Path != "" {
		h.Canonical = strings.TrimRight(site.URL, "/") + "/" + strings.TrimLeft(page.Path, "/")
	}

	img := s.Image()
	if img == nil {
		img = page.Cover
	}
	if img != nil && !img.IsZero() {
		if src := strings.TrimSpace(img.URL); src != "" {
			h.Image = &Image{
				URL:    absolute(site.MediaURL, src),
				Width:  img.Width,
				Height: img.Height,
				Alt:    first(img.AlternativeText, h.Title),
			}
		}
	}
	return h
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func absolute(base, src string) string {
	if base == "" || !strings.HasPrefix(src, "/") || strings.HasPrefix(src, "//") {
		return src
	}
	return strings.TrimRight(base, "/") + src
}

var headTemplate = template.Must(template.New("head").Funcs(template.FuncMap{
	"itoa": strconv.Itoa,
}).Parse(`<title>{{.Title}}</title>
<meta name="description" content="{{.Description}}" />
{{- if .Keywords}}
<meta name="keywords" content="{{.Keywords}}" />
{{- end}}
{{- if .Canonical}}
<link rel="canonical" href="{{.Canonical}}" />
{{- end}}
<meta property="og:type" content="article" />
<meta property="og:title" content="{{.OGTitle}}" />
<meta property="og:description" content="{{.OGDescription}}" />
{{- if .Canonical}}
<meta property="og:url" content="{{.Canonical}}" />
{{- end}}
{{- with .Image}}
<meta property="og:image" content="{{.URL}}" />
{{- if .Width}}
<meta property="og:image:width" content="{{itoa .Width}}" />
{{- end}}
{{- if .Height}}
<meta property="og:image:height" content="{{itoa .Height}}" />
{{- end}}
<meta property="og:image:alt" content="{{.Alt}}" />
{{- end}}
<meta name="twitter:card" content="summary_large_image" />
<meta name="twitter:title" content="{{.OGTitle}}" />
<meta name="twitter:description" content="{{.OGDescription}}" />
{{- with .Image}}
<meta name="twitter:image" content="{{.URL}}" />
{{- end}}
<meta name="robots" content="{{.Robots}}" />
<meta name="viewport" content="{{.Viewport}}" />
`))

// HTML renders the head tags. Values are attribute-escaped.
func (h Head) HTML() template.HTML {
	var sb strings.Builder
	if err := headTemplate.Execute(&sb, h); err != nil {
		return template.HTML("<title>" + template.HTMLEscapeString(h.Title) + "</title>")
	}
	return template.HTML(sb.String())
}
