// Package view assembles full HTML documents around rendered content.
package view

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/seo"
)

const prismVersion = "1.29.0"

// Page is one HTML document.
type Page struct {
	Head seo.Head
	Body template.HTML
}

// Layout wraps pages in the site shell: head tags, navigation and the Prism assets that
// highlight code blocks on the client.
type Layout struct {
	SiteName string
	tmpl     *template.Template
}

func NewLayout(siteName string) *Layout {
	return &Layout{SiteName: siteName, tmpl: layoutTemplate}
}

var layoutTemplate = template.Must(template.New("layout").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
{{.Head}}
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/prismjs@{{.Prism}}/themes/prism-tomorrow.min.css">
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/prismjs@{{.Prism}}/plugins/line-numbers/prism-line-numbers.min.css">
<link rel="alternate" type="application/rss+xml" title="{{.SiteName}}" href="/feed.xml">
<script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-white text-gray-900">
<header class="border-b border-gray-200">
<nav class="max-w-4xl mx-auto px-4 py-4 flex items-center gap-6">
<a href="/" class="text-xl font-bold">{{.SiteName}}</a>
<a href="/articles" class="text-gray-600 hover:text-gray-900">Articles</a>
<a href="/tags" class="text-gray-600 hover:text-gray-900">Tags</a>
<form action="/search" method="get" class="ml-auto"><input type="search" name="q" placeholder="Search" class="border border-gray-300 rounded px-3 py-1"></form>
</nav>
</header>
<main class="max-w-4xl mx-auto px-4 py-8">{{.Body}}</main>
<footer class="border-t border-gray-200 text-sm text-gray-500">
<div class="max-w-4xl mx-auto px-4 py-6">{{.SiteName}}</div>
</footer>
<script src="https://cdn.jsdelivr.net/npm/prismjs@{{.Prism}}/components/prism-core.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/prismjs@{{.Prism}}/plugins/autoloader/prism-autoloader.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/prismjs@{{.Prism}}/plugins/line-numbers/prism-line-numbers.min.js"></script>
</body>
</html>
`))

type layoutView struct {
	SiteName string
	Prism    string
	Head     template.HTML
	Body     template.HTML
}

// Render writes the document for p.
func (l *Layout) Render(p Page) ([]byte, error) {
	var buf bytes.Buffer
	err := l.tmpl.Execute(&buf, layoutView{
		SiteName: l.SiteName,
		Prism:    prismVersion,
		Head:     p.Head.HTML(),
		Body:     p.Body,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HTML sends p with status. A layout failure becomes a plain 500.
func (l *Layout) HTML(c *gin.Context, status int, p Page) {
	doc, err := l.Render(p)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "render error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", doc)
}

var errorTemplate = template.Must(template.New("error").Parse(
	`<section class="text-center py-16"><h1 class="text-4xl font-bold mb-4">{{.Status}}</h1><p class="text-gray-600">{{.Message}}</p><a href="/" class="inline-block mt-6 text-blue-600 hover:underline">Back to home</a></section>`))

// Error sends an error page and aborts the chain.
func (l *Layout) Error(c *gin.Context, status int, message string) {
	var buf bytes.Buffer
	_ = errorTemplate.Execute(&buf, struct {
		Status  int
		Message string
	}{status, message})
	head := seo.Build(nil, seo.Page{Title: http.StatusText(status)}, seo.Site{Name: l.SiteName})
	head.Robots = "noindex"
	l.HTML(c, status, Page{Head: head, Body: template.HTML(buf.String())})
	c.Abort()
}
