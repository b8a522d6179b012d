package seo

import (
	"html/template"
	"strings"

	"github.com/mx-space/blockpress/internal/models"
)

var linksTemplate = template.Must(template.New("links").Parse(
	`{{define "list"}}<div class="{{.Class}}s"><h3>{{.Heading}}</h3><ul>{{range .Links}}<li><a href="{{.URL}}" class="{{$.Class}}" target="{{if .OpenInNewTab}}_blank{{else}}_self{{end}}"{{if .OpenInNewTab}} rel="noopener noreferrer"{{end}}>{{.AnchorText}}</a></li>{{end}}</ul></div>{{end}}` +
		`{{if .Internal.Links}}{{template "list" .Internal}}{{end}}{{if .External.Links}}{{template "list" .External}}{{end}}`,
))

type linkList struct {
	Class   string
	Heading string
	Links   []models.Link
}

// Links renders the related internal and external link lists. Empty lists render nothing.
func Links(s *models.SEO) template.HTML {
	if s == nil || (len(s.InternalLinks) == 0 && len(s.ExternalLinks) == 0) {
		return ""
	}
	var sb strings.Builder
	err := linksTemplate.Execute(&sb, struct{ Internal, External linkList }{
		Internal: linkList{Class: "internal-link", Heading: "Related Articles", Links: s.InternalLinks},
		External: linkList{Class: "external-link", Heading: "External Resources", Links: s.ExternalLinks},
	})
	if err != nil {
		return ""
	}
	return template.HTML(sb.String())
}
