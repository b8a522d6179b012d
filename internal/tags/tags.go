// Package tags renders tag chips and the tag filter panel.
package tags

import (
	"html/template"
	"strings"

	"github.com/mx-space/blockpress/internal/models"
)

const (
	badgeClass    = "px-3 py-1 text-sm bg-blue-100 text-blue-800 rounded-full hover:bg-blue-200 transition-colors duration-200"
	chipClass     = "px-3 py-1 text-sm bg-gray-100 text-gray-800 rounded-full hover:bg-gray-200 transition-colors duration-200"
	activeClass   = "px-3 py-1 text-sm rounded-full transition-colors duration-200 bg-blue-500 text-white"
	inactiveClass = "px-3 py-1 text-sm rounded-full transition-colors duration-200 bg-gray-100 text-gray-800 hover:bg-gray-200"
)

var chipTemplates = template.Must(template.New("tags").Parse(`
{{- define "chips"}}<div class="flex flex-wrap gap-2">{{range .}}<a href="{{.Href}}" class="{{.Class}}" data-tag="{{.Slug}}">{{.Label}}</a>{{end}}</div>{{end}}
{{- define "filter"}}<div class="space-y-2 tag-filter"><h3 class="text-lg font-semibold">Filter by Tags</h3>{{template "chips" .}}</div>{{end}}
`))

type chip struct {
	Href  string
	Class string
	Slug  string
	Label string
}

// Path is the page of one tag.
func Path(slug string) string {
	return "/tags/" + slug
}

// Badges renders "#name" chips linking to each tag page. No tags render nothing.
func Badges(list []models.Tag) template.HTML {
	return render("chips", list, func(t models.Tag) chip {
		return chip{Href: Path(t.Attributes.Slug), Class: badgeClass, Slug: t.Attributes.Slug, Label: "#" + t.Attributes.Name}
	})
}

// List renders plain chips linking to each tag page. No tags render nothing.
func List(list []models.Tag) template.HTML {
	return render("chips", list, func(t models.Tag) chip {
		return chip{Href: Path(t.Attributes.Slug), Class: chipClass, Slug: t.Attributes.Slug, Label: t.Attributes.Name}
	})
}

// Filter renders the tag filter panel. Each chip links to basePath with that tag toggled.
func Filter(all []models.Tag, selected Selection, basePath string) template.HTML {
	chips := make([]chip, 0, len(all))
	for _, t := range all {
		slug := t.Attributes.Slug
		class := inactiveClass
		if selected.Has(slug) {
			class = activeClass
		}
		chips = append(chips, chip{Href: selected.Toggle(slug).Href(basePath), Class: class, Slug: slug, Label: t.Attributes.Name})
	}
	return execute("filter", chips)
}

func render(name string, list []models.Tag, toChip func(models.Tag) chip) template.HTML {
	if len(list) == 0 {
		return ""
	}
	chips := make([]chip, len(list))
	for i, t := range list {
		chips[i] = toChip(t)
	}
	return execute(name, chips)
}

func execute(name string, data any) template.HTML {
	var sb strings.Builder
	if err := chipTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return ""
	}
	return template.HTML(sb.String())
}
