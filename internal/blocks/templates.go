package blocks

import (
	"html/template"
	"strings"
)

const blockTemplateText = `
{{define "rich-text"}}<div class="rich-text-block">{{.}}</div>{{end}}

{{define "media"}}<div class="media-block"><img src="{{.Src}}" alt="{{.Alt}}" class="w-full rounded-lg" />{{if .Caption}}<p class="text-sm text-gray-600 mt-2 text-center">{{.Caption}}</p>{{end}}</div>{{end}}

{{define "quote"}}<blockquote class="quote-block border-l-4 border-blue-500 pl-4 my-6"><p class="text-lg italic mb-2">&ldquo;{{.Body}}&rdquo;</p>{{if .Title}}<cite class="text-sm text-gray-600">&mdash; {{.Title}}</cite>{{end}}</blockquote>{{end}}

{{define "slider"}}<div class="slider-block"><div class="grid grid-cols-1 md:grid-cols-2 lg:grid-cols-3 gap-4">{{range .}}<img src="{{.Src}}" alt="{{.Alt}}" class="w-full h-48 object-cover rounded-lg" />{{end}}</div></div>{{end}}

{{define "code-block"}}<div class="code-block my-6">{{if .Title}}<div class="bg-gray-800 text-white px-4 py-2 rounded-t-lg text-sm font-mono">{{.Title}}</div>{{end}}<pre class="{{.PreClass}}" data-language="{{.Language}}"><code class="language-{{.Language}}">{{.Code}}</code></pre></div>{{end}}

{{define "call-to-action"}}<div class="cta-block my-6 text-center"><a href="{{.URL}}" target="{{.Target}}"{{if .Rel}} rel="{{.Rel}}"{{end}} class="{{.Class}}">{{.Title}}{{if .Icon}}<span class="ml-2">{{.Icon}}</span>{{end}}</a></div>{{end}}

{{define "embed"}}<div class="embed-block my-6">{{if .Title}}<h3 class="text-lg font-semibold mb-2">{{.Title}}</h3>{{end}}<div class="{{.AspectClass}} w-full"><iframe src="{{.Src}}"{{if .Title}} title="{{.Title}}"{{end}} class="w-full h-full rounded-lg" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe></div></div>{{end}}

{{define "table"}}<div class="table-block my-6 overflow-x-auto">{{if .Title}}<h3 class="text-lg font-semibold mb-2">{{.Title}}</h3>{{end}}<table class="{{.TableClass}}"><thead><tr>{{range .Headers}}<th class="{{$.HeaderClass}}">{{.}}</th>{{end}}</tr></thead><tbody>{{range .Rows}}<tr{{if .Class}} class="{{.Class}}"{{end}}>{{range .Cells}}<td class="{{$.CellClass}}">{{.}}</td>{{end}}</tr>{{end}}</tbody></table></div>{{end}}

{{define "unknown"}}<div class="unknown-block" data-block-id="{{.ID}}">Unknown block type: {{.Component}}</div>{{end}}

{{define "block-error"}}<div class="block-error" data-block-id="{{.ID}}" data-component="{{.Kind}}">{{.Message}}</div>{{end}}
`

var blockTemplates = template.Must(template.New("blocks").Parse(blockTemplateText))

func execute(name string, data any) (template.HTML, error) {
	var sb strings.Builder
	if err := blockTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}

func classes(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

type imageView struct {
	Src     string
	Alt     string
	Caption string
}

type codeView struct {
	Title    string
	Code     string
	Language Language
	PreClass string
}

type ctaView struct {
	Title  string
	URL    string
	Target string
	Rel    string
	Class  string
	Icon   string
}

type embedView struct {
	Title       string
	Src         string
	AspectClass string
}

type tableRow struct {
	Class string
	Cells []string
}

type tableView struct {
	Title       string
	TableClass  string
	HeaderClass string
	CellClass   string
	Headers     []string
	Rows        []tableRow
}

type unknownView struct {
	ID        int
	Component string
}

type errorView struct {
	ID      int
	Kind    Kind
	Message string
}
