package blocks

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Output is the rendered form of one block.
type Output struct {
	ID          int
	Kind        Kind
	HTML        template.HTML
	Placeholder bool
	// Err is set for unknown kinds too. Use Failed to tell fatal errors apart.
	Err *BlockError
}

// Failed reports whether the block was rejected.
func (o Output) Failed() bool {
	return o.Err != nil && o.Err.Fatal()
}

type Renderer struct {
	assetBase string
	format    Format
	markdown  goldmark.Markdown
}

type Option func(*Renderer)

// WithAssetBaseURL prefixes root-relative image urls such as /uploads/a.jpg.
func WithAssetBaseURL(base string) Option {
	return func(r *Renderer) {
		r.assetBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithImageFormat sets the rendition used by media blocks.
func WithImageFormat(format Format) Option {
	return func(r *Renderer) {
		if format != "" {
			r.format = format
		}
	}
}

// WithMarkdown converts rich-text bodies from Markdown. A nil engine selects NewMarkdown.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(r *Renderer) {
		if md == nil {
			md = NewMarkdown()
		}
		r.markdown = md
	}
}

// NewMarkdown returns the GFM engine used for rich-text bodies. Raw HTML in the source is kept.
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			extension.Typographer,
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithHardWraps(),
			htmlrenderer.WithXHTML(),
			htmlrenderer.WithUnsafe(),
		),
	)
}

func New(opts ...Option) *Renderer {
	r := &Renderer{format: DefaultFormat}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// Render renders blocks with the default renderer.
func Render(blocks []Block) []Output {
	return defaultRenderer.Render(blocks)
}

// Render returns one output per block, in input order. A failing block never stops the rest.
func (r *Renderer) Render(blocks []Block) []Output {
	out := make([]Output, len(blocks))
	for i, b := range blocks {
		out[i] = r.RenderBlock(b)
	}
	return out
}

func (r *Renderer) RenderBlock(b Block) Output {
	if b == nil {
		return placeholder(0, "")
	}

	var (
		html template.HTML
		berr *BlockError
	)
	switch v := b.(type) {
	case RichText:
		html, berr = r.richText(v)
	case Media:
		html, berr = r.media(v)
	case Quote:
		html, berr = r.quote(v)
	case Slider:
		html, berr = r.slider(v)
	case CodeBlock:
		html, berr = r.codeBlock(v)
	case CallToAction:
		html, berr = r.callToAction(v)
	case Embed:
		html, berr = r.embed(v)
	case Table:
		html, berr = r.table(v)
	case Unknown:
		return placeholder(v.ID, v.Component)
	case Invalid:
		cause := ErrMalformedBlock
		if v.Err != nil {
			cause = fmt.Errorf("%w: %v", ErrMalformedBlock, v.Err)
		}
		return Output{ID: v.ID, Kind: v.Kind(), Err: &BlockError{ID: v.ID, Kind: v.Kind(), Err: cause}}
	default:
		return placeholder(b.BlockID(), string(b.Kind()))
	}

	out := Output{ID: b.BlockID(), Kind: b.Kind(), HTML: html}
	if berr != nil {
		out.HTML = ""
		out.Err = berr
	}
	return out
}

func placeholder(id int, component string) Output {
	html, _ := execute("unknown", unknownView{ID: id, Component: component})
	return Output{
		ID:          id,
		Kind:        Kind(component),
		HTML:        html,
		Placeholder: true,
		Err:         &BlockError{ID: id, Kind: Kind(component), Err: ErrUnknownBlockType},
	}
}

func (r *Renderer) richText(b RichText) (template.HTML, *BlockError) {
	if strings.TrimSpace(b.Body) == "" {
		return "", missing(b, "body")
	}
	body := b.Body
	if r.markdown != nil {
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(body), &buf); err != nil {
			return "", &BlockError{ID: b.ID, Kind: b.Kind(), Field: "body", Err: fmt.Errorf("convert markdown: %w", err)}
		}
		body = buf.String()
	}
	return r.exec(b, "rich-text", template.HTML(body))
}

func (r *Renderer) media(b Media) (template.HTML, *BlockError) {
	if b.File == nil {
		return "", missing(b, "file")
	}
	src, berr := r.imageURL(b, "file", *b.File, r.format)
	if berr != nil {
		return "", berr
	}
	return r.exec(b, "media", imageView{Src: src, Alt: b.File.Alt(), Caption: b.File.Caption})
}

func (r *Renderer) quote(b Quote) (template.HTML, *BlockError) {
	if strings.TrimSpace(b.Body) == "" {
		return "", missing(b, "body")
	}
	return r.exec(b, "quote", b)
}

func (r *Renderer) slider(b Slider) (template.HTML, *BlockError) {
	views := make([]imageView, 0, len(b.Files))
	for i, file := range b.Files {
		src, berr := r.imageURL(b, "files["+strconv.Itoa(i)+"]", file, DefaultFormat)
		if berr != nil {
			return "", berr
		}
		views = append(views, imageView{Src: src, Alt: file.Alt()})
	}
	return r.exec(b, "slider", views)
}

func (r *Renderer) codeBlock(b CodeBlock) (template.HTML, *BlockError) {
	if strings.TrimSpace(b.Code) == "" {
		return "", missing(b, "code")
	}
	if !b.Language.Valid() {
		return "", invalid(b, "language", string(b.Language))
	}
	corners := "rounded-lg"
	if b.Title != "" {
		corners = "rounded-b-lg"
	}
	lineNumbers := ""
	if b.ShowLineNumbers {
		lineNumbers = "line-numbers"
	}
	return r.exec(b, "code-block", codeView{
		Title:    b.Title,
		Code:     b.Code,
		Language: b.Language,
		PreClass: classes("bg-gray-900 text-gray-100 p-4 overflow-x-auto", corners, lineNumbers),
	})
}

func (r *Renderer) callToAction(b CallToAction) (template.HTML, *BlockError) {
	if strings.TrimSpace(b.Title) == "" {
		return "", missing(b, "title")
	}
	if strings.TrimSpace(b.URL) == "" {
		return "", missing(b, "url")
	}
	if !b.Style.Valid() {
		return "", invalid(b, "style", string(b.Style))
	}
	view := ctaView{
		Title:  b.Title,
		URL:    b.URL,
		Target: "_self",
		Class:  classes("inline-flex items-center px-6 py-3 rounded-lg font-medium transition-colors", buttonStyleClasses[b.Style]),
		Icon:   b.Icon,
	}
	if b.OpenInNewTab {
		view.Target = "_blank"
		view.Rel = "noopener noreferrer"
	}
	return r.exec(b, "call-to-action", view)
}

func (r *Renderer) embed(b Embed) (template.HTML, *BlockError) {
	if strings.TrimSpace(b.URL) == "" {
		return "", missing(b, "url")
	}
	if !b.AspectRatio.Valid() {
		return "", invalid(b, "aspectRatio", string(b.AspectRatio))
	}
	return r.exec(b, "embed", embedView{
		Title:       b.Title,
		Src:         ResolveEmbedURL(b.URL, b.Autoplay),
		AspectClass: aspectRatioClasses[b.AspectRatio],
	})
}

func (r *Renderer) table(b Table) (template.HTML, *BlockError) {
	if b.Headers == nil {
		return "", missing(b, "headers")
	}
	if b.Rows == nil {
		return "", missing(b, "rows")
	}
	border := ""
	if b.Bordered {
		border = "border border-gray-300"
	}
	view := tableView{
		Title:       b.Title,
		TableClass:  classes("w-full border-collapse", border),
		HeaderClass: classes("px-4 py-2 text-left font-semibold bg-gray-100", border),
		CellClass:   classes("px-4 py-2", border),
		Headers:     b.Headers,
		Rows:        make([]tableRow, len(b.Rows)),
	}
	for i, cells := range b.Rows {
		view.Rows[i].Cells = cells
		if b.Striped && i%2 == 1 {
			view.Rows[i].Class = "bg-gray-50"
		}
	}
	return r.exec(b, "table", view)
}

func (r *Renderer) imageURL(b Block, field string, img Image, format Format) (string, *BlockError) {
	src, err := ResolveImageURL(img, format)
	if err != nil {
		if errors.Is(err, ErrInvalidEnumValue) {
			return "", invalid(b, "format", string(format))
		}
		return "", assetError(b, field, err)
	}
	if r.assetBase != "" && strings.HasPrefix(src, "/") && !strings.HasPrefix(src, "//") {
		src = r.assetBase + src
	}
	return src, nil
}

func (r *Renderer) exec(b Block, name string, data any) (template.HTML, *BlockError) {
	html, err := execute(name, data)
	if err != nil {
		return "", &BlockError{ID: b.BlockID(), Kind: b.Kind(), Err: fmt.Errorf("execute %s template: %w", name, err)}
	}
	return html, nil
}

// Join assembles outputs into the article body. Failed blocks are dropped unless showErrors
// is set, in which case they render as an error notice.
func Join(outputs []Output, showErrors bool) template.HTML {
	var sb strings.Builder
	sb.WriteString(`<div class="content-renderer">`)
	for _, out := range outputs {
		if !out.Failed() {
			sb.WriteString(string(out.HTML))
			continue
		}
		if !showErrors {
			continue
		}
		notice, err := execute("block-error", errorView{ID: out.ID, Kind: out.Kind, Message: out.Err.Error()})
		if err == nil {
			sb.WriteString(string(notice))
		}
	}
	sb.WriteString(`</div>`)
	return template.HTML(sb.String())
}
