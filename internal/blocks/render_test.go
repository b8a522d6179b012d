package blocks

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
)

// validate reports the error that would reject b, or nil.
func validate(b Block) error {
	if out := New().RenderBlock(b); out.Failed() {
		return out.Err
	}
	return nil
}

type brokenMarkdown struct{ goldmark.Markdown }

func (brokenMarkdown) Convert([]byte, io.Writer, ...parser.ParseOption) error {
	return errors.New("parser exploded")
}

func TestMarkdownConvertFailureRejectsBlock(t *testing.T) {
	out := New(WithMarkdown(brokenMarkdown{NewMarkdown()})).RenderBlock(RichText{ID: 7, Body: "# Title"})
	require.True(t, out.Failed())
	assert.Empty(t, out.HTML)
	assert.Equal(t, "body", out.Err.Field)
	assert.ErrorContains(t, out.Err, "parser exploded")
}

// langGo is outside the language set.
const langGo = Language("go")

func sampleBlocks() []Block {
	return []Block{
		RichText{ID: 1, Body: "<p>Hello</p>"},
		Quote{ID: 2, Title: "Ada", Body: "Numbers are beautiful"},
		CodeBlock{ID: 3, Code: "const x = 1 < 2;", Language: LangTypeScript, ShowLineNumbers: true},
		Unknown{ID: 4, Component: "shared.unknown-type"},
		CallToAction{ID: 5, Title: "Read", URL: "/docs", Style: ButtonStyle("danger")},
	}
}

func TestRenderIsTotalAndOrdered(t *testing.T) {
	assert.Len(t, Render(nil), 0)
	assert.Len(t, Render([]Block{}), 0)

	in := sampleBlocks()
	out := Render(in)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].BlockID(), out[i].ID)
		assert.Equal(t, in[i].Kind(), out[i].Kind)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	in := sampleBlocks()
	assert.Equal(t, Render(in), Render(in))
}

func TestRenderRichTextPassThrough(t *testing.T) {
	out := Render([]Block{RichText{ID: 1, Body: "<p>Hello <b>world</b></p>"}})
	require.False(t, out[0].Failed())
	assert.Equal(t, `<div class="rich-text-block"><p>Hello <b>world</b></p></div>`, string(out[0].HTML))
}

func TestRenderRichTextMarkdown(t *testing.T) {
	r := New(WithMarkdown(nil))
	out := r.RenderBlock(RichText{ID: 1, Body: "# Title\n\nsome **bold** text"})
	require.Nil(t, out.Err)
	assert.Contains(t, string(out.HTML), "<h1>Title</h1>")
	assert.Contains(t, string(out.HTML), "<strong>bold</strong>")
}

func TestRenderUnknownPlaceholder(t *testing.T) {
	out := Render([]Block{Unknown{ID: 4, Component: "shared.unknown-type"}})[0]
	assert.True(t, out.Placeholder)
	assert.False(t, out.Failed())
	assert.True(t, errors.Is(out.Err, ErrUnknownBlockType))
	assert.Contains(t, string(out.HTML), "Unknown block type: shared.unknown-type")
}

func TestRenderRejectsInvalidEnum(t *testing.T) {
	b, err := Decode([]byte(`{"__component":"shared.call-to-action","id":7,"title":"Go","url":"/x","style":"danger"}`))
	require.NoError(t, err)

	out := Render([]Block{b, Quote{ID: 8, Body: "still rendered"}})
	require.Len(t, out, 2)
	assert.True(t, out[0].Failed())
	assert.True(t, errors.Is(out[0].Err, ErrInvalidEnumValue))
	assert.Equal(t, "style", out[0].Err.Field)
	assert.Equal(t, "danger", out[0].Err.Value)
	assert.Empty(t, out[0].HTML)

	assert.False(t, out[1].Failed())
	assert.Contains(t, string(out[1].HTML), "still rendered")
}

func TestRenderMissingRequiredFields(t *testing.T) {
	cases := []struct {
		block Block
		field string
	}{
		{RichText{ID: 1}, "body"},
		{Media{ID: 2}, "file"},
		{Quote{ID: 3, Title: "only title"}, "body"},
		{CodeBlock{ID: 4, Language: langGo}, "code"},
		{CallToAction{ID: 5, URL: "/x", Style: StylePrimary}, "title"},
		{CallToAction{ID: 6, Title: "x", Style: StylePrimary}, "url"},
		{Embed{ID: 7, AspectRatio: Ratio16x9}, "url"},
		{Table{ID: 8, Rows: [][]string{}}, "headers"},
		{Table{ID: 9, Headers: []string{"A"}}, "rows"},
	}
	for _, tc := range cases {
		err := validate(tc.block)
		var berr *BlockError
		require.True(t, errors.As(err, &berr), "block %d", tc.block.BlockID())
		assert.True(t, errors.Is(err, ErrMissingRequiredField))
		assert.Equal(t, tc.field, berr.Field)
		assert.Equal(t, tc.block.BlockID(), berr.ID)
	}
}

func TestRenderInvalidLanguage(t *testing.T) {
	err := validate(CodeBlock{ID: 1, Code: "fmt.Println()", Language: langGo})
	assert.True(t, errors.Is(err, ErrInvalidEnumValue))
}

func TestRenderMedia(t *testing.T) {
	img := Image{
		ID:              5,
		Name:            "photo.jpg",
		AlternativeText: "A photo",
		Caption:         "Taken at dawn",
		URL:             "/uploads/photo.jpg",
		Formats: map[Format]ImageFormat{
			FormatMedium: {URL: "/uploads/medium_photo.jpg"},
		},
	}
	r := New(WithAssetBaseURL("http://cms.test/"))
	out := r.RenderBlock(Media{ID: 1, File: &img})
	require.Nil(t, out.Err)
	html := string(out.HTML)
	assert.Contains(t, html, `src="http://cms.test/uploads/medium_photo.jpg"`)
	assert.Contains(t, html, `alt="A photo"`)
	assert.Contains(t, html, "Taken at dawn")

	out = New(WithImageFormat(FormatLarge)).RenderBlock(Media{ID: 1, File: &img})
	require.Nil(t, out.Err)
	assert.Contains(t, string(out.HTML), `src="/uploads/photo.jpg"`)

	out = New(WithImageFormat(Format("huge"))).RenderBlock(Media{ID: 1, File: &img})
	require.True(t, out.Failed())
	assert.True(t, errors.Is(out.Err, ErrInvalidEnumValue))
	assert.Equal(t, "format", out.Err.Field)
}

func TestRenderMalformedAsset(t *testing.T) {
	err := validate(Media{ID: 1, File: &Image{ID: 3, Name: "broken"}})
	assert.True(t, errors.Is(err, ErrMalformedAsset))

	err = validate(Slider{ID: 2, Files: []Image{{URL: "/a.jpg"}, {ID: 4}}})
	var berr *BlockError
	require.True(t, errors.As(err, &berr))
	assert.Equal(t, "files[1]", berr.Field)
}

func TestRenderSlider(t *testing.T) {
	out := Render([]Block{Slider{ID: 1}})[0]
	require.Nil(t, out.Err)
	assert.NotContains(t, string(out.HTML), "<img")

	out = Render([]Block{Slider{ID: 1, Files: []Image{
		{URL: "/a.jpg", Name: "a"},
		{URL: "/b.jpg", Name: "b", Formats: map[Format]ImageFormat{FormatMedium: {URL: "/medium_b.jpg"}}},
	}}})[0]
	require.Nil(t, out.Err)
	html := string(out.HTML)
	assert.Equal(t, 2, strings.Count(html, "<img"))
	assert.Less(t, strings.Index(html, "/a.jpg"), strings.Index(html, "/medium_b.jpg"))
}

func TestRenderCodeBlock(t *testing.T) {
	out := Render([]Block{CodeBlock{ID: 3, Code: "const x = 1 < 2;", Language: LangTypeScript, Title: "x.ts", ShowLineNumbers: true}})[0]
	require.Nil(t, out.Err)
	html := string(out.HTML)
	assert.Contains(t, html, `class="language-typescript"`)
	assert.Contains(t, html, "line-numbers")
	assert.Contains(t, html, "x.ts")
	assert.Contains(t, html, "const x = 1 &lt; 2;")
	assert.NotContains(t, html, "<span")
}

func TestRenderCallToAction(t *testing.T) {
	out := Render([]Block{CallToAction{ID: 1, Title: "Docs", URL: "https://example.com/docs", Style: StyleOutline, OpenInNewTab: true, Icon: "→"}})[0]
	require.Nil(t, out.Err)
	html := string(out.HTML)
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `rel="noopener noreferrer"`)
	assert.Contains(t, html, buttonStyleClasses[StyleOutline])

	out = Render([]Block{CallToAction{ID: 2, Title: "Docs", URL: "/docs", Style: StylePrimary}})[0]
	assert.Contains(t, string(out.HTML), `target="_self"`)
	assert.NotContains(t, string(out.HTML), "noopener")
}

func TestRenderEmbed(t *testing.T) {
	out := Render([]Block{Embed{ID: 1, URL: "https://www.youtube.com/watch?v=abc123", AspectRatio: Ratio4x3, Autoplay: true}})[0]
	require.Nil(t, out.Err)
	assert.Contains(t, string(out.HTML), `src="https://www.youtube.com/embed/abc123?autoplay=1"`)
	assert.Contains(t, string(out.HTML), "aspect-4/3")

	err := validate(Embed{ID: 2, URL: "https://example.com", AspectRatio: AspectRatio("3:2")})
	assert.True(t, errors.Is(err, ErrInvalidEnumValue))
}

func TestRenderRaggedTable(t *testing.T) {
	out := Render([]Block{Table{
		ID:      1,
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"1", "2"}},
		Striped: true,
	}})[0]
	require.Nil(t, out.Err)
	html := string(out.HTML)
	assert.Equal(t, 3, strings.Count(html, "<th class="))
	assert.Equal(t, 2, strings.Count(html, "<td class="))
}

func TestRenderTableStriping(t *testing.T) {
	table := Table{ID: 1, Headers: []string{"A"}, Rows: [][]string{{"1"}, {"2"}, {"3"}}, Striped: true}
	html := string(Render([]Block{table})[0].HTML)
	assert.Equal(t, 1, strings.Count(html, `class="bg-gray-50"`))
	assert.NotContains(t, html, "border-gray-300")

	table.Striped = false
	table.Bordered = true
	html = string(Render([]Block{table})[0].HTML)
	assert.NotContains(t, html, "bg-gray-50")
	assert.Contains(t, html, "border border-gray-300")
}

func TestRenderInvalidBlock(t *testing.T) {
	out := Render([]Block{Invalid{ID: 3, Component: "shared.table", Err: errors.New("bad cell")}})[0]
	assert.True(t, out.Failed())
	assert.True(t, errors.Is(out.Err, ErrMalformedBlock))
	assert.Equal(t, KindTable, out.Kind)
}

func TestJoin(t *testing.T) {
	out := Render(sampleBlocks())

	html := string(Join(out, false))
	assert.True(t, strings.HasPrefix(html, `<div class="content-renderer">`))
	assert.True(t, strings.HasSuffix(html, `</div>`))
	assert.Contains(t, html, "Unknown block type: shared.unknown-type")
	assert.NotContains(t, html, "block-error")

	html = string(Join(out, true))
	assert.Contains(t, html, `class="block-error"`)
	assert.Contains(t, html, "invalid enum value")
}
