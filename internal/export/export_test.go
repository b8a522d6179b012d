package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	out, err := Markdown(`<div class="content-renderer">
<h2>Title</h2>
<p>Hello <strong>world</strong></p>
<ul><li>one</li><li>two</li></ul>
<div class="unknown-block" data-block-id="4">Unknown block type: shared.unknown-type</div>
<pre><code class="language-go">fmt.Println("hi")</code></pre>
</div>`)
	require.NoError(t, err)

	assert.Contains(t, out, "## Title")
	assert.Contains(t, out, "**world**")
	assert.Contains(t, out, "- one")
	assert.Contains(t, out, "```go")
	assert.Contains(t, out, `fmt.Println("hi")`)
	assert.NotContains(t, out, "Unknown block type")
	assert.NotContains(t, out, "\n\n\n")
}

func TestDocument(t *testing.T) {
	c := NewConverter()
	out, err := c.Document("My Post", "<p>Body</p>")
	require.NoError(t, err)
	assert.Equal(t, "# My Post\n\nBody\n", out)

	out, err = c.Document("", "<p>Body</p>")
	require.NoError(t, err)
	assert.Equal(t, "Body", out)
}

func TestExcerpt(t *testing.T) {
	src := `<p>Hello <b>world</b></p><script>track()</script><style>p{}</style><p>again and again</p>`
	assert.Equal(t, "Hello world again and again", Excerpt(src, 0))
	assert.Equal(t, "Hello world again and again", Excerpt(src, 100))
	assert.Equal(t, "Hello world…", Excerpt(src, 14))
	assert.Equal(t, "Hello…", Excerpt(src, 6))
	assert.Equal(t, "", Excerpt("", 10))
}
