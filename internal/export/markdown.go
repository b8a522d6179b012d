// Package export turns rendered article HTML into Markdown and plain-text excerpts.
package export

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

// Rendered fragments that only make sense in a browser.
var skippedClasses = []string{"unknown-block", "block-error"}

var excessiveLinesRe = regexp.MustCompile(`\n{3,}`)

type Converter struct {
	converter *md.Converter
}

func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

var defaultConverter = NewConverter()

// Markdown converts with the default converter.
func Markdown(htmlContent string) (string, error) {
	return defaultConverter.Markdown(htmlContent)
}

// Markdown converts rendered HTML to GitHub-flavoured Markdown.
func (c *Converter) Markdown(htmlContent string) (string, error) {
	out, err := c.converter.ConvertString(stripPlaceholders(htmlContent))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return clean(out), nil
}

// Document prefixes the converted body with the title as a level-one heading.
func (c *Converter) Document(title, htmlContent string) (string, error) {
	body, err := c.Markdown(htmlContent)
	if err != nil {
		return "", err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return body, nil
	}
	if body == "" {
		return "# " + title + "\n", nil
	}
	return "# " + title + "\n\n" + body + "\n", nil
}

func stripPlaceholders(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return content
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, skippedClasses) {
			toRemove = append(toRemove, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(doc)
	if len(toRemove) == 0 {
		return content
	}
	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return content
	}
	return sb.String()
}

func hasClass(n *html.Node, classes []string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			for _, want := range classes {
				if c == want {
					return true
				}
			}
		}
	}
	return false
}

func clean(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = excessiveLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content)
}
