package tags

import (
	"net/url"
	"strings"
)

// Selection is an immutable ordered set of tag slugs.
type Selection struct {
	slugs []string
}

// ParseSelection reads the comma-separated value of the tags query parameter.
func ParseSelection(raw string) Selection {
	var s Selection
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" && !s.Has(part) {
			s.slugs = append(s.slugs, part)
		}
	}
	return s
}

func (s Selection) Has(slug string) bool {
	for _, v := range s.slugs {
		if v == slug {
			return true
		}
	}
	return false
}

// Toggle returns a copy with slug added, or removed when it was already selected.
func (s Selection) Toggle(slug string) Selection {
	if s.Has(slug) {
		out := make([]string, 0, len(s.slugs)-1)
		for _, v := range s.slugs {
			if v != slug {
				out = append(out, v)
			}
		}
		return Selection{slugs: out}
	}
	return Selection{slugs: append(append(make([]string, 0, len(s.slugs)+1), s.slugs...), slug)}
}

func (s Selection) Slugs() []string {
	return append([]string(nil), s.slugs...)
}

func (s Selection) Len() int { return len(s.slugs) }

// Query is the value of the tags query parameter.
func (s Selection) Query() string {
	return strings.Join(s.slugs, ",")
}

// Href links basePath with the selection applied.
func (s Selection) Href(basePath string) string {
	if len(s.slugs) == 0 {
		return basePath
	}
	return basePath + "?" + url.Values{"tags": {s.Query()}}.Encode()
}
