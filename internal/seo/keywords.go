package seo

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/mx-space/blockpress/internal/models"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 155
)

type Keywords struct {
	Primary   []string
	Secondary []string
	All       []string
}

// ExtractKeywords splits the comma-separated keyword fields. Blank entries are dropped.
func ExtractKeywords(s *models.SEO) Keywords {
	if s == nil {
		return Keywords{}
	}
	k := Keywords{
		Primary:   splitKeywords(s.PrimaryKeywords),
		Secondary: splitKeywords(s.SecondaryKeywords),
	}
	k.All = append(append([]string{}, k.Primary...), k.Secondary...)
	return k
}

func splitKeywords(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks the editorial limits of an SEO component. Lengths count characters.
func Validate(s *models.SEO) Result {
	var errs []string
	if s != nil {
		if utf8.RuneCountInString(s.MetaTitle) > MaxTitleLength {
			errs = append(errs, "Meta title should be 60 characters or less")
		}
		if utf8.RuneCountInString(s.MetaDescription) > MaxDescriptionLength {
			errs = append(errs, "Meta description should be 155 characters or less")
		}
		if c := strings.TrimSpace(s.CanonicalURL); c != "" && !absoluteURL(c) {
			errs = append(errs, "Canonical URL is not valid")
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}
