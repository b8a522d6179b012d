package models

import (
	"encoding/json"
	"time"

	"github.com/mx-space/blockpress/internal/blocks"
)

// SEO is the shared.seo component. Global default SEO uses the same shape with the
// robots, viewport and keywords fields filled in.
type SEO struct {
	ID                   int             `json:"id"`
	MetaTitle            string          `json:"metaTitle"`
	MetaDescription      string          `json:"metaDescription"`
	OpenGraphTitle       string          `json:"openGraphTitle"`
	OpenGraphDescription string          `json:"openGraphDescription"`
	H1Title              string          `json:"h1Title"`
	CanonicalURL         string          `json:"canonicalUrl"`
	PrimaryKeywords      string          `json:"primaryKeywords"`
	SecondaryKeywords    string          `json:"secondaryKeywords"`
	Keywords             string          `json:"keywords"`
	MetaRobots           string          `json:"metaRobots"`
	MetaViewport         string          `json:"metaViewport"`
	StructuredData       json.RawMessage `json:"structuredData,omitempty"`
	ShareImage           *blocks.Image   `json:"shareImage"`
	MetaImage            *blocks.Image   `json:"metaImage"`
	InternalLinks        []Link          `json:"internalLinks"`
	ExternalLinks        []Link          `json:"externalLinks"`
}

// Image returns the share image, then the legacy meta image.
func (s *SEO) Image() *blocks.Image {
	if s == nil {
		return nil
	}
	if img := present(s.ShareImage); img != nil {
		return img
	}
	return present(s.MetaImage)
}

// Link is the shared.link component.
type Link struct {
	ID           int    `json:"id"`
	AnchorText   string `json:"anchorText"`
	URL          string `json:"url"`
	OpenInNewTab bool   `json:"openInNewTab"`
}

type Global struct {
	ID         int              `json:"id"`
	Attributes GlobalAttributes `json:"attributes"`
}

type GlobalAttributes struct {
	SiteName   string        `json:"siteName"`
	DefaultSeo *SEO          `json:"defaultSeo"`
	Favicon    *blocks.Image `json:"favicon"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (g Global) FaviconImage() *blocks.Image {
	return present(g.Attributes.Favicon)
}
