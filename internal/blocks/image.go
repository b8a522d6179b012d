package blocks

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ImageFormat is one rendition of an uploaded image.
type ImageFormat struct {
	Name   string  `json:"name"`
	URL    string  `json:"url"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Mime   string  `json:"mime,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

// Image is a stored asset from the upload plugin.
type Image struct {
	ID              int
	Name            string
	AlternativeText string
	Caption         string
	Width           int
	Height          int
	Formats         map[Format]ImageFormat
	URL             string
	Mime            string
	Ext             string
	Hash            string
	Size            float64
}

type imageAttributes struct {
	Name            string                 `json:"name"`
	AlternativeText string                 `json:"alternativeText"`
	Caption         string                 `json:"caption"`
	Width           int                    `json:"width"`
	Height          int                    `json:"height"`
	Formats         map[Format]ImageFormat `json:"formats"`
	URL             string                 `json:"url"`
	Mime            string                 `json:"mime"`
	Ext             string                 `json:"ext"`
	Hash            string                 `json:"hash"`
	Size            float64                `json:"size"`
}

// UnmarshalJSON accepts the relation envelope {"data": ...}, the v4 {id, attributes}
// entity and the flat v5 entity.
func (img *Image) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*img = Image{}
		return nil
	}

	var envelope struct {
		Data       json.RawMessage  `json:"data"`
		ID         int              `json:"id"`
		Attributes *imageAttributes `json:"attributes"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	if len(envelope.Data) > 0 {
		return img.UnmarshalJSON(envelope.Data)
	}

	attrs := imageAttributes{}
	if envelope.Attributes != nil {
		attrs = *envelope.Attributes
	} else if err := json.Unmarshal(data, &attrs); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	*img = Image{
		ID:              envelope.ID,
		Name:            attrs.Name,
		AlternativeText: attrs.AlternativeText,
		Caption:         attrs.Caption,
		Width:           attrs.Width,
		Height:          attrs.Height,
		Formats:         attrs.Formats,
		URL:             attrs.URL,
		Mime:            attrs.Mime,
		Ext:             attrs.Ext,
		Hash:            attrs.Hash,
		Size:            attrs.Size,
	}
	return nil
}

// IsZero reports whether the image carries nothing at all, as decoded from null.
func (img Image) IsZero() bool {
	return img.ID == 0 && img.URL == "" && img.Name == "" && len(img.Formats) == 0
}

// Alt returns the alternative text, falling back to the asset name.
func (img Image) Alt() string {
	return firstNonBlank(img.AlternativeText, img.Name)
}

// ResolveImageURL picks the url of the requested rendition, or the canonical url when the
// image has no such rendition.
func ResolveImageURL(img Image, format Format) (string, error) {
	if !format.Valid() {
		return "", fmt.Errorf("%w: format %q", ErrInvalidEnumValue, format)
	}
	if f, ok := img.Formats[format]; ok && strings.TrimSpace(f.URL) != "" {
		return f.URL, nil
	}
	if u := strings.TrimSpace(img.URL); u != "" {
		return u, nil
	}
	return "", fmt.Errorf("%w: image %d has no url", ErrMalformedAsset, img.ID)
}

// imageList decodes a multi-media field given as an array, a {"data": [...]} envelope or null.
type imageList []Image

func (l *imageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode image list: %w", err)
		}
		return l.UnmarshalJSON(envelope.Data)
	}
	var images []Image
	if err := json.Unmarshal(data, &images); err != nil {
		return fmt.Errorf("decode image list: %w", err)
	}
	*l = images
	return nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
