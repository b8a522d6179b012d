package blocks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedBlock marks a block whose payload does not match its component schema.
var ErrMalformedBlock = errors.New("malformed block")

// Invalid is a block whose payload could not be decoded. It always renders as a failure.
type Invalid struct {
	ID        int
	Component string
	Err       error
}

func (b Invalid) BlockID() int { return b.ID }
func (b Invalid) Kind() Kind   { return Kind(b.Component) }
func (Invalid) sealed()        {}

type envelope struct {
	Component string `json:"__component"`
	ID        int    `json:"id"`
}

// Decode builds the typed variant for one dynamic-zone entry.
//
// Schema defaults are applied only to absent fields. Present values are kept verbatim,
// so an out-of-range enum is rejected when the block is rendered.
func Decode(data []byte) (Block, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	b, err := decodeVariant(env, data)
	if err != nil {
		return nil, fmt.Errorf("decode %s block %d: %w", env.Component, env.ID, err)
	}
	return b, nil
}

func decodeVariant(env envelope, data []byte) (Block, error) {
	switch Kind(env.Component) {
	case KindRichText:
		var w struct {
			Body string `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return RichText{ID: env.ID, Body: w.Body}, nil

	case KindMedia:
		var w struct {
			File *Image `json:"file"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		if w.File != nil && w.File.IsZero() {
			w.File = nil
		}
		return Media{ID: env.ID, File: w.File}, nil

	case KindQuote:
		var w struct {
			Title string `json:"title"`
			Body  string `json:"body"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Quote{ID: env.ID, Title: w.Title, Body: w.Body}, nil

	case KindSlider:
		var w struct {
			Files imageList `json:"files"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Slider{ID: env.ID, Files: []Image(w.Files)}, nil

	case KindCodeBlock:
		var w struct {
			Code            string    `json:"code"`
			Language        *Language `json:"language"`
			Title           string    `json:"title"`
			ShowLineNumbers *bool     `json:"showLineNumbers"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return CodeBlock{
			ID:              env.ID,
			Code:            w.Code,
			Language:        orDefault(w.Language, LangJavaScript),
			Title:           w.Title,
			ShowLineNumbers: orDefault(w.ShowLineNumbers, true),
		}, nil

	case KindCallToAction:
		var w struct {
			Title        string       `json:"title"`
			URL          string       `json:"url"`
			Style        *ButtonStyle `json:"style"`
			Icon         string       `json:"icon"`
			OpenInNewTab *bool        `json:"openInNewTab"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return CallToAction{
			ID:           env.ID,
			Title:        w.Title,
			URL:          w.URL,
			Style:        orDefault(w.Style, StylePrimary),
			Icon:         w.Icon,
			OpenInNewTab: orDefault(w.OpenInNewTab, false),
		}, nil

	case KindEmbed:
		var w struct {
			URL         string       `json:"url"`
			Title       string       `json:"title"`
			AspectRatio *AspectRatio `json:"aspectRatio"`
			Autoplay    *bool        `json:"autoplay"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Embed{
			ID:          env.ID,
			URL:         w.URL,
			Title:       w.Title,
			AspectRatio: orDefault(w.AspectRatio, Ratio16x9),
			Autoplay:    orDefault(w.Autoplay, false),
		}, nil

	case KindTable:
		var w struct {
			Title    string      `json:"title"`
			Headers  *textCells  `json:"headers"`
			Rows     *[]textCells `json:"rows"`
			Striped  *bool       `json:"striped"`
			Bordered *bool       `json:"bordered"`
		}
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		t := Table{
			ID:       env.ID,
			Title:    w.Title,
			Striped:  orDefault(w.Striped, true),
			Bordered: orDefault(w.Bordered, false),
		}
		if w.Headers != nil && *w.Headers != nil {
			t.Headers = []string(*w.Headers)
		}
		if w.Rows != nil && *w.Rows != nil {
			t.Rows = make([][]string, len(*w.Rows))
			for i, row := range *w.Rows {
				t.Rows[i] = []string(row)
			}
		}
		return t, nil
	}

	return Unknown{ID: env.ID, Component: env.Component, Raw: append(json.RawMessage(nil), data...)}, nil
}

// List is an ordered dynamic zone. Decoding never drops an entry: a payload that does not
// fit its schema becomes an Invalid block in place.
type List []Block

func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode blocks: %w", err)
	}
	out := make(List, 0, len(raws))
	for _, raw := range raws {
		b, err := Decode(raw)
		if err != nil {
			var env envelope
			_ = json.Unmarshal(raw, &env)
			b = Invalid{ID: env.ID, Component: env.Component, Err: err}
		}
		out = append(out, b)
	}
	*l = out
	return nil
}

// textCells decodes a JSON array of scalars into strings. Strapi stores table headers
// and rows in untyped JSON attributes, so numbers and booleans show up as cells.
type textCells []string

func (c *textCells) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	cells := make(textCells, len(raws))
	for i, raw := range raws {
		cell, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = cell
	}
	*c = cells
	return nil
}

func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected scalar, got %s", raw[:1])
	case 't', 'f':
		b, err := strconv.ParseBool(string(raw))
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
