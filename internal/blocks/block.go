// Package blocks renders Strapi dynamic-zone content blocks into HTML fragments.
//
// A block is one of eight closed variants selected by its `__component` uid.
// Blocks with any other uid decode into Unknown and render as a placeholder.
package blocks

import "encoding/json"

// Kind is the discriminant carried by every block.
type Kind string

const (
	KindRichText     Kind = "shared.rich-text"
	KindMedia        Kind = "shared.media"
	KindQuote        Kind = "shared.quote"
	KindSlider       Kind = "shared.slider"
	KindCodeBlock    Kind = "shared.code-block"
	KindCallToAction Kind = "shared.call-to-action"
	KindEmbed        Kind = "shared.embed"
	KindTable        Kind = "shared.table"
)

// Kinds lists every renderable kind in schema order.
var Kinds = []Kind{
	KindRichText,
	KindMedia,
	KindQuote,
	KindSlider,
	KindCodeBlock,
	KindCallToAction,
	KindEmbed,
	KindTable,
}

// Known reports whether k is one of the eight renderable kinds.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Block is implemented only by the variants in this package.
type Block interface {
	BlockID() int
	Kind() Kind
	sealed()
}

// RichText is pre-formatted markup authored in the CMS editor.
type RichText struct {
	ID   int
	Body string
}

// Media is a single uploaded asset.
type Media struct {
	ID   int
	File *Image
}

// Quote is an attributed quotation. Title is the attribution line.
type Quote struct {
	ID    int
	Title string
	Body  string
}

// Slider is an ordered gallery of images.
type Slider struct {
	ID    int
	Files []Image
}

// CodeBlock is a code snippet tagged with its language for client-side highlighting.
type CodeBlock struct {
	ID              int
	Code            string
	Language        Language
	Title           string
	ShowLineNumbers bool
}

// CallToAction is a styled link button.
type CallToAction struct {
	ID           int
	Title        string
	URL          string
	Style        ButtonStyle
	Icon         string
	OpenInNewTab bool
}

// Embed is an external player or page shown in an iframe.
type Embed struct {
	ID          int
	URL         string
	Title       string
	AspectRatio AspectRatio
	Autoplay    bool
}

// Table holds headers and rows as authored. Rows may be ragged.
// A nil Headers or Rows means the field was absent.
type Table struct {
	ID       int
	Title    string
	Headers  []string
	Rows     [][]string
	Striped  bool
	Bordered bool
}

// Unknown keeps a block whose component uid this package does not render.
type Unknown struct {
	ID        int
	Component string
	Raw       json.RawMessage
}

func (b RichText) BlockID() int     { return b.ID }
func (b Media) BlockID() int        { return b.ID }
func (b Quote) BlockID() int        { return b.ID }
func (b Slider) BlockID() int       { return b.ID }
func (b CodeBlock) BlockID() int    { return b.ID }
func (b CallToAction) BlockID() int { return b.ID }
func (b Embed) BlockID() int        { return b.ID }
func (b Table) BlockID() int        { return b.ID }
func (b Unknown) BlockID() int      { return b.ID }

func (RichText) Kind() Kind     { return KindRichText }
func (Media) Kind() Kind        { return KindMedia }
func (Quote) Kind() Kind        { return KindQuote }
func (Slider) Kind() Kind       { return KindSlider }
func (CodeBlock) Kind() Kind    { return KindCodeBlock }
func (CallToAction) Kind() Kind { return KindCallToAction }
func (Embed) Kind() Kind        { return KindEmbed }
func (Table) Kind() Kind        { return KindTable }
func (b Unknown) Kind() Kind    { return Kind(b.Component) }

func (RichText) sealed()     {}
func (Media) sealed()        {}
func (Quote) sealed()        {}
func (Slider) sealed()       {}
func (CodeBlock) sealed()    {}
func (CallToAction) sealed() {}
func (Embed) sealed()        {}
func (Table) sealed()        {}
func (Unknown) sealed()      {}
