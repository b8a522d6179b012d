package blocks

// Language is the code-block language identifier.
type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJSX        Language = "jsx"
	LangTSX        Language = "tsx"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangSCSS       Language = "scss"
	LangJSON       Language = "json"
	LangBash       Language = "bash"
	LangPython     Language = "python"
	LangPHP        Language = "php"
	LangSQL        Language = "sql"
	LangMarkdown   Language = "markdown"
	LangYAML       Language = "yaml"
	LangXML        Language = "xml"
)

var languages = map[Language]struct{}{
	LangJavaScript: {}, LangTypeScript: {}, LangJSX: {}, LangTSX: {}, LangHTML: {},
	LangCSS: {}, LangSCSS: {}, LangJSON: {}, LangBash: {}, LangPython: {},
	LangPHP: {}, LangSQL: {}, LangMarkdown: {}, LangYAML: {}, LangXML: {},
}

func (l Language) Valid() bool {
	_, ok := languages[l]
	return ok
}

// ButtonStyle is the call-to-action visual variant.
type ButtonStyle string

const (
	StylePrimary   ButtonStyle = "primary"
	StyleSecondary ButtonStyle = "secondary"
	StyleOutline   ButtonStyle = "outline"
	StyleGhost     ButtonStyle = "ghost"
)

var buttonStyleClasses = map[ButtonStyle]string{
	StylePrimary:   "bg-blue-600 text-white hover:bg-blue-700",
	StyleSecondary: "bg-gray-600 text-white hover:bg-gray-700",
	StyleOutline:   "border-2 border-blue-600 text-blue-600 hover:bg-blue-600 hover:text-white",
	StyleGhost:     "text-blue-600 hover:bg-blue-50",
}

func (s ButtonStyle) Valid() bool {
	_, ok := buttonStyleClasses[s]
	return ok
}

// AspectRatio is the embed frame ratio.
type AspectRatio string

const (
	Ratio16x9 AspectRatio = "16:9"
	Ratio4x3  AspectRatio = "4:3"
	Ratio1x1  AspectRatio = "1:1"
	Ratio21x9 AspectRatio = "21:9"
)

var aspectRatioClasses = map[AspectRatio]string{
	Ratio16x9: "aspect-video",
	Ratio4x3:  "aspect-4/3",
	Ratio1x1:  "aspect-square",
	Ratio21x9: "aspect-21/9",
}

func (r AspectRatio) Valid() bool {
	_, ok := aspectRatioClasses[r]
	return ok
}

// Format names an image rendition produced by the upload plugin.
type Format string

const (
	FormatThumbnail Format = "thumbnail"
	FormatSmall     Format = "small"
	FormatMedium    Format = "medium"
	FormatLarge     Format = "large"
)

// DefaultFormat is used by media and slider blocks.
const DefaultFormat = FormatMedium

func (f Format) Valid() bool {
	switch f {
	case FormatThumbnail, FormatSmall, FormatMedium, FormatLarge:
		return true
	}
	return false
}
