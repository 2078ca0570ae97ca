// Package render turns a normalized content.Document into an ordered list of
// presentational blocks, and writes those blocks as HTML for the public
// article page or as styled text for the terminal reader.
//
// Rendering is a pure function of the document: no I/O and no shared mutable
// state, so it is safe to call concurrently for different requests.
package render

// Align is the horizontal text alignment of a block.
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Block is one rendered top-level element. The implementations below are the
// complete set; writers switch over them exhaustively.
type Block interface {
	block()
}

// Paragraph is a run of inline text.
type Paragraph struct {
	Align   Align
	Inlines []Inline
}

// Heading is a section title, Level 1 (largest) through 6.
type Heading struct {
	Level   int
	Align   Align
	Anchor  string
	Inlines []Inline
}

// List is a bullet or ordered list. Each item holds the inline runs of the
// item's first child only.
type List struct {
	Ordered bool
	Align   Align
	Items   [][]Inline
}

// Blockquote is quoted inline text.
type Blockquote struct {
	Align   Align
	Inlines []Inline
}

// CodeBlock is preformatted code. Marks inside code are ignored.
type CodeBlock struct {
	Language string
	Code     string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

// Image is an embedded picture. Index is its position in the document's
// media index, used to open the gallery viewer at this image.
type Image struct {
	Src   string
	Alt   string
	Index int
}

// Video is an embedded video player.
type Video struct {
	Src   string
	Width string
}

// Audio is an embedded audio player.
type Audio struct {
	Src string
}

func (Paragraph) block()      {}
func (Heading) block()        {}
func (List) block()           {}
func (Blockquote) block()     {}
func (CodeBlock) block()      {}
func (HorizontalRule) block() {}
func (Image) block()          {}
func (Video) block()          {}
func (Audio) block()          {}

// Inline is a span of text with its marks, or a line break when Break is set.
type Inline struct {
	Text  string
	Marks []Mark
	Break bool
}

// MarkKind identifies a text formatting annotation.
type MarkKind int

const (
	Bold MarkKind = iota
	Italic
	Underline
	Strike
	Code
	Highlight
	Subscript
	Superscript
	Link
)

// Mark is a formatting annotation. Marks wrap text in list order: the first
// mark is innermost.
type Mark struct {
	Kind MarkKind
	Href string // Link only
}

// level is the heading level both writers use; out of range values are
// written as level 1.
func (h Heading) level() int {
	if h.Level < 1 || h.Level > 6 {
		return 1
	}
	return h.Level
}
