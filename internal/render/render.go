package render

import (
	"github.com/rlsouza/teses/internal/content"
)

// DefaultVideoWidth is used when a video node has no width attribute.
const DefaultVideoWidth = "100%"

// Render converts doc into display blocks, one per recognized top-level node,
// in document order. Unknown node types and media nodes without a src
// produce nothing.
func Render(doc content.Document) []Block {
	r := renderer{anchors: content.NewAnchors()}
	blocks := make([]Block, 0, len(doc.Content))
	for _, n := range doc.Content {
		if b, ok := r.node(n); ok {
			blocks = append(blocks, b)
		}
		r.images += n.ImageCount()
	}
	return blocks
}

type renderer struct {
	anchors *content.Anchors
	images  int // media index position of the next image
}

func (r *renderer) node(n content.Node) (Block, bool) {
	switch n.Type {
	case content.TypeParagraph:
		return Paragraph{Align: alignOf(n), Inlines: inlines(n.Content)}, true
	case content.TypeHeading:
		return Heading{
			Level:   n.HeadingLevel(),
			Align:   alignOf(n),
			Anchor:  r.anchors.Next(n.PlainText()),
			Inlines: inlines(n.Content),
		}, true
	case content.TypeBulletList, content.TypeOrderedList:
		return List{
			Ordered: n.Type == content.TypeOrderedList,
			Align:   alignOf(n),
			Items:   listItems(n.Content),
		}, true
	case content.TypeBlockquote:
		return Blockquote{Align: alignOf(n), Inlines: quoteInlines(n.Content)}, true
	case content.TypeCodeBlock:
		return CodeBlock{Language: n.AttrString("language"), Code: n.PlainText()}, true
	case content.TypeHorizontalRule:
		return HorizontalRule{}, true
	case content.TypeImage:
		src := n.AttrString("src")
		if src == "" {
			return nil, false
		}
		return Image{Src: src, Alt: n.AttrString("alt"), Index: r.images}, true
	case content.TypeVideo:
		src := n.AttrString("src")
		if src == "" {
			return nil, false
		}
		width := n.AttrString("width")
		if width == "" {
			width = DefaultVideoWidth
		}
		return Video{Src: src, Width: width}, true
	case content.TypeAudio:
		src := n.AttrString("src")
		if src == "" {
			return nil, false
		}
		return Audio{Src: src}, true
	default:
		return nil, false
	}
}

func alignOf(n content.Node) Align {
	switch a := Align(n.AttrString("textAlign")); a {
	case AlignCenter, AlignRight, AlignJustify:
		return a
	}
	return AlignLeft
}

// listItems keeps only the first child of every item. Stored documents
// depend on this: nested lists inside an item are not shown.
func listItems(items []content.Node) [][]Inline {
	out := make([][]Inline, 0, len(items))
	for _, item := range items {
		if len(item.Content) == 0 {
			out = append(out, nil)
			continue
		}
		out = append(out, inlines(item.Content[0].Content))
	}
	return out
}

// quoteInlines renders direct text children, and flattens paragraph children
// into the quote separated by line breaks.
func quoteInlines(children []content.Node) []Inline {
	var out []Inline
	paragraphs := 0
	for _, c := range children {
		if c.Type != content.TypeParagraph {
			out = append(out, inlines([]content.Node{c})...)
			continue
		}
		if paragraphs > 0 {
			out = append(out, Inline{Break: true})
		}
		paragraphs++
		out = append(out, inlines(c.Content)...)
	}
	return out
}

func inlines(nodes []content.Node) []Inline {
	var out []Inline
	for _, n := range nodes {
		switch n.Type {
		case content.TypeText:
			out = append(out, Inline{Text: n.Text, Marks: marks(n.Marks)})
		case content.TypeHardBreak:
			out = append(out, Inline{Break: true})
		}
	}
	return out
}

func marks(ms []content.Mark) []Mark {
	var out []Mark
	for _, m := range ms {
		var kind MarkKind
		switch m.Type {
		case content.MarkBold:
			kind = Bold
		case content.MarkItalic:
			kind = Italic
		case content.MarkUnderline:
			kind = Underline
		case content.MarkStrike:
			kind = Strike
		case content.MarkCode:
			kind = Code
		case content.MarkHighlight:
			kind = Highlight
		case content.MarkSubscript:
			kind = Subscript
		case content.MarkSuperscript:
			kind = Superscript
		case content.MarkLink:
			out = append(out, Mark{Kind: Link, Href: m.AttrString("href")})
			continue
		default:
			continue
		}
		out = append(out, Mark{Kind: kind})
	}
	return out
}
