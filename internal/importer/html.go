package importer

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rlsouza/teses/internal/content"
)

// HTMLFormat reads HTML pages and fragments.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Import(filename string) (content.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return content.Document{}, err
	}
	return ParseHTML(bytes.NewReader(data))
}

// ParseHTML converts markup into a document. Block elements map to document
// blocks, inline formatting maps to marks, and loose text inside containers
// is gathered into paragraphs. Elements without a document equivalent are
// unwrapped.
func ParseHTML(r io.Reader) (content.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return content.Document{}, err
	}
	b := &htmlBuilder{}
	b.container(root)
	b.flush()
	doc := content.Empty()
	doc.Content = append(doc.Content, b.blocks...)
	return doc, nil
}

var (
	spaceRegex     = regexp.MustCompile(`[ \t\r\n\f]+`)
	textAlignRegex = regexp.MustCompile(`text-align:\s*(left|center|right|justify)`)
	widthRegex     = regexp.MustCompile(`(?:^|;)\s*width:\s*([^;]+)`)
)

type htmlBuilder struct {
	blocks  []content.Node
	pending []content.Node // loose inline content awaiting a paragraph
	media   []content.Node // media found inside inline content
}

func (b *htmlBuilder) flush() {
	if inlines, ok := trimInlines(b.pending); ok {
		b.blocks = append(b.blocks, paragraph(inlines))
	}
	b.pending = nil
	b.blocks = append(b.blocks, b.media...)
	b.media = nil
}

func (b *htmlBuilder) container(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && isBlock(c.DataAtom) {
			b.flush()
			b.blocks = append(b.blocks, b.block(c)...)
			continue
		}
		if c.Type == html.ElementNode && isContainer(c.DataAtom) {
			b.flush()
			b.container(c)
			b.flush()
			continue
		}
		b.pending = append(b.pending, b.inline(c, nil)...)
	}
}

func isContainer(a atom.Atom) bool {
	switch a {
	case atom.Html, atom.Body, atom.Div, atom.Section, atom.Article, atom.Main,
		atom.Header, atom.Footer, atom.Aside, atom.Nav, atom.Figure, atom.Figcaption,
		atom.Center, atom.Table, atom.Tbody, atom.Thead, atom.Tr, atom.Td, atom.Th, atom.Dl, atom.Dd, atom.Dt:
		return true
	}
	return false
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Head, atom.Script, atom.Style, atom.Template, atom.Noscript,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.P,
		atom.Ul, atom.Ol, atom.Blockquote, atom.Pre, atom.Hr,
		atom.Img, atom.Video, atom.Audio:
		return true
	}
	return false
}

// block converts a block-level element. Media found inside a heading or
// paragraph follows it as separate blocks.
func (b *htmlBuilder) block(n *html.Node) []content.Node {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level, _ := strconv.Atoi(n.Data[1:])
		node := content.Node{Type: content.TypeHeading, Attrs: map[string]any{"level": level}}
		node.Content, _ = trimInlines(b.inlineChildren(n, nil))
		setAlign(&node, n)
		return b.withMedia(node)
	case atom.P:
		inlines, ok := trimInlines(b.inlineChildren(n, nil))
		if !ok {
			return b.withMedia()
		}
		node := paragraph(inlines)
		setAlign(&node, n)
		return b.withMedia(node)
	case atom.Ul, atom.Ol:
		return []content.Node{b.list(n)}
	case atom.Blockquote:
		quote := content.Node{Type: content.TypeBlockquote}
		inner := &htmlBuilder{}
		inner.container(n)
		inner.flush()
		for _, c := range inner.blocks {
			if c.Type == content.TypeParagraph {
				quote.Content = append(quote.Content, c)
			}
		}
		setAlign(&quote, n)
		return []content.Node{quote}
	case atom.Pre:
		node := content.Node{Type: content.TypeCodeBlock}
		if lang := codeLanguage(n); lang != "" {
			node.Attrs = map[string]any{"language": lang}
		}
		if code := strings.TrimSuffix(textContent(n), "\n"); code != "" {
			node.Content = []content.Node{textNode(code, nil)}
		}
		return []content.Node{node}
	case atom.Hr:
		return []content.Node{{Type: content.TypeHorizontalRule}}
	case atom.Img, atom.Video, atom.Audio:
		return []content.Node{mediaNode(n)}
	}
	return nil
}

func (b *htmlBuilder) withMedia(nodes ...content.Node) []content.Node {
	nodes = append(nodes, b.media...)
	b.media = nil
	return nodes
}

func (b *htmlBuilder) list(n *html.Node) content.Node {
	node := content.Node{Type: content.TypeBulletList}
	if n.DataAtom == atom.Ol {
		node.Type = content.TypeOrderedList
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		item := content.Node{Type: content.TypeListItem}
		var inlines []content.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				if trimmed, ok := trimInlines(inlines); ok {
					item.Content = append(item.Content, paragraph(trimmed))
				}
				inlines = nil
				item.Content = append(item.Content, b.list(c))
				continue
			}
			if c.Type == html.ElementNode && c.DataAtom == atom.P {
				inlines = append(inlines, b.inlineChildren(c, nil)...)
				continue
			}
			inlines = append(inlines, b.inline(c, nil)...)
		}
		if trimmed, ok := trimInlines(inlines); ok {
			item.Content = append(item.Content, paragraph(trimmed))
		}
		if len(item.Content) == 0 {
			item.Content = []content.Node{paragraph(nil)}
		}
		node.Content = append(node.Content, item)
	}
	setAlign(&node, n)
	return node
}

func (b *htmlBuilder) inlineChildren(n *html.Node, marks []content.Mark) []content.Node {
	var out []content.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, b.inline(c, marks)...)
	}
	return out
}

func (b *htmlBuilder) inline(n *html.Node, marks []content.Mark) []content.Node {
	switch n.Type {
	case html.TextNode:
		s := spaceRegex.ReplaceAllString(n.Data, " ")
		if s == "" {
			return nil
		}
		return []content.Node{textNode(s, marks)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.DataAtom {
	case atom.Br:
		return []content.Node{{Type: content.TypeHardBreak}}
	case atom.Img, atom.Video, atom.Audio:
		b.media = append(b.media, mediaNode(n))
		return nil
	case atom.Script, atom.Style, atom.Template:
		return nil
	}

	if m, ok := htmlMark(n); ok {
		marks = withMark(marks, m)
	}
	return b.inlineChildren(n, marks)
}

func htmlMark(n *html.Node) (content.Mark, bool) {
	var t string
	switch n.DataAtom {
	case atom.Strong, atom.B:
		t = content.MarkBold
	case atom.Em, atom.I:
		t = content.MarkItalic
	case atom.U, atom.Ins:
		t = content.MarkUnderline
	case atom.S, atom.Strike, atom.Del:
		t = content.MarkStrike
	case atom.Code, atom.Kbd, atom.Samp:
		t = content.MarkCode
	case atom.Mark:
		t = content.MarkHighlight
	case atom.Sub:
		t = content.MarkSubscript
	case atom.Sup:
		t = content.MarkSuperscript
	case atom.A:
		href := attr(n, "href")
		if href == "" {
			return content.Mark{}, false
		}
		return content.Mark{Type: content.MarkLink, Attrs: map[string]any{"href": href}}, true
	default:
		return content.Mark{}, false
	}
	return content.Mark{Type: t}, true
}

func mediaNode(n *html.Node) content.Node {
	src := attr(n, "src")
	if src == "" && n.DataAtom != atom.Img {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Source {
				src = attr(c, "src")
				break
			}
		}
	}
	attrs := map[string]any{"src": src}
	switch n.DataAtom {
	case atom.Img:
		attrs["alt"] = attr(n, "alt")
		if title := attr(n, "title"); title != "" {
			attrs["title"] = title
		}
		return content.Node{Type: content.TypeImage, Attrs: attrs}
	case atom.Video:
		if m := widthRegex.FindStringSubmatch(attr(n, "style")); m != nil {
			attrs["width"] = strings.TrimSpace(m[1])
		} else if w := attr(n, "width"); w != "" {
			if _, err := strconv.Atoi(w); err == nil {
				w += "px"
			}
			attrs["width"] = w
		}
		return content.Node{Type: content.TypeVideo, Attrs: attrs}
	}
	return content.Node{Type: content.TypeAudio, Attrs: attrs}
}

func setAlign(node *content.Node, n *html.Node) {
	align := attr(n, "align")
	if m := textAlignRegex.FindStringSubmatch(attr(n, "style")); m != nil {
		align = m[1]
	}
	switch align {
	case "left", "center", "right", "justify":
		if node.Attrs == nil {
			node.Attrs = map[string]any{}
		}
		node.Attrs["textAlign"] = align
	}
}

func codeLanguage(pre *html.Node) string {
	for _, n := range []*html.Node{pre, pre.FirstChild} {
		if n == nil || n.Type != html.ElementNode {
			continue
		}
		for _, class := range strings.Fields(attr(n, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
