package importer

import (
	"bytes"
	"os"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rlsouza/teses/internal/content"
)

// MarkdownFormat reads CommonMark with the GitHub extensions.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Import(filename string) (content.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return content.Document{}, err
	}
	return ParseMarkdown(data), nil
}

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
)

func getMarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownParser
}

// ParseMarkdown converts Markdown source into a document. Images standing in
// a paragraph become image blocks after it; raw HTML blocks go through
// ParseHTML. Tables have no document equivalent and are dropped.
func ParseMarkdown(source []byte) content.Document {
	root := getMarkdownParser().Parser().Parse(text.NewReader(source))
	m := &markdownBuilder{source: source}
	doc := content.Empty()
	doc.Content = append(doc.Content, m.blocks(root)...)
	return doc
}

type markdownBuilder struct {
	source []byte
	media  []content.Node
}

func (m *markdownBuilder) blocks(parent ast.Node) []content.Node {
	var out []content.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, m.block(n)...)
	}
	return out
}

func (m *markdownBuilder) block(n ast.Node) []content.Node {
	switch n := n.(type) {
	case *ast.Heading:
		node := content.Node{Type: content.TypeHeading, Attrs: map[string]any{"level": n.Level}}
		node.Content, _ = trimInlines(m.inlines(n, nil))
		return m.withMedia(node)
	case *ast.Paragraph, *ast.TextBlock:
		inlines, ok := trimInlines(m.inlines(n, nil))
		if !ok {
			return m.withMedia()
		}
		return m.withMedia(paragraph(inlines))
	case *ast.List:
		return []content.Node{m.list(n)}
	case *ast.Blockquote:
		quote := content.Node{Type: content.TypeBlockquote}
		for _, c := range m.blocks(n) {
			if c.Type == content.TypeParagraph {
				quote.Content = append(quote.Content, c)
			}
		}
		return []content.Node{quote}
	case *ast.FencedCodeBlock:
		node := codeBlock(m.lines(n))
		if lang := string(n.Language(m.source)); lang != "" {
			node.Attrs = map[string]any{"language": lang}
		}
		return []content.Node{node}
	case *ast.CodeBlock:
		return []content.Node{codeBlock(m.lines(n))}
	case *ast.ThematicBreak:
		return []content.Node{{Type: content.TypeHorizontalRule}}
	case *ast.HTMLBlock:
		raw := m.lines(n)
		if n.HasClosure() {
			raw = append(raw, n.ClosureLine.Value(m.source)...)
		}
		doc, err := ParseHTML(bytes.NewReader(raw))
		if err != nil {
			return nil
		}
		return doc.Content
	case *extast.Table:
		return nil
	}
	return m.blocks(n)
}

func (m *markdownBuilder) withMedia(nodes ...content.Node) []content.Node {
	nodes = append(nodes, m.media...)
	m.media = nil
	return nodes
}

func (m *markdownBuilder) list(l *ast.List) content.Node {
	node := content.Node{Type: content.TypeBulletList}
	if l.IsOrdered() {
		node.Type = content.TypeOrderedList
	}
	for li := l.FirstChild(); li != nil; li = li.NextSibling() {
		item := content.Node{Type: content.TypeListItem, Content: m.blocks(li)}
		if len(item.Content) == 0 {
			item.Content = []content.Node{paragraph(nil)}
		}
		node.Content = append(node.Content, item)
	}
	return node
}

func (m *markdownBuilder) lines(n ast.Node) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(m.source))
	}
	return buf.Bytes()
}

func codeBlock(code []byte) content.Node {
	node := content.Node{Type: content.TypeCodeBlock}
	if s := string(bytes.TrimSuffix(code, []byte("\n"))); s != "" {
		node.Content = []content.Node{textNode(s, nil)}
	}
	return node
}

func (m *markdownBuilder) inlines(parent ast.Node, marks []content.Mark) []content.Node {
	var out []content.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, m.inline(n, marks)...)
	}
	return out
}

func (m *markdownBuilder) inline(n ast.Node, marks []content.Mark) []content.Node {
	switch n := n.(type) {
	case *ast.Text:
		out := []content.Node{textNode(string(n.Segment.Value(m.source)), marks)}
		if n.HardLineBreak() {
			out = append(out, content.Node{Type: content.TypeHardBreak})
		} else if n.SoftLineBreak() {
			out = append(out, textNode(" ", marks))
		}
		return out
	case *ast.String:
		return []content.Node{textNode(string(n.Value), marks)}
	case *ast.CodeSpan:
		var code bytes.Buffer
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				code.Write(c.Segment.Value(m.source))
			case *ast.String:
				code.Write(c.Value)
			}
		}
		return []content.Node{textNode(code.String(), withMark(marks, content.Mark{Type: content.MarkCode}))}
	case *ast.Emphasis:
		t := content.MarkItalic
		if n.Level >= 2 {
			t = content.MarkBold
		}
		return m.inlines(n, withMark(marks, content.Mark{Type: t}))
	case *extast.Strikethrough:
		return m.inlines(n, withMark(marks, content.Mark{Type: content.MarkStrike}))
	case *ast.Link:
		link := content.Mark{Type: content.MarkLink, Attrs: map[string]any{"href": string(n.Destination)}}
		return m.inlines(n, withMark(marks, link))
	case *ast.AutoLink:
		url := string(n.URL(m.source))
		href := url
		if n.AutoLinkType == ast.AutoLinkEmail {
			href = "mailto:" + url
		}
		link := content.Mark{Type: content.MarkLink, Attrs: map[string]any{"href": href}}
		return []content.Node{textNode(url, withMark(marks, link))}
	case *ast.Image:
		var alt bytes.Buffer
		for _, t := range m.inlines(n, nil) {
			alt.WriteString(t.Text)
		}
		attrs := map[string]any{"src": string(n.Destination), "alt": alt.String()}
		if len(n.Title) > 0 {
			attrs["title"] = string(n.Title)
		}
		m.media = append(m.media, content.Node{Type: content.TypeImage, Attrs: attrs})
		return nil
	case *ast.RawHTML, *extast.TaskCheckBox:
		return nil
	}
	return m.inlines(n, marks)
}
