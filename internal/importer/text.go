package importer

import (
	"os"
	"regexp"
	"strings"

	"github.com/rlsouza/teses/internal/content"
)

// TextFormat reads plain text. Blank lines separate paragraphs and single
// newlines become hard breaks.
type TextFormat struct{}

func init() {
	Register(&TextFormat{})
}

func (f *TextFormat) Name() string         { return "Text" }
func (f *TextFormat) Extensions() []string { return []string{".txt"} }

func (f *TextFormat) Import(filename string) (content.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return content.Document{}, err
	}
	return ParseText(string(data)), nil
}

var blankLineRegex = regexp.MustCompile(`\n[ \t]*\n`)

// ParseText converts plain text into paragraphs.
func ParseText(s string) content.Document {
	doc := content.Empty()
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for _, block := range blankLineRegex.Split(s, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		var inlines []content.Node
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				inlines = append(inlines, content.Node{Type: content.TypeHardBreak})
			}
			if line = strings.TrimSpace(line); line != "" {
				inlines = append(inlines, textNode(line, nil))
			}
		}
		doc.Content = append(doc.Content, paragraph(inlines))
	}
	return doc
}
