// Package importer converts authoring sources (Markdown, HTML, EPUB, plain
// text and stored JSON documents) into content documents, so articles can be
// written outside the editor and still go through the same renderer.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rlsouza/teses/internal/content"
)

// ErrUnsupportedFormat is returned when no format is registered under a name.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format defines a source format that can be converted into a document.
type Format interface {
	Name() string
	Extensions() []string
	Import(filename string) (content.Document, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// ImportFile converts a file using the format registered for its extension,
// falling back to plain text.
func ImportFile(filename string) (content.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Import(filename)
			}
		}
	}
	return (&TextFormat{}).Import(filename)
}

// Lookup returns the format with the given name, compared case-insensitively.
func Lookup(name string) (Format, error) {
	for _, f := range registry {
		if strings.EqualFold(f.Name(), name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

func textNode(s string, marks []content.Mark) content.Node {
	n := content.Node{Type: content.TypeText, Text: s}
	if len(marks) > 0 {
		n.Marks = append([]content.Mark(nil), marks...)
	}
	return n
}

// withMark adds m as the innermost mark. Marks are applied first to last
// from the inside out, so nested source formatting is prepended.
func withMark(marks []content.Mark, m content.Mark) []content.Mark {
	out := make([]content.Mark, 0, len(marks)+1)
	out = append(out, m)
	return append(out, marks...)
}

func paragraph(inlines []content.Node) content.Node {
	return content.Node{Type: content.TypeParagraph, Content: inlines}
}

// trimInlines removes leading and trailing whitespace from a run of inline
// nodes and reports whether any visible content is left.
func trimInlines(inlines []content.Node) ([]content.Node, bool) {
	for len(inlines) > 0 && inlines[0].Type == content.TypeText {
		inlines[0].Text = strings.TrimLeft(inlines[0].Text, " \t\n")
		if inlines[0].Text != "" {
			break
		}
		inlines = inlines[1:]
	}
	for len(inlines) > 0 {
		last := &inlines[len(inlines)-1]
		if last.Type == content.TypeHardBreak {
			inlines = inlines[:len(inlines)-1]
			continue
		}
		if last.Type != content.TypeText {
			break
		}
		last.Text = strings.TrimRight(last.Text, " \t\n")
		if last.Text != "" {
			break
		}
		inlines = inlines[:len(inlines)-1]
	}
	return inlines, len(inlines) > 0
}
