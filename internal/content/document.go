// Package content defines the stored rich-text document format written by the
// article editor: a JSON tree of typed nodes carrying optional attributes,
// marks and children. Decoding is tolerant. Fields with the wrong shape are
// dropped instead of failing the whole document, so a single bad node never
// hides the rest of an article.
package content

import (
	"encoding/json"
	"strconv"
)

// Node types produced by the editor.
const (
	TypeDoc            = "doc"
	TypeParagraph      = "paragraph"
	TypeHeading        = "heading"
	TypeBulletList     = "bulletList"
	TypeOrderedList    = "orderedList"
	TypeListItem       = "listItem"
	TypeBlockquote     = "blockquote"
	TypeCodeBlock      = "codeBlock"
	TypeHorizontalRule = "horizontalRule"
	TypeImage          = "image"
	TypeVideo          = "video"
	TypeAudio          = "audio"
	TypeText           = "text"
	TypeHardBreak      = "hardBreak"
)

// Mark types applied to text nodes.
const (
	MarkBold        = "bold"
	MarkItalic      = "italic"
	MarkUnderline   = "underline"
	MarkStrike      = "strike"
	MarkCode        = "code"
	MarkHighlight   = "highlight"
	MarkSubscript   = "subscript"
	MarkSuperscript = "superscript"
	MarkLink        = "link"
)

// Document is the root of a stored article body.
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// Node is any element of the document tree. Which fields are meaningful
// depends on Type: text nodes use Text and Marks, containers use Content,
// media and headings use Attrs.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark is a formatting annotation on a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Empty returns the document with no content.
func Empty() Document {
	return Document{Type: TypeDoc, Content: []Node{}}
}

// UnmarshalJSON decodes a node field by field. Values that are not objects
// decode to the zero Node, and fields of the wrong type are left empty.
func (n *Node) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*n = Node{}
		return nil
	}
	var out Node
	decodeField(fields, "type", &out.Type)
	decodeField(fields, "attrs", &out.Attrs)
	decodeField(fields, "content", &out.Content)
	decodeField(fields, "text", &out.Text)
	decodeField(fields, "marks", &out.Marks)
	*n = out
	return nil
}

// UnmarshalJSON decodes a mark with the same tolerance as Node.
func (m *Mark) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*m = Mark{}
		return nil
	}
	var out Mark
	decodeField(fields, "type", &out.Type)
	decodeField(fields, "attrs", &out.Attrs)
	*m = out
	return nil
}

func decodeField(fields map[string]json.RawMessage, name string, dst any) {
	raw, ok := fields[name]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}

// AttrString returns the string attribute key, or "" when it is absent or
// not a string.
func (n Node) AttrString(key string) string {
	return attrString(n.Attrs, key)
}

// AttrInt returns the integer attribute key. Whole JSON numbers and numeric
// strings are accepted.
func (n Node) AttrInt(key string) (int, bool) {
	switch v := n.Attrs[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	}
	return 0, false
}

// HeadingLevel returns the level of a heading node, clamped to 1..6.
// A missing level means 1.
func (n Node) HeadingLevel() int {
	level, ok := n.AttrInt("level")
	switch {
	case !ok || level < 1:
		return 1
	case level > 6:
		return 6
	}
	return level
}

// AttrString returns the string attribute key of the mark.
func (m Mark) AttrString(key string) string {
	return attrString(m.Attrs, key)
}

func attrString(attrs map[string]any, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}
