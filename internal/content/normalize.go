package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// ErrNoContent is returned by Parse when the value decodes but carries no
// content array.
var ErrNoContent = errors.New("document has no content array")

// Parse decodes a stored document. Unlike Normalize it reports why the input
// was rejected, which importers surface to the author.
func Parse(data []byte) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	raw, ok := fields["content"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Document{}, ErrNoContent
	}
	var nodes []Node
	if err := json.Unmarshal(raw, &nodes); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return Document{Type: TypeDoc, Content: nodes}, nil
}

// Normalizer turns whatever the persistence layer hands back into a Document.
// The zero value is ready to use and logs through slog.Default.
type Normalizer struct {
	Logger *slog.Logger
}

// Normalize converts value with the default Normalizer.
func Normalize(value any) Document {
	return Normalizer{}.Normalize(value)
}

// Normalize accepts a JSON string or byte slice, an already decoded object
// (map[string]any, as produced by encoding/json or yaml.v3, whose content is
// any slice), or a Document.
// It never fails: anything it cannot read becomes the empty document.
func (n Normalizer) Normalize(value any) Document {
	switch v := value.(type) {
	case Document:
		return v.normalized()
	case *Document:
		if v == nil {
			return Empty()
		}
		return v.normalized()
	case string:
		return n.parse([]byte(v))
	case []byte:
		return n.parse(v)
	case json.RawMessage:
		return n.parse(v)
	case map[string]any:
		return n.fromObject(v)
	}
	return Empty()
}

func (n Normalizer) parse(data []byte) Document {
	doc, err := Parse(data)
	if err != nil {
		n.logger().Warn("discarding unreadable document", "error", err, "bytes", len(data))
		return Empty()
	}
	return doc
}

// fromObject accepts any slice as content. Nodes are converted one at a
// time, so a node that cannot be encoded becomes the zero Node and the rest
// of the document survives.
func (n Normalizer) fromObject(obj map[string]any) Document {
	if nodes, ok := obj["content"].([]Node); ok {
		return Document{Content: nodes}.normalized()
	}
	rv := reflect.ValueOf(obj["content"])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Empty()
	}
	nodes := make([]Node, 0, rv.Len())
	for i := range rv.Len() {
		nodes = append(nodes, n.node(rv.Index(i).Interface()))
	}
	return Document{Type: TypeDoc, Content: nodes}
}

func (n Normalizer) node(v any) Node {
	if node, ok := v.(Node); ok {
		return node
	}
	data, err := json.Marshal(v)
	if err != nil {
		n.logger().Warn("skipping unencodable node", "error", err)
		return Node{}
	}
	var node Node
	_ = json.Unmarshal(data, &node)
	return node
}

func (n Normalizer) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

func (d Document) normalized() Document {
	if d.Content == nil {
		return Empty()
	}
	return Document{Type: TypeDoc, Content: d.Content}
}
