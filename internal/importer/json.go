package importer

import (
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/rlsouza/teses/internal/content"
)

// JSONFormat reads stored documents. Comments and trailing commas are
// accepted so fixtures can be written by hand.
type JSONFormat struct{}

func init() {
	Register(&JSONFormat{})
}

func (f *JSONFormat) Name() string         { return "JSON" }
func (f *JSONFormat) Extensions() []string { return []string{".json", ".jsonc"} }

func (f *JSONFormat) Import(filename string) (content.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return content.Document{}, err
	}
	doc, err := content.Parse(jsonc.ToJSON(data))
	if err != nil {
		return content.Document{}, fmt.Errorf("failed to import %s: %w", filename, err)
	}
	return doc, nil
}
