package importer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/rlsouza/teses/internal/content"
)

// EPUBFormat reads EPUB books. Each spine item becomes a section of the
// document, separated by horizontal rules.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Import converts the book. A section that does not open with a heading gets
// one from the NCX table of contents when the book has it.
func (f *EPUBFormat) Import(filename string) (content.Document, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return content.Document{}, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return content.Document{}, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	titles := buildTOCHrefMap(filename, book)
	doc := content.Empty()

	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}
		section, err := ParseHTML(bytes.NewReader(data))
		if err != nil || len(section.Content) == 0 {
			continue
		}

		nodes := section.Content
		if nodes[0].Type != content.TypeHeading {
			if title := sectionTitle(titles, ref.Item.HREF); title != "" {
				heading := content.Node{
					Type:    content.TypeHeading,
					Attrs:   map[string]any{"level": 2},
					Content: []content.Node{textNode(title, nil)},
				}
				nodes = append([]content.Node{heading}, nodes...)
			}
		}
		if len(doc.Content) > 0 {
			doc.Content = append(doc.Content, content.Node{Type: content.TypeHorizontalRule})
		}
		doc.Content = append(doc.Content, nodes...)
	}

	return doc, nil
}

func sectionTitle(titles map[string]string, href string) string {
	if href == "" {
		return ""
	}
	if t, ok := titles[href]; ok {
		return t
	}
	return titles[path.Base(href)]
}

// NCX XML structures for parsing toc.ncx
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// buildTOCHrefMap parses the NCX and maps each target document, by full href
// and by base name, to the first title pointing at it.
func buildTOCHrefMap(filename string, book *epub.Rootfile) map[string]string {
	result := make(map[string]string)

	data, err := findAndReadNCX(filename, book)
	if err != nil {
		return result
	}
	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return result
	}

	add := func(key, title string) {
		if _, exists := result[key]; !exists && title != "" {
			result[key] = title
		}
	}
	var extract func(points []navPoint)
	extract = func(points []navPoint) {
		for _, np := range points {
			href, _, _ := strings.Cut(np.Content.Src, "#")
			title := strings.TrimSpace(np.Label.Text)
			add(href, title)
			add(path.Base(href), title)
			extract(np.Children)
		}
	}
	extract(toc.NavMap.NavPoints)

	return result
}

func findAndReadNCX(filename string, book *epub.Rootfile) ([]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		return nil, fmt.Errorf("no NCX file found in EPUB")
	}

	for _, f := range zr.File {
		if f.Name == ncxPath || strings.HasSuffix(f.Name, "/"+ncxPath) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}

	return nil, fmt.Errorf("NCX file %s not found in archive", ncxPath)
}
