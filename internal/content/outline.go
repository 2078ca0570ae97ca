package content

import "strconv"

// Heading is a single entry in a document outline.
type Heading struct {
	Title  string
	Level  int // 1-6
	Block  int // index into Document.Content
	Anchor string
}

// Outline lists the top-level headings of doc in order. Anchors are unique
// within the document and match the ids the HTML renderer emits.
func Outline(doc Document) []Heading {
	var entries []Heading
	anchors := NewAnchors()
	for i, n := range doc.Content {
		if n.Type != TypeHeading {
			continue
		}
		title := n.PlainText()
		entries = append(entries, Heading{
			Title:  title,
			Level:  n.HeadingLevel(),
			Block:  i,
			Anchor: anchors.Next(title),
		})
	}
	return entries
}

// Anchors hands out unique heading anchors for one document.
type Anchors struct {
	seen map[string]int
}

// NewAnchors returns an empty anchor set.
func NewAnchors() *Anchors {
	return &Anchors{seen: make(map[string]int)}
}

// Next returns the anchor for a heading titled title. Repeated titles get
// "-2", "-3" suffixes; titles without any usable character become "section".
func (a *Anchors) Next(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "section"
	}
	a.seen[base]++
	if n := a.seen[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}
