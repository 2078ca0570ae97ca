package content

import "strings"

// PlainText concatenates the text of n and its descendants. Hard breaks
// become newlines.
func (n Node) PlainText() string {
	var sb strings.Builder
	writeText(&sb, n)
	return sb.String()
}

func writeText(sb *strings.Builder, n Node) {
	switch n.Type {
	case TypeText:
		sb.WriteString(n.Text)
		return
	case TypeHardBreak:
		sb.WriteString("\n")
		return
	}
	for _, c := range n.Content {
		writeText(sb, c)
	}
}

// Text returns the text of every top-level block, one block per line.
func Text(doc Document) string {
	lines := make([]string, 0, len(doc.Content))
	for _, n := range doc.Content {
		if t := n.PlainText(); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// WordCount counts whitespace separated words in doc.
func WordCount(doc Document) int {
	return len(strings.Fields(Text(doc)))
}
