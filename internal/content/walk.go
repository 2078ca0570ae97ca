package content

// Walk visits every node of doc in pre-order, descending into each node's
// Content in array order. Returning false from fn skips that node's children.
// fn receives each node by value. Its Content and Attrs still share storage
// with doc and must not be modified.
func Walk(doc Document, fn func(n Node, depth int) bool) {
	for _, n := range doc.Content {
		walk(n, 0, fn)
	}
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Content {
		walk(c, depth+1, fn)
	}
}

// Images returns the src of every image node in pre-order traversal order,
// duplicates included. Images with an empty src are left out, matching the
// renderer, which drops them.
func Images(doc Document) []string {
	images := []string{}
	Walk(doc, func(n Node, _ int) bool {
		if src, ok := imageSource(n); ok {
			images = append(images, src)
		}
		return true
	})
	return images
}

// ImageCount returns how many indexable images n and its descendants hold.
func (n Node) ImageCount() int {
	count := 0
	walk(n, 0, func(c Node, _ int) bool {
		if _, ok := imageSource(c); ok {
			count++
		}
		return true
	})
	return count
}

func imageSource(n Node) (string, bool) {
	if n.Type != TypeImage {
		return "", false
	}
	src := n.AttrString("src")
	return src, src != ""
}
