package structtree

import "strings"

// Node is an element in a PDF logical structure tree (the "tag tree").
type Node struct {
	Type     string            // Structure type, e.g. "Figure", "H1", "P", "Document"
	Alt      string            // Alternative text, if the element carries /Alt
	Attrs    map[string]string // Other string-valued element attributes (Lang, ActualText, ...)
	Children []*Node           // Child elements in reading order, owned by this node
}

// Metadata is a read-only snapshot of a document's info dictionary.
type Metadata map[string]string

// Info dictionary keys used by the metadata check.
const (
	KeyTitle  = "Title"
	KeyAuthor = "Author"
)

// Has reports whether key is present with a non-empty value.
func (m Metadata) Has(key string) bool {
	return strings.TrimSpace(m[key]) != ""
}

// Walk visits n and all descendants in pre-order (reading order).
// Traversal stops early if fn returns false.
func Walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Figures collects every figure element under root in reading order.
func Figures(root *Node) []*Node {
	var figs []*Node
	Walk(root, func(n *Node) bool {
		if n.Type == "Figure" {
			figs = append(figs, n)
		}
		return true
	})
	return figs
}

// HasAlt reports whether the node carries non-empty alternative text.
func (n *Node) HasAlt() bool {
	return strings.TrimSpace(n.Alt) != ""
}

// HeadingLevels extracts the heading levels (1..6) under root in
// reading order, skipping non-heading elements.
func HeadingLevels(root *Node) []int {
	var levels []int
	Walk(root, func(n *Node) bool {
		if lvl, ok := HeadingLevel(n.Type); ok {
			levels = append(levels, lvl)
		}
		return true
	})
	return levels
}

// HeadingLevel maps a structure type to its heading level.
// Returns false for anything that is not H1..H6.
func HeadingLevel(typ string) (int, bool) {
	if len(typ) != 2 || typ[0] != 'H' {
		return 0, false
	}
	if typ[1] < '1' || typ[1] > '6' {
		return 0, false
	}
	return int(typ[1] - '0'), true
}
