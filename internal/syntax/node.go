package syntax

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node is a syntax tree node together with its document.
type Node struct {
	n   *sitter.Node
	doc *Document
}

// Kind returns the grammar type of the node, such as "function_declaration".
func (n Node) Kind() string { return n.n.Type() }

// IsNamed reports whether the node is a named grammar rule rather than an
// anonymous token.
func (n Node) IsNamed() bool { return n.n.IsNamed() }

// Text returns the source text the node spans.
func (n Node) Text() string { return n.n.Content(n.doc.src) }

// Line returns the 1-based start line.
func (n Node) Line() int { return int(n.n.StartPoint().Row) + 1 }

// Column returns the 1-based start column.
func (n Node) Column() int { return int(n.n.StartPoint().Column) + 1 }

// Document returns the document the node belongs to.
func (n Node) Document() *Document { return n.doc }

// Key identifies the node within its document. Two Node values for the same
// syntax node have equal keys.
func (n Node) Key() NodeKey {
	return NodeKey{doc: n.doc, start: n.n.StartByte(), end: n.n.EndByte(), kind: n.n.Type()}
}

// NodeKey is a comparable node identity.
type NodeKey struct {
	doc        *Document
	start, end uint32
	kind       string
}

// Children returns the direct children, named only when named is set.
func (n Node) Children(named bool) []Node {
	var count int
	if named {
		count = int(n.n.NamedChildCount())
	} else {
		count = int(n.n.ChildCount())
	}
	out := make([]Node, 0, count)
	for i := range count {
		var c *sitter.Node
		if named {
			c = n.n.NamedChild(i)
		} else {
			c = n.n.Child(i)
		}
		if c != nil {
			out = append(out, Node{n: c, doc: n.doc})
		}
	}
	return out
}

// Parent returns the parent node, or false at the root.
func (n Node) Parent() (Node, bool) {
	p := n.n.Parent()
	if p == nil {
		return Node{}, false
	}
	return Node{n: p, doc: n.doc}, true
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) (Node, bool) {
	c := n.n.ChildByFieldName(name)
	if c == nil {
		return Node{}, false
	}
	return Node{n: c, doc: n.doc}, true
}

// String returns "kind@line:col".
func (n Node) String() string {
	return fmt.Sprintf("%s@%d:%d", n.Kind(), n.Line(), n.Column())
}

// Summary returns the first line of the node's text, shortened to max runes.
func (n Node) Summary(max int) string {
	text, _, _ := strings.Cut(n.Text(), "\n")
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > max {
		return string(r[:max]) + "..."
	}
	return text
}
