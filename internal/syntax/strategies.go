package syntax

import (
	"fmt"
	"strings"

	"github.com/jward/tactic"
	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// --- Patterns ---

type kindPattern[C any] struct{ kinds []string }

// Kind matches nodes whose kind is one of kinds.
func Kind[C any](kinds ...string) pattern.Pattern[C, Node] {
	return kindPattern[C]{kinds: kinds}
}

func (p kindPattern[C]) Match(_ C, n Node) bool {
	k := n.Kind()
	for _, want := range p.kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p kindPattern[C]) String() string {
	return "kind(" + strings.Join(p.kinds, "|") + ")"
}

type namedPattern[C any] struct{}

// Named matches named nodes.
func Named[C any]() pattern.Pattern[C, Node] { return namedPattern[C]{} }

func (namedPattern[C]) Match(_ C, n Node) bool { return n.IsNamed() }
func (namedPattern[C]) String() string         { return "named" }

type textPattern[C any] struct{ text string }

// TextEq matches nodes whose source text is exactly text.
func TextEq[C any](text string) pattern.Pattern[C, Node] {
	return textPattern[C]{text: text}
}

func (p textPattern[C]) Match(_ C, n Node) bool { return n.Text() == p.text }
func (p textPattern[C]) String() string         { return fmt.Sprintf("text(%q)", p.text) }

// --- Strategies ---

// pureStrategy marks a traversal as restartable: it reads the tree and never
// touches the context.
type pureStrategy[C, T, R any] struct {
	tactic.Strategy[C, T, R]
}

func (pureStrategy[C, T, R]) Pure() bool { return true }

func traversal[C any](name string, fn func(Node) []Node) tactic.Strategy[C, Node, Node] {
	return pureStrategy[C, Node, Node]{tactic.Func(name, func(_ C, n Node) seq.Seq[Node] {
		return seq.FromSlice(fn(n))
	})}
}

// Children yields the direct children of a node, anonymous tokens included.
func Children[C any]() tactic.Strategy[C, Node, Node] {
	return traversal[C]("children", func(n Node) []Node { return n.Children(false) })
}

// NamedChildren yields the named direct children of a node.
func NamedChildren[C any]() tactic.Strategy[C, Node, Node] {
	return traversal[C]("named_children", func(n Node) []Node { return n.Children(true) })
}

// Parent yields the parent of a node and fails at the root.
func Parent[C any]() tactic.Strategy[C, Node, Node] {
	return traversal[C]("parent", func(n Node) []Node {
		if p, ok := n.Parent(); ok {
			return []Node{p}
		}
		return nil
	})
}

// Field yields the child stored under a grammar field, such as "name".
func Field[C any](name string) tactic.Strategy[C, Node, Node] {
	return traversal[C]("field_"+name, func(n Node) []Node {
		if c, ok := n.Field(name); ok {
			return []Node{c}
		}
		return nil
	})
}

// Subterms yields a node and all its named descendants in preorder.
func Subterms[C any]() tactic.Strategy[C, Node, Node] {
	return tactic.Rec("subterms", func(self tactic.Strategy[C, Node, Node]) tactic.Strategy[C, Node, Node] {
		return tactic.Or(tactic.Id[C, Node](), tactic.Seq(NamedChildren[C](), self))
	})
}

// Ancestors yields the parent, grandparent and so on up to the root.
func Ancestors[C any]() tactic.Strategy[C, Node, Node] {
	return tactic.Rec("ancestors", func(self tactic.Strategy[C, Node, Node]) tactic.Strategy[C, Node, Node] {
		return tactic.Seq(Parent[C](), tactic.Or(tactic.Id[C, Node](), self))
	})
}

// Find yields the subterms that match p, in preorder.
func Find[C any](p pattern.Pattern[C, Node]) tactic.Strategy[C, Node, Node] {
	return tactic.Where(Subterms[C](), p)
}

// Text maps each node to its source text.
func Text[C, T any](s tactic.Strategy[C, T, Node]) tactic.Strategy[C, T, string] {
	return tactic.Map("text", s, func(_ C, n Node) string { return n.Text() })
}
