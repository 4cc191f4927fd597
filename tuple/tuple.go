// Package tuple defines the two- and three-component values that structural
// patterns decompose.
package tuple

import "fmt"

// Pair is a two-component value.
type Pair[A, B any] struct {
	First  A
	Second B
}

// NewPair returns the pair (a, b).
func NewPair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

// Unpack returns both components.
func (p Pair[A, B]) Unpack() (A, B) { return p.First, p.Second }

func (p Pair[A, B]) String() string {
	return fmt.Sprintf("(%v, %v)", p.First, p.Second)
}

// Triple is a three-component value.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// NewTriple returns the triple (a, b, c).
func NewTriple[A, B, C any](a A, b B, c C) Triple[A, B, C] {
	return Triple[A, B, C]{First: a, Second: b, Third: c}
}

// Unpack returns all three components.
func (t Triple[A, B, C]) Unpack() (A, B, C) { return t.First, t.Second, t.Third }

func (t Triple[A, B, C]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", t.First, t.Second, t.Third)
}
