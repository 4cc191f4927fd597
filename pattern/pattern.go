// Package pattern provides side-effect-free predicates over a context and a
// value. Patterns guard and filter strategy evaluation, so Match must not
// mutate the context: a guard may be evaluated on a branch that is later
// abandoned.
//
// Pattern is an open interface. Domain packages add their own patterns (over
// syntax nodes, terms, typed values) by implementing Match.
package pattern

import (
	"fmt"
	"strings"

	"github.com/jward/tactic/tuple"
)

// Pattern is a pure predicate over a context and a value. Match is total: a
// value outside the shape a pattern expects is a non-match, never a panic.
type Pattern[C, T any] interface {
	Match(ctx C, v T) bool
}

// Func adapts a plain function to a Pattern.
type Func[C, T any] func(ctx C, v T) bool

// Match calls f.
func (f Func[C, T]) Match(ctx C, v T) bool { return f(ctx, v) }

func (f Func[C, T]) String() string { return "<func>" }

// All matches every value. Its zero value is ready to use and freely shared.
type All[C, T any] struct{}

// Match returns true.
func (All[C, T]) Match(C, T) bool { return true }

func (All[C, T]) String() string { return "_" }

// Tuple2 matches a two-component value whose first component matches First
// and whose second matches Second. It accepts a tuple.Pair[T1, T2] or a
// non-nil *tuple.Pair[T1, T2]; any other value is a non-match. Second is not
// evaluated when First does not match.
type Tuple2[C, T1, T2 any] struct {
	First  Pattern[C, T1]
	Second Pattern[C, T2]
}

// NewTuple2 returns a Tuple2 over p1 and p2.
func NewTuple2[C, T1, T2 any](p1 Pattern[C, T1], p2 Pattern[C, T2]) Tuple2[C, T1, T2] {
	return Tuple2[C, T1, T2]{First: p1, Second: p2}
}

// Match implements Pattern[C, any].
func (p Tuple2[C, T1, T2]) Match(ctx C, v any) bool {
	var pair tuple.Pair[T1, T2]
	switch t := v.(type) {
	case tuple.Pair[T1, T2]:
		pair = t
	case *tuple.Pair[T1, T2]:
		if t == nil {
			return false
		}
		pair = *t
	default:
		return false
	}
	return p.First.Match(ctx, pair.First) && p.Second.Match(ctx, pair.Second)
}

func (p Tuple2[C, T1, T2]) String() string {
	return fmt.Sprintf("(%s, %s)", str(p.First), str(p.Second))
}

// Tuple3 is the three-component counterpart of Tuple2, matching
// tuple.Triple[T1, T2, T3] values left to right.
type Tuple3[C, T1, T2, T3 any] struct {
	First  Pattern[C, T1]
	Second Pattern[C, T2]
	Third  Pattern[C, T3]
}

// NewTuple3 returns a Tuple3 over p1, p2 and p3.
func NewTuple3[C, T1, T2, T3 any](p1 Pattern[C, T1], p2 Pattern[C, T2], p3 Pattern[C, T3]) Tuple3[C, T1, T2, T3] {
	return Tuple3[C, T1, T2, T3]{First: p1, Second: p2, Third: p3}
}

// Match implements Pattern[C, any].
func (p Tuple3[C, T1, T2, T3]) Match(ctx C, v any) bool {
	var tr tuple.Triple[T1, T2, T3]
	switch t := v.(type) {
	case tuple.Triple[T1, T2, T3]:
		tr = t
	case *tuple.Triple[T1, T2, T3]:
		if t == nil {
			return false
		}
		tr = *t
	default:
		return false
	}
	return p.First.Match(ctx, tr.First) &&
		p.Second.Match(ctx, tr.Second) &&
		p.Third.Match(ctx, tr.Third)
}

func (p Tuple3[C, T1, T2, T3]) String() string {
	return fmt.Sprintf("(%s, %s, %s)", str(p.First), str(p.Second), str(p.Third))
}

type and[C, T any] []Pattern[C, T]

// And matches when every pattern matches. Patterns are evaluated in order and
// evaluation stops at the first non-match. And() matches everything.
func And[C, T any](ps ...Pattern[C, T]) Pattern[C, T] {
	return and[C, T](ps)
}

func (ps and[C, T]) Match(ctx C, v T) bool {
	for _, p := range ps {
		if !p.Match(ctx, v) {
			return false
		}
	}
	return true
}

func (ps and[C, T]) String() string { return join(ps, " & ") }

type or[C, T any] []Pattern[C, T]

// Or matches when some pattern matches, trying them in order. Or() matches
// nothing.
func Or[C, T any](ps ...Pattern[C, T]) Pattern[C, T] {
	return or[C, T](ps)
}

func (ps or[C, T]) Match(ctx C, v T) bool {
	for _, p := range ps {
		if p.Match(ctx, v) {
			return true
		}
	}
	return false
}

func (ps or[C, T]) String() string { return join(ps, " | ") }

type not[C, T any] struct{ p Pattern[C, T] }

// Not matches when p does not.
func Not[C, T any](p Pattern[C, T]) Pattern[C, T] { return not[C, T]{p} }

func (n not[C, T]) Match(ctx C, v T) bool { return !n.p.Match(ctx, v) }

func (n not[C, T]) String() string { return "!" + str(n.p) }

type eq[C any, T comparable] struct{ want T }

// Eq matches values equal to want.
func Eq[C any, T comparable](want T) Pattern[C, T] { return eq[C, T]{want} }

func (e eq[C, T]) Match(_ C, v T) bool { return v == e.want }

func (e eq[C, T]) String() string { return fmt.Sprintf("%v", e.want) }

type dyn[C, T any] struct{ p Pattern[C, T] }

// Dynamic lifts p to a pattern over any value. Values that are not a T are a
// non-match. It lets typed patterns serve as components of Tuple2 and Tuple3
// over heterogeneous inputs.
func Dynamic[C, T any](p Pattern[C, T]) Pattern[C, any] { return dyn[C, T]{p} }

func (d dyn[C, T]) Match(ctx C, v any) bool {
	t, ok := v.(T)
	return ok && d.p.Match(ctx, t)
}

func (d dyn[C, T]) String() string { return str(d.p) }

// String returns the printable form of p, used in strategy diagnostics.
func String[C, T any](p Pattern[C, T]) string { return str(p) }

func str(p any) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}

func join[C, T any](ps []Pattern[C, T], sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = str(p)
	}
	return "(" + strings.Join(parts, sep) + ")"
}
