package tactic

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jward/tactic/seq"
)

// defDecl is the Decl of a parameterised strategy definition. A definition
// prints as its name and has the arity of its parameter list.
type defDecl struct {
	name   string
	params []string
}

func (d defDecl) Name() string              { return d.name }
func (d defDecl) Arity() int                { return len(d.params) }
func (d defDecl) Precedence() int           { return precAtom }
func (d defDecl) IsAtom() bool              { return true }
func (d defDecl) Print(sb *strings.Builder) { sb.WriteString(d.name) }
func (d defDecl) String() string            { return d.name }

func (d defDecl) ParamName(i int) string {
	if i >= 0 && i < len(d.params) {
		return d.params[i]
	}
	return fmt.Sprintf("arg%d", i)
}

// checkArgs validates the number of dynamic arguments.
func (d defDecl) checkArgs(args []any) error {
	if len(args) != len(d.params) {
		return fmt.Errorf("apply %s: %w: want %d argument(s), got %d", d.name, ErrArityMismatch, len(d.params), len(args))
	}
	return nil
}

// arg converts dynamic argument i to A.
func arg[A any](d defDecl, args []any, i int) (A, error) {
	a, ok := args[i].(A)
	if !ok {
		var zero A
		return zero, fmt.Errorf("apply %s: %w: parameter %s wants %s, got %T",
			d.name, ErrArgumentType, d.ParamName(i), reflect.TypeFor[A](), args[i])
	}
	return a, nil
}

// appliedStrategy is a definition applied to its arguments.
type appliedStrategy[C, T, R any] struct {
	info
	body Strategy[C, T, R]
}

func (a appliedStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(a, ctx, input, func() seq.Seq[R] { return a.body.Eval(ctx, input) })
}

func apply[C, T, R any](d defDecl, body Strategy[C, T, R], args ...any) Strategy[C, T, R] {
	return appliedStrategy[C, T, R]{info: applied(d.name, IsPure(body), args...), body: body}
}

// call turns a failed dynamic application into a strategy that faults, so the
// misuse surfaces during search instead of reading as "no results".
func call[C, T, R any](d defDecl, s Strategy[C, T, R], err error) Strategy[C, T, R] {
	if err != nil {
		return Fault[C, T, R](d.name, err)
	}
	return s
}

// Def1 is a strategy definition with one parameter, such as a strategy
// parameterised by another strategy.
type Def1[C, A, T, R any] struct {
	defDecl
	body func(a A) Strategy[C, T, R]
}

// NewDef1 declares the definition name(param) with the given body.
func NewDef1[C, A, T, R any](name, param string, body func(a A) Strategy[C, T, R]) *Def1[C, A, T, R] {
	return &Def1[C, A, T, R]{defDecl: defDecl{name: name, params: []string{param}}, body: body}
}

// Apply returns the definition applied to a.
func (d *Def1[C, A, T, R]) Apply(a A) Strategy[C, T, R] {
	return apply(d.defDecl, d.body(a), a)
}

// ApplyArgs applies the definition to dynamically typed arguments.
func (d *Def1[C, A, T, R]) ApplyArgs(args ...any) (Strategy[C, T, R], error) {
	if err := d.checkArgs(args); err != nil {
		return nil, err
	}
	a, err := arg[A](d.defDecl, args, 0)
	if err != nil {
		return nil, err
	}
	return d.Apply(a), nil
}

// Call is ApplyArgs with the error deferred into the strategy: applying to
// the wrong arguments yields a strategy that faults when evaluated.
func (d *Def1[C, A, T, R]) Call(args ...any) Strategy[C, T, R] {
	s, err := d.ApplyArgs(args...)
	return call(d.defDecl, s, err)
}

// Def2 is a strategy definition with two parameters.
type Def2[C, A, B, T, R any] struct {
	defDecl
	body func(a A, b B) Strategy[C, T, R]
}

// NewDef2 declares the definition name(p1, p2) with the given body.
func NewDef2[C, A, B, T, R any](name, p1, p2 string, body func(a A, b B) Strategy[C, T, R]) *Def2[C, A, B, T, R] {
	return &Def2[C, A, B, T, R]{defDecl: defDecl{name: name, params: []string{p1, p2}}, body: body}
}

// Apply returns the definition applied to a and b.
func (d *Def2[C, A, B, T, R]) Apply(a A, b B) Strategy[C, T, R] {
	return apply(d.defDecl, d.body(a, b), a, b)
}

// ApplyArgs applies the definition to dynamically typed arguments.
func (d *Def2[C, A, B, T, R]) ApplyArgs(args ...any) (Strategy[C, T, R], error) {
	if err := d.checkArgs(args); err != nil {
		return nil, err
	}
	a, err := arg[A](d.defDecl, args, 0)
	if err != nil {
		return nil, err
	}
	b, err := arg[B](d.defDecl, args, 1)
	if err != nil {
		return nil, err
	}
	return d.Apply(a, b), nil
}

// Call is ApplyArgs with the error deferred into the strategy.
func (d *Def2[C, A, B, T, R]) Call(args ...any) Strategy[C, T, R] {
	s, err := d.ApplyArgs(args...)
	return call(d.defDecl, s, err)
}

// Def3 is a strategy definition with three parameters.
type Def3[C, A, B, D, T, R any] struct {
	defDecl
	body func(a A, b B, c D) Strategy[C, T, R]
}

// NewDef3 declares the definition name(p1, p2, p3) with the given body.
func NewDef3[C, A, B, D, T, R any](name, p1, p2, p3 string, body func(a A, b B, c D) Strategy[C, T, R]) *Def3[C, A, B, D, T, R] {
	return &Def3[C, A, B, D, T, R]{defDecl: defDecl{name: name, params: []string{p1, p2, p3}}, body: body}
}

// Apply returns the definition applied to a, b and c.
func (d *Def3[C, A, B, D, T, R]) Apply(a A, b B, c D) Strategy[C, T, R] {
	return apply(d.defDecl, d.body(a, b, c), a, b, c)
}

// ApplyArgs applies the definition to dynamically typed arguments.
func (d *Def3[C, A, B, D, T, R]) ApplyArgs(args ...any) (Strategy[C, T, R], error) {
	if err := d.checkArgs(args); err != nil {
		return nil, err
	}
	a, err := arg[A](d.defDecl, args, 0)
	if err != nil {
		return nil, err
	}
	b, err := arg[B](d.defDecl, args, 1)
	if err != nil {
		return nil, err
	}
	c, err := arg[D](d.defDecl, args, 2)
	if err != nil {
		return nil, err
	}
	return d.Apply(a, b, c), nil
}

// Call is ApplyArgs with the error deferred into the strategy.
func (d *Def3[C, A, B, D, T, R]) Call(args ...any) Strategy[C, T, R] {
	s, err := d.ApplyArgs(args...)
	return call(d.defDecl, s, err)
}
