package tactic

import (
	"fmt"
	"strings"

	"github.com/jward/tactic/seq"
)

// Decl is the declaration part of a strategy: its name, declared arity and
// printable form. Declarations are used for diagnostics and tracing only and
// never change evaluation.
type Decl interface {
	// Name returns the declared name, such as "seq" or "or".
	Name() string
	// Arity returns the number of strategy parameters, excluding the input.
	// It is declared, not derived from how the strategy was built.
	Arity() int
	// ParamName returns the name of parameter i.
	ParamName(i int) string
	// Precedence returns the binding strength used by the printer. Atoms
	// have precedence 0; larger values bind more loosely.
	Precedence() int
	// IsAtom reports whether the printed form never needs parentheses.
	IsAtom() bool
	// Print appends the printed form to sb.
	Print(sb *strings.Builder)
}

// Strategy is a named unit of search. Eval returns the lazy sequence of
// outputs for input under ctx; an empty sequence means the strategy failed
// on that input, a faulted sequence means evaluation is broken.
//
// Eval must not do any work before the returned sequence is first pulled.
type Strategy[C, T, R any] interface {
	Decl
	Eval(ctx C, input T) seq.Seq[R]
}

// Pure is implemented by strategies that know whether they are restartable:
// a pure strategy does not touch the context, so calling Eval again with the
// same arguments produces the same outputs.
type Pure interface {
	Pure() bool
}

// IsPure reports whether d declares itself pure. Strategies that do not
// implement Pure are assumed effectful.
func IsPure(d Decl) bool {
	p, ok := d.(Pure)
	return ok && p.Pure()
}

// Print returns the printed form of d.
func Print(d Decl) string {
	var sb strings.Builder
	d.Print(&sb)
	return sb.String()
}

// Declare returns a Decl for a user-defined strategy type. Embed it to satisfy
// the Decl part of Strategy:
//
//	type lookup struct {
//		tactic.Decl
//	}
//
//	var s = lookup{tactic.Declare("lookup")}
func Declare(name string, params ...string) Decl {
	return info{name: name, params: params, arity: len(params)}
}

// Precedences of the infix forms. Larger binds more loosely.
const (
	precAtom = 0
	precSeq  = 1
	precOr   = 2
	precIf   = 3
)

type assoc uint8

const (
	assocNone assoc = iota
	assocLeft
	assocRight
)

// info is the Decl shared by every strategy in this package.
type info struct {
	name   string
	arity  int
	params []string
	prec   int
	pure   bool
	print  func(sb *strings.Builder)
}

func (i info) Name() string    { return i.name }
func (i info) Arity() int      { return i.arity }
func (i info) Precedence() int { return i.prec }
func (i info) IsAtom() bool    { return i.prec == precAtom }
func (i info) Pure() bool      { return i.pure }
func (i info) String() string  { return Print(i) }

func (i info) ParamName(n int) string {
	if n >= 0 && n < len(i.params) {
		return i.params[n]
	}
	return fmt.Sprintf("arg%d", n)
}

func (i info) Print(sb *strings.Builder) {
	if i.print != nil {
		i.print(sb)
		return
	}
	sb.WriteString(i.name)
}

// atom returns the info of a named leaf.
func atom(name string, pure bool) info {
	return info{name: name, pure: pure}
}

// applied returns the info of a named strategy applied to arguments. It
// prints as name(arg, ...) and has arity 0.
func applied(name string, pure bool, args ...any) info {
	return info{
		name: name,
		pure: pure,
		print: func(sb *strings.Builder) {
			sb.WriteString(name)
			sb.WriteByte('(')
			for i, a := range args {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeArg(sb, a)
			}
			sb.WriteByte(')')
		},
	}
}

// infix returns the info of a binary operator. sep is printed between the
// operands, such as "; " or " <+ ".
func infix(name, sep string, prec int, a assoc, pure bool, left, right Decl) info {
	return info{
		name: name,
		prec: prec,
		pure: pure,
		print: func(sb *strings.Builder) {
			writeLeft(sb, left, prec, a)
			sb.WriteString(sep)
			writeRight(sb, right, prec, a)
		},
	}
}

// rawArg is an application argument printed verbatim.
type rawArg string

func (r rawArg) String() string { return string(r) }

func writeArg(sb *strings.Builder, a any) {
	switch v := a.(type) {
	case Decl:
		v.Print(sb)
	case fmt.Stringer:
		sb.WriteString(v.String())
	case string:
		fmt.Fprintf(sb, "%q", v)
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}

// writeLeft prints the left operand of an infix operator with precedence
// prec, parenthesising it when it binds more loosely, or equally loosely
// under right associativity.
func writeLeft(sb *strings.Builder, d Decl, prec int, a assoc) {
	p := d.Precedence()
	writeParen(sb, d, p > prec || (p == prec && a != assocLeft))
}

// writeRight mirrors writeLeft for the right operand.
func writeRight(sb *strings.Builder, d Decl, prec int, a assoc) {
	p := d.Precedence()
	writeParen(sb, d, p > prec || (p == prec && a != assocRight))
}

// writeMiddle prints an operand enclosed by keywords, such as the branches of
// a guarded choice.
func writeMiddle(sb *strings.Builder, d Decl, prec int) {
	writeParen(sb, d, d.Precedence() > prec)
}

func writeParen(sb *strings.Builder, d Decl, paren bool) {
	if paren && !d.IsAtom() {
		sb.WriteByte('(')
		d.Print(sb)
		sb.WriteByte(')')
		return
	}
	d.Print(sb)
}

// allPure reports whether every declaration is pure.
func allPure(ds ...Decl) bool {
	for _, d := range ds {
		if !IsPure(d) {
			return false
		}
	}
	return true
}
