package tactic

import (
	"strings"
	"sync"

	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// Context mutation: no combinator in this file mutates the context itself.
// Mutations come from the leaves they run (Func, Accept and user strategies)
// and stay in place when a branch is abandoned or backtracked over. Callers
// that need rollback configure it on the Driver.

// --- Sequential composition ---

type seqStrategy[C, T, M, R any] struct {
	info
	s1 Strategy[C, T, M]
	s2 Strategy[C, M, R]
}

// Seq returns s1; s2. For each output of s1, in order, it yields all outputs
// of s2 applied to that output. When s1 fails, s2 is never evaluated.
func Seq[C, T, M, R any](s1 Strategy[C, T, M], s2 Strategy[C, M, R]) Strategy[C, T, R] {
	return seqStrategy[C, T, M, R]{
		info: infix("seq", "; ", precSeq, assocLeft, allPure(s1, s2), s1, s2),
		s1:   s1,
		s2:   s2,
	}
}

func (s seqStrategy[C, T, M, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(s, ctx, input, func() seq.Seq[R] {
		return seq.FlatMap(s.s1.Eval(ctx, input), func(m M) seq.Seq[R] {
			return s.s2.Eval(ctx, m)
		})
	})
}

// Pipeline composes same-typed strategies left to right: Pipeline(a, b, c)
// is (a; b); c. Pipeline() is Id.
func Pipeline[C, T any](ss ...Strategy[C, T, T]) Strategy[C, T, T] {
	if len(ss) == 0 {
		return Id[C, T]()
	}
	acc := ss[0]
	for _, s := range ss[1:] {
		acc = Seq(acc, s)
	}
	return acc
}

// --- Choice ---

type orStrategy[C, T, R any] struct {
	info
	s1, s2 Strategy[C, T, R]
}

// Or returns s1 <+ s2: all outputs of s1 followed by all outputs of s2. s2 is
// not evaluated until the consumer pulls past the last output of s1.
func Or[C, T, R any](s1, s2 Strategy[C, T, R]) Strategy[C, T, R] {
	return orStrategy[C, T, R]{
		info: infix("or", " <+ ", precOr, assocRight, allPure(s1, s2), s1, s2),
		s1:   s1,
		s2:   s2,
	}
}

func (s orStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(s, ctx, input, func() seq.Seq[R] {
		return seq.Concat(
			s.s1.Eval(ctx, input),
			seq.Defer(func() seq.Seq[R] { return s.s2.Eval(ctx, input) }),
		)
	})
}

// Choice folds Or over ss from the right. Choice() is Fail.
func Choice[C, T, R any](ss ...Strategy[C, T, R]) Strategy[C, T, R] {
	if len(ss) == 0 {
		return Fail[C, T, R]()
	}
	acc := ss[len(ss)-1]
	for i := len(ss) - 2; i >= 0; i-- {
		acc = Or(ss[i], acc)
	}
	return acc
}

// --- Conjunction ---

type andStrategy[C, T, R any] struct {
	info
	s1, s2 Strategy[C, T, R]
}

// And yields the outputs of s1 followed by the outputs of s2, but only when
// both produce at least one output. Both strategies are evaluated on first
// pull, s1 first.
func And[C, T, R any](s1, s2 Strategy[C, T, R]) Strategy[C, T, R] {
	return andStrategy[C, T, R]{
		info: applied("and", allPure(s1, s2), s1, s2),
		s1:   s1,
		s2:   s2,
	}
}

func (s andStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(s, ctx, input, func() seq.Seq[R] {
		a := s.s1.Eval(ctx, input)
		if !a.Next() {
			return seq.Fault[R](a.Err())
		}
		b := s.s2.Eval(ctx, input)
		if !b.Next() {
			return seq.Fault[R](b.Err())
		}
		return seq.Concat(seq.Resume(a), seq.Resume(b))
	})
}

// --- Guarded choice ---

type ifStrategy[C, T, R any] struct {
	info
	p      pattern.Pattern[C, T]
	s1, s2 Strategy[C, T, R]
}

// If returns "if p then s1 else s2". The guard is matched once, when the
// result is first pulled, and only the selected branch is evaluated.
func If[C, T, R any](p pattern.Pattern[C, T], s1, s2 Strategy[C, T, R]) Strategy[C, T, R] {
	i := info{name: "if", prec: precIf, pure: allPure(s1, s2)}
	guard := pattern.String(p)
	i.print = func(sb *strings.Builder) {
		sb.WriteString("if " + guard + " then ")
		writeMiddle(sb, s1, precIf)
		sb.WriteString(" else ")
		writeMiddle(sb, s2, precIf)
	}
	return ifStrategy[C, T, R]{info: i, p: p, s1: s1, s2: s2}
}

func (s ifStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(s, ctx, input, func() seq.Seq[R] {
		if s.p.Match(ctx, input) {
			return s.s1.Eval(ctx, input)
		}
		return s.s2.Eval(ctx, input)
	})
}

type glcStrategy[C, T, M, R any] struct {
	info
	cond      Strategy[C, T, M]
	onSuccess Strategy[C, M, R]
	onFailure Strategy[C, T, R]
}

// Glc is guarded left choice, printed "cond < onSuccess + onFailure". When
// cond produces outputs, Glc yields onSuccess applied to each of them;
// otherwise it yields onFailure applied to the input. A fault of cond is not
// a failure and does not select onFailure.
func Glc[C, T, M, R any](cond Strategy[C, T, M], onSuccess Strategy[C, M, R], onFailure Strategy[C, T, R]) Strategy[C, T, R] {
	i := info{name: "glc", prec: precIf, pure: allPure(cond, onSuccess, onFailure)}
	i.print = func(sb *strings.Builder) {
		writeMiddle(sb, cond, precIf-1)
		sb.WriteString(" < ")
		writeMiddle(sb, onSuccess, precIf-1)
		sb.WriteString(" + ")
		writeMiddle(sb, onFailure, precIf-1)
	}
	return glcStrategy[C, T, M, R]{info: i, cond: cond, onSuccess: onSuccess, onFailure: onFailure}
}

func (s glcStrategy[C, T, M, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(s, ctx, input, func() seq.Seq[R] {
		c := s.cond.Eval(ctx, input)
		if !c.Next() {
			if err := c.Err(); err != nil {
				return seq.Fault[R](err)
			}
			return s.onFailure.Eval(ctx, input)
		}
		return seq.FlatMap(seq.Resume(c), func(m M) seq.Seq[R] {
			return s.onSuccess.Eval(ctx, m)
		})
	})
}

// Try yields the outputs of s, or the input itself when s fails.
func Try[C, T any](s Strategy[C, T, T]) Strategy[C, T, T] {
	g := Glc(s, Id[C, T](), Id[C, T]()).(glcStrategy[C, T, T, T])
	g.info = applied("try", IsPure(s), s)
	return g
}

// --- Repetition ---

type repeatStrategy[C, T any] struct {
	info
	s    Strategy[C, T, T]
	eval func(r repeatStrategy[C, T], ctx C, input T) seq.Seq[T]
}

func (r repeatStrategy[C, T]) Eval(ctx C, input T) seq.Seq[T] {
	return evaluate(r, ctx, input, func() seq.Seq[T] { return r.eval(r, ctx, input) })
}

// Repeat feeds every output of s back into s and yields all of them: the
// closure of s over the input, in depth-first order. A branch ends when s
// yields nothing for it. Repeat does not yield the input itself and does not
// bound the search; bound consumption with Limit or the Driver.
func Repeat[C, T any](s Strategy[C, T, T]) Strategy[C, T, T] {
	return repeatStrategy[C, T]{info: applied("repeat", IsPure(s), s), s: s, eval: closure[C, T]}
}

func closure[C, T any](r repeatStrategy[C, T], ctx C, input T) seq.Seq[T] {
	stack := []seq.Seq[T]{r.s.Eval(ctx, input)}
	return seq.FromFunc(func() (T, bool, error) {
		var zero T
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.Next() {
				v := top.Current()
				stack = append(stack, evalLazy(r.s, ctx, v))
				return v, true, nil
			}
			if err := top.Err(); err != nil {
				return zero, false, err
			}
			stack = stack[:len(stack)-1]
		}
		return zero, false, nil
	})
}

// Saturate applies s repeatedly and yields the values on which s fails: the
// normal forms reachable from the input. The input itself is yielded when s
// fails on it. Values are explored depth-first.
func Saturate[C, T any](s Strategy[C, T, T]) Strategy[C, T, T] {
	return repeatStrategy[C, T]{info: applied("saturate", IsPure(s), s), s: s, eval: normalForms[C, T](nil)}
}

// FixSet is Saturate over comparable values that expands each value at most
// once and yields each normal form once. It terminates whenever the set of
// values reachable from the input is finite, including when s cycles.
func FixSet[C any, T comparable](s Strategy[C, T, T]) Strategy[C, T, T] {
	visit := func() func(T) bool {
		seen := make(map[T]struct{})
		return func(v T) bool {
			if _, ok := seen[v]; ok {
				return false
			}
			seen[v] = struct{}{}
			return true
		}
	}
	return repeatStrategy[C, T]{info: applied("fixset", IsPure(s), s), s: s, eval: normalForms[C](visit)}
}

// normalForms returns the evaluation of Saturate. newVisit, when set, creates
// the per-evaluation filter that admits a value the first time it is seen.
func normalForms[C, T any](newVisit func() func(T) bool) func(repeatStrategy[C, T], C, T) seq.Seq[T] {
	return func(r repeatStrategy[C, T], ctx C, input T) seq.Seq[T] {
		admit := func(T) bool { return true }
		if newVisit != nil {
			admit = newVisit()
		}
		stack := []seq.Seq[T]{seq.Of(input)}
		return seq.FromFunc(func() (T, bool, error) {
			var zero T
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if !top.Next() {
					if err := top.Err(); err != nil {
						return zero, false, err
					}
					stack = stack[:len(stack)-1]
					continue
				}
				v := top.Current()
				if !admit(v) {
					continue
				}
				next := r.s.Eval(ctx, v)
				if next.Next() {
					stack = append(stack, seq.Resume(next))
					continue
				}
				if err := next.Err(); err != nil {
					return zero, false, err
				}
				return v, true, nil
			}
			return zero, false, nil
		})
	}
}

// evalLazy evaluates s on first pull, for strategies defined outside this
// package that may do work in Eval.
func evalLazy[C, T, R any](s Strategy[C, T, R], ctx C, input T) seq.Seq[R] {
	return seq.Defer(func() seq.Seq[R] { return s.Eval(ctx, input) })
}

// --- Output shaping ---

type shapeStrategy[C, T, R, U any] struct {
	info
	s     Strategy[C, T, R]
	shape func(ctx C, out seq.Seq[R]) seq.Seq[U]
}

func (s shapeStrategy[C, T, R, U]) Eval(ctx C, input T) seq.Seq[U] {
	return evaluate(s, ctx, input, func() seq.Seq[U] {
		out := s.shape(ctx, s.s.Eval(ctx, input))
		return seq.WrapErr(seq.Recover(out, panicFault(s, input)), faultWrapper(s, input))
	})
}

func shape[C, T, R, U any](i info, s Strategy[C, T, R], fn func(C, seq.Seq[R]) seq.Seq[U]) Strategy[C, T, U] {
	return shapeStrategy[C, T, R, U]{info: i, s: s, shape: fn}
}

// Limit yields at most the first n outputs of s and stops evaluating s once
// it has.
func Limit[C, T, R any](n int, s Strategy[C, T, R]) Strategy[C, T, R] {
	return shape(applied("limit", IsPure(s), n, s), s, func(_ C, out seq.Seq[R]) seq.Seq[R] {
		return seq.Take(out, n)
	})
}

// Distinct yields each distinct output of s once.
func Distinct[C, T any, R comparable](s Strategy[C, T, R]) Strategy[C, T, R] {
	return shape(applied("distinct", IsPure(s), s), s, func(_ C, out seq.Seq[R]) seq.Seq[R] {
		return seq.Distinct(out)
	})
}

// Single yields the output of s when s produces exactly one, and fails
// otherwise. It pulls at most two outputs from s.
func Single[C, T, R any](s Strategy[C, T, R]) Strategy[C, T, R] {
	return shape(applied("single", IsPure(s), s), s, func(_ C, out seq.Seq[R]) seq.Seq[R] {
		return seq.Defer(func() seq.Seq[R] {
			v, ok, err := seq.Single(out)
			if !ok {
				return seq.Fault[R](err)
			}
			return seq.Of(v)
		})
	})
}

// Where yields the outputs of s that match p.
func Where[C, T, R any](s Strategy[C, T, R], p pattern.Pattern[C, R]) Strategy[C, T, R] {
	return shape(applied("where", IsPure(s), s, rawArg(pattern.String(p))), s, func(ctx C, out seq.Seq[R]) seq.Seq[R] {
		return seq.Filter(out, func(v R) bool { return p.Match(ctx, v) })
	})
}

// Map yields fn applied to each output of s. fn must not mutate the context.
func Map[C, T, R, U any](name string, s Strategy[C, T, R], fn func(ctx C, v R) U) Strategy[C, T, U] {
	return shape(applied(name, IsPure(s), s), s, func(ctx C, out seq.Seq[R]) seq.Seq[U] {
		return seq.Map(out, func(v R) U { return fn(ctx, v) })
	})
}

// --- Naming and recursion ---

type namedStrategy[C, T, R any] struct {
	info
	s Strategy[C, T, R]
}

// Named gives s a new name. The result prints as the name alone, which keeps
// traces of large strategies readable.
func Named[C, T, R any](name string, s Strategy[C, T, R]) Strategy[C, T, R] {
	return namedStrategy[C, T, R]{info: atom(name, IsPure(s)), s: s}
}

func (n namedStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(n, ctx, input, func() seq.Seq[R] { return n.s.Eval(ctx, input) })
}

type recStrategy[C, T, R any] struct {
	info
	once     sync.Once
	f        func(self Strategy[C, T, R]) Strategy[C, T, R]
	body     Strategy[C, T, R]
	checking bool
}

// Rec returns the recursive strategy x = f(x), named name. f is called once,
// on first evaluation, with the strategy itself.
//
//	subterms := tactic.Rec("subterms", func(x Strategy[C, Node, Node]) Strategy[C, Node, Node] {
//		return tactic.Or(tactic.Id[C, Node](), tactic.Seq(children, x))
//	})
func Rec[C, T, R any](name string, f func(self Strategy[C, T, R]) Strategy[C, T, R]) Strategy[C, T, R] {
	return &recStrategy[C, T, R]{info: atom(name, false), f: f}
}

func (r *recStrategy[C, T, R]) get() Strategy[C, T, R] {
	r.once.Do(func() {
		r.checking = true
		r.body = r.f(r)
		r.checking = false
	})
	return r.body
}

func (r *recStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(r, ctx, input, func() seq.Seq[R] { return r.get().Eval(ctx, input) })
}

// Pure reports whether the body is pure, treating the recursive reference as
// pure.
func (r *recStrategy[C, T, R]) Pure() bool {
	if r.checking {
		return true
	}
	r.checking = true
	defer func() { r.checking = false }()
	return IsPure(r.get())
}
