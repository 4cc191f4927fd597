package tactic

import (
	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// EvalFunc is the function behind a leaf strategy.
type EvalFunc[C, T, R any] func(ctx C, input T) seq.Seq[R]

type funcStrategy[C, T, R any] struct {
	info
	fn EvalFunc[C, T, R]
}

// Func returns a leaf strategy that evaluates fn. It is the only way new leaf
// behaviour enters the algebra; every other leaf in this package is built on
// it. fn may mutate ctx. A fault of the sequence fn returns, or a panic
// raised while it runs, surfaces as an *EvalError naming this strategy.
//
// Func strategies are not Pure. Use Lift for pure transformations.
func Func[C, T, R any](name string, fn EvalFunc[C, T, R]) Strategy[C, T, R] {
	return funcStrategy[C, T, R]{info: atom(name, false), fn: fn}
}

func (f funcStrategy[C, T, R]) Eval(ctx C, input T) seq.Seq[R] {
	return evaluate(f, ctx, input, func() seq.Seq[R] {
		out := seq.Recover(seq.Defer(func() seq.Seq[R] { return f.fn(ctx, input) }), panicFault(f, input))
		return seq.WrapErr(out, faultWrapper(f, input))
	})
}

// pure marks a Func strategy as restartable.
func pure[C, T, R any](s Strategy[C, T, R]) Strategy[C, T, R] {
	f := s.(funcStrategy[C, T, R])
	f.pure = true
	return f
}

// Id yields its input unchanged.
func Id[C, T any]() Strategy[C, T, T] {
	return pure(Func("id", func(_ C, input T) seq.Seq[T] { return seq.Of(input) }))
}

// Fail never yields.
func Fail[C, T, R any]() Strategy[C, T, R] {
	return pure(Func("fail", func(C, T) seq.Seq[R] { return seq.Empty[R]() }))
}

// Build ignores its input and yields values.
func Build[C, T, R any](values ...R) Strategy[C, T, R] {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	f := Func("build", func(C, T) seq.Seq[R] { return seq.Of(values...) }).(funcStrategy[C, T, R])
	f.info = applied("build", true, args...)
	return f
}

// Lift yields fn(input). fn must not mutate the context.
func Lift[C, T, R any](name string, fn func(ctx C, input T) R) Strategy[C, T, R] {
	return pure(Func(name, func(ctx C, input T) seq.Seq[R] { return seq.Of(fn(ctx, input)) }))
}

// Accept runs fn for its effect on the context and yields the input when fn
// reports success. Accept is the leaf for effects that commit to a choice,
// such as recording a binding.
func Accept[C, T any](name string, fn func(ctx C, input T) bool) Strategy[C, T, T] {
	return Func(name, func(ctx C, input T) seq.Seq[T] {
		if fn(ctx, input) {
			return seq.Of(input)
		}
		return seq.Empty[T]()
	})
}

// Assert yields the input when pred holds and fails otherwise. pred must not
// mutate the context.
func Assert[C, T any](name string, pred func(ctx C, input T) bool) Strategy[C, T, T] {
	return pure(Accept(name, pred))
}

// Match yields the input when p matches it.
func Match[C, T any](p pattern.Pattern[C, T]) Strategy[C, T, T] {
	f := Assert("match", p.Match).(funcStrategy[C, T, T])
	f.info = applied("match", true, rawArg(pattern.String(p)))
	return f
}

// Fault returns a strategy that always faults with err. It stands in for a
// strategy that could not be constructed.
func Fault[C, T, R any](name string, err error) Strategy[C, T, R] {
	return Func(name, func(C, T) seq.Seq[R] { return seq.Fault[R](err) })
}
