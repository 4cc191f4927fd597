// Package tactic is a lazily evaluated, backtracking strategy combinator
// engine for search-based program analyses.
//
// A [Strategy] maps a caller-supplied context and an input to a lazy
// sequence of outputs ([seq.Seq]). An empty sequence means the strategy
// failed on that input; it is the normal "try the next branch" outcome of a
// search. A faulted sequence means evaluation is broken (a misapplied
// definition, a panic in a leaf, a malformed context) and aborts the search
// with an [*EvalError].
//
// # Strategies
//
// Leaf behaviour enters through [Func] and the leaves built on it ([Id],
// [Fail], [Build], [Lift], [Accept], [Assert], [Match]). Combinators compose
// strategies into strategies:
//
//   - [Seq]: s1; s2 feeds every output of s1 into s2, depth-first.
//   - [Or]: s1 <+ s2 yields s1's outputs, then s2's, evaluating s2 only once
//     s1 is exhausted.
//   - [If], [Glc], [Try]: pattern- and strategy-guarded choice.
//   - [Repeat], [Saturate], [FixSet]: repetition.
//   - [Limit], [Distinct], [Single], [Where], [Map]: output shaping.
//   - [Rec], [Named], [Def1], [Def2], [Def3]: recursion and definitions.
//
// Every strategy evaluates lazily: calling Eval does no work, and each pull
// of the returned sequence does only the work needed for the next output.
//
// # Searching
//
// A [Driver] runs a top-level strategy on candidate inputs with a [Bound]:
//
//	d := tactic.NewDriver(s, tactic.WithTimeout(time.Second))
//	res, err := d.Search(ctx, state, tactic.FirstN(10), inputs...)
//	if err != nil {
//		var ee *tactic.EvalError
//		if errors.As(err, &ee) { ... }
//	}
//	for _, v := range res.Values { ... }
//
// # Context mutation
//
// The context is threaded by value through every evaluation; mutable state is
// passed as a pointer. Patterns must not mutate it. Leaves may, and by
// default mutations on abandoned branches stay in place. [RollbackSnapshot]
// restores a [Snapshotter] context after each candidate input.
//
// # Restartability
//
// Sequences are single-use. Evaluating a strategy again with the same
// arguments restarts it, and gives the same outputs when the strategy is
// [Pure]. Use [IsPure] to ask.
//
// # Tracing
//
// Every strategy reports its evaluations to the [EventHandler] of a context
// that implements [Traced]. The trace package provides handlers that record
// calls, log them, or export them as OpenTelemetry spans.
package tactic
