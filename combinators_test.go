package tactic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// =============================================================================
// Leaves
// =============================================================================

func TestLeaves(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{7}, eval(t, Id[*state, int](), 7))
	assert.Empty(t, eval(t, Fail[*state, int, int](), 7))
	assert.Equal(t, []string{"a", "b"}, eval(t, Build[*state, int]("a", "b"), 7))
	assert.Equal(t, []int{14}, eval(t, double, 7))
	assert.Equal(t, []int{7}, eval(t, Assert("odd", func(_ *state, v int) bool { return v%2 == 1 }), 7))
	assert.Empty(t, eval(t, Assert("even", func(_ *state, v int) bool { return v%2 == 0 }), 7))
	assert.Equal(t, []int{3}, eval(t, Match(pattern.Eq[*state](3)), 3))
}

func TestFunc_IsLazy(t *testing.T) {
	t.Parallel()
	s, calls := counted(values(1, 2))
	out := s.Eval(&state{}, 0)
	assert.Equal(t, 0, *calls, "Eval must not run the leaf")
	require.True(t, out.Next())
	assert.Equal(t, 1, *calls)
}

func TestAccept_MutatesContext(t *testing.T) {
	t.Parallel()
	record := Accept("record", func(ctx *state, v int) bool {
		ctx.log = append(ctx.log, "saw")
		return v > 0
	})
	ctx := &state{}
	out, err := seq.ToSlice(record.Eval(ctx, 1))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out)
	assert.Equal(t, []string{"saw"}, ctx.log)
	assert.False(t, IsPure(record))
}

func TestFunc_FaultsBecomeEvalErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	s := Func("broken", func(*state, int) seq.Seq[int] { return seq.Fault[int](boom) })
	_, err := seq.ToSlice(s.Eval(&state{}, 5))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "broken", ee.Strategy)
	assert.Equal(t, 5, ee.Input)
	assert.ErrorIs(t, err, boom)
}

func TestFunc_PanicsBecomeFaults(t *testing.T) {
	t.Parallel()
	s := Lift("crash", func(_ *state, v int) int { panic("bad input") })
	_, err := seq.ToSlice(s.Eval(&state{}, 1))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "crash", ee.Strategy)
	assert.ErrorIs(t, err, ErrPanic)
	assert.ErrorContains(t, err, "bad input")
}

func TestFault_InnermostStrategyWins(t *testing.T) {
	t.Parallel()
	inner := Fault[*state, int, int]("inner", errors.New("broken"))
	outer := Func("outer", func(ctx *state, in int) seq.Seq[int] { return inner.Eval(ctx, in) })
	_, err := seq.ToSlice(Seq(values(1), outer).Eval(&state{}, 0))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "inner", ee.Strategy)
}

// =============================================================================
// Sequential composition
// =============================================================================

func TestSeq_ConcatenatesInOrder(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{2, 4}, eval(t, Seq(values(1, 2), double), 0))

	fanout := Func("fanout", func(_ *state, v int) seq.Seq[int] { return seq.Of(v*10, v*10+1) })
	assert.Equal(t, []int{10, 11, 20, 21}, eval(t, Seq(values(1, 2), fanout), 0))
}

func TestSeq_FailureSkipsSecond(t *testing.T) {
	t.Parallel()
	s2, calls := counted(double)
	assert.Empty(t, eval(t, Seq(Fail[*state, int, int](), s2), 0))
	assert.Equal(t, 0, *calls)
}

func TestSeq_Interleaving(t *testing.T) {
	t.Parallel()
	var order []string
	s1 := Func("s1", func(_ *state, _ int) seq.Seq[int] {
		return seq.Peek(seq.Of(1, 2), func(v int) { order = append(order, "s1") })
	})
	s2 := Lift("s2", func(_ *state, v int) int {
		order = append(order, "s2")
		return v
	})
	eval(t, Seq(s1, s2), 0)
	assert.Equal(t, []string{"s1", "s2", "s1", "s2"}, order)
}

func TestPipeline(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{24}, eval(t, Pipeline(double, double, Lift("dec", func(_ *state, v int) int { return v - 4 }), double), 4))
	assert.Equal(t, []int{4}, eval(t, Pipeline[*state, int](), 4))
}

// =============================================================================
// Choice
// =============================================================================

func TestOr_Order(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2, 3, 4}, eval(t, Or(values(1, 2), values(3, 4)), 0))
	assert.Equal(t, []int{3}, eval(t, Or(Fail[*state, int, int](), values(3)), 0))
}

func TestOr_SecondBranchIsLazy(t *testing.T) {
	t.Parallel()
	s2, calls := counted(values(9))
	out := Or(values(1, 2), s2).Eval(&state{}, 0)

	require.True(t, out.Next())
	assert.Equal(t, 1, out.Current())
	require.True(t, out.Next())
	assert.Equal(t, 0, *calls, "s2 evaluated before s1 was exhausted")

	require.True(t, out.Next())
	assert.Equal(t, 9, out.Current())
	assert.Equal(t, 1, *calls)
}

func TestOr_Cancellation(t *testing.T) {
	t.Parallel()
	out := Or(values(1, 2, 3), exploding(t)).Eval(&state{}, 0)
	v, ok, err := seq.First(out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestChoice(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2, 3}, eval(t, Choice(values(1), values(2), values(3)), 0))
	assert.Empty(t, eval(t, Choice[*state, int, int](), 0))
}

func TestAnd(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2, 3}, eval(t, And(values(1, 2), values(3)), 0))
	assert.Empty(t, eval(t, And(values(1), Fail[*state, int, int]()), 0))

	s2, calls := counted(values(3))
	assert.Empty(t, eval(t, And(Fail[*state, int, int](), s2), 0))
	assert.Equal(t, 0, *calls)
}

// =============================================================================
// Guarded choice
// =============================================================================

func TestIf(t *testing.T) {
	t.Parallel()
	positive := pattern.Func[*state, int](func(_ *state, v int) bool { return v > 0 })
	s := If(positive, double, Build[*state, int](0))
	assert.Equal(t, []int{6}, eval(t, s, 3))
	assert.Equal(t, []int{0}, eval(t, s, -3))
}

func TestIf_GuardMatchedOnce(t *testing.T) {
	t.Parallel()
	matches := 0
	guard := pattern.Func[*state, int](func(*state, int) bool {
		matches++
		return true
	})
	out := If(guard, values(1, 2, 3), exploding(t)).Eval(&state{}, 0)
	assert.Equal(t, 0, matches, "guard matched before the first pull")
	vs, err := seq.ToSlice(out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, vs)
	assert.Equal(t, 1, matches)
}

func TestGlc(t *testing.T) {
	t.Parallel()
	s := Glc(values(1, 2), double, Build[*state, int](-1))
	assert.Equal(t, []int{2, 4}, eval(t, s, 0))

	s = Glc(Fail[*state, int, int](), double, Build[*state, int](-1))
	assert.Equal(t, []int{-1}, eval(t, s, 0))
}

func TestGlc_FaultIsNotFailure(t *testing.T) {
	t.Parallel()
	onFailure, calls := counted(values(0))
	s := Glc(Fault[*state, int, int]("broken", errors.New("x")), double, onFailure)
	_, err := seq.ToSlice(s.Eval(&state{}, 0))
	require.Error(t, err)
	assert.Equal(t, 0, *calls)
}

func TestTry(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{4}, eval(t, Try(decrement), 5))
	assert.Equal(t, []int{0}, eval(t, Try(decrement), 0))
}

// =============================================================================
// Repetition
// =============================================================================

func TestRepeat_EmptyStrategyYieldsNothing(t *testing.T) {
	t.Parallel()
	assert.Empty(t, eval(t, Repeat(Fail[*state, int, int]()), 10))
}

func TestRepeat_TerminatesWhenStrategyFails(t *testing.T) {
	t.Parallel()
	s, calls := counted(decrement)
	assert.Equal(t, []int{2, 1, 0}, eval(t, Repeat(s), 3))
	// dec(3), dec(2), dec(1), dec(0): the last one is the first empty result.
	assert.Equal(t, 4, *calls)
}

func TestRepeat_DepthFirst(t *testing.T) {
	t.Parallel()
	// Halve both ways until below 2.
	split := Func("split", func(_ *state, v int) seq.Seq[int] {
		if v < 2 {
			return seq.Empty[int]()
		}
		return seq.Of(v/2, v/2+10)
	})
	got := eval(t, Limit(4, Repeat(split)), 4)
	assert.Equal(t, []int{2, 1, 11, 5}, got)
}

func TestRepeat_InfiniteIsBoundedByConsumer(t *testing.T) {
	t.Parallel()
	inc := Lift("inc", func(_ *state, v int) int { return v + 1 })
	assert.Equal(t, []int{1, 2, 3}, eval(t, Limit(3, Repeat(inc)), 0))
}

func TestSaturate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{0}, eval(t, Saturate(decrement), 3))
	assert.Equal(t, []int{0}, eval(t, Saturate(decrement), 0), "input yielded when s fails on it")

	split := Func("split", func(_ *state, v int) seq.Seq[int] {
		if v < 2 {
			return seq.Empty[int]()
		}
		return seq.Of(v/2, v-1)
	})
	assert.Equal(t, []int{1, 1, 1}, eval(t, Saturate(split), 3))
}

func TestFixSet(t *testing.T) {
	t.Parallel()
	split := Func("split", func(_ *state, v int) seq.Seq[int] {
		if v < 2 {
			return seq.Empty[int]()
		}
		return seq.Of(v/2, v-1)
	})
	assert.Equal(t, []int{1}, eval(t, FixSet(split), 3))

	// A cycle 0 -> 1 -> 2 -> 0 with an exit at 2 -> 5.
	cycle := Func("cycle", func(_ *state, v int) seq.Seq[int] {
		switch v {
		case 0, 1:
			return seq.Of(v + 1)
		case 2:
			return seq.Of(0, 5)
		}
		return seq.Empty[int]()
	})
	assert.Equal(t, []int{5}, eval(t, FixSet(cycle), 0))
}

// =============================================================================
// Output shaping
// =============================================================================

func TestLimit_StopsPulling(t *testing.T) {
	t.Parallel()
	pulled := 0
	src := Func("src", func(*state, int) seq.Seq[int] {
		return seq.Peek(seq.Of(1, 2, 3, 4), func(int) { pulled++ })
	})
	assert.Equal(t, []int{1, 2}, eval(t, Limit(2, src), 0))
	assert.Equal(t, 2, pulled)
}

func TestDistinctSingleWhereMap(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2}, eval(t, Distinct(values(1, 2, 1, 2)), 0))

	assert.Equal(t, []int{5}, eval(t, Single(values(5)), 0))
	assert.Empty(t, eval(t, Single(values(5, 6)), 0))
	assert.Empty(t, eval(t, Single(values()), 0))

	even := pattern.Func[*state, int](func(_ *state, v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, eval(t, Where(values(1, 2, 3, 4), even), 0))

	str := Map("show", values(1, 2), func(_ *state, v int) string { return string(rune('a' + v)) })
	assert.Equal(t, []string{"b", "c"}, eval(t, str, 0))
}

func TestMap_DoesNotReevaluate(t *testing.T) {
	t.Parallel()
	s, calls := counted(values(1, 2, 3))
	eval(t, Map("id", s, func(_ *state, v int) int { return v }), 0)
	assert.Equal(t, 1, *calls)
}

// =============================================================================
// Recursion and naming
// =============================================================================

func TestRec(t *testing.T) {
	t.Parallel()
	// countdown = id <+ (dec; countdown)
	countdown := Rec("countdown", func(x intStrategy) intStrategy {
		return Or(Id[*state, int](), Seq(decrement, x))
	})
	assert.Equal(t, []int{3, 2, 1, 0}, eval(t, countdown, 3))
	assert.Equal(t, "countdown", Print(countdown))
}

func TestNamed(t *testing.T) {
	t.Parallel()
	s := Named("twice", Seq(double, double))
	assert.Equal(t, "twice", Print(s))
	assert.Equal(t, []int{12}, eval(t, s, 3))
	assert.True(t, IsPure(s))
}

func TestIsPure(t *testing.T) {
	t.Parallel()
	assert.True(t, IsPure(Seq(double, Id[*state, int]())))
	assert.False(t, IsPure(Or(double, decrement)))
	assert.True(t, IsPure(Repeat(double)))

	pureRec := Rec("r", func(x intStrategy) intStrategy { return Or(double, x) })
	assert.True(t, IsPure(pureRec))
	effectRec := Rec("e", func(x intStrategy) intStrategy { return Or(decrement, x) })
	assert.False(t, IsPure(effectRec))
}
