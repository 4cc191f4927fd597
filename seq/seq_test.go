package seq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// counting returns a sequence 0, 1, ..., n-1 and a pointer to the number of
// times its step function has run.
func counting(n int) (Seq[int], *int) {
	calls := 0
	i := 0
	return FromFunc(func() (int, bool, error) {
		calls++
		if i >= n {
			return 0, false, nil
		}
		i++
		return i - 1, true, nil
	}), &calls
}

// naturals is an infinite sequence 0, 1, 2, ...
func naturals() Seq[int] {
	i := 0
	return FromFunc(func() (int, bool, error) {
		i++
		return i - 1, true, nil
	})
}

func collect[T any](t *testing.T, s Seq[T]) []T {
	t.Helper()
	out, err := ToSlice(s)
	require.NoError(t, err)
	return out
}

// =============================================================================
// State machine
// =============================================================================

func TestFromFunc_States(t *testing.T) {
	t.Parallel()
	s, calls := counting(2)

	assert.Equal(t, 0, *calls, "construction must not run the step")
	assert.Equal(t, "seq(not-started)", s.(*stepSeq[int]).String())
	assert.PanicsWithValue(t, ErrNoCurrent, func() { s.Current() })

	require.True(t, s.Next())
	assert.Equal(t, 0, s.Current())
	assert.Equal(t, 0, s.Current(), "Current must not advance")
	require.True(t, s.Next())
	assert.Equal(t, 1, s.Current())
	require.False(t, s.Next())
	assert.NoError(t, s.Err())
	assert.PanicsWithValue(t, ErrNoCurrent, func() { s.Current() })

	// Exhausted is sticky: no more step calls.
	before := *calls
	assert.False(t, s.Next())
	assert.Equal(t, before, *calls)
}

func TestFromFunc_FaultIsSticky(t *testing.T) {
	t.Parallel()
	calls := 0
	s := FromFunc(func() (int, bool, error) {
		calls++
		return 0, false, errBoom
	})
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), errBoom)
	assert.False(t, s.Next())
	assert.Equal(t, 1, calls)
	assert.Equal(t, "seq(faulted)", s.(*stepSeq[int]).String())
}

func TestEmptyAndFault(t *testing.T) {
	t.Parallel()
	e := Empty[string]()
	assert.False(t, e.Next())
	assert.NoError(t, e.Err())
	assert.Panics(t, func() { e.Current() })

	f := Fault[string](errBoom)
	assert.False(t, f.Next())
	assert.ErrorIs(t, f.Err(), errBoom)

	assert.NoError(t, Fault[int](nil).Err())
}

func TestOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2, 3}, collect(t, Of(1, 2, 3)))
	assert.Empty(t, collect(t, Of[int]()))
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	n := 0
	s := Generate(func() (int, error) {
		if n == 3 {
			return 0, Done
		}
		n++
		return n * 10, nil
	})
	assert.Equal(t, []int{10, 20, 30}, collect(t, s))

	faulty := Generate(func() (int, error) { return 0, errBoom })
	_, err := ToSlice(faulty)
	assert.ErrorIs(t, err, errBoom)
}

func TestDefer_RunsOnFirstPull(t *testing.T) {
	t.Parallel()
	built := 0
	s := Defer(func() Seq[int] {
		built++
		return Of(1, 2)
	})
	assert.Equal(t, 0, built)
	assert.Equal(t, []int{1, 2}, collect(t, s))
	assert.Equal(t, 1, built)

	assert.Empty(t, collect(t, Defer(func() Seq[int] { return nil })))
}

func TestResume(t *testing.T) {
	t.Parallel()
	s := Of("a", "b", "c")
	require.True(t, s.Next())
	assert.Equal(t, []string{"a", "b", "c"}, collect(t, Resume(s)))
}

func TestRecover(t *testing.T) {
	t.Parallel()
	s := Recover(FromFunc(func() (int, bool, error) { panic("kaboom") }), func(r any) error {
		return errors.New(r.(string))
	})
	assert.False(t, s.Next())
	assert.EqualError(t, s.Err(), "kaboom")
}

// =============================================================================
// Transformers
// =============================================================================

func TestTransformers_AreLazy(t *testing.T) {
	t.Parallel()
	src, calls := counting(10)
	s := Take(Filter(Map(src, func(v int) int { return v * 2 }), func(v int) bool { return v > 2 }), 1)
	assert.Equal(t, 0, *calls)

	assert.Equal(t, []int{4}, collect(t, s))
	// Elements 0, 1, 2 were pulled; Take stops before a fourth pull.
	assert.Equal(t, 3, *calls)
}

func TestTake_NeverOverPulls(t *testing.T) {
	t.Parallel()
	src, calls := counting(100)
	assert.Equal(t, []int{0, 1, 2}, collect(t, Take(src, 3)))
	assert.Equal(t, 3, *calls)

	src, calls = counting(100)
	assert.Empty(t, collect(t, Take(src, 0)))
	assert.Equal(t, 0, *calls)
}

func TestTake_Infinite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{0, 1, 2, 3}, collect(t, Take(naturals(), 4)))
}

func TestTryMap(t *testing.T) {
	t.Parallel()
	s := TryMap(Of(1, 2, 3), func(v int) (int, error) {
		if v == 2 {
			return 0, errBoom
		}
		return v, nil
	})
	out, err := ToSlice(s)
	assert.Equal(t, []int{1}, out)
	assert.ErrorIs(t, err, errBoom)
}

func TestWrapErr(t *testing.T) {
	t.Parallel()
	s := WrapErr(Concat(Of(1), Fault[int](errBoom)), func(err error) error {
		return errors.Join(errors.New("wrapped"), err)
	})
	out, err := ToSlice(s)
	assert.Equal(t, []int{1}, out)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorContains(t, err, "wrapped")
}

func TestFlatMap_DepthFirst(t *testing.T) {
	t.Parallel()
	s := FlatMap(Of(1, 2, 3), func(v int) Seq[int] {
		if v == 2 {
			return nil
		}
		return Of(v*10, v*10+1)
	})
	assert.Equal(t, []int{10, 11, 30, 31}, collect(t, s))
}

func TestFlatMap_InnerFaultPropagates(t *testing.T) {
	t.Parallel()
	s := FlatMap(Of(1, 2), func(v int) Seq[int] {
		if v == 2 {
			return Fault[int](errBoom)
		}
		return Of(v)
	})
	out, err := ToSlice(s)
	assert.Equal(t, []int{1}, out)
	assert.ErrorIs(t, err, errBoom)
}

func TestFlatten(t *testing.T) {
	t.Parallel()
	s := Flatten(Of(Of(1), Empty[int](), Of(2, 3)))
	assert.Equal(t, []int{1, 2, 3}, collect(t, s))
}

func TestConcat_Lazy(t *testing.T) {
	t.Parallel()
	second, calls := counting(2)
	s := Concat(Of(1), second)
	require.True(t, s.Next())
	assert.Equal(t, 0, *calls, "second sequence pulled before the first was exhausted")
	assert.Equal(t, []int{0, 1}, collect(t, s))
}

func TestConcat_FaultStops(t *testing.T) {
	t.Parallel()
	rest, calls := counting(2)
	out, err := ToSlice(Concat(Of(1), Fault[int](errBoom), rest))
	assert.Equal(t, []int{1}, out)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, *calls)
}

func TestDropAndWhile(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{3, 4}, collect(t, Drop(Of(1, 2, 3, 4), 2)))
	assert.Empty(t, collect(t, Drop(Of(1, 2), 5)))
	assert.Equal(t, []int{0, 1, 2}, collect(t, TakeWhile(naturals(), func(v int) bool { return v < 3 })))
	assert.Equal(t, []int{3, 1}, collect(t, DropWhile(Of(1, 2, 3, 1), func(v int) bool { return v < 3 })))
}

func TestDistinct(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1, 2, 3}, collect(t, Distinct(Of(1, 2, 1, 3, 2))))
	byLen := DistinctBy(Of("a", "bb", "c", "dd", "eee"), func(s string) int { return len(s) })
	assert.Equal(t, []string{"a", "bb", "eee"}, collect(t, byLen))
}

func TestPeek(t *testing.T) {
	t.Parallel()
	var seen []int
	s := Peek(Of(1, 2, 3), func(v int) { seen = append(seen, v) })
	first, ok, err := First(s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, first)
	assert.Equal(t, []int{1}, seen)
}

// =============================================================================
// Terminal operations
// =============================================================================

func TestTerminal(t *testing.T) {
	t.Parallel()

	n, err := Count(Of(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = CountFunc(Of(1, 2, 3, 4), func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := Any(Empty[int]())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = AnyFunc(naturals(), func(v int) bool { return v == 7 })
	require.NoError(t, err)
	assert.True(t, ok, "AnyFunc must stop on an infinite sequence")

	ok, err = All(Of(2, 4), func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = All(naturals(), func(v int) bool { return v < 5 })
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = None(Of(1, 3), func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsEmpty(Of[int]())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains(Of("x", "y"), "y")
	require.NoError(t, err)
	assert.True(t, ok)

	sum, err := Fold(Of(1, 2, 3), 10, func(acc, v int) int { return acc + v })
	require.NoError(t, err)
	assert.Equal(t, 16, sum)
}

func TestTerminal_ReportFaults(t *testing.T) {
	t.Parallel()
	_, err := Count(Concat(Of(1), Fault[int](errBoom)))
	assert.ErrorIs(t, err, errBoom)

	ok, err := IsEmpty(Fault[int](errBoom))
	assert.False(t, ok)
	assert.ErrorIs(t, err, errBoom)

	_, ok, err = First(Fault[int](errBoom))
	assert.False(t, ok)
	assert.ErrorIs(t, err, errBoom)
}

func TestSingle(t *testing.T) {
	t.Parallel()
	v, ok, err := Single(Of(42))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok, err = Single(naturals())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = Single(Empty[int]())
	assert.False(t, ok)
}

func TestIter(t *testing.T) {
	t.Parallel()
	var got []int
	var gotErr error
	for v, err := range Iter(Concat(Of(1, 2), Fault[int](errBoom))) {
		if err != nil {
			gotErr = err
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.ErrorIs(t, gotErr, errBoom)

	got = got[:0]
	for v := range Iter(naturals()) {
		if v == 3 {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestWithContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	s := WithContext(ctx, naturals())
	require.True(t, s.Next())
	cancel()
	assert.False(t, s.Next())
	assert.ErrorIs(t, s.Err(), context.Canceled)
}
