package tactic

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// =============================================================================
// Printing
// =============================================================================

func TestPrint(t *testing.T) {
	t.Parallel()
	a := Named[*state, int, int]("a", double)
	b := Named[*state, int, int]("b", double)
	c := Named[*state, int, int]("c", double)
	pos := pattern.Func[*state, int](func(_ *state, v int) bool { return v > 0 })

	cases := []struct {
		name string
		s    Decl
		want string
	}{
		{"atom", a, "a"},
		{"seq left-assoc", Seq(Seq(a, b), c), "a; b; c"},
		{"seq right nested", Seq(a, Seq(b, c)), "a; (b; c)"},
		{"or right-assoc", Or(a, Or(b, c)), "a <+ b <+ c"},
		{"or left nested", Or(Or(a, b), c), "(a <+ b) <+ c"},
		{"or inside seq", Seq(Or(a, b), c), "(a <+ b); c"},
		{"seq inside or", Or(Seq(a, b), c), "a; b <+ c"},
		{"application", Limit(2, Seq(a, b)), "limit(2, a; b)"},
		{"try", Try(a), "try(a)"},
		{"repeat", Repeat(Or(a, b)), "repeat(a <+ b)"},
		{"if", If(pos, Seq(a, b), c), "if <func> then a; b else c"},
		{"glc", Glc(a, b, Or(b, c)), "a < b + b <+ c"},
		{"glc nested", Glc(Glc(a, b, c), b, c), "(a < b + c) < b + c"},
		{"build", Build[*state, int]("x", "y"), `build("x", "y")`},
		{"match", Match(pattern.Eq[*state](3)), "match(3)"},
		{"where", Where(a, pattern.All[*state, int]{}), "where(a, _)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Print(tc.s))
		})
	}
}

func TestPrint_Stringer(t *testing.T) {
	t.Parallel()
	s := Seq(double, double)
	assert.Equal(t, "double; double", fmt.Sprint(s))
}

func TestDecl(t *testing.T) {
	t.Parallel()
	s := Or(double, double)
	assert.Equal(t, "or", s.Name())
	assert.Equal(t, 0, s.Arity())
	assert.False(t, s.IsAtom())
	assert.True(t, double.IsAtom())

	d := Declare("lookup", "table", "key")
	assert.Equal(t, 2, d.Arity())
	assert.Equal(t, "key", d.ParamName(1))
	assert.Equal(t, "arg5", d.ParamName(5))
	assert.Equal(t, "lookup", Print(d))
}

// lookup is a strategy implemented outside the package's constructors.
type lookup struct {
	Decl
	table map[int]int
}

func (l lookup) Eval(_ *state, in int) seq.Seq[int] {
	if v, ok := l.table[in]; ok {
		return seq.Of(v)
	}
	return seq.Empty[int]()
}

func TestUserStrategy(t *testing.T) {
	t.Parallel()
	l := lookup{Decl: Declare("lookup"), table: map[int]int{1: 10}}
	s := Or(Seq(l, double), Build[*state, int](0))
	assert.Equal(t, []int{20}, eval(t, s, 1))
	assert.Equal(t, []int{0}, eval(t, s, 2))
	assert.Equal(t, "lookup; double <+ build(0)", Print(s))
	assert.False(t, IsPure(s))
}

// =============================================================================
// Errors
// =============================================================================

func TestEvalError_Message(t *testing.T) {
	t.Parallel()
	err := &EvalError{Strategy: "s", Input: 3, Err: errors.New("boom")}
	assert.EqualError(t, err, "strategy s faulted on input 3: boom")

	long := &EvalError{Strategy: "s", Input: strings.Repeat("x", 500), Err: errors.New("boom")}
	assert.Less(t, len(long.Error()), 200)
	assert.Contains(t, long.Error(), "...")
}

// =============================================================================
// Definitions
// =============================================================================

func newTwice() *Def1[*state, intStrategy, int, int] {
	return NewDef1("twice", "s", func(s intStrategy) intStrategy { return Seq(s, s) })
}

func TestDef1_Apply(t *testing.T) {
	t.Parallel()
	twice := newTwice()
	assert.Equal(t, 1, twice.Arity())
	assert.Equal(t, "s", twice.ParamName(0))
	assert.Equal(t, "twice", Print(twice))

	s := twice.Apply(double)
	assert.Equal(t, 0, s.Arity())
	assert.Equal(t, "twice(double)", Print(s))
	assert.Equal(t, []int{12}, eval(t, s, 3))
}

func TestDef_ApplyArgs(t *testing.T) {
	t.Parallel()
	twice := newTwice()

	s, err := twice.ApplyArgs(double)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, eval(t, s, 3))

	_, err = twice.ApplyArgs()
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = twice.ApplyArgs(double, double)
	assert.ErrorIs(t, err, ErrArityMismatch)

	_, err = twice.ApplyArgs("not a strategy")
	assert.ErrorIs(t, err, ErrArgumentType)
	assert.ErrorContains(t, err, "parameter s")
}

func TestDef_CallFaultsInsteadOfFailing(t *testing.T) {
	t.Parallel()
	twice := newTwice()
	_, err := seq.ToSlice(twice.Call(1, 2).Eval(&state{}, 0))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "twice", ee.Strategy)
	assert.ErrorIs(t, err, ErrArityMismatch)
}

func TestDef2AndDef3(t *testing.T) {
	t.Parallel()
	between := NewDef2("between", "lo", "hi", func(lo, hi int) intStrategy {
		return Assert("in range", func(_ *state, v int) bool { return v >= lo && v <= hi })
	})
	assert.Equal(t, 2, between.Arity())
	assert.Equal(t, "between(1, 5)", Print(between.Apply(1, 5)))
	assert.Equal(t, []int{3}, eval(t, between.Apply(1, 5), 3))
	assert.Empty(t, eval(t, between.Call(1, 2), 3))

	_, err := between.ApplyArgs(1, "5")
	assert.ErrorIs(t, err, ErrArgumentType)

	choose := NewDef3("choose", "p", "then", "else", func(p pattern.Pattern[*state, int], s1, s2 intStrategy) intStrategy {
		return If(p, s1, s2)
	})
	assert.Equal(t, 3, choose.Arity())
	s, err := choose.ApplyArgs(pattern.Pattern[*state, int](pattern.All[*state, int]{}), double, Fail[*state, int, int]())
	require.NoError(t, err)
	assert.Equal(t, []int{4}, eval(t, s, 2))
}
