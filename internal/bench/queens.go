package bench

import (
	"context"
	"fmt"

	"github.com/jward/tactic"
	"github.com/jward/tactic/pattern"
	"github.com/jward/tactic/seq"
)

// QueensSolutions holds the known number of N-Queens solutions per board
// size.
var QueensSolutions = map[int]int{
	1: 1, 2: 0, 3: 0, 4: 2, 5: 10, 6: 4, 7: 40, 8: 92, 9: 352, 10: 724, 11: 2680, 12: 14200,
}

// Board is the context of the N-Queens strategy.
type Board struct {
	Size int
}

// Placement holds the column of the queen in each filled row, top row
// first.
type Placement []int

// safe reports whether a queen can go in column col of the next row.
func (p Placement) safe(col int) bool {
	row := len(p)
	for r, c := range p {
		if c == col || row-r == col-c || row-r == c-col {
			return false
		}
	}
	return true
}

// column places the next queen in col when that square is not attacked.
func column(col int) tactic.Strategy[Board, Placement, Placement] {
	return tactic.Func(fmt.Sprintf("col(%d)", col), func(b Board, p Placement) seq.Seq[Placement] {
		if col >= b.Size || !p.safe(col) {
			return seq.Empty[Placement]()
		}
		return seq.Of(append(p[:len(p):len(p)], col))
	})
}

// Queens returns a strategy that extends a placement to every full board
// of the context's size, in lexicographic order. Each row tries columns
// 0 through maxSize-1 in turn; columns past the board size fail.
func Queens(maxSize int) tactic.Strategy[Board, Placement, Placement] {
	cols := make([]tactic.Strategy[Board, Placement, Placement], maxSize)
	for i := range cols {
		cols[i] = column(i)
	}
	place := tactic.Named("place", tactic.Choice(cols...))
	full := pattern.Func[Board, Placement](func(b Board, p Placement) bool { return len(p) >= b.Size })

	return tactic.Rec("queens", func(self tactic.Strategy[Board, Placement, Placement]) tactic.Strategy[Board, Placement, Placement] {
		return tactic.If(full, tactic.Id[Board, Placement](), tactic.Seq(place, self))
	})
}

// QueensSuite returns one case per board size, each checked against
// QueensSolutions.
func QueensSuite(sizes []int) Suite {
	largest := 1
	for _, n := range sizes {
		largest = max(largest, n)
	}
	s := Queens(largest)

	suite := Suite{Name: "queens"}
	for _, n := range sizes {
		want, ok := QueensSolutions[n]
		if !ok {
			want = Unchecked
		}
		setup := func(context.Context) (Board, []Placement, func(), error) {
			return Board{Size: n}, []Placement{{}}, nil, nil
		}
		suite.Cases = append(suite.Cases, NewCase(fmt.Sprintf("queens-%d", n), s, setup, want))
	}
	return suite
}
