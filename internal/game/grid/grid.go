// Package grid provides the pure distance and range predicates for the
// tactical battle grid. Nothing in this package holds state.
//
// Two different metrics are in play on purpose: attack range uses Chebyshev
// distance (a diagonal neighbor is at range 1), while movement uses Manhattan
// distance (a diagonal step costs 2). Do not unify them.
package grid

// Cell is one square on the battle grid, addressed by column and row.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ChebyshevDistance returns max(|Δcol|, |Δrow|) between a and b.
// This is the attack-range metric.
//
// Postcondition: result >= 0.
func ChebyshevDistance(a, b Cell) int {
	dc := abs(a.Col - b.Col)
	dr := abs(a.Row - b.Row)
	if dc > dr {
		return dc
	}
	return dr
}

// ManhattanDistance returns |Δcol| + |Δrow| between a and b.
// This is the move-range metric.
//
// Postcondition: result >= ChebyshevDistance(a, b).
func ManhattanDistance(a, b Cell) int {
	return abs(a.Col-b.Col) + abs(a.Row-b.Row)
}

// InMoveRange reports whether to is reachable from from within moveRange
// steps of Manhattan distance.
func InMoveRange(from, to Cell, moveRange int) bool {
	return ManhattanDistance(from, to) <= moveRange
}

// InAttackRange reports whether target is within attackRange of attacker
// by Chebyshev distance.
func InAttackRange(attacker, target Cell, attackRange int) bool {
	return ChebyshevDistance(attacker, target) <= attackRange
}

// ReachableCells returns every in-bounds cell within moveRange Manhattan
// distance of origin, excluding origin itself and any cell for which the
// excluded predicate returns true. There is no pathfinding: reachability is
// range plus exclusion only, not a flood fill around obstacles.
//
// Cells are returned in row-major order (row 0 first, columns ascending
// within a row) so callers that break ties by first candidate found are
// deterministic.
//
// Precondition: cols > 0 and rows > 0; excluded may be nil (nothing excluded).
func ReachableCells(origin Cell, moveRange, cols, rows int, excluded func(Cell) bool) []Cell {
	if cols <= 0 || rows <= 0 {
		panic("grid: ReachableCells called with non-positive dimensions")
	}
	var cells []Cell
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c := Cell{Col: col, Row: row}
			if c == origin {
				continue
			}
			if !InMoveRange(origin, c, moveRange) {
				continue
			}
			if excluded != nil && excluded(c) {
				continue
			}
			cells = append(cells, c)
		}
	}
	return cells
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
