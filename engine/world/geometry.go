package world

import "github.com/nathoo/gloomcore/types"

// Orthogonal lists the four movement directions in a fixed order, so any
// scan over neighbours is deterministic.
var Orthogonal = []types.Dir{types.DirUp, types.DirDown, types.DirLeft, types.DirRight}

// Delta returns the row/col offset of a direction.
func Delta(d types.Dir) (dr, dc int) {
	switch d {
	case types.DirUp:
		return -1, 0
	case types.DirDown:
		return 1, 0
	case types.DirLeft:
		return 0, -1
	case types.DirRight:
		return 0, 1
	default:
		return 0, 0
	}
}

// Step returns the cell one step from p in direction d.
func Step(p types.Pos, d types.Dir) types.Pos {
	dr, dc := Delta(d)
	return types.Pos{Row: p.Row + dr, Col: p.Col + dc}
}

// Manhattan returns the taxicab distance between two cells.
func Manhattan(a, b types.Pos) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Chebyshev returns the king-move distance between two cells.
func Chebyshev(a, b types.Pos) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

// EntityAt returns the index of the living entity standing on p, or -1.
func EntityAt(entities []types.Entity, p types.Pos) int {
	for i := range entities {
		if entities[i].HP > 0 && entities[i].Pos == p {
			return i
		}
	}
	return -1
}

// Free reports whether an actor may step onto p: movement is not blocked
// and no entity or avatar stands there.
func Free(g types.Grid, entities []types.Entity, p types.Pos) bool {
	if BlocksMovement(g, p) {
		return false
	}
	if HasTag(g, p, types.TagAvatar) {
		return false
	}
	return EntityAt(entities, p) < 0
}

// Sign returns -1, 0 or 1.
func Sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
