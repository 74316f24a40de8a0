package ai

import (
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// tryStep moves self one cell in d if that cell is free.
func tryStep(ctx Context, self *types.Entity, d types.Dir) bool {
	if d == types.DirNone {
		return false
	}
	next := world.Step(self.Pos, d)
	if !world.Free(ctx.Grid.Grid(), ctx.Entities, next) {
		return false
	}
	self.Pos = next
	self.Facing = d
	self.Moved = true
	return true
}

// axisDirs returns the row and column directions from one cell toward
// another, larger delta first. Ties prefer the row axis.
func axisDirs(from, to types.Pos) (primary, secondary types.Dir) {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	rowDir := rowDirection(world.Sign(dr))
	colDir := colDirection(world.Sign(dc))
	if abs(dc) > abs(dr) {
		return colDir, rowDir
	}
	return rowDir, colDir
}

// stepToward takes one orthogonal step toward target, trying the axis with
// the larger delta first.
func stepToward(ctx Context, self *types.Entity, target types.Pos) bool {
	primary, secondary := axisDirs(self.Pos, target)
	return tryStep(ctx, self, primary) || tryStep(ctx, self, secondary)
}

// stepAway takes one orthogonal step that increases the distance from
// threat, trying the axis with the larger delta first.
func stepAway(ctx Context, self *types.Entity, threat types.Pos) bool {
	primary, secondary := axisDirs(self.Pos, threat)
	return tryStep(ctx, self, opposite(primary)) || tryStep(ctx, self, opposite(secondary))
}

// randomStep moves to a random free orthogonal neighbour. No draw is made
// when every neighbour is blocked.
func randomStep(ctx Context, self *types.Entity) bool {
	var open []types.Dir
	for _, d := range world.Orthogonal {
		if world.Free(ctx.Grid.Grid(), ctx.Entities, world.Step(self.Pos, d)) {
			open = append(open, d)
		}
	}
	if len(open) == 0 {
		return false
	}
	return tryStep(ctx, self, open[ctx.RNG.Intn(len(open))])
}

// face turns self toward target without moving.
func face(self *types.Entity, target types.Pos) {
	if d, _ := axisDirs(self.Pos, target); d != types.DirNone {
		self.Facing = d
	}
}

// adjacent reports whether the avatar is one orthogonal step away.
func adjacent(self *types.Entity, avatar types.Pos) bool {
	return world.Manhattan(self.Pos, avatar) == 1
}

// freeCells lists the free cells whose Manhattan distance from center
// lies in [lo, hi], in row-major order.
func freeCells(ctx Context, center types.Pos, lo, hi int) []types.Pos {
	g := ctx.Grid.Grid()
	var out []types.Pos
	for r := center.Row - hi; r <= center.Row+hi; r++ {
		for c := center.Col - hi; c <= center.Col+hi; c++ {
			p := types.Pos{Row: r, Col: c}
			d := world.Manhattan(center, p)
			if d < lo || d > hi {
				continue
			}
			if world.Free(g, ctx.Entities, p) && !world.HasTag(g, p, types.TagMarker) {
				out = append(out, p)
			}
		}
	}
	return out
}

func rowDirection(sign int) types.Dir {
	switch sign {
	case -1:
		return types.DirUp
	case 1:
		return types.DirDown
	}
	return types.DirNone
}

func colDirection(sign int) types.Dir {
	switch sign {
	case -1:
		return types.DirLeft
	case 1:
		return types.DirRight
	}
	return types.DirNone
}

func opposite(d types.Dir) types.Dir {
	switch d {
	case types.DirUp:
		return types.DirDown
	case types.DirDown:
		return types.DirUp
	case types.DirLeft:
		return types.DirRight
	case types.DirRight:
		return types.DirLeft
	}
	return types.DirNone
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
