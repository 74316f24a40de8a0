// Package visibility computes what the avatar can see each turn: field of
// view tiers, point-light glow, and the line-of-sight query both use.
package visibility

import (
	"math"

	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// Visibility tiers, from unseen to fully lit.
const (
	TierNone = 0
	TierDim  = 1
	TierLow  = 2
	TierFull = 3
)

// Glow falloff of a single light source.
const (
	GlowSelf       = 1.0
	GlowAdjacent   = 0.75
	GlowDiagonal   = 0.5
	GlowSecondRing = 0.25
)

// CanSee reports whether from has an unobstructed line to to. Only interior
// cells are tested, so a cell always sees itself and its eight neighbours.
func CanSee(g types.Grid, from, to types.Pos) bool {
	if from == to {
		return true
	}

	if from.Row == to.Row || from.Col == to.Col {
		dr, dc := world.Sign(to.Row-from.Row), world.Sign(to.Col-from.Col)
		p := types.Pos{Row: from.Row + dr, Col: from.Col + dc}
		for p != to {
			if world.BlocksSight(g, p) {
				return false
			}
			p.Row += dr
			p.Col += dc
		}
		return true
	}

	// Bresenham walk, endpoints excluded.
	x0, y0 := from.Col, from.Row
	x1, y1 := to.Col, to.Row
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := world.Sign(x1-x0), world.Sign(y1-y0)
	e := dx + dy
	for {
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		if world.BlocksSight(g, types.Pos{Row: y0, Col: x0}) {
			return false
		}
	}
}

// FOV returns the avatar-centred tier of every cell. Without a light only
// the avatar's cell and its eight neighbours are visible, and dimly. With a
// light the tier falls off with Euclidean distance against radius, and
// cells out of line of sight stay dark.
func FOV(g types.Grid, avatar types.Pos, lit bool, radius int) [][]int {
	tiers := newTiers(g)

	if !lit {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				p := types.Pos{Row: avatar.Row + dr, Col: avatar.Col + dc}
				if world.InBounds(g, p) {
					tiers[p.Row][p.Col] = TierDim
				}
			}
		}
		if world.InBounds(g, avatar) {
			tiers[avatar.Row][avatar.Col] = TierFull
		}
		return tiers
	}

	reach := radius + 2
	for row := avatar.Row - reach; row <= avatar.Row+reach; row++ {
		for col := avatar.Col - reach; col <= avatar.Col+reach; col++ {
			p := types.Pos{Row: row, Col: col}
			if !world.InBounds(g, p) {
				continue
			}
			t := litTier(avatar, p, radius)
			if t == TierNone || !CanSee(g, avatar, p) {
				continue
			}
			tiers[row][col] = t
		}
	}
	return tiers
}

// litTier compares squared distances so the radii are exact.
func litTier(avatar, p types.Pos, radius int) int {
	dr, dc := p.Row-avatar.Row, p.Col-avatar.Col
	d2 := dr*dr + dc*dc
	switch {
	case d2 <= radius*radius:
		return TierFull
	case d2 <= (radius+1)*(radius+1):
		return TierLow
	case d2 <= (radius+2)*(radius+2):
		return TierDim
	default:
		return TierNone
	}
}

// Sources returns the cells of every light source: torch tags first in
// row-major order, then light-carrying entities in list order.
func Sources(g types.Grid, entities []types.Entity) []types.Pos {
	out := world.Positions(g, types.TagTorch)
	for _, e := range entities {
		if e.CarriesLight && e.HP > 0 {
			out = append(out, e.Pos)
		}
	}
	return out
}

// Glow returns the per-cell illumination contributed by light sources.
// Overlapping sources combine by maximum.
func Glow(g types.Grid, entities []types.Entity) [][]float64 {
	glow := make([][]float64, g.Height)
	for r := range glow {
		glow[r] = make([]float64, g.Width)
	}

	for _, src := range Sources(g, entities) {
		for dr := -2; dr <= 2; dr++ {
			for dc := -2; dc <= 2; dc++ {
				p := types.Pos{Row: src.Row + dr, Col: src.Col + dc}
				if !world.InBounds(g, p) {
					continue
				}
				v := falloff(abs(dr), abs(dc))
				if v > glow[p.Row][p.Col] {
					glow[p.Row][p.Col] = v
				}
			}
		}
	}
	return glow
}

func falloff(dr, dc int) float64 {
	switch {
	case dr == 0 && dc == 0:
		return GlowSelf
	case dr+dc == 1:
		return GlowAdjacent
	case dr == 1 && dc == 1:
		return GlowDiagonal
	default:
		return GlowSecondRing
	}
}

// GlowTier converts a glow intensity into a tier.
func GlowTier(v float64) int {
	if v <= 0 {
		return TierNone
	}
	return min(TierFull, int(math.Ceil(v*TierFull)))
}

// Tiers composes field of view and glow by maximum. Glow is independent
// of the avatar's view, and a light source's own cell is always fully lit.
func Tiers(g types.Grid, avatar types.Pos, lit bool, radius int, entities []types.Entity) [][]int {
	tiers := FOV(g, avatar, lit, radius)
	glow := Glow(g, entities)

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			tiers[row][col] = max(tiers[row][col], GlowTier(glow[row][col]))
		}
	}

	for _, src := range Sources(g, entities) {
		if world.InBounds(g, src) {
			tiers[src.Row][src.Col] = TierFull
		}
	}
	return tiers
}

func newTiers(g types.Grid) [][]int {
	tiers := make([][]int, g.Height)
	for r := range tiers {
		tiers[r] = make([]int, g.Width)
	}
	return tiers
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
