package ai

import (
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// Lurker tuning. The sensing radius ignores line of sight.
const (
	lurkerSense       = 8
	lurkerBandNear    = 4
	lurkerBandFar     = 5
	lurkerMarkerMin   = 2
	lurkerMarkerMax   = 10
	lurkerRelocateMin = 1
	lurkerRelocateMax = 5
	lurkerMarkerRipe  = 2
)

// actLurker keeps a territorial lurker at range. Once aware it kites the
// avatar while it can see it, and without sight ambushes through a proxy
// marker it can later teleport onto.
func actLurker(ctx Context, self *types.Entity, mem *types.LurkerMemory) Attack {
	dist := world.Manhattan(self.Pos, ctx.Avatar)
	if !mem.Aware && dist <= lurkerSense {
		mem.Aware = true
	}
	if !mem.Aware {
		randomStep(ctx, self)
		return Attack{}
	}

	if visibility.CanSee(ctx.Grid.Grid(), self.Pos, ctx.Avatar) {
		clearMarker(ctx, mem)
		switch {
		case dist > lurkerBandFar:
			stepToward(ctx, self, ctx.Avatar)
		case dist >= lurkerBandNear:
			return shoot(self, ctx.Avatar, dist)
		default:
			if ctx.RNG.Chance(1, 2) {
				return shoot(self, ctx.Avatar, dist)
			}
			stepAway(ctx, self, ctx.Avatar)
		}
		return Attack{}
	}

	if mem.Marker == nil {
		placeMarker(ctx, mem, ctx.Avatar, lurkerMarkerMin, lurkerMarkerMax)
		return Attack{}
	}

	mem.MarkerAge++
	if mem.MarkerAge < lurkerMarkerRipe {
		return Attack{}
	}
	if ctx.RNG.Chance(1, 2) {
		target := *mem.Marker
		clearMarker(ctx, mem)
		if world.Free(ctx.Grid.Grid(), ctx.Entities, target) {
			self.Pos = target
			self.Moved = true
			face(self, ctx.Avatar)
		}
		return Attack{}
	}
	clearMarker(ctx, mem)
	placeMarker(ctx, mem, self.Pos, lurkerRelocateMin, lurkerRelocateMax)
	return Attack{}
}

func shoot(self *types.Entity, avatar types.Pos, dist int) Attack {
	face(self, avatar)
	return Attack{Amount: combat.RangedDamage(dist), Ranged: true}
}

// placeMarker drops a fresh marker on a random free cell at Manhattan
// distance lo..hi from center. Nothing happens when no cell qualifies.
func placeMarker(ctx Context, mem *types.LurkerMemory, center types.Pos, lo, hi int) {
	cells := freeCells(ctx, center, lo, hi)
	if len(cells) == 0 {
		return
	}
	p := cells[ctx.RNG.Intn(len(cells))]
	if err := ctx.Grid.Add(p, types.TagMarker); err != nil {
		return
	}
	mem.Marker = &p
	mem.MarkerAge = 0
}

// clearMarker removes the lurker's marker from the grid and its memory.
func clearMarker(ctx Context, mem *types.LurkerMemory) {
	if mem.Marker == nil {
		return
	}
	_ = ctx.Grid.Remove(*mem.Marker, types.TagMarker)
	mem.Marker = nil
	mem.MarkerAge = 0
}

// ClearMarker removes a lurker's marker from the grid. The turn uses it for
// lurkers that die while their marker is out.
func ClearMarker(ed *world.Editor, e types.Entity) {
	mem, ok := e.Memory.(*types.LurkerMemory)
	if !ok || mem.Marker == nil {
		return
	}
	_ = ed.Remove(*mem.Marker, types.TagMarker)
}
