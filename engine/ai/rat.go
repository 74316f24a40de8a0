package ai

import (
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

const ratSight = 6

// actRat wanders until it spots the avatar nearby, then hunts it down and
// follows the last place it saw it.
func actRat(ctx Context, self *types.Entity, mem *types.RatMemory) Attack {
	if adjacent(self, ctx.Avatar) {
		face(self, ctx.Avatar)
		mem.Hunting = true
		return Attack{Amount: combat.HostileMelee(self.Attack, combat.Variance(ctx.RNG), ctx.Defense)}
	}

	if world.Manhattan(self.Pos, ctx.Avatar) <= ratSight && visibility.CanSee(ctx.Grid.Grid(), self.Pos, ctx.Avatar) {
		mem.Hunting = true
		seen := ctx.Avatar
		mem.LastSeen = &seen
		stepToward(ctx, self, ctx.Avatar)
		return Attack{}
	}

	if mem.Hunting && mem.LastSeen != nil {
		if self.Pos == *mem.LastSeen || !stepToward(ctx, self, *mem.LastSeen) {
			mem.Hunting = false
			mem.LastSeen = nil
		}
		return Attack{}
	}

	mem.Hunting = false
	if ctx.RNG.Chance(1, 2) {
		randomStep(ctx, self)
	}
	return Attack{}
}
