package ai

import (
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/types"
)

// actHunter carries its own light and pursues relentlessly: toward the
// avatar while in sight, toward where it last saw it otherwise.
func actHunter(ctx Context, self *types.Entity, mem *types.HunterMemory) Attack {
	if adjacent(self, ctx.Avatar) {
		face(self, ctx.Avatar)
		seen := ctx.Avatar
		mem.LastSeen = &seen
		return Attack{Amount: combat.HostileMelee(self.Attack, combat.Variance(ctx.RNG), ctx.Defense)}
	}

	if visibility.CanSee(ctx.Grid.Grid(), self.Pos, ctx.Avatar) {
		seen := ctx.Avatar
		mem.LastSeen = &seen
		stepToward(ctx, self, ctx.Avatar)
		return Attack{}
	}

	if mem.LastSeen != nil {
		if self.Pos == *mem.LastSeen || !stepToward(ctx, self, *mem.LastSeen) {
			mem.LastSeen = nil
		}
	}
	return Attack{}
}
