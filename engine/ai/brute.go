package ai

import (
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/types"
)

// actBrute never moves. The first turn the avatar stands next to it, it
// wakes; from then on it hits anything adjacent.
func actBrute(ctx Context, self *types.Entity, mem *types.BruteMemory) Attack {
	if !adjacent(self, ctx.Avatar) {
		return Attack{}
	}
	face(self, ctx.Avatar)
	if !mem.Awake {
		mem.Awake = true
		return Attack{}
	}
	return Attack{Amount: combat.HostileMelee(self.Attack, combat.Variance(ctx.RNG), ctx.Defense)}
}
