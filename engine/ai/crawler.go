package ai

import (
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

const crawlerHideDistance = 5

// actCrawler bites when adjacent and otherwise mostly keeps its distance:
// in sight it advances one turn in three and retreats the rest, out of
// sight and far away it usually holds still.
func actCrawler(ctx Context, self *types.Entity, mem *types.CrawlerMemory) Attack {
	if adjacent(self, ctx.Avatar) {
		face(self, ctx.Avatar)
		mem.LastMoved = false
		return Attack{
			Amount:  combat.HostileMelee(self.Attack, 0, ctx.Defense),
			Poisons: true,
		}
	}

	if visibility.CanSee(ctx.Grid.Grid(), self.Pos, ctx.Avatar) {
		if ctx.RNG.Chance(1, 3) {
			mem.LastMoved = stepToward(ctx, self, ctx.Avatar)
		} else {
			mem.LastMoved = stepAway(ctx, self, ctx.Avatar)
		}
		return Attack{}
	}

	if world.Manhattan(self.Pos, ctx.Avatar) > crawlerHideDistance && ctx.RNG.Chance(3, 4) {
		mem.LastMoved = false
		return Attack{}
	}
	mem.LastMoved = randomStep(ctx, self)
	return Attack{}
}
