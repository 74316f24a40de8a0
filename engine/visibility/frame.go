package visibility

import (
	"github.com/nathoo/gloomcore/engine/daynight"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// Frame is everything a renderer needs for one turn. All fields are
// read-only views of a single snapshot.
type Frame struct {
	Grid     types.Grid
	Avatar   types.Pos
	Tiers    [][]int
	Glow     [][]float64
	Entities []types.Entity
	Phase    types.Phase
	Overlay  daynight.Overlay
}

// Visible reports whether the cell at p is drawn at all this turn.
func (f Frame) Visible(p types.Pos) bool {
	if p.Row < 0 || p.Row >= len(f.Tiers) || p.Col < 0 || p.Col >= len(f.Tiers[p.Row]) {
		return false
	}
	return f.Tiers[p.Row][p.Col] > TierNone
}

var kindGlyphs = map[types.Kind]rune{
	types.KindRat:     'r',
	types.KindHunter:  'h',
	types.KindCrawler: 'c',
	types.KindLurker:  'L',
	types.KindBrute:   'B',
}

var tagGlyphs = map[types.Tag]rune{
	types.TagTorch:  'T',
	types.TagPot:    'P',
	types.TagChest:  'C',
	types.TagShrine: 'S',
	types.TagMarker: '?',
	types.TagPotion: '!',
	types.TagStone:  '*',
	types.TagOil:    'o',
}

var terrainGlyphs = map[types.Terrain]rune{
	types.TerrainFloor:  '.',
	types.TerrainWall:   '#',
	types.TerrainChasm:  '~',
	types.TerrainStairs: '>',
}

// Glyph returns the character drawn at p: blank when the cell is not
// visible, otherwise the avatar, a living enemy, the most recent tag or
// the terrain, in that order.
func (f Frame) Glyph(p types.Pos) rune {
	if !f.Visible(p) {
		return ' '
	}
	if world.HasTag(f.Grid, p, types.TagAvatar) {
		return '@'
	}
	if i := world.EntityAt(f.Entities, p); i >= 0 {
		return kindGlyphs[f.Entities[i].Kind]
	}
	tags := world.Tags(f.Grid, p)
	for i := len(tags) - 1; i >= 0; i-- {
		if g, ok := tagGlyphs[tags[i]]; ok {
			return g
		}
	}
	t, _ := world.TerrainAt(f.Grid, p)
	return terrainGlyphs[t]
}

// Tier returns the light tier of p, or TierNone off the grid.
func (f Frame) Tier(p types.Pos) int {
	if !f.Visible(p) {
		return TierNone
	}
	return f.Tiers[p.Row][p.Col]
}
