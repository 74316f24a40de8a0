package engine

import (
	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/engine/daynight"
	"github.com/nathoo/gloomcore/types"
)

// Loot is one weighted outcome of opening a prop. Item is a pickup tag
// ("potion", "stone", "oil"), an equipment name ("blade", "lantern") or
// empty for nothing.
type Loot struct {
	Item   string `json:"item"`
	Weight int    `json:"weight"`
	Count  int    `json:"count"`
}

// Config holds the tuning of a run. Everything here can be overridden by a
// dungeon file.
type Config struct {
	LightRadius    int `json:"light_radius"`
	DaylightRadius int `json:"daylight_radius"`
	LanternFuel    int `json:"lantern_fuel"`
	ThrowRange     int `json:"throw_range"`
	PotionHeal     int `json:"potion_heal"`
	BladeBonus     int `json:"blade_bonus"`

	// A smashed pot hides an ambusher AmbushChance in AmbushOutOf times.
	AmbushChance int        `json:"ambush_chance"`
	AmbushOutOf  int        `json:"ambush_out_of"`
	AmbushKind   types.Kind `json:"ambush_kind"`

	PoisonInterval int `json:"poison_interval"`
	PoisonDamage   int `json:"poison_damage"`

	PotDrops  []Loot `json:"pot_drops"`
	ChestLoot []Loot `json:"chest_loot"`

	Cycle    daynight.Cycle       `json:"cycle"`
	Handlers []types.EventHandler `json:"-"`
	Notes    []types.NoteDef      `json:"-"`

	Behaviors ai.Registry `json:"-"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		LightRadius:    3,
		DaylightRadius: 5,
		LanternFuel:    120,
		ThrowRange:     6,
		PotionHeal:     5,
		BladeBonus:     2,
		AmbushChance:   1,
		AmbushOutOf:    4,
		AmbushKind:     types.KindRat,
		PoisonInterval: 8,
		PoisonDamage:   1,
		PotDrops: []Loot{
			{Item: string(types.TagStone), Weight: 3, Count: 1},
			{Item: string(types.TagPotion), Weight: 1, Count: 1},
			{Item: "", Weight: 2},
		},
		ChestLoot: []Loot{
			{Item: string(types.TagPotion), Weight: 3, Count: 1},
			{Item: string(types.TagStone), Weight: 3, Count: 2},
			{Item: string(types.TagOil), Weight: 2, Count: 1},
			{Item: "blade", Weight: 1, Count: 1},
		},
		Cycle:     daynight.DefaultCycle(),
		Behaviors: ai.DefaultRegistry(),
	}
}

// Sight returns whether the avatar sees by light this turn and the radius
// it sees with. A full-visibility phase counts as lit with the daylight
// radius; otherwise a burning lantern gives the light radius.
func Sight(s types.Snapshot, cfg Config) (lit bool, radius int) {
	if cfg.Cycle.Lookup(s.TimeOfDay).FullVisibility {
		return true, cfg.DaylightRadius
	}
	if s.Avatar.Equipped.Lantern && s.Avatar.LanternLit && s.Avatar.Fuel > 0 {
		return true, cfg.LightRadius
	}
	return false, 0
}
