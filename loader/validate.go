package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/engine/events"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"has_item": true,
	"flag_set": true,
	"flag_not": true,
	"flag_is":  true,
	"stat_gt":  true,
	"stat_lt":  true,
	"not":      true,
}

var knownItems = map[string]bool{
	"potion": true, "stone": true, "oil": true, "blade": true, "lantern": true,
}

// validate checks the compiled dungeon for consistency. Warnings are kept
// on the dungeon for the caller to report.
func validate(d *Dungeon) error {
	ve := &ValidationError{Warnings: d.Warnings}
	s := d.Snapshot
	g := s.Grid

	if d.Title == "" {
		ve.errorf("Dungeon.title is required")
	}

	if n := world.CountTag(g, types.TagAvatar); n != 1 {
		ve.errorf("map must hold exactly one avatar, found %d", n)
	}
	avatar, _ := world.FindAvatar(g)
	if len(world.Positions(g, types.TagAvatar)) == 1 {
		if t, _ := world.TerrainAt(g, avatar); !world.Passable(t) {
			ve.errorf("avatar stands on impassable terrain at %s", describe(avatar))
		}
	}
	if !hasTerrain(g, types.TerrainStairs) {
		ve.warnf("dungeon has no stairs, the run cannot be won")
	}

	validateEnemies(s, avatar, ve)
	validateAvatar(s.Avatar, ve)
	validateConfig(d.Config, ve)
	validateHandlers(d.Config.Handlers, ve)
	validateNotes(d.Config.Notes, ve)

	if len(ve.Errors) == 0 {
		if err := engine.Validate(s); err != nil {
			ve.errorf("snapshot: %v", err)
		}
	}

	d.Warnings = ve.Warnings
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func hasTerrain(g types.Grid, t types.Terrain) bool {
	for _, c := range g.Terrain {
		if c == t {
			return true
		}
	}
	return false
}

func validateEnemies(s types.Snapshot, avatar types.Pos, ve *ValidationError) {
	occupied := map[types.Pos]int{}
	for _, e := range s.Entities {
		where := fmt.Sprintf("%s at %s", e.Kind, describe(e.Pos))
		t, ok := world.TerrainAt(s.Grid, e.Pos)
		if !ok {
			ve.errorf("%s is outside the map", where)
			continue
		}
		if !world.Passable(t) {
			ve.errorf("%s stands on impassable terrain", where)
		}
		if _, prop := world.PropAt(s.Grid, e.Pos); prop {
			ve.errorf("%s shares its cell with a prop", where)
		}
		if e.Pos == avatar {
			ve.errorf("%s shares its cell with the avatar", where)
		}
		if prev, dup := occupied[e.Pos]; dup {
			ve.errorf("%s shares its cell with enemy %d", where, prev)
		}
		occupied[e.Pos] = e.ID
	}
}

func validateAvatar(a types.Avatar, ve *ValidationError) {
	if a.MaxHP <= 0 {
		ve.errorf("Avatar.max_hp must be positive")
	}
	if a.HP <= 0 || a.HP > a.MaxHP {
		ve.errorf("Avatar.hp %d must be in 1..%d", a.HP, a.MaxHP)
	}
	if a.Attack < 0 || a.Defense < 0 {
		ve.errorf("Avatar.attack and Avatar.defense must not be negative")
	}
	if a.Inventory.Potions < 0 || a.Inventory.Stones < 0 || a.Inventory.Oil < 0 {
		ve.errorf("Avatar inventory counts must not be negative")
	}
}

func validateConfig(cfg engine.Config, ve *ValidationError) {
	positive := map[string]int{
		"lantern_fuel":    cfg.LanternFuel,
		"throw_range":     cfg.ThrowRange,
		"poison_interval": cfg.PoisonInterval,
	}
	for name, v := range positive {
		if v <= 0 {
			ve.errorf("Tuning.%s must be positive, got %d", name, v)
		}
	}
	nonNegative := map[string]int{
		"light_radius":    cfg.LightRadius,
		"daylight_radius": cfg.DaylightRadius,
		"potion_heal":     cfg.PotionHeal,
		"blade_bonus":     cfg.BladeBonus,
		"poison_damage":   cfg.PoisonDamage,
		"ambush_chance":   cfg.AmbushChance,
		"ambush_out_of":   cfg.AmbushOutOf,
	}
	for name, v := range nonNegative {
		if v < 0 {
			ve.errorf("Tuning.%s must not be negative, got %d", name, v)
		}
	}
	if cfg.AmbushChance > cfg.AmbushOutOf {
		ve.errorf("Tuning.ambush_chance %d exceeds ambush_out_of %d", cfg.AmbushChance, cfg.AmbushOutOf)
	}
	if !ai.KnownKind(cfg.AmbushKind) {
		ve.errorf("Tuning.ambush_kind %q is not a known enemy", cfg.AmbushKind)
	}
	validateLoot("pot_drops", cfg.PotDrops, ve)
	validateLoot("chest_loot", cfg.ChestLoot, ve)
}

func validateLoot(name string, table []engine.Loot, ve *ValidationError) {
	for i, l := range table {
		if l.Item != "" && !knownItems[l.Item] {
			ve.errorf("Tuning.%s[%d]: unknown item %q", name, i+1, l.Item)
		}
		if l.Weight < 0 {
			ve.errorf("Tuning.%s[%d]: weight must not be negative", name, i+1)
		}
	}
	if name == "pot_drops" {
		for i, l := range table {
			if l.Item == "blade" || l.Item == "lantern" {
				ve.errorf("Tuning.pot_drops[%d]: %s is not a pickup", i+1, l.Item)
			}
		}
	}
}

func validateHandlers(handlers []types.EventHandler, ve *ValidationError) {
	for _, h := range handlers {
		if !knownEvent(h.EventID) {
			ve.warnf("handler for %q will never fire", h.EventID)
		}
		validateConditions(h.Conditions, ve)
	}
}

// knownEvent reports whether some turn can raise an event matching pattern.
func knownEvent(pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		for _, p := range []string{"killed:", "opened:", "acquired:", events.Revived, events.Checkpoint, events.Won, events.Died} {
			if strings.HasPrefix(p, prefix) || strings.HasPrefix(prefix, p) {
				return true
			}
		}
		return false
	}
	switch pattern {
	case events.Revived, events.Checkpoint, events.Won, events.Died:
		return true
	}
	if kind, ok := strings.CutPrefix(pattern, "killed:"); ok {
		return ai.KnownKind(types.Kind(kind))
	}
	if tag, ok := strings.CutPrefix(pattern, "opened:"); ok {
		return tag == string(types.TagPot) || tag == string(types.TagChest)
	}
	if item, ok := strings.CutPrefix(pattern, "acquired:"); ok {
		return knownItems[item]
	}
	return false
}

func validateConditions(conditions []types.HandlerCondition, ve *ValidationError) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			ve.errorf("unknown condition type %q", cond.Type)
			continue
		}
		switch cond.Type {
		case "has_item":
			if item, _ := cond.Params["item"].(string); !knownItems[item] {
				ve.errorf("condition has_item references unknown item %q", item)
			}
		case "stat_gt", "stat_lt":
			name, _ := cond.Params["stat"].(string)
			if _, ok := events.Stat(types.Snapshot{}, name); !ok {
				ve.errorf("condition %s references unknown stat %q", cond.Type, name)
			}
		case "not":
			if cond.Inner == nil {
				ve.errorf("condition not has no inner condition")
			} else {
				validateConditions([]types.HandlerCondition{*cond.Inner}, ve)
			}
		}
	}
}

func validateNotes(notes []types.NoteDef, ve *ValidationError) {
	titles := map[string]bool{}
	for _, n := range notes {
		if n.Title != "" {
			titles[n.Title] = true
		}
	}
	for i, n := range notes {
		if n.Flag == "" {
			ve.errorf("note %d has no flag", i+1)
		}
		if n.Title == "" && n.Completes == "" {
			ve.errorf("note %d needs a title or a note to complete", i+1)
		}
		if n.Completes != "" && !titles[n.Completes] {
			ve.warnf("note %d completes %q, which no note unlocks", i+1, n.Completes)
		}
	}
}
