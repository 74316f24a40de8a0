package events

import "github.com/nathoo/gloomcore/types"

// EvalCondition evaluates a single handler condition against a snapshot.
func EvalCondition(c types.HandlerCondition, s types.Snapshot) bool {
	switch c.Type {
	case "has_item":
		item, _ := c.Params["item"].(string)
		return HasItem(s.Avatar, item)

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return s.StoryFlags[flag]

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !s.StoryFlags[flag]

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return s.StoryFlags[flag] == value

	case "stat_gt":
		stat, _ := c.Params["stat"].(string)
		v, ok := Stat(s, stat)
		return ok && v > toInt(c.Params["value"])

	case "stat_lt":
		stat, _ := c.Params["stat"].(string)
		v, ok := Stat(s, stat)
		return ok && v < toInt(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.HandlerCondition, s types.Snapshot) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s) {
			return false
		}
	}
	return true
}

// HasItem reports whether the avatar holds at least one of item, or has
// it equipped.
func HasItem(a types.Avatar, item string) bool {
	switch item {
	case "potion":
		return a.Inventory.Potions > 0
	case "stone":
		return a.Inventory.Stones > 0
	case "oil":
		return a.Inventory.Oil > 0
	case "blade":
		return a.Equipped.Blade
	case "lantern":
		return a.Equipped.Lantern
	default:
		return false
	}
}

// Stat looks up a named run counter or avatar attribute.
func Stat(s types.Snapshot, name string) (int, bool) {
	switch name {
	case "steps":
		return s.Stats.Steps, true
	case "enemies_defeated":
		return s.Stats.EnemiesDefeated, true
	case "damage_dealt":
		return s.Stats.DamageDealt, true
	case "damage_taken":
		return s.Stats.DamageTaken, true
	case "props_opened":
		return s.Stats.PropsOpened, true
	case "items_collected":
		return s.Stats.ItemsCollected, true
	case "stones_thrown":
		return s.Stats.StonesThrown, true
	case "revivals":
		return s.Stats.Revivals, true
	case "hp":
		return s.Avatar.HP, true
	case "fuel":
		return s.Avatar.Fuel, true
	case "cycle":
		return s.TimeOfDay.CycleCount, true
	default:
		return 0, false
	}
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
