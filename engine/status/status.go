// Package status ticks time-based conditions on the avatar.
package status

import "github.com/nathoo/gloomcore/types"

// Tick advances one condition by one accepted turn. It returns the new
// condition and the damage due this turn. An inactive condition is left
// exactly as it was.
func Tick(c types.Condition) (types.Condition, int) {
	if !c.Active {
		return c, 0
	}
	c.StepsSinceLastDamage++
	if c.StepInterval > 0 && c.StepsSinceLastDamage >= c.StepInterval {
		c.StepsSinceLastDamage = 0
		return c, c.DamagePerInterval
	}
	return c, 0
}

// TickAll ticks every condition in the bag and returns the total damage.
func TickAll(cs types.Conditions) (types.Conditions, int) {
	var dmg int
	cs.Poison, dmg = Tick(cs.Poison)
	return cs, dmg
}

// Inflict activates c with the given interval and damage. Re-inflicting an
// active condition keeps its counter.
func Inflict(c types.Condition, interval, damage int) types.Condition {
	if !c.Active {
		c.StepsSinceLastDamage = 0
	}
	c.Active = true
	c.StepInterval = interval
	c.DamagePerInterval = damage
	return c
}

// Cure deactivates c. The counter is left where it was.
func Cure(c types.Condition) types.Condition {
	c.Active = false
	return c
}
