// Package combat holds the damage formulas and the only code that changes
// hit points.
package combat

import (
	"github.com/nathoo/gloomcore/engine/rng"
	"github.com/nathoo/gloomcore/types"
)

// BaseStoneDamage is the damage of a thrown stone before variance.
const BaseStoneDamage = 2

// Variance draws the -1/0/+1 swing of one attacker's damage: once per
// player action, once per hostile that lands a melee hit.
func Variance(r *rng.RNG) int {
	return r.Roll(3) - 2
}

// Melee returns the avatar's melee damage against a hostile of kind target.
// Brutes always take exactly 1.
func Melee(target types.Kind, base, bonus, variance int) int {
	if target == types.KindBrute {
		return 1
	}
	return max(0, base+bonus+variance)
}

// HostileMelee returns the damage a hostile's melee hit does to the avatar.
func HostileMelee(attack, variance, defense int) int {
	return max(0, attack+variance-defense)
}

// RangedDamage returns a ranged attack's damage by Manhattan distance.
func RangedDamage(distance int) int {
	switch {
	case distance <= 1:
		return 1
	case distance <= 3:
		return 2
	case distance <= 5:
		return 1
	default:
		return 0
	}
}

// StoneDamage returns the damage of a thrown stone. A stone always hurts,
// and a brute still takes exactly 1.
func StoneDamage(target types.Kind, variance int) int {
	if target == types.KindBrute {
		return 1
	}
	return max(1, BaseStoneDamage+variance)
}

// Hit describes damage applied to an entity. Dealt is the health actually
// removed, so an overkill reports the pre-hit health.
type Hit struct {
	Dealt  int
	Killed bool
}

// DamageEntity lowers e's health by amount, clamped at zero.
func DamageEntity(e *types.Entity, amount int) Hit {
	if amount <= 0 || e.HP <= 0 {
		return Hit{}
	}
	dealt := min(amount, e.HP)
	e.HP -= dealt
	return Hit{Dealt: dealt, Killed: e.HP == 0}
}

// DamageAvatar lowers the avatar's health by amount, clamped at zero, and
// returns the health actually removed.
func DamageAvatar(a *types.Avatar, amount int) int {
	if amount <= 0 || a.HP <= 0 {
		return 0
	}
	dealt := min(amount, a.HP)
	a.HP -= dealt
	return dealt
}

// HealAvatar raises the avatar's health by amount, clamped at MaxHP, and
// returns the health actually restored.
func HealAvatar(a *types.Avatar, amount int) int {
	if amount <= 0 {
		return 0
	}
	healed := min(amount, a.MaxHP-a.HP)
	if healed < 0 {
		healed = 0
	}
	a.HP += healed
	return healed
}

// RemoveDead returns the entities still alive, in their original order,
// and the positions where the others died.
func RemoveDead(entities []types.Entity) (alive []types.Entity, deaths []types.Pos) {
	alive = make([]types.Entity, 0, len(entities))
	for _, e := range entities {
		if e.HP <= 0 {
			deaths = append(deaths, e.Pos)
			continue
		}
		alive = append(alive, e)
	}
	return alive, deaths
}
