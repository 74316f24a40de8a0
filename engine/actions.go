package engine

import (
	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/events"
	"github.com/nathoo/gloomcore/engine/status"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// resolve applies the player's action. It returns false, without drawing
// randomness or writing anything, when the action is a no-op.
func (t *turn) resolve(a types.Action) bool {
	switch a {
	case types.ActionMoveUp:
		return t.move(types.DirUp)
	case types.ActionMoveDown:
		return t.move(types.DirDown)
	case types.ActionMoveLeft:
		return t.move(types.DirLeft)
	case types.ActionMoveRight:
		return t.move(types.DirRight)
	case types.ActionThrow:
		return t.throw()
	case types.ActionUseConsumable:
		return t.use()
	case types.ActionInteract:
		return t.interact()
	case types.ActionWait:
		t.say("You wait.")
		return true
	default:
		t.say("Nothing happens.")
		return false
	}
}

// move steps the avatar, or attacks or interacts with whatever occupies
// the target cell.
func (t *turn) move(d types.Dir) bool {
	target := world.Step(t.avatar, d)
	terrain, ok := world.TerrainAt(t.next.Grid, target)
	if !ok || !world.Passable(terrain) {
		t.say("Something blocks your way.")
		return false
	}

	if i := world.EntityAt(t.next.Entities, target); i >= 0 {
		t.next.Avatar.Facing = d
		t.melee(i)
		return true
	}

	if prop, ok := world.PropAt(t.next.Grid, target); ok {
		if !t.useProp(target, prop) {
			return false
		}
		t.next.Avatar.Facing = d
		return true
	}

	t.next.Avatar.Facing = d
	mustGrid(t.grid.Move(t.avatar, target, types.TagAvatar))
	t.avatar = target
	t.collect(target)

	if terrain == types.TerrainStairs {
		t.next.Status = types.StatusWon
		t.raise(types.Event{ID: events.Won, Pos: target})
		t.say("You climb the stairs out of the dark.")
	}
	return true
}

func (t *turn) melee(i int) {
	e := &t.next.Entities[i]
	bonus := 0
	if t.next.Avatar.Equipped.Blade {
		bonus = t.cfg.BladeBonus
	}
	dmg := combat.Melee(e.Kind, t.next.Avatar.Attack, bonus, t.roll())
	hit := combat.DamageEntity(e, dmg)
	t.result.DamageDealt += hit.Dealt
	t.next.Stats.DamageDealt += hit.Dealt
	if hit.Dealt == 0 {
		t.say("You miss the %s.", e.Kind)
		return
	}
	t.say("You strike the %s for %d.", e.Kind, hit.Dealt)
}

// collect picks up every pickup in the cell.
func (t *turn) collect(p types.Pos) {
	for _, tag := range append([]types.Tag(nil), world.Tags(t.grid.Grid(), p)...) {
		if !world.IsPickup(tag) {
			continue
		}
		mustGrid(t.grid.Remove(p, tag))
		t.gain(string(tag), 1, p)
	}
}

// gain adds count of item to the avatar and raises acquired:<item>.
// Equipment already owned gives a potion instead.
func (t *turn) gain(item string, count int, at types.Pos) {
	av := &t.next.Avatar
	switch item {
	case string(types.TagPotion):
		av.Inventory.Potions += count
	case string(types.TagStone):
		av.Inventory.Stones += count
	case string(types.TagOil):
		av.Inventory.Oil += count
	case "blade":
		if av.Equipped.Blade {
			t.gain(string(types.TagPotion), 1, at)
			return
		}
		av.Equipped.Blade = true
	case "lantern":
		if av.Equipped.Lantern {
			t.gain(string(types.TagOil), 1, at)
			return
		}
		av.Equipped.Lantern = true
		av.LanternLit = true
		av.Fuel = t.cfg.LanternFuel
	default:
		return
	}
	t.next.Stats.ItemsCollected += count
	t.raise(types.Event{ID: events.Acquired(item), Pos: at})
	if count > 1 {
		t.say("You pick up %d %ss.", count, item)
	} else {
		t.say("You pick up a %s.", item)
	}
}

// useProp operates the prop at p, whether bumped into or faced. It returns
// false when the prop has nothing to offer.
func (t *turn) useProp(p types.Pos, prop types.Tag) bool {
	switch prop {
	case types.TagPot:
		t.smashPot(p)
	case types.TagChest:
		t.openChest(p)
	case types.TagShrine:
		t.checkpoint = true
		t.say("You kneel at the shrine.")
	case types.TagTorch:
		return t.relightAt()
	default:
		return false
	}
	return true
}

func (t *turn) opened(p types.Pos, prop types.Tag) {
	mustGrid(t.grid.Remove(p, prop))
	t.next.Stats.PropsOpened++
	t.raise(types.Event{ID: events.Opened(prop), Pos: p})
}

// smashPot breaks a pot. Sometimes something was hiding inside and gets a
// free attack; otherwise the pot may leave a pickup behind.
func (t *turn) smashPot(p types.Pos) {
	t.opened(p, types.TagPot)
	t.say("The pot shatters.")

	if t.cfg.AmbushOutOf > 0 && t.rng.Chance(t.cfg.AmbushChance, t.cfg.AmbushOutOf) {
		e := ai.Spawn(t.nextID(), t.cfg.AmbushKind, p, 0, 0)
		face := world.Orthogonal[0]
		for _, d := range world.Orthogonal {
			if world.Step(p, d) == t.avatar {
				face = d
			}
		}
		e.Facing = face
		t.next.Entities = append(t.next.Entities, e)

		dmg := combat.HostileMelee(e.Attack, combat.Variance(t.rng), t.next.Avatar.Defense)
		t.incoming += dmg
		t.say("A %s bursts out and bites you for %d!", e.Kind, dmg)
		return
	}

	if loot, ok := t.pick(t.cfg.PotDrops); ok && loot.Item != "" {
		mustGrid(t.grid.Add(p, types.Tag(loot.Item)))
		t.say("Something rolls out of the shards.")
	}
}

func (t *turn) openChest(p types.Pos) {
	t.opened(p, types.TagChest)
	t.say("The chest creaks open.")
	loot, ok := t.pick(t.cfg.ChestLoot)
	if !ok || loot.Item == "" {
		t.say("It is empty.")
		return
	}
	t.gain(loot.Item, max(1, loot.Count), p)
}

func (t *turn) pick(table []Loot) (Loot, bool) {
	weights := make([]int, 0, len(table))
	for _, l := range table {
		if l.Weight > 0 {
			weights = append(weights, l.Weight)
		}
	}
	if len(weights) == 0 {
		return Loot{}, false
	}
	idx := t.rng.WeightedSelect(weights)
	for _, l := range table {
		if l.Weight <= 0 {
			continue
		}
		if idx == 0 {
			return l, true
		}
		idx--
	}
	return Loot{}, false
}

func (t *turn) nextID() int {
	id := t.next.NextEntityID
	for _, e := range t.next.Entities {
		id = max(id, e.ID+1)
	}
	t.next.NextEntityID = id + 1
	return id
}

// relightAt relights and refuels an equipped lantern from a torch.
func (t *turn) relightAt() bool {
	av := &t.next.Avatar
	if !av.Equipped.Lantern || (av.LanternLit && av.Fuel >= t.cfg.LanternFuel) {
		t.say("The torch crackles.")
		return false
	}
	av.Fuel = t.cfg.LanternFuel
	av.LanternLit = true
	t.say("You relight your lantern from the torch.")
	return true
}

// throw hurls a stone along the facing direction. It stops at the first
// wall or prop and hits the first living entity in its path. The stone
// lands where it stopped unless that cell is a chasm.
func (t *turn) throw() bool {
	av := &t.next.Avatar
	if av.Inventory.Stones <= 0 {
		t.say("You have no stones.")
		return false
	}
	first := world.Step(t.avatar, av.Facing)
	if av.Facing == types.DirNone || world.BlocksSight(t.next.Grid, first) {
		t.say("There is no room to throw.")
		return false
	}
	if _, prop := world.PropAt(t.next.Grid, first); prop {
		t.say("There is no room to throw.")
		return false
	}
	av.Inventory.Stones--
	t.next.Stats.StonesThrown++

	landing := t.avatar
	for i := 1; i <= t.cfg.ThrowRange; i++ {
		p := world.Step(landing, av.Facing)
		if world.BlocksSight(t.next.Grid, p) {
			break
		}
		if _, prop := world.PropAt(t.grid.Grid(), p); prop {
			break
		}
		landing = p
		if idx := world.EntityAt(t.next.Entities, p); idx >= 0 {
			e := &t.next.Entities[idx]
			hit := combat.DamageEntity(e, combat.StoneDamage(e.Kind, t.roll()))
			t.result.DamageDealt += hit.Dealt
			t.next.Stats.DamageDealt += hit.Dealt
			t.say("The stone strikes the %s for %d.", e.Kind, hit.Dealt)
			break
		}
	}

	if terrain, _ := world.TerrainAt(t.next.Grid, landing); terrain == types.TerrainChasm {
		t.say("The stone falls into the chasm.")
		return true
	}
	mustGrid(t.grid.Add(landing, types.TagStone))
	return true
}

// use drinks a potion, or refuels the lantern when there is no potion.
func (t *turn) use() bool {
	av := &t.next.Avatar
	if av.Inventory.Potions > 0 {
		av.Inventory.Potions--
		healed := combat.HealAvatar(av, t.cfg.PotionHeal)
		t.next.Conditions.Poison = status.Cure(t.next.Conditions.Poison)
		t.say("You drink a potion and recover %d.", healed)
		return true
	}
	if av.Inventory.Oil > 0 && av.Equipped.Lantern && (!av.LanternLit || av.Fuel < t.cfg.LanternFuel) {
		av.Inventory.Oil--
		av.Fuel = t.cfg.LanternFuel
		av.LanternLit = true
		t.say("You refill and light your lantern.")
		return true
	}
	t.say("You have nothing to use.")
	return false
}

// interact operates the prop in the faced cell.
func (t *turn) interact() bool {
	target := world.Step(t.avatar, t.next.Avatar.Facing)
	prop, ok := world.PropAt(t.next.Grid, target)
	if !ok {
		t.say("There is nothing there.")
		return false
	}
	return t.useProp(target, prop)
}
