// Package ai decides what each hostile does on its turn. Every kind has
// exactly one behavior in the registry and sees only its own memory type.
package ai

import (
	"fmt"

	"github.com/nathoo/gloomcore/engine/rng"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// Context is what a behavior may look at during its turn. Entities is
// read-only apart from the acting entity's own record; grid changes go
// through Grid so invariants are checked on every write.
type Context struct {
	Grid      *world.Editor
	Entities  []types.Entity
	Avatar    types.Pos
	AvatarLit bool
	Defense   int
	RNG       *rng.RNG
}

// Attack is the damage a behavior deals to the avatar this turn.
type Attack struct {
	Amount  int
	Ranged  bool
	Poisons bool
}

// Behavior acts for one entity. It may change the entity's position,
// facing and memory, never anyone else's.
type Behavior interface {
	Act(ctx Context, self *types.Entity) Attack
}

// Registry maps every kind to its behavior.
type Registry map[types.Kind]Behavior

// DefaultRegistry returns the behaviors of all built-in kinds.
func DefaultRegistry() Registry {
	return Registry{
		types.KindRat:     adapt[types.RatMemory](actRat),
		types.KindHunter:  adapt[types.HunterMemory](actHunter),
		types.KindCrawler: adapt[types.CrawlerMemory](actCrawler),
		types.KindLurker:  adapt[types.LurkerMemory](actLurker),
		types.KindBrute:   adapt[types.BruteMemory](actBrute),
	}
}

// Act runs the behavior registered for self's kind. An unregistered kind
// is a programming error and panics.
func (r Registry) Act(ctx Context, self *types.Entity) Attack {
	b, ok := r[self.Kind]
	if !ok {
		panic(fmt.Sprintf("ai: no behavior registered for kind %q", self.Kind))
	}
	return b.Act(ctx, self)
}

// memoryPtr is satisfied by *M when *M is one of the sealed memory types.
type memoryPtr[M any] interface {
	*M
	types.Memory
}

// adapter lets a behavior be written against its concrete memory type.
// Each call works on a fresh copy of the memory so the record the entity
// carried into the turn is never written.
type adapter[M any, P memoryPtr[M]] struct {
	act func(ctx Context, self *types.Entity, mem P) Attack
}

func adapt[M any, P memoryPtr[M]](act func(Context, *types.Entity, P) Attack) Behavior {
	return adapter[M, P]{act: act}
}

func (a adapter[M, P]) Act(ctx Context, self *types.Entity) Attack {
	var mem M
	if self.Memory != nil {
		cur, ok := self.Memory.(P)
		if !ok {
			panic(fmt.Sprintf("ai: entity %d (%s) carries %T memory", self.ID, self.Kind, self.Memory))
		}
		mem = *cur
	}
	p := P(&mem)
	self.Memory = p
	return a.act(ctx, self, p)
}

// NewMemory returns the zero memory for kind.
func NewMemory(kind types.Kind) types.Memory {
	switch kind {
	case types.KindRat:
		return &types.RatMemory{}
	case types.KindHunter:
		return &types.HunterMemory{}
	case types.KindCrawler:
		return &types.CrawlerMemory{}
	case types.KindLurker:
		return &types.LurkerMemory{}
	case types.KindBrute:
		return &types.BruteMemory{}
	}
	panic(fmt.Sprintf("ai: unknown kind %q", kind))
}

// KnownKind reports whether kind is one of the built-in kinds.
func KnownKind(kind types.Kind) bool {
	_, ok := defaultStats[kind]
	return ok
}

type stats struct {
	hp, attack int
}

var defaultStats = map[types.Kind]stats{
	types.KindRat:     {hp: 2, attack: 1},
	types.KindHunter:  {hp: 4, attack: 2},
	types.KindCrawler: {hp: 2, attack: 1},
	types.KindLurker:  {hp: 3, attack: 0},
	types.KindBrute:   {hp: 8, attack: 3},
}

// Spawn builds a fresh entity of kind at pos. Zero hp or attack take the
// kind's defaults.
func Spawn(id int, kind types.Kind, pos types.Pos, hp, attack int) types.Entity {
	def := defaultStats[kind]
	if hp <= 0 {
		hp = def.hp
	}
	if attack <= 0 {
		attack = def.attack
	}
	return types.Entity{
		ID:           id,
		Kind:         kind,
		Pos:          pos,
		HP:           hp,
		MaxHP:        hp,
		Attack:       attack,
		Facing:       types.DirDown,
		CarriesLight: kind == types.KindHunter,
		Memory:       NewMemory(kind),
	}
}
