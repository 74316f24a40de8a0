package engine

import (
	"fmt"

	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/engine/combat"
	"github.com/nathoo/gloomcore/engine/events"
	"github.com/nathoo/gloomcore/engine/rng"
	"github.com/nathoo/gloomcore/engine/status"
	"github.com/nathoo/gloomcore/engine/story"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// turn is the working state of one Advance call. next starts as a shallow
// copy of the input snapshot; every field that gets written is replaced
// with a fresh value first, so the input is never touched.
type turn struct {
	cfg    Config
	rng    *rng.RNG
	next   types.Snapshot
	grid   *world.Editor
	avatar types.Pos

	variance int
	rolled   bool

	incoming   int  // damage to the avatar, applied once behaviors have run
	poisoned   bool // a poisoning hit landed this turn
	checkpoint bool // a shrine was touched this turn
	actors     int  // entities present before the action; spawns wait a turn

	events []types.Event
	result types.Result
}

// Advance resolves one action against s and returns the next snapshot.
// All randomness comes from r. A rejected action returns s unchanged with
// Result.Accepted false. Finished runs reject everything. A malformed
// snapshot is a programming error and panics.
//
// Turn order: resolve the action, tick conditions, run every surviving
// hostile once in list order, settle damage and deaths, advance the clock
// and lantern, count the step, then propagate narrative flags.
func Advance(s types.Snapshot, a types.Action, r *rng.RNG, cfg Config) (types.Snapshot, types.Result) {
	if err := Validate(s); err != nil {
		panic(fmt.Sprintf("engine: malformed snapshot: %v", err))
	}
	if s.Status != types.StatusPlaying {
		return s, types.Result{Output: []string{"The run is over."}}
	}
	avatar, ok := world.FindAvatar(s.Grid)
	if !ok {
		return s, types.Result{}
	}

	t := &turn{
		cfg:    cfg,
		rng:    r,
		next:   s,
		grid:   world.NewEditor(s.Grid),
		avatar: avatar,
		actors: len(s.Entities),
	}
	t.next.Entities = append([]types.Entity(nil), s.Entities...)

	if !t.resolve(a) {
		return s, types.Result{Output: t.result.Output}
	}

	t.tickConditions()
	t.runBehaviors()
	t.settle()
	t.advanceTime()
	t.next.Stats.Steps++
	t.captureCheckpoint()
	t.propagate()

	t.next.Grid = t.grid.Grid()
	t.result.Accepted = true
	t.result.Events = t.events
	return t.next, t.result
}

// Validate checks the structural contract of a snapshot: a well-formed
// grid with at most one avatar marker, and every entity standing on
// passable terrain with health in range.
func Validate(s types.Snapshot) error {
	if err := world.Validate(s.Grid); err != nil {
		return err
	}
	for _, e := range s.Entities {
		t, ok := world.TerrainAt(s.Grid, e.Pos)
		if !ok || !world.Passable(t) {
			return fmt.Errorf("entity %d (%s) on impassable cell %v", e.ID, e.Kind, e.Pos)
		}
		if e.HP < 0 || e.HP > e.MaxHP {
			return fmt.Errorf("entity %d (%s) health %d outside [0, %d]", e.ID, e.Kind, e.HP, e.MaxHP)
		}
	}
	if s.Avatar.HP < 0 || s.Avatar.HP > s.Avatar.MaxHP {
		return fmt.Errorf("avatar health %d outside [0, %d]", s.Avatar.HP, s.Avatar.MaxHP)
	}
	return nil
}

// roll returns the action's damage variance, drawing it on first use.
func (t *turn) roll() int {
	if !t.rolled {
		t.variance = combat.Variance(t.rng)
		t.rolled = true
	}
	return t.variance
}

func (t *turn) say(format string, args ...any) {
	t.result.Output = append(t.result.Output, fmt.Sprintf(format, args...))
}

func (t *turn) raise(e types.Event) {
	t.events = append(t.events, e)
}

// mustGrid panics on a failed grid write. Every write is checked by the
// caller first, so a failure means the turn logic broke an invariant.
func mustGrid(err error) {
	if err != nil {
		panic(fmt.Sprintf("engine: grid write failed: %v", err))
	}
}

func (t *turn) tickConditions() {
	var dmg int
	t.next.Conditions, dmg = status.TickAll(t.next.Conditions)
	if dmg > 0 {
		t.incoming += dmg
		t.say("The poison burns for %d.", dmg)
	}
}

func (t *turn) runBehaviors() {
	lit, _ := Sight(t.next, t.cfg)
	ents := t.next.Entities
	for i := range ents {
		ents[i].Moved = false
	}
	for i := 0; i < t.actors; i++ {
		if ents[i].HP <= 0 {
			continue
		}
		ctx := ai.Context{
			Grid:      t.grid,
			Entities:  ents,
			Avatar:    t.avatar,
			AvatarLit: lit,
			Defense:   t.next.Avatar.Defense,
			RNG:       t.rng,
		}
		atk := t.cfg.Behaviors.Act(ctx, &ents[i])
		if atk.Amount <= 0 {
			continue
		}
		t.incoming += atk.Amount
		if atk.Poisons {
			t.poisoned = true
		}
		verb := "hits"
		if atk.Ranged {
			verb = "strikes from afar"
		}
		t.say("The %s %s you for %d.", ents[i].Kind, verb, atk.Amount)
	}
}

func (t *turn) settle() {
	if t.incoming > 0 {
		taken := combat.DamageAvatar(&t.next.Avatar, t.incoming)
		t.result.DamageTaken += taken
		t.next.Stats.DamageTaken += taken
	}
	if t.poisoned && t.next.Avatar.HP > 0 {
		if !t.next.Conditions.Poison.Active {
			t.say("You are poisoned.")
		}
		t.next.Conditions.Poison = status.Inflict(t.next.Conditions.Poison, t.cfg.PoisonInterval, t.cfg.PoisonDamage)
	}

	for _, e := range t.next.Entities {
		if e.HP > 0 {
			continue
		}
		ai.ClearMarker(t.grid, e)
		t.next.Stats.EnemiesDefeated++
		t.raise(types.Event{ID: events.Killed(e.Kind), Pos: e.Pos, Kind: e.Kind})
		t.say("The %s dies.", e.Kind)
	}
	t.next.Entities, t.result.Deaths = combat.RemoveDead(t.next.Entities)

	if t.next.Avatar.HP == 0 {
		t.next.Status = types.StatusDead
		t.raise(types.Event{ID: events.Died, Pos: t.avatar})
		t.say("You die.")
	}
}

func (t *turn) advanceTime() {
	before := t.next.TimeOfDay.Phase
	t.next.TimeOfDay = t.cfg.Cycle.Advance(t.next.TimeOfDay, 1)
	if t.next.TimeOfDay.Phase != before {
		t.say("It is %s.", t.next.TimeOfDay.Phase)
	}

	av := &t.next.Avatar
	if av.LanternLit && av.Fuel > 0 {
		av.Fuel--
		if av.Fuel == 0 {
			av.LanternLit = false
			t.say("Your lantern gutters out.")
		}
	}
}

// captureCheckpoint stores the finished turn as the restore point when the
// avatar touched a shrine and survived.
func (t *turn) captureCheckpoint() {
	if !t.checkpoint || t.next.Status != types.StatusPlaying {
		return
	}
	cp := t.next
	cp.Grid = t.grid.Grid()
	cp.Checkpoint = nil
	t.next.Checkpoint = &cp
	t.raise(types.Event{ID: events.Checkpoint, Pos: t.avatar})
	t.say("The shrine remembers you.")
}

func (t *turn) propagate() {
	effs := events.Dispatch(t.events, t.next, t.cfg.Handlers)
	if len(effs) == 0 {
		return
	}
	var out []string
	t.next.StoryFlags, t.next.Notes, out = story.Apply(t.next.StoryFlags, t.next.Notes, effs, t.cfg.Notes)
	t.result.Output = append(t.result.Output, out...)
}
