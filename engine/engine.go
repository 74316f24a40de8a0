// Package engine provides the Advance orchestrator that wires together
// action resolution, conditions, enemy behavior, combat, time and
// narrative into a single turn, plus the Engine wrapper that owns a run.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/gloomcore/engine/events"
	"github.com/nathoo/gloomcore/engine/rng"
	"github.com/nathoo/gloomcore/engine/story"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/logger"
	"github.com/nathoo/gloomcore/types"
)

// Engine holds the run configuration, the current snapshot and the RNG.
type Engine struct {
	Config  Config
	State   types.Snapshot
	RNG     *rng.RNG
	Log     logrus.FieldLogger
	Actions []types.Action // every submitted action, in order, for replay
}

// New creates an engine starting from s. A nil log discards everything.
func New(s types.Snapshot, cfg Config, seed int64, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Behaviors == nil {
		cfg.Behaviors = DefaultConfig().Behaviors
	}
	return &Engine{
		Config: cfg,
		State:  s,
		RNG:    rng.New(seed),
		Log:    log.WithField("component", "engine"),
	}
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = rng.Restore(seed, position)
}

// Step advances the run by one action and returns the result. A revive
// entry from an action log is handed to Revive.
func (e *Engine) Step(a types.Action) types.Result {
	if a == types.ActionRevive {
		return e.Revive()
	}
	log := e.Log.WithFields(logrus.Fields{
		"component": "turn",
		"action":    a,
		"step":      e.State.Stats.Steps,
	})
	if err := Validate(e.State); err != nil {
		log.WithError(err).Error("malformed snapshot")
		panic(fmt.Sprintf("engine: malformed snapshot: %v", err))
	}

	e.Actions = append(e.Actions, a)
	next, res := Advance(e.State, a, e.RNG, e.Config)
	if !res.Accepted {
		log.Debug("action rejected")
		return res
	}
	e.State = next

	log.WithFields(logrus.Fields{
		"events":  len(res.Events),
		"rng_pos": e.RNG.Position(),
	}).Debug("turn advanced")
	if res.DamageDealt > 0 || res.DamageTaken > 0 || len(res.Deaths) > 0 {
		log.WithFields(logrus.Fields{
			"dealt":  res.DamageDealt,
			"taken":  res.DamageTaken,
			"deaths": len(res.Deaths),
			"hp":     e.State.Avatar.HP,
		}).Info("combat")
	}
	if e.State.Status != types.StatusPlaying {
		log.WithField("status", e.State.Status).Info("run finished")
	}
	return res
}

// Revive restores the last checkpoint after a death. The attempt is
// recorded in the action log like any step.
func (e *Engine) Revive() types.Result {
	e.Actions = append(e.Actions, types.ActionRevive)
	next, res := Revive(e.State, e.Config)
	if res.Accepted {
		e.State = next
		e.Log.WithField("revivals", next.Stats.Revivals).Info("revived at checkpoint")
	}
	return res
}

// Frame returns the render view of the current snapshot.
func (e *Engine) Frame() visibility.Frame {
	return Frame(e.State, e.Config)
}

// Revive restores s's checkpoint when the avatar is dead. Story flags,
// notes and run stats carry over from the dead run, and Revivals counts
// up. Without a checkpoint death is final.
func Revive(s types.Snapshot, cfg Config) (types.Snapshot, types.Result) {
	if s.Status != types.StatusDead {
		return s, types.Result{Output: []string{"You are not dead."}}
	}
	if s.Checkpoint == nil {
		return s, types.Result{Output: []string{"No shrine remembers you. Your journey ends here."}}
	}

	next := *s.Checkpoint
	next.Checkpoint = s.Checkpoint
	next.Status = types.StatusPlaying
	next.StoryFlags = s.StoryFlags
	next.Notes = s.Notes
	next.Stats = s.Stats
	next.Stats.Revivals++

	avatar, _ := world.FindAvatar(next.Grid)
	evts := []types.Event{{ID: events.Revived, Pos: avatar}}
	res := types.Result{
		Accepted: true,
		Events:   evts,
		Output:   []string{"You wake at the shrine."},
	}
	if effs := events.Dispatch(evts, next, cfg.Handlers); len(effs) > 0 {
		var out []string
		next.StoryFlags, next.Notes, out = story.Apply(next.StoryFlags, next.Notes, effs, cfg.Notes)
		res.Output = append(res.Output, out...)
	}
	return next, res
}

// Frame bundles what a renderer needs for s: tiers, glow, entities and the
// current phase with its overlay.
func Frame(s types.Snapshot, cfg Config) visibility.Frame {
	avatar, _ := world.FindAvatar(s.Grid)
	lit, radius := Sight(s, cfg)
	phase := cfg.Cycle.Lookup(s.TimeOfDay)
	return visibility.Frame{
		Grid:     s.Grid,
		Avatar:   avatar,
		Tiers:    visibility.Tiers(s.Grid, avatar, lit, radius, s.Entities),
		Glow:     visibility.Glow(s.Grid, s.Entities),
		Entities: s.Entities,
		Phase:    s.TimeOfDay.Phase,
		Overlay:  phase.Overlay,
	}
}
