// Package daynight advances the time-of-day phase counter, one step per
// accepted turn.
package daynight

import (
	"fmt"

	"github.com/nathoo/gloomcore/types"
)

// Overlay is the visual wash a renderer lays over the map during a phase.
type Overlay struct {
	Tint  string  `json:"tint"`
	Alpha float64 `json:"alpha"`
}

// PhaseDef configures one segment of the cycle. During a FullVisibility
// phase the avatar sees with the daylight radius without a lantern.
type PhaseDef struct {
	ID             types.Phase `json:"id"`
	Duration       int         `json:"duration"`
	FullVisibility bool        `json:"full_visibility"`
	Overlay        Overlay     `json:"overlay"`
}

// Cycle is the ordered list of phases that repeats forever.
type Cycle struct {
	Phases []PhaseDef `json:"phases"`
}

// DefaultCycle returns dawn 6, day 20, dusk 6, night 24. Only night
// needs a light to see by.
func DefaultCycle() Cycle {
	return Cycle{Phases: []PhaseDef{
		{ID: types.PhaseDawn, Duration: 6, FullVisibility: true, Overlay: Overlay{Tint: "#d9a066", Alpha: 0.15}},
		{ID: types.PhaseDay, Duration: 20, FullVisibility: true},
		{ID: types.PhaseDusk, Duration: 6, FullVisibility: true, Overlay: Overlay{Tint: "#8f563b", Alpha: 0.25}},
		{ID: types.PhaseNight, Duration: 24, Overlay: Overlay{Tint: "#1b1f3b", Alpha: 0.45}},
	}}
}

// Total returns the length of one full cycle in steps.
func (c Cycle) Total() int {
	total := 0
	for _, p := range c.Phases {
		total += p.Duration
	}
	return total
}

// Validate rejects empty cycles and non-positive durations.
func (c Cycle) Validate() error {
	if len(c.Phases) == 0 {
		return fmt.Errorf("day/night cycle has no phases")
	}
	seen := make(map[types.Phase]bool)
	for i, p := range c.Phases {
		if p.Duration <= 0 {
			return fmt.Errorf("phase %d (%q) has non-positive duration %d", i, p.ID, p.Duration)
		}
		if seen[p.ID] {
			return fmt.Errorf("phase %q defined twice", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Start returns the time of day at the first step of the first phase.
func (c Cycle) Start() types.TimeOfDay {
	return c.at(0, 0)
}

// Advance moves t forward by n steps. The position is flattened to a cycle
// step, wrapped modulo the cycle length, and every wrap counts as a
// completed cycle.
func (c Cycle) Advance(t types.TimeOfDay, n int) types.TimeOfDay {
	total := c.Total()
	if total <= 0 {
		return t
	}
	step := t.CycleStep + n
	count := t.CycleCount + step/total
	step %= total
	if step < 0 {
		step += total
		count--
	}
	return c.at(step, count)
}

func (c Cycle) at(step, count int) types.TimeOfDay {
	offset := step
	for _, p := range c.Phases {
		if offset < p.Duration {
			return types.TimeOfDay{Phase: p.ID, StepInPhase: offset, CycleStep: step, CycleCount: count}
		}
		offset -= p.Duration
	}
	last := c.Phases[len(c.Phases)-1]
	return types.TimeOfDay{Phase: last.ID, StepInPhase: last.Duration - 1, CycleStep: step, CycleCount: count}
}

// Lookup returns the definition of the phase t is in. Unknown phases
// resolve to the first definition.
func (c Cycle) Lookup(t types.TimeOfDay) PhaseDef {
	for _, p := range c.Phases {
		if p.ID == t.Phase {
			return p
		}
	}
	if len(c.Phases) == 0 {
		return PhaseDef{}
	}
	return c.Phases[0]
}
