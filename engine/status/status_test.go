package status

import (
	"testing"

	"github.com/nathoo/gloomcore/types"
)

func poison(steps int) types.Condition {
	return types.Condition{Active: true, StepsSinceLastDamage: steps, DamagePerInterval: 1, StepInterval: 8}
}

func TestTick_Interval(t *testing.T) {
	tests := []struct {
		name      string
		steps     int
		wantSteps int
		wantDmg   int
	}{
		{"reaches interval", 7, 0, 1},
		{"mid interval", 3, 4, 0},
		{"fresh", 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, dmg := Tick(poison(tt.steps))
			if c.StepsSinceLastDamage != tt.wantSteps || dmg != tt.wantDmg {
				t.Errorf("got steps %d dmg %d, want steps %d dmg %d",
					c.StepsSinceLastDamage, dmg, tt.wantSteps, tt.wantDmg)
			}
			if !c.Active {
				t.Error("tick should not cure")
			}
		})
	}
}

func TestTick_Inactive(t *testing.T) {
	c := types.Condition{StepsSinceLastDamage: 5, StepInterval: 8, DamagePerInterval: 1}
	got, dmg := Tick(c)
	if got != c || dmg != 0 {
		t.Errorf("inactive condition changed: %+v dmg %d", got, dmg)
	}
}

func TestTick_FullCycle(t *testing.T) {
	c := poison(0)
	total := 0
	for i := 0; i < 24; i++ {
		var dmg int
		c, dmg = Tick(c)
		total += dmg
	}
	if total != 3 {
		t.Errorf("24 ticks at interval 8 dealt %d, want 3", total)
	}
}

func TestTickAll(t *testing.T) {
	cs, dmg := TickAll(types.Conditions{Poison: poison(7)})
	if dmg != 1 || cs.Poison.StepsSinceLastDamage != 0 {
		t.Errorf("got %+v dmg %d", cs, dmg)
	}
}

func TestInflictAndCure(t *testing.T) {
	c := Inflict(types.Condition{StepsSinceLastDamage: 6}, 8, 1)
	if !c.Active || c.StepsSinceLastDamage != 0 {
		t.Errorf("inflict on inactive: %+v", c)
	}
	c.StepsSinceLastDamage = 5
	c = Inflict(c, 8, 1)
	if c.StepsSinceLastDamage != 5 {
		t.Errorf("re-inflict reset counter: %+v", c)
	}
	c = Cure(c)
	if c.Active || c.StepsSinceLastDamage != 5 {
		t.Errorf("cure: %+v", c)
	}
}
