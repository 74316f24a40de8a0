package daynight

import (
	"testing"

	"github.com/nathoo/gloomcore/types"
)

func TestDefaultCycle(t *testing.T) {
	c := DefaultCycle()
	if err := c.Validate(); err != nil {
		t.Fatalf("default cycle invalid: %v", err)
	}
	if c.Total() != 56 {
		t.Errorf("total = %d, want 56", c.Total())
	}
	start := c.Start()
	if start.Phase != types.PhaseDawn || start.CycleStep != 0 || start.CycleCount != 0 {
		t.Errorf("unexpected start %+v", start)
	}

	full := map[types.Phase]bool{
		types.PhaseDawn:  true,
		types.PhaseDay:   true,
		types.PhaseDusk:  true,
		types.PhaseNight: false,
	}
	for _, p := range c.Phases {
		if p.FullVisibility != full[p.ID] {
			t.Errorf("%s full visibility = %v, want %v", p.ID, p.FullVisibility, full[p.ID])
		}
	}
	for _, id := range []types.Phase{types.PhaseDawn, types.PhaseDusk} {
		p := c.Lookup(types.TimeOfDay{Phase: id})
		if p.ID == types.PhaseDay || p.Overlay.Alpha == 0 {
			t.Errorf("%s should keep its own id and overlay, got %+v", id, p)
		}
	}
}

func TestAdvance_PhaseBoundaries(t *testing.T) {
	c := DefaultCycle()
	tests := []struct {
		steps       int
		phase       types.Phase
		stepInPhase int
		count       int
	}{
		{1, types.PhaseDawn, 1, 0},
		{5, types.PhaseDawn, 5, 0},
		{6, types.PhaseDay, 0, 0},
		{25, types.PhaseDay, 19, 0},
		{26, types.PhaseDusk, 0, 0},
		{32, types.PhaseNight, 0, 0},
		{55, types.PhaseNight, 23, 0},
		{56, types.PhaseDawn, 0, 1},
		{56*3 + 7, types.PhaseDay, 1, 3},
	}
	for _, tt := range tests {
		got := c.Advance(c.Start(), tt.steps)
		if got.Phase != tt.phase || got.StepInPhase != tt.stepInPhase || got.CycleCount != tt.count {
			t.Errorf("advance %d: got %+v, want phase %s step %d count %d",
				tt.steps, got, tt.phase, tt.stepInPhase, tt.count)
		}
	}
}

func TestAdvance_OneStepAtATime(t *testing.T) {
	c := DefaultCycle()
	tod := c.Start()
	for i := 0; i < 200; i++ {
		tod = c.Advance(tod, 1)
	}
	want := c.Advance(c.Start(), 200)
	if tod != want {
		t.Errorf("incremental %+v != direct %+v", tod, want)
	}
}

func TestValidate_Rejects(t *testing.T) {
	if err := (Cycle{}).Validate(); err == nil {
		t.Error("expected error for empty cycle")
	}
	bad := Cycle{Phases: []PhaseDef{{ID: types.PhaseDay, Duration: 0}}}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero duration")
	}
	dup := Cycle{Phases: []PhaseDef{{ID: types.PhaseDay, Duration: 1}, {ID: types.PhaseDay, Duration: 2}}}
	if err := dup.Validate(); err == nil {
		t.Error("expected error for duplicate phase")
	}
}

func TestLookup(t *testing.T) {
	c := DefaultCycle()
	day := c.Lookup(types.TimeOfDay{Phase: types.PhaseDay})
	if !day.FullVisibility {
		t.Error("day should have full visibility")
	}
	night := c.Lookup(types.TimeOfDay{Phase: types.PhaseNight})
	if night.FullVisibility || night.Overlay.Alpha == 0 {
		t.Errorf("unexpected night def %+v", night)
	}
}
