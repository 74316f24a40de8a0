package events

import (
	"testing"

	"github.com/nathoo/gloomcore/types"
)

func testSnapshot() types.Snapshot {
	return types.Snapshot{
		Avatar: types.Avatar{
			HP: 7, MaxHP: 10,
			Inventory: types.Inventory{Potions: 1},
			Equipped:  types.Equipped{Blade: true},
		},
		StoryFlags: map[string]bool{"met_keeper": true, "gate_open": false},
		Stats:      types.Stats{EnemiesDefeated: 3, Steps: 40},
	}
}

func testHandlers() []types.EventHandler {
	return []types.EventHandler{
		{
			EventID: "killed:lurker",
			Effects: []types.FlagEffect{{Flag: "lurker_slain", Value: true}},
		},
		{
			EventID: "killed:*",
			Conditions: []types.HandlerCondition{
				{Type: "stat_gt", Params: map[string]any{"stat": "enemies_defeated", "value": 2}},
			},
			Effects: []types.FlagEffect{{Flag: "veteran", Value: true}},
		},
		{
			EventID: "opened:chest",
			Conditions: []types.HandlerCondition{
				{Type: "flag_set", Params: map[string]any{"flag": "gate_open"}},
			},
			Effects: []types.FlagEffect{{Flag: "looted_vault", Value: true}},
		},
	}
}

func TestDispatch_MatchesEventID(t *testing.T) {
	effs := Dispatch([]types.Event{{ID: Killed(types.KindLurker)}}, testSnapshot(), testHandlers())
	if len(effs) != 2 {
		t.Fatalf("expected 2 effects from 2 matching handlers, got %d", len(effs))
	}
	if effs[0].Flag != "lurker_slain" {
		t.Errorf("expected lurker_slain first, got %q", effs[0].Flag)
	}
	if effs[1].Flag != "veteran" {
		t.Errorf("expected veteran second, got %q", effs[1].Flag)
	}
}

func TestDispatch_WildcardOnly(t *testing.T) {
	effs := Dispatch([]types.Event{{ID: Killed(types.KindRat)}}, testSnapshot(), testHandlers())
	if len(effs) != 1 || effs[0].Flag != "veteran" {
		t.Errorf("expected only the wildcard handler, got %+v", effs)
	}
}

func TestDispatch_ConditionBlocks(t *testing.T) {
	effs := Dispatch([]types.Event{{ID: Opened(types.TagChest)}}, testSnapshot(), testHandlers())
	if len(effs) != 0 {
		t.Errorf("expected no effects when condition fails, got %d", len(effs))
	}
}

func TestDispatch_NoMatch(t *testing.T) {
	effs := Dispatch([]types.Event{{ID: Won}}, testSnapshot(), testHandlers())
	if len(effs) != 0 {
		t.Errorf("expected 0 effects, got %d", len(effs))
	}
}

func TestDispatch_SinglePass(t *testing.T) {
	// A handler setting a flag must not enable another handler in the same dispatch.
	handlers := []types.EventHandler{
		{EventID: Won, Effects: []types.FlagEffect{{Flag: "escaped", Value: true}}},
		{
			EventID:    Won,
			Conditions: []types.HandlerCondition{{Type: "flag_set", Params: map[string]any{"flag": "escaped"}}},
			Effects:    []types.FlagEffect{{Flag: "escaped_twice", Value: true}},
		},
	}
	effs := Dispatch([]types.Event{{ID: Won}}, testSnapshot(), handlers)
	if len(effs) != 1 {
		t.Errorf("expected 1 effect, got %d", len(effs))
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		pattern, id string
		want        bool
	}{
		{"won", "won", true},
		{"won", "wonder", false},
		{"killed:*", "killed:rat", true},
		{"killed:*", "opened:pot", false},
		{"*", "anything", true},
	}
	for _, tt := range tests {
		if got := Matches(tt.pattern, tt.id); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.pattern, tt.id, got, tt.want)
		}
	}
}
