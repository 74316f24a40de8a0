package events

import (
	"testing"

	"github.com/nathoo/gloomcore/types"
)

func TestEvalCondition(t *testing.T) {
	s := testSnapshot()
	tests := []struct {
		name string
		cond types.HandlerCondition
		want bool
	}{
		{"flag_set true", types.HandlerCondition{Type: "flag_set", Params: map[string]any{"flag": "met_keeper"}}, true},
		{"flag_set missing", types.HandlerCondition{Type: "flag_set", Params: map[string]any{"flag": "nope"}}, false},
		{"flag_not", types.HandlerCondition{Type: "flag_not", Params: map[string]any{"flag": "gate_open"}}, true},
		{"flag_is false", types.HandlerCondition{Type: "flag_is", Params: map[string]any{"flag": "gate_open", "value": false}}, true},
		{"flag_is true", types.HandlerCondition{Type: "flag_is", Params: map[string]any{"flag": "met_keeper", "value": true}}, true},
		{"has_item potion", types.HandlerCondition{Type: "has_item", Params: map[string]any{"item": "potion"}}, true},
		{"has_item stone", types.HandlerCondition{Type: "has_item", Params: map[string]any{"item": "stone"}}, false},
		{"has_item blade", types.HandlerCondition{Type: "has_item", Params: map[string]any{"item": "blade"}}, true},
		{"stat_gt float", types.HandlerCondition{Type: "stat_gt", Params: map[string]any{"stat": "steps", "value": 39.0}}, true},
		{"stat_lt hp", types.HandlerCondition{Type: "stat_lt", Params: map[string]any{"stat": "hp", "value": 5}}, false},
		{"stat unknown", types.HandlerCondition{Type: "stat_gt", Params: map[string]any{"stat": "gold", "value": -1}}, false},
		{"not", types.HandlerCondition{Type: "not", Inner: &types.HandlerCondition{Type: "flag_set", Params: map[string]any{"flag": "gate_open"}}}, true},
		{"not empty", types.HandlerCondition{Type: "not"}, true},
		{"unknown type", types.HandlerCondition{Type: "in_room"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalCondition(tt.cond, s); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvalAllConditions(t *testing.T) {
	s := testSnapshot()
	if !EvalAllConditions(nil, s) {
		t.Error("empty list should be vacuously true")
	}
	conds := []types.HandlerCondition{
		{Type: "flag_set", Params: map[string]any{"flag": "met_keeper"}},
		{Type: "has_item", Params: map[string]any{"item": "oil"}},
	}
	if EvalAllConditions(conds, s) {
		t.Error("expected AND to fail on the second condition")
	}
}
