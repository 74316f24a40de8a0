package story

import (
	"reflect"
	"testing"

	"github.com/nathoo/gloomcore/types"
)

func testDefs() []types.NoteDef {
	return []types.NoteDef{
		{Flag: "saw_lurker", Unlock: true, Title: "Something watches", Body: "Eyes in the dark."},
		{Flag: "lurker_slain", Unlock: true, Title: "Quiet again", Body: "It is gone.", Completes: "Something watches"},
		{Flag: "lantern_lost", Unlock: true, Title: "Darkness", Body: "The lantern is gone."},
	}
}

func TestApply_SetsFlagsAndUnlocksNote(t *testing.T) {
	flags := map[string]bool{"started": true}
	effs := []types.FlagEffect{{Flag: "saw_lurker", Value: true}}

	nextFlags, notes, out := Apply(flags, nil, effs, testDefs())

	if !nextFlags["saw_lurker"] || !nextFlags["started"] {
		t.Errorf("flags = %v", nextFlags)
	}
	if len(notes) != 1 || notes[0].Title != "Something watches" || notes[0].Flag != "saw_lurker" {
		t.Fatalf("notes = %+v", notes)
	}
	if len(out) != 1 {
		t.Errorf("expected one output line, got %v", out)
	}
	if _, ok := flags["saw_lurker"]; ok {
		t.Error("input flags were modified")
	}
}

func TestApply_Completes(t *testing.T) {
	flags, notes, _ := Apply(nil, nil, []types.FlagEffect{{Flag: "saw_lurker", Value: true}}, testDefs())
	flags, notes, _ = Apply(flags, notes, []types.FlagEffect{{Flag: "lurker_slain", Value: true}}, testDefs())

	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %+v", notes)
	}
	if !notes[0].Complete {
		t.Error("first note should be complete")
	}
	if notes[1].Complete {
		t.Error("second note should not be complete")
	}
	if got := Unlocked(notes); len(got) != 1 || got[0].Title != "Quiet again" {
		t.Errorf("Unlocked = %+v", got)
	}
	if !flags["lurker_slain"] {
		t.Error("flag not set")
	}
}

func TestApply_Idempotent(t *testing.T) {
	effs := []types.FlagEffect{{Flag: "saw_lurker", Value: true}, {Flag: "lurker_slain", Value: true}}
	f1, n1, _ := Apply(nil, nil, effs, testDefs())
	f2, n2, out := Apply(f1, n1, effs, testDefs())

	if !reflect.DeepEqual(f1, f2) || !reflect.DeepEqual(n1, n2) {
		t.Errorf("second apply changed state:\n%v %+v\n%v %+v", f1, n1, f2, n2)
	}
	if len(out) != 0 {
		t.Errorf("second apply reported changes: %v", out)
	}
}

func TestApply_FalseValueKeepsKey(t *testing.T) {
	flags, notes, _ := Apply(map[string]bool{"gate_open": true}, nil,
		[]types.FlagEffect{{Flag: "gate_open", Value: false}}, testDefs())
	v, ok := flags["gate_open"]
	if !ok || v {
		t.Errorf("gate_open = %v, present %v", v, ok)
	}
	if len(notes) != 0 {
		t.Errorf("unexpected notes %+v", notes)
	}
}

func TestApply_UnlockValueMustMatch(t *testing.T) {
	_, notes, _ := Apply(nil, nil, []types.FlagEffect{{Flag: "saw_lurker", Value: false}}, testDefs())
	if len(notes) != 0 {
		t.Errorf("note unlocked on wrong value: %+v", notes)
	}
}
