// Package story applies narrative flag effects. It is purely reactive:
// flags and notes never feed back into movement or combat.
package story

import (
	"fmt"

	"github.com/nathoo/gloomcore/types"
)

// Apply sets each effect's flag and unlocks or completes the notes whose
// definitions watch that flag. The inputs are not modified. Flags are
// never removed, only set. Applying the same effects twice yields the
// same result as applying them once.
// Returns the new flags, the new notes, and one output line per note
// that changed.
func Apply(flags map[string]bool, notes []types.Note, effects []types.FlagEffect, defs []types.NoteDef) (map[string]bool, []types.Note, []string) {
	nextFlags := make(map[string]bool, len(flags)+len(effects))
	for k, v := range flags {
		nextFlags[k] = v
	}
	nextNotes := append([]types.Note(nil), notes...)
	var output []string

	for _, eff := range effects {
		nextFlags[eff.Flag] = eff.Value

		for _, def := range defs {
			if def.Flag != eff.Flag || def.Unlock != eff.Value {
				continue
			}
			if def.Title != "" {
				var added bool
				nextNotes, added = upsert(nextNotes, types.Note{Title: def.Title, Body: def.Body, Flag: def.Flag})
				if added {
					output = append(output, fmt.Sprintf("New note: %s", def.Title))
				}
			}
			if def.Completes != "" {
				var done bool
				nextNotes, done = complete(nextNotes, def.Completes)
				if done {
					output = append(output, fmt.Sprintf("Note complete: %s", def.Completes))
				}
			}
		}
	}

	return nextFlags, nextNotes, output
}

// upsert adds note, or refreshes the body of the note with the same
// title. It reports whether a new note was added.
func upsert(notes []types.Note, note types.Note) ([]types.Note, bool) {
	for i := range notes {
		if notes[i].Title == note.Title {
			notes[i].Body = note.Body
			notes[i].Flag = note.Flag
			return notes, false
		}
	}
	return append(notes, note), true
}

// complete marks the note with title complete. It reports whether the
// note changed.
func complete(notes []types.Note, title string) ([]types.Note, bool) {
	for i := range notes {
		if notes[i].Title == title && !notes[i].Complete {
			notes[i].Complete = true
			return notes, true
		}
	}
	return notes, false
}

// Unlocked returns the notes not yet complete, in unlock order.
func Unlocked(notes []types.Note) []types.Note {
	var out []types.Note
	for _, n := range notes {
		if !n.Complete {
			out = append(out, n)
		}
	}
	return out
}
