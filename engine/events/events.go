// Package events implements single-pass narrative handler dispatch.
// Handlers produce flag effects but never raise further events.
package events

import (
	"strings"

	"github.com/nathoo/gloomcore/types"
)

// Dispatch runs handlers against the raised events. Single pass, no
// recursion: conditions are evaluated against s as it stood when the turn
// ended, before any of the returned effects are applied.
func Dispatch(events []types.Event, s types.Snapshot, handlers []types.EventHandler) []types.FlagEffect {
	var result []types.FlagEffect

	for _, event := range events {
		for _, handler := range handlers {
			if !Matches(handler.EventID, event.ID) {
				continue
			}
			if !EvalAllConditions(handler.Conditions, s) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}

// Matches reports whether pattern selects id. A pattern ending in "*"
// matches every id with that prefix.
func Matches(pattern, id string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(id, prefix)
	}
	return pattern == id
}

// Killed returns the id raised when an entity of kind dies.
func Killed(kind types.Kind) string { return "killed:" + string(kind) }

// Opened returns the id raised when a prop is opened.
func Opened(tag types.Tag) string { return "opened:" + string(tag) }

// Acquired returns the id raised when an item is picked up.
func Acquired(item string) string { return "acquired:" + item }

// Bare event ids.
const (
	Revived    = "revived"
	Checkpoint = "checkpoint"
	Won        = "won"
	Died       = "died"
)
