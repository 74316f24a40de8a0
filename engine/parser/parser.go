// Package parser converts command strings into actions.
// It maps a direction, a verb alias or "go <dir>" onto one action.
package parser

import (
	"strings"

	"github.com/nathoo/gloomcore/types"
)

var directions = map[string]types.Action{
	"n":     types.ActionMoveUp,
	"north": types.ActionMoveUp,
	"up":    types.ActionMoveUp,
	"u":     types.ActionMoveUp,
	"k":     types.ActionMoveUp,
	"s":     types.ActionMoveDown,
	"south": types.ActionMoveDown,
	"down":  types.ActionMoveDown,
	"d":     types.ActionMoveDown,
	"j":     types.ActionMoveDown,
	"w":     types.ActionMoveLeft,
	"west":  types.ActionMoveLeft,
	"left":  types.ActionMoveLeft,
	"h":     types.ActionMoveLeft,
	"e":     types.ActionMoveRight,
	"east":  types.ActionMoveRight,
	"right": types.ActionMoveRight,
	"l":     types.ActionMoveRight,
}

var verbAliases = map[string]types.Action{
	// Throw
	"throw": types.ActionThrow,
	"toss":  types.ActionThrow,
	"hurl":  types.ActionThrow,
	"lob":   types.ActionThrow,
	"t":     types.ActionThrow,

	// Use / Drink
	"use":     types.ActionUseConsumable,
	"drink":   types.ActionUseConsumable,
	"quaff":   types.ActionUseConsumable,
	"sip":     types.ActionUseConsumable,
	"swallow": types.ActionUseConsumable,
	"refuel":  types.ActionUseConsumable,
	"q":       types.ActionUseConsumable,

	// Interact
	"interact": types.ActionInteract,
	"open":     types.ActionInteract,
	"search":   types.ActionInteract,
	"smash":    types.ActionInteract,
	"break":    types.ActionInteract,
	"pray":     types.ActionInteract,
	"touch":    types.ActionInteract,
	"light":    types.ActionInteract,
	"relight":  types.ActionInteract,
	"f":        types.ActionInteract,

	// Wait
	"wait":  types.ActionWait,
	"rest":  types.ActionWait,
	"z":     types.ActionWait,
	".":     types.ActionWait,
	"pause": types.ActionWait,
}

// movementVerbs take a direction as their object: "go north", "move left".
var movementVerbs = map[string]bool{
	"go": true, "move": true, "walk": true, "step": true,
	"run": true, "head": true, "attack": true, "hit": true,
	"strike": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an action. The second result is
// false when the input names no action.
func Parse(input string) (types.Action, bool) {
	words := stripArticles(strings.Fields(strings.ToLower(strings.TrimSpace(input))))
	if len(words) == 0 {
		return "", false
	}

	// Canonical action names round-trip, so logs replay as scripts.
	if a := types.Action(words[0]); Valid(a) && len(words) == 1 {
		return a, true
	}

	if a, ok := directions[words[0]]; ok && len(words) == 1 {
		return a, true
	}

	if movementVerbs[words[0]] {
		if len(words) < 2 {
			return "", false
		}
		a, ok := directions[words[1]]
		return a, ok
	}

	if a, ok := verbAliases[words[0]]; ok {
		return a, true
	}

	return "", false
}

// Valid reports whether a is one of the known actions.
func Valid(a types.Action) bool {
	switch a {
	case types.ActionMoveUp, types.ActionMoveDown, types.ActionMoveLeft, types.ActionMoveRight,
		types.ActionThrow, types.ActionUseConsumable, types.ActionInteract, types.ActionWait:
		return true
	}
	return false
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}
