package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/gloomcore/types"
)

// keyMap binds single keys to actions while the command prompt is closed.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Throw    key.Binding
	Use      key.Binding
	Interact key.Binding
	Wait     key.Binding
	Again    key.Binding
	Revive   key.Binding
	Command  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
		Throw:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "throw")),
		Use:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "use")),
		Interact: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "interact")),
		Wait:     key.NewBinding(key.WithKeys(".", "z"), key.WithHelp(".", "wait")),
		Again:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "again")),
		Revive:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "revive")),
		Command:  key.NewBinding(key.WithKeys(":", "/"), key.WithHelp(":", "command")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// action returns the action bound to msg, if any.
func (k keyMap) action(msg tea.KeyMsg) (types.Action, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return types.ActionMoveUp, true
	case key.Matches(msg, k.Down):
		return types.ActionMoveDown, true
	case key.Matches(msg, k.Left):
		return types.ActionMoveLeft, true
	case key.Matches(msg, k.Right):
		return types.ActionMoveRight, true
	case key.Matches(msg, k.Throw):
		return types.ActionThrow, true
	case key.Matches(msg, k.Use):
		return types.ActionUseConsumable, true
	case key.Matches(msg, k.Interact):
		return types.ActionInteract, true
	case key.Matches(msg, k.Wait):
		return types.ActionWait, true
	}
	return "", false
}
