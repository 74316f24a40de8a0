package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gloomcore/types"
)

// phaseDisplayName capitalizes a phase id: "night" -> "Night".
func phaseDisplayName(p types.Phase) string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// renderStatusBar produces a full-width inverted status line showing
// health, conditions, phase, inventory and step count.
func (m Model) renderStatusBar() string {
	s := m.engine.State
	a := s.Avatar

	left := fmt.Sprintf(" HP %d/%d", a.HP, a.MaxHP)
	if s.Conditions.Poison.Active {
		left += " (poisoned)"
	}
	left += " | " + phaseDisplayName(s.TimeOfDay.Phase)
	if a.Equipped.Lantern {
		if a.LanternLit {
			left += fmt.Sprintf(" | Lantern %d", a.Fuel)
		} else {
			left += " | Lantern out"
		}
	}
	switch s.Status {
	case types.StatusWon:
		left += " | ESCAPED"
	case types.StatusDead:
		left += " | DEAD"
	}

	right := fmt.Sprintf("T:%d ", s.Stats.Steps)
	inv := fmt.Sprintf("Potions %d Stones %d Oil %d | T:%d ", a.Inventory.Potions, a.Inventory.Stones, a.Inventory.Oil, s.Stats.Steps)
	if lipgloss.Width(left)+lipgloss.Width(inv)+2 < m.width {
		right = inv
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
