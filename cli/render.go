package cli

import (
	"fmt"
	"strings"

	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/types"
)

// RenderMap draws the visible part of a frame as plain text, one line per
// grid row with trailing blanks trimmed.
func RenderMap(f visibility.Frame) string {
	var b strings.Builder
	for r := 0; r < f.Grid.Height; r++ {
		line := make([]rune, f.Grid.Width)
		for c := range line {
			line[c] = f.Glyph(types.Pos{Row: r, Col: c})
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		if r < f.Grid.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// StatusLine summarizes the avatar and the clock in one line.
func StatusLine(s types.Snapshot) string {
	a := s.Avatar
	parts := []string{fmt.Sprintf("HP %d/%d", a.HP, a.MaxHP)}
	if s.Conditions.Poison.Active {
		parts = append(parts, "poisoned")
	}
	parts = append(parts, fmt.Sprintf("potions %d", a.Inventory.Potions), fmt.Sprintf("stones %d", a.Inventory.Stones))
	if a.Equipped.Lantern {
		if a.LanternLit {
			parts = append(parts, fmt.Sprintf("lantern %d", a.Fuel))
		} else {
			parts = append(parts, "lantern out")
		}
	}
	if a.Equipped.Blade {
		parts = append(parts, "blade")
	}
	parts = append(parts, string(s.TimeOfDay.Phase), fmt.Sprintf("step %d", s.Stats.Steps))
	return strings.Join(parts, " | ")
}
