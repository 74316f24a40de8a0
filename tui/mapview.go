package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/nathoo/gloomcore/engine/daynight"
	"github.com/nathoo/gloomcore/engine/visibility"
	"github.com/nathoo/gloomcore/types"
)

// Base foreground per light tier, brightest last.
var tierColors = [...]string{
	visibility.TierNone: "#000000",
	visibility.TierDim:  "#4e4e4e",
	visibility.TierLow:  "#8a8a8a",
	visibility.TierFull: "#eeeeee",
}

var glyphColors = map[rune]string{
	'@': "#5fd75f",
	'r': "#d78700",
	'h': "#d75f5f",
	'c': "#af87d7",
	'L': "#875f87",
	'B': "#d70000",
	'T': "#ffaf00",
	'>': "#5fafff",
	'~': "#303060",
	'!': "#ff5fd7",
	'*': "#bcbcbc",
	'o': "#d7af5f",
	'P': "#af875f",
	'C': "#d7af00",
	'S': "#87d7ff",
}

// cellColor picks the colour of a glyph at a light tier and washes it with
// the phase overlay.
func cellColor(glyph rune, tier int, overlay daynight.Overlay) lipgloss.Color {
	hex, ok := glyphColors[glyph]
	if !ok || tier < visibility.TierLow {
		hex = tierColors[max(visibility.TierNone, min(tier, visibility.TierFull))]
	}
	return lipgloss.Color(tint(hex, overlay))
}

// tint blends hex towards the overlay colour by its alpha. Malformed
// colours leave hex unchanged.
func tint(hex string, overlay daynight.Overlay) string {
	if overlay.Alpha <= 0 || overlay.Tint == "" {
		return hex
	}
	base, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	wash, err := colorful.Hex(overlay.Tint)
	if err != nil {
		return hex
	}
	return base.BlendRgb(wash, min(overlay.Alpha, 1)).Clamped().Hex()
}

// renderMap draws the frame one styled cell at a time.
func renderMap(f visibility.Frame) string {
	var b strings.Builder
	for r := 0; r < f.Grid.Height; r++ {
		for c := 0; c < f.Grid.Width; c++ {
			p := types.Pos{Row: r, Col: c}
			g := f.Glyph(p)
			if g == ' ' {
				b.WriteByte(' ')
				continue
			}
			style := lipgloss.NewStyle().Foreground(cellColor(g, f.Tier(p), f.Overlay))
			b.WriteString(style.Render(string(g)))
		}
		if r < f.Grid.Height-1 {
			b.WriteByte('\n')
		}
	}
	return styleMapBorder.Render(b.String())
}
