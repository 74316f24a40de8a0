// Package tui provides a Bubble Tea terminal UI for the gloomcore engine:
// a lit map pane, a scrolling message log and a command prompt.
package tui

// History remembers submitted command lines for Up/Down recall at the
// prompt. The oldest line is dropped once limit is reached.
type History struct {
	lines []string
	limit int
	pos   int // index into lines; len(lines) means editing a fresh line
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records a line. Repeating the previous line is a no-op.
func (h *History) Push(line string) {
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		h.pos = len(h.lines)
		return
	}
	h.lines = append(h.lines, line)
	if len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
	h.pos = len(h.lines)
}

// Prev steps back to an older line. It stops at the oldest and reports
// false only when the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps forward to a newer line, reporting false once the fresh line
// is reached again.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.lines) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.lines) {
		return "", false
	}
	return h.lines[h.pos], true
}

// ResetCursor returns to the fresh line.
func (h *History) ResetCursor() {
	h.pos = len(h.lines)
}

// Len returns the number of remembered lines.
func (h *History) Len() int {
	return len(h.lines)
}
