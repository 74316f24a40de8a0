package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/gloomcore/cli"
	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/parser"
	"github.com/nathoo/gloomcore/engine/save"
	"github.com/nathoo/gloomcore/engine/story"
	"github.com/nathoo/gloomcore/loader"
	"github.com/nathoo/gloomcore/store"
	"github.com/nathoo/gloomcore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the gloomcore TUI.
type Model struct {
	ctx     context.Context
	engine  *engine.Engine
	dungeon *loader.Dungeon
	store   store.Store
	slot    save.Slot

	viewport viewport.Model
	input    textinput.Model
	history  *History
	keys     keyMap

	rawLines []rawLine // accumulated log lines (unstyled, for re-wrapping)

	width     int
	height    int
	ready     bool
	trace     bool
	quitting  bool
	prompting bool // command prompt open; keys go to the text input
	lastCmd   types.Action
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine and save store.
func New(ctx context.Context, eng *engine.Engine, d *loader.Dungeon, st store.Store, slot save.Slot) Model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		ctx:     ctx,
		engine:  eng,
		dungeon: d,
		store:   st,
		slot:    slot,
		input:   ti,
		history: NewHistory(100),
		keys:    defaultKeyMap(),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, d *loader.Dungeon, st store.Store, slot save.Slot) error {
	m := New(ctx, eng, d, st, slot)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return m.initialOutput()
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string
		if m.dungeon != nil {
			lines = append(lines, m.dungeon.Title)
			if m.dungeon.Intro != "" {
				lines = append(lines, "", m.dungeon.Intro)
			}
		}
		lines = append(lines, "", "Press : for commands, /help for help.")
		return gameOutputMsg{lines: lines}
	}
}

// mapHeight is the number of terminal rows the bordered map takes.
func (m Model) mapHeight() int {
	return m.engine.State.Grid.Height + 2
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - m.mapHeight() - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "pgup" || msg.String() == "pgdown" {
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		if m.prompting {
			return m.updatePrompt(msg)
		}
		return m.updatePlay(msg)

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// updatePlay maps single keys straight to actions.
func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Command):
		m.prompting = true
		if msg.String() == "/" {
			m.input.SetValue("/")
			m.input.CursorEnd()
		}
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Again):
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{lines: []string{"Nothing to repeat."}, isSystem: true})
			return m, nil
		}
		return m.step(m.lastCmd, ""), nil
	case key.Matches(msg, m.keys.Revive):
		m = m.appendOutput(gameOutputMsg{lines: m.cmdRevive(), isSystem: true})
		return m, nil
	}
	if a, ok := m.keys.action(msg); ok {
		m.lastCmd = a
		return m.step(a, ""), nil
	}
	return m, nil
}

// updatePrompt feeds keys to the command line.
func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		return m.handleEnter()

	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case "down":
		if next, ok := m.history.Next(); ok {
			m.input.SetValue(next)
			m.input.CursorEnd()
		} else {
			m.input.SetValue("")
			m.history.ResetCursor()
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.input.SetValue("")
	m.input.Blur()
	m.history.ResetCursor()
}

// handleEnter processes the submitted command line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.closePrompt()

	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		return m.step(m.lastCmd, input), nil
	}

	a, ok := parser.Parse(input)
	if !ok {
		m = m.appendOutput(gameOutputMsg{input: input, lines: []string{"I don't understand that."}})
		return m, nil
	}
	m.lastCmd = a
	return m.step(a, input), nil
}

// step submits one action and logs its output.
func (m Model) step(a types.Action, input string) Model {
	result := m.engine.Step(a)
	output := result.Output
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output})

	if !result.Accepted {
		return m
	}
	switch m.engine.State.Status {
	case types.StatusWon:
		m = m.appendOutput(gameOutputMsg{
			lines:    []string{fmt.Sprintf("You escaped in %d steps.", m.engine.State.Stats.Steps)},
			isSystem: true,
		})
	case types.StatusDead:
		msg := "You died."
		if m.engine.State.Checkpoint != nil {
			msg = "You died. Press R to return to the last shrine."
		}
		m = m.appendOutput(gameOutputMsg{lines: []string{msg}, isSystem: true})
	}
	return m
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wLen := len(word)
		switch {
		case i == 0:
			lineLen = wLen
		case lineLen+1+wLen > width:
			result.WriteString("\n")
			lineLen = wLen
		default:
			result.WriteString(" ")
			lineLen += 1 + wLen
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the full TUI layout: map, log, status bar, prompt.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	bottom := styleSystem.Render(" hjkl move  t throw  q use  f interact  . wait  : command")
	if m.prompting {
		bottom = m.input.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderMap(m.engine.Frame()),
		m.viewport.View(),
		m.renderStatusBar(),
		bottom,
	)
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/saves":
		return m.cmdSaves(), false

	case "/revive":
		return m.cmdRevive(), false

	case "/notes":
		return m.cmdNotes(), false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) title() string {
	if m.dungeon == nil {
		return ""
	}
	return m.dungeon.Title
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	if m.store == nil {
		return []string{"Save failed: no save store configured"}
	}

	rec, err := cli.Snapshot(m.engine, m.title(), m.slot)
	if err == nil {
		err = m.store.Put(m.ctx, name, rec)
	}
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	if m.store == nil {
		return []string{"Load failed: no save store configured"}
	}

	rec, err := m.store.Get(m.ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return []string{fmt.Sprintf("No save named %s.", name)}
	}
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if _, err := cli.Resume(m.engine, rec); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game loaded from %s (step %d).", name, m.engine.State.Stats.Steps)}
}

func (m *Model) cmdSaves() []string {
	if m.store == nil {
		return []string{"No save store configured."}
	}
	recs, err := m.store.List(m.ctx)
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(recs) == 0 {
		return []string{"No saves yet."}
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, fmt.Sprintf("%s (%s) %s", r.Name, r.Slot, r.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	return out
}

func (m *Model) cmdRevive() []string {
	return m.engine.Revive().Output
}

func (m *Model) cmdNotes() []string {
	notes := m.engine.State.Notes
	if len(notes) == 0 {
		return []string{"Your notebook is empty."}
	}
	var out []string
	for _, n := range story.Unlocked(notes) {
		out = append(out, fmt.Sprintf("* %s: %s", n.Title, n.Body))
	}
	for _, n := range notes {
		if n.Complete {
			out = append(out, "x "+n.Title)
		}
	}
	return out
}

func (m *Model) cmdHelp() []string {
	return []string{
		"Keys:",
		"  arrows, hjkl  Move, or attack what stands there",
		"  t             Throw a stone the way you face",
		"  q             Drink a potion, or refill the lantern",
		"  f             Open, search or pray at the prop you face",
		"  . z           Wait",
		"  g             Repeat your last action",
		"  R             Revive at the last shrine",
		"  : /           Open the command prompt (Esc closes it)",
		"",
		"Commands:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /saves        List saved games",
		"  /revive       Return to the last shrine after dying",
		"  /notes        Show your notebook",
		"  /quit         Exit game",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	a := s.Avatar
	output := []string{
		fmt.Sprintf("Step: %d  Status: %s  Phase: %s", s.Stats.Steps, s.Status, s.TimeOfDay.Phase),
		fmt.Sprintf("HP: %d/%d  Attack: %d", a.HP, a.MaxHP, a.Attack),
		fmt.Sprintf("Inventory: %+v", a.Inventory),
		fmt.Sprintf("Enemies: %d", len(s.Entities)),
	}
	if len(s.StoryFlags) > 0 {
		output = append(output, fmt.Sprintf("Flags: %v", s.StoryFlags))
	}
	output = append(output, fmt.Sprintf("RNG: seed %d position %d", m.engine.RNG.Seed(), m.engine.RNG.Position()))
	return output
}

func (m *Model) formatTrace(result types.Result) []string {
	lines := []string{fmt.Sprintf("[trace] accepted=%v dealt=%d taken=%d rng=%d",
		result.Accepted, result.DamageDealt, result.DamageTaken, m.engine.RNG.Position())}
	for _, e := range result.Events {
		lines = append(lines, fmt.Sprintf("[trace]   %s at (%d,%d)", e.ID, e.Pos.Row, e.Pos.Col))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (those move the avatar or walk the command history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
