// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the gloomcore engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/parser"
	"github.com/nathoo/gloomcore/engine/save"
	"github.com/nathoo/gloomcore/engine/story"
	"github.com/nathoo/gloomcore/loader"
	"github.com/nathoo/gloomcore/store"
	"github.com/nathoo/gloomcore/types"
)

// CLI handles line-based terminal interaction with the player.
type CLI struct {
	Engine    *engine.Engine
	Dungeon   *loader.Dungeon
	Store     store.Store
	Slot      save.Slot
	In        io.Reader
	Out       io.Writer
	Trace     bool
	ShowMap   bool         // redraw the map after every accepted action
	EchoInput bool         // echo each input line after the prompt (for script playback)
	lastCmd   types.Action // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, d *loader.Dungeon, st store.Store) *CLI {
	return &CLI{
		Engine:  eng,
		Dungeon: d,
		Store:   st,
		Slot:    save.SlotDefault,
		In:      os.Stdin,
		Out:     os.Stdout,
		ShowMap: true,
	}
}

// Run starts the game loop. It shows the intro and the starting map,
// then loops: prompt, input, dispatch, output. It returns when input runs
// out or the player quits.
func (c *CLI) Run(ctx context.Context) {
	if c.Dungeon != nil {
		c.printLine(c.Dungeon.Title)
		if c.Dungeon.Intro != "" {
			c.printLine(c.Dungeon.Intro)
		}
		c.printLine("")
	}
	c.printMap()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		var action types.Action
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			action = c.lastCmd
		} else {
			a, ok := parser.Parse(input)
			if !ok {
				c.printLine("I don't understand that.")
				continue
			}
			action = a
			c.lastCmd = a
		}

		c.step(action)
	}
}

func (c *CLI) step(a types.Action) {
	result := c.Engine.Step(a)
	c.printResult(result)
	if c.Trace {
		c.printTrace(result)
	}
	if !result.Accepted {
		return
	}
	if c.ShowMap {
		c.printMap()
	}
	switch c.Engine.State.Status {
	case types.StatusWon:
		c.printSystem(fmt.Sprintf("You escaped in %d steps.", c.Engine.State.Stats.Steps))
	case types.StatusDead:
		if c.Engine.State.Checkpoint != nil {
			c.printSystem("You died. Type /revive to return to the last shrine.")
		} else {
			c.printSystem("You died.")
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(ctx, arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/saves":
		c.cmdSaves(ctx)

	case "/revive":
		c.cmdRevive()

	case "/map":
		c.printMap()

	case "/notes":
		c.cmdNotes()

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

// Snapshot encodes the current run for storage.
func Snapshot(eng *engine.Engine, title string, slot save.Slot) (store.Record, error) {
	now := time.Now().UTC()
	data, err := save.Save(eng.State, save.Meta{
		Title:       title,
		Slot:        slot,
		SavedAt:     now,
		Seed:        eng.RNG.Seed(),
		RNGPosition: eng.RNG.Position(),
		ActionLog:   eng.Actions,
	})
	if err != nil {
		return store.Record{}, err
	}
	return store.Record{Slot: string(slot), SavedAt: now, Data: data}, nil
}

// Resume decodes a stored record into eng: snapshot, RNG position and
// action log. The engine is left untouched on error.
func Resume(eng *engine.Engine, rec store.Record) (*save.SaveData, error) {
	sd, err := save.Load(rec.Data)
	if err != nil {
		return nil, err
	}
	s, err := save.Restore(sd)
	if err != nil {
		return nil, err
	}
	eng.State = s
	eng.RestoreRNG(sd.Seed, sd.RNGPosition)
	eng.Actions = append([]types.Action(nil), sd.ActionLog...)
	return sd, nil
}

func (c *CLI) title() string {
	if c.Dungeon == nil {
		return ""
	}
	return c.Dungeon.Title
}

func (c *CLI) cmdSave(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}
	if c.Store == nil {
		c.printSystem("Save failed: no save store configured")
		return
	}
	rec, err := Snapshot(c.Engine, c.title(), c.Slot)
	if err == nil {
		err = c.Store.Put(ctx, name, rec)
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if name == "" {
		name = "quicksave"
	}
	if c.Store == nil {
		c.printSystem("Load failed: no save store configured")
		return
	}
	rec, err := c.Store.Get(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		c.printSystem(fmt.Sprintf("No save named %s.", name))
		return
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	sd, err := Resume(c.Engine, rec)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (step %d).", name, c.Engine.State.Stats.Steps))
	if sd.Title != "" && sd.Title != c.title() {
		c.printSystem(fmt.Sprintf("Note: this save is from %q.", sd.Title))
	}
	c.printMap()
}

func (c *CLI) cmdSaves(ctx context.Context) {
	if c.Store == nil {
		c.printSystem("No save store configured.")
		return
	}
	recs, err := c.Store.List(ctx)
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(recs) == 0 {
		c.printSystem("No saves yet.")
		return
	}
	for _, r := range recs {
		c.printLine(fmt.Sprintf("  %-16s %-8s %s", r.Name, r.Slot, r.SavedAt.Local().Format("2006-01-02 15:04")))
	}
}

func (c *CLI) cmdRevive() {
	result := c.Engine.Revive()
	c.printResult(result)
	if result.Accepted {
		c.printMap()
	}
}

func (c *CLI) cmdNotes() {
	notes := c.Engine.State.Notes
	if len(notes) == 0 {
		c.printSystem("Your notebook is empty.")
		return
	}
	for _, n := range story.Unlocked(notes) {
		c.printLine(fmt.Sprintf("* %s: %s", n.Title, n.Body))
	}
	for _, n := range notes {
		if n.Complete {
			c.printLine(fmt.Sprintf("x %s", n.Title))
		}
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /saves        List saved games",
		"  /revive       Return to the last shrine after dying",
		"  /map          Redraw the map",
		"  /notes        Show your notebook",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Game commands:",
		"  n/s/e/w, hjkl, go <dir>   Move, or attack what stands there",
		"  throw (t)                 Throw a stone the way you face",
		"  use, drink (q)            Drink a potion, or refill the lantern",
		"  open, search, pray (f)    Work the prop you face",
		"  wait (z, .)               Let a turn pass",
		"  again (g)                 Repeat your last action",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.State
	a := s.Avatar
	c.printSystem(fmt.Sprintf("Step: %d  Status: %s  Phase: %s (%d)", s.Stats.Steps, s.Status, s.TimeOfDay.Phase, s.TimeOfDay.StepInPhase))
	c.printSystem(fmt.Sprintf("HP: %d/%d  Attack: %d  Defense: %d", a.HP, a.MaxHP, a.Attack, a.Defense))
	c.printSystem(fmt.Sprintf("Inventory: potions %d, stones %d, oil %d", a.Inventory.Potions, a.Inventory.Stones, a.Inventory.Oil))
	if a.Equipped.Lantern {
		c.printSystem(fmt.Sprintf("Lantern: lit=%v fuel=%d", a.LanternLit, a.Fuel))
	}
	if s.Conditions.Poison.Active {
		c.printSystem(fmt.Sprintf("Poisoned: %d/%d", s.Conditions.Poison.StepsSinceLastDamage, s.Conditions.Poison.StepInterval))
	}
	for _, e := range s.Entities {
		c.printSystem(fmt.Sprintf("%s #%d at (%d,%d) hp %d/%d", e.Kind, e.ID, e.Pos.Row, e.Pos.Col, e.HP, e.MaxHP))
	}
	if len(s.StoryFlags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.StoryFlags))
	}
	c.printSystem(fmt.Sprintf("RNG: seed %d position %d", c.Engine.RNG.Seed(), c.Engine.RNG.Position()))
}

func (c *CLI) printTrace(result types.Result) {
	c.printSystem(fmt.Sprintf("[trace] accepted=%v dealt=%d taken=%d rng=%d",
		result.Accepted, result.DamageDealt, result.DamageTaken, c.Engine.RNG.Position()))
	for _, e := range result.Events {
		c.printSystem(fmt.Sprintf("[trace]   event %s at (%d,%d)", e.ID, e.Pos.Row, e.Pos.Col))
	}
	for _, p := range result.Deaths {
		c.printSystem(fmt.Sprintf("[trace]   death at (%d,%d)", p.Row, p.Col))
	}
}

func (c *CLI) printMap() {
	c.printLine(RenderMap(c.Engine.Frame()))
	c.printLine(StatusLine(c.Engine.State))
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
