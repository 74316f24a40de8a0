package world

import "github.com/nathoo/gloomcore/types"

// Editor threads one grid version through a single turn. Every change goes
// through SetTags, so invariants are checked on each write; readers always
// see the latest version via Grid.
type Editor struct {
	grid types.Grid
}

// NewEditor starts editing from g. g itself is never written.
func NewEditor(g types.Grid) *Editor {
	return &Editor{grid: g}
}

// Grid returns the current grid version.
func (e *Editor) Grid() types.Grid {
	return e.grid
}

// Add appends tag to the cell at p.
func (e *Editor) Add(p types.Pos, tag types.Tag) error {
	next, err := AddTag(e.grid, p, tag)
	if err != nil {
		return err
	}
	e.grid = next
	return nil
}

// Remove drops tag from the cell at p.
func (e *Editor) Remove(p types.Pos, tag types.Tag) error {
	next, err := RemoveTag(e.grid, p, tag)
	if err != nil {
		return err
	}
	e.grid = next
	return nil
}

// Move relocates tag from one cell to another.
func (e *Editor) Move(from, to types.Pos, tag types.Tag) error {
	next, err := MoveTag(e.grid, from, to, tag)
	if err != nil {
		return err
	}
	e.grid = next
	return nil
}
