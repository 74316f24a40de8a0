// Package world is the read surface of the grid arena plus the single entry
// point allowed to produce a new grid version. Grids handed out by this
// package never alias a cell slice that is later written.
package world

import (
	"errors"
	"fmt"

	"github.com/nathoo/gloomcore/types"
)

var (
	// ErrOutOfBounds is returned when a mutation targets a cell off the grid.
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrSecondAvatar is returned when a mutation would place a second avatar marker.
	ErrSecondAvatar = errors.New("grid already holds an avatar marker")
)

// New creates a width x height grid of floor with no tags.
func New(width, height int) types.Grid {
	n := width * height
	return types.Grid{
		Width:   width,
		Height:  height,
		Terrain: make([]types.Terrain, n),
		Tags:    make([][]types.Tag, n),
	}
}

// InBounds reports whether p lies on the grid.
func InBounds(g types.Grid, p types.Pos) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < g.Height && p.Col < g.Width
}

func index(g types.Grid, p types.Pos) int {
	return p.Row*g.Width + p.Col
}

// TerrainAt returns the terrain at p. The second result is false when p is
// out of bounds.
func TerrainAt(g types.Grid, p types.Pos) (types.Terrain, bool) {
	if !InBounds(g, p) {
		return 0, false
	}
	return g.Terrain[index(g, p)], true
}

// Tags returns the tag list at p, or nil when p is out of bounds.
// The returned slice must not be modified.
func Tags(g types.Grid, p types.Pos) []types.Tag {
	if !InBounds(g, p) {
		return nil
	}
	return g.Tags[index(g, p)]
}

// HasTag returns true if the cell at p carries tag.
func HasTag(g types.Grid, p types.Pos, tag types.Tag) bool {
	for _, t := range Tags(g, p) {
		if t == tag {
			return true
		}
	}
	return false
}

// Passable returns true for terrain an actor can stand on.
func Passable(t types.Terrain) bool {
	return t == types.TerrainFloor || t == types.TerrainStairs
}

// IsProp returns true for tags that occupy their cell and block movement.
func IsProp(tag types.Tag) bool {
	switch tag {
	case types.TagPot, types.TagChest, types.TagTorch, types.TagShrine:
		return true
	}
	return false
}

// IsPickup returns true for tags collected by walking onto them.
func IsPickup(tag types.Tag) bool {
	switch tag {
	case types.TagPotion, types.TagStone, types.TagOil:
		return true
	}
	return false
}

// BlocksSight returns true for walls and for cells off the grid.
func BlocksSight(g types.Grid, p types.Pos) bool {
	t, ok := TerrainAt(g, p)
	if !ok {
		return true
	}
	return t == types.TerrainWall
}

// PropAt returns the first blocking prop in the cell, if any.
func PropAt(g types.Grid, p types.Pos) (types.Tag, bool) {
	for _, t := range Tags(g, p) {
		if IsProp(t) {
			return t, true
		}
	}
	return "", false
}

// BlocksMovement returns true if nothing may step onto p: off the grid,
// impassable terrain, or a blocking prop. Actors are checked separately.
func BlocksMovement(g types.Grid, p types.Pos) bool {
	t, ok := TerrainAt(g, p)
	if !ok || !Passable(t) {
		return true
	}
	_, prop := PropAt(g, p)
	return prop
}

// FindAvatar scans the tags for the avatar marker. The scan is the only
// trusted source of the avatar position.
func FindAvatar(g types.Grid) (types.Pos, bool) {
	for i, tags := range g.Tags {
		for _, t := range tags {
			if t == types.TagAvatar {
				return types.Pos{Row: i / g.Width, Col: i % g.Width}, true
			}
		}
	}
	return types.Pos{}, false
}

// Positions returns every cell carrying tag, in row-major order.
func Positions(g types.Grid, tag types.Tag) []types.Pos {
	var out []types.Pos
	for i, tags := range g.Tags {
		for _, t := range tags {
			if t == tag {
				out = append(out, types.Pos{Row: i / g.Width, Col: i % g.Width})
				break
			}
		}
	}
	return out
}

// CountTag returns the number of occurrences of tag across the grid.
func CountTag(g types.Grid, tag types.Tag) int {
	n := 0
	for _, tags := range g.Tags {
		for _, t := range tags {
			if t == tag {
				n++
			}
		}
	}
	return n
}

// Validate checks the structural invariants of a grid: matching
// dimensions and at most one avatar marker.
func Validate(g types.Grid) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid has invalid dimensions %dx%d", g.Width, g.Height)
	}
	n := g.Width * g.Height
	if len(g.Terrain) != n {
		return fmt.Errorf("terrain has %d cells, want %d", len(g.Terrain), n)
	}
	if len(g.Tags) != n {
		return fmt.Errorf("tags have %d cells, want %d", len(g.Tags), n)
	}
	if c := CountTag(g, types.TagAvatar); c > 1 {
		return fmt.Errorf("grid holds %d avatar markers", c)
	}
	return nil
}

// SetTags is the single grid mutation entry point. It returns a new grid
// version whose cell at p holds tags. The previous grid is left untouched:
// only the outer cell index is copied and the changed cell gets a fresh
// slice, so unchanged cells are shared read-only.
func SetTags(g types.Grid, p types.Pos, tags []types.Tag) (types.Grid, error) {
	if !InBounds(g, p) {
		return g, fmt.Errorf("set tags at %v: %w", p, ErrOutOfBounds)
	}
	if containsTag(tags, types.TagAvatar) && !HasTag(g, p, types.TagAvatar) {
		if _, ok := FindAvatar(g); ok {
			return g, fmt.Errorf("set tags at %v: %w", p, ErrSecondAvatar)
		}
	}

	cell := make([]types.Tag, len(tags))
	copy(cell, tags)

	next := g
	next.Tags = make([][]types.Tag, len(g.Tags))
	copy(next.Tags, g.Tags)
	next.Tags[index(g, p)] = cell
	next.Version = g.Version + 1
	return next, nil
}

// AddTag returns a grid with tag appended to the cell at p.
func AddTag(g types.Grid, p types.Pos, tag types.Tag) (types.Grid, error) {
	cur := Tags(g, p)
	tags := make([]types.Tag, 0, len(cur)+1)
	tags = append(tags, cur...)
	tags = append(tags, tag)
	return SetTags(g, p, tags)
}

// RemoveTag returns a grid with the first occurrence of tag removed from
// the cell at p. Removing an absent tag is a no-op that still succeeds.
func RemoveTag(g types.Grid, p types.Pos, tag types.Tag) (types.Grid, error) {
	if !HasTag(g, p, tag) {
		if !InBounds(g, p) {
			return g, fmt.Errorf("remove tag at %v: %w", p, ErrOutOfBounds)
		}
		return g, nil
	}
	cur := Tags(g, p)
	tags := make([]types.Tag, 0, len(cur))
	removed := false
	for _, t := range cur {
		if t == tag && !removed {
			removed = true
			continue
		}
		tags = append(tags, t)
	}
	return SetTags(g, p, tags)
}

// MoveTag removes tag from one cell and adds it to another.
func MoveTag(g types.Grid, from, to types.Pos, tag types.Tag) (types.Grid, error) {
	if !InBounds(g, to) {
		return g, fmt.Errorf("move tag to %v: %w", to, ErrOutOfBounds)
	}
	next, err := RemoveTag(g, from, tag)
	if err != nil {
		return g, err
	}
	return AddTag(next, to, tag)
}

func containsTag(tags []types.Tag, tag types.Tag) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
