package world

import (
	"errors"
	"testing"

	"github.com/nathoo/gloomcore/types"
)

// testGrid builds a 5x5 floor grid with walls around the border and the
// avatar at (2,2).
func testGrid(t *testing.T) types.Grid {
	t.Helper()
	g := New(5, 5)
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			if r == 0 || c == 0 || r == 4 || c == 4 {
				g.Terrain[r*5+c] = types.TerrainWall
			}
		}
	}
	g, err := AddTag(g, types.Pos{Row: 2, Col: 2}, types.TagAvatar)
	if err != nil {
		t.Fatalf("placing avatar: %v", err)
	}
	return g
}

func TestTerrainAt_OutOfBounds(t *testing.T) {
	g := testGrid(t)

	if _, ok := TerrainAt(g, types.Pos{Row: -1, Col: 0}); ok {
		t.Error("expected out of bounds for row -1")
	}
	if _, ok := TerrainAt(g, types.Pos{Row: 0, Col: 5}); ok {
		t.Error("expected out of bounds for col 5")
	}
	if tr, ok := TerrainAt(g, types.Pos{Row: 0, Col: 0}); !ok || tr != types.TerrainWall {
		t.Errorf("expected wall at (0,0), got %v ok=%v", tr, ok)
	}
	if Tags(g, types.Pos{Row: 9, Col: 9}) != nil {
		t.Error("expected nil tags out of bounds")
	}
}

func TestFindAvatar(t *testing.T) {
	g := testGrid(t)

	p, ok := FindAvatar(g)
	if !ok {
		t.Fatal("expected avatar to be found")
	}
	if p != (types.Pos{Row: 2, Col: 2}) {
		t.Errorf("expected avatar at (2,2), got %v", p)
	}

	if _, ok := FindAvatar(New(3, 3)); ok {
		t.Error("expected no avatar on a fresh grid")
	}
}

func TestSetTags_CopyOnWrite(t *testing.T) {
	g := testGrid(t)
	p := types.Pos{Row: 1, Col: 1}

	next, err := AddTag(g, p, types.TagPot)
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if HasTag(g, p, types.TagPot) {
		t.Error("original grid must not see the new tag")
	}
	if !HasTag(next, p, types.TagPot) {
		t.Error("new grid should carry the pot")
	}
	if next.Version != g.Version+1 {
		t.Errorf("expected version %d, got %d", g.Version+1, next.Version)
	}
	if !HasTag(next, types.Pos{Row: 2, Col: 2}, types.TagAvatar) {
		t.Error("unchanged cells should carry over")
	}
}

func TestSetTags_RejectsSecondAvatar(t *testing.T) {
	g := testGrid(t)

	_, err := AddTag(g, types.Pos{Row: 1, Col: 1}, types.TagAvatar)
	if !errors.Is(err, ErrSecondAvatar) {
		t.Fatalf("expected ErrSecondAvatar, got %v", err)
	}
}

func TestSetTags_OutOfBounds(t *testing.T) {
	g := testGrid(t)

	_, err := AddTag(g, types.Pos{Row: 7, Col: 1}, types.TagPot)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestMoveTag_Avatar(t *testing.T) {
	g := testGrid(t)
	from := types.Pos{Row: 2, Col: 2}
	to := types.Pos{Row: 2, Col: 3}

	next, err := MoveTag(g, from, to, types.TagAvatar)
	if err != nil {
		t.Fatalf("MoveTag failed: %v", err)
	}
	if CountTag(next, types.TagAvatar) != 1 {
		t.Fatalf("expected exactly one avatar, got %d", CountTag(next, types.TagAvatar))
	}
	p, _ := FindAvatar(next)
	if p != to {
		t.Errorf("expected avatar at %v, got %v", to, p)
	}
	if old, _ := FindAvatar(g); old != from {
		t.Errorf("original grid avatar moved to %v", old)
	}
}

func TestRemoveTag_Absent(t *testing.T) {
	g := testGrid(t)

	next, err := RemoveTag(g, types.Pos{Row: 1, Col: 1}, types.TagPot)
	if err != nil {
		t.Fatalf("RemoveTag failed: %v", err)
	}
	if next.Version != g.Version {
		t.Error("removing an absent tag should not produce a new version")
	}
}

func TestValidate(t *testing.T) {
	g := testGrid(t)
	if err := Validate(g); err != nil {
		t.Fatalf("valid grid rejected: %v", err)
	}

	bad := g
	bad.Terrain = bad.Terrain[:10]
	if err := Validate(bad); err == nil {
		t.Error("expected mismatched dimensions to fail")
	}

	two := g
	two.Tags = make([][]types.Tag, len(g.Tags))
	copy(two.Tags, g.Tags)
	two.Tags[6] = []types.Tag{types.TagAvatar}
	if err := Validate(two); err == nil {
		t.Error("expected two avatar markers to fail")
	}
}

func TestBlocksMovement(t *testing.T) {
	g := testGrid(t)
	g, _ = AddTag(g, types.Pos{Row: 1, Col: 1}, types.TagChest)
	g, _ = AddTag(g, types.Pos{Row: 1, Col: 2}, types.TagPotion)

	tests := []struct {
		name string
		p    types.Pos
		want bool
	}{
		{"wall", types.Pos{Row: 0, Col: 2}, true},
		{"off grid", types.Pos{Row: -1, Col: 2}, true},
		{"chest", types.Pos{Row: 1, Col: 1}, true},
		{"pickup", types.Pos{Row: 1, Col: 2}, false},
		{"floor", types.Pos{Row: 3, Col: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlocksMovement(g, tt.p); got != tt.want {
				t.Errorf("BlocksMovement(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestFree_RespectsActors(t *testing.T) {
	g := testGrid(t)
	entities := []types.Entity{
		{ID: 1, Kind: types.KindRat, Pos: types.Pos{Row: 3, Col: 3}, HP: 2},
		{ID: 2, Kind: types.KindRat, Pos: types.Pos{Row: 1, Col: 2}, HP: 0},
	}

	if Free(g, entities, types.Pos{Row: 2, Col: 2}) {
		t.Error("avatar cell should not be free")
	}
	if Free(g, entities, types.Pos{Row: 3, Col: 3}) {
		t.Error("entity cell should not be free")
	}
	if !Free(g, entities, types.Pos{Row: 1, Col: 3}) {
		t.Error("empty floor should be free")
	}
	if !Free(g, entities, types.Pos{Row: 1, Col: 2}) {
		t.Error("a dead entity should not occupy its cell")
	}
}

func TestDistances(t *testing.T) {
	a := types.Pos{Row: 1, Col: 1}
	b := types.Pos{Row: 4, Col: 3}

	if d := Manhattan(a, b); d != 5 {
		t.Errorf("Manhattan = %d, want 5", d)
	}
	if d := Chebyshev(a, b); d != 3 {
		t.Errorf("Chebyshev = %d, want 3", d)
	}
}

func TestEditor_ThreadsVersions(t *testing.T) {
	g := testGrid(t)
	ed := NewEditor(g)

	if err := ed.Add(types.Pos{Row: 1, Col: 1}, types.TagMarker); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := ed.Move(types.Pos{Row: 1, Col: 1}, types.Pos{Row: 3, Col: 3}, types.TagMarker); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := ed.Remove(types.Pos{Row: 3, Col: 3}, types.TagMarker); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if CountTag(ed.Grid(), types.TagMarker) != 0 {
		t.Error("expected marker to be gone")
	}
	if ed.Grid().Version <= g.Version {
		t.Error("expected the editor to produce newer versions")
	}
	if CountTag(g, types.TagMarker) != 0 {
		t.Error("source grid must stay untouched")
	}
}
