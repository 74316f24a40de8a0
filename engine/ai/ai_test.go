package ai

import (
	"testing"

	"github.com/nathoo/gloomcore/engine/rng"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// newGrid builds a w x h floor grid walled on the border with the avatar
// placed at avatar.
func newGrid(t *testing.T, w, h int, avatar types.Pos) types.Grid {
	t.Helper()
	g := world.New(w, h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if r == 0 || c == 0 || r == h-1 || c == w-1 {
				g.Terrain[r*w+c] = types.TerrainWall
			}
		}
	}
	g, err := world.AddTag(g, avatar, types.TagAvatar)
	if err != nil {
		t.Fatalf("placing avatar: %v", err)
	}
	return g
}

func wallColumn(g types.Grid, col int) types.Grid {
	g.Terrain = append([]types.Terrain(nil), g.Terrain...)
	for r := 0; r < g.Height; r++ {
		g.Terrain[r*g.Width+col] = types.TerrainWall
	}
	return g
}

func testCtx(g types.Grid, entities []types.Entity, avatar types.Pos, seed int64) Context {
	return Context{
		Grid:     world.NewEditor(g),
		Entities: entities,
		Avatar:   avatar,
		RNG:      rng.New(seed),
	}
}

func TestRegistry_PanicsOnUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unregistered kind")
		}
	}()
	e := types.Entity{Kind: "ghost", HP: 1}
	Registry{}.Act(Context{}, &e)
}

func TestRegistry_CoversAllKinds(t *testing.T) {
	reg := DefaultRegistry()
	for kind := range defaultStats {
		if _, ok := reg[kind]; !ok {
			t.Errorf("no behavior for %s", kind)
		}
	}
}

func TestAdapter_PanicsOnForeignMemory(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched memory")
		}
	}()
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 8, 8, avatar)
	e := types.Entity{ID: 1, Kind: types.KindBrute, HP: 5, Pos: types.Pos{Row: 5, Col: 5}, Memory: &types.RatMemory{}}
	entities := []types.Entity{e}
	DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])
}

func TestAdapter_DoesNotWriteIncomingMemory(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 12, 4, avatar)
	orig := &types.LurkerMemory{}
	entities := []types.Entity{Spawn(1, types.KindLurker, types.Pos{Row: 1, Col: 8}, 0, 0)}
	entities[0].Memory = orig

	DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])

	if orig.Aware {
		t.Error("incoming memory was mutated")
	}
	if !entities[0].Memory.(*types.LurkerMemory).Aware {
		t.Error("new memory should record awareness")
	}
}

func TestAdapter_NilMemoryStartsFresh(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 6, 6, avatar)
	entities := []types.Entity{{ID: 1, Kind: types.KindBrute, HP: 8, Attack: 3, Pos: types.Pos{Row: 1, Col: 2}}}
	DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])
	mem, ok := entities[0].Memory.(*types.BruteMemory)
	if !ok || !mem.Awake {
		t.Errorf("expected awake brute memory, got %#v", entities[0].Memory)
	}
}

func TestStepToward_AxisPriority(t *testing.T) {
	avatar := types.Pos{Row: 2, Col: 8}
	g := newGrid(t, 10, 6, avatar)
	entities := []types.Entity{{ID: 1, Kind: types.KindRat, HP: 2, Pos: types.Pos{Row: 1, Col: 2}}}
	ctx := testCtx(g, entities, avatar, 1)

	if !stepToward(ctx, &entities[0], avatar) {
		t.Fatal("expected a step")
	}
	if entities[0].Pos != (types.Pos{Row: 1, Col: 3}) || entities[0].Facing != types.DirRight {
		t.Errorf("expected column step right, got %+v", entities[0])
	}
	if !entities[0].Moved {
		t.Error("moved flag not set")
	}
}

func TestStepToward_FallsBackToSecondaryAxis(t *testing.T) {
	avatar := types.Pos{Row: 3, Col: 8}
	g := newGrid(t, 10, 6, avatar)
	g = wallColumn(g, 3)
	entities := []types.Entity{{ID: 1, Kind: types.KindRat, HP: 2, Pos: types.Pos{Row: 1, Col: 2}}}
	ctx := testCtx(g, entities, avatar, 1)

	if !stepToward(ctx, &entities[0], avatar) {
		t.Fatal("expected a step")
	}
	if entities[0].Pos != (types.Pos{Row: 2, Col: 2}) {
		t.Errorf("expected row step down, got %v", entities[0].Pos)
	}
}

func TestLurker_SensesWithoutSight(t *testing.T) {
	avatar := types.Pos{Row: 3, Col: 2}
	g := wallColumn(newGrid(t, 12, 7, avatar), 5)
	entities := []types.Entity{Spawn(1, types.KindLurker, types.Pos{Row: 3, Col: 8}, 0, 0)}
	ctx := testCtx(g, entities, avatar, 7)

	DefaultRegistry().Act(ctx, &entities[0])

	mem := entities[0].Memory.(*types.LurkerMemory)
	if !mem.Aware {
		t.Fatal("lurker within 8 should be aware without sight")
	}
	if mem.Marker == nil {
		t.Fatal("aware lurker without sight should place a marker")
	}
	d := world.Manhattan(*mem.Marker, avatar)
	if d < 2 || d > 10 {
		t.Errorf("marker at distance %d from avatar", d)
	}
	if !world.HasTag(ctx.Grid.Grid(), *mem.Marker, types.TagMarker) {
		t.Error("marker tag not on grid")
	}
	if world.CountTag(g, types.TagMarker) != 0 {
		t.Error("input grid was written")
	}
	if entities[0].Pos != (types.Pos{Row: 3, Col: 8}) {
		t.Error("lurker should not move while placing a marker")
	}
}

func TestLurker_MarkerRipensThenResolves(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		avatar := types.Pos{Row: 3, Col: 2}
		g := wallColumn(newGrid(t, 12, 7, avatar), 5)
		start := types.Pos{Row: 3, Col: 8}
		entities := []types.Entity{Spawn(1, types.KindLurker, start, 0, 0)}
		ctx := testCtx(g, entities, avatar, seed)
		reg := DefaultRegistry()

		reg.Act(ctx, &entities[0]) // place
		mem := entities[0].Memory.(*types.LurkerMemory)
		if mem.Marker == nil {
			t.Fatalf("seed %d: no marker placed", seed)
		}
		reg.Act(ctx, &entities[0]) // age 1
		mem = entities[0].Memory.(*types.LurkerMemory)
		if mem.MarkerAge != 1 || entities[0].Pos != start {
			t.Fatalf("seed %d: unripe marker acted: %+v at %v", seed, mem, entities[0].Pos)
		}
		marker := *mem.Marker

		reg.Act(ctx, &entities[0]) // ripe
		mem = entities[0].Memory.(*types.LurkerMemory)
		grid := ctx.Grid.Grid()
		if entities[0].Pos == marker {
			if mem.Marker != nil || world.CountTag(grid, types.TagMarker) != 0 {
				t.Errorf("seed %d: teleport should clear the marker", seed)
			}
			continue
		}
		if entities[0].Pos != start {
			t.Errorf("seed %d: lurker moved on its own to %v", seed, entities[0].Pos)
		}
		if mem.Marker == nil {
			t.Errorf("seed %d: relocation lost the marker", seed)
			continue
		}
		if d := world.Manhattan(*mem.Marker, start); d < 1 || d > 5 {
			t.Errorf("seed %d: relocated marker at distance %d", seed, d)
		}
		if world.CountTag(grid, types.TagMarker) != 1 {
			t.Errorf("seed %d: expected exactly one marker, got %d", seed, world.CountTag(grid, types.TagMarker))
		}
	}
}

func TestLurker_RegainingSightClearsMarker(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 12, 4, avatar)
	marker := types.Pos{Row: 2, Col: 4}
	g, _ = world.AddTag(g, marker, types.TagMarker)
	e := Spawn(1, types.KindLurker, types.Pos{Row: 1, Col: 5}, 0, 0)
	e.Memory = &types.LurkerMemory{Aware: true, Marker: &marker, MarkerAge: 3}
	entities := []types.Entity{e}
	ctx := testCtx(g, entities, avatar, 3)

	atk := DefaultRegistry().Act(ctx, &entities[0])

	mem := entities[0].Memory.(*types.LurkerMemory)
	if mem.Marker != nil || world.CountTag(ctx.Grid.Grid(), types.TagMarker) != 0 {
		t.Error("marker should be cleared on regaining sight")
	}
	if !atk.Ranged || atk.Amount != 1 {
		t.Errorf("distance 4 in sight should shoot for 1, got %+v", atk)
	}
}

func TestLurker_ApproachesWhenFar(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 12, 4, avatar)
	entities := []types.Entity{Spawn(1, types.KindLurker, types.Pos{Row: 1, Col: 9}, 0, 0)}
	atk := DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])
	if atk.Amount != 0 || entities[0].Pos != (types.Pos{Row: 1, Col: 8}) {
		t.Errorf("expected approach to (1,8), got %v with %+v", entities[0].Pos, atk)
	}
}

func TestLurker_TooCloseShootsOrBacksOff(t *testing.T) {
	shot, fled := 0, 0
	for seed := int64(1); seed <= 40; seed++ {
		avatar := types.Pos{Row: 2, Col: 2}
		g := newGrid(t, 10, 5, avatar)
		start := types.Pos{Row: 2, Col: 4}
		e := Spawn(1, types.KindLurker, start, 0, 0)
		e.Memory = &types.LurkerMemory{Aware: true}
		entities := []types.Entity{e}

		atk := DefaultRegistry().Act(testCtx(g, entities, avatar, seed), &entities[0])
		switch {
		case atk.Ranged && atk.Amount == 2 && entities[0].Pos == start:
			shot++
		case atk.Amount == 0 && world.Manhattan(entities[0].Pos, avatar) > 2:
			fled++
		default:
			t.Errorf("seed %d: unexpected outcome %+v at %v", seed, atk, entities[0].Pos)
		}
	}
	if shot == 0 || fled == 0 {
		t.Errorf("expected both outcomes, shot %d fled %d", shot, fled)
	}
}

func TestCrawler_AdjacentBitePoisons(t *testing.T) {
	avatar := types.Pos{Row: 2, Col: 2}
	g := newGrid(t, 6, 6, avatar)
	entities := []types.Entity{Spawn(1, types.KindCrawler, types.Pos{Row: 2, Col: 3}, 2, 2)}
	ctx := testCtx(g, entities, avatar, 1)
	ctx.Defense = 1

	atk := DefaultRegistry().Act(ctx, &entities[0])
	if atk.Amount != 1 || !atk.Poisons || atk.Ranged {
		t.Errorf("got %+v, want 1 poisoning melee", atk)
	}
	if entities[0].Facing != types.DirLeft {
		t.Errorf("crawler should face the avatar, facing %v", entities[0].Facing)
	}
}

func TestCrawler_InSightAdvancesOrRetreats(t *testing.T) {
	closer, farther := 0, 0
	for seed := int64(1); seed <= 60; seed++ {
		avatar := types.Pos{Row: 2, Col: 2}
		g := newGrid(t, 12, 5, avatar)
		start := types.Pos{Row: 2, Col: 6}
		entities := []types.Entity{Spawn(1, types.KindCrawler, start, 0, 0)}
		DefaultRegistry().Act(testCtx(g, entities, avatar, seed), &entities[0])

		switch world.Manhattan(entities[0].Pos, avatar) {
		case 3:
			closer++
		case 5:
			farther++
		default:
			t.Errorf("seed %d: crawler ended at %v", seed, entities[0].Pos)
		}
		if !entities[0].Memory.(*types.CrawlerMemory).LastMoved {
			t.Errorf("seed %d: open ground move not recorded", seed)
		}
	}
	if farther <= closer {
		t.Errorf("crawler should mostly retreat: closer %d farther %d", closer, farther)
	}
}

func TestCrawler_HiddenAndFarMostlyIdles(t *testing.T) {
	idle := 0
	for seed := int64(1); seed <= 80; seed++ {
		avatar := types.Pos{Row: 3, Col: 1}
		g := wallColumn(newGrid(t, 14, 7, avatar), 4)
		start := types.Pos{Row: 3, Col: 10}
		entities := []types.Entity{Spawn(1, types.KindCrawler, start, 0, 0)}
		DefaultRegistry().Act(testCtx(g, entities, avatar, seed), &entities[0])

		if entities[0].Pos == start {
			idle++
		} else if world.Manhattan(entities[0].Pos, start) != 1 {
			t.Errorf("seed %d: wandered too far to %v", seed, entities[0].Pos)
		}
	}
	if idle < 40 {
		t.Errorf("expected mostly idle turns, got %d of 80", idle)
	}
}

func TestBrute_WakesThenAttacks(t *testing.T) {
	avatar := types.Pos{Row: 2, Col: 2}
	g := newGrid(t, 6, 6, avatar)
	start := types.Pos{Row: 3, Col: 2}
	entities := []types.Entity{Spawn(1, types.KindBrute, start, 0, 0)}
	ctx := testCtx(g, entities, avatar, 1)
	ctx.Defense = 1
	reg := DefaultRegistry()

	if atk := reg.Act(ctx, &entities[0]); atk.Amount != 0 {
		t.Errorf("waking brute attacked for %d", atk.Amount)
	}
	if !entities[0].Memory.(*types.BruteMemory).Awake {
		t.Fatal("brute should be awake")
	}
	want := 3 + rng.New(1).Roll(3) - 2 - 1
	if atk := reg.Act(ctx, &entities[0]); atk.Amount != want {
		t.Errorf("awake brute hit for %d, want %d", atk.Amount, want)
	}
	if entities[0].Pos != start {
		t.Error("brute moved")
	}
}

func TestBrute_NeverMoves(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 8, 8, avatar)
	start := types.Pos{Row: 5, Col: 5}
	entities := []types.Entity{Spawn(1, types.KindBrute, start, 0, 0)}
	ctx := testCtx(g, entities, avatar, 1)
	for i := 0; i < 10; i++ {
		DefaultRegistry().Act(ctx, &entities[0])
	}
	if entities[0].Pos != start || entities[0].Memory.(*types.BruteMemory).Awake {
		t.Errorf("distant brute changed: %+v", entities[0])
	}
	if ctx.RNG.Position() != 0 {
		t.Error("brute should not draw randomness")
	}
}

func TestRat_HuntsInSight(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 10, 4, avatar)
	entities := []types.Entity{Spawn(1, types.KindRat, types.Pos{Row: 1, Col: 5}, 0, 0)}
	DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])

	mem := entities[0].Memory.(*types.RatMemory)
	if !mem.Hunting || mem.LastSeen == nil || *mem.LastSeen != avatar {
		t.Errorf("rat should hunt, memory %+v", mem)
	}
	if entities[0].Pos != (types.Pos{Row: 1, Col: 4}) {
		t.Errorf("rat should close in, at %v", entities[0].Pos)
	}
}

func TestRat_AdjacentBites(t *testing.T) {
	avatar := types.Pos{Row: 1, Col: 1}
	g := newGrid(t, 6, 4, avatar)
	entities := []types.Entity{Spawn(1, types.KindRat, types.Pos{Row: 1, Col: 2}, 0, 0)}
	atk := DefaultRegistry().Act(testCtx(g, entities, avatar, 1), &entities[0])
	want := max(0, 1+rng.New(1).Roll(3)-2)
	if atk.Amount != want || atk.Poisons {
		t.Errorf("got %+v, want plain %d damage", atk, want)
	}
}

func TestHunter_FollowsLastSeen(t *testing.T) {
	avatar := types.Pos{Row: 3, Col: 1}
	g := wallColumn(newGrid(t, 12, 7, avatar), 3)
	last := types.Pos{Row: 3, Col: 5}
	e := Spawn(1, types.KindHunter, types.Pos{Row: 3, Col: 8}, 0, 0)
	e.Memory = &types.HunterMemory{LastSeen: &last}
	entities := []types.Entity{e}
	reg := DefaultRegistry()
	ctx := testCtx(g, entities, avatar, 1)

	for i := 0; i < 3; i++ {
		reg.Act(ctx, &entities[0])
	}
	if entities[0].Pos != last {
		t.Errorf("hunter at %v, want %v", entities[0].Pos, last)
	}
	reg.Act(ctx, &entities[0])
	if entities[0].Memory.(*types.HunterMemory).LastSeen != nil {
		t.Error("reaching the last-seen cell should forget it")
	}
}

func TestSpawn_Defaults(t *testing.T) {
	h := Spawn(4, types.KindHunter, types.Pos{Row: 2, Col: 3}, 0, 0)
	if !h.CarriesLight || h.HP != 4 || h.MaxHP != 4 || h.Attack != 2 {
		t.Errorf("unexpected hunter %+v", h)
	}
	if _, ok := h.Memory.(*types.HunterMemory); !ok {
		t.Errorf("hunter memory is %T", h.Memory)
	}
	r := Spawn(5, types.KindRat, types.Pos{}, 7, 3)
	if r.HP != 7 || r.Attack != 3 || r.CarriesLight {
		t.Errorf("unexpected rat %+v", r)
	}
	if KnownKind("ghost") || !KnownKind(types.KindBrute) {
		t.Error("KnownKind mismatch")
	}
}

func TestRat_MeleeDrawsItsOwnVariance(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		avatar := types.Pos{Row: 2, Col: 2}
		g := newGrid(t, 5, 5, avatar)
		entities := []types.Entity{Spawn(1, types.KindRat, types.Pos{Row: 2, Col: 3}, 2, 3)}
		ctx := testCtx(g, entities, avatar, seed)
		ctx.Defense = 1

		want := 3 + rng.New(seed).Roll(3) - 2 - 1
		atk := DefaultRegistry().Act(ctx, &entities[0])
		if atk.Amount != want || atk.Ranged {
			t.Errorf("seed %d: got %+v, want melee %d", seed, atk, want)
		}
		if ctx.RNG.Position() != 1 {
			t.Errorf("seed %d: rng position %d, want 1", seed, ctx.RNG.Position())
		}
	}
}
