// Package loader loads Lua dungeon files into Go structs at startup.
// The Lua VM is discarded after loading, no Lua runs during play.
package loader

import (
	"fmt"
	"sort"
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/engine/daynight"
	"github.com/nathoo/gloomcore/engine/world"
	"github.com/nathoo/gloomcore/types"
)

// rawEnemy holds an Enemy table before compilation.
type rawEnemy struct {
	kind  string
	table *lua.LTable
}

// rawPhase holds a Phase table before compilation.
type rawPhase struct {
	id    string
	table *lua.LTable
}

// rawHandler holds an event handler before compilation.
type rawHandler struct {
	eventID string
	table   *lua.LTable
}

// defaultLegend maps map glyphs to terrain, prop, pickup or enemy names.
var defaultLegend = map[rune]string{
	'#': "wall", '.': "floor", '~': "chasm", '>': "stairs",
	'@': "avatar", 'P': "pot", 'C': "chest", 'T': "torch", 'S': "shrine",
	'!': "potion", '*': "stone", 'o': "oil",
	'r': "rat", 'h': "hunter", 'c': "crawler", 'L': "lurker", 'B': "brute",
}

var terrainNames = map[string]types.Terrain{
	"floor":  types.TerrainFloor,
	"wall":   types.TerrainWall,
	"chasm":  types.TerrainChasm,
	"stairs": types.TerrainStairs,
}

var tagNames = map[string]types.Tag{
	"avatar": types.TagAvatar,
	"pot":    types.TagPot,
	"chest":  types.TagChest,
	"torch":  types.TagTorch,
	"shrine": types.TagShrine,
	"potion": types.TagPotion,
	"stone":  types.TagStone,
	"oil":    types.TagOil,
}

var dirNames = map[string]types.Dir{
	"up": types.DirUp, "down": types.DirDown, "left": types.DirLeft, "right": types.DirRight,
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	return int(getNumber(tbl, key, float64(def)))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// arrayTables returns the table elements of tbl's array part, in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// stringKeys returns the sorted string keys of tbl.
func stringKeys(tbl *lua.LTable) []string {
	var keys []string
	tbl.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			keys = append(keys, string(ks))
		}
	})
	sort.Strings(keys)
	return keys
}

// compile converts all collected Lua data into a Dungeon.
func compile(coll *collector) (*Dungeon, error) {
	if coll.dungeon == nil {
		return nil, fmt.Errorf("no Dungeon{} definition found")
	}
	d := &Dungeon{
		Title:  getString(coll.dungeon, "title"),
		Intro:  getString(coll.dungeon, "intro"),
		Config: engine.DefaultConfig(),
	}

	for _, tbl := range coll.tuning {
		d.Warnings = append(d.Warnings, applyTuning(&d.Config, tbl)...)
	}
	if len(coll.phases) > 0 {
		d.Config.Cycle = compileCycle(coll.phases)
	}
	if err := d.Config.Cycle.Validate(); err != nil {
		return nil, fmt.Errorf("day/night cycle: %w", err)
	}
	for _, raw := range coll.handlers {
		h, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler %q: %w", raw.eventID, err)
		}
		d.Config.Handlers = append(d.Config.Handlers, h)
	}
	for _, tbl := range coll.notes {
		d.Config.Notes = append(d.Config.Notes, compileNote(tbl))
	}

	legend, err := compileLegend(getTable(coll.dungeon, "legend"))
	if err != nil {
		return nil, err
	}
	grid, spawns, err := compileMap(getTable(coll.dungeon, "map"), legend)
	if err != nil {
		return nil, err
	}
	for _, raw := range coll.enemies {
		spawns = append(spawns, compileEnemy(raw))
	}

	var entities []types.Entity
	for i, sp := range spawns {
		if !ai.KnownKind(sp.kind) {
			return nil, fmt.Errorf("enemy at %s: unknown kind %q", describe(sp.pos), sp.kind)
		}
		e := ai.Spawn(i+1, sp.kind, sp.pos, sp.hp, sp.attack)
		if sp.facing != types.DirNone {
			e.Facing = sp.facing
		}
		entities = append(entities, e)
	}

	flags := map[string]bool{}
	if ft := getTable(coll.dungeon, "flags"); ft != nil {
		for _, k := range stringKeys(ft) {
			flags[k] = getBool(ft, k, false)
		}
	}

	d.Snapshot = types.Snapshot{
		Grid:         grid,
		Entities:     entities,
		Avatar:       compileAvatar(coll.avatar, d.Config),
		TimeOfDay:    d.Config.Cycle.Advance(d.Config.Cycle.Start(), getInt(coll.dungeon, "start_step", 0)),
		StoryFlags:   flags,
		Status:       types.StatusPlaying,
		NextEntityID: len(entities) + 1,
	}
	return d, nil
}

type spawn struct {
	kind       types.Kind
	pos        types.Pos
	hp, attack int
	facing     types.Dir
}

func compileLegend(tbl *lua.LTable) (map[rune]string, error) {
	legend := make(map[rune]string, len(defaultLegend))
	for k, v := range defaultLegend {
		legend[k] = v
	}
	if tbl == nil {
		return legend, nil
	}
	for _, key := range stringKeys(tbl) {
		if utf8.RuneCountInString(key) != 1 {
			return nil, fmt.Errorf("legend key %q must be a single character", key)
		}
		r, _ := utf8.DecodeRuneInString(key)
		legend[r] = getString(tbl, key)
	}
	return legend, nil
}

// compileMap builds the grid from the map rows. Enemy glyphs become spawns
// on floor.
func compileMap(rows *lua.LTable, legend map[rune]string) (types.Grid, []spawn, error) {
	if rows == nil || rows.MaxN() == 0 {
		return types.Grid{}, nil, fmt.Errorf("Dungeon.map is required")
	}
	var lines []string
	for i := 1; i <= rows.MaxN(); i++ {
		s, ok := rows.RawGetInt(i).(lua.LString)
		if !ok {
			return types.Grid{}, nil, fmt.Errorf("map row %d is not a string", i)
		}
		lines = append(lines, string(s))
	}
	width := utf8.RuneCountInString(lines[0])
	if width == 0 {
		return types.Grid{}, nil, fmt.Errorf("map row 1 is empty")
	}

	g := world.New(width, len(lines))
	var spawns []spawn
	for r, line := range lines {
		if n := utf8.RuneCountInString(line); n != width {
			return types.Grid{}, nil, fmt.Errorf("map row %d has %d cells, want %d", r+1, n, width)
		}
		for c, ch := range []rune(line) {
			p := types.Pos{Row: r, Col: c}
			name, ok := legend[ch]
			if !ok {
				return types.Grid{}, nil, fmt.Errorf("map row %d col %d: unknown glyph %q", r+1, c+1, ch)
			}
			if t, ok := terrainNames[name]; ok {
				g.Terrain[r*width+c] = t
				continue
			}
			if tag, ok := tagNames[name]; ok {
				var err error
				if g, err = world.AddTag(g, p, tag); err != nil {
					return types.Grid{}, nil, fmt.Errorf("map row %d col %d: %w", r+1, c+1, err)
				}
				continue
			}
			if ai.KnownKind(types.Kind(name)) {
				spawns = append(spawns, spawn{kind: types.Kind(name), pos: p})
				continue
			}
			return types.Grid{}, nil, fmt.Errorf("legend maps %q to unknown name %q", ch, name)
		}
	}
	return g, spawns, nil
}

// compileEnemy reads an Enemy table. Rows and columns are 0-based, matching
// the map as written.
func compileEnemy(raw rawEnemy) spawn {
	return spawn{
		kind:   types.Kind(raw.kind),
		pos:    types.Pos{Row: getInt(raw.table, "row", -1), Col: getInt(raw.table, "col", -1)},
		hp:     getInt(raw.table, "hp", 0),
		attack: getInt(raw.table, "attack", 0),
		facing: dirNames[getString(raw.table, "facing")],
	}
}

func compileAvatar(tbl *lua.LTable, cfg engine.Config) types.Avatar {
	a := types.Avatar{HP: 10, MaxHP: 10, Attack: 2, Facing: types.DirDown}
	if tbl == nil {
		return a
	}
	a.MaxHP = getInt(tbl, "max_hp", getInt(tbl, "hp", a.MaxHP))
	a.HP = getInt(tbl, "hp", a.MaxHP)
	a.Attack = getInt(tbl, "attack", a.Attack)
	a.Defense = getInt(tbl, "defense", 0)
	if d, ok := dirNames[getString(tbl, "facing")]; ok {
		a.Facing = d
	}
	a.Inventory = types.Inventory{
		Potions: getInt(tbl, "potions", 0),
		Stones:  getInt(tbl, "stones", 0),
		Oil:     getInt(tbl, "oil", 0),
	}
	a.Equipped = types.Equipped{
		Blade:   getBool(tbl, "blade", false),
		Lantern: getBool(tbl, "lantern", false),
	}
	if a.Equipped.Lantern {
		a.Fuel = getInt(tbl, "fuel", cfg.LanternFuel)
		a.LanternLit = getBool(tbl, "lit", a.Fuel > 0)
	}
	return a
}

// applyTuning overrides config fields named in tbl and returns a warning
// for each key it does not recognize.
func applyTuning(cfg *engine.Config, tbl *lua.LTable) []string {
	ints := map[string]*int{
		"light_radius":    &cfg.LightRadius,
		"daylight_radius": &cfg.DaylightRadius,
		"lantern_fuel":    &cfg.LanternFuel,
		"throw_range":     &cfg.ThrowRange,
		"potion_heal":     &cfg.PotionHeal,
		"blade_bonus":     &cfg.BladeBonus,
		"ambush_chance":   &cfg.AmbushChance,
		"ambush_out_of":   &cfg.AmbushOutOf,
		"poison_interval": &cfg.PoisonInterval,
		"poison_damage":   &cfg.PoisonDamage,
	}
	var warnings []string
	for _, key := range stringKeys(tbl) {
		if p, ok := ints[key]; ok {
			*p = getInt(tbl, key, *p)
			continue
		}
		switch key {
		case "ambush_kind":
			cfg.AmbushKind = types.Kind(getString(tbl, key))
		case "pot_drops":
			cfg.PotDrops = compileLoot(getTable(tbl, key))
		case "chest_loot":
			cfg.ChestLoot = compileLoot(getTable(tbl, key))
		default:
			warnings = append(warnings, fmt.Sprintf("unknown tuning key %q", key))
		}
	}
	return warnings
}

func compileLoot(tbl *lua.LTable) []engine.Loot {
	if tbl == nil {
		return nil
	}
	var out []engine.Loot
	for _, t := range arrayTables(tbl) {
		out = append(out, engine.Loot{
			Item:   getString(t, "item"),
			Weight: getInt(t, "weight", 1),
			Count:  getInt(t, "count", 1),
		})
	}
	return out
}

// compileCycle builds the day/night cycle from Phase declarations, in
// declaration order.
func compileCycle(raws []rawPhase) daynight.Cycle {
	var c daynight.Cycle
	for _, raw := range raws {
		c.Phases = append(c.Phases, daynight.PhaseDef{
			ID:             types.Phase(raw.id),
			Duration:       getInt(raw.table, "duration", 0),
			FullVisibility: getBool(raw.table, "full_visibility", false),
			Overlay: daynight.Overlay{
				Tint:  getString(raw.table, "tint"),
				Alpha: getNumber(raw.table, "alpha", 0),
			},
		})
	}
	return c
}

func compileNote(tbl *lua.LTable) types.NoteDef {
	return types.NoteDef{
		Flag:      getString(tbl, "flag"),
		Unlock:    getBool(tbl, "unlock", true),
		Title:     getString(tbl, "title"),
		Body:      getString(tbl, "body"),
		Completes: getString(tbl, "completes"),
	}
}

func compileHandler(raw rawHandler) (types.EventHandler, error) {
	h := types.EventHandler{EventID: raw.eventID}
	if condTbl := getTable(raw.table, "conditions"); condTbl != nil {
		for _, t := range arrayTables(condTbl) {
			h.Conditions = append(h.Conditions, compileCondition(t))
		}
	}
	if effTbl := getTable(raw.table, "effects"); effTbl != nil {
		for _, t := range arrayTables(effTbl) {
			if typ := getString(t, "type"); typ != "set_flag" {
				return h, fmt.Errorf("unknown effect type %q", typ)
			}
			flag := getString(t, "flag")
			if flag == "" {
				return h, fmt.Errorf("set_flag without a flag")
			}
			h.Effects = append(h.Effects, types.FlagEffect{Flag: flag, Value: getBool(t, "value", true)})
		}
	}
	return h, nil
}

func compileCondition(tbl *lua.LTable) types.HandlerCondition {
	condType := getString(tbl, "type")
	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.HandlerCondition{Type: "not", Inner: &inner}
		}
	}

	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.HandlerCondition{Type: condType, Params: params}
}

// sortedLuaFiles returns .lua files with dungeon.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var main string
	var others []string
	for _, f := range files {
		if f == "dungeon.lua" {
			main = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if main != "" {
		return append([]string{main}, others...)
	}
	return others
}

// describe renders a position the way dungeon authors count: 0-based row
// and column as in the map.
func describe(p types.Pos) string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}
