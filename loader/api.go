package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

// curried returns a global for the `Name "id" { ... }` form: calling it
// with a string returns a function that takes the body table.
func curried(L *lua.LState, fn func(id string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			fn(id, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Dungeon { title = "...", map = { "####", ... }, legend = { ... } }
	L.SetGlobal("Dungeon", L.NewFunction(func(L *lua.LState) int {
		if coll.dungeon != nil {
			L.RaiseError("Dungeon{} defined more than once")
		}
		coll.dungeon = L.CheckTable(1)
		return 0
	}))

	// Enemy "kind" { row = 3, col = 4, hp = 2, attack = 1 }
	L.SetGlobal("Enemy", curried(L, func(kind string, tbl *lua.LTable) {
		coll.enemies = append(coll.enemies, rawEnemy{kind: kind, table: tbl})
	}))

	// Avatar { hp = 12, attack = 2, lantern = true, ... }
	L.SetGlobal("Avatar", L.NewFunction(func(L *lua.LState) int {
		coll.avatar = L.CheckTable(1)
		return 0
	}))

	// Tuning { light_radius = 3, ... }. Later calls override earlier keys.
	L.SetGlobal("Tuning", L.NewFunction(func(L *lua.LState) int {
		coll.tuning = append(coll.tuning, L.CheckTable(1))
		return 0
	}))

	// Phase "dusk" { duration = 6, tint = "#8f563b", alpha = 0.25 }
	L.SetGlobal("Phase", curried(L, func(id string, tbl *lua.LTable) {
		coll.phases = append(coll.phases, rawPhase{id: id, table: tbl})
	}))

	// Note { flag = "...", title = "...", body = "...", completes = "..." }
	L.SetGlobal("Note", L.NewFunction(func(L *lua.LState) int {
		coll.notes = append(coll.notes, L.CheckTable(1))
		return 0
	}))

	// On("killed:rat", { conditions = {...}, effects = {...} })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventID := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawHandler{eventID: eventID, table: tbl})
		return 0
	}))
}

func conditionTable(L *lua.LState, typ string, fields map[string]lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	for k, v := range fields {
		tbl.RawSetString(k, v)
	}
	return tbl
}

func registerConditionHelpers(L *lua.LState) {
	// HasItem("lantern")
	L.SetGlobal("HasItem", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "has_item", map[string]lua.LValue{"item": lua.LString(L.CheckString(1))}))
		return 1
	}))

	// FlagSet("flag")
	L.SetGlobal("FlagSet", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "flag_set", map[string]lua.LValue{"flag": lua.LString(L.CheckString(1))}))
		return 1
	}))

	// FlagNot("flag")
	L.SetGlobal("FlagNot", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "flag_not", map[string]lua.LValue{"flag": lua.LString(L.CheckString(1))}))
		return 1
	}))

	// FlagIs("flag", value)
	L.SetGlobal("FlagIs", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "flag_is", map[string]lua.LValue{
			"flag":  lua.LString(L.CheckString(1)),
			"value": lua.LBool(L.CheckBool(2)),
		}))
		return 1
	}))

	// StatGt("enemies_defeated", 3)
	L.SetGlobal("StatGt", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "stat_gt", map[string]lua.LValue{
			"stat":  lua.LString(L.CheckString(1)),
			"value": L.CheckNumber(2),
		}))
		return 1
	}))

	// StatLt("hp", 3)
	L.SetGlobal("StatLt", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "stat_lt", map[string]lua.LValue{
			"stat":  lua.LString(L.CheckString(1)),
			"value": L.CheckNumber(2),
		}))
		return 1
	}))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		L.Push(conditionTable(L, "not", map[string]lua.LValue{"inner": L.CheckTable(1)}))
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// SetFlag("flag", value). The value defaults to true.
	L.SetGlobal("SetFlag", L.NewFunction(func(L *lua.LState) int {
		flag := L.CheckString(1)
		value := L.OptBool(2, true)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("set_flag"))
		tbl.RawSetString("flag", lua.LString(flag))
		tbl.RawSetString("value", lua.LBool(value))
		L.Push(tbl)
		return 1
	}))
}
