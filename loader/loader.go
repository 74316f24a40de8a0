package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/types"
)

// Dungeon is a compiled dungeon: the starting snapshot and the run tuning.
type Dungeon struct {
	Title    string
	Intro    string
	Snapshot types.Snapshot
	Config   engine.Config
	Warnings []string
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	dungeon  *lua.LTable
	avatar   *lua.LTable
	enemies  []rawEnemy
	tuning   []*lua.LTable
	phases   []rawPhase
	notes    []*lua.LTable
	handlers []rawHandler
}

// Load reads all .lua files from dir, compiles them into a dungeon,
// validates it, and returns the starting snapshot and config. The Lua VM
// is discarded after loading.
func Load(dir string) (*Dungeon, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dungeon directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	// dungeon.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	d, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling dungeon: %w", err)
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// A dungeon file must compile to the same snapshot every time.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
