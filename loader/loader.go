// Package loader reads a Lua ruleset and scenario into the immutable
// Defs and the starting World, then sanity-checks the result. The Lua VM
// is discarded after loading; the ruleset script is kept as text.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/engine/state"
)

// rawDef is a named constructor call before compilation.
type rawDef struct {
	name  string
	table *lua.LTable
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	game *lua.LTable

	techs        []rawDef
	governments  []rawDef
	buildings    []rawDef
	unitClasses  []rawDef
	unitTypes    []rawDef
	terrains     []rawDef
	extras       []rawDef
	specialists  []rawDef
	nations      []rawDef
	styles       []rawDef
	cityStyles   []rawDef
	achievements []rawDef
	disasters    []rawDef
	musicStyles  []rawDef
	effects      []rawDef
	enablers     []rawDef

	mapDef  *lua.LTable
	players []rawDef
	cities  []rawDef
	units   []rawDef

	script []string
}

// Load reads all .lua files from dir, compiles them into the ruleset and
// the scenario world, and runs the sanity checker. Settings, when not
// nil, are applied to a copy of the game info for the checks that
// depend on server settings.
func Load(dir string, settings Settings) (*state.Defs, *state.World, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading ruleset directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	script.OpenSandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return nil, nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	defs, world, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling ruleset: %w", err)
	}

	if err := SanityCheck(defs, settings); err != nil {
		return nil, nil, err
	}
	if err := validateWorld(defs, world); err != nil {
		return nil, nil, err
	}

	log.Debug().Str("ruleset", defs.Game.Name).
		Int("techs", len(defs.Advances)-1).
		Int("effects", len(defs.Effects)).
		Int("players", len(world.Players)).
		Msg("ruleset loaded")
	return defs, world, nil
}

// sortedLuaFiles puts game.lua first and the rest in name order.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
