package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/types"
)

const testGame = `
Game {
  name = "test",
  tech_cost_style = 1,
  base_tech_cost = 20,
  free_tech_method = "Cheapest",
  barbarians = false,
  init_techs = { "Alphabet" },
  granary_food_ini = { 20, 30 },
  granary_food_inc = 10,
  veteran = {
    { name = "green", power_fact = 100 },
    { name = "veteran", power_fact = 150, move_bonus = 1 },
  },
}
`

const testRules = `
Tech "Alphabet" {}
Tech "Bronze Working" {}
Tech "Writing" { req1 = "Alphabet" }
Tech "Currency" { req1 = "Bronze Working", flags = { "Money" } }
Tech "Monarchy" { req1 = "Writing", req2 = "Currency" }

Government "Anarchy" {}
Government "Despotism" {}
Government "Monarchy" { reqs = { Req("Tech", "Monarchy", "Player") } }

Building "Palace" { genus = "SmallWonder", build_cost = 70 }
Building "Temple" { build_cost = 30, upkeep = 1 }
Building "Pyramids" { genus = "GreatWonder", build_cost = 180, reqs = { Req("Tech", "Bronze Working", "Player") } }

UnitClass "Land" {}
UnitClass "Sea" {}

UnitType "Settlers" { class = "Land", flags = { "Settlers" }, hp = 20 }
UnitType "Warriors" { class = "Land", roles = { "FirstBuild" }, attack = 1, defense = 1 }
UnitType "Explorer" { class = "Land", roles = { "Explorer" }, move = 3 }
UnitType "Diplomat" { class = "Land", flags = { "Diplomat" }, move = 2, obsolete_by = "Spy" }
UnitType "Spy" { class = "Land", flags = { "Diplomat", "Spy" }, move = 3 }
UnitType "Trireme" { class = "Sea", roles = { "Ferryboat" }, transport_cap = 2, cargo = { "Land" } }

Terrain "Grassland" { native_to = { "Land" }, alters = { "CanIrrigate" } }
Terrain "Ocean" { class = "Oceanic", flags = { "NoCities" }, native_to = { "Sea" } }

Extra "Road" { road_flags = { "ConnectLand" } }
Specialist "Entertainers" {}
Style "European" {}
CityStyle "European" { reqs = { Req("Style", "European", "Player") } }

Nation "Romans" { adjective = "Roman", style = "European", init_techs = { "Bronze Working" } }
Nation "Greeks" { adjective = "Greek", style = "European" }

Effect "Tech_Cost_Factor" { value = 1 }
Effect "Make_Content" {
  value = 1,
  reqs = { Req("Building", "Temple", "City"), NotReq("Gov", "Anarchy", "Player") },
}
Effect "Turn_Years" { value = 50 }

Enabler "Establish Embassy" {
  actor_reqs = { Req("UnitFlag", "Diplomat", "Local") },
  target_reqs = { NotReq("Gov", "Anarchy", "Player") },
}
Enabler "steal_tech" {}
`

const testScenario = `
Map {
  width = 6, height = 4, terrain = "Grassland",
  tiles = {
    { x = 5, y = 0, terrain = "Ocean" }, { x = 5, y = 1, terrain = "Ocean" },
    { x = 5, y = 2, terrain = "Ocean" }, { x = 5, y = 3, terrain = "Ocean" },
    { x = 1, y = 0, extras = { "Road" } },
  },
}

Player "Caesar" {
  nation = "Romans", government = "Despotism",
  embassies = { "Pericles" }, diplstates = { Pericles = "War" },
}
Player "Pericles" { nation = "Greeks", government = "Despotism", ai = true }

City "Rome" {
  owner = "Caesar", x = 0, y = 0, size = 5, capital = true,
  buildings = { "Palace", "Pyramids" }, specialists = { Entertainers = 1 },
}
City "Athens" { owner = "Pericles", x = 3, y = 0, size = 3, capital = true, trade_routes = { "Rome" } }

Unit "Diplomat" { owner = "Caesar", x = 2, y = 0, home = "Rome" }
Unit "Warriors" { owner = "Pericles", x = 3, y = 0, home = "Athens", veteran = 1 }

Script [[
signal.connect("turn_started", "on_turn")
function on_turn(turn, year) end
]]
`

// writeRuleset writes files into a fresh directory and returns it.
func writeRuleset(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func testFiles() map[string]string {
	return map[string]string{
		"game.lua":     testGame,
		"rules.lua":    testRules,
		"scenario.lua": testScenario,
	}
}

type barbarianSettings struct{}

func (barbarianSettings) Apply(g *types.GameInfo) { g.Barbarians = true }

func TestLoad_Ruleset(t *testing.T) {
	defs, _, err := Load(writeRuleset(t, testFiles()), nil)
	require.NoError(t, err)

	g := defs.Game
	if g.Name != "test" || g.TechCostStyle != 1 || g.FreeTechMethod != types.FreeTechCheapest {
		t.Errorf("Game = %+v", g)
	}
	if g.Sciencebox != 100 || g.Diplchance != 80 || g.Techlossforgiveness != -1 {
		t.Errorf("server defaults = %d %d %d", g.Sciencebox, g.Diplchance, g.Techlossforgiveness)
	}
	require.Equal(t, []types.TechID{1}, g.GlobalInitTechs)
	require.Len(t, g.Veteran, 2)
	if g.Veteran[1].MoveBonus != 1 {
		t.Errorf("veteran move bonus = %d, want 1", g.Veteran[1].MoveBonus)
	}

	require.Len(t, defs.Advances, 6)
	if defs.Advances[0].Name != "None" {
		t.Errorf("Advances[0] = %q, want None", defs.Advances[0].Name)
	}
	if got := defs.Advances[5].Require; got != [2]types.TechID{3, 4} {
		t.Errorf("Monarchy requires %v, want [3 4]", got)
	}

	gov := defs.Governments[2].Reqs[0]
	if gov.Source.Kind != types.KindAdvance || gov.Source.Value != 5 || gov.Range != types.RangePlayer {
		t.Errorf("Monarchy req = %+v", gov)
	}
	if defs.Improvements[2].Genus != types.GenusGreatWonder {
		t.Errorf("Pyramids genus = %v", defs.Improvements[2].Genus)
	}

	diplomat := defs.UnitTypes[3]
	if diplomat.ObsoletedBy != 4 || diplomat.Move != 2 || diplomat.HP != 10 {
		t.Errorf("Diplomat = %+v", diplomat)
	}
	require.Equal(t, []int{0}, defs.UnitTypes[5].Cargo)
	if defs.Terrains[1].Class != types.TerrainOceanic {
		t.Errorf("Ocean class = %v", defs.Terrains[1].Class)
	}
	require.Equal(t, []types.TechID{2}, defs.Nations[0].InitTechs)

	require.Len(t, defs.Effects, 3)
	content := defs.Effects[1]
	if content.Type != types.EffectMakeContent {
		t.Errorf("Effects[1].Type = %v", content.Type)
	}
	if r := content.Reqs[0]; r.Source.Kind != types.KindImprovement || r.Source.Value != 1 || r.Range != types.RangeCity {
		t.Errorf("Make_Content req 0 = %+v", r)
	}
	if r := content.Reqs[1]; r.Present || r.Source.Value != 0 {
		t.Errorf("Make_Content req 1 = %+v", r)
	}

	require.Len(t, defs.Enablers, 2)
	if defs.Enablers[0].Action != actions.EstablishEmbassy || defs.Enablers[1].Action != actions.SpyStealTech {
		t.Errorf("enabler actions = %d, %d", defs.Enablers[0].Action, defs.Enablers[1].Action)
	}
	if !strings.Contains(defs.Script, "on_turn") {
		t.Errorf("Script = %q", defs.Script)
	}
}

func TestLoad_Scenario(t *testing.T) {
	_, w, err := Load(writeRuleset(t, testFiles()), nil)
	require.NoError(t, err)

	require.Len(t, w.Players, 2)
	caesar, pericles := w.Players[0], w.Players[1]
	if !caesar.Embassies[1] {
		t.Error("Caesar should have an embassy with Pericles")
	}
	if pericles.Diplstates[0] != types.DiplWar {
		t.Errorf("mirrored diplstate = %v, want war", pericles.Diplstates[0])
	}
	if !pericles.AI || pericles.AILevel != types.AINormal {
		t.Errorf("Pericles AI = %v %v", pericles.AI, pericles.AILevel)
	}
	if len(caesar.Known) != 24 {
		t.Errorf("Caesar knows %d tiles, want 24", len(caesar.Known))
	}

	rome, athens := w.Cities[1], w.Cities[2]
	require.NotNil(t, rome)
	require.NotNil(t, athens)
	if rome.Name != "Rome" || !rome.Capital || rome.Size != 5 || rome.Specialists[0] != 1 {
		t.Errorf("Rome = %+v", rome)
	}
	require.Equal(t, []int{1}, athens.TradeRoutes)
	if w.Wonders[2] != 1 || !w.WondersEver[2] {
		t.Errorf("Pyramids location = %d", w.Wonders[2])
	}
	if w.Tile(0).Owner != 0 || w.Tile(3).Owner != 1 {
		t.Errorf("tile owners = %d, %d", w.Tile(0).Owner, w.Tile(3).Owner)
	}

	diplomat := w.Units[1]
	if diplomat.Type != 3 || diplomat.HP != 10 || diplomat.HomeCity != 1 || diplomat.Tile != 2 {
		t.Errorf("Diplomat = %+v", diplomat)
	}
	if w.Units[2].Veteran != 1 {
		t.Errorf("Warriors veteran = %d", w.Units[2].Veteran)
	}

	if w.Tile(0).Continent != 1 || w.Tile(5).Continent != -1 {
		t.Errorf("continents = %d, %d", w.Tile(0).Continent, w.Tile(5).Continent)
	}
	require.Equal(t, []int{0}, w.Tile(1).Extras)
	if w.Turn != 1 || w.Year != -4000 {
		t.Errorf("turn %d year %d", w.Turn, w.Year)
	}
}

func TestLoad_RulesetWithoutScenario(t *testing.T) {
	_, w, err := Load(writeRuleset(t, map[string]string{"game.lua": testGame, "rules.lua": testRules}), nil)
	require.NoError(t, err)
	if len(w.Players) != 0 || len(w.Map.Tiles) != 0 {
		t.Errorf("world = %d players, %d tiles", len(w.Players), len(w.Map.Tiles))
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"no lua files", map[string]string{"readme.txt": "hi"}, "no .lua files"},
		{"syntax", map[string]string{"game.lua": "Game {"}, "executing game.lua"},
		{"sandboxed io", map[string]string{"game.lua": `io.open("x")`}, "executing game.lua"},
		{"sandboxed os", map[string]string{"game.lua": `os.exit(1)`}, "executing game.lua"},
		{"no game", map[string]string{"rules.lua": testRules}, "no Game{} definition found"},
		{"sanity", map[string]string{"game.lua": testGame, "rules.lua": testRules + `UnitType "Agent" { class = "Land", flags = { "Spy" } }`},
			"Spy flag but not the Diplomat flag"},
		{"scenario", map[string]string{"game.lua": testGame, "rules.lua": testRules, "scenario.lua": testScenario +
			`City "Atlantis" { owner = "Caesar", x = 5, y = 3 }`}, `city "Atlantis" stands on Ocean`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(writeRuleset(t, tt.files), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingDir(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope"), nil)
	if err == nil || !strings.Contains(err.Error(), "reading ruleset directory") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestLoad_Settings(t *testing.T) {
	_, _, err := Load(writeRuleset(t, testFiles()), barbarianSettings{})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "error = %v", err)
	assertContains(t, ve.Errors, "no unit type with role Barbarian")
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"units.lua", "game.lua", "effects.lua"})
	want := []string{"game.lua", "effects.lua", "units.lua"}
	require.Equal(t, want, got)
}

// assertContains checks that some message contains substr.
func assertContains(t *testing.T, msgs []string, substr string) {
	t.Helper()
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("no message contains %q; got:\n  %s", substr, strings.Join(msgs, "\n  "))
}
