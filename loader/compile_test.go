package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// collect runs code through the ruleset API and returns what it defined.
func collect(t *testing.T, code string) *collector {
	t.Helper()
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	script.OpenSandbox(L)
	coll := &collector{}
	registerAPI(L, coll)
	require.NoError(t, L.DoString(code))
	return coll
}

func TestCompile_Errors(t *testing.T) {
	const game = `Game { name = "t" } UnitClass "Land" {} Terrain "Grass" { native_to = { "Land" } } `
	tests := []struct {
		name string
		code string
		want string
	}{
		{"unknown prereq", game + `Tech "A" { req1 = "Nope" }`, `compiling tech A: req1: unknown tech "Nope"`},
		{"duplicate tech", game + `Tech "A" {} Tech "a" {}`, `duplicate tech "a"`},
		{"reserved none", game + `Tech "None" {}`, `tech name "None" is reserved`},
		{"effect type", game + `Effect "Bogus" { value = 1 }`, `unknown effect type "Bogus"`},
		{"action", game + `Enabler "Fly" {}`, `unknown action "Fly"`},
		{"req kind", game + `Effect "Victory" { reqs = { Req("Colour", "Red") } }`, `unknown requirement kind "Colour"`},
		{"req range", game + `Effect "Victory" { reqs = { Req("Tech", "None", "Galaxy") } }`, `unknown range "Galaxy"`},
		{"req number", game + `Effect "Victory" { reqs = { Req("MinSize", "big", "City") } }`, "MinSize needs a number"},
		{"req name", game + `Government "Despotism" { reqs = { Req("Building", "Temple", "City") } }`, `unknown building "Temple"`},
		{"req not a table", game + `Effect "Victory" { reqs = { "Tech" } }`, "reqs[1] is not a requirement"},
		{"unit class", game + `UnitType "Warriors" {}`, `unknown unit class ""`},
		{"genus", game + `Building "Temple" { genus = "Shrine" }`, `unknown genus "Shrine"`},
		{"upkeep style", `Game { name = "t", tech_upkeep_style = "Heavy" }`, `unknown tech_upkeep_style "Heavy"`},
		{"players without map", game + `Nation "N" {} Government "G" {} Player "P" { nation = "N", government = "G" }`, "no Map{}"},
		{"off map", game + `Map { width = 2, height = 2, terrain = "Grass", tiles = { { x = 2, y = 0 } } }`, "(2,0) is off the map"},
		{"unit owner", game + `Nation "N" {} Government "G" {} Map { width = 2, height = 2, terrain = "Grass" }
			UnitType "Warriors" { class = "Land" } Unit "Warriors" { owner = "Nobody", x = 0, y = 0 }`, `unknown player "Nobody"`},
		{"diplstate", game + `Nation "N" {} Government "G" {} Map { width = 2, height = 2, terrain = "Grass" }
			Player "A" { nation = "N", government = "G", diplstates = { B = "Friends" } }
			Player "B" { nation = "N", government = "G" }`, `unknown diplomatic state "Friends"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := compile(collect(t, tt.code))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("compile() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCompile_Universals(t *testing.T) {
	coll := collect(t, testGame+testRules)
	c := &compiler{coll: coll, defs: &state.Defs{}}
	require.NoError(t, c.indexAll())

	tests := []struct {
		kind types.ReqKind
		name string
		want int
	}{
		{types.KindAdvance, "writing", 3},
		{types.KindAdvance, "None", 0},
		{types.KindGovernment, "Monarchy", 2},
		{types.KindImprovement, "Temple", 1},
		{types.KindUnitType, "Spy", 4},
		{types.KindUnitClass, "Sea", 1},
		{types.KindTerrainClass, "Oceanic", 1},
		{types.KindDiplRel, "Has real embassy", rules.DiplRelHasRealEmbassy},
		{types.KindUnitState, "TransportDependent", 2},
		{types.KindCityTile, "Claimed", 1},
		{types.KindOutputType, "Science", types.OScience},
		{types.KindAILevel, "Hard", int(types.AIHard)},
		{types.KindMinSize, "8", 8},
		{types.KindMinYear, "-1000", -1000},
		{types.KindUnitFlag, "Diplomat", 0},
		{types.KindStyle, "European", 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+" "+tt.name, func(t *testing.T) {
			got, err := c.universal(tt.kind, tt.name)
			require.NoError(t, err)
			if got != tt.want {
				t.Errorf("universal(%v, %q) = %d, want %d", tt.kind, tt.name, got, tt.want)
			}
		})
	}
}

func TestAssignContinents(t *testing.T) {
	terrains := []types.Terrain{{Class: types.TerrainLand}, {Class: types.TerrainOceanic}}
	// Two islands split by a water column, with a lake on the right one.
	rows := []string{
		"..~...",
		"..~.~.",
		"..~...",
	}
	m := types.Map{Width: 6, Height: 3}
	for y, row := range rows {
		for x, ch := range row {
			terr := 0
			if ch == '~' {
				terr = 1
			}
			m.Tiles = append(m.Tiles, types.Tile{Index: y*6 + x, X: x, Y: y, Terrain: terr})
		}
	}
	assignContinents(&m, terrains)

	at := func(x, y int) int { return m.Tiles[y*6+x].Continent }
	if at(0, 0) != 1 || at(1, 2) != 1 {
		t.Errorf("left island = %d, %d, want 1", at(0, 0), at(1, 2))
	}
	if at(3, 0) != 2 || at(5, 2) != 2 {
		t.Errorf("right island = %d, %d, want 2", at(3, 0), at(5, 2))
	}
	if at(2, 0) != -1 || at(2, 2) != -1 {
		t.Errorf("channel = %d, %d, want -1", at(2, 0), at(2, 2))
	}
	if at(4, 1) != -2 {
		t.Errorf("lake = %d, want -2", at(4, 1))
	}
}
