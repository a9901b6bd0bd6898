// Package statetest builds a small ruleset and world for tests of the
// rule engines.
package statetest

import (
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// Tech indices in the fixture ruleset.
const (
	Alphabet types.TechID = iota + 1
	BronzeWorking
	Writing
	Currency
	Trade
	Philosophy
)

// Improvement indices.
const (
	Palace = iota
	Temple
	CityWalls
	Pyramids
	GreatLibrary
	Courthouse
)

// Unit type indices.
const (
	Settlers = iota
	Warriors
	Explorer
	Diplomat
	Spy
	Trireme
)

// Terrain indices.
const (
	Grassland = iota
	Ocean
	Hills
)

// Extra indices.
const (
	Fortress = iota
	Road
)

// Government indices.
const (
	Anarchy = iota
	Despotism
	Monarchy
)

// Player, city and unit IDs in the fixture world.
const (
	Caesar   = 0
	Pericles = 1

	Rome   = 1
	Athens = 2

	RomanDiplomat  = 1
	GreekWarriors  = 2
	RomanCityTile  = 0
	DiplomatTile   = 2
	AthensCityTile = 3
)

// Req builds a present requirement.
func Req(kind types.ReqKind, name string, value int, rng types.ReqRange) types.Requirement {
	return types.Requirement{
		Source:  types.Universal{Kind: kind, Name: name, Value: value},
		Range:   rng,
		Present: true,
	}
}

// NotReq builds an absent requirement.
func NotReq(kind types.ReqKind, name string, value int, rng types.ReqRange) types.Requirement {
	r := Req(kind, name, value, rng)
	r.Present = false
	return r
}

// Defs returns the fixture ruleset. Tech_Cost_Factor 1 is always active.
func Defs() *state.Defs {
	adv := func(id types.TechID, name string, a, b types.TechID) types.Advance {
		return types.Advance{ID: id, Name: name, Require: [2]types.TechID{a, b}, RootReq: types.ANone}
	}
	veteran := []types.VeteranLevel{
		{Name: "green", PowerFact: 100},
		{Name: "veteran", PowerFact: 150},
		{Name: "hardened", PowerFact: 175},
		{Name: "elite", PowerFact: 200},
	}
	return &state.Defs{
		Game: types.GameInfo{
			Name:              "fixture",
			TechCostStyle:     0,
			BaseTechCost:      50,
			TechUpkeepDivider: 1,
			FreeTechMethod:    types.FreeTechGoal,
			HappyCost:         2,
			GranaryFoodIni:    []int{20},
			GranaryFoodInc:    10,
			Veteran:           veteran,
			Sciencebox:        100,
			Foodbox:           100,
			Diplchance:        80,
			MgrDistance:       3,

			// Off, as in a ruleset that does not set it.
			Techlossforgiveness: -1,
		},
		Advances: []types.Advance{
			adv(types.ANone, "None", types.ANone, types.ANone),
			adv(Alphabet, "Alphabet", types.ANone, types.ANone),
			adv(BronzeWorking, "Bronze Working", types.ANone, types.ANone),
			adv(Writing, "Writing", Alphabet, types.ANone),
			adv(Currency, "Currency", BronzeWorking, types.ANone),
			adv(Trade, "Trade", Writing, Currency),
			adv(Philosophy, "Philosophy", Trade, Writing),
		},
		Governments: []types.Government{
			{ID: Anarchy, Name: "Anarchy"},
			{ID: Despotism, Name: "Despotism"},
			{ID: Monarchy, Name: "Monarchy"},
		},
		Improvements: []types.Improvement{
			{ID: Palace, Name: "Palace", Genus: types.GenusSmallWonder, BuildCost: 70, Flags: []string{"SaveSmallWonder"}},
			{ID: Temple, Name: "Temple", Genus: types.GenusImprovement, BuildCost: 30, Upkeep: 1},
			{ID: CityWalls, Name: "City Walls", Genus: types.GenusImprovement, BuildCost: 60, Upkeep: 1},
			{ID: Pyramids, Name: "Pyramids", Genus: types.GenusGreatWonder, BuildCost: 180},
			{ID: GreatLibrary, Name: "Great Library", Genus: types.GenusGreatWonder, BuildCost: 220},
			{ID: Courthouse, Name: "Courthouse", Genus: types.GenusImprovement, BuildCost: 60, Upkeep: 1},
		},
		UnitClasses: []types.UnitClass{
			{ID: 0, Name: "Land", Flags: []string{"CanOccupyCity"}},
			{ID: 1, Name: "Sea", Flags: []string{"AttackNonNative"}},
		},
		UnitTypes: []types.UnitType{
			{ID: Settlers, Name: "Settlers", Class: 0, Flags: []string{"Settlers", "Cities"}, Roles: []string{"Cities"}, Move: 1, HP: 20, Firepower: 1, ObsoletedBy: -1},
			{ID: Warriors, Name: "Warriors", Class: 0, Roles: []string{"FirstBuild", "DefendOk"}, Attack: 1, Defense: 1, Move: 1, HP: 10, Firepower: 1, ObsoletedBy: -1},
			{ID: Explorer, Name: "Explorer", Class: 0, Flags: []string{"IgTer"}, Roles: []string{"Explorer"}, Move: 3, HP: 10, Firepower: 1, ObsoletedBy: -1},
			{ID: Diplomat, Name: "Diplomat", Class: 0, Flags: []string{"Diplomat"}, Move: 2, HP: 10, Firepower: 1, ObsoletedBy: Spy},
			{ID: Spy, Name: "Spy", Class: 0, Flags: []string{"Diplomat", "Spy"}, Move: 3, HP: 10, Firepower: 1, ObsoletedBy: -1},
			{ID: Trireme, Name: "Trireme", Class: 1, Roles: []string{"Ferryboat"}, Attack: 1, Defense: 1, Move: 3, HP: 10, Firepower: 1, ObsoletedBy: -1, TransportCapacity: 2, Cargo: []int{0}},
		},
		Terrains: []types.Terrain{
			{ID: Grassland, Name: "Grassland", Class: types.TerrainLand, Alters: []string{"CanIrrigate", "CanRoad"}, NativeTo: []int{0}, Animal: -1},
			{ID: Ocean, Name: "Ocean", Class: types.TerrainOceanic, Flags: []string{"NoCities"}, NativeTo: []int{1}, Animal: -1},
			{ID: Hills, Name: "Hills", Class: types.TerrainLand, Alters: []string{"CanMine", "CanRoad"}, NativeTo: []int{0}, Animal: -1},
		},
		Extras: []types.Extra{
			{ID: Fortress, Name: "Fortress", BaseFlags: []string{"DiplomatDefense"}, NativeTo: []int{0}},
			{ID: Road, Name: "Road", RoadFlags: []string{"ConnectLand"}},
		},
		Specialists: []types.Specialist{
			{ID: 0, Name: "Entertainers"},
			{ID: 1, Name: "Scientists"},
		},
		Nations: []types.Nation{
			{ID: 0, Name: "Romans", Adjective: "Roman", Style: 0},
			{ID: 1, Name: "Greeks", Adjective: "Greek", Style: 0},
			{ID: 2, Name: "Barbarians", Adjective: "Barbarian", Style: 0, Barbarian: true},
		},
		Styles: []types.Style{{ID: 0, Name: "European"}},
		CityStyles: []types.CityStyle{
			{ID: 0, Name: "European", Reqs: []types.Requirement{Req(types.KindStyle, "European", 0, types.RangePlayer)}},
		},
		Effects: []types.Effect{
			{Type: types.EffectTechCostFactor, Value: 1},
		},
	}
}

// World returns the fixture world: a 6x4 map of grassland with an ocean
// column at x=5, Rome (Caesar, size 5, capital) and Athens (Pericles,
// size 3), a Roman diplomat next to Athens and Greek warriors inside it.
func World() *state.World {
	m := state.NewMap(6, 4, Grassland)
	for i := range m.Tiles {
		m.Tiles[i].Continent = 1
		if m.Tiles[i].X == 5 {
			m.Tiles[i].Terrain = Ocean
			m.Tiles[i].Continent = -1
		}
	}
	w := state.NewWorld(m)
	w.Turn = 1
	w.Year = -4000

	known := map[int]bool{}
	for i := range m.Tiles {
		known[i] = true
	}
	w.Players = []*types.Player{
		{ID: Caesar, Name: "Caesar", Nation: 0, Government: Despotism, Team: 0, Alive: true, ScienceCost: 100,
			Embassies: map[int]bool{}, Diplstates: map[int]types.DiplState{Pericles: types.DiplWar}, Known: known, Love: map[int]int{}},
		{ID: Pericles, Name: "Pericles", Nation: 1, Government: Despotism, Team: 1, Alive: true, ScienceCost: 100,
			Embassies: map[int]bool{}, Diplstates: map[int]types.DiplState{Caesar: types.DiplWar}, Known: known, Love: map[int]int{}},
	}
	w.Cities[Rome] = &types.City{
		ID: Rome, Name: "Rome", Owner: Caesar, Tile: RomanCityTile, Size: 5, Capital: true,
		Buildings:   map[int]bool{Palace: true},
		Specialists: map[int]int{},
		Citizens:    map[int]int{Caesar: 5},
	}
	w.Cities[Athens] = &types.City{
		ID: Athens, Name: "Athens", Owner: Pericles, Tile: AthensCityTile, Size: 3, Capital: true,
		Buildings:   map[int]bool{Palace: true},
		Specialists: map[int]int{},
		Citizens:    map[int]int{Pericles: 3},
	}
	w.Units[RomanDiplomat] = &types.Unit{ID: RomanDiplomat, Type: Diplomat, Owner: Caesar, Tile: DiplomatTile, HP: 10, HomeCity: Rome, Transporter: -1}
	w.Units[GreekWarriors] = &types.Unit{ID: GreekWarriors, Type: Warriors, Owner: Pericles, Tile: AthensCityTile, HP: 10, HomeCity: Athens, Transporter: -1}
	w.Tile(RomanCityTile).Owner = Caesar
	w.Tile(AthensCityTile).Owner = Pericles
	return w
}
