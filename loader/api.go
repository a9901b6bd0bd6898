package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerScenario(L, coll)
	registerRequirementHelpers(L)
}

// named returns a curried constructor: Kind "name" { fields }.
func named(L *lua.LState, list *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			*list = append(*list, rawDef{name: name, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	})
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { name = "...", tech_cost_style = 1, ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	for name, list := range map[string]*[]rawDef{
		"Tech":        &coll.techs,
		"Government":  &coll.governments,
		"Building":    &coll.buildings,
		"UnitClass":   &coll.unitClasses,
		"UnitType":    &coll.unitTypes,
		"Terrain":     &coll.terrains,
		"Extra":       &coll.extras,
		"Specialist":  &coll.specialists,
		"Nation":      &coll.nations,
		"Style":       &coll.styles,
		"CityStyle":   &coll.cityStyles,
		"Achievement": &coll.achievements,
		"Disaster":    &coll.disasters,
		"MusicStyle":  &coll.musicStyles,
		// Effect "Make_Content" { value = 1, reqs = {...} }
		"Effect": &coll.effects,
		// Enabler "Establish Embassy" { actor_reqs = {...}, target_reqs = {...} }
		"Enabler": &coll.enablers,
	} {
		L.SetGlobal(name, named(L, list))
	}

	// Script [[ signal.connect(...) ]] appends to the ruleset script.
	L.SetGlobal("Script", L.NewFunction(func(L *lua.LState) int {
		coll.script = append(coll.script, L.CheckString(1))
		return 0
	}))
}

func registerScenario(L *lua.LState, coll *collector) {
	// Map { width = 8, height = 6, terrain = "Grassland", tiles = {...} }
	L.SetGlobal("Map", L.NewFunction(func(L *lua.LState) int {
		coll.mapDef = L.CheckTable(1)
		return 0
	}))
	L.SetGlobal("Player", named(L, &coll.players))
	L.SetGlobal("City", named(L, &coll.cities))
	L.SetGlobal("Unit", named(L, &coll.units))
}

func registerRequirementHelpers(L *lua.LState) {
	req := func(present bool) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			tbl := L.NewTable()
			tbl.RawSetString("kind", lua.LString(L.CheckString(1)))
			// Numeric kinds take their threshold as the name.
			tbl.RawSetString("name", lua.LString(lua.LVAsString(L.CheckAny(2))))
			tbl.RawSetString("range", lua.LString(L.OptString(3, "Local")))
			tbl.RawSetString("present", lua.LBool(present))
			tbl.RawSetString("survives", lua.LBool(L.OptBool(4, false)))
			L.Push(tbl)
			return 1
		})
	}

	// Req("Tech", "Alphabet", "Player" [, survives])
	L.SetGlobal("Req", req(true))
	// NotReq("Gov", "Anarchy", "Player" [, survives])
	L.SetGlobal("NotReq", req(false))
}
