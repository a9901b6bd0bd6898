package loader

import (
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

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

// getInt returns an int field from a Lua table, or the default if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the array part of a table field as strings.
func getStrings(tbl *lua.LTable, key string) []string {
	t := getTable(tbl, key)
	if t == nil {
		return nil
	}
	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		out = append(out, lua.LVAsString(t.RawGetInt(i)))
	}
	return out
}

// getInts returns the array part of a table field as ints.
func getInts(tbl *lua.LTable, key string) []int {
	t := getTable(tbl, key)
	if t == nil {
		return nil
	}
	var out []int
	for i := 1; i <= t.MaxN(); i++ {
		out = append(out, int(lua.LVAsNumber(t.RawGetInt(i))))
	}
	return out
}

// index maps lowercased names to slice positions.
type index map[string]int

func buildIndex(what string, defs []rawDef, offset int) (index, error) {
	idx := index{}
	for i, d := range defs {
		key := strings.ToLower(d.name)
		if _, dup := idx[key]; dup {
			return nil, fmt.Errorf("duplicate %s %q", what, d.name)
		}
		idx[key] = i + offset
	}
	return idx, nil
}

// compiler resolves the names used across definitions into indices.
type compiler struct {
	coll *collector
	defs *state.Defs

	techs, govs, buildings, classes, utypes, terrains, extras index
	specialists, nations, styles, achievements                index
}

func (c *compiler) lookup(what string, idx index, name string) (int, error) {
	i, ok := idx[strings.ToLower(name)]
	if !ok {
		return -1, fmt.Errorf("unknown %s %q", what, name)
	}
	return i, nil
}

// optional resolves name, with "" meaning none (-1).
func (c *compiler) optional(what string, idx index, name string) (int, error) {
	if name == "" {
		return -1, nil
	}
	return c.lookup(what, idx, name)
}

func (c *compiler) lookupAll(what string, idx index, names []string) ([]int, error) {
	var out []int
	for _, n := range names {
		i, err := c.lookup(what, idx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// tech resolves a tech name. "None" is the root slot, "Never" marks a
// removed tech.
func (c *compiler) tech(name string) (types.TechID, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return types.ANone, nil
	case "never":
		return types.ANever, nil
	}
	i, err := c.lookup("tech", c.techs, name)
	return types.TechID(i), err
}

func (c *compiler) techList(names []string) ([]types.TechID, error) {
	var out []types.TechID
	for _, n := range names {
		t, err := c.tech(n)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// compile turns collected definitions into the ruleset and the scenario
// world.
func compile(coll *collector) (*state.Defs, *state.World, error) {
	if coll.game == nil {
		return nil, nil, fmt.Errorf("no Game{} definition found")
	}

	c := &compiler{coll: coll, defs: &state.Defs{}}
	if err := c.indexAll(); err != nil {
		return nil, nil, err
	}
	if err := c.game(); err != nil {
		return nil, nil, fmt.Errorf("compiling Game: %w", err)
	}
	for _, step := range []func() error{
		c.compileTechs, c.compileGovernments, c.compileBuildings,
		c.compileUnitClasses, c.compileUnitTypes, c.compileTerrains,
		c.compileExtras, c.compileSpecialists, c.compileNations,
		c.compileStyles, c.compileAchievements, c.compileEffects,
		c.compileEnablers,
	} {
		if err := step(); err != nil {
			return nil, nil, err
		}
	}
	c.defs.Script = strings.Join(coll.script, "\n")

	world, err := c.compileWorld()
	if err != nil {
		return nil, nil, err
	}
	return c.defs, world, nil
}

func (c *compiler) indexAll() error {
	var err error
	// Tech 0 is the "None" advance, so user techs start at 1.
	if c.techs, err = buildIndex("tech", c.coll.techs, 1); err != nil {
		return err
	}
	if _, clash := c.techs["none"]; clash {
		return fmt.Errorf("tech name %q is reserved", "None")
	}
	c.techs["none"] = int(types.ANone)

	for _, x := range []struct {
		what string
		defs []rawDef
		dst  *index
	}{
		{"government", c.coll.governments, &c.govs},
		{"building", c.coll.buildings, &c.buildings},
		{"unit class", c.coll.unitClasses, &c.classes},
		{"unit type", c.coll.unitTypes, &c.utypes},
		{"terrain", c.coll.terrains, &c.terrains},
		{"extra", c.coll.extras, &c.extras},
		{"specialist", c.coll.specialists, &c.specialists},
		{"nation", c.coll.nations, &c.nations},
		{"style", c.coll.styles, &c.styles},
		{"achievement", c.coll.achievements, &c.achievements},
	} {
		if *x.dst, err = buildIndex(x.what, x.defs, 0); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) game() error {
	t := c.coll.game
	g := &c.defs.Game

	g.Name = getString(t, "name")
	g.TechCostStyle = getInt(t, "tech_cost_style", 0)
	g.BaseTechCost = getInt(t, "base_tech_cost", 20)
	g.TechLeakage = getInt(t, "tech_leakage", 0)
	g.TechUpkeepDivider = getInt(t, "tech_upkeep_divider", 2000)
	g.TechStealAllowHoles = getBool(t, "tech_steal_allow_holes", true)
	g.TeamPooledResearch = getBool(t, "team_pooled_research", true)
	g.HappyCost = getInt(t, "happy_cost", 2)
	g.GranaryFoodIni = getInts(t, "granary_food_ini")
	g.GranaryFoodInc = getInt(t, "granary_food_inc", 0)

	if s := getString(t, "tech_upkeep_style"); s != "" {
		style, ok := lookupName(types.TechUpkeepStyleNames, s)
		if !ok {
			return fmt.Errorf("unknown tech_upkeep_style %q", s)
		}
		g.TechUpkeepStyle = style
	}
	if s := getString(t, "free_tech_method"); s != "" {
		method, ok := lookupName(types.FreeTechMethodNames, s)
		if !ok {
			return fmt.Errorf("unknown free_tech_method %q", s)
		}
		g.FreeTechMethod = method
	}

	var err error
	if g.GlobalInitTechs, err = c.techList(getStrings(t, "init_techs")); err != nil {
		return fmt.Errorf("init_techs: %w", err)
	}
	g.Veteran = veteranLevels(getTable(t, "veteran"))

	// Server setting defaults; a settings file overrides them.
	g.Sciencebox = getInt(t, "sciencebox", 100)
	g.Freecost = getInt(t, "freecost", 0)
	g.Foodbox = getInt(t, "foodbox", 100)
	g.Diplchance = getInt(t, "diplchance", 80)
	g.Barbarians = getBool(t, "barbarians", true)
	g.Spacerace = getBool(t, "spacerace", true)
	g.Illness = getBool(t, "illness", true)
	g.MgrDistance = getInt(t, "mgr_distance", 0)
	g.Techlossforgiveness = getInt(t, "techlossforgiveness", -1)
	return nil
}

// lookupName finds the key whose name matches s, case-insensitively.
func lookupName[K comparable](names map[K]string, s string) (K, bool) {
	for k, n := range names {
		if strings.EqualFold(n, s) {
			return k, true
		}
	}
	var zero K
	return zero, false
}

func veteranLevels(t *lua.LTable) []types.VeteranLevel {
	if t == nil {
		return nil
	}
	var out []types.VeteranLevel
	for i := 1; i <= t.MaxN(); i++ {
		lt, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		out = append(out, types.VeteranLevel{
			Name:      getString(lt, "name"),
			PowerFact: getInt(lt, "power_fact", 100),
			MoveBonus: getInt(lt, "move_bonus", 0),
		})
	}
	return out
}

// reqs compiles a requirement vector field.
func (c *compiler) reqs(tbl *lua.LTable, key string) ([]types.Requirement, error) {
	t := getTable(tbl, key)
	if t == nil {
		return nil, nil
	}
	var out []types.Requirement
	for i := 1; i <= t.MaxN(); i++ {
		rt, ok := t.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("%s[%d] is not a requirement", key, i)
		}
		r, err := c.req(rt)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *compiler) req(t *lua.LTable) (types.Requirement, error) {
	kindName := getString(t, "kind")
	kind, ok := rules.ParseKind(kindName)
	if !ok {
		return types.Requirement{}, fmt.Errorf("unknown requirement kind %q", kindName)
	}
	rng := types.RangeLocal
	if s := getString(t, "range"); s != "" {
		if rng, ok = rules.ParseRange(s); !ok {
			return types.Requirement{}, fmt.Errorf("unknown range %q", s)
		}
	}
	value, err := c.universal(kind, getString(t, "name"))
	if err != nil {
		return types.Requirement{}, err
	}
	return types.Requirement{
		Source:   types.Universal{Kind: kind, Name: getString(t, "name"), Value: value},
		Range:    rng,
		Present:  getBool(t, "present", true),
		Survives: getBool(t, "survives", false),
	}, nil
}

// universal resolves the value of a requirement source: an index for
// named kinds, a threshold for numeric ones, 0 for flag kinds.
func (c *compiler) universal(kind types.ReqKind, name string) (int, error) {
	fixed := func(what string, names []string) (int, error) {
		if i := rules.IndexOf(names, name); i >= 0 {
			return i, nil
		}
		return -1, fmt.Errorf("unknown %s %q", what, name)
	}

	switch kind {
	case types.KindAdvance:
		t, err := c.tech(name)
		return int(t), err
	case types.KindGovernment:
		return c.lookup("government", c.govs, name)
	case types.KindImprovement:
		return c.lookup("building", c.buildings, name)
	case types.KindTerrain:
		return c.lookup("terrain", c.terrains, name)
	case types.KindExtra:
		return c.lookup("extra", c.extras, name)
	case types.KindNation, types.KindNationality:
		return c.lookup("nation", c.nations, name)
	case types.KindUnitType:
		return c.lookup("unit type", c.utypes, name)
	case types.KindUnitClass:
		return c.lookup("unit class", c.classes, name)
	case types.KindSpecialist:
		return c.lookup("specialist", c.specialists, name)
	case types.KindAchievement:
		return c.lookup("achievement", c.achievements, name)
	case types.KindStyle:
		return c.lookup("style", c.styles, name)
	case types.KindTerrainClass:
		return fixed("terrain class", terrainClassNames)
	case types.KindUnitState:
		return fixed("unit state", rules.UnitStateNames)
	case types.KindCityTile:
		return fixed("city tile", rules.CityTileNames)
	case types.KindDiplRel:
		return fixed("diplomatic relation", rules.DiplRelNames)
	case types.KindOutputType:
		return fixed("output type", types.OutputNames[:])
	case types.KindAILevel:
		level, ok := lookupName(types.AILevelNames, name)
		if !ok {
			return -1, fmt.Errorf("unknown AI level %q", name)
		}
		return int(level), nil
	case types.KindMinSize, types.KindMinCulture, types.KindMinYear, types.KindMaxUnitsOnTile:
		n, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil {
			return 0, fmt.Errorf("%s needs a number, got %q", kind, name)
		}
		return n, nil
	}
	// None and the flag kinds match by name.
	return 0, nil
}

var terrainClassNames = []string{"Land", "Oceanic"}

func (c *compiler) compileTechs() error {
	d := c.defs
	d.Advances = append(d.Advances, types.Advance{
		ID: types.ANone, Name: "None",
		Require: [2]types.TechID{types.ANone, types.ANone}, RootReq: types.ANone,
	})
	for i, raw := range c.coll.techs {
		a := types.Advance{
			ID:         types.TechID(i + 1),
			Name:       raw.name,
			Flags:      getStrings(raw.table, "flags"),
			PresetCost: getInt(raw.table, "cost", 0),
		}
		var err error
		for j, key := range []string{"req1", "req2"} {
			if a.Require[j], err = c.tech(getString(raw.table, key)); err != nil {
				return fmt.Errorf("compiling tech %s: %s: %w", raw.name, key, err)
			}
		}
		if a.RootReq, err = c.tech(getString(raw.table, "root_req")); err != nil {
			return fmt.Errorf("compiling tech %s: root_req: %w", raw.name, err)
		}
		d.Advances = append(d.Advances, a)
	}
	return nil
}

func (c *compiler) compileGovernments() error {
	for i, raw := range c.coll.governments {
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling government %s: %w", raw.name, err)
		}
		c.defs.Governments = append(c.defs.Governments, types.Government{ID: i, Name: raw.name, Reqs: reqs})
	}
	return nil
}

func (c *compiler) compileBuildings() error {
	for i, raw := range c.coll.buildings {
		b := types.Improvement{
			ID:        i,
			Name:      raw.name,
			Genus:     types.GenusImprovement,
			BuildCost: getInt(raw.table, "build_cost", 0),
			Upkeep:    getInt(raw.table, "upkeep", 0),
			Flags:     getStrings(raw.table, "flags"),
		}
		if s := getString(raw.table, "genus"); s != "" {
			genus, ok := lookupName(types.ImprGenusNames, s)
			if !ok {
				return fmt.Errorf("compiling building %s: unknown genus %q", raw.name, s)
			}
			b.Genus = genus
		}
		var err error
		if b.Reqs, err = c.reqs(raw.table, "reqs"); err != nil {
			return fmt.Errorf("compiling building %s: %w", raw.name, err)
		}
		if b.ObsoleteBy, err = c.reqs(raw.table, "obsolete_by"); err != nil {
			return fmt.Errorf("compiling building %s: %w", raw.name, err)
		}
		c.defs.Improvements = append(c.defs.Improvements, b)
	}
	return nil
}

func (c *compiler) compileUnitClasses() error {
	for i, raw := range c.coll.unitClasses {
		c.defs.UnitClasses = append(c.defs.UnitClasses, types.UnitClass{
			ID: i, Name: raw.name, Flags: getStrings(raw.table, "flags"),
		})
	}
	return nil
}

func (c *compiler) compileUnitTypes() error {
	for i, raw := range c.coll.unitTypes {
		t := raw.table
		u := types.UnitType{
			ID:                i,
			Name:              raw.name,
			Flags:             getStrings(t, "flags"),
			Roles:             getStrings(t, "roles"),
			Attack:            getInt(t, "attack", 0),
			Defense:           getInt(t, "defense", 0),
			Move:              getInt(t, "move", 1),
			HP:                getInt(t, "hp", 10),
			Firepower:         getInt(t, "firepower", 1),
			BuildCost:         getInt(t, "build_cost", 0),
			TransportCapacity: getInt(t, "transport_cap", 0),
			Veteran:           veteranLevels(getTable(t, "veteran")),
		}
		var err error
		if u.Class, err = c.lookup("unit class", c.classes, getString(t, "class")); err != nil {
			return fmt.Errorf("compiling unit type %s: %w", raw.name, err)
		}
		if u.ObsoletedBy, err = c.optional("unit type", c.utypes, getString(t, "obsolete_by")); err != nil {
			return fmt.Errorf("compiling unit type %s: obsolete_by: %w", raw.name, err)
		}
		if u.Cargo, err = c.lookupAll("unit class", c.classes, getStrings(t, "cargo")); err != nil {
			return fmt.Errorf("compiling unit type %s: cargo: %w", raw.name, err)
		}
		c.defs.UnitTypes = append(c.defs.UnitTypes, u)
	}
	return nil
}

func (c *compiler) compileTerrains() error {
	for i, raw := range c.coll.terrains {
		t := raw.table
		terr := types.Terrain{
			ID:     i,
			Name:   raw.name,
			Flags:  getStrings(t, "flags"),
			Alters: getStrings(t, "alters"),
		}
		class := getString(t, "class")
		if class == "" {
			class = "Land"
		}
		ci := rules.IndexOf(terrainClassNames, class)
		if ci < 0 {
			return fmt.Errorf("compiling terrain %s: unknown class %q", raw.name, class)
		}
		terr.Class = types.TerrainClass(ci)

		var err error
		if terr.NativeTo, err = c.lookupAll("unit class", c.classes, getStrings(t, "native_to")); err != nil {
			return fmt.Errorf("compiling terrain %s: native_to: %w", raw.name, err)
		}
		if terr.Animal, err = c.optional("unit type", c.utypes, getString(t, "animal")); err != nil {
			return fmt.Errorf("compiling terrain %s: animal: %w", raw.name, err)
		}
		c.defs.Terrains = append(c.defs.Terrains, terr)
	}
	return nil
}

func (c *compiler) compileExtras() error {
	for i, raw := range c.coll.extras {
		t := raw.table
		x := types.Extra{
			ID:        i,
			Name:      raw.name,
			Flags:     getStrings(t, "flags"),
			BaseFlags: getStrings(t, "base_flags"),
			RoadFlags: getStrings(t, "road_flags"),
		}
		var err error
		if x.Reqs, err = c.reqs(t, "reqs"); err != nil {
			return fmt.Errorf("compiling extra %s: %w", raw.name, err)
		}
		if x.RmReqs, err = c.reqs(t, "rmreqs"); err != nil {
			return fmt.Errorf("compiling extra %s: %w", raw.name, err)
		}
		if x.NativeTo, err = c.lookupAll("unit class", c.classes, getStrings(t, "native_to")); err != nil {
			return fmt.Errorf("compiling extra %s: native_to: %w", raw.name, err)
		}
		c.defs.Extras = append(c.defs.Extras, x)
	}
	return nil
}

func (c *compiler) compileSpecialists() error {
	for i, raw := range c.coll.specialists {
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling specialist %s: %w", raw.name, err)
		}
		c.defs.Specialists = append(c.defs.Specialists, types.Specialist{ID: i, Name: raw.name, Reqs: reqs})
	}
	return nil
}

func (c *compiler) compileNations() error {
	for i, raw := range c.coll.nations {
		t := raw.table
		n := types.Nation{
			ID:        i,
			Name:      raw.name,
			Adjective: getString(t, "adjective"),
			Barbarian: getBool(t, "barbarian", false),
		}
		if n.Adjective == "" {
			n.Adjective = raw.name
		}
		var err error
		if n.Style, err = c.optional("style", c.styles, getString(t, "style")); err != nil {
			return fmt.Errorf("compiling nation %s: %w", raw.name, err)
		}
		if n.InitTechs, err = c.techList(getStrings(t, "init_techs")); err != nil {
			return fmt.Errorf("compiling nation %s: init_techs: %w", raw.name, err)
		}
		c.defs.Nations = append(c.defs.Nations, n)
	}
	return nil
}

// compileStyles covers nation styles and the requirement-selected
// city, disaster and music entries.
func (c *compiler) compileStyles() error {
	for i, raw := range c.coll.styles {
		c.defs.Styles = append(c.defs.Styles, types.Style{ID: i, Name: raw.name})
	}
	for i, raw := range c.coll.cityStyles {
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling city style %s: %w", raw.name, err)
		}
		c.defs.CityStyles = append(c.defs.CityStyles, types.CityStyle{ID: i, Name: raw.name, Reqs: reqs})
	}
	for i, raw := range c.coll.disasters {
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling disaster %s: %w", raw.name, err)
		}
		c.defs.Disasters = append(c.defs.Disasters, types.Disaster{
			ID: i, Name: raw.name, Frequency: getInt(raw.table, "frequency", 10), Reqs: reqs,
		})
	}
	for i, raw := range c.coll.musicStyles {
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling music style %s: %w", raw.name, err)
		}
		c.defs.MusicStyles = append(c.defs.MusicStyles, types.MusicStyle{ID: i, Name: raw.name, Reqs: reqs})
	}
	return nil
}

func (c *compiler) compileAchievements() error {
	for i, raw := range c.coll.achievements {
		c.defs.Achievements = append(c.defs.Achievements, types.Achievement{
			ID:    i,
			Name:  raw.name,
			Type:  getString(raw.table, "type"),
			Value: getInt(raw.table, "value", 0),
		})
	}
	return nil
}

func (c *compiler) compileEffects() error {
	for i, raw := range c.coll.effects {
		eft, ok := rules.ParseEffectType(raw.name)
		if !ok {
			return fmt.Errorf("compiling effect %d: unknown effect type %q", i+1, raw.name)
		}
		reqs, err := c.reqs(raw.table, "reqs")
		if err != nil {
			return fmt.Errorf("compiling effect %d (%s): %w", i+1, raw.name, err)
		}
		c.defs.Effects = append(c.defs.Effects, types.Effect{
			Type: eft, Value: getInt(raw.table, "value", 0), Reqs: reqs,
		})
	}
	return nil
}

func (c *compiler) compileEnablers() error {
	for i, raw := range c.coll.enablers {
		act, ok := actions.ByName(raw.name)
		if !ok {
			return fmt.Errorf("compiling enabler %d: unknown action %q", i+1, raw.name)
		}
		en := types.ActionEnabler{Action: act}
		var err error
		if en.ActorReqs, err = c.reqs(raw.table, "actor_reqs"); err != nil {
			return fmt.Errorf("compiling enabler %d (%s): %w", i+1, raw.name, err)
		}
		if en.TargetReqs, err = c.reqs(raw.table, "target_reqs"); err != nil {
			return fmt.Errorf("compiling enabler %d (%s): %w", i+1, raw.name, err)
		}
		c.defs.Enablers = append(c.defs.Enablers, en)
	}
	return nil
}
