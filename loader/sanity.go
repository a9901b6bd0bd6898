package loader

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// Settings copies server settings into game info. config.Settings
// implements it.
type Settings interface {
	Apply(g *types.GameInfo)
}

// singletonKinds may appear at most once as a positive requirement in a
// conjunctive vector: a city, unit or player has only one of each.
var singletonKinds = map[types.ReqKind]bool{
	types.KindGovernment:   true,
	types.KindUnitType:     true,
	types.KindUnitClass:    true,
	types.KindOutputType:   true,
	types.KindSpecialist:   true,
	types.KindMinSize:      true,
	types.KindMinYear:      true,
	types.KindAILevel:      true,
	types.KindTerrainAlter: true,
	types.KindCityTile:     true,
	types.KindStyle:        true,
}

// checker collects ruleset problems without stopping at the first one.
type checker struct {
	defs *state.Defs
	game types.GameInfo
	ve   *ValidationError
}

func (c *checker) fail(list, kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Error().Str("list", list).Str("kind", kind).Msg(msg)
	c.ve.Errors = append(c.ve.Errors, list+": "+msg)
}

func (c *checker) warn(list, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warn().Str("list", list).Msg(msg)
	c.ve.Warnings = append(c.ve.Warnings, list+": "+msg)
}

// SanityCheck runs every ruleset check and returns a *ValidationError
// holding all errors, or nil when there are none.
func SanityCheck(defs *state.Defs, settings Settings) error {
	ve := Check(defs, settings)
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// Check runs every ruleset check and returns the collected errors and
// warnings. Settings are applied to a copy of the game info.
func Check(defs *state.Defs, settings Settings) *ValidationError {
	c := &checker{defs: defs, game: defs.Game, ve: &ValidationError{}}
	if settings != nil {
		settings.Apply(&c.game)
	}

	c.checkGame()
	c.checkTechs()
	c.checkInitTechs()
	c.checkUnits()
	c.checkRoles()
	c.checkTerrains()
	c.checkStyles()
	c.checkVectors()
	return c.ve
}

func (c *checker) checkGame() {
	g := c.game
	if g.Name == "" {
		c.fail("game", "", "ruleset has no name")
	}
	if g.TechCostStyle < 0 || g.TechCostStyle > 4 {
		c.fail("game", "", "tech_cost_style %d is not between 0 and 4", g.TechCostStyle)
	}
	if g.TechLeakage < 0 || g.TechLeakage > 3 {
		c.fail("game", "", "tech_leakage %d is not between 0 and 3", g.TechLeakage)
	}
	if g.TechCostStyle == 0 && g.FreeTechMethod == types.FreeTechCheapest {
		c.fail("game", "", "free_tech_method Cheapest cannot be used with tech_cost_style 0")
	}
	if g.TechUpkeepStyle != types.UpkeepNone && g.TechUpkeepDivider <= 0 {
		c.fail("game", "", "tech_upkeep_divider must be positive when tech upkeep is on")
	}
}

// checkTechs rejects techs that require themselves, directly or through
// their prerequisites.
func (c *checker) checkTechs() {
	for i := range c.defs.Advances {
		id := types.TechID(i)
		if id == types.ANone || !c.defs.ValidAdvance(id) {
			continue
		}
		a := &c.defs.Advances[i]
		if a.Require[0] == id || a.Require[1] == id {
			c.fail("techs", "", "tech %q requires itself", a.Name)
			continue
		}
		seen := map[types.TechID]bool{}
		stack := []types.TechID{a.Require[0], a.Require[1]}
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if t <= types.ANone || seen[t] {
				continue
			}
			seen[t] = true
			pre := c.defs.Advance(t)
			if pre == nil {
				continue
			}
			if pre.Require[0] == id || pre.Require[1] == id {
				c.fail("techs", "", "tech %q requires itself indirectly via %q", a.Name, pre.Name)
				break
			}
			stack = append(stack, pre.Require[0], pre.Require[1])
		}
	}
}

// checkInitTechs makes sure every nation can be given its initial techs:
// they exist and their root_req is among the nation's initial techs.
func (c *checker) checkInitTechs() {
	for _, n := range c.defs.Nations {
		has := func(t types.TechID) bool {
			for _, x := range c.game.GlobalInitTechs {
				if x == t {
					return true
				}
			}
			for _, x := range n.InitTechs {
				if x == t {
					return true
				}
			}
			return false
		}
		check := func(tech types.TechID, whose string) {
			if tech == types.ANone || !c.defs.ValidAdvance(tech) {
				c.fail("nations", "", "tech %d does not exist, but is initial tech for %s", tech, whose)
				return
			}
			a := c.defs.Advance(tech)
			if a.RootReq != types.ANone && a.RootReq != tech && !has(a.RootReq) {
				c.fail("nations", "", "tech %q is initial for %s, but %s has no root_req for it", a.Name, whose, n.Name)
			}
		}
		for _, t := range c.game.GlobalInitTechs {
			check(t, "everyone")
		}
		for _, t := range n.InitTechs {
			check(t, n.Name)
		}
	}
}

func (c *checker) checkUnits() {
	for i, u := range c.defs.UnitTypes {
		chain, next := 0, u.ObsoletedBy
		for next >= 0 && next < len(c.defs.UnitTypes) {
			chain++
			if chain > len(c.defs.UnitTypes) {
				c.fail("units", "", "obsoleted_by loop in the upgrade chain starting from %q", u.Name)
				break
			}
			next = c.defs.UnitTypes[next].ObsoletedBy
		}
		if c.defs.UnitTypeHasFlag(i, "Spy") && !c.defs.UnitTypeHasFlag(i, "Diplomat") {
			c.fail("units", "", "unit type %q has the Spy flag but not the Diplomat flag", u.Name)
		}
	}

	for _, class := range c.defs.UnitClasses {
		if state.HasFlag(class.Flags, "BuildAnywhere") {
			continue
		}
		if !c.classCanExist(class.ID) {
			c.fail("units", "", "unit class %q cannot exist anywhere", class.Name)
		}
	}
}

func (c *checker) classCanExist(class int) bool {
	for _, t := range c.defs.Terrains {
		if state.ContainsInt(t.NativeTo, class) {
			return true
		}
	}
	for _, x := range c.defs.Extras {
		if state.HasFlag(x.Flags, "NativeTile") && state.ContainsInt(x.NativeTo, class) {
			return true
		}
	}
	return false
}

// seaCapable reports whether the unit type's class is native to some
// oceanic terrain.
func (c *checker) seaCapable(utype int) bool {
	class := c.defs.UnitTypes[utype].Class
	for _, t := range c.defs.Terrains {
		if t.Class == types.TerrainOceanic && state.ContainsInt(t.NativeTo, class) {
			return true
		}
	}
	return false
}

func (c *checker) withRole(role string) []int {
	var out []int
	for i := range c.defs.UnitTypes {
		if c.defs.UnitTypeHasRole(i, role) {
			out = append(out, i)
		}
	}
	return out
}

func (c *checker) checkRoles() {
	if len(c.withRole("Settlers")) == 0 {
		c.fail("units", "", "no unit type with the Settlers flag")
	}
	for _, role := range []string{"Explorer", "FirstBuild"} {
		if len(c.withRole(role)) == 0 {
			c.fail("units", "", "no unit type with role %s", role)
		}
	}
	ferries := c.withRole("Ferryboat")
	if len(ferries) == 0 {
		c.fail("units", "", "no unit type with role Ferryboat")
	}
	for _, u := range ferries {
		if !c.seaCapable(u) {
			c.fail("units", "", "ferryboat %q needs to be able to move at sea", c.defs.UnitTypes[u].Name)
		}
	}

	if !c.game.Barbarians {
		return
	}
	for _, role := range []string{"Barbarian", "BarbarianLeader", "BarbarianBuild", "BarbarianBoat", "BarbarianSea"} {
		if len(c.withRole(role)) == 0 {
			c.fail("units", "", "no unit type with role %s", role)
		}
	}
	for _, boat := range c.withRole("BarbarianBoat") {
		bt := c.defs.UnitTypes[boat]
		if !c.seaCapable(boat) {
			c.fail("units", "", "barbarian boat %q needs to be able to move at sea", bt.Name)
		}
		if bt.TransportCapacity < 2 {
			c.fail("units", "", "barbarian boat %q has no capacity for both a leader and at least one man", bt.Name)
		}
		for _, role := range []string{"BarbarianSea", "BarbarianLeader"} {
			for _, cargo := range c.withRole(role) {
				if !state.ContainsInt(bt.Cargo, c.defs.UnitTypes[cargo].Class) {
					c.fail("units", "", "barbarian boat %q cannot transport barbarian cargo %q", bt.Name, c.defs.UnitTypes[cargo].Name)
				}
			}
		}
	}
}

func (c *checker) checkTerrains() {
	for _, t := range c.defs.Terrains {
		if t.Animal < 0 || t.Animal >= len(c.defs.UnitTypes) {
			continue
		}
		animal := c.defs.UnitTypes[t.Animal]
		if !state.ContainsInt(t.NativeTo, animal.Class) {
			c.fail("terrains", "", "%s has %s as animal to appear, but it is not native to the terrain", t.Name, animal.Name)
		}
	}
}

// checkStyles requires a basic city style, one whose only requirement is
// the nation style, for every nation style.
func (c *checker) checkStyles() {
	for _, s := range c.defs.Styles {
		found := false
		for _, cs := range c.defs.CityStyles {
			if len(cs.Reqs) == 1 && cs.Reqs[0].Source.Kind == types.KindStyle &&
				cs.Reqs[0].Source.Value == s.ID && cs.Reqs[0].Present {
				found = true
				break
			}
		}
		if !found {
			c.fail("styles", "", "there is no basic city style for nation style %s", s.Name)
		}
	}
	for _, d := range c.defs.Disasters {
		if d.Frequency <= 0 {
			c.warn("disasters", "%s has frequency %d and never happens", d.Name, d.Frequency)
		}
	}
}

// checkVectors runs the requirement checks on every vector of the
// ruleset. Obsolescence lists are disjunctive, so only individual
// requirements are checked there.
func (c *checker) checkVectors() {
	d := c.defs
	for i, e := range d.Effects {
		c.vector(fmt.Sprintf("effect %d (%s)", i+1, e.Type), e.Reqs, true)
	}
	for _, x := range d.Disasters {
		c.vector("disaster "+x.Name, x.Reqs, true)
	}
	for _, b := range d.Improvements {
		c.vector("building "+b.Name, b.Reqs, true)
		c.vector("building "+b.Name+" obsolete_by", b.ObsoleteBy, false)
	}
	for _, g := range d.Governments {
		c.vector("government "+g.Name, g.Reqs, true)
	}
	for _, s := range d.Specialists {
		c.vector("specialist "+s.Name, s.Reqs, true)
	}
	for _, x := range d.Extras {
		c.vector("extra "+x.Name, x.Reqs, true)
		c.vector("extra "+x.Name+" rmreqs", x.RmReqs, true)
	}
	for _, cs := range d.CityStyles {
		c.vector("city style "+cs.Name, cs.Reqs, true)
	}
	for i, en := range d.Enablers {
		name := fmt.Sprintf("enabler %d", i+1)
		if a, ok := actions.Get(en.Action); ok {
			name = fmt.Sprintf("enabler %d (%s)", i+1, a.RuleName)
		} else {
			c.fail(name, "", "unknown action %d", en.Action)
		}
		c.vector(name+" actor_reqs", en.ActorReqs, true)
		c.vector(name+" target_reqs", en.TargetReqs, true)
	}
	for _, m := range d.MusicStyles {
		c.vector("music style "+m.Name, m.Reqs, true)
	}
}

func (c *checker) vector(list string, reqs []types.Requirement, conjunctive bool) {
	for _, r := range reqs {
		c.individual(list, r)
	}
	if !conjunctive {
		return
	}

	counts := map[types.ReqKind]int{}
	localTerrain, localClass := false, false
	for _, r := range reqs {
		if !r.Present {
			continue
		}
		counts[r.Source.Kind]++
		if r.Range == types.RangeLocal {
			switch r.Source.Kind {
			case types.KindTerrain:
				localTerrain = true
			case types.KindTerrainClass:
				localClass = true
			}
		}
	}
	if localTerrain && localClass {
		c.fail(list, types.KindTerrain.String(), "requirement list has both local terrain and terrain class requirements")
	}
	for kind := types.ReqKind(0); kind < types.KindCount; kind++ {
		if singletonKinds[kind] && counts[kind] > 1 {
			c.fail(list, kind.String(), "requirement list has multiple %s requirements", kind)
		}
	}
	if counts[types.KindTerrainClass] > 2 {
		c.fail(list, types.KindTerrainClass.String(), "requirement list has more %s requirements than can ever be fulfilled", types.KindTerrainClass)
	}

	for i := range reqs {
		for j := i + 1; j < len(reqs); j++ {
			if rules.AreOpposites(reqs[i], reqs[j]) {
				c.fail(list, reqs[i].Source.Kind.String(), "identical %s requirement both present and absent", rules.Describe(reqs[i]))
			}
		}
	}
}

// individual checks one requirement: its range suits its kind, survives
// is only used where history is kept, and building ranges match genus.
func (c *checker) individual(list string, r types.Requirement) {
	kind := r.Source.Kind.String()
	if !rules.SupportsRange(r.Source.Kind, r.Range) {
		c.fail(list, kind, "%s requirement at %s range is not supported", kind, r.Range)
	}
	if r.Survives && !rules.SupportsSurvives(r.Source.Kind, r.Range) {
		c.fail(list, kind, "%s requirement at %s range cannot survive", kind, r.Range)
	}
	if r.Source.Kind != types.KindImprovement {
		return
	}
	b := r.Source.Value
	switch {
	case r.Range == types.RangeWorld && !c.defs.IsGreatWonder(b):
		c.fail(list, kind, "World-ranged requirement not supported for %s (only great wonders supported)", r.Source.Name)
	case r.Range > types.RangeTradeRoute && !c.defs.IsWonder(b):
		c.fail(list, kind, "%s-ranged requirement not supported for %s (only wonders supported)", r.Range, r.Source.Name)
	}
}
