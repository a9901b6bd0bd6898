// Package rules evaluates requirement vectors against an evaluation
// context, returning a definite or uncertain result.
package rules

import (
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

// Mode selects how an uncertain requirement collapses to a bool.
type Mode int

const (
	// Certain treats unknown as false: "is this true right now".
	Certain Mode = iota
	// Possible treats unknown as true: "could this ever be true".
	Possible
)

// TechLookup answers research questions for the evaluator. It is
// implemented by the research registry.
type TechLookup interface {
	PlayerKnows(pid int, tech types.TechID) bool
	EverKnown(tech types.TechID) bool
	KnownWithFlag(pid int, flag string) int
}

// Context is the set of entities a requirement is checked against. Any
// field may be nil; a requirement that needs a missing entity is unknown.
type Context struct {
	Player      *types.Player
	OtherPlayer *types.Player
	City        *types.City
	Building    *types.Improvement
	Tile        *types.Tile
	Unit        *types.Unit
	UnitType    *types.UnitType
	Output      int
	Specialist  *types.Specialist
}

// Evaluator checks requirements against the world.
type Evaluator struct {
	Defs  *state.Defs
	World *state.World
	Techs TechLookup
}

// New creates an evaluator. Techs is wired separately once the research
// registry exists.
func New(defs *state.Defs, world *state.World) *Evaluator {
	return &Evaluator{Defs: defs, World: world}
}

// PlayerContext is the context of a player-wide query.
func (e *Evaluator) PlayerContext(p *types.Player) Context {
	return Context{Player: p}
}

// CityContext is the context of a query about a city, seen by its owner.
func (e *Evaluator) CityContext(c *types.City) Context {
	return Context{
		Player: e.World.CityOwner(c),
		City:   c,
		Tile:   e.World.Tile(c.Tile),
	}
}

// UnitContext is the context of a query about a unit as an actor.
func (e *Evaluator) UnitContext(u *types.Unit) Context {
	return Context{
		Player:   e.World.UnitOwner(u),
		Tile:     e.World.Tile(u.Tile),
		Unit:     u,
		UnitType: e.unitTypeOf(u),
	}
}

// Eval returns the tri-state value of a single requirement, with the
// present flag applied. A kind checked at a range it does not support is
// definitely false.
func (e *Evaluator) Eval(ctx Context, req types.Requirement) tri.State {
	if !SupportsRange(req.Source.Kind, req.Range) {
		return tri.No
	}
	t := e.inRange(ctx, req)
	if !req.Present {
		t = tri.Not(t)
	}
	return t
}

// IsActive collapses Eval according to mode.
func (e *Evaluator) IsActive(ctx Context, req types.Requirement, mode Mode) bool {
	return tri.Collapse(e.Eval(ctx, req), mode == Possible)
}

// AreActive reports whether every requirement of a conjunctive vector is
// active. An empty vector is active.
func (e *Evaluator) AreActive(ctx Context, reqs []types.Requirement, mode Mode) bool {
	for _, r := range reqs {
		if !e.IsActive(ctx, r, mode) {
			return false
		}
	}
	return true
}

// AnyActive reports whether any requirement of a disjunctive vector is
// active. An empty vector is not.
func (e *Evaluator) AnyActive(ctx Context, reqs []types.Requirement, mode Mode) bool {
	for _, r := range reqs {
		if e.IsActive(ctx, r, mode) {
			return true
		}
	}
	return false
}

// EvalAll folds a conjunctive vector with tri.And.
func (e *Evaluator) EvalAll(ctx Context, reqs []types.Requirement) tri.State {
	out := tri.Yes
	for _, r := range reqs {
		out = tri.And(out, e.Eval(ctx, r))
		if out == tri.No {
			return tri.No
		}
	}
	return out
}

// EvalAny folds a disjunctive vector with tri.Or.
func (e *Evaluator) EvalAny(ctx Context, reqs []types.Requirement) tri.State {
	out := tri.No
	for _, r := range reqs {
		out = tri.Or(out, e.Eval(ctx, r))
		if out == tri.Yes {
			return tri.Yes
		}
	}
	return out
}

func (e *Evaluator) inRange(ctx Context, req types.Requirement) tri.State {
	v := req.Source.Value
	name := req.Source.Name

	switch req.Source.Kind {
	case types.KindNone:
		return tri.Yes

	case types.KindAdvance:
		return e.advanceInRange(ctx, req)

	case types.KindTechFlag:
		if e.Techs == nil {
			return tri.Unknown
		}
		if req.Range == types.RangeWorld {
			return e.anyPlayer(e.World.AlivePlayers(), func(p *types.Player) bool {
				return e.Techs.KnownWithFlag(p.ID, name) > 0
			})
		}
		if ctx.Player == nil {
			return tri.Unknown
		}
		return tri.From(e.Techs.KnownWithFlag(ctx.Player.ID, name) > 0)

	case types.KindGovernment:
		if ctx.Player == nil {
			return tri.Unknown
		}
		return tri.From(ctx.Player.Government == v)

	case types.KindImprovement:
		return e.improvementInRange(ctx, req)

	case types.KindTerrain:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool { return t.Terrain == v })

	case types.KindTerrainClass:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			terr := e.terrain(t)
			return terr != nil && terr.Class == types.TerrainClass(v)
		})

	case types.KindTerrainFlag:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			terr := e.terrain(t)
			return terr != nil && state.HasFlag(terr.Flags, name)
		})

	case types.KindTerrainAlter:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			terr := e.terrain(t)
			return terr != nil && state.HasFlag(terr.Alters, name)
		})

	case types.KindExtra:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool { return state.ContainsInt(t.Extras, v) })

	case types.KindBaseFlag:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			return e.tileExtraHas(t, func(x *types.Extra) bool { return state.HasFlag(x.BaseFlags, name) })
		})

	case types.KindRoadFlag:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			return e.tileExtraHas(t, func(x *types.Extra) bool { return state.HasFlag(x.RoadFlags, name) })
		})

	case types.KindCityTile:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			switch IndexOf(CityTileNames, name) {
			case 0:
				return e.World.TileCity(t.Index) != nil
			case 1:
				return t.Owner >= 0
			}
			return false
		})

	case types.KindMaxUnitsOnTile:
		return e.anyTile(ctx, req.Range, func(t *types.Tile) bool {
			return len(e.World.UnitsOnTile(t.Index)) <= v
		})

	case types.KindNation:
		if req.Range == types.RangeWorld {
			players := e.World.AlivePlayers()
			if req.Survives {
				players = e.World.Players
			}
			return e.anyPlayer(players, func(p *types.Player) bool { return p != nil && p.Nation == v })
		}
		if ctx.Player == nil {
			return tri.Unknown
		}
		return e.anyPlayer(e.group(ctx.Player, req.Range), func(p *types.Player) bool { return p.Nation == v })

	case types.KindNationality:
		return e.nationalityInRange(ctx, req)

	case types.KindUnitType:
		ut := e.contextUnitType(ctx)
		if ut == nil {
			return tri.Unknown
		}
		return tri.From(ut.ID == v)

	case types.KindUnitFlag:
		ut := e.contextUnitType(ctx)
		if ut == nil {
			return tri.Unknown
		}
		return tri.From(state.HasFlag(ut.Flags, name))

	case types.KindUnitClass:
		ut := e.contextUnitType(ctx)
		if ut == nil {
			return tri.Unknown
		}
		return tri.From(ut.Class == v)

	case types.KindUnitClassFlag:
		ut := e.contextUnitType(ctx)
		if ut == nil {
			return tri.Unknown
		}
		if ut.Class < 0 || ut.Class >= len(e.Defs.UnitClasses) {
			return tri.No
		}
		return tri.From(state.HasFlag(e.Defs.UnitClasses[ut.Class].Flags, name))

	case types.KindUnitState:
		if ctx.Unit == nil {
			return tri.Unknown
		}
		return tri.From(e.unitState(ctx.Unit, name))

	case types.KindOutputType:
		if ctx.Output == types.ONone {
			return tri.Unknown
		}
		return tri.From(ctx.Output == v)

	case types.KindSpecialist:
		if ctx.Specialist == nil {
			return tri.Unknown
		}
		return tri.From(ctx.Specialist.ID == v)

	case types.KindMinSize:
		if ctx.City == nil {
			return tri.Unknown
		}
		return e.anyCity(e.routeCities(ctx.City, req.Range), func(c *types.City) bool { return c.Size >= v })

	case types.KindMinCulture:
		switch req.Range {
		case types.RangeCity, types.RangeTradeRoute:
			if ctx.City == nil {
				return tri.Unknown
			}
			return e.anyCity(e.routeCities(ctx.City, req.Range), func(c *types.City) bool { return c.Culture >= v })
		case types.RangeWorld:
			return e.anyPlayer(e.World.AlivePlayers(), func(p *types.Player) bool { return p.Culture >= v })
		}
		if ctx.Player == nil {
			return tri.Unknown
		}
		return e.anyPlayer(e.group(ctx.Player, req.Range), func(p *types.Player) bool { return p.Culture >= v })

	case types.KindAILevel:
		if ctx.Player == nil {
			return tri.Unknown
		}
		return tri.From(ctx.Player.AI && int(ctx.Player.AILevel) == v)

	case types.KindMinYear:
		return tri.From(e.World.Year >= v)

	case types.KindAchievement:
		achieved := func(p *types.Player) bool { return e.World.Achieved[v][p.ID] }
		if req.Range == types.RangeWorld {
			return e.anyPlayer(e.World.Players, func(p *types.Player) bool { return p != nil && achieved(p) })
		}
		if ctx.Player == nil {
			return tri.Unknown
		}
		return e.anyPlayer(e.group(ctx.Player, req.Range), achieved)

	case types.KindDiplRel:
		return e.diplRelInRange(ctx, req)

	case types.KindStyle:
		if ctx.Player == nil {
			return tri.Unknown
		}
		if ctx.Player.Nation < 0 || ctx.Player.Nation >= len(e.Defs.Nations) {
			return tri.No
		}
		return tri.From(e.Defs.Nations[ctx.Player.Nation].Style == v)
	}

	return tri.No
}

func (e *Evaluator) advanceInRange(ctx Context, req types.Requirement) tri.State {
	if e.Techs == nil {
		return tri.Unknown
	}
	tech := types.TechID(req.Source.Value)
	knows := func(p *types.Player) bool { return e.Techs.PlayerKnows(p.ID, tech) }

	if req.Range == types.RangeWorld {
		if req.Survives {
			return tri.From(e.Techs.EverKnown(tech))
		}
		return e.anyPlayer(e.World.AlivePlayers(), knows)
	}
	if ctx.Player == nil {
		return tri.Unknown
	}
	return e.anyPlayer(e.group(ctx.Player, req.Range), knows)
}

func (e *Evaluator) improvementInRange(ctx Context, req types.Requirement) tri.State {
	impr := req.Source.Value
	has := func(c *types.City) bool { return c.Buildings[impr] }

	switch req.Range {
	case types.RangeLocal:
		if ctx.Building == nil {
			return tri.Unknown
		}
		return tri.From(ctx.Building.ID == impr)
	case types.RangeCity, types.RangeTradeRoute:
		if ctx.City == nil {
			return tri.Unknown
		}
		return e.anyCity(e.routeCities(ctx.City, req.Range), has)
	case types.RangeContinent:
		tile := ctx.Tile
		if tile == nil && ctx.City != nil {
			tile = e.World.Tile(ctx.City.Tile)
		}
		if ctx.Player == nil || tile == nil {
			return tri.Unknown
		}
		cont := tile.Continent
		return e.anyCity(e.World.PlayerCities(ctx.Player.ID), func(c *types.City) bool {
			return e.World.Continent(c.Tile) == cont && has(c)
		})
	case types.RangePlayer, types.RangeTeam, types.RangeAlliance:
		if ctx.Player == nil {
			return tri.Unknown
		}
		for _, p := range e.group(ctx.Player, req.Range) {
			if e.anyCity(e.World.PlayerCities(p.ID), has) == tri.Yes {
				return tri.Yes
			}
		}
		return tri.No
	case types.RangeWorld:
		if req.Survives && e.World.WondersEver[impr] {
			return tri.Yes
		}
		return e.anyCity(e.World.AllCities(), has)
	}
	return tri.No
}

func (e *Evaluator) nationalityInRange(ctx Context, req types.Requirement) tri.State {
	nation := req.Source.Value
	holds := func(c *types.City) bool {
		for pid, n := range c.Citizens {
			if p := e.World.Player(pid); p != nil && n > 0 && p.Nation == nation {
				return true
			}
		}
		return false
	}
	if req.Range == types.RangeCity {
		if ctx.City == nil {
			return tri.Unknown
		}
		return tri.From(holds(ctx.City))
	}
	if ctx.Player == nil {
		return tri.Unknown
	}
	return e.anyCity(e.World.PlayerCities(ctx.Player.ID), holds)
}

func (e *Evaluator) diplRelInRange(ctx Context, req types.Requirement) tri.State {
	rel := req.Source.Value
	if req.Range == types.RangeLocal {
		if ctx.Player == nil || ctx.OtherPlayer == nil {
			return tri.Unknown
		}
		return tri.From(e.diplRelHolds(ctx.Player, ctx.OtherPlayer, rel))
	}

	var subjects []*types.Player
	if req.Range == types.RangeWorld {
		subjects = e.World.AlivePlayers()
	} else {
		if ctx.Player == nil {
			return tri.Unknown
		}
		subjects = e.group(ctx.Player, req.Range)
	}
	for _, a := range subjects {
		for _, b := range e.World.AlivePlayers() {
			if a.ID != b.ID && e.diplRelHolds(a, b, rel) {
				return tri.Yes
			}
		}
	}
	return tri.No
}

func (e *Evaluator) diplRelHolds(a, b *types.Player, rel int) bool {
	switch rel {
	case DiplRelHasRealEmbassy:
		return state.HasRealEmbassy(a, b)
	case DiplRelHostsRealEmbassy:
		return state.HasRealEmbassy(b, a)
	case DiplRelHasEmbassy:
		return e.World.HasEmbassy(a, b)
	case DiplRelHostsEmbassy:
		return e.World.HasEmbassy(b, a)
	case DiplRelForeign:
		return a.ID != b.ID
	}
	return state.Diplstate(a, b) == types.DiplState(rel)
}

func (e *Evaluator) unitState(u *types.Unit, name string) bool {
	switch IndexOf(UnitStateNames, name) {
	case 0:
		return u.Transporter >= 0
	case 1:
		return e.CanExistAt(u.Type, u.Tile)
	case 2:
		return u.Transporter >= 0 && !e.CanExistAt(u.Type, u.Tile)
	case 3:
		t := e.World.Tile(u.Tile)
		return t != nil && t.Owner == u.Owner
	case 4:
		return u.HomeCity > 0
	}
	return false
}

// CanExistAt reports whether a unit type may stand on a tile without a
// transport: the terrain, or one of the tile's extras, is native to its
// class.
func (e *Evaluator) CanExistAt(utype, tile int) bool {
	if utype < 0 || utype >= len(e.Defs.UnitTypes) {
		return false
	}
	t := e.World.Tile(tile)
	if t == nil {
		return false
	}
	class := e.Defs.UnitTypes[utype].Class
	if terr := e.terrain(t); terr != nil && state.ContainsInt(terr.NativeTo, class) {
		return true
	}
	return e.tileExtraHas(t, func(x *types.Extra) bool { return state.ContainsInt(x.NativeTo, class) })
}

// group returns the players p shares a range with, p included.
func (e *Evaluator) group(p *types.Player, rng types.ReqRange) []*types.Player {
	switch rng {
	case types.RangeTeam:
		var out []*types.Player
		for _, o := range e.World.AlivePlayers() {
			if state.SameTeam(p, o) {
				out = append(out, o)
			}
		}
		if len(out) == 0 {
			out = append(out, p)
		}
		return out
	case types.RangeAlliance:
		out := []*types.Player{p}
		for _, o := range e.World.AlivePlayers() {
			if o.ID != p.ID && state.Allied(p, o) {
				out = append(out, o)
			}
		}
		return out
	}
	return []*types.Player{p}
}

func (e *Evaluator) anyPlayer(players []*types.Player, pred func(*types.Player) bool) tri.State {
	for _, p := range players {
		if pred(p) {
			return tri.Yes
		}
	}
	return tri.No
}

func (e *Evaluator) anyCity(cities []*types.City, pred func(*types.City) bool) tri.State {
	for _, c := range cities {
		if pred(c) {
			return tri.Yes
		}
	}
	return tri.No
}

// routeCities is the city itself, plus its trade partners at trade
// route range.
func (e *Evaluator) routeCities(c *types.City, rng types.ReqRange) []*types.City {
	out := []*types.City{c}
	if rng != types.RangeTradeRoute {
		return out
	}
	for _, id := range c.TradeRoutes {
		if partner, ok := e.World.Cities[id]; ok {
			out = append(out, partner)
		}
	}
	return out
}

func (e *Evaluator) anyTile(ctx Context, rng types.ReqRange, pred func(*types.Tile) bool) tri.State {
	tiles, ok := e.rangeTiles(ctx, rng)
	if !ok {
		return tri.Unknown
	}
	for _, idx := range tiles {
		if t := e.World.Tile(idx); t != nil && pred(t) {
			return tri.Yes
		}
	}
	return tri.No
}

// rangeTiles lists the tiles covered by a local, adjacent or city range.
func (e *Evaluator) rangeTiles(ctx Context, rng types.ReqRange) ([]int, bool) {
	switch rng {
	case types.RangeLocal:
		if ctx.Tile == nil {
			return nil, false
		}
		return []int{ctx.Tile.Index}, true
	case types.RangeAdjacent:
		if ctx.Tile == nil {
			return nil, false
		}
		return e.World.AdjacentTiles(ctx.Tile.Index), true
	case types.RangeCity:
		if ctx.City == nil {
			return nil, false
		}
		return e.World.TilesWithin(ctx.City.Tile, state.DefaultCityRadiusSq), true
	}
	return nil, false
}

func (e *Evaluator) terrain(t *types.Tile) *types.Terrain {
	if t.Terrain < 0 || t.Terrain >= len(e.Defs.Terrains) {
		return nil
	}
	return &e.Defs.Terrains[t.Terrain]
}

func (e *Evaluator) tileExtraHas(t *types.Tile, pred func(*types.Extra) bool) bool {
	for _, id := range t.Extras {
		if id >= 0 && id < len(e.Defs.Extras) && pred(&e.Defs.Extras[id]) {
			return true
		}
	}
	return false
}

func (e *Evaluator) contextUnitType(ctx Context) *types.UnitType {
	if ctx.UnitType != nil {
		return ctx.UnitType
	}
	return e.unitTypeOf(ctx.Unit)
}

func (e *Evaluator) unitTypeOf(u *types.Unit) *types.UnitType {
	if u == nil || u.Type < 0 || u.Type >= len(e.Defs.UnitTypes) {
		return nil
	}
	return &e.Defs.UnitTypes[u.Type]
}
