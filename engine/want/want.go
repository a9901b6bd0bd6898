// Package want turns ruleset effects into AI desirability scores. Each
// effect type has its own hand-tuned heuristic. The constants are the
// AI's balance and are kept exactly.
package want

import (
	"github.com/nathoo/civcore/engine/effects"
	"github.com/nathoo/civcore/engine/research"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// MORT is the number of turns over which future income is amortized.
const MORT = 24

// TraitDefault is the neutral value of an AI personality trait.
const TraitDefault = 50

// Threats is what the AI fears.
type Threats struct {
	Nuclear bool
	// Ocean is keyed by the negated continent number of an ocean.
	Ocean     map[int]bool
	Continent map[int]bool
	Invasions bool
	IgWall    bool
}

// GovGoal is the government the AI is working toward.
type GovGoal struct {
	Gov int
	Val int
	Req types.TechID
}

// AdvData is the advisor's view of the player's situation.
type AdvData struct {
	UnitsByClass []int
	Airliftable  int
	Missiles     int
	Upgradeable  int

	Threats Threats

	LandExplored bool
	SeaExplored  bool

	Goal GovGoal

	ProductionLeader int
	SpaceraceLeader  bool

	FoodPriority int
	WantsScience bool
	Defensive    bool
	Trader       int
}

// Request is the situation an effect is scored in.
type Request struct {
	Player  *types.Player
	City    *types.City
	Capital bool
	Turns   int
	// Cities is the number of cities in range of the effect.
	Cities int
	// Players is the number of players in the game.
	Players int
	Adv     *AdvData
}

type handler func(s *Scorer, req Request, adv *AdvData, eff types.Effect, amount, v int) int

// Scorer scores effects against the live game.
type Scorer struct {
	defs     *state.Defs
	world    *state.World
	eval     *rules.Evaluator
	effects  *effects.Cache
	research *research.Registry
}

// New creates a scorer.
func New(cache *effects.Cache, reg *research.Registry) *Scorer {
	eval := cache.Evaluator()
	return &Scorer{
		defs:     eval.Defs,
		world:    eval.World,
		eval:     eval,
		effects:  cache,
		research: reg,
	}
}

// Value returns v adjusted by how desirable eff is for req.City. An effect
// with a zero value, or of a type the AI does not score, leaves v as is.
func (s *Scorer) Value(req Request, eff types.Effect, v int) int {
	if eff.Value == 0 || req.City == nil || req.Player == nil {
		return v
	}
	h, ok := handlers[eff.Type]
	if !ok {
		return v
	}
	adv := req.Adv
	if adv == nil {
		adv = &AdvData{}
	}
	return h(s, req, adv, eff, eff.Value, v)
}

// ActiveSum scores every effect that is active for the request's city.
func (s *Scorer) ActiveSum(req Request, v int) int {
	if req.City == nil {
		return v
	}
	ctx := s.eval.CityContext(req.City)
	s.effects.Iterate(func(e types.Effect) bool {
		if s.eval.AreActive(ctx, e.Reqs, rules.Certain) {
			v = s.Value(req, e, v)
		}
		return true
	})
	return v
}

// ImprovementWant scores building impr in req.City: every effect that
// needs the building, and whose other requirements hold, is scored with
// the number of the player's cities the building's range reaches.
func (s *Scorer) ImprovementWant(req Request, impr int) int {
	if req.City == nil || req.Player == nil {
		return 0
	}
	ctx := s.eval.CityContext(req.City)
	v := 0
	for _, e := range s.effects.ImprovementEffects(impr) {
		rng := types.RangeCity
		var others []types.Requirement
		for _, r := range e.Reqs {
			if r.Source.Kind == types.KindImprovement && r.Source.Value == impr && r.Present {
				rng = r.Range
				continue
			}
			others = append(others, r)
		}
		if !s.eval.AreActive(ctx, others, rules.Certain) {
			continue
		}
		r := req
		r.Cities = s.citiesInRange(req.Player, req.City, rng)
		v = s.Value(r, e, v)
	}
	return v
}

func (s *Scorer) citiesInRange(p *types.Player, c *types.City, rng types.ReqRange) int {
	switch rng {
	case types.RangeLocal, types.RangeCity:
		return 1
	case types.RangeTradeRoute:
		return 1 + len(c.TradeRoutes)
	case types.RangeContinent:
		n := 0
		cont := s.world.Continent(c.Tile)
		for _, o := range s.world.PlayerCities(p.ID) {
			if s.world.Continent(o.Tile) == cont {
				n++
			}
		}
		return n
	}
	return len(s.world.PlayerCities(p.ID))
}

// entertainers counts the specialists who produce enough luxury to make
// a citizen content.
func (s *Scorer) entertainers(c *types.City) int {
	n := 0
	for i := range s.defs.Specialists {
		if s.effects.SpecialistOutput(c, &s.defs.Specialists[i], types.OLuxury) >= s.defs.Game.HappyCost {
			n += c.Specialists[i]
		}
	}
	return n
}

// ContentValue is how much making amount citizens content is worth in a
// city, given the happiness stage the effect applies at.
func (s *Scorer) ContentValue(p *types.Player, c *types.City, amount, numCities, step int) int {
	v := 0
	if s.effects.CityBonus(c, types.EffectNoUnhappy) <= 0 {
		maxConverted := c.Feel[types.FeelingFinal][types.CitizenUnhappy]
		for i := step; i < types.FeelingFinal; i++ {
			maxConverted = min(maxConverted, c.Feel[i][types.CitizenUnhappy])
		}
		v = min(amount, maxConverted+s.entertainers(c)) * 35
	}

	if numCities > 1 {
		factor := 2
		cities := len(s.world.PlayerCities(p.ID))
		base := s.effects.PlayerBonus(p, types.EffectEmpireSizeBase)
		if cities > base {
			if base > 0 {
				factor += cities / max(s.effects.PlayerBonus(p, types.EffectEmpireSizeStep), 1)
			}
			factor += 2
		}
		v += factor * numCities * amount
	}
	return v
}

// classAffected reports whether an effect can apply to units of a class,
// judging only its unit class requirements.
func (s *Scorer) classAffected(class int, eff types.Effect) bool {
	for _, r := range eff.Reqs {
		switch r.Source.Kind {
		case types.KindUnitClass:
			if (r.Source.Value != class) == r.Present {
				return false
			}
		case types.KindUnitClassFlag:
			has := state.HasFlag(s.defs.UnitClasses[class].Flags, r.Source.Name)
			if has != r.Present {
				return false
			}
		}
	}
	return true
}

func (s *Scorer) affectedUnits(eff types.Effect, adv *AdvData) int {
	n := 0
	for class := range s.defs.UnitClasses {
		if class < len(adv.UnitsByClass) && s.classAffected(class, eff) {
			n += adv.UnitsByClass[class]
		}
	}
	return n
}

// classMoves reports whether a unit class is native to some land and
// some oceanic terrain.
func (s *Scorer) classMoves(class int) (land, sea bool) {
	for _, t := range s.defs.Terrains {
		if !state.ContainsInt(t.NativeTo, class) {
			continue
		}
		if t.Class == types.TerrainOceanic {
			sea = true
		} else {
			land = true
		}
	}
	return land, sea
}

func (s *Scorer) isOcean(tile int) bool {
	t := s.world.Tile(tile)
	if t == nil || t.Terrain < 0 || t.Terrain >= len(s.defs.Terrains) {
		return false
	}
	return s.defs.Terrains[t.Terrain].Class == types.TerrainOceanic
}

func (s *Scorer) oceanNear(tile int) bool {
	for _, n := range s.world.AdjacentTiles(tile) {
		if n != tile && s.isOcean(n) {
			return true
		}
	}
	return false
}

// canGrowTo reports whether the city's size limits allow size.
func (s *Scorer) canGrowTo(c *types.City, size int) bool {
	if s.effects.CityBonus(c, types.EffectSizeUnlimit) > 0 {
		return true
	}
	return size <= s.effects.CityBonus(c, types.EffectSizeAdj)
}

// canChangeTo reports whether the player meets a government's requirements.
func (s *Scorer) canChangeTo(p *types.Player, gov int) bool {
	if gov < 0 || gov >= len(s.defs.Governments) {
		return false
	}
	return s.eval.AreActive(s.eval.PlayerContext(p), s.defs.Governments[gov].Reqs, rules.Certain)
}

// tradeBetween estimates the trade a route between two cities yields.
// Foreign routes pay double.
func (s *Scorer) tradeBetween(a, b *types.City) int {
	bonus := (s.world.RealDist(a.Tile, b.Tile) + 10) *
		(a.Surplus[types.OTrade] + b.Surplus[types.OTrade]) / 24
	if a.Owner != b.Owner {
		bonus *= 2
	}
	return bonus
}

func trait(adv *AdvData) int {
	if adv.Trader <= 0 {
		return TraitDefault
	}
	return adv.Trader
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
