// Package effects implements the effects cache: requirement-gated numeric
// modifiers indexed by effect type and summed against a context.
package effects

import (
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

// Cache holds every ruleset effect, indexed by type at construction.
type Cache struct {
	eval   *rules.Evaluator
	byType [types.EffectCount][]types.Effect
}

// New indexes effs. Effects with an out-of-range type are dropped.
func New(eval *rules.Evaluator, effs []types.Effect) *Cache {
	c := &Cache{eval: eval}
	for _, e := range effs {
		if e.Type < 0 || e.Type >= types.EffectCount {
			continue
		}
		c.byType[e.Type] = append(c.byType[e.Type], e)
	}
	return c
}

// Evaluator returns the evaluator the cache checks requirements with.
func (c *Cache) Evaluator() *rules.Evaluator {
	return c.eval
}

// Of returns the effects registered for a type, in load order.
func (c *Cache) Of(eft types.EffectType) []types.Effect {
	if eft < 0 || eft >= types.EffectCount {
		return nil
	}
	return c.byType[eft]
}

// Iterate calls fn for every effect. Iteration stops when fn returns false.
func (c *Cache) Iterate(fn func(types.Effect) bool) {
	for _, list := range c.byType {
		for _, e := range list {
			if !fn(e) {
				return
			}
		}
	}
}

// Value sums the values of all effects of eft whose requirements are
// certainly active in ctx. Uncertain effects are excluded.
func (c *Cache) Value(eft types.EffectType, ctx rules.Context) int {
	total := 0
	for _, e := range c.Of(eft) {
		if c.eval.AreActive(ctx, e.Reqs, rules.Certain) {
			total += e.Value
		}
	}
	return total
}

// Known reports whether viewer can tell the value of eft in ctx: no
// effect of that type has a requirement vector viewer cannot evaluate.
func (c *Cache) Known(viewer *types.Player, eft types.EffectType, ctx rules.Context) bool {
	for _, e := range c.Of(eft) {
		if c.eval.EvalKnownAll(viewer, ctx, e.Reqs) == tri.Unknown {
			return false
		}
	}
	return true
}

// PlayerBonus is the player-wide value of eft.
func (c *Cache) PlayerBonus(p *types.Player, eft types.EffectType) int {
	if p == nil {
		return 0
	}
	return c.Value(eft, rules.Context{Player: p})
}

// CityBonus is the value of eft for a city.
func (c *Cache) CityBonus(city *types.City, eft types.EffectType) int {
	if city == nil {
		return 0
	}
	return c.Value(eft, c.eval.CityContext(city))
}

// CityOutputBonus is the value of eft for one output type of a city.
func (c *Cache) CityOutputBonus(city *types.City, output int, eft types.EffectType) int {
	if city == nil {
		return 0
	}
	ctx := c.eval.CityContext(city)
	ctx.Output = output
	return c.Value(eft, ctx)
}

// UnitBonus is the value of eft for a unit where it stands.
func (c *Cache) UnitBonus(u *types.Unit, eft types.EffectType) int {
	if u == nil {
		return 0
	}
	ctx := c.eval.UnitContext(u)
	ctx.City = c.eval.World.TileCity(u.Tile)
	return c.Value(eft, ctx)
}

// TileBonus is the value of eft for a tile, seen by its owner.
func (c *Cache) TileBonus(tile *types.Tile, eft types.EffectType) int {
	if tile == nil {
		return 0
	}
	ctx := rules.Context{
		Player: c.eval.World.Player(tile.Owner),
		City:   c.eval.World.TileCity(tile.Index),
		Tile:   tile,
	}
	return c.Value(eft, ctx)
}

// SpecialistOutput is how much of output one specialist produces in city.
func (c *Cache) SpecialistOutput(city *types.City, spec *types.Specialist, output int) int {
	if city == nil || spec == nil {
		return 0
	}
	ctx := c.eval.CityContext(city)
	ctx.Specialist = spec
	ctx.Output = output
	return c.Value(types.EffectSpecialistOutput, ctx)
}

// ImprovementEffects returns the effects that require a building to be
// present, used to score what building it would change.
func (c *Cache) ImprovementEffects(impr int) []types.Effect {
	var out []types.Effect
	c.Iterate(func(e types.Effect) bool {
		for _, r := range e.Reqs {
			if r.Source.Kind == types.KindImprovement && r.Source.Value == impr && r.Present {
				out = append(out, e)
				break
			}
		}
		return true
	})
	return out
}
