package research

import (
	"math"

	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// TotalBulbsRequired returns the bulbs needed to research tech. The base
// cost comes from the tech cost style. It is scaled by the members'
// Tech_Cost_Factor and discounted by tech leakage. Then it is scaled by
// the AI science cost and finally by sciencebox. The result is never less
// than 1, except that a tech already known and no longer reachable costs
// nothing unless lossValue is set.
//
// A nil research gives a simplified cost with no leakage.
func (reg *Registry) TotalBulbsRequired(r *types.Research, tech types.TechID, lossValue bool) int {
	game := reg.defs.Game
	future := tech == types.AFuture

	if !future && !reg.defs.ValidAdvance(tech) {
		return 0
	}
	if !lossValue && r != nil && !future &&
		!reg.Reachable(r, tech) && reg.InventionState(r, tech) == types.TechKnown {
		return 0
	}

	style := game.TechCostStyle
	if future {
		style = 0
	}

	var base float64
	switch {
	case style == 0 && r != nil:
		base = float64(game.BaseTechCost * r.TechsResearched)
	case style >= 0 && style <= 4:
		if adv := reg.defs.Advance(tech); adv != nil && !future {
			base = float64(adv.Cost)
		}
	default:
		reg.log.Error().Int("tech_cost_style", style).Msg("invalid tech cost style")
	}

	members := reg.Members(r)
	if len(members) > 0 {
		total := 0.0
		for _, p := range members {
			total += base * float64(reg.bonus(p, types.EffectTechCostFactor))
		}
		base = total / float64(len(members))
	}

	if r != nil {
		base = reg.leakage(r, tech, members, base)
	}

	if len(members) > 0 {
		total := 0.0
		for _, p := range members {
			if p.AI {
				total += base * float64(p.ScienceCost) / 100.0
			} else {
				total += base
			}
		}
		base = total / float64(len(members))
	}

	base *= float64(game.Sciencebox) / 100.0

	return int(math.Max(base, 1))
}

// leakage discounts base by the share of players who already know tech.
// Style 1 counts holders any member has an embassy with, but divides by
// every alive player.
func (reg *Registry) leakage(r *types.Research, tech types.TechID, members []*types.Player, base float64) float64 {
	knows := func(a *types.Research) bool {
		if tech == types.AFuture {
			return a.FutureTech > r.FutureTech
		}
		return reg.InventionState(a, tech) == types.TechKnown
	}

	players, holders := 0, 0
	switch reg.defs.Game.TechLeakage {
	case 0:
		return base

	case 1:
		for _, a := range reg.world.AlivePlayers() {
			ar := reg.For(a)
			players++
			if ar == r || !knows(ar) {
				continue
			}
			for _, m := range members {
				if reg.world.HasEmbassy(m, a) {
					holders++
					break
				}
			}
		}

	case 2:
		for _, a := range reg.world.AlivePlayers() {
			players++
			if knows(reg.For(a)) {
				holders++
			}
		}

	case 3:
		for _, a := range reg.world.AlivePlayers() {
			if a.Barbarian {
				continue
			}
			players++
			if knows(reg.For(a)) {
				holders++
			}
		}

	default:
		reg.log.Error().Int("tech_leakage", reg.defs.Game.TechLeakage).Msg("invalid tech leakage")
		return base
	}

	if players == 0 {
		return base
	}
	return base * float64(players-holders) / float64(players)
}

// Upkeep returns the bulbs a player pays each turn to keep its techs.
func (reg *Registry) Upkeep(p *types.Player) int {
	game := reg.defs.Game
	if game.TechUpkeepStyle == types.UpkeepNone {
		return 0
	}
	r := reg.For(p)
	if r == nil {
		return 0
	}
	f, t := r.FutureTech, r.TechsResearched

	factor := 0.0
	members := reg.Members(r)
	for _, m := range members {
		ai := 1.0
		if m.AI {
			ai = float64(m.ScienceCost) / 100.0
		}
		factor += float64(reg.bonus(m, types.EffectTechCostFactor)) + ai
	}
	if len(members) == 0 {
		return 0
	}

	upkeep := 0.0
	switch game.TechCostStyle {
	case 0:
		upkeep += float64(game.BaseTechCost * t * (t + 1) / 2)
	case 1, 2, 3, 4:
		for i := range reg.defs.Advances {
			if r.Inventions[i].State == types.TechKnown {
				upkeep += float64(reg.defs.Advances[i].Cost)
			}
		}
		if f > 0 {
			upkeep += float64(game.BaseTechCost * (f*(2*t+f+1) + 2*t) / 2)
		}
	default:
		reg.log.Error().Int("tech_cost_style", game.TechCostStyle).Msg("invalid tech cost style")
	}

	divider := game.TechUpkeepDivider
	if divider <= 0 {
		divider = 1
	}
	upkeep *= factor / float64(len(members))
	upkeep *= float64(game.Sciencebox) / 100.0
	upkeep /= float64(len(members))
	upkeep /= float64(divider)

	free := float64(reg.bonus(p, types.EffectTechUpkeepFree))
	switch game.TechUpkeepStyle {
	case types.UpkeepBasic:
		upkeep -= free
	case types.UpkeepPerCity:
		upkeep -= free
		upkeep *= float64(len(reg.world.PlayerCities(p.ID)))
	}

	if upkeep < 0 {
		upkeep = 0
	}
	reg.log.Debug().Str("player", p.Name).Int("upkeep", int(upkeep)).Msg("tech upkeep")
	return int(upkeep)
}

func (reg *Registry) bonus(p *types.Player, eft types.EffectType) int {
	if reg.effects == nil {
		return 0
	}
	return reg.effects.PlayerBonus(p, eft)
}

// PrecalcCosts derives each advance's requirement count and, for tech cost
// styles 1 to 4, its base cost. Styles 2 and 4 keep a preset cost when the
// ruleset gives one.
func PrecalcCosts(defs *state.Defs) {
	base := float64(defs.Game.BaseTechCost)
	style := defs.Game.TechCostStyle

	for i := int(types.AFirst); i < defs.AdvanceCount(); i++ {
		adv := &defs.Advances[i]
		if !defs.ValidAdvance(adv.ID) {
			continue
		}
		n := float64(len(Closure(defs, adv.ID)))
		adv.NumReqs = int(n)

		var cost float64
		switch style {
		case 0:
			continue
		case 1:
			cost = base * (1 + n) * math.Sqrt(1+n) / 2
		case 2:
			if adv.PresetCost > 0 {
				adv.Cost = adv.PresetCost
				continue
			}
			cost = base * (1 + n) * math.Sqrt(1+n) / 2
		case 3:
			cost = base * (n*n/(1+math.Sqrt(math.Sqrt(n+1))) - 0.5)
		case 4:
			if adv.PresetCost > 0 {
				adv.Cost = adv.PresetCost
				continue
			}
			cost = base * (n*n/(1+math.Sqrt(math.Sqrt(n+1))) - 0.5)
		default:
			continue
		}
		adv.Cost = int(math.Max(cost, 1))
	}
}
