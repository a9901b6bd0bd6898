package research

import (
	"fmt"

	"github.com/nathoo/civcore/types"
)

// Roller picks a number in [0, sides).
type Roller interface {
	Roll(sides int) int
}

// Acquire marks tech known for r, or raises the future tech level when
// tech is AFuture, then refreshes r. A goal that becomes known is cleared.
func (reg *Registry) Acquire(r *types.Research, tech types.TechID) error {
	if r == nil {
		return fmt.Errorf("acquire %d: no research", tech)
	}
	if tech == types.AFuture {
		r.FutureTech++
	} else {
		if !reg.defs.ValidAdvance(tech) || tech == types.ANone {
			return fmt.Errorf("acquire %d: invalid tech", tech)
		}
		if reg.InventionState(r, tech) == types.TechKnown {
			return nil
		}
		reg.InventionSet(r, tech, types.TechKnown)
	}
	r.TechsResearched++

	if r.TechGoal != types.AUnset && reg.InventionState(r, r.TechGoal) == types.TechKnown {
		r.TechGoal = types.AUnset
	}
	if r.Researching == tech && tech != types.AFuture {
		r.Researching = types.AUnset
	}
	reg.Update(r)

	reg.log.Info().
		Str("research", reg.Name(r)).
		Str("tech", reg.AdvanceName(r, tech)).
		Msg("tech acquired")
	reg.fire(r)
	return nil
}

// Lose forgets tech. Techs depending on it become unreachable only if
// their root requirement was tech; otherwise they stay known.
func (reg *Registry) Lose(r *types.Research, tech types.TechID) error {
	if r == nil || !reg.defs.ValidAdvance(tech) || tech == types.ANone {
		return fmt.Errorf("lose %d: invalid tech", tech)
	}
	if reg.InventionState(r, tech) != types.TechKnown {
		return nil
	}
	reg.InventionSet(r, tech, types.TechUnknown)
	r.TechsResearched--
	if r.Researching == tech {
		r.Researching = types.AUnset
	}
	reg.Update(r)

	reg.log.Info().
		Str("research", reg.Name(r)).
		Str("tech", reg.AdvanceName(r, tech)).
		Msg("tech lost")
	reg.fire(r)
	return nil
}

// FreeTech chooses the tech a free-tech grant gives, following the
// ruleset's free tech method. It returns AFuture when nothing else is
// available.
func (reg *Registry) FreeTech(r *types.Research, rng Roller) types.TechID {
	method := reg.defs.Game.FreeTechMethod
	if method == types.FreeTechGoal && r.Researching != types.AUnset && r.Researching != types.AFuture {
		if reg.InventionState(r, r.Researching) == types.TechPrereqsKnown {
			return r.Researching
		}
	}
	if method == types.FreeTechGoal && r.Researching == types.AFuture {
		return types.AFuture
	}

	var candidates []types.TechID
	for i := int(types.AFirst); i < reg.defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if reg.InventionState(r, tech) == types.TechPrereqsKnown {
			candidates = append(candidates, tech)
		}
	}
	if len(candidates) == 0 {
		return types.AFuture
	}

	if method == types.FreeTechCheapest {
		best := candidates[0]
		for _, tech := range candidates[1:] {
			if reg.TotalBulbsRequired(r, tech, false) < reg.TotalBulbsRequired(r, best, false) {
				best = tech
			}
		}
		return best
	}
	if rng == nil {
		return candidates[0]
	}
	return candidates[rng.Roll(len(candidates))]
}

// StealableTechs lists the techs victim knows that thief could gain by
// theft. With allowHoles, a tech is stealable even if thief lacks its
// direct prerequisites.
func (reg *Registry) StealableTechs(thief, victim *types.Research, allowHoles bool) []types.TechID {
	if thief == nil || victim == nil || thief == victim {
		return nil
	}
	var out []types.TechID
	for i := int(types.AFirst); i < reg.defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if reg.InventionState(victim, tech) != types.TechKnown {
			continue
		}
		if reg.InventionState(thief, tech) == types.TechKnown {
			continue
		}
		if reg.Gettable(thief, tech, allowHoles) {
			out = append(out, tech)
		}
	}
	return out
}

// AddBulbs adds bulbs to r's progress and completes as many techs as the
// stock pays for, each time moving on toward the goal. A negative stock
// beyond the tech loss forgiveness costs a known tech. It returns the
// techs gained and lost, in order.
func (reg *Registry) AddBulbs(r *types.Research, bulbs int, rng Roller) (gained, lost []types.TechID) {
	if r == nil {
		return nil, nil
	}
	r.BulbsResearched += bulbs

	for r.Researching != types.AUnset {
		cost := reg.TotalBulbsRequired(r, r.Researching, false)
		if r.BulbsResearched < cost {
			break
		}
		tech := r.Researching
		r.BulbsResearched -= cost
		if err := reg.Acquire(r, tech); err != nil {
			reg.log.Error().Err(err).Msg("completing research")
			break
		}
		gained = append(gained, tech)
		r.Researching = reg.nextResearch(r)
	}

	if t := reg.techLoss(r, rng); t != types.AUnset {
		lost = append(lost, t)
	}
	return gained, lost
}

func (reg *Registry) nextResearch(r *types.Research) types.TechID {
	if r.TechGoal == types.AUnset {
		return types.AUnset
	}
	return reg.GoalStep(r, r.TechGoal)
}

// techLoss forgets one known tech when the bulb stock has fallen below
// the forgiveness threshold, a percentage of the current tech's cost.
// A negative threshold disables tech loss; zero loses a tech as soon as
// the stock goes negative. The lost tech must not be a
// prerequisite of another known tech. The stock is refunded by the lost
// tech's value.
func (reg *Registry) techLoss(r *types.Research, rng Roller) types.TechID {
	forgive := reg.defs.Game.Techlossforgiveness
	if forgive < 0 || r.BulbsResearched >= 0 {
		return types.AUnset
	}
	cost := reg.TotalBulbsRequired(r, r.Researching, false)
	if r.Researching == types.AUnset {
		cost = reg.TotalBulbsRequired(r, types.AFuture, false)
	}
	if -r.BulbsResearched <= cost*forgive/100 {
		return types.AUnset
	}

	var leaves []types.TechID
	for i := int(types.AFirst); i < reg.defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if reg.InventionState(r, tech) == types.TechKnown && !reg.requiredByKnown(r, tech) {
			leaves = append(leaves, tech)
		}
	}
	if len(leaves) == 0 {
		return types.AUnset
	}
	lose := leaves[0]
	if rng != nil {
		lose = leaves[rng.Roll(len(leaves))]
	}

	r.BulbsResearched += reg.TotalBulbsRequired(r, lose, true)
	if err := reg.Lose(r, lose); err != nil {
		reg.log.Error().Err(err).Msg("tech loss")
		return types.AUnset
	}
	return lose
}

func (reg *Registry) requiredByKnown(r *types.Research, tech types.TechID) bool {
	for i := int(types.AFirst); i < reg.defs.AdvanceCount(); i++ {
		other := types.TechID(i)
		if other == tech || reg.InventionState(r, other) != types.TechKnown {
			continue
		}
		adv := reg.defs.Advance(other)
		if adv.Require[0] == tech || adv.Require[1] == tech || adv.RootReq == tech {
			return true
		}
	}
	return false
}

func (reg *Registry) fire(r *types.Research) {
	if reg.notify != nil {
		reg.notify(r)
	}
}
