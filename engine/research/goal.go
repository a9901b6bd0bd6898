package research

import (
	"fmt"

	"github.com/nathoo/civcore/types"
)

// GoalStep returns the next tech to research toward goal: the first tech
// in goal's requirement closure whose prerequisites are known. It returns
// AUnset when goal is invalid, unreachable or already known.
func (reg *Registry) GoalStep(r *types.Research, goal types.TechID) types.TechID {
	if !reg.defs.ValidAdvance(goal) || !reg.Reachable(r, goal) {
		return types.AUnset
	}
	for _, t := range Closure(reg.defs, goal) {
		if reg.InventionState(r, t) == types.TechPrereqsKnown {
			return t
		}
	}
	return types.AUnset
}

// GoalUnknownTechs is the number of techs still needed to reach goal,
// goal included.
func (reg *Registry) GoalUnknownTechs(r *types.Research, goal types.TechID) int {
	if !reg.defs.ValidAdvance(goal) {
		return 0
	}
	if r == nil {
		return reg.defs.Advance(goal).NumReqs
	}
	return r.Inventions[goal].NumRequiredTechs
}

// GoalBulbsRequired is the bulbs still needed to reach goal.
func (reg *Registry) GoalBulbsRequired(r *types.Research, goal types.TechID) int {
	if !reg.defs.ValidAdvance(goal) {
		return 0
	}
	if r != nil {
		return r.Inventions[goal].BulbsRequired
	}
	if reg.defs.Game.TechCostStyle == 0 {
		n := reg.defs.Advance(goal).NumReqs
		return reg.defs.Game.BaseTechCost * n * (n + 1) / 2
	}
	total := 0
	for _, t := range Closure(reg.defs, goal) {
		total += reg.defs.Advance(t).Cost
	}
	return total
}

// GoalTechReq reports whether tech must be researched on the way to goal.
func (reg *Registry) GoalTechReq(r *types.Research, goal, tech types.TechID) bool {
	if tech == goal || !reg.defs.ValidAdvance(goal) || !reg.defs.ValidAdvance(tech) {
		return false
	}
	if r != nil {
		return r.Inventions[goal].RequiredTechs[tech]
	}
	for _, t := range Closure(reg.defs, goal) {
		if t == tech {
			return true
		}
	}
	return false
}

// AdvanceName returns the display name of a tech, covering the sentinel
// values. Future techs are numbered from the research's next level.
func (reg *Registry) AdvanceName(r *types.Research, tech types.TechID) string {
	switch tech {
	case types.AUnset:
		return "None"
	case types.AUnknown:
		return "(Unknown)"
	case types.AFuture:
		if r == nil {
			return "Future Tech."
		}
		return fmt.Sprintf("Future Tech. %d", r.FutureTech+1)
	}
	if adv := reg.defs.Advance(tech); adv != nil {
		return adv.Name
	}
	return "(Unknown)"
}

// TechByName resolves a tech name typed by a user, accepting the future
// tech and "None" spellings as well as advance names.
func (reg *Registry) TechByName(name string) (types.TechID, bool) {
	switch name {
	case "None", "none":
		return types.AUnset, true
	case "Future Tech.", "future":
		return types.AFuture, true
	}
	id, ok := reg.defs.AdvanceByName(name)
	if !ok || id == types.ANone {
		return types.AUnknown, false
	}
	return id, true
}
