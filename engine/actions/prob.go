package actions

import (
	"fmt"

	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

// Prob is an action success probability in half percent steps, 0 to 200,
// or one of the special values above that range.
type Prob int

const (
	ProbImpossible     Prob = 0
	ProbCertain        Prob = 200
	ProbNA             Prob = 253
	ProbNotImplemented Prob = 254
	ProbNotKnown       Prob = 255
)

// String renders the probability the way action menus show it.
func (p Prob) String() string {
	switch p {
	case ProbNotKnown:
		return "?%"
	case ProbNotImplemented:
		return "not implemented"
	case ProbNA:
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(p)/2)
}

// Percent returns p as a percentage, or -1 for the special values.
func (p Prob) Percent() float64 {
	if p < ProbImpossible || p > ProbCertain {
		return -1
	}
	return float64(p) / 2
}

// ProbVsCity is actor's chance of doing act to city, judged with what the
// actor's owner knows.
func (s *System) ProbVsCity(act types.ActionID, actor *types.Unit, city *types.City) Prob {
	if actor == nil || city == nil || !s.checkKinds(act, TargetCity) {
		return ProbImpossible
	}
	w := s.eval.World
	actorOwner, targetOwner := w.UnitOwner(actor), w.CityOwner(city)
	return s.prob(act, actor, nil, actorOwner, targetOwner,
		s.actorContext(actor, targetOwner),
		s.cityTargetContext(city, actorOwner))
}

// ProbVsUnit is actor's chance of doing act to target, judged with what
// the actor's owner knows.
func (s *System) ProbVsUnit(act types.ActionID, actor, target *types.Unit) Prob {
	if actor == nil || target == nil || !s.checkKinds(act, TargetUnit) {
		return ProbImpossible
	}
	if !s.aloneOnTile(target) {
		return ProbImpossible
	}
	w := s.eval.World
	actorOwner, targetOwner := w.UnitOwner(actor), w.UnitOwner(target)
	return s.prob(act, actor, target, actorOwner, targetOwner,
		s.actorContext(actor, targetOwner),
		s.unitTargetContext(target, actorOwner))
}

func (s *System) prob(act types.ActionID, actor, targetUnit *types.Unit, actorOwner, targetOwner *types.Player, actorCtx, targetCtx rules.Context) Prob {
	chance := ProbNotImplemented
	known := s.enabledLocal(act, actorOwner, actorCtx, targetCtx)

	switch act {
	case SpySabotageUnit:
		if targetUnit.HP < 2 {
			return ProbImpossible
		}
		chance = s.diplomatBattle(actor, targetUnit)
	case SpyBribeUnit, EstablishEmbassy, SpyInvestigateCity:
		chance = ProbCertain
	case SpyStealTech, SpyTargetedStealTech:
		known = tri.And(known, s.techCanBeStolen(actorOwner, targetOwner))
	case SpyPoison, SpySabotageCity, SpyTargetedSabotageCity, SpyInciteCity:
		// TODO: derive these from diplchance and the city's Spy_Resistant bonus.
	}

	switch known {
	case tri.No:
		return ProbImpossible
	case tri.Unknown:
		return ProbNotKnown
	}
	return chance
}

// techCanBeStolen reports whether target knows a tech actor could steal.
// It is unknown when actor cannot see target's research.
func (s *System) techCanBeStolen(actor, target *types.Player) tri.State {
	if s.techs == nil || actor == nil || target == nil {
		return tri.No
	}
	ar, tr := s.techs.For(actor), s.techs.For(target)
	if ar == tr {
		return tri.No
	}
	if !s.eval.World.CanSeeTechsOf(actor, target) {
		return tri.Unknown
	}
	holes := s.eval.Defs.Game.TechStealAllowHoles
	for i := int(types.AFirst); i < s.eval.Defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if s.techs.InventionState(tr, tech) != types.TechKnown {
			continue
		}
		if !s.techs.Gettable(ar, tech, holes) {
			continue
		}
		if st := s.techs.InventionState(ar, tech); st == types.TechUnknown || st == types.TechPrereqsKnown {
			return tri.Yes
		}
	}
	return tri.No
}

// diplomatBattle is the chance that attacker beats the diplomatic defense
// of defender. Defenders in a city get the city's Spy_Resistant bonus,
// which the attacker must be able to see; elsewhere a diplomat defense
// base gives a flat 25% cut.
func (s *System) diplomatBattle(attacker, defender *types.Unit) Prob {
	defs, w := s.eval.Defs, s.eval.World

	if defs.UnitTypeHasFlag(attacker.Type, "SuperSpy") {
		return ProbCertain
	}
	if defs.UnitTypeHasFlag(defender.Type, "SuperSpy") {
		return ProbImpossible
	}
	if !defs.UnitTypeHasFlag(defender.Type, "Diplomat") {
		return ProbCertain
	}

	chance := 50
	if defs.UnitTypeHasFlag(attacker.Type, "Spy") {
		chance += 25
	}
	if defs.UnitTypeHasFlag(defender.Type, "Spy") {
		chance -= 25
	}

	vatt := defs.VeteranLevel(attacker.Type, attacker.Veteran)
	vdef := defs.VeteranLevel(defender.Type, defender.Veteran)
	chance += vatt.PowerFact - vdef.PowerFact

	if city := w.TileCity(defender.Tile); city != nil {
		if !s.effects.Known(w.UnitOwner(attacker), types.EffectSpyResistant, s.eval.CityContext(city)) {
			return ProbNotKnown
		}
		chance -= chance * s.effects.CityBonus(city, types.EffectSpyResistant) / 100
	} else if s.diplomatDefenseBase(defender) {
		chance -= chance * 25 / 100
	}

	return Prob(chance * 2)
}

func (s *System) diplomatDefenseBase(u *types.Unit) bool {
	t := s.eval.World.Tile(u.Tile)
	if t == nil || u.Type < 0 || u.Type >= len(s.eval.Defs.UnitTypes) {
		return false
	}
	class := s.eval.Defs.UnitTypes[u.Type].Class
	for _, id := range t.Extras {
		if id < 0 || id >= len(s.eval.Defs.Extras) {
			continue
		}
		x := s.eval.Defs.Extras[id]
		if state.HasFlag(x.BaseFlags, "DiplomatDefense") && state.ContainsInt(x.NativeTo, class) {
			return true
		}
	}
	return false
}

// UIName returns an action's menu label with no mnemonic or probability.
func UIName(act types.ActionID) string {
	return PrepareUIName(act, "", ProbNA)
}

// PrepareUIName fills an action's menu label with a mnemonic and a
// success chance suffix.
func PrepareUIName(act types.ActionID, mnemonic string, p Prob) string {
	a, ok := Get(act)
	if !ok {
		return ""
	}
	var chance string
	switch {
	case p == ProbNotKnown:
		chance = " (?%)"
	case p == ProbNotImplemented, p == ProbNA:
	case p >= ProbImpossible && p <= ProbCertain:
		chance = fmt.Sprintf(" (%.1f%%)", float64(p)/2)
	}
	return fmt.Sprintf(a.UIName, mnemonic, chance)
}

// Roller picks a number in [0, sides).
type Roller interface {
	Roll(sides int) int
}

// Roll resolves p into an outcome. Probabilities the actor could not see
// or that have no formula fall back to fallback, a percentage.
func Roll(rng Roller, p Prob, fallback int) bool {
	switch {
	case p == ProbNA:
		return false
	case p == ProbNotKnown, p == ProbNotImplemented:
		return rng.Roll(100) < fallback
	case p <= ProbImpossible:
		return false
	case p >= ProbCertain:
		return true
	}
	return rng.Roll(int(ProbCertain)) < int(p)
}
