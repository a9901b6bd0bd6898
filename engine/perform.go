package engine

import (
	"fmt"
	"sort"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/parser"
	"github.com/nathoo/civcore/engine/resolve"
	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/types"
)

// cmdDo performs an action. The enablers must allow it; the outcome is
// rolled against the probability the actor's owner sees, falling back to
// diplchance where that is unknown. A failed actor is lost. A successful
// Diplomat is spent, a Spy survives.
func (s *Session) cmdDo(cmd parser.Command) ([]string, error) {
	t, err := s.resolveAction(cmd)
	if err != nil {
		return nil, err
	}
	a, _ := actions.Get(t.act)
	if !s.enabled(t) {
		return nil, fmt.Errorf("%s cannot do %s to %s", s.unitName(t.actor), a.RuleName, s.targetName(t))
	}

	actorName := s.unitName(t.actor)
	if t.againstCity() {
		s.emit(script.ActionStartedUnitCity, map[string]any{"action": t.act, "unit": t.actor, "city": t.city})
	} else {
		s.emit(script.ActionStartedUnitUnit, map[string]any{"action": t.act, "unit": t.actor, "target": t.target})
	}

	p := s.prob(t)
	if !actions.Roll(s.RNG, p, s.Defs.Game.Diplchance) {
		delete(s.World.Units, t.actor.ID)
		s.log.Info().Str("action", a.RuleName).Int("unit", t.actor.ID).Str("prob", p.String()).Msg("action failed")
		return []string{fmt.Sprintf("%s failed to %s and was lost.", actorName, a.RuleName)}, nil
	}

	out, err := s.perform(t, cmd.Rest(3))
	if err != nil {
		return out, err
	}
	if !s.Defs.UnitTypeHasFlag(t.actor.Type, "Spy") {
		delete(s.World.Units, t.actor.ID)
	}
	return out, nil
}

func (s *Session) perform(t actionTarget, extra string) ([]string, error) {
	actor := s.World.UnitOwner(t.actor)
	switch t.act {
	case actions.EstablishEmbassy:
		victim := s.World.CityOwner(t.city)
		if actor.Embassies == nil {
			actor.Embassies = map[int]bool{}
		}
		actor.Embassies[victim.ID] = true
		return []string{fmt.Sprintf("%s establishes an embassy in %s.", actor.Name, t.city.Name)}, nil

	case actions.SpyInvestigateCity:
		return s.investigate(t.city), nil

	case actions.SpyStealTech, actions.SpyTargetedStealTech:
		return s.stealTech(t, actor, extra)

	case actions.SpyBribeUnit:
		name := s.unitName(t.target)
		t.target.Owner = actor.ID
		t.target.HomeCity = t.actor.HomeCity
		return []string{fmt.Sprintf("%s bribes %s.", actor.Name, name)}, nil

	case actions.SpySabotageUnit:
		t.target.HP /= 2
		if t.target.HP < 1 {
			t.target.HP = 1
		}
		return []string{fmt.Sprintf("%s sabotages %s, leaving %d HP.", actor.Name, s.unitName(t.target), t.target.HP)}, nil

	case actions.SpySabotageCity, actions.SpyTargetedSabotageCity:
		return s.sabotageCity(t, extra)

	case actions.SpyPoison:
		t.city.Size--
		if t.city.Size <= 0 {
			s.destroyCity(t.city)
			return []string{fmt.Sprintf("%s poisons %s, destroying it.", actor.Name, t.city.Name)}, nil
		}
		return []string{fmt.Sprintf("%s poisons %s, size now %d.", actor.Name, t.city.Name, t.city.Size)}, nil

	case actions.SpyInciteCity:
		s.transferCity(t.city, actor)
		return []string{fmt.Sprintf("%s incites a revolt in %s.", actor.Name, t.city.Name)}, nil
	}
	return nil, fmt.Errorf("action %d has no outcome", t.act)
}

func (s *Session) investigate(c *types.City) []string {
	var buildings []string
	for _, impr := range s.Defs.Improvements {
		if c.Buildings[impr.ID] {
			buildings = append(buildings, impr.Name)
		}
	}
	var specialists []string
	for _, sp := range s.Defs.Specialists {
		if n := c.Specialists[sp.ID]; n > 0 {
			specialists = append(specialists, fmt.Sprintf("%d %s", n, sp.Name))
		}
	}
	owner := s.World.CityOwner(c)
	ownerName := "nobody"
	if owner != nil {
		ownerName = owner.Name
	}
	var units []string
	for _, u := range s.World.UnitsOnTile(c.Tile) {
		units = append(units, s.unitName(u))
	}
	return []string{
		fmt.Sprintf("%s (%s), size %d", c.Name, ownerName, c.Size),
		"  buildings: " + joinNames(buildings),
		"  specialists: " + joinNames(specialists),
		"  units: " + joinNames(units),
	}
}

// stealTech takes a tech the victim knows and the thief can learn: a
// random one, or the one named for targeted theft.
func (s *Session) stealTech(t actionTarget, thief *types.Player, named string) ([]string, error) {
	victim := s.World.CityOwner(t.city)
	tr, vr := s.Research.For(thief), s.Research.For(victim)
	stealable := s.Research.StealableTechs(tr, vr, s.Defs.Game.TechStealAllowHoles)
	if len(stealable) == 0 {
		return []string{fmt.Sprintf("%s has no technology %s can steal.", victim.Name, thief.Name)}, nil
	}

	var tech types.TechID
	if t.act == actions.SpyTargetedStealTech && named != "" {
		want, err := resolve.Tech(s.Defs, named)
		if err != nil {
			return nil, err
		}
		if !containsTech(stealable, want) {
			return nil, fmt.Errorf("%s cannot steal %s from %s", thief.Name, s.Research.AdvanceName(tr, want), victim.Name)
		}
		tech = want
	} else {
		tech = stealable[s.RNG.Roll(len(stealable))]
	}

	if err := s.Research.Acquire(tr, tech); err != nil {
		return nil, err
	}
	s.techEvent(thief, tech, "stolen")
	return []string{fmt.Sprintf("%s steals %s from %s.", thief.Name, s.Research.AdvanceName(tr, tech), victim.Name)}, nil
}

func containsTech(list []types.TechID, tech types.TechID) bool {
	for _, t := range list {
		if t == tech {
			return true
		}
	}
	return false
}

// sabotageCity destroys a regular building: a random one, or the one
// named for targeted sabotage. Wonders cannot be sabotaged.
func (s *Session) sabotageCity(t actionTarget, named string) ([]string, error) {
	var ids []int
	for id, has := range t.city.Buildings {
		if has && id >= 0 && id < len(s.Defs.Improvements) && s.Defs.Improvements[id].Genus == types.GenusImprovement {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	if len(ids) == 0 {
		return []string{fmt.Sprintf("%s has nothing to sabotage.", t.city.Name)}, nil
	}

	var id int
	if t.act == actions.SpyTargetedSabotageCity && named != "" {
		want, err := resolve.Improvement(s.Defs, named)
		if err != nil {
			return nil, err
		}
		if !t.city.Buildings[want] || s.Defs.Improvements[want].Genus != types.GenusImprovement {
			return nil, fmt.Errorf("%s has no %s to sabotage", t.city.Name, s.Defs.Improvements[want].Name)
		}
		id = want
	} else {
		id = ids[s.RNG.Roll(len(ids))]
	}
	delete(t.city.Buildings, id)
	return []string{fmt.Sprintf("%s is destroyed in %s.", s.Defs.Improvements[id].Name, t.city.Name)}, nil
}

// transferCity hands c and the units it supports to p.
func (s *Session) transferCity(c *types.City, p *types.Player) {
	for _, u := range s.World.SupportedUnits(c.ID) {
		u.Owner = p.ID
	}
	c.Owner = p.ID
	c.Capital = false
	if tile := s.World.Tile(c.Tile); tile != nil {
		tile.Owner = p.ID
	}
}

func (s *Session) destroyCity(c *types.City) {
	for _, u := range s.World.SupportedUnits(c.ID) {
		u.HomeCity = -1
	}
	if tile := s.World.Tile(c.Tile); tile != nil {
		tile.Owner = -1
	}
	delete(s.World.Cities, c.ID)
}
