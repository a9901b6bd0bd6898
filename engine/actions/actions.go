// Package actions implements the action catalog and action enablers: the
// requirement vectors that decide whether a unit may act on a city or a
// unit, and the success probability the actor's owner can see.
package actions

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/effects"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

// The action catalog.
const (
	SpyPoison types.ActionID = iota
	SpySabotageUnit
	SpyBribeUnit
	SpySabotageCity
	SpyTargetedSabotageCity
	SpyInciteCity
	EstablishEmbassy
	SpyStealTech
	SpyTargetedStealTech
	SpyInvestigateCity
	Count
)

// TargetKind is what an action is done to.
type TargetKind int

const (
	TargetCity TargetKind = iota
	TargetUnit
)

// Action is a catalog entry. UIName is a format string with two %s verbs:
// a mnemonic and a probability suffix.
type Action struct {
	ID       types.ActionID
	RuleName string
	UIName   string
	Target   TargetKind
}

var catalog = [Count]Action{
	{SpyPoison, "Poison City", "%sPoison City%s", TargetCity},
	{SpySabotageUnit, "Sabotage Unit", "%sSabotage Enemy Unit%s", TargetUnit},
	{SpyBribeUnit, "Bribe Unit", "%sBribe Enemy Unit%s", TargetUnit},
	{SpySabotageCity, "Sabotage City", "%sSabotage City%s", TargetCity},
	{SpyTargetedSabotageCity, "Targeted Sabotage City", "Industrial %sSabotage%s", TargetCity},
	{SpyInciteCity, "Incite City", "Incite a %sRevolt%s", TargetCity},
	{EstablishEmbassy, "Establish Embassy", "Establish %sEmbassy%s", TargetCity},
	{SpyStealTech, "Steal Tech", "Steal %sTechnology%s", TargetCity},
	{SpyTargetedStealTech, "Targeted Steal Tech", "Indus%strial Espionage%s", TargetCity},
	{SpyInvestigateCity, "Investigate City", "%sInvestigate City%s", TargetCity},
}

// Valid reports whether id is in the catalog.
func Valid(id types.ActionID) bool {
	return id >= 0 && id < Count
}

// Get returns the catalog entry for id.
func Get(id types.ActionID) (Action, bool) {
	if !Valid(id) {
		return Action{}, false
	}
	return catalog[id], true
}

// All returns the catalog in ID order.
func All() []Action {
	return append([]Action(nil), catalog[:]...)
}

// ByName finds an action by rule name, case-insensitively. Spaces and
// underscores are interchangeable.
func ByName(name string) (types.ActionID, bool) {
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, "_", " ")) }
	for _, a := range catalog {
		if norm(a.RuleName) == norm(name) {
			return a.ID, true
		}
	}
	return -1, false
}

// Researches is the research view the system needs to judge tech theft.
type Researches interface {
	For(p *types.Player) *types.Research
	InventionState(r *types.Research, tech types.TechID) types.TechState
	Gettable(r *types.Research, tech types.TechID, reachableOK bool) bool
}

// System holds the enablers of every action.
type System struct {
	eval     *rules.Evaluator
	effects  *effects.Cache
	techs    Researches
	enablers [Count][]types.ActionEnabler
	log      zerolog.Logger
}

// Option configures a System.
type Option func(*System)

// WithLogger sets the system logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *System) { s.log = l }
}

// New creates a system with no enablers.
func New(eval *rules.Evaluator, cache *effects.Cache, techs Researches, opts ...Option) *System {
	s := &System{eval: eval, effects: cache, techs: techs, log: log.Logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add registers an enabler. Enablers for unknown actions are rejected.
func (s *System) Add(en types.ActionEnabler) error {
	if !Valid(en.Action) {
		return fmt.Errorf("action enabler: unknown action %d", en.Action)
	}
	s.enablers[en.Action] = append(s.enablers[en.Action], en)
	return nil
}

// Enablers returns the enablers registered for an action.
func (s *System) Enablers(act types.ActionID) []types.ActionEnabler {
	if !Valid(act) {
		return nil
	}
	return s.enablers[act]
}

// AppendHard adds the requirements every enabler of its action implies.
// All catalog actions are done by diplomatic units that are not dependent
// on a transport. An embassy cannot be established twice, and units are
// bribed or sabotaged only when alone on their tile.
func AppendHard(en *types.ActionEnabler) {
	en.ActorReqs = append(en.ActorReqs,
		types.Requirement{
			Source:  types.Universal{Kind: types.KindUnitFlag, Name: "Diplomat"},
			Range:   types.RangeLocal,
			Present: true,
		},
		types.Requirement{
			Source: types.Universal{Kind: types.KindUnitState, Name: "TransportDependent"},
			Range:  types.RangeLocal,
		},
	)

	if en.Action == EstablishEmbassy {
		en.ActorReqs = append(en.ActorReqs, types.Requirement{
			Source: types.Universal{Kind: types.KindDiplRel, Name: "Has real embassy", Value: rules.DiplRelHasRealEmbassy},
			Range:  types.RangeLocal,
		})
	}

	if en.Action == SpyBribeUnit || en.Action == SpySabotageUnit {
		en.TargetReqs = append(en.TargetReqs, types.Requirement{
			Source:  types.Universal{Kind: types.KindMaxUnitsOnTile, Name: "1", Value: 1},
			Range:   types.RangeLocal,
			Present: true,
		})
	}
}

// actorContext is the actor side of an action: the unit where it stands,
// with the target's owner as the other player.
func (s *System) actorContext(actor *types.Unit, target *types.Player) rules.Context {
	ctx := s.eval.UnitContext(actor)
	ctx.OtherPlayer = target
	return ctx
}

func (s *System) cityTargetContext(city *types.City, actor *types.Player) rules.Context {
	ctx := s.eval.CityContext(city)
	ctx.OtherPlayer = actor
	return ctx
}

func (s *System) unitTargetContext(u *types.Unit, actor *types.Player) rules.Context {
	ctx := s.eval.UnitContext(u)
	ctx.City = s.eval.World.TileCity(u.Tile)
	ctx.OtherPlayer = actor
	return ctx
}

func (s *System) checkKinds(act types.ActionID, want TargetKind) bool {
	a, ok := Get(act)
	if !ok {
		s.log.Error().Int("action", int(act)).Msg("unknown action")
		return false
	}
	if a.Target != want {
		s.log.Error().Str("action", a.RuleName).Msg("action used against the wrong target kind")
		return false
	}
	return true
}

// enabled reports whether any enabler of act has both vectors certainly
// active.
func (s *System) enabled(act types.ActionID, actorCtx, targetCtx rules.Context) bool {
	for _, en := range s.enablers[act] {
		if s.eval.AreActive(actorCtx, en.ActorReqs, rules.Certain) &&
			s.eval.AreActive(targetCtx, en.TargetReqs, rules.Certain) {
			return true
		}
	}
	return false
}

// aloneOnTile reports whether u is the only unit on its tile.
func (s *System) aloneOnTile(u *types.Unit) bool {
	return len(s.eval.World.UnitsOnTile(u.Tile)) == 1
}

// EnabledUnitOnCity reports whether actor may do act to city as far as
// the enablers are concerned.
func (s *System) EnabledUnitOnCity(act types.ActionID, actor *types.Unit, city *types.City) bool {
	if actor == nil || city == nil || !s.checkKinds(act, TargetCity) {
		return false
	}
	w := s.eval.World
	return s.enabled(act,
		s.actorContext(actor, w.CityOwner(city)),
		s.cityTargetContext(city, w.UnitOwner(actor)))
}

// EnabledUnitOnUnit reports whether actor may do act to target as far as
// the enablers are concerned. Bribing and sabotaging a unit also need the
// target to be alone on its tile.
func (s *System) EnabledUnitOnUnit(act types.ActionID, actor, target *types.Unit) bool {
	if actor == nil || target == nil || !s.checkKinds(act, TargetUnit) {
		return false
	}
	if !s.aloneOnTile(target) {
		return false
	}
	w := s.eval.World
	return s.enabled(act,
		s.actorContext(actor, w.UnitOwner(target)),
		s.unitTargetContext(target, w.UnitOwner(actor)))
}

// enabledLocal is whether act is enabled as the actor's owner can tell:
// yes if some enabler is known to be active, unknown if some enabler may
// be, no otherwise.
func (s *System) enabledLocal(act types.ActionID, viewer *types.Player, actorCtx, targetCtx rules.Context) tri.State {
	result := tri.No
	for _, en := range s.enablers[act] {
		current := tri.And(
			s.eval.EvalKnownAll(viewer, actorCtx, en.ActorReqs),
			s.eval.EvalKnownAll(viewer, targetCtx, en.TargetReqs))
		switch current {
		case tri.Yes:
			return tri.Yes
		case tri.Unknown:
			result = tri.Unknown
		}
	}
	return result
}

// LocalVsCity is whether actor may do act to city, as far as the actor's
// owner can tell.
func (s *System) LocalVsCity(act types.ActionID, actor *types.Unit, city *types.City) tri.State {
	if actor == nil || city == nil || !s.checkKinds(act, TargetCity) {
		return tri.No
	}
	w := s.eval.World
	actorOwner := w.UnitOwner(actor)
	return s.enabledLocal(act, actorOwner,
		s.actorContext(actor, w.CityOwner(city)),
		s.cityTargetContext(city, actorOwner))
}

// LocalVsUnit is whether actor may do act to target, as far as the
// actor's owner can tell.
func (s *System) LocalVsUnit(act types.ActionID, actor, target *types.Unit) tri.State {
	if actor == nil || target == nil || !s.checkKinds(act, TargetUnit) {
		return tri.No
	}
	if !s.aloneOnTile(target) {
		return tri.No
	}
	w := s.eval.World
	actorOwner := w.UnitOwner(actor)
	return s.enabledLocal(act, actorOwner,
		s.actorContext(actor, w.UnitOwner(target)),
		s.unitTargetContext(target, actorOwner))
}

// ImmuneGovernment reports whether a player under gov can never be the
// target of act. An action with no enablers does not count.
func (s *System) ImmuneGovernment(gov int, act types.ActionID) bool {
	if !Valid(act) || len(s.enablers[act]) == 0 {
		return false
	}
	for _, en := range s.enablers[act] {
		if rules.FulfilledByGovernment(gov, en.TargetReqs) {
			return false
		}
	}
	return true
}

// PossibleOnCity reports whether act could ever be done to city: some
// enabler's target vector is possibly active.
func (s *System) PossibleOnCity(act types.ActionID, actor *types.Player, city *types.City) bool {
	if city == nil || !s.checkKinds(act, TargetCity) {
		return false
	}
	ctx := s.cityTargetContext(city, actor)
	for _, en := range s.enablers[act] {
		if s.eval.AreActive(ctx, en.TargetReqs, rules.Possible) {
			return true
		}
	}
	return false
}
