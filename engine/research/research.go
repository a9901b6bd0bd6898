// Package research implements the per-player (or per-team, when research
// is pooled) technology model: invention states, reachability, the update
// sweep, cost and upkeep formulas, and goal helpers.
//
// A Registry owns one Research slot per player or team. All mutation goes
// through InventionSet followed by Update; Update is the only operation
// that restores the derived fields.
package research

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// BonusSource supplies player-wide effect values. It is implemented by
// the effects cache.
type BonusSource interface {
	PlayerBonus(p *types.Player, eft types.EffectType) int
}

// Notifier is called after Acquire or Lose completes, once the derived
// fields are current again. InventionSet alone does not notify.
type Notifier func(r *types.Research)

// Registry holds every research of a game session.
type Registry struct {
	defs    *state.Defs
	world   *state.World
	effects BonusSource
	slots   []*types.Research
	global  []bool
	notify  Notifier
	log     zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithNotifier sets the function called after each completed mutation.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) { r.notify = n }
}

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// New creates a registry with one slot per player, or per team when the
// ruleset pools research. Every slot knows A_NONE, which counts as the
// first tech researched, and has no goal.
func New(defs *state.Defs, world *state.World, effects BonusSource, opts ...Option) *Registry {
	reg := &Registry{
		defs:    defs,
		world:   world,
		effects: effects,
		global:  make([]bool, defs.AdvanceCount()),
		log:     log.Logger,
	}
	for _, o := range opts {
		o(reg)
	}

	n := len(world.Players)
	for _, p := range world.Players {
		if p != nil && p.Team+1 > n {
			n = p.Team + 1
		}
	}
	for i := 0; i < n; i++ {
		reg.slots = append(reg.slots, reg.newResearch(i))
	}
	if len(reg.global) > 0 {
		reg.global[types.ANone] = true
	}
	return reg
}

func (reg *Registry) newResearch(id int) *types.Research {
	r := &types.Research{
		ID:              id,
		TechsResearched: 1,
		TechGoal:        types.AUnset,
		Researching:     types.AUnset,
		Inventions:      make([]types.Invention, reg.defs.AdvanceCount()),
		KnownWithFlag:   map[string]int{},
	}
	for i := range r.Inventions {
		r.Inventions[i].RequiredTechs = make([]bool, reg.defs.AdvanceCount())
	}
	if len(r.Inventions) > 0 {
		r.Inventions[types.ANone].State = types.TechKnown
	}
	return r
}

// SetEffects wires the effects source after construction.
func (reg *Registry) SetEffects(e BonusSource) {
	reg.effects = e
}

// All returns every research slot in ID order.
func (reg *Registry) All() []*types.Research {
	return reg.slots
}

// ByID returns the research with the given number, or nil.
func (reg *Registry) ByID(id int) *types.Research {
	if id < 0 || id >= len(reg.slots) {
		return nil
	}
	return reg.slots[id]
}

// For returns the research a player contributes to.
func (reg *Registry) For(p *types.Player) *types.Research {
	if p == nil {
		return nil
	}
	if reg.defs.Game.TeamPooledResearch {
		return reg.ByID(p.Team)
	}
	return reg.ByID(p.ID)
}

// Members returns the alive players sharing a research.
func (reg *Registry) Members(r *types.Research) []*types.Player {
	var out []*types.Player
	if r == nil {
		return out
	}
	for _, p := range reg.world.AlivePlayers() {
		if reg.For(p) == r {
			out = append(out, p)
		}
	}
	return out
}

// Name is the rule name of a research: the team name when pooled,
// otherwise the player name.
func (reg *Registry) Name(r *types.Research) string {
	if r == nil {
		return ""
	}
	if reg.defs.Game.TeamPooledResearch {
		members := reg.Members(r)
		if len(members) == 1 {
			return members[0].Name
		}
		return "Team " + strconv.Itoa(r.ID)
	}
	if p := reg.world.Player(r.ID); p != nil {
		return p.Name
	}
	return ""
}

// InventionState returns the state of tech for r. A nil research reports
// whether anyone has ever known the tech.
func (reg *Registry) InventionState(r *types.Research, tech types.TechID) types.TechState {
	if !reg.defs.ValidAdvance(tech) {
		return types.TechUnknown
	}
	if r == nil {
		if reg.global[tech] {
			return types.TechKnown
		}
		return types.TechUnknown
	}
	return r.Inventions[tech].State
}

// InventionSet stores a new state and returns the old one. Setting a tech
// known marks it known to the world, which is never cleared.
func (reg *Registry) InventionSet(r *types.Research, tech types.TechID, value types.TechState) types.TechState {
	if r == nil || !reg.defs.ValidAdvance(tech) {
		return types.TechUnknown
	}
	old := r.Inventions[tech].State
	if old == value {
		return old
	}
	r.Inventions[tech].State = value
	if value == types.TechKnown {
		reg.global[tech] = true
	}
	return old
}

// Reachable reports whether the tech can ever be reached through the tech
// tree: its root requirement, and recursively both prerequisites, are
// reachable. A tech that is its own root is reachable only once known.
// Cycles in the tree are treated as unreachable.
func (reg *Registry) Reachable(r *types.Research, tech types.TechID) bool {
	return reg.reachable(r, tech, map[types.TechID]bool{})
}

func (reg *Registry) reachable(r *types.Research, tech types.TechID, visiting map[types.TechID]bool) bool {
	if !reg.defs.ValidAdvance(tech) {
		return false
	}
	adv := reg.defs.Advance(tech)
	root := adv.RootReq
	if root == types.ANone {
		return true
	}
	if root == tech {
		return reg.InventionState(r, tech) == types.TechKnown
	}
	if visiting[tech] {
		reg.log.Error().Str("tech", adv.Name).Msg("cycle in tech tree")
		return false
	}
	visiting[tech] = true
	defer delete(visiting, tech)

	return reg.reachable(r, root, visiting) &&
		reg.reachable(r, adv.Require[0], visiting) &&
		reg.reachable(r, adv.Require[1], visiting)
}

// Gettable reports whether the tech could be granted right now. The root
// requirement must be known. Unless reachableOK is set, both direct
// prerequisites must be known too, so no hole is left in the tree.
func (reg *Registry) Gettable(r *types.Research, tech types.TechID, reachableOK bool) bool {
	if !reg.defs.ValidAdvance(tech) {
		return false
	}
	adv := reg.defs.Advance(tech)
	if adv.RootReq != types.ANone && reg.InventionState(r, adv.RootReq) != types.TechKnown {
		return false
	}
	if reachableOK {
		return true
	}
	for _, req := range adv.Require {
		if req != types.ANone && reg.InventionState(r, req) != types.TechKnown {
			return false
		}
	}
	return true
}

// Update recomputes a research after any state change: unreachable techs
// become unknown, techs with both prerequisites known become available,
// and each tech's prerequisite set and total cost are rebuilt.
func (reg *Registry) Update(r *types.Research) {
	if r == nil {
		return
	}
	for i := int(types.AFirst); i < reg.defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		inv := &r.Inventions[i]

		if !reg.defs.ValidAdvance(tech) {
			inv.State = types.TechUnknown
			clearInvention(inv)
			continue
		}

		if !reg.Reachable(r, tech) {
			reg.InventionSet(r, tech, types.TechUnknown)
		} else {
			if reg.InventionState(r, tech) == types.TechPrereqsKnown {
				reg.InventionSet(r, tech, types.TechUnknown)
			}
			adv := reg.defs.Advance(tech)
			if reg.InventionState(r, tech) == types.TechUnknown &&
				reg.InventionState(r, adv.Require[0]) == types.TechKnown &&
				reg.InventionState(r, adv.Require[1]) == types.TechKnown {
				reg.InventionSet(r, tech, types.TechPrereqsKnown)
			}
		}

		clearInvention(inv)
		if inv.State == types.TechKnown {
			continue
		}

		researched := r.TechsResearched
		for _, j := range Closure(reg.defs, tech) {
			if j != tech {
				inv.RequiredTechs[j] = true
			}
			inv.NumRequiredTechs++
			inv.BulbsRequired += reg.TotalBulbsRequired(r, j, false)
			// Style 0 costs grow with each tech researched on the way.
			r.TechsResearched++
		}
		r.TechsResearched = researched
	}

	for flag := range r.KnownWithFlag {
		delete(r.KnownWithFlag, flag)
	}
	for i := range reg.defs.Advances {
		if r.Inventions[i].State != types.TechKnown {
			continue
		}
		for _, flag := range reg.defs.Advances[i].Flags {
			r.KnownWithFlag[flag]++
		}
	}

	reg.log.Debug().Str("research", reg.Name(r)).Int("techs", r.TechsResearched).Msg("research updated")
}

func clearInvention(inv *types.Invention) {
	for j := range inv.RequiredTechs {
		inv.RequiredTechs[j] = false
	}
	inv.NumRequiredTechs = 0
	inv.BulbsRequired = 0
}

// Closure lists a tech and every tech it requires, directly or
// indirectly, each once, in depth-first order starting with the tech.
func Closure(defs *state.Defs, tech types.TechID) []types.TechID {
	var out []types.TechID
	seen := map[types.TechID]bool{}
	var walk func(t types.TechID)
	walk = func(t types.TechID) {
		if t == types.ANone || seen[t] || !defs.ValidAdvance(t) {
			return
		}
		seen[t] = true
		out = append(out, t)
		adv := defs.Advance(t)
		walk(adv.Require[0])
		walk(adv.Require[1])
	}
	walk(tech)
	return out
}

// PlayerKnows reports whether the player's research knows tech.
func (reg *Registry) PlayerKnows(pid int, tech types.TechID) bool {
	r := reg.For(reg.world.Player(pid))
	if r == nil {
		return false
	}
	return reg.InventionState(r, tech) == types.TechKnown
}

// EverKnown reports whether any research has ever known tech.
func (reg *Registry) EverKnown(tech types.TechID) bool {
	return reg.defs.ValidAdvance(tech) && reg.global[tech]
}

// KnownWithFlag returns how many known techs of the player carry flag.
func (reg *Registry) KnownWithFlag(pid int, flag string) int {
	r := reg.For(reg.world.Player(pid))
	if r == nil {
		return 0
	}
	return r.KnownWithFlag[flag]
}

// GlobalAdvances returns a copy of the known-to-anyone flags.
func (reg *Registry) GlobalAdvances() []bool {
	return append([]bool(nil), reg.global...)
}
