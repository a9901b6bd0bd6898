// Package engine provides the Session: it owns every registry of a game
// and runs console commands against them through Step.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/effects"
	"github.com/nathoo/civcore/engine/events"
	"github.com/nathoo/civcore/engine/parser"
	"github.com/nathoo/civcore/engine/research"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/save"
	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/want"
	"github.com/nathoo/civcore/types"
)

// Settings copies server settings into the ruleset's game info.
type Settings interface {
	Apply(g *types.GameInfo)
}

// Session holds the game definitions, the world and every registry built
// over them.
type Session struct {
	Defs     *state.Defs
	World    *state.World
	Eval     *rules.Evaluator
	Effects  *effects.Cache
	Research *research.Registry
	Actions  *actions.System
	Want     *want.Scorer
	Hooks    script.Hooks
	RNG      *RNG

	log       zerolog.Logger
	ownsHooks bool
	pending   []types.Event
	changed   []int
}

type options struct {
	log      zerolog.Logger
	hooks    script.Hooks
	seed     uint64
	seeded   bool
	settings Settings
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger handed to every registry.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithHooks replaces the ruleset script as the receiver of signals.
func WithHooks(h script.Hooks) Option {
	return func(o *options) { o.hooks = h }
}

// WithSeed fixes the RNG seed.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed, o.seeded = seed, true }
}

// WithSettings applies server settings to the ruleset before anything is
// computed from it.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// New builds a session over defs and world. Tech costs are computed, the
// enablers get their hard requirements, every player receives the global
// and national initial techs, and the ruleset script is started unless
// hooks were given.
func New(defs *state.Defs, world *state.World, opts ...Option) (*Session, error) {
	o := options{log: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = uint64(time.Now().UnixNano())
	}
	if o.settings != nil {
		o.settings.Apply(&defs.Game)
	}

	research.PrecalcCosts(defs)
	eval := rules.New(defs, world)
	cache := effects.New(eval, defs.Effects)
	var s *Session
	reg := research.New(defs, world, cache,
		research.WithLogger(o.log),
		research.WithNotifier(func(r *types.Research) { s.researchChanged(r) }))
	eval.Techs = reg

	s = &Session{
		Defs:     defs,
		World:    world,
		Eval:     eval,
		Effects:  cache,
		Research: reg,
		Actions:  actions.New(eval, cache, reg, actions.WithLogger(o.log)),
		Want:     want.New(cache, reg),
		Hooks:    o.hooks,
		RNG:      NewRNG(o.seed),
		log:      o.log,
	}

	for i, en := range defs.Enablers {
		en.ActorReqs = append([]types.Requirement(nil), en.ActorReqs...)
		en.TargetReqs = append([]types.Requirement(nil), en.TargetReqs...)
		actions.AppendHard(&en)
		if err := s.Actions.Add(en); err != nil {
			return nil, fmt.Errorf("enabler %d: %w", i, err)
		}
	}

	s.initTechs()

	if s.Hooks == nil {
		if defs.Script == "" {
			s.Hooks = script.Nop{}
		} else {
			l, err := script.NewLua(defs.Script, script.WithLogger(o.log))
			if err != nil {
				return nil, fmt.Errorf("ruleset script: %w", err)
			}
			s.Hooks = l
			s.ownsHooks = true
		}
	}
	return s, nil
}

// initTechs gives every player the ruleset's initial techs. With pooled
// research a team's members share the grants.
func (s *Session) initTechs() {
	for _, p := range s.World.Players {
		if p == nil {
			continue
		}
		r := s.Research.For(p)
		if r == nil {
			continue
		}
		techs := append([]types.TechID(nil), s.Defs.Game.GlobalInitTechs...)
		if p.Nation >= 0 && p.Nation < len(s.Defs.Nations) {
			techs = append(techs, s.Defs.Nations[p.Nation].InitTechs...)
		}
		for _, tech := range techs {
			if !s.Defs.ValidAdvance(tech) || tech == types.ANone {
				s.log.Warn().Int("tech", int(tech)).Str("player", p.Name).Msg("skipping invalid initial tech")
				continue
			}
			if s.Research.InventionState(r, tech) == types.TechKnown {
				continue
			}
			s.Research.InventionSet(r, tech, types.TechKnown)
			r.TechsResearched++
		}
	}
	for _, r := range s.Research.All() {
		s.Research.Update(r)
	}
}

// Close releases the script VM if the session started it.
func (s *Session) Close() {
	if l, ok := s.Hooks.(*script.Lua); ok && s.ownsHooks {
		l.Close()
	}
}

// Step processes one console command and returns the result. Events the
// command caused are dispatched to the hooks once, after it completes.
func (s *Session) Step(input string) types.Result {
	var result types.Result
	cmd := parser.Parse(input)
	if cmd.Verb == "" {
		result.Output = append(result.Output, "Type help for a list of commands.")
		return result
	}

	c, ok := commands[cmd.Verb]
	if !ok {
		result.Output = append(result.Output, fmt.Sprintf("Unknown command %q. Type help for a list of commands.", cmd.Verb))
		return result
	}
	if len(cmd.Args) < c.minArgs {
		result.Output = append(result.Output, "Usage: "+c.usage)
		return result
	}

	s.pending = nil
	s.changed = nil
	out, err := c.run(s, cmd)
	result.Output = append(result.Output, out...)
	if err != nil {
		result.Output = append(result.Output, err.Error())
	}

	result.Events = s.pending
	result.Changed = s.changed
	s.pending = nil
	for _, ev := range events.Dispatch(result.Events, s.Hooks) {
		s.log.Debug().Str("signal", ev.Type).Msg("emission stopped by script")
	}
	return result
}

// researchChanged records a research whose techs changed during the
// current command.
func (s *Session) researchChanged(r *types.Research) {
	for _, id := range s.changed {
		if id == r.ID {
			return
		}
	}
	s.changed = append(s.changed, r.ID)
}

func (s *Session) emit(signal string, data map[string]any) {
	s.pending = append(s.pending, types.Event{Type: signal, Data: data})
}

// Save serializes the research state with the session metadata.
func (s *Session) Save(version string) ([]byte, error) {
	meta := save.Meta{
		Version:     version,
		RNGSeed:     s.RNG.Seed(),
		RNGPosition: s.RNG.Position(),
	}
	if l, ok := s.Hooks.(*script.Lua); ok {
		meta.Script = l.Code()
	}
	return save.Save(s.Defs, s.World, s.Research, meta)
}

// Restore applies a save made by Save. The RNG resumes where it was.
func (s *Session) Restore(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return err
	}
	if sd.Ruleset != s.Defs.Game.Name {
		return fmt.Errorf("save is for ruleset %q, not %q", sd.Ruleset, s.Defs.Game.Name)
	}
	if err := save.Apply(sd, s.World, s.Research); err != nil {
		return err
	}
	s.RNG = RestoreRNG(sd.RNGSeed, sd.RNGPosition)
	return nil
}
