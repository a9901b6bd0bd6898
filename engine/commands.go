package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/parser"
	"github.com/nathoo/civcore/engine/resolve"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/script"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/engine/want"
	"github.com/nathoo/civcore/types"
)

type command struct {
	verb    string
	usage   string
	minArgs int
	run     func(s *Session, cmd parser.Command) ([]string, error)
}

var (
	commandList []command
	commands    map[string]command
)

func init() {
	commandList = []command{
		{"research", "research <player>", 1, (*Session).cmdResearch},
		{"give", "give <player> <tech>", 2, (*Session).cmdGive},
		{"goal", "goal <player> <tech>", 2, (*Session).cmdGoal},
		{"bulbs", "bulbs <player> <n>", 2, (*Session).cmdBulbs},
		{"upkeep", "upkeep <player>", 1, (*Session).cmdUpkeep},
		{"effect", "effect <type> <player> [city]", 2, (*Session).cmdEffect},
		{"can", "can <action> <unit> <target>", 3, (*Session).cmdCan},
		{"prob", "prob <action> <unit> <target>", 3, (*Session).cmdProb},
		{"do", "do <action> <unit> <target> [tech|building]", 3, (*Session).cmdDo},
		{"want", "want <player> <city>", 2, (*Session).cmdWant},
		{"turn", "turn", 0, (*Session).cmdTurn},
		{"help", "help", 0, (*Session).cmdHelp},
	}
	commands = make(map[string]command, len(commandList))
	for _, c := range commandList {
		commands[c.verb] = c
	}
}

func (s *Session) cmdHelp(parser.Command) ([]string, error) {
	out := []string{"Commands:"}
	for _, c := range commandList {
		out = append(out, "  "+c.usage)
	}
	out = append(out, `Quote names with spaces: give caesar "Bronze Working".`)
	return out, nil
}

func (s *Session) playerResearch(name string) (*types.Player, *types.Research, error) {
	p, err := resolve.Player(s.World, name)
	if err != nil {
		return nil, nil, err
	}
	r := s.Research.For(p)
	if r == nil {
		return nil, nil, fmt.Errorf("%s has no research", p.Name)
	}
	return p, r, nil
}

// ResearchRow is one tech's line in a research listing.
type ResearchRow struct {
	Tech      string
	State     types.TechState
	Cost      int
	Reachable bool
	OnGoal    bool
}

// ResearchRows lists every tech with its state and cost for p's research.
func (s *Session) ResearchRows(p *types.Player) []ResearchRow {
	r := s.Research.For(p)
	if r == nil {
		return nil
	}
	var rows []ResearchRow
	for i := int(types.AFirst); i < s.Defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if !s.Defs.ValidAdvance(tech) {
			continue
		}
		rows = append(rows, ResearchRow{
			Tech:      s.Defs.Advances[i].Name,
			State:     s.Research.InventionState(r, tech),
			Cost:      s.Research.TotalBulbsRequired(r, tech, false),
			Reachable: s.Research.Reachable(r, tech),
			OnGoal:    r.TechGoal == tech || s.Research.GoalTechReq(r, r.TechGoal, tech),
		})
	}
	return rows
}

// ResearchSummary is the one-line status of a research.
func (s *Session) ResearchSummary(p *types.Player) string {
	r := s.Research.For(p)
	if r == nil {
		return p.Name + ": no research"
	}
	cost := 0
	if r.Researching != types.AUnset {
		cost = s.Research.TotalBulbsRequired(r, r.Researching, false)
	}
	return fmt.Sprintf("%s: researching %s (%d/%d bulbs), goal %s, %d techs researched",
		s.Research.Name(r),
		s.Research.AdvanceName(r, r.Researching), r.BulbsResearched, cost,
		s.Research.AdvanceName(r, r.TechGoal), r.TechsResearched)
}

func (s *Session) cmdResearch(cmd parser.Command) ([]string, error) {
	p, _, err := s.playerResearch(cmd.Rest(0))
	if err != nil {
		return nil, err
	}
	out := []string{s.ResearchSummary(p)}
	for _, row := range s.ResearchRows(p) {
		line := fmt.Sprintf("  %-20s %-14s %6d", row.Tech, row.State, row.Cost)
		if row.OnGoal {
			line += "  *"
		}
		out = append(out, line)
	}
	return out, nil
}

func (s *Session) cmdGive(cmd parser.Command) ([]string, error) {
	p, r, err := s.playerResearch(cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	tech, err := resolve.Tech(s.Defs, cmd.Rest(1))
	if err != nil {
		return nil, err
	}
	if tech == types.AUnset {
		return nil, fmt.Errorf("cannot give %q", cmd.Rest(1))
	}
	if tech != types.AFuture && s.Research.InventionState(r, tech) == types.TechKnown {
		return []string{fmt.Sprintf("%s already knows %s.", p.Name, s.Research.AdvanceName(r, tech))}, nil
	}
	name := s.Research.AdvanceName(r, tech)
	if err := s.Research.Acquire(r, tech); err != nil {
		return nil, err
	}
	s.techEvent(p, tech, "gained")
	return []string{fmt.Sprintf("%s acquires %s.", p.Name, name)}, nil
}

func (s *Session) cmdGoal(cmd parser.Command) ([]string, error) {
	p, r, err := s.playerResearch(cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	tech, err := resolve.Tech(s.Defs, cmd.Rest(1))
	if err != nil {
		return nil, err
	}
	if tech == types.AUnset {
		r.TechGoal = types.AUnset
		return []string{p.Name + " has no research goal."}, nil
	}
	if tech == types.AFuture {
		return nil, fmt.Errorf("future techs cannot be a goal")
	}
	if !s.Research.Reachable(r, tech) {
		return nil, fmt.Errorf("%s cannot reach %s", p.Name, s.Research.AdvanceName(r, tech))
	}
	if s.Research.InventionState(r, tech) == types.TechKnown {
		return []string{fmt.Sprintf("%s already knows %s.", p.Name, s.Research.AdvanceName(r, tech))}, nil
	}

	r.TechGoal = tech
	if r.Researching == types.AUnset {
		r.Researching = s.Research.GoalStep(r, tech)
	}
	return []string{fmt.Sprintf("%s sets goal %s: %d techs, %d bulbs. Researching %s.",
		p.Name, s.Research.AdvanceName(r, tech),
		s.Research.GoalUnknownTechs(r, tech), s.Research.GoalBulbsRequired(r, tech),
		s.Research.AdvanceName(r, r.Researching))}, nil
}

func (s *Session) cmdBulbs(cmd parser.Command) ([]string, error) {
	p, r, err := s.playerResearch(cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(cmd.Arg(1))
	if err != nil {
		return nil, fmt.Errorf("bulbs: %q is not a number", cmd.Arg(1))
	}
	out := s.addBulbs(p, r, n)
	return append(out, s.ResearchSummary(p)), nil
}

// addBulbs credits n bulbs and reports the techs completed and lost.
func (s *Session) addBulbs(p *types.Player, r *types.Research, n int) []string {
	var out []string
	gained, lost := s.Research.AddBulbs(r, n, s.RNG)
	for _, tech := range gained {
		out = append(out, fmt.Sprintf("%s learns %s.", p.Name, s.Research.AdvanceName(r, tech)))
		s.techEvent(p, tech, "researched")
	}
	for _, tech := range lost {
		out = append(out, fmt.Sprintf("%s forgets %s.", p.Name, s.Research.AdvanceName(r, tech)))
	}
	return out
}

func (s *Session) techEvent(p *types.Player, tech types.TechID, source string) {
	s.emit(script.TechResearched, map[string]any{"tech": tech, "player": p, "source": source})
}

func (s *Session) cmdUpkeep(cmd parser.Command) ([]string, error) {
	p, _, err := s.playerResearch(cmd.Rest(0))
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s pays %d bulbs of tech upkeep per turn.", p.Name, s.Research.Upkeep(p))}, nil
}

func (s *Session) cmdEffect(cmd parser.Command) ([]string, error) {
	eft, err := resolve.EffectType(cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	p, err := resolve.Player(s.World, cmd.Arg(1))
	if err != nil {
		return nil, err
	}
	ctx := s.Eval.PlayerContext(p)
	where := p.Name
	if len(cmd.Args) > 2 {
		c, err := resolve.City(s.World, cmd.Rest(2))
		if err != nil {
			return nil, err
		}
		ctx = s.Eval.CityContext(c)
		where = c.Name
	}
	line := fmt.Sprintf("%s in %s = %d", eft, where, s.Effects.Value(eft, ctx))
	if !s.Effects.Known(p, eft, ctx) {
		line += " (not fully known to " + p.Name + ")"
	}
	return []string{line}, nil
}

// actionTarget is the resolved actor and target of an action command.
type actionTarget struct {
	act    types.ActionID
	actor  *types.Unit
	city   *types.City
	target *types.Unit
}

func (t actionTarget) againstCity() bool { return t.city != nil }

func (s *Session) resolveAction(cmd parser.Command) (actionTarget, error) {
	var t actionTarget
	act, err := resolve.Action(cmd.Arg(0))
	if err != nil {
		return t, err
	}
	t.act = act
	if t.actor, err = resolve.Unit(s.Defs, s.World, cmd.Arg(1)); err != nil {
		return t, err
	}
	a, _ := actions.Get(act)
	if a.Target == actions.TargetCity {
		t.city, err = resolve.City(s.World, cmd.Arg(2))
	} else {
		t.target, err = resolve.Unit(s.Defs, s.World, cmd.Arg(2))
	}
	return t, err
}

func (s *Session) targetName(t actionTarget) string {
	if t.againstCity() {
		return t.city.Name
	}
	return s.unitName(t.target)
}

func (s *Session) unitName(u *types.Unit) string {
	name := "unit"
	if u.Type >= 0 && u.Type < len(s.Defs.UnitTypes) {
		name = s.Defs.UnitTypes[u.Type].Name
	}
	if p := s.World.UnitOwner(u); p != nil {
		name = p.Name + "'s " + name
	}
	return fmt.Sprintf("%s #%d", name, u.ID)
}

func (s *Session) prob(t actionTarget) actions.Prob {
	if t.againstCity() {
		return s.Actions.ProbVsCity(t.act, t.actor, t.city)
	}
	return s.Actions.ProbVsUnit(t.act, t.actor, t.target)
}

func (s *Session) enabled(t actionTarget) bool {
	if t.againstCity() {
		return s.Actions.EnabledUnitOnCity(t.act, t.actor, t.city)
	}
	return s.Actions.EnabledUnitOnUnit(t.act, t.actor, t.target)
}

func (s *Session) cmdCan(cmd parser.Command) ([]string, error) {
	t, err := s.resolveAction(cmd)
	if err != nil {
		return nil, err
	}
	a, _ := actions.Get(t.act)
	local := s.Actions.LocalVsUnit(t.act, t.actor, t.target)
	if t.againstCity() {
		local = s.Actions.LocalVsCity(t.act, t.actor, t.city)
	}
	out := []string{
		fmt.Sprintf("%s: %s -> %s", a.RuleName, s.unitName(t.actor), s.targetName(t)),
		fmt.Sprintf("  enabled: %v", s.enabled(t)),
		fmt.Sprintf("  as seen by its owner: %s", local),
	}
	if t.againstCity() {
		owner := s.World.CityOwner(t.city)
		out = append(out, fmt.Sprintf("  possible at all: %v", s.Actions.PossibleOnCity(t.act, s.World.UnitOwner(t.actor), t.city)))
		if owner != nil && s.Actions.ImmuneGovernment(owner.Government, t.act) {
			out = append(out, fmt.Sprintf("  %s's government is immune", owner.Name))
		}
	}
	return out, nil
}

// ActionRow is one action's line in an action listing.
type ActionRow struct {
	Action  string
	Target  string
	Enabled bool
	Local   tri.State
	Prob    actions.Prob
}

// ActionRows lists every action actor could attempt against city, or
// against target when city is nil.
func (s *Session) ActionRows(actor *types.Unit, city *types.City, target *types.Unit) []ActionRow {
	var rows []ActionRow
	for _, a := range actions.All() {
		t := actionTarget{act: a.ID, actor: actor}
		switch {
		case a.Target == actions.TargetCity && city != nil:
			t.city = city
		case a.Target == actions.TargetUnit && target != nil:
			t.target = target
		default:
			continue
		}
		local := s.Actions.LocalVsUnit(t.act, actor, t.target)
		if t.againstCity() {
			local = s.Actions.LocalVsCity(t.act, actor, t.city)
		}
		rows = append(rows, ActionRow{
			Action:  a.RuleName,
			Target:  s.targetName(t),
			Enabled: s.enabled(t),
			Local:   local,
			Prob:    s.prob(t),
		})
	}
	return rows
}

func (s *Session) cmdProb(cmd parser.Command) ([]string, error) {
	t, err := s.resolveAction(cmd)
	if err != nil {
		return nil, err
	}
	return []string{actions.PrepareUIName(t.act, "", s.prob(t))}, nil
}

func (s *Session) cmdWant(cmd parser.Command) ([]string, error) {
	p, err := resolve.Player(s.World, cmd.Arg(0))
	if err != nil {
		return nil, err
	}
	c, err := resolve.City(s.World, cmd.Rest(1))
	if err != nil {
		return nil, err
	}
	req := s.wantRequest(p, c)

	type scored struct {
		name string
		want int
	}
	var list []scored
	for _, impr := range s.Defs.Improvements {
		if c.Buildings[impr.ID] {
			continue
		}
		if s.Defs.IsGreatWonder(impr.ID) && s.World.WondersEver[impr.ID] {
			continue
		}
		list = append(list, scored{impr.Name, s.Want.ImprovementWant(req, impr.ID)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].want > list[j].want })

	out := []string{fmt.Sprintf("%s: want of active effects in %s = %d", p.Name, c.Name, s.Want.ActiveSum(req, 0))}
	for _, sc := range list {
		out = append(out, fmt.Sprintf("  %-20s %6d", sc.name, sc.want))
	}
	return out, nil
}

// wantRequest builds the scoring situation of p's view of c, with an
// advisor summary counted from p's units.
func (s *Session) wantRequest(p *types.Player, c *types.City) want.Request {
	adv := &want.AdvData{
		UnitsByClass: make([]int, len(s.Defs.UnitClasses)),
		WantsScience: true,
	}
	for _, u := range s.World.PlayerUnits(p.ID) {
		if u.Type < 0 || u.Type >= len(s.Defs.UnitTypes) {
			continue
		}
		ut := s.Defs.UnitTypes[u.Type]
		if ut.Class >= 0 && ut.Class < len(adv.UnitsByClass) {
			adv.UnitsByClass[ut.Class]++
		}
		if ut.ObsoletedBy >= 0 {
			adv.Upgradeable++
		}
	}
	return want.Request{
		Player:  p,
		City:    c,
		Capital: c.Capital,
		Turns:   want.MORT,
		Cities:  1,
		Players: len(s.World.AlivePlayers()),
		Adv:     adv,
	}
}

func (s *Session) cmdTurn(parser.Command) ([]string, error) {
	s.World.Turn++
	years := s.Effects.Value(types.EffectTurnYears, rules.Context{})
	if years == 0 {
		years = 1
	}
	s.World.Year += years

	out := []string{fmt.Sprintf("Turn %d, %s.", s.World.Turn, yearString(s.World.Year))}
	for _, p := range s.World.AlivePlayers() {
		r := s.Research.For(p)
		if r == nil {
			continue
		}
		upkeep := s.Research.Upkeep(p)
		if net := p.BulbsLastTurn - upkeep; net != 0 {
			out = append(out, s.addBulbs(p, r, net)...)
		}
	}
	s.emit(script.TurnStarted, map[string]any{"turn": s.World.Turn, "year": s.World.Year})
	return out, nil
}

func yearString(y int) string {
	if y < 0 {
		return strconv.Itoa(-y) + " BC"
	}
	return strconv.Itoa(y) + " AD"
}

// Players lists the names of the players, for completion and status.
func (s *Session) Players() []string {
	var names []string
	for _, p := range s.World.Players {
		if p != nil {
			names = append(names, p.Name)
		}
	}
	return names
}

// Verbs lists the console commands.
func Verbs() []string {
	out := make([]string, len(commandList))
	for i, c := range commandList {
		out[i] = c.verb
	}
	return out
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}
