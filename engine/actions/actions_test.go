package actions

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/civcore/engine/effects"
	"github.com/nathoo/civcore/engine/research"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/state/statetest"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

const (
	greekDiplomat = 10
	openTile      = 8
)

type fixedRoll int

func (f fixedRoll) Roll(sides int) int { return int(f) % sides }

func setup(t *testing.T, effs ...types.Effect) (*System, *state.World, *research.Registry) {
	t.Helper()
	defs := statetest.Defs()
	defs.Effects = append(defs.Effects, effs...)
	w := statetest.World()
	eval := rules.New(defs, w)
	cache := effects.New(eval, defs.Effects)
	reg := research.New(defs, w, cache, research.WithLogger(zerolog.Nop()))
	eval.Techs = reg
	for _, r := range reg.All() {
		reg.Update(r)
	}
	return New(eval, cache, reg, WithLogger(zerolog.Nop())), w, reg
}

func addUnit(w *state.World, id, utype, owner, tile int) *types.Unit {
	u := &types.Unit{ID: id, Type: utype, Owner: owner, Tile: tile, HP: 10, HomeCity: -1, Transporter: -1}
	w.Units[id] = u
	return u
}

func hardEnabler(act types.ActionID, actor, target []types.Requirement) types.ActionEnabler {
	en := types.ActionEnabler{Action: act, ActorReqs: actor, TargetReqs: target}
	AppendHard(&en)
	return en
}

func TestCatalog(t *testing.T) {
	require.Len(t, All(), int(Count))
	for i, a := range All() {
		if a.ID != types.ActionID(i) {
			t.Errorf("All()[%d].ID = %d", i, a.ID)
		}
	}

	tests := []struct {
		name string
		want types.ActionID
		ok   bool
	}{
		{"Establish Embassy", EstablishEmbassy, true},
		{"establish_embassy", EstablishEmbassy, true},
		{"Bribe Unit", SpyBribeUnit, true},
		{"Fly To Moon", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ByName(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ByName(%q) = %d, %v, want %d, %v", tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := Get(Count); ok {
		t.Error("Get(Count) ok = true, want false")
	}
}

func TestAppendHard(t *testing.T) {
	tests := []struct {
		act        types.ActionID
		wantActor  int
		wantTarget int
	}{
		{SpyPoison, 2, 0},
		{EstablishEmbassy, 3, 0},
		{SpyBribeUnit, 2, 1},
		{SpySabotageUnit, 2, 1},
	}
	for _, tt := range tests {
		t.Run(UIName(tt.act), func(t *testing.T) {
			en := hardEnabler(tt.act, nil, nil)
			if len(en.ActorReqs) != tt.wantActor || len(en.TargetReqs) != tt.wantTarget {
				t.Errorf("AppendHard() = %d actor, %d target reqs, want %d, %d",
					len(en.ActorReqs), len(en.TargetReqs), tt.wantActor, tt.wantTarget)
			}
		})
	}
}

func TestEnablersAreAlternatives(t *testing.T) {
	monarchy := statetest.Req(types.KindGovernment, "Monarchy", statetest.Monarchy, types.RangePlayer)
	s, w, _ := setup(t)
	diplomat := w.Units[statetest.RomanDiplomat]
	athens := w.Cities[statetest.Athens]

	require.NoError(t, s.Add(hardEnabler(SpyInvestigateCity, []types.Requirement{monarchy}, nil)))
	if s.EnabledUnitOnCity(SpyInvestigateCity, diplomat, athens) {
		t.Error("EnabledUnitOnCity() with only a failing enabler = true, want false")
	}

	require.NoError(t, s.Add(hardEnabler(SpyInvestigateCity, nil, nil)))
	if !s.EnabledUnitOnCity(SpyInvestigateCity, diplomat, athens) {
		t.Error("EnabledUnitOnCity() with one passing enabler = false, want true")
	}

	if s.EnabledUnitOnCity(SpyPoison, diplomat, athens) {
		t.Error("EnabledUnitOnCity() with no enablers = true, want false")
	}
	if s.EnabledUnitOnCity(SpyBribeUnit, diplomat, athens) {
		t.Error("EnabledUnitOnCity() for a unit-target action = true, want false")
	}
	require.Error(t, s.Add(types.ActionEnabler{Action: Count}))
}

func TestNonDiplomatActor(t *testing.T) {
	s, w, _ := setup(t)
	require.NoError(t, s.Add(hardEnabler(EstablishEmbassy, nil, nil)))
	warriors := addUnit(w, 11, statetest.Warriors, statetest.Caesar, statetest.DiplomatTile)

	if s.EnabledUnitOnCity(EstablishEmbassy, warriors, w.Cities[statetest.Athens]) {
		t.Error("EnabledUnitOnCity(warriors) = true, want false")
	}
	if got := s.ProbVsCity(EstablishEmbassy, warriors, w.Cities[statetest.Athens]); got != ProbImpossible {
		t.Errorf("ProbVsCity(warriors) = %v, want impossible", got)
	}
}

func TestEstablishEmbassy(t *testing.T) {
	s, w, _ := setup(t)
	require.NoError(t, s.Add(hardEnabler(EstablishEmbassy, nil, nil)))
	diplomat := w.Units[statetest.RomanDiplomat]
	athens := w.Cities[statetest.Athens]

	require.True(t, s.EnabledUnitOnCity(EstablishEmbassy, diplomat, athens))
	if got := s.ProbVsCity(EstablishEmbassy, diplomat, athens); got != ProbCertain {
		t.Errorf("ProbVsCity() = %v, want certain", got)
	}

	w.Player(statetest.Caesar).Embassies[statetest.Pericles] = true
	if s.EnabledUnitOnCity(EstablishEmbassy, diplomat, athens) {
		t.Error("EnabledUnitOnCity() with an existing embassy = true, want false")
	}
	if got := s.ProbVsCity(EstablishEmbassy, diplomat, athens); got != ProbImpossible {
		t.Errorf("ProbVsCity() with an existing embassy = %v, want impossible", got)
	}
}

func TestDiplomatBattle(t *testing.T) {
	walls := statetest.Req(types.KindImprovement, "City Walls", statetest.CityWalls, types.RangeCity)

	tests := []struct {
		name      string
		attacker  int
		veteran   int
		defender  int
		tile      int
		fortress  bool
		spyResist bool
		want      Prob
	}{
		{"diplomat vs diplomat", statetest.Diplomat, 0, statetest.Diplomat, openTile, false, false, 100},
		{"spy attacker", statetest.Spy, 0, statetest.Diplomat, openTile, false, false, 150},
		{"spy defender", statetest.Diplomat, 0, statetest.Spy, openTile, false, false, 50},
		{"veteran attacker", statetest.Diplomat, 1, statetest.Spy, openTile, false, false, 150},
		{"defenseless target", statetest.Diplomat, 0, statetest.Warriors, openTile, false, false, 200},
		{"diplomat defense base", statetest.Diplomat, 0, statetest.Diplomat, openTile, true, false, 76},
		{"city without resistance", statetest.Diplomat, 0, statetest.Diplomat, statetest.AthensCityTile, false, false, 100},
		{"unseen city resistance", statetest.Diplomat, 0, statetest.Diplomat, statetest.AthensCityTile, false, true, ProbNotKnown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var effs []types.Effect
			if tt.spyResist {
				effs = append(effs, types.Effect{Type: types.EffectSpyResistant, Value: 50, Reqs: []types.Requirement{walls}})
			}
			s, w, _ := setup(t, effs...)
			delete(w.Units, statetest.GreekWarriors)
			attacker := w.Units[statetest.RomanDiplomat]
			attacker.Type = tt.attacker
			attacker.Veteran = tt.veteran
			defender := addUnit(w, greekDiplomat, tt.defender, statetest.Pericles, tt.tile)
			if tt.fortress {
				w.Tile(tt.tile).Extras = []int{statetest.Fortress}
			}

			if got := s.diplomatBattle(attacker, defender); got != tt.want {
				t.Errorf("diplomatBattle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSabotageUnitProb(t *testing.T) {
	s, w, _ := setup(t)
	require.NoError(t, s.Add(hardEnabler(SpySabotageUnit, nil, nil)))
	diplomat := w.Units[statetest.RomanDiplomat]
	target := addUnit(w, greekDiplomat, statetest.Diplomat, statetest.Pericles, openTile)

	if got := s.ProbVsUnit(SpySabotageUnit, diplomat, target); got != 100 {
		t.Errorf("ProbVsUnit() = %v, want 100", got)
	}

	target.HP = 1
	if got := s.ProbVsUnit(SpySabotageUnit, diplomat, target); got != ProbImpossible {
		t.Errorf("ProbVsUnit() on a 1 HP unit = %v, want impossible", got)
	}
}

func TestBribeRequiresLoneTarget(t *testing.T) {
	s, w, _ := setup(t)
	require.NoError(t, s.Add(types.ActionEnabler{Action: SpyBribeUnit}))
	diplomat := w.Units[statetest.RomanDiplomat]
	target := addUnit(w, greekDiplomat, statetest.Warriors, statetest.Pericles, openTile)

	require.True(t, s.EnabledUnitOnUnit(SpyBribeUnit, diplomat, target))
	if got := s.ProbVsUnit(SpyBribeUnit, diplomat, target); got != ProbCertain {
		t.Errorf("ProbVsUnit() = %v, want certain", got)
	}

	addUnit(w, 11, statetest.Warriors, statetest.Pericles, openTile)
	if s.EnabledUnitOnUnit(SpyBribeUnit, diplomat, target) {
		t.Error("EnabledUnitOnUnit() on a stack = true, want false")
	}
	if got := s.ProbVsUnit(SpyBribeUnit, diplomat, target); got != ProbImpossible {
		t.Errorf("ProbVsUnit() on a stack = %v, want impossible", got)
	}
}

func TestStealTechProb(t *testing.T) {
	s, w, reg := setup(t)
	require.NoError(t, s.Add(hardEnabler(SpyStealTech, nil, nil)))
	diplomat := w.Units[statetest.RomanDiplomat]
	athens := w.Cities[statetest.Athens]
	greeks := reg.For(w.Player(statetest.Pericles))

	if got := s.ProbVsCity(SpyStealTech, diplomat, athens); got != ProbNotKnown {
		t.Errorf("ProbVsCity() without embassy = %v, want not known", got)
	}

	w.Player(statetest.Caesar).Embassies[statetest.Pericles] = true
	if got := s.ProbVsCity(SpyStealTech, diplomat, athens); got != ProbImpossible {
		t.Errorf("ProbVsCity() with nothing to steal = %v, want impossible", got)
	}

	require.NoError(t, reg.Acquire(greeks, statetest.Alphabet))
	if got := s.ProbVsCity(SpyStealTech, diplomat, athens); got != ProbNotImplemented {
		t.Errorf("ProbVsCity() with a stealable tech = %v, want not implemented", got)
	}
}

func TestUnknownEnablerGivesNotKnown(t *testing.T) {
	walls := statetest.Req(types.KindImprovement, "City Walls", statetest.CityWalls, types.RangeCity)
	s, w, _ := setup(t)
	require.NoError(t, s.Add(hardEnabler(SpyInvestigateCity, nil, []types.Requirement{
		statetest.NotReq(walls.Source.Kind, walls.Source.Name, walls.Source.Value, walls.Range),
	})))
	diplomat := w.Units[statetest.RomanDiplomat]
	athens := w.Cities[statetest.Athens]

	require.True(t, s.EnabledUnitOnCity(SpyInvestigateCity, diplomat, athens))
	if got := s.ProbVsCity(SpyInvestigateCity, diplomat, athens); got != ProbNotKnown {
		t.Errorf("ProbVsCity() = %v, want not known", got)
	}
}

func TestImmuneGovernment(t *testing.T) {
	notAnarchy := statetest.NotReq(types.KindGovernment, "Anarchy", statetest.Anarchy, types.RangePlayer)
	s, _, _ := setup(t)

	if s.ImmuneGovernment(statetest.Anarchy, SpyInciteCity) {
		t.Error("ImmuneGovernment() with no enablers = true, want false")
	}
	require.NoError(t, s.Add(hardEnabler(SpyInciteCity, nil, []types.Requirement{notAnarchy})))
	if !s.ImmuneGovernment(statetest.Anarchy, SpyInciteCity) {
		t.Error("ImmuneGovernment(Anarchy) = false, want true")
	}
	if s.ImmuneGovernment(statetest.Despotism, SpyInciteCity) {
		t.Error("ImmuneGovernment(Despotism) = true, want false")
	}
}

func TestPossibleOnCity(t *testing.T) {
	walls := statetest.Req(types.KindImprovement, "City Walls", statetest.CityWalls, types.RangeCity)
	diplomatHere := statetest.Req(types.KindUnitFlag, "Diplomat", 0, types.RangeLocal)
	s, w, _ := setup(t)
	caesar := w.Player(statetest.Caesar)
	athens := w.Cities[statetest.Athens]

	require.NoError(t, s.Add(types.ActionEnabler{Action: SpySabotageCity, TargetReqs: []types.Requirement{walls}}))
	if s.PossibleOnCity(SpySabotageCity, caesar, athens) {
		t.Error("PossibleOnCity() without walls = true, want false")
	}
	athens.Buildings[statetest.CityWalls] = true
	if !s.PossibleOnCity(SpySabotageCity, caesar, athens) {
		t.Error("PossibleOnCity() with walls = false, want true")
	}

	require.NoError(t, s.Add(types.ActionEnabler{Action: SpyPoison, TargetReqs: []types.Requirement{diplomatHere}}))
	if !s.PossibleOnCity(SpyPoison, caesar, athens) {
		t.Error("PossibleOnCity() with an undecidable req = false, want true")
	}
}

func TestPrepareUIName(t *testing.T) {
	tests := []struct {
		act      types.ActionID
		mnemonic string
		prob     Prob
		want     string
	}{
		{SpyPoison, "_", ProbNotKnown, "_Poison City (?%)"},
		{EstablishEmbassy, "", ProbCertain, "Establish Embassy (100.0%)"},
		{SpyBribeUnit, "", 3, "Bribe Enemy Unit (1.5%)"},
		{SpyStealTech, "", ProbImpossible, "Steal Technology (0.0%)"},
		{SpyTargetedStealTech, "_", ProbNotImplemented, "Indus_trial Espionage"},
		{SpyInciteCity, "", ProbNA, "Incite a Revolt"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := PrepareUIName(tt.act, tt.mnemonic, tt.prob); got != tt.want {
				t.Errorf("PrepareUIName() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := UIName(SpyTargetedSabotageCity); got != "Industrial Sabotage" {
		t.Errorf("UIName() = %q, want %q", got, "Industrial Sabotage")
	}
}

func TestRoll(t *testing.T) {
	tests := []struct {
		name string
		roll fixedRoll
		prob Prob
		want bool
	}{
		{"certain", 199, ProbCertain, true},
		{"impossible", 0, ProbImpossible, false},
		{"under chance", 99, 100, true},
		{"over chance", 100, 100, false},
		{"not known uses fallback", 79, ProbNotKnown, true},
		{"not implemented over fallback", 80, ProbNotImplemented, false},
		{"not applicable", 0, ProbNA, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Roll(tt.roll, tt.prob, 80); got != tt.want {
				t.Errorf("Roll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocalQueries(t *testing.T) {
	walls := statetest.Req(types.KindImprovement, "City Walls", statetest.CityWalls, types.RangeCity)
	s, w, _ := setup(t)
	require.NoError(t, s.Add(hardEnabler(SpyInvestigateCity, nil, []types.Requirement{walls})))
	require.NoError(t, s.Add(hardEnabler(SpySabotageUnit, nil, nil)))
	diplomat := w.Units[statetest.RomanDiplomat]
	athens := w.Cities[statetest.Athens]

	if got := s.LocalVsCity(SpyInvestigateCity, diplomat, athens); got != tri.Unknown {
		t.Errorf("LocalVsCity() = %v, want maybe", got)
	}
	notDespotism := statetest.NotReq(types.KindGovernment, "Despotism", statetest.Despotism, types.RangePlayer)
	require.NoError(t, s.Add(hardEnabler(SpyPoison, nil, []types.Requirement{notDespotism})))
	if got := s.LocalVsCity(SpyPoison, diplomat, athens); got != tri.No {
		t.Errorf("LocalVsCity() with a known false req = %v, want no", got)
	}
	if got := s.LocalVsCity(SpySabotageUnit, diplomat, athens); got != tri.No {
		t.Errorf("LocalVsCity() with a unit action = %v, want no", got)
	}

	target := addUnit(w, greekDiplomat, statetest.Diplomat, statetest.Pericles, openTile)
	if got := s.LocalVsUnit(SpySabotageUnit, diplomat, target); got != tri.Yes {
		t.Errorf("LocalVsUnit() = %v, want yes", got)
	}
	addUnit(w, 11, statetest.Warriors, statetest.Pericles, openTile)
	if got := s.LocalVsUnit(SpySabotageUnit, diplomat, target); got != tri.No {
		t.Errorf("LocalVsUnit() on a stack = %v, want no", got)
	}
}
