package research

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/civcore/engine/effects"
	"github.com/nathoo/civcore/engine/rules"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/state/statetest"
	"github.com/nathoo/civcore/types"
)

type lastRoll struct{}

func (lastRoll) Roll(sides int) int { return sides - 1 }

func setup(t *testing.T, mutate func(*state.Defs, *state.World)) (*Registry, *state.Defs, *state.World) {
	t.Helper()
	defs := statetest.Defs()
	w := statetest.World()
	if mutate != nil {
		mutate(defs, w)
	}
	PrecalcCosts(defs)
	eval := rules.New(defs, w)
	reg := New(defs, w, effects.New(eval, defs.Effects), WithLogger(zerolog.Nop()))
	eval.Techs = reg
	for _, r := range reg.All() {
		reg.Update(r)
	}
	return reg, defs, w
}

func caesar(reg *Registry, w *state.World) *types.Research {
	return reg.For(w.Player(statetest.Caesar))
}

func pericles(reg *Registry, w *state.World) *types.Research {
	return reg.For(w.Player(statetest.Pericles))
}

func TestTotalBulbsRequiredStyleZero(t *testing.T) {
	tests := []struct {
		name       string
		sciencebox int
		want       int
	}{
		{"plain", 100, 150},
		{"doubled", 200, 300},
		{"truncated", 33, 49},
		{"floored", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, w := setup(t, func(d *state.Defs, _ *state.World) {
				d.Game.Sciencebox = tt.sciencebox
			})
			r := caesar(reg, w)
			r.TechsResearched = 3
			if got := reg.TotalBulbsRequired(r, statetest.Writing, false); got != tt.want {
				t.Errorf("TotalBulbsRequired() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalBulbsRequiredNoCostFactor(t *testing.T) {
	reg, _, w := setup(t, func(d *state.Defs, _ *state.World) {
		d.Effects = nil
	})
	if got := reg.TotalBulbsRequired(caesar(reg, w), statetest.Writing, false); got != 1 {
		t.Errorf("TotalBulbsRequired() without cost factor = %d, want 1", got)
	}
}

func TestTotalBulbsRequiredKnownUnreachable(t *testing.T) {
	reg, defs, w := setup(t, nil)
	defs.Advances[statetest.Alphabet].RootReq = statetest.Alphabet
	r := caesar(reg, w)
	reg.InventionSet(r, statetest.Writing, types.TechKnown)

	if got := reg.TotalBulbsRequired(r, statetest.Writing, false); got != 0 {
		t.Errorf("TotalBulbsRequired() = %d, want 0", got)
	}
	if got := reg.TotalBulbsRequired(r, statetest.Writing, true); got != 50 {
		t.Errorf("TotalBulbsRequired(loss value) = %d, want 50", got)
	}

	reg.Update(r)
	if got := reg.InventionState(r, statetest.Writing); got != types.TechUnknown {
		t.Errorf("InventionState(unreachable) after Update = %v, want unknown", got)
	}
}

func TestTotalBulbsRequiredLeakage(t *testing.T) {
	barbarian := &types.Player{ID: 2, Name: "Barbarian", Nation: 2, Team: 2, Alive: true, Barbarian: true, ScienceCost: 100}

	tests := []struct {
		name      string
		leakage   int
		barbarian bool
		embassy   bool
		want      int
	}{
		{"none", 0, false, false, 150},
		{"embassy style without embassy", 1, false, false, 150},
		{"embassy style with embassy", 1, false, true, 75},
		{"all players", 2, false, false, 75},
		{"all players with barbarian", 2, true, false, 50},
		{"barbarians excluded", 3, true, false, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, w := setup(t, func(d *state.Defs, w *state.World) {
				d.Game.TechLeakage = tt.leakage
				if tt.barbarian {
					b := *barbarian
					w.Players = append(w.Players, &b)
				}
				if tt.embassy {
					w.Player(statetest.Caesar).Embassies[statetest.Pericles] = true
				}
			})
			reg.InventionSet(pericles(reg, w), statetest.Writing, types.TechKnown)
			if tt.barbarian {
				reg.InventionSet(reg.ByID(2), statetest.Writing, types.TechKnown)
			}
			r := caesar(reg, w)
			r.TechsResearched = 3

			if got := reg.TotalBulbsRequired(r, statetest.Writing, false); got != tt.want {
				t.Errorf("TotalBulbsRequired() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalBulbsRequiredPooledAI(t *testing.T) {
	reg, _, w := setup(t, func(d *state.Defs, w *state.World) {
		d.Game.TeamPooledResearch = true
		p := w.Player(statetest.Pericles)
		p.Team = 0
		p.AI = true
		p.ScienceCost = 200
	})
	r := caesar(reg, w)
	require.Same(t, r, pericles(reg, w))
	require.Len(t, reg.Members(r), 2)

	r.TechsResearched = 3
	if got := reg.TotalBulbsRequired(r, statetest.Writing, false); got != 225 {
		t.Errorf("TotalBulbsRequired(pooled) = %d, want 225", got)
	}
	if got := reg.Name(r); got != "Team 0" {
		t.Errorf("Name() = %q, want %q", got, "Team 0")
	}
}

func TestUpkeep(t *testing.T) {
	free := types.Effect{Type: types.EffectTechUpkeepFree, Value: 100}

	tests := []struct {
		name    string
		style   types.TechUpkeepStyle
		divider int
		free    bool
		want    int
	}{
		{"none", types.UpkeepNone, 1, false, 0},
		{"basic", types.UpkeepBasic, 1, false, 600},
		{"basic with divider", types.UpkeepBasic, 4, false, 150},
		{"basic with free upkeep", types.UpkeepBasic, 1, true, 500},
		{"free upkeep exceeds cost", types.UpkeepBasic, 8, true, 0},
		{"per city", types.UpkeepPerCity, 1, true, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, w := setup(t, func(d *state.Defs, _ *state.World) {
				d.Game.TechUpkeepStyle = tt.style
				d.Game.TechUpkeepDivider = tt.divider
				if tt.free {
					d.Effects = append(d.Effects, free)
				}
			})
			caesar(reg, w).TechsResearched = 3
			if got := reg.Upkeep(w.Player(statetest.Caesar)); got != tt.want {
				t.Errorf("Upkeep() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrecalcCosts(t *testing.T) {
	tests := []struct {
		name   string
		style  int
		preset int
		tech   types.TechID
		want   int
	}{
		{"style 1 root tech", 1, 0, statetest.Alphabet, 70},
		{"style 1 second tier", 1, 0, statetest.Writing, 129},
		{"style 1 deep tech", 1, 0, statetest.Philosophy, 463},
		{"style 2 preset", 2, 42, statetest.Writing, 42},
		{"style 2 without preset", 2, 0, statetest.Writing, 129},
		{"style 3 floor", 3, 0, statetest.Alphabet, 1},
		{"style 0 keeps cost", 0, 0, statetest.Writing, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := statetest.Defs()
			defs.Game.TechCostStyle = tt.style
			defs.Advances[statetest.Writing].PresetCost = tt.preset
			PrecalcCosts(defs)
			if got := defs.Advances[tt.tech].Cost; got != tt.want {
				t.Errorf("Cost = %d, want %d", got, tt.want)
			}
		})
	}

	defs := statetest.Defs()
	PrecalcCosts(defs)
	if got := defs.Advances[statetest.Philosophy].NumReqs; got != 6 {
		t.Errorf("NumReqs(Philosophy) = %d, want 6", got)
	}
}

func TestUpdateInvariants(t *testing.T) {
	reg, defs, w := setup(t, nil)
	r := caesar(reg, w)
	require.NoError(t, reg.Acquire(r, statetest.Alphabet))
	require.NoError(t, reg.Acquire(r, statetest.BronzeWorking))

	for i := int(types.AFirst); i < defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		st := reg.InventionState(r, tech)
		if st == types.TechKnown && !reg.Reachable(r, tech) {
			t.Errorf("%s known but unreachable", defs.Advances[i].Name)
		}
		if st == types.TechPrereqsKnown && !reg.Gettable(r, tech, false) {
			t.Errorf("%s prereqs known but not gettable", defs.Advances[i].Name)
		}
	}

	tests := []struct {
		tech types.TechID
		want types.TechState
	}{
		{statetest.Alphabet, types.TechKnown},
		{statetest.Writing, types.TechPrereqsKnown},
		{statetest.Currency, types.TechPrereqsKnown},
		{statetest.Trade, types.TechUnknown},
	}
	for _, tt := range tests {
		if got := reg.InventionState(r, tt.tech); got != tt.want {
			t.Errorf("InventionState(%d) = %v, want %v", tt.tech, got, tt.want)
		}
	}
}

func TestUpdateIdempotent(t *testing.T) {
	reg, _, w := setup(t, nil)
	r := caesar(reg, w)
	require.NoError(t, reg.Acquire(r, statetest.Alphabet))

	before := make([]types.Invention, len(r.Inventions))
	for i, inv := range r.Inventions {
		before[i] = inv
		before[i].RequiredTechs = append([]bool(nil), inv.RequiredTechs...)
	}
	reg.Update(r)
	require.Equal(t, before, r.Inventions)
}

func TestRequiredTechsAndBulbs(t *testing.T) {
	reg, _, w := setup(t, nil)
	r := caesar(reg, w)
	inv := r.Inventions[statetest.Philosophy]

	if inv.NumRequiredTechs != 6 {
		t.Errorf("NumRequiredTechs = %d, want 6", inv.NumRequiredTechs)
	}
	if !inv.RequiredTechs[statetest.Alphabet] {
		t.Error("RequiredTechs[Alphabet] = false, want true")
	}
	if inv.RequiredTechs[statetest.Philosophy] {
		t.Error("RequiredTechs[Philosophy] = true, want false")
	}
	// 50 * (1+2+3+4+5+6)
	if inv.BulbsRequired != 1050 {
		t.Errorf("BulbsRequired = %d, want 1050", inv.BulbsRequired)
	}
}

func TestGoalHelpers(t *testing.T) {
	reg, _, w := setup(t, nil)
	r := caesar(reg, w)

	if got := reg.GoalStep(r, statetest.Philosophy); got != statetest.Alphabet {
		t.Errorf("GoalStep() = %d, want Alphabet", got)
	}
	if got := reg.GoalStep(r, types.AFuture); got != types.AUnset {
		t.Errorf("GoalStep(future) = %d, want AUnset", got)
	}
	if got := reg.GoalUnknownTechs(r, statetest.Philosophy); got != 6 {
		t.Errorf("GoalUnknownTechs() = %d, want 6", got)
	}
	if got := reg.GoalUnknownTechs(nil, statetest.Philosophy); got != 6 {
		t.Errorf("GoalUnknownTechs(nil) = %d, want 6", got)
	}
	if got := reg.GoalBulbsRequired(r, statetest.Philosophy); got != 1050 {
		t.Errorf("GoalBulbsRequired() = %d, want 1050", got)
	}
	if got := reg.GoalBulbsRequired(nil, statetest.Philosophy); got != 1050 {
		t.Errorf("GoalBulbsRequired(nil) = %d, want 1050", got)
	}

	reqTests := []struct {
		name       string
		r          *types.Research
		goal, tech types.TechID
		want       bool
	}{
		{"prerequisite", r, statetest.Philosophy, statetest.Alphabet, true},
		{"goal itself", r, statetest.Philosophy, statetest.Philosophy, false},
		{"unrelated", r, statetest.Writing, statetest.Currency, false},
		{"invalid tech", r, statetest.Philosophy, types.AFuture, false},
		{"no research", nil, statetest.Trade, statetest.BronzeWorking, true},
	}
	for _, tt := range reqTests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.GoalTechReq(tt.r, tt.goal, tt.tech); got != tt.want {
				t.Errorf("GoalTechReq() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdvanceName(t *testing.T) {
	reg, _, w := setup(t, nil)
	r := caesar(reg, w)

	tests := []struct {
		name string
		r    *types.Research
		tech types.TechID
		want string
	}{
		{"unset", r, types.AUnset, "None"},
		{"unknown", r, types.AUnknown, "(Unknown)"},
		{"future with research", r, types.AFuture, "Future Tech. 1"},
		{"future without research", nil, types.AFuture, "Future Tech."},
		{"advance", r, statetest.Writing, "Writing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.AdvanceName(tt.r, tt.tech); got != tt.want {
				t.Errorf("AdvanceName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAcquireAndLose(t *testing.T) {
	notified := 0
	defs := statetest.Defs()
	w := statetest.World()
	eval := rules.New(defs, w)
	reg := New(defs, w, effects.New(eval, defs.Effects),
		WithLogger(zerolog.Nop()),
		WithNotifier(func(*types.Research) { notified++ }))
	r := caesar(reg, w)
	reg.Update(r)
	r.TechGoal = statetest.Alphabet

	require.NoError(t, reg.Acquire(r, statetest.Alphabet))
	require.NoError(t, reg.Acquire(r, statetest.Writing))
	if r.TechGoal != types.AUnset {
		t.Errorf("TechGoal after reaching it = %d, want AUnset", r.TechGoal)
	}
	if r.TechsResearched != 3 {
		t.Errorf("TechsResearched = %d, want 3", r.TechsResearched)
	}
	if !reg.EverKnown(statetest.Writing) {
		t.Error("EverKnown(Writing) = false, want true")
	}

	require.NoError(t, reg.Lose(r, statetest.Alphabet))
	if got := reg.InventionState(r, statetest.Alphabet); got != types.TechPrereqsKnown {
		t.Errorf("InventionState(lost) = %v, want prereqs_known", got)
	}
	if got := reg.InventionState(r, statetest.Writing); got != types.TechKnown {
		t.Errorf("InventionState(Writing) = %v, want known", got)
	}
	if r.TechsResearched != 2 {
		t.Errorf("TechsResearched after loss = %d, want 2", r.TechsResearched)
	}
	if !reg.EverKnown(statetest.Alphabet) {
		t.Error("EverKnown(Alphabet) after loss = false, want true")
	}
	if notified != 3 {
		t.Errorf("notifications = %d, want 3", notified)
	}

	require.NoError(t, reg.Acquire(r, types.AFuture))
	if r.FutureTech != 1 {
		t.Errorf("FutureTech = %d, want 1", r.FutureTech)
	}
	require.Error(t, reg.Acquire(r, types.AUnknown))
}

func TestFreeTech(t *testing.T) {
	tests := []struct {
		name        string
		method      types.FreeTechMethod
		researching types.TechID
		knowAll     bool
		want        types.TechID
	}{
		{"goal uses current research", types.FreeTechGoal, statetest.BronzeWorking, false, statetest.BronzeWorking},
		{"goal without research is random", types.FreeTechGoal, types.AUnset, false, statetest.BronzeWorking},
		{"random", types.FreeTechRandom, statetest.Alphabet, false, statetest.BronzeWorking},
		{"cheapest", types.FreeTechCheapest, types.AUnset, false, statetest.Alphabet},
		{"nothing left", types.FreeTechCheapest, types.AUnset, true, types.AFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, defs, w := setup(t, func(d *state.Defs, _ *state.World) {
				d.Game.FreeTechMethod = tt.method
			})
			r := caesar(reg, w)
			r.Researching = tt.researching
			if tt.knowAll {
				for i := int(types.AFirst); i < defs.AdvanceCount(); i++ {
					reg.InventionSet(r, types.TechID(i), types.TechKnown)
				}
				reg.Update(r)
			}
			if got := reg.FreeTech(r, lastRoll{}); got != tt.want {
				t.Errorf("FreeTech() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStealableTechs(t *testing.T) {
	reg, _, w := setup(t, nil)
	thief, victim := caesar(reg, w), pericles(reg, w)
	require.NoError(t, reg.Acquire(victim, statetest.Alphabet))
	require.NoError(t, reg.Acquire(victim, statetest.Writing))

	require.Equal(t, []types.TechID{statetest.Alphabet}, reg.StealableTechs(thief, victim, false))
	require.Equal(t, []types.TechID{statetest.Alphabet, statetest.Writing}, reg.StealableTechs(thief, victim, true))
	require.Empty(t, reg.StealableTechs(thief, thief, true))
}

func TestAddBulbs(t *testing.T) {
	reg, _, w := setup(t, nil)
	r := caesar(reg, w)
	r.Researching = statetest.Alphabet
	r.TechGoal = statetest.Writing

	gained, lost := reg.AddBulbs(r, 120, nil)
	require.Equal(t, []types.TechID{statetest.Alphabet}, gained)
	require.Empty(t, lost)
	if r.Researching != statetest.Writing {
		t.Errorf("Researching = %d, want Writing", r.Researching)
	}
	if r.BulbsResearched != 70 {
		t.Errorf("BulbsResearched = %d, want 70", r.BulbsResearched)
	}

	gained, _ = reg.AddBulbs(r, 30, nil)
	require.Equal(t, []types.TechID{statetest.Writing}, gained)
	if r.TechGoal != types.AUnset || r.Researching != types.AUnset {
		t.Errorf("goal, researching = %d, %d, want both AUnset", r.TechGoal, r.Researching)
	}
}

func TestTechLoss(t *testing.T) {
	reg, _, w := setup(t, func(d *state.Defs, _ *state.World) {
		d.Game.Techlossforgiveness = 10
	})
	r := caesar(reg, w)
	require.NoError(t, reg.Acquire(r, statetest.Alphabet))
	require.NoError(t, reg.Acquire(r, statetest.Writing))
	r.Researching = statetest.BronzeWorking

	// Bronze costs 150; 10% forgiveness tolerates a 15 bulb deficit.
	_, lost := reg.AddBulbs(r, -15, nil)
	require.Empty(t, lost)

	_, lost = reg.AddBulbs(r, -10, nil)
	require.Equal(t, []types.TechID{statetest.Writing}, lost)
	if got := reg.InventionState(r, statetest.Alphabet); got != types.TechKnown {
		t.Errorf("InventionState(Alphabet) = %v, want known", got)
	}
	if r.BulbsResearched <= -25 {
		t.Errorf("BulbsResearched = %d, want refunded above -25", r.BulbsResearched)
	}
}

func TestTechLossForgiveness(t *testing.T) {
	tests := []struct {
		name     string
		forgive  int
		bulbs    int
		wantLoss bool
	}{
		{"disabled", -1, -500, false},
		{"zero loses at once", 0, -1, true},
		{"within threshold", 10, -15, false},
		{"past threshold", 10, -16, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _, w := setup(t, func(d *state.Defs, _ *state.World) {
				d.Game.Techlossforgiveness = tt.forgive
			})
			r := caesar(reg, w)
			require.NoError(t, reg.Acquire(r, statetest.Alphabet))
			require.NoError(t, reg.Acquire(r, statetest.Writing))
			r.Researching = statetest.BronzeWorking

			_, lost := reg.AddBulbs(r, tt.bulbs, nil)
			if got := len(lost) > 0; got != tt.wantLoss {
				t.Errorf("AddBulbs(%d) lost = %v, want loss %v", tt.bulbs, lost, tt.wantLoss)
			}
		})
	}
}

func TestReachableCycle(t *testing.T) {
	reg, defs, w := setup(t, nil)
	defs.Advances[statetest.Alphabet].Require[0] = statetest.Writing
	defs.Advances[statetest.Writing].RootReq = statetest.Alphabet
	defs.Advances[statetest.Alphabet].RootReq = statetest.Writing

	if reg.Reachable(caesar(reg, w), statetest.Writing) {
		t.Error("Reachable() on a cycle = true, want false")
	}
}

func TestTechLookup(t *testing.T) {
	reg, defs, w := setup(t, nil)
	defs.Advances[statetest.Alphabet].Flags = []string{"Bonus_Tech"}
	require.NoError(t, reg.Acquire(caesar(reg, w), statetest.Alphabet))

	if !reg.PlayerKnows(statetest.Caesar, statetest.Alphabet) {
		t.Error("PlayerKnows(Caesar, Alphabet) = false, want true")
	}
	if reg.PlayerKnows(statetest.Pericles, statetest.Alphabet) {
		t.Error("PlayerKnows(Pericles, Alphabet) = true, want false")
	}
	if got := reg.KnownWithFlag(statetest.Caesar, "Bonus_Tech"); got != 1 {
		t.Errorf("KnownWithFlag() = %d, want 1", got)
	}
}
