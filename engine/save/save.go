// Package save implements JSON serialization of the research state and
// the session metadata needed to resume a game.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/research"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// TechEntry is one tech's state in a research, keyed by rule name.
type TechEntry struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// ResearchData is the persisted part of a research. Derived fields are
// recomputed on load.
type ResearchData struct {
	Number          int         `json:"number"`
	TechsResearched int         `json:"techs_researched"`
	FutureTech      int         `json:"future_tech"`
	TechGoal        string      `json:"tech_goal"`
	Researching     string      `json:"researching"`
	BulbsResearched int         `json:"bulbs_researched"`
	Techs           []TechEntry `json:"techs"`
}

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string         `json:"version"`
	Ruleset     string         `json:"ruleset"`
	Turn        int            `json:"turn"`
	Year        int            `json:"year"`
	RNGSeed     uint64         `json:"rng_seed"`
	RNGPosition int64          `json:"rng_position"`
	Script      string         `json:"script"`
	Research    []ResearchData `json:"research"`
}

// Meta is the session state saved alongside the research.
type Meta struct {
	Version     string
	RNGSeed     uint64
	RNGPosition int64
	Script      string
}

// Save serializes the research of every slot plus the session metadata.
func Save(defs *state.Defs, world *state.World, reg *research.Registry, meta Meta) ([]byte, error) {
	data := SaveData{
		Version:     meta.Version,
		Ruleset:     defs.Game.Name,
		Turn:        world.Turn,
		Year:        world.Year,
		RNGSeed:     meta.RNGSeed,
		RNGPosition: meta.RNGPosition,
		Script:      meta.Script,
	}
	for _, r := range reg.All() {
		rd := ResearchData{
			Number:          r.ID,
			TechsResearched: r.TechsResearched,
			FutureTech:      r.FutureTech,
			TechGoal:        techName(defs, r.TechGoal),
			Researching:     techName(defs, r.Researching),
			BulbsResearched: r.BulbsResearched,
		}
		for i := int(types.AFirst); i < defs.AdvanceCount(); i++ {
			tech := types.TechID(i)
			if !defs.ValidAdvance(tech) {
				continue
			}
			rd.Techs = append(rd.Techs, TechEntry{
				Name:  defs.Advances[i].Name,
				State: r.Inventions[i].State.String(),
			})
		}
		data.Research = append(data.Research, rd)
	}
	return json.MarshalIndent(data, "", "  ")
}

func techName(defs *state.Defs, tech types.TechID) string {
	switch {
	case tech == types.AFuture:
		return "Future Tech."
	case tech > types.ANone && defs.ValidAdvance(tech):
		return defs.Advances[tech].Name
	}
	return "None"
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parsing save: %w", err)
	}
	return &sd, nil
}

// staged is one research entry checked against the ruleset and ready to
// be written.
type staged struct {
	r           *types.Research
	data        ResearchData
	goal, doing types.TechID
	techs       map[types.TechID]types.TechState
}

// Apply restores the saved research states and then recomputes every
// derived field. Techs the ruleset no longer has are skipped. Every entry
// is checked before anything is written, so a bad save leaves the
// registry untouched.
func Apply(sd *SaveData, world *state.World, reg *research.Registry) error {
	states := map[string]types.TechState{}
	for st, name := range types.TechStateNames {
		states[name] = st
	}

	plan := make([]staged, 0, len(sd.Research))
	for _, rd := range sd.Research {
		st := staged{r: reg.ByID(rd.Number), data: rd, techs: map[types.TechID]types.TechState{}}
		if st.r == nil {
			return fmt.Errorf("save has research %d, game has %d", rd.Number, len(reg.All()))
		}
		var ok bool
		if st.goal, ok = reg.TechByName(rd.TechGoal); !ok {
			return fmt.Errorf("research %d: unknown tech goal %q", rd.Number, rd.TechGoal)
		}
		if st.doing, ok = reg.TechByName(rd.Researching); !ok {
			return fmt.Errorf("research %d: unknown researching tech %q", rd.Number, rd.Researching)
		}
		for _, te := range rd.Techs {
			ts, ok := states[te.State]
			if !ok {
				return fmt.Errorf("research %d: tech %q has unknown state %q", rd.Number, te.Name, te.State)
			}
			tech, ok := reg.TechByName(te.Name)
			if !ok || tech < types.AFirst {
				log.Warn().Str("tech", te.Name).Int("research", rd.Number).Msg("saved tech not in ruleset")
				continue
			}
			st.techs[tech] = ts
		}
		plan = append(plan, st)
	}

	for _, st := range plan {
		r := st.r
		r.TechsResearched = st.data.TechsResearched
		r.FutureTech = st.data.FutureTech
		r.BulbsResearched = st.data.BulbsResearched
		r.TechGoal = st.goal
		r.Researching = st.doing
		for tech, ts := range st.techs {
			reg.InventionSet(r, tech, ts)
		}
	}

	world.Turn = sd.Turn
	world.Year = sd.Year
	for _, r := range reg.All() {
		reg.Update(r)
	}
	return nil
}
