package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validateWorld checks the scenario against the ruleset: cities and units
// stand where they can, each player has at most one capital, and the
// diplomatic states agree on both sides.
func validateWorld(defs *state.Defs, w *state.World) error {
	ve := &ValidationError{}

	capitals := map[int]string{}
	tiles := map[int]string{}
	for _, c := range w.AllCities() {
		if prev, ok := tiles[c.Tile]; ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"cities %q and %q share a tile", prev, c.Name))
		}
		tiles[c.Tile] = c.Name

		if terr := tileTerrain(defs, w, c.Tile); terr != nil {
			if terr.Class == types.TerrainOceanic || state.HasFlag(terr.Flags, "NoCities") {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"city %q stands on %s", c.Name, terr.Name))
			}
		}
		if c.Size < 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("city %q has size %d", c.Name, c.Size))
		}
		if c.Capital {
			if prev, ok := capitals[c.Owner]; ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"player %d has two capitals, %q and %q", c.Owner, prev, c.Name))
			}
			capitals[c.Owner] = c.Name
		}
	}

	ids := make([]int, 0, len(w.Units))
	for id := range w.Units {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		u := w.Units[id]
		terr := tileTerrain(defs, w, u.Tile)
		ut := defs.UnitTypes[u.Type]
		if terr != nil && !state.ContainsInt(terr.NativeTo, ut.Class) && w.TileCity(u.Tile) == nil {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"unit %d (%s) is on non-native terrain %s", u.ID, ut.Name, terr.Name))
		}
		if home := u.HomeCity; home >= 0 {
			if c, ok := w.Cities[home]; ok && c.Owner != u.Owner {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"unit %d (%s) is supported by a foreign city %q", u.ID, ut.Name, c.Name))
			}
		}
	}

	for _, p := range w.Players {
		for other, ds := range p.Diplstates {
			if o := w.Player(other); o != nil && other > p.ID && o.Diplstates[p.ID] != ds {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"players %q and %q disagree on their diplomatic state", p.Name, o.Name))
			}
		}
	}

	for _, msg := range ve.Warnings {
		log.Warn().Str("list", "scenario").Msg(msg)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func tileTerrain(defs *state.Defs, w *state.World, tile int) *types.Terrain {
	t := w.Tile(tile)
	if t == nil || t.Terrain < 0 || t.Terrain >= len(defs.Terrains) {
		return nil
	}
	return &defs.Terrains[t.Terrain]
}
