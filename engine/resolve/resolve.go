// Package resolve maps names typed at the console to players, cities,
// units, techs, actions and effect types.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/civcore/engine/actions"
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// AmbiguityError indicates multiple entities matched a name.
type AmbiguityError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Name, names)
}

// NotFoundError indicates no entity matched a name.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s called %q", e.Kind, e.Name)
}

type candidate[T any] struct {
	name  string
	value T
}

// Match tiers, tried in order. A query that hits several candidates in
// the first tier that hits anything is ambiguous.
const (
	tierExact = iota
	tierWord
	tierPrefix
	tierCount
)

// match finds the unique candidate name matching query. Case is ignored
// and underscores count as spaces, so "bronze_working" finds
// "Bronze Working".
func match[T any](kind, query string, cands []candidate[T]) (T, error) {
	var zero T
	q := normalize(query)
	if q == "" {
		return zero, &NotFoundError{Kind: kind, Name: query}
	}

	var hits [tierCount][]candidate[T]
	for _, c := range cands {
		n := normalize(c.name)
		switch {
		case n == q:
			hits[tierExact] = append(hits[tierExact], c)
		case hasWord(n, q):
			hits[tierWord] = append(hits[tierWord], c)
		case strings.HasPrefix(n, q):
			hits[tierPrefix] = append(hits[tierPrefix], c)
		}
	}

	for _, tier := range hits {
		switch len(tier) {
		case 0:
			continue
		case 1:
			return tier[0].value, nil
		}
		names := make([]string, len(tier))
		for i, c := range tier {
			names[i] = c.name
		}
		sort.Strings(names)
		return zero, &AmbiguityError{Name: query, Candidates: names}
	}
	return zero, &NotFoundError{Kind: kind, Name: query}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "_", " ")))
}

// hasWord reports whether q is one of the words of name, e.g. "library"
// in "great library".
func hasWord(name, q string) bool {
	for _, w := range strings.Fields(name) {
		if w == q {
			return true
		}
	}
	return false
}

// Player finds a player by name or by numeric ID.
func Player(w *state.World, name string) (*types.Player, error) {
	if id, err := strconv.Atoi(name); err == nil {
		if p := w.Player(id); p != nil {
			return p, nil
		}
		return nil, &NotFoundError{Kind: "player", Name: name}
	}
	var cands []candidate[*types.Player]
	for _, p := range w.Players {
		if p != nil {
			cands = append(cands, candidate[*types.Player]{p.Name, p})
		}
	}
	return match("player", name, cands)
}

// City finds a city by name or by numeric ID.
func City(w *state.World, name string) (*types.City, error) {
	if id, err := strconv.Atoi(name); err == nil {
		if c := w.Cities[id]; c != nil {
			return c, nil
		}
		return nil, &NotFoundError{Kind: "city", Name: name}
	}
	var cands []candidate[*types.City]
	for _, c := range w.AllCities() {
		cands = append(cands, candidate[*types.City]{c.Name, c})
	}
	return match("city", name, cands)
}

// Unit finds a unit by numeric ID, or by type name when exactly one unit
// of that type exists.
func Unit(defs *state.Defs, w *state.World, name string) (*types.Unit, error) {
	if id, err := strconv.Atoi(name); err == nil {
		if u := w.Units[id]; u != nil {
			return u, nil
		}
		return nil, &NotFoundError{Kind: "unit", Name: name}
	}
	ids := make([]int, 0, len(w.Units))
	for id := range w.Units {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var cands []candidate[*types.Unit]
	for _, id := range ids {
		u := w.Units[id]
		if u.Type < 0 || u.Type >= len(defs.UnitTypes) {
			continue
		}
		cands = append(cands, candidate[*types.Unit]{defs.UnitTypes[u.Type].Name, u})
	}
	u, err := match("unit", name, cands)
	var amb *AmbiguityError
	if errors.As(err, &amb) {
		amb.Candidates = unitLabels(name, cands)
	}
	return u, err
}

// unitLabels names every unit matching name as "Type #id" so the user can
// pick one by ID.
func unitLabels(name string, cands []candidate[*types.Unit]) []string {
	q := normalize(name)
	var out []string
	for _, c := range cands {
		n := normalize(c.name)
		if n == q || hasWord(n, q) || strings.HasPrefix(n, q) {
			out = append(out, fmt.Sprintf("%s #%d", c.name, c.value.ID))
		}
	}
	return out
}

// Tech finds an advance by name. "None" and "Future Tech." resolve to
// their sentinels.
func Tech(defs *state.Defs, name string) (types.TechID, error) {
	switch normalize(name) {
	case "none":
		return types.AUnset, nil
	case "future tech.", "future":
		return types.AFuture, nil
	}
	var cands []candidate[types.TechID]
	for i := int(types.AFirst); i < defs.AdvanceCount(); i++ {
		tech := types.TechID(i)
		if defs.ValidAdvance(tech) {
			cands = append(cands, candidate[types.TechID]{defs.Advances[i].Name, tech})
		}
	}
	return match("tech", name, cands)
}

// Improvement finds a building by name.
func Improvement(defs *state.Defs, name string) (int, error) {
	var cands []candidate[int]
	for _, impr := range defs.Improvements {
		cands = append(cands, candidate[int]{impr.Name, impr.ID})
	}
	return match("building", name, cands)
}

// Action finds a catalog action by rule name.
func Action(name string) (types.ActionID, error) {
	var cands []candidate[types.ActionID]
	for _, a := range actions.All() {
		cands = append(cands, candidate[types.ActionID]{a.RuleName, a.ID})
	}
	return match("action", name, cands)
}

// EffectType finds an effect type by ruleset name.
func EffectType(name string) (types.EffectType, error) {
	var cands []candidate[types.EffectType]
	for i, n := range types.EffectTypeNames {
		cands = append(cands, candidate[types.EffectType]{n, types.EffectType(i)})
	}
	return match("effect", name, cands)
}
