package rules

import (
	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/engine/tri"
	"github.com/nathoo/civcore/types"
)

// EvalKnown evaluates req as viewer would: unknown when viewer cannot see
// the information the requirement depends on, otherwise the certain-mode
// result.
func (e *Evaluator) EvalKnown(viewer *types.Player, ctx Context, req types.Requirement) tri.State {
	if !e.knowable(viewer, ctx, req) {
		return tri.Unknown
	}
	return tri.From(e.IsActive(ctx, req, Certain))
}

// EvalKnownAll folds EvalKnown over a conjunctive vector.
func (e *Evaluator) EvalKnownAll(viewer *types.Player, ctx Context, reqs []types.Requirement) tri.State {
	out := tri.Yes
	for _, r := range reqs {
		out = tri.And(out, e.EvalKnown(viewer, ctx, r))
		if out == tri.No {
			return tri.No
		}
	}
	return out
}

func (e *Evaluator) knowable(viewer *types.Player, ctx Context, req types.Requirement) bool {
	if viewer == nil {
		return false
	}
	if !SupportsRange(req.Source.Kind, req.Range) {
		return true
	}

	switch req.Source.Kind {
	case types.KindNone, types.KindGovernment, types.KindNation, types.KindStyle,
		types.KindAILevel, types.KindMinYear, types.KindOutputType, types.KindSpecialist,
		types.KindAchievement:
		return true

	case types.KindAdvance, types.KindTechFlag:
		if req.Range == types.RangeWorld {
			return true
		}
		if ctx.Player == nil {
			return false
		}
		if req.Range == types.RangePlayer {
			return e.World.CanSeeTechsOf(viewer, ctx.Player)
		}
		for _, p := range e.group(ctx.Player, req.Range) {
			if !e.World.CanSeeTechsOf(viewer, p) {
				return false
			}
		}
		return true

	case types.KindImprovement:
		if e.Defs.IsGreatWonder(req.Source.Value) {
			return true
		}
		switch req.Range {
		case types.RangeLocal:
			return true
		case types.RangeCity:
			return ctx.City != nil && state.CanSeeCityInternals(viewer, ctx.City)
		case types.RangeTradeRoute:
			if ctx.City == nil {
				return false
			}
			for _, c := range e.routeCities(ctx.City, req.Range) {
				if !state.CanSeeCityInternals(viewer, c) {
					return false
				}
			}
			return true
		}
		return ctx.Player != nil && ctx.Player.ID == viewer.ID

	case types.KindMinSize:
		if ctx.City == nil {
			return false
		}
		for _, c := range e.routeCities(ctx.City, req.Range) {
			if !state.CanSeeCityInternals(viewer, c) && !state.TileKnown(viewer, c.Tile) {
				return false
			}
		}
		return true

	case types.KindMinCulture, types.KindNationality:
		if ctx.City != nil && (req.Range == types.RangeCity || req.Range == types.RangeTradeRoute) {
			return state.CanSeeCityInternals(viewer, ctx.City)
		}
		return ctx.Player != nil && ctx.Player.ID == viewer.ID

	case types.KindUnitType, types.KindUnitFlag, types.KindUnitClass, types.KindUnitClassFlag:
		if ctx.Unit == nil {
			return ctx.UnitType != nil
		}
		return ctx.Unit.Owner == viewer.ID || state.TileKnown(viewer, ctx.Unit.Tile)

	case types.KindUnitState:
		if ctx.Unit == nil {
			return false
		}
		return ctx.Unit.Owner == viewer.ID || state.TileKnown(viewer, ctx.Unit.Tile)

	case types.KindDiplRel:
		if req.Range == types.RangeLocal {
			return (ctx.Player != nil && ctx.Player.ID == viewer.ID) ||
				(ctx.OtherPlayer != nil && ctx.OtherPlayer.ID == viewer.ID)
		}
		return ctx.Player != nil && ctx.Player.ID == viewer.ID

	case types.KindTerrain, types.KindTerrainClass, types.KindTerrainFlag, types.KindTerrainAlter,
		types.KindExtra, types.KindBaseFlag, types.KindRoadFlag, types.KindCityTile,
		types.KindMaxUnitsOnTile:
		tiles, ok := e.rangeTiles(ctx, req.Range)
		if !ok {
			return false
		}
		for _, t := range tiles {
			if !state.TileKnown(viewer, t) {
				return false
			}
		}
		return true
	}
	return false
}
