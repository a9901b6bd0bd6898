package rules

import (
	"strings"

	"github.com/nathoo/civcore/types"
)

// DiplRel names. The first entries line up with types.DiplState.
var DiplRelNames = []string{
	"Never met",
	"War",
	"Cease-fire",
	"Armistice",
	"Peace",
	"Alliance",
	"Team",
	"Has real embassy",
	"Hosts real embassy",
	"Has embassy",
	"Hosts embassy",
	"Foreign",
}

// DiplRel values past the diplomatic states.
const (
	DiplRelHasRealEmbassy = iota + int(types.DiplTeam) + 1
	DiplRelHostsRealEmbassy
	DiplRelHasEmbassy
	DiplRelHostsEmbassy
	DiplRelForeign
)

// UnitStateNames are the recognised UnitState values.
var UnitStateNames = []string{"Transported", "OnLivableTile", "TransportDependent", "OnDomesticTile", "HasHomeCity"}

// CityTileNames are the recognised CityTile values.
var CityTileNames = []string{"Center", "Claimed"}

var supportedRanges = map[types.ReqKind][]types.ReqRange{
	types.KindNone:           {types.RangeLocal, types.RangeAdjacent, types.RangeCity, types.RangeTradeRoute, types.RangeContinent, types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindAdvance:        {types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindTechFlag:       {types.RangePlayer, types.RangeWorld},
	types.KindGovernment:     {types.RangePlayer},
	types.KindImprovement:    {types.RangeLocal, types.RangeCity, types.RangeTradeRoute, types.RangeContinent, types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindTerrain:        {types.RangeLocal, types.RangeAdjacent, types.RangeCity},
	types.KindTerrainClass:   {types.RangeLocal, types.RangeAdjacent, types.RangeCity},
	types.KindTerrainFlag:    {types.RangeLocal, types.RangeAdjacent, types.RangeCity},
	types.KindTerrainAlter:   {types.RangeLocal},
	types.KindExtra:          {types.RangeLocal, types.RangeAdjacent, types.RangeCity},
	types.KindBaseFlag:       {types.RangeLocal, types.RangeAdjacent},
	types.KindRoadFlag:       {types.RangeLocal, types.RangeAdjacent},
	types.KindNation:         {types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindNationality:    {types.RangeCity, types.RangePlayer},
	types.KindUnitType:       {types.RangeLocal},
	types.KindUnitFlag:       {types.RangeLocal},
	types.KindUnitClass:      {types.RangeLocal},
	types.KindUnitClassFlag:  {types.RangeLocal},
	types.KindUnitState:      {types.RangeLocal},
	types.KindOutputType:     {types.RangeLocal},
	types.KindSpecialist:     {types.RangeLocal},
	types.KindMinSize:        {types.RangeCity, types.RangeTradeRoute},
	types.KindMinCulture:     {types.RangeCity, types.RangeTradeRoute, types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindAILevel:        {types.RangePlayer},
	types.KindMinYear:        {types.RangeWorld},
	types.KindCityTile:       {types.RangeLocal, types.RangeAdjacent},
	types.KindAchievement:    {types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindDiplRel:        {types.RangeLocal, types.RangePlayer, types.RangeTeam, types.RangeAlliance, types.RangeWorld},
	types.KindMaxUnitsOnTile: {types.RangeLocal, types.RangeAdjacent},
	types.KindStyle:          {types.RangePlayer},
}

// SupportsRange reports whether a requirement kind can be checked at rng.
func SupportsRange(kind types.ReqKind, rng types.ReqRange) bool {
	for _, r := range supportedRanges[kind] {
		if r == rng {
			return true
		}
	}
	return false
}

// SupportsSurvives reports whether a kind may be evaluated against
// historical state at rng.
func SupportsSurvives(kind types.ReqKind, rng types.ReqRange) bool {
	return rng == types.RangeWorld && (kind == types.KindAdvance || kind == types.KindImprovement || kind == types.KindNation)
}

// ParseKind maps a ruleset kind name to a ReqKind.
func ParseKind(name string) (types.ReqKind, bool) {
	for k, n := range types.ReqKindNames {
		if strings.EqualFold(n, name) {
			return types.ReqKind(k), true
		}
	}
	return types.KindNone, false
}

// ParseRange maps a ruleset range name to a ReqRange.
func ParseRange(name string) (types.ReqRange, bool) {
	for r, n := range types.ReqRangeNames {
		if strings.EqualFold(n, name) {
			return types.ReqRange(r), true
		}
	}
	return types.RangeLocal, false
}

// ParseEffectType maps a ruleset effect name to an EffectType.
func ParseEffectType(name string) (types.EffectType, bool) {
	for e, n := range types.EffectTypeNames {
		if strings.EqualFold(n, name) {
			return types.EffectType(e), true
		}
	}
	return 0, false
}

// IndexOf returns the case-insensitive index of name in names, or -1.
func IndexOf(names []string, name string) int {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
