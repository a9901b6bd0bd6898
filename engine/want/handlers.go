package want

import (
	"math"

	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// Effect types missing from this table are either scored elsewhere by the
// AI or of no interest to it.
var handlers = map[types.EffectType]handler{
	types.EffectCityVisionRadiusSq: visionRadius,
	types.EffectUnitVisionRadiusSq: visionRadius,
	types.EffectInciteCostPct:      inciteCost,
	types.EffectMakeHappy:          makeHappy,
	types.EffectNoUnhappy:          noUnhappy,
	types.EffectForceContent:       content(types.FeelingFinal),
	types.EffectMakeContent:        content(types.FeelingEffect),
	types.EffectMakeContentMilPer:  makeContentMilPer,
	types.EffectMakeContentMil:     makeContentMil,
	types.EffectTechParasite:       techParasite,
	types.EffectGrowthFood:         growthFood,
	types.EffectHealthPct:          healthPct,
	types.EffectAirlift:            airlift,
	types.EffectAnyGovernment:      anyGovernment,
	types.EffectEnableNuke:         enableNuke,
	types.EffectEnableSpace:        enableSpace,
	types.EffectVictory:            victory,
	types.EffectGiveImmTech:        giveImmTech,
	types.EffectHaveEmbassies:      haveEmbassies,
	types.EffectNukeProof:          nukeProof,
	types.EffectRevealMap:          revealMap,
	types.EffectSizeUnlimit:        sizeUnlimit,
	types.EffectSizeAdj:            sizeAdj,
	types.EffectSSStructural:       spaceship,
	types.EffectSSComponent:        spaceship,
	types.EffectSSModule:           spaceship,
	types.EffectMoveBonus:          moveBonus,
	types.EffectUnitNoLosePop:      unitNoLosePop,
	types.EffectHPRegen:            hpRegen,
	types.EffectVeteranCombat:      veteranCombat,
	types.EffectVeteranBuild:       veteranBuild,
	types.EffectUpgradeUnit:        upgradeUnit,
	types.EffectUnitBribeCostPct:   bribeCost,
	types.EffectDefendBonus:        defendBonus,
	types.EffectGainAILove:         gainAILove,
	types.EffectUpgradePricePct:    upgradePrice,
	types.EffectTechCostFactor:     techCostFactor,
	types.EffectCityRadiusSq:       tenPerPoint,
	types.EffectCityBuildSlots:     tenPerPoint,
	types.EffectMigrationPct:       migration,
	types.EffectMaxTradeRoutes:     maxTradeRoutes,
	types.EffectTraderoutePct:      tradeRoutePct,
}

func visionRadius(_ *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	return v + req.Cities*amount
}

func inciteCost(_ *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	return v + req.Cities*amount/100
}

func makeHappy(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	unhappy := req.City.Feel[types.FeelingFinal][types.CitizenUnhappy]
	v += (s.entertainers(req.City) + unhappy) * 5 * amount
	if len(s.world.PlayerCities(req.Player.ID)) > s.effects.PlayerBonus(req.Player, types.EffectEmpireSizeBase) {
		v += req.Cities * amount
	}
	return v + req.Cities*amount
}

func noUnhappy(s *Scorer, req Request, _ *AdvData, _ types.Effect, _, v int) int {
	unhappy := req.City.Feel[types.FeelingFinal][types.CitizenUnhappy]
	return v + (s.entertainers(req.City)+unhappy)*30
}

func content(step int) handler {
	return func(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
		return v + s.ContentValue(req.Player, req.City, amount, req.Cities, step)
	}
}

func makeContentMilPer(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	if s.effects.CityBonus(req.City, types.EffectNoUnhappy) > 0 {
		return v
	}
	unhappy := req.City.Feel[types.FeelingFinal][types.CitizenUnhappy]
	v += min(unhappy+s.entertainers(req.City), amount) * 25
	return v + min(amount, 5)*req.Cities
}

func makeContentMil(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	if s.effects.CityBonus(req.City, types.EffectNoUnhappy) > 0 {
		return v
	}
	unhappy := req.City.Feel[types.FeelingFinal][types.CitizenUnhappy]
	v += unhappy * amount * len(s.world.SupportedUnits(req.City.ID)) * 2
	return v + req.Cities*max(amount+2, 1)
}

// techParasite values the bulbs the effect would steal over the next
// req.Turns turns, as a geometric series amortized over MORT turns.
func techParasite(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	n := req.Players
	if n <= amount {
		return v
	}
	bulbs := 0
	for _, p := range s.world.Players {
		if p == nil || p.Team == req.Player.Team {
			continue
		}
		bulbs += p.BulbsLastTurn + len(s.world.PlayerCities(p.ID)) + 1
	}
	value := int(float64(bulbs) * (1 - math.Pow(1-1.0/MORT, float64(req.Turns))) * MORT)
	value = value * (100 - s.defs.Game.Freecost) * (n - amount) / (n * amount * 100)
	value /= 3
	return v + value
}

func growthFood(_ *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	return v + req.Cities*4 + (amount/7)*req.City.Surplus[types.OFood]
}

func healthPct(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	if !s.defs.Game.Illness {
		return v
	}
	return v + req.Cities*5 + (amount/5)*req.City.Illness
}

func airlift(_ *Scorer, req Request, adv *AdvData, _ types.Effect, _, v int) int {
	return v + req.Cities + min(adv.Airliftable, 13)
}

func anyGovernment(s *Scorer, req Request, adv *AdvData, _ types.Effect, _, v int) int {
	if s.canChangeTo(req.Player, adv.Goal.Gov) {
		return v
	}
	unknown := 0
	if s.research != nil {
		unknown = s.research.GoalUnknownTechs(s.research.For(req.Player), adv.Goal.Req)
	}
	return v + min(adv.Goal.Val, 65, unknown*10)
}

func enableNuke(_ *Scorer, _ Request, adv *AdvData, _ types.Effect, _, v int) int {
	return v + 20 + adv.Missiles*5
}

func enableSpace(s *Scorer, req Request, adv *AdvData, _ types.Effect, _, v int) int {
	if !s.defs.Game.Spacerace {
		return v
	}
	v += 5
	if adv.ProductionLeader == req.Player.ID {
		v += 100
	}
	return v
}

func victory(_ *Scorer, _ Request, _ *AdvData, _ types.Effect, _, v int) int {
	return v + 250
}

func giveImmTech(s *Scorer, _ Request, adv *AdvData, _ types.Effect, amount, v int) int {
	if !adv.WantsScience {
		return v
	}
	return v + amount*(s.defs.Game.Sciencebox+1)
}

func haveEmbassies(_ *Scorer, req Request, _ *AdvData, _ types.Effect, _, v int) int {
	return v + 5*req.Players
}

func nukeProof(s *Scorer, req Request, adv *AdvData, _ types.Effect, amount, v int) int {
	if !adv.Threats.Nuclear {
		return v
	}
	units := len(s.world.UnitsOnTile(req.City.Tile))
	return v + req.City.Size*units*(boolInt(req.Capital)+1)*amount/100
}

func revealMap(_ *Scorer, _ Request, adv *AdvData, _ types.Effect, _, v int) int {
	if !adv.LandExplored || !adv.SeaExplored {
		v += 10
	}
	return v
}

// sizeUnlimit scores lifting the size cap as a very large size step.
func sizeUnlimit(s *Scorer, req Request, adv *AdvData, eff types.Effect, amount, v int) int {
	if amount <= 0 {
		return v - 30*req.Cities*adv.FoodPriority
	}
	if s.effects.CityBonus(req.City, types.EffectSizeUnlimit) <= 0 {
		amount = 20
	}
	return sizeAdj(s, req, adv, eff, amount, v)
}

func sizeAdj(s *Scorer, req Request, adv *AdvData, _ types.Effect, amount, v int) int {
	c := req.City
	if s.effects.CityBonus(c, types.EffectSizeUnlimit) > 0 {
		return v
	}
	aqueduct := s.effects.CityBonus(c, types.EffectSizeAdj)
	extra := c.Surplus[types.OFood]
	if state.GranarySize(s.defs.Game, c.Size) == c.FoodStock {
		extra += c.FoodStock - state.GranarySize(s.defs.Game, c.Size-1)
	}
	if amount > 0 && !s.canGrowTo(c, c.Size+1) {
		v += extra * adv.FoodPriority * amount
		if c.Size == aqueduct {
			v += 30 * extra
		}
	}
	if aqueduct != 0 {
		v += req.Cities * amount * 4 / aqueduct
	}
	return v
}

func spaceship(s *Scorer, req Request, adv *AdvData, _ types.Effect, _, v int) int {
	if s.defs.Game.Spacerace && (adv.SpaceraceLeader || adv.ProductionLeader == req.Player.ID) {
		v += 95
	}
	return v
}

func moveBonus(s *Scorer, _ Request, adv *AdvData, eff types.Effect, amount, v int) int {
	return v + 8*v*amount + s.affectedUnits(eff, adv)
}

func unitNoLosePop(s *Scorer, req Request, _ *AdvData, _ types.Effect, _, v int) int {
	return v + len(s.world.UnitsOnTile(req.City.Tile))*2
}

func hpRegen(s *Scorer, req Request, adv *AdvData, eff types.Effect, _, v int) int {
	return v + 5*req.Cities + s.affectedUnits(eff, adv)
}

func veteranCombat(s *Scorer, req Request, adv *AdvData, eff types.Effect, _, v int) int {
	return v + 2*req.Cities + s.affectedUnits(eff, adv)
}

func veteranBuild(s *Scorer, req Request, adv *AdvData, eff types.Effect, amount, v int) int {
	return v + amount*(3*req.Cities+s.affectedUnits(eff, adv))
}

func upgradeUnit(_ *Scorer, _ Request, adv *AdvData, _ types.Effect, amount, v int) int {
	switch amount {
	case 1:
		return v + adv.Upgradeable*2
	case 2:
		return v + adv.Upgradeable*3
	}
	return v + adv.Upgradeable*4
}

func bribeCost(s *Scorer, req Request, adv *AdvData, eff types.Effect, amount, v int) int {
	return v + (2*req.Cities+s.affectedUnits(eff, adv))*amount/400
}

// defendBonus weighs a defense bonus by the threats the city faces: from
// the sea for ship defenses, over land for the rest.
func defendBonus(s *Scorer, req Request, adv *AdvData, eff types.Effect, amount, v int) int {
	c := req.City
	if adv.Defensive {
		v += amount / 10
	}

	var land, sea bool
	for class := range s.defs.UnitClasses {
		if !s.classAffected(class, eff) {
			continue
		}
		l, w := s.classMoves(class)
		land = land || l
		sea = sea || w
		if land && sea {
			break
		}
	}

	if sea {
		if s.isOcean(c.Tile) {
			if adv.Threats.Ocean[-s.world.Continent(c.Tile)] {
				v += amount / 5
			} else {
				v += amount / 20
			}
		} else {
			for _, n := range s.world.AdjacentTiles(c.Tile) {
				if n != c.Tile && s.isOcean(n) && adv.Threats.Ocean[-s.world.Continent(n)] {
					v += amount / 5
					break
				}
			}
		}
	}

	v += (amount/20 + boolInt(adv.Threats.Invasions) - 1) * req.Cities

	if req.Capital || land {
		contThreat := adv.Threats.Continent[s.world.Continent(c.Tile)]
		if contThreat || req.Capital || (adv.Threats.Invasions && s.oceanNear(c.Tile)) {
			switch {
			case contThreat:
				v += amount
			case !adv.Threats.IgWall:
				v += amount / (15 - boolInt(req.Capital)*5)
			default:
				v += amount / 15
			}
		}
	}
	return v
}

func gainAILove(s *Scorer, _ Request, adv *AdvData, _ types.Effect, amount, v int) int {
	for _, p := range s.world.Players {
		if p == nil || !p.AI {
			continue
		}
		if adv.Defensive {
			v += amount / 10
		} else {
			v += amount / 20
		}
	}
	return v
}

func upgradePrice(_ *Scorer, _ Request, adv *AdvData, _ types.Effect, amount, v int) int {
	return v - adv.Upgradeable*amount/2
}

func techCostFactor(_ *Scorer, _ Request, _ *AdvData, _ types.Effect, amount, v int) int {
	return v - amount*50
}

func tenPerPoint(_ *Scorer, _ Request, _ *AdvData, _ types.Effect, amount, v int) int {
	return v + amount*10
}

// migration counts foreign cities close enough to send migrants.
func migration(s *Scorer, req Request, _ *AdvData, _ types.Effect, amount, v int) int {
	dist := s.defs.Game.MgrDistance + 1
	for _, other := range s.world.AllCities() {
		if other.ID == req.City.ID || other.Owner == req.Player.ID {
			continue
		}
		if s.world.RealDist(req.City.Tile, other.Tile) <= dist {
			v += amount
		}
	}
	return v
}

func maxTradeRoutes(s *Scorer, req Request, adv *AdvData, _ types.Effect, amount, v int) int {
	t := trait(adv)
	revenue := math.Pow(2, float64(s.effects.CityBonus(req.City, types.EffectTradeRevenueBonus))/1000)
	v = int(float64(v) + float64(amount)*(revenue+float64(req.Cities))*float64(t)/TraitDefault)
	if len(req.City.TradeRoutes) >= s.effects.CityBonus(req.City, types.EffectMaxTradeRoutes) && amount > 0 {
		v += t
	}
	return v
}

func tradeRoutePct(s *Scorer, req Request, adv *AdvData, _ types.Effect, amount, v int) int {
	t := trait(adv)
	trade := 0
	for _, id := range req.City.TradeRoutes {
		if other, ok := s.world.Cities[id]; ok {
			trade += s.tradeBetween(req.City, other)
		}
	}
	v += trade * amount * t / 100 / TraitDefault
	if len(req.City.TradeRoutes) < s.effects.CityBonus(req.City, types.EffectMaxTradeRoutes) && amount > 0 {
		v += t * 5 / TraitDefault
	}
	return v
}
