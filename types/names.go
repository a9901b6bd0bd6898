package types

// ReqKindNames are the ruleset names of requirement kinds, indexed by ReqKind.
var ReqKindNames = [KindCount]string{
	KindNone:           "None",
	KindAdvance:        "Tech",
	KindTechFlag:       "TechFlag",
	KindGovernment:     "Gov",
	KindImprovement:    "Building",
	KindTerrain:        "Terrain",
	KindTerrainClass:   "TerrainClass",
	KindTerrainFlag:    "TerrainFlag",
	KindTerrainAlter:   "TerrainAlter",
	KindExtra:          "Extra",
	KindBaseFlag:       "BaseFlag",
	KindRoadFlag:       "RoadFlag",
	KindNation:         "Nation",
	KindNationality:    "Nationality",
	KindUnitType:       "UnitType",
	KindUnitFlag:       "UnitFlag",
	KindUnitClass:      "UnitClass",
	KindUnitClassFlag:  "UnitClassFlag",
	KindUnitState:      "UnitState",
	KindOutputType:     "OutputType",
	KindSpecialist:     "Specialist",
	KindMinSize:        "MinSize",
	KindMinCulture:     "MinCulture",
	KindAILevel:        "AI",
	KindMinYear:        "MinYear",
	KindCityTile:       "CityTile",
	KindAchievement:    "Achievement",
	KindDiplRel:        "DiplRel",
	KindMaxUnitsOnTile: "MaxUnitsOnTile",
	KindStyle:          "Style",
}

// ReqRangeNames are the ruleset names of requirement ranges.
var ReqRangeNames = [RangeCount]string{
	RangeLocal:      "Local",
	RangeAdjacent:   "Adjacent",
	RangeCity:       "City",
	RangeTradeRoute: "Traderoute",
	RangeContinent:  "Continent",
	RangePlayer:     "Player",
	RangeTeam:       "Team",
	RangeAlliance:   "Alliance",
	RangeWorld:      "World",
}

// EffectTypeNames are the ruleset names of effect types.
var EffectTypeNames = [EffectCount]string{
	EffectAirlift:                "Airlift",
	EffectAnyGovernment:          "Any_Government",
	EffectCapitalCity:            "Capital_City",
	EffectCityBuildSlots:         "City_Build_Slots",
	EffectCityImage:              "City_Image",
	EffectCityRadiusSq:           "City_Radius_Sq",
	EffectCityUnhappySize:        "City_Unhappysize",
	EffectCityVisionRadiusSq:     "City_Vision_Radius_Sq",
	EffectCivilWarChance:         "Civil_War_Chance",
	EffectDefendBonus:            "Defend_Bonus",
	EffectEmpireSizeBase:         "Empire_Size_Base",
	EffectEmpireSizeStep:         "Empire_Size_Step",
	EffectEnableNuke:             "Enable_Nuke",
	EffectEnableSpace:            "Enable_Space",
	EffectEnemyCitizenUnhappyPct: "Enemy_Citizen_Unhappy_Pct",
	EffectFanatics:               "Fanatics",
	EffectForceContent:           "Force_Content",
	EffectGainAILove:             "Gain_AI_Love",
	EffectGiveImmTech:            "Give_Imm_Tech",
	EffectGovCenter:              "Gov_Center",
	EffectGrowthFood:             "Growth_Food",
	EffectHappinessToGold:        "Happiness_To_Gold",
	EffectHasSenate:              "Has_Senate",
	EffectHaveEmbassies:          "Have_Embassies",
	EffectHealthPct:              "Health_Pct",
	EffectHistory:                "History",
	EffectHPRegen:                "HP_Regen",
	EffectInciteCostPct:          "Incite_Cost_Pct",
	EffectInspirePartisans:       "Inspire_Partisans",
	EffectIrrigationPct:          "Irrigation_Pct",
	EffectIrrigPossible:          "Irrig_Possible",
	EffectIrrigTFPossible:        "Irrig_TF_Possible",
	EffectMakeContent:            "Make_Content",
	EffectMakeContentMil:         "Make_Content_Mil",
	EffectMakeContentMilPer:      "Make_Content_Mil_Per",
	EffectMakeHappy:              "Make_Happy",
	EffectMartialLawEach:         "Martial_Law_Each",
	EffectMartialLawMax:          "Martial_Law_Max",
	EffectMaxRates:               "Max_Rates",
	EffectMaxTradeRoutes:         "Max_Trade_Routes",
	EffectMigrationPct:           "Migration_Pct",
	EffectMiningPct:              "Mining_Pct",
	EffectMiningPossible:         "Mining_Possible",
	EffectMiningTFPossible:       "Mining_TF_Possible",
	EffectMoveBonus:              "Move_Bonus",
	EffectNotTechSource:          "Not_Tech_Source",
	EffectNoAnarchy:              "No_Anarchy",
	EffectNoDiplomacy:            "No_Diplomacy",
	EffectNoUnhappy:              "No_Unhappy",
	EffectNukeProof:              "Nuke_Proof",
	EffectOutputAddTile:          "Output_Add_Tile",
	EffectOutputBonus:            "Output_Bonus",
	EffectOutputBonus2:           "Output_Bonus_2",
	EffectOutputIncTile:          "Output_Inc_Tile",
	EffectOutputIncTileCelebrate: "Output_Inc_Tile_Celebrate",
	EffectOutputPenaltyTile:      "Output_Penalty_Tile",
	EffectOutputPerTile:          "Output_Per_Tile",
	EffectOutputTilePunishPct:    "Output_Tile_Punish_Pct",
	EffectOutputWaste:            "Output_Waste",
	EffectOutputWasteByDistance:  "Output_Waste_By_Distance",
	EffectOutputWastePct:         "Output_Waste_Pct",
	EffectPerformance:            "Performance",
	EffectPolluPopPct:            "Pollu_Pop_Pct",
	EffectPolluProdPct:           "Pollu_Prod_Pct",
	EffectRaptureGrow:            "Rapture_Grow",
	EffectRevealCities:           "Reveal_Cities",
	EffectRevealMap:              "Reveal_Map",
	EffectRevolutionUnhappiness:  "Revolution_Unhappiness",
	EffectShield2GoldFactor:      "Shield2Gold_Factor",
	EffectSizeAdj:                "Size_Adj",
	EffectSizeUnlimit:            "Size_Unlimit",
	EffectSlowDownTimeline:       "Slow_Down_Timeline",
	EffectSpecialistOutput:       "Specialist_Output",
	EffectSpyResistant:           "Spy_Resistant",
	EffectSSComponent:            "SS_Component",
	EffectSSModule:               "SS_Module",
	EffectSSStructural:           "SS_Structural",
	EffectTechCostFactor:         "Tech_Cost_Factor",
	EffectTechParasite:           "Tech_Parasite",
	EffectTechUpkeepFree:         "Tech_Upkeep_Free",
	EffectTileWorkable:           "Tile_Workable",
	EffectTraderoutePct:          "Traderoute_Pct",
	EffectTradeRevenueBonus:      "Trade_Revenue_Bonus",
	EffectTransformPossible:      "Transform_Possible",
	EffectTurnYears:              "Turn_Years",
	EffectUnhappyFactor:          "Unhappy_Factor",
	EffectUnitBribeCostPct:       "Unit_Bribe_Cost_Pct",
	EffectUnitNoLosePop:          "Unit_No_Lose_Pop",
	EffectUnitRecover:            "Unit_Recover",
	EffectUnitUpkeepFreePerCity:  "Unit_Upkeep_Free_Per_City",
	EffectUnitVisionRadiusSq:     "Unit_Vision_Radius_Sq",
	EffectUpgradePricePct:        "Upgrade_Price_Pct",
	EffectUpgradeUnit:            "Upgrade_Unit",
	EffectUpkeepFactor:           "Upkeep_Factor",
	EffectUpkeepFree:             "Upkeep_Free",
	EffectVeteranBuild:           "Veteran_Build",
	EffectVeteranCombat:          "Veteran_Combat",
	EffectVictory:                "Victory",
	EffectVisibleWalls:           "Visible_Walls",
}

// TechStateNames are the save-game names of invention states.
var TechStateNames = map[TechState]string{
	TechUnknown:      "unknown",
	TechPrereqsKnown: "prereqs_known",
	TechKnown:        "known",
}

// DiplStateNames are the DiplRel names of diplomatic states.
var DiplStateNames = map[DiplState]string{
	DiplNoContact: "Never met",
	DiplWar:       "War",
	DiplCeasefire: "Cease-fire",
	DiplArmistice: "Armistice",
	DiplPeace:     "Peace",
	DiplAlliance:  "Alliance",
	DiplTeam:      "Team",
}

// AILevelNames are the names of AI skill levels.
var AILevelNames = map[AILevel]string{
	AIAway:     "Away",
	AINovice:   "Novice",
	AIEasy:     "Easy",
	AINormal:   "Normal",
	AIHard:     "Hard",
	AICheating: "Cheating",
}

// OutputNames are the names of output types.
var OutputNames = [OCount]string{
	ONone:    "None",
	OFood:    "Food",
	OShield:  "Shield",
	OTrade:   "Trade",
	OGold:    "Gold",
	OLuxury:  "Luxury",
	OScience: "Science",
}

// FreeTechMethodNames are the names of free tech methods.
var FreeTechMethodNames = map[FreeTechMethod]string{
	FreeTechGoal:     "Goal",
	FreeTechRandom:   "Random",
	FreeTechCheapest: "Cheapest",
}

// TechUpkeepStyleNames are the names of tech upkeep styles.
var TechUpkeepStyleNames = map[TechUpkeepStyle]string{
	UpkeepNone:    "None",
	UpkeepBasic:   "Basic",
	UpkeepPerCity: "Cities",
}

// ImprGenusNames are the names of improvement genera.
var ImprGenusNames = map[ImprGenus]string{
	GenusGreatWonder: "GreatWonder",
	GenusSmallWonder: "SmallWonder",
	GenusImprovement: "Improvement",
	GenusSpecial:     "Special",
}

func (k ReqKind) String() string {
	if k < 0 || k >= KindCount {
		return "Unknown"
	}
	return ReqKindNames[k]
}

func (r ReqRange) String() string {
	if r < 0 || r >= RangeCount {
		return "Unknown"
	}
	return ReqRangeNames[r]
}

func (e EffectType) String() string {
	if e < 0 || e >= EffectCount {
		return "Unknown"
	}
	return EffectTypeNames[e]
}

func (s TechState) String() string {
	return TechStateNames[s]
}
