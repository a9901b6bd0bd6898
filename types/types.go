// Package types defines the shared data structures for the civcore engine.
// This package contains only type definitions and their name tables, no game logic.
package types

// TechID indexes Defs.Advances. Negative values are sentinels.
type TechID int

// Tech sentinels. ANone is a real slot (index 0) that every research knows.
const (
	ANone    TechID = 0
	AFirst   TechID = 1
	ANever   TechID = -1
	AFuture  TechID = -2
	AUnset   TechID = -3
	AUnknown TechID = -4
)

// TechState is the per-research invention state.
type TechState int

const (
	TechUnknown TechState = iota
	TechPrereqsKnown
	TechKnown
)

// ReqKind selects the universal a requirement tests.
type ReqKind int

const (
	KindNone ReqKind = iota
	KindAdvance
	KindTechFlag
	KindGovernment
	KindImprovement
	KindTerrain
	KindTerrainClass
	KindTerrainFlag
	KindTerrainAlter
	KindExtra
	KindBaseFlag
	KindRoadFlag
	KindNation
	KindNationality
	KindUnitType
	KindUnitFlag
	KindUnitClass
	KindUnitClassFlag
	KindUnitState
	KindOutputType
	KindSpecialist
	KindMinSize
	KindMinCulture
	KindAILevel
	KindMinYear
	KindCityTile
	KindAchievement
	KindDiplRel
	KindMaxUnitsOnTile
	KindStyle
	KindCount
)

// ReqRange is how broadly a requirement is checked. Ranges are ordered
// from narrowest to widest.
type ReqRange int

const (
	RangeLocal ReqRange = iota
	RangeAdjacent
	RangeCity
	RangeTradeRoute
	RangeContinent
	RangePlayer
	RangeTeam
	RangeAlliance
	RangeWorld
	RangeCount
)

// Universal is the value side of a requirement. Value holds the resolved
// index for named kinds and the threshold for numeric kinds.
type Universal struct {
	Kind  ReqKind
	Name  string
	Value int
}

// Requirement is a single typed, rangeable, negatable condition.
type Requirement struct {
	Source   Universal
	Range    ReqRange
	Present  bool
	Survives bool
}

// EffectType names a gameplay quantity modified by effects.
type EffectType int

const (
	EffectAirlift EffectType = iota
	EffectAnyGovernment
	EffectCapitalCity
	EffectCityBuildSlots
	EffectCityImage
	EffectCityRadiusSq
	EffectCityUnhappySize
	EffectCityVisionRadiusSq
	EffectCivilWarChance
	EffectDefendBonus
	EffectEmpireSizeBase
	EffectEmpireSizeStep
	EffectEnableNuke
	EffectEnableSpace
	EffectEnemyCitizenUnhappyPct
	EffectFanatics
	EffectForceContent
	EffectGainAILove
	EffectGiveImmTech
	EffectGovCenter
	EffectGrowthFood
	EffectHappinessToGold
	EffectHasSenate
	EffectHaveEmbassies
	EffectHealthPct
	EffectHistory
	EffectHPRegen
	EffectInciteCostPct
	EffectInspirePartisans
	EffectIrrigationPct
	EffectIrrigPossible
	EffectIrrigTFPossible
	EffectMakeContent
	EffectMakeContentMil
	EffectMakeContentMilPer
	EffectMakeHappy
	EffectMartialLawEach
	EffectMartialLawMax
	EffectMaxRates
	EffectMaxTradeRoutes
	EffectMigrationPct
	EffectMiningPct
	EffectMiningPossible
	EffectMiningTFPossible
	EffectMoveBonus
	EffectNotTechSource
	EffectNoAnarchy
	EffectNoDiplomacy
	EffectNoUnhappy
	EffectNukeProof
	EffectOutputAddTile
	EffectOutputBonus
	EffectOutputBonus2
	EffectOutputIncTile
	EffectOutputIncTileCelebrate
	EffectOutputPenaltyTile
	EffectOutputPerTile
	EffectOutputTilePunishPct
	EffectOutputWaste
	EffectOutputWasteByDistance
	EffectOutputWastePct
	EffectPerformance
	EffectPolluPopPct
	EffectPolluProdPct
	EffectRaptureGrow
	EffectRevealCities
	EffectRevealMap
	EffectRevolutionUnhappiness
	EffectShield2GoldFactor
	EffectSizeAdj
	EffectSizeUnlimit
	EffectSlowDownTimeline
	EffectSpecialistOutput
	EffectSpyResistant
	EffectSSComponent
	EffectSSModule
	EffectSSStructural
	EffectTechCostFactor
	EffectTechParasite
	EffectTechUpkeepFree
	EffectTileWorkable
	EffectTraderoutePct
	EffectTradeRevenueBonus
	EffectTransformPossible
	EffectTurnYears
	EffectUnhappyFactor
	EffectUnitBribeCostPct
	EffectUnitNoLosePop
	EffectUnitRecover
	EffectUnitUpkeepFreePerCity
	EffectUnitVisionRadiusSq
	EffectUpgradePricePct
	EffectUpgradeUnit
	EffectUpkeepFactor
	EffectUpkeepFree
	EffectVeteranBuild
	EffectVeteranCombat
	EffectVictory
	EffectVisibleWalls
	EffectCount
)

// Effect is a requirement-gated numeric modifier.
type Effect struct {
	Type  EffectType
	Value int
	Reqs  []Requirement
}

// Advance is a technology in the tech tree. Cost and NumReqs are derived
// at load time from the tech cost style.
type Advance struct {
	ID         TechID
	Name       string
	Require    [2]TechID
	RootReq    TechID
	Flags      []string
	PresetCost int
	Cost       int
	NumReqs    int
}

// Invention is one tech's slot in a research.
type Invention struct {
	State            TechState
	RequiredTechs    []bool
	NumRequiredTechs int
	BulbsRequired    int
}

// Research is the technology state of a player, or of a team when
// research is pooled.
type Research struct {
	ID              int
	TechsResearched int
	FutureTech      int
	TechGoal        TechID
	Researching     TechID
	BulbsResearched int
	Inventions      []Invention
	KnownWithFlag   map[string]int
}

// ImprGenus classifies buildings.
type ImprGenus int

const (
	GenusGreatWonder ImprGenus = iota
	GenusSmallWonder
	GenusImprovement
	GenusSpecial
)

// Improvement is a city building.
type Improvement struct {
	ID         int
	Name       string
	Genus      ImprGenus
	Reqs       []Requirement
	ObsoleteBy []Requirement
	BuildCost  int
	Upkeep     int
	Flags      []string
}

// Government is a form of government.
type Government struct {
	ID   int
	Name string
	Reqs []Requirement
}

// UnitClass groups unit types sharing movement rules.
type UnitClass struct {
	ID    int
	Name  string
	Flags []string
}

// VeteranLevel is one rung of the veteran ladder.
type VeteranLevel struct {
	Name      string
	PowerFact int
	MoveBonus int
}

// UnitType is a buildable unit.
type UnitType struct {
	ID                int
	Name              string
	Class             int
	Flags             []string
	Roles             []string
	Attack            int
	Defense           int
	Move              int
	HP                int
	Firepower         int
	BuildCost         int
	ObsoletedBy       int
	TransportCapacity int
	Cargo             []int
	Veteran           []VeteranLevel
}

// TerrainClass separates land from water.
type TerrainClass int

const (
	TerrainLand TerrainClass = iota
	TerrainOceanic
)

// Terrain is a tile terrain type.
type Terrain struct {
	ID       int
	Name     string
	Class    TerrainClass
	Flags    []string
	Alters   []string
	NativeTo []int
	Animal   int
}

// Extra is a tile extra: roads, bases, specials.
type Extra struct {
	ID        int
	Name      string
	Flags     []string
	BaseFlags []string
	RoadFlags []string
	Reqs      []Requirement
	RmReqs    []Requirement
	NativeTo  []int
}

// Specialist is a non-working citizen type.
type Specialist struct {
	ID   int
	Name string
	Reqs []Requirement
}

// Nation is a playable nation.
type Nation struct {
	ID        int
	Name      string
	Adjective string
	Style     int
	InitTechs []TechID
	Barbarian bool
}

// Style is a nation style.
type Style struct {
	ID   int
	Name string
}

// CityStyle selects city graphics by requirement.
type CityStyle struct {
	ID   int
	Name string
	Reqs []Requirement
}

// Achievement is a one-time accomplishment.
type Achievement struct {
	ID    int
	Name  string
	Type  string
	Value int
}

// Disaster is a random city disaster.
type Disaster struct {
	ID        int
	Name      string
	Frequency int
	Reqs      []Requirement
}

// MusicStyle selects music by requirement.
type MusicStyle struct {
	ID   int
	Name string
	Reqs []Requirement
}

// ActionID indexes the fixed action catalog.
type ActionID int

// ActionEnabler gates an action with actor and target requirement vectors.
type ActionEnabler struct {
	Action     ActionID
	ActorReqs  []Requirement
	TargetReqs []Requirement
}

// TechUpkeepStyle selects the tech upkeep formula.
type TechUpkeepStyle int

const (
	UpkeepNone TechUpkeepStyle = iota
	UpkeepBasic
	UpkeepPerCity
)

// FreeTechMethod selects how free techs are chosen.
type FreeTechMethod int

const (
	FreeTechGoal FreeTechMethod = iota
	FreeTechRandom
	FreeTechCheapest
)

// GameInfo is the plain-integer surface of ruleset game options and
// server settings read by the core.
type GameInfo struct {
	Name                string
	TechCostStyle       int
	BaseTechCost        int
	TechLeakage         int
	TechUpkeepStyle     TechUpkeepStyle
	TechUpkeepDivider   int
	FreeTechMethod      FreeTechMethod
	TechStealAllowHoles bool
	TeamPooledResearch  bool
	HappyCost           int
	GranaryFoodIni      []int
	GranaryFoodInc      int
	Veteran             []VeteranLevel
	GlobalInitTechs     []TechID

	Sciencebox          int
	Freecost            int
	Foodbox             int
	Diplchance          int
	Barbarians          bool
	Spacerace           bool
	Illness             bool
	MgrDistance         int
	Techlossforgiveness int
}

// DiplState is the diplomatic state between two players.
type DiplState int

const (
	DiplNoContact DiplState = iota
	DiplWar
	DiplCeasefire
	DiplArmistice
	DiplPeace
	DiplAlliance
	DiplTeam
)

// AILevel is an AI skill level.
type AILevel int

const (
	AIAway AILevel = iota
	AINovice
	AIEasy
	AINormal
	AIHard
	AICheating
)

// Player is a participant in the game.
type Player struct {
	ID            int
	Name          string
	Nation        int
	Government    int
	Team          int
	Alive         bool
	AI            bool
	AILevel       AILevel
	ScienceCost   int
	Barbarian     bool
	Culture       int
	Gold          int
	BulbsLastTurn int
	Embassies     map[int]bool
	Diplstates    map[int]DiplState
	Known         map[int]bool
	Love          map[int]int
}

// Citizen feelings are tracked at each stage of the happiness pipeline.
const (
	FeelingBase = iota
	FeelingNationality
	FeelingLuxury
	FeelingEffect
	FeelingMartial
	FeelingFinal
	FeelingCount
)

// Citizen moods.
const (
	CitizenHappy = iota
	CitizenContent
	CitizenUnhappy
	CitizenAngry
	CitizenCount
)

// Output types. ONone marks "no output" in contexts.
const (
	ONone = iota
	OFood
	OShield
	OTrade
	OGold
	OLuxury
	OScience
	OCount
)

// City is a player-owned settlement.
type City struct {
	ID          int
	Name        string
	Owner       int
	Tile        int
	Size        int
	Capital     bool
	Buildings   map[int]bool
	Specialists map[int]int
	Citizens    map[int]int
	Feel        [FeelingCount][CitizenCount]int
	Surplus     [OCount]int
	FoodStock   int
	TradeRoutes []int
	Culture     int
	Illness     int
}

// Unit is a unit on the map.
type Unit struct {
	ID          int
	Type        int
	Owner       int
	Tile        int
	HP          int
	Veteran     int
	HomeCity    int
	Transporter int
}

// Tile is one map tile. Continent is positive for land, negative for ocean.
type Tile struct {
	Index     int
	X, Y      int
	Terrain   int
	Extras    []int
	Continent int
	Owner     int
}

// Map is the game map. Tiles are stored row-major.
type Map struct {
	Width  int
	Height int
	Tiles  []Tile
}

// Event is emitted by a session step and dispatched to script signals.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single console step.
type Result struct {
	Events []Event
	Output []string
	// Changed lists, in order, the research IDs whose techs the command
	// changed.
	Changed []int
}
