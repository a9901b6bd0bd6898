// Package state holds the immutable ruleset definitions and the mutable
// world (players, cities, units, map) queried by the rule engines.
package state

import (
	"sort"
	"strings"

	"github.com/nathoo/civcore/types"
)

// DefaultCityRadiusSq is the squared radius of a city's work area.
const DefaultCityRadiusSq = 5

// Defs holds the immutable ruleset loaded from Lua. Slice index equals
// the entity ID. Advances[0] is the "None" advance.
type Defs struct {
	Game         types.GameInfo
	Advances     []types.Advance
	Governments  []types.Government
	Improvements []types.Improvement
	UnitClasses  []types.UnitClass
	UnitTypes    []types.UnitType
	Terrains     []types.Terrain
	Extras       []types.Extra
	Specialists  []types.Specialist
	Nations      []types.Nation
	Styles       []types.Style
	CityStyles   []types.CityStyle
	Achievements []types.Achievement
	Disasters    []types.Disaster
	MusicStyles  []types.MusicStyle
	Effects      []types.Effect
	Enablers     []types.ActionEnabler
	Script       string
}

// AdvanceCount returns the number of tech slots, including A_NONE.
func (d *Defs) AdvanceCount() int {
	return len(d.Advances)
}

// Advance returns the advance for id, or nil if id is out of range.
func (d *Defs) Advance(id types.TechID) *types.Advance {
	if id < 0 || int(id) >= len(d.Advances) {
		return nil
	}
	return &d.Advances[id]
}

// ValidAdvance reports whether id names an advance that exists and has
// not been removed from the ruleset.
func (d *Defs) ValidAdvance(id types.TechID) bool {
	a := d.Advance(id)
	if a == nil {
		return false
	}
	return a.Require[0] != types.ANever && a.Require[1] != types.ANever
}

// AdvanceByName looks up an advance by rule name, case-insensitively.
func (d *Defs) AdvanceByName(name string) (types.TechID, bool) {
	for i := range d.Advances {
		if strings.EqualFold(d.Advances[i].Name, name) {
			return types.TechID(i), true
		}
	}
	return types.AUnknown, false
}

// GovernmentByName returns the government index or -1.
func (d *Defs) GovernmentByName(name string) int {
	for i := range d.Governments {
		if strings.EqualFold(d.Governments[i].Name, name) {
			return i
		}
	}
	return -1
}

// ImprovementByName returns the improvement index or -1.
func (d *Defs) ImprovementByName(name string) int {
	for i := range d.Improvements {
		if strings.EqualFold(d.Improvements[i].Name, name) {
			return i
		}
	}
	return -1
}

// UnitTypeByName returns the unit type index or -1.
func (d *Defs) UnitTypeByName(name string) int {
	for i := range d.UnitTypes {
		if strings.EqualFold(d.UnitTypes[i].Name, name) {
			return i
		}
	}
	return -1
}

// UnitClassByName returns the unit class index or -1.
func (d *Defs) UnitClassByName(name string) int {
	for i := range d.UnitClasses {
		if strings.EqualFold(d.UnitClasses[i].Name, name) {
			return i
		}
	}
	return -1
}

// TerrainByName returns the terrain index or -1.
func (d *Defs) TerrainByName(name string) int {
	for i := range d.Terrains {
		if strings.EqualFold(d.Terrains[i].Name, name) {
			return i
		}
	}
	return -1
}

// ExtraByName returns the extra index or -1.
func (d *Defs) ExtraByName(name string) int {
	for i := range d.Extras {
		if strings.EqualFold(d.Extras[i].Name, name) {
			return i
		}
	}
	return -1
}

// SpecialistByName returns the specialist index or -1.
func (d *Defs) SpecialistByName(name string) int {
	for i := range d.Specialists {
		if strings.EqualFold(d.Specialists[i].Name, name) {
			return i
		}
	}
	return -1
}

// NationByName returns the nation index or -1.
func (d *Defs) NationByName(name string) int {
	for i := range d.Nations {
		if strings.EqualFold(d.Nations[i].Name, name) {
			return i
		}
	}
	return -1
}

// StyleByName returns the style index or -1.
func (d *Defs) StyleByName(name string) int {
	for i := range d.Styles {
		if strings.EqualFold(d.Styles[i].Name, name) {
			return i
		}
	}
	return -1
}

// AchievementByName returns the achievement index or -1.
func (d *Defs) AchievementByName(name string) int {
	for i := range d.Achievements {
		if strings.EqualFold(d.Achievements[i].Name, name) {
			return i
		}
	}
	return -1
}

// UnitTypeHasFlag reports whether the unit type carries flag.
func (d *Defs) UnitTypeHasFlag(utype int, flag string) bool {
	if utype < 0 || utype >= len(d.UnitTypes) {
		return false
	}
	return HasFlag(d.UnitTypes[utype].Flags, flag)
}

// UnitTypeHasRole reports whether the unit type carries role.
func (d *Defs) UnitTypeHasRole(utype int, role string) bool {
	if utype < 0 || utype >= len(d.UnitTypes) {
		return false
	}
	return HasFlag(d.UnitTypes[utype].Roles, role) || HasFlag(d.UnitTypes[utype].Flags, role)
}

// VeteranLevel returns the veteran level of a unit type, falling back to
// the game-wide ladder. The zero level has power factor 100.
func (d *Defs) VeteranLevel(utype, level int) types.VeteranLevel {
	ladder := d.Game.Veteran
	if utype >= 0 && utype < len(d.UnitTypes) && len(d.UnitTypes[utype].Veteran) > 0 {
		ladder = d.UnitTypes[utype].Veteran
	}
	if level < 0 || level >= len(ladder) {
		return types.VeteranLevel{Name: "green", PowerFact: 100}
	}
	return ladder[level]
}

// IsWonder reports whether the improvement is a great or small wonder.
func (d *Defs) IsWonder(impr int) bool {
	if impr < 0 || impr >= len(d.Improvements) {
		return false
	}
	g := d.Improvements[impr].Genus
	return g == types.GenusGreatWonder || g == types.GenusSmallWonder
}

// IsGreatWonder reports whether the improvement is a great wonder.
func (d *Defs) IsGreatWonder(impr int) bool {
	if impr < 0 || impr >= len(d.Improvements) {
		return false
	}
	return d.Improvements[impr].Genus == types.GenusGreatWonder
}

// HasFlag reports whether flags contains flag, case-insensitively.
func HasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// ContainsInt reports whether ids contains id.
func ContainsInt(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// World is the mutable game state: who owns what, and where.
type World struct {
	Players        []*types.Player
	Cities         map[int]*types.City
	Units          map[int]*types.Unit
	Map            types.Map
	Turn           int
	Year           int
	Wonders        map[int]int
	WondersEver    map[int]bool
	Achieved       map[int]map[int]bool
	EmbassyWithAll map[int]bool
}

// NewWorld creates an empty world on the given map.
func NewWorld(m types.Map) *World {
	return &World{
		Cities:         map[int]*types.City{},
		Units:          map[int]*types.Unit{},
		Map:            m,
		Wonders:        map[int]int{},
		WondersEver:    map[int]bool{},
		Achieved:       map[int]map[int]bool{},
		EmbassyWithAll: map[int]bool{},
	}
}

// NewMap builds a width x height map filled with one terrain. Continent
// numbers are left at zero for the caller to assign.
func NewMap(width, height, terrain int) types.Map {
	m := types.Map{Width: width, Height: height}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Tiles = append(m.Tiles, types.Tile{
				Index:   y*width + x,
				X:       x,
				Y:       y,
				Terrain: terrain,
				Owner:   -1,
			})
		}
	}
	return m
}

// Player returns the player with id, or nil.
func (w *World) Player(id int) *types.Player {
	if id < 0 || id >= len(w.Players) {
		return nil
	}
	return w.Players[id]
}

// AlivePlayers returns the players still in the game, in ID order.
func (w *World) AlivePlayers() []*types.Player {
	var out []*types.Player
	for _, p := range w.Players {
		if p != nil && p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Tile returns the tile at index, or nil.
func (w *World) Tile(index int) *types.Tile {
	if index < 0 || index >= len(w.Map.Tiles) {
		return nil
	}
	return &w.Map.Tiles[index]
}

// TileAt returns the tile at (x, y), or nil if off the map.
func (w *World) TileAt(x, y int) *types.Tile {
	if x < 0 || y < 0 || x >= w.Map.Width || y >= w.Map.Height {
		return nil
	}
	return w.Tile(y*w.Map.Width + x)
}

// TileCity returns the city on the tile, or nil.
func (w *World) TileCity(tile int) *types.City {
	for _, c := range w.sortedCities() {
		if c.Tile == tile {
			return c
		}
	}
	return nil
}

// UnitsOnTile returns the units on the tile in ID order.
func (w *World) UnitsOnTile(tile int) []*types.Unit {
	var out []*types.Unit
	for _, u := range w.sortedUnits() {
		if u.Tile == tile {
			out = append(out, u)
		}
	}
	return out
}

// PlayerCities returns the cities owned by pid in ID order.
func (w *World) PlayerCities(pid int) []*types.City {
	var out []*types.City
	for _, c := range w.sortedCities() {
		if c.Owner == pid {
			out = append(out, c)
		}
	}
	return out
}

// PlayerUnits returns the units owned by pid in ID order.
func (w *World) PlayerUnits(pid int) []*types.Unit {
	var out []*types.Unit
	for _, u := range w.sortedUnits() {
		if u.Owner == pid {
			out = append(out, u)
		}
	}
	return out
}

// SupportedUnits returns the units whose home is the city.
func (w *World) SupportedUnits(cityID int) []*types.Unit {
	var out []*types.Unit
	for _, u := range w.sortedUnits() {
		if u.HomeCity == cityID {
			out = append(out, u)
		}
	}
	return out
}

// AllCities returns every city in ID order.
func (w *World) AllCities() []*types.City {
	return w.sortedCities()
}

// CityOwner returns the owner of a city.
func (w *World) CityOwner(c *types.City) *types.Player {
	if c == nil {
		return nil
	}
	return w.Player(c.Owner)
}

// UnitOwner returns the owner of a unit.
func (w *World) UnitOwner(u *types.Unit) *types.Player {
	if u == nil {
		return nil
	}
	return w.Player(u.Owner)
}

// CapitalOf returns the player's capital city, or nil.
func (w *World) CapitalOf(pid int) *types.City {
	for _, c := range w.PlayerCities(pid) {
		if c.Capital {
			return c
		}
	}
	return nil
}

func (w *World) sortedCities() []*types.City {
	out := make([]*types.City, 0, len(w.Cities))
	for _, c := range w.Cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedUnits() []*types.Unit {
	out := make([]*types.Unit, 0, len(w.Units))
	for _, u := range w.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SameTeam reports whether two players share a team. A player is on its
// own team.
func SameTeam(a, b *types.Player) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID || a.Team == b.Team
}

// Diplstate returns the diplomatic state between a and b.
func Diplstate(a, b *types.Player) types.DiplState {
	if SameTeam(a, b) {
		return types.DiplTeam
	}
	if a == nil || b == nil || a.Diplstates == nil {
		return types.DiplNoContact
	}
	return a.Diplstates[b.ID]
}

// Allied reports whether a and b are allied or on the same team.
func Allied(a, b *types.Player) bool {
	ds := Diplstate(a, b)
	return ds == types.DiplAlliance || ds == types.DiplTeam
}

// HasRealEmbassy reports whether a has an embassy with b.
func HasRealEmbassy(a, b *types.Player) bool {
	if a == nil || b == nil || a.Embassies == nil {
		return false
	}
	return a.Embassies[b.ID]
}

// HasEmbassy reports whether a sees b as if through an embassy: a real
// embassy, an embassy effect, or a == b.
func (w *World) HasEmbassy(a, b *types.Player) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID == b.ID || HasRealEmbassy(a, b) || w.EmbassyWithAll[a.ID]
}

// CanSeeTechsOf reports whether viewer may inspect target's research.
func (w *World) CanSeeTechsOf(viewer, target *types.Player) bool {
	return w.HasEmbassy(viewer, target)
}

// CanSeeCityInternals reports whether viewer may inspect a city's
// buildings, size breakdown and citizens.
func CanSeeCityInternals(viewer *types.Player, c *types.City) bool {
	return viewer != nil && c != nil && c.Owner == viewer.ID
}

// TileKnown reports whether viewer has seen the tile.
func TileKnown(viewer *types.Player, tile int) bool {
	if viewer == nil || viewer.Known == nil {
		return false
	}
	return viewer.Known[tile]
}

// SqDist returns the squared distance between two tiles.
func (w *World) SqDist(a, b int) int {
	ta, tb := w.Tile(a), w.Tile(b)
	if ta == nil || tb == nil {
		return -1
	}
	dx, dy := ta.X-tb.X, ta.Y-tb.Y
	return dx*dx + dy*dy
}

// RealDist returns the move distance between two tiles.
func (w *World) RealDist(a, b int) int {
	ta, tb := w.Tile(a), w.Tile(b)
	if ta == nil || tb == nil {
		return -1
	}
	return max(abs(ta.X-tb.X), abs(ta.Y-tb.Y))
}

// Adjacent reports whether two distinct tiles touch.
func (w *World) Adjacent(a, b int) bool {
	return a != b && w.RealDist(a, b) == 1
}

// AdjacentTiles returns the tile itself and its neighbours.
func (w *World) AdjacentTiles(tile int) []int {
	t := w.Tile(tile)
	if t == nil {
		return nil
	}
	var out []int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if n := w.TileAt(t.X+dx, t.Y+dy); n != nil {
				out = append(out, n.Index)
			}
		}
	}
	return out
}

// TilesWithin returns the tiles within radiusSq of center.
func (w *World) TilesWithin(center, radiusSq int) []int {
	var out []int
	for i := range w.Map.Tiles {
		if d := w.SqDist(center, i); d >= 0 && d <= radiusSq {
			out = append(out, i)
		}
	}
	return out
}

// TileHasExtra reports whether the tile carries the extra.
func (w *World) TileHasExtra(tile, extra int) bool {
	t := w.Tile(tile)
	return t != nil && ContainsInt(t.Extras, extra)
}

// Continent returns the continent number of a tile, or 0.
func (w *World) Continent(tile int) int {
	if t := w.Tile(tile); t != nil {
		return t.Continent
	}
	return 0
}

// GranarySize returns the food needed for a city of the given size to grow.
func GranarySize(game types.GameInfo, size int) int {
	if size < 1 {
		size = 1
	}
	inis := len(game.GranaryFoodIni)
	var base int
	switch {
	case inis == 0:
		base = game.GranaryFoodInc * size
	case size > inis:
		base = game.GranaryFoodIni[inis-1] + game.GranaryFoodInc*(size-inis)
	default:
		base = game.GranaryFoodIni[size-1]
	}
	foodbox := game.Foodbox
	if foodbox == 0 {
		foodbox = 100
	}
	return max(base*foodbox/100, 1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
