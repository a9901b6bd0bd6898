package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/civcore/engine/state"
	"github.com/nathoo/civcore/types"
)

// revealRadiusSq is how far a player sees around its cities and units
// when the map is not revealed.
const revealRadiusSq = 8

// compileWorld builds the starting world from Map, Player, City and Unit
// definitions. A ruleset without a Map gets an empty world.
func (c *compiler) compileWorld() (*state.World, error) {
	start := getInt(c.coll.game, "start_year", -4000)
	if c.coll.mapDef == nil {
		if len(c.coll.players) > 0 || len(c.coll.cities) > 0 || len(c.coll.units) > 0 {
			return nil, fmt.Errorf("scenario has players, cities or units but no Map{}")
		}
		w := state.NewWorld(types.Map{})
		w.Turn, w.Year = 1, start
		return w, nil
	}

	m, err := c.compileMap(c.coll.mapDef)
	if err != nil {
		return nil, fmt.Errorf("compiling Map: %w", err)
	}
	w := state.NewWorld(m)
	w.Turn, w.Year = 1, start

	players, err := buildIndex("player", c.coll.players, 0)
	if err != nil {
		return nil, err
	}
	cities, err := buildIndex("city", c.coll.cities, 1)
	if err != nil {
		return nil, err
	}

	for i, raw := range c.coll.players {
		p, err := c.compilePlayer(i, raw)
		if err != nil {
			return nil, fmt.Errorf("compiling player %s: %w", raw.name, err)
		}
		w.Players = append(w.Players, p)
	}
	for i, raw := range c.coll.players {
		if err := c.linkPlayer(w, w.Players[i], raw.table, players); err != nil {
			return nil, fmt.Errorf("compiling player %s: %w", raw.name, err)
		}
	}

	for i, raw := range c.coll.cities {
		if err := c.compileCity(w, i+1, raw, players, cities); err != nil {
			return nil, fmt.Errorf("compiling city %s: %w", raw.name, err)
		}
	}
	for i, raw := range c.coll.units {
		if err := c.compileUnit(w, i+1, raw, players, cities); err != nil {
			return nil, fmt.Errorf("compiling unit %d (%s): %w", i+1, raw.name, err)
		}
	}

	for i, raw := range c.coll.players {
		revealFor(w, w.Players[i], getBool(raw.table, "reveal_map", true))
	}
	return w, nil
}

func (c *compiler) compileMap(t *lua.LTable) (types.Map, error) {
	width, height := getInt(t, "width", 0), getInt(t, "height", 0)
	if width <= 0 || height <= 0 {
		return types.Map{}, fmt.Errorf("width and height must be positive")
	}
	base, err := c.lookup("terrain", c.terrains, getString(t, "terrain"))
	if err != nil {
		return types.Map{}, err
	}
	m := state.NewMap(width, height, base)

	if tiles := getTable(t, "tiles"); tiles != nil {
		for i := 1; i <= tiles.MaxN(); i++ {
			tt, ok := tiles.RawGetInt(i).(*lua.LTable)
			if !ok {
				return types.Map{}, fmt.Errorf("tiles[%d] is not a table", i)
			}
			x, y := getInt(tt, "x", -1), getInt(tt, "y", -1)
			if x < 0 || x >= width || y < 0 || y >= height {
				return types.Map{}, fmt.Errorf("tiles[%d]: (%d,%d) is off the map", i, x, y)
			}
			tile := &m.Tiles[y*width+x]
			if name := getString(tt, "terrain"); name != "" {
				if tile.Terrain, err = c.lookup("terrain", c.terrains, name); err != nil {
					return types.Map{}, fmt.Errorf("tiles[%d]: %w", i, err)
				}
			}
			if tile.Extras, err = c.lookupAll("extra", c.extras, getStrings(tt, "extras")); err != nil {
				return types.Map{}, fmt.Errorf("tiles[%d]: %w", i, err)
			}
		}
	}
	assignContinents(&m, c.defs.Terrains)
	return m, nil
}

// assignContinents numbers connected land regions 1, 2, ... and water
// regions -1, -2, ...; tiles touching diagonally are connected.
func assignContinents(m *types.Map, terrains []types.Terrain) {
	oceanic := func(t *types.Tile) bool {
		return t.Terrain >= 0 && t.Terrain < len(terrains) && terrains[t.Terrain].Class == types.TerrainOceanic
	}
	land, water := 0, 0
	for i := range m.Tiles {
		if m.Tiles[i].Continent != 0 {
			continue
		}
		wet := oceanic(&m.Tiles[i])
		var id int
		if wet {
			water--
			id = water
		} else {
			land++
			id = land
		}
		queue := []int{i}
		m.Tiles[i].Continent = id
		for len(queue) > 0 {
			t := &m.Tiles[queue[0]]
			queue = queue[1:]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x, y := t.X+dx, t.Y+dy
					if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
						continue
					}
					n := &m.Tiles[y*m.Width+x]
					if n.Continent == 0 && oceanic(n) == wet {
						n.Continent = id
						queue = append(queue, n.Index)
					}
				}
			}
		}
	}
}

func (c *compiler) compilePlayer(id int, raw rawDef) (*types.Player, error) {
	t := raw.table
	p := &types.Player{
		ID:            id,
		Name:          raw.name,
		Team:          getInt(t, "team", id),
		Alive:         getBool(t, "alive", true),
		AI:            getBool(t, "ai", false),
		ScienceCost:   getInt(t, "science_cost", 100),
		Culture:       getInt(t, "culture", 0),
		Gold:          getInt(t, "gold", 0),
		BulbsLastTurn: getInt(t, "bulbs_last_turn", 0),
		Embassies:     map[int]bool{},
		Diplstates:    map[int]types.DiplState{},
		Known:         map[int]bool{},
		Love:          map[int]int{},
	}
	var err error
	if p.Nation, err = c.lookup("nation", c.nations, getString(t, "nation")); err != nil {
		return nil, err
	}
	p.Barbarian = getBool(t, "barbarian", c.defs.Nations[p.Nation].Barbarian)
	if p.Government, err = c.lookup("government", c.govs, getString(t, "government")); err != nil {
		return nil, err
	}
	if s := getString(t, "ai_level"); s != "" {
		level, ok := lookupName(types.AILevelNames, s)
		if !ok {
			return nil, fmt.Errorf("unknown ai_level %q", s)
		}
		p.AILevel = level
	} else if p.AI {
		p.AILevel = types.AINormal
	}
	return p, nil
}

// linkPlayer resolves the fields that name other players. Diplomatic
// states not given by the other side are mirrored.
func (c *compiler) linkPlayer(w *state.World, p *types.Player, t *lua.LTable, players index) error {
	for _, name := range getStrings(t, "embassies") {
		other, err := c.lookup("player", players, name)
		if err != nil {
			return fmt.Errorf("embassies: %w", err)
		}
		p.Embassies[other] = true
	}
	if getBool(t, "embassy_with_all", false) {
		w.EmbassyWithAll[p.ID] = true
	}

	var err error
	if dt := getTable(t, "diplstates"); dt != nil {
		dt.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			var other int
			if other, err = c.lookup("player", players, lua.LVAsString(k)); err != nil {
				return
			}
			ds, ok := lookupName(types.DiplStateNames, lua.LVAsString(v))
			if !ok {
				err = fmt.Errorf("unknown diplomatic state %q", lua.LVAsString(v))
				return
			}
			p.Diplstates[other] = ds
			if o := w.Players[other]; o != nil {
				if _, set := o.Diplstates[p.ID]; !set {
					o.Diplstates[p.ID] = ds
				}
			}
		})
	}
	if err != nil {
		return fmt.Errorf("diplstates: %w", err)
	}

	if love := getTable(t, "love"); love != nil {
		love.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			var other int
			if other, err = c.lookup("player", players, lua.LVAsString(k)); err == nil {
				p.Love[other] = int(lua.LVAsNumber(v))
			}
		})
	}
	if err != nil {
		return fmt.Errorf("love: %w", err)
	}
	return nil
}

func (c *compiler) tileAt(w *state.World, t *lua.LTable) (*types.Tile, error) {
	x, y := getInt(t, "x", -1), getInt(t, "y", -1)
	tile := w.TileAt(x, y)
	if tile == nil {
		return nil, fmt.Errorf("(%d,%d) is off the map", x, y)
	}
	return tile, nil
}

func (c *compiler) compileCity(w *state.World, id int, raw rawDef, players, cities index) error {
	t := raw.table
	owner, err := c.lookup("player", players, getString(t, "owner"))
	if err != nil {
		return err
	}
	tile, err := c.tileAt(w, t)
	if err != nil {
		return err
	}
	city := &types.City{
		ID:          id,
		Name:        raw.name,
		Owner:       owner,
		Tile:        tile.Index,
		Size:        getInt(t, "size", 1),
		Capital:     getBool(t, "capital", false),
		Buildings:   map[int]bool{},
		Specialists: map[int]int{},
		FoodStock:   getInt(t, "food_stock", 0),
		Culture:     getInt(t, "culture", 0),
	}
	city.Citizens = map[int]int{owner: city.Size}

	buildings, err := c.lookupAll("building", c.buildings, getStrings(t, "buildings"))
	if err != nil {
		return err
	}
	for _, b := range buildings {
		city.Buildings[b] = true
		if c.defs.IsGreatWonder(b) {
			w.Wonders[b] = id
			w.WondersEver[b] = true
		}
	}

	if sp := getTable(t, "specialists"); sp != nil {
		sp.ForEach(func(k, v lua.LValue) {
			if err != nil {
				return
			}
			var s int
			if s, err = c.lookup("specialist", c.specialists, lua.LVAsString(k)); err == nil {
				city.Specialists[s] = int(lua.LVAsNumber(v))
			}
		})
		if err != nil {
			return err
		}
	}
	if city.TradeRoutes, err = c.lookupAll("city", cities, getStrings(t, "trade_routes")); err != nil {
		return fmt.Errorf("trade_routes: %w", err)
	}

	tile.Owner = owner
	w.Cities[id] = city
	return nil
}

func (c *compiler) compileUnit(w *state.World, id int, raw rawDef, players, cities index) error {
	t := raw.table
	utype, err := c.lookup("unit type", c.utypes, raw.name)
	if err != nil {
		return err
	}
	owner, err := c.lookup("player", players, getString(t, "owner"))
	if err != nil {
		return err
	}
	tile, err := c.tileAt(w, t)
	if err != nil {
		return err
	}
	home, err := c.optional("city", cities, getString(t, "home"))
	if err != nil {
		return err
	}
	w.Units[id] = &types.Unit{
		ID:          id,
		Type:        utype,
		Owner:       owner,
		Tile:        tile.Index,
		HP:          getInt(t, "hp", c.defs.UnitTypes[utype].HP),
		Veteran:     getInt(t, "veteran", 0),
		HomeCity:    home,
		Transporter: -1,
	}
	return nil
}

// revealFor marks the tiles p knows: all of them, or those near its
// cities and units.
func revealFor(w *state.World, p *types.Player, all bool) {
	if all {
		for i := range w.Map.Tiles {
			p.Known[i] = true
		}
		return
	}
	var centers []int
	for _, c := range w.PlayerCities(p.ID) {
		centers = append(centers, c.Tile)
	}
	for _, u := range w.PlayerUnits(p.ID) {
		centers = append(centers, u.Tile)
	}
	for _, center := range centers {
		for _, i := range w.TilesWithin(center, revealRadiusSq) {
			p.Known[i] = true
		}
	}
}
