// Package territory owns the occupancy grid and the city registry. It
// validates territory growth, building and inhabitant placement, and
// recomputes border outlines on demand.
//
// A Manager is not safe for concurrent use.
package territory

import (
	"fmt"
	"log/slog"

	"github.com/golang/geo/r2"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// Config holds the grid dimensions and tile geometry of a Manager.
type Config struct {
	Rows             int
	Columns          int
	TileWidth        float64 // Tile width in pixels
	TileHeight       float64 // Tile height in pixels
	PixelSearchDepth int     // Max hex steps when resolving a tile pixel
}

// DefaultConfig returns unit-sized tiles with the default search depth.
// Rows and Columns must still be set.
func DefaultConfig() Config {
	return Config{
		TileWidth:        1,
		TileHeight:       1,
		PixelSearchDepth: world.DefaultSearchDepth,
	}
}

// Manager is the city registry plus the occupancy grid. Only city anchors
// are stored in the grid; grown tiles live in each city's tile list.
type Manager struct {
	grid        *world.Grid
	layout      world.Layout
	searchDepth int
	catalog     *economy.Catalog

	cities     map[social.CityID]*social.City
	lastCityID social.CityID
}

// NewManager builds a manager over a row-major terrain layer. Terrain values
// in impassable become unbuildable. catalog is copied; building type ids
// are 1-based positions in it.
func NewManager(cfg Config, layer []int, impassable []int, catalog []economy.BuildingType) (*Manager, error) {
	grid, err := world.NewGrid(layer, cfg.Rows, cfg.Columns, impassable)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	if cfg.TileWidth <= 0 || cfg.TileHeight <= 0 {
		return nil, fmt.Errorf("tile size %gx%g must be positive", cfg.TileWidth, cfg.TileHeight)
	}
	depth := cfg.PixelSearchDepth
	if depth <= 0 {
		depth = world.DefaultSearchDepth
	}

	return &Manager{
		grid:        grid,
		layout:      world.Layout{TileWidth: cfg.TileWidth, TileHeight: cfg.TileHeight},
		searchDepth: depth,
		catalog:     economy.NewCatalog(catalog),
		cities:      make(map[social.CityID]*social.City),
	}, nil
}

// Layout returns the pixel layout of the tiles.
func (m *Manager) Layout() world.Layout {
	return m.layout
}

// Catalog returns the building catalog.
func (m *Manager) Catalog() *economy.Catalog {
	return m.catalog
}

// Dimensions returns the grid rows and columns.
func (m *Manager) Dimensions() (rows, columns int) {
	return m.grid.Rows, m.grid.Columns
}

// LastCityID returns the most recently assigned city id, 0 if none.
func (m *Manager) LastCityID() social.CityID {
	return m.lastCityID
}

// CreateCity registers city if its anchor cell is empty. On success the
// city gets the next id and the anchor cell is marked with it. The city's
// tiles are taken as given.
func (m *Manager) CreateCity(city *social.City) bool {
	if city == nil {
		panic("territory: CreateCity called with nil city")
	}
	if cell := m.grid.Get(city.Anchor); cell != world.CellEmpty {
		return reject("create city", "anchor", city.Anchor, "cell", cell)
	}

	if city.Properties == nil {
		city.Properties = make(map[string]social.Property)
	}

	m.lastCityID++
	city.ID = m.lastCityID
	m.cities[city.ID] = city
	m.grid.Set(city.Anchor, city.ID)

	slog.Debug("city created", "id", city.ID, "player", city.Player, "name", city.Name, "anchor", city.Anchor)
	return true
}

// AddCityTile grows a city by tile, resolving the tile's pixel from the
// city anchor. See AddCityTileAt for the growth rules.
func (m *Manager) AddCityTile(cityID social.CityID, tile world.CubeCoord) bool {
	return m.addCityTile(cityID, tile, nil)
}

// AddCityTileAt grows a city by tile placed at an explicit pixel. The tile
// must touch the city, must not already belong to it and must not be
// claimed by any other city.
func (m *Manager) AddCityTileAt(cityID social.CityID, tile world.CubeCoord, pixel r2.Point) bool {
	return m.addCityTile(cityID, tile, &pixel)
}

func (m *Manager) addCityTile(cityID social.CityID, tile world.CubeCoord, pixel *r2.Point) bool {
	city, ok := m.cities[cityID]
	if !ok {
		return reject("add tile", "city", cityID, "reason", "unknown city")
	}
	if city.HasTile(tile) {
		return reject("add tile", "city", cityID, "tile", tile, "reason", "already part of city")
	}
	if !city.IsAdjacent(tile) {
		return reject("add tile", "city", cityID, "tile", tile, "reason", "not adjacent")
	}
	for _, other := range m.cities {
		if other.ID == city.ID {
			continue
		}
		if other.HasTile(tile) {
			return reject("add tile", "city", cityID, "tile", tile, "reason", "claimed", "owner", other.ID)
		}
	}

	var p r2.Point
	if pixel != nil {
		p = *pixel
	} else {
		p, ok = m.layout.ResolvePixel(city.Anchor, city.AnchorPixel, tile, m.searchDepth)
		if !ok {
			return reject("add tile", "city", cityID, "tile", tile, "reason", "pixel unresolved", "depth", m.searchDepth)
		}
	}

	city.Tiles = append(city.Tiles, tile)
	city.TilePixels = append(city.TilePixels, p)
	return true
}

// AddBuilding places a building of typeID on a tile of the city. Each tile,
// the anchor included, holds at most one building.
func (m *Manager) AddBuilding(cityID social.CityID, coord world.CubeCoord, typeID int) bool {
	city, ok := m.cities[cityID]
	if !ok {
		return reject("add building", "city", cityID, "reason", "unknown city")
	}
	if !m.catalog.Valid(typeID) {
		return reject("add building", "city", cityID, "type", typeID, "reason", "unknown building type")
	}
	if !city.HasTile(coord) {
		return reject("add building", "city", cityID, "coord", coord, "reason", "not a city tile")
	}
	if city.BuildingAt(coord) >= 0 {
		return reject("add building", "city", cityID, "coord", coord, "reason", "tile occupied")
	}

	b, _ := m.catalog.NewBuilding(typeID, coord)
	city.Buildings = append(city.Buildings, b)
	return true
}

// AddInhabitant moves an inhabitant into the building at its position if
// the building has housing left.
func (m *Manager) AddInhabitant(cityID social.CityID, in *agents.Inhabitant) bool {
	if in == nil {
		panic("territory: AddInhabitant called with nil inhabitant")
	}
	city, ok := m.cities[cityID]
	if !ok {
		return reject("add inhabitant", "city", cityID, "reason", "unknown city")
	}
	if !city.HasTile(in.Position) {
		return reject("add inhabitant", "city", cityID, "coord", in.Position, "reason", "not a city tile")
	}
	i := city.BuildingAt(in.Position)
	if i < 0 {
		return reject("add inhabitant", "city", cityID, "coord", in.Position, "reason", "no building")
	}
	if city.Occupants(in.Position) >= city.Buildings[i].Citizens {
		return reject("add inhabitant", "city", cityID, "coord", in.Position, "reason", "building full")
	}

	city.Inhabitants = append(city.Inhabitants, in)
	return true
}

// SatisfyNeed offers needType to every inhabitant of the city and returns
// how many of them had a due need satisfied.
func (m *Manager) SatisfyNeed(cityID social.CityID, needType, round int) int {
	city, ok := m.cities[cityID]
	if !ok {
		return 0
	}
	n := 0
	for _, in := range city.Inhabitants {
		if in.SatisfyNeed(needType, round) {
			n++
		}
	}
	return n
}

// EndRound applies unmet-need penalties to every inhabitant of every city.
func (m *Manager) EndRound(round int) {
	for _, city := range m.Cities() {
		for _, in := range city.Inhabitants {
			in.UpdateNeeds(round)
		}
	}
}

func reject(op string, args ...any) bool {
	slog.Debug(op+" rejected", args...)
	return false
}
