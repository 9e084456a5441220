package territory

import (
	"maps"
	"slices"

	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// City returns the city with id, or nil.
func (m *Manager) City(id social.CityID) *social.City {
	return m.cities[id]
}

// Cities returns all cities ordered by id.
func (m *Manager) Cities() []*social.City {
	ids := slices.Sorted(maps.Keys(m.cities))
	out := make([]*social.City, len(ids))
	for i, id := range ids {
		out[i] = m.cities[id]
	}
	return out
}

// CityAt returns the city anchored at coord, or, with includeTiles, the
// city owning coord as a tile. Nil if none.
func (m *Manager) CityAt(coord world.CubeCoord, includeTiles bool) *social.City {
	for _, c := range m.Cities() {
		if c.Anchor == coord {
			return c
		}
	}
	if !includeTiles {
		return nil
	}
	for _, c := range m.Cities() {
		if slices.Contains(c.Tiles, coord) {
			return c
		}
	}
	return nil
}

// CitiesOfPlayer returns the cities of player ordered by id.
func (m *Manager) CitiesOfPlayer(player int) []*social.City {
	return m.FindCities(Filter{Players: []int{player}})
}

// Filter selects cities. Zero fields match everything.
type Filter struct {
	Players      []int // Owning players
	BuildingType int   // Cities with at least one building of this type
}

// FindCities returns the cities matching f ordered by id.
func (m *Manager) FindCities(f Filter) []*social.City {
	var out []*social.City
	for _, c := range m.Cities() {
		if len(f.Players) > 0 && !slices.Contains(f.Players, c.Player) {
			continue
		}
		if f.BuildingType != 0 && !c.HasBuildingType(f.BuildingType) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsTileOfCity reports whether coord is the anchor or a tile of city id.
func (m *Manager) IsTileOfCity(id social.CityID, coord world.CubeCoord) bool {
	c, ok := m.cities[id]
	return ok && c.HasTile(coord)
}

// IsCityAnchor reports whether any city is anchored at coord.
func (m *Manager) IsCityAnchor(coord world.CubeCoord) bool {
	return m.CityAt(coord, false) != nil
}

// IsTileOfAnyCity reports whether any city owns coord. With players given,
// only cities of those players count.
func (m *Manager) IsTileOfAnyCity(coord world.CubeCoord, players ...int) bool {
	for _, c := range m.cities {
		if len(players) > 0 && !slices.Contains(players, c.Player) {
			continue
		}
		if c.HasTile(coord) {
			return true
		}
	}
	return false
}

// TileStatus returns world.CellOutOfBounds outside the grid, otherwise the
// grid cell. Empty cells that a city owns as a grown tile report that
// city's id.
func (m *Manager) TileStatus(coord world.CubeCoord) int {
	cell := m.grid.Get(coord)
	if cell != world.CellEmpty {
		return cell
	}
	for _, c := range m.Cities() {
		if slices.Contains(c.Tiles, coord) {
			return c.ID
		}
	}
	return cell
}
