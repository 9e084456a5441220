package territory

import (
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// TilesForGrowth lists the unclaimed coordinates within maxDistance of the
// city anchor that touch the city, keyed by their distance from the anchor.
// Each bucket keeps enumeration order. Unknown cities yield an empty map.
func (m *Manager) TilesForGrowth(cityID social.CityID, maxDistance int) map[int][]world.CubeCoord {
	result := make(map[int][]world.CubeCoord)
	city, ok := m.cities[cityID]
	if !ok {
		return result
	}

	// Candidates touch the footprint, so none lies further out than the
	// farthest tile plus one step.
	reach := 1
	for _, t := range city.Tiles {
		reach = max(reach, world.Distance(city.Anchor, t)+1)
	}
	maxDistance = min(maxDistance, reach)

	for _, coord := range world.Range(city.Anchor, maxDistance) {
		d := world.Distance(city.Anchor, coord)
		if d == 0 || m.IsTileOfAnyCity(coord) || !city.IsAdjacent(coord) {
			continue
		}
		result[d] = append(result[d], coord)
	}
	return result
}
