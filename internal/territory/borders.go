package territory

import (
	"github.com/talgya/hex-cities/internal/border"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// CreateCityBorders recomputes the outlines of every city of player, drops
// edges shared between that player's cities, then re-marks contested edges
// across all cities.
//
// Dashing reads the borders other players' cities currently hold, so it is
// only accurate once every player has been recomputed after a change.
func (m *Manager) CreateCityBorders(player int) {
	cities := m.CitiesOfPlayer(player)
	for _, c := range cities {
		createBordersForCity(c, m.layout)
	}
	removeDuplicateBorders(cities)
	updateDashedBorders(m.Cities())
}

// createBordersForCity replaces the city's borders with the outline of its
// anchor and tiles.
func createBordersForCity(c *social.City, l world.Layout) {
	c.Borders = border.Outline(c.FootprintPixels(), l.TileWidth, l.TileHeight)
}

// removeDuplicateBorders drops every segment that also appears in another
// city of the batch, from both cities.
func removeDuplicateBorders(cities []*social.City) {
	type owned struct {
		city int
		line border.Line
	}

	var all []owned
	for i, c := range cities {
		for _, l := range c.Borders {
			all = append(all, owned{city: i, line: l})
		}
	}

	kept := make([][]border.Line, len(cities))
	for i := range kept {
		kept[i] = []border.Line{}
	}
	for i, a := range all {
		unique := true
		for j, b := range all {
			if i != j && a.city != b.city && a.line.Equal(b.line) {
				unique = false
				break
			}
		}
		if unique {
			kept[a.city] = append(kept[a.city], a.line)
		}
	}

	for i, c := range cities {
		c.Borders = kept[i]
	}
}

// updateDashedBorders marks segments shared by cities of different players
// as dashed on the side of the higher player id.
func updateDashedBorders(cities []*social.City) {
	for _, c := range cities {
		for i := range c.Borders {
			c.Borders[i].Dashed = false
		}
	}

	for i, a := range cities {
		for _, b := range cities[i+1:] {
			if a.Player == b.Player {
				continue
			}
			high, low := a, b
			if b.Player > a.Player {
				high, low = b, a
			}
			for k := range high.Borders {
				if border.IndexOf(low.Borders, high.Borders[k]) >= 0 {
					high.Borders[k].Dashed = true
				}
			}
		}
	}
}
