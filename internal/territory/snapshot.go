package territory

import (
	"fmt"

	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// Snapshot is the complete persisted state of a Manager.
type Snapshot struct {
	LastCityID       social.CityID          `json:"last_city_id"`
	TileWidth        float64                `json:"tile_width"`
	TileHeight       float64                `json:"tile_height"`
	PixelSearchDepth int                    `json:"pixel_search_depth"`
	Grid             world.Grid             `json:"grid"`
	Cities           []*social.City         `json:"cities"`
	Catalog          []economy.BuildingType `json:"catalog"`
}

// Snapshot returns a deep copy of the manager state.
func (m *Manager) Snapshot() Snapshot {
	cities := m.Cities()
	copies := make([]*social.City, len(cities))
	for i, c := range cities {
		copies[i] = c.Clone()
	}

	return Snapshot{
		LastCityID:       m.lastCityID,
		TileWidth:        m.layout.TileWidth,
		TileHeight:       m.layout.TileHeight,
		PixelSearchDepth: m.searchDepth,
		Grid:             *m.grid.Clone(),
		Cities:           copies,
		Catalog:          m.catalog.Types(),
	}
}

// Restore rebuilds a manager from a snapshot after checking it is
// consistent. The snapshot is copied.
func Restore(s Snapshot) (*Manager, error) {
	g := s.Grid
	if g.Rows <= 0 || g.Columns <= 0 || len(g.Cells) != g.Rows*g.Columns {
		return nil, fmt.Errorf("restore: grid %dx%d has %d cells", g.Rows, g.Columns, len(g.Cells))
	}
	if s.TileWidth <= 0 || s.TileHeight <= 0 {
		return nil, fmt.Errorf("restore: tile size %gx%g must be positive", s.TileWidth, s.TileHeight)
	}

	cities := make(map[social.CityID]*social.City, len(s.Cities))
	for _, c := range s.Cities {
		if c == nil {
			return nil, fmt.Errorf("restore: nil city")
		}
		if c.ID <= 0 || c.ID > s.LastCityID {
			return nil, fmt.Errorf("restore: city id %d outside 1..%d", c.ID, s.LastCityID)
		}
		if _, dup := cities[c.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate city id %d", c.ID)
		}
		if len(c.Tiles) != len(c.TilePixels) {
			return nil, fmt.Errorf("restore: city %d has %d tiles but %d tile pixels", c.ID, len(c.Tiles), len(c.TilePixels))
		}
		for key, p := range c.Properties {
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("restore: city %d property %q: %w", c.ID, key, err)
			}
		}
		restored := c.Clone()
		if restored.Properties == nil {
			restored.Properties = make(map[string]social.Property)
		}
		cities[c.ID] = restored
	}

	depth := s.PixelSearchDepth
	if depth <= 0 {
		depth = world.DefaultSearchDepth
	}

	return &Manager{
		grid:        g.Clone(),
		layout:      world.Layout{TileWidth: s.TileWidth, TileHeight: s.TileHeight},
		searchDepth: depth,
		catalog:     economy.NewCatalog(s.Catalog),
		cities:      cities,
		lastCityID:  s.LastCityID,
	}, nil
}
