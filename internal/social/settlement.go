// Package social provides cities: their territory, buildings, inhabitants,
// and caller-defined properties.
package social

import (
	"slices"

	"github.com/golang/geo/r2"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/border"
	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/world"
)

// CityID is a unique identifier for a city. Ids start at 1; 0 is never
// assigned.
type CityID = int

// Stats are the entity values a city carries alongside its territory.
type Stats struct {
	Health         int `json:"health"`
	MaxHealth      int `json:"max_health"`
	WeaponType     int `json:"weapon_type"`
	CombatStrength int `json:"combat_strength"`
	RangedAttack   int `json:"ranged_attack"`
	Range          int `json:"range"`
	Seed           int `json:"seed"`
}

// City is a player's population center and the territory it claims.
type City struct {
	ID     CityID `json:"id"`
	Player int    `json:"player"`
	Name   string `json:"name"`
	Stats  Stats  `json:"stats"`

	// Territory. Tiles excludes the anchor; TilePixels is parallel to Tiles.
	Anchor      world.CubeCoord   `json:"anchor"`
	Tiles       []world.CubeCoord `json:"tiles"`
	AnchorPixel r2.Point          `json:"anchor_pixel"`
	TilePixels  []r2.Point        `json:"tile_pixels"`

	// Border segments in pixels, rebuilt wholesale on each recompute.
	Borders []border.Line `json:"borders"`

	Buildings   []economy.Building   `json:"buildings"`
	Inhabitants []*agents.Inhabitant `json:"inhabitants"`

	Properties map[string]Property `json:"properties"`
}

// NewCity creates an unregistered city founded at anchor.
func NewCity(name string, player int, anchor world.CubeCoord, anchorPixel r2.Point) *City {
	return &City{
		Name:        name,
		Player:      player,
		Anchor:      anchor,
		AnchorPixel: anchorPixel,
		Properties:  make(map[string]Property),
	}
}

// HasTile reports whether coord is the anchor or one of the city's tiles.
func (c *City) HasTile(coord world.CubeCoord) bool {
	return c.Anchor == coord || slices.Contains(c.Tiles, coord)
}

// Footprint returns the anchor followed by all tiles.
func (c *City) Footprint() []world.CubeCoord {
	return append([]world.CubeCoord{c.Anchor}, c.Tiles...)
}

// FootprintPixels returns the anchor pixel followed by all tile pixels.
func (c *City) FootprintPixels() []r2.Point {
	return append([]r2.Point{c.AnchorPixel}, c.TilePixels...)
}

// IsAdjacent reports whether coord touches the anchor or any tile.
func (c *City) IsAdjacent(coord world.CubeCoord) bool {
	if world.IsNeighbor(c.Anchor, coord) {
		return true
	}
	for _, t := range c.Tiles {
		if world.IsNeighbor(t, coord) {
			return true
		}
	}
	return false
}

// BuildingAt returns the index of the building at coord, or -1.
func (c *City) BuildingAt(coord world.CubeCoord) int {
	return slices.IndexFunc(c.Buildings, func(b economy.Building) bool {
		return b.Position == coord
	})
}

// HasBuildingType reports whether any building of the city has typeID.
func (c *City) HasBuildingType(typeID int) bool {
	return slices.ContainsFunc(c.Buildings, func(b economy.Building) bool {
		return b.Type == typeID
	})
}

// Occupants counts the inhabitants living at coord.
func (c *City) Occupants(coord world.CubeCoord) int {
	n := 0
	for _, in := range c.Inhabitants {
		if in.Position == coord {
			n++
		}
	}
	return n
}

// Population returns the number of inhabitants.
func (c *City) Population() int {
	return len(c.Inhabitants)
}

// AverageSatisfaction returns the mean inhabitant satisfaction, or 0.
func (c *City) AverageSatisfaction() float64 {
	if len(c.Inhabitants) == 0 {
		return 0
	}
	total := 0
	for _, in := range c.Inhabitants {
		total += in.Satisfaction
	}
	return float64(total) / float64(len(c.Inhabitants))
}

// Clone returns a deep copy.
func (c *City) Clone() *City {
	out := *c
	out.Tiles = slices.Clone(c.Tiles)
	out.TilePixels = slices.Clone(c.TilePixels)
	out.Borders = slices.Clone(c.Borders)
	if c.Buildings != nil {
		out.Buildings = make([]economy.Building, len(c.Buildings))
		for i, b := range c.Buildings {
			b.Images = slices.Clone(b.Images)
			b.GoodsProduction = slices.Clone(b.GoodsProduction)
			b.GoodsCost = slices.Clone(b.GoodsCost)
			out.Buildings[i] = b
		}
	}
	if c.Inhabitants != nil {
		out.Inhabitants = make([]*agents.Inhabitant, len(c.Inhabitants))
		for i, in := range c.Inhabitants {
			out.Inhabitants[i] = in.Clone()
		}
	}
	if c.Properties != nil {
		out.Properties = make(map[string]Property, len(c.Properties))
		for k, v := range c.Properties {
			out.Properties[k] = v
		}
	}
	return &out
}
