package territory

import (
	"testing"

	"github.com/golang/geo/r2"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

const (
	tileWidth  = 34
	tileHeight = 32

	typePalace     = 1
	typeLumberjack = 2
	typeHouse      = 3

	terrainRock = 9
)

func testCatalog() []economy.BuildingType {
	return []economy.BuildingType{
		{Name: "Palace", Era: 1, Invention: 4, ProductionCost: 150, PurchaseCost: 500},
		{Name: "Lumberjack", Era: 1, Invention: 4, Production: 2, ProductionCost: 150, PurchaseCost: 500},
		{Name: "House", Citizens: 2, ProductionCost: 40, PurchaseCost: 120},
	}
}

// newTestManager builds a 4x4 manager. Cells listed in rocks are impassable.
func newTestManager(t *testing.T, rocks ...int) *Manager {
	t.Helper()
	layer := make([]int, 16)
	for _, i := range rocks {
		layer[i] = terrainRock
	}
	cfg := DefaultConfig()
	cfg.Rows, cfg.Columns = 4, 4
	cfg.TileWidth, cfg.TileHeight = tileWidth, tileHeight
	m, err := NewManager(cfg, layer, []int{terrainRock}, testCatalog())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// exampleCity1 is a three-tile triangle around the origin.
func exampleCity1() *social.City {
	c := social.NewCity("City1", 1, world.NewCube(0, 0), r2.Point{X: 0, Y: 0})
	c.Tiles = []world.CubeCoord{world.NewCube(1, 0), world.NewCube(0, 1)}
	c.TilePixels = []r2.Point{{X: 34, Y: 0}, {X: 17, Y: 24}}
	return c
}

// exampleCity2 sits two columns east of exampleCity1, sharing one edge.
func exampleCity2() *social.City {
	c := social.NewCity("City2", 2, world.NewCube(3, 0), r2.Point{X: 102, Y: 0})
	c.Tiles = []world.CubeCoord{world.NewCube(2, 0), world.NewCube(2, 1)}
	c.TilePixels = []r2.Point{{X: 68, Y: 0}, {X: 85, Y: 24}}
	return c
}

// wideCity is a six-tile city of player 1 touching exampleCity1.
func wideCity() *social.City {
	c := social.NewCity("City3", 1, world.NewCube(2, 1), r2.Point{X: 85, Y: 24})
	c.Tiles = []world.CubeCoord{
		world.NewCube(2, 0), world.NewCube(3, 0), world.NewCube(1, 1),
		world.NewCube(1, 2), world.NewCube(2, 2),
	}
	c.TilePixels = []r2.Point{{X: 68, Y: 0}, {X: 102, Y: 0}, {X: 51, Y: 24}, {X: 68, Y: 48}, {X: 102, Y: 48}}
	return c
}

func mustCreate(t *testing.T, m *Manager, c *social.City) *social.City {
	t.Helper()
	if !m.CreateCity(c) {
		t.Fatalf("CreateCity(%s) failed", c.Name)
	}
	return c
}

func testNeeds() []agents.Need {
	return []agents.Need{
		agents.NewNeed(2, 10, 1, 2),
		agents.NewNeed(3, 25, 3),
	}
}

func dashedCount(c *social.City) int {
	n := 0
	for _, l := range c.Borders {
		if l.Dashed {
			n++
		}
	}
	return n
}
