package persistence

import (
	"testing"

	"github.com/golang/geo/r2"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/territory"
	"github.com/talgya/hex-cities/internal/world"
)

// testManager builds a 4x4 map with one rock, two cities of different
// players, a house with an inhabitant and computed borders.
func testManager(t *testing.T) *territory.Manager {
	t.Helper()

	const rock = 9
	layer := make([]int, 16)
	layer[9] = rock

	cfg := territory.DefaultConfig()
	cfg.Rows, cfg.Columns = 4, 4
	cfg.TileWidth, cfg.TileHeight = 34, 32

	catalog := []economy.BuildingType{
		{Name: "Palace", Era: 1, ProductionCost: 150, PurchaseCost: 500},
		{Name: "House", Citizens: 2, ProductionCost: 40, Images: []string{"house.png"}},
	}
	m, err := territory.NewManager(cfg, layer, []int{rock}, catalog)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	c1 := social.NewCity("Ashford", 1, world.NewCube(0, 0), r2.Point{})
	c1.Stats = social.Stats{Health: 90, MaxHealth: 100, Range: 2}
	c1.Properties["banner"] = social.String("azure")
	c1.Properties["rally"] = social.Vector2(3, 4)
	if !m.CreateCity(c1) {
		t.Fatalf("CreateCity(%s) failed", c1.Name)
	}
	house := world.NewCube(0, 1)
	for _, tile := range []world.CubeCoord{world.NewCube(1, 0), house} {
		if !m.AddCityTile(c1.ID, tile) {
			t.Fatalf("AddCityTile(%v) failed", tile)
		}
	}
	if !m.AddBuilding(c1.ID, house, 2) || !m.AddBuilding(c1.ID, c1.Anchor, 1) {
		t.Fatalf("AddBuilding failed")
	}
	needs := []agents.Need{agents.NewNeed(2, 10, 1, 2)}
	if !m.AddInhabitant(c1.ID, agents.NewInhabitant(house, needs)) {
		t.Fatalf("AddInhabitant failed")
	}
	m.SatisfyNeed(c1.ID, 1, 2)

	c2 := social.NewCity("Stonekeep", 2, world.NewCube(3, 0), r2.Point{X: 102})
	if !m.CreateCity(c2) {
		t.Fatalf("CreateCity(%s) failed", c2.Name)
	}
	if !m.AddCityTile(c2.ID, world.NewCube(2, 0)) {
		t.Fatalf("AddCityTile failed")
	}

	m.CreateCityBorders(1)
	m.CreateCityBorders(2)
	return m
}
