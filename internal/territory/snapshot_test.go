package territory

import (
	"reflect"
	"testing"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/world"
)

// populatedManager mirrors a saved game: two players, growth, a house with
// an inhabitant, properties and computed borders.
func populatedManager(t *testing.T) *Manager {
	t.Helper()
	m := newTestManager(t, 9)
	c1 := mustCreate(t, m, exampleCity1())
	tile := world.NewCube(-1, 2)
	if !m.AddCityTile(c1.ID, world.NewCube(-1, 1)) || !m.AddCityTile(c1.ID, tile) {
		t.Fatalf("AddCityTile failed")
	}
	if !m.AddBuilding(c1.ID, tile, typeHouse) || !m.AddBuilding(c1.ID, c1.Anchor, typePalace) {
		t.Fatalf("AddBuilding failed")
	}
	if !m.AddInhabitant(c1.ID, agents.NewInhabitant(tile, testNeeds())) {
		t.Fatalf("AddInhabitant failed")
	}
	m.SatisfyNeed(c1.ID, 1, 2)
	c1.Properties["banner"] = social.String("azure")
	c1.Properties["treasury"] = social.Number(120.5)
	c1.Properties["rally"] = social.Vector2(3, 4)
	c1.Properties["origin"] = social.Vector3(1, 2, 3)
	c1.Stats = social.Stats{Health: 80, MaxHealth: 100, CombatStrength: 12, Range: 2, Seed: 7}

	mustCreate(t, m, exampleCity2())
	m.CreateCityBorders(1)
	m.CreateCityBorders(2)
	return m
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := populatedManager(t)
	snap := m.Snapshot()

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if !reflect.DeepEqual(restored.Snapshot(), snap) {
		t.Fatalf("restored snapshot differs from original")
	}
	if restored.LastCityID() != 2 {
		t.Fatalf("last city id = %d, want 2", restored.LastCityID())
	}

	// The id counter continues after restore.
	c := exampleCity1()
	c.Anchor = world.NewCube(1, 3)
	c.Tiles, c.TilePixels = nil, nil
	mustCreate(t, restored, c)
	if c.ID != 3 {
		t.Fatalf("new city id = %d, want 3", c.ID)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	m := populatedManager(t)
	snap := m.Snapshot()
	snap.Cities[0].Tiles[0] = world.NewCube(9, 9)
	snap.Grid.Cells[0] = 42
	snap.Cities[0].Inhabitants[0].Satisfaction = 1

	c := m.City(1)
	if c.Tiles[0] == world.NewCube(9, 9) || c.Inhabitants[0].Satisfaction == 1 {
		t.Fatalf("snapshot shares city state with the manager")
	}
	if m.grid.Cells[0] == 42 {
		t.Fatalf("snapshot shares grid cells with the manager")
	}
}

func TestRestoreInitializesProperties(t *testing.T) {
	snap := populatedManager(t).Snapshot()
	snap.Cities[1].Properties = nil

	m, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	c := m.City(snap.Cities[1].ID)
	c.Properties["rally"] = social.Vector2(1, 2)
	if c.Properties["rally"] != social.Vector2(1, 2) {
		t.Fatalf("property not stored")
	}
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"short grid", func(s *Snapshot) { s.Grid.Cells = s.Grid.Cells[1:] }},
		{"zero tile width", func(s *Snapshot) { s.TileWidth = 0 }},
		{"id above counter", func(s *Snapshot) { s.LastCityID = 1 }},
		{"duplicate id", func(s *Snapshot) { s.Cities[1].ID = s.Cities[0].ID }},
		{"nil city", func(s *Snapshot) { s.Cities[0] = nil }},
		{"pixel mismatch", func(s *Snapshot) { s.Cities[0].TilePixels = s.Cities[0].TilePixels[1:] }},
		{"bad property", func(s *Snapshot) { s.Cities[0].Properties["x"] = social.Property{Kind: "blob"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := populatedManager(t).Snapshot()
			tt.mutate(&snap)
			if _, err := Restore(snap); err == nil {
				t.Fatalf("expected Restore to fail")
			}
		})
	}
}
