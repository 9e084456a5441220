package world

import (
	"math/rand"
	"slices"
	"testing"
)

func TestGenerateTerrainDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := GenerateTerrain(cfg)
	b := GenerateTerrain(cfg)
	if len(a) != cfg.Rows*cfg.Columns {
		t.Fatalf("layer has %d cells, want %d", len(a), cfg.Rows*cfg.Columns)
	}
	if !slices.Equal(a, b) {
		t.Fatalf("same seed produced different layers")
	}
	for i, v := range a {
		if TerrainName(Terrain(v)) == "Unknown" {
			t.Fatalf("cell %d has unknown terrain %d", i, v)
		}
	}
}

func TestPlaceCitiesRespectsDistance(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7
	layer := GenerateTerrain(cfg)
	sites := PlaceCities(layer, cfg.Rows, cfg.Columns, ImpassableTerrain(), 6, 4, cfg.Seed)

	for i, a := range sites {
		if a.Name == "" {
			t.Fatalf("site %d has no name", i)
		}
		o := a.Coord.ToOffset()
		if slices.Contains(ImpassableTerrain(), layer[o.Row*cfg.Columns+o.Col]) {
			t.Fatalf("site %d placed on impassable terrain", i)
		}
		for _, b := range sites[i+1:] {
			if Distance(a.Coord, b.Coord) < 4 {
				t.Fatalf("sites %v and %v closer than 4", a.Coord, b.Coord)
			}
		}
	}
}

func TestGenerateNamesBeyondCombinations(t *testing.T) {
	// 29 prefixes × 28 suffixes = 812 plain names.
	names := generateNames(rand.New(rand.NewSource(1)), 2000)
	if len(names) != 2000 {
		t.Fatalf("got %d names, want 2000", len(names))
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate name %q", n)
		}
		seen[n] = true
	}
}
