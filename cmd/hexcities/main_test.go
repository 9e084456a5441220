package main

import (
	"os"
	"path/filepath"
	"math/rand"
	"testing"

	"github.com/talgya/hex-cities/internal/agents"
)

func TestNewWorldInvariants(t *testing.T) {
	cfg := defaultSettings()
	m, err := newWorld(cfg)
	if err != nil {
		t.Fatalf("newWorld: %v", err)
	}
	cities := m.Cities()
	if len(cities) == 0 {
		t.Fatalf("no cities founded")
	}

	for _, c := range cities {
		if got := m.TileStatus(c.Anchor); got != c.ID {
			t.Errorf("%s: anchor status = %d, want %d", c.Name, got, c.ID)
		}
		if len(c.Tiles) > cfg.GrowthPass {
			t.Errorf("%s: %d tiles, want at most %d", c.Name, len(c.Tiles), cfg.GrowthPass)
		}
		if len(c.Tiles) != len(c.TilePixels) {
			t.Errorf("%s: %d tiles but %d pixels", c.Name, len(c.Tiles), len(c.TilePixels))
		}
		for _, tile := range c.Tiles {
			if m.TileStatus(tile) != c.ID {
				t.Errorf("%s: tile %v not reported as owned", c.Name, tile)
			}
		}
		if c.BuildingAt(c.Anchor) < 0 {
			t.Errorf("%s: no palace at anchor", c.Name)
		}
		capacity := 0
		for _, b := range c.Buildings {
			capacity += b.Citizens
		}
		if c.Population() == 0 || c.Population() > capacity {
			t.Errorf("%s: population %d with capacity %d", c.Name, c.Population(), capacity)
		}
		if len(c.Borders) == 0 {
			t.Errorf("%s: no borders", c.Name)
		}
	}
}

func TestPlayRoundKeepsSatisfactionInRange(t *testing.T) {
	m, err := newWorld(defaultSettings())
	if err != nil {
		t.Fatalf("newWorld: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	for round := 1; round <= 30; round++ {
		playRound(m, round, rng)
	}

	for _, c := range m.Cities() {
		for _, in := range c.Inhabitants {
			if in.Satisfaction < agents.MinSatisfaction || in.Satisfaction > agents.MaxSatisfaction {
				t.Fatalf("%s: satisfaction %d out of range", c.Name, in.Satisfaction)
			}
			if in.Tier < 1 || in.Tier > 3 {
				t.Fatalf("%s: tier %d out of range", c.Name, in.Tier)
			}
		}
	}
}

func TestGrowSkipsUnbuildable(t *testing.T) {
	m, err := newWorld(defaultSettings())
	if err != nil {
		t.Fatalf("newWorld: %v", err)
	}
	rows, columns := m.Dimensions()
	for _, c := range m.Cities() {
		for _, tile := range c.Tiles {
			o := tile.ToOffset()
			if o.Row < 0 || o.Row >= rows || o.Col < 0 || o.Col >= columns {
				t.Fatalf("%s: grew off-grid to %v", c.Name, tile)
			}
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := ensureDir(dir); err != nil {
		t.Fatalf("ensureDir: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := ensureDir(filepath.Join(file, "sub")); err == nil {
		t.Fatalf("ensureDir under a regular file succeeded")
	}
}

func TestRunFailsOnUnwritableDBDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg := defaultSettings()
	cfg.DBPath = filepath.Join(file, "sub", "hexcities.db")
	cfg.Port = 0
	if err := run(t.Context(), cfg); err == nil {
		t.Fatalf("run succeeded with an uncreatable database directory")
	}
}
