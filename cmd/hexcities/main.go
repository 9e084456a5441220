// Command hexcities founds and grows cities on a generated hex map, runs
// need rounds, and persists the resulting territory.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"

	"github.com/talgya/hex-cities/internal/agents"
	"github.com/talgya/hex-cities/internal/api"
	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/engine"
	"github.com/talgya/hex-cities/internal/persistence"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/territory"
	"github.com/talgya/hex-cities/internal/world"
)

// settings collects the driver configuration. Each field can be
// overridden from the environment.
type settings struct {
	DBPath      string // HEXCITIES_DB
	Seed        int64  // HEXCITIES_SEED
	Port        int    // HEXCITIES_PORT, 0 disables the API
	Rounds      int    // HEXCITIES_ROUNDS, 0 runs until interrupted
	SnapshotDir string // HEXCITIES_SNAPSHOT, empty disables envelope files
	AdminKey    string // HEXCITIES_ADMIN_KEY
	CORSOrigins string // HEXCITIES_CORS_ORIGINS

	Cities     int // Cities to found on a fresh map
	Players    int
	GrowthPass int // Tiles each city tries to claim on a fresh map
	SaveEvery  int // Rounds between database saves
}

func defaultSettings() settings {
	return settings{
		DBPath:      "data/hexcities.db",
		Seed:        42,
		Port:        8080,
		Rounds:      50,
		SnapshotDir: "data",
		Cities:      6,
		Players:     2,
		GrowthPass:  5,
		SaveEvery:   10,
	}
}

func loadSettings() (settings, error) {
	s := defaultSettings()
	var err error
	if v := os.Getenv("HEXCITIES_DB"); v != "" {
		s.DBPath = v
	}
	if v := os.Getenv("HEXCITIES_SEED"); v != "" {
		if s.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return s, fmt.Errorf("HEXCITIES_SEED: %w", err)
		}
	}
	if v := os.Getenv("HEXCITIES_PORT"); v != "" {
		if s.Port, err = strconv.Atoi(v); err != nil {
			return s, fmt.Errorf("HEXCITIES_PORT: %w", err)
		}
	}
	if v := os.Getenv("HEXCITIES_ROUNDS"); v != "" {
		if s.Rounds, err = strconv.Atoi(v); err != nil {
			return s, fmt.Errorf("HEXCITIES_ROUNDS: %w", err)
		}
	}
	if v, ok := os.LookupEnv("HEXCITIES_SNAPSHOT"); ok {
		s.SnapshotDir = v
	}
	s.AdminKey = os.Getenv("HEXCITIES_ADMIN_KEY")
	s.CORSOrigins = os.Getenv("HEXCITIES_CORS_ORIGINS")
	return s, nil
}

func main() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := loadSettings()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("hexcities failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg settings) error {
	// ── Database ──────────────────────────────────────────────────────
	if err := ensureDir(filepath.Dir(cfg.DBPath)); err != nil {
		return err
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or found cities ──────────────────────────────────────────
	var (
		m          *territory.Manager
		startRound int
	)
	if db.HasSnapshot() {
		slog.Info("found saved territory, loading...")
		snap, err := db.LoadSnapshot()
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if m, err = territory.Restore(snap); err != nil {
			return err
		}
		if v, err := db.GetMeta("round"); err == nil {
			startRound, _ = strconv.Atoi(v)
		}
		slog.Info("territory restored", "cities", len(m.Cities()), "round", startRound)
	} else {
		slog.Info("no saved territory, generating new map...")
		if m, err = newWorld(cfg); err != nil {
			return err
		}
		if err := save(db, m, 0); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	for _, c := range m.Cities() {
		slog.Info("city",
			"id", c.ID,
			"name", c.Name,
			"player", c.Player,
			"anchor", c.Anchor,
			"tiles", len(c.Tiles),
			"borders", len(c.Borders),
			"population", c.Population(),
		)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	apiCfg := api.DefaultConfig()
	apiCfg.Port = cfg.Port
	apiCfg.AdminKey = cfg.AdminKey
	if cfg.CORSOrigins != "" {
		apiCfg.CORSOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	server := api.NewServer(m, db, apiCfg)
	server.SetRound(startRound)

	if cfg.Port > 0 {
		if cfg.AdminKey == "" {
			slog.Warn("HEXCITIES_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		go func() {
			if err := server.ListenAndServe(ctx); err != nil {
				slog.Error("HTTP server error", "error", err)
			}
		}()
	}

	// ── Rounds ────────────────────────────────────────────────────────
	rng := rand.New(rand.NewSource(cfg.Seed + 500))
	eng := engine.NewEngine()
	eng.Round = startRound
	eng.SaveEvery = cfg.SaveEvery
	eng.OnRound = func(round int) {
		server.Update(func(m *territory.Manager) { playRound(m, round, rng) })
		server.SetRound(round)
	}
	eng.OnSave = func(round int) {
		var err error
		server.Update(func(m *territory.Manager) { err = save(db, m, round) })
		if err != nil {
			slog.Error("periodic save failed", "round", round, "error", err)
		}
	}

	rows, columns := m.Dimensions()
	fmt.Printf("\n%s cities on a %dx%d map.\n", humanize.Comma(int64(len(m.Cities()))), rows, columns)
	if cfg.Port > 0 {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	}

	runErr := eng.Run(ctx, cfg.Rounds)

	// ── Final save ────────────────────────────────────────────────────
	slog.Info("final save...")
	var saveErr error
	server.Update(func(m *territory.Manager) {
		if saveErr = save(db, m, eng.Round); saveErr != nil {
			return
		}
		saveErr = writeEnvelope(cfg.SnapshotDir, m)
	})
	if saveErr != nil {
		return saveErr
	}

	if runErr == nil && cfg.Port > 0 {
		fmt.Println("Rounds complete, API still serving... (Ctrl+C to stop)")
		<-ctx.Done()
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	fmt.Println("Stopped. Territory saved.")
	return nil
}

// newWorld generates terrain, founds cities and grows them.
func newWorld(cfg settings) (*territory.Manager, error) {
	gen := world.DefaultGenConfig()
	gen.Seed = cfg.Seed
	layer := world.GenerateTerrain(gen)
	for t, n := range world.TerrainCounts(layer) {
		slog.Info("terrain", "type", world.TerrainName(t), "count", n)
	}

	mcfg := territory.DefaultConfig()
	mcfg.Rows, mcfg.Columns = gen.Rows, gen.Columns
	mcfg.TileWidth, mcfg.TileHeight = 34, 32
	m, err := territory.NewManager(mcfg, layer, world.ImpassableTerrain(), defaultCatalog())
	if err != nil {
		return nil, fmt.Errorf("new manager: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed + 300))
	sites := world.PlaceCities(layer, gen.Rows, gen.Columns, world.ImpassableTerrain(), cfg.Cities, 4, cfg.Seed)
	for i, site := range sites {
		player := i%cfg.Players + 1
		city := social.NewCity(site.Name, player, site.Coord, m.Layout().PixelDelta(site.Coord))
		city.Stats = social.Stats{Health: 200, MaxHealth: 200, CombatStrength: 10 + rng.Intn(5), Range: 2, Seed: rng.Int()}
		city.Properties["founded_score"] = social.Number(site.Score)
		if !m.CreateCity(city) {
			slog.Warn("city site rejected", "name", site.Name, "anchor", site.Coord)
			continue
		}
		m.AddBuilding(city.ID, city.Anchor, buildingPalace)
	}

	for _, c := range m.Cities() {
		grow(m, c, cfg.GrowthPass, rng)
		settle(m, c, rng)
	}

	for player := 1; player <= cfg.Players; player++ {
		m.CreateCityBorders(player)
	}
	return m, nil
}

// grow claims up to n buildable tiles for c, nearest ring first.
func grow(m *territory.Manager, c *social.City, n int, rng *rand.Rand) {
	for claimed := 0; claimed < n; {
		candidates := m.TilesForGrowth(c.ID, 2)
		var pick []world.CubeCoord
		for d := 1; d <= 2 && len(pick) == 0; d++ {
			for _, coord := range candidates[d] {
				if m.TileStatus(coord) == world.CellEmpty {
					pick = append(pick, coord)
				}
			}
		}
		if len(pick) == 0 {
			return
		}
		if !m.AddCityTile(c.ID, pick[rng.Intn(len(pick))]) {
			return
		}
		claimed++
	}
}

// settle places one building per grown tile and fills houses.
func settle(m *territory.Manager, c *social.City, rng *rand.Rand) {
	producers := []int{buildingFisher, buildingBakery, buildingWeaver, buildingSmithy}
	for i, tile := range c.Tiles {
		typeID := buildingHouse
		if i%2 == 1 {
			typeID = producers[rng.Intn(len(producers))]
		}
		m.AddBuilding(c.ID, tile, typeID)
	}

	for _, b := range c.Buildings {
		for range b.Citizens {
			if !m.AddInhabitant(c.ID, agents.NewInhabitant(b.Position, needsForTier(1))) {
				break
			}
		}
	}
}

// playRound offers each city's produced goods to its inhabitants, applies
// penalties, then moves inhabitants between tiers.
func playRound(m *territory.Manager, round int, rng *rand.Rand) {
	for _, c := range m.Cities() {
		var produced []economy.GoodAmount
		for _, b := range c.Buildings {
			produced = append(produced, b.GoodsProduction...)
		}
		for good := goodFish; good <= goodTools; good++ {
			for range economy.TotalAmount(produced, good) {
				if m.SatisfyNeed(c.ID, good, round) == 0 {
					break
				}
			}
		}
		// Traders occasionally bring goods the city cannot make.
		if rng.Intn(4) == 0 {
			m.SatisfyNeed(c.ID, goodFish+rng.Intn(goodTools), round)
		}
	}

	m.EndRound(round)

	if round%10 != 0 {
		return
	}
	for _, c := range m.Cities() {
		for _, in := range c.Inhabitants {
			switch {
			case in.Satisfaction == agents.MaxSatisfaction && in.Tier < 3:
				in.Upgrade(needsForTier(in.Tier + 1))
			case in.Satisfaction == agents.MinSatisfaction:
				in.Downgrade(needsForTier(in.Tier - 1))
			}
		}
		slog.Info("city round summary",
			"round", round,
			"city", c.Name,
			"population", c.Population(),
			"satisfaction", fmt.Sprintf("%.1f", c.AverageSatisfaction()),
		)
	}
}

func save(db *persistence.DB, m *territory.Manager, round int) error {
	if _, err := db.SaveSnapshot(m.Snapshot()); err != nil {
		return err
	}
	return db.SaveMeta("round", strconv.Itoa(round))
}

// writeEnvelope writes an lz4 envelope named after the current time.
func writeEnvelope(dir string, m *territory.Manager) error {
	if dir == "" {
		return nil
	}
	if err := ensureDir(dir); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := persistence.SaveManager(&buf, m, persistence.VersionLZ4); err != nil {
		return err
	}
	name := filepath.Join(dir, strftime.Format("territory-%Y%m%d-%H%M%S.hxc", time.Now()))
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	slog.Info("envelope written", "path", name, "size", humanize.Bytes(uint64(buf.Len())))
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
