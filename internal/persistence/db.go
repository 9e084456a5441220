// Package persistence stores territory snapshots, either as a framed binary
// envelope or in a SQLite database.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/territory"
	"github.com/talgya/hex-cities/internal/world"
)

// Metadata keys written by SaveSnapshot.
const (
	MetaLastCityID       = "last_city_id"
	MetaTileWidth        = "tile_width"
	MetaTileHeight       = "tile_height"
	MetaPixelSearchDepth = "pixel_search_depth"
	MetaGrid             = "grid"
	MetaLastSaveID       = "last_save_id"
)

// DB wraps a SQLite connection for territory persistence.
type DB struct {
	conn *sqlx.DB
}

// SaveRecord describes one completed SaveSnapshot call.
type SaveRecord struct {
	ID      string `db:"id" json:"id"`
	SavedAt string `db:"saved_at" json:"saved_at"`
	Cities  int    `db:"cities" json:"cities"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY,
		player INTEGER NOT NULL,
		name TEXT NOT NULL,
		anchor_q INTEGER NOT NULL,
		anchor_r INTEGER NOT NULL,
		anchor_x REAL NOT NULL,
		anchor_y REAL NOT NULL,
		stats_json TEXT NOT NULL,
		tiles_json TEXT NOT NULL,
		tile_pixels_json TEXT NOT NULL,
		borders_json TEXT NOT NULL,
		buildings_json TEXT NOT NULL,
		inhabitants_json TEXT NOT NULL,
		properties_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS building_types (
		type INTEGER PRIMARY KEY,
		definition_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS saves (
		id TEXT PRIMARY KEY,
		saved_at TEXT NOT NULL,
		cities INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cities_player ON cities(player);
	CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type cityRow struct {
	ID              int     `db:"id"`
	Player          int     `db:"player"`
	Name            string  `db:"name"`
	AnchorQ         int     `db:"anchor_q"`
	AnchorR         int     `db:"anchor_r"`
	AnchorX         float64 `db:"anchor_x"`
	AnchorY         float64 `db:"anchor_y"`
	StatsJSON       string  `db:"stats_json"`
	TilesJSON       string  `db:"tiles_json"`
	TilePixelsJSON  string  `db:"tile_pixels_json"`
	BordersJSON     string  `db:"borders_json"`
	BuildingsJSON   string  `db:"buildings_json"`
	InhabitantsJSON string  `db:"inhabitants_json"`
	PropertiesJSON  string  `db:"properties_json"`
}

// SaveSnapshot replaces the stored state with s in a single transaction
// and returns the id of the new save.
func (db *DB) SaveSnapshot(s territory.Snapshot) (string, error) {
	slog.Info("saving territory snapshot", "cities", len(s.Cities), "building_types", len(s.Catalog))

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := saveCities(tx, s.Cities); err != nil {
		return "", fmt.Errorf("save cities: %w", err)
	}
	if err := saveCatalog(tx, s.Catalog); err != nil {
		return "", fmt.Errorf("save catalog: %w", err)
	}

	gridJSON, err := json.Marshal(s.Grid)
	if err != nil {
		return "", fmt.Errorf("marshal grid: %w", err)
	}

	saveID := uuid.New().String()
	meta := map[string]string{
		MetaLastCityID:       strconv.Itoa(s.LastCityID),
		MetaTileWidth:        strconv.FormatFloat(s.TileWidth, 'g', -1, 64),
		MetaTileHeight:       strconv.FormatFloat(s.TileHeight, 'g', -1, 64),
		MetaPixelSearchDepth: strconv.Itoa(s.PixelSearchDepth),
		MetaGrid:             string(gridJSON),
		MetaLastSaveID:       saveID,
	}
	for key, value := range meta {
		if err := putMeta(tx, key, value); err != nil {
			return "", fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	_, err = tx.Exec("INSERT INTO saves (id, saved_at, cities) VALUES (?, ?, ?)",
		saveID, time.Now().UTC().Format(time.RFC3339Nano), len(s.Cities))
	if err != nil {
		return "", fmt.Errorf("record save: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("territory snapshot saved", "save_id", saveID)
	return saveID, nil
}

func saveCities(tx *sqlx.Tx, cities []*social.City) error {
	if _, err := tx.Exec("DELETE FROM cities"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO cities
		(id, player, name, anchor_q, anchor_r, anchor_x, anchor_y,
		 stats_json, tiles_json, tile_pixels_json, borders_json,
		 buildings_json, inhabitants_json, properties_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cities {
		cols, err := marshalColumns(c.Stats, c.Tiles, c.TilePixels, c.Borders, c.Buildings, c.Inhabitants, c.Properties)
		if err != nil {
			return fmt.Errorf("city %d: %w", c.ID, err)
		}

		_, err = stmt.Exec(
			c.ID, c.Player, c.Name,
			c.Anchor.Q, c.Anchor.R, c.AnchorPixel.X, c.AnchorPixel.Y,
			cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], cols[6],
		)
		if err != nil {
			return fmt.Errorf("insert city %d: %w", c.ID, err)
		}
	}
	return nil
}

func saveCatalog(tx *sqlx.Tx, types []economy.BuildingType) error {
	if _, err := tx.Exec("DELETE FROM building_types"); err != nil {
		return err
	}
	for i, bt := range types {
		def, err := json.Marshal(bt)
		if err != nil {
			return fmt.Errorf("building type %d: %w", i+1, err)
		}
		if _, err := tx.Exec("INSERT INTO building_types (type, definition_json) VALUES (?, ?)", i+1, string(def)); err != nil {
			return fmt.Errorf("insert building type %d: %w", i+1, err)
		}
	}
	return nil
}

func marshalColumns(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(data)
	}
	return out, nil
}

// LoadSnapshot reads back the state written by the last SaveSnapshot.
func (db *DB) LoadSnapshot() (territory.Snapshot, error) {
	var s territory.Snapshot

	meta, err := db.allMeta()
	if err != nil {
		return s, fmt.Errorf("load meta: %w", err)
	}
	if _, ok := meta[MetaLastSaveID]; !ok {
		return s, errors.New("load snapshot: no snapshot saved")
	}

	if s.LastCityID, err = strconv.Atoi(meta[MetaLastCityID]); err != nil {
		return s, fmt.Errorf("parse %s: %w", MetaLastCityID, err)
	}
	if s.TileWidth, err = strconv.ParseFloat(meta[MetaTileWidth], 64); err != nil {
		return s, fmt.Errorf("parse %s: %w", MetaTileWidth, err)
	}
	if s.TileHeight, err = strconv.ParseFloat(meta[MetaTileHeight], 64); err != nil {
		return s, fmt.Errorf("parse %s: %w", MetaTileHeight, err)
	}
	if s.PixelSearchDepth, err = strconv.Atoi(meta[MetaPixelSearchDepth]); err != nil {
		return s, fmt.Errorf("parse %s: %w", MetaPixelSearchDepth, err)
	}
	if err := json.Unmarshal([]byte(meta[MetaGrid]), &s.Grid); err != nil {
		return s, fmt.Errorf("parse %s: %w", MetaGrid, err)
	}

	if s.Cities, err = db.loadCities(); err != nil {
		return s, fmt.Errorf("load cities: %w", err)
	}
	if s.Catalog, err = db.loadCatalog(); err != nil {
		return s, fmt.Errorf("load catalog: %w", err)
	}

	return s, nil
}

func (db *DB) loadCities() ([]*social.City, error) {
	var rows []cityRow
	if err := db.conn.Select(&rows, "SELECT * FROM cities ORDER BY id"); err != nil {
		return nil, err
	}

	cities := make([]*social.City, 0, len(rows))
	for _, row := range rows {
		c := &social.City{
			ID:     row.ID,
			Player: row.Player,
			Name:   row.Name,
			Anchor: world.NewCube(row.AnchorQ, row.AnchorR),
		}
		c.AnchorPixel.X = row.AnchorX
		c.AnchorPixel.Y = row.AnchorY

		columns := []struct {
			data   string
			target any
		}{
			{row.StatsJSON, &c.Stats},
			{row.TilesJSON, &c.Tiles},
			{row.TilePixelsJSON, &c.TilePixels},
			{row.BordersJSON, &c.Borders},
			{row.BuildingsJSON, &c.Buildings},
			{row.InhabitantsJSON, &c.Inhabitants},
			{row.PropertiesJSON, &c.Properties},
		}
		for _, col := range columns {
			if err := json.Unmarshal([]byte(col.data), col.target); err != nil {
				return nil, fmt.Errorf("city %d: %w", row.ID, err)
			}
		}
		if c.Properties == nil {
			c.Properties = make(map[string]social.Property)
		}
		cities = append(cities, c)
	}
	return cities, nil
}

func (db *DB) loadCatalog() ([]economy.BuildingType, error) {
	var defs []string
	if err := db.conn.Select(&defs, "SELECT definition_json FROM building_types ORDER BY type"); err != nil {
		return nil, err
	}

	types := make([]economy.BuildingType, 0, len(defs))
	for i, def := range defs {
		var bt economy.BuildingType
		if err := json.Unmarshal([]byte(def), &bt); err != nil {
			return nil, fmt.Errorf("building type %d: %w", i+1, err)
		}
		types = append(types, bt)
	}
	return types, nil
}

// HasSnapshot reports whether SaveSnapshot has completed at least once.
func (db *DB) HasSnapshot() bool {
	_, err := db.GetMeta(MetaLastSaveID)
	return err == nil
}

// Saves returns the most recent saves, newest first.
func (db *DB) Saves(limit int) ([]SaveRecord, error) {
	var saves []SaveRecord
	err := db.conn.Select(&saves,
		"SELECT id, saved_at, cities FROM saves ORDER BY saved_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return saves, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. Missing keys return sql.ErrNoRows.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func (db *DB) allMeta() (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM world_meta"); err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(rows))
	for _, row := range rows {
		meta[row.Key] = row.Value
	}
	return meta, nil
}

func putMeta(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value)
	return err
}
