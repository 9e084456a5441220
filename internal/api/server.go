// Package api provides the HTTP API for querying territory state.
// GET endpoints are public and read-only. POST /api/v1/snapshot requires a
// bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/hex-cities/internal/border"
	"github.com/talgya/hex-cities/internal/persistence"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/territory"
	"github.com/talgya/hex-cities/internal/world"
)

// Config holds HTTP server settings.
type Config struct {
	Port          int
	AdminKey      string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins   []string // Extra allowed origins besides localhost dev servers
	RatePerSecond float64  // Sustained requests per second per IP
	RateBurst     int
}

// DefaultConfig returns the default server settings.
func DefaultConfig() Config {
	return Config{
		Port:          8080,
		RatePerSecond: 5,
		RateBurst:     20,
	}
}

// Server serves a territory.Manager over HTTP. All access to the manager,
// including the driver's own mutations through Update, is serialized by
// the server's lock.
type Server struct {
	cfg     Config
	db      *persistence.DB // Optional
	limiter *RateLimiter

	mu      sync.RWMutex
	manager *territory.Manager
	round   int
}

// NewServer creates a server for m. db may be nil, which disables the
// snapshot and save history endpoints.
func NewServer(m *territory.Manager, db *persistence.DB, cfg Config) *Server {
	return &Server{
		cfg:     cfg,
		db:      db,
		limiter: NewRateLimiter(cfg.RatePerSecond, cfg.RateBurst),
		manager: m,
	}
}

// Update runs fn with exclusive access to the manager.
func (s *Server) Update(fn func(m *territory.Manager)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.manager)
}

// SetRound records the last completed round for the status endpoint.
func (s *Server) SetRound(round int) {
	s.mu.Lock()
	s.round = round
	s.mu.Unlock()
}

// Handler returns the routed, rate-limited API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/v1/cities", s.handleCities)
	mux.HandleFunc("GET /api/v1/city/{id}", s.handleCityDetail)
	mux.HandleFunc("GET /api/v1/city/{id}/growth", s.handleCityGrowth)
	mux.HandleFunc("GET /api/v1/tile/{q}/{r}", s.handleTile)
	mux.HandleFunc("GET /api/v1/borders/{player}", s.handleBorders)
	mux.HandleFunc("GET /api/v1/saves", s.handleSaves)

	mux.HandleFunc("POST /api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.cfg.CORSOrigins, RateLimitMiddleware(s.limiter, mux))
}

// ListenAndServe serves the API until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.cfg.AdminKey != "")

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
				return
			case <-ticker.C:
				s.limiter.Cleanup()
			}
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsMiddleware adds CORS headers for localhost dev servers and the
// configured origins.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	return ok && token == s.cfg.AdminKey
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEXCITIES_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, columns := s.manager.Dimensions()
	cities := s.manager.Cities()
	var players []int
	population := 0
	for _, c := range cities {
		if !slices.Contains(players, c.Player) {
			players = append(players, c.Player)
		}
		population += c.Population()
	}
	slices.Sort(players)

	writeJSON(w, map[string]any{
		"name":           "hex-cities",
		"round":          s.round,
		"rows":           rows,
		"columns":        columns,
		"cities":         len(cities),
		"last_city_id":   s.manager.LastCityID(),
		"players":        players,
		"population":     population,
		"building_types": s.manager.Catalog().Len(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.manager.Catalog().Types())
}

// citySummary is the list view of a city.
type citySummary struct {
	ID           social.CityID   `json:"id"`
	Player       int             `json:"player"`
	Name         string          `json:"name"`
	Anchor       world.CubeCoord `json:"anchor"`
	Tiles        int             `json:"tiles"`
	Buildings    int             `json:"buildings"`
	Population   int             `json:"population"`
	Satisfaction float64         `json:"satisfaction"`
}

// handleCities lists cities, optionally filtered by ?player=N (repeatable)
// and ?building=T.
func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	var f territory.Filter
	for _, v := range r.URL.Query()["player"] {
		p, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid player", http.StatusBadRequest)
			return
		}
		f.Players = append(f.Players, p)
	}
	if v := r.URL.Query().Get("building"); v != "" {
		bt, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid building type", http.StatusBadRequest)
			return
		}
		f.BuildingType = bt
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []citySummary{}
	for _, c := range s.manager.FindCities(f) {
		summaries = append(summaries, citySummary{
			ID:           c.ID,
			Player:       c.Player,
			Name:         c.Name,
			Anchor:       c.Anchor,
			Tiles:        len(c.Tiles),
			Buildings:    len(c.Buildings),
			Population:   c.Population(),
			Satisfaction: c.AverageSatisfaction(),
		})
	}
	writeJSON(w, summaries)
}

// lookupCity resolves the {id} path value. On failure it writes the error
// response and returns nil. Callers must hold at least the read lock.
func (s *Server) lookupCity(w http.ResponseWriter, r *http.Request) *social.City {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return nil
	}
	c := s.manager.City(id)
	if c == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return nil
	}
	return c
}

func (s *Server) handleCityDetail(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.lookupCity(w, r); c != nil {
		writeJSON(w, c)
	}
}

// maxGrowthDistance bounds ?distance= on the growth endpoint.
const maxGrowthDistance = 32

// handleCityGrowth returns growth candidates bucketed by distance from the
// anchor, up to ?distance=N (default 2, at most maxGrowthDistance).
func (s *Server) handleCityGrowth(w http.ResponseWriter, r *http.Request) {
	distance := 2
	if v := r.URL.Query().Get("distance"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 || d > maxGrowthDistance {
			http.Error(w, fmt.Sprintf("distance must be 0-%d", maxGrowthDistance), http.StatusBadRequest)
			return
		}
		distance = d
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.lookupCity(w, r)
	if c == nil {
		return
	}
	writeJSON(w, map[string]any{
		"city_id":    c.ID,
		"candidates": s.manager.TilesForGrowth(c.ID, distance),
	})
}

// tileInfo describes one grid cell.
type tileInfo struct {
	Coord  world.CubeCoord `json:"coord"`
	Status string          `json:"status"`
	CityID social.CityID   `json:"city_id,omitempty"`
	Anchor bool            `json:"anchor"`
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	q, errQ := strconv.Atoi(r.PathValue("q"))
	rr, errR := strconv.Atoi(r.PathValue("r"))
	if errQ != nil || errR != nil {
		http.Error(w, "usage: /api/v1/tile/:q/:r", http.StatusBadRequest)
		return
	}
	coord := world.NewCube(q, rr)

	s.mu.RLock()
	defer s.mu.RUnlock()

	info := tileInfo{Coord: coord}
	switch status := s.manager.TileStatus(coord); {
	case status == world.CellOutOfBounds:
		info.Status = "out_of_bounds"
	case status == world.CellUnbuildable:
		info.Status = "unbuildable"
	case status == world.CellEmpty:
		info.Status = "empty"
	default:
		info.Status = "claimed"
		info.CityID = status
		info.Anchor = s.manager.IsCityAnchor(coord)
	}
	writeJSON(w, info)
}

// cityBorders is the border outline of one city.
type cityBorders struct {
	CityID  social.CityID `json:"city_id"`
	Borders []border.Line `json:"borders"`
}

// handleBorders returns the stored outlines of a player's cities. Outlines
// are as of the driver's last CreateCityBorders call.
func (s *Server) handleBorders(w http.ResponseWriter, r *http.Request) {
	player, err := strconv.Atoi(r.PathValue("player"))
	if err != nil {
		http.Error(w, "invalid player", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []cityBorders{}
	for _, c := range s.manager.CitiesOfPlayer(player) {
		out = append(out, cityBorders{CityID: c.ID, Borders: c.Borders})
	}
	writeJSON(w, out)
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	saves, err := s.db.Saves(limit)
	if err != nil {
		slog.Error("list saves failed", "error", err)
		http.Error(w, "list saves failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, saves)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.mu.RLock()
	snap := s.manager.Snapshot()
	s.mu.RUnlock()

	id, err := s.db.SaveSnapshot(snap)
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"save_id": id, "cities": len(snap.Cities)})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
