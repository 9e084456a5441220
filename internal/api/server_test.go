package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"

	"github.com/talgya/hex-cities/internal/economy"
	"github.com/talgya/hex-cities/internal/persistence"
	"github.com/talgya/hex-cities/internal/social"
	"github.com/talgya/hex-cities/internal/territory"
	"github.com/talgya/hex-cities/internal/world"
)

const rock = 9

func newTestServer(t *testing.T, cfg Config, db *persistence.DB) *Server {
	t.Helper()
	layer := make([]int, 16)
	layer[9] = rock // (0,2)

	mcfg := territory.DefaultConfig()
	mcfg.Rows, mcfg.Columns = 4, 4
	mcfg.TileWidth, mcfg.TileHeight = 34, 32
	m, err := territory.NewManager(mcfg, layer, []int{rock}, []economy.BuildingType{{Name: "Palace"}})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	c1 := social.NewCity("Ashford", 1, world.NewCube(0, 0), r2.Point{})
	c2 := social.NewCity("Stonekeep", 2, world.NewCube(3, 0), r2.Point{X: 102})
	for _, c := range []*social.City{c1, c2} {
		if !m.CreateCity(c) {
			t.Fatalf("CreateCity(%s) failed", c.Name)
		}
	}
	if !m.AddCityTile(c1.ID, world.NewCube(1, 0)) || !m.AddBuilding(c1.ID, c1.Anchor, 1) {
		t.Fatalf("growing %s failed", c1.Name)
	}
	m.CreateCityBorders(1)
	m.CreateCityBorders(2)

	return NewServer(m, db, cfg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestCitiesEndpoint(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()

	rec := get(t, h, "/api/v1/cities")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var all []citySummary
	decode(t, rec, &all)
	if len(all) != 2 || all[0].Name != "Ashford" || all[0].Tiles != 1 || all[0].Buildings != 1 {
		t.Fatalf("cities = %+v", all)
	}

	var filtered []citySummary
	decode(t, get(t, h, "/api/v1/cities?player=2"), &filtered)
	if len(filtered) != 1 || filtered[0].Name != "Stonekeep" {
		t.Fatalf("player 2 cities = %+v", filtered)
	}

	var none []citySummary
	decode(t, get(t, h, "/api/v1/cities?building=1&player=2"), &none)
	if len(none) != 0 {
		t.Fatalf("filtered cities = %+v, want none", none)
	}

	if rec := get(t, h, "/api/v1/cities?player=x"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad player status = %d, want 400", rec.Code)
	}
}

func TestCityDetail(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()

	var c social.City
	decode(t, get(t, h, "/api/v1/city/1"), &c)
	if c.ID != 1 || len(c.Borders) != 10 {
		t.Fatalf("city 1 = id %d with %d borders, want id 1 with 10", c.ID, len(c.Borders))
	}

	if rec := get(t, h, "/api/v1/city/99"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown city status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/api/v1/city/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestCityGrowth(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()

	var resp struct {
		CityID     int                       `json:"city_id"`
		Candidates map[int][]world.CubeCoord `json:"candidates"`
	}
	decode(t, get(t, h, "/api/v1/city/1/growth?distance=1"), &resp)
	// The anchor's ring minus the claimed (1,0). Off-grid cells are listed.
	if resp.CityID != 1 || len(resp.Candidates) != 1 || len(resp.Candidates[1]) != 5 {
		t.Fatalf("growth = %+v", resp)
	}

	for _, d := range []string{"-1", "33", "2147483648", "9223372036854775807"} {
		if rec := get(t, h, "/api/v1/city/1/growth?distance="+d); rec.Code != http.StatusBadRequest {
			t.Fatalf("distance %s status = %d, want 400", d, rec.Code)
		}
	}
	if rec := get(t, h, "/api/v1/city/7/growth"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown city status = %d, want 404", rec.Code)
	}
}

func TestTileEndpoint(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()

	cases := []struct {
		path   string
		status string
		city   int
		anchor bool
	}{
		{"/api/v1/tile/0/0", "claimed", 1, true},
		{"/api/v1/tile/1/0", "claimed", 1, false},
		{"/api/v1/tile/0/2", "unbuildable", 0, false},
		{"/api/v1/tile/1/1", "empty", 0, false},
		{"/api/v1/tile/-5/0", "out_of_bounds", 0, false},
	}
	for _, tc := range cases {
		var info tileInfo
		decode(t, get(t, h, tc.path), &info)
		if info.Status != tc.status || info.CityID != tc.city || info.Anchor != tc.anchor {
			t.Errorf("%s = %+v, want status %s city %d anchor %v", tc.path, info, tc.status, tc.city, tc.anchor)
		}
	}
}

func TestBordersEndpoint(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()

	var out []cityBorders
	decode(t, get(t, h, "/api/v1/borders/2"), &out)
	if len(out) != 1 || out[0].CityID != 2 || len(out[0].Borders) != 6 {
		t.Fatalf("player 2 borders = %+v", out)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RatePerSecond, cfg.RateBurst = 0.001, 2
	h := newTestServer(t, cfg, nil).Handler()

	for i := 0; i < 2; i++ {
		if rec := get(t, h, "/api/v1/status"); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := get(t, h, "/api/v1/status")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("429 without Retry-After")
	}

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("second client status = %d", other.Code)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	db, err := persistence.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	cfg := DefaultConfig()
	cfg.AdminKey = "secret"
	h := newTestServer(t, cfg, db).Handler()

	post := func(token string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/snapshot", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", code)
	}
	if code := post("secret"); code != http.StatusOK {
		t.Fatalf("snapshot status = %d", code)
	}
	if !db.HasSnapshot() {
		t.Fatalf("snapshot not stored")
	}

	var saves []persistence.SaveRecord
	decode(t, get(t, h, "/api/v1/saves"), &saves)
	if len(saves) != 1 || saves[0].Cities != 2 {
		t.Fatalf("saves = %+v", saves)
	}
}

func TestSnapshotDisabledWithoutKey(t *testing.T) {
	h := newTestServer(t, DefaultConfig(), nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/snapshot", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
