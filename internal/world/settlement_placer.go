// City site placement: finds suitable founding tiles on a terrain layer.
package world

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
)

// CitySite holds a candidate founding tile for a city.
type CitySite struct {
	Coord CubeCoord
	Score float64 // Desirability score
	Name  string
}

// PlaceCities picks up to count founding tiles on the layer, best first,
// keeping at least minDist hexes between any two sites.
func PlaceCities(layer []int, rows, columns int, impassable []int, count, minDist int, seed int64) []CitySite {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		coord CubeCoord
		score float64
	}
	var candidates []scored

	for i, t := range layer {
		if slices.Contains(impassable, t) {
			continue
		}
		coord := FromOffset(OffsetCoord{Col: i % columns, Row: i / columns})
		s := siteScore(layer, rows, columns, impassable, coord, Terrain(t))
		if s > 0 {
			candidates = append(candidates, scored{coord, s})
		}
	}

	// Sort by score descending; ties keep layer order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var sites []CitySite
	for _, c := range candidates {
		if len(sites) >= count {
			break
		}
		if tooClose(c.coord, sites, minDist) {
			continue
		}
		sites = append(sites, CitySite{Coord: c.coord, Score: c.score})
	}

	names := generateNames(rng, len(sites))
	for i := range sites {
		sites[i].Name = names[i]
	}

	return sites
}

// siteScore evaluates how desirable a tile is for founding a city.
// Prefers coast and plains with plenty of buildable land around.
func siteScore(layer []int, rows, columns int, impassable []int, coord CubeCoord, t Terrain) float64 {
	score := 0.0

	switch t {
	case TerrainPlains:
		score += 3.0
	case TerrainCoast:
		score += 4.0
	case TerrainForest:
		score += 1.5
	case TerrainDesert, TerrainTundra:
		score += 0.5
	default:
		return 0
	}

	// Bonus for buildable neighbors (room to grow).
	for _, nc := range coord.Neighbors() {
		o := nc.ToOffset()
		if o.Row < 0 || o.Row >= rows || o.Col < 0 || o.Col >= columns {
			continue
		}
		if !slices.Contains(impassable, layer[o.Row*columns+o.Col]) {
			score += 0.3
		}
	}

	return score
}

func tooClose(coord CubeCoord, existing []CitySite, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural city names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}

	// Each round uses every prefix+suffix pair once; later rounds carry a
	// numeral so names stay unique for any count.
	combos := len(prefixes) * len(suffixes)
	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if round := len(names) / combos; round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
