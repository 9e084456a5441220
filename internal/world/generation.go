// Terrain layer generation using layered simplex noise.
// Produces the row-major terrain array the occupancy grid is built from.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain types for hex tiles.
type Terrain int

const (
	TerrainPlains   Terrain = iota // Open, buildable
	TerrainForest                  // Buildable
	TerrainMountain                // Impassable
	TerrainCoast                   // Land touching ocean
	TerrainDesert                  // Buildable, harsh
	TerrainTundra                  // Buildable, cold
	TerrainOcean                   // Impassable
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Rows        int     // Grid rows
	Columns     int     // Grid columns
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:        24,
		Columns:     32,
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny grid for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Rows:        8,
		Columns:     8,
		Seed:        42,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
	}
}

// ImpassableTerrain lists the terrain values no city may be founded on.
func ImpassableTerrain() []int {
	return []int{int(TerrainMountain), int(TerrainOcean)}
}

// GenerateTerrain creates a row-major terrain layer of cfg.Rows × cfg.Columns.
func GenerateTerrain(cfg GenConfig) []int {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	layer := make([]int, cfg.Rows*cfg.Columns)
	elevation := make([]float64, len(layer))

	for row := 0; row < cfg.Rows; row++ {
		for col := 0; col < cfg.Columns; col++ {
			coord := FromOffset(OffsetCoord{Col: col, Row: row})

			// Hex cube → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(coord.Q) + float64(coord.R)*0.5
			y := float64(coord.R) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
			rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
			temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

			// Continental shaping: pull elevation down toward the grid edges.
			dx := (float64(col) - float64(cfg.Columns)/2) / (float64(cfg.Columns) / 2)
			dy := (float64(row) - float64(cfg.Rows)/2) / (float64(cfg.Rows) / 2)
			edgeFalloff := 1.0 - math.Pow(math.Sqrt(dx*dx+dy*dy)/math.Sqrt2, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			temp = temp*0.7 + (1.0-elev)*0.3

			i := row*cfg.Columns + col
			elevation[i] = elev
			layer[i] = int(deriveTerrain(elev, rain, temp, cfg))
		}
	}

	markCoast(layer, elevation, cfg.Rows, cfg.Columns)
	return layer
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if temp < 0.25 {
		return TerrainTundra
	}
	if rain < 0.25 && temp > 0.5 {
		return TerrainDesert
	}
	if rain > 0.45 && elev > 0.45 {
		return TerrainForest
	}
	return TerrainPlains
}

// markCoast converts low land cells adjacent to ocean into coast terrain.
func markCoast(layer []int, elevation []float64, rows, columns int) {
	var toMark []int

	for i, t := range layer {
		if Terrain(t) == TerrainOcean {
			continue
		}
		coord := FromOffset(OffsetCoord{Col: i % columns, Row: i / columns})
		for _, nc := range coord.Neighbors() {
			o := nc.ToOffset()
			if o.Row < 0 || o.Row >= rows || o.Col < 0 || o.Col >= columns {
				continue
			}
			if Terrain(layer[o.Row*columns+o.Col]) == TerrainOcean {
				toMark = append(toMark, i)
				break
			}
		}
	}

	for _, i := range toMark {
		t := Terrain(layer[i])
		if (t == TerrainPlains || t == TerrainForest) && elevation[i] < 0.5 {
			layer[i] = int(TerrainCoast)
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(layer []int) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range layer {
		counts[Terrain(t)]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainCoast:
		return "Coast"
	case TerrainDesert:
		return "Desert"
	case TerrainTundra:
		return "Tundra"
	case TerrainOcean:
		return "Ocean"
	default:
		return "Unknown"
	}
}
