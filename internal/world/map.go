package world

import (
	"fmt"
	"slices"
)

// Cell states stored in the occupancy grid. Positive values are city ids.
const (
	CellOutOfBounds = -2 // reported by status queries only, never stored
	CellUnbuildable = -1
	CellEmpty       = 0
)

// Grid holds the occupancy layer over a rows × columns odd-r offset grid.
type Grid struct {
	Rows    int   `json:"rows"`
	Columns int   `json:"columns"`
	Cells   []int `json:"cells"` // row-major, len == Rows*Columns
}

// NewGrid builds the occupancy baseline from a row-major terrain layer.
// Terrain values listed in impassable become CellUnbuildable, all others
// CellEmpty.
func NewGrid(layer []int, rows, columns int, impassable []int) (*Grid, error) {
	if rows <= 0 || columns <= 0 {
		return nil, fmt.Errorf("grid dimensions %dx%d must be positive", rows, columns)
	}
	if len(layer) != rows*columns {
		return nil, fmt.Errorf("terrain layer has %d cells, want %d", len(layer), rows*columns)
	}

	cells := make([]int, len(layer))
	for i, terrain := range layer {
		if slices.Contains(impassable, terrain) {
			cells[i] = CellUnbuildable
		} else {
			cells[i] = CellEmpty
		}
	}

	return &Grid{Rows: rows, Columns: columns, Cells: cells}, nil
}

// Index returns the flat cell index of coord, or false if it lies outside.
func (g *Grid) Index(coord CubeCoord) (int, bool) {
	o := coord.ToOffset()
	if o.Row < 0 || o.Row >= g.Rows || o.Col < 0 || o.Col >= g.Columns {
		return 0, false
	}
	return o.Row*g.Columns + o.Col, true
}

// InBounds returns true if the coordinate maps to a cell of the grid.
func (g *Grid) InBounds(coord CubeCoord) bool {
	_, ok := g.Index(coord)
	return ok
}

// Get returns the raw cell value, or CellOutOfBounds.
func (g *Grid) Get(coord CubeCoord) int {
	i, ok := g.Index(coord)
	if !ok {
		return CellOutOfBounds
	}
	return g.Cells[i]
}

// Set stores value at coord. Out-of-bounds writes are ignored.
func (g *Grid) Set(coord CubeCoord, value int) {
	if i, ok := g.Index(coord); ok {
		g.Cells[i] = value
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{Rows: g.Rows, Columns: g.Columns, Cells: slices.Clone(g.Cells)}
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(rows=%d, columns=%d)", g.Rows, g.Columns)
}
