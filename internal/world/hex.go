// Package world provides the hex grid, occupancy layer, and pixel layout.
// Uses cube coordinates (q, r, s) with q + r + s = 0 and an odd-r offset
// layout for the flat occupancy grid.
package world

import "fmt"

// CubeCoord represents a position on the hex grid using cube coordinates.
type CubeCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// NewCube builds a cube coordinate from its axial part, deriving s.
func NewCube(q, r int) CubeCoord {
	return CubeCoord{Q: q, R: r, S: -q - r}
}

// Valid reports whether the coordinate satisfies q + r + s = 0.
func (c CubeCoord) Valid() bool {
	return c.Q+c.R+c.S == 0
}

// Add returns c shifted by d.
func (c CubeCoord) Add(d CubeCoord) CubeCoord {
	return CubeCoord{Q: c.Q + d.Q, R: c.R + d.R, S: c.S + d.S}
}

func (c CubeCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Q, c.R, c.S)
}

// CubeDirections defines the six neighbor offsets in a fixed order.
var CubeDirections = [6]CubeCoord{
	{Q: 1, R: 0, S: -1},
	{Q: 1, R: -1, S: 0},
	{Q: 0, R: -1, S: 1},
	{Q: -1, R: 0, S: 1},
	{Q: -1, R: 1, S: 0},
	{Q: 0, R: 1, S: -1},
}

// Neighbors returns the six adjacent hex coordinates in CubeDirections order.
func (c CubeCoord) Neighbors() [6]CubeCoord {
	var result [6]CubeCoord
	for i, dir := range CubeDirections {
		result[i] = c.Add(dir)
	}
	return result
}

// IsNeighbor reports whether a and b are hex-adjacent.
func IsNeighbor(a, b CubeCoord) bool {
	return Distance(a, b) == 1
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b CubeCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S - b.S)
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

// Range returns every coordinate within n steps of center, center included.
// Ordered by q, then r.
func Range(center CubeCoord, n int) []CubeCoord {
	if n < 0 {
		return nil
	}
	result := make([]CubeCoord, 0, 3*n*(n+1)+1)
	for dq := -n; dq <= n; dq++ {
		lo := max(-n, -dq-n)
		hi := min(n, -dq+n)
		for dr := lo; dr <= hi; dr++ {
			result = append(result, center.Add(NewCube(dq, dr)))
		}
	}
	return result
}

// OffsetCoord is a column/row position in an odd-r offset grid.
type OffsetCoord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// ToOffset converts to odd-r offset coordinates (odd rows shifted right).
func (c CubeCoord) ToOffset() OffsetCoord {
	return OffsetCoord{
		Col: c.Q + (c.R-(c.R&1))/2,
		Row: c.R,
	}
}

// FromOffset converts odd-r offset coordinates back to cube coordinates.
func FromOffset(o OffsetCoord) CubeCoord {
	q := o.Col - (o.Row-(o.Row&1))/2
	return NewCube(q, o.Row)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
