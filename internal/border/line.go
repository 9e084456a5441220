// Package border computes the outline segments of hex tiles in pixel space.
package border

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Line is one undirected border segment. Dashed marks a contested edge.
type Line struct {
	Start  r2.Point `json:"start"`
	End    r2.Point `json:"end"`
	Dashed bool     `json:"dashed"`
}

// NewLine returns a solid segment from start to end.
func NewLine(start, end r2.Point) Line {
	return Line{Start: start, End: end}
}

// Tolerance is the largest per-axis distance, in pixels, at which two
// corner points are treated as the same point. Tile origins reached along
// different hex paths differ by rounding error for fractional tile sizes.
const Tolerance = 1e-6

// Equal reports whether l and o join the same two points, in either
// direction, within Tolerance. The dashed flag is ignored.
func (l Line) Equal(o Line) bool {
	return (samePoint(l.Start, o.Start) && samePoint(l.End, o.End)) ||
		(samePoint(l.Start, o.End) && samePoint(l.End, o.Start))
}

func samePoint(a, b r2.Point) bool {
	return math.Abs(a.X-b.X) <= Tolerance && math.Abs(a.Y-b.Y) <= Tolerance
}

func (l Line) String() string {
	return fmt.Sprintf("[(%g,%g)-(%g,%g)]", l.Start.X, l.Start.Y, l.End.X, l.End.Y)
}

// IndexOf returns the index of the first segment in lines equal to l, or -1.
func IndexOf(lines []Line, l Line) int {
	for i := range lines {
		if lines[i].Equal(l) {
			return i
		}
	}
	return -1
}
