package border

import "github.com/golang/geo/r2"

// TileOutline returns the six edges of the hex whose pixel origin is
// origin, in the order NW, NE, E, SE, SW, W.
func TileOutline(origin r2.Point, width, height float64) [6]Line {
	c := r2.Point{X: origin.X + width/2, Y: origin.Y + height/2}
	hw, qh, hh := width/2, height/4, height/2

	corners := [7]r2.Point{
		{X: c.X - hw, Y: c.Y - qh},
		{X: c.X, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y - qh},
		{X: c.X + hw, Y: c.Y + qh},
		{X: c.X, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + qh},
		{X: c.X - hw, Y: c.Y - qh},
	}

	var lines [6]Line
	for i := range lines {
		lines[i] = NewLine(corners[i], corners[i+1])
	}
	return lines
}

// Toggle merges segments into lines by symmetric difference: a segment
// already present is removed (it is shared by two tiles), otherwise it is
// appended.
func Toggle(lines []Line, segments ...Line) []Line {
	for _, s := range segments {
		if i := IndexOf(lines, s); i >= 0 {
			lines = append(lines[:i], lines[i+1:]...)
			continue
		}
		lines = append(lines, s)
	}
	return lines
}

// Outline returns the outer border of the union of tiles at origins.
func Outline(origins []r2.Point, width, height float64) []Line {
	var lines []Line
	for _, o := range origins {
		edges := TileOutline(o, width, height)
		lines = Toggle(lines, edges[:]...)
	}
	return lines
}
