package world

import "github.com/golang/geo/r2"

// DefaultSearchDepth bounds the pixel search when no depth is configured.
const DefaultSearchDepth = 5

// Layout maps hex steps to pixel offsets for tiles of a fixed size.
// Horizontal neighbors sit one tile width apart; rows overlap by a quarter
// of the tile height.
type Layout struct {
	TileWidth  float64 `json:"tile_width"`
	TileHeight float64 `json:"tile_height"`
}

// PixelDelta returns the pixel shift for one hex step d.
func (l Layout) PixelDelta(d CubeCoord) r2.Point {
	return r2.Point{
		X: l.TileWidth * (float64(d.Q) + float64(d.R)/2),
		Y: 0.75 * l.TileHeight * float64(d.R),
	}
}

type searchNode struct {
	coord CubeCoord
	pixel r2.Point
	depth int
}

// ResolvePixel finds the pixel origin of target by walking hex steps out
// from a tile with a known pixel. The search is breadth-first and stops
// after maxDepth steps; ok is false if target was not reached.
func (l Layout) ResolvePixel(anchor CubeCoord, anchorPixel r2.Point, target CubeCoord, maxDepth int) (r2.Point, bool) {
	if maxDepth <= 0 {
		maxDepth = DefaultSearchDepth
	}
	if anchor == target {
		return anchorPixel, true
	}

	var deltas [6]r2.Point
	for i, dir := range CubeDirections {
		deltas[i] = l.PixelDelta(dir)
	}

	visited := map[CubeCoord]bool{anchor: true}
	frontier := []searchNode{{coord: anchor, pixel: anchorPixel}}

	for head := 0; head < len(frontier); head++ {
		node := frontier[head]
		for i, dir := range CubeDirections {
			next := node.coord.Add(dir)
			pixel := node.pixel.Add(deltas[i])
			if next == target {
				return pixel, true
			}
			if node.depth+1 >= maxDepth || visited[next] {
				continue
			}
			visited[next] = true
			frontier = append(frontier, searchNode{coord: next, pixel: pixel, depth: node.depth + 1})
		}
	}

	return r2.Point{}, false
}
