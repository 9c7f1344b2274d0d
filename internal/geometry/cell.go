// Package geometry holds HGCal trigger cells as planar polygons and reads
// them from the geometry tester's ROOT tree.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/geom"
)

// ErrNoCells is returned when a geometry filter matches nothing.
var ErrNoCells = errors.New("geometry: no cells match the selection")

// Cell is one detector cell. The embedded polygon is its outline in the
// layer plane, so a Cell can be stored in an rtree and intersected directly.
type Cell struct {
	geom.Polygonal

	ID        uint32
	Zside     int
	Subdet    int
	Layer     int
	Wafer     int
	WaferType int
	CellNum   int
	Center    geom.Point
	Z         float64

	vertices []geom.Point
}

// NewCell builds a cell outline from its corners. A repeated closing corner
// is dropped; at least three corners must remain.
func NewCell(id uint32, center geom.Point, corners []geom.Point) (*Cell, error) {
	pts := make([]geom.Point, len(corners))
	copy(pts, corners)
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("cell %d: %d corners, need at least 3", id, len(pts))
	}
	return &Cell{
		Polygonal: geom.Polygon{geom.Path(pts)},
		ID:        id,
		Center:    center,
		vertices:  pts,
	}, nil
}

// Vertices returns the outline corners in order, without the closing point.
func (c *Cell) Vertices() []geom.Point {
	return c.vertices
}

// IsFullHexagon reports whether the cell outline has six distinct corners.
// Cells cut at wafer edges have other counts.
func IsFullHexagon(c *Cell) bool {
	seen := make(map[geom.Point]struct{}, len(c.vertices))
	for _, p := range c.vertices {
		seen[p] = struct{}{}
	}
	return len(seen) == 6
}

// SmallestFullHexArea returns the smallest area among full hexagons, and
// false when there are none.
func SmallestFullHexArea(cells map[uint32]*Cell) (float64, bool) {
	smallest := math.Inf(1)
	for _, c := range cells {
		if !IsFullHexagon(c) {
			continue
		}
		if a := c.Area(); a < smallest {
			smallest = a
		}
	}
	return smallest, !math.IsInf(smallest, 1)
}

// Bounds returns the union of the cell bounding boxes.
func Bounds(cells map[uint32]*Cell) *geom.Bounds {
	b := geom.NewBounds()
	for _, c := range cells {
		b.Extend(c.Bounds())
	}
	return b
}

// SortedIDs returns the cell ids in increasing order.
func SortedIDs(cells map[uint32]*Cell) []uint32 {
	ids := make([]uint32, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RegularHexagon returns the six corners of a pointy-top hexagon with the
// given side length, counterclockwise from the lower-right corner.
func RegularHexagon(center geom.Point, side float64) []geom.Point {
	pts := make([]geom.Point, 6)
	for k := range pts {
		angle := math.Pi/6 + float64(k)*math.Pi/3 - math.Pi/3
		pts[k] = geom.Point{
			X: center.X + side*math.Cos(angle),
			Y: center.Y + side*math.Sin(angle),
		}
	}
	return pts
}

// HexTiling builds a honeycomb of regular hexagons centred on the origin,
// with rings rings around the central cell. Ids start at 1 and follow the
// axial coordinates (r, then q) in increasing order.
func HexTiling(rings int, side float64) map[uint32]*Cell {
	cells := make(map[uint32]*Cell)
	id := uint32(1)
	for r := -rings; r <= rings; r++ {
		for q := -rings; q <= rings; q++ {
			if s := -q - r; s < -rings || s > rings {
				continue
			}
			center := geom.Point{
				X: side * math.Sqrt(3) * (float64(q) + float64(r)/2),
				Y: side * 1.5 * float64(r),
			}
			c, err := NewCell(id, center, RegularHexagon(center, side))
			if err != nil {
				panic(err)
			}
			c.Layer = 1
			c.Subdet = 3
			c.CellNum = int(id)
			cells[id] = c
			id++
		}
	}
	return cells
}
