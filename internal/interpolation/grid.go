// Package interpolation maps hexagonal detector cells onto a regular square
// grid with area-overlap weights, so that hexagonal energy deposits can be
// fed to an image CNN.
package interpolation

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// ErrInvalidGrid is returned for empty bounds or a non-positive resolution.
var ErrInvalidGrid = errors.New("interpolation: invalid square grid")

// SquareCell is one grid cell. Its id is iy*nx + ix.
type SquareCell struct {
	geom.Polygonal

	ID int64
	IX int
	IY int
}

// SquareGrid is an nx by ny grid of equal rectangles covering Bounds,
// indexed in an rtree for overlap queries.
type SquareGrid struct {
	Bounds *geom.Bounds
	NX, NY int
	DX, DY float64

	cells []*SquareCell
	tree  *rtree.Rtree
}

// NewSquareGrid covers bounds with resolution[0] columns and resolution[1]
// rows.
func NewSquareGrid(bounds *geom.Bounds, resolution [2]int) (*SquareGrid, error) {
	nx, ny := resolution[0], resolution[1]
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: resolution %v", ErrInvalidGrid, resolution)
	}
	if bounds == nil || !(bounds.Max.X > bounds.Min.X) || !(bounds.Max.Y > bounds.Min.Y) {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidGrid, bounds)
	}

	g := &SquareGrid{
		Bounds: &geom.Bounds{Min: bounds.Min, Max: bounds.Max},
		NX:     nx,
		NY:     ny,
		DX:     (bounds.Max.X - bounds.Min.X) / float64(nx),
		DY:     (bounds.Max.Y - bounds.Min.Y) / float64(ny),
		cells:  make([]*SquareCell, 0, nx*ny),
	}
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			g.cells = append(g.cells, &SquareCell{
				Polygonal: g.cellBounds(ix, iy),
				ID:        int64(iy*nx + ix),
				IX:        ix,
				IY:        iy,
			})
		}
	}
	g.index()
	return g, nil
}

// cellBounds returns the outline of column ix, row iy. The last column and
// row end exactly on the grid bounds.
func (g *SquareGrid) cellBounds(ix, iy int) *geom.Bounds {
	x1 := g.Bounds.Min.X + g.DX*float64(ix+1)
	if ix == g.NX-1 {
		x1 = g.Bounds.Max.X
	}
	y1 := g.Bounds.Min.Y + g.DY*float64(iy+1)
	if iy == g.NY-1 {
		y1 = g.Bounds.Max.Y
	}
	return &geom.Bounds{
		Min: geom.Point{X: g.Bounds.Min.X + g.DX*float64(ix), Y: g.Bounds.Min.Y + g.DY*float64(iy)},
		Max: geom.Point{X: x1, Y: y1},
	}
}

func (g *SquareGrid) index() {
	g.tree = rtree.NewTree(25, 50)
	for _, c := range g.cells {
		g.tree.Insert(c)
	}
}

// Resolution returns (nx, ny).
func (g *SquareGrid) Resolution() [2]int {
	return [2]int{g.NX, g.NY}
}

// Len returns the number of cells.
func (g *SquareGrid) Len() int {
	return len(g.cells)
}

// Cells returns every cell in id order.
func (g *SquareGrid) Cells() []*SquareCell {
	return g.cells
}

// Cell returns the cell with the given id.
func (g *SquareGrid) Cell(id int64) (*SquareCell, bool) {
	if id < 0 || id >= int64(len(g.cells)) {
		return nil, false
	}
	return g.cells[id], true
}

// Search returns the cells whose bounds intersect b.
func (g *SquareGrid) Search(b *geom.Bounds) []*SquareCell {
	found := g.tree.SearchIntersect(b)
	out := make([]*SquareCell, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*SquareCell))
	}
	return out
}

// Equal reports whether two grids have the same shape and cell outlines
// within tol.
func (g *SquareGrid) Equal(other *SquareGrid, tol float64) bool {
	if g.NX != other.NX || g.NY != other.NY || len(g.cells) != len(other.cells) {
		return false
	}
	for i, c := range g.cells {
		a, b := c.Bounds(), other.cells[i].Bounds()
		if math.Abs(a.Min.X-b.Min.X) > tol || math.Abs(a.Min.Y-b.Min.Y) > tol ||
			math.Abs(a.Max.X-b.Max.X) > tol || math.Abs(a.Max.Y-b.Max.Y) > tol {
			return false
		}
	}
	return true
}
