package interpolation

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/parallel"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// DefaultMinWeight drops overlaps that only touch along an edge.
const DefaultMinWeight = 1e-9

// Overlap is the fraction of a hex cell's area that lies in one square.
type Overlap struct {
	SquareID int64
	Weight   float64
}

// CoefTable maps a hex cell id to its overlaps, sorted by square id.
type CoefTable map[uint32][]Overlap

// HexIDs returns the hex ids in increasing order.
func (t CoefTable) HexIDs() []uint32 {
	ids := make([]uint32, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Weights returns the overlap weights of hexID in square id order.
func (t CoefTable) Weights(hexID uint32) []float64 {
	overlaps := t[hexID]
	w := make([]float64, len(overlaps))
	for i, o := range overlaps {
		w[i] = o.Weight
	}
	return w
}

// Coverage returns the fraction of the hex cell covered by the grid. It is
// 1 for a cell lying entirely inside the grid.
func (t CoefTable) Coverage(hexID uint32) float64 {
	return floats.Sum(t.Weights(hexID))
}

// NumOverlaps returns the total number of (hex, square) pairs.
func (t CoefTable) NumOverlaps() int {
	n := 0
	for _, o := range t {
		n += len(o)
	}
	return n
}

// Project distributes hex energies over the grid and returns the image as a
// [1, ny, nx, 1] tensor; row iy holds the squares with that y index.
// Energies of hexes absent from the table are dropped.
func (t CoefTable) Project(energies map[uint32]float64, grid *SquareGrid) (*tensor.Tensor, error) {
	img := tensor.Zeros(tensor.Shape{1, grid.NY, grid.NX, 1})
	data := img.Data()
	for hexID, e := range energies {
		for _, o := range t[hexID] {
			if o.SquareID < 0 || o.SquareID >= int64(len(data)) {
				return nil, fmt.Errorf("hex %d: square %d outside a %dx%d grid", hexID, o.SquareID, grid.NX, grid.NY)
			}
			data[o.SquareID] += float32(e * o.Weight)
		}
	}
	return img, nil
}

// Options tunes LinearInterpolateHexToSquare.
type Options struct {
	// Bounds of the square grid; nil uses the bounding box of the hex cells.
	Bounds *geom.Bounds
	// MinWeight is the smallest overlap kept.
	MinWeight float64
	// Parallel controls how hex cells are spread over workers.
	Parallel parallel.Config
}

// DefaultOptions covers the hex bounding box on all CPUs.
func DefaultOptions() Options {
	return Options{
		MinWeight: DefaultMinWeight,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Result is the output of one interpolation run.
type Result struct {
	Layer        int
	Resolution   [2]int
	Coefficients CoefTable
	Grid         *SquareGrid
}

// LinearInterpolateHexToSquare overlays a resolution[0] x resolution[1]
// square grid on the hex cells of one layer and computes, for every hex
// cell, area(hex ∩ square) / area(hex) for each square it overlaps.
//
// Hex cells are processed concurrently; cancelling ctx stops the run and
// returns the context error.
func LinearInterpolateHexToSquare(ctx context.Context, hexCells map[uint32]*geometry.Cell, layer int,
	resolution [2]int, opts Options,
) (*Result, error) {
	if len(hexCells) == 0 {
		return nil, geometry.ErrNoCells
	}
	start := time.Now()

	bounds := opts.Bounds
	if bounds == nil {
		bounds = geometry.Bounds(hexCells)
	}
	grid, err := NewSquareGrid(bounds, resolution)
	if err != nil {
		return nil, err
	}
	log.Printf(">>> Square grid built: %dx%d cells over [%g, %g]x[%g, %g]",
		grid.NX, grid.NY, bounds.Min.X, bounds.Max.X, bounds.Min.Y, bounds.Max.Y)

	ids := geometry.SortedIDs(hexCells)
	overlaps := make([][]Overlap, len(ids))
	err = parallel.ForEach(ctx, len(ids), func(i int) error {
		o, err := overlapsOf(hexCells[ids[i]], grid, opts.MinWeight)
		if err != nil {
			return err
		}
		overlaps[i] = o
		return nil
	}, opts.Parallel)
	if err != nil {
		return nil, fmt.Errorf("interpolation of layer %d: %w", layer, err)
	}

	coef := make(CoefTable, len(ids))
	for i, id := range ids {
		if len(overlaps[i]) > 0 {
			coef[id] = overlaps[i]
		}
	}
	log.Printf(">>> Interpolation completed: hex cells=%d, overlaps=%d, time=%s",
		len(coef), coef.NumOverlaps(), time.Since(start))

	return &Result{
		Layer:        layer,
		Resolution:   resolution,
		Coefficients: coef,
		Grid:         grid,
	}, nil
}

func overlapsOf(c *geometry.Cell, grid *SquareGrid, minWeight float64) ([]Overlap, error) {
	area := c.Area()
	if !(area > 0) {
		return nil, fmt.Errorf("hex cell %d has area %g", c.ID, area)
	}
	var out []Overlap
	for _, sq := range grid.Search(c.Bounds()) {
		isect := sq.Intersection(c.Polygonal)
		if isect == nil {
			continue
		}
		if w := isect.Area() / area; w > minWeight {
			out = append(out, Overlap{SquareID: sq.ID, Weight: min(w, 1)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SquareID < out[j].SquareID })
	return out, nil
}
