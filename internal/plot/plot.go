// Package plot renders square grids and hex-to-square overlaps as PNG files
// for visual checks of an interpolation run.
package plot

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ctessum/geom"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/interpolation"
)

// Canvas settings.
const (
	// AxisLimit is the half-width in cm of the square cell overview.
	AxisLimit = 160.0
	// Size is the side of every saved image.
	Size = 8 * vg.Inch
)

var (
	blueFill = color.NRGBA{B: 255, A: 128}
	redFill  = color.NRGBA{R: 255, A: 128}
)

// SquareCells draws every grid cell as a translucent blue square on a
// [-160, 160] x [-160, 160] canvas and saves it to path.
func SquareCells(grid *interpolation.SquareGrid, path string) error {
	start := time.Now()
	p := gonumplot.New()
	p.Title.Text = fmt.Sprintf("Square cells %dx%d", grid.NX, grid.NY)
	p.X.Label.Text = "x (cm)"
	p.Y.Label.Text = "y (cm)"

	for _, c := range grid.Cells() {
		poly, err := boundsPolygon(c.Bounds(), blueFill, color.NRGBA{B: 255, A: 255})
		if err != nil {
			return err
		}
		p.Add(poly)
	}
	p.X.Min, p.X.Max = -AxisLimit, AxisLimit
	p.Y.Min, p.Y.Max = -AxisLimit, AxisLimit

	if err := p.Save(Size, Size, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	log.Printf(">>> Plot Completed in: %s", time.Since(start))
	return nil
}

// HexToSquareMap saves one image per hex cell whose area equals the smallest
// full-hexagon area, showing the hex in blue, the squares it overlaps in red
// and the vertices as points. Files are named hex_<id>.png in outDir. At
// most maxPlots files are written when maxPlots is positive. The number of
// files written is returned.
func HexToSquareMap(coef interpolation.CoefTable, hexCells map[uint32]*geometry.Cell,
	grid *interpolation.SquareGrid, outDir string, maxPlots int,
) (int, error) {
	start := time.Now()
	log.Printf(">>> Calculating the area of smaller cell for filtering")
	smallest, ok := geometry.SmallestFullHexArea(hexCells)
	if !ok {
		return 0, fmt.Errorf("no full hexagon among %d cells", len(hexCells))
	}
	log.Printf(">>> Area calculated %g in time: %s", smallest, time.Since(start))

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return 0, fmt.Errorf("failed to create plot directory: %w", err)
	}

	written := 0
	for _, hexID := range coef.HexIDs() {
		if maxPlots > 0 && written >= maxPlots {
			break
		}
		c, ok := hexCells[hexID]
		if !ok || !sameArea(c.Area(), smallest) {
			continue
		}
		t0 := time.Now()
		log.Printf(">>> Plotting hex cell: %d", hexID)
		if err := hexMap(c, coef[hexID], grid, filepath.Join(outDir, fmt.Sprintf("hex_%d.png", hexID))); err != nil {
			return written, err
		}
		written++
		log.Printf("one hex cell overlap complete in: %s", time.Since(t0))
	}
	return written, nil
}

func hexMap(c *geometry.Cell, overlaps []interpolation.Overlap, grid *interpolation.SquareGrid, path string) error {
	p := gonumplot.New()
	p.Title.Text = fmt.Sprintf("hex cell %d", c.ID)

	hex, err := plotter.NewPolygon(toXYs(c.Vertices()))
	if err != nil {
		return err
	}
	hex.Color = blueFill
	hex.LineStyle.Color = color.NRGBA{B: 255, A: 255}
	p.Add(hex)

	vertices, err := plotter.NewScatter(toXYs(c.Vertices()))
	if err != nil {
		return err
	}
	vertices.GlyphStyle.Radius = vg.Points(3)
	p.Add(vertices)

	for _, o := range overlaps {
		sq, ok := grid.Cell(o.SquareID)
		if !ok {
			return fmt.Errorf("hex %d overlaps unknown square %d", c.ID, o.SquareID)
		}
		log.Printf("overlapping with sq_cell %d with overlap coef %g", o.SquareID, o.Weight)
		poly, err := boundsPolygon(sq.Bounds(), redFill, color.NRGBA{R: 255, A: 255})
		if err != nil {
			return err
		}
		p.Add(poly)
	}

	if err := p.Save(Size, Size, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func boundsPolygon(b *geom.Bounds, fill, edge color.Color) (*plotter.Polygon, error) {
	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: b.Min.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Min.Y},
		{X: b.Max.X, Y: b.Max.Y},
		{X: b.Min.X, Y: b.Max.Y},
	})
	if err != nil {
		return nil, err
	}
	poly.Color = fill
	poly.LineStyle.Color = edge
	return poly, nil
}

func toXYs(pts []geom.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// sameArea compares areas with a relative tolerance of 1e-6.
func sameArea(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(math.Abs(a), math.Abs(b))
}
