package interpolation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ctessum/geom"

	"github.com/hgcal-gsoc/hgcal/internal/serialization"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// ErrCorruptTable is returned when stored sections disagree with each other.
var ErrCorruptTable = errors.New("interpolation: inconsistent stored table")

// Metadata keys.
const (
	metaLayer = "layer"
	metaNX    = "nx"
	metaNY    = "ny"
)

// CoefFilename is the coefficient file name for a layer and resolution.
func CoefFilename(layer int, resolution [2]int) string {
	return fmt.Sprintf("coef_dict_layer_%d_res_%d.hgcl", layer, resolution[0])
}

// SquareCellsFilename is the square grid file name for a layer and resolution.
func SquareCellsFilename(layer int, resolution [2]int) string {
	return fmt.Sprintf("sq_cells_dict_layer_%d_res_%d.hgcl", layer, resolution[0])
}

func gridMetadata(layer int, resolution [2]int) map[string]string {
	return map[string]string{
		metaLayer: strconv.Itoa(layer),
		metaNX:    strconv.Itoa(resolution[0]),
		metaNY:    strconv.Itoa(resolution[1]),
	}
}

// SaveCoefficients writes coef in compressed sparse row form: hex_ids[n],
// offsets[n+1], square_ids[m] and weights[m], where the overlaps of
// hex_ids[i] are the entries offsets[i] to offsets[i+1].
func SaveCoefficients(path string, layer int, resolution [2]int, coef CoefTable) error {
	ids := coef.HexIDs()
	hexIDs := make([]int64, len(ids))
	offsets := make([]int64, 0, len(ids)+1)
	squareIDs := make([]int64, 0, coef.NumOverlaps())
	weights := make([]float64, 0, coef.NumOverlaps())

	offsets = append(offsets, 0)
	for i, id := range ids {
		hexIDs[i] = int64(id)
		for _, o := range coef[id] {
			squareIDs = append(squareIDs, o.SquareID)
			weights = append(weights, o.Weight)
		}
		offsets = append(offsets, int64(len(squareIDs)))
	}

	sections := []serialization.Section{
		serialization.Int64Section("hex_ids", tensor.Shape{len(hexIDs)}, hexIDs),
		serialization.Int64Section("offsets", tensor.Shape{len(offsets)}, offsets),
		serialization.Int64Section("square_ids", tensor.Shape{len(squareIDs)}, squareIDs),
		serialization.Float64Section("weights", tensor.Shape{len(weights)}, weights),
	}
	if err := serialization.WriteFile(path, serialization.KindCoefficients, sections,
		gridMetadata(layer, resolution)); err != nil {
		return fmt.Errorf("failed to save coefficients: %w", err)
	}
	return nil
}

// LoadCoefficients reads a table written by SaveCoefficients.
func LoadCoefficients(path string) (CoefTable, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := f.ExpectKind(serialization.KindCoefficients); err != nil {
		return nil, err
	}

	hexIDs, err := int64Section(f, "hex_ids")
	if err != nil {
		return nil, err
	}
	offsets, err := int64Section(f, "offsets")
	if err != nil {
		return nil, err
	}
	squareIDs, err := int64Section(f, "square_ids")
	if err != nil {
		return nil, err
	}
	s, err := f.Section("weights")
	if err != nil {
		return nil, err
	}
	weights, err := s.Float64s()
	if err != nil {
		return nil, err
	}

	if len(offsets) != len(hexIDs)+1 || len(squareIDs) != len(weights) ||
		offsets[0] != 0 || offsets[len(offsets)-1] != int64(len(squareIDs)) {
		return nil, fmt.Errorf("%s: %w: %d hex ids, %d offsets, %d square ids, %d weights",
			path, ErrCorruptTable, len(hexIDs), len(offsets), len(squareIDs), len(weights))
	}

	for i, off := range offsets {
		if off < 0 || off > int64(len(squareIDs)) {
			return nil, fmt.Errorf("%s: %w: offset %d out of range [0, %d]", path, ErrCorruptTable, off, len(squareIDs))
		}
		if i > 0 && off < offsets[i-1] {
			return nil, fmt.Errorf("%s: %w: offsets decrease at hex %d", path, ErrCorruptTable, hexIDs[i-1])
		}
	}

	coef := make(CoefTable, len(hexIDs))
	for i, id := range hexIDs {
		lo, hi := offsets[i], offsets[i+1]
		overlaps := make([]Overlap, 0, hi-lo)
		for k := lo; k < hi; k++ {
			overlaps = append(overlaps, Overlap{SquareID: squareIDs[k], Weight: weights[k]})
		}
		//nolint:gosec // G115: ids were written from uint32 values
		coef[uint32(id)] = overlaps
	}
	return coef, nil
}

// SaveSquareCells writes the grid as square_ids[n] and bounds[n, 4]
// (min x, min y, max x, max y), with the layer and resolution as metadata.
func SaveSquareCells(path string, layer int, grid *SquareGrid) error {
	ids := make([]int64, grid.Len())
	bounds := make([]float64, 0, 4*grid.Len())
	for i, c := range grid.Cells() {
		ids[i] = c.ID
		b := c.Bounds()
		bounds = append(bounds, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}

	sections := []serialization.Section{
		serialization.Int64Section("square_ids", tensor.Shape{len(ids)}, ids),
		serialization.Float64Section("bounds", tensor.Shape{len(ids), 4}, bounds),
	}
	if err := serialization.WriteFile(path, serialization.KindSquareCells, sections,
		gridMetadata(layer, grid.Resolution())); err != nil {
		return fmt.Errorf("failed to save square cells: %w", err)
	}
	return nil
}

// LoadSquareCells reads a grid written by SaveSquareCells and returns it with
// its layer.
func LoadSquareCells(path string) (*SquareGrid, int, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	if err := f.ExpectKind(serialization.KindSquareCells); err != nil {
		return nil, 0, err
	}

	layer, err := intMetadata(f, metaLayer)
	if err != nil {
		return nil, 0, err
	}
	nx, err := intMetadata(f, metaNX)
	if err != nil {
		return nil, 0, err
	}
	ny, err := intMetadata(f, metaNY)
	if err != nil {
		return nil, 0, err
	}

	ids, err := int64Section(f, "square_ids")
	if err != nil {
		return nil, 0, err
	}
	s, err := f.Section("bounds")
	if err != nil {
		return nil, 0, err
	}
	bounds, err := s.Float64s()
	if err != nil {
		return nil, 0, err
	}
	if nx <= 0 || ny <= 0 || len(ids) != nx*ny || len(bounds) != 4*len(ids) {
		return nil, 0, fmt.Errorf("%s: %w: %dx%d grid with %d ids and %d bound values",
			path, ErrCorruptTable, nx, ny, len(ids), len(bounds))
	}

	grid := &SquareGrid{
		Bounds: geom.NewBounds(),
		NX:     nx,
		NY:     ny,
		cells:  make([]*SquareCell, len(ids)),
	}
	for i, id := range ids {
		if id != int64(i) {
			return nil, 0, fmt.Errorf("%s: %w: square %d stored at position %d", path, ErrCorruptTable, id, i)
		}
		b := &geom.Bounds{
			Min: geom.Point{X: bounds[4*i], Y: bounds[4*i+1]},
			Max: geom.Point{X: bounds[4*i+2], Y: bounds[4*i+3]},
		}
		grid.Bounds.Extend(b)
		grid.cells[i] = &SquareCell{Polygonal: b, ID: id, IX: i % nx, IY: i / nx}
	}
	grid.DX = (grid.Bounds.Max.X - grid.Bounds.Min.X) / float64(nx)
	grid.DY = (grid.Bounds.Max.Y - grid.Bounds.Min.Y) / float64(ny)
	grid.index()
	return grid, layer, nil
}

func int64Section(f *serialization.File, name string) ([]int64, error) {
	s, err := f.Section(name)
	if err != nil {
		return nil, err
	}
	return s.Int64s()
}

func intMetadata(f *serialization.File, key string) (int, error) {
	v, ok := f.Metadata(key)
	if !ok {
		return 0, fmt.Errorf("%w: missing metadata %q", ErrCorruptTable, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: metadata %q: %w", ErrCorruptTable, key, err)
	}
	return n, nil
}
