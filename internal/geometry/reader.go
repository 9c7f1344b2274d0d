package geometry

import (
	"fmt"
	"log"
	"time"

	"github.com/ctessum/geom"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// DefaultTreeName is the cell tree written by the trigger geometry tester.
const DefaultTreeName = "hgcaltriggergeomtester/TreeCells"

// ReadOptions selects which cells ReadGeometry keeps. A negative Subdet,
// Layer or Wafer matches every value.
type ReadOptions struct {
	TreeName string
	Subdet   int
	Layer    int
	Wafer    int
}

// DefaultReadOptions selects every wafer of layer 1 in subdetector 3.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		TreeName: DefaultTreeName,
		Subdet:   3,
		Layer:    1,
		Wafer:    -1,
	}
}

func (o ReadOptions) match(subdet, layer, wafer int) bool {
	return (o.Subdet < 0 || subdet == o.Subdet) &&
		(o.Layer < 0 || layer == o.Layer) &&
		(o.Wafer < 0 || wafer == o.Wafer)
}

// cellEntry mirrors one entry of the cell tree.
type cellEntry struct {
	ID        int32     `groot:"id"`
	Zside     int32     `groot:"zside"`
	Subdet    int32     `groot:"subdet"`
	Layer     int32     `groot:"layer"`
	Wafer     int32     `groot:"wafer"`
	WaferType int32     `groot:"wafertype"`
	Cell      int32     `groot:"cell"`
	X         float32   `groot:"x"`
	Y         float32   `groot:"y"`
	Z         float32   `groot:"z"`
	CornerN   int32     `groot:"corner_n"`
	CornerX   []float32 `groot:"corner_x[corner_n]"`
	CornerY   []float32 `groot:"corner_y[corner_n]"`
}

func (e *cellEntry) toCell() (*Cell, error) {
	n := min(int(e.CornerN), len(e.CornerX), len(e.CornerY))
	corners := make([]geom.Point, n)
	for i := range corners {
		corners[i] = geom.Point{X: float64(e.CornerX[i]), Y: float64(e.CornerY[i])}
	}
	//nolint:gosec // G115: detector ids are unsigned 32-bit values stored as int
	c, err := NewCell(uint32(e.ID), geom.Point{X: float64(e.X), Y: float64(e.Y)}, corners)
	if err != nil {
		return nil, err
	}
	c.Zside = int(e.Zside)
	c.Subdet = int(e.Subdet)
	c.Layer = int(e.Layer)
	c.Wafer = int(e.Wafer)
	c.WaferType = int(e.WaferType)
	c.CellNum = int(e.Cell)
	c.Z = float64(e.Z)
	return c, nil
}

// ReadGeometry reads the cells of a trigger geometry ROOT file that match
// opts, keyed by cell id.
func ReadGeometry(path string, opts ReadOptions) (map[uint32]*Cell, error) {
	start := time.Now()
	if opts.TreeName == "" {
		opts.TreeName = DefaultTreeName
	}

	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geometry file: %w", err)
	}
	defer f.Close()

	obj, err := riofs.Dir(f).Get(opts.TreeName)
	if err != nil {
		return nil, fmt.Errorf("failed to find tree %q: %w", opts.TreeName, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("%s: object %q is a %T, not a tree", path, opts.TreeName, obj)
	}

	var entry cellEntry
	r, err := rtree.NewReader(tree, rtree.ReadVarsFromStruct(&entry))
	if err != nil {
		return nil, fmt.Errorf("failed to create tree reader: %w", err)
	}
	defer r.Close()

	cells := make(map[uint32]*Cell)
	err = r.Read(func(ctx rtree.RCtx) error {
		if !opts.match(int(entry.Subdet), int(entry.Layer), int(entry.Wafer)) {
			return nil
		}
		c, err := entry.toCell()
		if err != nil {
			return fmt.Errorf("entry %d: %w", ctx.Entry, err)
		}
		cells[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tree %q: %w", opts.TreeName, err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%s: %w (subdet=%d, layer=%d, wafer=%d)",
			path, ErrNoCells, opts.Subdet, opts.Layer, opts.Wafer)
	}

	log.Printf("Cells read: number=%d, time=%s", len(cells), time.Since(start))
	return cells, nil
}

// WriteGeometry writes cells to a new ROOT file using the tree layout that
// ReadGeometry expects. Cells are written in increasing id order.
func WriteGeometry(path, treeName string, cells map[uint32]*Cell) (err error) {
	if treeName == "" {
		treeName = DefaultTreeName
	}
	dirName, name := splitTreeName(treeName)

	f, err := groot.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create geometry file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var dir riofs.Directory = f
	if dirName != "" {
		dir, err = riofs.Dir(f).Mkdir(dirName)
		if err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dirName, err)
		}
	}

	var entry cellEntry
	w, err := rtree.NewWriter(dir, name, rtree.WriteVarsFromStruct(&entry))
	if err != nil {
		return fmt.Errorf("failed to create tree writer: %w", err)
	}

	for _, id := range SortedIDs(cells) {
		c := cells[id]
		entry = cellEntry{
			//nolint:gosec // G115: round-trips the unsigned id through the int branch
			ID:        int32(c.ID),
			Zside:     int32(c.Zside),
			Subdet:    int32(c.Subdet),
			Layer:     int32(c.Layer),
			Wafer:     int32(c.Wafer),
			WaferType: int32(c.WaferType),
			Cell:      int32(c.CellNum),
			X:         float32(c.Center.X),
			Y:         float32(c.Center.Y),
			Z:         float32(c.Z),
			CornerN:   int32(len(c.vertices)),
		}
		for _, p := range c.vertices {
			entry.CornerX = append(entry.CornerX, float32(p.X))
			entry.CornerY = append(entry.CornerY, float32(p.Y))
		}
		if _, err := w.Write(); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to write cell %d: %w", id, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close tree writer: %w", err)
	}
	return nil
}

func splitTreeName(treeName string) (dir, name string) {
	for i := len(treeName) - 1; i >= 0; i-- {
		if treeName[i] == '/' {
			return treeName[:i], treeName[i+1:]
		}
	}
	return "", treeName
}
