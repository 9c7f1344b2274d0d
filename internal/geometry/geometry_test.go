package geometry

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCell(t *testing.T) {
	square := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	c, err := NewCell(7, geom.Point{X: 0.5, Y: 0.5}, square)
	require.NoError(t, err)

	assert.Len(t, c.Vertices(), 4)
	assert.InDelta(t, 1.0, c.Area(), 1e-12)
	assert.False(t, IsFullHexagon(c))

	_, err = NewCell(8, geom.Point{}, square[:2])
	assert.Error(t, err)
}

func TestRegularHexagon(t *testing.T) {
	side := 2.0
	c, err := NewCell(1, geom.Point{X: 3, Y: -1}, RegularHexagon(geom.Point{X: 3, Y: -1}, side))
	require.NoError(t, err)

	assert.True(t, IsFullHexagon(c))
	assert.InDelta(t, 3*math.Sqrt(3)/2*side*side, c.Area(), 1e-9)
	for _, p := range c.Vertices() {
		assert.InDelta(t, side, math.Hypot(p.X-3, p.Y+1), 1e-12)
	}
}

func TestHexTiling(t *testing.T) {
	cells := HexTiling(2, 1)
	require.Len(t, cells, 19)

	ids := SortedIDs(cells)
	assert.Equal(t, uint32(1), ids[0])
	assert.Equal(t, uint32(19), ids[len(ids)-1])

	var total float64
	for _, c := range cells {
		total += c.Area()
	}
	area, ok := SmallestFullHexArea(cells)
	require.True(t, ok)
	assert.InDelta(t, 19*area, total, 1e-9)

	center := cells[10]
	assert.InDelta(t, 0, center.Center.X, 1e-12)
	assert.InDelta(t, 0, center.Center.Y, 1e-12)

	b := Bounds(cells)
	assert.InDelta(t, -2.5*math.Sqrt(3), b.Min.X, 1e-9)
	assert.InDelta(t, 2.5*math.Sqrt(3), b.Max.X, 1e-9)
	assert.InDelta(t, -4, b.Min.Y, 1e-9)
	assert.InDelta(t, 4, b.Max.Y, 1e-9)
}

func TestSmallestFullHexAreaIgnoresPartialCells(t *testing.T) {
	cells := HexTiling(1, 2)
	tri, err := NewCell(100, geom.Point{}, []geom.Point{{X: 0, Y: 0}, {X: 0.1, Y: 0}, {X: 0, Y: 0.1}})
	require.NoError(t, err)
	cells[tri.ID] = tri

	area, ok := SmallestFullHexArea(cells)
	require.True(t, ok)
	assert.InDelta(t, 3*math.Sqrt(3)/2*4, area, 1e-9)

	_, ok = SmallestFullHexArea(map[uint32]*Cell{tri.ID: tri})
	assert.False(t, ok)
}

func TestWriteReadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geom.root")
	cells := HexTiling(1, 1.5)
	cells[3].Layer = 2
	cells[4].Wafer = 9
	require.NoError(t, WriteGeometry(path, "", cells))

	got, err := ReadGeometry(path, DefaultReadOptions())
	require.NoError(t, err)
	assert.Len(t, got, 6)
	assert.NotContains(t, got, uint32(3))

	c := got[5]
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Subdet)
	assert.Equal(t, 1, c.Layer)
	require.Len(t, c.Vertices(), 6)
	for i, p := range c.Vertices() {
		assert.InDelta(t, cells[5].Vertices()[i].X, p.X, 1e-5)
		assert.InDelta(t, cells[5].Vertices()[i].Y, p.Y, 1e-5)
	}
	assert.InDelta(t, cells[5].Area(), c.Area(), 1e-4)

	opts := DefaultReadOptions()
	opts.Wafer = 9
	got, err = ReadGeometry(path, opts)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, uint32(4))

	opts.Layer = -1
	opts.Wafer = -1
	got, err = ReadGeometry(path, opts)
	require.NoError(t, err)
	assert.Len(t, got, 7)

	opts.Layer = 7
	_, err = ReadGeometry(path, opts)
	assert.ErrorIs(t, err, ErrNoCells)
}

func TestReadGeometryErrors(t *testing.T) {
	_, err := ReadGeometry(filepath.Join(t.TempDir(), "missing.root"), DefaultReadOptions())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "geom.root")
	require.NoError(t, WriteGeometry(path, "other/Tree", HexTiling(0, 1)))
	_, err = ReadGeometry(path, DefaultReadOptions())
	assert.Error(t, err)

	opts := DefaultReadOptions()
	opts.TreeName = "other/Tree"
	got, err := ReadGeometry(path, opts)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSplitTreeName(t *testing.T) {
	dir, name := splitTreeName(DefaultTreeName)
	assert.Equal(t, "hgcaltriggergeomtester", dir)
	assert.Equal(t, "TreeCells", name)

	dir, name = splitTreeName("cells")
	assert.Empty(t, dir)
	assert.Equal(t, "cells", name)
}
