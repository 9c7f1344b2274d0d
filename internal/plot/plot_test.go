package plot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/interpolation"
)

func interpolated(t *testing.T, cells map[uint32]*geometry.Cell) *interpolation.Result {
	t.Helper()
	res, err := interpolation.LinearInterpolateHexToSquare(context.Background(), cells, 1, [2]int{8, 8},
		interpolation.DefaultOptions())
	require.NoError(t, err)
	return res
}

func TestSquareCells(t *testing.T) {
	res := interpolated(t, geometry.HexTiling(1, 10))
	path := filepath.Join(t.TempDir(), "squares.png")

	require.NoError(t, SquareCells(res.Grid, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHexToSquareMap(t *testing.T) {
	cells := geometry.HexTiling(1, 10)
	res := interpolated(t, cells)
	dir := filepath.Join(t.TempDir(), "maps")

	n, err := HexToSquareMap(res.Coefficients, cells, res.Grid, dir, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, id := range []uint32{1, 2, 3} {
		_, err := os.Stat(filepath.Join(dir, fmt.Sprintf("hex_%d.png", id)))
		assert.NoError(t, err)
	}
	_, err = os.Stat(filepath.Join(dir, "hex_4.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestHexToSquareMapOnlySmallestCells(t *testing.T) {
	cells := geometry.HexTiling(1, 10)
	big, err := geometry.NewCell(50, geom.Point{X: 60, Y: 0}, geometry.RegularHexagon(geom.Point{X: 60, Y: 0}, 20))
	require.NoError(t, err)
	cells[big.ID] = big
	res := interpolated(t, cells)
	dir := t.TempDir()

	n, err := HexToSquareMap(res.Coefficients, cells, res.Grid, dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = os.Stat(filepath.Join(dir, "hex_50.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestHexToSquareMapWithoutFullHexagons(t *testing.T) {
	tri, err := geometry.NewCell(1, geom.Point{}, []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}})
	require.NoError(t, err)
	cells := map[uint32]*geometry.Cell{1: tri}
	res := interpolated(t, cells)

	_, err = HexToSquareMap(res.Coefficients, cells, res.Grid, t.TempDir(), 0)
	assert.Error(t, err)
}

func TestSameArea(t *testing.T) {
	assert.True(t, sameArea(259.8076, 259.8076+1e-5))
	assert.False(t, sameArea(259.8, 260.5))
}
