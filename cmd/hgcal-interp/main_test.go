package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/interpolation"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestMissingInputPrintsUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"empty in yaml", []string{"-config", writeYAML(t, "input_geometry: \"\"\n")}},
		{"empty flag", []string{"-input_geometry", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := cli(context.Background(), tt.args, &stdout, &stderr)

			assert.Equal(t, 1, code)
			assert.Contains(t, stdout.String(), "usage: hgcal-interp")
			assert.Contains(t, stdout.String(), "Error: Missing input geometry file name")
		})
	}
}

func TestInputFlagOverridesEmptyYAML(t *testing.T) {
	dir := t.TempDir()
	geomPath := filepath.Join(dir, "geom.root")
	cells := geometry.HexTiling(2, 1)
	require.NoError(t, geometry.WriteGeometry(geomPath, geometry.DefaultTreeName, cells))

	outDir := filepath.Join(dir, "out")
	args := []string{
		"-config", writeYAML(t, "input_geometry: \"\"\n"),
		"-input_geometry", geomPath,
		"-resolution", "8",
		"-output_dir", outDir,
	}
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, cli(context.Background(), args, &stdout, &stderr), stderr.String())

	coef, err := interpolation.LoadCoefficients(filepath.Join(outDir, interpolation.CoefFilename(1, [2]int{8, 8})))
	require.NoError(t, err)
	assert.Len(t, coef, len(cells))
}

func TestSyntheticRun(t *testing.T) {
	outDir := t.TempDir()
	args := []string{"-synthetic", "2", "-resolution", "6x4", "-output_dir", outDir}
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, cli(context.Background(), args, &stdout, &stderr), stderr.String())

	grid, layer, err := interpolation.LoadSquareCells(filepath.Join(outDir, interpolation.SquareCellsFilename(1, [2]int{6, 4})))
	require.NoError(t, err)
	assert.Equal(t, 1, layer)
	assert.Equal(t, [2]int{6, 4}, grid.Resolution())
}

func TestBadResolutionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, cli(context.Background(), []string{"-resolution", "0x"}, &stdout, &stderr))
}
