package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgcal-gsoc/hgcal/internal/nn"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

func TestDemoForward(t *testing.T) {
	m, err := newDemo(1, 16)
	require.NoError(t, err)
	assert.True(t, m.image.Shape().Equal(tensor.Shape{1, 16, 16, 1}))

	logits, err := m.forward(m.graph.Root(), true)
	require.NoError(t, err)
	assert.True(t, logits.Shape().Equal(tensor.Shape{1, 2}))

	_, ok := m.graph.Variable("inception3/compress_maxpool/W")
	assert.True(t, ok)
	assert.NotEmpty(t, m.graph.UpdateOps())
	assert.Positive(t, m.graph.RegularizationLoss())

	_, err = m.forward(m.graph.Root(), false)
	assert.ErrorIs(t, err, nn.ErrVariableExists)
}

func TestDemoCheckpointRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.hgcl")

	src, err := newDemo(1, 8)
	require.NoError(t, err)
	want, err := src.forward(src.graph.Root(), false)
	require.NoError(t, err)
	require.NoError(t, src.graph.SaveCheckpoint(path, nil))

	dst, err := newDemo(1, 8)
	require.NoError(t, err)
	dst.graph = nn.NewGraph(nn.Config{Seed: 7, Parallel: nn.DefaultConfig().Parallel})
	_, err = dst.forward(dst.graph.Root(), false)
	require.NoError(t, err)

	_, err = dst.graph.LoadCheckpoint(path)
	require.NoError(t, err)
	got, err := dst.forward(dst.graph.Root().Reuse(), false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want.Data(), got.Data(), 1e-5)
}
