// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"testing"

	"github.com/hgcal-gsoc/hgcal/nn"
	"github.com/hgcal-gsoc/hgcal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicBuilders(t *testing.T) {
	g := nn.NewGraph(nn.DefaultConfig())
	opts := nn.DefaultOptions()
	opts.Training = true
	opts.WeightDecay = 0.01

	x := tensor.Ones(tensor.Shape{2, 8, 8, 1})
	a, err := nn.RectifiedConv2D(g.Root(), x, "conv1", [2]int{3, 3}, 4, [2]int{1, 1}, nn.Same, opts)
	require.NoError(t, err)
	assert.True(t, a.Shape().Equal(tensor.Shape{2, 8, 8, 4}))

	a, err = nn.MaxPooling2D(g.Root(), a, "pool1", [2]int{2, 2}, [2]int{2, 2}, nn.Valid)
	require.NoError(t, err)
	assert.True(t, a.Shape().Equal(tensor.Shape{2, 4, 4, 4}))

	assert.Len(t, g.Collection(nn.LossesCollection), 1)
	assert.NotEmpty(t, g.Collection(nn.UpdateOpsCollection))
	assert.Greater(t, g.RegularizationLoss(), 0.0)

	_, err = nn.RectifiedConv2D(g.Root(), x, "conv1", [2]int{3, 3}, 4, [2]int{1, 1}, nn.Same, opts)
	assert.True(t, errors.Is(err, nn.ErrVariableExists))
}

func TestPublicInitializers(t *testing.T) {
	assert.Equal(t, float64(3), nn.L2Loss(tensor.Full(tensor.Shape{6}, 1)))

	g := nn.NewGraph(nn.DefaultConfig())
	v, err := g.Root().Variable("c", tensor.Shape{2}, nn.Constant(2), 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2}, v.Value().Data())
}
