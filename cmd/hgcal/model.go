package main

import (
	"context"
	"math/rand"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/interpolation"
	"github.com/hgcal-gsoc/hgcal/internal/nn"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// demo is a small classifier that exercises every layer builder on one
// interpolated layer image.
type demo struct {
	graph *nn.Graph
	image *tensor.Tensor
}

func newDemo(seed int64, resolution int) (*demo, error) {
	cells := geometry.HexTiling(6, 1)
	res, err := interpolation.LinearInterpolateHexToSquare(context.Background(), cells, 1,
		[2]int{resolution, resolution}, interpolation.DefaultOptions())
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Using math/rand for synthetic energies (not security-critical)
	rng := rand.New(rand.NewSource(seed))
	energies := make(map[uint32]float64, len(cells))
	for _, id := range geometry.SortedIDs(cells) {
		energies[id] = rng.ExpFloat64()
	}
	img, err := res.Coefficients.Project(energies, res.Grid)
	if err != nil {
		return nil, err
	}

	cfg := nn.DefaultConfig()
	cfg.Seed = seed
	return &demo{graph: nn.NewGraph(cfg), image: img}, nil
}

func (m *demo) forward(s *nn.Scope, training bool) (*tensor.Tensor, error) {
	opts := nn.DefaultOptions()
	opts.Training = training
	opts.WeightDecay = 1e-4
	opts.DropoutRate = 0.1

	a, err := nn.RectifiedConv2D(s, m.image, "conv1", [2]int{3, 3}, 16, [2]int{1, 1}, nn.Same, opts)
	if err != nil {
		return nil, err
	}
	if a, err = nn.MaxPooling2D(s, a, "pool1", [2]int{2, 2}, [2]int{2, 2}, nn.Valid); err != nil {
		return nil, err
	}
	if a, err = nn.ConvolutionalResidualBlock(s, a, "res2a", [3]int{8, 8, 32}, [2]int{1, 1}, [2]int{3, 3}, opts); err != nil {
		return nil, err
	}
	if a, err = nn.IdentityResidualBlock(s, a, "res2b", [3]int{8, 8, 32}, [2]int{3, 3}, opts); err != nil {
		return nil, err
	}
	if a, err = nn.InceptionBlock(s, a, "inception3", [4]int{8, 16, 8, 8}, [2]int{8, 4}, opts); err != nil {
		return nil, err
	}
	if a, err = nn.MaxPooling2D(s, a, "pool3", [2]int{2, 2}, [2]int{2, 2}, nn.Same); err != nil {
		return nil, err
	}

	fc := opts
	fc.FlattenFirst = true
	if a, err = nn.SimpleFullyConnected(s, a, "fc4", 64, fc); err != nil {
		return nil, err
	}

	out := opts
	out.BatchNorm = false
	out.ReLU = false
	return nn.SimpleFullyConnected(s, a, "logits", 2, out)
}
