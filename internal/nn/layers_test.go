package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// image returns a deterministic [n, h, w, c] activation.
func image(n, h, w, c int) *tensor.Tensor {
	t := tensor.Zeros(tensor.Shape{n, h, w, c})
	data := t.Data()
	for i := range data {
		data[i] = float32(i%7) - 3
	}
	return t
}

func TestRectifiedConv2DShapes(t *testing.T) {
	tests := []struct {
		name    string
		stride  [2]int
		padding Padding
		want    tensor.Shape
	}{
		{"same stride 1", [2]int{1, 1}, Same, tensor.Shape{2, 8, 8, 16}},
		{"same stride 2", [2]int{2, 2}, Same, tensor.Shape{2, 4, 4, 16}},
		{"valid stride 2", [2]int{2, 2}, Valid, tensor.Shape{2, 3, 3, 16}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph(DefaultConfig())
			out, err := RectifiedConv2D(g.Root(), image(2, 8, 8, 3), "conv1", [2]int{3, 3}, 16, tt.stride, tt.padding, DefaultOptions())
			require.NoError(t, err)
			assert.True(t, out.Shape().Equal(tt.want), "got %v", out.Shape())

			w, ok := g.Variable("conv1/W")
			require.True(t, ok)
			assert.True(t, w.Shape().Equal(tensor.Shape{3, 3, 3, 16}))
			_, ok = g.Variable("conv1/batchnorm/batch_normalization/gamma")
			assert.True(t, ok)
			_, ok = g.Variable("conv1/b")
			assert.False(t, ok)

			for _, v := range out.Data() {
				assert.GreaterOrEqual(t, v, float32(0))
			}
		})
	}
}

func TestRectifiedConv2DBiasWithoutBatchNorm(t *testing.T) {
	g := NewGraph(DefaultConfig())
	opts := DefaultOptions()
	opts.BatchNorm = false
	opts.ReLU = false
	opts.WeightDecay = 1e-3

	_, err := RectifiedConv2D(g.Root(), image(1, 4, 4, 2), "conv1", [2]int{1, 1}, 3, [2]int{1, 1}, Valid, opts)
	require.NoError(t, err)

	b, ok := g.Variable("conv1/b")
	require.True(t, ok)
	assert.True(t, b.Shape().Equal(tensor.Shape{1, 1, 1, 3}))
	assert.Len(t, g.Losses(), 1)
	assert.Empty(t, g.UpdateOps())
}

func TestRectifiedConv2DErrors(t *testing.T) {
	g := NewGraph(DefaultConfig())
	opts := DefaultOptions()

	_, err := RectifiedConv2D(g.Root(), image(1, 4, 4, 2), "c", [2]int{3, 3}, 4, [2]int{1, 1}, Padding("FULL"), opts)
	assert.ErrorIs(t, err, ErrPadding)

	_, err = RectifiedConv2D(g.Root(), tensor.Zeros(tensor.Shape{4, 4, 2}), "c", [2]int{3, 3}, 4, [2]int{1, 1}, Same, opts)
	assert.ErrorIs(t, err, ErrRank)

	_, err = RectifiedConv2D(g.Root(), image(1, 2, 2, 1), "c", [2]int{3, 3}, 4, [2]int{1, 1}, Valid, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	opts.DropoutRate = 1
	_, err = RectifiedConv2D(g.Root(), image(1, 4, 4, 2), "c", [2]int{3, 3}, 4, [2]int{1, 1}, Same, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Empty(t, g.Variables())
}

func TestSharedTowers(t *testing.T) {
	g := NewGraph(DefaultConfig())
	opts := DefaultOptions()
	opts.WeightDecay = 1e-4

	_, err := RectifiedConv2D(g.Root(), image(1, 4, 4, 2), "conv1", [2]int{3, 3}, 4, [2]int{1, 1}, Same, opts)
	require.NoError(t, err)
	n := len(g.Variables())

	_, err = RectifiedConv2D(g.Root(), image(1, 4, 4, 2), "conv1", [2]int{3, 3}, 4, [2]int{1, 1}, Same, opts)
	assert.ErrorIs(t, err, ErrVariableExists)

	_, err = RectifiedConv2D(g.Root().Reuse(), image(3, 4, 4, 2), "conv1", [2]int{3, 3}, 4, [2]int{1, 1}, Same, opts)
	require.NoError(t, err)
	assert.Len(t, g.Variables(), n)
	assert.Len(t, g.Losses(), 1)
}

func TestMaxPooling2D(t *testing.T) {
	g := NewGraph(DefaultConfig())
	out, err := MaxPooling2D(g.Root(), image(1, 4, 4, 2), "pool1", [2]int{2, 2}, [2]int{2, 2}, Valid)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 2, 2, 2}))
	assert.Empty(t, g.Variables())

	nodes := g.Nodes()
	require.NotEmpty(t, nodes)
	assert.Equal(t, "pool1/max_pool", nodes[len(nodes)-1].Name)

	_, err = MaxPooling2D(g.Root(), image(1, 4, 4, 2), "pool2", [2]int{2, 2}, [2]int{2, 2}, Padding("same"))
	assert.ErrorIs(t, err, ErrPadding)
}

func TestBatchNormalizationTraining(t *testing.T) {
	g := NewGraph(DefaultConfig())
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)

	out, err := BatchNormalization(g.Root(), x, "bn", 1, true)
	require.NoError(t, err)

	// Feature means [2, 3], variances [1, 1].
	assert.InDeltaSlice(t, []float32{-0.9995, -0.9995, 0.9995, 0.9995}, out.Data(), 1e-3)
	assert.Equal(t, []string{"bn/AssignMovingAvg"}, g.UpdateOps())

	mean, ok := g.Variable("bn/moving_mean")
	require.True(t, ok)
	assert.False(t, mean.Trainable())
	assert.Equal(t, []float32{0, 0}, mean.Value().Data())

	assert.Equal(t, 1, g.RunUpdateOps())
	assert.InDeltaSlice(t, []float32{0.02, 0.03}, mean.Value().Data(), 1e-6)
	// Batch variance 1 over 2 samples folds in as 2.
	variance, _ := g.Variable("bn/moving_variance")
	assert.InDeltaSlice(t, []float32{1.01, 1.01}, variance.Value().Data(), 1e-6)

	assert.Equal(t, 0, g.RunUpdateOps())
	assert.Empty(t, g.UpdateOps())
}

func TestBatchNormalizationInference(t *testing.T) {
	g := NewGraph(DefaultConfig())
	x, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)

	out, err := BatchNormalization(g.Root(), x, "bn", -1, false)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.9995, 1.999}, out.Data(), 1e-3)
	assert.Empty(t, g.UpdateOps())

	_, err = BatchNormalization(g.Root(), x, "bn2", 4, false)
	assert.ErrorIs(t, err, ErrRank)
}

func TestDropout(t *testing.T) {
	g := NewGraph(DefaultConfig())
	x := tensor.Ones(tensor.Shape{1000})

	same, err := Dropout(g.Root(), x, "d", 0.5, false)
	require.NoError(t, err)
	assert.Equal(t, x.Data(), same.Data())

	out, err := Dropout(g.Root(), x, "d", 0.5, true)
	require.NoError(t, err)
	var kept int
	for _, v := range out.Data() {
		if v != 0 {
			assert.InDelta(t, 2.0, v, 1e-6)
			kept++
		}
	}
	assert.InDelta(t, 500, kept, 100)

	_, err = Dropout(g.Root(), x, "d", 1.5, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	names := []string{g.Nodes()[0].Name, g.Nodes()[1].Name}
	assert.Equal(t, []string{"d", "d_1"}, names)
}

func TestSimpleFullyConnected(t *testing.T) {
	g := NewGraph(DefaultConfig())
	opts := DefaultOptions()
	opts.FlattenFirst = true
	opts.BatchNorm = false

	out, err := SimpleFullyConnected(g.Root(), image(4, 2, 3, 1), "fc1", 10, opts)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{4, 10}))

	w, ok := g.Variable("fc1/W")
	require.True(t, ok)
	assert.True(t, w.Shape().Equal(tensor.Shape{6, 10}))
	b, ok := g.Variable("fc1/b")
	require.True(t, ok)
	assert.True(t, b.Shape().Equal(tensor.Shape{1, 10}))

	opts.FlattenFirst = false
	_, err = SimpleFullyConnected(g.Root(), image(4, 2, 3, 1), "fc2", 10, opts)
	assert.ErrorIs(t, err, ErrRank)

	_, err = SimpleFullyConnected(g.Root(), out, "fc3", 0, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSimpleFullyConnectedBatchNorm(t *testing.T) {
	g := NewGraph(DefaultConfig())
	opts := DefaultOptions()
	opts.Training = true

	x, err := Flatten(g.Root(), image(4, 2, 2, 1), "flat")
	require.NoError(t, err)
	out, err := SimpleFullyConnected(g.Root(), x, "fc1", 3, opts)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{4, 3}))

	_, ok := g.Variable("fc1/batch_norm/batch_normalization/moving_mean")
	assert.True(t, ok)
	assert.Equal(t, []string{"fc1/batch_norm/batch_normalization/AssignMovingAvg"}, g.UpdateOps())
}

func TestIdentityResidualBlock(t *testing.T) {
	g := NewGraph(DefaultConfig())
	x := image(1, 5, 5, 8)

	out, err := IdentityResidualBlock(g.Root(), x, "res2a", [3]int{4, 4, 8}, [2]int{3, 3}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(x.Shape()))
	for _, v := range out.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}

	for _, name := range []string{"res2a/branch_2a/W", "res2a/branch_2b/W", "res2a/branch_2c/W"} {
		_, ok := g.Variable(name)
		assert.True(t, ok, name)
	}
	w, _ := g.Variable("res2a/branch_2b/W")
	assert.True(t, w.Shape().Equal(tensor.Shape{3, 3, 4, 4}))

	_, err = IdentityResidualBlock(g.Root(), x, "res2b", [3]int{4, 4, 6}, [2]int{3, 3}, DefaultOptions())
	assert.ErrorIs(t, err, ErrChannelMismatch)
}

func TestConvolutionalResidualBlock(t *testing.T) {
	g := NewGraph(DefaultConfig())

	out, err := ConvolutionalResidualBlock(g.Root(), image(1, 8, 8, 4), "res3a", [3]int{4, 4, 16}, [2]int{2, 2}, [2]int{3, 3}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 4, 4, 16}))

	w, ok := g.Variable("res3a/branch_1/W")
	require.True(t, ok)
	assert.True(t, w.Shape().Equal(tensor.Shape{1, 1, 4, 16}))
}

func TestInceptionBlock(t *testing.T) {
	g := NewGraph(DefaultConfig())

	out, err := InceptionBlock(g.Root(), image(1, 6, 6, 4), "inc1", [4]int{2, 3, 4, 5}, [2]int{2, 2}, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 6, 6, 14}))

	w, ok := g.Variable("inc1/5x5/W")
	require.True(t, ok)
	assert.True(t, w.Shape().Equal(tensor.Shape{5, 5, 2, 4}))

	nodes := g.Nodes()
	assert.Equal(t, "inc1/concat", nodes[len(nodes)-1].Name)

	_, err = InceptionBlock(g.Root(), image(1, 6, 6, 4), "inc2", [4]int{2, 0, 4, 5}, [2]int{2, 2}, DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSummary(t *testing.T) {
	g := NewGraph(DefaultConfig())
	_, err := RectifiedConv2D(g.Root(), image(1, 4, 4, 1), "conv1", [2]int{3, 3}, 2, [2]int{1, 1}, Same, DefaultOptions())
	require.NoError(t, err)

	s := g.Summary()
	assert.Contains(t, s, "conv1/conv2d")
	assert.Contains(t, s, "variables: 5")
	assert.Contains(t, s, "trainable parameters: 22")
	assert.Contains(t, s, "/cpu:0=5")
}
