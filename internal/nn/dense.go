package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// SimpleFullyConnected builds a fully connected layer.
//
// The input is the activation of the previous layer, [batch, all_nodes]
// (or any rank when opts.FlattenFirst is set). The sequence is
//
//	[flatten] -> x @ W -> batch_norm | + b -> [relu -> dropout]
//
// Variables, under "<scope>/<name>":
//   - W [in, outputDim], regularized with opts.WeightDecay
//   - b [1, outputDim] (zeros, never regularized) when batch norm is off
//   - batch_norm/batch_normalization/* when batch norm is on, over axis 1
func SimpleFullyConnected(s *Scope, x *tensor.Tensor, name string, outputDim int, opts Options) (*tensor.Tensor, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("fully connected %s: %w", s.Name(name), err)
	}
	if outputDim <= 0 {
		return nil, fmt.Errorf("fully connected %s: %w: output dimension %d", s.Name(name), ErrInvalidArgument, outputDim)
	}
	sc := s.Sub(name)
	b := s.g.backend

	if opts.FlattenFirst {
		if x.Shape().Rank() < 2 {
			return nil, fmt.Errorf("fully connected %s: %w: cannot flatten %v", sc.Prefix(), ErrRank, x.Shape())
		}
		x = s.g.record(sc.Name("flatten"), "Flatten", b.Flatten(x))
	}
	if x.Shape().Rank() != 2 {
		return nil, fmt.Errorf("fully connected %s: %w: X should be of shape (batch, all_nodes), got %v",
			sc.Prefix(), ErrRank, x.Shape())
	}
	inputDim := x.Shape()[1]

	w, err := sc.Variable("W", tensor.Shape{inputDim, outputDim}, opts.initializer(), opts.WeightDecay)
	if err != nil {
		return nil, err
	}
	z := s.g.record(sc.Name("linear_transform"), "MatMul", b.MatMul(x, w.Value()))

	var zt *tensor.Tensor
	if opts.BatchNorm {
		// Features are on axis 1.
		zt, err = BatchNormalization(sc.Sub("batch_norm"), z, "batch_normalization", 1, opts.Training)
		if err != nil {
			return nil, err
		}
	} else {
		bias, err := sc.Variable("b", tensor.Shape{1, outputDim}, ZerosInitializer(), 0)
		if err != nil {
			return nil, err
		}
		zt = s.g.record(sc.Name("bias_add"), "Add", b.AddBias(z, bias.Value()))
	}

	if !opts.ReLU {
		return zt, nil
	}
	return rectify(sc, zt, opts)
}

// Flatten reshapes x to [batch, all_activations].
func Flatten(s *Scope, x *tensor.Tensor, name string) (*tensor.Tensor, error) {
	if x.Shape().Rank() < 2 {
		return nil, fmt.Errorf("flatten %s: %w: got %v", s.Name(name), ErrRank, x.Shape())
	}
	return s.g.record(s.Name(name), "Flatten", s.g.backend.Flatten(x)), nil
}

// rectify applies ReLU then dropout inside the "rl_dp" scope.
func rectify(sc *Scope, z *tensor.Tensor, opts Options) (*tensor.Tensor, error) {
	rl := sc.Sub("rl_dp")
	a := sc.g.record(rl.Name("relu"), "Relu", sc.g.backend.ReLU(z))
	return Dropout(rl, a, "dropout", opts.DropoutRate, opts.Training)
}
