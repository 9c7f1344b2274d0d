package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// IdentityResidualBlock builds a bottleneck residual block whose shortcut is
// the input itself, so the spatial size and channel count must be preserved:
//
//	branch_2a: 1x1 VALID  -> numChannels[0]
//	branch_2b: midFilter SAME -> numChannels[1]
//	branch_2c: 1x1 VALID  -> numChannels[2] (no ReLU, no dropout)
//	skip_conn: relu(branch_2c + x) -> dropout
//
// numChannels[2] must equal the input channel count (ErrChannelMismatch).
func IdentityResidualBlock(s *Scope, x *tensor.Tensor, name string, numChannels [3]int, midFilter [2]int, opts Options) (*tensor.Tensor, error) {
	if err := checkImage(s, name, x); err != nil {
		return nil, err
	}
	if in := x.Shape()[3]; in != numChannels[2] {
		return nil, fmt.Errorf("identity block %s: %w: last sub-layer has %d channels, input has %d",
			s.Name(name), ErrChannelMismatch, numChannels[2], in)
	}
	sc := s.Sub(name)

	z3, err := bottleneck(sc, x, numChannels, [2]int{1, 1}, midFilter, opts)
	if err != nil {
		return nil, err
	}
	return mergeShortcut(sc, z3, x, opts)
}

// ConvolutionalResidualBlock is the residual block for a main branch that
// changes shape: branch_2a uses firstStride, and the shortcut is projected by
// branch_1, a 1x1 VALID convolution with firstStride to numChannels[2]
// channels (no ReLU, no dropout).
func ConvolutionalResidualBlock(s *Scope, x *tensor.Tensor, name string, numChannels [3]int,
	firstStride, midFilter [2]int, opts Options,
) (*tensor.Tensor, error) {
	if err := checkImage(s, name, x); err != nil {
		return nil, err
	}
	sc := s.Sub(name)

	z3, err := bottleneck(sc, x, numChannels, firstStride, midFilter, opts)
	if err != nil {
		return nil, err
	}
	shortcut, err := RectifiedConv2D(sc, x, "branch_1", [2]int{1, 1}, numChannels[2], firstStride, Valid,
		opts.withoutDropout().withoutReLU())
	if err != nil {
		return nil, err
	}
	return mergeShortcut(sc, z3, shortcut, opts)
}

// bottleneck builds branch_2a -> branch_2b -> branch_2c and returns the
// linear output of branch_2c.
func bottleneck(sc *Scope, x *tensor.Tensor, numChannels [3]int, firstStride, midFilter [2]int, opts Options) (*tensor.Tensor, error) {
	opts.ReLU = true
	a1, err := RectifiedConv2D(sc, x, "branch_2a", [2]int{1, 1}, numChannels[0], firstStride, Valid, opts)
	if err != nil {
		return nil, err
	}
	a2, err := RectifiedConv2D(sc, a1, "branch_2b", midFilter, numChannels[1], [2]int{1, 1}, Same, opts)
	if err != nil {
		return nil, err
	}
	// Linear output: the shortcut is added before the activation.
	return RectifiedConv2D(sc, a2, "branch_2c", [2]int{1, 1}, numChannels[2], [2]int{1, 1}, Valid,
		opts.withoutDropout().withoutReLU())
}

// mergeShortcut adds the two branches, rectifies and applies dropout.
func mergeShortcut(sc *Scope, main, shortcut *tensor.Tensor, opts Options) (*tensor.Tensor, error) {
	if !main.Shape().Equal(shortcut.Shape()) {
		return nil, fmt.Errorf("residual block %s: %w: main branch %v, shortcut %v",
			sc.Prefix(), ErrShapeMismatch, main.Shape(), shortcut.Shape())
	}
	b := sc.g.backend
	skip := sc.Sub("skip_conn")
	z := sc.g.record(skip.Name("add"), "Add", b.Add(main, shortcut))
	a := sc.g.record(skip.Name("relu"), "Relu", b.ReLU(z))
	return Dropout(sc, a, "dropout", opts.DropoutRate, opts.Training)
}
