package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// RectifiedConv2D builds a rectified convolution block:
//
//	conv2d -> batchnorm | + b -> [relu -> dropout]
//
// Input shape:  [batch, height, width, in_channels]
// Output shape: [batch, out_h, out_w, outputChannel]
//
// Parameters:
//   - filterShape: (filter_height, filter_width)
//   - outputChannel: number of filters
//   - stride: (stride_height, stride_width)
//   - padding: Same or Valid; anything else fails with ErrPadding
//
// Variables, under "<scope>/<name>":
//   - W [fh, fw, in_channels, outputChannel], regularized with opts.WeightDecay
//   - b [1, 1, 1, outputChannel] when batch norm is off
//   - batchnorm/batch_normalization/* over the channel axis when it is on
//
// With opts.ReLU false the linear output is returned, so the caller can add a
// shortcut or a different activation.
func RectifiedConv2D(s *Scope, x *tensor.Tensor, name string, filterShape [2]int, outputChannel int,
	stride [2]int, padding Padding, opts Options,
) (*tensor.Tensor, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("conv2d %s: %w", s.Name(name), err)
	}
	if err := checkImage(s, name, x); err != nil {
		return nil, err
	}
	if !padding.Supported() {
		return nil, fmt.Errorf("conv2d %s: %w: got %q", s.Name(name), ErrPadding, string(padding))
	}
	fh, fw := filterShape[0], filterShape[1]
	sh, sw := stride[0], stride[1]
	if fh <= 0 || fw <= 0 || sh <= 0 || sw <= 0 || outputChannel <= 0 {
		return nil, fmt.Errorf("conv2d %s: %w: filter %v, stride %v, channels %d",
			s.Name(name), ErrInvalidArgument, filterShape, stride, outputChannel)
	}
	if err := checkOutputSize(s, name, x, filterShape, stride, padding); err != nil {
		return nil, err
	}

	sc := s.Sub(name)
	b := s.g.backend
	inputChannel := x.Shape()[3]

	filters, err := sc.Variable("W", tensor.Shape{fh, fw, inputChannel, outputChannel}, opts.initializer(), opts.WeightDecay)
	if err != nil {
		return nil, err
	}
	zConv := s.g.record(sc.Name("conv2d"), "Conv2D", b.Conv2D(x, filters.Value(), sh, sw, padding))

	var z *tensor.Tensor
	if opts.BatchNorm {
		z, err = BatchNormalization(sc.Sub("batchnorm"), zConv, "batch_normalization", 3, opts.Training)
		if err != nil {
			return nil, err
		}
	} else {
		biases, err := sc.Variable("b", tensor.Shape{1, 1, 1, outputChannel}, ZerosInitializer(), 0)
		if err != nil {
			return nil, err
		}
		z = s.g.record(sc.Name("bias_add"), "Add", b.AddBias(zConv, biases.Value()))
	}

	if !opts.ReLU {
		return z, nil
	}
	return rectify(sc, z, opts)
}

// MaxPooling2D applies max pooling with the given window, stride and padding.
// It has no variables and keeps the channel count.
func MaxPooling2D(s *Scope, x *tensor.Tensor, name string, filterShape, stride [2]int, padding Padding) (*tensor.Tensor, error) {
	if err := checkImage(s, name, x); err != nil {
		return nil, err
	}
	if !padding.Supported() {
		return nil, fmt.Errorf("maxpool %s: %w: got %q", s.Name(name), ErrPadding, string(padding))
	}
	if filterShape[0] <= 0 || filterShape[1] <= 0 || stride[0] <= 0 || stride[1] <= 0 {
		return nil, fmt.Errorf("maxpool %s: %w: filter %v, stride %v", s.Name(name), ErrInvalidArgument, filterShape, stride)
	}
	if err := checkOutputSize(s, name, x, filterShape, stride, padding); err != nil {
		return nil, err
	}
	out := s.g.backend.MaxPool2D(x, filterShape[0], filterShape[1], stride[0], stride[1], padding)
	return s.g.record(s.Sub(name).Name("max_pool"), "MaxPool", out), nil
}

func checkImage(s *Scope, name string, x *tensor.Tensor) error {
	if x.Shape().Rank() != 4 {
		return fmt.Errorf("%s: %w: expected [batch, height, width, channel], got %v", s.Name(name), ErrRank, x.Shape())
	}
	return nil
}

func checkOutputSize(s *Scope, name string, x *tensor.Tensor, filterShape, stride [2]int, padding Padding) error {
	oh, _ := padding.OutputSize(x.Shape()[1], filterShape[0], stride[0])
	ow, _ := padding.OutputSize(x.Shape()[2], filterShape[1], stride[1])
	if oh <= 0 || ow <= 0 {
		return fmt.Errorf("%s: %w: filter %v does not fit input %v with %s padding",
			s.Name(name), ErrInvalidArgument, filterShape, x.Shape(), padding)
	}
	return nil
}
