package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// InceptionBlock applies 1x1, 3x3 and 5x5 convolutions and a 3x3 max pool to
// the same input and concatenates the results along the channel axis.
//
// finalChannels holds the output channels of
// [1x1, 3x3, 5x5, compressed maxpool]; compressChannels holds the 1x1
// reduction applied before [3x3, 5x5]. The output has
// sum(finalChannels) channels and the input's spatial size.
//
// The compress_* reductions never apply dropout; every branch is rectified.
func InceptionBlock(s *Scope, x *tensor.Tensor, name string, finalChannels [4]int, compressChannels [2]int, opts Options) (*tensor.Tensor, error) {
	if err := checkImage(s, name, x); err != nil {
		return nil, err
	}
	for _, c := range append(finalChannels[:], compressChannels[:]...) {
		if c <= 0 {
			return nil, fmt.Errorf("inception %s: %w: channel lists %v %v", s.Name(name), ErrInvalidArgument, finalChannels, compressChannels)
		}
	}
	sc := s.Sub(name)
	opts.ReLU = true
	compress := opts.withoutDropout()
	one := [2]int{1, 1}

	a1, err := RectifiedConv2D(sc, x, "1x1", one, finalChannels[0], one, Valid, opts)
	if err != nil {
		return nil, err
	}

	c3, err := RectifiedConv2D(sc, x, "compress_3x3", one, compressChannels[0], one, Valid, compress)
	if err != nil {
		return nil, err
	}
	a3, err := RectifiedConv2D(sc, c3, "3x3", [2]int{3, 3}, finalChannels[1], one, Same, opts)
	if err != nil {
		return nil, err
	}

	c5, err := RectifiedConv2D(sc, x, "compress_5x5", one, compressChannels[1], one, Valid, compress)
	if err != nil {
		return nil, err
	}
	a5, err := RectifiedConv2D(sc, c5, "5x5", [2]int{5, 5}, finalChannels[2], one, Same, opts)
	if err != nil {
		return nil, err
	}

	cmp, err := MaxPooling2D(sc, x, "maxpool", [2]int{3, 3}, one, Same)
	if err != nil {
		return nil, err
	}
	amp, err := RectifiedConv2D(sc, cmp, "compress_maxpool", one, finalChannels[3], one, Valid, opts)
	if err != nil {
		return nil, err
	}

	out := sc.g.backend.ConcatLastAxis(a1, a3, a5, amp)
	return sc.g.record(sc.Name("concat"), "ConcatV2", out), nil
}
