package cpu

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/parallel"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Conv2D performs a 2D convolution.
//
// Input shape:  [batch, height, width, in_channels]
// Filter shape: [kernel_h, kernel_w, in_channels, out_channels]
// Output shape: [batch, out_h, out_w, out_channels]
//
// Output extents follow the padding mode (see Padding.OutputSize). Padded
// input positions contribute zero.
//
// This is a direct convolution. Each output pixel is computed independently:
// the filter is walked in (kh, kw, c) order and the innermost loop runs over
// output channels, the contiguous axis of both the filter and the output.
// Every in-bounds input element is multiplied, so 0*Inf yields NaN.
func (cpu *Backend) Conv2D(input, filter *tensor.Tensor, strideH, strideW int, padding Padding) *tensor.Tensor {
	inShape := input.Shape()
	fShape := filter.Shape()

	if len(inShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,H,W,C], got %dD", len(inShape)))
	}
	if len(fShape) != 4 {
		panic(fmt.Sprintf("conv2d: filter must be 4D [KH,KW,C,O], got %dD", len(fShape)))
	}
	if strideH <= 0 || strideW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride (%d, %d)", strideH, strideW))
	}

	N, H, W, C := inShape[0], inShape[1], inShape[2], inShape[3]
	KH, KW, CF, O := fShape[0], fShape[1], fShape[2], fShape[3]
	if C != CF {
		panic(fmt.Sprintf("conv2d: input channels %d != filter channels %d", C, CF))
	}

	HOut, padTop := padding.OutputSize(H, KH, strideH)
	WOut, padLeft := padding.OutputSize(W, KW, strideW)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (kernel %dx%d on %dx%d)",
			HOut, WOut, KH, KW, H, W))
	}

	output := tensor.Zeros(tensor.Shape{N, HOut, WOut, O})
	in := input.Data()
	f := filter.Data()
	out := output.Data()

	parallel.For(N*HOut*WOut, func(row int) {
		n := row / (HOut * WOut)
		oh := (row / WOut) % HOut
		ow := row % WOut
		dst := out[row*O : (row+1)*O]

		hStart := oh*strideH - padTop
		wStart := ow*strideW - padLeft
		for kh := 0; kh < KH; kh++ {
			h := hStart + kh
			if h < 0 || h >= H {
				continue
			}
			for kw := 0; kw < KW; kw++ {
				w := wStart + kw
				if w < 0 || w >= W {
					continue
				}
				src := in[((n*H+h)*W+w)*C : ((n*H+h)*W+w+1)*C]
				fBase := (kh*KW + kw) * C * O
				for c, v := range src {
					fRow := f[fBase+c*O : fBase+(c+1)*O]
					for o := range dst {
						dst[o] += v * fRow[o]
					}
				}
			}
		}
	}, cpu.par)

	return output
}
