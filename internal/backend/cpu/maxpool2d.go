package cpu

import (
	"fmt"
	"math"

	"github.com/hgcal-gsoc/hgcal/internal/parallel"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, height, width, channels]
// Output shape: [batch, out_h, out_w, channels]
//
// Padded positions are treated as -Inf, so they never win the max.
//
// Example (2x2 pool, stride=2, VALID, one channel):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *Backend) MaxPool2D(input *tensor.Tensor, kernelH, kernelW, strideH, strideW int, padding Padding) *tensor.Tensor {
	inShape := input.Shape()
	if len(inShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,H,W,C], got %dD", len(inShape)))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %dx%d", kernelH, kernelW))
	}
	if strideH <= 0 || strideW <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride (%d, %d)", strideH, strideW))
	}

	N, H, W, C := inShape[0], inShape[1], inShape[2], inShape[3]
	HOut, padTop := padding.OutputSize(H, kernelH, strideH)
	WOut, padLeft := padding.OutputSize(W, kernelW, strideW)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions %dx%d (kernel=%dx%d, input=%dx%d)",
			HOut, WOut, kernelH, kernelW, H, W))
	}

	output := tensor.Zeros(tensor.Shape{N, HOut, WOut, C})
	in := input.Data()
	out := output.Data()
	negInf := float32(math.Inf(-1))

	parallel.For(N*HOut*WOut, func(row int) {
		n := row / (HOut * WOut)
		oh := (row / WOut) % HOut
		ow := row % WOut
		dst := out[row*C : (row+1)*C]
		for c := range dst {
			dst[c] = negInf
		}

		hStart := oh*strideH - padTop
		wStart := ow*strideW - padLeft
		for kh := 0; kh < kernelH; kh++ {
			h := hStart + kh
			if h < 0 || h >= H {
				continue
			}
			for kw := 0; kw < kernelW; kw++ {
				w := wStart + kw
				if w < 0 || w >= W {
					continue
				}
				src := in[((n*H+h)*W+w)*C : ((n*H+h)*W+w+1)*C]
				for c, v := range src {
					if v > dst[c] {
						dst[c] = v
					}
				}
			}
		}
	}, cpu.par)

	return output
}
