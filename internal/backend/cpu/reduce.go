package cpu

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// Moments returns the per-index mean and (biased) variance of x along axis,
// reducing over every other axis. Both results have shape [x.Shape()[axis]].
func (cpu *Backend) Moments(x *tensor.Tensor, axis int) (mean, variance *tensor.Tensor) {
	s := x.Shape()
	a := s.Axis(axis)
	if a < 0 {
		panic(fmt.Sprintf("moments: axis %d out of range for %v", axis, s))
	}
	C := s[a]
	stride := s.ComputeStrides()[a]
	count := float64(x.NumElements() / C)

	sum := make([]float64, C)
	sumSq := make([]float64, C)
	for i, v := range x.Data() {
		c := (i / stride) % C
		sum[c] += float64(v)
	}
	mu := make([]float64, C)
	for c := range mu {
		mu[c] = sum[c] / count
	}
	for i, v := range x.Data() {
		c := (i / stride) % C
		d := float64(v) - mu[c]
		sumSq[c] += d * d
	}

	mean = tensor.Zeros(tensor.Shape{C})
	variance = tensor.Zeros(tensor.Shape{C})
	md, vd := mean.Data(), variance.Data()
	for c := 0; c < C; c++ {
		md[c] = float32(mu[c])
		vd[c] = float32(sumSq[c] / count)
	}
	return mean, variance
}

// Normalize computes gamma * (x - mean) / sqrt(variance + eps) + beta, where
// mean, variance, gamma and beta are indexed along axis.
func (cpu *Backend) Normalize(x, mean, variance, gamma, beta *tensor.Tensor, axis int, eps float32) *tensor.Tensor {
	s := x.Shape()
	a := s.Axis(axis)
	if a < 0 {
		panic(fmt.Sprintf("normalize: axis %d out of range for %v", axis, s))
	}
	C := s[a]
	for _, p := range []*tensor.Tensor{mean, variance, gamma, beta} {
		if p.NumElements() != C {
			panic(fmt.Sprintf("normalize: parameter %v does not match axis size %d", p.Shape(), C))
		}
	}
	stride := s.ComputeStrides()[a]

	scale := make([]float32, C)
	shift := make([]float32, C)
	md, vd, gd, bd := mean.Data(), variance.Data(), gamma.Data(), beta.Data()
	for c := 0; c < C; c++ {
		inv := float32(1 / math.Sqrt(float64(vd[c]+eps)))
		scale[c] = gd[c] * inv
		shift[c] = bd[c] - md[c]*scale[c]
	}

	out := x.Clone()
	od := out.Data()
	for i, v := range od {
		c := (i / stride) % C
		od[i] = v*scale[c] + shift[c]
	}
	return out
}

// SumSquares returns sum(x^2) accumulated in float64.
func (cpu *Backend) SumSquares(x *tensor.Tensor) float64 {
	v := widen(x.Data())
	return floats.Dot(v, v)
}

func widen(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// DropoutMask returns a mask that keeps each element with probability
// 1-rate and scales kept elements by 1/(1-rate), so the expected value of
// x*mask equals x.
func (cpu *Backend) DropoutMask(shape tensor.Shape, rate float32, rng *rand.Rand) *tensor.Tensor {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: rate %v must be in [0, 1)", rate))
	}
	mask := tensor.Zeros(shape)
	keep := 1 / (1 - rate)
	md := mask.Data()
	for i := range md {
		if rng.Float32() >= rate {
			md[i] = keep
		}
	}
	return mask
}
