package cpu

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/parallel"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// MatMul computes a @ b for a [M, K] and b [K, N].
func (cpu *Backend) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", as, bs))
	}
	M, K, N := as[0], as[1], bs[1]
	if bs[0] != K {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", as, bs))
	}

	out := tensor.Zeros(tensor.Shape{M, N})
	ad, bd, od := a.Data(), b.Data(), out.Data()
	parallel.For(M, func(i int) {
		dst := od[i*N : (i+1)*N]
		for k, v := range ad[i*K : (i+1)*K] {
			if v == 0 {
				continue
			}
			row := bd[k*N : (k+1)*N]
			for j := range dst {
				dst[j] += v * row[j]
			}
		}
	}, cpu.par)
	return out
}

// AddBias adds bias to x, broadcasting over every axis but the last.
// The bias must hold exactly x's last dimension worth of elements.
func (cpu *Backend) AddBias(x, bias *tensor.Tensor) *tensor.Tensor {
	s := x.Shape()
	C := s[len(s)-1]
	if bias.NumElements() != C {
		panic(fmt.Sprintf("add_bias: bias %v does not broadcast over %v", bias.Shape(), s))
	}
	out := x.Clone()
	od, bd := out.Data(), bias.Data()
	for i := range od {
		od[i] += bd[i%C]
	}
	return out
}

// Add returns a + b for tensors of identical shape.
func (cpu *Backend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("add: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	out := a.Clone()
	od, bd := out.Data(), b.Data()
	for i := range od {
		od[i] += bd[i]
	}
	return out
}

// Mul returns the elementwise product of tensors of identical shape.
func (cpu *Backend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("mul: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	out := a.Clone()
	od, bd := out.Data(), b.Data()
	for i := range od {
		od[i] *= bd[i]
	}
	return out
}

// Scale returns x * s.
func (cpu *Backend) Scale(x *tensor.Tensor, s float32) *tensor.Tensor {
	out := x.Clone()
	od := out.Data()
	for i := range od {
		od[i] *= s
	}
	return out
}

// ReLU returns max(x, 0).
func (cpu *Backend) ReLU(x *tensor.Tensor) *tensor.Tensor {
	out := x.Clone()
	od := out.Data()
	for i, v := range od {
		if v < 0 {
			od[i] = 0
		}
	}
	return out
}
