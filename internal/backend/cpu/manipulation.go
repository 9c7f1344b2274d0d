package cpu

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// ConcatLastAxis concatenates tensors along their last axis.
// Every leading dimension must match.
func (cpu *Backend) ConcatLastAxis(xs ...*tensor.Tensor) *tensor.Tensor {
	if len(xs) == 0 {
		panic("concat: no inputs")
	}
	lead := xs[0].Shape()[:len(xs[0].Shape())-1]
	total := 0
	for _, x := range xs {
		s := x.Shape()
		if !s[:len(s)-1].Equal(lead) {
			panic(fmt.Sprintf("concat: leading dimensions differ: %v vs %v", s, xs[0].Shape()))
		}
		total += s[len(s)-1]
	}

	outShape := append(lead.Clone(), total)
	out := tensor.Zeros(outShape)
	od := out.Data()
	rows := lead.NumElements()

	offset := 0
	for _, x := range xs {
		C := x.Shape()[len(x.Shape())-1]
		xd := x.Data()
		for r := 0; r < rows; r++ {
			copy(od[r*total+offset:r*total+offset+C], xd[r*C:(r+1)*C])
		}
		offset += C
	}
	return out
}

// Flatten reshapes x to [batch, all_activations], sharing storage.
func (cpu *Backend) Flatten(x *tensor.Tensor) *tensor.Tensor {
	s := x.Shape()
	if len(s) == 0 {
		panic("flatten: scalar input")
	}
	out, err := x.Reshape(s[0], -1)
	if err != nil {
		panic(fmt.Sprintf("flatten: %v", err))
	}
	return out
}
