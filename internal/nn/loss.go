package nn

import (
	"github.com/hgcal-gsoc/hgcal/internal/backend/cpu"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// L2Loss returns sum(t^2) / 2.
func L2Loss(t *tensor.Tensor) float64 {
	return L2LossWith(cpu.New(), t)
}

// L2LossWith is L2Loss on an explicit backend.
func L2LossWith(b *cpu.Backend, t *tensor.Tensor) float64 {
	return b.SumSquares(t) / 2
}
