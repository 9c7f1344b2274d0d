package nn

import (
	"fmt"

	"github.com/hgcal-gsoc/hgcal/internal/backend/cpu"
)

// Padding selects SAME or VALID convolution and pooling borders.
type Padding = cpu.Padding

// Padding modes.
const (
	Same  = cpu.Same
	Valid = cpu.Valid
)

// Options carries the knobs shared by every builder.
type Options struct {
	// Training selects batch statistics and active dropout.
	Training bool
	// DropoutRate is the fraction of activations dropped in training, in [0, 1).
	DropoutRate float32
	// BatchNorm replaces the bias with batch normalization.
	BatchNorm bool
	// WeightDecay is the L2 coefficient for weights; 0 disables regularization.
	WeightDecay float32
	// ReLU applies the rectifier (and dropout) after the linear part.
	ReLU bool
	// FlattenFirst flattens the input to [batch, rest]. Fully connected only.
	FlattenFirst bool
	// Initializer for weights; nil means GlorotUniform.
	Initializer Initializer
}

// DefaultOptions returns batch norm and ReLU enabled, no dropout and no
// weight decay, with Glorot uniform weights.
func DefaultOptions() Options {
	return Options{
		BatchNorm:   true,
		ReLU:        true,
		Initializer: GlorotUniform(),
	}
}

func (o Options) validate() error {
	if o.DropoutRate < 0 || o.DropoutRate >= 1 {
		return fmt.Errorf("%w: dropout rate %v must be in [0, 1)", ErrInvalidArgument, o.DropoutRate)
	}
	if o.WeightDecay < 0 {
		return fmt.Errorf("%w: negative weight decay %v", ErrInvalidArgument, o.WeightDecay)
	}
	return nil
}

func (o Options) initializer() Initializer {
	if o.Initializer == nil {
		return GlorotUniform()
	}
	return o.Initializer
}

// withoutReLU returns a copy with the rectifier disabled.
func (o Options) withoutReLU() Options {
	o.ReLU = false
	return o
}

// withoutDropout returns a copy with dropout disabled.
func (o Options) withoutDropout() Options {
	o.DropoutRate = 0
	return o
}
