package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Initializer produces the initial value of a variable.
type Initializer interface {
	Initialize(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor
	String() string
}

type glorotUniform struct{}

// GlorotUniform (Xavier) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// For filters [kh, kw, in, out] the receptive field kh*kw multiplies both
// fans; for matrices [in, out] the fans are the two dimensions.
func GlorotUniform() Initializer {
	return glorotUniform{}
}

func (glorotUniform) Initialize(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	fanIn, fanOut := computeFans(shape)
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}
	return t
}

func (glorotUniform) String() string { return "glorot_uniform" }

// computeFans mirrors the usual fan computation for dense and conv weights.
func computeFans(shape tensor.Shape) (fanIn, fanOut int) {
	switch len(shape) {
	case 0:
		return 1, 1
	case 1:
		return shape[0], shape[0]
	case 2:
		return shape[0], shape[1]
	default:
		receptive := 1
		for _, d := range shape[:len(shape)-2] {
			receptive *= d
		}
		return shape[len(shape)-2] * receptive, shape[len(shape)-1] * receptive
	}
}

type constant struct {
	value float32
	name  string
}

// ZerosInitializer fills with zeros. Used for biases.
func ZerosInitializer() Initializer {
	return constant{value: 0, name: "zeros"}
}

// OnesInitializer fills with ones.
func OnesInitializer() Initializer {
	return constant{value: 1, name: "ones"}
}

// ConstantInitializer fills with value.
func ConstantInitializer(value float32) Initializer {
	return constant{value: value, name: fmt.Sprintf("constant(%g)", value)}
}

func (c constant) Initialize(shape tensor.Shape, _ *rand.Rand) *tensor.Tensor {
	return tensor.Full(shape, c.value)
}

func (c constant) String() string { return c.name }

type randomNormal struct {
	mean, stddev float64
}

// RandomNormal draws from N(mean, stddev^2).
func RandomNormal(mean, stddev float64) Initializer {
	return randomNormal{mean: mean, stddev: stddev}
}

func (r randomNormal) Initialize(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	t := tensor.Zeros(shape)
	data := t.Data()
	for i := range data {
		data[i] = float32(rng.NormFloat64()*r.stddev + r.mean)
	}
	return t
}

func (r randomNormal) String() string {
	return fmt.Sprintf("random_normal(%g, %g)", r.mean, r.stddev)
}
