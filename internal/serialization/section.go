package serialization

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Section is one named, typed array stored in a file.
type Section struct {
	Name  string
	DType tensor.DataType
	Shape tensor.Shape
	Data  []byte // little-endian element bytes
}

// Float32Section encodes values as a float32 section.
func Float32Section(name string, shape tensor.Shape, values []float32) Section {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return Section{Name: name, DType: tensor.Float32, Shape: shape.Clone(), Data: buf}
}

// Float64Section encodes values as a float64 section.
func Float64Section(name string, shape tensor.Shape, values []float64) Section {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return Section{Name: name, DType: tensor.Float64, Shape: shape.Clone(), Data: buf}
}

// Int64Section encodes values as an int64 section.
func Int64Section(name string, shape tensor.Shape, values []int64) Section {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		//nolint:gosec // G115: two's complement round-trip is intended
		binary.LittleEndian.PutUint64(buf[8*i:], uint64(v))
	}
	return Section{Name: name, DType: tensor.Int64, Shape: shape.Clone(), Data: buf}
}

// TensorSection encodes a float32 tensor.
func TensorSection(name string, t *tensor.Tensor) Section {
	return Float32Section(name, t.Shape(), t.Data())
}

// Float32s decodes a float32 section.
func (s Section) Float32s() ([]float32, error) {
	if err := s.expect(tensor.Float32); err != nil {
		return nil, err
	}
	out := make([]float32, len(s.Data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.Data[4*i:]))
	}
	return out, nil
}

// Float64s decodes a float64 section.
func (s Section) Float64s() ([]float64, error) {
	if err := s.expect(tensor.Float64); err != nil {
		return nil, err
	}
	out := make([]float64, len(s.Data)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(s.Data[8*i:]))
	}
	return out, nil
}

// Int64s decodes an int64 section.
func (s Section) Int64s() ([]int64, error) {
	if err := s.expect(tensor.Int64); err != nil {
		return nil, err
	}
	out := make([]int64, len(s.Data)/8)
	for i := range out {
		//nolint:gosec // G115: two's complement round-trip is intended
		out[i] = int64(binary.LittleEndian.Uint64(s.Data[8*i:]))
	}
	return out, nil
}

// Tensor decodes a float32 section into a tensor of the recorded shape.
func (s Section) Tensor() (*tensor.Tensor, error) {
	values, err := s.Float32s()
	if err != nil {
		return nil, err
	}
	return tensor.FromSlice(values, s.Shape)
}

func (s Section) expect(dt tensor.DataType) error {
	if s.DType != dt {
		return fmt.Errorf("%w: %q is %s, want %s", ErrDTypeMismatch, s.Name, s.DType, dt)
	}
	return nil
}

// byteSize is the size implied by the shape and dtype.
func (s Section) byteSize() int64 {
	return int64(s.Shape.NumElements() * s.DType.Size())
}
