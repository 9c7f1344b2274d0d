package tensor

import (
	"fmt"
)

// Tensor is a dense, row-major float32 tensor.
//
// Reshape returns a view sharing the same storage; every other method that
// produces a tensor allocates.
type Tensor struct {
	data   []float32
	shape  Shape
	stride []int
}

// New allocates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor{
		data:   make([]float32, shape.NumElements()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}, nil
}

// MustNew is New for shapes already known to be valid.
func MustNew(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return MustNew(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float32) *Tensor {
	t := MustNew(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// FromSlice wraps a copy of data in a tensor of the given shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := MustNew(shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the element type, always Float32.
func (t *Tensor) DType() DataType {
	return Float32
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage. Writes are visible to every view.
func (t *Tensor) Data() []float32 {
	return t.data
}

// offset converts a multi-dimensional index to a flat position.
func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index rank %d does not match shape %v", len(idx), t.shape))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off += v * t.stride[i]
	}
	return off
}

// At returns the element at the given index.
func (t *Tensor) At(idx ...int) float32 {
	return t.data[t.offset(idx)]
}

// Set stores value at the given index.
func (t *Tensor) Set(value float32, idx ...int) {
	t.data[t.offset(idx)] = value
}

// Reshape returns a view with a new shape. One dimension may be -1.
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	shape := Shape(dims).Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && infer == -1:
			infer = i
		case d <= 0:
			return nil, fmt.Errorf("reshape: invalid dimension %d in %v", d, dims)
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || len(t.data)%known != 0 {
			return nil, fmt.Errorf("reshape: cannot infer dimension for %v from %d elements", dims, len(t.data))
		}
		shape[infer] = len(t.data) / known
	}
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("reshape: %v has %d elements, tensor has %d", shape, shape.NumElements(), len(t.data))
	}
	return &Tensor{data: t.data, shape: shape, stride: shape.ComputeStrides()}, nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := MustNew(t.shape)
	copy(c.data, t.data)
	return c
}

// CopyFrom overwrites t with the contents of src, which must share its shape.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("copy: shape %v does not match %v", src.shape, t.shape)
	}
	copy(t.data, src.data)
	return nil
}

// String returns a short description, not the contents.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, dtype=%s)", t.shape, t.DType())
}
