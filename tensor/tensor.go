// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/hgcal-gsoc/hgcal/internal/tensor"

// DataType is the element type of a stored array.
type DataType = tensor.DataType

// Data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Int64   = tensor.Int64
)

// Shape represents the dimensions of a tensor.
// Example: Shape{1, 64, 64, 1} is a single-channel 64x64 image.
type Shape = tensor.Shape

// Tensor is a dense row-major float32 tensor.
//
// Example:
//
//	x := tensor.Ones(tensor.Shape{2, 3})
//	v := x.At(1, 2)
type Tensor = tensor.Tensor

// Creation functions

// New creates a zero tensor, failing on an invalid shape.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
//
// Example:
//
//	x := tensor.Full(tensor.Shape{2, 3}, 3.14)
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// ParseDataType maps a dtype name ("float32", "int64", ...) to its DataType.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
