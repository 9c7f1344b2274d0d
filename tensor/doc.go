// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensors that flow through the
// HGCal layer builders.
//
// Tensors are row-major, and image activations use NHWC layout
// ([batch, height, width, channels]). A projected calorimeter layer is a
// [1, ny, nx, 1] tensor.
//
// # Basic Usage
//
//	x := tensor.Zeros(tensor.Shape{1, 64, 64, 1})
//	x.Set(2.5, 0, 10, 12, 0)
//
//	flat, err := x.Reshape(1, -1) // [1, 4096], shares storage
//
// # Data Types
//
// Computation is float32. Float64 and Int64 exist for file sections such as
// interpolation weights and cell ids.
package tensor
