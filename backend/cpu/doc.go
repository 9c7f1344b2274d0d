// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU backend that executes the HGCal layer builders.
//
// Kernels operate on NHWC float32 tensors and run eagerly. Convolution and
// pooling support SAME and VALID padding with the usual output sizes:
//
//	SAME:  out = ceil(in / stride)
//	VALID: out = ceil((in - k + 1) / stride)
//
// Large kernels split their outer loop across goroutines; use NewWithConfig
// to pin the worker count.
package cpu
