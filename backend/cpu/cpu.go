// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/hgcal-gsoc/hgcal/internal/backend/cpu"
	"github.com/hgcal-gsoc/hgcal/internal/parallel"
)

// Backend represents the CPU backend implementation.
//
// CPU backend provides pure Go NHWC kernels for convolution, pooling,
// matrix multiplication and batch-norm reductions.
type Backend = internalcpu.Backend

// Padding selects SAME or VALID borders.
type Padding = internalcpu.Padding

// Padding modes.
const (
	Same  = internalcpu.Same
	Valid = internalcpu.Valid
)

// ParallelConfig controls how kernels split work across goroutines.
type ParallelConfig = parallel.Config

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/hgcal-gsoc/hgcal/backend/cpu"
//	    "github.com/hgcal-gsoc/hgcal/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Ones(tensor.Shape{1, 8, 8, 1})
//	    y := backend.MaxPool2D(x, 2, 2, 2, 2, cpu.Valid)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
//
// Example:
//
//	backend := cpu.NewWithConfig(cpu.ParallelConfig{Enabled: false, NumWorkers: 1})
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
