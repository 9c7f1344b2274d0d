// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/hgcal-gsoc/hgcal/backend/cpu"
	"github.com/hgcal-gsoc/hgcal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestBackendKernels(t *testing.T) {
	for _, b := range []*cpu.Backend{cpu.New(), cpu.NewWithConfig(cpu.ParallelConfig{NumWorkers: 1})} {
		x, err := tensor.FromSlice([]float32{
			1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
			13, 14, 15, 16,
		}, tensor.Shape{1, 4, 4, 1})
		assert.NoError(t, err)

		y := b.MaxPool2D(x, 2, 2, 2, 2, cpu.Valid)
		assert.Equal(t, []float32{6, 8, 14, 16}, y.Data())
		assert.Equal(t, float64(1496), b.SumSquares(x))
	}
}
