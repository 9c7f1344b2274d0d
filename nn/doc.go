// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the CNN layer builders for HGCal layer images.
//
// # Overview
//
// This package contains:
//   - Graph: variable store, regularization losses and update ops
//   - Scope: naming context with get-or-create variable semantics
//   - Builders: RectifiedConv2D, MaxPooling2D, SimpleFullyConnected,
//     IdentityResidualBlock, ConvolutionalResidualBlock, InceptionBlock
//   - Initialization: GlorotUniform, Zeros, Ones, Constant, RandomNormal
//
// # Basic Usage
//
//	import (
//	    "github.com/hgcal-gsoc/hgcal/nn"
//	    "github.com/hgcal-gsoc/hgcal/tensor"
//	)
//
//	func main() {
//	    g := nn.NewGraph(nn.DefaultConfig())
//	    opts := nn.DefaultOptions()
//
//	    x := tensor.Zeros(tensor.Shape{1, 64, 64, 1})
//	    a, err := nn.RectifiedConv2D(g.Root(), x, "conv1", [2]int{3, 3}, 16, [2]int{1, 1}, nn.Same, opts)
//	    ...
//	}
//
// # Variables and Scopes
//
// Builders create their variables under "<scope>/<name>". Building the same
// layer twice fails with ErrVariableExists; build a second tower on
// g.Root().Reuse() to share the weights.
//
// # Regularization
//
// With Options.WeightDecay > 0 every weight registers
// WeightDecay * L2Loss(W) in the "all_losses" collection:
//
//	total := g.TotalLoss(dataLoss)
//
// # Batch Normalization
//
// In training, batch normalization queues moving-average updates on the
// "update_ops" collection. Apply them once per step:
//
//	g.RunUpdateOps()
//
// # Checkpoints
//
//	err := g.SaveCheckpoint("model.hgcl", nil)
//	meta, err := g.LoadCheckpoint("model.hgcl")
package nn
