// Copyright 2025 The hgcal Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/hgcal-gsoc/hgcal/internal/nn"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Graph owns variables, collections and the produced-tensor log.
type Graph = nn.Graph

// Config configures a Graph.
type Config = nn.Config

// Scope is a naming context for variables.
type Scope = nn.Scope

// Variable is a named tensor owned by a Graph.
type Variable = nn.Variable

// Options carries the knobs shared by every builder.
type Options = nn.Options

// Initializer produces the initial value of a variable.
type Initializer = nn.Initializer

// Padding selects SAME or VALID borders.
type Padding = nn.Padding

// Padding modes.
const (
	Same  = nn.Same
	Valid = nn.Valid
)

// Collection keys.
const (
	LossesCollection    = nn.LossesCollection
	UpdateOpsCollection = nn.UpdateOpsCollection
)

// Errors.
var (
	ErrRank            = nn.ErrRank
	ErrChannelMismatch = nn.ErrChannelMismatch
	ErrPadding         = nn.ErrPadding
	ErrVariableExists  = nn.ErrVariableExists
	ErrShapeMismatch   = nn.ErrShapeMismatch
	ErrUnknownVariable = nn.ErrUnknownVariable
	ErrInvalidArgument = nn.ErrInvalidArgument
)

// NewGraph creates an empty graph.
//
// Example:
//
//	g := nn.NewGraph(nn.DefaultConfig())
func NewGraph(cfg Config) *Graph {
	return nn.NewGraph(cfg)
}

// DefaultConfig returns seed 1 on /cpu:0 with parallel kernels.
func DefaultConfig() Config {
	return nn.DefaultConfig()
}

// DefaultOptions returns batch norm and ReLU on, no dropout, no weight decay.
func DefaultOptions() Options {
	return nn.DefaultOptions()
}

// Layers

// RectifiedConv2D builds conv2d -> batchnorm | bias -> [relu -> dropout].
//
// Example:
//
//	a, err := nn.RectifiedConv2D(g.Root(), x, "conv1", [2]int{3, 3}, 32, [2]int{1, 1}, nn.Same, opts)
func RectifiedConv2D(s *Scope, x *tensor.Tensor, name string, filterShape [2]int, outputChannel int,
	stride [2]int, padding Padding, opts Options,
) (*tensor.Tensor, error) {
	return nn.RectifiedConv2D(s, x, name, filterShape, outputChannel, stride, padding, opts)
}

// MaxPooling2D applies max pooling.
func MaxPooling2D(s *Scope, x *tensor.Tensor, name string, filterShape, stride [2]int, padding Padding) (*tensor.Tensor, error) {
	return nn.MaxPooling2D(s, x, name, filterShape, stride, padding)
}

// SimpleFullyConnected builds a fully connected layer.
func SimpleFullyConnected(s *Scope, x *tensor.Tensor, name string, outputDim int, opts Options) (*tensor.Tensor, error) {
	return nn.SimpleFullyConnected(s, x, name, outputDim, opts)
}

// Flatten reshapes x to [batch, all_activations].
func Flatten(s *Scope, x *tensor.Tensor, name string) (*tensor.Tensor, error) {
	return nn.Flatten(s, x, name)
}

// BatchNormalization normalizes x along axis.
func BatchNormalization(s *Scope, x *tensor.Tensor, name string, axis int, training bool) (*tensor.Tensor, error) {
	return nn.BatchNormalization(s, x, name, axis, training)
}

// Dropout drops a rate fraction of x in training.
func Dropout(s *Scope, x *tensor.Tensor, name string, rate float32, training bool) (*tensor.Tensor, error) {
	return nn.Dropout(s, x, name, rate, training)
}

// Blocks

// IdentityResidualBlock builds a bottleneck residual block with an identity
// shortcut.
func IdentityResidualBlock(s *Scope, x *tensor.Tensor, name string, numChannels [3]int, midFilter [2]int, opts Options) (*tensor.Tensor, error) {
	return nn.IdentityResidualBlock(s, x, name, numChannels, midFilter, opts)
}

// ConvolutionalResidualBlock builds a bottleneck residual block with a
// projected shortcut.
func ConvolutionalResidualBlock(s *Scope, x *tensor.Tensor, name string, numChannels [3]int,
	firstStride, midFilter [2]int, opts Options,
) (*tensor.Tensor, error) {
	return nn.ConvolutionalResidualBlock(s, x, name, numChannels, firstStride, midFilter, opts)
}

// InceptionBlock concatenates 1x1, 3x3, 5x5 and pooled branches.
func InceptionBlock(s *Scope, x *tensor.Tensor, name string, finalChannels [4]int, compressChannels [2]int, opts Options) (*tensor.Tensor, error) {
	return nn.InceptionBlock(s, x, name, finalChannels, compressChannels, opts)
}

// Initializers

// GlorotUniform returns the Xavier uniform initializer.
func GlorotUniform() Initializer {
	return nn.GlorotUniform()
}

// Zeros fills with zeros.
func Zeros() Initializer {
	return nn.ZerosInitializer()
}

// Ones fills with ones.
func Ones() Initializer {
	return nn.OnesInitializer()
}

// Constant fills with value.
func Constant(value float32) Initializer {
	return nn.ConstantInitializer(value)
}

// RandomNormal draws from N(mean, stddev^2).
func RandomNormal(mean, stddev float64) Initializer {
	return nn.RandomNormal(mean, stddev)
}

// L2Loss returns sum(t^2) / 2.
func L2Loss(t *tensor.Tensor) float64 {
	return nn.L2Loss(t)
}
