// Package cpu implements the eager float32 kernels behind the layer builders.
//
// All image kernels use the NHWC activation layout and HWIO filter layout, and
// follow TensorFlow's SAME/VALID padding rules. Kernels assume their inputs
// were validated by the caller and panic with an op-prefixed message otherwise.
package cpu

import (
	"github.com/hgcal-gsoc/hgcal/internal/parallel"
)

// DeviceName is the placement string reported for tensors owned by this backend.
const DeviceName = "/cpu:0"

// Backend executes kernels on the host CPU.
type Backend struct {
	par parallel.Config
}

// New creates a CPU backend using all available cores.
func New() *Backend {
	return &Backend{par: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{par: cfg}
}

// Device returns the placement string of this backend.
func (cpu *Backend) Device() string {
	return DeviceName
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}
