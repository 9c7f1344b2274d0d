package nn

import (
	"fmt"
	"strings"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Variable is a named tensor owned by a Graph.
//
// Every tower built on the same graph shares the variable; its device is the
// graph's configured placement.
type Variable struct {
	name      string
	value     *tensor.Tensor
	trainable bool
	device    string
	init      Initializer
}

// Name returns the full scoped name, e.g. "res1/branch_2a/W".
func (v *Variable) Name() string {
	return v.name
}

// Value returns the current value. Mutating it mutates the variable.
func (v *Variable) Value() *tensor.Tensor {
	return v.value
}

// Shape returns the variable shape.
func (v *Variable) Shape() tensor.Shape {
	return v.value.Shape()
}

// Trainable reports whether the variable is updated by an optimizer.
func (v *Variable) Trainable() bool {
	return v.trainable
}

// Device returns the placement string.
func (v *Variable) Device() string {
	return v.device
}

// Initializer returns the initializer the variable was created with.
func (v *Variable) Initializer() Initializer {
	return v.init
}

// Assign overwrites the value with t, which must have the same shape.
func (v *Variable) Assign(t *tensor.Tensor) error {
	if !t.Shape().Equal(v.value.Shape()) {
		return fmt.Errorf("assign %s: %w: have %v, got %v", v.name, ErrShapeMismatch, v.value.Shape(), t.Shape())
	}
	return v.value.CopyFrom(t)
}

// Scope is a naming context for variables and produced tensors, the
// equivalent of a variable scope. Scopes are cheap values; Sub creates a
// nested one.
type Scope struct {
	g      *Graph
	prefix string
	reuse  bool
}

// Graph returns the graph the scope belongs to.
func (s *Scope) Graph() *Graph {
	return s.g
}

// Sub returns the nested scope name.
func (s *Scope) Sub(name string) *Scope {
	return &Scope{g: s.g, prefix: s.Name(name), reuse: s.reuse}
}

// Reuse returns a view of the scope in which Variable returns existing
// variables instead of failing. Nested scopes inherit it.
func (s *Scope) Reuse() *Scope {
	return &Scope{g: s.g, prefix: s.prefix, reuse: true}
}

// Prefix returns the scope path, empty for the root.
func (s *Scope) Prefix() string {
	return s.prefix
}

// Name qualifies name with the scope path.
func (s *Scope) Name(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Variable returns the trainable variable name in this scope, creating it
// with init when it does not exist.
//
// When weightDecay is positive, weightDecay * L2Loss(W) is added to the
// losses collection under "<scope>/lambda_hyparam". Biases are created with
// a zero weightDecay and are never regularized.
//
// Creating a name that already exists fails with ErrVariableExists unless the
// scope is in reuse mode; a reused variable must have the requested shape.
func (s *Scope) Variable(name string, shape tensor.Shape, init Initializer, weightDecay float32) (*Variable, error) {
	if weightDecay < 0 {
		return nil, fmt.Errorf("variable %s: %w: negative weight decay %v", s.Name(name), ErrInvalidArgument, weightDecay)
	}
	v, created, err := s.getVariable(name, shape, init, true)
	if err != nil {
		return nil, err
	}
	if created && weightDecay > 0 {
		decay := float64(weightDecay)
		backend := s.g.backend
		s.g.AddToCollection(LossesCollection, LossTerm{
			Name: s.Name("lambda_hyparam"),
			Value: func() float64 {
				return L2LossWith(backend, v.value) * decay
			},
		})
	}
	return v, nil
}

// NonTrainable is Variable for state such as moving averages.
func (s *Scope) NonTrainable(name string, shape tensor.Shape, init Initializer) (*Variable, error) {
	v, _, err := s.getVariable(name, shape, init, false)
	return v, err
}

func (s *Scope) getVariable(name string, shape tensor.Shape, init Initializer, trainable bool) (*Variable, bool, error) {
	if name == "" || strings.Contains(name, "/") {
		return nil, false, fmt.Errorf("%w: variable name %q", ErrInvalidArgument, name)
	}
	if err := shape.Validate(); err != nil {
		return nil, false, fmt.Errorf("variable %s: %w: %v", s.Name(name), ErrInvalidArgument, err)
	}
	full := s.Name(name)

	if v, ok := s.g.vars[full]; ok {
		if !s.reuse {
			return nil, false, fmt.Errorf("%w: %s", ErrVariableExists, full)
		}
		if !v.value.Shape().Equal(shape) {
			return nil, false, fmt.Errorf("%w: %s has %v, requested %v", ErrShapeMismatch, full, v.value.Shape(), shape)
		}
		return v, false, nil
	}

	if init == nil {
		init = GlorotUniform()
	}
	v := &Variable{
		name:      full,
		value:     init.Initialize(shape, s.g.rng),
		trainable: trainable,
		device:    s.g.cfg.Device,
		init:      init,
	}
	s.g.vars[full] = v
	s.g.varOrder = append(s.g.varOrder, full)
	return v, true, nil
}
