// Package nn implements the CNN layer builders used by the HGCal trigger
// classifier and regressor.
//
// Builders are plain functions. Each one takes a Scope, an input activation
// and its configuration, creates the variables it needs inside the scope and
// returns the output activation, computed eagerly on the CPU backend:
//
//	g := nn.NewGraph(nn.DefaultConfig())
//	opts := nn.DefaultOptions()
//	opts.Training = true
//	opts.WeightDecay = 1e-4
//
//	a, err := nn.RectifiedConv2D(g.Root(), x, "conv1", [2]int{3, 3}, 16, [2]int{1, 1}, nn.Same, opts)
//	a, err = nn.IdentityResidualBlock(g.Root(), a, "res1", [3]int{8, 8, 16}, [2]int{3, 3}, opts)
//
//	loss := g.TotalLoss(dataLoss) // data loss + every registered L2 term
//	g.RunUpdateOps()              // fold batch-norm statistics into the moving averages
//
// The Graph owns every variable, the named collections (regularization
// losses and pending update ops) and a log of produced tensors used by
// Summary. It is not safe for concurrent use.
package nn

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/hgcal-gsoc/hgcal/internal/backend/cpu"
	"github.com/hgcal-gsoc/hgcal/internal/parallel"
	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Collection keys.
const (
	// LossesCollection holds LossTerm values added by weight decay.
	LossesCollection = "all_losses"
	// UpdateOpsCollection holds *UpdateOp values queued by batch normalization.
	UpdateOpsCollection = "update_ops"
)

// GraphLevelSeed is the default seed, fixed so that runs are repeatable.
const GraphLevelSeed int64 = 1

// Config configures a Graph.
type Config struct {
	Seed     int64           // Graph-level random seed.
	Device   string          // Placement of every variable, shared by all towers.
	DType    tensor.DataType // Element type of variables and activations.
	Parallel parallel.Config // Kernel parallelism.
}

// DefaultConfig returns the configuration used by the training scripts.
func DefaultConfig() Config {
	return Config{
		Seed:     GraphLevelSeed,
		Device:   cpu.DeviceName,
		DType:    tensor.DefaultDType,
		Parallel: parallel.DefaultConfig(),
	}
}

// Node records one tensor produced by a builder.
type Node struct {
	Name  string
	Op    string
	Shape tensor.Shape
}

// LossTerm is an entry of the losses collection. Value is evaluated against
// the current variable values each time it is called.
type LossTerm struct {
	Name  string
	Value func() float64
}

// UpdateOp is a pending state update, such as a moving-average assignment.
type UpdateOp struct {
	Name  string
	apply func()
}

// Graph is the variable store and bookkeeping shared by all builders.
type Graph struct {
	cfg     Config
	backend *cpu.Backend
	rng     *rand.Rand

	vars     map[string]*Variable
	varOrder []string

	collections map[string][]any
	nodes       []Node
	nodeNames   map[string]int
}

// NewGraph creates an empty graph.
func NewGraph(cfg Config) *Graph {
	if cfg.Device == "" {
		cfg.Device = cpu.DeviceName
	}
	return &Graph{
		cfg:     cfg,
		backend: cpu.NewWithConfig(cfg.Parallel),
		//nolint:gosec // Using math/rand for weight initialization (not security-critical)
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		vars:        make(map[string]*Variable),
		collections: make(map[string][]any),
		nodeNames:   make(map[string]int),
	}
}

// Config returns the graph configuration.
func (g *Graph) Config() Config {
	return g.cfg
}

// Backend returns the kernel backend.
func (g *Graph) Backend() *cpu.Backend {
	return g.backend
}

// Root returns the top-level scope.
func (g *Graph) Root() *Scope {
	return &Scope{g: g}
}

// Variable looks up a variable by its full name.
func (g *Graph) Variable(name string) (*Variable, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Variables returns every variable in creation order.
func (g *Graph) Variables() []*Variable {
	out := make([]*Variable, 0, len(g.varOrder))
	for _, name := range g.varOrder {
		out = append(out, g.vars[name])
	}
	return out
}

// TrainableVariables returns the trainable variables in creation order.
func (g *Graph) TrainableVariables() []*Variable {
	var out []*Variable
	for _, v := range g.Variables() {
		if v.trainable {
			out = append(out, v)
		}
	}
	return out
}

// NumParameters returns the number of trainable scalars.
func (g *Graph) NumParameters() int {
	n := 0
	for _, v := range g.TrainableVariables() {
		n += v.value.NumElements()
	}
	return n
}

// AddToCollection appends value to the named collection.
func (g *Graph) AddToCollection(key string, value any) {
	g.collections[key] = append(g.collections[key], value)
}

// Collection returns the values in the named collection.
func (g *Graph) Collection(key string) []any {
	return g.collections[key]
}

// Losses returns the registered regularization terms.
func (g *Graph) Losses() []LossTerm {
	var out []LossTerm
	for _, v := range g.collections[LossesCollection] {
		if l, ok := v.(LossTerm); ok {
			out = append(out, l)
		}
	}
	return out
}

// RegularizationLoss sums every term of the losses collection.
func (g *Graph) RegularizationLoss() float64 {
	var sum float64
	for _, l := range g.Losses() {
		sum += l.Value()
	}
	return sum
}

// TotalLoss returns dataLoss plus the regularization loss.
func (g *Graph) TotalLoss(dataLoss float64) float64 {
	return dataLoss + g.RegularizationLoss()
}

// UpdateOps returns the names of the pending update ops.
func (g *Graph) UpdateOps() []string {
	var names []string
	for _, v := range g.collections[UpdateOpsCollection] {
		if op, ok := v.(*UpdateOp); ok {
			names = append(names, op.Name)
		}
	}
	return names
}

// RunUpdateOps applies and clears the pending update ops, returning how many ran.
//
// Batch-normalization moving statistics only change here, so inference
// results are stale until the ops queued by training-mode calls have run.
func (g *Graph) RunUpdateOps() int {
	ops := g.collections[UpdateOpsCollection]
	n := 0
	for _, v := range ops {
		if op, ok := v.(*UpdateOp); ok {
			op.apply()
			n++
		}
	}
	delete(g.collections, UpdateOpsCollection)
	return n
}

// Nodes returns the produced-tensor log in execution order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// record logs a produced tensor under a unique name and returns t.
func (g *Graph) record(name, op string, t *tensor.Tensor) *tensor.Tensor {
	if n, seen := g.nodeNames[name]; seen {
		g.nodeNames[name] = n + 1
		name = fmt.Sprintf("%s_%d", name, n)
	} else {
		g.nodeNames[name] = 1
	}
	g.nodes = append(g.nodes, Node{Name: name, Op: op, Shape: t.Shape().Clone()})
	return t
}

// Summary renders the node log and variable totals as a table.
func (g *Graph) Summary() string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tOP\tSHAPE")
	for _, n := range g.nodes {
		fmt.Fprintf(tw, "%s\t%s\t%v\n", n.Name, n.Op, n.Shape)
	}
	_ = tw.Flush()

	devices := make(map[string]int)
	for _, v := range g.Variables() {
		devices[v.device]++
	}
	placement := make([]string, 0, len(devices))
	for d, n := range devices {
		placement = append(placement, fmt.Sprintf("%s=%d", d, n))
	}
	sort.Strings(placement)

	fmt.Fprintf(&sb, "variables: %d (trainable parameters: %d) placement: %s\n",
		len(g.varOrder), g.NumParameters(), strings.Join(placement, ","))
	fmt.Fprintf(&sb, "regularization terms: %d pending update ops: %d\n",
		len(g.Losses()), len(g.UpdateOps()))
	return sb.String()
}
