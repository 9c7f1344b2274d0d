package nn

import (
	"fmt"
	"strconv"

	"github.com/hgcal-gsoc/hgcal/internal/serialization"
)

// Checkpoint metadata keys.
const (
	MetaSeed      = "seed"
	MetaDevice    = "device"
	MetaNumParams = "num_parameters"
)

// SaveCheckpoint writes every variable of the graph, trainable or not, to
// path as a .hgcl checkpoint. Extra metadata is stored next to the seed and
// device placement.
func (g *Graph) SaveCheckpoint(path string, metadata map[string]string) error {
	sections := make([]serialization.Section, 0, len(g.varOrder))
	for _, v := range g.Variables() {
		sections = append(sections, serialization.TensorSection(v.name, v.value))
	}

	meta := make(map[string]string, len(metadata)+3)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[MetaSeed] = strconv.FormatInt(g.cfg.Seed, 10)
	meta[MetaDevice] = g.cfg.Device
	meta[MetaNumParams] = strconv.Itoa(g.NumParameters())

	if err := serialization.WriteFile(path, serialization.KindCheckpoint, sections, meta); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint assigns the values stored in path to the graph's variables.
//
// The graph must already hold every stored variable with the same shape,
// which is the case after rebuilding the same model. Variables absent from
// the file keep their current values. The file metadata is returned.
func (g *Graph) LoadCheckpoint(path string) (map[string]string, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if err := f.ExpectKind(serialization.KindCheckpoint); err != nil {
		return nil, err
	}

	for _, name := range f.Names() {
		v, ok := g.vars[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
		}
		s, err := f.Section(name)
		if err != nil {
			return nil, err
		}
		t, err := s.Tensor()
		if err != nil {
			return nil, fmt.Errorf("checkpoint %s: %w", name, err)
		}
		if err := v.Assign(t); err != nil {
			return nil, err
		}
	}
	return f.Header.Metadata, nil
}
