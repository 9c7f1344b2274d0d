// Package config holds the settings of an interpolation run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hgcal-gsoc/hgcal/internal/geometry"
)

// DefaultInputGeometry is the trigger geometry file used on the lab cluster.
const DefaultInputGeometry = "/data_CMS/cms/grasseau/HAhRD/test_triggergeom.root"

// ErrMissingInput is returned when no geometry file is configured.
var ErrMissingInput = errors.New("missing input geometry file name")

// Config captures the runtime knobs of an interpolation run.
type Config struct {
	InputGeometry string  `yaml:"input_geometry"`
	TreeName      string  `yaml:"tree_name"`
	Layer         int     `yaml:"layer"`
	Subdet        int     `yaml:"subdet"`
	Wafer         int     `yaml:"wafer"`
	Resolution    []int   `yaml:"resolution"`
	OutputDir     string  `yaml:"output_dir"`
	Plot          bool    `yaml:"plot"`
	PlotDir       string  `yaml:"plot_dir"`
	MaxPlots      int     `yaml:"max_plots"`
	Workers       int     `yaml:"workers"`
	MinWeight     float64 `yaml:"min_weight"`
}

// Default returns the settings of the reference run: layer 1 of subdet 3
// mapped onto a 500x500 grid.
func Default() *Config {
	return &Config{
		InputGeometry: DefaultInputGeometry,
		TreeName:      geometry.DefaultTreeName,
		Layer:         1,
		Subdet:        3,
		Wafer:         -1,
		Resolution:    []int{500, 500},
		OutputDir:     "sq_cells_data",
		PlotDir:       "sq_cells_plots",
		MaxPlots:      10,
		MinWeight:     1e-9,
	}
}

// Overrides captures CLI supplied values; nil fields are left alone.
type Overrides struct {
	InputGeometry *string
	Layer         *int
	Subdet        *int
	Resolution    *[2]int
	OutputDir     *string
	Plot          *bool
	PlotDir       *string
	MaxPlots      *int
	Workers       *int
}

// Load reads a YAML file over the defaults. Callers validate after applying
// flag overrides.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path comes from the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides updates c with every non-nil override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.InputGeometry != nil {
		c.InputGeometry = *o.InputGeometry
	}
	if o.Layer != nil {
		c.Layer = *o.Layer
	}
	if o.Subdet != nil {
		c.Subdet = *o.Subdet
	}
	if o.Resolution != nil {
		c.Resolution = []int{o.Resolution[0], o.Resolution[1]}
	}
	if o.OutputDir != nil {
		c.OutputDir = *o.OutputDir
	}
	if o.Plot != nil {
		c.Plot = *o.Plot
	}
	if o.PlotDir != nil {
		c.PlotDir = *o.PlotDir
	}
	if o.MaxPlots != nil {
		c.MaxPlots = *o.MaxPlots
	}
	if o.Workers != nil {
		c.Workers = *o.Workers
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.InputGeometry == "" {
		return ErrMissingInput
	}
	if len(c.Resolution) != 2 || c.Resolution[0] <= 0 || c.Resolution[1] <= 0 {
		return fmt.Errorf("resolution must be two positive sizes (got %v)", c.Resolution)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must be set")
	}
	if c.Plot && c.PlotDir == "" {
		return errors.New("plot_dir must be set when plotting")
	}
	if c.MaxPlots < 0 {
		return fmt.Errorf("max_plots must be >= 0 (got %d)", c.MaxPlots)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.MinWeight < 0 || c.MinWeight >= 1 {
		return fmt.Errorf("min_weight must be in [0, 1) (got %g)", c.MinWeight)
	}
	if c.TreeName == "" {
		c.TreeName = geometry.DefaultTreeName
	}
	return nil
}

// Res returns the resolution as (nx, ny). Call after Validate.
func (c *Config) Res() [2]int {
	return [2]int{c.Resolution[0], c.Resolution[1]}
}

// ReadOptions returns the geometry selection.
func (c *Config) ReadOptions() geometry.ReadOptions {
	return geometry.ReadOptions{
		TreeName: c.TreeName,
		Subdet:   c.Subdet,
		Layer:    c.Layer,
		Wafer:    c.Wafer,
	}
}

// ParseResolution accepts "N" for an NxN grid or "NXxNY".
func ParseResolution(s string) ([2]int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("resolution %q: want N or NXxNY", s)
	}
	var res [2]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 {
			return [2]int{}, fmt.Errorf("resolution %q: %q is not a positive integer", s, p)
		}
		res[i] = n
	}
	return res, nil
}
