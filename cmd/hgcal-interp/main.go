// Command hgcal-interp maps the hexagonal trigger cells of one HGCal layer
// onto a square grid and stores the overlap coefficients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hgcal-gsoc/hgcal/internal/config"
	"github.com/hgcal-gsoc/hgcal/internal/geometry"
	"github.com/hgcal-gsoc/hgcal/internal/interpolation"
	"github.com/hgcal-gsoc/hgcal/internal/plot"
)

// syntheticSide is the hexagon side, in cm, of --synthetic geometries.
const syntheticSide = 0.95

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli parses args, resolves the config and runs the pipeline. It returns the
// process exit code.
func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hgcal-interp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "Path to YAML config")
	inputGeometry := fs.String("input_geometry", config.DefaultInputGeometry, "Input geometry file")
	layer := fs.Int("layer", 1, "Layer to be mapped")
	subdet := fs.Int("subdet", 3, "Subdet")
	resolution := fs.String("resolution", "500", "Square grid resolution, N or NXxNY")
	outputDir := fs.String("output_dir", "sq_cells_data", "Directory for the coefficient and square cell files")
	doPlot := fs.Bool("plot", false, "Save overlap plots")
	plotDir := fs.String("plot_dir", "sq_cells_plots", "Directory for plots")
	maxPlots := fs.Int("max_plots", 10, "Maximum number of hex cell plots, 0 for all")
	workers := fs.Int("workers", 0, "Interpolation workers, 0 for all CPUs")
	synthetic := fs.Int("synthetic", 0, "Generate a honeycomb with this many rings instead of reading --input_geometry")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: hgcal-interp [options]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Printf("failed to load config: %v", err)
			return 1
		}
	}

	var overrides config.Overrides
	var resErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input_geometry":
			overrides.InputGeometry = inputGeometry
		case "layer":
			overrides.Layer = layer
		case "subdet":
			overrides.Subdet = subdet
		case "resolution":
			res, err := config.ParseResolution(*resolution)
			if err != nil {
				resErr = err
				return
			}
			overrides.Resolution = &res
		case "output_dir":
			overrides.OutputDir = outputDir
		case "plot":
			overrides.Plot = doPlot
		case "plot_dir":
			overrides.PlotDir = plotDir
		case "max_plots":
			overrides.MaxPlots = maxPlots
		case "workers":
			overrides.Workers = workers
		}
	})
	if resErr != nil {
		log.Printf("invalid flags: %v", resErr)
		return 1
	}
	cfg.ApplyOverrides(overrides)

	if *synthetic > 0 {
		path, err := writeSynthetic(cfg, *synthetic)
		if err != nil {
			log.Printf("failed to generate synthetic geometry: %v", err)
			return 1
		}
		cfg.InputGeometry = path
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingInput) {
			fs.SetOutput(stdout)
			fs.Usage()
			fmt.Fprintln(stdout, "Error: Missing input geometry file name")
			return 1
		}
		log.Printf("invalid config: %v", err)
		return 1
	}

	if err := run(ctx, cfg); err != nil {
		log.Printf("interpolation failed: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config) error {
	cells, err := geometry.ReadGeometry(cfg.InputGeometry, cfg.ReadOptions())
	if err != nil {
		return err
	}

	opts := interpolation.DefaultOptions()
	opts.MinWeight = cfg.MinWeight
	if cfg.Workers > 0 {
		opts.Parallel.NumWorkers = cfg.Workers
	}
	res, err := interpolation.LinearInterpolateHexToSquare(ctx, cells, cfg.Layer, cfg.Res(), opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	coefPath := filepath.Join(cfg.OutputDir, interpolation.CoefFilename(cfg.Layer, cfg.Res()))
	if err := interpolation.SaveCoefficients(coefPath, cfg.Layer, cfg.Res(), res.Coefficients); err != nil {
		return err
	}
	sqPath := filepath.Join(cfg.OutputDir, interpolation.SquareCellsFilename(cfg.Layer, cfg.Res()))
	if err := interpolation.SaveSquareCells(sqPath, cfg.Layer, res.Grid); err != nil {
		return err
	}
	log.Printf(">>> Saved %s and %s", coefPath, sqPath)

	log.Printf(">>> Reading the Overlap Coefficient File")
	coef, err := interpolation.LoadCoefficients(coefPath)
	if err != nil {
		return err
	}
	log.Printf(">>> Reading the Square Cells File")
	grid, _, err := interpolation.LoadSquareCells(sqPath)
	if err != nil {
		return err
	}

	var partial int
	for _, id := range coef.HexIDs() {
		if coef.Coverage(id) < 1-1e-6 {
			partial++
		}
	}
	log.Printf(">>> Coefficients: hex cells=%d, overlaps=%d, partially covered=%d",
		len(coef), coef.NumOverlaps(), partial)

	if !cfg.Plot {
		return nil
	}
	if err := os.MkdirAll(cfg.PlotDir, 0o750); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}
	overview := filepath.Join(cfg.PlotDir, fmt.Sprintf("sq_cells_layer_%d_res_%d.png", cfg.Layer, cfg.Res()[0]))
	if err := plot.SquareCells(grid, overview); err != nil {
		return err
	}
	n, err := plot.HexToSquareMap(coef, cells, grid, cfg.PlotDir, cfg.MaxPlots)
	if err != nil {
		return err
	}
	log.Printf(">>> Wrote %d hex cell plots to %s", n, cfg.PlotDir)
	return nil
}

// writeSynthetic writes a honeycomb on the configured layer to the output
// directory and returns its path.
func writeSynthetic(cfg *config.Config, rings int) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return "", err
	}
	cells := geometry.HexTiling(rings, syntheticSide)
	for _, c := range cells {
		c.Layer = cfg.Layer
		c.Subdet = cfg.Subdet
	}
	path := filepath.Join(cfg.OutputDir, "synthetic_triggergeom.root")
	if err := geometry.WriteGeometry(path, cfg.TreeName, cells); err != nil {
		return "", err
	}
	log.Printf(">>> Synthetic geometry: %d cells in %s", len(cells), path)
	return path, nil
}
