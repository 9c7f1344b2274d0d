// Package main provides the HGCal trigger CNN tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("HGCal trigger tools %s\n", version)
	case "summary":
		if err := summary(os.Args[2:]); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("HGCal trigger tools - CNN layer builders for hexagonal calorimeter images")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  summary    Build the demo classifier on a synthetic layer image and print its graph")
	fmt.Println("")
	fmt.Println("Run hgcal-interp to compute hexagon-to-square interpolation tables.")
}

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	seed := fs.Int64("seed", 1, "Graph-level random seed")
	training := fs.Bool("training", false, "Build in training mode (batch statistics, dropout, update ops)")
	resolution := fs.Int("resolution", 32, "Side of the square layer image")
	checkpoint := fs.String("checkpoint", "", "Save every variable to this .hgcl file")
	restore := fs.String("restore", "", "Load variables from this .hgcl file before the final forward pass")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *resolution < 4 {
		return fmt.Errorf("resolution must be at least 4 (got %d)", *resolution)
	}
	m, err := newDemo(*seed, *resolution)
	if err != nil {
		return err
	}
	logits, err := m.forward(m.graph.Root(), *training)
	if err != nil {
		return err
	}
	fmt.Print(m.graph.Summary())
	fmt.Printf("regularization loss: %.6g\n", m.graph.RegularizationLoss())
	if *training {
		log.Printf(">>> Applied %d update ops", m.graph.RunUpdateOps())
	}

	if *restore != "" {
		meta, err := m.graph.LoadCheckpoint(*restore)
		if err != nil {
			return err
		}
		log.Printf(">>> Restored %s (seed %s)", *restore, meta["seed"])
		if logits, err = m.forward(m.graph.Root().Reuse(), false); err != nil {
			return err
		}
	}
	fmt.Printf("logits: %v\n", logits.Data())

	if *checkpoint != "" {
		if err := m.graph.SaveCheckpoint(*checkpoint, map[string]string{"version": version}); err != nil {
			return err
		}
		log.Printf(">>> Saved %d variables to %s", len(m.graph.Variables()), *checkpoint)
	}
	return nil
}
