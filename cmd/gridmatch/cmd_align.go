package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sunfolio/gridmatch/internal/align"
	"github.com/sunfolio/gridmatch/internal/config"
)

// handleAlign implements the align subcommand
func handleAlign(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)

	var normalize, whiten bool
	var outputPath string

	fs.BoolVar(&normalize, "normalize", false, "L2-normalize rows before fitting")
	fs.BoolVar(&whiten, "whiten", false, "Z-whiten columns before fitting")
	fs.StringVar(&outputPath, "output", "", "Write the transform JSON to a file instead of stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    gridmatch align [options] <source.json> <target.json>

DESCRIPTION:
    Fit a similarity transform (rotation, scale, translation) mapping the
    source point set onto the target. Both files hold a JSON array of
    equal-length coordinate rows; row i of the source corresponds to row i
    of the target. 2D inputs are solved in closed form, higher dimensions
    via truncated SVD.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Fit and print the transform
    gridmatch align scanned.json reference.json

    # Preprocess embeddings before fitting
    gridmatch align a.json b.json -normalize -whiten -output transform.json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Error: exactly one source file and one target file are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	source, err := readRows(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read source: %v", err)
	}
	target, err := readRows(fs.Arg(1))
	if err != nil {
		log.Fatalf("Failed to read target: %v", err)
	}

	if normalize {
		source = align.L2Normalize(source)
		target = align.L2Normalize(target)
	}
	if whiten {
		source = align.ZWhiten(source)
		target = align.ZWhiten(target)
	}

	transform, err := align.Align(source, target)
	if err != nil {
		log.Fatalf("Alignment failed: %v", err)
	}

	jsonData, err := json.MarshalIndent(transform, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal transform: %v", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			log.Fatalf("Failed to write transform: %v", err)
		}
		fmt.Printf("Wrote %s transform (%d points, scale %.6f) to %s\n",
			transform.Method, len(source), transform.Scale, outputPath)
		return
	}

	fmt.Println(string(jsonData))
}

// readRows decodes a JSON array of coordinate rows.
func readRows(path string) ([][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse rows: %w", err)
	}
	return rows, nil
}
