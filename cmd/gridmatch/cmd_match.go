package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sunfolio/gridmatch/internal/config"
	"github.com/sunfolio/gridmatch/internal/geom"
	"github.com/sunfolio/gridmatch/internal/match"
)

// handleMatch implements the match subcommand
func handleMatch(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)

	var topK, workers int
	var jsonOutput bool

	fs.IntVar(&topK, "k", 0, "Number of results to return (default: config top_k)")
	fs.IntVar(&workers, "workers", 1, "Worker count for scoring")
	fs.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    gridmatch match [options] <query.json> <candidate.json> [candidate.json ...]

DESCRIPTION:
    Rank candidate polygons against a query polygon by intersection over
    union. Each file holds one polygon as a JSON array of [x, y] vertex
    pairs; a candidate's ID is its filename stem.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Rank rooftop candidates against a drawn outline
    gridmatch match outline.json catalog/*.json

    # Top 3 only, as JSON
    gridmatch match outline.json catalog/*.json -k 3 -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Error: a query polygon and at least one candidate are required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	query, err := readPolygon(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read query polygon: %v", err)
	}

	candidates := make([]match.Candidate, 0, fs.NArg()-1)
	for _, path := range fs.Args()[1:] {
		shape, err := readPolygon(path)
		if err != nil {
			log.Fatalf("Failed to read candidate %s: %v", path, err)
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		candidates = append(candidates, match.Candidate{ID: stem, Shape: shape})
	}

	if topK <= 0 {
		topK = cfg.Match.TopK
	}

	ranked := match.RankWorkers(query, candidates, workers)
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}

	if jsonOutput {
		output := map[string]interface{}{
			"query":   fs.Arg(0),
			"count":   len(ranked),
			"results": ranked,
		}
		jsonData, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal results: %v", err)
		}
		fmt.Println(string(jsonData))
		return
	}

	if len(ranked) == 0 {
		fmt.Println("No candidates scored")
		return
	}
	fmt.Printf("Ranked %d candidate(s):\n\n", len(ranked))
	for i, score := range ranked {
		fmt.Printf("%d. %-24s %.4f\n", i+1, score.ID, score.Score)
	}
}

// readPolygon decodes one polygon from a JSON array of [x, y] pairs.
func readPolygon(path string) (geom.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parse polygon: %w", err)
	}

	poly := make(geom.Polygon, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("vertex %d has %d coordinates, want 2", i, len(pair))
		}
		poly = append(poly, geom.Point{X: pair[0], Y: pair[1]})
	}
	if len(poly) < 3 {
		return nil, fmt.Errorf("polygon has %d vertices, need at least 3", len(poly))
	}
	return poly, nil
}
