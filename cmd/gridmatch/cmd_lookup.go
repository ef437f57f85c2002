package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sunfolio/gridmatch/internal/config"
	"github.com/sunfolio/gridmatch/internal/lookup"
	"github.com/sunfolio/gridmatch/internal/resolve"
)

// handleLookup implements the lookup subcommand
func handleLookup(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)

	var topK int
	var jsonOutput bool

	fs.IntVar(&topK, "k", 10, "Number of results to return")
	fs.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    gridmatch lookup [options] "<query>"

DESCRIPTION:
    Query the assignment index. Postcodes and state codes match exactly,
    operator names match fuzzily.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Who serves postcode 2000?
    gridmatch lookup 2000

    # All hits for an operator
    gridmatch lookup ausgrid -k 50

    # JSON output for scripting
    gridmatch lookup NSW -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: lookup query is required\n\n")
		fs.Usage()
		os.Exit(1)
	}

	query := fs.Arg(0)

	hits, err := lookup.Search(cfg.Lookup.IndexDir, query, topK)
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"query":   query,
			"count":   len(hits),
			"results": hits,
		}
		jsonData, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal results: %v", err)
		}
		fmt.Println(string(jsonData))
		return
	}

	if len(hits) == 0 {
		fmt.Println("No results found")
		return
	}

	fmt.Printf("Found %d result(s) for: %s\n\n", len(hits), query)
	for i, hit := range hits {
		fmt.Printf("%d. %s (%s)\n", i+1, hit.Postcode, hit.State)
		fmt.Printf("   Operator:   %s\n", hit.Operator)
		if hit.Provenance == resolve.ProvenanceGeometric {
			fmt.Printf("   Overlap:    %.1f%%\n", hit.Overlap*100)
		} else {
			fmt.Printf("   Provenance: %s\n", hit.Provenance)
		}
		fmt.Printf("   Version:    %s\n", hit.Version)
		fmt.Println()
	}
}
