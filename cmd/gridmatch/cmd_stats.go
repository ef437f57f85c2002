package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sunfolio/gridmatch/internal/config"
	"github.com/sunfolio/gridmatch/internal/store"
)

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	var jsonOutput bool
	fs.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    gridmatch stats [options]

DESCRIPTION:
    Show statistics about the assignment database.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Show human-readable statistics
    gridmatch stats

    # JSON output
    gridmatch stats -json
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		log.Fatalf("Failed to get statistics: %v", err)
	}

	assignmentStore := store.NewAssignmentStore(db)
	latest, err := assignmentStore.LatestVersion()
	if err != nil {
		log.Fatalf("Failed to get latest version: %v", err)
	}
	runs, err := assignmentStore.Runs()
	if err != nil {
		log.Fatalf("Failed to get runs: %v", err)
	}

	if jsonOutput {
		output := map[string]interface{}{
			"assignments":    stats.AssignmentCount,
			"versions":       stats.VersionCount,
			"runs":           stats.RunCount,
			"size_bytes":     stats.SizeBytes,
			"latest_version": latest,
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("Database Statistics")
	fmt.Println()
	fmt.Printf("Assignments: %6d\n", stats.AssignmentCount)
	fmt.Printf("Versions:    %6d\n", stats.VersionCount)
	fmt.Printf("Runs:        %6d\n", stats.RunCount)
	fmt.Printf("Size:        %6d KB\n", stats.SizeBytes/1024)
	if latest != "" {
		fmt.Printf("Latest:      %s\n", latest)
	}

	if len(runs) > 0 {
		fmt.Println("\nRecent runs:")
		limit := len(runs)
		if limit > 5 {
			limit = 5
		}
		for _, run := range runs[:limit] {
			fmt.Printf("   %-20s processed=%-6d skipped=%-4d ties=%-4d %s\n",
				run.Version, run.Processed, run.Skipped, run.Ties, run.CreatedAt)
		}
	}
}
