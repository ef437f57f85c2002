package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sunfolio/gridmatch/internal/config"
	"github.com/sunfolio/gridmatch/internal/geodata"
	"github.com/sunfolio/gridmatch/internal/lookup"
	"github.com/sunfolio/gridmatch/internal/resolve"
	"github.com/sunfolio/gridmatch/internal/store"
)

// handleResolve implements the resolve subcommand
func handleResolve(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	runVersion := fs.String("run-version", "", "Version tag for this batch (default: timestamp)")
	workers := fs.Int("workers", 0, "Worker count override")
	noProgress := fs.Bool("no-progress", false, "Disable the progress bar")
	skipIndex := fs.Bool("skip-index", false, "Skip rebuilding the lookup index")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    gridmatch resolve [options]

DESCRIPTION:
    Assign every postcode region to a distribution network operator.
    This will:
      1. Load region and territory polygons from the configured GeoJSON files
      2. Compute the overlap of each region with every nearby territory
      3. Pick the dominant operator, or fall back to the per-state table
      4. Replace the batch for this version in the database
      5. Rebuild the lookup index

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Resolve with an auto-generated version
    gridmatch resolve

    # Pin the batch version
    gridmatch resolve -run-version v2026-08

    # Quiet run on 8 workers
    gridmatch resolve -workers 8 -no-progress
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse arguments: %v", err)
	}

	if len(cfg.Data.Regions) == 0 || len(cfg.Data.Territories) == 0 {
		fmt.Fprintf(os.Stderr, "Error: data.regions and data.territories must be configured\n")
		os.Exit(1)
	}

	version := *runVersion
	if version == "" {
		version = "v" + time.Now().Format("20060102-150405")
	}

	logger, err := resolve.InitRunLogger(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize log file: %v\n", err)
	}
	defer logger.Close()

	maxWorkers := cfg.Resolver.MaxWorkers
	if *workers > 0 {
		maxWorkers = *workers
	}

	startTime := time.Now()

	regions, territories := loadInputs(cfg)
	resolve.LogInfo("inputs loaded", map[string]interface{}{
		"regions":     len(regions),
		"territories": len(territories),
	})

	fmt.Printf("Resolving %d regions against %d territories (version %s)\n\n", len(regions), len(territories), version)

	resolver := resolve.New(territories, resolve.Options{
		MaxWorkers:   maxWorkers,
		TieThreshold: cfg.Resolver.TieThreshold,
		Fallback:     cfg.Resolver.Fallback,
	})

	progress := resolve.NewRunProgress(!*noProgress && resolve.DefaultProgressEnabled())
	assignments, summary := resolver.Run(regions, version, progress)
	resolve.LogInfo("run finished", map[string]interface{}{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"ties":      summary.Ties,
	})

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	assignmentStore := store.NewAssignmentStore(db)
	if err := assignmentStore.ReplaceBatch(version, assignments); err != nil {
		log.Fatalf("Failed to store batch: %v", err)
	}
	if err := assignmentStore.RecordRun(version, summary); err != nil {
		log.Fatalf("Failed to record run: %v", err)
	}

	if !*skipIndex {
		stop := resolve.StartSpinner(!*noProgress && resolve.DefaultProgressEnabled(), "rebuilding lookup index")
		err := lookup.Build(cfg.Lookup.IndexDir, assignments)
		stop()
		if err != nil {
			log.Fatalf("Failed to rebuild lookup index: %v", err)
		}
	}

	duration := time.Since(startTime)

	fmt.Println("Resolution completed successfully!")
	fmt.Printf("\nDuration: %v\n", duration)
	fmt.Println("\nSummary:")
	fmt.Printf("   Processed: %6d\n", summary.Processed)
	fmt.Printf("   Skipped:   %6d\n", summary.Skipped)
	fmt.Printf("   Ties:      %6d\n", summary.Ties)
}

// loadInputs loads region and territory polygons from every configured
// pattern. Per-file decode failures are warnings; zero usable features from
// all patterns is fatal.
func loadInputs(cfg *config.Config) ([]resolve.Region, []resolve.Territory) {
	var regions []resolve.Region
	for _, pattern := range cfg.Data.Regions {
		loaded, warning, err := geodata.LoadRegions(pattern, cfg.Data.Exclude)
		if warning != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", warning)
			resolve.LogWarn("region load warning", map[string]interface{}{"pattern": pattern, "failures": warning.Count})
		}
		if err != nil {
			log.Fatalf("Failed to load regions: %v", err)
		}
		regions = append(regions, loaded...)
	}

	var territories []resolve.Territory
	for _, pattern := range cfg.Data.Territories {
		loaded, warning, err := geodata.LoadTerritories(pattern, cfg.Data.Exclude)
		if warning != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", warning)
			resolve.LogWarn("territory load warning", map[string]interface{}{"pattern": pattern, "failures": warning.Count})
		}
		if err != nil {
			log.Fatalf("Failed to load territories: %v", err)
		}
		territories = append(territories, loaded...)
	}

	return regions, territories
}
