package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sunfolio/gridmatch/cmd/gridmatch/internal"
	"github.com/sunfolio/gridmatch/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		internal.PrintUsage()
		os.Exit(1)
	}

	// Parse global flags and find subcommand
	configPath := ""
	args := os.Args[1:]

	// Handle special flags that don't require subcommand
	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			internal.PrintUsage()
			os.Exit(0)
		}
		if arg == "-v" || arg == "-version" || arg == "--version" {
			fmt.Printf("gridmatch version %s\n", internal.Version)
			os.Exit(0)
		}
	}

	// Find the subcommand (first non-flag argument that is a valid subcommand)
	validSubcommands := map[string]bool{
		"resolve": true,
		"match":   true,
		"align":   true,
		"lookup":  true,
		"stats":   true,
	}

	subcommandIndex := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			// Check if this is a known subcommand
			if validSubcommands[arg] {
				subcommandIndex = i
				break
			}
			// Not a known subcommand, might be a value for a flag
		}
	}

	if subcommandIndex == -1 {
		fmt.Fprintf(os.Stderr, "Error: No subcommand specified\n\n")
		internal.PrintUsage()
		os.Exit(1)
	}

	// Parse global flags (before subcommand)
	globalFlags := args[:subcommandIndex]
	for i := 0; i < len(globalFlags); i++ {
		flag := globalFlags[i]
		if flag == "-config" || flag == "--config" {
			if i+1 < len(globalFlags) {
				configPath = globalFlags[i+1]
				i++ // skip next arg
			}
		} else if strings.HasPrefix(flag, "-") {
			fmt.Fprintf(os.Stderr, "Error: Unknown global flag: %s\n\n", flag)
			internal.PrintUsage()
			os.Exit(1)
		}
	}

	subcommand := args[subcommandIndex]
	subcommandArgs := args[subcommandIndex+1:]

	// Load configuration. The match and align subcommands work purely on
	// their input files, so a missing config is not fatal for them.
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		if config.IsConfigNotFound(err) {
			switch subcommand {
			case "match", "align":
				cfg = &config.Config{}
			case "resolve":
				if notFoundErr, ok := err.(*config.ConfigNotFoundError); ok {
					created, createErr := config.WriteDefaultTemplate(notFoundErr.RequestedPath)
					if createErr != nil {
						fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
						fmt.Fprintf(os.Stderr, "Also failed to create default config at %s: %v\n\n", notFoundErr.RequestedPath, createErr)
						internal.PrintConfigExample()
						os.Exit(1)
					}
					if created {
						fmt.Fprintf(os.Stderr, "Created default config at %s\n", notFoundErr.RequestedPath)
					}
					fmt.Fprintln(os.Stderr, "Please point data.regions and data.territories at your GeoJSON files and rerun `gridmatch resolve`.")
					os.Exit(1)
				}
			default:
				fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
				internal.PrintConfigExample()
				os.Exit(1)
			}
		} else {
			log.Fatalf("Failed to load config: %v\n", err)
		}
	}

	// Fill in default storage locations
	if cfg.Database.Path == "" {
		dbPath, err := internal.DefaultDBPath()
		if err != nil {
			log.Fatalf("Failed to determine database path: %v\n", err)
		}
		cfg.Database.Path = dbPath
	}
	if cfg.Lookup.IndexDir == "" {
		indexDir, err := internal.DefaultIndexDir()
		if err != nil {
			log.Fatalf("Failed to determine index directory: %v\n", err)
		}
		cfg.Lookup.IndexDir = indexDir
	}

	switch subcommand {
	case "resolve":
		handleResolve(cfg, subcommandArgs)
	case "match":
		handleMatch(cfg, subcommandArgs)
	case "align":
		handleAlign(cfg, subcommandArgs)
	case "lookup":
		handleLookup(cfg, subcommandArgs)
	case "stats":
		handleStats(cfg, subcommandArgs)
	default:
		fmt.Printf("Unknown subcommand: %s\n\n", subcommand)
		internal.PrintUsage()
		os.Exit(1)
	}
}
