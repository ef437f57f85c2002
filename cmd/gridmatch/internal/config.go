package internal

import (
	"fmt"
	"os"

	"github.com/sunfolio/gridmatch/internal/config"
)

// LoadConfig reads the config from an explicit path, or the default
// location when path is empty.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample writes a complete example config to stderr.
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.gridmatch/config/gridmatch.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

# GeoJSON inputs (required for resolve)
data:
  regions:
    - ~/.gridmatch/data/regions/*.geojson
  territories:
    - ~/.gridmatch/data/territories/*.geojson
  # exclude:
  #   - "_*.geojson"

resolver:
  max_workers: 4
  tie_threshold: 0.05
  # fallback:
  #   NSW: AUSGRID
  #   VIC: CITIPOWER

match:
  top_k: 10

# database:
#   path: ~/.gridmatch/data/gridmatch.db

# lookup:
#   index_dir: ~/.gridmatch/index

Usage:
  1. Create the config file
  2. Drop region and territory GeoJSON under ~/.gridmatch/data/
  3. Run: gridmatch resolve
  4. Query: gridmatch lookup 2000
`, configPath)
}
