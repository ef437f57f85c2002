package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Resolver ResolverConfig `yaml:"resolver,omitempty"`
	Match    MatchConfig    `yaml:"match,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Lookup   LookupConfig   `yaml:"lookup,omitempty"`
}

// DataConfig points at the GeoJSON inputs
type DataConfig struct {
	Regions     []string `yaml:"regions"`           // Glob patterns for postcode region files
	Territories []string `yaml:"territories"`       // Glob patterns for operator territory files
	Exclude     []string `yaml:"exclude,omitempty"` // Exclude patterns applied to both
}

// ResolverConfig holds resolver-specific configuration
type ResolverConfig struct {
	MaxWorkers   int               `yaml:"max_workers,omitempty"`   // Maximum number of goroutines
	TieThreshold float64           `yaml:"tie_threshold,omitempty"` // Overlap margin below which a tie is flagged
	Fallback     map[string]string `yaml:"fallback,omitempty"`      // State -> operator, used when geometry decides nothing
}

// MatchConfig holds shape matching configuration
type MatchConfig struct {
	TopK int `yaml:"top_k,omitempty"` // Default number of ranked candidates
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Path to SQLite database file
	// If empty, uses ~/.gridmatch/data/gridmatch.db
	Path string `yaml:"path,omitempty"`
}

// LookupConfig holds lookup index configuration
type LookupConfig struct {
	// Directory for the bleve index
	// If empty, uses ~/.gridmatch/index
	IndexDir string `yaml:"index_dir,omitempty"`
}

// Load loads configuration from the default config file
// Default location: ~/.gridmatch/config/gridmatch.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".gridmatch", "config", "gridmatch.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".gridmatch", "config", "gridmatch.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults
	if err := cfg.applyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. See 'gridmatch init' for help creating a config file",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// expandPath expands ~ and $HOME to the user's home directory
// Supports both:
//
//	~/.gridmatch/data/gridmatch.db
//	$HOME/.gridmatch/data/gridmatch.db
func expandPath(path string) string {
	// Handle $HOME environment variable
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			// Fallback to UserHomeDir if HOME is not set
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				// If we can't get home dir, return path as-is
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	// Handle ~ shorthand
	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// If we can't get home dir, return path as-is
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// DefaultFallback maps Australian states to the operator assumed when
// geometry decides nothing.
func DefaultFallback() map[string]string {
	return map[string]string{
		"NSW": "AUSGRID",
		"VIC": "CITIPOWER",
		"QLD": "ENERGEX",
		"SA":  "SAPN",
		"WA":  "WESTERNPOWER",
		"TAS": "TASNETWORKS",
		"NT":  "POWERWATER",
		"ACT": "EVOENERGY",
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() error {
	if c.Resolver.MaxWorkers == 0 {
		c.Resolver.MaxWorkers = 4
	}
	if c.Resolver.TieThreshold == 0 {
		c.Resolver.TieThreshold = 0.05
	}
	if len(c.Resolver.Fallback) == 0 {
		c.Resolver.Fallback = DefaultFallback()
	} else {
		// State codes in the table are case-insensitive on lookup; keep the
		// stored keys uppercase so yaml round trips stay stable.
		normalized := make(map[string]string, len(c.Resolver.Fallback))
		for state, operator := range c.Resolver.Fallback {
			normalized[strings.ToUpper(state)] = operator
		}
		c.Resolver.Fallback = normalized
	}

	if c.Match.TopK == 0 {
		c.Match.TopK = 10
	}

	if c.Database.Path != "" {
		c.Database.Path = expandPath(c.Database.Path)
	}
	if c.Lookup.IndexDir != "" {
		c.Lookup.IndexDir = expandPath(c.Lookup.IndexDir)
	}

	for i, pattern := range c.Data.Regions {
		c.Data.Regions[i] = expandPath(pattern)
	}
	for i, pattern := range c.Data.Territories {
		c.Data.Territories[i] = expandPath(pattern)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Resolver.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must not be negative, got: %d", c.Resolver.MaxWorkers)
	}
	if c.Resolver.TieThreshold < 0 || c.Resolver.TieThreshold >= 1 {
		return fmt.Errorf("tie_threshold must be in [0, 1), got: %g", c.Resolver.TieThreshold)
	}
	if c.Match.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got: %d", c.Match.TopK)
	}
	return nil
}

// Save saves the configuration to the default location
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".gridmatch", "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "gridmatch.yaml")
	return c.SaveToFile(configPath)
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# GridMatch Configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.gridmatch/config/gridmatch.yaml

data:
  # Glob patterns for postcode region GeoJSON files
  regions:
    - ~/.gridmatch/data/regions/*.geojson

  # Glob patterns for operator territory GeoJSON files
  territories:
    - ~/.gridmatch/data/territories/*.geojson

  # Patterns to skip (matched against path and basename)
  # exclude:
  #   - "_*.geojson"

resolver:
  max_workers: 4
  tie_threshold: 0.05

  # State -> operator table used when geometry decides nothing.
  # Omit to use the built-in defaults.
  # fallback:
  #   NSW: AUSGRID
  #   VIC: CITIPOWER

match:
  top_k: 10

# database:
#   path: ~/.gridmatch/data/gridmatch.db

# lookup:
#   index_dir: ~/.gridmatch/index
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
