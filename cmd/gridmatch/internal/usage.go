package internal

import (
	"fmt"
	"os"
	"strings"
)

const Version = "1.0.0"

// PrintUsage writes the top-level usage text to stderr.
func PrintUsage() {
	fmt.Fprintf(os.Stderr, `gridmatch - Postcode to Network Operator Resolution

Version: %s

USAGE:
    gridmatch [global options] <command> [command options]

GLOBAL OPTIONS:
    -config <path>
        Path to config file (default: ~/.gridmatch/config/gridmatch.yaml)

    -v, -version
        Show version information

    -h, -help
        Show this help message

COMMANDS:
    resolve
        Assign every postcode region to its distribution network operator

    match
        Rank candidate polygons against a query polygon by IoU

    align
        Fit a similarity transform between two point sets

    lookup
        Query the assignment index by postcode, state or operator

    stats
        Show database statistics

EXAMPLES:
    # Run a full resolution pass
    gridmatch resolve

    # Run with an explicit batch version
    gridmatch resolve -run-version v2026-08

    # Rank rooftop candidates against a drawn outline
    gridmatch match query.json candidates/*.json

    # Fit a transform between two embedding sets
    gridmatch align source.json target.json -output transform.json

    # Who serves postcode 2000?
    gridmatch lookup 2000

    # Show statistics
    gridmatch stats

For detailed help on each command, use:
    gridmatch <command> -help
`, Version)
}

// StringList is a flag.Value that collects multiple strings
type StringList []string

func (s *StringList) String() string {
	return strings.Join(*s, ",")
}

// Set appends one value, allowing repeated -flag use.
func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}
