package geodata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sunfolio/gridmatch/internal/geom"
	"github.com/sunfolio/gridmatch/internal/resolve"
)

// LoadWarning aggregates per-file decode failures that did not abort a load.
type LoadWarning struct {
	Count   int
	Samples []string
}

func (w *LoadWarning) Error() string {
	return fmt.Sprintf("%d file(s) failed to load; first failures: %s", w.Count, strings.Join(w.Samples, "; "))
}

// loadErrorCollector gathers non-fatal per-file errors.
type loadErrorCollector struct {
	mu      sync.Mutex
	count   int
	samples []string
}

func (c *loadErrorCollector) Add(path string, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	if len(c.samples) < 5 {
		c.samples = append(c.samples, fmt.Sprintf("%s: %v", path, err))
	}
}

func (c *loadErrorCollector) Warning() *LoadWarning {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return nil
	}
	return &LoadWarning{Count: c.count, Samples: c.samples}
}

// globFiles expands the doublestar pattern and drops anything matching an
// exclude pattern (matched against both the relative path and the basename,
// like the index file filter this was lifted from).
func globFiles(pattern string, exclude []string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	files := matches[:0]
	for _, path := range matches {
		if excluded(path, exclude) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func excluded(path string, exclude []string) bool {
	norm := filepath.ToSlash(path)
	for _, pattern := range exclude {
		if matched, _ := doublestar.Match(pattern, norm); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}

// LoadRegions reads every file matching pattern and returns one Region per
// feature. Features need a "postcode" (or "poa_code") and "state" property.
// A file that fails to decode is skipped and reported in the returned
// LoadWarning; zero loadable regions is an error because the resolver cannot
// run without boundary data.
func LoadRegions(pattern string, exclude []string) ([]resolve.Region, *LoadWarning, error) {
	files, err := globFiles(pattern, exclude)
	if err != nil {
		return nil, nil, err
	}

	collector := &loadErrorCollector{}
	var regions []resolve.Region
	for _, path := range files {
		fc, err := readCollection(path)
		if err != nil {
			collector.Add(path, err)
			continue
		}
		for _, feat := range fc.Features {
			rings, err := feat.Geometry.rings()
			if err != nil {
				collector.Add(path, err)
				continue
			}
			postcode := feat.property("postcode", "poa_code", "POA_CODE")
			state := feat.property("state", "STATE")
			// Regions are single polygons; a multipolygon postcode
			// contributes its largest piece.
			regions = append(regions, resolve.Region{
				Postcode: postcode,
				State:    state,
				Ring:     largestRing(rings),
			})
		}
	}

	if len(regions) == 0 {
		return nil, collector.Warning(), fmt.Errorf("no regions loaded from %q", pattern)
	}
	return regions, collector.Warning(), nil
}

// LoadTerritories reads every file matching pattern and groups features by
// their "operator" property into territories. Features without an operator
// fall back to the file's basename stem. Zero loadable territories is an
// error.
func LoadTerritories(pattern string, exclude []string) ([]resolve.Territory, *LoadWarning, error) {
	files, err := globFiles(pattern, exclude)
	if err != nil {
		return nil, nil, err
	}

	collector := &loadErrorCollector{}
	var order []string
	byOperator := make(map[string]*resolve.Territory)

	for _, path := range files {
		fc, err := readCollection(path)
		if err != nil {
			collector.Add(path, err)
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for _, feat := range fc.Features {
			rings, err := feat.Geometry.rings()
			if err != nil {
				collector.Add(path, err)
				continue
			}
			operator := feat.property("operator", "OPERATOR", "dnsp")
			if operator == "" {
				operator = strings.ToUpper(stem)
			}
			terr, ok := byOperator[operator]
			if !ok {
				terr = &resolve.Territory{Operator: operator}
				byOperator[operator] = terr
				order = append(order, operator)
			}
			terr.Pieces = append(terr.Pieces, rings...)
		}
	}

	territories := make([]resolve.Territory, 0, len(order))
	for _, operator := range order {
		territories = append(territories, *byOperator[operator])
	}

	if len(territories) == 0 {
		return nil, collector.Warning(), fmt.Errorf("no territories loaded from %q", pattern)
	}
	return territories, collector.Warning(), nil
}

func readCollection(path string) (*featureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return decodeCollection(data)
}

// largestRing picks the dominant piece of a multipolygon region.
func largestRing(rings []geom.Polygon) geom.Polygon {
	var best geom.Polygon
	bestArea := -1.0
	for _, ring := range rings {
		if area := geom.Area(ring); area > bestArea {
			best = ring
			bestArea = area
		}
	}
	return best
}
