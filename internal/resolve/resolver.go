// Package resolve assigns every postcode region to the distribution network
// operator (DNSP) whose service territory overlaps it the most. Regions are
// processed independently on a bounded worker pool; each produces exactly one
// versioned assignment, either geometric or via the state fallback table.
package resolve

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sunfolio/gridmatch/internal/geom"
)

// Provenance tags recorded on assignments.
const (
	ProvenanceGeometric = "geometric"
	ProvenanceFallback  = "fallback-heuristic"
)

// DefaultTieThreshold flags a tie when the best and runner-up overlap
// fractions are closer than this.
const DefaultTieThreshold = 0.05

// Region is one postcode polygon. Immutable once loaded.
type Region struct {
	Postcode string
	State    string
	Ring     geom.Polygon
}

// Territory is one operator's service area, possibly several disjoint pieces.
type Territory struct {
	Operator string
	Pieces   []geom.Polygon
}

// Assignment is the emitted record for one region. The resolver never
// mutates an assignment after emitting it; a re-run produces a fresh batch
// under a new version that supersedes by replacement.
type Assignment struct {
	Postcode   string
	State      string
	Operator   string
	Overlap    float64
	Tie        bool
	Provenance string
	Version    string
}

// Summary reports what one run did.
type Summary struct {
	Processed int
	Skipped   int
	Ties      int
}

// Options tunes a Resolver.
type Options struct {
	// MaxWorkers bounds the region worker pool. <= 0 means 1.
	MaxWorkers int
	// TieThreshold overrides DefaultTieThreshold when > 0.
	TieThreshold float64
	// Fallback maps a state label to the operator assigned when no
	// geometric overlap exists.
	Fallback map[string]string
}

// territoryIndex is a Territory with its aggregate bounding box precomputed
// for the cheap reject before clipping.
type territoryIndex struct {
	operator string
	pieces   []geom.Polygon
	bounds   geom.Bounds
}

// Resolver holds the immutable operator territories and run options.
type Resolver struct {
	territories []territoryIndex
	opts        Options
}

// New builds a Resolver over the given operator territories.
func New(territories []Territory, opts Options) *Resolver {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 1
	}
	if opts.TieThreshold <= 0 {
		opts.TieThreshold = DefaultTieThreshold
	}

	indexed := make([]territoryIndex, 0, len(territories))
	for _, terr := range territories {
		if len(terr.Pieces) == 0 {
			continue
		}
		bounds := geom.BoundsOf(terr.Pieces[0])
		for _, piece := range terr.Pieces[1:] {
			bounds = bounds.Extend(geom.BoundsOf(piece))
		}
		indexed = append(indexed, territoryIndex{
			operator: terr.Operator,
			pieces:   terr.Pieces,
			bounds:   bounds,
		})
	}

	return &Resolver{territories: indexed, opts: opts}
}

// Run resolves every region in one pass and returns the assignments in input
// order, tagged with the caller's version string, plus the run summary.
// Malformed regions are counted as skipped and never abort the run. The
// reporter may be nil.
func (r *Resolver) Run(regions []Region, version string, reporter ProgressReporter) ([]Assignment, Summary) {
	if reporter != nil {
		reporter.Start(len(regions))
		defer reporter.Finish()
	}

	results := make([]*Assignment, len(regions))

	jobs := make(chan int, r.opts.MaxWorkers*2)
	var wg sync.WaitGroup
	for w := 0; w < r.opts.MaxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.resolveRegion(regions[i], version)
				if reporter != nil {
					reporter.Increment()
				}
			}
		}()
	}
	for i := range regions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var summary Summary
	assignments := make([]Assignment, 0, len(regions))
	for _, res := range results {
		if res == nil {
			summary.Skipped++
			continue
		}
		summary.Processed++
		if res.Tie {
			summary.Ties++
		}
		assignments = append(assignments, *res)
	}
	return assignments, summary
}

// resolveRegion runs the per-region state machine to completion. A nil
// return means the region was malformed and skipped.
func (r *Resolver) resolveRegion(region Region, version string) *Assignment {
	if !validRegion(region) {
		return nil
	}

	regionArea := geom.Area(region.Ring)
	if regionArea <= 0 {
		return nil
	}
	regionBounds := geom.BoundsOf(region.Ring)

	best, second := 0.0, 0.0
	bestOperator := ""
	for _, terr := range r.territories {
		if !regionBounds.Intersects(terr.bounds) {
			continue
		}

		var overlap float64
		for _, piece := range terr.pieces {
			area := geom.IntersectArea(region.Ring, piece)
			// A degenerate piece must not poison the whole region.
			if math.IsNaN(area) || math.IsInf(area, 0) || area < 0 {
				continue
			}
			overlap += area
		}

		fraction := overlap / regionArea
		if fraction > best {
			second = best
			best = fraction
			bestOperator = terr.operator
		} else if fraction > second {
			second = fraction
		}
	}

	if best <= 0 {
		operator := r.opts.Fallback[strings.ToUpper(region.State)]
		return &Assignment{
			Postcode:   region.Postcode,
			State:      region.State,
			Operator:   operator,
			Overlap:    0,
			Provenance: ProvenanceFallback,
			Version:    version,
		}
	}

	if best > 1 {
		best = 1
	}
	return &Assignment{
		Postcode:   region.Postcode,
		State:      region.State,
		Operator:   bestOperator,
		Overlap:    best,
		Tie:        best-second < r.opts.TieThreshold,
		Provenance: ProvenanceGeometric,
		Version:    version,
	}
}

// validRegion rejects regions with missing geometry or a non-numeric
// postcode.
func validRegion(region Region) bool {
	if len(region.Ring) < 3 {
		return false
	}
	if region.Postcode == "" {
		return false
	}
	if _, err := strconv.Atoi(region.Postcode); err != nil {
		return false
	}
	return true
}
