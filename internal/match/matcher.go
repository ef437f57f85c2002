// Package match ranks candidate polygons against a query polygon by IoU
// similarity. Used to compare a user-drawn rooftop outline against catalog
// and reference shapes.
package match

import (
	"sort"
	"sync"

	"github.com/sunfolio/gridmatch/internal/geom"
)

// Candidate is a named polygon submitted for ranking.
type Candidate struct {
	ID    string
	Shape geom.Polygon
}

// Score is one ranked result.
type Score struct {
	ID    string
	Score float64
}

// Rank scores every candidate against the query and returns them sorted by
// descending IoU. Candidates with equal scores keep their submission order.
// The function is pure: inputs are never mutated and the result is
// deterministic.
func Rank(query geom.Polygon, candidates []Candidate) []Score {
	return RankWorkers(query, candidates, 1)
}

// RankWorkers is Rank with candidate scoring spread over up to workers
// goroutines. Scores land in a slice addressed by candidate index, so the
// final stable sort sees the same input regardless of scheduling.
func RankWorkers(query geom.Polygon, candidates []Candidate, workers int) []Score {
	if len(candidates) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	scores := make([]Score, len(candidates))

	if workers == 1 {
		for i, cand := range candidates {
			scores[i] = Score{ID: cand.ID, Score: geom.IoU(query, cand.Shape)}
		}
	} else {
		jobs := make(chan int, workers*2)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					scores[i] = Score{ID: candidates[i].ID, Score: geom.IoU(query, candidates[i].Shape)}
				}
			}()
		}
		for i := range candidates {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Top returns the best k results from Rank. k <= 0 or k beyond the candidate
// count returns everything.
func Top(query geom.Polygon, candidates []Candidate, k int) []Score {
	ranked := Rank(query, candidates)
	if k <= 0 || k >= len(ranked) {
		return ranked
	}
	return ranked[:k]
}
