package lookup

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// Hit is one lookup result.
type Hit struct {
	Postcode   string
	State      string
	Operator   string
	Provenance string
	Overlap    float64
	Version    string
	Score      float64
}

// Search queries the lookup index. The query matches postcodes exactly and
// operator/state names fuzzily; postcode hits are boosted so "2000" finds
// the region before any operator containing those digits.
func Search(dir string, query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	index, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open lookup index: %w", err)
	}
	defer index.Close()

	postcodeQuery := bleve.NewTermQuery(query)
	postcodeQuery.SetField("postcode")
	postcodeQuery.SetBoost(3.0)

	stateQuery := bleve.NewTermQuery(query)
	stateQuery.SetField("state")
	stateQuery.SetBoost(2.0)

	operatorQuery := bleve.NewMatchQuery(query)
	operatorQuery.SetField("operator")
	operatorQuery.SetBoost(1.0)

	queries := []blevequery.Query{postcodeQuery, stateQuery, operatorQuery}
	disjunction := bleve.NewDisjunctionQuery(queries...)

	req := bleve.NewSearchRequestOptions(disjunction, topK, 0, false)
	req.Fields = []string{"postcode", "state", "operator", "provenance", "overlap", "version"}

	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search lookup index: %w", err)
	}

	var hits []Hit
	for _, hit := range res.Hits {
		postcode, _ := hit.Fields["postcode"].(string)
		state, _ := hit.Fields["state"].(string)
		operator, _ := hit.Fields["operator"].(string)
		provenance, _ := hit.Fields["provenance"].(string)
		overlap, _ := hit.Fields["overlap"].(float64)
		version, _ := hit.Fields["version"].(string)
		hits = append(hits, Hit{
			Postcode:   postcode,
			State:      state,
			Operator:   operator,
			Provenance: provenance,
			Overlap:    overlap,
			Version:    version,
			Score:      hit.Score,
		})
	}
	return hits, nil
}
