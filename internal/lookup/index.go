// Package lookup maintains a small full-text index over resolved
// assignments so "who serves postcode 2000" style questions can be answered
// without touching the database. The index is rebuilt from scratch after
// every resolver run; it is a cache, never the source of truth.
package lookup

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/sunfolio/gridmatch/internal/resolve"
)

// assignmentDoc is the indexed representation of one assignment.
type assignmentDoc struct {
	Postcode   string  `json:"postcode"`
	State      string  `json:"state"`
	Operator   string  `json:"operator"`
	Provenance string  `json:"provenance"`
	Overlap    float64 `json:"overlap"`
	Tie        bool    `json:"tie"`
	Version    string  `json:"version"`
}

// Build replaces the index directory with a fresh index over the given
// assignments.
func Build(dir string, rows []resolve.Assignment) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("reset lookup index dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lookup index dir: %w", err)
	}

	index, err := bleve.New(dir, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create lookup index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for _, row := range rows {
		doc := assignmentDoc{
			Postcode:   row.Postcode,
			State:      row.State,
			Operator:   row.Operator,
			Provenance: row.Provenance,
			Overlap:    row.Overlap,
			Tie:        row.Tie,
			Version:    row.Version,
		}
		if err := batch.Index(row.Postcode, doc); err != nil {
			return fmt.Errorf("index assignment %s: %w", row.Postcode, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("commit lookup batch: %w", err)
	}
	return nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "operator"

	docMapping := bleve.NewDocumentMapping()

	postcodeField := bleve.NewTextFieldMapping()
	postcodeField.Store = true
	postcodeField.Index = true
	postcodeField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("postcode", postcodeField)

	stateField := bleve.NewTextFieldMapping()
	stateField.Store = true
	stateField.Index = true
	stateField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("state", stateField)

	operatorField := bleve.NewTextFieldMapping()
	operatorField.Store = true
	operatorField.Index = true
	docMapping.AddFieldMappingsAt("operator", operatorField)

	provenanceField := bleve.NewTextFieldMapping()
	provenanceField.Store = true
	provenanceField.Index = true
	provenanceField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("provenance", provenanceField)

	overlapField := bleve.NewNumericFieldMapping()
	overlapField.Store = true
	overlapField.Index = false
	docMapping.AddFieldMappingsAt("overlap", overlapField)

	versionField := bleve.NewTextFieldMapping()
	versionField.Store = true
	versionField.Index = false
	docMapping.AddFieldMappingsAt("version", versionField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}
