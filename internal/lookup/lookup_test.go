package lookup

import (
	"path/filepath"
	"testing"

	"github.com/sunfolio/gridmatch/internal/resolve"
)

func buildTestIndex(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "lookup.bleve")
	rows := []resolve.Assignment{
		{Postcode: "2000", State: "NSW", Operator: "AUSGRID", Overlap: 0.98, Provenance: resolve.ProvenanceGeometric, Version: "v1"},
		{Postcode: "3000", State: "VIC", Operator: "CITIPOWER", Overlap: 0.91, Provenance: resolve.ProvenanceGeometric, Version: "v1"},
		{Postcode: "0800", State: "NT", Operator: "POWERWATER", Overlap: 0, Provenance: resolve.ProvenanceFallback, Version: "v1"},
	}
	if err := Build(dir, rows); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return dir
}

func TestSearchByPostcode(t *testing.T) {
	dir := buildTestIndex(t)

	hits, err := Search(dir, "2000", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for postcode 2000")
	}
	if hits[0].Postcode != "2000" || hits[0].Operator != "AUSGRID" {
		t.Errorf("top hit = %+v, want postcode 2000 -> AUSGRID", hits[0])
	}
	if hits[0].Version != "v1" {
		t.Errorf("version = %q, want v1", hits[0].Version)
	}
}

func TestSearchByOperator(t *testing.T) {
	dir := buildTestIndex(t)

	hits, err := Search(dir, "citipower", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for operator citipower")
	}
	if hits[0].Postcode != "3000" {
		t.Errorf("top hit = %+v, want postcode 3000", hits[0])
	}
}

func TestSearchByState(t *testing.T) {
	dir := buildTestIndex(t)

	hits, err := Search(dir, "NT", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits for NT, want 1", len(hits))
	}
	if hits[0].Provenance != resolve.ProvenanceFallback {
		t.Errorf("provenance = %q, want fallback", hits[0].Provenance)
	}
}

func TestBuildReplacesExistingIndex(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lookup.bleve")

	first := []resolve.Assignment{
		{Postcode: "2000", State: "NSW", Operator: "AUSGRID", Version: "v1", Provenance: resolve.ProvenanceGeometric},
	}
	if err := Build(dir, first); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	second := []resolve.Assignment{
		{Postcode: "3000", State: "VIC", Operator: "CITIPOWER", Version: "v2", Provenance: resolve.ProvenanceGeometric},
	}
	if err := Build(dir, second); err != nil {
		t.Fatalf("second Build: %v", err)
	}

	hits, err := Search(dir, "2000", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("stale hits after rebuild: %+v", hits)
	}
}
