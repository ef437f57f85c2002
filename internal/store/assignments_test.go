package store

import (
	"path/filepath"
	"testing"

	"github.com/sunfolio/gridmatch/internal/resolve"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "gridmatch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleBatch(version string) []resolve.Assignment {
	return []resolve.Assignment{
		{Postcode: "2000", State: "NSW", Operator: "AUSGRID", Overlap: 0.97, Provenance: resolve.ProvenanceGeometric, Version: version},
		{Postcode: "3000", State: "VIC", Operator: "CITIPOWER", Overlap: 0.88, Tie: true, Provenance: resolve.ProvenanceGeometric, Version: version},
		{Postcode: "6999", State: "WA", Operator: "WESTERNPOWER", Overlap: 0, Provenance: resolve.ProvenanceFallback, Version: version},
	}
}

func TestReplaceBatchRoundTrip(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)

	if err := store.ReplaceBatch("v1", sampleBatch("v1")); err != nil {
		t.Fatalf("ReplaceBatch: %v", err)
	}

	got, err := store.ByVersion("v1")
	if err != nil {
		t.Fatalf("ByVersion: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d assignments, want 3", len(got))
	}

	// Ordered by postcode.
	if got[0].Postcode != "2000" || got[1].Postcode != "3000" || got[2].Postcode != "6999" {
		t.Errorf("order = %s %s %s", got[0].Postcode, got[1].Postcode, got[2].Postcode)
	}
	if !got[1].Tie {
		t.Error("tie flag lost in round trip")
	}
	if got[2].Provenance != resolve.ProvenanceFallback {
		t.Errorf("provenance = %q", got[2].Provenance)
	}
}

func TestReplaceBatchSupersedes(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)

	if err := store.ReplaceBatch("v1", sampleBatch("v1")); err != nil {
		t.Fatalf("first batch: %v", err)
	}

	// Re-run under the same version with a different outcome: the old batch
	// must vanish, not merge.
	replacement := []resolve.Assignment{
		{Postcode: "2000", State: "NSW", Operator: "ENDEAVOUR", Overlap: 0.55, Provenance: resolve.ProvenanceGeometric, Version: "v1"},
	}
	if err := store.ReplaceBatch("v1", replacement); err != nil {
		t.Fatalf("replacement batch: %v", err)
	}

	got, err := store.ByVersion("v1")
	if err != nil {
		t.Fatalf("ByVersion: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d assignments after replacement, want 1", len(got))
	}
	if got[0].Operator != "ENDEAVOUR" {
		t.Errorf("operator = %q, want ENDEAVOUR", got[0].Operator)
	}
}

func TestReplaceBatchLeavesOtherVersionsAlone(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)

	if err := store.ReplaceBatch("v1", sampleBatch("v1")); err != nil {
		t.Fatalf("v1 batch: %v", err)
	}
	if err := store.ReplaceBatch("v2", sampleBatch("v2")[:1]); err != nil {
		t.Fatalf("v2 batch: %v", err)
	}

	v1, err := store.ByVersion("v1")
	if err != nil {
		t.Fatalf("ByVersion v1: %v", err)
	}
	if len(v1) != 3 {
		t.Errorf("v1 has %d assignments after v2 write, want 3", len(v1))
	}
}

func TestReplaceBatchEmptyVersion(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)
	if err := store.ReplaceBatch("", nil); err == nil {
		t.Fatal("expected error for empty version")
	}
}

func TestRunsAndLatestVersion(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)

	latest, err := store.LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion: %v", err)
	}
	if latest != "" {
		t.Errorf("latest = %q on empty db, want empty", latest)
	}

	if err := store.RecordRun("v1", resolve.Summary{Processed: 100, Skipped: 2, Ties: 5}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun("v2", resolve.Summary{Processed: 101, Skipped: 1, Ties: 4}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	latest, err = store.LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion: %v", err)
	}
	if latest != "v2" {
		t.Errorf("latest = %q, want v2", latest)
	}

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].Version != "v2" || runs[0].Processed != 101 {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	store := NewAssignmentStore(db)

	if err := store.ReplaceBatch("v1", sampleBatch("v1")); err != nil {
		t.Fatalf("ReplaceBatch: %v", err)
	}
	if err := store.RecordRun("v1", resolve.Summary{Processed: 3}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.AssignmentCount != 3 {
		t.Errorf("assignment count = %d, want 3", stats.AssignmentCount)
	}
	if stats.VersionCount != 1 {
		t.Errorf("version count = %d, want 1", stats.VersionCount)
	}
	if stats.RunCount != 1 {
		t.Errorf("run count = %d, want 1", stats.RunCount)
	}
}
