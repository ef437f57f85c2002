package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sunfolio/gridmatch/internal/resolve"
)

// AssignmentStore provides versioned batch storage for resolver output.
type AssignmentStore struct {
	db *DB
}

// NewAssignmentStore creates a new assignment store.
func NewAssignmentStore(db *DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

// ReplaceBatch atomically replaces all assignments of the given version with
// the new batch. Prior versions are untouched; the same version is never
// merged, only superseded.
func (s *AssignmentStore) ReplaceBatch(version string, rows []resolve.Assignment) error {
	if version == "" {
		return fmt.Errorf("version must not be empty")
	}

	tx, err := s.db.BeginTx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assignments WHERE version = ?", version); err != nil {
		return fmt.Errorf("failed to delete prior batch: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO assignments (version, postcode, state, operator, overlap, tie, provenance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, row := range rows {
		tie := 0
		if row.Tie {
			tie = 1
		}
		if _, err := stmt.Exec(version, row.Postcode, row.State, row.Operator, row.Overlap, tie, row.Provenance, now); err != nil {
			return fmt.Errorf("failed to insert assignment %d (%s): %w", i, row.Postcode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// ByVersion returns every assignment of a version, ordered by postcode.
func (s *AssignmentStore) ByVersion(version string) ([]resolve.Assignment, error) {
	rows, err := s.db.sqlDB.Query(`
		SELECT version, postcode, state, operator, overlap, tie, provenance
		FROM assignments WHERE version = ? ORDER BY postcode
	`, version)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []resolve.Assignment
	for rows.Next() {
		var a resolve.Assignment
		var tie int
		if err := rows.Scan(&a.Version, &a.Postcode, &a.State, &a.Operator, &a.Overlap, &tie, &a.Provenance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		a.Tie = tie != 0
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// LatestVersion returns the version of the most recent recorded run, or ""
// when no runs exist.
func (s *AssignmentStore) LatestVersion() (string, error) {
	var version string
	err := s.db.sqlDB.QueryRow("SELECT version FROM runs ORDER BY id DESC LIMIT 1").Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest version: %w", err)
	}
	return version, nil
}

// RecordRun appends one run summary row.
func (s *AssignmentStore) RecordRun(version string, summary resolve.Summary) error {
	_, err := s.db.sqlDB.Exec(`
		INSERT INTO runs (version, processed, skipped, ties, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, version, summary.Processed, summary.Skipped, summary.Ties, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RunRecord is one persisted run summary.
type RunRecord struct {
	Version   string
	Processed int
	Skipped   int
	Ties      int
	CreatedAt string
}

// Runs returns all recorded runs, newest first.
func (s *AssignmentStore) Runs() ([]RunRecord, error) {
	rows, err := s.db.sqlDB.Query(`
		SELECT version, processed, skipped, ties, created_at
		FROM runs ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.Version, &r.Processed, &r.Skipped, &r.Ties, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return out, nil
}
