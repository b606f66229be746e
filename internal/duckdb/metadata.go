package duckdb

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a pipeline input file.
type FileFingerprint struct {
	Role    string // clinvar, gnomad, functional
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(role, path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Role:    role,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}, nil
}

// WriteInputs replaces the recorded input files with those of run runID.
func (s *Store) WriteInputs(ctx context.Context, runID string, inputs []FileFingerprint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM inputs"); err != nil {
		return fmt.Errorf("clear inputs: %w", err)
	}
	for _, in := range inputs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO inputs (run_id, role, path, size, mod_time) VALUES (?, ?, ?, ?, ?)",
			runID, in.Role, in.Path, in.Size, in.ModTime); err != nil {
			return fmt.Errorf("insert input %s: %w", in.Role, err)
		}
	}
	return tx.Commit()
}

// Inputs returns the run ID and input files of the stored run, ordered by
// role. The run ID is empty when nothing was recorded.
func (s *Store) Inputs(ctx context.Context) (string, []FileFingerprint, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, role, path, size, mod_time FROM inputs ORDER BY role")
	if err != nil {
		return "", nil, fmt.Errorf("query inputs: %w", err)
	}
	defer rows.Close()

	var runID string
	var out []FileFingerprint
	for rows.Next() {
		var fp FileFingerprint
		if err := rows.Scan(&runID, &fp.Role, &fp.Path, &fp.Size, &fp.ModTime); err != nil {
			return "", nil, fmt.Errorf("scan input: %w", err)
		}
		fp.ModTime = fp.ModTime.UTC()
		out = append(out, fp)
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("iterate inputs: %w", err)
	}
	return runID, out, nil
}
