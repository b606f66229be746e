package duckdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CachedTranscripts returns the transcripts already resolved for ids on the
// given assembly. IDs never resolved are absent from the result.
func (s *Store) CachedTranscripts(ctx context.Context, assembly string, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, assembly)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	rows, err := s.db.QueryContext(ctx,
		"SELECT var_id, transcript FROM transcripts WHERE assembly = ? AND var_id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, t string
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		out[id] = t
	}
	return out, rows.Err()
}

// PutTranscripts stores resolved transcripts, replacing earlier values.
func (s *Store) PutTranscripts(ctx context.Context, assembly string, transcripts map[string]string) error {
	if len(transcripts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(transcripts))
	for id := range transcripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO transcripts (assembly, var_id, transcript) VALUES (?, ?, ?)",
			assembly, id, transcripts[id]); err != nil {
			return fmt.Errorf("insert transcript %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// ClearTranscripts removes all cached transcripts.
func (s *Store) ClearTranscripts(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM transcripts")
	return err
}
