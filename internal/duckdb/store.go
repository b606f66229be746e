// Package duckdb persists classified variant records, input provenance and
// resolved transcripts in a DuckDB database so later stages can query a run
// without re-reading the exported tables.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for one pipeline database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// variants and population_counts carry no key constraints: WriteRecords
// deletes and re-appends the same IDs in one transaction, which DuckDB's
// unique indexes reject. WriteRecords deduplicates IDs itself.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS variants (
		var_id VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		rsid VARCHAR,
		qual DOUBLE,
		filter_status VARCHAR,
		ac BIGINT,
		an BIGINT,
		nhomalt BIGINT,
		lof VARCHAR,
		clin_sig VARCHAR,
		function_status VARCHAR,
		is_override BOOLEAN,
		category VARCHAR,
		transcript VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS population_counts (
		var_id VARCHAR,
		population VARCHAR,
		ac BIGINT,
		an BIGINT,
		nhomalt BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS inputs (
		run_id VARCHAR,
		role VARCHAR,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS transcripts (
		assembly VARCHAR,
		var_id VARCHAR,
		transcript VARCHAR,
		PRIMARY KEY (assembly, var_id)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
