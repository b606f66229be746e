package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sort"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/dpyd-af/internal/annotate"
)

const variantColumns = `var_id, chrom, pos, ref, alt, rsid, qual, filter_status,
	ac, an, nhomalt, lof, clin_sig, function_status, is_override, category, transcript`

// nullCount maps an unknown count to SQL NULL.
func nullCount(c annotate.Count) any {
	if !c.Known {
		return nil
	}
	return c.Value
}

func nullQuality(q annotate.Quality) any {
	if !q.Known {
		return nil
	}
	return q.Value
}

func scanQuality(n sql.NullFloat64) annotate.Quality {
	if !n.Valid {
		return annotate.Quality{}
	}
	return annotate.KnownQuality(n.Float64)
}

func scanCount(n sql.NullInt64) annotate.Count {
	if !n.Valid {
		return annotate.Count{}
	}
	return annotate.Known(n.Int64)
}

// WriteRecords replaces the stored record set with records, using the
// Appender API. Duplicate IDs keep the first occurrence. The delete and the
// appends run in one transaction, so a failed write leaves the previous
// record set in place.
func (s *Store) WriteRecords(ctx context.Context, records []*annotate.Record) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	// The Appender writes through the raw connection, so the transaction is
	// opened on the connection rather than with BeginTx.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	for _, table := range []string{"population_counts", "variants"} {
		if _, err := conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	seen := make(map[string]bool, len(records))
	deduped := make([]*annotate.Record, 0, len(records))
	for _, r := range records {
		if !seen[r.ID] {
			seen[r.ID] = true
			deduped = append(deduped, r)
		}
	}

	if len(deduped) > 0 {
		if err := appendRows(conn, "variants", func(app *goduckdb.Appender) error {
			for _, r := range deduped {
				if err := app.AppendRow(
					r.ID, r.Chrom, r.Pos, r.Ref, r.Alt, r.RSID, nullQuality(r.Qual), r.Filter,
					nullCount(r.AC), nullCount(r.AN), nullCount(r.Hom),
					r.LOF, r.ClinSig, r.Function, r.Override, string(r.Category), r.Transcript,
				); err != nil {
					return fmt.Errorf("append variant %s: %w", r.ID, err)
				}
			}
			return nil
		}); err != nil {
			return err
		}

		if err := appendRows(conn, "population_counts", func(app *goduckdb.Appender) error {
			for _, r := range deduped {
				for _, p := range sortedPopulations(r) {
					pc := r.Populations[p]
					if err := app.AppendRow(r.ID, p, nullCount(pc.AC), nullCount(pc.AN), nullCount(pc.Hom)); err != nil {
						return fmt.Errorf("append %s counts of %s: %w", p, r.ID, err)
					}
				}
			}
			return nil
		}); err != nil {
			return err
		}
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sortedPopulations(r *annotate.Record) []string {
	pops := make([]string, 0, len(r.Populations))
	for p := range r.Populations {
		pops = append(pops, p)
	}
	sort.Strings(pops)
	return pops
}

func appendRows(conn *sql.Conn, table string, fill func(*goduckdb.Appender) error) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}

	if err := fill(appender); err != nil {
		appender.Close()
		return err
	}
	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush %s: %w", table, err)
	}
	return nil
}

// Records returns every stored record ordered by position then ID.
func (s *Store) Records(ctx context.Context) ([]*annotate.Record, error) {
	return s.queryRecords(ctx, "")
}

// RecordsByCategory returns the stored records assigned category c.
func (s *Store) RecordsByCategory(ctx context.Context, c annotate.Category) ([]*annotate.Record, error) {
	return s.queryRecords(ctx, string(c))
}

func (s *Store) queryRecords(ctx context.Context, category string) ([]*annotate.Record, error) {
	q := "SELECT " + variantColumns + " FROM variants"
	var args []any
	if category != "" {
		q += " WHERE category = ?"
		args = append(args, category)
	}
	q += " ORDER BY pos, var_id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var records []*annotate.Record
	byID := make(map[string]*annotate.Record)
	for rows.Next() {
		var r annotate.Record
		var ac, an, hom sql.NullInt64
		var qual sql.NullFloat64
		var cat string
		if err := rows.Scan(
			&r.ID, &r.Chrom, &r.Pos, &r.Ref, &r.Alt, &r.RSID, &qual, &r.Filter,
			&ac, &an, &hom, &r.LOF, &r.ClinSig, &r.Function, &r.Override, &cat, &r.Transcript,
		); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		r.AC, r.AN, r.Hom = scanCount(ac), scanCount(an), scanCount(hom)
		r.Qual = scanQuality(qual)
		r.Category = annotate.Category(cat)
		r.Populations = make(map[string]annotate.PopulationCounts)
		records = append(records, &r)
		byID[r.ID] = &r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	if err := s.fillPopulations(ctx, byID); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) fillPopulations(ctx context.Context, byID map[string]*annotate.Record) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT var_id, population, ac, an, nhomalt FROM population_counts")
	if err != nil {
		return fmt.Errorf("query population counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, pop string
		var ac, an, hom sql.NullInt64
		if err := rows.Scan(&id, &pop, &ac, &an, &hom); err != nil {
			return fmt.Errorf("scan population counts: %w", err)
		}
		r, ok := byID[id]
		if !ok {
			continue
		}
		r.Populations[pop] = annotate.PopulationCounts{
			AC: scanCount(ac), AN: scanCount(an), Hom: scanCount(hom),
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate population counts: %w", err)
	}
	return nil
}

// CategoryCount is the number of stored records in one category.
type CategoryCount struct {
	Category annotate.Category
	Count    int64
}

// CategoryCounts returns the number of stored records per category, ordered
// by category name.
func (s *Store) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM variants GROUP BY category ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var cat string
		var cc CategoryCount
		if err := rows.Scan(&cat, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		cc.Category = annotate.Category(cat)
		out = append(out, cc)
	}
	return out, rows.Err()
}
