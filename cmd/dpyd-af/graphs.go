package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/dpyd-af/internal/annotate"
	"github.com/inodb/dpyd-af/internal/duckdb"
	"github.com/inodb/dpyd-af/internal/frequency"
	"github.com/inodb/dpyd-af/internal/output"
)

// Graph stage outputs
const (
	summaryFile = "frequency_summary.tsv"
	pointsFile  = "variant_frequencies.tsv"
	chartFile   = "frequency_chart.html"
)

type graphsOptions struct {
	input      string
	dbPath     string
	outputDir  string
	categories []string
}

func newGraphsCmd(a *app) *cobra.Command {
	var opts graphsOptions

	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Summarize allele frequencies per category and population",
		Long: `Read the ALL table (or the DuckDB store written by "tables --db"), sum
allele frequencies per category and population, and write the summary
tables and an HTML bar chart.`,
		Example: `  dpyd-af graphs --input out/all_variants.tsv -o out
  dpyd-af graphs --db out/dpyd.duckdb -o out
  dpyd-af graphs --db out/dpyd.duckdb --category OVERRIDE --category FUNCTIONAL -o out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.input != "" && opts.dbPath != "" {
				return fmt.Errorf("--input and --db are mutually exclusive")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runGraphs(cmd.Context(), opts, cfg, a.logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "input", "", "ALL table to summarize (default <output-dir>/all_variants.tsv)")
	f.StringVar(&opts.dbPath, "db", "", "Read records from this DuckDB database instead of a TSV")
	f.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory for the summary tables and chart")
	f.StringSliceVar(&opts.categories, "category", nil, "Only summarize these categories (repeatable)")
	f.String("gene", "", "Gene symbol used in chart titles")
	cmd.PreRunE = bindFlags(map[string]string{keyGene: "gene"})

	return cmd
}

func runGraphs(ctx context.Context, opts graphsOptions, cfg annotate.Config, logger *zap.Logger) error {
	records, err := graphRecords(ctx, opts, cfg)
	if err != nil {
		return err
	}
	logger.Info("loaded records", zap.Int("records", len(records)))

	agg := frequency.NewAggregator(cfg.Populations)
	agg.SetLogger(logger)
	summary := agg.Summarize(records)

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{summaryFile, func(w io.Writer) error { return output.WriteSummary(w, summary) }},
		{pointsFile, func(w io.Writer) error { return output.WritePoints(w, summary) }},
		{chartFile, func(w io.Writer) error { return output.RenderChart(w, cfg.Gene, summary) }},
	}
	for _, o := range outputs {
		path := filepath.Join(opts.outputDir, o.name)
		if err := writeFile(path, o.write); err != nil {
			return err
		}
		logger.Info("wrote output", zap.String("path", path))
	}
	return nil
}

// graphRecords returns the records of the ALL table, restricted to
// opts.categories when any are given.
func graphRecords(ctx context.Context, opts graphsOptions, cfg annotate.Config) ([]*annotate.Record, error) {
	categories, err := parseCategories(opts.categories)
	if err != nil {
		return nil, err
	}

	if opts.dbPath == "" {
		input := opts.input
		if input == "" {
			input = filepath.Join(opts.outputDir, tableFileName("all"))
		}
		records, err := output.ReadRecordsFile(input, cfg.Populations)
		if err != nil || len(categories) == 0 {
			return records, err
		}
		keep := make(map[annotate.Category]bool, len(categories))
		for _, c := range categories {
			keep[c] = true
		}
		var filtered []*annotate.Record
		for _, r := range records {
			if keep[r.Category] {
				filtered = append(filtered, r)
			}
		}
		return filtered, nil
	}

	if _, err := os.Stat(opts.dbPath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := duckdb.Open(opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if len(categories) > 0 {
		var records []*annotate.Record
		for _, c := range categories {
			rs, err := store.RecordsByCategory(ctx, c)
			if err != nil {
				return nil, err
			}
			records = append(records, rs...)
		}
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Pos != records[j].Pos {
				return records[i].Pos < records[j].Pos
			}
			return records[i].ID < records[j].ID
		})
		return records, nil
	}

	all, err := store.Records(ctx)
	if err != nil {
		return nil, err
	}
	// The ALL table is every record with an assigned category.
	var records []*annotate.Record
	for _, r := range all {
		if r.Category != annotate.CategoryNone {
			records = append(records, r)
		}
	}
	return records, nil
}

// parseCategories validates category names and drops duplicates. NONE is not
// accepted because unmatched records never reach the ALL table.
func parseCategories(names []string) ([]annotate.Category, error) {
	seen := make(map[annotate.Category]bool, len(names))
	var out []annotate.Category
	for _, name := range names {
		c := annotate.ParseCategory(name)
		if c == annotate.CategoryNone {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
