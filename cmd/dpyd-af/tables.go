package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/dpyd-af/internal/annotate"
	"github.com/inodb/dpyd-af/internal/datasource/cpic"
	"github.com/inodb/dpyd-af/internal/datasource/variantvalidator"
	"github.com/inodb/dpyd-af/internal/duckdb"
	"github.com/inodb/dpyd-af/internal/output"
	"github.com/inodb/dpyd-af/internal/vcf"
)

// tablesOptions are the per-run inputs of the tables stage.
type tablesOptions struct {
	clinvar     string
	gnomad      string
	functional  string
	outputDir   string
	transcripts bool
	dbPath      string
	clearCache  bool
}

// transcriptLookup resolves variant IDs to transcript HGVS descriptions.
// On error the returned map holds whatever was resolved before the failure.
type transcriptLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]string, error)
}

func newTablesCmd(a *app) *cobra.Command {
	var opts tablesOptions

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build the filtered variant tables",
		Long: `Load ClinVar and gnomAD records for the configured gene and region, join
them with the functional-status table and override list, classify each
variant, and write one TSV per category plus the ALL and clean tables.`,
		Example: `  dpyd-af tables --clinvar clinvar.vcf.gz --gnomad gnomad.vcf.bgz --functional cpic_dpyd.tsv
  dpyd-af tables --clinvar c.vcf --gnomad g.vcf --gene DPYD --region 1:97543299-98386615 -o out
  dpyd-af tables --clinvar c.vcf --gnomad g.vcf --transcripts --db out/dpyd.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var lookup transcriptLookup
			if opts.transcripts {
				client := variantvalidator.New(transcriptOptions())
				client.SetLogger(a.logger)
				lookup = client
			}

			return runTables(cmd.Context(), opts, cfg, lookup, a.logger)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.clinvar, "clinvar", "", "ClinVar VCF (plain or gzip)")
	f.StringVar(&opts.gnomad, "gnomad", "", "gnomAD sites VCF (plain, gzip or bgzip)")
	f.StringVar(&opts.functional, "functional", "", "CPIC rsID to functional-status table (TSV or CSV)")
	f.StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory for the exported tables")
	f.BoolVar(&opts.transcripts, "transcripts", false, "Resolve transcript HGVS via VariantValidator")
	f.StringVar(&opts.dbPath, "db", "", "Also store records in this DuckDB database")
	f.BoolVar(&opts.clearCache, "clear-cache", false, "Drop cached transcripts in --db before the lookup")
	f.String("gene", "", "Gene symbol (default from config: DPYD)")
	f.String("region", "", "Gene region chrom:start-end")
	f.String("assembly", "", "Genome assembly for transcript lookup: GRCh37 or GRCh38")
	f.StringSlice("override", nil, "Variant IDs forced into the OVERRIDE category (repeatable)")

	_ = cmd.MarkFlagRequired("clinvar")
	_ = cmd.MarkFlagRequired("gnomad")

	cmd.PreRunE = bindFlags(map[string]string{
		keyGene:      "gene",
		keyRegion:    "region",
		keyAssembly:  "assembly",
		keyOverrides: "override",
	})

	return cmd
}

// runTables executes the tables stage end to end.
func runTables(ctx context.Context, opts tablesOptions, cfg annotate.Config, lookup transcriptLookup, logger *zap.Logger) error {
	disease, freq, vepFormat, err := loadSources(ctx, opts, cfg, logger)
	if err != nil {
		return err
	}

	functional := cpic.Table{}
	if opts.functional != "" {
		functional, err = cpic.Load(opts.functional)
		if err != nil {
			return err
		}
		logger.Info("loaded functional-status table",
			zap.String("path", opts.functional), zap.Int("entries", len(functional)))
	}

	agg := annotate.NewAggregator(cfg)
	agg.SetLogger(logger)
	agg.SetVEPFormat(vepFormat)
	records, report := agg.Build(freq, disease, functional)

	tables := annotate.NewClassifier(cfg).Split(records)

	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// The clean table is exported before transcripts are attached.
	if err := writeTable(opts.outputDir, "clean", tables.Clean, cfg.Populations); err != nil {
		return err
	}

	var store *duckdb.Store
	if opts.dbPath != "" {
		store, err = duckdb.Open(opts.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if opts.clearCache {
			if err := store.ClearTranscripts(ctx); err != nil {
				return err
			}
			logger.Info("cleared transcript cache", zap.String("db", opts.dbPath))
		}
	} else if opts.clearCache {
		logger.Warn("--clear-cache has no effect without --db")
	}

	if lookup != nil {
		if err := attachTranscripts(ctx, tables, lookup, store, viper.GetString(keyAssembly), logger); err != nil {
			return err
		}
	}

	for _, t := range tables.Filtered() {
		if err := writeTable(opts.outputDir, t.Name, t.Records, cfg.Populations); err != nil {
			return err
		}
		logger.Info("wrote table", zap.String("table", t.Name), zap.Int("records", len(t.Records)))
	}

	if store != nil {
		runID := uuid.NewString()
		if err := storeRun(ctx, store, runID, opts, tables.Clean); err != nil {
			return err
		}
		logger.Info("stored records",
			zap.String("db", opts.dbPath),
			zap.String("run_id", runID),
			zap.Int("records", len(tables.Clean)))

		counts, err := store.CategoryCounts(ctx)
		if err != nil {
			return err
		}
		for _, c := range counts {
			logger.Info("stored category", zap.String("category", string(c.Category)), zap.Int64("records", c.Count))
		}
	}

	logger.Info("tables complete",
		zap.Int("records", len(records)),
		zap.Int("all", len(tables.All)),
		zap.Int("unmatched_lookup_entries", len(report.Unmatched)))
	return nil
}

// loadSources loads both VCFs concurrently. Each source is read in a single
// pass on its own goroutine.
func loadSources(ctx context.Context, opts tablesOptions, cfg annotate.Config, logger *zap.Logger) (disease, freq annotate.Index, vepFormat vcf.VEPFormat, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := vcf.NewParser(opts.clinvar)
		if err != nil {
			return fmt.Errorf("clinvar: %w", err)
		}
		defer p.Close()

		l := annotate.NewLoader(cfg.Region, cfg.Gene)
		l.SetLogger(logger)
		disease, _, err = l.Load(gctx, "clinvar", p, annotate.ClinVarGene{})
		return err
	})

	g.Go(func() error {
		p, err := vcf.NewParser(opts.gnomad)
		if err != nil {
			return fmt.Errorf("gnomad: %w", err)
		}
		defer p.Close()

		key := cfg.VEPKey
		if key == "" {
			key = "vep"
		}
		if f, ok := vcf.FindVEPFormat(p.Header(), key); ok {
			vepFormat = f
		} else {
			logger.Warn("VEP format not declared in header, using default field positions",
				zap.String("key", key))
		}

		l := annotate.NewLoader(cfg.Region, cfg.Gene)
		l.SetLogger(logger)
		freq, _, err = l.Load(gctx, "gnomad", p, annotate.NewVEPGene(p.Header(), key))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, vcf.VEPFormat{}, err
	}
	return disease, freq, vepFormat, nil
}

// attachTranscripts resolves transcripts for every record of the category
// tables. Cached values in store are used first and new ones are saved.
func attachTranscripts(ctx context.Context, tables *annotate.Tables, lookup transcriptLookup, store *duckdb.Store, assembly string, logger *zap.Logger) error {
	seen := make(map[string]bool)
	var ids []string
	var targets []*annotate.Record
	for _, t := range tables.Filtered() {
		for _, r := range t.Records {
			if !seen[r.ID] {
				seen[r.ID] = true
				ids = append(ids, r.ID)
				targets = append(targets, r)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	resolved := make(map[string]string, len(ids))
	pending := ids
	if store != nil {
		cached, err := store.CachedTranscripts(ctx, assembly, ids)
		if err != nil {
			return err
		}
		resolved = cached
		pending = pending[:0:0]
		for _, id := range ids {
			if _, ok := cached[id]; !ok {
				pending = append(pending, id)
			}
		}
		logger.Debug("transcript cache", zap.Int("hits", len(cached)), zap.Int("misses", len(pending)))
	}

	if len(pending) > 0 {
		found, err := lookup.Lookup(ctx, pending)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("transcript lookup: %w", ctx.Err())
			}
			logger.Warn("transcript lookup failed, unresolved variants get NA",
				zap.Int("requested", len(pending)),
				zap.Int("resolved", len(found)),
				zap.Error(err))
		}
		for id, t := range found {
			resolved[id] = t
		}
		if store != nil {
			if err := store.PutTranscripts(ctx, assembly, found); err != nil {
				return err
			}
		}
	}

	missing := 0
	for _, r := range targets {
		if t, ok := resolved[r.ID]; ok {
			r.Transcript = t
		} else {
			r.Transcript = annotate.NA
			missing++
		}
	}
	logger.Info("attached transcripts",
		zap.Int("variants", len(targets)),
		zap.Int("unresolved", missing))
	return nil
}

func tableFileName(name string) string {
	return name + "_variants.tsv"
}

func writeTable(dir, name string, records []*annotate.Record, populations []string) error {
	path := filepath.Join(dir, tableFileName(name))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := output.NewTabWriter(f, populations).WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// storeRun replaces the stored records and input fingerprints.
func storeRun(ctx context.Context, store *duckdb.Store, runID string, opts tablesOptions, records []*annotate.Record) error {
	if err := store.WriteRecords(ctx, records); err != nil {
		return fmt.Errorf("store records: %w", err)
	}

	var inputs []duckdb.FileFingerprint
	for _, in := range []struct{ role, path string }{
		{"clinvar", opts.clinvar},
		{"gnomad", opts.gnomad},
		{"functional", opts.functional},
	} {
		if in.path == "" {
			continue
		}
		fp, err := duckdb.StatFile(in.role, in.path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", in.role, err)
		}
		inputs = append(inputs, fp)
	}
	return store.WriteInputs(ctx, runID, inputs)
}
