package annotate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/dpyd-af/internal/datasource/cpic"
	"github.com/inodb/dpyd-af/internal/vcf"
)

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}

// buildFixtureRecords loads the DPYD fixtures and aggregates them.
func buildFixtureRecords(t *testing.T) ([]*Record, *Report) {
	t.Helper()
	cfg := DefaultConfig()
	loader := NewLoader(cfg.Region, cfg.Gene)

	gp, err := vcf.NewParser(findTestFile(t, "gnomad_dpyd.vcf"))
	require.NoError(t, err)
	defer gp.Close()
	freq, _, err := loader.Load(context.Background(), "gnomad", gp, NewVEPGene(gp.Header(), cfg.VEPKey))
	require.NoError(t, err)

	cp, err := vcf.NewParser(findTestFile(t, "clinvar_dpyd.vcf"))
	require.NoError(t, err)
	defer cp.Close()
	disease, _, err := loader.Load(context.Background(), "clinvar", cp, ClinVarGene{})
	require.NoError(t, err)

	table, err := cpic.Load(findTestFile(t, "cpic_dpyd.tsv"))
	require.NoError(t, err)

	agg := NewAggregator(cfg)
	f, _ := vcf.FindVEPFormat(gp.Header(), cfg.VEPKey)
	agg.SetVEPFormat(f)
	return agg.Build(freq, disease, table)
}

func recordByID(records []*Record, id string) *Record {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func ids(records []*Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
