package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/dpyd-af/internal/datasource/cpic"
	"github.com/inodb/dpyd-af/internal/vcf"
)

func TestAggregator_Build(t *testing.T) {
	records, report := buildFixtureRecords(t)
	require.Len(t, records, 7)
	assert.Equal(t, 7, report.Records)

	assert.Equal(t, []string{
		"1-97547947-T-A",
		"1-97699535-T-C",
		"1-97800000-C-G",
		"1-97850000-A-AT",
		"1-97900000-G-T",
		"1-97915614-C-T",
		"1-97950000-C-A",
	}, ids(records), "sorted by position")

	r := recordByID(records, "1-97915614-C-T")
	require.NotNil(t, r)
	assert.Equal(t, "1", r.Chrom)
	assert.Equal(t, "rs3918290", r.RSID)
	assert.Equal(t, PassFilter, r.Filter)
	assert.Equal(t, Known(1200), r.AC)
	assert.Equal(t, Known(250000), r.AN)
	assert.Equal(t, Known(4), r.Hom)
	assert.Equal(t, "HC", r.LOF)
	assert.Equal(t, "Pathogenic/Likely_pathogenic", r.ClinSig)
	assert.Equal(t, "No function", r.Function)
	assert.True(t, r.Override)
	assert.Equal(t, NA, r.Transcript)
	assert.Equal(t, PopulationCounts{AC: Known(100), AN: Known(20000), Hom: Known(1)}, r.Population("fin"))
	assert.False(t, r.Population("sas").AC.Known, "missing population count")
	assert.False(t, r.Population("sas").AN.Known)

	r = recordByID(records, "1-97699535-T-C")
	require.NotNil(t, r)
	assert.Equal(t, "Decreased function", r.Function, "lookup key normalized")
	assert.Equal(t, NA, r.ClinSig)
	assert.Equal(t, NA, r.LOF)
	assert.False(t, r.Override)

	r = recordByID(records, "1-97850000-A-AT")
	require.NotNil(t, r)
	assert.Equal(t, NA, r.RSID)
	assert.Equal(t, "LC", r.LOF)
	assert.Equal(t, Known(0), r.Population("afr").AN)

	r = recordByID(records, "1-97950000-C-A")
	require.NotNil(t, r)
	assert.Equal(t, "AC0", r.Filter)
	assert.Equal(t, "Likely_pathogenic", r.ClinSig)
}

func TestAggregator_ReportsUnmatched(t *testing.T) {
	_, report := buildFixtureRecords(t)
	assert.Equal(t, []UnmatchedEntry{
		{Kind: LookupFunctional, Key: "rs1801265", Value: "Normal function"},
		{Kind: LookupOverride, Key: "1-97981343-A-C"},
		{Kind: LookupOverride, Key: "1-98039419-C-T"},
	}, report.Unmatched)
}

func TestAggregator_LeavesLookupTableIntact(t *testing.T) {
	table := cpic.Table{"rs1": "No function", "rs2": "Normal function"}
	freq := Index{
		"1-100-A-G": &vcf.Variant{Chrom: "1", Pos: 100, ID: "rs1", Ref: "A", Alt: "G", Filter: "PASS", Info: map[string]interface{}{}},
	}

	cfg := DefaultConfig()
	cfg.Overrides = nil
	records, report := NewAggregator(cfg).Build(freq, nil, table)

	require.Len(t, records, 1)
	assert.Equal(t, "No function", records[0].Function)
	assert.Len(t, table, 2)
	assert.Equal(t, []UnmatchedEntry{{Kind: LookupFunctional, Key: "rs2", Value: "Normal function"}}, report.Unmatched)
}

func TestAggregator_MultipleRSIDs(t *testing.T) {
	freq := Index{
		"1-100-A-G": &vcf.Variant{Chrom: "1", Pos: 100, ID: "rs9;rs1", Ref: "A", Alt: "G", Filter: ".", Info: map[string]interface{}{}},
	}
	records, _ := NewAggregator(DefaultConfig()).Build(freq, Index{}, cpic.Table{"rs1": "Decreased function"})

	require.Len(t, records, 1)
	assert.Equal(t, "rs1", records[0].RSID)
	assert.Equal(t, "Decreased function", records[0].Function)
	assert.Equal(t, PassFilter, records[0].Filter)
	assert.Equal(t, NA, records[0].LOF, "no vep field")
	for _, p := range DefaultPopulations {
		assert.False(t, records[0].Population(p).AN.Known, p)
	}
}
