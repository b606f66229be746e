package frequency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/dpyd-af/internal/annotate"
)

var k = annotate.Known

func TestAF(t *testing.T) {
	tests := []struct {
		name   string
		ac, an annotate.Count
		want   float64
		ok     bool
	}{
		{"nfe example", k(12), k(5000), 0.0024, true},
		{"zero count", k(0), k(100), 0, true},
		{"all alleles", k(100), k(100), 1, true},
		{"zero an", k(0), k(0), 0, false},
		{"missing an", k(3), annotate.Count{}, 0, false},
		{"missing ac", annotate.Count{}, k(100), 0, false},
		{"negative ac", k(-1), k(100), 0, false},
		{"ac above an", k(101), k(100), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AF(tt.ac, tt.an)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.False(t, math.IsNaN(got))
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestProportion(t *testing.T) {
	pct, ok := Proportion(0.0008, 0.04)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, pct, 1e-9)

	pct, ok = Proportion(0.1, 0)
	assert.False(t, ok)
	assert.Zero(t, pct)
}

func record(id string, c annotate.Category, ac, an annotate.Count, pops map[string]annotate.PopulationCounts) *annotate.Record {
	return &annotate.Record{ID: id, Category: c, AC: ac, AN: an, Populations: pops}
}

func TestSummarize(t *testing.T) {
	records := []*annotate.Record{
		record("1-1-A-G", annotate.CategoryLOF, k(12), k(10000), map[string]annotate.PopulationCounts{
			"afr": {AC: k(0), AN: k(0)},
			"nfe": {AC: k(12), AN: k(5000)},
		}),
		record("1-2-A-G", annotate.CategoryOverride, k(4), k(10000), map[string]annotate.PopulationCounts{
			"afr": {AC: k(2), AN: k(1000)},
			"nfe": {AC: k(8), AN: k(10000)},
		}),
		record("1-3-A-G", annotate.CategoryOverride, annotate.Count{}, k(10000), map[string]annotate.PopulationCounts{
			"afr": {AC: k(1), AN: k(1000)},
		}),
		record("1-4-A-G", annotate.CategoryNone, k(500), k(1000), map[string]annotate.PopulationCounts{
			"afr": {AC: k(500), AN: k(1000)},
		}),
	}

	s := NewAggregator([]string{"afr", "nfe"}).Summarize(records)

	assert.InDelta(t, 0.0024, s.Sums[annotate.CategoryLOF]["nfe"], 1e-12)
	assert.Zero(t, s.Sums[annotate.CategoryLOF]["afr"], "AN=0 excluded")
	assert.InDelta(t, 0.003, s.Sums[annotate.CategoryOverride]["afr"], 1e-12)
	assert.InDelta(t, 0.0008, s.Sums[annotate.CategoryOverride]["nfe"], 1e-12)
	assert.InDelta(t, 0.003, s.Totals["afr"], 1e-12, "NONE records ignored")
	assert.InDelta(t, 0.0032, s.Totals["nfe"], 1e-12)

	assert.InDelta(t, 0.0012, s.Overall[annotate.CategoryLOF], 1e-12)
	assert.InDelta(t, 0.0004, s.Overall[annotate.CategoryOverride], 1e-12)
	assert.InDelta(t, 0.0016, s.OverallTotal, 1e-12)

	assert.Equal(t, 1, s.Undefined["afr"])
	assert.Equal(t, 1, s.Undefined["nfe"], "population absent from record")
	assert.Equal(t, 1, s.Undefined[Overall])

	pct, ok := s.Proportion(annotate.CategoryOverride, "nfe")
	require.True(t, ok)
	assert.InDelta(t, 25.0, pct, 1e-9)

	pct, ok = s.Proportion(annotate.CategoryLOF, Overall)
	require.True(t, ok)
	assert.InDelta(t, 75.0, pct, 1e-9)

	assert.Len(t, s.Points, 6)
	for _, p := range s.Points {
		assert.NotEqual(t, "1-4-A-G", p.VariantID)
	}
}

func TestSummarize_ZeroTotalWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	agg := NewAggregator([]string{"fin"})
	agg.SetLogger(zap.New(core))

	s := agg.Summarize([]*annotate.Record{
		record("1-1-A-G", annotate.CategoryClinical, k(0), k(100), map[string]annotate.PopulationCounts{
			"fin": {AC: k(0), AN: k(100)},
		}),
	})

	pct, ok := s.Proportion(annotate.CategoryClinical, "fin")
	assert.False(t, ok)
	assert.Zero(t, pct)
	assert.Equal(t, 1, logs.FilterMessage("total frequency is zero, proportions reported as 0").Len())
}

func TestSummarize_Empty(t *testing.T) {
	s := NewAggregator(annotate.DefaultPopulations).Summarize(nil)
	for _, c := range annotate.Categories {
		for _, p := range annotate.DefaultPopulations {
			assert.Zero(t, s.Sums[c][p])
		}
	}
	assert.Empty(t, s.Points)
}
