// Package annotate joins population-frequency and disease-annotation
// variant sources into flat records and assigns clinical categories.
package annotate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/dpyd-af/internal/datasource/cpic"
	"github.com/inodb/dpyd-af/internal/vcf"
)

// Lookup kinds reported for entries that matched no variant.
const (
	LookupFunctional = "functional_status"
	LookupOverride   = "override"
)

// UnmatchedEntry is a lookup entry that no variant consumed.
type UnmatchedEntry struct {
	Kind  string
	Key   string
	Value string
}

// Report summarizes one aggregation run.
type Report struct {
	Records   int
	Unmatched []UnmatchedEntry
}

// Aggregator builds one Record per population-frequency variant.
type Aggregator struct {
	cfg       Config
	overrides map[string]bool
	vepKey    string
	lofIndex  int
	logger    *zap.Logger
}

// NewAggregator creates an aggregator using the gnomAD v2 VEP layout until
// SetVEPFormat is called.
func NewAggregator(cfg Config) *Aggregator {
	key := cfg.VEPKey
	if key == "" {
		key = "vep"
	}
	return &Aggregator{
		cfg:       cfg,
		overrides: toSet(cfg.Overrides),
		vepKey:    key,
		lofIndex:  64,
		logger:    zap.NewNop(),
	}
}

// SetVEPFormat uses the field layout declared in the frequency source header.
func (a *Aggregator) SetVEPFormat(f vcf.VEPFormat) {
	a.lofIndex = f.Index("LoF", a.lofIndex)
}

// SetLogger sets the logger for warning and info messages.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Build aggregates freq (population counts) with disease (clinical
// significance) and the functional status table. Records come back sorted by
// position, then ID. functional is not modified.
func (a *Aggregator) Build(freq, disease Index, functional cpic.Table) ([]*Record, *Report) {
	remaining := functional.Clone()
	unusedOverrides := toSet(a.cfg.Overrides)

	records := make([]*Record, 0, len(freq))
	for id, v := range freq {
		r := a.newRecord(id, v)

		if cv, ok := disease[id]; ok {
			if sig, ok := cv.InfoString("CLNSIG"); ok {
				r.ClinSig = sig
			}
		}

		for _, rsid := range v.RSIDs() {
			status, ok := functional.Lookup(rsid)
			if !ok {
				continue
			}
			r.RSID = rsid
			r.Function = status
			delete(remaining, cpic.NormalizeRSID(rsid))
			break
		}

		if a.overrides[id] {
			r.Override = true
			delete(unusedOverrides, id)
		}

		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Pos != records[j].Pos {
			return records[i].Pos < records[j].Pos
		}
		return records[i].ID < records[j].ID
	})

	report := &Report{Records: len(records)}
	for _, key := range sortedKeys(remaining) {
		report.Unmatched = append(report.Unmatched, UnmatchedEntry{Kind: LookupFunctional, Key: key, Value: remaining[key]})
	}
	for _, id := range a.cfg.Overrides {
		if unusedOverrides[id] {
			report.Unmatched = append(report.Unmatched, UnmatchedEntry{Kind: LookupOverride, Key: id})
			delete(unusedOverrides, id)
		}
	}

	for _, u := range report.Unmatched {
		a.logger.Warn("lookup entry matched no variant",
			zap.String("kind", u.Kind),
			zap.String("key", u.Key),
			zap.String("value", u.Value))
	}

	return records, report
}

func (a *Aggregator) newRecord(id string, v *vcf.Variant) *Record {
	r := &Record{
		ID:          id,
		Chrom:       v.NormalizeChrom(),
		Pos:         v.Pos,
		Ref:         v.Ref,
		Alt:         v.Alt,
		RSID:        NA,
		Qual:        Quality{Value: v.Qual, Known: v.HasQual},
		Filter:      v.Filter,
		AC:          infoCount(v, "AC"),
		AN:          infoCount(v, "AN"),
		Hom:         infoCount(v, "nhomalt"),
		LOF:         NA,
		ClinSig:     NA,
		Function:    NA,
		Category:    CategoryNone,
		Transcript:  NA,
		Populations: make(map[string]PopulationCounts, len(a.cfg.Populations)),
	}
	if v.IsPass() {
		r.Filter = PassFilter
	}
	if ids := v.RSIDs(); len(ids) > 0 {
		r.RSID = ids[0]
	}
	if lof, ok := vcf.FirstEntryField(v, a.vepKey, a.lofIndex); ok {
		r.LOF = lof
	}
	for _, p := range a.cfg.Populations {
		r.Populations[p] = PopulationCounts{
			AC:  infoCount(v, "AC_"+p),
			AN:  infoCount(v, "AN_"+p),
			Hom: infoCount(v, "nhomalt_"+p),
		}
	}
	return r
}

func infoCount(v *vcf.Variant, key string) Count {
	n, ok := v.InfoInt(key)
	if !ok {
		return Count{}
	}
	return Known(n)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
