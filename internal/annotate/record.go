package annotate

import (
	"strconv"
	"strings"
)

// NA is the sentinel written for absent annotations and unknown counts.
const NA = "NA"

// PassFilter is the normalized filter value of a record with no filter flags.
const PassFilter = "PASS"

// Count is an allele count, allele number or homozygote count that may be
// missing from its source.
type Count struct {
	Value int64
	Known bool
}

// Known returns a present count.
func Known(n int64) Count {
	return Count{Value: n, Known: true}
}

// ParseCount parses a count column value. "NA", "." and empty strings, as
// well as anything that is not an integer, give an unknown count.
func ParseCount(s string) Count {
	s = strings.TrimSpace(s)
	if s == "" || s == NA || s == "." {
		return Count{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// pandas writes integer columns holding NaN as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return Count{}
		}
		n = int64(f)
	}
	return Known(n)
}

func (c Count) String() string {
	if !c.Known {
		return NA
	}
	return strconv.FormatInt(c.Value, 10)
}

// Quality is a QUAL score that may be missing ("." in VCF).
type Quality struct {
	Value float64
	Known bool
}

// KnownQuality returns a present QUAL score.
func KnownQuality(q float64) Quality {
	return Quality{Value: q, Known: true}
}

// ParseQuality parses a QUAL column value. "NA", "." and empty strings, as
// well as anything that is not a number, give an unknown score.
func ParseQuality(s string) Quality {
	s = strings.TrimSpace(s)
	if s == "" || s == NA || s == "." {
		return Quality{}
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Quality{}
	}
	return KnownQuality(q)
}

func (q Quality) String() string {
	if !q.Known {
		return NA
	}
	return strconv.FormatFloat(q.Value, 'f', -1, 64)
}

// PopulationCounts holds the population-specific counts of one variant.
type PopulationCounts struct {
	AC  Count
	AN  Count
	Hom Count
}

// Category is the exclusive clinical category of a variant.
type Category string

// Categories in precedence order; NONE is assigned when no predicate holds.
const (
	CategoryOverride   Category = "OVERRIDE"
	CategoryFunctional Category = "FUNCTIONAL"
	CategoryClinical   Category = "CLINICAL"
	CategoryLOF        Category = "LOF"
	CategoryNone       Category = "NONE"
)

// Categories lists the assignable categories in precedence order.
var Categories = []Category{CategoryOverride, CategoryFunctional, CategoryClinical, CategoryLOF}

// ParseCategory maps a column value back to a Category. Unknown values map
// to CategoryNone.
func ParseCategory(s string) Category {
	switch c := Category(strings.ToUpper(strings.TrimSpace(s))); c {
	case CategoryOverride, CategoryFunctional, CategoryClinical, CategoryLOF:
		return c
	}
	return CategoryNone
}

// Record is one flat output row per population-frequency variant.
type Record struct {
	ID         string // chrom-pos-ref-alt
	Chrom      string
	Pos        int64
	Ref        string
	Alt        string
	RSID       string
	Qual       Quality
	Filter     string
	AC         Count
	AN         Count
	Hom        Count
	LOF        string
	ClinSig    string
	Function   string
	Override   bool
	Category   Category
	Transcript string

	Populations map[string]PopulationCounts
}

// Population returns the counts for population p; absent populations have
// unknown counts.
func (r *Record) Population(p string) PopulationCounts {
	return r.Populations[p]
}

// IsPass reports whether the record has no filter flags.
func (r *Record) IsPass() bool {
	return r.Filter == PassFilter
}
