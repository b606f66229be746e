// Package frequency computes per-population allele frequencies and their
// per-category sums.
package frequency

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/inodb/dpyd-af/internal/annotate"
)

// Overall is the pseudo-population key for frequencies computed from the
// aggregate AC/AN fields.
const Overall = "overall"

// AF returns ac/an. ok is false when either count is unknown, AN is not
// positive, or AC lies outside [0, AN]; the frequency is then undefined and
// must be left out of sums.
func AF(ac, an annotate.Count) (float64, bool) {
	if !ac.Known || !an.Known || an.Value <= 0 || ac.Value < 0 || ac.Value > an.Value {
		return 0, false
	}
	return float64(ac.Value) / float64(an.Value), true
}

// Proportion returns sum/total as a percentage. A zero total is undefined;
// it reports 0 and ok=false.
func Proportion(sum, total float64) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return sum / total * 100, true
}

// Point is the frequency of one variant in one population.
type Point struct {
	VariantID  string
	Category   annotate.Category
	Population string
	AF         float64
}

// Summary holds the frequency aggregates of a record set.
type Summary struct {
	Populations []string
	Categories  []annotate.Category

	// Sums[category][population] is the summed AF of the category's variants.
	Sums map[annotate.Category]map[string]float64
	// Totals[population] is the summed AF across all categories.
	Totals map[string]float64
	// Overall[category] is the summed AF from aggregate AC/AN.
	Overall map[annotate.Category]float64
	// OverallTotal is the summed aggregate AF across all categories.
	OverallTotal float64
	// Undefined[population] counts variants left out for an undefined AF.
	Undefined map[string]int

	Points []Point
}

// Proportion returns the category's share of the population total in
// percent. ok is false when the total is zero.
func (s *Summary) Proportion(c annotate.Category, population string) (float64, bool) {
	if population == Overall {
		return Proportion(s.Overall[c], s.OverallTotal)
	}
	return Proportion(s.Sums[c][population], s.Totals[population])
}

// Aggregator sums frequencies per category and population.
type Aggregator struct {
	populations []string
	logger      *zap.Logger
}

// NewAggregator creates an aggregator over the given ordered populations.
func NewAggregator(populations []string) *Aggregator {
	return &Aggregator{
		populations: populations,
		logger:      zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Summarize aggregates records by their assigned category. Records with
// CategoryNone are ignored.
func (a *Aggregator) Summarize(records []*annotate.Record) *Summary {
	s := &Summary{
		Populations: append([]string(nil), a.populations...),
		Categories:  append([]annotate.Category(nil), annotate.Categories...),
		Sums:        make(map[annotate.Category]map[string]float64),
		Totals:      make(map[string]float64),
		Overall:     make(map[annotate.Category]float64),
		Undefined:   make(map[string]int),
	}

	byCategory := make(map[annotate.Category]map[string][]float64)
	overall := make(map[annotate.Category][]float64)
	for _, c := range s.Categories {
		byCategory[c] = make(map[string][]float64)
	}

	for _, r := range records {
		if r.Category == annotate.CategoryNone {
			continue
		}
		vals, ok := byCategory[r.Category]
		if !ok {
			continue
		}
		for _, p := range a.populations {
			pc := r.Population(p)
			af, ok := AF(pc.AC, pc.AN)
			if !ok {
				s.Undefined[p]++
				a.logger.Debug("undefined allele frequency",
					zap.String("variant", r.ID),
					zap.String("population", p),
					zap.Stringer("ac", pc.AC),
					zap.Stringer("an", pc.AN))
				continue
			}
			vals[p] = append(vals[p], af)
			s.Points = append(s.Points, Point{VariantID: r.ID, Category: r.Category, Population: p, AF: af})
		}
		if af, ok := AF(r.AC, r.AN); ok {
			overall[r.Category] = append(overall[r.Category], af)
			s.Points = append(s.Points, Point{VariantID: r.ID, Category: r.Category, Population: Overall, AF: af})
		} else {
			s.Undefined[Overall]++
		}
	}

	for _, c := range s.Categories {
		s.Sums[c] = make(map[string]float64, len(a.populations))
		for _, p := range a.populations {
			sum := floats.Sum(byCategory[c][p])
			s.Sums[c][p] = sum
			s.Totals[p] += sum
		}
		s.Overall[c] = floats.Sum(overall[c])
		s.OverallTotal += s.Overall[c]
	}

	for _, p := range a.populations {
		if s.Totals[p] == 0 {
			a.logger.Warn("total frequency is zero, proportions reported as 0", zap.String("population", p))
		}
	}
	for _, p := range append(s.Populations, Overall) {
		if n := s.Undefined[p]; n > 0 {
			a.logger.Info("variants without a defined frequency", zap.String("population", p), zap.Int("count", n))
		}
	}

	return s
}
