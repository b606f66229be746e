package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/dpyd-af/internal/frequency"
)

// SummaryColumns are the columns of the frequency summary table.
var SummaryColumns = []string{"POPULATION", "CATEGORY", "SUM_AF", "TOTAL_AF", "PROPORTION_PCT"}

// PointColumns are the columns of the per-variant frequency table.
var PointColumns = []string{"VAR_ID", "CATEGORY", "POPULATION", "AF"}

// WriteSummary writes one row per population and category, followed by the
// overall rows computed from aggregate AC/AN. Undefined proportions are
// written as 0.
func WriteSummary(w io.Writer, s *frequency.Summary) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(SummaryColumns, "\t") + "\n"); err != nil {
		return err
	}

	populations := append(append([]string(nil), s.Populations...), frequency.Overall)
	for _, p := range populations {
		total := s.Totals[p]
		if p == frequency.Overall {
			total = s.OverallTotal
		}
		for _, c := range s.Categories {
			sum := s.Sums[c][p]
			if p == frequency.Overall {
				sum = s.Overall[c]
			}
			pct, _ := s.Proportion(c, p)
			row := []string{p, string(c), formatFloat(sum), formatFloat(total), formatFloat(pct)}
			if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WritePoints writes the per-variant frequencies behind the summary.
func WritePoints(w io.Writer, s *frequency.Summary) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(PointColumns, "\t") + "\n"); err != nil {
		return err
	}
	for _, pt := range s.Points {
		row := []string{pt.VariantID, string(pt.Category), pt.Population, formatFloat(pt.AF)}
		if _, err := bw.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}
