// Package output writes and reads the pipeline's tab-delimited tables.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/dpyd-af/internal/annotate"
)

// RecordColumns are the fixed leading columns of a record table. Population
// columns AC_<p>, AN_<p>, NHOMALT_<p> follow in population order.
var RecordColumns = []string{
	"VAR_ID",
	"CHROM",
	"POS",
	"REF",
	"ALT",
	"RSID",
	"QUAL",
	"FILTER",
	"AC",
	"AN",
	"NHOMALT",
	"LOF",
	"CLIN_SIG",
	"FUNCTION",
	"OVERRIDE",
	"CATEGORY",
	"TRANSCRIPT",
}

// TabWriter writes records in tab-delimited format.
type TabWriter struct {
	w           *bufio.Writer
	populations []string
	columns     []string
}

// NewTabWriter creates a record writer with per-population columns for the
// given populations.
func NewTabWriter(w io.Writer, populations []string) *TabWriter {
	columns := append([]string(nil), RecordColumns...)
	for _, p := range populations {
		columns = append(columns, "AC_"+p, "AN_"+p, "NHOMALT_"+p)
	}
	return &TabWriter{
		w:           bufio.NewWriter(w),
		populations: populations,
		columns:     columns,
	}
}

// Columns returns the header columns in output order.
func (tw *TabWriter) Columns() []string {
	return tw.columns
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(r *annotate.Record) error {
	values := make([]string, 0, len(tw.columns))
	values = append(values,
		r.ID,
		r.Chrom,
		strconv.FormatInt(r.Pos, 10),
		r.Ref,
		r.Alt,
		orNA(r.RSID),
		r.Qual.String(),
		orNA(r.Filter),
		r.AC.String(),
		r.AN.String(),
		r.Hom.String(),
		orNA(r.LOF),
		orNA(r.ClinSig),
		orNA(r.Function),
		formatBool(r.Override),
		string(category(r.Category)),
		orNA(r.Transcript),
	)
	for _, p := range tw.populations {
		pc := r.Population(p)
		values = append(values, pc.AC.String(), pc.AN.String(), pc.Hom.String())
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes the header followed by every record and flushes.
func (tw *TabWriter) WriteAll(records []*annotate.Record) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range records {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func orNA(s string) string {
	if s == "" {
		return annotate.NA
	}
	// Tabs and newlines would break the row layout.
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func category(c annotate.Category) annotate.Category {
	if c == "" {
		return annotate.CategoryNone
	}
	return c
}
