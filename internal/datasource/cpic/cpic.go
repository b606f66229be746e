// Package cpic loads CPIC allele functionality tables mapping reference SNP
// identifiers to a functional status label.
package cpic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table maps normalized rsID to functional status ("No function", ...).
type Table map[string]string

// NormalizeRSID strips every non-alphanumeric character and lowercases the
// "rs" prefix, so "RS-3918290 " and "rs3918290" share a key.
func NormalizeRSID(id string) string {
	var sb strings.Builder
	sb.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		}
	}
	return sb.String()
}

// Lookup returns the functional status for an rsID in any spelling.
func (t Table) Lookup(rsid string) (string, bool) {
	status, ok := t[NormalizeRSID(rsid)]
	return status, ok
}

// Clone returns a copy that can be consumed without touching t.
func (t Table) Clone() Table {
	c := make(Table, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Load reads a two-column table of rsID and functional status. Files ending
// in .csv are comma separated, everything else is tab separated. The first
// non-comment record is a header and is skipped.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open functional status table: %w", err)
	}
	defer f.Close()

	sep := '\t'
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		sep = ','
	}
	return Parse(f, sep)
}

// Parse reads a functional status table from r using the given separator.
// Quoted fields may contain the separator.
func Parse(r io.Reader, sep rune) (Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	table := make(Table)
	header := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading functional status table: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("functional status table line %d: expected 2 columns, found %d", line, len(fields))
		}
		key := NormalizeRSID(fields[0])
		status := strings.TrimSpace(fields[1])
		if key == "" || status == "" {
			continue
		}
		if prev, ok := table[key]; ok && prev != status {
			return nil, fmt.Errorf("functional status table line %d: %s listed as both %q and %q", line, fields[0], prev, status)
		}
		table[key] = status
	}

	return table, nil
}
