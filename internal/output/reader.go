package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/dpyd-af/internal/annotate"
)

// ReadRecordsFile reads a record table written by TabWriter.
func ReadRecordsFile(path string, populations []string) ([]*annotate.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record table: %w", err)
	}
	defer f.Close()

	records, err := ReadRecords(f, populations)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords parses a record table. Columns are located by header name, so
// their order does not matter; VAR_ID is the only required column. Missing
// population columns give unknown counts.
func ReadRecords(r io.Reader, populations []string) ([]*annotate.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("record table: empty file")
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["VAR_ID"]; !ok {
		return nil, fmt.Errorf("record table: missing 'VAR_ID' column")
	}

	var records []*annotate.Record
	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(fields) {
				return ""
			}
			return fields[i]
		}

		rec := &annotate.Record{
			ID:          get("VAR_ID"),
			Chrom:       get("CHROM"),
			Ref:         get("REF"),
			Alt:         get("ALT"),
			RSID:        naDefault(get("RSID")),
			Filter:      naDefault(get("FILTER")),
			AC:          annotate.ParseCount(get("AC")),
			AN:          annotate.ParseCount(get("AN")),
			Hom:         annotate.ParseCount(get("NHOMALT")),
			LOF:         naDefault(get("LOF")),
			ClinSig:     naDefault(get("CLIN_SIG")),
			Function:    naDefault(get("FUNCTION")),
			Override:    parseBool(get("OVERRIDE")),
			Category:    annotate.ParseCategory(get("CATEGORY")),
			Transcript:  naDefault(get("TRANSCRIPT")),
			Populations: make(map[string]annotate.PopulationCounts, len(populations)),
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("record table line %d: empty VAR_ID", line)
		}
		if s := get("POS"); s != "" {
			pos, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("record table line %d: invalid POS %q", line, s)
			}
			rec.Pos = pos
		}
		if s := get("QUAL"); s != "" && s != annotate.NA && s != "." {
			q, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("record table line %d: invalid QUAL %q", line, s)
			}
			rec.Qual = annotate.KnownQuality(q)
		}
		for _, p := range populations {
			rec.Populations[p] = annotate.PopulationCounts{
				AC:  annotate.ParseCount(get("AC_" + p)),
				AN:  annotate.ParseCount(get("AN_" + p)),
				Hom: annotate.ParseCount(get("NHOMALT_" + p)),
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading record table: %w", err)
	}

	return records, nil
}

func naDefault(s string) string {
	if s == "" {
		return annotate.NA
	}
	return s
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
