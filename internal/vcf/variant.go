// Package vcf provides VCF file parsing functionality.
package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single genomic variant from a VCF file.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "1", "chr1")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier column (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Alternate allele(s), comma separated
	Qual    float64                // Quality score, valid when HasQual
	HasQual bool                   // false for "." or an unparseable QUAL
	Filter  string                 // Filter status (PASS or filter name)
	Info    map[string]interface{} // INFO field key-value pairs
}

// FormatVariantID returns the chrom-pos-ref-alt identifier used to key
// variants across sources. Multi-allelic ALT columns are concatenated.
func FormatVariantID(chrom string, pos int64, ref, alt string) string {
	var sb strings.Builder
	sb.Grow(len(chrom) + len(ref) + len(alt) + 16)
	sb.WriteString(chrom)
	sb.WriteByte('-')
	sb.WriteString(strconv.FormatInt(pos, 10))
	sb.WriteByte('-')
	sb.WriteString(ref)
	sb.WriteByte('-')
	sb.WriteString(strings.ReplaceAll(alt, ",", ""))
	return sb.String()
}

// VariantID returns the chrom-pos-ref-alt identifier of the variant.
func (v *Variant) VariantID() string {
	return FormatVariantID(v.NormalizeChrom(), v.Pos, v.Ref, v.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return normalizeChrom(v.Chrom)
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// InfoString returns the raw string value of an INFO key.
// Flag-type keys and absent keys report false.
func (v *Variant) InfoString(key string) (string, bool) {
	raw, ok := v.Info[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" || s == "." {
		return "", false
	}
	return s, true
}

// InfoInt parses an integer INFO value. Only the first value of a
// comma-separated list is used.
func (v *Variant) InfoInt(key string) (int64, bool) {
	s, ok := v.InfoString(key)
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// RSIDs returns the reference SNP identifiers found in the ID column.
func (v *Variant) RSIDs() []string {
	if v.ID == "" || v.ID == "." {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(v.ID, ";") {
		id = strings.TrimSpace(id)
		if id != "" && id != "." {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsPass reports whether the variant carries no filter flags.
func (v *Variant) IsPass() bool {
	return v.Filter == "PASS" || v.Filter == "." || v.Filter == ""
}
