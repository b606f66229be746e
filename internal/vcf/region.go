package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a 1-based, inclusive genomic interval on one chromosome.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// ParseRegion parses a "chrom:start-end" interval string, as used by tabix.
// The chromosome may carry a "chr" prefix and positions may contain
// thousands separators.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	colon := strings.LastIndexByte(s, ':')
	if colon <= 0 {
		return Region{}, fmt.Errorf("invalid region %q: expected chrom:start-end", s)
	}

	chrom := s[:colon]
	span := strings.ReplaceAll(s[colon+1:], ",", "")
	startStr, endStr, ok := strings.Cut(span, "-")
	if !ok {
		return Region{}, fmt.Errorf("invalid region %q: expected chrom:start-end", s)
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 1 {
		return Region{}, fmt.Errorf("invalid region %q: bad start %q", s, startStr)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: bad end %q", s, endStr)
	}
	if end < start {
		return Region{}, fmt.Errorf("invalid region %q: end before start", s)
	}

	return Region{Chrom: normalizeChrom(chrom), Start: start, End: end}, nil
}

// Contains reports whether the variant's position falls inside the region.
// Chromosome names are compared without a "chr" prefix.
func (r Region) Contains(v *Variant) bool {
	return v.NormalizeChrom() == r.Chrom && v.Pos >= r.Start && v.Pos <= r.End
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}
