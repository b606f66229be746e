package annotate

import (
	"fmt"

	"github.com/inodb/dpyd-af/internal/vcf"
)

// DefaultPopulations are the gnomAD v2 ancestry groups, in output order.
var DefaultPopulations = []string{"eas", "afr", "amr", "asj", "sas", "nfe", "fin"}

// DefaultOverrides are the DPYD variants INESSS recommends testing for.
var DefaultOverrides = []string{
	"1-97915614-C-T",
	"1-97547947-T-A",
	"1-97981343-A-C",
	"1-98039419-C-T",
}

// Config carries every list the pipeline stages depend on.
type Config struct {
	Gene           string
	Region         vcf.Region
	Populations    []string
	Overrides      []string
	FunctionLabels []string
	ClinicalLabels []string
	LOFCodes       []string
	VEPKey         string
}

// DefaultConfig returns the DPYD configuration on GRCh37.
func DefaultConfig() Config {
	return Config{
		Gene:           "DPYD",
		Region:         vcf.Region{Chrom: "1", Start: 97443300, End: 98486606},
		Populations:    append([]string(nil), DefaultPopulations...),
		Overrides:      append([]string(nil), DefaultOverrides...),
		FunctionLabels: []string{"No function", "Decreased function", "Decreased"},
		ClinicalLabels: []string{"Pathogenic", "Likely_pathogenic", "Pathogenic/Likely_pathogenic"},
		LOFCodes:       []string{"HC", "LC"},
		VEPKey:         "vep",
	}
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	if c.Gene == "" {
		return fmt.Errorf("gene symbol is required")
	}
	if c.Region.Chrom == "" || c.Region.End < c.Region.Start {
		return fmt.Errorf("invalid region %s", c.Region)
	}
	if len(c.Populations) == 0 {
		return fmt.Errorf("at least one population is required")
	}
	seen := make(map[string]bool, len(c.Populations))
	for _, p := range c.Populations {
		if seen[p] {
			return fmt.Errorf("population %q listed twice", p)
		}
		seen[p] = true
	}
	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
