package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/dpyd-af/internal/vcf"
)

// ErrIdentifierCollision reports two records of one source sharing an ID.
var ErrIdentifierCollision = errors.New("identifier collision")

// CollisionError identifies the duplicated variant ID and where it was seen.
type CollisionError struct {
	Source    string
	ID        string
	FirstLine int
	Line      int
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: variant %s at line %d already seen at line %d: %v",
		e.Source, e.ID, e.Line, e.FirstLine, ErrIdentifierCollision)
}

func (e *CollisionError) Unwrap() error { return ErrIdentifierCollision }

// GeneExtractor reads the annotated gene symbol of a record.
type GeneExtractor interface {
	Gene(v *vcf.Variant) (string, bool)
}

// ClinVarGene reads the symbol from ClinVar's GENEINFO key ("DPYD:1806").
type ClinVarGene struct{}

// Gene returns the first gene symbol listed in GENEINFO.
func (ClinVarGene) Gene(v *vcf.Variant) (string, bool) {
	info, ok := v.InfoString("GENEINFO")
	if !ok {
		return "", false
	}
	symbol, _, _ := strings.Cut(info, ":")
	return symbol, symbol != ""
}

// VEPGene reads SYMBOL from the first transcript entry of a VEP annotation.
type VEPGene struct {
	Key   string
	Index int
}

// NewVEPGene builds an extractor from the VCF header, falling back to the
// gnomAD v2 layout when the header does not describe the field.
func NewVEPGene(header []string, key string) VEPGene {
	f, _ := vcf.FindVEPFormat(header, key)
	return VEPGene{Key: key, Index: f.Index("SYMBOL", 3)}
}

// Gene returns the SYMBOL field of the first VEP entry.
func (g VEPGene) Gene(v *vcf.Variant) (string, bool) {
	return vcf.FirstEntryField(v, g.Key, g.Index)
}

// Index maps variant ID to the source record.
type Index map[string]*vcf.Variant

// LoadStats counts what happened to the records of one source.
type LoadStats struct {
	Scanned     int
	InRegion    int
	MissingGene int
	Matched     int
}

// Loader builds per-source indexes restricted to one region and gene.
type Loader struct {
	region vcf.Region
	gene   string
	logger *zap.Logger
}

// NewLoader creates a loader for gene within region.
func NewLoader(region vcf.Region, gene string) *Loader {
	return &Loader{
		region: region,
		gene:   gene,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning and info messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load reads every record of parser once and indexes the records inside the
// region whose annotated gene equals the target symbol exactly.
func (l *Loader) Load(ctx context.Context, source string, parser vcf.VariantParser, genes GeneExtractor) (Index, LoadStats, error) {
	idx := make(Index)
	lines := make(map[string]int)
	var stats LoadStats

	for {
		if stats.Scanned%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		v, err := parser.Next()
		if err != nil {
			return nil, stats, fmt.Errorf("%s: read variant: %w", source, err)
		}
		if v == nil {
			break
		}
		stats.Scanned++

		if !l.region.Contains(v) {
			continue
		}
		stats.InRegion++

		gene, ok := genes.Gene(v)
		if !ok {
			stats.MissingGene++
			continue
		}
		if gene != l.gene {
			continue
		}

		id := v.VariantID()
		if first, dup := lines[id]; dup {
			return nil, stats, &CollisionError{
				Source:    source,
				ID:        id,
				FirstLine: first,
				Line:      parser.LineNumber(),
			}
		}
		lines[id] = parser.LineNumber()
		idx[id] = v
		stats.Matched++
	}

	l.logger.Info("loaded variant source",
		zap.String("source", source),
		zap.String("gene", l.gene),
		zap.Stringer("region", l.region),
		zap.Int("scanned", stats.Scanned),
		zap.Int("in_region", stats.InRegion),
		zap.Int("missing_gene", stats.MissingGene),
		zap.Int("matched", stats.Matched))

	return idx, stats, nil
}
