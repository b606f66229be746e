package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVariantID(t *testing.T) {
	assert.Equal(t, "1-97915614-C-T", FormatVariantID("1", 97915614, "C", "T"))
	assert.Equal(t, "1-100-A-GT", FormatVariantID("1", 100, "A", "G,T"))

	v := &Variant{Chrom: "chr1", Pos: 97547947, Ref: "T", Alt: "A"}
	assert.Equal(t, "1-97547947-T-A", v.VariantID())
}

func TestVariant_Info(t *testing.T) {
	v := &Variant{Info: parseInfo("AC=3,4;AN=.;AN_afr=0;DB;GENEINFO=DPYD:1806;AC_bad=x")}

	n, ok := v.InfoInt("AC")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = v.InfoInt("AN")
	assert.False(t, ok, "missing value marker")

	n, ok = v.InfoInt("AN_afr")
	assert.True(t, ok)
	assert.Zero(t, n)

	_, ok = v.InfoInt("AC_bad")
	assert.False(t, ok)

	_, ok = v.InfoString("DB")
	assert.False(t, ok, "flag has no string value")

	s, ok := v.InfoString("GENEINFO")
	assert.True(t, ok)
	assert.Equal(t, "DPYD:1806", s)
}

func TestVariant_RSIDs(t *testing.T) {
	tests := []struct {
		id   string
		want []string
	}{
		{".", nil},
		{"", nil},
		{"rs3918290", []string{"rs3918290"}},
		{"rs1;rs2", []string{"rs1", "rs2"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			v := &Variant{ID: tt.id}
			assert.Equal(t, tt.want, v.RSIDs())
		})
	}
}

func TestVariant_IsPass(t *testing.T) {
	assert.True(t, (&Variant{Filter: "PASS"}).IsPass())
	assert.True(t, (&Variant{Filter: "."}).IsPass())
	assert.False(t, (&Variant{Filter: "AC0"}).IsPass())
	assert.False(t, (&Variant{Filter: "RF;AC0"}).IsPass())
}
