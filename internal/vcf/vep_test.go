package vcf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindVEPFormat(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "gnomad_dpyd.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	f, ok := FindVEPFormat(parser.Header(), "vep")
	require.True(t, ok)
	assert.Equal(t, 3, f.Index("SYMBOL", -1))
	assert.Equal(t, 8, f.Index("LoF", 64))
	assert.Equal(t, 99, f.Index("Missing", 99))

	_, ok = FindVEPFormat(parser.Header(), "CSQ")
	assert.False(t, ok)
}

func TestFindVEPFormat_Fallback(t *testing.T) {
	f, ok := FindVEPFormat(nil, "vep")
	assert.False(t, ok)
	assert.Equal(t, 3, f.Index("SYMBOL", 3))
	assert.Equal(t, 64, f.Index("LoF", 64))
}

func TestFirstEntryField(t *testing.T) {
	v := &Variant{Info: parseInfo("vep=T|missense|MODERATE|DPYD|HC,T|intron|MODIFIER|OTHER|")}

	s, ok := FirstEntryField(v, "vep", 3)
	assert.True(t, ok)
	assert.Equal(t, "DPYD", s)

	s, ok = FirstEntryField(v, "vep", 4)
	assert.True(t, ok)
	assert.Equal(t, "HC", s)

	_, ok = FirstEntryField(v, "vep", 10)
	assert.False(t, ok)

	_, ok = FirstEntryField(v, "CSQ", 3)
	assert.False(t, ok)

	empty := &Variant{Info: parseInfo("vep=T|missense||")}
	_, ok = FirstEntryField(empty, "vep", 2)
	assert.False(t, ok)
}
