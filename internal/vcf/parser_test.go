package vcf

import (
	"compress/gzip"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_GnomadFixture(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "gnomad_dpyd.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "1", v.Chrom)
	assert.Equal(t, int64(97547947), v.Pos)
	assert.Equal(t, "rs72549303", v.ID)
	assert.Equal(t, "T", v.Ref)
	assert.Equal(t, "A", v.Alt)
	assert.InDelta(t, 1500.2, v.Qual, 1e-9)
	assert.True(t, v.HasQual)
	assert.True(t, v.IsPass())

	ac, ok := v.InfoInt("AC")
	require.True(t, ok)
	assert.Equal(t, int64(8), ac)

	count := 1
	for {
		v, err := parser.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}
	assert.Equal(t, 10, count)
}

func TestParser_Header(t *testing.T) {
	parser, err := NewParser(findTestFile(t, "clinvar_dpyd.vcf"))
	require.NoError(t, err)
	defer parser.Close()

	header := parser.Header()
	require.NotEmpty(t, header)
	assert.Equal(t, "##fileformat=VCFv4.1", header[0])
	assert.True(t, strings.HasPrefix(header[len(header)-1], "#CHROM"))
}

func TestParser_Gzip(t *testing.T) {
	raw, err := os.ReadFile(findTestFile(t, "clinvar_dpyd.vcf"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "clinvar.vcf.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	// Two gzip members, the way bgzip writes blocks.
	half := len(raw) / 2
	for _, chunk := range [][]byte{raw[:half], raw[half:]} {
		zw := gzip.NewWriter(f)
		_, err = zw.Write(chunk)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
	require.NoError(t, f.Close())

	parser, err := NewParser(path)
	require.NoError(t, err)
	defer parser.Close()

	count := 0
	for {
		v, err := parser.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}
	assert.Equal(t, 5, count)
}

func TestParser_Qual(t *testing.T) {
	tests := []struct {
		qual    string
		want    float64
		hasQual bool
	}{
		{"99.5", 99.5, true},
		{"0", 0, true},
		{".", 0, false},
		{"bad", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.qual, func(t *testing.T) {
			input := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
				"1\t100\t.\tA\tG\t" + tt.qual + "\tPASS\tAC=1\n"
			parser, err := NewParserFromReader(strings.NewReader(input))
			require.NoError(t, err)

			v, err := parser.Next()
			require.NoError(t, err)
			require.NotNil(t, v)
			assert.Equal(t, tt.want, v.Qual)
			assert.Equal(t, tt.hasQual, v.HasQual)
		})
	}
}

func TestParser_NoTrailingNewline(t *testing.T) {
	input := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\t100\t.\tA\tG\t.\tPASS\tAC=1"
	parser, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	v, err := parser.Next()
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, int64(100), v.Pos)
	assert.Zero(t, v.Qual)
	assert.False(t, v.HasQual)

	v, err = parser.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing chrom header", "##fileformat=VCFv4.2\n1\t100\t.\tA\tG\t.\tPASS\t.\n", "expected #CHROM header line"},
		{"empty input", "", "no #CHROM header line found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParserFromReader(strings.NewReader(tt.input))
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Message, tt.want)
		})
	}

	t.Run("bad position", func(t *testing.T) {
		input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\tabc\t.\tA\tG\t.\tPASS\t.\n"
		parser, err := NewParserFromReader(strings.NewReader(input))
		require.NoError(t, err)
		_, err = parser.Next()
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 2, perr.Line)
	})

	t.Run("too few columns", func(t *testing.T) {
		input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n1\t100\t.\tA\n"
		parser, err := NewParserFromReader(strings.NewReader(input))
		require.NoError(t, err)
		_, err = parser.Next()
		assert.ErrorContains(t, err, "expected at least 8 columns, found 4")
	})
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected 8 columns, found 7",
	}
	assert.Equal(t, "vcf parse error at line 42: expected 8 columns, found 7", err.Error())
}

func TestNewParser_NotFound(t *testing.T) {
	_, err := NewParser("/nonexistent/file.vcf")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

// findTestFile locates a test file in the testdata directory.
func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}
