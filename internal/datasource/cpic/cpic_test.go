package cpic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	table, err := Load(findTestFile(t, "cpic_dpyd.tsv"))
	require.NoError(t, err)
	require.Len(t, table, 3)

	tests := []struct {
		rsid   string
		status string
	}{
		{"rs3918290", "No function"},
		{"rs115232898", "Decreased function"},
		{"RS1801265", "Normal function"},
	}
	for _, tt := range tests {
		t.Run(tt.rsid, func(t *testing.T) {
			status, ok := table.Lookup(tt.rsid)
			require.True(t, ok)
			assert.Equal(t, tt.status, status)
		})
	}

	_, ok := table.Lookup("rs0")
	assert.False(t, ok)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/path.tsv")
	assert.Error(t, err)
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpic.csv")
	require.NoError(t, os.WriteFile(path, []byte("rsID,Allele Functional Status\nrs67376798,\"Decreased function\"\n"), 0644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Table{"rs67376798": "Decreased function"}, table)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("rsid\tfunction\nrs1\n"), '\t')
	assert.ErrorContains(t, err, "expected 2 columns")

	_, err = Parse(strings.NewReader("rsid\tfunction\nrs1\tNo function\nrs-1\tNormal function\n"), '\t')
	assert.ErrorContains(t, err, "listed as both")
}

func TestParse_QuotedFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   rune
		want  Table
	}{
		{
			name:  "comma inside quotes",
			input: "rsid,function\n\"rs1\",\"Uncertain, unknown\"\n",
			sep:   ',',
			want:  Table{"rs1": "Uncertain, unknown"},
		},
		{
			name:  "tab inside quotes",
			input: "rsid\tfunction\nrs2\t\"No\tfunction\"\n",
			sep:   '\t',
			want:  Table{"rs2": "No\tfunction"},
		},
		{
			name:  "extra columns ignored",
			input: "rsid,function,source\nrs3,\"Decreased function\",\"CPIC, 2024\"\n",
			sep:   ',',
			want:  Table{"rs3": "Decreased function"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse(strings.NewReader(tt.input), tt.sep)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table)
		})
	}
}

func TestParse_SkipsCommentsAndBlanks(t *testing.T) {
	input := "# exported from CPIC\n\nrsid\tfunction\nrs1\tNo function\n\t\nrs2\t\n"
	table, err := Parse(strings.NewReader(input), '\t')
	require.NoError(t, err)
	assert.Equal(t, Table{"rs1": "No function"}, table)
}

func TestNormalizeRSID(t *testing.T) {
	assert.Equal(t, "rs75017182", NormalizeRSID("rs-75017182"))
	assert.Equal(t, "rs75017182", NormalizeRSID(" RS75017182 "))
	assert.Equal(t, "", NormalizeRSID("--"))
}

func TestTable_Clone(t *testing.T) {
	orig := Table{"rs1": "No function"}
	c := orig.Clone()
	delete(c, "rs1")
	assert.Len(t, orig, 1)
}

func findTestFile(t *testing.T, name string) string {
	t.Helper()
	for _, p := range []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "..", "testdata", name),
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	t.Fatalf("Test file not found: %s", name)
	return ""
}
