package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", ""},
		{"42", int64(42)},
		{"007", int64(7)},
		{"3.14", 3.14},
		{"3.", 3.0},
		{".5", 0.5},
		{".", "."},
		{"3.14.15", "3.14.15"},
		{"12a", "12a"},
		{"-1", "-1"},
		{"+1", "+1"},
		{"1e5", "1e5"},
		{"1,000", "1,000"},
		{" 42", " 42"},
		{"99999999999999999999", "99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestRead_EndToEnd(t *testing.T) {
	path := writeFile(t, "a,b\n1,2.5\nfoo,\n")

	table, err := Read(path)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"a": int64(1), "b": 2.5}, table.Rows[0])
	assert.Equal(t, Row{"a": "foo", "b": ""}, table.Rows[1])

	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1,"b":2.5},{"a":"foo","b":""}]`, out)
}

func TestRead_IntegralFloatsKeepFraction(t *testing.T) {
	table, err := Read(writeFile(t, "a,b,c,d\n2.0,3.,10.00,7\n"))
	require.NoError(t, err)

	assert.Equal(t, Row{"a": 2.0, "b": 3.0, "c": 10.0, "d": int64(7)}, table.Rows[0])

	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"a":2.0,"b":3.0,"c":10.0,"d":7}]`, out)
}

func TestTable_FloatFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{0.5, "0.5"},
		{2.5, "2.5"},
		{1234567.0, "1234567.0"},
		{0.00001, "1e-05"},
		{1e16, "1e+16"},
	}

	for _, tt := range tests {
		table := &Table{Header: []string{"v"}, Rows: []Row{{"v": tt.in}}}
		out, err := table.JSON()
		require.NoError(t, err)
		assert.Equal(t, `[{"v":`+tt.want+`}]`, out)
	}
}

func TestRead_KeepsHeaderOrder(t *testing.T) {
	path := writeFile(t, "zeta,alpha,mid\n1,x,<b>\n")

	table, err := Read(path)
	require.NoError(t, err)

	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"zeta":1,"alpha":"x","mid":"<b>"}]`, out)
}

func TestRead_RaggedRows(t *testing.T) {
	path := writeFile(t, "a,b,c\n1\n1,2,3,4\n")

	table, err := Read(path)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, Row{"a": int64(1), "b": nil, "c": nil}, table.Rows[0])
	assert.Equal(t, Row{"a": int64(1), "b": int64(2), "c": int64(3)}, table.Rows[1])

	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"a":1,"b":null,"c":null},{"a":1,"b":2,"c":3}]`, out)
}

func TestRead_DuplicateHeaderLastValueWins(t *testing.T) {
	path := writeFile(t, "a,b,a\n1,2,3\n")

	table, err := Read(path)
	require.NoError(t, err)

	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"a":3,"b":2}]`, out)
}

func TestRead_QuotedFieldsAndBlankLines(t *testing.T) {
	path := writeFile(t, "name,note\n\"Doe, Jane\",\"said \"\"hi\"\"\"\n\n12,3.5\n")

	table, err := Read(path)
	require.NoError(t, err)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Doe, Jane", table.Rows[0]["name"])
	assert.Equal(t, `said "hi"`, table.Rows[0]["note"])
	assert.Equal(t, int64(12), table.Rows[1]["name"])
	assert.Equal(t, 3.5, table.Rows[1]["note"])
}

func TestRead_EmptyAndHeaderOnly(t *testing.T) {
	table, err := Read(writeFile(t, ""))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
	out, err := table.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	table, err = Read(writeFile(t, "a,b\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestRead_NotFound(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))
	assert.True(t, strings.HasSuffix(pathErr.Path, "missing.csv"))
}

func TestRead_Directory(t *testing.T) {
	_, err := Read(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotAFile))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestRead_InvalidUTF8(t *testing.T) {
	path := writeFile(t, "a\n\xff\xfe\n")

	_, err := Read(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreadable))
}
