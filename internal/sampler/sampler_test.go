package sampler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csv2pg/internal/logging"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

func writeCSV(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func newSampler() *Sampler {
	return New(logging.NewNullLogger())
}

func TestSample_Basic(t *testing.T) {
	path := writeCSV(t, "users.csv", []byte("id,name,age\n1,Ada,36\n2,Grace,45\n"))

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age"}, sample.Headers)
	assert.Equal(t, 2, sample.SampleSize)
	assert.Equal(t, ',', sample.Properties.Delimiter)
	assert.Equal(t, "utf-8", sample.Properties.Encoding)
	assert.Equal(t, 3, sample.Properties.ColumnCount)
	assert.True(t, sample.Properties.HasHeader)

	require.Len(t, sample.Rows, 2)
	assert.Equal(t, "Ada", *sample.Rows[0]["name"])
}

func TestSample_RowLimit(t *testing.T) {
	content := "n\n"
	for i := 0; i < 50; i++ {
		content += "1\n"
	}
	path := writeCSV(t, "big.csv", []byte(content))

	sample, err := newSampler().Sample(path, Options{Rows: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, sample.SampleSize)
	assert.Len(t, sample.Rows, 10)
}

func TestSample_DetectsDelimiters(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter rune
	}{
		{"comma", "a,b\n1,2\n", ','},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"semicolon", "a;b\n1;2\n", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, "f.csv", []byte(tt.content))
			sample, err := newSampler().Sample(path, Options{})
			require.NoError(t, err)

			assert.Equal(t, tt.delimiter, sample.Properties.Delimiter)
			assert.Equal(t, []string{"a", "b"}, sample.Headers)
		})
	}
}

func TestSample_DelimiterOverride(t *testing.T) {
	// Detection would pick comma here; the override forces semicolon.
	path := writeCSV(t, "f.csv", []byte("a,x;b\n1,2;3\n"))

	sample, err := newSampler().Sample(path, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"a,x", "b"}, sample.Headers)
}

func TestSample_NullCells(t *testing.T) {
	path := writeCSV(t, "f.csv", []byte("a,b,c\n1,,3\n,  ,x\n"))

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)
	require.Len(t, sample.Rows, 2)

	assert.Nil(t, sample.Rows[0]["b"])
	assert.Equal(t, "1", *sample.Rows[0]["a"])
	assert.Nil(t, sample.Rows[1]["a"])
	// Whitespace-only cells count as null.
	assert.Nil(t, sample.Rows[1]["b"])
}

func TestSample_ShortRowsOmitColumns(t *testing.T) {
	path := writeCSV(t, "f.csv", []byte("a,b,c\n1,2\n"))

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)
	require.Len(t, sample.Rows, 1)

	_, hasC := sample.Rows[0]["c"]
	assert.False(t, hasC)
}

func TestSample_UTF8BOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,city\nOslo,Bergen\n")...)
	path := writeCSV(t, "bom.csv", content)

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "utf-8-sig", sample.Properties.Encoding)
	assert.Equal(t, []string{"name", "city"}, sample.Headers)
}

func TestSample_Latin1(t *testing.T) {
	// "prix,café" with é as latin-1 byte 0xE9, invalid as UTF-8.
	content := []byte("prix,caf\xe9\n10,x\n")
	path := writeCSV(t, "latin.csv", content)

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "latin-1", sample.Properties.Encoding)
	assert.Equal(t, []string{"prix", "café"}, sample.Headers)
}

func TestSample_EncodingOverride(t *testing.T) {
	content := []byte("a,b\nx,caf\xe9\n")
	path := writeCSV(t, "f.csv", content)

	sample, err := newSampler().Sample(path, Options{Encoding: "windows-1252"})
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", sample.Properties.Encoding)
	assert.Equal(t, "café", *sample.Rows[0]["b"])
}

func TestSample_UnsupportedEncoding(t *testing.T) {
	path := writeCSV(t, "f.csv", []byte("a\n1\n"))

	_, err := newSampler().Sample(path, Options{Encoding: "ebcdic"})
	assert.ErrorIs(t, err, csv2pg.ErrInvalidConfig)
}

func TestSample_MissingFile(t *testing.T) {
	_, err := newSampler().Sample(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.ErrorIs(t, err, csv2pg.ErrCSVNotFound)
}

func TestSample_EmptyFile(t *testing.T) {
	path := writeCSV(t, "empty.csv", nil)

	_, err := newSampler().Sample(path, Options{})
	assert.ErrorIs(t, err, csv2pg.ErrEmptyCSV)
}

func TestSample_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "h.csv", []byte("a,b,c\n"))

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, sample.Headers)
	assert.Empty(t, sample.Rows)
	assert.Equal(t, 0, sample.SampleSize)
}

func TestSample_QuotedFields(t *testing.T) {
	path := writeCSV(t, "q.csv", []byte("name,notes\n\"Smith, Jane\",\"said \"\"hi\"\"\"\n"))

	sample, err := newSampler().Sample(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, "Smith, Jane", *sample.Rows[0]["name"])
	assert.Equal(t, `said "hi"`, *sample.Rows[0]["notes"])
}
