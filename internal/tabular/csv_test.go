package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	tbl := ToTable(decode(t, `[
		{"id":1,"userId":1,"title":"first"},
		{"id":2,"userId":2,"title":"with,comma"}
	]`))

	buf := new(bytes.Buffer)
	require.NoError(t, WriteCSV(buf, tbl))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,userId,title", lines[0])
	assert.Equal(t, "1,1,first", lines[1])
	assert.Equal(t, `2,2,"with,comma"`, lines[2])
}

func TestWriteCSV_MissingCells(t *testing.T) {
	tbl := ToTable(decode(t, `[{"id":1,"title":"a"},{"id":2}]`))

	buf := new(bytes.Buffer)
	require.NoError(t, WriteCSV(buf, tbl))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2,", lines[2])
}

func TestCSV_RoundTrip(t *testing.T) {
	tbl := ToTable(decode(t, `[
		{"id":1,"title":"plain","completed":true},
		{"id":2,"title":"quoted \"inner\"","completed":false},
		{"id":3,"title":"multi\nline","completed":true}
	]`))

	buf := new(bytes.Buffer)
	require.NoError(t, WriteCSV(buf, tbl))

	back, err := ReadCSV(buf)
	require.NoError(t, err)

	assert.Equal(t, tbl.Columns, back.Columns)
	require.Equal(t, tbl.Len(), back.Len())

	// Values survive modulo stringification: numbers and bools come back
	// as their text form.
	for i, row := range tbl.Rows {
		for _, col := range tbl.Columns {
			assert.Equal(t, FormatCSV(row[col]), back.Rows[i][col], "row %d col %s", i, col)
		}
	}
}

func TestReadCSV_Empty(t *testing.T) {
	back, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, back.Len())
}
