package tabular

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// scalarColumn is the synthetic column used for non-object list elements.
const scalarColumn = "value"

// Table is an ordered sequence of rows. Columns are the union of keys seen
// across all rows, in first-seen order; a row missing a column reads as nil.
type Table struct {
	Columns []string
	Rows    []map[string]any
}

// ToTable normalizes a payload into a table. A single record wraps into a
// one-row table; an empty payload yields zero rows and zero columns.
// List elements that are not objects become single-field rows under the
// "value" column.
func ToTable(p Payload) *Table {
	t := &Table{}

	switch p.Kind {
	case KindRecord:
		t.appendRecord(p.Record, p.recordKeys)
	case KindList:
		for i, elem := range p.List {
			rec, ok := elem.(map[string]any)
			if !ok {
				rec = map[string]any{scalarColumn: elem}
			}
			var keys []string
			if i < len(p.listKeys) {
				keys = p.listKeys[i]
			}
			t.appendRecord(rec, keys)
		}
	}

	return t
}

// appendRecord adds one row and extends the column union. keys carries the
// document-order field names when known; fields present in the record but
// missing from keys are appended after them.
func (t *Table) appendRecord(rec map[string]any, keys []string) {
	row := make(map[string]any, len(rec))
	for k, v := range rec {
		row[k] = v
	}
	t.Rows = append(t.Rows, row)

	if keys == nil {
		for k := range rec {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		if _, present := rec[k]; present && !t.HasColumn(k) {
			t.Columns = append(t.Columns, k)
		}
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Value returns the cell at (row, column) and whether the column is present
// in that row.
func (t *Table) Value(row int, col string) (any, bool) {
	if row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	v, ok := t.Rows[row][col]
	return v, ok
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// SampleColumns returns up to n column names joined by commas, with an
// ellipsis appended when more columns exist.
func (t *Table) SampleColumns(n int) string {
	if len(t.Columns) <= n {
		return strings.Join(t.Columns, ", ")
	}
	return strings.Join(t.Columns[:n], ", ") + "..."
}

// FormatCell renders a cell value for table display. Missing values render
// as NULL; floats drop trailing zeros; nested structures render as compact
// JSON.
func FormatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatCSV renders a cell value for CSV export. Unlike FormatCell, missing
// values become empty fields.
func FormatCSV(v any) string {
	if v == nil {
		return ""
	}
	return FormatCell(v)
}
