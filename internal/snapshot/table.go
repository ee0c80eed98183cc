package snapshot

import (
	"fmt"
	"strings"
)

// Column names shared by the raw export and the summary snapshot.
const (
	ColTitle       = "title"
	ColURL         = "url"
	ColContents    = "contents"
	ColThumbnail   = "thumbnail"
	ColCompany     = "company"
	ColSubject     = "subject"
	ColUploadDate  = "upload_date"
	ColCluster     = "cluster2nd"
	ColKeyword     = "keyword"
	ColCounts      = "counts"
	ColSumTitle    = "sum_title"
	ColSumContents = "sum_contents"
	ColSumDate     = "sum_date"
)

// Table is an in-memory tabular snapshot: a header plus string cells.
// Rows keep their source order.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds an empty table with the given header.
func NewTable(columns []string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.addColumn(strings.TrimSpace(c))
	}
	return t
}

// Columns returns the header in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len is the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Require fails when any of the named columns is missing.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AppendRow adds a row; short rows are padded, long rows truncated.
func (t *Table) AppendRow(values []string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Get returns the cell at row/column. ok is false when the column is absent.
func (t *Table) Get(row int, column string) (string, bool) {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	r := t.rows[row]
	if i >= len(r) {
		return "", true
	}
	return r[i], true
}

// Set writes a cell, appending the column to the header when needed.
func (t *Table) Set(row int, column, value string) {
	if row < 0 || row >= len(t.rows) {
		return
	}
	i, ok := t.index[column]
	if !ok {
		i = t.addColumn(column)
	}
	r := t.rows[row]
	if i >= len(r) {
		r = append(r, make([]string, i-len(r)+1)...)
		t.rows[row] = r
	}
	r[i] = value
}

// EnsureColumns appends any missing columns so writers emit them even when
// no row received a value.
func (t *Table) EnsureColumns(names ...string) {
	for _, n := range names {
		if !t.HasColumn(n) {
			t.addColumn(n)
		}
	}
}

// Records returns the header followed by every row padded to the header width.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.rows)+1)
	out = append(out, t.Columns())
	for _, r := range t.rows {
		row := make([]string, len(t.columns))
		copy(row, r)
		out = append(out, row)
	}
	return out
}

// FromRecords builds a table from a header row plus data rows.
// Fully blank rows are dropped.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	t := NewTable(records[0])
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.AppendRow(rec)
	}
	return t, nil
}

func (t *Table) addColumn(name string) int {
	if i, ok := t.index[name]; ok {
		// duplicate header: keep the first occurrence addressable
		t.columns = append(t.columns, name)
		return i
	}
	t.columns = append(t.columns, name)
	t.index[name] = len(t.columns) - 1
	return len(t.columns) - 1
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
