// table.go
package querier

import "fmt"

// Table is the uniform in-memory tabular representation: an ordered list
// of named columns plus rows aligned to them. Every row holds exactly
// len(Columns) values.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns, Rows: [][]any{}}
}

// AppendRow adds a row, padding or truncating it to the column count so
// the alignment invariant always holds.
func (t *Table) AppendRow(values ...any) {
	row := make([]any, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Validate checks the Table invariants: unique column names and
// fixed-width rows.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// CachedTable associates a parsed table with its capture time in Unix
// milliseconds.
type CachedTable struct {
	Table     *Table
	Timestamp int64
}

// Datapoint is a single [x, y] pair of a series.
type Datapoint [2]any

// SeriesInfo is the derived projection of a changes table: per-series
// datapoint sequences plus the first-seen display order of series names.
// Order contains exactly the keys of Series, each once.
type SeriesInfo struct {
	Order  []string
	Series map[string][]Datapoint
}
