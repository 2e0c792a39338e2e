// changes.go
package querier

import (
	"fmt"
	"strconv"

	"github.com/tablefs/tablefs-querier/core"
)

// ChangesColumns names the table columns the changes transform reads.
// Empty fields fall back to positional defaults: the first column is the
// series key, the second supplies x, the third supplies y.
type ChangesColumns struct {
	Key string `json:"keyColumn,omitempty"`
	X   string `json:"xColumn,omitempty"`
	Y   string `json:"yColumn,omitempty"`
}

func (c ChangesColumns) resolve(t *Table) (key, x, y int, err error) {
	pick := func(name string, fallback int) (int, error) {
		if name == "" {
			if fallback >= len(t.Columns) {
				return -1, &core.TransformError{Column: "#" + strconv.Itoa(fallback)}
			}
			return fallback, nil
		}
		if idx := t.ColumnIndex(name); idx >= 0 {
			return idx, nil
		}
		return -1, &core.TransformError{Column: name}
	}
	if key, err = pick(c.Key, 0); err != nil {
		return
	}
	if x, err = pick(c.X, 1); err != nil {
		return
	}
	y, err = pick(c.Y, 2)
	return
}

// Changes reshapes a table of discrete change events into named series.
// Rows are grouped by the key column in a single pass; each row appends
// an [x, y] pair to its series, and series names keep first-seen order.
// The result is deterministic for a given row order.
func Changes(t *Table, cols ChangesColumns) (*SeriesInfo, error) {
	key, x, y, err := cols.resolve(t)
	if err != nil {
		return nil, err
	}

	info := &SeriesInfo{Series: map[string][]Datapoint{}}
	for _, row := range t.Rows {
		name := cellString(row[key])
		if _, seen := info.Series[name]; !seen {
			info.Order = append(info.Order, name)
			info.Series[name] = []Datapoint{}
		}
		info.Series[name] = append(info.Series[name], Datapoint{row[x], row[y]})
	}
	return info, nil
}

// cellString renders a cell value as a series key.
func cellString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}
