// formatJson.go
package querier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tablefs/tablefs-querier/core"
)

// ParseJSON decodes a JSON document into a Table. Two shapes are
// accepted: an array of row objects (keys become columns, unioned across
// rows in first-seen order) or a columnar object (each key maps to an
// array of values aligned by index). Anything else is a FormatError.
//
// Decoding walks the token stream instead of unmarshalling into maps so
// column order follows the document.
func ParseJSON(resp *core.Response) (*Table, error) {
	trimmed := bytes.TrimLeft(resp.Body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, jsonErr(fmt.Errorf("empty document"))
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()

	switch trimmed[0] {
	case '[':
		return parseJSONRows(dec)
	case '{':
		return parseJSONColumnar(dec)
	default:
		return nil, jsonErr(fmt.Errorf("document is neither an array of rows nor a columnar object"))
	}
}

// parseJSONRows reads [{...}, {...}] keeping first-seen key order as the
// column order. Cells missing from a row are nil.
func parseJSONRows(dec *json.Decoder) (*Table, error) {
	if _, err := dec.Token(); err != nil { // consume '['
		return nil, jsonErr(err)
	}

	table := NewTable()
	var cells []map[string]any
	for dec.More() {
		row, err := parseJSONObject(dec, table)
		if err != nil {
			return nil, err
		}
		cells = append(cells, row)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, jsonErr(err)
	}

	for _, rowCells := range cells {
		row := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			row[i] = rowCells[col]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// parseJSONObject reads one {...} row, registering unseen keys as new
// table columns.
func parseJSONObject(dec *json.Decoder, table *Table) (map[string]any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, jsonErr(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, jsonErr(fmt.Errorf("array element is not an object"))
	}

	row := map[string]any{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, jsonErr(err)
		}
		key := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, jsonErr(err)
		}
		if table.ColumnIndex(key) < 0 {
			table.Columns = append(table.Columns, key)
		}
		row[key] = normalizeJSONValue(value)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, jsonErr(err)
	}
	return row, nil
}

// parseJSONColumnar reads {"col": [v, ...], ...}; columns keep document
// order, shorter arrays are padded with nil, repeated keys are an error.
func parseJSONColumnar(dec *json.Decoder) (*Table, error) {
	if _, err := dec.Token(); err != nil { // consume '{'
		return nil, jsonErr(err)
	}

	table := NewTable()
	var columns [][]any
	height := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, jsonErr(err)
		}
		key := keyTok.(string)
		if table.ColumnIndex(key) >= 0 {
			return nil, jsonErr(fmt.Errorf("duplicate column %q", key))
		}
		var values []any
		if err := dec.Decode(&values); err != nil {
			return nil, jsonErr(fmt.Errorf("column %q does not map to an array: %w", key, err))
		}
		for i, v := range values {
			values[i] = normalizeJSONValue(v)
		}
		table.Columns = append(table.Columns, key)
		columns = append(columns, values)
		if len(values) > height {
			height = len(values)
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, jsonErr(err)
	}

	for i := 0; i < height; i++ {
		row := make([]any, len(columns))
		for j, col := range columns {
			if i < len(col) {
				row[j] = col[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// normalizeJSONValue converts json.Number cells to int64 or float64.
// Nested arrays/objects pass through as decoded.
func normalizeJSONValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	default:
		return v
	}
}

func jsonErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = fmt.Errorf("truncated document")
	}
	return &core.FormatError{Format: FormatJSON, Err: err}
}
