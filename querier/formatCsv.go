// formatCsv.go
package querier

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/tablefs/tablefs-querier/core"
)

// ParseDelimited decodes delimited text into a Table. The first record is
// the column header; every cell stays a string. The delimiter is a comma
// except for .tsv paths, which use a tab. Short records are padded to the
// header width and duplicate header names are a FormatError, so the Table
// invariants hold.
func ParseDelimited(resp *core.Response) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(resp.Body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if resp.Extension() == ".tsv" || resp.ContentType() == "text/tab-separated-values" {
		r.Comma = '\t'
	}

	header, err := r.Read()
	if err == io.EOF {
		return NewTable(), nil
	}
	if err != nil {
		return nil, &core.FormatError{Format: FormatDelimited, Err: err}
	}

	table := NewTable(header...)
	if err := table.Validate(); err != nil {
		return nil, &core.FormatError{Format: FormatDelimited, Err: err}
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &core.FormatError{Format: FormatDelimited, Err: err}
		}
		row := make([]any, len(header))
		for i := range row {
			if i < len(record) {
				row[i] = record[i]
			} else {
				row[i] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
