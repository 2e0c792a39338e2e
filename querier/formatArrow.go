// formatArrow.go
package querier

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/tablefs/tablefs-querier/core"
)

// ParseArrow decodes an Arrow IPC payload (file or stream framing) into a
// Table. Schema field order becomes column order; all record batches are
// concatenated. Corrupt payloads and reader errors are FormatErrors
// carrying the diagnosis from both framings.
func ParseArrow(resp *core.Response) (*Table, error) {
	table, fileErr := parseArrowFile(resp.Body)
	if fileErr == nil {
		return table, nil
	}
	// Not file-framed; retry with the stream reader before giving up.
	table, streamErr := parseArrowStream(resp.Body)
	if streamErr == nil {
		return table, nil
	}
	return nil, arrowErr(errors.Join(fileErr, streamErr))
}

func parseArrowFile(body []byte) (*Table, error) {
	r, err := ipc.NewFileReader(bytes.NewReader(body), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	table := NewTable(schemaColumns(r.Schema())...)
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		appendRecordRows(table, rec)
	}
	return table, nil
}

func parseArrowStream(body []byte) (*Table, error) {
	r, err := ipc.NewReader(bytes.NewReader(body), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer r.Release()

	table := NewTable(schemaColumns(r.Schema())...)
	for r.Next() {
		appendRecordRows(table, r.Record())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func schemaColumns(schema *arrow.Schema) []string {
	columns := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		columns[i] = f.Name
	}
	return columns
}

func appendRecordRows(table *Table, rec arrow.Record) {
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make([]any, rec.NumCols())
		for j := 0; j < int(rec.NumCols()); j++ {
			row[j] = arrowCell(rec.Column(j), i)
		}
		table.Rows = append(table.Rows, row)
	}
}

// arrowCell converts one array element to a plain Go value.
func arrowCell(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.Boolean:
		return c.Value(i)
	case *array.Int8:
		return int64(c.Value(i))
	case *array.Int16:
		return int64(c.Value(i))
	case *array.Int32:
		return int64(c.Value(i))
	case *array.Int64:
		return c.Value(i)
	case *array.Uint8:
		return int64(c.Value(i))
	case *array.Uint16:
		return int64(c.Value(i))
	case *array.Uint32:
		return int64(c.Value(i))
	case *array.Uint64:
		return int64(c.Value(i))
	case *array.Float32:
		return float64(c.Value(i))
	case *array.Float64:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	case *array.LargeString:
		return c.Value(i)
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return c.Value(i).ToTime(unit).UTC()
	default:
		if m, ok := col.(interface{ GetOneForMarshal(int) any }); ok {
			return m.GetOneForMarshal(i)
		}
		return nil
	}
}

// EncodeArrow serializes a Table as a stream-framed Arrow IPC payload.
// Column types are inferred from the first non-nil cell of each column;
// columns with no typed cells are encoded as strings.
func EncodeArrow(t *Table) ([]byte, error) {
	rec, err := tableRecord(t)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tableRecord converts a Table into a single Arrow record batch.
func tableRecord(t *Table) (arrow.Record, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for j, name := range t.Columns {
		fields[j] = arrow.Field{Name: name, Type: inferColumnType(t, j), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range t.Rows {
		for j := range t.Columns {
			appendArrowCell(builder.Field(j), row[j])
		}
	}
	return builder.NewRecord(), nil
}

// inferColumnType picks the Arrow type for column j from its first
// non-nil cell.
func inferColumnType(t *Table, j int) arrow.DataType {
	for _, row := range t.Rows {
		switch row[j].(type) {
		case nil:
			continue
		case int, int32, int64:
			return arrow.PrimitiveTypes.Int64
		case float32, float64:
			return arrow.PrimitiveTypes.Float64
		case bool:
			return arrow.FixedWidthTypes.Boolean
		case time.Time:
			return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
		default:
			return arrow.BinaryTypes.String
		}
	}
	return arrow.BinaryTypes.String
}

func appendArrowCell(b array.Builder, v any) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int:
			bb.Append(int64(n))
		case int32:
			bb.Append(int64(n))
		case int64:
			bb.Append(n)
		case float64:
			bb.Append(int64(n))
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				bb.Append(parsed)
			} else {
				bb.AppendNull()
			}
		default:
			bb.AppendNull()
		}
	case *array.Float64Builder:
		switch n := v.(type) {
		case float32:
			bb.Append(float64(n))
		case float64:
			bb.Append(n)
		case int:
			bb.Append(float64(n))
		case int64:
			bb.Append(float64(n))
		case string:
			if parsed, err := strconv.ParseFloat(n, 64); err == nil {
				bb.Append(parsed)
			} else {
				bb.AppendNull()
			}
		default:
			bb.AppendNull()
		}
	case *array.BooleanBuilder:
		switch n := v.(type) {
		case bool:
			bb.Append(n)
		case string:
			if parsed, err := strconv.ParseBool(n); err == nil {
				bb.Append(parsed)
			} else {
				bb.AppendNull()
			}
		default:
			bb.AppendNull()
		}
	case *array.TimestampBuilder:
		switch n := v.(type) {
		case time.Time:
			bb.Append(arrow.Timestamp(n.UTC().UnixMicro()))
		case string:
			if parsed, err := time.Parse(time.RFC3339Nano, n); err == nil {
				bb.Append(arrow.Timestamp(parsed.UTC().UnixMicro()))
			} else {
				bb.AppendNull()
			}
		default:
			bb.AppendNull()
		}
	case *array.StringBuilder:
		bb.Append(fmt.Sprintf("%v", v))
	default:
		b.AppendNull()
	}
}

func arrowErr(err error) error {
	return &core.FormatError{Format: FormatArrow, Err: err}
}
