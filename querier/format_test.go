package querier

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablefs/tablefs-querier/core"
)

func textResponse(path, contentType, body string) *core.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &core.Response{Path: path, Header: header, Body: []byte(body)}
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		ext         string
		want        string
	}{
		{"csv content type", "text/csv", ".csv", FormatDelimited},
		{"tsv content type", "text/tab-separated-values", ".tsv", FormatDelimited},
		{"plain text", "text/plain", ".txt", FormatDelimited},
		{"json content type", "application/json", ".json", FormatJSON},
		{"arrow file content type", "application/vnd.apache.arrow.file", ".arrow", FormatArrow},
		{"arrow stream content type", "application/vnd.apache.arrow.stream", "", FormatArrow},
		{"octet stream with arrow extension", "application/octet-stream", ".arrow", FormatArrow},
		{"octet stream with unknown extension", "application/octet-stream", ".bin", FormatDelimited},
		{"json by extension", "", ".json", FormatJSON},
		{"feather by extension", "", ".feather", FormatArrow},
		{"ipc by extension", "", ".ipc", FormatArrow},
		{"no hints defaults to delimited", "", "", FormatDelimited},
		{"unknown everything defaults to delimited", "application/x-whatever", ".xyz", FormatDelimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectFormat(tt.contentType, tt.ext))
		})
	}
}

func TestParseDelimited(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		table, err := ParseDelimited(textResponse("data.csv", "text/csv", "name,value\na,1\nb,2\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "value"}, table.Columns)
		assert.Equal(t, [][]any{{"a", "1"}, {"b", "2"}}, table.Rows)
		require.NoError(t, table.Validate())
	})

	t.Run("tsv by extension", func(t *testing.T) {
		table, err := ParseDelimited(textResponse("data.tsv", "", "name\tvalue\na\t1\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "value"}, table.Columns)
		assert.Equal(t, [][]any{{"a", "1"}}, table.Rows)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		table, err := ParseDelimited(textResponse("data.csv", "text/csv", "a,b,c\n1,2\n"))
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"1", "2", ""}}, table.Rows)
		require.NoError(t, table.Validate())
	})

	t.Run("header only", func(t *testing.T) {
		table, err := ParseDelimited(textResponse("data.csv", "text/csv", "name,value\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "value"}, table.Columns)
		assert.Empty(t, table.Rows)
	})

	t.Run("empty body", func(t *testing.T) {
		table, err := ParseDelimited(textResponse("data.csv", "text/csv", ""))
		require.NoError(t, err)
		assert.Empty(t, table.Columns)
		assert.Empty(t, table.Rows)
	})

	t.Run("duplicate header names", func(t *testing.T) {
		_, err := ParseDelimited(textResponse("data.csv", "text/csv", "a,a\n1,2\n"))
		var ferr *core.FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, err.Error(), `duplicate column "a"`)
	})
}

func TestParseJSON(t *testing.T) {
	t.Run("columnar object", func(t *testing.T) {
		table, err := ParseJSON(textResponse("data.json", "application/json", `{"name":["a","b"],"value":[1,2]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "value"}, table.Columns)
		assert.Equal(t, [][]any{{"a", int64(1)}, {"b", int64(2)}}, table.Rows)
	})

	t.Run("array of row objects", func(t *testing.T) {
		table, err := ParseJSON(textResponse("data.json", "application/json",
			`[{"name":"a","value":1},{"name":"b","value":2.5,"extra":true}]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "value", "extra"}, table.Columns)
		assert.Equal(t, [][]any{
			{"a", int64(1), nil},
			{"b", 2.5, true},
		}, table.Rows)
		require.NoError(t, table.Validate())
	})

	t.Run("columnar with uneven columns pads with nil", func(t *testing.T) {
		table, err := ParseJSON(textResponse("data.json", "application/json", `{"a":[1,2,3],"b":["x"]}`))
		require.NoError(t, err)
		assert.Equal(t, [][]any{
			{int64(1), "x"},
			{int64(2), nil},
			{int64(3), nil},
		}, table.Rows)
	})

	t.Run("empty array", func(t *testing.T) {
		table, err := ParseJSON(textResponse("data.json", "application/json", `[]`))
		require.NoError(t, err)
		assert.Empty(t, table.Columns)
		assert.Empty(t, table.Rows)
	})

	t.Run("duplicate columnar key", func(t *testing.T) {
		_, err := ParseJSON(textResponse("data.json", "application/json", `{"a":[1],"a":[2]}`))
		var ferr *core.FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, err.Error(), `duplicate column "a"`)
	})

	t.Run("malformed document", func(t *testing.T) {
		for _, body := range []string{"", "42", `"scalar"`, `[1,2]`, `{"a":1}`, `[{"a":`} {
			_, err := ParseJSON(textResponse("data.json", "application/json", body))
			var ferr *core.FormatError
			assert.ErrorAs(t, err, &ferr, "body %q", body)
		}
	})
}

func TestParseArrowRoundTrip(t *testing.T) {
	table := NewTable("name", "value")
	table.AppendRow("a", int64(1))
	table.AppendRow("b", int64(2))

	encoded, err := EncodeArrow(table)
	require.NoError(t, err)

	decoded, err := ParseArrow(&core.Response{Path: "data.arrow", Header: http.Header{}, Body: encoded})
	require.NoError(t, err)
	assert.Equal(t, table.Columns, decoded.Columns)
	assert.Equal(t, table.Rows, decoded.Rows)
	require.NoError(t, decoded.Validate())
}

func TestParseArrowZeroRows(t *testing.T) {
	table := NewTable("name", "value")

	encoded, err := EncodeArrow(table)
	require.NoError(t, err)

	decoded, err := ParseArrow(&core.Response{Path: "data.arrow", Header: http.Header{}, Body: encoded})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, decoded.Columns)
	assert.Empty(t, decoded.Rows)
}

func TestParseArrowCorrupt(t *testing.T) {
	_, err := ParseArrow(&core.Response{Path: "data.arrow", Header: http.Header{}, Body: []byte("not arrow data")})
	var ferr *core.FormatError
	require.ErrorAs(t, err, &ferr)
	// Both framings get tried; the error reports both diagnoses.
	assert.Contains(t, ferr.Err.Error(), "\n")
}

func TestBinaryPath(t *testing.T) {
	assert.True(t, BinaryPath("dir/data.arrow"))
	assert.True(t, BinaryPath("data.FEATHER"))
	assert.False(t, BinaryPath("data.csv"))
	assert.False(t, BinaryPath("data"))
}

func TestParseDispatch(t *testing.T) {
	table, err := Parse(textResponse("data.csv", "text/csv; charset=utf-8", "name,value\na,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "value"}, table.Columns)
}
