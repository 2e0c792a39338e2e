// format.go
package querier

import (
	"path/filepath"
	"strings"

	"github.com/tablefs/tablefs-querier/core"
)

// Format identifiers for the supported payload decoders.
const (
	FormatDelimited = "delimited"
	FormatJSON      = "json"
	FormatArrow     = "arrow"
)

type parserFn func(resp *core.Response) (*Table, error)

var parsers = map[string]parserFn{
	FormatDelimited: ParseDelimited,
	FormatJSON:      ParseJSON,
	FormatArrow:     ParseArrow,
}

// SelectFormat maps a content type and file extension to a format
// identifier. It is total: anything unrecognized selects the
// delimited-text parser.
func SelectFormat(contentType, ext string) string {
	switch contentType {
	case "text/csv", "text/tab-separated-values", "text/plain":
		return FormatDelimited
	case "application/json":
		return FormatJSON
	case "application/vnd.apache.arrow.file", "application/vnd.apache.arrow.stream":
		return FormatArrow
	case "application/octet-stream":
		// Generic binary: trust the extension.
		if binaryExtension(ext) {
			return FormatArrow
		}
	}
	switch ext {
	case ".json":
		return FormatJSON
	case ".arrow", ".feather", ".ipc":
		return FormatArrow
	}
	return FormatDelimited
}

// Parse decodes a backend response into a Table using the format selected
// from its content type and path extension.
func Parse(resp *core.Response) (*Table, error) {
	return parsers[SelectFormat(resp.ContentType(), resp.Extension())](resp)
}

// binaryExtension reports whether the extension names a binary columnar
// file, which backends must fetch without text transcoding.
func binaryExtension(ext string) bool {
	switch ext {
	case ".arrow", ".feather", ".ipc":
		return true
	}
	return false
}

// BinaryPath reports whether path must be fetched in binary mode.
func BinaryPath(path string) bool {
	return binaryExtension(strings.ToLower(filepath.Ext(path)))
}
