package core

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// FileSystem is the capability every storage backend provides.
// Implementations are selected once at datasource construction time and
// live for the lifetime of the datasource instance.
type FileSystem interface {
	// Fetch retrieves the raw content at path. When binary is true the
	// backend must return the payload without any text transcoding.
	Fetch(ctx context.Context, path string, binary bool) (*Response, error)

	// List lists the entries under path. Used for connectivity testing.
	List(ctx context.Context, path string) (*DirectoryInfo, error)
}

// Response is the raw result of a backend fetch: the payload plus enough
// header information to pick a parser.
type Response struct {
	Path   string
	Header http.Header
	Body   []byte
}

// ContentType returns the media type of the response with any parameters
// (charset etc.) stripped. Empty when the backend supplied none.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	media, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return media
}

// Extension returns the lower-cased file extension of the fetched path,
// including the dot.
func (r *Response) Extension() string {
	return strings.ToLower(filepath.Ext(r.Path))
}

// DirectoryInfo describes a directory listing.
type DirectoryInfo struct {
	Count int
	Files []string
}
