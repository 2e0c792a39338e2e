package backends

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/tablefs/tablefs-querier/core"
)

// Local serves files from a directory tree through an afero filesystem.
// The production constructor roots an OS filesystem at the configured
// directory; tests inject a MemMapFs.
type Local struct {
	fs afero.Fs
}

// NewLocal creates a backend over the directory at root.
func NewLocal(root string) *Local {
	return &Local{fs: afero.NewBasePathFs(afero.NewOsFs(), root)}
}

// NewLocalFs creates a backend over an arbitrary afero filesystem.
func NewLocalFs(fs afero.Fs) *Local {
	return &Local{fs: fs}
}

// Fetch reads the file at path. The content type is derived from the
// extension; file bytes are returned untouched regardless of the binary
// flag.
func (l *Local) Fetch(ctx context.Context, path string, binary bool) (*core.Response, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("local: %s: %w", path, core.ErrNotFound)
		}
		return nil, &core.FetchError{Path: path, Err: err}
	}

	header := http.Header{}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		header.Set("Content-Type", ct)
	}
	return &core.Response{Path: path, Header: header, Body: data}, nil
}

// List lists the directory at path; "" means the backend root.
func (l *Local) List(ctx context.Context, path string) (*core.DirectoryInfo, error) {
	if path == "" {
		path = "."
	}
	entries, err := afero.ReadDir(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("local: %s: %w", path, core.ErrNotFound)
		}
		return nil, &core.FetchError{Path: path, Err: err}
	}

	info := &core.DirectoryInfo{Count: len(entries)}
	for _, entry := range entries {
		info.Files = append(info.Files, entry.Name())
	}
	return info, nil
}

var _ core.FileSystem = (*Local)(nil)
