package backends

import (
	"context"

	"github.com/tablefs/tablefs-querier/core"
)

// Unsupported is the backend produced for an unrecognized type
// discriminator. Construction always succeeds; every operation fails
// informatively instead.
type Unsupported struct {
	Kind string
}

// NewUnsupported creates a backend that rejects all operations, naming
// the unrecognized kind.
func NewUnsupported(kind string) *Unsupported {
	return &Unsupported{Kind: kind}
}

func (u *Unsupported) Fetch(ctx context.Context, path string, binary bool) (*core.Response, error) {
	return nil, &core.UnsupportedBackendError{Kind: u.Kind}
}

func (u *Unsupported) List(ctx context.Context, path string) (*core.DirectoryInfo, error) {
	return nil, &core.UnsupportedBackendError{Kind: u.Kind}
}

var _ core.FileSystem = (*Unsupported)(nil)
