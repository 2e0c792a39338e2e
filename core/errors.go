package core

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the requested path does not exist on the backend.
// Backends wrap it with the offending path; check with errors.Is.
var ErrNotFound = errors.New("path not found")

// FetchError wraps a network or IO failure while retrieving a path.
type FetchError struct {
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FormatError indicates the payload could not be decoded with the
// selected format.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// TransformError indicates the changes transform could not locate a
// column it needs.
type TransformError struct {
	Column string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("changes transform: missing column %q", e.Column)
}

// UnsupportedBackendError is returned by every operation of a backend
// constructed from an unrecognized type discriminator.
type UnsupportedBackendError struct {
	Kind string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf("unsupported backend type %q", e.Kind)
}
