// Package backends provides the storage implementations of the
// core.FileSystem capability and the factory registry that selects one
// from a type discriminator at datasource construction time.
package backends

import (
	"sync"

	"github.com/tablefs/tablefs-querier/core"
)

// Built-in backend type discriminators.
const (
	LocalType = "local"
	NginxType = "nginx"
	S3Type    = "s3"
)

// Settings is the backend selection record consumed at construction and
// never re-read afterward. Only the fields matching Type are used.
type Settings struct {
	Type string `json:"type" mapstructure:"type"`

	// local
	Root string `json:"root,omitempty" mapstructure:"root"`

	// nginx
	URL string `json:"url,omitempty" mapstructure:"url"`

	// s3
	Bucket    string `json:"bucket,omitempty" mapstructure:"bucket"`
	Prefix    string `json:"prefix,omitempty" mapstructure:"prefix"`
	Region    string `json:"region,omitempty" mapstructure:"region"`
	Endpoint  string `json:"endpoint,omitempty" mapstructure:"endpoint"`
	AccessKey string `json:"accessKey,omitempty" mapstructure:"access_key"`
	SecretKey string `json:"secretKey,omitempty" mapstructure:"secret_key"`
}

// Factory builds a backend from its settings.
type Factory func(Settings) (core.FileSystem, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register ties a factory to a type discriminator. Built-in types are
// registered at init; callers may add their own before constructing a
// datasource.
func Register(kind string, factory Factory) {
	mu.Lock()
	factories[kind] = factory
	mu.Unlock()
}

// New constructs the backend selected by settings.Type. It is total over
// discriminators: an unrecognized type yields a backend whose operations
// fail with UnsupportedBackendError instead of failing construction.
// A factory error (bad settings for a known type) is returned as-is.
func New(settings Settings) (core.FileSystem, error) {
	mu.RLock()
	factory, ok := factories[settings.Type]
	mu.RUnlock()
	if !ok {
		return NewUnsupported(settings.Type), nil
	}
	return factory(settings)
}

func init() {
	Register(LocalType, func(s Settings) (core.FileSystem, error) {
		return NewLocal(s.Root), nil
	})
	Register(NginxType, func(s Settings) (core.FileSystem, error) {
		return NewNginx(s.URL, nil)
	})
	Register(S3Type, func(s Settings) (core.FileSystem, error) {
		return NewS3(newS3Client(s), s.Bucket, s.Prefix), nil
	})
}
