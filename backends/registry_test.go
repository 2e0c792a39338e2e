package backends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablefs/tablefs-querier/core"
)

func TestNewLocal(t *testing.T) {
	fs, err := New(Settings{Type: LocalType, Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, (*Local)(nil), fs)
}

func TestNewNginx(t *testing.T) {
	fs, err := New(Settings{Type: NginxType, URL: "http://files.example.com/data"})
	require.NoError(t, err)
	assert.IsType(t, (*Nginx)(nil), fs)
}

func TestNewS3(t *testing.T) {
	fs, err := New(Settings{Type: S3Type, Bucket: "tables", Region: "us-east-1"})
	require.NoError(t, err)
	assert.IsType(t, (*S3)(nil), fs)
}

func TestNewUnknownType(t *testing.T) {
	fs, err := New(Settings{Type: "ftp"})
	require.NoError(t, err, "construction is total over discriminators")
	require.NotNil(t, fs)

	_, err = fs.Fetch(context.Background(), "data.csv", false)
	var unsupported *core.UnsupportedBackendError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "ftp", unsupported.Kind)

	_, err = fs.List(context.Background(), "")
	assert.ErrorAs(t, err, &unsupported)
}

func TestRegisterCustomFactory(t *testing.T) {
	local := NewLocalFs(nil)
	Register("custom-test", func(s Settings) (core.FileSystem, error) {
		return local, nil
	})

	fs, err := New(Settings{Type: "custom-test"})
	require.NoError(t, err)
	assert.Same(t, local, fs)
}
