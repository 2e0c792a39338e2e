package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablefs/tablefs-querier/backends"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9743, cfg.Port)
	assert.Equal(t, 9744, cfg.FlightPort)
	assert.Equal(t, backends.LocalType, cfg.Backend.Type)
	assert.Equal(t, "./data", cfg.Backend.Root)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Zero(t, cfg.Cache.MaxEntries)
}

func TestLoadFile(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 8080
debug: true
backend:
  type: s3
  bucket: tables
  prefix: exported
  region: eu-west-1
cache:
  ttl: 30s
  max_entries: 256
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, backends.S3Type, cfg.Backend.Type)
	assert.Equal(t, "tables", cfg.Backend.Bucket)
	assert.Equal(t, "exported", cfg.Backend.Prefix)
	assert.Equal(t, "eu-west-1", cfg.Backend.Region)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 256, cfg.Cache.MaxEntries)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("TABLEFS_PORT", "9000")
	t.Setenv("TABLEFS_BACKEND_TYPE", "nginx")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, backends.NginxType, cfg.Backend.Type)
}

func TestLoadMissingFile(t *testing.T) {
	viper.Reset()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
