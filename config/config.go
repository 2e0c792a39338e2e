// Package config loads runtime configuration from an optional config
// file, TABLEFS_* environment variables, and defaults, in that order of
// precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tablefs/tablefs-querier/backends"
)

// Config holds the full server configuration.
type Config struct {
	Port       int               `mapstructure:"port"`
	FlightPort int               `mapstructure:"flight_port"`
	Debug      bool              `mapstructure:"debug"`
	Backend    backends.Settings `mapstructure:"backend"`
	Cache      CacheConfig       `mapstructure:"cache"`
}

// CacheConfig tunes the shared table cache. Zero values keep the
// unbounded, never-stale default.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

func setDefaults() {
	viper.SetDefault("port", 9743)
	viper.SetDefault("flight_port", 9744)
	viper.SetDefault("backend.type", backends.LocalType)
	viper.SetDefault("backend.root", "./data")
}

// Load reads the configuration. path may be empty, in which case only
// environment variables and defaults apply.
func Load(path string) (*Config, error) {
	setDefaults()
	viper.SetEnvPrefix("TABLEFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}
