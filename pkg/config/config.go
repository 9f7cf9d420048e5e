// Package config loads depsight settings from TOML. A project-local
// .depsight.toml outranks the per-user config; absent both, built-in
// defaults apply. Every field is optional and missing fields keep their
// defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/registry"
)

// FileName is the project-local config file.
const FileName = ".depsight.toml"

// Duration is a time.Duration that unmarshals from TOML strings like
// "30s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds all depsight settings.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
	Scan     ScanConfig     `toml:"scan"`
	Serve    ServeConfig    `toml:"serve"`
}

// RegistryConfig configures metadata lookups.
type RegistryConfig struct {
	URL         string   `toml:"url"`
	Concurrency int      `toml:"concurrency"`
	Timeout     Duration `toml:"timeout"`
}

// CacheConfig selects and configures the metadata cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"` // file, memory, redis, or off
	Dir     string      `toml:"dir"`     // file backend root (default: user cache dir)
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ScanConfig configures usage scanning.
type ScanConfig struct {
	Extensions []string `toml:"extensions"`
	Exclude    []string `toml:"exclude"`
	Gitignore  bool     `toml:"gitignore"`
	Workers    int      `toml:"workers"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr     string   `toml:"addr"`
	Interval Duration `toml:"interval"` // refresh cadence; 0 disables polling
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry: RegistryConfig{
			URL:         registry.DefaultBaseURL,
			Concurrency: 15,
			Timeout:     Duration{10 * time.Second},
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{24 * time.Hour},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Scan: ScanConfig{
			Gitignore: true,
		},
		Serve: ServeConfig{
			Addr:     ":8080",
			Interval: Duration{15 * time.Minute},
		},
	}
}

// Load reads the config file at path over the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config: %s", path)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config: %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover finds and loads the config for the project at dir. The search
// order is dir/.depsight.toml, then depsight/config.toml under the user
// config directory. The returned path is empty when defaults are in
// effect.
func Discover(dir string) (Config, string, error) {
	candidates := []string{filepath.Join(dir, FileName)}
	if userDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(userDir, "depsight", "config.toml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return Config{}, path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", "file", "memory", "redis", "off":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Registry.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "registry concurrency must not be negative")
	}
	return nil
}
