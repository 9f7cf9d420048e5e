package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/depsight/depsight/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), FileName, `
[registry]
url = "https://registry.example.com"
concurrency = 4
timeout = "30s"

[cache]
backend = "redis"
ttl = "1h"

[cache.redis]
addr = "redis.internal:6379"
db = 2

[scan]
extensions = [".ts", ".tsx"]
gitignore = false
workers = 2

[serve]
addr = ":9000"
interval = "5m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.URL != "https://registry.example.com" {
		t.Errorf("Registry.URL = %q", cfg.Registry.URL)
	}
	if cfg.Registry.Concurrency != 4 {
		t.Errorf("Registry.Concurrency = %d", cfg.Registry.Concurrency)
	}
	if cfg.Registry.Timeout.Duration != 30*time.Second {
		t.Errorf("Registry.Timeout = %v", cfg.Registry.Timeout.Duration)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis.internal:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("Cache.TTL = %v", cfg.Cache.TTL.Duration)
	}
	if len(cfg.Scan.Extensions) != 2 || cfg.Scan.Gitignore {
		t.Errorf("Scan = %+v", cfg.Scan)
	}
	if cfg.Serve.Addr != ":9000" || cfg.Serve.Interval.Duration != 5*time.Minute {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), FileName, `
[registry]
concurrency = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Registry.URL != def.Registry.URL {
		t.Errorf("Registry.URL = %q, want default", cfg.Registry.URL)
	}
	if cfg.Registry.Concurrency != 2 {
		t.Errorf("Registry.Concurrency = %d", cfg.Registry.Concurrency)
	}
	if cfg.Cache.Backend != "file" || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache = %+v, want defaults", cfg.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.toml"))
	if errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("missing file: code = %q", errors.GetCode(err))
	}

	bad := writeConfig(t, dir, "bad.toml", "[registry\nurl=")
	if _, err := Load(bad); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("malformed toml: code = %q", errors.GetCode(err))
	}

	badBackend := writeConfig(t, dir, "backend.toml", "[cache]\nbackend = \"memcached\"\n")
	if _, err := Load(badBackend); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("bad backend: code = %q", errors.GetCode(err))
	}

	badDuration := writeConfig(t, dir, "dur.toml", "[cache]\nttl = \"soon\"\n")
	if _, err := Load(badDuration); errors.GetCode(err) != errors.ErrCodeInvalidConfig {
		t.Errorf("bad duration: code = %q", errors.GetCode(err))
	}
}

func TestDiscoverProjectFileWins(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	writeConfig(t, userDir, "depsight/config.toml", "[serve]\naddr = \":7000\"\n")

	project := t.TempDir()
	writeConfig(t, project, FileName, "[serve]\naddr = \":7001\"\n")

	cfg, source, err := Discover(project)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Serve.Addr != ":7001" {
		t.Errorf("Serve.Addr = %q, want project value", cfg.Serve.Addr)
	}
	if source != filepath.Join(project, FileName) {
		t.Errorf("source = %q", source)
	}
}

func TestDiscoverFallsBackToUserConfig(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	writeConfig(t, userDir, "depsight/config.toml", "[serve]\naddr = \":7000\"\n")

	cfg, source, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Serve.Addr != ":7000" {
		t.Errorf("Serve.Addr = %q, want user value", cfg.Serve.Addr)
	}
	if source == "" {
		t.Error("source empty for user config")
	}
}

func TestDiscoverDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, source, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if source != "" {
		t.Errorf("source = %q, want empty", source)
	}
	if cfg.Registry.URL != Default().Registry.URL {
		t.Errorf("Registry.URL = %q, want default", cfg.Registry.URL)
	}
}
