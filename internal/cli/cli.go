// Package cli implements the depsight command-line interface.
//
// This package provides commands for inventorying a project's npm
// dependencies, checking them against the registry, finding unused
// packages, and serving the report over HTTP. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - list: Inventory every declared dependency with freshness and usage
//   - outdated / unused: Filtered views with CI-friendly exit codes
//   - update / remove: Apply changes through the detected package manager
//   - graph: Render the inventory as a Graphviz diagram
//   - browse: Interactive terminal view of the report
//   - serve: JSON API with background refresh
//   - cache: Manage the registry metadata cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Styled
// status output goes to stdout; log lines go to stderr.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/buildinfo"
	"github.com/depsight/depsight/pkg/cache"
	"github.com/depsight/depsight/pkg/config"
	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
	"github.com/depsight/depsight/pkg/registry"
	"github.com/depsight/depsight/pkg/usage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depsight"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string // --config
	registryURL string // --registry
	noCache     bool   // --no-cache
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "depsight",
		Short:        "Depsight inventories npm dependencies and their freshness",
		Long:         `Depsight reads a project's package.json, checks every declared dependency against the npm registry, and reports which packages are outdated and which are never imported from source.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: .depsight.toml, then the user config dir)")
	root.PersistentFlags().StringVar(&c.registryURL, "registry", "", "npm registry URL (overrides config)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the metadata cache")

	// Register all subcommands
	root.AddCommand(c.listCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.outdatedCommand())
	root.AddCommand(c.unusedCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the effective configuration for a project directory
// and applies flag overrides on top of it.
func (c *CLI) loadConfig(dir string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		var path string
		cfg, path, err = config.Discover(dir)
		if err == nil && path != "" {
			c.Logger.Debugf("Using config %s", path)
		}
	}
	if err != nil {
		return cfg, err
	}
	if c.registryURL != "" {
		cfg.Registry.URL = c.registryURL
	}
	return cfg, nil
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine builds the inventory engine from config. The registry service
// is returned alongside so serve mode can expose breaker states; observer
// receives per-lookup outcomes and may be nil.
func (c *CLI) newEngine(ctx context.Context, cfg config.Config, observer func(registry.Outcome)) (*inventory.Engine, *registry.Service) {
	svc := registry.NewService(registry.Options{
		BaseURL:  cfg.Registry.URL,
		Timeout:  cfg.Registry.Timeout.Duration,
		Cache:    c.newStore(ctx, cfg),
		TTL:      cfg.Cache.TTL.Duration,
		Logger:   func(format string, args ...any) { c.Logger.Warnf(format, args...) },
		Observer: observer,
	})

	scanner := usage.New(usage.Options{
		Extensions: cfg.Scan.Extensions,
		SkipDirs:   cfg.Scan.Exclude,
		Workers:    cfg.Scan.Workers,
		Gitignore:  cfg.Scan.Gitignore,
		Logger:     func(format string, args ...any) { c.Logger.Debugf(format, args...) },
	})

	engine := inventory.New(inventory.Options{
		Registry:    svc,
		Scanner:     scanner,
		Concurrency: cfg.Registry.Concurrency,
		Logger:      func(format string, args ...any) { c.Logger.Warnf(format, args...) },
	})
	return engine, svc
}

// newStore selects the metadata cache backend from config. A backend that
// cannot be opened degrades to the null cache with a warning; a broken
// cache never blocks a refresh.
func (c *CLI) newStore(ctx context.Context, cfg config.Config) cache.Cache {
	if c.noCache || cfg.Cache.Backend == "off" {
		return cache.NewNullCache()
	}

	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache()

	case "redis":
		store, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			c.Logger.Warnf("Redis cache unavailable, continuing without cache: %v", err)
			return cache.NewNullCache()
		}
		return store

	default: // file
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache()
			}
		}
		store, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warnf("File cache unavailable, continuing without cache: %v", err)
			return cache.NewNullCache()
		}
		return store
	}
}

// =============================================================================
// Refresh
// =============================================================================

// refresh produces a fresh report for the project at dir, with spinner
// feedback. Manifest errors pass through with their codes intact.
func (c *CLI) refresh(ctx context.Context, dir string) (*inventory.Report, error) {
	cfg, err := c.loadConfig(dir)
	if err != nil {
		return nil, err
	}
	return c.refreshWith(ctx, cfg, dir)
}

// refreshWith is refresh with an already resolved config, so workspace
// iteration loads the config once at the root.
func (c *CLI) refreshWith(ctx context.Context, cfg config.Config, dir string) (*inventory.Report, error) {
	engine, _ := c.newEngine(ctx, cfg, nil)

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Checking dependencies...")
	spinner.Start()

	report, err := engine.Refresh(ctx, filepath.Join(dir, manifest.FileName), dir)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	prog.done(fmt.Sprintf("Checked %d packages", len(report.Packages)))
	return report, nil
}

// =============================================================================
// Paths
// =============================================================================

// projectDir returns the directory argument, defaulting to the current
// directory.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// cacheDir returns the cache directory using XDG standard (~/.cache/depsight/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
