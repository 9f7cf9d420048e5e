// Package inventory assembles dependency reports: what a manifest
// declares, what the registry knows about each declared package, and
// whether the source tree actually references it.
package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/depsight/depsight/pkg/manifest"
	"github.com/depsight/depsight/pkg/registry"
	"github.com/depsight/depsight/pkg/version"
)

// MetadataSource resolves registry metadata for one package name. A nil
// record with a nil error means the registry has no usable answer.
type MetadataSource interface {
	Lookup(ctx context.Context, name string) (*registry.Metadata, error)
}

// UsageScanner reports which candidate packages are referenced under root.
type UsageScanner interface {
	Scan(ctx context.Context, root string, candidates []string) map[string]bool
}

const defaultConcurrency = 15

// Options configures an Engine.
type Options struct {
	Registry    MetadataSource       // Metadata resolver (required)
	Scanner     UsageScanner         // Usage detector; nil marks every package used
	Concurrency int                  // Parallel metadata lookups (default: 15)
	Logger      func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Engine produces inventory reports.
type Engine struct {
	opts Options
}

// New creates an Engine with the given options.
func New(opts Options) *Engine {
	return &Engine{opts: opts.WithDefaults()}
}

// Refresh reads the manifest at manifestPath, scans srcRoot for usage, and
// resolves metadata for every declared package. The only errors it returns
// are manifest errors (absent or unparseable file) and context
// cancellation; a package whose metadata cannot be resolved becomes a row
// with MetadataMissing set, and never aborts the rest.
func (e *Engine) Refresh(ctx context.Context, manifestPath, srcRoot string) (*Report, error) {
	m, err := manifest.Read(manifestPath)
	if err != nil {
		return nil, err
	}

	names := m.Names()
	e.opts.Logger("inventory: %d declared packages in %s", len(names), manifestPath)

	var used map[string]bool
	if e.opts.Scanner != nil {
		used = e.opts.Scanner.Scan(ctx, srcRoot, names)
	}

	metas := e.lookupAll(ctx, names)
	if err := ctx.Err(); err != nil {
		// Lookups degrade to missing metadata when cancelled mid-flight;
		// a report built from that would claim every package is unknown.
		return nil, err
	}

	declared := m.ByName()
	packages := make([]Package, 0, len(names))
	for _, name := range names {
		decl := declared[name]
		pkg := Package{
			Name:        name,
			Scope:       decl.Scope,
			VersionSpec: decl.VersionSpec,
			Used:        e.opts.Scanner == nil || used[name],
		}
		if v, ok := version.Normalize(decl.VersionSpec); ok {
			pkg.CurrentVersion = v
		}
		if meta := metas[name]; meta != nil {
			pkg.LatestVersion = meta.LatestVersion
			pkg.Description = meta.Description
			pkg.Homepage = meta.Homepage
			pkg.Outdated = version.IsOutdated(decl.VersionSpec, meta.LatestVersion)
		} else {
			pkg.MetadataMissing = true
		}
		packages = append(packages, pkg)
	}

	return &Report{
		ID:           uuid.New(),
		ManifestPath: m.Path,
		ProjectName:  m.Name,
		GeneratedAt:  time.Now().UTC(),
		Packages:     packages,
	}, nil
}

// lookupAll resolves metadata for every name with bounded parallelism.
// Names whose lookup errors are simply absent from the result.
func (e *Engine) lookupAll(ctx context.Context, names []string) map[string]*registry.Metadata {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	sem := make(chan struct{}, e.opts.Concurrency)
	out := make(map[string]*registry.Metadata, len(names))

	for _, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			meta, err := e.opts.Registry.Lookup(ctx, name)
			if err != nil {
				e.opts.Logger("inventory: lookup %s: %v", name, err)
				return
			}
			mu.Lock()
			out[name] = meta
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}
