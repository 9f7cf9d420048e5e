// Package usage detects whether declared packages are referenced from a
// JavaScript or TypeScript source tree.
//
// Detection is textual, not syntactic: each candidate name is tested against
// import/require patterns in the raw file bytes. That trades recall on
// dynamic or re-exported imports for speed and zero build tooling, and it
// can in principle false-positive on an import-shaped string inside a
// comment. Both are acceptable for an inventory hint.
package usage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions are the file extensions scanned when none are
// configured. They cover the module-syntax file types npm packages are
// imported from.
var DefaultExtensions = []string{
	".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs", ".mts", ".cts", ".vue", ".svelte",
}

// DefaultSkipDirs are directory names never descended into. node_modules is
// the install tree itself; the rest are build output and VCS internals.
var DefaultSkipDirs = []string{
	"node_modules", ".git", "dist", "build", "out", "coverage",
}

const defaultWorkers = 8

// Options configures a Scanner.
type Options struct {
	Extensions []string             // File extensions to scan (default: DefaultExtensions)
	SkipDirs   []string             // Directory names to skip (default: DefaultSkipDirs)
	Workers    int                  // Concurrent file readers (default: 8)
	Gitignore  bool                 // Honor a .gitignore at the scan root
	Logger     func(string, ...any) // Progress/error callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if len(opts.SkipDirs) == 0 {
		opts.SkipDirs = DefaultSkipDirs
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Scanner reports which candidate packages are referenced from source files.
type Scanner struct {
	opts       Options
	extensions map[string]bool
	skipDirs   map[string]bool
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	opts = opts.WithDefaults()
	s := &Scanner{
		opts:       opts,
		extensions: make(map[string]bool, len(opts.Extensions)),
		skipDirs:   make(map[string]bool, len(opts.SkipDirs)),
	}
	for _, ext := range opts.Extensions {
		s.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range opts.SkipDirs {
		s.skipDirs[dir] = true
	}
	return s
}

// Scan walks root and returns the set of candidate names referenced by at
// least one source file. The result maps a name to true only when a
// reference was found; absent names were not seen.
//
// Failures degrade rather than propagate: an unreadable file counts as "no
// match in this file", and a failure to enumerate the tree at all returns
// an empty set. A name stops being tested as soon as one file references
// it, and the scan ends early once every candidate is resolved.
func (s *Scanner) Scan(ctx context.Context, root string, candidates []string) map[string]bool {
	used := make(map[string]bool, len(candidates))
	if len(candidates) == 0 {
		return used
	}

	files, err := s.discover(root)
	if err != nil {
		s.opts.Logger("usage scan: enumerate %s: %v", root, err)
		return used
	}

	probes := make([]probe, len(candidates))
	for i, name := range candidates {
		probes[i] = compileProbe(name)
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		remaining = len(probes)
	)
	jobs := make(chan string)
	done := make(chan struct{}) // closed once every candidate is found

	for range s.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if ctx.Err() != nil {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				text := string(data)
				for i := range probes {
					p := &probes[i]
					mu.Lock()
					found := used[p.name]
					mu.Unlock()
					if found || !p.matches(text) {
						continue
					}
					mu.Lock()
					if !used[p.name] {
						used[p.name] = true
						if remaining--; remaining == 0 {
							close(done)
						}
					}
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case jobs <- f:
		case <-done:
			break feed
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return used
}

// discover enumerates the source files under root. Unreadable entries are
// skipped; only a failure at the root itself aborts the walk.
func (s *Scanner) discover(root string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if s.opts.Gitignore {
		if m, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = m
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (s.skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if matcher != nil {
			if rel, err := filepath.Rel(root, path); err == nil && matcher.MatchesPath(rel) {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// probe holds the compiled reference patterns for one candidate name.
type probe struct {
	name     string
	patterns [3]*regexp.Regexp
}

// compileProbe builds the three reference patterns for a package name:
// keyword plus whitespace plus a quoted name or name/subpath, keyword
// directly against the quote, and the call form require("name"). The name
// must be followed by a quote or a slash so that a candidate never matches
// a longer package name it happens to prefix.
func compileProbe(name string) probe {
	q := regexp.QuoteMeta(name)
	return probe{
		name: name,
		patterns: [3]*regexp.Regexp{
			regexp.MustCompile(`(?:import|require|from)\s+['"]` + q + `(?:['"]|/)`),
			regexp.MustCompile(`(?:import|require|from)['"]` + q + `['"]`),
			regexp.MustCompile(`require\(\s*['"]` + q + `(?:/[^'"]*)?['"]\s*\)`),
		},
	}
}

func (p *probe) matches(text string) bool {
	for _, re := range p.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
