// Package registry resolves npm package metadata with negative caching and
// request coalescing.
//
// The failure mode for a metadata lookup is "no metadata", never an error:
// a 404, a timeout, a 5xx after retries, or a malformed packument all
// resolve to a nil record, and that nil is cached like any other answer.
// That keeps repeated runs from re-asking the registry about packages it
// already said it does not know.
package registry

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/depsight/depsight/pkg/cache"
	"github.com/depsight/depsight/pkg/version"
)

// DefaultTTL is how long resolved metadata (including negative answers)
// stays cached.
const DefaultTTL = 24 * time.Hour

// Metadata is the distilled registry record for one package. A nil
// *Metadata means the registry had no usable record at last lookup.
type Metadata struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Homepage      string `json:"homepage,omitempty"`
	LatestVersion string `json:"latest_version,omitempty"`
}

// Outcome classifies how a lookup was satisfied.
type Outcome string

const (
	OutcomeCacheHit Outcome = "cache_hit"
	OutcomeFetched  Outcome = "fetched"
	OutcomeFailed   Outcome = "failed"
)

// Options configures a Service.
type Options struct {
	BaseURL  string               // Registry endpoint (default: DefaultBaseURL)
	Timeout  time.Duration        // Per-request timeout (default: httputil.DefaultTimeout)
	Cache    cache.Cache          // Metadata cache (default: no caching)
	TTL      time.Duration        // Cache lifetime (default: DefaultTTL)
	Logger   func(string, ...any) // Lookup failure log callback (optional)
	Observer func(Outcome)        // Per-lookup outcome callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.Observer == nil {
		opts.Observer = func(Outcome) {}
	}
	return opts
}

// Service resolves package metadata cache-first, coalescing concurrent
// lookups for the same name into a single registry request.
type Service struct {
	client  *client
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	logf    func(string, ...any)
	observe func(Outcome)
}

// NewService creates a Service with the given options.
func NewService(opts Options) *Service {
	opts = opts.WithDefaults()
	return &Service{
		client:  newClient(opts.BaseURL, opts.Timeout),
		cache:   opts.Cache,
		ttl:     opts.TTL,
		logf:    opts.Logger,
		observe: opts.Observer,
	}
}

// Lookup returns the metadata for name, or nil when the registry has no
// usable record. Registry failures are not surfaced as errors; they
// resolve to nil and are cached so the registry is not re-asked until the
// entry expires. The returned error is reserved for context cancellation.
func (s *Service) Lookup(ctx context.Context, name string) (*Metadata, error) {
	key := s.key(name)
	if data, hit, err := s.cache.Get(ctx, key); err != nil {
		s.logf("registry: cache read %s: %v", name, err)
	} else if hit {
		if meta, ok := decodeMetadata(data); ok {
			s.observe(OutcomeCacheHit)
			return meta, nil
		}
		// Corrupt entry: fall through and refetch.
	}

	v, err, _ := s.group.Do(name, func() (any, error) {
		doc, err := s.client.fetch(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				// Cancellation says nothing about the registry; leave
				// the cache alone.
				return nil, ctx.Err()
			}
			s.logf("registry: lookup %s: %v", name, err)
			s.observe(OutcomeFailed)
			s.store(ctx, key, nil)
			return (*Metadata)(nil), nil
		}
		meta := resolve(doc)
		s.observe(OutcomeFetched)
		s.store(ctx, key, meta)
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Metadata), nil
}

// Forget drops the cached record for name, forcing the next Lookup to hit
// the registry.
func (s *Service) Forget(ctx context.Context, name string) error {
	return s.cache.Delete(ctx, s.key(name))
}

// BreakerStates reports the per-host circuit breaker states, for health
// reporting.
func (s *Service) BreakerStates() map[string]string {
	return s.client.pool.states()
}

func (s *Service) key(name string) string {
	return "registry:" + s.client.host + ":" + name
}

func (s *Service) store(ctx context.Context, key string, meta *Metadata) {
	data, err := json.Marshal(meta) // nil marshals to "null"
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logf("registry: cache write %s: %v", key, err)
	}
}

func decodeMetadata(data []byte) (*Metadata, bool) {
	var meta *Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false
	}
	return meta, true
}

// resolve distills a packument into Metadata. The latest version comes
// from the "latest" dist-tag when present, otherwise the highest version
// key. Description and homepage prefer the latest version's own fields,
// then any version that carries them (highest first), then the top-level
// document. A document yielding no version and no descriptive field
// resolves to nil.
func resolve(doc *document) *Metadata {
	meta := &Metadata{Name: doc.Name}

	latest := doc.DistTags["latest"]
	ordered := versionsDesc(doc)
	if latest == "" && len(ordered) > 0 {
		latest = ordered[0]
	}
	meta.LatestVersion = latest

	if d, ok := doc.Versions[latest]; ok {
		meta.Description, meta.Homepage = d.Description, d.Homepage
	}
	if meta.Description == "" && meta.Homepage == "" {
		for _, v := range ordered {
			if d := doc.Versions[v]; d.Description != "" || d.Homepage != "" {
				meta.Description, meta.Homepage = d.Description, d.Homepage
				break
			}
		}
	}
	if meta.Description == "" {
		meta.Description = doc.Description
	}
	if meta.Homepage == "" {
		meta.Homepage = doc.Homepage
	}

	if meta.LatestVersion == "" && meta.Description == "" && meta.Homepage == "" {
		return nil
	}
	return meta
}

func versionsDesc(doc *document) []string {
	vs := slices.Collect(maps.Keys(doc.Versions))
	slices.SortFunc(vs, func(a, b string) int { return version.Compare(b, a) })
	return vs
}
