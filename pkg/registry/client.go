package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/depsight/depsight/pkg/buildinfo"
	"github.com/depsight/depsight/pkg/httputil"
)

// DefaultBaseURL is the public npm registry.
const DefaultBaseURL = "https://registry.npmjs.org"

// document is the subset of an npm packument the engine reads. The full
// document can run to megabytes for old packages; everything outside these
// fields is skipped during decoding.
type document struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Homepage    string                   `json:"homepage"`
	DistTags    map[string]string        `json:"dist-tags"`
	Versions    map[string]versionDetail `json:"versions"`
}

type versionDetail struct {
	Description string `json:"description"`
	Homepage    string `json:"homepage"`
}

// client fetches packuments from one npm-compatible registry.
type client struct {
	http    *httputil.Client
	baseURL string
	host    string
	pool    *breakerPool
}

func newClient(baseURL string, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	return &client{
		http: httputil.NewClient(map[string]string{
			"User-Agent": "depsight/" + buildinfo.Version,
			"Accept":     "application/json",
		}, timeout),
		baseURL: baseURL,
		host:    host,
		pool:    newBreakerPool(),
	}
}

// fetch retrieves and decodes the packument for name. Scoped names like
// @types/node must have their slash escaped in the request path.
func (c *client) fetch(ctx context.Context, name string) (*document, error) {
	u := c.baseURL + "/" + url.PathEscape(name)

	cb := c.pool.get(c.host)
	if !cb.Ready() {
		return nil, fmt.Errorf("%w: circuit open for %s", httputil.ErrNetwork, c.host)
	}

	var (
		body     []byte
		notFound bool
	)
	err := cb.Call(func() error {
		var fetchErr error
		body, fetchErr = c.http.Get(ctx, u)
		if errors.Is(fetchErr, httputil.ErrNotFound) {
			// A 404 is a definitive registry answer, not an outage.
			notFound = true
			return nil
		}
		return fetchErr
	}, 0)
	if err != nil {
		return nil, err
	}
	if notFound {
		return nil, httputil.ErrNotFound
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode packument for %s: %w", name, err)
	}
	return &doc, nil
}
