package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/depsight/depsight/pkg/httputil"
)

func TestFetchDecodesPackument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "react",
			"description": "top-level description",
			"dist-tags": {"latest": "19.0.0"},
			"versions": {"19.0.0": {"description": "React library", "homepage": "https://react.dev"}}
		}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, 0)
	doc, err := c.fetch(context.Background(), "react")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Name != "react" {
		t.Errorf("Name = %q", doc.Name)
	}
	if doc.DistTags["latest"] != "19.0.0" {
		t.Errorf("dist-tags.latest = %q", doc.DistTags["latest"])
	}
	if d := doc.Versions["19.0.0"]; d.Homepage != "https://react.dev" {
		t.Errorf("version homepage = %q", d.Homepage)
	}
}

func TestFetchEscapesScopedName(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		w.Write([]byte(`{"name": "@types/node"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL, 0)
	if _, err := c.fetch(context.Background(), "@types/node"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotURI != "/@types%2Fnode" {
		t.Errorf("request URI = %q, want /@types%%2Fnode", gotURI)
	}
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newClient(srv.URL, 0)
	_, err := c.fetch(context.Background(), "no-such-package")
	if !errors.Is(err, httputil.ErrNotFound) {
		t.Fatalf("fetch: %v, want ErrNotFound", err)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>registry maintenance</html>"))
	}))
	defer srv.Close()

	c := newClient(srv.URL, 0)
	if _, err := c.fetch(context.Background(), "react"); err == nil {
		t.Fatal("fetch accepted a non-JSON body")
	}
}

func TestFetchSkipsOpenCircuit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newClient(srv.URL, 0)
	c.pool.get(c.host).Trip()

	_, err := c.fetch(context.Background(), "react")
	if !errors.Is(err, httputil.ErrNetwork) {
		t.Fatalf("fetch: %v, want ErrNetwork", err)
	}
	if hits.Load() != 0 {
		t.Errorf("server saw %d requests through an open circuit", hits.Load())
	}
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newClient(srv.URL, 0)
	for range 10 {
		if _, err := c.fetch(context.Background(), "ghost"); !errors.Is(err, httputil.ErrNotFound) {
			t.Fatalf("fetch: %v, want ErrNotFound", err)
		}
	}
	if c.pool.get(c.host).Tripped() {
		t.Error("breaker tripped on 404 responses")
	}
}

func TestBreakerPoolReusesPerHost(t *testing.T) {
	p := newBreakerPool()
	if p.get("a.example") != p.get("a.example") {
		t.Error("same host produced distinct breakers")
	}
	if p.get("a.example") == p.get("b.example") {
		t.Error("distinct hosts share a breaker")
	}

	p.get("a.example").Trip()
	states := p.states()
	if states["a.example"] != "open" || states["b.example"] != "closed" {
		t.Errorf("states = %v", states)
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	cb := newBreakerPool().get("dead.example")

	for range 4 {
		cb.Fail()
	}
	if cb.Tripped() {
		t.Fatal("breaker open below the failure threshold")
	}

	cb.Fail()
	if !cb.Tripped() {
		t.Error("breaker still closed after five consecutive failures")
	}
}
