package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
)

func testReport() *inventory.Report {
	return &inventory.Report{
		ID:          uuid.New(),
		ProjectName: "my-app",
		Packages: []inventory.Package{
			{Name: "axios", Scope: manifest.Runtime, VersionSpec: "^1.6.0", Used: true, Outdated: true},
			{Name: "@types/node", Scope: manifest.Development, VersionSpec: "^20.0.0", Used: true},
		},
	}
}

// testServer wires a Server around a tracker and a refresher that
// publishes a canned report, mirroring how the serve command wires the
// real engine.
func testServer(t *testing.T, refreshErr error) (*Server, *inventory.Tracker, *int) {
	t.Helper()
	tracker := inventory.NewTracker()
	calls := 0

	reg := prometheus.NewRegistry()
	s := New(Options{
		Tracker: tracker,
		Refresh: func(ctx context.Context) (*inventory.Report, error) {
			calls++
			if refreshErr != nil {
				return nil, refreshErr
			}
			report := testReport()
			tracker.Record(tracker.Begin(), report)
			return report, nil
		},
		Breakers: func() map[string]string { return map[string]string{"registry.npmjs.org": "closed"} },
		Logger:   log.New(io.Discard),
		Metrics:  NewMetrics(reg),
		Gatherer: reg,
	})
	return s, tracker, &calls
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	s, _, _ := testServer(t, nil)
	rec := get(t, s.Router(), "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	breakers, ok := body["registry_breakers"].(map[string]any)
	if !ok || breakers["registry.npmjs.org"] != "closed" {
		t.Errorf("registry_breakers = %v", body["registry_breakers"])
	}
}

func TestReportBeforeFirstRefresh(t *testing.T) {
	s, _, _ := testServer(t, nil)
	rec := get(t, s.Router(), "/api/v1/report")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body struct {
		Error struct{ Code string }
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(errors.ErrCodeNotFound) {
		t.Errorf("error code = %q", body.Error.Code)
	}
}

func TestReportAfterRefresh(t *testing.T) {
	s, tracker, _ := testServer(t, nil)
	tracker.Record(tracker.Begin(), testReport())

	rec := get(t, s.Router(), "/api/v1/report")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report inventory.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.ProjectName != "my-app" || len(report.Packages) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestManualRefresh(t *testing.T) {
	s, tracker, calls := testServer(t, nil)
	router := s.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if *calls != 1 {
		t.Errorf("refresher called %d times", *calls)
	}
	if tracker.Latest() == nil {
		t.Error("tracker not updated by refresh")
	}

	// The refresh shows up in /metrics.
	metrics := get(t, router, "/metrics")
	if !strings.Contains(metrics.Body.String(), `depsight_refreshes_total{status="ok",trigger="manual"} 1`) {
		t.Error("refresh not counted in metrics")
	}
}

func TestRefreshManifestError(t *testing.T) {
	s, _, _ := testServer(t, errors.New(errors.ErrCodeInvalidManifest, "unexpected end of JSON input"))

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Error struct{ Code, Message string }
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != string(errors.ErrCodeInvalidManifest) {
		t.Errorf("error code = %q", body.Error.Code)
	}
}

func TestPackageLookup(t *testing.T) {
	s, tracker, _ := testServer(t, nil)
	tracker.Record(tracker.Begin(), testReport())
	router := s.Router()

	rec := get(t, router, "/api/v1/packages/axios")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var pkg inventory.Package
	if err := json.Unmarshal(rec.Body.Bytes(), &pkg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pkg.Name != "axios" || !pkg.Outdated {
		t.Errorf("package = %+v", pkg)
	}

	// Scoped names keep their slash in the path.
	rec = get(t, router, "/api/v1/packages/@types/node")
	if rec.Code != http.StatusOK {
		t.Fatalf("scoped status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &pkg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pkg.Name != "@types/node" {
		t.Errorf("scoped package = %+v", pkg)
	}

	rec = get(t, router, "/api/v1/packages/left-pad")
	if rec.Code != http.StatusNotFound {
		t.Errorf("undeclared package status = %d, want 404", rec.Code)
	}
}
