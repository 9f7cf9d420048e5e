package render

import (
	"strings"
	"testing"

	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
)

func sampleReport() *inventory.Report {
	return &inventory.Report{
		ManifestPath: "/srv/my-app/package.json",
		ProjectName:  "my-app",
		Packages: []inventory.Package{
			{Name: "axios", Scope: manifest.Runtime, CurrentVersion: "1.6.0", LatestVersion: "1.7.2", Used: true, Outdated: true},
			{Name: "lodash", Scope: manifest.Runtime, CurrentVersion: "4.17.21", Used: false},
			{Name: "vitest", Scope: manifest.Development, Used: true, MetadataMissing: true},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleReport(), Options{})

	if !strings.Contains(dot, `"__project__" [label="my-app"`) {
		t.Error("missing project node")
	}
	for _, name := range []string{"axios", "lodash", "vitest"} {
		if !strings.Contains(dot, `"`+name+`"`) {
			t.Errorf("missing node for %s", name)
		}
	}
	if !strings.Contains(dot, `"__project__" -> "axios";`) {
		t.Error("missing runtime edge")
	}
	if !strings.Contains(dot, `"__project__" -> "vitest" [style=dashed];`) {
		t.Error("dev dependency edge not dashed")
	}
	if !strings.Contains(dot, `"axios" [label="axios", fillcolor=khaki1];`) {
		t.Error("outdated package not highlighted")
	}
	if !strings.Contains(dot, `"vitest" [label="vitest", fillcolor=mistyrose];`) {
		t.Error("metadata-missing package not highlighted")
	}
	if !strings.Contains(dot, "fillcolor=grey90") {
		t.Error("unused package not greyed out")
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	dot := ToDOT(sampleReport(), Options{Detailed: true})

	if !strings.Contains(dot, `label="axios\n1.6.0 -> 1.7.2"`) {
		t.Error("outdated label missing version arrow")
	}
	if !strings.Contains(dot, `label="lodash\n4.17.21\nunused"`) {
		t.Error("unused label missing status line")
	}
	if !strings.Contains(dot, `label="vitest\nno registry data"`) {
		t.Error("missing-metadata label wrong")
	}
}

func TestToDOTFallsBackToDirectoryName(t *testing.T) {
	r := sampleReport()
	r.ProjectName = ""
	dot := ToDOT(r, Options{})
	if !strings.Contains(dot, `label="my-app"`) {
		t.Error("project label did not fall back to directory name")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="134pt" height="116pt" viewBox="0.00 0.00 134.00 116.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 134.00 116.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if strings.Contains(out, "pt") {
		t.Errorf("pt units survived: %s", out)
	}

	// SVG without a viewBox passes through untouched.
	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("viewBox-less svg was modified")
	}
}
