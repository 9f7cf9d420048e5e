package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/depsight/depsight/pkg/manifest"
)

// Package is one row of an inventory report: a declared dependency joined
// with its registry metadata and usage verdict.
type Package struct {
	Name           string         `json:"name"`
	Scope          manifest.Scope `json:"scope"`
	VersionSpec    string         `json:"version_spec"`
	CurrentVersion string         `json:"current_version,omitempty"`
	LatestVersion  string         `json:"latest_version,omitempty"`
	Description    string         `json:"description,omitempty"`
	Homepage       string         `json:"homepage,omitempty"`
	Used           bool           `json:"used"`
	Outdated       bool           `json:"outdated"`

	// MetadataMissing marks packages the registry had no usable record
	// for, whether unpublished, private, or unreachable at refresh time.
	MetadataMissing bool `json:"metadata_missing"`
}

// Report is the analysis of one manifest at one point in time. Packages
// keep manifest declaration order.
type Report struct {
	ID           uuid.UUID `json:"id"`
	ManifestPath string    `json:"manifest_path"`
	ProjectName  string    `json:"project_name,omitempty"`
	GeneratedAt  time.Time `json:"generated_at"`
	Packages     []Package `json:"packages"`
}

// Summary aggregates a report's counts.
type Summary struct {
	Total    int `json:"total"`
	Outdated int `json:"outdated"`
	Unused   int `json:"unused"`
	Missing  int `json:"missing"`
}

// Summary computes aggregate counts over the report.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Packages)}
	for _, p := range r.Packages {
		if p.Outdated {
			s.Outdated++
		}
		if !p.Used {
			s.Unused++
		}
		if p.MetadataMissing {
			s.Missing++
		}
	}
	return s
}

// Outdated returns the packages with a newer published version.
func (r *Report) Outdated() []Package {
	return r.filter(func(p Package) bool { return p.Outdated })
}

// Unused returns the packages never referenced from source.
func (r *Report) Unused() []Package {
	return r.filter(func(p Package) bool { return !p.Used })
}

// Find returns the package named name.
func (r *Report) Find(name string) (Package, bool) {
	for _, p := range r.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

func (r *Report) filter(keep func(Package) bool) []Package {
	var out []Package
	for _, p := range r.Packages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
