// Package manifest reads and rewrites package.json dependency declarations.
//
// Reading preserves the manifest's declaration order: the dependencies group
// is listed before devDependencies, and entries within each group keep their
// source order. Order matters to consumers that present the inventory the
// way the author wrote it, so parsing walks JSON tokens instead of decoding
// into Go maps.
package manifest

import (
	"os"

	"github.com/depsight/depsight/pkg/errors"
)

// FileName is the manifest file this package understands.
const FileName = "package.json"

// Scope identifies which dependency group declared a package.
type Scope string

const (
	// Runtime covers the dependencies group.
	Runtime Scope = "runtime"
	// Development covers the devDependencies group.
	Development Scope = "development"
)

// DeclaredPackage is a single dependency entry from a manifest. Instances
// are value types created once per parse; identity is (ManifestPath, Name).
type DeclaredPackage struct {
	Name         string `json:"name"`
	VersionSpec  string `json:"version_spec"`
	Scope        Scope  `json:"scope"`
	ManifestPath string `json:"manifest_path"`
}

// Manifest holds the declared packages of one package.json.
type Manifest struct {
	Path     string
	Name     string // the manifest's own "name" field, if present
	Packages []DeclaredPackage
}

// Read loads and parses the manifest at path.
//
// It fails with code NOT_FOUND_MANIFEST when the file does not exist and
// INVALID_MANIFEST when the content is not valid JSON or declares a package
// name that could not exist on a registry (empty, control characters, path
// traversal sequences). A missing or non-object dependency group contributes
// zero packages without error; version specs that are not JSON strings are
// kept as their compact JSON text rather than rejected.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeManifestNotFound, "manifest not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest: %s", path)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest: %s", path)
	}

	m := &Manifest{Path: path, Name: doc.name}
	for _, g := range []struct {
		key   string
		scope Scope
	}{
		{"dependencies", Runtime},
		{"devDependencies", Development},
	} {
		for _, e := range doc.group(g.key) {
			// Declared names end up spliced into registry URLs and
			// package-manager argv; refuse anything that cannot be a
			// real package before it travels.
			if err := errors.ValidatePackageName(e.name); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "manifest %s: package %q", path, e.name)
			}
			m.Packages = append(m.Packages, DeclaredPackage{
				Name:         e.name,
				VersionSpec:  e.spec,
				Scope:        g.scope,
				ManifestPath: path,
			})
		}
	}
	return m, nil
}

// Names returns the distinct declared package names in declaration order.
// A name declared in both groups appears once, at its first position.
func (m *Manifest) Names() []string {
	seen := make(map[string]bool, len(m.Packages))
	names := make([]string, 0, len(m.Packages))
	for _, p := range m.Packages {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// ByName returns the declared packages keyed by name. When a name appears
// in both groups the runtime entry wins, since name-keyed lookups serve the
// package as it ships at runtime.
func (m *Manifest) ByName() map[string]DeclaredPackage {
	out := make(map[string]DeclaredPackage, len(m.Packages))
	for _, p := range m.Packages {
		if prev, ok := out[p.Name]; ok && prev.Scope == Runtime {
			continue
		}
		out[p.Name] = p
	}
	return out
}
