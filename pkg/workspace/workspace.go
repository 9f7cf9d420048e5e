// Package workspace discovers the member projects of a JavaScript
// monorepo. Patterns come from the root package.json "workspaces" field
// (plain array or the {"packages": [...]} wrapper) and from
// pnpm-workspace.yaml; both sources are honored when present. Patterns use
// filepath.Match syntax, and a leading "!" excludes what it matches.
package workspace

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestName = "package.json"

// Member is one project directory inside a workspace.
type Member struct {
	Dir          string `json:"dir"`
	ManifestPath string `json:"manifest_path"`
}

// Members returns the member projects of the workspace rooted at root: the
// root itself first (when it has a manifest), then every directory matched
// by a workspace pattern, in pattern order. Directories without a
// package.json are skipped. A plain project with no workspace
// configuration yields just its root.
func Members(root string) ([]Member, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var members []Member
	seen := map[string]bool{}

	if m, ok := memberAt(root); ok {
		members = append(members, m)
		seen[root] = true
	}

	includes, excludes := patterns(root)
	for _, pattern := range includes {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			// Malformed pattern; skip it rather than fail the discovery.
			continue
		}
		for _, dir := range matches {
			if seen[dir] || isExcluded(root, dir, excludes) {
				continue
			}
			if m, ok := memberAt(dir); ok {
				members = append(members, m)
				seen[dir] = true
			}
		}
	}
	return members, nil
}

func memberAt(dir string) (Member, bool) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Member{}, false
	}
	manifest := filepath.Join(dir, manifestName)
	if _, err := os.Stat(manifest); err != nil {
		return Member{}, false
	}
	return Member{Dir: dir, ManifestPath: manifest}, true
}

// patterns collects include and exclude patterns from both workspace
// sources. Unreadable or malformed files contribute nothing.
func patterns(root string) (includes, excludes []string) {
	raw := append(npmPatterns(root), pnpmPatterns(root)...)
	for _, p := range raw {
		if negated, ok := strings.CutPrefix(p, "!"); ok {
			excludes = append(excludes, negated)
			continue
		}
		includes = append(includes, p)
	}
	return includes, excludes
}

func npmPatterns(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, manifestName))
	if err != nil {
		return nil
	}
	var doc struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || len(doc.Workspaces) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(doc.Workspaces, &list); err == nil {
		return list
	}
	var wrapper struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(doc.Workspaces, &wrapper); err == nil {
		return wrapper.Packages
	}
	return nil
}

func pnpmPatterns(root string) []string {
	data, err := os.ReadFile(filepath.Join(root, "pnpm-workspace.yaml"))
	if err != nil {
		return nil
	}
	var doc struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc.Packages
}

func isExcluded(root, dir string, excludes []string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range excludes {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
