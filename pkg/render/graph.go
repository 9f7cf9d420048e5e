// Package render turns inventory reports into Graphviz output: DOT text
// for tooling, SVG and PNG for humans.
package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
)

// rootID names the project node. Real npm package names cannot start with
// an underscore, so it can never collide with a dependency.
const rootID = "__project__"

// Options configures graph rendering.
type Options struct {
	// Detailed adds version and status lines to package labels. When
	// false, nodes carry only the package name.
	Detailed bool
}

// ToDOT lays the report out as a star: the project in the center, one
// node per declared package. Fill color encodes status (outdated,
// unused, metadata missing), and dev dependencies hang off dashed edges.
func ToDOT(r *inventory.Report, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	project := r.ProjectName
	if project == "" {
		project = filepath.Base(filepath.Dir(r.ManifestPath))
	}
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightsteelblue1, fontsize=18];\n", rootID, project)

	for _, p := range r.Packages {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(p, opts.Detailed))}
		switch {
		case p.MetadataMissing:
			attrs = append(attrs, "fillcolor=mistyrose")
		case p.Outdated:
			attrs = append(attrs, "fillcolor=khaki1")
		case !p.Used:
			attrs = append(attrs, "fillcolor=grey90", "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", p.Name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range r.Packages {
		if p.Scope == manifest.Development {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", rootID, p.Name)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", rootID, p.Name)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(p inventory.Package, detailed bool) string {
	if !detailed {
		return p.Name
	}

	lines := []string{p.Name}
	switch {
	case p.Outdated:
		lines = append(lines, p.CurrentVersion+" -> "+p.LatestVersion)
	case p.CurrentVersion != "":
		lines = append(lines, p.CurrentVersion)
	}
	if !p.Used {
		lines = append(lines, "unused")
	}
	if p.MetadataMissing {
		lines = append(lines, "no registry data")
	}
	return strings.Join(lines, "\n")
}
