package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
	"github.com/depsight/depsight/pkg/workspace"
)

// listCommand creates the list command, the default full-inventory view.
func (c *CLI) listCommand() *cobra.Command {
	var (
		jsonOut    bool
		allMembers bool
	)

	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "Inventory a project's npm dependencies",
		Long: `Inventory every dependency declared in package.json.

Each package is checked against the npm registry for its latest published
version and against the project's source files for actual imports. The
result is a table of current/outdated and used/unused classifications.

Registry lookups are cached locally; use --no-cache to force fresh data.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := projectDir(args)
			if allMembers {
				return c.runListWorkspace(cmd.Context(), dir, jsonOut)
			}
			return c.runList(cmd.Context(), dir, jsonOut)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&allMembers, "workspace", false, "inventory every workspace member")

	return cmd
}

// runList refreshes one project and renders the report.
func (c *CLI) runList(ctx context.Context, dir string, jsonOut bool) error {
	report, err := c.refresh(ctx, dir)
	if err != nil {
		if renderManifestProblem(err, dir) {
			return nil
		}
		return err
	}
	if jsonOut {
		return writeJSON(os.Stdout, report)
	}
	printReport(report)
	return nil
}

// runListWorkspace refreshes every workspace member under root.
func (c *CLI) runListWorkspace(ctx context.Context, root string, jsonOut bool) error {
	members, err := workspace.Members(root)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		printWarning("No workspace members found in %s", root)
		return nil
	}
	cfg, err := c.loadConfig(root)
	if err != nil {
		return err
	}

	if jsonOut {
		reports := make([]*inventory.Report, 0, len(members))
		for _, m := range members {
			report, err := c.refreshWith(ctx, cfg, m.Dir)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
		return writeJSON(os.Stdout, reports)
	}

	for i, m := range members {
		if i > 0 {
			printNewline()
		}
		report, err := c.refreshWith(ctx, cfg, m.Dir)
		if err != nil {
			if renderManifestProblem(err, m.Dir) {
				continue
			}
			return err
		}
		printReport(report)
	}
	return nil
}

// printReport renders a report as a heading, table, and summary line.
func printReport(r *inventory.Report) {
	name := r.ProjectName
	if name == "" {
		name = filepath.Dir(r.ManifestPath)
	}
	fmt.Println(StyleTitle.Render(name))

	if len(r.Packages) == 0 {
		printInfo("No dependencies declared")
		return
	}
	fmt.Println(packageTable(r.Packages))
	printSummary(r.Summary())
}

// renderManifestProblem reports manifest errors as a styled placeholder
// instead of a failure; a missing package.json is an answer, not a crash.
func renderManifestProblem(err error, dir string) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeManifestNotFound:
		printWarning("No %s found in %s", manifest.FileName, dir)
		printDetail("Run depsight from a JavaScript project root, or pass the directory as an argument")
		return true
	case errors.ErrCodeInvalidManifest:
		printWarning("Could not parse %s: %s", manifest.FileName, errors.UserMessage(err))
		return true
	}
	return false
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
