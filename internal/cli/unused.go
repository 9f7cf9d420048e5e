package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// unusedCommand creates the unused command listing never-imported packages.
func (c *CLI) unusedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unused [dir]",
		Short: "List declared dependencies never imported from source",
		Long: `List dependencies that are declared in package.json but never imported
or required from any scanned source file.

Detection is textual: packages loaded through dynamic import expressions,
build tooling, or config files outside the scanned extensions can show up
here even though they are in use.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUnused(cmd.Context(), projectDir(args))
		},
	}
}

func (c *CLI) runUnused(ctx context.Context, dir string) error {
	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}

	unused := report.Unused()
	if len(unused) == 0 {
		printSuccess("Every declared dependency is imported somewhere")
		return nil
	}

	printWarning("%d of %d declared dependencies are never imported:", len(unused), len(report.Packages))
	for _, p := range unused {
		printDetail("%s (%s, declared %s)", p.Name, p.Scope, p.VersionSpec)
	}
	printNewline()
	printNextStep("Remove one", "depsight remove <package>")
	return nil
}
