package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// outdatedCommand creates the outdated command, a CI-friendly filtered view.
func (c *CLI) outdatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outdated [dir]",
		Short: "List dependencies with a newer published version",
		Long: `List declared dependencies whose latest published version is newer
than the version pinned in package.json.

The command exits with status 1 when anything is outdated, so it can gate
a CI pipeline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOutdated(cmd.Context(), projectDir(args))
		},
	}
}

func (c *CLI) runOutdated(ctx context.Context, dir string) error {
	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}

	outdated := report.Outdated()
	if len(outdated) == 0 {
		printSuccess("All %d dependencies are up to date", len(report.Packages))
		return nil
	}

	fmt.Println(packageTable(outdated))
	printNextStep("Update everything", "depsight update --all")

	return fmt.Errorf("%d of %d dependencies are outdated", len(outdated), len(report.Packages))
}
