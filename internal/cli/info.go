package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/manifest"
)

// infoCommand creates the info command showing one package in detail.
func (c *CLI) infoCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show details for one declared dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfo(cmd.Context(), dir, args[0])
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (c *CLI) runInfo(ctx context.Context, dir, name string) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}

	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}

	pkg, ok := report.Find(name)
	if !ok {
		return errors.New(errors.ErrCodePackageNotFound, "%s is not declared in %s", name, filepath.Join(dir, manifest.FileName))
	}

	printNewline()
	fmt.Println(StyleTitle.Render(pkg.Name))
	printNewline()
	printKeyValue("Declared", pkg.VersionSpec)
	printKeyValue("Scope", string(pkg.Scope))
	printKeyValue("Current", orDash(pkg.CurrentVersion))
	printKeyValue("Latest", orDash(pkg.LatestVersion))
	printKeyValue("Status", statusText(pkg))
	printKeyValue("Used", usedLabel(pkg))
	if pkg.Description != "" {
		printKeyValue("About", pkg.Description)
	}
	if pkg.Homepage != "" {
		printKeyValue("Homepage", StyleLink.Render(pkg.Homepage))
	}

	if pkg.Outdated {
		printNewline()
		printNextStep("Update it", fmt.Sprintf("depsight update %s", pkg.Name))
	}
	return nil
}
