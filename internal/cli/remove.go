package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/manifest"
	"github.com/depsight/depsight/pkg/pm"
)

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	var (
		manifestOnly bool
		dir          string
	)

	cmd := &cobra.Command{
		Use:   "remove <package>",
		Short: "Remove a dependency from the project",
		Long: `Remove a declared dependency through the project's package manager.

With --manifest-only the entry is deleted from package.json directly,
preserving field order, without touching node_modules or the lockfile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRemove(cmd.Context(), dir, args[0], manifestOnly)
		},
	}

	cmd.Flags().BoolVar(&manifestOnly, "manifest-only", false, "rewrite package.json without invoking the package manager")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (c *CLI) runRemove(ctx context.Context, dir, name string, manifestOnly bool) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}

	path := filepath.Join(dir, manifest.FileName)
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}
	if _, ok := m.ByName()[name]; !ok {
		return errors.New(errors.ErrCodePackageNotFound, "%s is not declared in %s", name, path)
	}

	if manifestOnly {
		if err := manifest.Remove(path, name); err != nil {
			return err
		}
		printSuccess("Removed %s from %s", name, path)
		printDetail("node_modules and the lockfile were left as they are")
		return nil
	}

	mgr := pm.Detect(dir)
	return c.runManager(ctx, dir, mgr.RemoveArgs(name),
		fmt.Sprintf("Removing %s with %s...", name, mgr),
		fmt.Sprintf("Removed %s", name))
}
