package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/inventory"
	"github.com/depsight/depsight/pkg/manifest"
	"github.com/depsight/depsight/pkg/pm"
)

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var (
		all    bool
		dryRun bool
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "update [package]",
		Short: "Update dependencies to their latest published versions",
		Long: `Update one dependency, or every outdated dependency with --all, through
the project's package manager.

The package manager is detected from the lockfile (package-lock.json,
yarn.lock, pnpm-lock.yaml, bun.lockb) and defaults to npm.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errors.New(errors.ErrCodeInvalidInput, "name a package or pass --all")
			}
			if len(args) == 1 && all {
				return errors.New(errors.ErrCodeInvalidInput, "--all cannot be combined with a package name")
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runUpdate(cmd.Context(), dir, name, dryRun)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "update every outdated dependency")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the package manager commands without running them")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "project directory")

	return cmd
}

func (c *CLI) runUpdate(ctx context.Context, dir, name string, dryRun bool) error {
	if name != "" {
		if err := errors.ValidatePackageName(name); err != nil {
			return err
		}
	}

	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}

	var targets []inventory.Package
	if name == "" {
		targets = report.Outdated()
		if len(targets) == 0 {
			printSuccess("All dependencies are up to date")
			return nil
		}
	} else {
		pkg, ok := report.Find(name)
		if !ok {
			return errors.New(errors.ErrCodePackageNotFound, "%s is not declared in %s", name, filepath.Join(dir, manifest.FileName))
		}
		if !pkg.Outdated {
			if pkg.MetadataMissing {
				printInfo("No registry data for %s; nothing to compare against", name)
			} else {
				printInfo("%s is already up to date (%s)", name, orDash(pkg.CurrentVersion))
			}
			return nil
		}
		targets = []inventory.Package{pkg}
	}

	mgr := pm.Detect(dir)
	printInfo("Updating %d package(s) with %s", len(targets), mgr)

	for _, pkg := range targets {
		argv := mgr.UpdateArgs(pkg.Name)
		if dryRun {
			printDetail("%s", strings.Join(argv, " "))
			continue
		}
		doing := fmt.Sprintf("Updating %s to %s...", pkg.Name, pkg.LatestVersion)
		done := fmt.Sprintf("%s %s %s %s", pkg.Name, orDash(pkg.CurrentVersion), iconArrow, pkg.LatestVersion)
		if err := c.runManager(ctx, dir, argv, doing, done); err != nil {
			return err
		}
	}
	return nil
}

// runManager invokes one package manager command. With verbose logging on,
// output streams to stderr; otherwise a spinner covers the run, since the
// spinner and streamed output fight over the same terminal line.
func (c *CLI) runManager(ctx context.Context, dir string, argv []string, doing, done string) error {
	if c.Logger.GetLevel() <= log.DebugLevel {
		c.Logger.Debugf("Running %s", strings.Join(argv, " "))
		if err := pm.Run(ctx, dir, argv, os.Stderr); err != nil {
			return err
		}
		printSuccess("%s", done)
		return nil
	}

	spinner := newSpinnerWithContext(ctx, doing)
	spinner.Start()
	if err := pm.Run(ctx, dir, argv, io.Discard); err != nil {
		spinner.StopWithError(fmt.Sprintf("%s failed (re-run with --verbose for output)", strings.Join(argv, " ")))
		return err
	}
	spinner.StopWithSuccess(done)
	return nil
}
