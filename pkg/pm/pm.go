// Package pm identifies which package manager owns a project and builds
// the commands that mutate its dependencies. depsight never edits
// installed trees itself; updates and installs go through the project's
// own tool so lockfiles stay consistent.
package pm

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/depsight/depsight/pkg/errors"
)

// Manager is a JavaScript package manager.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
	PNPM Manager = "pnpm"
	Bun  Manager = "bun"
)

// lockfiles maps lockfile names to the manager that writes them. Order is
// precedence when a project carries more than one.
var lockfiles = []struct {
	file    string
	manager Manager
}{
	{"package-lock.json", NPM},
	{"npm-shrinkwrap.json", NPM},
	{"yarn.lock", Yarn},
	{"pnpm-lock.yaml", PNPM},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
}

// Detect returns the package manager for the project at dir, judged by
// which lockfile is present. Projects without a lockfile default to npm.
func Detect(dir string) Manager {
	for _, lf := range lockfiles {
		if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
			return lf.manager
		}
	}
	return NPM
}

// UpdateArgs returns the argv that moves name to its latest published
// version under m.
func (m Manager) UpdateArgs(name string) []string {
	switch m {
	case Yarn:
		return []string{"yarn", "up", name}
	case PNPM:
		return []string{"pnpm", "update", "--latest", name}
	case Bun:
		return []string{"bun", "update", "--latest", name}
	default:
		return []string{"npm", "install", name + "@latest"}
	}
}

// RemoveArgs returns the argv that removes name under m.
func (m Manager) RemoveArgs(name string) []string {
	switch m {
	case Yarn:
		return []string{"yarn", "remove", name}
	case PNPM:
		return []string{"pnpm", "remove", name}
	case Bun:
		return []string{"bun", "remove", name}
	default:
		return []string{"npm", "uninstall", name}
	}
}

// Run executes argv in dir, streaming combined output to w.
func Run(ctx context.Context, dir string, argv []string, w io.Writer) error {
	if len(argv) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run %s", argv[0])
	}
	return nil
}
