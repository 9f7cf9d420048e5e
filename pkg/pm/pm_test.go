package pm

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", name, err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name      string
		lockfiles []string
		want      Manager
	}{
		{"npm", []string{"package-lock.json"}, NPM},
		{"yarn", []string{"yarn.lock"}, Yarn},
		{"pnpm", []string{"pnpm-lock.yaml"}, PNPM},
		{"bun binary lockfile", []string{"bun.lockb"}, Bun},
		{"bun text lockfile", []string{"bun.lock"}, Bun},
		{"no lockfile defaults to npm", nil, NPM},
		{"npm lockfile outranks yarn", []string{"yarn.lock", "package-lock.json"}, NPM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, lf := range tt.lockfiles {
				touch(t, dir, lf)
			}
			if got := Detect(dir); got != tt.want {
				t.Errorf("Detect = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpdateArgs(t *testing.T) {
	tests := []struct {
		manager Manager
		want    []string
	}{
		{NPM, []string{"npm", "install", "react@latest"}},
		{Yarn, []string{"yarn", "up", "react"}},
		{PNPM, []string{"pnpm", "update", "--latest", "react"}},
		{Bun, []string{"bun", "update", "--latest", "react"}},
	}
	for _, tt := range tests {
		if got := tt.manager.UpdateArgs("react"); !slices.Equal(got, tt.want) {
			t.Errorf("%s.UpdateArgs = %v, want %v", tt.manager, got, tt.want)
		}
	}
}

func TestRemoveArgs(t *testing.T) {
	tests := []struct {
		manager Manager
		want    []string
	}{
		{NPM, []string{"npm", "uninstall", "react"}},
		{Yarn, []string{"yarn", "remove", "react"}},
		{PNPM, []string{"pnpm", "remove", "react"}},
		{Bun, []string{"bun", "remove", "react"}},
	}
	for _, tt := range tests {
		if got := tt.manager.RemoveArgs("react"); !slices.Equal(got, tt.want) {
			t.Errorf("%s.RemoveArgs = %v, want %v", tt.manager, got, tt.want)
		}
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), t.TempDir(), []string{"sh", "-c", "echo installing"}, &out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "installing\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunFailure(t *testing.T) {
	var out bytes.Buffer
	if err := Run(context.Background(), t.TempDir(), []string{"sh", "-c", "exit 3"}, &out); err == nil {
		t.Fatal("Run succeeded on failing command")
	}
	if err := Run(context.Background(), t.TempDir(), nil, &out); err == nil {
		t.Fatal("Run accepted empty argv")
	}
}
