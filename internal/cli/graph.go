package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/errors"
	"github.com/depsight/depsight/pkg/render"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Render the dependency inventory as a graph",
		Long: `Render the dependency inventory as a Graphviz graph, with nodes colored
by status: outdated packages amber, unused packages grayed out, packages
without registry data red.

Without --output the DOT source is written to stdout. With --output the
format follows the extension: .svg and .png render through graphviz,
.dot and .gv receive the raw DOT source.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), projectDir(args), output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg, .png, .dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include versions and usage in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, dir, output string, detailed bool) error {
	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}

	dot := render.ToDOT(report, render.Options{Detailed: detailed})
	if output == "" {
		fmt.Print(dot)
		return nil
	}

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".svg":
		data, err = render.RenderSVG(dot)
	case ".png":
		data, err = render.RenderPNG(dot)
	case ".dot", ".gv":
		data = []byte(dot)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (use .svg, .png, or .dot)", ext)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	printSuccess("Rendered dependency graph")
	printFile(output)
	return nil
}
