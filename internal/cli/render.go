package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/render"
	"github.com/canicai/canicai/pkg/render/nodelink"
	"github.com/canicai/canicai/pkg/workflow"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	input    workflowInput
	output   string // output file path; "-" writes to stdout
	format   string // dot, svg, pdf or png
	detailed bool   // show component metadata in node labels
}

// renderFormats lists every format the render command accepts.
var renderFormats = append([]string{"dot"}, render.Formats...)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "render [workflow.json]",
		Short: "Draw a workflow as a node-link diagram",
		Long: `Render draws the workflow with Graphviz. Nodes are coloured by component
compatibility and connections by their propagated state. Parallel groups
share a rank.

PDF and PNG output need rsvg-convert on PATH.`,
		Args: func(cmd *cobra.Command, args []string) error { return opts.input.args(cmd, args) },
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(renderFormats, opts.format) {
				return fmt.Errorf("invalid format: %s (must be one of %s)", opts.format, strings.Join(renderFormats, ", "))
			}
			return c.runRender(cmd, args, &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (default derived from the input, "-" for stdout)`)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show type, manufacturer and version in node labels")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	sess, _, release, err := c.openSession(ctx, &opts.input, args)
	if err != nil {
		return err
	}
	defer release()

	var dot string
	sess.Edit(func(w *workflow.Workflow) {
		logger.Infof("Rendering %q: %d nodes, %d edges", w.Name, w.NodeCount(), w.EdgeCount())
		dot = nodelink.ToDOT(w, nodelink.Options{Detailed: opts.detailed})
	})

	data, err := renderDOT(ctx, dot, opts.format)
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := outputPath(opts.output, opts.input.id, args, opts.format)
	out, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if path != "" {
		logger.Infof("Generated %s", path)
	}
	return nil
}

// renderDOT turns DOT source into format.
func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := nodelink.RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.Convert(ctx, svg, format)
}

// outputPath derives where render writes. An explicit output wins ("-"
// maps to stdout, returned as ""). Otherwise the input file name or the
// workflow id gets the format extension.
func outputPath(output, id string, args []string, format string) string {
	switch {
	case output == "-":
		return ""
	case output != "":
		return output
	case id != "":
		return id + "." + format
	case len(args) == 1 && args[0] != "-":
		return strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
	}
	return ""
}
