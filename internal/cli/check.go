package cli

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/editor"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/workflow"
)

// checkOpts holds the flags of the check command.
type checkOpts struct {
	input  workflowInput
	json   bool
	strict bool
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [workflow.json]",
		Short: "Report the compatibility of a workflow",
		Long: `Check rebuilds a workflow against the catalog, propagates compatibility
along every connection and reports incompatible components and connections.

Use "-" to read the workflow from standard input.`,
		Args: func(cmd *cobra.Command, args []string) error { return opts.input.args(cmd, args) },
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when the workflow is not compatible")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts *checkOpts) error {
	ctx := cmd.Context()
	sess, _, release, err := c.openSession(ctx, &opts.input, args)
	if err != nil {
		return err
	}
	defer release()

	check := sess.Check(ctx)
	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(check); err != nil {
			return err
		}
	} else {
		printCheck(newPrinter(cmd.OutOrStdout()), sess, check)
	}

	if opts.strict && !check.Report.Compatible {
		return apperrors.New(apperrors.ErrCodeInvalidWorkflow, "workflow %q is not compatible", check.Name)
	}
	return nil
}

// printCheck renders a check result for the terminal.
func printCheck(p printer, sess *editor.Session, check editor.Check) {
	names := make(map[string]string)
	var edges []workflow.Edge
	sess.Edit(func(w *workflow.Workflow) {
		for _, n := range w.Nodes() {
			names[n.ID] = n.Payload.Name
		}
		edges = w.Edges()
	})

	p.blank()
	p.title(check.Name)
	if check.ID != "" {
		p.field("ID", check.ID)
	}
	p.field("Hash", check.Hash[:12])
	p.stats(len(check.Report.Nodes), len(check.Report.Edges), check.Report.Compatible)
	p.blank()

	for _, id := range check.Missing {
		p.warn("Dropped node %s: its component or category no longer exists", id)
	}
	if check.DroppedEdges > 0 {
		p.warn("Dropped %d connections to missing components", check.DroppedEdges)
	}

	for _, id := range check.Report.Incompatible {
		p.fail("%s is not compatible", nodeName(names, id))
	}

	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	for _, e := range edges {
		switch e.Compatible {
		case workflow.Partial:
			p.warn("%s %s %s is only partially compatible",
				nodeName(names, e.Source), markArrow, nodeName(names, e.Target))
		case workflow.No:
			p.fail("%s %s %s is not compatible",
				nodeName(names, e.Source), markArrow, nodeName(names, e.Target))
		}
	}

	if check.Report.Compatible {
		p.success("Workflow is compatible")
	} else {
		p.fail("Workflow is not compatible")
	}
}

func nodeName(names map[string]string, id string) string {
	if n := names[id]; n != "" {
		return StyleHighlight.Render(n)
	}
	return StyleHighlight.Render(id)
}
