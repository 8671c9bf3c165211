package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/workflow"
)

// hashCommand creates the hash command.
func (c *CLI) hashCommand() *cobra.Command {
	var (
		input     workflowInput
		canonical bool
	)

	cmd := &cobra.Command{
		Use:   "hash [workflow.json]",
		Short: "Print the state hash of a workflow",
		Long: `Hash prints the SHA-256 state hash of a workflow. Two workflows with the
same components, connections and name share a hash regardless of layout.`,
		Args: func(cmd *cobra.Command, args []string) error { return input.args(cmd, args) },
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, release, err := c.openSession(cmd.Context(), &input, args)
			if err != nil {
				return err
			}
			defer release()

			var out string
			sess.Edit(func(w *workflow.Workflow) {
				if canonical {
					out = w.CanonicalString()
				} else {
					out = w.RefreshHash()
				}
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	input.register(cmd)
	cmd.Flags().BoolVar(&canonical, "canonical", false, "print the hashed string instead of the digest")

	return cmd
}
