package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
)

// workflowsCommand creates the command group for stored workflows.
func (c *CLI) workflowsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workflows",
		Aliases: []string{"wf"},
		Short:   "Manage stored workflows",
		Long: `Manage workflows in the configured store (see "canicai config show").

Stored workflows can be checked and rendered with --id.`,
	}

	cmd.AddCommand(c.workflowsListCommand())
	cmd.AddCommand(c.workflowsImportCommand())
	cmd.AddCommand(c.workflowsExportCommand())
	cmd.AddCommand(c.workflowsDeleteCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := openStore(ctx, c.cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) workflowsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored workflows, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				list, err := st.List(cmd.Context())
				if err != nil {
					return apperrors.Wrap(apperrors.ErrCodeStorage, err, "list workflows")
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				p := newPrinter(cmd.OutOrStdout())
				if len(list) == 0 {
					p.info("No stored workflows")
					return nil
				}
				for _, s := range list {
					p.line(fmt.Sprintf("%s  %s  %s",
						StyleDim.Render(s.ID),
						StyleValue.Render(s.Name),
						StyleDim.Render(fmt.Sprintf("%d components · %s", s.ComponentCount, s.UpdatedAt.Local().Format("2006-01-02 15:04")))))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the list as JSON")
	return cmd
}

func (c *CLI) workflowsImportCommand() *cobra.Command {
	var keepID bool

	cmd := &cobra.Command{
		Use:   "import <workflow.json>",
		Short: "Store a workflow file",
		Long: `Import validates a workflow file and writes it to the store. The workflow
gets a new id unless --keep-id is given and the file carries one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := readWorkflowFile(args[0])
			if err != nil {
				return err
			}
			if !keepID || saved.ID == "" {
				saved.ID = uuid.NewString()
			}
			if err := apperrors.ValidateID(saved.ID); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Save(cmd.Context(), saved); err != nil {
					return apperrors.Wrap(apperrors.ErrCodeStorage, err, "save workflow %s", saved.ID)
				}
				p := newPrinter(cmd.OutOrStdout())
				p.success("Imported %s", StyleHighlight.Render(saved.Name))
				p.detail("ID: %s", saved.ID)
				p.next("Check it", appName+" check --id "+saved.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&keepID, "keep-id", false, "keep the id stored in the file")
	return cmd
}

func (c *CLI) workflowsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a stored workflow as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				saved, err := loadStored(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				out, err := openOutput(cmd, output)
				if err != nil {
					return err
				}
				defer out.Close()
				if err := persist.Write(saved, out); err != nil {
					return err
				}
				if output != "" {
					newPrinter(cmd.OutOrStdout()).file(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) workflowsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored workflows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(st store.Store) error {
				for _, id := range args {
					if err := apperrors.ValidateID(id); err != nil {
						return err
					}
					if err := st.Delete(cmd.Context(), id); err != nil {
						return apperrors.Wrap(apperrors.ErrCodeStorage, err, "delete workflow %s", id)
					}
					newPrinter(cmd.OutOrStdout()).success("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// loadStored loads id from st, mapping a missing workflow to
// ErrCodeWorkflowNotFound.
func loadStored(ctx context.Context, st store.Store, id string) (*persist.SavedWorkflow, error) {
	if err := apperrors.ValidateID(id); err != nil {
		return nil, err
	}
	saved, err := st.Load(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "load workflow %s", id)
	}
	if saved == nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeWorkflowNotFound, persist.ErrWorkflowNotFound, "workflow %s", id)
	}
	return saved, nil
}
