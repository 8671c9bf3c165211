package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canicai/canicai/pkg/catalog"
	catalogmongo "github.com/canicai/canicai/pkg/catalog/mongo"
	apperrors "github.com/canicai/canicai/pkg/errors"
)

// catalogCommand creates the command group for the component catalog.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the component catalog",
	}

	cmd.AddCommand(c.catalogSearchCommand())
	cmd.AddCommand(c.catalogCategoriesCommand())
	cmd.AddCommand(c.catalogImportCommand())

	return cmd
}

func (c *CLI) catalogSearchCommand() *cobra.Command {
	var (
		types  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <text>...",
		Short: "Find components by name or manufacturer",
		Long: fmt.Sprintf(`Search matches any word of the text against component and manufacturer
names. The text must be at least %d characters long.`, catalog.MinQueryLength),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseSearch(strings.Join(args, " "), types)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			src, release, err := openCatalog(ctx, c.cfg.Catalog)
			if err != nil {
				return err
			}
			defer release()

			found, err := src.Search(ctx, q)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			if len(found) == 0 {
				newPrinter(cmd.OutOrStdout()).info("No components match %q", q.Text)
				return nil
			}
			for _, comp := range found {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s  %s\n", mark(comp.Compatible), StyleValue.Render(comp.Name),
					StyleDim.Render(string(comp.Type)), StyleDim.Render(comp.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "restrict to function types: input, output, input-output")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// parseSearch builds a catalog query from command-line input.
func parseSearch(text string, types []string) (catalog.Query, error) {
	text = strings.TrimSpace(text)
	if len(text) < catalog.MinQueryLength {
		return catalog.Query{}, apperrors.New(apperrors.ErrCodeInvalidInput,
			"search text must be at least %d characters", catalog.MinQueryLength)
	}
	q := catalog.Query{Text: text}
	for _, t := range types {
		ft := catalog.FunctionType(strings.TrimSpace(t))
		if !ft.Valid() {
			return catalog.Query{}, apperrors.New(apperrors.ErrCodeInvalidInput, "unknown function type %q", t)
		}
		q.Types = append(q.Types, ft)
	}
	return q, nil
}

func (c *CLI) catalogCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List component categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, release, err := openCatalog(ctx, c.cfg.Catalog)
			if err != nil {
				return err
			}
			defer release()

			cats, err := src.Categories(ctx)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, cat := range cats {
				p.field(cat.Icon, cat.Name.EN+" "+StyleDim.Render(cat.ID))
			}
			return nil
		},
	}
}

func (c *CLI) catalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.json>",
		Short: "Load a JSON catalog into MongoDB",
		Long: `Import validates a JSON catalog file and upserts its manufacturers,
categories and components into the database configured under
[catalog.mongo]. Every id must be a 24-character hex ObjectID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, err := catalog.ReadFile(args[0])
			if err != nil {
				return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read catalog")
			}
			f := m.File()
			if err := catalogmongo.CheckIDs(f); err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			spin := startSpinner(ctx, cmd.ErrOrStderr(), "Importing catalog...")

			mc := c.cfg.Catalog.Mongo
			src, err := catalogmongo.Connect(ctx, mc.URI, mc.Database)
			if err != nil {
				spin.fail(p, "Connection failed")
				return apperrors.Wrap(apperrors.ErrCodeStorage, err, "open catalog")
			}
			defer src.Close(ctx)

			if err := src.Import(ctx, f); err != nil {
				spin.fail(p, "Import failed")
				return apperrors.Wrap(apperrors.ErrCodeStorage, err, "import catalog")
			}
			spin.succeed(p, "Imported %d components, %d categories, %d manufacturers",
				len(f.Components), len(f.Categories), len(f.Manufacturers))
			return nil
		},
	}
}
