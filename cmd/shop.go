package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/recipebox/internal/reconcile"
	"github.com/spf13/cobra"
)

func newShopCmd(opts *rootOptions) *cobra.Command {
	var recipeIDs []string

	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Print a shopping list for the selected recipes",
		Long: `Lists the ingredients of the selected recipes that are not already in the
shared pantry, as a checklist ready to paste into a notes app.

An ingredient counts as on hand when a pantry item's name contains it
(case-insensitive). Quantities are not summed across recipes.`,
		Example: `  recipebox shop --recipe 6f1c... --recipe 9a2e...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(recipeIDs) == 0 {
				return fmt.Errorf("select at least one recipe with --recipe")
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := reconcile.NewEngine(a.store, a.store).Reconcile(cmd.Context(), recipeIDs)
			if err != nil {
				return err
			}
			for _, id := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped unknown recipe %s\n", id)
			}
			if len(res.Missing) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "You have everything in your pantry!")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), reconcile.Checklist(res.Missing))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&recipeIDs, "recipe", nil, "Recipe id to shop for (repeatable, in order)")

	return cmd
}
