package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/spf13/cobra"
)

func newPantryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "Manage the shared pantry",
	}

	cmd.AddCommand(newPantryListCmd(opts))
	cmd.AddCommand(newPantryAddCmd(opts))

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an item from the pantry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeletePantryItem(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("pantry item %s: %w", args[0], err)
			}
			return nil
		},
	})

	return cmd
}

func newPantryListCmd(opts *rootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pantry items by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.store.ListPantry(cmd.Context())
			if err != nil {
				return err
			}
			items = models.SearchPantry(items, search)
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				qty := ""
				if it.Quantity != nil {
					qty = strconv.FormatFloat(*it.Quantity, 'f', -1, 64)
				}
				unit := ""
				if it.Unit != nil {
					unit = *it.Unit
				}
				rows = append(rows, []string{it.ID, it.Name, qty, unit, it.AddedBy})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
				[]string{"ID", "Name", "Qty", "Unit", "Added By"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Only list items whose name contains this text")

	return cmd
}

func newPantryAddCmd(opts *rootOptions) *cobra.Command {
	var (
		quantity float64
		unit     string
		user     string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item to the pantry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var qty *float64
			if cmd.Flags().Changed("qty") {
				qty = &quantity
			}
			item, err := models.NewPantryItem(args[0], qty, unit, user)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.store.InsertPantryItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&quantity, "qty", 0, "Quantity on hand")
	cmd.Flags().StringVar(&unit, "unit", "", "Unit of the quantity")
	cmd.Flags().StringVar(&user, "user", os.Getenv("USER"), "User adding the item")

	return cmd
}
