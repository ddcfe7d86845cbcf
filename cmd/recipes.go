package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/export"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/reconcile"
	"github.com/spf13/cobra"
)

func newRecipesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List, show, edit, export and import saved recipes",
	}

	cmd.AddCommand(newRecipesListCmd(opts))
	cmd.AddCommand(newRecipesShowCmd(opts))
	cmd.AddCommand(newRecipesEditCmd(opts))
	cmd.AddCommand(newRecipesExportCmd(opts))
	cmd.AddCommand(newRecipesImportCmd(opts))

	return cmd
}

func newRecipesListCmd(opts *rootOptions) *cobra.Command {
	var createdBy, search, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved recipes, newest first",
		Example: `  recipebox recipes list --search curry
  recipebox recipes list --tag "high protein" --created-by alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := models.NewRecipeFilter(search, tag, createdBy)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			recipes, err := a.store.SearchRecipes(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(recipes))
			for _, r := range recipes {
				rows = append(rows, []string{
					r.ID,
					r.Title,
					strconv.Itoa(r.TimeMinutes),
					strconv.Itoa(r.HealthScore),
					strings.Join(models.TagStrings(r.Tags), ", "),
					r.CreatedBy,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(),
				[]string{"ID", "Title", "Minutes", "Health", "Tags", "Created By"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&createdBy, "created-by", "", "Only list recipes created by this user")
	cmd.Flags().StringVar(&search, "search", "", "Only list recipes whose title or a tag contains this text")
	cmd.Flags().StringVar(&tag, "tag", "", "Only list recipes with this tag")

	return cmd
}

func newRecipesShowCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			recipe, err := a.store.GetRecipe(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("recipe %s: %w", args[0], err)
			}
			if output != "text" {
				return printDraft(cmd, recipe.Draft, output)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%d min · health %d/10 · %s\n\nIngredients:\n",
				recipe.Title, recipe.TimeMinutes, recipe.HealthScore, strings.Join(models.TagStrings(recipe.Tags), ", "))
			for _, ing := range recipe.Ingredients {
				fmt.Fprintf(out, "  - %s\n", reconcile.FormatItem(ing))
			}
			fmt.Fprintln(out, "\nSteps:")
			for i, step := range recipe.Steps {
				fmt.Fprintf(out, "  %d. %s\n", i+1, step)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, yaml or json")

	return cmd
}

func newRecipesEditCmd(opts *rootOptions) *cobra.Command {
	var (
		user    string
		title   string
		minutes int
		health  int
		tags    []string
		steps   []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a recipe you created",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.RecipePatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("time") {
				patch.TimeMinutes = &minutes
			}
			if flags.Changed("health") {
				patch.HealthScore = &health
			}
			if flags.Changed("tag") {
				parsed := make([]models.Tag, 0, len(tags))
				for _, raw := range tags {
					t, ok := models.ParseTag(raw)
					if !ok {
						return fmt.Errorf("%w: unknown tag %q", models.ErrValidationFailed, raw)
					}
					parsed = append(parsed, t)
				}
				patch.Tags = &parsed
			}
			if flags.Changed("step") {
				patch.Steps = &steps
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			recipe, err := a.store.UpdateRecipe(cmd.Context(), args[0], patch, user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Updated recipe %s\n", recipe.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", os.Getenv("USER"), "Acting user; must be the recipe's creator")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().IntVar(&minutes, "time", 0, "New time in minutes")
	cmd.Flags().IntVar(&health, "health", 0, "New health score (1-10)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Replace tags (repeatable)")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "Replace steps, in order (repeatable)")

	return cmd
}

func newRecipesExportCmd(opts *rootOptions) *cobra.Command {
	var createdBy string

	cmd := &cobra.Command{
		Use:   "export <file.yaml|file.parquet>",
		Short: "Export recipes to YAML or Parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			var recipes []models.Recipe
			if createdBy != "" {
				recipes, err = a.store.ListRecipesByCreator(cmd.Context(), createdBy)
			} else {
				recipes, err = a.store.ListRecipes(cmd.Context())
			}
			if err != nil {
				return err
			}
			return export.ExportFile(args[0], recipes)
		},
	}

	cmd.Flags().StringVar(&createdBy, "created-by", "", "Only export recipes created by this user")

	return cmd
}

func newRecipesImportCmd(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "import <file.yaml|file.parquet>",
		Short: "Import recipes; they are re-validated and owned by --user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := export.ImportFile(args[0])
			if err != nil {
				return err
			}
			prepared, err := export.Prepare(recipes, user)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, r := range prepared {
				if _, err := a.store.InsertRecipe(cmd.Context(), r); err != nil {
					return fmt.Errorf("failed to import %q: %w", r.Title, err)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d recipes\n", len(prepared))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", os.Getenv("USER"), "Owner of the imported recipes")

	return cmd
}
