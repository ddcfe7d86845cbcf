// Package reconcile computes a shopping list from selected recipes and the
// shared pantry.
//
// Matching is deliberately naive: an ingredient counts as on hand when any
// pantry item name contains the ingredient name, case-insensitively. There is
// no unit conversion, no quantity aggregation across recipes and no reverse
// containment, so a pantry "bread" does not cover "whole wheat bread".
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// ChecklistHeader starts the exported shopping list
const ChecklistHeader = "Shopping List:"

// Missing returns the selected recipes' ingredients not covered by pantry,
// in selection order then recipe order. Duplicates are kept.
func Missing(recipes []models.Recipe, pantry []models.PantryItem) []models.Ingredient {
	onHand := make([]string, 0, len(pantry))
	for _, p := range pantry {
		onHand = append(onHand, strings.ToLower(p.Name))
	}

	missing := []models.Ingredient{}
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if strings.TrimSpace(ing.Name) == "" {
				continue
			}
			if covered(onHand, strings.ToLower(ing.Name)) {
				continue
			}
			missing = append(missing, ing)
		}
	}
	return missing
}

func covered(onHand []string, name string) bool {
	for _, have := range onHand {
		if strings.Contains(have, name) {
			return true
		}
	}
	return false
}

// RecipeGetter reads one recipe by id
type RecipeGetter interface {
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
}

// PantryLister reads a pantry snapshot
type PantryLister interface {
	ListPantry(ctx context.Context) ([]models.PantryItem, error)
}

// Result is one reconciliation run
type Result struct {
	Recipes []models.Recipe     `json:"recipes"`
	Missing []models.Ingredient `json:"missing"`
	Skipped []string            `json:"skipped,omitempty"`
}

type Engine struct {
	recipes RecipeGetter
	pantry  PantryLister
}

func NewEngine(recipes RecipeGetter, pantry PantryLister) *Engine {
	return &Engine{recipes: recipes, pantry: pantry}
}

// Reconcile resolves ids to recipes and diffs them against one pantry
// snapshot. Repeated ids count once; unknown ids are skipped.
func (e *Engine) Reconcile(ctx context.Context, ids []string) (Result, error) {
	res := Result{Recipes: []models.Recipe{}, Missing: []models.Ingredient{}}
	if len(ids) == 0 {
		return res, nil
	}

	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		r, err := e.recipes.GetRecipe(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			slog.Warn("Skipping unknown recipe in shopping list", "id", id)
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to load recipe %s: %w", id, err)
		}
		res.Recipes = append(res.Recipes, r)
	}

	pantry, err := e.pantry.ListPantry(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read pantry: %w", err)
	}

	res.Missing = Missing(res.Recipes, pantry)
	slog.Info("Reconciled shopping list",
		"recipes", len(res.Recipes),
		"pantry_items", len(pantry),
		"missing", len(res.Missing))
	return res, nil
}

// FormatItem renders "{quantity} {unit} {name}", leaving out absent parts
func FormatItem(ing models.Ingredient) string {
	parts := make([]string, 0, 3)
	if ing.Quantity != nil {
		parts = append(parts, strconv.FormatFloat(*ing.Quantity, 'f', -1, 64))
	}
	if ing.Unit != nil && strings.TrimSpace(*ing.Unit) != "" {
		parts = append(parts, strings.TrimSpace(*ing.Unit))
	}
	parts = append(parts, strings.TrimSpace(ing.Name))
	return strings.Join(parts, " ")
}

// Checklist renders the missing list as a markdown checklist for the clipboard
func Checklist(missing []models.Ingredient) string {
	var b strings.Builder
	b.WriteString(ChecklistHeader)
	for _, ing := range missing {
		b.WriteString("\n- [ ] ")
		b.WriteString(FormatItem(ing))
	}
	return b.String()
}
