package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

const recipeColumns = `id, title, time_minutes, ingredients, steps, health_score, tags, image_url, created_by, created_at`

// InsertRecipe validates and stores a recipe. ID and CreatedAt are assigned
// when empty.
func (s *SQLite) InsertRecipe(ctx context.Context, r models.Recipe) (models.Recipe, error) {
	if r.CreatedBy == "" {
		return models.Recipe{}, fmt.Errorf("%w: recipe has no creator", models.ErrUnauthorized)
	}
	if err := r.Validate(); err != nil {
		return models.Recipe{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	ingredients, steps, tags, err := encodeRecipeLists(r)
	if err != nil {
		return models.Recipe{}, err
	}

	if _, err := s.exec(ctx,
		`INSERT INTO recipes(`+recipeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.TimeMinutes, ingredients, steps, r.HealthScore, tags, r.ImageURL, r.CreatedBy, formatTime(r.CreatedAt),
	); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return r, nil
}

// UpdateRecipe applies patch to recipe id on behalf of actorID. Only the
// creator may update a recipe.
func (s *SQLite) UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch, actorID string) (models.Recipe, error) {
	if actorID == "" {
		return models.Recipe{}, fmt.Errorf("%w: no acting user", models.ErrUnauthorized)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := scanRecipe(tx.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
	if err != nil {
		return models.Recipe{}, err
	}
	if current.CreatedBy != actorID {
		return models.Recipe{}, fmt.Errorf("%w: recipe %s belongs to another user", models.ErrUnauthorized, id)
	}

	updated := patch.Apply(current)
	if err := updated.Validate(); err != nil {
		return models.Recipe{}, err
	}

	ingredients, steps, tags, err := encodeRecipeLists(updated)
	if err != nil {
		return models.Recipe{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE recipes SET title = ?, time_minutes = ?, ingredients = ?, steps = ?, health_score = ?, tags = ?
		 WHERE id = ? AND created_by = ?`,
		updated.Title, updated.TimeMinutes, ingredients, steps, updated.HealthScore, tags, id, actorID,
	); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to commit recipe update: %w", err)
	}
	return updated, nil
}

// GetRecipe returns one recipe or models.ErrNotFound
func (s *SQLite) GetRecipe(ctx context.Context, id string) (models.Recipe, error) {
	return scanRecipe(s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
}

// ListRecipes returns every recipe, newest first
func (s *SQLite) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY created_at DESC, id`)
}

// ListRecipesByCreator returns the recipes created by userID, newest first
func (s *SQLite) ListRecipesByCreator(ctx context.Context, userID string) ([]models.Recipe, error) {
	return s.queryRecipes(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE created_by = ? ORDER BY created_at DESC, id`, userID)
}

// SearchRecipes lists recipes newest first, narrowed by f. The creator is
// filtered in SQL; title and tag matching run over the decoded rows.
func (s *SQLite) SearchRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	var (
		recipes []models.Recipe
		err     error
	)
	if f.CreatedBy != "" {
		recipes, err = s.ListRecipesByCreator(ctx, f.CreatedBy)
	} else {
		recipes, err = s.ListRecipes(ctx)
	}
	if err != nil {
		return nil, err
	}
	return models.FilterRecipes(recipes, f), nil
}

func (s *SQLite) queryRecipes(ctx context.Context, query string, args ...any) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (models.Recipe, error) {
	var (
		r                        models.Recipe
		ingredients, steps, tags string
		created                  string
	)
	err := row.Scan(&r.ID, &r.Title, &r.TimeMinutes, &ingredients, &steps, &r.HealthScore, &tags, &r.ImageURL, &r.CreatedBy, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recipe{}, models.ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("failed to scan recipe: %w", err)
	}

	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to decode ingredients of recipe %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(steps), &r.Steps); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to decode steps of recipe %s: %w", r.ID, err)
	}
	var rawTags []string
	if err := json.Unmarshal([]byte(tags), &rawTags); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to decode tags of recipe %s: %w", r.ID, err)
	}
	r.Tags = models.NormalizeTags(rawTags)
	r.CreatedAt = parseTime(created)
	return r, nil
}

func encodeRecipeLists(r models.Recipe) (ingredients, steps, tags string, err error) {
	ingredientList := r.Ingredients
	if ingredientList == nil {
		ingredientList = []models.Ingredient{}
	}
	i, err := json.Marshal(ingredientList)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode ingredients: %w", err)
	}
	st, err := json.Marshal(r.Steps)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode steps: %w", err)
	}
	t, err := json.Marshal(models.TagStrings(r.Tags))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(i), string(st), string(t), nil
}
