// Package review turns an accepted draft into a stored recipe.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
)

// DefaultImageURL is used when a draft has neither an image nor a tag
const DefaultImageURL = "https://images.unsplash.com/photo-1490645935967-10de6ba17061?q=80&w=1000&auto=format&fit=crop"

var whitespace = regexp.MustCompile(`\s+`)

// ResolveImageURL picks the explicit image when given, otherwise a placeholder
// for the first tag, otherwise DefaultImageURL.
func ResolveImageURL(explicit string, tags []models.Tag) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if len(tags) > 0 {
		return "/placeholders/" + whitespace.ReplaceAllString(strings.ToLower(string(tags[0])), "_") + ".png"
	}
	return DefaultImageURL
}

// RecipeInserter is the part of the recipe store a reviewer writes to
type RecipeInserter interface {
	InsertRecipe(ctx context.Context, r models.Recipe) (models.Recipe, error)
}

type Reviewer struct {
	recipes RecipeInserter
	drafts  *storage.DraftStore
}

func New(recipes RecipeInserter, drafts *storage.DraftStore) *Reviewer {
	return &Reviewer{recipes: recipes, drafts: drafts}
}

// Hold keeps a freshly extracted draft until the user decides on it
func (r *Reviewer) Hold(draft models.Draft, image *models.Blob, userID string) *storage.PendingDraft {
	p := r.drafts.Put(draft, image, userID)
	slog.Debug("Holding draft for review", "draft", p.ID, "title", draft.Title)
	return p
}

// Accept stores draft as a recipe owned by userID. A draft that no longer
// validates is rejected whole; nothing is partially persisted.
func (r *Reviewer) Accept(ctx context.Context, userID string, draft models.Draft, imageURL string) (models.Recipe, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Recipe{}, fmt.Errorf("%w: must be signed in to save recipes", models.ErrUnauthorized)
	}
	draft.Title = strings.TrimSpace(draft.Title)
	if err := draft.Validate(); err != nil {
		return models.Recipe{}, err
	}

	recipe, err := r.recipes.InsertRecipe(ctx, models.Recipe{
		Draft:     draft,
		CreatedBy: userID,
		ImageURL:  ResolveImageURL(imageURL, draft.Tags),
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}

	slog.Info("Saved recipe", "id", recipe.ID, "title", recipe.Title, "created_by", userID, "image_url", recipe.ImageURL)
	return recipe, nil
}

// AcceptPending accepts a held draft. edited replaces the held draft when the
// user changed it during review. The draft is only released once it is saved.
func (r *Reviewer) AcceptPending(ctx context.Context, userID, draftID string, edited *models.Draft, imageURL string) (models.Recipe, error) {
	held, ok := r.drafts.Get(draftID)
	if !ok {
		return models.Recipe{}, fmt.Errorf("%w: draft %s", models.ErrNotFound, draftID)
	}
	if err := checkHolder(held, userID); err != nil {
		return models.Recipe{}, err
	}
	p, ok := r.drafts.Take(draftID)
	if !ok {
		return models.Recipe{}, fmt.Errorf("%w: draft %s", models.ErrNotFound, draftID)
	}

	draft := p.Draft
	if edited != nil {
		draft = *edited
	}
	if strings.TrimSpace(imageURL) == "" && !p.Image.Empty() {
		imageURL = p.Image.DataURL()
	}

	recipe, err := r.Accept(ctx, userID, draft, imageURL)
	if err != nil {
		r.drafts.Restore(p)
		return models.Recipe{}, err
	}
	return recipe, nil
}

// Discard drops a held draft
func (r *Reviewer) Discard(userID, draftID string) error {
	held, ok := r.drafts.Get(draftID)
	if !ok {
		return fmt.Errorf("%w: draft %s", models.ErrNotFound, draftID)
	}
	if err := checkHolder(held, userID); err != nil {
		return err
	}
	r.drafts.Delete(draftID)
	slog.Debug("Discarded draft", "draft", draftID)
	return nil
}

// checkHolder allows anonymous drafts to be decided by anyone
func checkHolder(p *storage.PendingDraft, userID string) error {
	if p.CreatedBy != "" && p.CreatedBy != userID {
		return fmt.Errorf("%w: draft %s belongs to another user", models.ErrUnauthorized, p.ID)
	}
	return nil
}
