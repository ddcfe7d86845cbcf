package review

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
)

type memRecipes struct {
	saved []models.Recipe
	err   error
}

func (m *memRecipes) InsertRecipe(_ context.Context, r models.Recipe) (models.Recipe, error) {
	if m.err != nil {
		return models.Recipe{}, m.err
	}
	r.ID = "r1"
	m.saved = append(m.saved, r)
	return r, nil
}

func validDraft() models.Draft {
	return models.Draft{
		Title:       "Chili",
		TimeMinutes: 60,
		Ingredients: []models.Ingredient{{Name: "beans"}},
		Steps:       []string{"Simmer"},
		HealthScore: 6,
		Tags:        []models.Tag{models.TagComfortFood, models.TagSpicy},
	}
}

func TestResolveImageURL(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		tags     []models.Tag
		want     string
	}{
		{"explicit wins", "https://example.com/chili.jpg", []models.Tag{models.TagSpicy}, "https://example.com/chili.jpg"},
		{"first tag placeholder", "", []models.Tag{models.TagComfortFood, models.TagSpicy}, "/placeholders/comfort_food.png"},
		{"single word tag", "  ", []models.Tag{models.TagDessert}, "/placeholders/dessert.png"},
		{"default", "", nil, DefaultImageURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveImageURL(tt.explicit, tt.tags); got != tt.want {
				t.Errorf("ResolveImageURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccept(t *testing.T) {
	store := &memRecipes{}
	r := New(store, storage.NewDraftStore())

	recipe, err := r.Accept(context.Background(), "alice", validDraft(), "")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if recipe.CreatedBy != "alice" || recipe.ImageURL != "/placeholders/comfort_food.png" {
		t.Errorf("unexpected recipe %+v", recipe)
	}

	if _, err := r.Accept(context.Background(), "", validDraft(), ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	bad := validDraft()
	bad.Tags = nil
	if _, err := r.Accept(context.Background(), "alice", bad, ""); !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("rejected drafts reached the store: %d saved", len(store.saved))
	}
}

func TestAcceptPending(t *testing.T) {
	drafts := storage.NewDraftStore()
	store := &memRecipes{err: errors.New("disk full")}
	r := New(store, drafts)

	img := &models.Blob{Data: []byte("png"), ContentType: "image/png"}
	p := r.Hold(validDraft(), img, "alice")

	if _, err := r.AcceptPending(context.Background(), "bob", p.ID, nil, ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for another user, got %v", err)
	}
	if _, err := r.AcceptPending(context.Background(), "alice", p.ID, nil, ""); err == nil {
		t.Fatal("expected store failure")
	}
	if _, ok := drafts.Get(p.ID); !ok {
		t.Fatal("draft lost after failed save")
	}

	store.err = nil
	edited := validDraft()
	edited.Title = "Five Alarm Chili"
	recipe, err := r.AcceptPending(context.Background(), "alice", p.ID, &edited, "")
	if err != nil {
		t.Fatalf("accept pending: %v", err)
	}
	if recipe.Title != "Five Alarm Chili" || !strings.HasPrefix(recipe.ImageURL, "data:image/png;base64,") {
		t.Errorf("unexpected recipe %+v", recipe)
	}
	if _, ok := drafts.Get(p.ID); ok {
		t.Error("accepted draft still pending")
	}
	if _, err := r.AcceptPending(context.Background(), "alice", p.ID, nil, ""); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second accept, got %v", err)
	}
}

func TestDiscard(t *testing.T) {
	drafts := storage.NewDraftStore()
	r := New(&memRecipes{}, drafts)
	p := r.Hold(validDraft(), nil, "alice")

	if err := r.Discard("bob", p.ID); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for another user, got %v", err)
	}
	if err := r.Discard("alice", p.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if err := r.Discard("alice", p.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if drafts.Len() != 0 {
		t.Error("draft not removed")
	}
}
