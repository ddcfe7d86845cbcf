package extraction

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// PlaceholderTitle labels drafts produced without a live model
const PlaceholderTitle = "Sample Recipe (offline extraction)"

// Placeholder returns the same draft for every non-empty request
type Placeholder struct{}

func (Placeholder) Extract(_ context.Context, req Request) (models.Draft, error) {
	if req.Empty() {
		return models.Draft{}, ErrNoInputProvided
	}

	slog.Info("Returning placeholder draft", "text_length", len(req.Text), "image", !req.Image.Empty())

	qty := 2.0
	unit := "cups"
	return models.Draft{
		Title:       PlaceholderTitle,
		TimeMinutes: 25,
		Ingredients: []models.Ingredient{{Quantity: &qty, Unit: &unit, Name: "Spinach"}},
		Steps:       []string{"Mix everything together."},
		HealthScore: 9,
		Tags:        []models.Tag{models.TagHealthy, models.TagFast},
	}, nil
}
