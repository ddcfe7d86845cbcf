package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinHealthScore = 1
	MaxHealthScore = 10

	// DefaultHealthScore and DefaultTimeMinutes fill values the extraction left out
	DefaultHealthScore = 5
	DefaultTimeMinutes = 20
)

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Quantity *float64 `json:"quantity" yaml:"quantity"`
	Unit     *string  `json:"unit" yaml:"unit"`
	Name     string   `json:"name" yaml:"name"`
}

// Draft is an unpersisted recipe produced by extraction
type Draft struct {
	Title       string       `json:"title" yaml:"title"`
	TimeMinutes int          `json:"time_minutes" yaml:"time_minutes"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients"`
	Steps       []string     `json:"steps" yaml:"steps"`
	HealthScore int          `json:"health_score" yaml:"health_score"`
	Tags        []Tag        `json:"tags" yaml:"tags"`
}

// Validate checks the draft against the recipe schema
func (d Draft) Validate() error {
	var problems []string

	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is empty")
	}
	if d.TimeMinutes <= 0 {
		problems = append(problems, fmt.Sprintf("time_minutes must be positive, got %d", d.TimeMinutes))
	}
	for i, ing := range d.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			problems = append(problems, fmt.Sprintf("ingredient %d has no name", i))
		}
	}
	if len(d.Steps) == 0 {
		problems = append(problems, "steps are empty")
	}
	for i, step := range d.Steps {
		if strings.TrimSpace(step) == "" {
			problems = append(problems, fmt.Sprintf("step %d is empty", i))
		}
	}
	if d.HealthScore < MinHealthScore || d.HealthScore > MaxHealthScore {
		problems = append(problems, fmt.Sprintf("health_score %d outside [%d,%d]", d.HealthScore, MinHealthScore, MaxHealthScore))
	}
	if len(d.Tags) < MinTags || len(d.Tags) > MaxTags {
		problems = append(problems, fmt.Sprintf("expected %d-%d tags, got %d", MinTags, MaxTags, len(d.Tags)))
	}
	seen := make(map[Tag]bool, len(d.Tags))
	for _, t := range d.Tags {
		if !t.Valid() {
			problems = append(problems, fmt.Sprintf("tag %q is not in the vocabulary", t))
		}
		if seen[t] {
			problems = append(problems, fmt.Sprintf("tag %q is repeated", t))
		}
		seen[t] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

// ClampHealthScore forces a score into [MinHealthScore, MaxHealthScore]
func ClampHealthScore(score int) int {
	if score < MinHealthScore {
		return MinHealthScore
	}
	if score > MaxHealthScore {
		return MaxHealthScore
	}
	return score
}

// Recipe is an accepted draft with identity
type Recipe struct {
	Draft     `yaml:",inline"`
	ID        string    `json:"id" yaml:"id"`
	CreatedBy string    `json:"created_by" yaml:"created_by"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ImageURL  string    `json:"image_url" yaml:"image_url"`
}

// RecipePatch carries the editable fields of a recipe; nil fields are left alone
type RecipePatch struct {
	Title       *string       `json:"title,omitempty"`
	TimeMinutes *int          `json:"time_minutes,omitempty"`
	HealthScore *int          `json:"health_score,omitempty"`
	Ingredients *[]Ingredient `json:"ingredients,omitempty"`
	Steps       *[]string     `json:"steps,omitempty"`
	Tags        *[]Tag        `json:"tags,omitempty"`
}

// Apply returns a copy of r with the patch applied
func (p RecipePatch) Apply(r Recipe) Recipe {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.TimeMinutes != nil {
		r.TimeMinutes = *p.TimeMinutes
	}
	if p.HealthScore != nil {
		r.HealthScore = *p.HealthScore
	}
	if p.Ingredients != nil {
		r.Ingredients = append([]Ingredient(nil), (*p.Ingredients)...)
	}
	if p.Steps != nil {
		r.Steps = append([]string(nil), (*p.Steps)...)
	}
	if p.Tags != nil {
		r.Tags = append([]Tag(nil), (*p.Tags)...)
	}
	return r
}
