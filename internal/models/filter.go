package models

import (
	"fmt"
	"strings"
)

// RecipeFilter narrows a recipe listing. Zero fields match everything.
type RecipeFilter struct {
	// Query matches a case-insensitive substring of the title or of any tag
	Query string
	// Tag requires an exact tag
	Tag       Tag
	CreatedBy string
}

// NewRecipeFilter builds a filter from user input. An unknown tag is a
// validation error rather than an empty result.
func NewRecipeFilter(query, tag, createdBy string) (RecipeFilter, error) {
	f := RecipeFilter{
		Query:     strings.TrimSpace(query),
		CreatedBy: strings.TrimSpace(createdBy),
	}
	if strings.TrimSpace(tag) != "" {
		t, ok := ParseTag(tag)
		if !ok {
			return RecipeFilter{}, fmt.Errorf("%w: unknown tag %q", ErrValidationFailed, tag)
		}
		f.Tag = t
	}
	return f, nil
}

// Match reports whether r passes every set field of the filter
func (f RecipeFilter) Match(r Recipe) bool {
	if f.CreatedBy != "" && r.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Tag != "" && !hasTag(r.Tags, f.Tag) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if strings.Contains(strings.ToLower(r.Title), q) {
			return true
		}
		for _, t := range r.Tags {
			if strings.Contains(strings.ToLower(string(t)), q) {
				return true
			}
		}
		return false
	}
	return true
}

// FilterRecipes keeps the matching recipes in their original order
func FilterRecipes(recipes []Recipe, f RecipeFilter) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SearchPantry keeps items whose name contains search, ignoring case
func SearchPantry(items []PantryItem, search string) []PantryItem {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return items
	}
	out := make([]PantryItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

func hasTag(tags []Tag, want Tag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
