package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tag is a recipe category drawn from a closed vocabulary.
// Values outside the vocabulary can only be produced by a conversion
// that bypasses ParseTag; Validate catches those.
type Tag string

const (
	TagHealthy     Tag = "Healthy"
	TagFast        Tag = "Fast"
	TagHighProtein Tag = "High Protein"
	TagVegan       Tag = "Vegan"
	TagComfortFood Tag = "Comfort Food"
	TagLowCarb     Tag = "Low Carb"
	TagSpicy       Tag = "Spicy"
	TagQuickSnack  Tag = "Quick Snack"
	TagDessert     Tag = "Dessert"
	TagBreakfast   Tag = "Breakfast"
)

// DefaultTag is used when no extracted tag survives filtering
const DefaultTag = TagHealthy

const (
	MinTags = 1
	MaxTags = 3
)

var vocabulary = []Tag{
	TagHealthy,
	TagFast,
	TagHighProtein,
	TagVegan,
	TagComfortFood,
	TagLowCarb,
	TagSpicy,
	TagQuickSnack,
	TagDessert,
	TagBreakfast,
}

// Vocabulary returns the allowed tags in their canonical order
func Vocabulary() []Tag {
	out := make([]Tag, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// ParseTag maps free text onto the vocabulary, ignoring case and surrounding space
func ParseTag(s string) (Tag, bool) {
	s = strings.Join(strings.Fields(s), " ")
	for _, t := range vocabulary {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is part of the vocabulary
func (t Tag) Valid() bool {
	for _, v := range vocabulary {
		if v == t {
			return true
		}
	}
	return false
}

// UnmarshalJSON rejects tags outside the vocabulary
func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseTag(s)
	if !ok {
		return fmt.Errorf("%w: unknown tag %q", ErrValidationFailed, s)
	}
	*t = parsed
	return nil
}

// NormalizeTags keeps vocabulary members in their first-seen order,
// drops duplicates, caps the set at MaxTags and falls back to DefaultTag.
func NormalizeTags(raw []string) []Tag {
	tags := make([]Tag, 0, MaxTags)
	seen := make(map[Tag]bool, MaxTags)
	for _, r := range raw {
		t, ok := ParseTag(r)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	if len(tags) == 0 {
		tags = append(tags, DefaultTag)
	}
	return tags
}

// TagStrings converts tags for storage and display
func TagStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
