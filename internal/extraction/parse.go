package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// looseNumber accepts JSON numbers, numeric strings and simple fractions.
// Anything else decodes as unset rather than failing the whole draft.
type looseNumber struct {
	set   bool
	value float64
}

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if v, ok := parseQuantity(s); ok {
			n.set, n.value = true, v
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("expected number, got %s", data)
	}
	n.set, n.value = true, f
	return nil
}

// int rounds the value, saturating at the int32 range so huge or infinite
// inputs keep their sign when clamped later.
func (n looseNumber) int() (int, bool) {
	if !n.set || math.IsNaN(n.value) {
		return 0, false
	}
	v := math.Round(n.value)
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32, true
	case v < math.MinInt32:
		return math.MinInt32, true
	}
	return int(v), true
}

func (n looseNumber) finite() bool {
	return n.set && !math.IsNaN(n.value) && !math.IsInf(n.value, 0)
}

// parseQuantity understands "2", "0.5", "1/2" and "1 1/2"
func parseQuantity(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}

	total := 0.0
	for i, f := range fields {
		if num, den, ok := strings.Cut(f, "/"); ok {
			n, err1 := strconv.ParseFloat(num, 64)
			d, err2 := strconv.ParseFloat(den, 64)
			if err1 != nil || err2 != nil || d == 0 {
				return 0, false
			}
			total += n / d
			continue
		}
		if i > 0 {
			return 0, false
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, false
		}
		total += v
	}
	return total, true
}

// stringList accepts either a JSON array of strings or a single string
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type rawIngredient struct {
	Quantity looseNumber `json:"quantity"`
	Unit     *string     `json:"unit"`
	Name     string      `json:"name"`
}

// rawDraft is the wire shape returned by the model before normalization
type rawDraft struct {
	Title       string          `json:"title"`
	TimeMinutes looseNumber     `json:"time_minutes"`
	Time        looseNumber     `json:"time"`
	Ingredients []rawIngredient `json:"ingredients"`
	Steps       stringList      `json:"steps"`
	HealthScore looseNumber     `json:"health_score"`
	Tags        stringList      `json:"tags"`
}

// stripFences removes a markdown code fence some models wrap JSON in
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// parseDraft decodes a model response exactly once and normalizes it.
// A decode failure is returned as is; callers classify it.
func parseDraft(response string) (models.Draft, error) {
	var raw rawDraft
	if err := json.Unmarshal([]byte(stripFences(response)), &raw); err != nil {
		return models.Draft{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return raw.normalize(), nil
}

func (r rawDraft) normalize() models.Draft {
	d := models.Draft{
		Title:       strings.TrimSpace(r.Title),
		Ingredients: make([]models.Ingredient, 0, len(r.Ingredients)),
		Steps:       make([]string, 0, len(r.Steps)),
		Tags:        models.NormalizeTags(r.Tags),
	}

	minutes, ok := r.TimeMinutes.int()
	if !ok {
		minutes, ok = r.Time.int()
	}
	if !ok || minutes <= 0 {
		minutes = models.DefaultTimeMinutes
	}
	d.TimeMinutes = minutes

	score, ok := r.HealthScore.int()
	if !ok {
		score = models.DefaultHealthScore
	}
	d.HealthScore = models.ClampHealthScore(score)

	for _, ing := range r.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		out := models.Ingredient{Name: name}
		if ing.Quantity.finite() {
			q := ing.Quantity.value
			out.Quantity = &q
		}
		if ing.Unit != nil {
			if u := strings.TrimSpace(*ing.Unit); u != "" {
				out.Unit = &u
			}
		}
		d.Ingredients = append(d.Ingredients, out)
	}

	for _, step := range r.Steps {
		if s := strings.TrimSpace(step); s != "" {
			d.Steps = append(d.Steps, s)
		}
	}

	return d
}
