package extraction

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// imageOnlyPrompt stands in for the user text when only a photo was captured
const imageOnlyPrompt = "Extract recipe details from this image."

// buildSystemPrompt describes the output contract, including the closed tag vocabulary
func buildSystemPrompt() string {
	quoted := make([]string, 0, len(models.Vocabulary()))
	for _, t := range models.Vocabulary() {
		quoted = append(quoted, fmt.Sprintf("%q", string(t)))
	}

	return fmt.Sprintf(`You are a culinary assistant for a health-conscious household. Your job is to turn unstructured recipe material (typed notes, a photo of a handwritten or printed recipe, or a voice dictation transcript) into one structured recipe.

INSTRUCTIONS:
1. title: a short, human-readable title. Never empty.
2. time_minutes: total prep and cook time in minutes as an integer. Estimate it when the source does not say.
3. ingredients: ordered list of objects {"quantity": number or null, "unit": string or null, "name": string}. Every ingredient needs a name. Use null rather than guessing a quantity or unit.
4. steps: ordered list of instructions as strings, in the order they are performed. At least one step.
5. health_score: integer from 1 to 10 based on whole foods, little ultra-processed food and plenty of vegetables or protein.
6. tags: 1 to 3 tags chosen strictly from this list: [%s]. Do NOT invent tags outside this list.

OUTPUT FORMAT:
Respond with ONLY a JSON object, no markdown fences and no commentary:

{
  "title": "...",
  "time_minutes": 25,
  "ingredients": [{"quantity": 2, "unit": "cups", "name": "spinach"}],
  "steps": ["..."],
  "health_score": 8,
  "tags": ["Healthy"]
}`, strings.Join(quoted, ", "))
}

// buildUserPrompt returns the user payload text for a request
func buildUserPrompt(req Request) string {
	text := strings.TrimSpace(req.Text)
	if text == "" && !req.Image.Empty() {
		return imageOnlyPrompt
	}
	return text
}
