package extraction

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/recipebox/internal/config"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/providers"
)

type fakeProvider struct {
	response string
	err      error
	block    bool
	calls    int
	last     providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, cfg providers.Config) (string, error) {
	f.calls++
	f.last = cfg
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.response, f.err
}

func newTestService(p providers.Provider) *Service {
	return NewService(p, "fake", "fake-model", 0.1, time.Second)
}

func TestExtractNormalizesResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		check    func(t *testing.T, d models.Draft)
	}{
		{
			name:     "clamps high health score",
			response: `{"title":"Omelette","time_minutes":10,"ingredients":[{"quantity":2,"unit":null,"name":"eggs"}],"steps":["Whisk","Cook"],"health_score":15,"tags":["Breakfast"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.HealthScore != 10 {
					t.Errorf("expected health 10, got %d", d.HealthScore)
				}
			},
		},
		{
			name:     "clamps negative health score",
			response: `{"title":"Fries","time_minutes":30,"ingredients":[],"steps":["Fry"],"health_score":-2,"tags":["Comfort Food"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.HealthScore != 1 {
					t.Errorf("expected health 1, got %d", d.HealthScore)
				}
			},
		},
		{
			name:     "coerces floats and strings to integers",
			response: `{"title":"Stew","time":"45","ingredients":[],"steps":["Simmer"],"health_score":7.6,"tags":["Comfort Food"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.TimeMinutes != 45 {
					t.Errorf("expected 45 minutes, got %d", d.TimeMinutes)
				}
				if d.HealthScore != 8 {
					t.Errorf("expected health 8, got %d", d.HealthScore)
				}
			},
		},
		{
			name:     "filters tags outside the vocabulary",
			response: `{"title":"Curry","time_minutes":40,"ingredients":[],"steps":["Cook"],"health_score":6,"tags":["Indian","spicy","Weeknight","vegan","Fast","Healthy"]}`,
			check: func(t *testing.T, d models.Draft) {
				want := []models.Tag{models.TagSpicy, models.TagVegan, models.TagFast}
				if !reflect.DeepEqual(d.Tags, want) {
					t.Errorf("got tags %v, want %v", d.Tags, want)
				}
			},
		},
		{
			name:     "applies default tag when none survive",
			response: `{"title":"Mystery","time_minutes":5,"ingredients":[],"steps":["Eat"],"health_score":5,"tags":["Unknown"]}`,
			check: func(t *testing.T, d models.Draft) {
				if !reflect.DeepEqual(d.Tags, []models.Tag{models.DefaultTag}) {
					t.Errorf("expected default tag, got %v", d.Tags)
				}
			},
		},
		{
			name:     "strips markdown fences",
			response: "```json\n{\"title\":\"Toast\",\"time_minutes\":3,\"ingredients\":[{\"name\":\"bread\"}],\"steps\":[\"Toast it\"],\"health_score\":4,\"tags\":\"Quick Snack\"}\n```",
			check: func(t *testing.T, d models.Draft) {
				if d.Title != "Toast" || len(d.Tags) != 1 || d.Tags[0] != models.TagQuickSnack {
					t.Errorf("unexpected draft %+v", d)
				}
			},
		},
		{
			name:     "normalizes ingredients",
			response: `{"title":"Pancakes","time_minutes":20,"ingredients":[{"quantity":"1 1/2","unit":" cups ","name":" flour "},{"quantity":"a pinch","unit":"","name":"salt"},{"quantity":1,"unit":null,"name":"  "}],"steps":["Mix","","Cook"],"health_score":4,"tags":["Breakfast"]}`,
			check: func(t *testing.T, d models.Draft) {
				if len(d.Ingredients) != 2 {
					t.Fatalf("expected 2 ingredients, got %d", len(d.Ingredients))
				}
				flour := d.Ingredients[0]
				if flour.Name != "flour" || flour.Quantity == nil || *flour.Quantity != 1.5 || flour.Unit == nil || *flour.Unit != "cups" {
					t.Errorf("unexpected flour %+v", flour)
				}
				salt := d.Ingredients[1]
				if salt.Quantity != nil || salt.Unit != nil {
					t.Errorf("expected null quantity and unit for salt, got %+v", salt)
				}
				if !reflect.DeepEqual(d.Steps, []string{"Mix", "Cook"}) {
					t.Errorf("unexpected steps %v", d.Steps)
				}
			},
		},
		{
			name:     "clamps huge health score down to the maximum",
			response: `{"title":"Kale","time_minutes":1e30,"ingredients":[{"quantity":"Infinity","name":"kale"}],"steps":["Eat"],"health_score":1e30,"tags":["Healthy"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.HealthScore != 10 {
					t.Errorf("expected health 10, got %d", d.HealthScore)
				}
				if d.TimeMinutes != math.MaxInt32 {
					t.Errorf("expected saturated time, got %d", d.TimeMinutes)
				}
				if d.Ingredients[0].Quantity != nil {
					t.Errorf("expected null quantity for non-finite input, got %v", *d.Ingredients[0].Quantity)
				}
			},
		},
		{
			name:     "clamps huge negative health score up to the minimum",
			response: `{"title":"Lard","time_minutes":-1e30,"ingredients":[],"steps":["Melt"],"health_score":-1e30,"tags":["Comfort Food"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.HealthScore != 1 {
					t.Errorf("expected health 1, got %d", d.HealthScore)
				}
				if d.TimeMinutes != models.DefaultTimeMinutes {
					t.Errorf("expected default time, got %d", d.TimeMinutes)
				}
			},
		},
		{
			name:     "clamps infinite health score string",
			response: `{"title":"Broth","time_minutes":"15","ingredients":[],"steps":["Simmer"],"health_score":"Infinity","tags":["Healthy"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.HealthScore != 10 {
					t.Errorf("expected health 10, got %d", d.HealthScore)
				}
			},
		},
		{
			name:     "defaults missing time and health",
			response: `{"title":"Salad","ingredients":[],"steps":["Toss"],"tags":["Healthy"]}`,
			check: func(t *testing.T, d models.Draft) {
				if d.TimeMinutes != models.DefaultTimeMinutes || d.HealthScore != models.DefaultHealthScore {
					t.Errorf("unexpected defaults %d/%d", d.TimeMinutes, d.HealthScore)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{response: tt.response}
			d, err := newTestService(p).Extract(context.Background(), Request{Text: "recipe notes"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := d.Validate(); err != nil {
				t.Errorf("extracted draft does not validate: %v", err)
			}
			tt.check(t, d)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name           string
		provider       *fakeProvider
		wantValidation bool
	}{
		{name: "provider error", provider: &fakeProvider{err: errors.New("connection refused")}},
		{name: "malformed JSON", provider: &fakeProvider{response: `{"title": "Half`}},
		{name: "prose instead of JSON", provider: &fakeProvider{response: `Here is your recipe: Toast.`}},
		{name: "missing title", provider: &fakeProvider{response: `{"title":"","time_minutes":5,"ingredients":[],"steps":["Eat"],"health_score":5,"tags":["Fast"]}`}, wantValidation: true},
		{name: "missing steps", provider: &fakeProvider{response: `{"title":"Toast","time_minutes":5,"ingredients":[],"steps":[],"health_score":5,"tags":["Fast"]}`}, wantValidation: true},
		{name: "timeout", provider: &fakeProvider{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.provider, "fake", "m", 0, 50*time.Millisecond)
			_, err := s.Extract(context.Background(), Request{Text: "notes"})
			if !errors.Is(err, ErrExtractionFailed) {
				t.Fatalf("expected ErrExtractionFailed, got %v", err)
			}
			if got := errors.Is(err, models.ErrValidationFailed); got != tt.wantValidation {
				t.Errorf("validation classification = %v, want %v (%v)", got, tt.wantValidation, err)
			}
			if tt.provider.calls != 1 {
				t.Errorf("provider called %d times, want exactly 1", tt.provider.calls)
			}
		})
	}
}

func TestExtractNoInput(t *testing.T) {
	p := &fakeProvider{}
	for _, ex := range []Extractor{newTestService(p), Placeholder{}} {
		_, err := ex.Extract(context.Background(), Request{Text: "  \n"})
		if !errors.Is(err, ErrNoInputProvided) {
			t.Errorf("%T: expected ErrNoInputProvided, got %v", ex, err)
		}
	}
	if p.calls != 0 {
		t.Errorf("provider should not be called, got %d calls", p.calls)
	}
}

func TestExtractRequestShape(t *testing.T) {
	p := &fakeProvider{response: `{"title":"Soup","time_minutes":30,"ingredients":[],"steps":["Boil"],"health_score":7,"tags":["Healthy"]}`}
	image := &models.Blob{Data: []byte("jpeg"), ContentType: "image/jpeg"}

	if _, err := newTestService(p).Extract(context.Background(), Request{Image: image}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.last.Prompt != imageOnlyPrompt {
		t.Errorf("expected image-only prompt, got %q", p.last.Prompt)
	}
	if p.last.Image != image || !p.last.JSON {
		t.Errorf("image or JSON mode not forwarded: %+v", p.last)
	}
	for _, tag := range models.Vocabulary() {
		if !strings.Contains(p.last.System, string(tag)) {
			t.Errorf("system prompt missing tag %q", tag)
		}
	}
	for _, field := range []string{"title", "time_minutes", "ingredients", "steps", "health_score", "tags"} {
		if !strings.Contains(p.last.System, field) {
			t.Errorf("system prompt missing field %q", field)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	d, err := Placeholder{}.Extract(context.Background(), Request{Text: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title != PlaceholderTitle {
		t.Errorf("unexpected title %q", d.Title)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("placeholder draft must validate: %v", err)
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	offline := config.Default()
	if _, ok := New(&offline).(Placeholder); !ok {
		t.Error("expected placeholder without credentials")
	}

	live := config.Default()
	live.OpenAI.APIKey = "sk-test"
	live.Extraction.Model = "gpt-4o"
	s, ok := New(&live).(*Service)
	if !ok {
		t.Fatal("expected live service with an API key")
	}
	if s.providerName != config.ProviderOpenAI || s.model != "gpt-4o" || s.timeout != live.Extraction.Timeout.Duration {
		t.Errorf("unexpected service %+v", s)
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{"0.25", 0.25, true},
		{"1/2", 0.5, true},
		{"1 1/2", 1.5, true},
		{"a pinch", 0, false},
		{"1/0", 0, false},
		{"", 0, false},
		{"1 2", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseQuantity(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseQuantity(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
