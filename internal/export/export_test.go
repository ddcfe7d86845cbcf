package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

func ptr[T any](v T) *T { return &v }

func sampleRecipes() []models.Recipe {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return []models.Recipe{
		{
			Draft: models.Draft{
				Title:       "Shakshuka",
				TimeMinutes: 35,
				Ingredients: []models.Ingredient{
					{Quantity: ptr(4.0), Name: "eggs"},
					{Quantity: ptr(1.5), Unit: ptr("cups"), Name: "tomato sauce"},
					{Name: "cumin"},
				},
				Steps:       []string{"Simmer sauce", "Poach eggs"},
				HealthScore: 8,
				Tags:        []models.Tag{models.TagBreakfast, models.TagSpicy},
			},
			ID:        "r1",
			CreatedBy: "alice",
			CreatedAt: created,
			ImageURL:  "/placeholders/breakfast.png",
		},
		{
			Draft: models.Draft{
				Title:       "Brownies",
				TimeMinutes: 45,
				Ingredients: []models.Ingredient{{Quantity: ptr(200.0), Unit: ptr("g"), Name: "chocolate"}},
				Steps:       []string{"Bake"},
				HealthScore: 2,
				Tags:        []models.Tag{models.TagDessert},
			},
			ID:        "r2",
			CreatedBy: "bob",
			CreatedAt: created.Add(time.Hour),
			ImageURL:  "/placeholders/dessert.png",
		},
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, sampleRecipes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "time_minutes: 35") || !strings.Contains(buf.String(), "quantity: null") {
		t.Errorf("unexpected YAML layout:\n%s", buf.String())
	}

	got, err := ReadYAML(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRecipes()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, sampleRecipes())
	}
}

func TestParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, sampleRecipes()); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadParquet(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := sampleRecipes()
	if len(got) != len(want) {
		t.Fatalf("got %d recipes, want %d", len(got), len(want))
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("recipe %d mismatch:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

func TestExportImportFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"recipes.yaml", "recipes.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportFile(path, sampleRecipes()); err != nil {
				t.Fatalf("export: %v", err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if len(got) != 2 || got[0].Title != "Shakshuka" {
				t.Errorf("unexpected import %+v", got)
			}
		})
	}

	if err := ExportFile(filepath.Join(dir, "recipes.csv"), nil); err == nil {
		t.Error("expected unsupported format error")
	}
}

func TestPrepare(t *testing.T) {
	recipes := sampleRecipes()
	recipes[0].Tags = []models.Tag{"breakfast", "SPICY"}

	got, err := Prepare(recipes, "carol")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for _, r := range got {
		if r.ID != "" || r.CreatedBy != "carol" {
			t.Errorf("identity not reset: %+v", r)
		}
	}
	if got[0].Tags[0] != models.TagBreakfast || got[0].Tags[1] != models.TagSpicy {
		t.Errorf("tags not canonicalized: %v", got[0].Tags)
	}

	bad := sampleRecipes()
	bad[1].Tags = []models.Tag{"Picnic"}
	if _, err := Prepare(bad, "carol"); !errors.Is(err, models.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}
	if _, err := Prepare(sampleRecipes(), ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
