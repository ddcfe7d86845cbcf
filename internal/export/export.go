// Package export writes recipes to YAML or Parquet files and reads them back.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

type Format string

const (
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .yaml, .yml, .parquet)", ext)
	}
}

type yamlDocument struct {
	ExportedAt time.Time       `yaml:"exported_at"`
	Recipes    []models.Recipe `yaml:"recipes"`
}

// WriteYAML writes recipes as a single YAML document
func WriteYAML(w io.Writer, recipes []models.Recipe) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{ExportedAt: time.Now().UTC(), Recipes: recipes}); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// ReadYAML reads a document written by WriteYAML
func ReadYAML(r io.Reader) ([]models.Recipe, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return doc.Recipes, nil
}

type ingredientRow struct {
	Quantity *float64 `parquet:"quantity,optional"`
	Unit     *string  `parquet:"unit,optional"`
	Name     string   `parquet:"name"`
}

type recipeRow struct {
	ID          string          `parquet:"id"`
	Title       string          `parquet:"title"`
	TimeMinutes int64           `parquet:"time_minutes"`
	Ingredients []ingredientRow `parquet:"ingredients,list"`
	Steps       []string        `parquet:"steps,list"`
	HealthScore int64           `parquet:"health_score"`
	Tags        []string        `parquet:"tags,list"`
	ImageURL    string          `parquet:"image_url"`
	CreatedBy   string          `parquet:"created_by"`
	CreatedAt   string          `parquet:"created_at"`
}

func toRow(r models.Recipe) recipeRow {
	row := recipeRow{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: int64(r.TimeMinutes),
		Steps:       r.Steps,
		HealthScore: int64(r.HealthScore),
		Tags:        models.TagStrings(r.Tags),
		ImageURL:    r.ImageURL,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, ing := range r.Ingredients {
		row.Ingredients = append(row.Ingredients, ingredientRow(ing))
	}
	return row
}

func fromRow(row recipeRow) models.Recipe {
	r := models.Recipe{
		Draft: models.Draft{
			Title:       row.Title,
			TimeMinutes: int(row.TimeMinutes),
			Steps:       row.Steps,
			HealthScore: int(row.HealthScore),
		},
		ID:        row.ID,
		ImageURL:  row.ImageURL,
		CreatedBy: row.CreatedBy,
	}
	for _, ing := range row.Ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient(ing))
	}
	for _, t := range row.Tags {
		r.Tags = append(r.Tags, models.Tag(t))
	}
	if ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
		r.CreatedAt = ts
	}
	return r
}

// WriteParquet writes recipes as one row each, with nested ingredient lists
func WriteParquet(w io.Writer, recipes []models.Recipe) error {
	rows := make([]recipeRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, toRow(r))
	}

	writer := parquet.NewGenericWriter[recipeRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet reads recipes written by WriteParquet
func ReadParquet(r io.ReaderAt, size int64) ([]models.Recipe, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[recipeRow](pf)
	defer reader.Close()

	var recipes []models.Recipe
	rows := make([]recipeRow, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			recipes = append(recipes, fromRow(row))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return recipes, nil
}

// ExportFile writes recipes to path in the format its extension names
func ExportFile(path string, recipes []models.Recipe) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatParquet:
		err = WriteParquet(f, recipes)
	default:
		err = WriteYAML(f, recipes)
	}
	if err != nil {
		return err
	}

	slog.Info("Exported recipes", "path", path, "format", format, "count", len(recipes))
	return f.Close()
}

// ImportFile reads recipes from path. The result still needs Prepare before storing.
func ImportFile(path string) ([]models.Recipe, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	if format == FormatParquet {
		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		return ReadParquet(f, info.Size())
	}
	return ReadYAML(f)
}

// Prepare re-validates imported recipes and hands them to owner. Ids are
// cleared so the store assigns fresh ones; creation times are kept.
func Prepare(recipes []models.Recipe, owner string) ([]models.Recipe, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, fmt.Errorf("%w: imported recipes need an owner", models.ErrUnauthorized)
	}

	out := make([]models.Recipe, 0, len(recipes))
	var errs []error
	for i, r := range recipes {
		for j, t := range r.Tags {
			if parsed, ok := models.ParseTag(string(t)); ok {
				r.Tags[j] = parsed
			}
		}
		r.ID = ""
		r.CreatedBy = owner
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("recipe %d (%q): %w", i, r.Title, err))
			continue
		}
		out = append(out, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
