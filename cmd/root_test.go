package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

func offlineEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "RECIPEBOX_PROVIDER", "RECIPEBOX_MODEL", "RECIPEBOX_EXTRACT_TIMEOUT", "RECIPEBOX_TEMPERATURE"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("RECIPEBOX_DB", filepath.Join(dir, "recipebox.db"))
	return filepath.Join(dir, "missing.toml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{" WARN ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestExtractOffline(t *testing.T) {
	cfg := offlineEnv(t)

	out, err := run(t, "extract", "--config", cfg, "--log-level", "error", "--text", "eggs and spinach", "-o", "json")
	if err != nil {
		t.Fatalf("extract: %v\n%s", err, out)
	}
	var draft models.Draft
	if err := json.Unmarshal([]byte(out), &draft); err != nil {
		t.Fatalf("output is not a JSON draft: %v\n%s", err, out)
	}
	if draft.Title != extraction.PlaceholderTitle {
		t.Errorf("unexpected title %q", draft.Title)
	}

	if _, err := run(t, "extract", "--config", cfg, "--log-level", "error"); err == nil {
		t.Error("expected an error without any input")
	}
}

func TestSaveAndShop(t *testing.T) {
	cfg := offlineEnv(t)

	if out, err := run(t, "extract", "--config", cfg, "--log-level", "error", "--text", "salad", "--save", "--user", "alice"); err != nil {
		t.Fatalf("extract --save: %v\n%s", err, out)
	}

	out, err := run(t, "recipes", "list", "--config", cfg, "--log-level", "error")
	if err != nil {
		t.Fatalf("recipes list: %v", err)
	}
	if !strings.Contains(out, extraction.PlaceholderTitle) {
		t.Fatalf("saved recipe not listed:\n%s", out)
	}

	out, err = run(t, "recipes", "list", "--config", cfg, "--log-level", "error", "--tag", "fast")
	if err != nil || !strings.Contains(out, extraction.PlaceholderTitle) {
		t.Errorf("tag filter dropped the recipe: %v\n%s", err, out)
	}
	out, err = run(t, "recipes", "list", "--config", cfg, "--log-level", "error", "--search", "pizza")
	if err != nil || strings.Contains(out, extraction.PlaceholderTitle) {
		t.Errorf("search kept a non-matching recipe: %v\n%s", err, out)
	}
	if _, err := run(t, "recipes", "list", "--config", cfg, "--log-level", "error", "--tag", "Picnic"); err == nil {
		t.Error("expected an error for an unknown tag")
	}

	if out, err := run(t, "pantry", "add", "Baby Spinach", "--config", cfg, "--log-level", "error", "--user", "bob"); err != nil {
		t.Fatalf("pantry add: %v\n%s", err, out)
	}
	out, err = run(t, "pantry", "list", "--config", cfg, "--log-level", "error", "--search", "spinach")
	if err != nil || !strings.Contains(out, "Baby Spinach") {
		t.Errorf("pantry search: %v\n%s", err, out)
	}

	if _, err := run(t, "shop", "--config", cfg, "--log-level", "error"); err == nil {
		t.Error("expected an error without --recipe")
	}
}

func TestRenderTablePlainWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	if isTerminal(&buf) {
		t.Fatal("a buffer is not a terminal")
	}
	got := renderTable(&buf, []string{"Name", "Qty"}, [][]string{{"Milk", "1"}}, []columnAlignment{alignLeft, alignRight})
	if !strings.Contains(got, "+") || strings.Contains(got, "╭") {
		t.Errorf("expected ASCII borders:\n%s", got)
	}
	if !strings.Contains(got, "Milk") {
		t.Errorf("row missing:\n%s", got)
	}
}
