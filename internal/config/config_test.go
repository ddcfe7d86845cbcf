package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RECIPEBOX_PROVIDER", "RECIPEBOX_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_TRANSCRIBE_MODEL", "GEMINI_API_KEY", "OLLAMA_HOST", "OLLAMA_URL",
		"RECIPEBOX_DB", "RECIPEBOX_PORT", "RECIPEBOX_EXTRACT_TIMEOUT", "RECIPEBOX_TEMPERATURE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Extraction.Provider != ProviderOpenAI {
		t.Errorf("expected openai provider, got %q", cfg.Extraction.Provider)
	}
	if cfg.Extraction.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %q", cfg.Extraction.Model)
	}
	if cfg.ExtractionLive() {
		t.Error("extraction should be offline without an API key")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "recipebox.toml")
	contents := `
[extraction]
provider = "ollama"
model = "llava:13b"
timeout = "45s"

[storage]
database_path = "data/recipes.db"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OLLAMA_URL", "http://kitchen:11434/")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Extraction.Provider != ProviderOllama || cfg.Extraction.Model != "llava:13b" {
		t.Errorf("file values not applied: %+v", cfg.Extraction)
	}
	if cfg.Extraction.Timeout.Duration != 45*time.Second {
		t.Errorf("expected 45s timeout, got %s", cfg.Extraction.Timeout)
	}
	if cfg.Ollama.URL != "http://kitchen:11434" {
		t.Errorf("env override not applied: %q", cfg.Ollama.URL)
	}
	if cfg.Storage.DatabasePath != filepath.Clean("data/recipes.db") {
		t.Errorf("unexpected database path %q", cfg.Storage.DatabasePath)
	}
	if !cfg.ExtractionLive() {
		t.Error("ollama should be live with a URL")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8888" {
		t.Errorf("expected default port, got %q", cfg.Server.Port)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECIPEBOX_PROVIDER", "anthropic-ish")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECIPEBOX_EXTRACT_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unparsable timeout")
	}
}

func TestExtractionLive(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"openai with key", Config{Extraction: Extraction{Provider: ProviderOpenAI}, OpenAI: OpenAI{APIKey: "sk-test"}}, true},
		{"openai with template key", Config{Extraction: Extraction{Provider: ProviderOpenAI}, OpenAI: OpenAI{APIKey: openAIKeyTemplate}}, false},
		{"openai without key", Config{Extraction: Extraction{Provider: ProviderOpenAI}}, false},
		{"gemini with key", Config{Extraction: Extraction{Provider: ProviderGemini}, Gemini: Gemini{APIKey: "g"}}, true},
		{"gemini without key", Config{Extraction: Extraction{Provider: ProviderGemini}}, false},
		{"ollama with url", Config{Extraction: Extraction{Provider: ProviderOllama}, Ollama: Ollama{URL: "http://x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ExtractionLive(); got != tt.want {
				t.Errorf("ExtractionLive() = %v, want %v", got, tt.want)
			}
		})
	}
}
