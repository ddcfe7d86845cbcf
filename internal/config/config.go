package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	// openAIKeyTemplate is the value shipped in example .env files
	openAIKeyTemplate = "YOUR_OPENAI_API_KEY_HERE"
)

// Extraction configures the text/vision model used to build drafts
type Extraction struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	Temperature float64  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
}

// Duration decodes TOML strings such as "90s" into a time.Duration
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Transcription configures speech-to-text for dictated recipes
type Transcription struct {
	Model         string `toml:"model"`
	MaxAudioBytes int64  `toml:"max_audio_bytes"`
}

// OpenAI holds OpenAI credentials
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Ollama holds the Ollama endpoint
type Ollama struct {
	URL string `toml:"url"`
}

// Gemini holds Google Gemini credentials
type Gemini struct {
	APIKey string `toml:"api_key"`
}

// Storage configures the recipe and pantry database
type Storage struct {
	DatabasePath  string `toml:"database_path"`
	MaxImageBytes int64  `toml:"max_image_bytes"`
}

// Server configures the HTTP interface
type Server struct {
	Port string `toml:"port"`
}

// Config is the full recipebox configuration
type Config struct {
	Extraction    Extraction    `toml:"extraction"`
	Transcription Transcription `toml:"transcription"`
	OpenAI        OpenAI        `toml:"openai"`
	Ollama        Ollama        `toml:"ollama"`
	Gemini        Gemini        `toml:"gemini"`
	Storage       Storage       `toml:"storage"`
	Server        Server        `toml:"server"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Extraction: Extraction{
			Provider:    ProviderOpenAI,
			Temperature: 0.1,
			Timeout:     Duration{2 * time.Minute},
		},
		Transcription: Transcription{
			Model:         "whisper-1",
			MaxAudioBytes: 25 * 1024 * 1024,
		},
		OpenAI: OpenAI{BaseURL: "https://api.openai.com/v1"},
		Ollama: Ollama{URL: "http://localhost:11434"},
		Storage: Storage{
			DatabasePath:  "recipebox.db",
			MaxImageBytes: 10 * 1024 * 1024,
		},
		Server: Server{Port: "8888"},
	}
}

// Load reads an optional TOML file, applies environment overrides, then
// normalizes and validates. A missing file at an explicit path is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("open config: %w", err)
		default:
			defer file.Close()
			if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("RECIPEBOX_PROVIDER", &c.Extraction.Provider)
	str("RECIPEBOX_MODEL", &c.Extraction.Model)
	str("OPENAI_API_KEY", &c.OpenAI.APIKey)
	str("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	str("OPENAI_TRANSCRIBE_MODEL", &c.Transcription.Model)
	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("OLLAMA_HOST", &c.Ollama.URL)
	str("OLLAMA_URL", &c.Ollama.URL)
	str("RECIPEBOX_DB", &c.Storage.DatabasePath)
	str("RECIPEBOX_PORT", &c.Server.Port)

	if v, ok := lookup("RECIPEBOX_EXTRACT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RECIPEBOX_EXTRACT_TIMEOUT %q: %w", v, err)
		}
		c.Extraction.Timeout = Duration{d}
	}
	if v, ok := lookup("RECIPEBOX_TEMPERATURE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RECIPEBOX_TEMPERATURE %q: %w", v, err)
		}
		c.Extraction.Temperature = f
	}
	return nil
}

func (c *Config) normalize() {
	c.Extraction.Provider = strings.ToLower(strings.TrimSpace(c.Extraction.Provider))
	if c.Extraction.Model == "" {
		c.Extraction.Model = DefaultModel(c.Extraction.Provider)
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	c.Ollama.URL = strings.TrimRight(c.Ollama.URL, "/")
	if c.Storage.DatabasePath != "" && c.Storage.DatabasePath != ":memory:" {
		c.Storage.DatabasePath = filepath.Clean(c.Storage.DatabasePath)
	}
}

// Validate reports configuration that cannot work at all.
// Missing credentials are not an error: they select offline extraction.
func (c *Config) Validate() error {
	var problems []string
	switch c.Extraction.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
	default:
		problems = append(problems, fmt.Sprintf("unsupported provider %q (supported: openai, ollama, gemini)", c.Extraction.Provider))
	}
	if c.Extraction.Timeout.Duration <= 0 {
		problems = append(problems, "extraction timeout must be positive")
	}
	if c.Extraction.Temperature < 0 || c.Extraction.Temperature > 2 {
		problems = append(problems, "extraction temperature must be within [0,2]")
	}
	if c.Transcription.MaxAudioBytes <= 0 {
		problems = append(problems, "transcription max_audio_bytes must be positive")
	}
	if c.Storage.MaxImageBytes <= 0 {
		problems = append(problems, "storage max_image_bytes must be positive")
	}
	if c.Storage.DatabasePath == "" {
		problems = append(problems, "storage database_path is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o"
	case ProviderOllama:
		return "mistral-small3.2:24b"
	case ProviderGemini:
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// HasOpenAIKey reports whether a usable OpenAI key is configured
func (c *Config) HasOpenAIKey() bool {
	return c.OpenAI.APIKey != "" && c.OpenAI.APIKey != openAIKeyTemplate
}

// ExtractionLive reports whether the configured provider can be called.
// Ollama needs no credentials.
func (c *Config) ExtractionLive() bool {
	switch c.Extraction.Provider {
	case ProviderOpenAI:
		return c.HasOpenAIKey()
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderOllama:
		return c.Ollama.URL != ""
	default:
		return false
	}
}
