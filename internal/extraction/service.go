// Package extraction converts captured recipe material into a validated draft.
//
// Two strategies implement Extractor: Service calls a text/vision model through a
// providers.Provider, and Placeholder returns a fixed draft so the capture flow
// works without credentials. New picks one from configuration.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recipebox/internal/config"
	"github.com/lehigh-university-libraries/recipebox/internal/gemini"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/ollama"
	"github.com/lehigh-university-libraries/recipebox/internal/openai"
	"github.com/lehigh-university-libraries/recipebox/internal/providers"
)

var (
	// ErrExtractionFailed covers provider errors, timeouts, unparsable output and
	// drafts that fail validation. It is never retried here.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrNoInputProvided means the caller submitted neither text nor image.
	ErrNoInputProvided = errors.New("no input provided")
)

// Request is the extraction input. Text already contains any transcribed audio.
type Request struct {
	Text  string
	Image *models.Blob
}

// Empty reports whether the request has nothing to extract from
func (r Request) Empty() bool {
	return strings.TrimSpace(r.Text) == "" && r.Image.Empty()
}

// Extractor produces a draft that satisfies the recipe schema or an error.
type Extractor interface {
	Extract(ctx context.Context, req Request) (models.Draft, error)
}

// Service extracts drafts with an LLM provider
type Service struct {
	provider     providers.Provider
	providerName string
	model        string
	temperature  float64
	timeout      time.Duration
}

// NewService returns a live extractor
func NewService(provider providers.Provider, providerName, model string, temperature float64, timeout time.Duration) *Service {
	return &Service{
		provider:     provider,
		providerName: providerName,
		model:        model,
		temperature:  temperature,
		timeout:      timeout,
	}
}

// Extract asks the provider for a draft, parses the reply once and validates it
func (s *Service) Extract(ctx context.Context, req Request) (models.Draft, error) {
	if req.Empty() {
		return models.Draft{}, ErrNoInputProvided
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		System:      buildSystemPrompt(),
		Prompt:      buildUserPrompt(req),
		Image:       req.Image,
		JSON:        true,
	})
	if err != nil {
		slog.Error("Recipe extraction call failed", "provider", s.providerName, "model", s.model, "elapsed", time.Since(start), "err", err)
		return models.Draft{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	draft, err := parseDraft(raw)
	if err != nil {
		slog.Warn("Unparsable extraction response", "provider", s.providerName, "length", len(raw), "err", err)
		return models.Draft{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	if err := draft.Validate(); err != nil {
		slog.Warn("Extracted draft rejected", "provider", s.providerName, "err", err)
		return models.Draft{}, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	slog.Info("Extracted recipe draft",
		"provider", s.providerName,
		"model", s.model,
		"title", draft.Title,
		"ingredients", len(draft.Ingredients),
		"steps", len(draft.Steps),
		"elapsed", time.Since(start))
	return draft, nil
}

// New builds the extractor for cfg, falling back to Placeholder when the
// configured provider has no credentials.
func New(cfg *config.Config) Extractor {
	if !cfg.ExtractionLive() {
		slog.Warn("No extraction credentials configured, using placeholder drafts", "provider", cfg.Extraction.Provider)
		return Placeholder{}
	}

	var provider providers.Provider
	switch cfg.Extraction.Provider {
	case config.ProviderOpenAI:
		provider = openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Transcription.Model)
	case config.ProviderGemini:
		provider = gemini.New(cfg.Gemini.APIKey, cfg.Extraction.Model)
	case config.ProviderOllama:
		provider = ollama.New(cfg.Ollama.URL)
	default:
		return Placeholder{}
	}

	return NewService(provider, cfg.Extraction.Provider, cfg.Extraction.Model, cfg.Extraction.Temperature, cfg.Extraction.Timeout.Duration)
}
