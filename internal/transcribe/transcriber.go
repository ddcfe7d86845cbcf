// Package transcribe turns dictated audio into plain text for extraction.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/config"
	"github.com/lehigh-university-libraries/recipebox/internal/gemini"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/openai"
	"github.com/lehigh-university-libraries/recipebox/internal/providers"
)

// ErrTranscriptionFailed is returned for unintelligible, empty, oversized or
// otherwise untranscribable audio. Callers fall back to typed text.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber converts a recorded clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio models.Blob) (string, error)
}

// Guard wraps a speech-to-text backend with the input checks and error
// mapping every caller relies on. It never retries.
type Guard struct {
	backend  providers.Transcriber
	maxBytes int64
	name     string
}

// NewGuard returns a Transcriber around backend. maxBytes <= 0 disables the size check.
func NewGuard(name string, backend providers.Transcriber, maxBytes int64) *Guard {
	return &Guard{backend: backend, maxBytes: maxBytes, name: name}
}

func (g *Guard) Transcribe(ctx context.Context, audio models.Blob) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: audio clip is empty", ErrTranscriptionFailed)
	}
	if g.maxBytes > 0 && int64(len(audio.Data)) > g.maxBytes {
		return "", fmt.Errorf("%w: audio clip is %d bytes, limit is %d", ErrTranscriptionFailed, len(audio.Data), g.maxBytes)
	}

	text, err := g.backend.TranscribeAudio(ctx, audio)
	if err != nil {
		slog.Error("Transcription backend failed", "backend", g.name, "err", err)
		return "", fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: no speech detected", ErrTranscriptionFailed)
	}
	return text, nil
}

// Placeholder returns a fixed, clearly labelled transcript. It backs offline mode
// so the capture flow can run without a speech-to-text service.
type Placeholder struct{}

func (Placeholder) Transcribe(_ context.Context, audio models.Blob) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: audio clip is empty", ErrTranscriptionFailed)
	}
	return fmt.Sprintf("[offline transcript of %d bytes of audio]", len(audio.Data)), nil
}

// Unavailable rejects every clip. It is used when extraction is live but no
// speech-to-text backend is configured.
type Unavailable struct{}

func (Unavailable) Transcribe(context.Context, models.Blob) (string, error) {
	return "", fmt.Errorf("%w: no speech-to-text backend configured", ErrTranscriptionFailed)
}

// New picks a transcriber for the configuration. Whisper is preferred when an
// OpenAI key exists, Gemini otherwise.
func New(cfg *config.Config) Transcriber {
	switch {
	case cfg.HasOpenAIKey():
		backend := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Transcription.Model)
		return NewGuard("openai", backend, cfg.Transcription.MaxAudioBytes)
	case cfg.Gemini.APIKey != "":
		model := ""
		if cfg.Extraction.Provider == config.ProviderGemini {
			model = cfg.Extraction.Model
		}
		return NewGuard("gemini", gemini.New(cfg.Gemini.APIKey, model), cfg.Transcription.MaxAudioBytes)
	case cfg.ExtractionLive():
		return Unavailable{}
	default:
		return Placeholder{}
	}
}
