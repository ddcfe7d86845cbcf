package providers

import (
	"context"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// Config represents a single request to an LLM provider
type Config struct {
	Model       string
	Temperature float64
	System      string
	Prompt      string
	// Image is attached to the user message when set
	Image *models.Blob
	// JSON asks the provider to constrain output to a JSON object
	JSON bool
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// Transcriber is implemented by providers that offer speech-to-text
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audio models.Blob) (string, error)
}
