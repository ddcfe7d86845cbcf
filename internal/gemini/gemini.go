package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/providers"
	"google.golang.org/api/option"
)

const transcriptionPrompt = `Transcribe this voice recording of someone describing a recipe.
Return only the spoken words as plain text, with no commentary or formatting.`

// Gemini is a provider for Google Gemini
type Gemini struct {
	apiKey string
	// model used for audio transcription
	audioModel string
}

// New returns a new Gemini provider
func New(apiKey, audioModel string) *Gemini {
	if audioModel == "" {
		audioModel = "gemini-1.5-flash"
	}
	return &Gemini{apiKey: apiKey, audioModel: audioModel}
}

// ExtractText extracts text from the given prompt using Gemini
func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	parts := []genai.Part{genai.Text(config.Prompt)}
	if !config.Image.Empty() {
		parts = append(parts, genai.Blob{MIMEType: config.Image.ContentType, Data: config.Image.Data})
	}

	return g.generate(ctx, config.Model, config.Temperature, config.System, config.JSON, parts...)
}

// TranscribeAudio asks Gemini to transcribe a recorded clip
func (g *Gemini) TranscribeAudio(ctx context.Context, audio models.Blob) (string, error) {
	mimeType := audio.ContentType
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return g.generate(ctx, g.audioModel, 0, "", false,
		genai.Text(transcriptionPrompt),
		genai.Blob{MIMEType: mimeType, Data: audio.Data},
	)
}

func (g *Gemini) generate(ctx context.Context, modelName string, temperature float64, system string, jsonOut bool, parts ...genai.Part) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(temperature))
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if jsonOut {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		slog.Info("Gemini completion received", "model", modelName, "length", len(txt))
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}
