package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/providers"
)

// OpenAI is a provider for OpenAI chat completions and Whisper transcription
type OpenAI struct {
	apiKey          string
	baseURL         string
	transcribeModel string
	client          *http.Client
}

// New returns a new OpenAI provider
func New(apiKey, baseURL, transcribeModel string) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if transcribeModel == "" {
		transcribeModel = "whisper-1"
	}
	return &OpenAI{
		apiKey:          apiKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		transcribeModel: transcribeModel,
		client:          &http.Client{},
	}
}

// ExtractText sends the prompt (and optional image) to the chat completions API
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	var userContent any = config.Prompt
	if !config.Image.Empty() {
		userContent = []map[string]any{
			{
				"type": "text",
				"text": config.Prompt,
			},
			{
				"type": "image_url",
				"image_url": map[string]string{
					"url": config.Image.DataURL(),
				},
			},
		}
	}

	messages := make([]map[string]any, 0, 2)
	if config.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": config.System})
	}
	messages = append(messages, map[string]any{"role": "user", "content": userContent})

	body := map[string]any{
		"model":       config.Model,
		"messages":    messages,
		"temperature": config.Temperature,
	}
	if config.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/chat/completions", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	content := response.Choices[0].Message.Content
	slog.Info("OpenAI completion received", "model", config.Model, "length", len(content), "image", !config.Image.Empty())
	return content, nil
}

// TranscribeAudio sends a recorded clip to the Whisper transcription endpoint
func (o *OpenAI) TranscribeAudio(ctx context.Context, audio models.Blob) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("model", o.transcribeModel); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	part, err := form.CreateFormFile("file", "dictation"+audioExtension(audio.ContentType))
	if err != nil {
		return "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	slog.Info("Whisper transcription received", "model", o.transcribeModel, "audio_bytes", len(audio.Data), "length", len(response.Text))
	return response.Text, nil
}

// audioExtension picks a filename extension Whisper uses to detect the encoding
func audioExtension(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".webm"
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/mp4", "audio/x-m4a", "audio/m4a":
		return ".m4a"
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	default:
		return ".webm"
	}
}
