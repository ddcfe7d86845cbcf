// Package pipeline runs one capture through transcription and extraction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/transcribe"
)

// DictationPrefix separates typed text from the transcript of dictated audio
const DictationPrefix = "\n[Voice Dictation]: "

type Pipeline struct {
	transcriber transcribe.Transcriber
	extractor   extraction.Extractor
}

func New(transcriber transcribe.Transcriber, extractor extraction.Extractor) *Pipeline {
	return &Pipeline{transcriber: transcriber, extractor: extractor}
}

// Run turns a submitted capture into a draft. Each stage is attempted once;
// a failure leaves the caller free to resubmit.
func (p *Pipeline) Run(ctx context.Context, in models.CaptureInput) (models.Draft, error) {
	if in.Empty() {
		return models.Draft{}, extraction.ErrNoInputProvided
	}

	start := time.Now()
	text := in.Text

	if !in.Audio.Empty() {
		transcript, err := p.transcriber.Transcribe(ctx, *in.Audio)
		if err != nil {
			slog.Warn("Transcription failed", "audio_bytes", len(in.Audio.Data), "err", err)
			return models.Draft{}, err
		}
		text = text + DictationPrefix + transcript
		slog.Info("Transcribed dictation", "audio_bytes", len(in.Audio.Data), "transcript_length", len(transcript))
	}

	req := extraction.Request{Text: strings.TrimSpace(text), Image: in.Image}
	draft, err := p.extractor.Extract(ctx, req)
	if err != nil {
		return models.Draft{}, fmt.Errorf("failed to extract recipe: %w", err)
	}

	slog.Info("Capture processed",
		"title", draft.Title,
		"text_length", len(req.Text),
		"image", !req.Image.Empty(),
		"elapsed", time.Since(start))
	return draft, nil
}
