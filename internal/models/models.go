package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidationFailed marks a record that violates the recipe schema.
	ErrValidationFailed = errors.New("validation failed")
	// ErrUnauthorized marks a write by a user who does not own the record.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
)

// Blob is an opaque binary payload with its content type
type Blob struct {
	Data        []byte
	ContentType string
}

// Empty reports whether the blob carries no data
func (b *Blob) Empty() bool {
	return b == nil || len(b.Data) == 0
}

// CaptureInput is the raw material of one capture session.
// It is never persisted.
type CaptureInput struct {
	Text  string
	Audio *Blob
	Image *Blob
}

// Empty reports whether none of text, audio or image carry content
func (c CaptureInput) Empty() bool {
	return strings.TrimSpace(c.Text) == "" && c.Audio.Empty() && c.Image.Empty()
}

// NewBlob wraps data, sniffing the content type when none is given
func NewBlob(data []byte, contentType string) Blob {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return Blob{Data: data, ContentType: contentType}
}

// DecodeImage accepts either a data URL ("data:image/png;base64,...") or bare base64
func DecodeImage(encoded string) (Blob, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return Blob{}, fmt.Errorf("empty image payload")
	}

	contentType := ""
	if strings.HasPrefix(encoded, "data:") {
		header, payload, ok := strings.Cut(encoded, ",")
		if !ok {
			return Blob{}, fmt.Errorf("malformed data URL")
		}
		header = strings.TrimPrefix(header, "data:")
		if !strings.HasSuffix(header, ";base64") {
			return Blob{}, fmt.Errorf("data URL is not base64 encoded")
		}
		contentType = strings.TrimSuffix(header, ";base64")
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to decode image: %w", err)
	}

	return NewBlob(data, contentType), nil
}

// DataURL renders the blob as a base64 data URL
func (b Blob) DataURL() string {
	return "data:" + b.ContentType + ";base64," + base64.StdEncoding.EncodeToString(b.Data)
}
