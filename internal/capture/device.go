package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Stream is an open audio input
type Stream interface {
	io.ReadCloser
	ContentType() string
}

// Device opens audio input for a recording
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// FileDevice "records" by reading a clip that was captured elsewhere,
// such as a voice memo passed to the CLI
type FileDevice struct {
	Path string
}

func (d FileDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.Path == "" {
		return nil, fmt.Errorf("%w: no audio file given", ErrDeviceUnavailable)
	}
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	return &fileStream{File: f, contentType: audioContentType(d.Path)}, nil
}

type fileStream struct {
	*os.File
	contentType string
}

func (f *fileStream) ContentType() string {
	return f.contentType
}

func audioContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".webm":
		return "audio/webm"
	case ".m4a":
		return "audio/mp4"
	}
	if ct := mime.TypeByExtension(ext); strings.HasPrefix(ct, "audio/") {
		return ct
	}
	return "audio/webm"
}

// ClipDevice plays back audio that was recorded by a client and uploaded whole
type ClipDevice struct {
	Data        []byte
	ContentType string
}

func (d ClipDevice) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.Data) == 0 {
		return nil, fmt.Errorf("%w: empty audio upload", ErrDeviceUnavailable)
	}
	ct := d.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = "audio/webm"
	}
	return clipStream{Reader: bytes.NewReader(d.Data), contentType: ct}, nil
}

type clipStream struct {
	*bytes.Reader
	contentType string
}

func (clipStream) Close() error { return nil }

func (c clipStream) ContentType() string { return c.contentType }
