// Package capture gathers typed text, dictated audio and a photo into one
// CaptureInput. A Session is an explicit state machine:
//
//	Idle ──StartRecording──▶ Recording ──StopRecording──▶ Captured
//	                            │
//	                            └──CancelRecording──▶ Cancelled
//
// Text and image input move Idle or Cancelled straight to Captured.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

var (
	// ErrDeviceUnavailable is returned when no audio input can be opened.
	// It is surfaced to the user and never retried automatically.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrSessionBusy is returned when a recording is already in progress.
	ErrSessionBusy = errors.New("capture session is already recording")
	// ErrInvalidTransition is returned for stop/cancel outside of Recording.
	ErrInvalidTransition = errors.New("invalid capture transition")
)

// State is the capture session state
type State int

const (
	Idle State = iota
	Recording
	Captured
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Captured:
		return "captured"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session holds one user's capture in progress
type Session struct {
	mu     sync.Mutex
	device Device
	state  State
	stream Stream
	text   string
	audio  *models.Blob
	image  *models.Blob
}

// NewSession returns an idle session recording from device.
// device may be nil when only text and images are captured.
func NewSession(device Device) *Session {
	return &Session{device: device, state: Idle}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetText replaces the typed text
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.settle()
}

// AttachImage sets the session's single image, replacing any earlier one
func (s *Session) AttachImage(image models.Blob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(image.Data) == 0 {
		s.image = nil
	} else {
		s.image = &image
	}
	s.settle()
}

// DetachImage removes the attached image
func (s *Session) DetachImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.image = nil
	s.settle()
}

// DiscardAudio removes a finished recording
func (s *Session) DiscardAudio() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Recording {
		return
	}
	s.audio = nil
	s.settle()
}

// StartRecording opens the audio device. A device failure leaves the session untouched.
func (s *Session) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Recording {
		return ErrSessionBusy
	}
	if s.device == nil {
		return fmt.Errorf("%w: no audio device configured", ErrDeviceUnavailable)
	}

	stream, err := s.device.Open(ctx)
	if err != nil {
		if !errors.Is(err, ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		slog.Warn("Unable to start recording", "err", err)
		return err
	}

	s.stream = stream
	s.state = Recording
	slog.Debug("Recording started", "content_type", stream.ContentType())
	return nil
}

// StopRecording finalizes the buffered audio into a single clip
func (s *Session) StopRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return fmt.Errorf("%w: stop from %s", ErrInvalidTransition, s.state)
	}

	stream := s.stream
	s.stream = nil

	var buf bytes.Buffer
	_, readErr := io.Copy(&buf, stream)
	closeErr := stream.Close()
	if readErr != nil || closeErr != nil {
		// A clip that failed mid-read is discarded whole.
		s.state = Idle
		s.settle()
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, errors.Join(readErr, closeErr))
	}

	if buf.Len() > 0 {
		s.audio = &models.Blob{Data: buf.Bytes(), ContentType: stream.ContentType()}
	}
	s.state = Captured
	s.settle()
	slog.Debug("Recording stopped", "bytes", buf.Len())
	return nil
}

// CancelRecording stops the device without reading it. The buffered audio is
// dropped and can never be submitted.
func (s *Session) CancelRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, s.state)
	}

	if err := s.stream.Close(); err != nil {
		slog.Warn("Closing cancelled recording failed", "err", err)
	}
	s.stream = nil
	s.state = Cancelled
	slog.Debug("Recording cancelled")
	return nil
}

// CanSubmit reports whether Submit would produce an input
func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != Recording && !s.input().Empty()
}

// Submit returns the captured input. It is a no-op (false) while recording or
// when nothing was captured. The session keeps its content so a failed
// extraction can be resubmitted.
func (s *Session) Submit() (models.CaptureInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Recording {
		return models.CaptureInput{}, false
	}
	in := s.input()
	if in.Empty() {
		return models.CaptureInput{}, false
	}
	return in, true
}

// Reset clears the session back to Idle, cancelling any recording
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
	s.text = ""
	s.audio = nil
	s.image = nil
	s.state = Idle
}

func (s *Session) input() models.CaptureInput {
	in := models.CaptureInput{Text: s.text}
	if s.audio != nil {
		a := *s.audio
		in.Audio = &a
	}
	if s.image != nil {
		img := *s.image
		in.Image = &img
	}
	return in
}

// settle moves between Idle/Cancelled and Captured to reflect held content.
// It never leaves Recording.
func (s *Session) settle() {
	if s.state == Recording {
		return
	}
	hasContent := strings.TrimSpace(s.text) != "" || s.audio != nil || s.image != nil
	switch {
	case hasContent:
		s.state = Captured
	case s.state == Captured:
		s.state = Idle
	}
}
