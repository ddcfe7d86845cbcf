package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/capture"
	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

// multipartOverhead leaves room for the text field and part headers
const multipartOverhead = 1 << 20

// HandleMagicAdd accepts multipart "text", "audio" (file) and "image" (file or
// data URL), runs the capture pipeline and holds the resulting draft for review.
func (h *Handler) HandleMagicAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.MaxAudioBytes+h.limits.MaxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Upload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.writeError(w, "Failed to read form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var device capture.Device
	if file, header, err := r.FormFile("audio"); err == nil {
		data, err := h.readPart(file, h.limits.MaxAudioBytes)
		if err != nil {
			h.writeError(w, "Audio "+err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		if len(data) > 0 {
			device = capture.ClipDevice{Data: data, ContentType: header.Header.Get("Content-Type")}
		}
	}

	image, err := h.formImage(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	session := capture.NewSession(device)
	session.SetText(r.FormValue("text"))
	if image != nil {
		session.AttachImage(*image)
	}
	if device != nil {
		// Uploaded clips finalize through the same record/stop path as live audio.
		if err := session.StartRecording(r.Context()); err != nil {
			h.writeFailure(w, err)
			return
		}
		if err := session.StopRecording(); err != nil {
			h.writeFailure(w, err)
			return
		}
	}

	in, ok := session.Submit()
	if !ok {
		h.writeFailure(w, extraction.ErrNoInputProvided)
		return
	}

	draft, err := h.pipeline.Run(r.Context(), in)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	pending := h.reviewer.Hold(draft, in.Image, userID(r))
	h.writeJSON(w, pending)
}

func (h *Handler) formImage(r *http.Request) (*models.Blob, error) {
	if file, header, err := r.FormFile("image"); err == nil {
		data, err := h.readPart(file, h.limits.MaxImageBytes)
		if err != nil {
			return nil, fmt.Errorf("image %w", err)
		}
		if len(data) == 0 {
			return nil, nil
		}
		blob := models.NewBlob(data, header.Header.Get("Content-Type"))
		return &blob, nil
	}

	encoded := strings.TrimSpace(r.FormValue("image"))
	if encoded == "" {
		return nil, nil
	}
	blob, err := models.DecodeImage(encoded)
	if err != nil {
		return nil, err
	}
	if int64(len(blob.Data)) > h.limits.MaxImageBytes {
		return nil, fmt.Errorf("image too large (max %d bytes)", h.limits.MaxImageBytes)
	}
	return &blob, nil
}

func (h *Handler) readPart(file multipart.File, limit int64) ([]byte, error) {
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("could not be read: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("too large (max %d bytes)", limit)
	}
	return data, nil
}
