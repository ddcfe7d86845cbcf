package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/recipebox/internal/capture"
	"github.com/lehigh-university-libraries/recipebox/internal/extraction"
	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/pipeline"
	"github.com/lehigh-university-libraries/recipebox/internal/reconcile"
	"github.com/lehigh-university-libraries/recipebox/internal/review"
	"github.com/lehigh-university-libraries/recipebox/internal/storage"
	"github.com/lehigh-university-libraries/recipebox/internal/transcribe"
)

// UserHeader names the acting user. Authentication happens in front of this service.
const UserHeader = "X-User-ID"

// Store is the persistence the HTTP API needs
type Store interface {
	InsertRecipe(ctx context.Context, r models.Recipe) (models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch, actorID string) (models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (models.Recipe, error)
	SearchRecipes(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error)
	ListPantry(ctx context.Context) ([]models.PantryItem, error)
	InsertPantryItem(ctx context.Context, item models.PantryItem) (models.PantryItem, error)
	DeletePantryItem(ctx context.Context, id string) error
}

// Limits bounds upload sizes
type Limits struct {
	MaxAudioBytes int64
	MaxImageBytes int64
}

type Handler struct {
	store    Store
	pipeline *pipeline.Pipeline
	reviewer *review.Reviewer
	engine   *reconcile.Engine
	limits   Limits
}

func New(store Store, p *pipeline.Pipeline, drafts *storage.DraftStore, limits Limits) *Handler {
	return &Handler{
		store:    store,
		pipeline: p,
		reviewer: review.New(store, drafts),
		engine:   reconcile.NewEngine(store, store),
		limits:   limits,
	}
}

// Register adds every route to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/magic-add", h.HandleMagicAdd)
	mux.HandleFunc("POST /api/drafts/{id}/accept", h.HandleAcceptDraft)
	mux.HandleFunc("DELETE /api/drafts/{id}", h.HandleDiscardDraft)
	mux.HandleFunc("GET /api/recipes", h.HandleListRecipes)
	mux.HandleFunc("GET /api/recipes/{id}", h.HandleGetRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", h.HandleUpdateRecipe)
	mux.HandleFunc("GET /api/pantry", h.HandleListPantry)
	mux.HandleFunc("POST /api/pantry", h.HandleAddPantryItem)
	mux.HandleFunc("DELETE /api/pantry/{id}", h.HandleDeletePantryItem)
	mux.HandleFunc("POST /api/shopping-list", h.HandleShoppingList)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// writeFailure maps the error taxonomy onto a status and a user-facing message.
// Extraction and validation failures of a draft read the same to the user.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var (
		code    int
		message string
	)
	switch {
	case errors.Is(err, extraction.ErrNoInputProvided):
		code, message = http.StatusBadRequest, "No input provided"
	case errors.Is(err, capture.ErrDeviceUnavailable):
		code, message = http.StatusBadRequest, "Audio could not be read, try again or type the recipe"
	case errors.Is(err, transcribe.ErrTranscriptionFailed):
		code, message = http.StatusBadGateway, "Could not transcribe audio, try again or type the recipe"
	case errors.Is(err, extraction.ErrExtractionFailed):
		code, message = http.StatusBadGateway, "Failed to process recipe, please resubmit"
	case errors.Is(err, models.ErrValidationFailed):
		code, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		code, message = http.StatusForbidden, "Not allowed"
	case errors.Is(err, models.ErrNotFound):
		code, message = http.StatusNotFound, "Not found"
	default:
		code, message = http.StatusInternalServerError, "Internal server error"
	}
	slog.Error("Request failed", "status", code, "err", err)
	http.Error(w, message, code)
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserHeader))
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, models.ErrValidationFailed) {
			h.writeFailure(w, err)
			return false
		}
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
