package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
)

type acceptRequest struct {
	Draft    *models.Draft `json:"draft,omitempty"`
	ImageURL string        `json:"image_url,omitempty"`
}

// HandleAcceptDraft saves a held draft, optionally with the user's edits
func (h *Handler) HandleAcceptDraft(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, models.ErrValidationFailed) {
			h.writeFailure(w, err)
			return
		}
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	recipe, err := h.reviewer.AcceptPending(r.Context(), userID(r), r.PathValue("id"), req.Draft, req.ImageURL)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSONStatus(w, http.StatusCreated, recipe)
}

func (h *Handler) HandleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.reviewer.Discard(userID(r), r.PathValue("id")); err != nil {
		h.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListRecipes lists recipes newest first, narrowed by ?q= (title or
// tag substring), ?tag= (exact tag) and ?created_by=
func (h *Handler) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := models.NewRecipeFilter(q.Get("q"), q.Get("tag"), q.Get("created_by"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	recipes, err := h.store.SearchRecipes(r.Context(), filter)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, recipes)
}

func (h *Handler) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.store.GetRecipe(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, recipe)
}

// HandleUpdateRecipe applies a patch; only the creator may edit
func (h *Handler) HandleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var patch models.RecipePatch
	if !h.decodeJSON(w, r, &patch) {
		return
	}

	recipe, err := h.store.UpdateRecipe(r.Context(), r.PathValue("id"), patch, userID(r))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, recipe)
}
