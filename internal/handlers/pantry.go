package handlers

import (
	"fmt"
	"net/http"

	"github.com/lehigh-university-libraries/recipebox/internal/models"
	"github.com/lehigh-university-libraries/recipebox/internal/reconcile"
)

// HandleListPantry lists the pantry by name; ?q= keeps names containing it
func (h *Handler) HandleListPantry(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListPantry(r.Context())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSON(w, models.SearchPantry(items, r.URL.Query().Get("q")))
}

type pantryRequest struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
}

func (h *Handler) HandleAddPantryItem(w http.ResponseWriter, r *http.Request) {
	var req pantryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	unit := ""
	if req.Unit != nil {
		unit = *req.Unit
	}
	item, err := models.NewPantryItem(req.Name, req.Quantity, unit, userID(r))
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	saved, err := h.store.InsertPantryItem(r.Context(), item)
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	h.writeJSONStatus(w, http.StatusCreated, saved)
}

// HandleDeletePantryItem removes an item from the shared pantry; any signed-in user may
func (h *Handler) HandleDeletePantryItem(w http.ResponseWriter, r *http.Request) {
	if userID(r) == "" {
		h.writeFailure(w, fmt.Errorf("%w: must be signed in to edit the pantry", models.ErrUnauthorized))
		return
	}
	if err := h.store.DeletePantryItem(r.Context(), r.PathValue("id")); err != nil {
		h.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type shoppingListRequest struct {
	RecipeIDs []string `json:"recipe_ids"`
}

type shoppingListResponse struct {
	Missing   []models.Ingredient `json:"missing"`
	Items     []string            `json:"items"`
	Checklist string              `json:"checklist"`
	Skipped   []string            `json:"skipped,omitempty"`
}

// HandleShoppingList diffs the selected recipes against the pantry
func (h *Handler) HandleShoppingList(w http.ResponseWriter, r *http.Request) {
	var req shoppingListRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	res, err := h.engine.Reconcile(r.Context(), req.RecipeIDs)
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	items := make([]string, 0, len(res.Missing))
	for _, ing := range res.Missing {
		items = append(items, reconcile.FormatItem(ing))
	}
	h.writeJSON(w, shoppingListResponse{
		Missing:   res.Missing,
		Items:     items,
		Checklist: reconcile.Checklist(res.Missing),
		Skipped:   res.Skipped,
	})
}
