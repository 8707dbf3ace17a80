package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/revisit-app/decks-service/internal/service"
)

// SavedHandler handles the saved-decks HTTP requests.
type SavedHandler struct {
	saves *service.SaveService
}

func NewSavedHandler(saves *service.SaveService) *SavedHandler {
	return &SavedHandler{saves: saves}
}

// HandleSave answers 200 when the save was recorded and 204 when nothing
// changed (already saved, or the caller is the author).
func (h *SavedHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "save deck", err)
		return
	}

	outcome, err := h.saves.SaveDeck(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, r, "save deck", err)
		return
	}
	if outcome != service.SaveOutcomeSaved {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SavedHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "unsave deck", err)
		return
	}

	if err := h.saves.UnsaveDeck(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, r, "unsave deck", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleList returns the ids of the decks the caller saved.
func (h *SavedHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "list saved decks", err)
		return
	}

	ids, err := h.saves.ListSavedDecks(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "list saved decks", err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
