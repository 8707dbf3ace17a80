package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/revisit-app/decks-service/internal/domain"
	"github.com/revisit-app/decks-service/internal/service"
)

// DeckHandler handles deck and card HTTP requests.
type DeckHandler struct {
	decks *service.DeckService
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks *service.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

// HandleCreate creates a deck for the user in the userId header.
func (h *DeckHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "create deck", err)
		return
	}
	var req deckRequest
	if err := readJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create deck", err)
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, "create deck", err)
		return
	}

	w.Header().Set("Location", deckLocation(deck.ID))
	writeJSON(w, http.StatusCreated, toDeckDTO(deck))
}

// HandleGet returns a single deck.
func (h *DeckHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	deck, err := h.decks.GetDeck(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, "get deck", err)
		return
	}
	writeJSON(w, http.StatusOK, toDeckDTO(deck))
}

// HandleUpdate replaces title and description. Only the author may do this.
func (h *DeckHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "update deck", err)
		return
	}

	deckID := chi.URLParam(r, "id")

	// A non-author gets 403 whatever the body looks like.
	var req deckRequest
	if decodeErr := readJSON(w, r, &req); decodeErr != nil {
		if _, err := h.decks.AuthorizeDeck(r.Context(), deckID, userID); err != nil {
			writeServiceError(w, r, "update deck", err)
			return
		}
		writeServiceError(w, r, "update deck", decodeErr)
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), deckID, userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, "update deck", err)
		return
	}

	w.Header().Set("Location", deckLocation(deck.ID))
	writeJSON(w, http.StatusCreated, toDeckDTO(deck))
}

// HandleDelete deletes a deck. Only the author may do this.
func (h *DeckHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "delete deck", err)
		return
	}

	if err := h.decks.DeleteDeck(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, r, "delete deck", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCard adds the card in the cardId header. It answers 201 when the
// card was added and 204 when it was already present.
func (h *DeckHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "add card", err)
		return
	}

	deck, added, err := h.decks.AddCard(r.Context(), chi.URLParam(r, "id"), cardID)
	if err != nil {
		writeServiceError(w, r, "add card", err)
		return
	}
	if !added {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Location", deckLocation(deck.ID))
	writeJSON(w, http.StatusCreated, toDeckDTO(deck))
}

// HandleRemoveCard removes the card in the cardId header. Removing a card
// the deck does not hold is not an error.
func (h *DeckHandler) HandleRemoveCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromHeader(r)
	if err != nil {
		writeServiceError(w, r, "remove card", err)
		return
	}

	if _, _, err := h.decks.RemoveCard(r.Context(), chi.URLParam(r, "id"), cardID); err != nil {
		writeServiceError(w, r, "remove card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func cardIDFromHeader(r *http.Request) (string, error) {
	cardID := r.Header.Get("cardId")
	if cardID == "" {
		return "", fmt.Errorf("%w: cardId header is required", domain.ErrInvalidInput)
	}
	return cardID, nil
}

func deckLocation(id string) string {
	return "/" + id
}
