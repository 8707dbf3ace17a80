package domain

import (
	"context"
	"slices"
)

// SavedDecks is the per-user inverse of Deck.SavedBy.
type SavedDecks struct {
	UserID  int64
	DeckIDs []string
}

// Add records deckID once.
func (s *SavedDecks) Add(deckID string) bool {
	if slices.Contains(s.DeckIDs, deckID) {
		return false
	}
	s.DeckIDs = append(s.DeckIDs, deckID)
	return true
}

// Remove drops deckID if present.
func (s *SavedDecks) Remove(deckID string) bool {
	i := slices.Index(s.DeckIDs, deckID)
	if i < 0 {
		return false
	}
	s.DeckIDs = slices.Delete(s.DeckIDs, i, i+1)
	return true
}

// SavedDecksRepository stores SavedDecks records keyed by user id.
type SavedDecksRepository interface {
	Get(ctx context.Context, userID int64) (*SavedDecks, error)
	Put(ctx context.Context, saved *SavedDecks) error
	Delete(ctx context.Context, userID int64) error
}
