package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/revisit-app/decks-service/internal/domain"
)

// SaveOutcome tells the caller whether SaveDeck changed anything.
type SaveOutcome int

const (
	SaveOutcomeSaved SaveOutcome = iota
	SaveOutcomeAlreadySaved
	// SaveOutcomeAuthor means the caller wrote the deck. Authors count as
	// having saved their own decks and are never added to SavedBy.
	SaveOutcomeAuthor
)

func (o SaveOutcome) String() string {
	switch o {
	case SaveOutcomeSaved:
		return "saved"
	case SaveOutcomeAlreadySaved:
		return "already_saved"
	case SaveOutcomeAuthor:
		return "author"
	default:
		return fmt.Sprintf("SaveOutcome(%d)", int(o))
	}
}

// SaveService keeps Deck.SavedBy and the per-user SavedDecks lists in step.
// There is no transaction across the two stores: the deck is always written
// first, then the user's list. When the second write fails the error wraps
// domain.ErrPartialWrite.
type SaveService struct {
	decks domain.DeckRepository
	saved domain.SavedDecksRepository
	now   func() time.Time
}

// NewSaveService creates a new SaveService.
func NewSaveService(decks domain.DeckRepository, saved domain.SavedDecksRepository) *SaveService {
	return &SaveService{
		decks: decks,
		saved: saved,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SaveDeck records that userID saved deckID on both sides.
func (s *SaveService) SaveDeck(ctx context.Context, deckID string, userID int64) (SaveOutcome, error) {
	if userID <= 0 {
		return 0, fmt.Errorf("%w: user id must be a positive integer", domain.ErrInvalidInput)
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return 0, err
	}
	if deck.IsAuthor(userID) {
		slog.InfoContext(ctx, "author saving own deck, nothing to do", "deck_id", deckID, "user_id", userID)
		return SaveOutcomeAuthor, nil
	}
	if !deck.AddSave(userID) {
		slog.InfoContext(ctx, "deck already saved", "deck_id", deckID, "user_id", userID)
		return SaveOutcomeAlreadySaved, nil
	}

	deck.DateUpdated = s.now()
	if err := s.decks.Put(ctx, deck); err != nil {
		return 0, fmt.Errorf("save deck: %w", err)
	}

	saved, err := s.savedOrEmpty(ctx, userID)
	if err == nil {
		saved.Add(deckID)
		err = s.saved.Put(ctx, saved)
	}
	if err != nil {
		return 0, s.partialWrite(ctx, "save", deckID, userID, err)
	}

	slog.InfoContext(ctx, "deck saved", "deck_id", deckID, "user_id", userID)
	return SaveOutcomeSaved, nil
}

// UnsaveDeck removes the save relationship from both sides. It fails with
// domain.ErrInvalidInput, before any write, when the deck does not list
// userID as a saver.
func (s *SaveService) UnsaveDeck(ctx context.Context, deckID string, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: user id must be a positive integer", domain.ErrInvalidInput)
	}

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return err
	}
	if !deck.RemoveSave(userID) {
		slog.WarnContext(ctx, "deck is not saved by user", "deck_id", deckID, "user_id", userID)
		return fmt.Errorf("%w: deck %s is not saved by user %d", domain.ErrInvalidInput, deckID, userID)
	}

	deck.DateUpdated = s.now()
	if err := s.decks.Put(ctx, deck); err != nil {
		return fmt.Errorf("unsave deck: %w", err)
	}

	saved, err := s.savedOrEmpty(ctx, userID)
	if err == nil {
		saved.Remove(deckID)
		err = s.saved.Put(ctx, saved)
	}
	if err != nil {
		return s.partialWrite(ctx, "unsave", deckID, userID, err)
	}

	slog.InfoContext(ctx, "deck unsaved", "deck_id", deckID, "user_id", userID)
	return nil
}

// ListSavedDecks returns the deck ids userID saved. A user who never saved a
// deck gets an empty list.
func (s *SaveService) ListSavedDecks(ctx context.Context, userID int64) ([]string, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be a positive integer", domain.ErrInvalidInput)
	}

	saved, err := s.savedOrEmpty(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved decks: %w", err)
	}
	return saved.DeckIDs, nil
}

func (s *SaveService) savedOrEmpty(ctx context.Context, userID int64) (*domain.SavedDecks, error) {
	saved, err := s.saved.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.SavedDecks{UserID: userID, DeckIDs: []string{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if saved.DeckIDs == nil {
		saved.DeckIDs = []string{}
	}
	return saved, nil
}

func (s *SaveService) partialWrite(ctx context.Context, op, deckID string, userID int64, err error) error {
	slog.ErrorContext(ctx, "deck updated but saved list was not",
		"op", op, "deck_id", deckID, "user_id", userID, "error", err)
	return fmt.Errorf("%w: %w: %s: deck %s updated but saved decks of user %d were not: %w",
		domain.ErrUpstreamUnavailable, domain.ErrPartialWrite, op, deckID, userID, err)
}
