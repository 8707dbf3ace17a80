package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/revisit-app/decks-service/internal/domain"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000

	// DefaultUpstreamTimeout bounds each collaborator call when no timeout
	// is configured.
	DefaultUpstreamTimeout = 5 * time.Second
)

// DeckService handles the deck lifecycle and card membership. Only the
// author may update or delete a deck.
type DeckService struct {
	decks     domain.DeckRepository
	saved     domain.SavedDecksRepository
	directory domain.UserDirectory
	profiles  domain.ProfileMutator
	timeout   time.Duration
	now       func() time.Time
}

// NewDeckService creates a new DeckService. A non-positive timeout falls
// back to DefaultUpstreamTimeout.
func NewDeckService(decks domain.DeckRepository, saved domain.SavedDecksRepository, directory domain.UserDirectory, profiles domain.ProfileMutator, timeout time.Duration) *DeckService {
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}
	return &DeckService{
		decks:     decks,
		saved:     saved,
		directory: directory,
		profiles:  profiles,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateDeck verifies the user, links the new deck id to the user's profile
// and only then persists the deck, so a failed registration never leaves an
// orphaned deck behind.
func (s *DeckService) CreateDeck(ctx context.Context, userID int64, title, description string) (*domain.Deck, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be a positive integer", domain.ErrInvalidInput)
	}
	if err := validateDeckFields(title, description); err != nil {
		return nil, err
	}

	profile, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deck := &domain.Deck{
		ID: uuid.NewString(),
		Author: domain.Author{
			ID:        userID,
			Username:  profile.Username,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
		},
		Title:       title,
		Description: description,
		DateCreated: now,
		DateUpdated: now,
		Cards:       []string{},
		SavedBy:     []int64{},
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.profiles.RegisterDeck(callCtx, userID, deck.ID)
	cancel()
	if err != nil {
		slog.ErrorContext(ctx, "register deck on profile", "deck_id", deck.ID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: register deck %s on profile of user %d: %w", domain.ErrUpstreamUnavailable, deck.ID, userID, err)
	}

	if err := s.decks.Put(ctx, deck); err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}
	slog.InfoContext(ctx, "deck created", "deck_id", deck.ID, "user_id", userID)
	return deck, nil
}

func (s *DeckService) resolveUser(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.directory.ResolveUser(callCtx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		slog.ErrorContext(ctx, "resolve user", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: resolve user %d: %w", domain.ErrUpstreamUnavailable, userID, err)
	}
	return profile, nil
}

// GetDeck returns a deck by id.
func (s *DeckService) GetDeck(ctx context.Context, deckID string) (*domain.Deck, error) {
	return s.decks.Get(ctx, deckID)
}

// UpdateDeck overwrites title and description. The author check runs before
// field validation so a non-author always gets ErrForbidden.
func (s *DeckService) UpdateDeck(ctx context.Context, deckID string, userID int64, title, description string) (*domain.Deck, error) {
	deck, err := s.authorizedDeck(ctx, deckID, userID)
	if err != nil {
		return nil, err
	}
	if err := validateDeckFields(title, description); err != nil {
		return nil, err
	}

	deck.Title = title
	deck.Description = description
	deck.DateUpdated = s.now()

	if err := s.decks.Put(ctx, deck); err != nil {
		return nil, fmt.Errorf("update deck: %w", err)
	}
	slog.InfoContext(ctx, "deck updated", "deck_id", deckID, "user_id", userID)
	return deck, nil
}

// DeleteDeck unlinks the deck from the author's profile, deletes it and then
// removes it from the saved lists of every user who saved it.
//
// A profile call that completes with a non-2xx status does not block the
// delete. A transport failure does, and the deck is kept.
func (s *DeckService) DeleteDeck(ctx context.Context, deckID string, userID int64) error {
	deck, err := s.authorizedDeck(ctx, deckID, userID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.profiles.UnregisterDeck(callCtx, userID, deckID)
	cancel()
	if err != nil {
		var statusErr *domain.UpstreamStatusError
		if !errors.As(err, &statusErr) {
			slog.ErrorContext(ctx, "unregister deck from profile", "deck_id", deckID, "user_id", userID, "error", err)
			return fmt.Errorf("%w: unregister deck %s from profile of user %d: %w", domain.ErrUpstreamUnavailable, deckID, userID, err)
		}
		slog.WarnContext(ctx, "profile rejected deck removal, deleting anyway",
			"deck_id", deckID, "user_id", userID, "status", statusErr.StatusCode)
	}

	if err := s.decks.Delete(ctx, deckID); err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	slog.InfoContext(ctx, "deck deleted", "deck_id", deckID, "user_id", userID)

	return s.cascadeUnsave(ctx, deck)
}

// cascadeUnsave drops a deleted deck from each saver's SavedDecks record.
// Every saver is attempted; failures are joined and reported as a partial
// write because the deck itself is already gone.
func (s *DeckService) cascadeUnsave(ctx context.Context, deck *domain.Deck) error {
	var errs []error
	for _, saverID := range deck.SavedBy {
		saved, err := s.saved.Get(ctx, saverID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("user %d: %w", saverID, err))
			continue
		}
		if !saved.Remove(deck.ID) {
			continue
		}
		if err := s.saved.Put(ctx, saved); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", saverID, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	slog.ErrorContext(ctx, "deck deleted but saved lists not cleaned up",
		"deck_id", deck.ID, "failed", len(errs), "error", err)
	return fmt.Errorf("%w: %w: deck %s deleted, saved lists of %d user(s) still reference it: %w",
		domain.ErrUpstreamUnavailable, domain.ErrPartialWrite, deck.ID, len(errs), err)
}

// AddCard appends cardID to the deck. added is false when the card was
// already present, in which case nothing is written.
func (s *DeckService) AddCard(ctx context.Context, deckID, cardID string) (deck *domain.Deck, added bool, err error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, false, fmt.Errorf("%w: card id is required", domain.ErrInvalidInput)
	}

	deck, err = s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, false, err
	}
	if !deck.AddCard(cardID) {
		slog.InfoContext(ctx, "card already in deck", "deck_id", deckID, "card_id", cardID)
		return deck, false, nil
	}

	deck.DateUpdated = s.now()
	if err := s.decks.Put(ctx, deck); err != nil {
		return nil, false, fmt.Errorf("add card: %w", err)
	}
	slog.InfoContext(ctx, "card added", "deck_id", deckID, "card_id", cardID)
	return deck, true, nil
}

// RemoveCard drops cardID from the deck. removed is false when the deck did
// not contain it.
func (s *DeckService) RemoveCard(ctx context.Context, deckID, cardID string) (deck *domain.Deck, removed bool, err error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, false, fmt.Errorf("%w: card id is required", domain.ErrInvalidInput)
	}

	deck, err = s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, false, err
	}
	if !deck.RemoveCard(cardID) {
		slog.InfoContext(ctx, "card not in deck", "deck_id", deckID, "card_id", cardID)
		return deck, false, nil
	}

	deck.DateUpdated = s.now()
	if err := s.decks.Put(ctx, deck); err != nil {
		return nil, false, fmt.Errorf("remove card: %w", err)
	}
	slog.InfoContext(ctx, "card removed", "deck_id", deckID, "card_id", cardID)
	return deck, true, nil
}

// AuthorizeDeck loads the deck and checks that userID wrote it. Callers
// use it to reject non-authors before looking at the request payload.
func (s *DeckService) AuthorizeDeck(ctx context.Context, deckID string, userID int64) (*domain.Deck, error) {
	return s.authorizedDeck(ctx, deckID, userID)
}

func (s *DeckService) authorizedDeck(ctx context.Context, deckID string, userID int64) (*domain.Deck, error) {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if !deck.IsAuthor(userID) {
		slog.WarnContext(ctx, "user is not the deck author", "deck_id", deckID, "user_id", userID)
		return nil, domain.ErrForbidden
	}
	return deck, nil
}

func validateDeckFields(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be %d characters or fewer", domain.ErrInvalidInput, maxTitleLength)
	}
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be %d characters or fewer", domain.ErrInvalidInput, maxDescriptionLength)
	}
	return nil
}
