package domain

import (
	"context"
	"slices"
	"time"
)

// Author is a snapshot of the deck creator taken at creation time.
// Later profile changes are not reflected here.
type Author struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Deck is an owned, ordered collection of card ids. NumCards and NumSaves
// are denormalized copies of len(Cards) and len(SavedBy).
type Deck struct {
	ID          string
	Author      Author
	Title       string
	Description string
	DateCreated time.Time
	DateUpdated time.Time
	NumCards    int
	Cards       []string
	NumSaves    int
	SavedBy     []int64
}

// IsAuthor reports whether userID created the deck.
func (d *Deck) IsAuthor(userID int64) bool {
	return d.Author.ID == userID
}

// HasCard reports whether cardID is in the deck.
func (d *Deck) HasCard(cardID string) bool {
	return slices.Contains(d.Cards, cardID)
}

// AddCard appends cardID unless it is already present.
func (d *Deck) AddCard(cardID string) bool {
	if d.HasCard(cardID) {
		return false
	}
	d.Cards = append(d.Cards, cardID)
	d.NumCards = len(d.Cards)
	return true
}

// RemoveCard drops cardID if present. NumCards is re-derived from Cards so
// it cannot drift below zero.
func (d *Deck) RemoveCard(cardID string) bool {
	i := slices.Index(d.Cards, cardID)
	if i < 0 {
		return false
	}
	d.Cards = slices.Delete(d.Cards, i, i+1)
	d.NumCards = len(d.Cards)
	return true
}

// IsSavedBy reports whether userID is recorded in SavedBy.
func (d *Deck) IsSavedBy(userID int64) bool {
	return slices.Contains(d.SavedBy, userID)
}

// AddSave records userID in SavedBy. The author is never recorded.
func (d *Deck) AddSave(userID int64) bool {
	if d.IsAuthor(userID) || d.IsSavedBy(userID) {
		return false
	}
	d.SavedBy = append(d.SavedBy, userID)
	d.NumSaves = len(d.SavedBy)
	return true
}

// RemoveSave drops userID from SavedBy if present.
func (d *Deck) RemoveSave(userID int64) bool {
	i := slices.Index(d.SavedBy, userID)
	if i < 0 {
		return false
	}
	d.SavedBy = slices.Delete(d.SavedBy, i, i+1)
	d.NumSaves = len(d.SavedBy)
	return true
}

// DeckRepository stores decks keyed by id. Put is a single-key upsert;
// no multi-key transaction is offered.
type DeckRepository interface {
	Get(ctx context.Context, id string) (*Deck, error)
	Put(ctx context.Context, deck *Deck) error
	Delete(ctx context.Context, id string) error
}
