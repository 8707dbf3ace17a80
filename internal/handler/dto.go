package handler

import (
	"time"

	"github.com/revisit-app/decks-service/internal/domain"
)

// DeckDTO is the JSON representation of a deck. SavedBy is internal and
// not exposed.
type DeckDTO struct {
	ID          string        `json:"id"`
	Author      domain.Author `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"desc"`
	DateCreated string        `json:"dateCreated"`
	DateUpdated string        `json:"dateUpdated"`
	NumCards    int           `json:"numCards"`
	NumSaves    int           `json:"numSaves"`
	Cards       []string      `json:"cards"`
}

func toDeckDTO(d *domain.Deck) DeckDTO {
	cards := d.Cards
	if cards == nil {
		cards = []string{}
	}
	return DeckDTO{
		ID:          d.ID,
		Author:      d.Author,
		Title:       d.Title,
		Description: d.Description,
		DateCreated: d.DateCreated.Format(time.RFC3339),
		DateUpdated: d.DateUpdated.Format(time.RFC3339),
		NumCards:    d.NumCards,
		NumSaves:    d.NumSaves,
		Cards:       cards,
	}
}

// deckRequest is the body of create and update requests.
type deckRequest struct {
	Title       string `json:"title"`
	Description string `json:"desc"`
}
