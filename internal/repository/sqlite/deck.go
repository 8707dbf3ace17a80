package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/revisit-app/decks-service/internal/domain"
)

// deckRepo implements domain.DeckRepository using SQLite. List fields are
// stored as JSON arrays next to their denormalized counters.
type deckRepo struct {
	db *sql.DB
}

func (r *deckRepo) Get(ctx context.Context, id string) (*domain.Deck, error) {
	d := &domain.Deck{}
	var cards, savedBy string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, author_username, author_first_name, author_last_name,
		        title, description, date_created, date_updated, num_cards, cards, num_saves, saved_by
		 FROM decks WHERE id = ?`, id,
	).Scan(&d.ID, &d.Author.ID, &d.Author.Username, &d.Author.FirstName, &d.Author.LastName,
		&d.Title, &d.Description, &d.DateCreated, &d.DateUpdated, &d.NumCards, &cards, &d.NumSaves, &savedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get deck: %w", err)
	}

	if err := json.Unmarshal([]byte(cards), &d.Cards); err != nil {
		return nil, fmt.Errorf("decode cards of deck %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(savedBy), &d.SavedBy); err != nil {
		return nil, fmt.Errorf("decode saved_by of deck %s: %w", id, err)
	}
	return d, nil
}

func (r *deckRepo) Put(ctx context.Context, deck *domain.Deck) error {
	cards, err := encodeList(deck.Cards)
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}
	savedBy, err := encodeList(deck.SavedBy)
	if err != nil {
		return fmt.Errorf("encode saved_by: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO decks (id, author_id, author_username, author_first_name, author_last_name,
		                    title, description, date_created, date_updated, num_cards, cards, num_saves, saved_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   date_updated = excluded.date_updated,
		   num_cards = excluded.num_cards,
		   cards = excluded.cards,
		   num_saves = excluded.num_saves,
		   saved_by = excluded.saved_by`,
		deck.ID, deck.Author.ID, deck.Author.Username, deck.Author.FirstName, deck.Author.LastName,
		deck.Title, deck.Description, deck.DateCreated.UTC(), deck.DateUpdated.UTC(),
		deck.NumCards, cards, deck.NumSaves, savedBy,
	)
	if err != nil {
		return fmt.Errorf("put deck: %w", err)
	}
	return nil
}

func (r *deckRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM decks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// encodeList stores nil slices as "[]" so reads always decode to a list.
func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
