package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/revisit-app/decks-service/internal/domain"
)

type savedDecksRepo struct {
	db *sql.DB
}

func (r *savedDecksRepo) Get(ctx context.Context, userID int64) (*domain.SavedDecks, error) {
	s := &domain.SavedDecks{}
	var deckIDs string
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, deck_ids FROM saved_decks WHERE user_id = ?", userID,
	).Scan(&s.UserID, &deckIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get saved decks: %w", err)
	}
	if err := json.Unmarshal([]byte(deckIDs), &s.DeckIDs); err != nil {
		return nil, fmt.Errorf("decode saved decks of user %d: %w", userID, err)
	}
	return s, nil
}

func (r *savedDecksRepo) Put(ctx context.Context, saved *domain.SavedDecks) error {
	deckIDs, err := encodeList(saved.DeckIDs)
	if err != nil {
		return fmt.Errorf("encode deck ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO saved_decks (user_id, deck_ids) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET deck_ids = excluded.deck_ids`,
		saved.UserID, deckIDs,
	)
	if err != nil {
		return fmt.Errorf("put saved decks: %w", err)
	}
	return nil
}

func (r *savedDecksRepo) Delete(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM saved_decks WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("delete saved decks: %w", err)
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
