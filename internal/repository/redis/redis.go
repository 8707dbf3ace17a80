// Package redis stores decks and saved-deck lists as JSON documents in Redis,
// one key per record.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/revisit-app/decks-service/internal/domain"
)

const (
	deckKeyPrefix  = "deck:"
	savedKeyPrefix = "saved_decks:"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// DB wraps a go-redis client and hands out the repositories built on it.
type DB struct {
	client *goredis.Client
}

// New connects to Redis and verifies the connection with a PING.
func New(ctx context.Context, opts Options) (*DB, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &DB{client: client}, nil
}

// Migrate is a connectivity check; Redis needs no schema.
func (d *DB) Migrate(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

func (d *DB) Close() error {
	return d.client.Close()
}

func (d *DB) Decks() domain.DeckRepository {
	return &deckRepo{client: d.client}
}

func (d *DB) SavedDecks() domain.SavedDecksRepository {
	return &savedDecksRepo{client: d.client}
}

type deckDocument struct {
	ID          string        `json:"id"`
	Author      domain.Author `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DateCreated time.Time     `json:"dateCreated"`
	DateUpdated time.Time     `json:"dateUpdated"`
	NumCards    int           `json:"numCards"`
	Cards       []string      `json:"cards"`
	NumSaves    int           `json:"numSaves"`
	SavedBy     []int64       `json:"savedBy"`
}

type deckRepo struct {
	client *goredis.Client
}

func (r *deckRepo) Get(ctx context.Context, id string) (*domain.Deck, error) {
	var doc deckDocument
	if err := getJSON(ctx, r.client, deckKeyPrefix+id, &doc); err != nil {
		return nil, fmt.Errorf("get deck %s: %w", id, err)
	}
	return &domain.Deck{
		ID:          doc.ID,
		Author:      doc.Author,
		Title:       doc.Title,
		Description: doc.Description,
		DateCreated: doc.DateCreated,
		DateUpdated: doc.DateUpdated,
		NumCards:    doc.NumCards,
		Cards:       nonNil(doc.Cards),
		NumSaves:    doc.NumSaves,
		SavedBy:     nonNil(doc.SavedBy),
	}, nil
}

func (r *deckRepo) Put(ctx context.Context, deck *domain.Deck) error {
	doc := deckDocument{
		ID:          deck.ID,
		Author:      deck.Author,
		Title:       deck.Title,
		Description: deck.Description,
		DateCreated: deck.DateCreated.UTC(),
		DateUpdated: deck.DateUpdated.UTC(),
		NumCards:    deck.NumCards,
		Cards:       nonNil(deck.Cards),
		NumSaves:    deck.NumSaves,
		SavedBy:     nonNil(deck.SavedBy),
	}
	if err := setJSON(ctx, r.client, deckKeyPrefix+deck.ID, doc); err != nil {
		return fmt.Errorf("put deck %s: %w", deck.ID, err)
	}
	return nil
}

func (r *deckRepo) Delete(ctx context.Context, id string) error {
	if err := del(ctx, r.client, deckKeyPrefix+id); err != nil {
		return fmt.Errorf("delete deck %s: %w", id, err)
	}
	return nil
}

type savedDocument struct {
	UserID  int64    `json:"id"`
	DeckIDs []string `json:"savedDecks"`
}

type savedDecksRepo struct {
	client *goredis.Client
}

func savedKey(userID int64) string {
	return savedKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *savedDecksRepo) Get(ctx context.Context, userID int64) (*domain.SavedDecks, error) {
	var doc savedDocument
	if err := getJSON(ctx, r.client, savedKey(userID), &doc); err != nil {
		return nil, fmt.Errorf("get saved decks of user %d: %w", userID, err)
	}
	return &domain.SavedDecks{UserID: doc.UserID, DeckIDs: nonNil(doc.DeckIDs)}, nil
}

func (r *savedDecksRepo) Put(ctx context.Context, saved *domain.SavedDecks) error {
	doc := savedDocument{UserID: saved.UserID, DeckIDs: nonNil(saved.DeckIDs)}
	if err := setJSON(ctx, r.client, savedKey(saved.UserID), doc); err != nil {
		return fmt.Errorf("put saved decks of user %d: %w", saved.UserID, err)
	}
	return nil
}

func (r *savedDecksRepo) Delete(ctx context.Context, userID int64) error {
	if err := del(ctx, r.client, savedKey(userID)); err != nil {
		return fmt.Errorf("delete saved decks of user %d: %w", userID, err)
	}
	return nil
}

func getJSON(ctx context.Context, client *goredis.Client, key string, dst any) error {
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(ctx context.Context, client *goredis.Client, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return client.Set(ctx, key, raw, 0).Err()
}

func del(ctx context.Context, client *goredis.Client, key string) error {
	n, err := client.Del(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
