package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/revisit-app/decks-service/internal/domain"
	"github.com/revisit-app/decks-service/internal/repository/sqlite"
)

var errStoreDown = errors.New("store down")

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeDirectory knows a fixed set of users. Unknown ids resolve to
// ErrUserNotFound; err, when set, is returned for every call.
type fakeDirectory struct {
	users map[int64]domain.UserProfile
	err   error
}

func newFakeDirectory(ids ...int64) *fakeDirectory {
	d := &fakeDirectory{users: make(map[int64]domain.UserProfile)}
	for _, id := range ids {
		d.users[id] = domain.UserProfile{ID: id, Username: "user", FirstName: "Ada", LastName: "Lovelace"}
	}
	return d
}

func (d *fakeDirectory) ResolveUser(_ context.Context, userID int64) (*domain.UserProfile, error) {
	if d.err != nil {
		return nil, d.err
	}
	p, ok := d.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &p, nil
}

// fakeProfiles records which deck ids are linked to which users.
type fakeProfiles struct {
	mu            sync.Mutex
	decks         map[int64][]string
	registerErr   error
	unregisterErr error
	unregistered  int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{decks: make(map[int64][]string)}
}

func (p *fakeProfiles) RegisterDeck(_ context.Context, userID int64, deckID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registerErr != nil {
		return p.registerErr
	}
	p.decks[userID] = append(p.decks[userID], deckID)
	return nil
}

func (p *fakeProfiles) UnregisterDeck(_ context.Context, userID int64, deckID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unregistered++
	if p.unregisterErr != nil {
		return p.unregisterErr
	}
	ids := p.decks[userID]
	for i, id := range ids {
		if id == deckID {
			p.decks[userID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (p *fakeProfiles) linked(userID int64) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.decks[userID]...)
}

// countingDecks wraps a DeckRepository, counting writes and optionally
// failing them.
type countingDecks struct {
	domain.DeckRepository
	puts, deletes int
	putErr        error
}

func (c *countingDecks) Put(ctx context.Context, deck *domain.Deck) error {
	c.puts++
	if c.putErr != nil {
		return c.putErr
	}
	return c.DeckRepository.Put(ctx, deck)
}

func (c *countingDecks) Delete(ctx context.Context, id string) error {
	c.deletes++
	return c.DeckRepository.Delete(ctx, id)
}

// countingSaved wraps a SavedDecksRepository the same way. failFor limits
// putErr to a single user when non-zero.
type countingSaved struct {
	domain.SavedDecksRepository
	puts    int
	putErr  error
	failFor int64
}

func (c *countingSaved) Put(ctx context.Context, saved *domain.SavedDecks) error {
	c.puts++
	if c.putErr != nil && (c.failFor == 0 || c.failFor == saved.UserID) {
		return c.putErr
	}
	return c.SavedDecksRepository.Put(ctx, saved)
}
