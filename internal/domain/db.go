package domain

import "context"

// Database defines lifecycle operations for a storage backend. SQLite and
// Redis both implement it, together with the Decks and SavedDecks
// repositories they hand out.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
