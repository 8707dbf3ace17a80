package domain

import "context"

// UserProfile is what the user directory returns for a user id.
type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserDirectory resolves user ids. ResolveUser returns ErrUserNotFound when
// the directory answers with a client error.
type UserDirectory interface {
	ResolveUser(ctx context.Context, userID int64) (*UserProfile, error)
}

// ProfileMutator links and unlinks deck ids on a user's profile. A call that
// completes with a non-2xx status returns *UpstreamStatusError; transport
// failures return any other error.
type ProfileMutator interface {
	RegisterDeck(ctx context.Context, userID int64, deckID string) error
	UnregisterDeck(ctx context.Context, userID int64, deckID string) error
}
