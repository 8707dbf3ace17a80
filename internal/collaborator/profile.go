package collaborator

import (
	"context"
	"net/http"
	"strconv"

	"github.com/revisit-app/decks-service/internal/domain"
)

// ProfileClient implements domain.ProfileMutator against the user profile
// service: PUT and DELETE {base}/{userId}/decks with a deckId header.
type ProfileClient struct {
	base
}

func NewProfileClient(httpClient *http.Client, baseURL string, signer *TokenSigner) *ProfileClient {
	return &ProfileClient{base: newBase(httpClient, baseURL, "user-profile", signer)}
}

func (c *ProfileClient) RegisterDeck(ctx context.Context, userID int64, deckID string) error {
	return c.send(ctx, http.MethodPut, userID, deckID)
}

func (c *ProfileClient) UnregisterDeck(ctx context.Context, userID int64, deckID string) error {
	return c.send(ctx, http.MethodDelete, userID, deckID)
}

func (c *ProfileClient) send(ctx context.Context, method string, userID int64, deckID string) error {
	header := http.Header{}
	header.Set("deckId", deckID)

	resp, err := c.do(ctx, method, "/"+strconv.FormatInt(userID, 10)+"/decks", header)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

var (
	_ domain.UserDirectory  = (*DirectoryClient)(nil)
	_ domain.ProfileMutator = (*ProfileClient)(nil)
)
