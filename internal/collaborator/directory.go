package collaborator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/revisit-app/decks-service/internal/domain"
)

// DirectoryClient implements domain.UserDirectory against the user
// registration service: GET {base}/{userId}.
type DirectoryClient struct {
	base
}

func NewDirectoryClient(httpClient *http.Client, baseURL string, signer *TokenSigner) *DirectoryClient {
	return &DirectoryClient{base: newBase(httpClient, baseURL, "user-directory", signer)}
}

func (c *DirectoryClient) ResolveUser(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	resp, err := c.do(ctx, http.MethodGet, "/"+strconv.FormatInt(userID, 10), nil)
	if err != nil {
		var statusErr *domain.UpstreamStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			return nil, fmt.Errorf("%w: %d", domain.ErrUserNotFound, userID)
		}
		return nil, err
	}
	defer resp.Body.Close()

	var profile domain.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	return &profile, nil
}
