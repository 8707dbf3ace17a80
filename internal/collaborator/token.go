package collaborator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	serviceSubject  = "decks-service"
	serviceTokenTTL = time.Minute
)

// TokenSigner issues short-lived HS256 tokens identifying this service to
// its collaborators. A nil *TokenSigner signs nothing.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner returns nil when secret is empty, which disables outbound
// authentication.
func NewTokenSigner(secret string) *TokenSigner {
	if secret == "" {
		return nil
	}
	return &TokenSigner{secret: []byte(secret), now: time.Now}
}

// Sign returns a bearer token, or "" when the signer is disabled.
func (s *TokenSigner) Sign() (string, error) {
	if s == nil {
		return "", nil
	}
	now := s.now()
	claims := jwt.MapClaims{
		"sub": serviceSubject,
		"iat": now.Unix(),
		"exp": now.Add(serviceTokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return token, nil
}
