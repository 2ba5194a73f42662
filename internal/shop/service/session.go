package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/cryptox"
	"github.com/stallfront/stallfront/pkg/idx"
)

// DefaultSessionTTL is used when the config does not override it.
const DefaultSessionTTL = 24 * time.Hour

// SessionService issues and resolves browser sessions. Only token
// fingerprints reach the store; the raw token travels in the cookie.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Issue creates a session for the identity and returns the raw token to
// set as a cookie.
func (s *SessionService) Issue(ctx context.Context, identityID string) (string, domain.Session, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("session: generate token: %w", err)
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken(token),
		IdentityID: identityID,
		ExpiresAt:  now.Add(s.ttl()),
		CreatedAt:  now,
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return "", domain.Session{}, fmt.Errorf("session: persist: %w", err)
	}

	return token, session, nil
}

// Resolve maps a raw token to its Identity. Unknown and expired tokens
// both report store.ErrNotFound.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		return domain.Identity{}, err
	}
	return s.Store.Identities().GetIdentityByID(ctx, session.IdentityID)
}

// Destroy removes the session behind the token. Destroying an unknown
// token is a no-op; logout must always succeed.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	return s.Store.Sessions().DeleteSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
}
