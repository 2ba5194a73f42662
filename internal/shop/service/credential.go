package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/cryptox"
	"github.com/stallfront/stallfront/pkg/idx"
)

// CredentialService establishes identities from a local email/password pair.
type CredentialService struct {
	Store store.Store
}

// Register creates a new identity with a hashed local credential.
// A taken email reports store.ErrAlreadyExists.
func (s *CredentialService) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.Identity{}, fmt.Errorf("register: %w", ErrInvalidCredential)
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("register: hash password: %w", err)
	}

	identity := domain.Identity{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Identities().CreateIdentity(ctx, identity); err != nil {
		return domain.Identity{}, fmt.Errorf("register: %w", err)
	}

	return s.Store.Identities().GetIdentityByID(ctx, identity.ID)
}

// Verify checks an email/password pair. Every failure mode reports
// ErrInvalidCredential; the argon2 comparison itself is constant-time.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (domain.Identity, error) {
	identity, err := s.Store.Identities().GetIdentityByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrInvalidCredential
		}
		return domain.Identity{}, fmt.Errorf("verify: %w", err)
	}

	// Federated-only accounts have no local credential at all.
	if identity.PasswordHash == "" {
		return domain.Identity{}, ErrInvalidCredential
	}

	if err := cryptox.VerifyPassword(password, identity.PasswordHash); err != nil {
		return domain.Identity{}, ErrInvalidCredential
	}

	return identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
