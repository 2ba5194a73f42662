package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/cryptox"
	"github.com/stallfront/stallfront/pkg/googleauth"
	"github.com/stallfront/stallfront/pkg/idx"
)

// findOrCreateAttempts bounds the race-recovery loop. Two concurrent
// first-time logins resolve on the second pass; anything beyond that is
// a real fault.
const findOrCreateAttempts = 3

// FederatedService drives the Google sign-in flow and reconciles the
// provider's assertion into exactly one Identity record.
type FederatedService struct {
	Store    store.Store
	Provider *googleauth.Client
	Logger   *slog.Logger
}

// BeginAuthorization mints a fresh anti-forgery state value and the
// provider URL to redirect the browser to. The caller keeps the state in
// a short-lived cookie and checks it on the way back.
func (s *FederatedService) BeginAuthorization() (state, authURL string, err error) {
	state, err = cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", fmt.Errorf("federated: generate state: %w", err)
	}
	return state, s.Provider.AuthCodeURL(state), nil
}

// CompleteAuthorization exchanges the callback code, reads the identity
// assertion, and resolves it to a local Identity. A brand-new federated
// account is created with an empty basic profile, so the caller lands on
// the basic-registration step.
func (s *FederatedService) CompleteAuthorization(ctx context.Context, code string) (domain.Identity, error) {
	token, err := s.Provider.Exchange(ctx, code)
	if err != nil {
		s.Logger.ErrorContext(ctx, "provider code exchange failed", "error", err)
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	claims, err := googleauth.ParseIDToken(token.IDToken)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if claims.Email == "" {
		return domain.Identity{}, ErrProfileIncomplete
	}

	return s.findOrCreate(ctx, claims)
}

// findOrCreate maps a provider subject to the one canonical Identity.
// Resolution order: subject id, then email (linking the subject to an
// existing local account), then a fresh record. Lost races surface as
// unique-constraint conflicts and are recovered by re-reading.
func (s *FederatedService) findOrCreate(ctx context.Context, claims googleauth.IdentityClaims) (domain.Identity, error) {
	email := normalizeEmail(claims.Email)
	repo := s.Store.Identities()

	for attempt := 0; attempt < findOrCreateAttempts; attempt++ {
		identity, err := repo.GetIdentityByGoogleID(ctx, claims.Subject)
		if err == nil {
			return identity, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, fmt.Errorf("federated: lookup by subject: %w", err)
		}

		existing, err := repo.GetIdentityByEmail(ctx, email)
		switch {
		case err == nil:
			if err := repo.AttachGoogleID(ctx, existing.ID, claims.Subject); err != nil {
				// Another login attached first, or the row changed under
				// us. Re-resolve from the top.
				s.Logger.DebugContext(ctx, "google id attach lost race, retrying",
					"identity_id", existing.ID, "error", err)
				continue
			}
			return repo.GetIdentityByID(ctx, existing.ID)

		case errors.Is(err, store.ErrNotFound):
			googleID := claims.Subject
			fresh := domain.Identity{
				ID:        idx.New().String(),
				Email:     email,
				GoogleID:  &googleID,
				CreatedAt: time.Now().UTC(),
			}
			if err := repo.CreateIdentity(ctx, fresh); err != nil {
				if errors.Is(err, store.ErrAlreadyExists) {
					continue
				}
				return domain.Identity{}, fmt.Errorf("federated: create identity: %w", err)
			}
			s.Logger.InfoContext(ctx, "federated identity created",
				"identity_id", fresh.ID)
			return repo.GetIdentityByID(ctx, fresh.ID)

		default:
			return domain.Identity{}, fmt.Errorf("federated: lookup by email: %w", err)
		}
	}

	return domain.Identity{}, fmt.Errorf("federated: find or create: retries exhausted")
}
