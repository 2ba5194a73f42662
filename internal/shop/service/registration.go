package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
)

// RegistrationService applies the progressive-registration mutations.
// Every mutator is an idempotent overwrite: replaying a submission leaves
// the record in the same state it would have after one application, so a
// browser retry after a dropped response is harmless.
type RegistrationService struct {
	Store  store.Store
	Logger *slog.Logger
}

// SubmitBasicProfile overwrites the identity's basic profile and records
// whether the user wants to sell. Last write wins.
func (s *RegistrationService) SubmitBasicProfile(ctx context.Context, identityID string, p domain.Profile, wantsToSell bool) (domain.Identity, error) {
	if p.FirstName == "" {
		return domain.Identity{}, fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}

	err := retryTransient(ctx, func() error {
		return s.Store.Identities().UpdateProfile(ctx, identityID, p, wantsToSell)
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("registration: basic profile: %w", err)
	}

	s.Logger.InfoContext(ctx, "basic profile submitted",
		"identity_id", identityID, "wants_to_sell", wantsToSell)

	return s.Store.Identities().GetIdentityByID(ctx, identityID)
}

// SubmitSellerProfile upserts the seller profile. The identity must have
// opted into selling first, otherwise ErrNotASeller.
func (s *RegistrationService) SubmitSellerProfile(ctx context.Context, identityID string, sp domain.SellerProfile) (domain.Identity, error) {
	if sp.OrganisationName == "" {
		return domain.Identity{}, fmt.Errorf("%w: organisation name is required", ErrInvalidInput)
	}

	identity, err := s.Store.Identities().GetIdentityByID(ctx, identityID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("registration: seller profile: %w", err)
	}
	if !identity.WantsToSell() {
		return domain.Identity{}, ErrNotASeller
	}

	err = retryTransient(ctx, func() error {
		return s.Store.Identities().UpdateSellerProfile(ctx, identityID, sp)
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("registration: seller profile: %w", err)
	}

	s.Logger.InfoContext(ctx, "seller profile submitted", "identity_id", identityID)

	return s.Store.Identities().GetIdentityByID(ctx, identityID)
}

// LeaveSellerProgram flips the seller choice off. The seller profile data
// stays on record so a later re-opt-in picks up where it left off.
func (s *RegistrationService) LeaveSellerProgram(ctx context.Context, identityID string) (domain.Identity, error) {
	err := retryTransient(ctx, func() error {
		return s.Store.Identities().SetIsSeller(ctx, identityID, false)
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("registration: leave seller program: %w", err)
	}
	return s.Store.Identities().GetIdentityByID(ctx, identityID)
}
