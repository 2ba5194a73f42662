package service

import (
	"context"
	"testing"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stretchr/testify/require"
)

func TestCredentialRegisterAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := &CredentialService{Store: newTestStore(t)}

	identity, err := svc.Register(ctx, "Maya@Example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, identity.ID)
	require.Equal(t, "maya@example.com", identity.Email)
	require.Equal(t, domain.StageBasicIncomplete, domain.StageOf(identity))

	t.Run("verify succeeds with the right password", func(t *testing.T) {
		got, err := svc.Verify(ctx, "maya@example.com", "correct horse battery")
		require.NoError(t, err)
		require.Equal(t, identity.ID, got.ID)
	})

	t.Run("verify normalizes the email", func(t *testing.T) {
		got, err := svc.Verify(ctx, "  MAYA@example.com ", "correct horse battery")
		require.NoError(t, err)
		require.Equal(t, identity.ID, got.ID)
	})

	t.Run("wrong password reports invalid credentials", func(t *testing.T) {
		_, err := svc.Verify(ctx, "maya@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("unknown email reports the same failure", func(t *testing.T) {
		_, err := svc.Verify(ctx, "nobody@example.com", "correct horse battery")
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("duplicate email reports already exists", func(t *testing.T) {
		_, err := svc.Register(ctx, "maya@example.com", "another password")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestCredentialVerifyFederatedOnlyAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &CredentialService{Store: st}

	federated := &FederatedService{
		Store:    st,
		Provider: newFakeProvider(t, map[string]any{"sub": "g-1", "email": "fed@example.com"}),
		Logger:   testLogger(),
	}
	_, err := federated.CompleteAuthorization(ctx, "code")
	require.NoError(t, err)

	// No local password on record, so local login must fail closed.
	_, err = svc.Verify(ctx, "fed@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCredential)
}
