package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedIdentity(t *testing.T, st *Store, email string) domain.Identity {
	t.Helper()
	ctx := context.Background()

	identity := domain.Identity{
		ID:        idx.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Identities().CreateIdentity(ctx, identity))

	got, err := st.Identities().GetIdentityByID(ctx, identity.ID)
	require.NoError(t, err)
	return got
}

func TestIdentitiesRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	googleID := "google-sub-store"
	dob := time.Date(1988, time.July, 2, 0, 0, 0, 0, time.UTC)
	isSeller := true

	identity := domain.Identity{
		ID:           idx.New().String(),
		Email:        "full@example.com",
		GoogleID:     &googleID,
		PasswordHash: "argon2id$fake",
		Profile: domain.Profile{
			FirstName:   "Ada",
			LastName:    "Okafor",
			PhoneNumber: "0400 000 000",
			Address:     "1 Market St",
			Zipcode:     "4000",
			DateOfBirth: &dob,
		},
		IsSeller: &isSeller,
	}
	require.NoError(t, st.Identities().CreateIdentity(ctx, identity))

	for name, fetch := range map[string]func() (domain.Identity, error){
		"by id":        func() (domain.Identity, error) { return st.Identities().GetIdentityByID(ctx, identity.ID) },
		"by email":     func() (domain.Identity, error) { return st.Identities().GetIdentityByEmail(ctx, "full@example.com") },
		"by google id": func() (domain.Identity, error) { return st.Identities().GetIdentityByGoogleID(ctx, googleID) },
	} {
		t.Run(name, func(t *testing.T) {
			got, err := fetch()
			require.NoError(t, err)
			require.Equal(t, identity.ID, got.ID)
			require.Equal(t, identity.Profile.FirstName, got.Profile.FirstName)
			require.NotNil(t, got.GoogleID)
			require.Equal(t, googleID, *got.GoogleID)
			require.NotNil(t, got.Profile.DateOfBirth)
			require.True(t, dob.Equal(*got.Profile.DateOfBirth))
			require.NotNil(t, got.IsSeller)
			require.True(t, *got.IsSeller)
			require.Nil(t, got.SellerProfile)
		})
	}

	t.Run("missing rows report not found", func(t *testing.T) {
		_, err := st.Identities().GetIdentityByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestIdentitiesUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedIdentity(t, st, "taken@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		err := st.Identities().CreateIdentity(ctx, domain.Identity{
			ID:    idx.New().String(),
			Email: "taken@example.com",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate google id", func(t *testing.T) {
		googleID := "google-sub-dup"
		require.NoError(t, st.Identities().CreateIdentity(ctx, domain.Identity{
			ID:       idx.New().String(),
			Email:    "first@example.com",
			GoogleID: &googleID,
		}))

		err := st.Identities().CreateIdentity(ctx, domain.Identity{
			ID:       idx.New().String(),
			Email:    "second@example.com",
			GoogleID: &googleID,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestAttachGoogleID(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	identity := seedIdentity(t, st, "local@example.com")

	require.NoError(t, st.Identities().AttachGoogleID(ctx, identity.ID, "google-sub-attach"))

	got, err := st.Identities().GetIdentityByGoogleID(ctx, "google-sub-attach")
	require.NoError(t, err)
	require.Equal(t, identity.ID, got.ID)

	t.Run("a second binding does not overwrite", func(t *testing.T) {
		err := st.Identities().AttachGoogleID(ctx, identity.ID, "google-sub-other")
		require.Error(t, err)

		got, err := st.Identities().GetIdentityByID(ctx, identity.ID)
		require.NoError(t, err)
		require.Equal(t, "google-sub-attach", *got.GoogleID)
	})
}

func TestSellerProfileUpsert(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	identity := seedIdentity(t, st, "seller@example.com")

	profile := domain.SellerProfile{
		OrganisationName:  "First Name Pty Ltd",
		EmploymentHistory: []string{"one", "two"},
		Social:            domain.SocialHandles{Instagram: "@first"},
		BusinessType:      "company",
	}
	require.NoError(t, st.Identities().UpdateSellerProfile(ctx, identity.ID, profile))

	got, err := st.Identities().GetIdentityByID(ctx, identity.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SellerProfile)
	require.Equal(t, []string{"one", "two"}, got.SellerProfile.EmploymentHistory)

	t.Run("upsert replaces in place", func(t *testing.T) {
		profile.OrganisationName = "Renamed Pty Ltd"
		profile.EmploymentHistory = []string{"three"}
		require.NoError(t, st.Identities().UpdateSellerProfile(ctx, identity.ID, profile))

		got, err := st.Identities().GetIdentityByID(ctx, identity.ID)
		require.NoError(t, err)
		require.Equal(t, "Renamed Pty Ltd", got.SellerProfile.OrganisationName)
		require.Equal(t, []string{"three"}, got.SellerProfile.EmploymentHistory)
	})
}

func TestUpdateProfileTargetsOneRow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	identity := seedIdentity(t, st, "edit@example.com")
	bystander := seedIdentity(t, st, "bystander@example.com")

	require.NoError(t, st.Identities().UpdateProfile(ctx, identity.ID,
		domain.Profile{FirstName: "Edited"}, true))

	got, err := st.Identities().GetIdentityByID(ctx, identity.ID)
	require.NoError(t, err)
	require.Equal(t, "Edited", got.Profile.FirstName)
	require.True(t, got.WantsToSell())

	other, err := st.Identities().GetIdentityByID(ctx, bystander.ID)
	require.NoError(t, err)
	require.Empty(t, other.Profile.FirstName)

	t.Run("unknown id reports not found", func(t *testing.T) {
		err := st.Identities().UpdateProfile(ctx, "missing",
			domain.Profile{FirstName: "X"}, false)
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, st.Identities().SetIsSeller(ctx, "missing", true), store.ErrNotFound)
		require.ErrorIs(t, st.Identities().SetPasswordHash(ctx, "missing", "h"), store.ErrNotFound)
	})
}

func TestListingsRepo(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seller := seedIdentity(t, st, "stall@example.com")

	first := domain.Listing{
		ID:          idx.New().String(),
		SellerID:    seller.ID,
		ProductName: "Bowl",
		Stock:       3,
		PriceCents:  4200,
		Description: "Wide serving bowl.",
		ImageRef:    "https://cdn.example/objects/bowl",
		Reviews:     []string{},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, st.Listings().CreateListing(ctx, first))

	second := first
	second.ID = idx.New().String()
	second.ProductName = "Plate"
	require.NoError(t, st.Listings().CreateListing(ctx, second))

	t.Run("get by id round-trips", func(t *testing.T) {
		got, err := st.Listings().GetListingByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, "Bowl", got.ProductName)
		require.Equal(t, int64(4200), got.PriceCents)
		require.Empty(t, got.Reviews)
	})

	t.Run("list is newest first", func(t *testing.T) {
		listings, err := st.Listings().ListListings(ctx)
		require.NoError(t, err)
		require.Len(t, listings, 2)
		require.Equal(t, second.ID, listings[0].ID)
	})

	t.Run("list by seller filters", func(t *testing.T) {
		listings, err := st.Listings().ListListingsBySeller(ctx, seller.ID)
		require.NoError(t, err)
		require.Len(t, listings, 2)

		none, err := st.Listings().ListListingsBySeller(ctx, "someone-else")
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("reviews keep their order", func(t *testing.T) {
		require.NoError(t, st.Listings().AppendReview(ctx, first.ID, "Great"))
		require.NoError(t, st.Listings().AppendReview(ctx, first.ID, "Cracked"))

		got, err := st.Listings().GetListingByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, []string{"Great", "Cracked"}, got.Reviews)
	})

	t.Run("deleting the seller cascades", func(t *testing.T) {
		_, err := st.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, seller.ID)
		require.NoError(t, err)

		listings, err := st.Listings().ListListings(ctx)
		require.NoError(t, err)
		require.Empty(t, listings)
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	t.Run("commit persists", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			return tx.Identities().CreateIdentity(ctx, domain.Identity{
				ID:    idx.New().String(),
				Email: "committed@example.com",
			})
		})
		require.NoError(t, err)

		_, err = st.Identities().GetIdentityByEmail(ctx, "committed@example.com")
		require.NoError(t, err)
	})

	t.Run("an error rolls back", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Identities().CreateIdentity(ctx, domain.Identity{
				ID:    idx.New().String(),
				Email: "discarded@example.com",
			}); err != nil {
				return err
			}
			return context.Canceled
		})
		require.ErrorIs(t, err, context.Canceled)

		_, err = st.Identities().GetIdentityByEmail(ctx, "discarded@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
