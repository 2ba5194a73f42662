package store

import (
	"context"
	"errors"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Identities() Identities
	Sessions() Sessions
	Listings() Listings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Identities interface {
	// CreateIdentity inserts a new identity (id is provided by app via ULID).
	// Colliding email or google_id reports ErrAlreadyExists.
	CreateIdentity(ctx context.Context, i domain.Identity) error

	// GetIdentityByID returns an identity by id, seller profile included.
	GetIdentityByID(ctx context.Context, id string) (domain.Identity, error)

	// GetIdentityByEmail is used during local login and registration.
	GetIdentityByEmail(ctx context.Context, email string) (domain.Identity, error)

	// GetIdentityByGoogleID is used during federated login.
	GetIdentityByGoogleID(ctx context.Context, googleID string) (domain.Identity, error)

	// AttachGoogleID binds a provider subject id to an existing identity.
	// The column is unique; a second distinct binding reports ErrAlreadyExists.
	AttachGoogleID(ctx context.Context, identityID, googleID string) error

	// UpdateProfile overwrites the basic-profile fields and the seller
	// choice, and bumps updated_at. Last write wins.
	UpdateProfile(ctx context.Context, identityID string, p domain.Profile, isSeller bool) error

	// UpdateSellerProfile upserts the seller profile row for an identity.
	UpdateSellerProfile(ctx context.Context, identityID string, sp domain.SellerProfile) error

	// SetIsSeller flips only the seller choice (used for demotion).
	SetIsSeller(ctx context.Context, identityID string, isSeller bool) error

	// SetPasswordHash sets the password_hash (argon2) and bumps updated_at.
	SetPasswordHash(ctx context.Context, identityID, hash string) error
}

type Sessions interface {
	// CreateSession stores a new session record keyed by token fingerprint.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns a not-yet-expired session by fingerprint.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// DeleteSessionByTokenHash removes a session (logout).
	DeleteSessionByTokenHash(ctx context.Context, hash string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}

type Listings interface {
	// CreateListing inserts a new listing (id is ULID).
	CreateListing(ctx context.Context, l domain.Listing) error

	// GetListingByID returns one listing.
	GetListingByID(ctx context.Context, id string) (domain.Listing, error)

	// ListListings returns all listings, newest first.
	ListListings(ctx context.Context) ([]domain.Listing, error)

	// ListListingsBySeller returns one seller's listings, newest first.
	ListListingsBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error)

	// AppendReview appends to the listing's ordered review sequence.
	AppendReview(ctx context.Context, listingID, review string) error
}
