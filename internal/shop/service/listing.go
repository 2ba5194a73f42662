package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/stallfront/stallfront/internal/shop/assets"
	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/idx"
)

// NewListing carries a seller's product submission. Image is optional;
// when present it is pushed to the asset host before anything is stored.
type NewListing struct {
	ProductName string
	Stock       int64
	PriceCents  int64
	Description string

	ImageFilename    string
	ImageContentType string
	Image            io.Reader
}

// ListingService manages the product catalogue. Only identities that have
// completed seller registration may create listings.
type ListingService struct {
	Store  store.Store
	Assets assets.Store
	Logger *slog.Logger
}

// CreateListing uploads the image (if any) and then inserts the listing.
// The asset upload happens first so a store failure can never leave a
// listing pointing at an image that was never stored.
func (s *ListingService) CreateListing(ctx context.Context, seller domain.Identity, input NewListing) (domain.Listing, error) {
	if domain.StageOf(seller) != domain.StageSellerComplete {
		return domain.Listing{}, ErrSellerIncomplete
	}
	if input.ProductName == "" {
		return domain.Listing{}, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if input.Stock < 0 || input.PriceCents < 0 {
		return domain.Listing{}, fmt.Errorf("%w: stock and price must not be negative", ErrInvalidInput)
	}

	var imageRef string
	if input.Image != nil {
		ref, err := s.Assets.Upload(ctx, input.ImageFilename, input.ImageContentType, input.Image)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("listing: upload image: %w", err)
		}
		imageRef = ref
	}

	listing := domain.Listing{
		ID:          idx.New().String(),
		SellerID:    seller.ID,
		ProductName: input.ProductName,
		Stock:       input.Stock,
		PriceCents:  input.PriceCents,
		Description: input.Description,
		ImageRef:    imageRef,
		Reviews:     []string{},
		CreatedAt:   time.Now().UTC(),
	}

	err := retryTransient(ctx, func() error {
		return s.Store.Listings().CreateListing(ctx, listing)
	})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("listing: persist: %w", err)
	}

	s.Logger.InfoContext(ctx, "listing created",
		"listing_id", listing.ID, "seller_id", seller.ID)

	return listing, nil
}

// Browse returns the whole catalogue, newest first.
func (s *ListingService) Browse(ctx context.Context) ([]domain.Listing, error) {
	return s.Store.Listings().ListListings(ctx)
}

// BySeller returns one seller's listings, newest first.
func (s *ListingService) BySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	return s.Store.Listings().ListListingsBySeller(ctx, sellerID)
}

// AddReview appends a review to a listing's ordered review sequence.
func (s *ListingService) AddReview(ctx context.Context, listingID, review string) error {
	if review == "" {
		return fmt.Errorf("%w: review must not be empty", ErrInvalidInput)
	}
	return s.Store.Listings().AppendReview(ctx, listingID, review)
}
