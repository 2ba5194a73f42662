package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

type listingsRepo struct {
	q querier
}

func (r *listingsRepo) CreateListing(ctx context.Context, l domain.Listing) error {
	reviews, err := json.Marshal(l.Reviews)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO listings (
			id, seller_id, product_name, stock, price_cents,
			description, image_ref, reviews, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.SellerID, l.ProductName, l.Stock, l.PriceCents,
		l.Description, l.ImageRef, string(reviews), time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *listingsRepo) GetListingByID(ctx context.Context, id string) (domain.Listing, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, seller_id, product_name, stock, price_cents,
		       description, image_ref, reviews, created_at
		FROM listings WHERE id = ?`, id)
	return scanListing(row)
}

func (r *listingsRepo) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return r.list(ctx, `
		SELECT id, seller_id, product_name, stock, price_cents,
		       description, image_ref, reviews, created_at
		FROM listings ORDER BY created_at DESC, id DESC`)
}

func (r *listingsRepo) ListListingsBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	return r.list(ctx, `
		SELECT id, seller_id, product_name, stock, price_cents,
		       description, image_ref, reviews, created_at
		FROM listings WHERE seller_id = ? ORDER BY created_at DESC, id DESC`, sellerID)
}

func (r *listingsRepo) AppendReview(ctx context.Context, listingID, review string) error {
	listing, err := r.GetListingByID(ctx, listingID)
	if err != nil {
		return err
	}

	reviews, err := json.Marshal(append(listing.Reviews, review))
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx,
		`UPDATE listings SET reviews = ? WHERE id = ?`, string(reviews), listingID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *listingsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func scanListing(row rowScanner) (domain.Listing, error) {
	var (
		l       domain.Listing
		reviews sql.NullString
	)

	err := row.Scan(
		&l.ID, &l.SellerID, &l.ProductName, &l.Stock, &l.PriceCents,
		&l.Description, &l.ImageRef, &reviews, &l.CreatedAt,
	)
	if err != nil {
		return domain.Listing{}, mapNotFound(err)
	}

	if reviews.Valid && reviews.String != "" {
		if err := json.Unmarshal([]byte(reviews.String), &l.Reviews); err != nil {
			return domain.Listing{}, err
		}
	}

	return l, nil
}
