package domain

import "time"

// Listing is a seller's product entry. ImageRef is the opaque locator the
// external asset store handed back at upload time.
type Listing struct {
	ID          string
	SellerID    string
	ProductName string
	Stock       int64
	PriceCents  int64
	Description string
	ImageRef    string
	Reviews     []string // ordered, oldest first
	CreatedAt   time.Time
}
