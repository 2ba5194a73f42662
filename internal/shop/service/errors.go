package service

import "errors"

var (
	// ErrInvalidCredential is the single failure for local login. Unknown
	// email, wrong password, and password-less federated accounts all report
	// it so responses cannot be used to enumerate accounts.
	ErrInvalidCredential = errors.New("service: invalid credentials")

	// ErrNotASeller rejects a seller-profile submission from an identity
	// that has not opted into selling.
	ErrNotASeller = errors.New("service: identity is not a seller")

	// ErrSellerIncomplete rejects listing creation before the seller
	// profile stage is complete.
	ErrSellerIncomplete = errors.New("service: seller registration incomplete")

	// ErrProvider reports a failed exchange with the identity provider.
	ErrProvider = errors.New("service: identity provider error")

	// ErrProfileIncomplete reports a federated login whose assertion did
	// not include a usable email.
	ErrProfileIncomplete = errors.New("service: provider profile incomplete")

	// ErrInvalidInput reports a submission missing a required field.
	ErrInvalidInput = errors.New("service: invalid input")
)
