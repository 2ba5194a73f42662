package domain

import "time"

// Identity is the one canonical record per person, whether the account was
// established with a local password or through the Google sign-in flow.
type Identity struct {
	ID           string
	Email        string
	GoogleID     *string // provider subject id; immutable once set
	PasswordHash string  // argon2 encoded; empty for federated-only accounts
	Profile      Profile
	IsSeller     *bool // nil means the user has not chosen yet
	SellerProfile *SellerProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile holds the basic-registration fields. All of them are optional
// until the basic stage completes.
type Profile struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	Zipcode     string
	DateOfBirth *time.Time
}

// SellerProfile holds the seller-registration fields, populated only once
// the user has opted into selling.
type SellerProfile struct {
	OrganisationName  string
	Address           string
	Zipcode           string
	PhoneNumber       string
	Website           string
	Email             string
	Social            SocialHandles
	EmploymentHistory []string
	BusinessType      string
}

type SocialHandles struct {
	Facebook  string
	Twitter   string
	Instagram string
	LinkedIn  string
}

// IsFederated reports whether the account was established through the
// identity provider. Such accounts have no local password and cannot
// authenticate with the credential verifier.
func (i Identity) IsFederated() bool {
	return i.GoogleID != nil && *i.GoogleID != ""
}

// WantsToSell reports whether the user explicitly chose the seller path.
func (i Identity) WantsToSell() bool {
	return i.IsSeller != nil && *i.IsSeller
}
