package googleauth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the subset of Google ID-token claims the sign-in flow
// needs: a stable subject id plus the primary email.
type IdentityClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`

	jwt.RegisteredClaims
}

// ParseIDToken extracts the identity claims from a raw ID token.
//
// The token arrives in the same TLS response as the code exchange, straight
// from the token endpoint, so its signature is not re-verified here; the
// transport already authenticates the issuer.
func ParseIDToken(raw string) (IdentityClaims, error) {
	var claims IdentityClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return IdentityClaims{}, fmt.Errorf("googleauth: parse id token: %w", err)
	}

	if claims.Subject == "" {
		return IdentityClaims{}, fmt.Errorf("googleauth: id token missing sub claim")
	}

	return claims, nil
}
