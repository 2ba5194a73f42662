package domain

import "time"

// Session binds an opaque browser token to an Identity. Only the sha256
// fingerprint of the token is stored; the raw token lives in the cookie.
type Session struct {
	ID         string
	TokenHash  string
	IdentityID string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired reports whether the session has passed its idle deadline.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
