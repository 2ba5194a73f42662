package http

import (
	"net/http"
	"time"
)

const (
	sessionCookieName = "shop_session"
	stateCookieName   = "oauth_state"

	// stateCookieTTL bounds how long a consent round-trip may take.
	stateCookieTTL = 10 * time.Minute
)

func (rt *Router) setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   rt.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rt *Router) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rt *Router) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   rt.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (rt *Router) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
