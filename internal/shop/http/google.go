package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/service"
	"github.com/stallfront/stallfront/pkg/slogx"
)

// GoogleHandler drives the browser through the Google sign-in round-trip.
type GoogleHandler struct {
	Router    *Router
	Federated *service.FederatedService
	Sessions  *service.SessionService
	Views     *Views
}

// HandleBegin mints the anti-forgery state, parks it in a short-lived
// cookie, and sends the browser to the consent screen.
func (h *GoogleHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	state, authURL, err := h.Federated.BeginAuthorization()
	if err != nil {
		slogx.FromContext(r.Context()).Error("begin authorization failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.Router.setStateCookie(w, state)
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// HandleCallback validates the echoed state, completes the code exchange,
// and lands the user on whichever registration step they still owe.
func (h *GoogleHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(r.URL.Query().Get("state"))) != 1 {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	h.Router.clearStateCookie(w)

	code := r.URL.Query().Get("code")
	if code == "" {
		// The provider reports denial via error=..., never a code.
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	identity, err := h.Federated.CompleteAuthorization(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileIncomplete):
			// Without an email there is nothing to reconcile on. Send the
			// user to local registration instead.
			slogx.FromContext(r.Context()).Warn("federated login lacked an email", "error", err)
			h.Views.Render(w, http.StatusUnprocessableEntity, "register", viewData{
				Error: "Google did not supply an email address. Please register with an email and password.",
			})
		case errors.Is(err, service.ErrProvider):
			slogx.FromContext(r.Context()).Warn("federated login rejected", "error", err)
			h.Views.Render(w, http.StatusBadGateway, "login", viewData{
				Error: "Google sign-in did not complete. Please try again.",
			})
		default:
			slogx.FromContext(r.Context()).Error("federated login failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	token, session, err := h.Sessions.Issue(r.Context(), identity.ID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("session issue failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.Router.setSessionCookie(w, token, session.ExpiresAt.Sub(session.CreatedAt))
	http.Redirect(w, r, nextStep(domain.StageOf(identity)), http.StatusSeeOther)
}
