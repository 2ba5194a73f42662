package http

import (
	"errors"
	"net/http"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/service"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/slogx"
)

// AuthHandler covers local login, local registration, and logout.
type AuthHandler struct {
	Router      *Router
	Credentials *service.CredentialService
	Sessions    *service.SessionService
	Views       *Views
}

func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if identity := identityFrom(r.Context()); identity.ID != "" {
		http.Redirect(w, r, nextStep(domain.StageOf(identity)), http.StatusSeeOther)
		return
	}
	h.Views.Render(w, http.StatusOK, "login", viewData{})
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")

	identity, err := h.Credentials.Verify(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			h.Views.Render(w, http.StatusUnauthorized, "login", viewData{
				Form:  map[string]string{"email": email},
				Error: "Email or password is incorrect.",
			})
			return
		}
		slogx.FromContext(r.Context()).Error("login failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, identity)
}

func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if identity := identityFrom(r.Context()); identity.ID != "" {
		http.Redirect(w, r, nextStep(domain.StageOf(identity)), http.StatusSeeOther)
		return
	}
	h.Views.Render(w, http.StatusOK, "register", viewData{})
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	if len(password) < 8 {
		h.Views.Render(w, http.StatusUnprocessableEntity, "register", viewData{
			Form:  map[string]string{"email": email},
			Error: "Password must be at least 8 characters.",
		})
		return
	}

	identity, err := h.Credentials.Register(r.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			h.Views.Render(w, http.StatusConflict, "register", viewData{
				Form:  map[string]string{"email": email},
				Error: "An account with that email already exists.",
			})
		case errors.Is(err, service.ErrInvalidCredential):
			h.Views.Render(w, http.StatusUnprocessableEntity, "register", viewData{
				Error: "A valid email is required.",
			})
		default:
			slogx.FromContext(r.Context()).Error("registration failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.startSession(w, r, identity)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.Sessions.Destroy(r.Context(), cookie.Value); err != nil {
			slogx.FromContext(r.Context()).Error("session destroy failed", "error", err)
		}
	}
	h.Router.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// startSession issues a session cookie and forwards the user to their
// next outstanding registration step.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, identity domain.Identity) {
	token, session, err := h.Sessions.Issue(r.Context(), identity.ID)
	if err != nil {
		slogx.FromContext(r.Context()).Error("session issue failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.Router.setSessionCookie(w, token, session.ExpiresAt.Sub(session.CreatedAt))
	http.Redirect(w, r, nextStep(domain.StageOf(identity)), http.StatusSeeOther)
}
