package http

import (
	"context"
	"net/http"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/pkg/httpx"
	"github.com/stallfront/stallfront/pkg/slogx"
)

type contextKey string

const identityContextKey contextKey = "shop.identity"

// identityFrom returns the resolved Identity for this request, or the
// zero value for anonymous visitors.
func identityFrom(ctx context.Context) domain.Identity {
	identity, _ := ctx.Value(identityContextKey).(domain.Identity)
	return identity
}

// resolveSession is a global middleware that turns the session cookie
// into an Identity on the request context. A missing, garbage, or
// expired cookie simply leaves the request anonymous.
func (rt *Router) resolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := rt.Sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			slogx.FromContext(r.Context()).Debug("session cookie did not resolve", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// nextStep maps a registration stage to the one route the user should be
// on right now. The gate always sends people forward, never to an error
// page.
func nextStep(stage domain.Stage) string {
	switch stage {
	case domain.StageUnauthenticated:
		return "/login"
	case domain.StageBasicIncomplete:
		return "/complete-registration"
	case domain.StageSellerIncomplete:
		return "/complete-seller-registration"
	default:
		return "/shop"
	}
}

// requireStages gates a route on the derived registration stage. A
// request whose stage is not in the allowed set is redirected to its
// next outstanding step.
func (rt *Router) requireStages(allowed ...domain.Stage) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stage := domain.StageOf(identityFrom(r.Context()))
			for _, s := range allowed {
				if stage == s {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Redirect(w, r, nextStep(stage), http.StatusSeeOther)
		})
	}
}
