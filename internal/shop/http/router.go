package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/service"
	"github.com/stallfront/stallfront/internal/shop/store"
	"github.com/stallfront/stallfront/pkg/httpx"
	"github.com/stallfront/stallfront/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	views         *Views
	logger        *slog.Logger
	buildVersion  string
	startTime     time.Time
	secureCookies bool

	store        store.Store
	Credentials  *service.CredentialService
	Federated    *service.FederatedService
	Sessions     *service.SessionService
	Registration *service.RegistrationService
	Listings     *service.ListingService
}

func NewRouter(
	buildVersion string,
	secureCookies bool,
	st store.Store,
	logger *slog.Logger,
) (*Router, error) {
	views, err := NewViews(logger)
	if err != nil {
		return nil, err
	}

	r := &Router{
		Mux:           http.NewServeMux(),
		views:         views,
		logger:        logger,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		secureCookies: secureCookies,
		store:         st,
	}

	// Session resolution runs on every route so handlers and gates can
	// read the identity straight off the context.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		r.resolveSession,
	}

	return r, nil
}

func (rt *Router) ApplyRoutes() {
	rt.registerPublic()
	rt.registerAuth()
	rt.registerRegistration()
	rt.registerShop()
	rt.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(rt.Mux, rt.middlewares...).ServeHTTP(w, req)
}

func (rt *Router) registerPublic() {
	h := &HomeHandler{Views: rt.views}
	rt.Mux.Handle("GET /{$}", http.HandlerFunc(h.HandleGet))
}

func (rt *Router) registerAuth() {
	auth := &AuthHandler{
		Router:      rt,
		Credentials: rt.Credentials,
		Sessions:    rt.Sessions,
		Views:       rt.views,
	}

	rt.Mux.Handle("GET /login", http.HandlerFunc(auth.HandleLoginForm))

	// Credential guessing is limited per IP and per submitted email.
	rt.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(auth.HandleLogin),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email"),
		),
	)

	rt.Mux.Handle("GET /register", http.HandlerFunc(auth.HandleRegisterForm))
	rt.Mux.Handle("POST /register",
		httpx.Chain(http.HandlerFunc(auth.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	rt.Mux.Handle("GET /logout", http.HandlerFunc(auth.HandleLogout))

	google := &GoogleHandler{
		Router:    rt,
		Federated: rt.Federated,
		Sessions:  rt.Sessions,
		Views:     rt.views,
	}

	rt.Mux.Handle("GET /auth/google",
		httpx.Chain(http.HandlerFunc(google.HandleBegin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	rt.Mux.Handle("GET /auth/google/complete-registration",
		httpx.Chain(http.HandlerFunc(google.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (rt *Router) registerRegistration() {
	h := &RegistrationHandler{
		Registration: rt.Registration,
		Views:        rt.views,
	}

	// The basic form is reachable from any authenticated stage so users
	// can revise their details later.
	basicGate := rt.requireStages(
		domain.StageBasicIncomplete,
		domain.StageBasicComplete,
		domain.StageSellerIncomplete,
		domain.StageSellerComplete,
	)
	rt.Mux.Handle("GET /complete-registration",
		httpx.Chain(http.HandlerFunc(h.HandleBasicForm), basicGate))
	rt.Mux.Handle("POST /complete-registration",
		httpx.Chain(http.HandlerFunc(h.HandleBasicSubmit),
			basicGate,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	sellerGate := rt.requireStages(
		domain.StageSellerIncomplete,
		domain.StageSellerComplete,
	)
	rt.Mux.Handle("GET /complete-seller-registration",
		httpx.Chain(http.HandlerFunc(h.HandleSellerForm), sellerGate))
	rt.Mux.Handle("POST /complete-seller-registration",
		httpx.Chain(http.HandlerFunc(h.HandleSellerSubmit),
			sellerGate,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (rt *Router) registerShop() {
	h := &ShopHandler{
		Listings: rt.Listings,
		Views:    rt.views,
	}

	// Browsing requires a settled registration; anyone mid-registration
	// is pushed to their outstanding step first.
	settledGate := rt.requireStages(
		domain.StageBasicComplete,
		domain.StageSellerComplete,
	)
	rt.Mux.Handle("GET /shop",
		httpx.Chain(http.HandlerFunc(h.HandleShop),
			settledGate,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	uploadGate := rt.requireStages(domain.StageSellerComplete)
	rt.Mux.Handle("GET /upload-product",
		httpx.Chain(http.HandlerFunc(h.HandleUploadForm), uploadGate))
	rt.Mux.Handle("POST /upload-product",
		httpx.Chain(http.HandlerFunc(h.HandleUpload),
			uploadGate,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (rt *Router) registerSystem() {
	rt.Mux.Handle("GET /livez", LivezHandler(rt.startTime, rt.buildVersion))
	rt.Mux.Handle("GET /readyz", ReadyzHandler(rt.startTime, rt.buildVersion, rt.store))
}
