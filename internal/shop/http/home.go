package http

import (
	"net/http"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

// HomeHandler renders the landing page for both anonymous visitors and
// signed-in users.
type HomeHandler struct {
	Views *Views
}

func (h *HomeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	h.Views.Render(w, http.StatusOK, "home", viewData{
		Identity: identity,
		Stage:    domain.StageOf(identity),
	})
}
