package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/stallfront/stallfront/internal/shop/assets"
	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/service"
	"github.com/stallfront/stallfront/pkg/slogx"
)

// maxUploadBytes bounds the multipart product-upload body.
const maxUploadBytes = 10 << 20

// ShopHandler serves the catalogue and the seller upload form.
type ShopHandler struct {
	Listings *service.ListingService
	Views    *Views
}

func (h *ShopHandler) HandleShop(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	listings, err := h.Listings.Browse(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("listing browse failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.Views.Render(w, http.StatusOK, "shop", viewData{
		Identity: identity,
		Stage:    domain.StageOf(identity),
		Listings: listings,
	})
}

func (h *ShopHandler) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	h.Views.Render(w, http.StatusOK, "upload_product", viewData{
		Identity: identity,
		Stage:    domain.StageOf(identity),
	})
}

func (h *ShopHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	input := service.NewListing{
		ProductName: strings.TrimSpace(r.PostFormValue("product_name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}

	var parseErr error
	input.Stock, parseErr = strconv.ParseInt(r.PostFormValue("stock"), 10, 64)
	if parseErr == nil {
		input.PriceCents, parseErr = strconv.ParseInt(r.PostFormValue("price_cents"), 10, 64)
	}
	if parseErr != nil {
		h.Views.Render(w, http.StatusUnprocessableEntity, "upload_product", viewData{
			Identity: identity,
			Stage:    domain.StageOf(identity),
			Error:    "Stock and price must be whole numbers.",
		})
		return
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		input.Image = file
		input.ImageFilename = header.Filename
		input.ImageContentType = header.Header.Get("Content-Type")
	}

	_, err := h.Listings.CreateListing(r.Context(), identity, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.Views.Render(w, http.StatusUnprocessableEntity, "upload_product", viewData{
				Identity: identity,
				Stage:    domain.StageOf(identity),
				Error:    "Product name, stock, and price are required.",
			})
		case errors.Is(err, assets.ErrUnavailable):
			h.Views.Render(w, http.StatusBadGateway, "upload_product", viewData{
				Identity: identity,
				Stage:    domain.StageOf(identity),
				Error:    "Image upload failed. Nothing was saved; please try again.",
			})
		case errors.Is(err, service.ErrSellerIncomplete):
			http.Redirect(w, r, "/complete-seller-registration", http.StatusSeeOther)
		default:
			slogx.FromContext(r.Context()).Error("listing create failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/shop", http.StatusSeeOther)
}
