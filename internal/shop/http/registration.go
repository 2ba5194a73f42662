package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stallfront/stallfront/internal/shop/domain"
	"github.com/stallfront/stallfront/internal/shop/service"
	"github.com/stallfront/stallfront/pkg/slogx"
)

// RegistrationHandler serves the two progressive-registration forms.
type RegistrationHandler struct {
	Registration *service.RegistrationService
	Views        *Views
}

func (h *RegistrationHandler) HandleBasicForm(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	h.Views.Render(w, http.StatusOK, "complete_registration", viewData{
		Identity: identity,
		Stage:    domain.StageOf(identity),
	})
}

func (h *RegistrationHandler) HandleBasicSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	identity := identityFrom(r.Context())

	profile := domain.Profile{
		FirstName:   strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:    strings.TrimSpace(r.PostFormValue("last_name")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phone_number")),
		Address:     strings.TrimSpace(r.PostFormValue("address")),
		Zipcode:     strings.TrimSpace(r.PostFormValue("zipcode")),
	}
	if raw := r.PostFormValue("date_of_birth"); raw != "" {
		if dob, err := time.Parse("2006-01-02", raw); err == nil {
			profile.DateOfBirth = &dob
		}
	}
	wantsToSell := r.PostFormValue("is_seller") == "true"

	updated, err := h.Registration.SubmitBasicProfile(r.Context(), identity.ID, profile, wantsToSell)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.Views.Render(w, http.StatusUnprocessableEntity, "complete_registration", viewData{
				Identity: identity,
				Stage:    domain.StageOf(identity),
				Error:    "First name is required.",
			})
			return
		}
		slogx.FromContext(r.Context()).Error("basic profile submit failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, nextStep(domain.StageOf(updated)), http.StatusSeeOther)
}

func (h *RegistrationHandler) HandleSellerForm(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	h.Views.Render(w, http.StatusOK, "complete_seller_registration", viewData{
		Identity: identity,
		Stage:    domain.StageOf(identity),
	})
}

func (h *RegistrationHandler) HandleSellerSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	identity := identityFrom(r.Context())

	profile := domain.SellerProfile{
		OrganisationName: strings.TrimSpace(r.PostFormValue("organisation_name")),
		Address:          strings.TrimSpace(r.PostFormValue("address")),
		Zipcode:          strings.TrimSpace(r.PostFormValue("zipcode")),
		PhoneNumber:      strings.TrimSpace(r.PostFormValue("phone_number")),
		Website:          strings.TrimSpace(r.PostFormValue("website")),
		Email:            strings.TrimSpace(r.PostFormValue("email")),
		Social: domain.SocialHandles{
			Facebook:  strings.TrimSpace(r.PostFormValue("facebook")),
			Twitter:   strings.TrimSpace(r.PostFormValue("twitter")),
			Instagram: strings.TrimSpace(r.PostFormValue("instagram")),
			LinkedIn:  strings.TrimSpace(r.PostFormValue("linkedin")),
		},
		EmploymentHistory: splitLines(r.PostFormValue("employment_history")),
		BusinessType:      r.PostFormValue("business_type"),
	}

	updated, err := h.Registration.SubmitSellerProfile(r.Context(), identity.ID, profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			h.Views.Render(w, http.StatusUnprocessableEntity, "complete_seller_registration", viewData{
				Identity: identity,
				Stage:    domain.StageOf(identity),
				Error:    "Organisation name is required.",
			})
		case errors.Is(err, service.ErrNotASeller):
			http.Redirect(w, r, "/shop", http.StatusSeeOther)
		default:
			slogx.FromContext(r.Context()).Error("seller profile submit failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, nextStep(domain.StageOf(updated)), http.StatusSeeOther)
}

// splitLines turns the employment-history textarea into an ordered list,
// dropping blank lines.
func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
