package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHomePage(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)

	resp := app.get(t, client, "/")
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Log in")
	require.Contains(t, body, "Continue with Google")
}

func TestLocalBuyerJourney(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)

	resp := app.postForm(t, client, "/register", url.Values{
		"email":    {"buyer@example.com"},
		"password": {"a passable password"},
	})
	requireRedirect(t, resp, "/complete-registration")

	t.Run("gate holds until the basic profile lands", func(t *testing.T) {
		resp := app.get(t, client, "/shop")
		requireRedirect(t, resp, "/complete-registration")
	})

	resp = app.postForm(t, client, "/complete-registration", url.Values{
		"first_name": {"Ada"},
		"last_name":  {"Okafor"},
	})
	requireRedirect(t, resp, "/shop")

	t.Run("shop opens once registration settles", func(t *testing.T) {
		resp := app.get(t, client, "/shop")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "No products listed yet")
	})

	t.Run("upload stays gated for non-sellers", func(t *testing.T) {
		resp := app.get(t, client, "/upload-product")
		requireRedirect(t, resp, "/shop")
	})
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)
	app.registerAndCompleteBasic(t, client, "known@example.com", false)

	fresh := app.browser(t)

	t.Run("wrong password re-renders with an error", func(t *testing.T) {
		resp := app.postForm(t, fresh, "/login", url.Values{
			"email":    {"known@example.com"},
			"password": {"not the password"},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "Email or password is incorrect")
	})

	t.Run("unknown email gets the identical answer", func(t *testing.T) {
		resp := app.postForm(t, fresh, "/login", url.Values{
			"email":    {"stranger@example.com"},
			"password": {"whatever"},
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "Email or password is incorrect")
	})

	t.Run("correct credentials go to the shop", func(t *testing.T) {
		resp := app.postForm(t, fresh, "/login", url.Values{
			"email":    {"known@example.com"},
			"password": {"a passable password"},
		})
		requireRedirect(t, resp, "/shop")
	})
}

func TestGoogleSignInNewUser(t *testing.T) {
	app := newTestApp(t, map[string]any{
		"sub":   "google-sub-http",
		"email": "fresh@example.com",
	})
	client := app.browser(t)

	resp := app.get(t, client, "/auth/google")
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	consent, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	t.Run("state mismatch is rejected", func(t *testing.T) {
		resp := app.get(t, client, "/auth/google/complete-registration?code=x&state=wrong")
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("valid callback lands on the basic form", func(t *testing.T) {
		resp := app.get(t, client,
			"/auth/google/complete-registration?code=fake-code&state="+url.QueryEscape(state))
		requireRedirect(t, resp, "/complete-registration")
	})

	t.Run("the identity was reconciled once", func(t *testing.T) {
		identity, err := app.Store.Identities().GetIdentityByGoogleID(context.Background(), "google-sub-http")
		require.NoError(t, err)
		require.Equal(t, "fresh@example.com", identity.Email)
	})
}

func TestGoogleSignInWithoutEmail(t *testing.T) {
	app := newTestApp(t, map[string]any{
		"sub": "google-sub-no-email",
	})
	client := app.browser(t)

	resp := app.get(t, client, "/auth/google")
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	consent, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)

	resp = app.get(t, client,
		"/auth/google/complete-registration?code=fake-code&state="+url.QueryEscape(state))
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := readBody(t, resp)
	require.Contains(t, body, "Google did not supply an email address")
	require.Contains(t, body, "Create an account")

	t.Run("no identity was created", func(t *testing.T) {
		_, err := app.Store.Identities().GetIdentityByGoogleID(context.Background(), "google-sub-no-email")
		require.Error(t, err)
	})
}

func TestSellerJourney(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)
	app.registerAndCompleteBasic(t, client, "seller@example.com", true)

	t.Run("upload is gated until the seller form lands", func(t *testing.T) {
		resp := app.get(t, client, "/upload-product")
		requireRedirect(t, resp, "/complete-seller-registration")
	})

	resp := app.postForm(t, client, "/complete-seller-registration", url.Values{
		"organisation_name":  {"Ada Ceramics"},
		"business_type":      {"sole trader"},
		"employment_history": {"Studio potter, 2015-2020\nOwn studio since 2020"},
	})
	requireRedirect(t, resp, "/shop")

	t.Run("upload form opens once seller registration settles", func(t *testing.T) {
		resp := app.get(t, client, "/upload-product")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "Upload a product")
	})

	t.Run("a malformed stock value is rejected, not zeroed", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("product_name", "Stoneware mug"))
		require.NoError(t, mw.WriteField("stock", "a dozen"))
		require.NoError(t, mw.WriteField("price_cents", "3500"))
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/upload-product", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp, err := client.Do(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, readBody(t, resp), "Stock and price must be whole numbers")

		listings, err := app.Store.Listings().ListListings(context.Background())
		require.NoError(t, err)
		require.Empty(t, listings)
	})

	t.Run("a product upload creates one listing with the asset ref", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("product_name", "Stoneware mug"))
		require.NoError(t, mw.WriteField("stock", "12"))
		require.NoError(t, mw.WriteField("price_cents", "3500"))
		require.NoError(t, mw.WriteField("description", "Hand thrown."))
		part, err := mw.CreateFormFile("image", "mug.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-png-bytes"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, app.Server.URL+"/upload-product", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp, err := client.Do(req)
		require.NoError(t, err)
		requireRedirect(t, resp, "/shop")

		listings, err := app.Store.Listings().ListListings(context.Background())
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.Equal(t, "Stoneware mug", listings[0].ProductName)
		require.Equal(t, "https://cdn.example/objects/test", listings[0].ImageRef)
	})

	t.Run("the listing shows up in the shop", func(t *testing.T) {
		resp := app.get(t, client, "/shop")
		body := readBody(t, resp)
		require.Contains(t, body, "Stoneware mug")
		require.Contains(t, body, "$35.00")
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)
	app.registerAndCompleteBasic(t, client, "leaver@example.com", false)

	resp := app.get(t, client, "/logout")
	requireRedirect(t, resp, "/login")

	t.Run("the session is gone", func(t *testing.T) {
		resp := app.get(t, client, "/shop")
		requireRedirect(t, resp, "/login")
	})
}

func TestHealthEndpoints(t *testing.T) {
	app := newTestApp(t, nil)
	client := app.browser(t)

	t.Run("livez", func(t *testing.T) {
		resp := app.get(t, client, "/livez")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "test", health.Version)
	})

	t.Run("readyz reports the database check", func(t *testing.T) {
		resp := app.get(t, client, "/readyz")
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})
}
