// Package googleauth is a minimal client for Google's OAuth2
// authorization-code flow: build the consent URL, exchange the returned code,
// and read the identity claims out of the ID token. It deliberately covers
// only what a relying party needs for sign-in.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAuthURL is Google's OAuth2 consent endpoint.
	DefaultAuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	// DefaultTokenURL is Google's code-exchange endpoint.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
)

// Client performs the authorization-code exchange against the provider.
// AuthURL/TokenURL are overridable so tests can point at a local stub.
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL    string
	TokenURL   string
	HTTPClient *http.Client
}

// New creates a client with the production Google endpoints.
func New(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		AuthURL:      DefaultAuthURL,
		TokenURL:     DefaultTokenURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthCodeURL builds the consent-screen URL the browser is redirected to.
// state is the caller's anti-forgery value, echoed back on the callback.
func (c *Client) AuthCodeURL(state string, scopes ...string) string {
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.ClientID)
	q.Set("redirect_uri", c.RedirectURL)
	q.Set("scope", strings.Join(scopes, " "))
	q.Set("state", state)

	return c.AuthURL + "?" + q.Encode()
}

// TokenResponse is the provider's answer to a successful code exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	IDToken     string `json:"id_token"`
}

// Exchange redeems an authorization code for tokens. Any non-200 answer or
// malformed body is reported as *ProviderError so callers can treat every
// provider-side failure uniformly.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.ClientID)
	form.Set("client_secret", c.ClientSecret)
	form.Set("redirect_uri", c.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("googleauth: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Op: "exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{Op: "exchange", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Op:         "exchange",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &ProviderError{Op: "exchange", Err: err}
	}
	if token.IDToken == "" {
		return nil, &ProviderError{Op: "exchange", Err: fmt.Errorf("response missing id_token")}
	}

	return &token, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
