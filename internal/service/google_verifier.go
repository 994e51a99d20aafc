package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"go-commerce-service/internal/apperror"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity is the subset of the ID token claims the auth flow needs.
type GoogleIdentity struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Audience      string `json:"aud"`
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// HTTPGoogleVerifier validates an ID token against Google's tokeninfo
// endpoint and checks the audience. OAuthConfig backs the server-side
// auth-code exchange variant of the same flow.
type HTTPGoogleVerifier struct {
	client   *http.Client
	clientID string
	baseURL  string
}

func NewGoogleVerifier(client *http.Client, clientID string) *HTTPGoogleVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGoogleVerifier{client: client, clientID: clientID, baseURL: googleTokenInfoURL}
}

// OAuthConfig builds the oauth2 config for the redirect/callback variant.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

func (v *HTTPGoogleVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if idToken == "" {
		return nil, apperror.BadRequest("tokenId is required")
	}

	endpoint := v.baseURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.BadRequest("invalid google token")
	}
	var identity GoogleIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}
	if v.clientID != "" && identity.Audience != v.clientID {
		return nil, apperror.BadRequest("google token audience mismatch")
	}
	if identity.Sub == "" || identity.Email == "" {
		return nil, apperror.BadRequest("invalid google token")
	}
	return &identity, nil
}
