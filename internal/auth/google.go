package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleVerifier exchanges OAuth authorization codes for Google profiles.
type GoogleVerifier struct {
	cfg        *config.OAuthConfig
	httpClient *http.Client

	// Endpoints are fields so tests can point them at a local server.
	tokenURL    string
	userInfoURL string
}

// NewGoogleVerifier builds a verifier from OAuth configuration.
func NewGoogleVerifier(cfg *config.OAuthConfig) *GoogleVerifier {
	return &GoogleVerifier{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		tokenURL:    googleTokenURL,
		userInfoURL: googleUserInfoURL,
	}
}

// AuthURL returns the consent page URL the client should redirect to.
func (v *GoogleVerifier) AuthURL() string {
	q := url.Values{
		"client_id":     {v.cfg.GoogleClientID},
		"redirect_uri":  {v.cfg.GoogleRedirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"access_type":   {"online"},
	}
	return googleAuthURL + "?" + q.Encode()
}

// Exchange swaps an authorization code for the user's Google profile.
func (v *GoogleVerifier) Exchange(ctx context.Context, code string) (*domain.GoogleProfile, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {v.cfg.GoogleClientID},
		"client_secret": {v.cfg.GoogleClientSecret},
		"redirect_uri":  {v.cfg.GoogleRedirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrInvalidCredentials
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, domain.ErrInvalidCredentials
	}

	return v.fetchProfile(ctx, tokenResp.AccessToken)
}

func (v *GoogleVerifier) fetchProfile(ctx context.Context, accessToken string) (*domain.GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrInvalidCredentials
	}

	var profile domain.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding user info: %w", err)
	}
	if profile.Subject == "" {
		return nil, domain.ErrInvalidCredentials
	}
	return &profile, nil
}
