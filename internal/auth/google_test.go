package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

func newTestGoogleVerifier(t *testing.T, tokenHandler, userInfoHandler http.HandlerFunc) *GoogleVerifier {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler)
	mux.HandleFunc("/userinfo", userInfoHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	v := NewGoogleVerifier(&config.OAuthConfig{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		GoogleRedirectURI:  "http://localhost/callback",
	})
	v.tokenURL = srv.URL + "/token"
	v.userInfoURL = srv.URL + "/userinfo"
	return v
}

func TestGoogleAuthURL(t *testing.T) {
	t.Parallel()

	v := NewGoogleVerifier(&config.OAuthConfig{
		GoogleClientID:    "client-id",
		GoogleRedirectURI: "http://localhost/callback",
	})

	u, err := url.Parse(v.AuthURL())
	if err != nil {
		t.Fatalf("parsing auth url: %v", err)
	}
	if u.Host != "accounts.google.com" {
		t.Errorf("host = %s", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" || q.Get("response_type") != "code" {
		t.Errorf("query = %v", q)
	}
	if q.Get("redirect_uri") != "http://localhost/callback" {
		t.Errorf("redirect_uri = %s", q.Get("redirect_uri"))
	}
}

func TestGoogleExchange(t *testing.T) {
	t.Parallel()

	v := newTestGoogleVerifier(t,
		func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Errorf("parsing form: %v", err)
			}
			if got := r.FormValue("grant_type"); got != "authorization_code" {
				t.Errorf("grant_type = %s", got)
			}
			if got := r.FormValue("code"); got != "auth-code" {
				t.Errorf("code = %s", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "google-token"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer google-token" {
				t.Errorf("Authorization = %s", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"sub": "g-123", "email": "ash@example.com", "name": "Ash", "picture": "http://img"}`))
		},
	)

	profile, err := v.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("Exchange() error: %v", err)
	}
	if profile.Subject != "g-123" || profile.Email != "ash@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestGoogleExchangeRejectedCode(t *testing.T) {
	t.Parallel()

	v := newTestGoogleVerifier(t,
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "invalid_grant"}`, http.StatusBadRequest)
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("userinfo should not be called when the exchange fails")
		},
	)

	if _, err := v.Exchange(context.Background(), "bad-code"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGoogleExchangeEmptyToken(t *testing.T) {
	t.Parallel()

	v := newTestGoogleVerifier(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("userinfo should not be called without an access token")
		},
	)

	if _, err := v.Exchange(context.Background(), "code"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestGoogleExchangeMissingSubject(t *testing.T) {
	t.Parallel()

	v := newTestGoogleVerifier(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token": "google-token"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"email": "ash@example.com"}`))
		},
	)

	if _, err := v.Exchange(context.Background(), "code"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}
