package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/whosthatpokemon/internal/auth"
	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

func newTestHandler(t *testing.T) (*Handler, *auth.TokenManager) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.RateLimit.Enabled = false

	tokens := auth.NewTokenManager(&cfg.Auth)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := auth.NewService(nil, tokens, nil, logger)

	h := NewHandler(authSvc, nil, nil, nil, nil, nil, cfg, logger)
	return h, tokens
}

func decodeEnvelope(t *testing.T, body io.Reader) APIResponse {
	t.Helper()

	var resp APIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp.Body)
	if !envelope.Success {
		t.Error("Success = false")
	}
	if envelope.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["status"] != "healthy" {
		t.Errorf("Data = %v", envelope.Data)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	for _, header := range []string{"", "Bearer ", "Token abc", "garbage"} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/game/history", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		envelope := decodeEnvelope(t, resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, resp.StatusCode)
		}
		if envelope.Success || envelope.Error == "" {
			t.Errorf("header %q: envelope = %+v", header, envelope)
		}
	}
}

func TestAuthMiddlewarePassesIdentity(t *testing.T) {
	t.Parallel()

	h, tokens := newTestHandler(t)

	pair, err := tokens.IssuePair(&domain.User{ID: "user-42", IsGuest: true})
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userID(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/game/history", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	h.authMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("userID = %q, want user-42", gotUserID)
	}
}

func TestWriteDomainError(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)

	tests := []struct {
		err        error
		wantStatus int
	}{
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{domain.ErrPokemonNotFound, http.StatusNotFound},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrInvalidToken, http.StatusUnauthorized},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrInvalidRequest, http.StatusBadRequest},
		{domain.ErrInvalidDifficulty, http.StatusBadRequest},
		{domain.ErrInvalidPeriod, http.StatusBadRequest},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("pgx: broken pipe"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.writeDomainError(rec, tt.err)

		if rec.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
		envelope := decodeEnvelope(t, rec.Body)
		if envelope.Success {
			t.Errorf("%v: Success = true", tt.err)
		}
		if tt.wantStatus == http.StatusInternalServerError && envelope.Error != domain.ErrInternalError.Error() {
			t.Errorf("internal error leaked: %q", envelope.Error)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/pokemon", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	// A foreign origin gets no allow header.
	req2, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/pokemon", nil)
	req2.Header.Set("Origin", "http://evil.example")
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for foreign origin = %q", got)
	}
}
