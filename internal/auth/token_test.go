package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

func newTestTokenManager(accessTTL, refreshTTL time.Duration) *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
	})
}

func TestIssuePairRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(time.Hour, 24*time.Hour)
	user := &domain.User{ID: "user-1", IsGuest: true}

	pair, err := m.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", pair.ExpiresIn)
	}

	userID, isGuest, err := m.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess() error: %v", err)
	}
	if userID != "user-1" || !isGuest {
		t.Errorf("VerifyAccess() = (%s, %v), want (user-1, true)", userID, isGuest)
	}

	refreshID, err := m.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefresh() error: %v", err)
	}
	if refreshID != "user-1" {
		t.Errorf("VerifyRefresh() = %s, want user-1", refreshID)
	}
}

func TestTokenTypesNotInterchangeable(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(time.Hour, 24*time.Hour)
	pair, err := m.IssuePair(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	if _, _, err := m.VerifyAccess(pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("refresh token accepted as access token, err = %v", err)
	}
	if _, err := m.VerifyRefresh(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("access token accepted as refresh token, err = %v", err)
	}
}

func TestVerifyAccessWrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(time.Hour, 24*time.Hour)
	pair, err := m.IssuePair(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	other := NewTokenManager(&config.AuthConfig{
		JWTSecret:       "other-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if _, _, err := other.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("token signed with another secret accepted, err = %v", err)
	}
}

func TestVerifyAccessExpired(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(-time.Minute, 24*time.Hour)
	pair, err := m.IssuePair(&domain.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}

	if _, _, err := m.VerifyAccess(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expired token accepted, err = %v", err)
	}
}

func TestVerifyAccessGarbage(t *testing.T) {
	t.Parallel()

	m := newTestTokenManager(time.Hour, 24*time.Hour)
	if _, _, err := m.VerifyAccess("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("garbage token accepted, err = %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pikachu123")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "pikachu123" {
		t.Error("hash should not equal the plaintext")
	}
	if !CheckPassword(hash, "pikachu123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "raichu123") {
		t.Error("wrong password accepted")
	}
}
