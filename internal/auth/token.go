package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// claims is the JWT payload for both access and refresh tokens. The Type
// field keeps the two from being used interchangeably.
type claims struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Type    string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the access/refresh token pair.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a manager from auth configuration.
func NewTokenManager(cfg *config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssuePair signs a fresh access and refresh token for the user.
func (m *TokenManager) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	access, err := m.sign(user, tokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := m.sign(user, tokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *TokenManager) sign(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID:  user.ID,
		IsGuest: user.IsGuest,
		Type:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.secret)
}

func (m *TokenManager) parse(tokenString, wantType string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Type != wantType {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

// VerifyAccess validates an access token and returns the user id and guest
// flag baked into it.
func (m *TokenManager) VerifyAccess(tokenString string) (userID string, isGuest bool, err error) {
	c, err := m.parse(tokenString, tokenTypeAccess)
	if err != nil {
		return "", false, err
	}
	return c.UserID, c.IsGuest, nil
}

// VerifyRefresh validates a refresh token and returns the user id.
func (m *TokenManager) VerifyRefresh(tokenString string) (string, error) {
	c, err := m.parse(tokenString, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}
