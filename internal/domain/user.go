package domain

import "time"

// DailyEnergy is the amount of energy a user is replenished to once per
// calendar day on login.
const DailyEnergy = 20

// User represents a registered, guest, or Google-linked player account.
// Either Email is set (registered) or IsGuest is true; Google-linked users
// may have no password hash.
type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         *string    `json:"email,omitempty"`
	PasswordHash  *string    `json:"-"`
	GoogleID      *string    `json:"-"`
	IsGuest       bool       `json:"isGuest"`
	IsVerified    bool       `json:"isVerified"`
	AvatarURL     *string    `json:"avatar,omitempty"`
	Energy        int        `json:"pokeEnergy"`
	EnergyResetAt *time.Time `json:"energyResetAt,omitempty"`
	CurrentStreak int        `json:"currentStreak"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastActiveAt  *time.Time `json:"lastActive,omitempty"`
}

// GoogleProfile holds the subset of the OpenID Connect userinfo response
// the server cares about.
type GoogleProfile struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture"`
}

// TokenPair is the signed access/refresh token pair issued on login.
type TokenPair struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuthResult is returned by every login variant.
type AuthResult struct {
	User *User `json:"user"`
	TokenPair
}
