package domain

import "errors"

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionNotFound    = errors.New("game session not found")
	ErrPokemonNotFound    = errors.New("pokemon not found")
	ErrNoPokemonMatch     = errors.New("no pokemon found matching criteria")
	ErrInvalidDifficulty  = errors.New("invalid difficulty")
	ErrInvalidPeriod      = errors.New("invalid leaderboard period")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInternalError      = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrPokemonNotFound) ||
		errors.Is(err, ErrNoPokemonMatch)
}
