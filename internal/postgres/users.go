package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/whosthatpokemon/internal/domain"
)

const userColumns = `id, username, email, password_hash, google_id, is_guest, is_verified,
	avatar_url, poke_energy, energy_reset_at, current_streak, created_at, last_active_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GoogleID,
		&u.IsGuest,
		&u.IsVerified,
		&u.AvatarURL,
		&u.Energy,
		&u.EnergyResetAt,
		&u.CurrentStreak,
		&u.CreatedAt,
		&u.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user record. Duplicate email or Google subject
// maps to domain.ErrUserExists.
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, google_id, is_guest, is_verified,
			avatar_url, poke_energy, energy_reset_at, created_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now(), now())
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.GoogleID,
		u.IsGuest,
		u.IsVerified,
		u.AvatarURL,
		domain.DailyEnergy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUserExists
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetUserByEmail retrieves a registered (non-guest) user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND NOT is_guest`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// UserExists reports whether a user with the given email or username exists
func (r *Repository) UserExists(ctx context.Context, email, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, email, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates the allowed profile fields that are present
func (r *Repository) UpdateProfile(ctx context.Context, userID string, username, email, avatarURL *string) (*domain.User, error) {
	var sets []string
	var args []any

	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("username", username)
	add("email", email)
	add("avatar_url", avatarURL)

	if len(sets) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// ReplenishEnergy bumps the user's last-active timestamp, resets energy if
// it has not been reset this calendar day, and returns the fresh user row.
// The date comparison happens in SQL so concurrent logins replenish at most
// once.
func (r *Repository) ReplenishEnergy(ctx context.Context, userID string) (*domain.User, error) {
	touch := `UPDATE users SET last_active_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, touch, userID); err != nil {
		return nil, fmt.Errorf("updating last active: %w", err)
	}

	reset := `
		UPDATE users
		SET poke_energy = $2,
			energy_reset_at = now()
		WHERE id = $1
		  AND (energy_reset_at IS NULL OR date_trunc('day', energy_reset_at) <> date_trunc('day', now()))
	`
	if _, err := r.pool.Exec(ctx, reset, userID, domain.DailyEnergy); err != nil {
		return nil, fmt.Errorf("replenishing energy: %w", err)
	}
	return r.GetUserByID(ctx, userID)
}

// ResolveGoogleUser finds or creates the local account for a Google profile:
// first by linked subject, then by email (linking the subject onto that
// account), else a new user is created. Profile fields refresh
// non-destructively. The whole resolution runs in one transaction.
func (r *Repository) ResolveGoogleUser(ctx context.Context, p domain.GoogleProfile) (*domain.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var name, avatar, email *string
	if p.Name != "" {
		name = &p.Name
	}
	if p.AvatarURL != "" {
		avatar = &p.AvatarURL
	}
	if p.Email != "" {
		email = &p.Email
	}

	var userID string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE google_id = $1`, p.Subject).Scan(&userID)
	switch {
	case err == nil:
		_, err = tx.Exec(ctx, `
			UPDATE users
			SET username = COALESCE($2, username),
				avatar_url = COALESCE($3, avatar_url),
				last_active_at = now()
			WHERE id = $1
		`, userID, name, avatar)
		if err != nil {
			return nil, fmt.Errorf("refreshing google profile: %w", err)
		}

	case errors.Is(err, pgx.ErrNoRows):
		if email != nil {
			err = tx.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, *email).Scan(&userID)
		} else {
			err = pgx.ErrNoRows
		}
		if err == nil {
			_, err = tx.Exec(ctx, `
				UPDATE users
				SET google_id = $2,
					username = COALESCE($3, username),
					avatar_url = COALESCE($4, avatar_url),
					is_guest = FALSE,
					is_verified = TRUE,
					last_active_at = now()
				WHERE id = $1
			`, userID, p.Subject, name, avatar)
			if err != nil {
				return nil, fmt.Errorf("linking google subject: %w", err)
			}
		} else if errors.Is(err, pgx.ErrNoRows) {
			userID = uuid.New().String()
			username := googleUsername(p, userID)
			_, err = tx.Exec(ctx, `
				INSERT INTO users (id, google_id, username, email, is_guest, is_verified,
					avatar_url, poke_energy, energy_reset_at, created_at, last_active_at)
				VALUES ($1, $2, $3, $4, FALSE, TRUE, $5, $6, now(), now(), now())
			`, userID, p.Subject, username, email, avatar, domain.DailyEnergy)
			if err != nil {
				return nil, fmt.Errorf("creating google user: %w", err)
			}
		} else {
			return nil, fmt.Errorf("looking up user by email: %w", err)
		}

	default:
		return nil, fmt.Errorf("looking up user by google subject: %w", err)
	}

	user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return user, nil
}

func googleUsername(p domain.GoogleProfile, userID string) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return strings.SplitN(p.Email, "@", 2)[0]
	}
	return "trainer_" + userID[:6]
}

// BestScore returns the user's highest single-session score before the given
// time, or zero when no completed sessions exist.
func (r *Repository) BestScore(ctx context.Context, userID string, before time.Time) (int, error) {
	query := `
		SELECT COALESCE(MAX(score), 0)
		FROM game_sessions
		WHERE user_id = $1 AND is_completed AND completed_at < $2
	`
	var best int
	if err := r.pool.QueryRow(ctx, query, userID, before).Scan(&best); err != nil {
		return 0, fmt.Errorf("getting best score: %w", err)
	}
	return best, nil
}
