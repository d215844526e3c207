package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/whosthatpokemon/internal/domain"
)

// CreateSession persists a new open game session
func (r *Repository) CreateSession(ctx context.Context, s *domain.GameSession) error {
	query := `
		INSERT INTO game_sessions (id, user_id, pokemon_id, difficulty, game_mode, generation,
			time_limit, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID, s.UserID, s.PokemonID, s.Difficulty, s.GameMode, s.Generation, s.TimeLimit,
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetOpenSession loads an open session owned by the user together with the
// name of its Pokémon and the user's running streak going into the guess.
// Completed or foreign sessions are not found.
func (r *Repository) GetOpenSession(ctx context.Context, sessionID, userID string) (session *domain.GameSession, answer string, priorStreak int, err error) {
	query := `
		SELECT gs.id, gs.user_id, gs.pokemon_id, gs.difficulty, gs.game_mode, gs.generation,
			gs.time_limit, gs.hints_used, gs.started_at, pc.name, u.current_streak
		FROM game_sessions gs
		JOIN pokemon_cache pc ON gs.pokemon_id = pc.id
		JOIN users u ON gs.user_id = u.id
		WHERE gs.id = $1 AND gs.user_id = $2 AND NOT gs.is_completed
	`
	var s domain.GameSession
	err = r.pool.QueryRow(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.PokemonID, &s.Difficulty, &s.GameMode, &s.Generation,
		&s.TimeLimit, &s.HintsUsed, &s.StartedAt, &answer, &priorStreak,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", 0, domain.ErrSessionNotFound
		}
		return nil, "", 0, fmt.Errorf("getting open session: %w", err)
	}
	return &s, answer, priorStreak, nil
}

// SessionOutcome is the single outcome written when a guess resolves a
// session.
type SessionOutcome struct {
	SelectedAnswer string
	Correct        bool
	TimeTaken      float64
	Score          int
	HintsUsed      int
}

// CompleteSession atomically marks a session completed and records its
// outcome; the conditional update means exactly one concurrent submission
// wins. The user's running streak is advanced (or reset) in the same
// transaction and the new value returned.
func (r *Repository) CompleteSession(ctx context.Context, sessionID, userID string, outcome SessionOutcome) (won bool, streak int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if outcome.Correct {
		err = tx.QueryRow(ctx, `
			UPDATE users SET current_streak = current_streak + 1 WHERE id = $1
			RETURNING current_streak
		`, userID).Scan(&streak)
	} else {
		err = tx.QueryRow(ctx, `
			UPDATE users SET current_streak = 0 WHERE id = $1
			RETURNING current_streak
		`, userID).Scan(&streak)
	}
	if err != nil {
		return false, 0, fmt.Errorf("updating streak: %w", err)
	}

	var id string
	err = tx.QueryRow(ctx, `
		UPDATE game_sessions
		SET selected_answer = $3,
			correct_guess = $4,
			time_taken = $5,
			score = $6,
			streak = $7,
			hints_used = $8,
			is_completed = TRUE,
			completed_at = now()
		WHERE id = $1 AND user_id = $2 AND NOT is_completed
		RETURNING id
	`, sessionID, userID,
		outcome.SelectedAnswer, outcome.Correct, outcome.TimeTaken, outcome.Score,
		streak, outcome.HintsUsed,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race or the session was never open; nothing committed.
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("completing session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("committing transaction: %w", err)
	}
	return true, streak, nil
}

// GetCompletedSession loads a completed session owned by the user
func (r *Repository) GetCompletedSession(ctx context.Context, sessionID, userID string) (*domain.GameSession, error) {
	query := `
		SELECT id, user_id, pokemon_id, difficulty, game_mode, generation, time_limit,
			selected_answer, correct_guess, time_taken, score, streak, hints_used,
			is_completed, started_at, completed_at
		FROM game_sessions
		WHERE id = $1 AND user_id = $2 AND is_completed
	`
	var s domain.GameSession
	err := r.pool.QueryRow(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.PokemonID, &s.Difficulty, &s.GameMode, &s.Generation, &s.TimeLimit,
		&s.SelectedAnswer, &s.CorrectGuess, &s.TimeTaken, &s.Score, &s.Streak, &s.HintsUsed,
		&s.IsCompleted, &s.StartedAt, &s.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("getting completed session: %w", err)
	}
	return &s, nil
}

// CountCorrectGuesses returns the user's lifetime correct-guess count
func (r *Repository) CountCorrectGuesses(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM game_sessions WHERE user_id = $1 AND correct_guess`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting correct guesses: %w", err)
	}
	return count, nil
}

// GetHistory retrieves a page of the user's completed sessions, most recent
// first, joined with the guessed Pokémon.
func (r *Repository) GetHistory(ctx context.Context, userID string, page, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT gs.id, gs.user_id, gs.pokemon_id, gs.difficulty, gs.game_mode, gs.generation,
			gs.time_limit, gs.selected_answer, gs.correct_guess, gs.time_taken, gs.score,
			gs.streak, gs.hints_used, gs.is_completed, gs.started_at, gs.completed_at,
			pc.name, pc.sprite_url
		FROM game_sessions gs
		JOIN pokemon_cache pc ON gs.pokemon_id = pc.id
		WHERE gs.user_id = $1 AND gs.is_completed
		ORDER BY gs.completed_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("getting history: %w", err)
	}
	defer rows.Close()

	var history []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.PokemonID, &e.Difficulty, &e.GameMode, &e.Generation,
			&e.TimeLimit, &e.SelectedAnswer, &e.CorrectGuess, &e.TimeTaken, &e.Score,
			&e.Streak, &e.HintsUsed, &e.IsCompleted, &e.StartedAt, &e.CompletedAt,
			&e.PokemonName, &e.SpriteURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

// GetStats aggregates the user's completed sessions
func (r *Repository) GetStats(ctx context.Context, userID string) (*domain.GameStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN correct_guess THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(score), 0),
			COALESCE(MAX(streak), 0),
			COALESCE(AVG(time_taken), 0),
			COALESCE(ROUND(SUM(CASE WHEN correct_guess THEN 1 ELSE 0 END)::numeric / NULLIF(COUNT(*), 0) * 100, 2), 0)
		FROM game_sessions
		WHERE user_id = $1 AND is_completed
	`
	var stats domain.GameStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalGames,
		&stats.CorrectGuesses,
		&stats.TotalScore,
		&stats.BestStreak,
		&stats.AverageTime,
		&stats.Accuracy,
	)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return &stats, nil
}
