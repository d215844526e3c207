package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/whosthatpokemon/internal/domain"
)

// UpsertLeaderboardRow adds a completed game's totals to the user's row for
// one period window, creating the row on first update. Accumulation is
// additive; exactly one row exists per (user, period, window).
func (r *Repository) UpsertLeaderboardRow(ctx context.Context, row domain.LeaderboardRow) error {
	query := `
		INSERT INTO leaderboards (id, user_id, period, score, correct_guesses, total_games,
			period_start, period_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, period, period_start) DO UPDATE SET
			score = leaderboards.score + EXCLUDED.score,
			correct_guesses = leaderboards.correct_guesses + EXCLUDED.correct_guesses,
			total_games = leaderboards.total_games + EXCLUDED.total_games
	`
	_, err := r.pool.Exec(ctx, query,
		uuid.New().String(),
		row.UserID,
		row.Period,
		row.Score,
		row.CorrectGuesses,
		row.TotalGames,
		row.PeriodStart,
		row.PeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("upserting leaderboard row: %w", err)
	}
	return nil
}

// QueryLeaderboard aggregates completed sessions within a window, grouped by
// user and ordered by total score. Ranks are assigned by row position within
// the page (offset + index + 1).
func (r *Repository) QueryLeaderboard(ctx context.Context, q domain.LeaderboardQuery, start, end time.Time) ([]domain.LeaderboardEntry, error) {
	conditions := []string{"gs.is_completed", "gs.completed_at >= $1", "gs.completed_at < $2"}
	args := []any{start, end}

	if q.GameMode != nil {
		args = append(args, *q.GameMode)
		conditions = append(conditions, fmt.Sprintf("gs.game_mode = $%d", len(args)))
	}
	if q.Difficulty != nil {
		args = append(args, *q.Difficulty)
		conditions = append(conditions, fmt.Sprintf("gs.difficulty = $%d", len(args)))
	}

	offset := (q.Page - 1) * q.Limit
	args = append(args, q.Limit, offset)

	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.is_guest, u.avatar_url,
			SUM(gs.score) AS total_score,
			MAX(gs.streak) AS best_streak,
			COUNT(gs.id) AS total_games,
			SUM(CASE WHEN gs.correct_guess THEN 1 ELSE 0 END) AS correct_guesses,
			AVG(gs.time_taken) AS average_time
		FROM users u
		JOIN game_sessions gs ON u.id = gs.user_id
		WHERE %s
		GROUP BY u.id, u.username, u.is_guest, u.avatar_url
		ORDER BY total_score DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		err := rows.Scan(
			&e.UserID, &e.Username, &e.IsGuest, &e.AvatarURL,
			&e.TotalScore, &e.BestStreak, &e.TotalGames, &e.CorrectGuesses, &e.AverageTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		e.Rank = int64(offset + len(entries) + 1)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// WindowScores returns the accumulated scores of one period window, keyed by
// user id (used to rebuild the realtime leaderboard).
func (r *Repository) WindowScores(ctx context.Context, period domain.Period, start time.Time) (map[string]int64, error) {
	query := `SELECT user_id, score FROM leaderboards WHERE period = $1 AND period_start = $2`
	rows, err := r.pool.Query(ctx, query, period, start)
	if err != nil {
		return nil, fmt.Errorf("getting window scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var userID string
		var score int64
		if err := rows.Scan(&userID, &score); err != nil {
			return nil, fmt.Errorf("scanning window score: %w", err)
		}
		scores[userID] = score
	}
	return scores, rows.Err()
}
