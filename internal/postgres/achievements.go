package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/whosthatpokemon/internal/domain"
)

// ListAchievements returns every achievement with the user's unlock state.
func (r *Repository) ListAchievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	query := `
		SELECT a.id, a.name, a.description, a.icon, a.category, a.rarity,
			COALESCE(ua.progress, 0), COALESCE(ua.is_unlocked, FALSE), ua.unlocked_at
		FROM achievements a
		LEFT JOIN user_achievements ua ON a.id = ua.achievement_id AND ua.user_id = $1
		WHERE a.is_active
		ORDER BY a.id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.Category, &a.Rarity,
			&a.Progress, &a.IsUnlocked, &a.UnlockedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// UnlockAchievements records the given achievement ids for the user and
// returns the ones that were newly unlocked. Re-unlocking is a no-op.
func (r *Repository) UnlockAchievements(ctx context.Context, userID string, ids []string) ([]string, error) {
	var unlocked []string
	for _, id := range ids {
		query := `
			INSERT INTO user_achievements (user_id, achievement_id, progress, is_unlocked, unlocked_at)
			VALUES ($1, $2, 100, TRUE, NOW())
			ON CONFLICT (user_id, achievement_id) DO UPDATE SET
				is_unlocked = TRUE,
				progress = 100,
				unlocked_at = COALESCE(user_achievements.unlocked_at, NOW())
			WHERE NOT user_achievements.is_unlocked
			RETURNING achievement_id
		`
		var returned string
		err := r.pool.QueryRow(ctx, query, userID, id).Scan(&returned)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("unlocking achievement %s: %w", id, err)
		}
		unlocked = append(unlocked, returned)
	}
	return unlocked, nil
}
