package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/whosthatpokemon/internal/config"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE,
			password_hash VARCHAR(255),
			google_id VARCHAR(64) UNIQUE,
			is_guest BOOLEAN NOT NULL DEFAULT FALSE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			avatar_url TEXT,
			poke_energy INT NOT NULL DEFAULT 20,
			energy_reset_at TIMESTAMPTZ,
			current_streak INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_active_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS pokemon_cache (
			id INT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			sprite_url TEXT NOT NULL DEFAULT '',
			types JSONB NOT NULL DEFAULT '[]',
			stats JSONB NOT NULL DEFAULT '{}',
			abilities JSONB NOT NULL DEFAULT '[]',
			height INT NOT NULL DEFAULT 0,
			weight INT NOT NULL DEFAULT 0,
			base_experience INT NOT NULL DEFAULT 0,
			is_legendary BOOLEAN NOT NULL DEFAULT FALSE,
			is_mythical BOOLEAN NOT NULL DEFAULT FALSE,
			generation INT NOT NULL,
			cached_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			pokemon_id INT NOT NULL,
			difficulty VARCHAR(10) NOT NULL,
			game_mode VARCHAR(20) NOT NULL,
			generation INT,
			time_limit INT NOT NULL,
			selected_answer TEXT,
			correct_guess BOOLEAN,
			time_taken DOUBLE PRECISION,
			score INT,
			streak INT NOT NULL DEFAULT 0,
			hints_used INT NOT NULL DEFAULT 0,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			started_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboards (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			period VARCHAR(10) NOT NULL,
			score BIGINT NOT NULL DEFAULT 0,
			correct_guesses BIGINT NOT NULL DEFAULT 0,
			total_games BIGINT NOT NULL DEFAULT 0,
			period_start TIMESTAMPTZ NOT NULL,
			period_end TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, period, period_start)
		)`,
		`CREATE TABLE IF NOT EXISTS achievements (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon VARCHAR(16) NOT NULL DEFAULT '',
			category VARCHAR(32) NOT NULL DEFAULT 'general',
			rarity VARCHAR(16) NOT NULL DEFAULT 'common',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_achievements (
			user_id UUID NOT NULL REFERENCES users(id),
			achievement_id VARCHAR(64) NOT NULL REFERENCES achievements(id),
			progress INT NOT NULL DEFAULT 0,
			is_unlocked BOOLEAN NOT NULL DEFAULT FALSE,
			unlocked_at TIMESTAMPTZ,
			PRIMARY KEY (user_id, achievement_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pokemon_cache_name ON pokemon_cache(name)`,
		`CREATE INDEX IF NOT EXISTS idx_pokemon_cache_generation ON pokemon_cache(generation)`,
		`CREATE INDEX IF NOT EXISTS idx_game_sessions_user ON game_sessions(user_id, completed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_game_sessions_completed ON game_sessions(completed_at) WHERE is_completed`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboards_window ON leaderboards(period, period_start, score DESC)`,
		`INSERT INTO achievements (id, name, description, icon, category, rarity) VALUES
			('first-correct', 'First Steps', 'Make your first correct guess!', '🎯', 'progress', 'common'),
			('streak-5', 'Getting Hot', 'Get a streak of 5 or more!', '🔥', 'streak', 'uncommon'),
			('streak-10', 'On Fire', 'Get a streak of 10 or more!', '🔥🔥', 'streak', 'rare'),
			('speed-demon', 'Speed Demon', 'Guess correctly in under 5 seconds!', '⚡', 'speed', 'uncommon'),
			('high-score', 'High Scorer', 'Score 150+ points in a single guess!', '⭐', 'score', 'rare')
			ON CONFLICT (id) DO NOTHING`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
