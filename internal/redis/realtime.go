package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
)

// Realtime keeps one sorted set per leaderboard period window so the top
// ranks can be read without touching Postgres. Postgres stays the source of
// truth; the sync worker rebuilds these sets periodically.
type Realtime struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRealtime connects to Redis and verifies the connection.
func NewRealtime(cfg *config.RedisConfig, logger *slog.Logger) (*Realtime, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Realtime{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection.
func (s *Realtime) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client.
func (s *Realtime) Client() *redis.Client {
	return s.client
}

// windowKey returns the sorted-set key for one period window.
func (s *Realtime) windowKey(period domain.Period, start time.Time) string {
	return fmt.Sprintf("leaderboard:%s:%s", period, start.UTC().Format("2006-01-02"))
}

// IncrementScore adds delta to a user's score in the given period window and
// returns the new total. The key expires a day after the window closes so
// stale windows clean themselves up.
func (s *Realtime) IncrementScore(ctx context.Context, period domain.Period, start, end time.Time, userID string, delta int64) (int64, error) {
	key := s.windowKey(period, start)

	pipe := s.client.Pipeline()
	incrCmd := pipe.ZIncrBy(ctx, key, float64(delta), userID)
	pipe.ExpireAt(ctx, key, end.Add(24*time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incrementing score: %w", err)
	}

	return int64(incrCmd.Val()), nil
}

// TopN returns the highest-scoring users of a period window, best first.
// Scores come from the sorted set; ranks are 1-indexed.
func (s *Realtime) TopN(ctx context.Context, period domain.Period, start time.Time, n int) ([]domain.LeaderboardEntry, error) {
	key := s.windowKey(period, start)
	results, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			Rank:       int64(i + 1),
			UserID:     result.Member.(string),
			TotalScore: int64(result.Score),
		}
	}
	return entries, nil
}

// UserRank returns a user's rank and score within a period window.
func (s *Realtime) UserRank(ctx context.Context, period domain.Period, start time.Time, userID string) (*domain.LeaderboardEntry, error) {
	key := s.windowKey(period, start)

	pipe := s.client.Pipeline()
	rankCmd := pipe.ZRevRank(ctx, key, userID)
	scoreCmd := pipe.ZScore(ctx, key, userID)
	_, err := pipe.Exec(ctx)
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user rank: %w", err)
	}

	rank, err := rankCmd.Result()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("getting rank result: %w", err)
	}

	score, err := scoreCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("getting score result: %w", err)
	}

	return &domain.LeaderboardEntry{
		Rank:       rank + 1,
		UserID:     userID,
		TotalScore: int64(score),
	}, nil
}

// Count returns the number of users in a period window.
func (s *Realtime) Count(ctx context.Context, period domain.Period, start time.Time) (int64, error) {
	key := s.windowKey(period, start)
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// ReplaceWindow atomically rebuilds a period window's sorted set from the
// given scores. The set is written under a temporary key and renamed so
// readers never see a half-built window.
func (s *Realtime) ReplaceWindow(ctx context.Context, period domain.Period, start, end time.Time, scores map[string]int64) error {
	key := s.windowKey(period, start)
	tmpKey := key + ":rebuild"

	pipe := s.client.Pipeline()
	pipe.Del(ctx, tmpKey)
	for userID, score := range scores {
		pipe.ZAdd(ctx, tmpKey, redis.Z{
			Score:  float64(score),
			Member: userID,
		})
	}
	if len(scores) > 0 {
		pipe.Rename(ctx, tmpKey, key)
		pipe.ExpireAt(ctx, key, end.Add(24*time.Hour))
	} else {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replacing window: %w", err)
	}
	return nil
}
