package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/postgres"
	"github.com/whosthatpokemon/internal/redis"
)

// Broadcaster pushes fresh standings to realtime subscribers. Implemented by
// the websocket hub; nil disables broadcasting.
type Broadcaster interface {
	BroadcastLeaderboard(period domain.Period, entries []domain.LeaderboardEntry)
}

// broadcastTopN is how many entries each realtime update carries.
const broadcastTopN = 10

// Service accumulates game results into the period leaderboards. Postgres
// holds the durable rows, Redis the realtime ranks, and the hub fans updates
// out to websocket subscribers.
type Service struct {
	repo        *postgres.Repository
	realtime    *redis.Realtime
	broadcaster Broadcaster
	cfg         *config.GameConfig
	logger      *slog.Logger
}

// NewService creates a new leaderboard service.
func NewService(repo *postgres.Repository, realtime *redis.Realtime, broadcaster Broadcaster, cfg *config.GameConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		realtime:    realtime,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
	}
}

// Apply folds one game result into every period window it falls in. The
// Postgres upsert is authoritative; Redis and the broadcast are best-effort
// and self-heal on the next sync.
func (s *Service) Apply(ctx context.Context, event domain.GameResultEvent) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	for _, period := range domain.Periods() {
		start, end := period.Window(ts)
		err := s.repo.UpsertLeaderboardRow(ctx, domain.LeaderboardRow{
			UserID:         event.UserID,
			Period:         period,
			Score:          event.Score,
			CorrectGuesses: event.CorrectGuesses,
			TotalGames:     event.TotalGames,
			PeriodStart:    start,
			PeriodEnd:      end,
		})
		if err != nil {
			return fmt.Errorf("applying result to %s leaderboard: %w", period, err)
		}

		if s.realtime != nil {
			_, err := s.realtime.IncrementScore(ctx, period, start, end, event.UserID, event.Score)
			if err != nil {
				s.logger.Warn("failed to update realtime leaderboard",
					"period", period,
					"user_id", event.UserID,
					"error", err)
			}
		}
	}

	s.broadcast(ctx, ts)
	return nil
}

// ApplyBatch folds a batch of results, stopping at the first hard failure so
// the consumer can retry without losing the rest.
func (s *Service) ApplyBatch(ctx context.Context, events []domain.GameResultEvent) error {
	for _, event := range events {
		if err := s.Apply(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// broadcast pushes the current top of each period window to subscribers.
func (s *Service) broadcast(ctx context.Context, ts time.Time) {
	if s.broadcaster == nil || s.realtime == nil {
		return
	}
	for _, period := range domain.Periods() {
		start, _ := period.Window(ts)
		entries, err := s.realtime.TopN(ctx, period, start, broadcastTopN)
		if err != nil {
			s.logger.Warn("failed to load realtime top for broadcast",
				"period", period,
				"error", err)
			continue
		}
		s.broadcaster.BroadcastLeaderboard(period, entries)
	}
}

// PublishResult lets the service stand in for the Kafka producer when the
// broker is disabled; results are applied synchronously in-process.
func (s *Service) PublishResult(ctx context.Context, event domain.GameResultEvent) error {
	return s.Apply(ctx, event)
}

// Query returns a page of a period leaderboard with user details, aggregated
// from completed sessions in the current window.
func (s *Service) Query(ctx context.Context, q domain.LeaderboardQuery) ([]domain.LeaderboardEntry, error) {
	if !q.Period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = s.cfg.DefaultPageSize
	}
	if q.Limit > s.cfg.MaxPageSize {
		q.Limit = s.cfg.MaxPageSize
	}

	start, end := q.Period.Window(time.Now())
	return s.repo.QueryLeaderboard(ctx, q, start, end)
}

// Top returns the realtime top N for a period from Redis, falling back to
// Postgres when Redis is unavailable.
func (s *Service) Top(ctx context.Context, period domain.Period, n int) ([]domain.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}
	if n < 1 || n > s.cfg.MaxPageSize {
		n = broadcastTopN
	}

	start, end := period.Window(time.Now())
	if s.realtime != nil {
		entries, err := s.realtime.TopN(ctx, period, start, n)
		if err == nil {
			return entries, nil
		}
		s.logger.Warn("realtime top unavailable, falling back to postgres",
			"period", period,
			"error", err)
	}
	return s.repo.QueryLeaderboard(ctx, domain.LeaderboardQuery{
		Period: period,
		Page:   1,
		Limit:  n,
	}, start, end)
}

// UserDailyRank returns the user's 1-indexed rank on today's leaderboard, or
// zero when the user has no score yet.
func (s *Service) UserDailyRank(ctx context.Context, userID string) (int64, error) {
	if s.realtime == nil {
		return 0, nil
	}
	start, _ := domain.PeriodDaily.Window(time.Now())
	entry, err := s.realtime.UserRank(ctx, domain.PeriodDaily, start, userID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return entry.Rank, nil
}

// Sync rebuilds the current Redis window of every period from the Postgres
// rows. Run periodically so realtime ranks recover from missed increments.
func (s *Service) Sync(ctx context.Context) error {
	if s.realtime == nil {
		return nil
	}
	now := time.Now()
	for _, period := range domain.Periods() {
		start, end := period.Window(now)
		scores, err := s.repo.WindowScores(ctx, period, start)
		if err != nil {
			return fmt.Errorf("syncing %s leaderboard: %w", period, err)
		}
		if err := s.realtime.ReplaceWindow(ctx, period, start, end, scores); err != nil {
			return fmt.Errorf("syncing %s leaderboard: %w", period, err)
		}
		s.logger.Debug("leaderboard window synced",
			"period", period,
			"entries", len(scores))
	}
	return nil
}
