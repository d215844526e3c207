package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/pokedex"
	"github.com/whosthatpokemon/internal/postgres"
)

// ResultPublisher receives one event per completed guess. Depending on
// deployment this is a Kafka producer or a direct in-process apply.
type ResultPublisher interface {
	PublishResult(ctx context.Context, event domain.GameResultEvent) error
}

// RankReader resolves a user's current daily rank for the end-game summary.
type RankReader interface {
	UserDailyRank(ctx context.Context, userID string) (int64, error)
}

// Service runs the guessing game: rounds, guess resolution, scoring,
// achievements, history, and stats.
type Service struct {
	repo      *postgres.Repository
	pokedex   *pokedex.Service
	publisher ResultPublisher
	ranks     RankReader
	cfg       *config.GameConfig
	logger    *slog.Logger
}

// NewService creates a new game service.
func NewService(repo *postgres.Repository, dex *pokedex.Service, publisher ResultPublisher, ranks RankReader, cfg *config.GameConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		pokedex:   dex,
		publisher: publisher,
		ranks:     ranks,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start opens a new round: picks an answer matching the requested difficulty
// and filters, assembles choices and hints, and persists the open session.
func (s *Service) Start(ctx context.Context, userID string, req domain.StartGameRequest) (*domain.StartGameResponse, error) {
	if req.Difficulty == "" {
		req.Difficulty = domain.DifficultyEasy
	}
	if !req.Difficulty.Valid() {
		return nil, domain.ErrInvalidDifficulty
	}
	if req.GameMode == "" {
		req.GameMode = domain.GameModeClassic
	}
	if req.Generation != nil {
		if _, _, ok := domain.GenerationBounds(*req.Generation); !ok {
			return nil, fmt.Errorf("%w: unknown generation %d", domain.ErrInvalidRequest, *req.Generation)
		}
	}
	timeLimit := req.TimeLimit
	if timeLimit <= 0 {
		timeLimit = req.GameMode.DefaultTimeLimit()
	}

	pokemon, err := s.pokedex.Random(ctx, req.Difficulty, req.Generation, nil)
	if err != nil {
		return nil, err
	}

	session := &domain.GameSession{
		ID:         uuid.New().String(),
		UserID:     userID,
		PokemonID:  pokemon.ID,
		Difficulty: req.Difficulty,
		GameMode:   req.GameMode,
		Generation: req.Generation,
		TimeLimit:  timeLimit,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("round started",
		"session_id", session.ID,
		"user_id", userID,
		"difficulty", req.Difficulty,
		"game_mode", req.GameMode)

	return &domain.StartGameResponse{
		SessionID:     session.ID,
		Pokemon:       pokemon,
		Choices:       s.pokedex.Choices(ctx, pokemon),
		CorrectAnswer: pokemon.Name,
		Hints:         s.pokedex.Hints(ctx, pokemon),
		TimeLimit:     timeLimit,
		Config: domain.StartGameConfig{
			Difficulty: req.Difficulty,
			GameMode:   req.GameMode,
			Generation: req.Generation,
		},
	}, nil
}

// SubmitGuess resolves an open session. Exactly one submission per session
// ever records an outcome; a second concurrent submission gets
// ErrSessionNotFound.
func (s *Service) SubmitGuess(ctx context.Context, userID string, req domain.SubmitGuessRequest) (*domain.GuessResult, error) {
	session, answer, priorStreak, err := s.repo.GetOpenSession(ctx, req.SessionID, userID)
	if err != nil {
		return nil, err
	}

	correct := domain.GuessMatches(req.Guess, answer)
	timeTaken := req.TimeTaken
	if timeTaken < 0 {
		timeTaken = 0
	}
	if timeTaken > float64(session.TimeLimit) {
		timeTaken = float64(session.TimeLimit)
	}

	score := scoreGuess(correct, timeTaken, session.Difficulty, priorStreak, req.HintsUsed)

	won, streak, err := s.repo.CompleteSession(ctx, req.SessionID, userID, postgres.SessionOutcome{
		SelectedAnswer: domain.NormalizeGuess(req.Guess),
		Correct:        correct,
		TimeTaken:      timeTaken,
		Score:          score,
		HintsUsed:      req.HintsUsed,
	})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrSessionNotFound
	}

	achievements := s.resolveAchievements(ctx, userID, correct, streak, timeTaken, score)
	s.publish(ctx, userID, req.SessionID, score, correct)

	return newGuessResult(answer, correct, score, streak, achievements), nil
}

// scoreGuess applies the canonical formula using the streak this guess
// produces: the player's running streak going in, plus one when correct.
func scoreGuess(correct bool, timeTaken float64, difficulty domain.Difficulty, priorStreak, hintsUsed int) int {
	streak := 0
	if correct {
		streak = priorStreak + 1
	}
	return domain.Score(correct, timeTaken, difficulty, streak, hintsUsed)
}

// newGuessResult packages a resolved guess. One guess resolves a round, win
// or lose, so the round is always reported over.
func newGuessResult(answer string, correct bool, score, streak int, achievements []domain.Achievement) *domain.GuessResult {
	return &domain.GuessResult{
		Correct:      answer,
		IsCorrect:    correct,
		Score:        score,
		Streak:       streak,
		Achievements: achievements,
		IsGameOver:   true,
	}
}

// resolveAchievements evaluates and persists unlocks for one guess. Failures
// cost the user a popup, not the guess, so they are logged and swallowed.
func (s *Service) resolveAchievements(ctx context.Context, userID string, correct bool, streak int, timeTaken float64, score int) []domain.Achievement {
	firstCorrect := false
	if correct {
		count, err := s.repo.CountCorrectGuesses(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to count correct guesses", "user_id", userID, "error", err)
		}
		firstCorrect = count == 1
	}

	candidates := domain.UnlockedAchievements(correct, firstCorrect, streak, timeTaken, score)
	if len(candidates) == 0 {
		return nil
	}

	ids := make([]string, len(candidates))
	for i, a := range candidates {
		ids[i] = a.ID
	}
	newIDs, err := s.repo.UnlockAchievements(ctx, userID, ids)
	if err != nil {
		s.logger.Warn("failed to unlock achievements", "user_id", userID, "error", err)
		return nil
	}

	var unlocked []domain.Achievement
	for _, a := range candidates {
		for _, id := range newIDs {
			if a.ID == id {
				now := time.Now()
				a.IsUnlocked = true
				a.UnlockedAt = &now
				unlocked = append(unlocked, a)
			}
		}
	}
	return unlocked
}

// publish emits the guess outcome for leaderboard accumulation. Best-effort:
// a lost event means a stale leaderboard until the next sync, not a failed
// guess.
func (s *Service) publish(ctx context.Context, userID, sessionID string, score int, correct bool) {
	if s.publisher == nil {
		return
	}
	correctGuesses := 0
	if correct {
		correctGuesses = 1
	}
	event := domain.GameResultEvent{
		UserID:         userID,
		SessionID:      sessionID,
		Score:          int64(score),
		CorrectGuesses: int64(correctGuesses),
		TotalGames:     1,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.publisher.PublishResult(ctx, event); err != nil {
		s.logger.Warn("failed to publish game result",
			"session_id", sessionID,
			"error", err)
	}
}

// End closes out a finished game: the final score and streak are read back
// from the completed session rather than trusted from the client, personal
// records are checked against prior history, and the current daily rank is
// attached.
func (s *Service) End(ctx context.Context, userID string, req domain.EndGameRequest) (*domain.EndGameResult, error) {
	session, err := s.repo.GetCompletedSession(ctx, req.SessionID, userID)
	if err != nil {
		return nil, err
	}

	finalScore := 0
	if session.Score != nil {
		finalScore = *session.Score
	}

	var records []string
	if session.CompletedAt != nil && finalScore > 0 {
		best, err := s.repo.BestScore(ctx, userID, *session.CompletedAt)
		if err != nil {
			s.logger.Warn("failed to load best score", "user_id", userID, "error", err)
		} else if finalScore > best {
			records = append(records, "best_score")
		}
	}

	var rank int64
	if s.ranks != nil {
		rank, err = s.ranks.UserDailyRank(ctx, userID)
		if err != nil && !domain.IsNotFoundError(err) {
			s.logger.Warn("failed to resolve daily rank", "user_id", userID, "error", err)
		}
	}

	achievements, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	var unlocked []domain.Achievement
	for _, a := range achievements {
		if a.IsUnlocked {
			unlocked = append(unlocked, a)
		}
	}

	return &domain.EndGameResult{
		FinalScore:   finalScore,
		Rank:         rank,
		Achievements: unlocked,
		NewRecords:   records,
	}, nil
}

// History returns a page of the user's completed rounds, most recent first.
func (s *Service) History(ctx context.Context, userID string, page, limit int) ([]domain.HistoryEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return s.repo.GetHistory(ctx, userID, page, limit)
}

// Stats aggregates the user's completed rounds.
func (s *Service) Stats(ctx context.Context, userID string) (*domain.GameStats, error) {
	return s.repo.GetStats(ctx, userID)
}

// Achievements lists the full catalog with the user's unlock state.
func (s *Service) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	return s.repo.ListAchievements(ctx, userID)
}
