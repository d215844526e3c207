package domain

import (
	"math"
	"strings"
	"time"
)

// Difficulty selects the eligibility predicate for random Pokémon selection
// and the scoring bonus tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Valid reports whether d is a known difficulty tier.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// Bonus returns the flat difficulty bonus added to a correct guess.
func (d Difficulty) Bonus() int {
	switch d {
	case DifficultyMedium:
		return 10
	case DifficultyHard:
		return 20
	case DifficultyExpert:
		return 30
	default:
		return 0
	}
}

// GameMode tags a session with the mode the client requested.
type GameMode string

const (
	GameModeClassic GameMode = "classic"
	GameModeSpeed   GameMode = "speed"
	GameModeStreak  GameMode = "streak"
	GameModeDaily   GameMode = "daily"
)

// DefaultTimeLimit returns the round time limit in seconds for a mode.
func (m GameMode) DefaultTimeLimit() int {
	switch m {
	case GameModeSpeed:
		return 15
	case GameModeStreak:
		return 45
	default:
		return 30
	}
}

// GameSession is one round of the guessing game. A session is open until
// IsCompleted is set; at most one outcome is ever recorded.
type GameSession struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	PokemonID      int        `json:"pokemonId"`
	Difficulty     Difficulty `json:"difficulty"`
	GameMode       GameMode   `json:"gameMode"`
	Generation     *int       `json:"generation,omitempty"`
	TimeLimit      int        `json:"timeLimit"`
	SelectedAnswer *string    `json:"selectedAnswer,omitempty"`
	CorrectGuess   *bool      `json:"correctGuess,omitempty"`
	TimeTaken      *float64   `json:"timeTaken,omitempty"`
	Score          *int       `json:"score,omitempty"`
	Streak         int        `json:"streak"`
	HintsUsed      int        `json:"hintsUsed"`
	IsCompleted    bool       `json:"isCompleted"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// StartGameRequest is the payload for starting a round.
type StartGameRequest struct {
	GameMode   GameMode   `json:"gameMode"`
	Difficulty Difficulty `json:"difficulty"`
	Generation *int       `json:"generation,omitempty"`
	TimeLimit  int        `json:"timeLimit"`
}

// StartGameResponse echoes the round setup back to the client.
type StartGameResponse struct {
	SessionID     string          `json:"sessionId"`
	Pokemon       *Pokemon        `json:"pokemon"`
	Choices       []string        `json:"choices"`
	CorrectAnswer string          `json:"correctAnswer"`
	Hints         []Hint          `json:"hints"`
	TimeLimit     int             `json:"timeLimit"`
	Config        StartGameConfig `json:"config"`
}

// StartGameConfig echoes the requested configuration.
type StartGameConfig struct {
	Difficulty Difficulty `json:"difficulty"`
	GameMode   GameMode   `json:"gameMode"`
	Generation *int       `json:"generation,omitempty"`
}

// SubmitGuessRequest is the payload for a guess submission.
type SubmitGuessRequest struct {
	SessionID string  `json:"sessionId"`
	Guess     string  `json:"guess"`
	TimeTaken float64 `json:"timeTaken"`
	HintsUsed int     `json:"hintsUsed"`
}

// GuessResult is the outcome of a guess submission.
type GuessResult struct {
	Correct      string        `json:"correctAnswer"`
	IsCorrect    bool          `json:"correct"`
	Score        int           `json:"score"`
	Streak       int           `json:"streak"`
	Achievements []Achievement `json:"achievements"`
	IsGameOver   bool          `json:"isGameOver"`
}

// EndGameRequest closes out a session. Totals are recomputed server-side
// from the session history; the request carries only the session id.
type EndGameRequest struct {
	SessionID string `json:"sessionId"`
}

// EndGameResult summarizes a finished game.
type EndGameResult struct {
	FinalScore   int           `json:"finalScore"`
	Rank         int64         `json:"rank"`
	Achievements []Achievement `json:"achievements"`
	NewRecords   []string      `json:"newRecords"`
}

// GameStats aggregates a user's completed sessions.
type GameStats struct {
	TotalGames     int64   `json:"totalGames"`
	CorrectGuesses int64   `json:"correctGuesses"`
	TotalScore     int64   `json:"totalScore"`
	BestStreak     int     `json:"bestStreak"`
	AverageTime    float64 `json:"averageTime"`
	Accuracy       float64 `json:"accuracy"`
}

// HistoryEntry is one completed session in a user's game history.
type HistoryEntry struct {
	GameSession
	PokemonName string `json:"pokemonName"`
	SpriteURL   string `json:"spriteUrl"`
}

// NormalizeGuess folds a guess for comparison: surrounding whitespace is
// ignored and matching is case-insensitive.
func NormalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GuessMatches reports whether a submitted guess names the given Pokémon.
func GuessMatches(guess, name string) bool {
	return NormalizeGuess(guess) == NormalizeGuess(name)
}

const (
	baseScore       = 100
	timePenaltyRate = 2
	hintPenalty     = 10
	streakBonusStep = 5
	streakBonusCap  = 25
	minScore        = 5
)

// Score computes the points awarded for a guess. An incorrect guess scores
// zero. A correct guess starts from a base of 100, loses 2 points per second
// taken and 10 per hint used, gains a flat difficulty bonus and a streak
// bonus of 5 per consecutive correct answer capped at 25, and never drops
// below 5.
func Score(correct bool, timeTaken float64, difficulty Difficulty, streak, hintsUsed int) int {
	if !correct {
		return 0
	}

	score := baseScore
	score -= int(math.Round(timeTaken * timePenaltyRate))
	score -= hintsUsed * hintPenalty

	score += difficulty.Bonus()

	streakBonus := streak * streakBonusStep
	if streakBonus > streakBonusCap {
		streakBonus = streakBonusCap
	}
	score += streakBonus

	if score < minScore {
		score = minScore
	}
	return score
}
