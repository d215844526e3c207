package game

import (
	"testing"

	"github.com/whosthatpokemon/internal/domain"
)

func TestScoreGuess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		correct     bool
		timeTaken   float64
		difficulty  domain.Difficulty
		priorStreak int
		hintsUsed   int
		want        int
	}{
		// A running streak carries into the bonus: 10 before the guess
		// scores as a streak of 11, capped at 25.
		{"long running streak", true, 0, domain.DifficultyEasy, 10, 0, 125},
		{"first win of a streak", true, 0, domain.DifficultyEasy, 0, 0, 105},
		{"mid streak", true, 0, domain.DifficultyEasy, 2, 0, 115},
		{"streak reaches the cap", true, 0, domain.DifficultyEasy, 4, 0, 125},
		{"wrong guess ignores streak", false, 0, domain.DifficultyEasy, 10, 0, 0},
		{"expert with streak and penalties", true, 10, domain.DifficultyExpert, 3, 1, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreGuess(tt.correct, tt.timeTaken, tt.difficulty, tt.priorStreak, tt.hintsUsed)
			if got != tt.want {
				t.Errorf("scoreGuess() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewGuessResultRoundAlwaysOver(t *testing.T) {
	t.Parallel()

	if r := newGuessResult("pikachu", true, 105, 1, nil); !r.IsGameOver {
		t.Error("round should be over after a correct guess")
	}
	if r := newGuessResult("pikachu", false, 0, 0, nil); !r.IsGameOver {
		t.Error("round should be over after a wrong guess")
	}
}
