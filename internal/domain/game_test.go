package domain

import "testing"

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		correct    bool
		timeTaken  float64
		difficulty Difficulty
		streak     int
		hintsUsed  int
		want       int
	}{
		{"incorrect scores zero", false, 1.0, DifficultyExpert, 10, 0, 0},
		{"instant easy no streak", true, 0, DifficultyEasy, 0, 0, 100},
		{"time penalty", true, 10, DifficultyEasy, 0, 0, 80},
		{"time penalty rounds", true, 2.4, DifficultyEasy, 0, 0, 95},
		{"hint penalty", true, 0, DifficultyEasy, 0, 2, 80},
		{"medium bonus", true, 0, DifficultyMedium, 0, 0, 110},
		{"hard bonus", true, 0, DifficultyHard, 0, 0, 120},
		{"expert bonus", true, 0, DifficultyExpert, 0, 0, 130},
		{"streak bonus", true, 0, DifficultyEasy, 3, 0, 115},
		{"streak bonus caps at 25", true, 0, DifficultyEasy, 12, 0, 125},
		{"floor at five", true, 30, DifficultyEasy, 0, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.correct, tt.timeTaken, tt.difficulty, tt.streak, tt.hintsUsed)
			if got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGuessMatches(t *testing.T) {
	t.Parallel()

	if !GuessMatches("  Pikachu ", "pikachu") {
		t.Error("expected case and whitespace insensitive match")
	}
	if GuessMatches("raichu", "pikachu") {
		t.Error("expected mismatch for different names")
	}
	if !GuessMatches("MR. MIME", "mr. mime") {
		t.Error("expected punctuation to be preserved in comparison")
	}
}

func TestGameModeDefaultTimeLimit(t *testing.T) {
	t.Parallel()

	if got := GameModeSpeed.DefaultTimeLimit(); got != 15 {
		t.Errorf("speed limit = %d, want 15", got)
	}
	if got := GameModeStreak.DefaultTimeLimit(); got != 45 {
		t.Errorf("streak limit = %d, want 45", got)
	}
	if got := GameModeClassic.DefaultTimeLimit(); got != 30 {
		t.Errorf("classic limit = %d, want 30", got)
	}
	if got := GameModeDaily.DefaultTimeLimit(); got != 30 {
		t.Errorf("daily limit = %d, want 30", got)
	}
}

func TestDifficultyValid(t *testing.T) {
	t.Parallel()

	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert} {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if Difficulty("nightmare").Valid() {
		t.Error("unknown difficulty should be invalid")
	}
}
