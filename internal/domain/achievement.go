package domain

import "time"

// Achievement is a static catalog entry, optionally joined with a user's
// unlock progress.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon,omitempty"`
	Category    string     `json:"category,omitempty"`
	Rarity      string     `json:"rarity,omitempty"`
	Progress    int        `json:"progress"`
	IsUnlocked  bool       `json:"isUnlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// UnlockedAchievements evaluates the unlock conditions that depend only on
// the outcome of a single guess. firstCorrect is true when this was the
// user's first ever correct guess.
func UnlockedAchievements(correct bool, firstCorrect bool, streak int, timeTaken float64, score int) []Achievement {
	var unlocked []Achievement

	if correct && firstCorrect {
		unlocked = append(unlocked, Achievement{
			ID:          "first-correct",
			Name:        "First Steps",
			Description: "Make your first correct guess!",
			Icon:        "🎯",
		})
	}
	if correct && streak >= 5 {
		unlocked = append(unlocked, Achievement{
			ID:          "streak-5",
			Name:        "Getting Hot",
			Description: "Get a streak of 5 or more!",
			Icon:        "🔥",
		})
	}
	if correct && streak >= 10 {
		unlocked = append(unlocked, Achievement{
			ID:          "streak-10",
			Name:        "On Fire",
			Description: "Get a streak of 10 or more!",
			Icon:        "🔥🔥",
		})
	}
	if correct && timeTaken <= 5 {
		unlocked = append(unlocked, Achievement{
			ID:          "speed-demon",
			Name:        "Speed Demon",
			Description: "Guess correctly in under 5 seconds!",
			Icon:        "⚡",
		})
	}
	if score >= 150 {
		unlocked = append(unlocked, Achievement{
			ID:          "high-score",
			Name:        "High Scorer",
			Description: "Score 150+ points in a single guess!",
			Icon:        "⭐",
		})
	}

	return unlocked
}
