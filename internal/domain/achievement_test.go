package domain

import "testing"

func achievementIDs(list []Achievement) map[string]bool {
	ids := make(map[string]bool, len(list))
	for _, a := range list {
		ids[a.ID] = true
	}
	return ids
}

func TestUnlockedAchievements(t *testing.T) {
	t.Parallel()

	t.Run("first correct guess", func(t *testing.T) {
		ids := achievementIDs(UnlockedAchievements(true, true, 1, 20, 100))
		if !ids["first-correct"] {
			t.Error("expected first-correct to unlock")
		}
		if ids["streak-5"] || ids["speed-demon"] {
			t.Error("streak and speed conditions should not unlock")
		}
	})

	t.Run("incorrect guess unlocks nothing", func(t *testing.T) {
		got := UnlockedAchievements(false, false, 0, 1, 0)
		if len(got) != 0 {
			t.Errorf("expected no unlocks, got %d", len(got))
		}
	})

	t.Run("long streak unlocks both tiers", func(t *testing.T) {
		ids := achievementIDs(UnlockedAchievements(true, false, 10, 20, 100))
		if !ids["streak-5"] || !ids["streak-10"] {
			t.Error("streak of 10 should unlock both streak tiers")
		}
	})

	t.Run("high score", func(t *testing.T) {
		// 150 is reachable: fast expert guess on a capped streak.
		ids := achievementIDs(UnlockedAchievements(true, false, 5, 10, Score(true, 1, DifficultyExpert, 5, 0)))
		if !ids["high-score"] {
			t.Error("expected high-score to unlock at 150+")
		}
		ids = achievementIDs(UnlockedAchievements(true, false, 1, 10, 149))
		if ids["high-score"] {
			t.Error("high-score should not unlock below 150")
		}
	})

	t.Run("fast guess", func(t *testing.T) {
		ids := achievementIDs(UnlockedAchievements(true, false, 1, 4.5, 100))
		if !ids["speed-demon"] {
			t.Error("guess under 5 seconds should unlock speed-demon")
		}
	})
}
