package domain

import "time"

// Period is one of the fixed leaderboard windows.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Periods lists every period kind updated on game completion.
func Periods() []Period {
	return []Period{PeriodDaily, PeriodWeekly, PeriodMonthly}
}

// Valid reports whether p is a known period kind.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Window returns the inclusive start and exclusive end of the period window
// containing now: midnight-to-midnight for daily, Monday-to-Sunday for
// weekly, first-to-last day of the month for monthly.
func (p Period) Window(now time.Time) (start, end time.Time) {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	switch p {
	case PeriodWeekly:
		// time.Weekday counts Sunday as 0; shift so Monday opens the week.
		offset := (int(now.Weekday()) + 6) % 7
		start = midnight.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	default:
		start = midnight
		end = start.AddDate(0, 0, 1)
	}
	return start, end
}

// LeaderboardRow is the accumulated total for one user within one period
// window. Exactly one row exists per (user, period, window); updates add to
// the running totals.
type LeaderboardRow struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Period         Period    `json:"period"`
	Score          int64     `json:"score"`
	CorrectGuesses int64     `json:"correctGuesses"`
	TotalGames     int64     `json:"totalGames"`
	PeriodStart    time.Time `json:"periodStart"`
	PeriodEnd      time.Time `json:"periodEnd"`
}

// LeaderboardEntry is one ranked row of a leaderboard query.
type LeaderboardEntry struct {
	Rank           int64   `json:"rank"`
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	IsGuest        bool    `json:"isGuest"`
	AvatarURL      *string `json:"avatar,omitempty"`
	TotalScore     int64   `json:"totalScore"`
	BestStreak     int     `json:"bestStreak"`
	TotalGames     int64   `json:"totalGames"`
	CorrectGuesses int64   `json:"correctGuesses"`
	AverageTime    float64 `json:"averageTime"`
}

// LeaderboardQuery selects a leaderboard page.
type LeaderboardQuery struct {
	Period     Period
	Page       int
	Limit      int
	GameMode   *GameMode
	Difficulty *Difficulty
}

// GameResultEvent is the message emitted when a game completes, consumed by
// the leaderboard aggregator (directly or through the event pipeline).
type GameResultEvent struct {
	UserID         string    `json:"user_id"`
	SessionID      string    `json:"session_id,omitempty"`
	Score          int64     `json:"score"`
	CorrectGuesses int64     `json:"correct_guesses"`
	TotalGames     int64     `json:"total_games"`
	Timestamp      time.Time `json:"timestamp"`
}
