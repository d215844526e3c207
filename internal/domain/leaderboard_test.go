package domain

import (
	"testing"
	"time"
)

func TestPeriodWindowDaily(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)
	start, end := PeriodDaily.Window(now)

	wantStart := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("daily window = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestPeriodWindowWeekly(t *testing.T) {
	t.Parallel()

	// 2024-03-15 is a Friday; the week opened on Monday the 11th.
	now := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC)
	start, end := PeriodWeekly.Window(now)

	wantStart := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("weekly window = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestPeriodWindowWeeklySunday(t *testing.T) {
	t.Parallel()

	// Sunday still belongs to the week that opened the previous Monday.
	now := time.Date(2024, time.March, 17, 23, 59, 0, 0, time.UTC)
	start, _ := PeriodWeekly.Window(now)

	wantStart := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("weekly start on Sunday = %v, want %v", start, wantStart)
	}
}

func TestPeriodWindowMonthly(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.February, 20, 8, 0, 0, 0, time.UTC)
	start, end := PeriodMonthly.Window(now)

	wantStart := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Errorf("monthly window = [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestPeriodValid(t *testing.T) {
	t.Parallel()

	for _, p := range Periods() {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Period("yearly").Valid() {
		t.Error("unknown period should be invalid")
	}
}
