package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pageturnapp/pageturn-server/internal/calendar"
)

func day(y int, m time.Month, d int) calendar.Day {
	return calendar.Day{Year: y, Month: m, Date: d}
}

func TestStreaks_ConsecutiveDaysEndedYesterday(t *testing.T) {
	// Activity Jan 1-3, today is Jan 4 with nothing logged yet.
	totals := map[calendar.Day]int{
		day(2024, time.January, 1): 10,
		day(2024, time.January, 2): 10,
		day(2024, time.January, 3): 10,
	}

	st := Streaks(totals, day(2024, time.January, 4))
	assert.Equal(t, 3, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
}

func TestStreaks_TodayActiveExtends(t *testing.T) {
	totals := map[calendar.Day]int{
		day(2024, time.January, 3): 10,
		day(2024, time.January, 4): 5,
	}

	st := Streaks(totals, day(2024, time.January, 4))
	assert.Equal(t, 2, st.CurrentStreak)
}

func TestStreaks_GapBreaksCurrent(t *testing.T) {
	// Active Jan 1, gap Jan 2, today Jan 3 inactive: streak is over.
	totals := map[calendar.Day]int{
		day(2024, time.January, 1): 10,
	}

	st := Streaks(totals, day(2024, time.January, 3))
	assert.Equal(t, 0, st.CurrentStreak)
	assert.Equal(t, 1, st.LongestStreak)
}

func TestStreaks_ZeroTotalDayIsInactive(t *testing.T) {
	// A day present in the map with zero pages breaks the run the same
	// as an absent day.
	totals := map[calendar.Day]int{
		day(2024, time.January, 1): 10,
		day(2024, time.January, 2): 0,
		day(2024, time.January, 3): 10,
	}

	st := Streaks(totals, day(2024, time.January, 3))
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 1, st.LongestStreak)
}

func TestStreaks_Empty(t *testing.T) {
	st := Streaks(map[calendar.Day]int{}, day(2024, time.January, 3))
	assert.Equal(t, 0, st.CurrentStreak)
	assert.Equal(t, 0, st.LongestStreak)
}

func TestCurrentStreak_MonthBoundary(t *testing.T) {
	totals := map[calendar.Day]int{
		day(2024, time.January, 31): 10,
		day(2024, time.February, 1): 10,
	}

	assert.Equal(t, 2, CurrentStreak(totals, day(2024, time.February, 1)))
}

func TestCurrentStreak_CappedAtScanLimit(t *testing.T) {
	totals := make(map[calendar.Day]int)
	d := day(2024, time.June, 15)
	for range MaxStreakScanDays + 30 {
		totals[d] = 1
		d = calendar.AddDays(d, -1)
	}

	assert.Equal(t, MaxStreakScanDays, CurrentStreak(totals, day(2024, time.June, 15)))
}

func TestLongestStreak_FindsHistoricalRun(t *testing.T) {
	// A 3-day run in the past beats the current 1-day run.
	totals := map[calendar.Day]int{
		day(2024, time.March, 10): 10,
		day(2024, time.March, 11): 10,
		day(2024, time.March, 12): 10,
		day(2024, time.June, 15):  10,
	}

	st := Streaks(totals, day(2024, time.June, 15))
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 3, st.LongestStreak)
}
