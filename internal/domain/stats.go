package domain

import (
	"time"

	"github.com/pageturnapp/pageturn-server/internal/calendar"
)

// StatsPeriod represents a time window for statistics queries.
type StatsPeriod string

// StatsPeriod constants for time window queries.
const (
	StatsPeriodDay     StatsPeriod = "day"
	StatsPeriodWeek    StatsPeriod = "week"
	StatsPeriodMonth   StatsPeriod = "month"
	StatsPeriodYear    StatsPeriod = "year"
	StatsPeriodAllTime StatsPeriod = "all"
)

// Valid returns true if the period is a recognized value.
func (p StatsPeriod) Valid() bool {
	switch p {
	case StatsPeriodDay, StatsPeriodWeek, StatsPeriodMonth, StatsPeriodYear, StatsPeriodAllTime:
		return true
	default:
		return false
	}
}

// DayBounds resolves a named period into inclusive calendar-day bounds in
// loc, relative to now. A nil start means unbounded history; the end is
// always today. Resolution happens in the caller's timezone, never the
// server's, so "this week" means the user's week.
func (p StatsPeriod) DayBounds(now time.Time, loc *time.Location) (start, end *calendar.Day) {
	today := calendar.Today(now, loc)
	end = &today

	switch p {
	case StatsPeriodDay:
		return &today, end
	case StatsPeriodWeek:
		// Week starts on Monday (ISO standard).
		weekday := int(calendar.StartOfDay(today, loc).Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		s := calendar.AddDays(today, -(weekday - 1))
		return &s, end
	case StatsPeriodMonth:
		s := calendar.Day{Year: today.Year, Month: today.Month, Date: 1}
		return &s, end
	case StatsPeriodYear:
		s := calendar.Day{Year: today.Year, Month: time.January, Date: 1}
		return &s, end
	case StatsPeriodAllTime:
		return nil, end
	default:
		return &today, end
	}
}

// DailyTotal is one day's aggregated page count for charting.
type DailyTotal struct {
	Day   calendar.Day `json:"day"`
	Pages int          `json:"pages"`
}

// StreakState holds the consecutive-day reading streaks for one user.
type StreakState struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// PeriodMetric is the derived per-user record consumed by both the
// personal analytics view and the leaderboard. Computed fresh on every
// query; nothing here is persisted.
type PeriodMetric struct {
	OwnerID string `json:"owner_id"`

	// TotalPages read across the period.
	TotalPages int `json:"total_pages"`

	// ActiveDays is the number of days in the period with pages > 0.
	ActiveDays int `json:"active_days"`

	// AvgPerActiveDay is TotalPages / ActiveDays, 0 when no active days.
	AvgPerActiveDay float64 `json:"avg_per_active_day"`

	// CurrentStreak is the user's consecutive-day streak as of today.
	CurrentStreak int `json:"current_streak"`
}

// UserStats is the full analytics payload for a single user.
type UserStats struct {
	Period StatsPeriod `json:"period"`

	PeriodMetric
	LongestStreak int `json:"longest_streak"`

	// DailyTotals covers the period's active days, sorted ascending.
	DailyTotals []DailyTotal `json:"daily_totals"`

	// Timezone is the IANA zone the days were bucketed in.
	Timezone string `json:"timezone"`
}
