// Package analytics is the pure computation core behind daily charts,
// streaks and leaderboards. Every function here is deterministic: inputs
// in, values out, no clock access and no I/O. Callers resolve "now" and
// fetch reading logs before calling in.
package analytics

import (
	"slices"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/calendar"
	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// AggregateByDay buckets reading logs into the owner's local calendar days
// and sums page counts per day. Multiple logs on one day accumulate.
// Negative page counts are a data-integrity problem upstream; they clamp
// to zero here rather than producing negative totals.
func AggregateByDay(logs []*domain.ReadingLog, loc *time.Location) map[calendar.Day]int {
	totals := make(map[calendar.Day]int, len(logs))
	for _, l := range logs {
		pages := l.Pages
		if pages < 0 {
			pages = 0
		}
		totals[calendar.DayOf(l.LoggedAt, loc)] += pages
	}
	return totals
}

// SumInPeriod sums day totals whose day falls within [start, end]
// inclusive. A nil bound means unbounded on that side; both nil sums
// all-time.
func SumInPeriod(totals map[calendar.Day]int, start, end *calendar.Day) int {
	sum := 0
	for day, pages := range totals {
		if inRange(day, start, end) {
			sum += pages
		}
	}
	return sum
}

// ActiveDayCount counts days in [start, end] with pages > 0.
func ActiveDayCount(totals map[calendar.Day]int, start, end *calendar.Day) int {
	count := 0
	for day, pages := range totals {
		if pages > 0 && inRange(day, start, end) {
			count++
		}
	}
	return count
}

// DailySeries converts a totals map into a chart-ready slice of active
// days within [start, end], sorted ascending.
func DailySeries(totals map[calendar.Day]int, start, end *calendar.Day) []domain.DailyTotal {
	series := make([]domain.DailyTotal, 0, len(totals))
	for day, pages := range totals {
		if pages > 0 && inRange(day, start, end) {
			series = append(series, domain.DailyTotal{Day: day, Pages: pages})
		}
	}
	slices.SortFunc(series, func(a, b domain.DailyTotal) int {
		return a.Day.Compare(b.Day)
	})
	return series
}

func inRange(day calendar.Day, start, end *calendar.Day) bool {
	if start != nil && day.Before(*start) {
		return false
	}
	if end != nil && day.After(*end) {
		return false
	}
	return true
}
