package analytics

import (
	"slices"

	"github.com/pageturnapp/pageturn-server/internal/calendar"
	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// MaxStreakScanDays bounds the backward walk when counting the current
// streak, so a malformed totals map can never loop unbounded. A streak
// longer than this reports as exactly this many days.
const MaxStreakScanDays = 365

// Streaks computes the current and longest consecutive-day reading
// streaks from per-day totals. today is the caller's local calendar day.
//
// A day counts as active only when its total is positive; a present-but-
// zero day is identical to an absent one. Today not being logged yet does
// not break the streak - the day is still in progress - so the walk
// starts at yesterday when today is inactive.
func Streaks(totals map[calendar.Day]int, today calendar.Day) domain.StreakState {
	return domain.StreakState{
		CurrentStreak: CurrentStreak(totals, today),
		LongestStreak: LongestStreak(totals),
	}
}

// CurrentStreak counts consecutive active days ending at today (or
// yesterday, when today is still unlogged).
func CurrentStreak(totals map[calendar.Day]int, today calendar.Day) int {
	cursor := today
	if totals[cursor] <= 0 {
		cursor = calendar.AddDays(cursor, -1)
	}

	streak := 0
	for totals[cursor] > 0 && streak < MaxStreakScanDays {
		streak++
		cursor = calendar.AddDays(cursor, -1)
	}
	return streak
}

// LongestStreak finds the longest run of adjacent active days anywhere in
// the history: 0 with no active days, 1 with a single active day.
func LongestStreak(totals map[calendar.Day]int) int {
	active := make([]calendar.Day, 0, len(totals))
	for day, pages := range totals {
		if pages > 0 {
			active = append(active, day)
		}
	}
	if len(active) == 0 {
		return 0
	}

	slices.SortFunc(active, func(a, b calendar.Day) int {
		return a.Compare(b)
	})

	longest := 1
	run := 1
	for i := 1; i < len(active); i++ {
		if calendar.AddDays(active[i-1], 1) == active[i] {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
