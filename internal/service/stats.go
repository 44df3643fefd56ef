package service

import (
	"context"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/analytics"
	"github.com/pageturnapp/pageturn-server/internal/calendar"
	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/errors"
	"github.com/pageturnapp/pageturn-server/internal/logger"
	"github.com/pageturnapp/pageturn-server/internal/store"
)

// StatsService computes per-user reading statistics. All derived values
// (daily totals, streaks, period sums) are recomputed from the raw logs
// on every query; nothing is cached or persisted.
type StatsService struct {
	store  *store.Store
	logger *logger.Logger

	// defaultTimezone is the fallback zone when a user has none set or
	// their stored zone no longer resolves.
	defaultTimezone string

	now func() time.Time
}

// NewStatsService creates a new stats service.
func NewStatsService(store *store.Store, log *logger.Logger, defaultTimezone string) *StatsService {
	if defaultTimezone == "" {
		defaultTimezone = "UTC"
	}
	return &StatsService{
		store:           store,
		logger:          log,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

// resolveZone loads the user's timezone, falling back to the configured
// default and finally UTC. A stored zone that no longer resolves (an
// OS tzdata update removed it, or bad data crept in) must degrade, not
// fail the request.
func (s *StatsService) resolveZone(user *domain.User) (*time.Location, string) {
	name := user.Timezone
	if name == "" {
		name = s.defaultTimezone
	}

	loc, err := calendar.LoadZone(name)
	if err == nil {
		return loc, name
	}

	s.logger.Warn("user timezone failed to resolve, using default",
		"user_id", user.ID,
		"timezone", name,
		"error", err,
	)

	if loc, err := calendar.LoadZone(s.defaultTimezone); err == nil {
		return loc, s.defaultTimezone
	}
	return time.UTC, "UTC"
}

// GetUserStats returns the full analytics payload for a user over the
// given period, bucketed in the user's timezone.
func (s *StatsService) GetUserStats(ctx context.Context, userID string, period domain.StatsPeriod) (*domain.UserStats, error) {
	if !period.Valid() {
		return nil, errors.Validationf("invalid period %q", period)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	loc, zoneName := s.resolveZone(user)
	now := s.now()
	start, end := period.DayBounds(now, loc)

	// Streaks need full history, not just the period, so fetch all logs
	// once and slice the period out of the aggregated totals.
	logs, err := s.store.GetLogsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := analytics.AggregateByDay(logs, loc)
	today := calendar.Today(now, loc)

	metric := s.metricFromTotals(userID, totals, start, end, today)
	streaks := analytics.Streaks(totals, today)

	stats := &domain.UserStats{
		Period:        period,
		PeriodMetric:  metric,
		LongestStreak: streaks.LongestStreak,
		DailyTotals:   analytics.DailySeries(totals, start, end),
		Timezone:      zoneName,
	}

	s.logger.Debug("user stats computed",
		"user_id", userID,
		"period", period,
		"total_pages", metric.TotalPages,
		"current_streak", metric.CurrentStreak,
	)
	return stats, nil
}

// metricFromTotals derives the period metric from aggregated day totals.
func (s *StatsService) metricFromTotals(ownerID string, totals map[calendar.Day]int, start, end *calendar.Day, today calendar.Day) domain.PeriodMetric {
	total := analytics.SumInPeriod(totals, start, end)
	activeDays := analytics.ActiveDayCount(totals, start, end)

	avg := 0.0
	if activeDays > 0 {
		avg = float64(total) / float64(activeDays)
	}

	return domain.PeriodMetric{
		OwnerID:         ownerID,
		TotalPages:      total,
		ActiveDays:      activeDays,
		AvgPerActiveDay: avg,
		CurrentStreak:   analytics.CurrentStreak(totals, today),
	}
}

// MetricForUser computes a single user's period metric in the given
// zone. Used by the leaderboard, which buckets every participant in the
// requester's timezone so all rows cover the same instant range.
//
// Unlike GetUserStats this never reports the longest streak, so it only
// reads history back to the earlier of the period start and the current-
// streak scan floor instead of the full log.
func (s *StatsService) MetricForUser(ctx context.Context, userID string, period domain.StatsPeriod, now time.Time, loc *time.Location) (domain.PeriodMetric, error) {
	start, end := period.DayBounds(now, loc)
	today := calendar.Today(now, loc)

	var logs []*domain.ReadingLog
	var err error
	if start == nil {
		logs, err = s.store.GetLogsForUser(ctx, userID)
	} else {
		// The streak walk starts at yesterday at the latest and looks
		// back at most MaxStreakScanDays, so this floor loses nothing.
		floor := calendar.AddDays(today, -(analytics.MaxStreakScanDays + 1))
		if start.Before(floor) {
			floor = *start
		}
		logs, err = s.store.GetLogsForUserSince(ctx, userID, calendar.StartOfDay(floor, loc))
	}
	if err != nil {
		return domain.PeriodMetric{}, err
	}

	totals := analytics.AggregateByDay(logs, loc)
	return s.metricFromTotals(userID, totals, start, end, today), nil
}
