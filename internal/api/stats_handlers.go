package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats/me",
		Summary:     "Get my reading statistics",
		Description: "Returns period totals, active days, streaks and a daily series, bucketed by the user's local calendar days.",
		Tags:        []string{"Stats"},
		Security:    []map[string][]string{{"userHeader": {}}},
	}, s.handleGetMyStats)
}

// === DTOs ===

// GetStatsInput contains the stats query parameters.
type GetStatsInput struct {
	UserID string `header:"X-User-ID" doc:"Authenticated user ID, injected by the upstream proxy"`
	Period string `query:"period" enum:"day,week,month,year,all" default:"week" doc:"Time period"`
}

// DailyTotalResponse is one day's page total for charting.
type DailyTotalResponse struct {
	Date  string `json:"date" doc:"Local calendar day, YYYY-MM-DD"`
	Pages int    `json:"pages"`
}

// StatsResponse is the full analytics payload for one user.
type StatsResponse struct {
	Period          string               `json:"period"`
	TotalPages      int                  `json:"total_pages"`
	ActiveDays      int                  `json:"active_days"`
	AvgPerActiveDay float64              `json:"avg_per_active_day"`
	CurrentStreak   int                  `json:"current_streak" doc:"Consecutive active days ending today or yesterday"`
	LongestStreak   int                  `json:"longest_streak"`
	DailyTotals     []DailyTotalResponse `json:"daily_totals"`
	Timezone        string               `json:"timezone" doc:"IANA zone the days were bucketed in"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

// === Handlers ===

func (s *Server) handleGetMyStats(ctx context.Context, input *GetStatsInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetUserStats(ctx, userID, domain.StatsPeriod(input.Period))
	if err != nil {
		return nil, err
	}

	daily := make([]DailyTotalResponse, len(stats.DailyTotals))
	for i, d := range stats.DailyTotals {
		daily[i] = DailyTotalResponse{Date: d.Day.String(), Pages: d.Pages}
	}

	return &StatsOutput{Body: StatsResponse{
		Period:          string(stats.Period),
		TotalPages:      stats.TotalPages,
		ActiveDays:      stats.ActiveDays,
		AvgPerActiveDay: stats.AvgPerActiveDay,
		CurrentStreak:   stats.CurrentStreak,
		LongestStreak:   stats.LongestStreak,
		DailyTotals:     daily,
		Timezone:        stats.Timezone,
	}}, nil
}
